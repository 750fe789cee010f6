// Package reranker holds rerankers that do not need a vector index client,
// plus the result assembly shared by all rerank adapters.
package reranker

import (
	"fmt"
	"sort"

	"recommend/internal/domain"
)

// Scored is one service answer: a position in the submitted documents and its relevance.
type Scored struct {
	Index int
	Score float64
}

// BuildResults maps scored positions back to docs, orders them by descending
// score (ties keep submission order) and keeps min(topN, len(docs)) results.
// A position outside docs, a repeated position or a short answer is an ErrRerank.
func BuildResults(docs []domain.Document, scored []Scored, topN int) ([]domain.RerankedResult, error) {
	want := min(topN, len(docs))

	seen := make(map[int]bool, len(scored))
	ordered := make([]Scored, 0, len(scored))
	for _, s := range scored {
		if s.Index < 0 || s.Index >= len(docs) {
			return nil, fmt.Errorf("%w: %w: result index %d out of range for %d documents",
				domain.ErrRerank, domain.ErrMalformedResponse, s.Index, len(docs))
		}
		if seen[s.Index] {
			return nil, fmt.Errorf("%w: %w: result index %d returned twice",
				domain.ErrRerank, domain.ErrMalformedResponse, s.Index)
		}
		seen[s.Index] = true
		ordered = append(ordered, s)
	}

	if len(ordered) < want {
		return nil, fmt.Errorf("%w: %w: expected %d results, got %d",
			domain.ErrRerank, domain.ErrMalformedResponse, want, len(ordered))
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].Index < ordered[j].Index
	})

	results := make([]domain.RerankedResult, want)
	for i, s := range ordered[:want] {
		results[i] = domain.RerankedResult{Document: docs[s.Index], Score: s.Score}
	}
	return results, nil
}
