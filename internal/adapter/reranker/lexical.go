package reranker

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"recommend/internal/domain"
)

// LexicalReranker scores documents by query term overlap. It needs no
// network access and is used for offline runs.
type LexicalReranker struct{}

// NewLexicalReranker creates a new lexical reranker.
func NewLexicalReranker() *LexicalReranker {
	return &LexicalReranker{}
}

// Rerank scores each document by the share of query terms it contains.
func (r *LexicalReranker) Rerank(ctx context.Context, query string, docs []domain.Document, topN int) ([]domain.RerankedResult, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be a positive integer, got %d", domain.ErrRerank, topN)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRerank, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	queryTerms := tokenizeSimple(query)

	scored := make([]Scored, len(docs))
	for i, d := range docs {
		scored[i] = Scored{Index: i, Score: termOverlap(queryTerms, d.Text)}
	}
	return BuildResults(docs, scored, topN)
}

// ModelName returns the model name.
func (r *LexicalReranker) ModelName() string {
	return "lexical-overlap"
}

// stopwords never count towards overlap.
var stopwords = func() map[string]struct{} {
	words := []string{
		"an", "and", "are", "as", "at", "be", "by", "for", "from", "in",
		"is", "it", "its", "of", "on", "or", "the", "to", "with", "this",
		"that", "what", "which", "who", "how", "can", "do", "does", "my",
		"me", "need", "want", "looking", "some", "any",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// tokenizeSimple lowercases text and counts non-stopword words of at least two runes.
func tokenizeSimple(text string) map[string]int {
	terms := make(map[string]int)
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	}) {
		if len([]rune(word)) < 2 {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		terms[word]++
	}
	return terms
}

// termOverlap returns the fraction of query terms present in doc, in [0, 1].
func termOverlap(queryTerms map[string]int, doc string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	docTerms := tokenizeSimple(doc)
	if len(docTerms) == 0 {
		return 0
	}

	matches := 0
	for term := range queryTerms {
		if _, exists := docTerms[term]; exists {
			matches++
		}
	}

	return float64(matches) / float64(len(queryTerms))
}
