package port

import (
	"context"

	"recommend/internal/domain"
)

// Reranker scores query-document pairs for relevance.
type Reranker interface {
	// Rerank returns at most topN documents sorted by relevance score (highest first).
	Rerank(ctx context.Context, query string, docs []domain.Document, topN int) ([]domain.RerankedResult, error)

	// ModelName returns the name of the reranking model.
	ModelName() string
}
