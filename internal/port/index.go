package port

import (
	"context"

	"recommend/internal/domain"
)

// VectorIndex searches a remote nearest-neighbor index.
type VectorIndex interface {
	// Query returns up to topK hits with metadata, best first.
	Query(ctx context.Context, vector []float32, topK int) ([]domain.SearchHit, error)

	// Name identifies the index for logging.
	Name() string
}
