package embedding

import (
	"context"
	"fmt"
	"strings"

	"recommend/internal/domain"
)

// MockEmbedder derives a deterministic vector from the runes of the input.
// It needs no network and is used for offline runs and tests.
type MockEmbedder struct {
	dimension int
}

// NewMockEmbedder creates a mock embedder. A non-positive dimension makes every Embed call fail.
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

// Embed returns the vector for text. Blank text is an ErrEmbedding.
func (e *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrEmbedding, e.dimension)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input", domain.ErrEmbedding)
	}

	vec := make([]float32, e.dimension)
	i := 0
	for _, r := range text {
		vec[i%e.dimension] += float32(r) / 1000.0
		i++
	}
	return vec, nil
}

// Dimension returns the vector length.
func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns "mock".
func (e *MockEmbedder) ModelName() string {
	return "mock"
}
