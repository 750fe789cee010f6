package port

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates the embedding of a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
