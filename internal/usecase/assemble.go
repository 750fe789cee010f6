package usecase

import (
	"fmt"

	"recommend/internal/domain"
)

// descriptionKey is the metadata field carrying the product text.
const descriptionKey = "description"

// PrepareDocuments flattens search hits into rerank documents, one per hit, in hit order.
func PrepareDocuments(hits []domain.SearchHit) ([]domain.Document, error) {
	docs := make([]domain.Document, len(hits))
	for i, hit := range hits {
		if hit.ID == "" {
			return nil, fmt.Errorf("%w: search hit %d has no id", domain.ErrMalformedResponse, i)
		}
		docs[i] = domain.Document{
			ID:    hit.ID,
			Text:  describe(hit.Metadata),
			Score: hit.Score,
		}
	}
	return docs, nil
}

func describe(metadata map[string]any) string {
	v, ok := metadata[descriptionKey]
	if !ok || v == nil {
		return domain.DescriptionPlaceholder
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
