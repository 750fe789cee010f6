// Package qdrant serves the product catalog from a Qdrant collection.
package qdrant

import (
	"context"
	"fmt"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"recommend/internal/domain"
	"recommend/internal/port"
)

var _ port.VectorIndex = (*Index)(nil)

// Index implements port.VectorIndex over one Qdrant collection.
type Index struct {
	client     *qdrant.Client
	collection string
}

// Config holds connection settings.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Logger     *zap.Logger
}

// OpenIndex connects to Qdrant and checks that the collection exists.
func OpenIndex(ctx context.Context, cfg Config) (*Index, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	exists, err := client.CollectionExists(ctx, cfg.Collection)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		client.Close()
		return nil, fmt.Errorf("collection %s does not exist", cfg.Collection)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("Qdrant initialized successfully",
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.String("collection", cfg.Collection),
		)
	}

	return &Index{client: client, collection: cfg.Collection}, nil
}

// Close closes the Qdrant client connection
func (i *Index) Close() error {
	return i.client.Close()
}

// Query performs similarity search. Every failure wraps domain.ErrRetrieval.
func (i *Index) Query(ctx context.Context, vector []float32, topK int) ([]domain.SearchHit, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be a positive integer, got %d", domain.ErrRetrieval, topK)
	}

	response, err := i.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: i.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search: %w", domain.ErrRetrieval, err)
	}

	if len(response) > topK {
		response = response[:topK]
	}

	hits := make([]domain.SearchHit, 0, len(response))
	for _, point := range response {
		hits = append(hits, hitFromPoint(point))
	}
	return hits, nil
}

// Name returns the collection name.
func (i *Index) Name() string {
	return i.collection
}

func hitFromPoint(point *qdrant.ScoredPoint) domain.SearchHit {
	hit := domain.SearchHit{
		ID:    pointID(point.GetId()),
		Score: float64(point.GetScore()),
	}
	if payload := point.GetPayload(); payload != nil {
		hit.Metadata = make(map[string]any, len(payload))
		for k, v := range payload {
			hit.Metadata[k] = valueToAny(v)
		}
	}
	return hit
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	if _, ok := id.GetPointIdOptions().(*qdrant.PointId_Num); ok {
		return strconv.FormatUint(id.GetNum(), 10)
	}
	return ""
}

// valueToAny converts a payload value into the shapes encoding/json produces.
func valueToAny(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_IntegerValue:
		return float64(kind.IntegerValue)
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		values := kind.ListValue.GetValues()
		out := make([]any, len(values))
		for i, item := range values {
			out[i] = valueToAny(item)
		}
		return out
	case *qdrant.Value_StructValue:
		fields := kind.StructValue.GetFields()
		out := make(map[string]any, len(fields))
		for k, item := range fields {
			out[k] = valueToAny(item)
		}
		return out
	default:
		return nil
	}
}
