package pinecone

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"recommend/internal/domain"
	"recommend/internal/port"
)

var _ port.VectorIndex = (*Index)(nil)

// Index queries one Pinecone index through its data-plane host.
type Index struct {
	client    *Client
	name      string
	host      string
	namespace string
}

// IndexConfig identifies the index to open.
type IndexConfig struct {
	Environment   string
	IndexName     string
	Host          string // skips the describe call when set
	ControllerURL string // overrides https://controller.{environment}.pinecone.io
	Namespace     string
	Dimension     int // checked against the index dimension when both are known
}

type describeResponse struct {
	Database struct {
		Name      string `json:"name"`
		Dimension int    `json:"dimension"`
		Metric    string `json:"metric"`
	} `json:"database"`
	Status struct {
		Ready bool   `json:"ready"`
		State string `json:"state"`
		Host  string `json:"host"`
	} `json:"status"`
}

// OpenIndex resolves the index host once. It is the only control-plane call of a run.
func OpenIndex(ctx context.Context, client *Client, cfg IndexConfig) (*Index, error) {
	if cfg.IndexName == "" {
		return nil, errors.New("index name is required")
	}

	host := cfg.Host
	if host == "" {
		if cfg.Environment == "" && cfg.ControllerURL == "" {
			return nil, errors.New("environment is required to resolve the index host")
		}
		controller := cfg.ControllerURL
		if controller == "" {
			controller = fmt.Sprintf("https://controller.%s.pinecone.io", cfg.Environment)
		}
		endpoint := strings.TrimRight(controller, "/") + "/databases/" + url.PathEscape(cfg.IndexName)

		var desc describeResponse
		if err := client.doJSON(ctx, "GET", endpoint, nil, &desc); err != nil {
			return nil, fmt.Errorf("describe index %s: %w", cfg.IndexName, err)
		}
		if !desc.Status.Ready {
			return nil, fmt.Errorf("index %s is not ready (state: %s)", cfg.IndexName, desc.Status.State)
		}
		if desc.Status.Host == "" {
			return nil, fmt.Errorf("index %s: describe response has no host", cfg.IndexName)
		}
		if cfg.Dimension > 0 && desc.Database.Dimension > 0 && cfg.Dimension != desc.Database.Dimension {
			return nil, fmt.Errorf("index %s has dimension %d, embedder produces %d",
				cfg.IndexName, desc.Database.Dimension, cfg.Dimension)
		}
		host = desc.Status.Host
	}

	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	client.logger.Info("Pinecone initialized successfully",
		zap.String("index", cfg.IndexName),
		zap.String("host", host),
	)

	return &Index{
		client:    client,
		name:      cfg.IndexName,
		host:      strings.TrimRight(host, "/"),
		namespace: cfg.Namespace,
	}, nil
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	IncludeValues   bool      `json:"includeValues"`
	Namespace       string    `json:"namespace,omitempty"`
}

type queryMatch struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

type queryResponse struct {
	Matches   *[]queryMatch `json:"matches"`
	Namespace string        `json:"namespace"`
}

// Query returns up to topK nearest hits. Every failure wraps domain.ErrRetrieval.
func (i *Index) Query(ctx context.Context, vector []float32, topK int) ([]domain.SearchHit, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be a positive integer, got %d", domain.ErrRetrieval, topK)
	}

	req := queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
		Namespace:       i.namespace,
	}

	var resp queryResponse
	if err := i.client.doJSON(ctx, "POST", i.host+"/query", req, &resp); err != nil {
		return nil, fmt.Errorf("%w: query index %s: %w", domain.ErrRetrieval, i.name, err)
	}
	if resp.Matches == nil {
		return nil, fmt.Errorf("%w: %w: query response has no matches field", domain.ErrRetrieval, domain.ErrMalformedResponse)
	}

	matches := *resp.Matches
	if len(matches) > topK {
		matches = matches[:topK]
	}

	hits := make([]domain.SearchHit, len(matches))
	for j, m := range matches {
		hits[j] = domain.SearchHit{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		}
	}
	return hits, nil
}

// Name returns the index name.
func (i *Index) Name() string {
	return i.name
}
