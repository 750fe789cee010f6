package pinecone

import (
	"context"
	"fmt"
	"strings"

	"recommend/internal/adapter/reranker"
	"recommend/internal/domain"
	"recommend/internal/port"
)

var _ port.Reranker = (*Reranker)(nil)

// Reranker calls the hosted cross-encoder rerank endpoint.
type Reranker struct {
	client  *Client
	baseURL string
	model   string
}

type rerankDocument struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type rerankRequest struct {
	Model           string           `json:"model"`
	Query           string           `json:"query"`
	Documents       []rerankDocument `json:"documents"`
	TopN            int              `json:"top_n"`
	ReturnDocuments bool             `json:"return_documents"`
	RankFields      []string         `json:"rank_fields"`
}

type rerankResponse struct {
	Model string `json:"model"`
	Data  []struct {
		Index int     `json:"index"`
		Score float64 `json:"score"`
	} `json:"data"`
	Usage struct {
		RerankUnits int `json:"rerank_units"`
	} `json:"usage"`
}

// NewReranker creates a Pinecone inference reranker.
func NewReranker(client *Client, baseURL, model string) *Reranker {
	if baseURL == "" {
		baseURL = "https://api.pinecone.io"
	}
	if model == "" {
		model = "bge-reranker-v2-m3"
	}
	return &Reranker{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

// Rerank scores docs against query and keeps the topN best. Every failure wraps domain.ErrRerank.
func (r *Reranker) Rerank(ctx context.Context, query string, docs []domain.Document, topN int) ([]domain.RerankedResult, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be a positive integer, got %d", domain.ErrRerank, topN)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	req := rerankRequest{
		Model:           r.model,
		Query:           query,
		Documents:       make([]rerankDocument, len(docs)),
		TopN:            min(topN, len(docs)),
		ReturnDocuments: true,
		RankFields:      []string{"text"},
	}
	for i, d := range docs {
		req.Documents[i] = rerankDocument{ID: d.ID, Text: d.Text}
	}

	var resp rerankResponse
	if err := r.client.doJSON(ctx, "POST", r.baseURL+"/rerank", req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRerank, err)
	}

	scored := make([]reranker.Scored, len(resp.Data))
	for i, d := range resp.Data {
		scored[i] = reranker.Scored{Index: d.Index, Score: d.Score}
	}
	return reranker.BuildResults(docs, scored, topN)
}

// ModelName returns the reranking model.
func (r *Reranker) ModelName() string {
	return r.model
}
