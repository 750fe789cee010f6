package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"recommend/internal/domain"
)

// Cohere has a limit of 1000 documents per request.
const cohereMaxDocs = 1000

// CohereReranker implements cross-encoder reranking using Cohere's API.
type CohereReranker struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// CohereConfig holds Cohere reranker settings.
type CohereConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Cohere API types
type cohereRerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model"`
	TopN      int      `json:"top_n,omitempty"`
}

type cohereRerankResponse struct {
	Results []cohereRerankResult `json:"results"`
}

type cohereRerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// NewCohereReranker creates a new Cohere reranker.
func NewCohereReranker(cfg CohereConfig) (*CohereReranker, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("cohere API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "rerank-english-v3.0"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.cohere.ai"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CohereReranker{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Rerank scores and reorders documents based on query relevance.
func (r *CohereReranker) Rerank(ctx context.Context, query string, docs []domain.Document, topN int) ([]domain.RerankedResult, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be a positive integer, got %d", domain.ErrRerank, topN)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	if len(docs) > cohereMaxDocs {
		return nil, fmt.Errorf("%w: cohere accepts at most %d documents, got %d", domain.ErrRerank, cohereMaxDocs, len(docs))
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}

	reqBody := cohereRerankRequest{
		Query:     query,
		Documents: texts,
		Model:     r.model,
		TopN:      min(topN, len(docs)),
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %w", domain.ErrRerank, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/v1/rerank", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", domain.ErrRerank, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", domain.ErrRerank, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", domain.ErrRerank, err)
	}

	r.logger.Debug("cohere rerank",
		zap.Int("status", resp.StatusCode),
		zap.Int("documents", len(docs)),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API returned status %d: %s", domain.ErrRerank, resp.StatusCode, string(body))
	}

	var rerankResp cohereRerankResponse
	if err := json.Unmarshal(body, &rerankResp); err != nil {
		return nil, fmt.Errorf("%w: %w: failed to parse response: %w", domain.ErrRerank, domain.ErrMalformedResponse, err)
	}

	scored := make([]Scored, len(rerankResp.Results))
	for i, res := range rerankResp.Results {
		scored[i] = Scored{Index: res.Index, Score: res.RelevanceScore}
	}
	return BuildResults(docs, scored, topN)
}

// ModelName returns the model name.
func (r *CohereReranker) ModelName() string {
	return r.model
}
