package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"recommend/internal/domain"
)

// OpenAIEmbedder embeds text through any OpenAI-compatible /embeddings endpoint
// (OpenAI, Ollama, vLLM, text-embeddings-inference).
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
	logger    *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
	Timeout   time.Duration
	Logger    *zap.Logger
}

// NewOpenAIEmbedder creates an OpenAI-compatible embedder.
func NewOpenAIEmbedder(cfg Config) (*OpenAIEmbedder, error) {
	if cfg.Model == "" {
		return nil, errors.New("embedding model is required")
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", cfg.Dimension)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "ollama" // local servers ignore the key but the client requires one
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		logger:    logger,
	}, nil
}

// Embed returns the embedding of text. Every failure wraps domain.ErrEmbedding.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input", domain.ErrEmbedding)
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		return nil, parseAPIError(err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", domain.ErrEmbedding)
	}

	vec := resp.Data[0].Embedding
	if len(vec) != e.dimension {
		return nil, fmt.Errorf("%w: model %s returned %d dimensions, expected %d",
			domain.ErrEmbedding, e.model, len(vec), e.dimension)
	}

	e.logger.Debug("embedding request done",
		zap.String("model", e.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Duration("latency", time.Since(start)),
	)
	return vec, nil
}

// Dimension returns the embedding vector dimension.
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns the name of the embedding model.
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("%w: embedding API error %d: %s", domain.ErrEmbedding, reqErr.HTTPStatusCode, detail)
		}
		return fmt.Errorf("%w: embedding API error %d: %s", domain.ErrEmbedding, reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: embedding API error %d: %s", domain.ErrEmbedding, apiErr.HTTPStatusCode, apiErr.Message)
	}

	return fmt.Errorf("%w: embedding request failed: %w", domain.ErrEmbedding, err)
}

// extractDetail extracts the "detail" or "error" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	return parsed.Error
}
