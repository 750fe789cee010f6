// Package pinecone talks to the Pinecone REST API: index resolution through
// the environment controller, vector queries against the index host, and
// hosted reranking through the inference API.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client holds credentials and the HTTP transport shared by Index and Reranker.
type Client struct {
	apiKey     string
	apiVersion string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientConfig holds client settings.
type ClientConfig struct {
	APIKey     string
	APIVersion string // sent as X-Pinecone-API-Version when set
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewClient creates a Pinecone REST client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// APIError is a non-2xx answer from Pinecone.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pinecone API returned status %d: %s", e.StatusCode, e.Body)
}

// doJSON sends in (if non-nil) as JSON and decodes the response into out.
func (c *Client) doJSON(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiVersion != "" {
		req.Header.Set("X-Pinecone-API-Version", c.apiVersion)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("pinecone request",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: preview(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response (body: %s): %w", preview(respBody), err)
	}
	return nil
}

func preview(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
