package domain

import "time"

// DescriptionPlaceholder is used when a hit carries no description metadata.
const DescriptionPlaceholder = "No description available"

// SearchHit is one nearest-neighbor match returned by the vector index.
type SearchHit struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// Document is the uniform record handed to the reranker.
type Document struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// RerankedResult is a document with the cross-encoder relevance score.
type RerankedResult struct {
	Document Document
	Score    float64
}

// FormattedResult is the presentation record printed and saved at the end of a run.
type FormattedResult struct {
	Rank        int     `json:"rank"`
	Score       float64 `json:"score"`
	ID          string  `json:"id"`
	Description string  `json:"description"`
}

// Run is a recorded pipeline execution.
type Run struct {
	ID             string            `json:"id"`
	Query          string            `json:"query"`
	CreatedAt      time.Time         `json:"created_at"`
	EmbeddingModel string            `json:"embedding_model"`
	RerankModel    string            `json:"rerank_model"`
	TopK           int               `json:"top_k"`
	TopN           int               `json:"top_n"`
	Hits           int               `json:"hits"`
	Results        []FormattedResult `json:"results"`
}
