package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// DefaultQuery is used when no query is given on the command line.
const DefaultQuery = "What camera is best for underwater photography?"

const (
	pineconeRerankModel  = "bge-reranker-v2-m3"
	pineconeInferenceURL = "https://api.pinecone.io"
	cohereRerankModel    = "rerank-english-v3.0"
	cohereBaseURL        = "https://api.cohere.ai"
)

// Config holds all configuration for the recommend tool.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Rerank    RerankConfig    `yaml:"rerank"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Output    OutputConfig    `yaml:"output"`
	HTTP      HTTPConfig      `yaml:"http"`
	History   HistoryConfig   `yaml:"history"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai", "mock"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
}

// IndexConfig holds vector index configuration.
type IndexConfig struct {
	Provider      string       `yaml:"provider"`       // "pinecone", "qdrant"
	Host          string       `yaml:"host"`           // skips index resolution when set
	ControllerURL string       `yaml:"controller_url"` // default https://controller.{environment}.pinecone.io
	Namespace     string       `yaml:"namespace"`
	Qdrant        QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig holds qdrant connection settings.
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
	UseTLS     bool   `yaml:"use_tls"`
}

// RerankConfig holds reranking configuration.
type RerankConfig struct {
	Provider   string `yaml:"provider"` // "pinecone", "cohere", "lexical"
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	APIVersion string `yaml:"api_version"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	Query string `yaml:"query"`
	TopK  int    `yaml:"top_k"`
	TopN  int    `yaml:"top_n"`
}

// OutputConfig holds presentation settings.
type OutputConfig struct {
	File             string `yaml:"file"`
	DescriptionChars int    `yaml:"description_chars"`
}

// HTTPConfig holds outbound HTTP settings.
type HTTPConfig struct {
	TimeoutSec int `yaml:"timeout_sec"`
}

// HistoryConfig holds run history settings.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // empty disables the export
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "all-minilm",
			BaseURL:   "http://localhost:11434/v1",
			Dimension: 384,
		},
		Index: IndexConfig{
			Provider: "pinecone",
			Qdrant: QdrantConfig{
				Host:       "localhost",
				Port:       6334,
				Collection: "products",
			},
		},
		Rerank: RerankConfig{
			Provider:   "pinecone",
			Model:      pineconeRerankModel,
			BaseURL:    pineconeInferenceURL,
			APIVersion: "2025-01",
		},
		Retrieve: RetrieveConfig{
			Query: DefaultQuery,
			TopK:  50,
			TopN:  10,
		},
		Output: OutputConfig{
			File:             "recommendations.json",
			DescriptionChars: 200,
		},
		HTTP: HTTPConfig{
			TimeoutSec: 60,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    filepath.Join(".recommend", "history.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.applyProviderDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadExisting is Load for an explicitly named file: a missing file is an error.
func LoadExisting(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return Load(path)
}

// configPatterns are tried in order when looking for a config file in a directory.
var configPatterns = []string{
	"recommend.{yaml,yml}",
	".recommend/config.{yaml,yml}",
}

// LoadFromDir loads configuration from a directory (looks for recommend.yaml).
func LoadFromDir(dir string) (*Config, error) {
	fsys := os.DirFS(dir)
	for _, pattern := range configPatterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("bad config pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return Load(filepath.Join(dir, filepath.FromSlash(matches[0])))
	}

	// Return defaults
	return DefaultConfig(), nil
}

// applyProviderDefaults swaps the Pinecone rerank defaults for Cohere ones
// when the file selects cohere without naming a model or endpoint.
func (c *Config) applyProviderDefaults() {
	if c.Rerank.Provider != "cohere" {
		return
	}
	if c.Rerank.Model == pineconeRerankModel {
		c.Rerank.Model = cohereRerankModel
	}
	if c.Rerank.BaseURL == pineconeInferenceURL {
		c.Rerank.BaseURL = cohereBaseURL
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	var errs []error

	switch c.Embedding.Provider {
	case "openai", "mock":
	default:
		errs = append(errs, fmt.Errorf("embedding.provider must be \"openai\" or \"mock\", got %q", c.Embedding.Provider))
	}
	if c.Embedding.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("embedding.dimension must be positive, got %d", c.Embedding.Dimension))
	}

	switch c.Index.Provider {
	case "pinecone":
	case "qdrant":
		if c.Index.Qdrant.Collection == "" {
			errs = append(errs, errors.New("index.qdrant.collection is required"))
		}
		if c.Index.Qdrant.Port <= 0 || c.Index.Qdrant.Port > 65535 {
			errs = append(errs, fmt.Errorf("index.qdrant.port must be between 1 and 65535, got %d", c.Index.Qdrant.Port))
		}
	default:
		errs = append(errs, fmt.Errorf("index.provider must be \"pinecone\" or \"qdrant\", got %q", c.Index.Provider))
	}

	switch c.Rerank.Provider {
	case "pinecone", "cohere", "lexical":
	default:
		errs = append(errs, fmt.Errorf("rerank.provider must be \"pinecone\", \"cohere\" or \"lexical\", got %q", c.Rerank.Provider))
	}

	if c.Retrieve.TopK <= 0 {
		errs = append(errs, fmt.Errorf("retrieve.top_k must be positive, got %d", c.Retrieve.TopK))
	}
	if c.Retrieve.TopN <= 0 {
		errs = append(errs, fmt.Errorf("retrieve.top_n must be positive, got %d", c.Retrieve.TopN))
	}
	if c.Output.File == "" {
		errs = append(errs, errors.New("output.file is required"))
	}
	if c.Output.DescriptionChars <= 0 {
		errs = append(errs, fmt.Errorf("output.description_chars must be positive, got %d", c.Output.DescriptionChars))
	}
	if c.HTTP.TimeoutSec < 0 {
		errs = append(errs, fmt.Errorf("http.timeout_sec must not be negative, got %d", c.HTTP.TimeoutSec))
	}
	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, errors.New("history.path is required when history is enabled"))
	}

	return errors.Join(errs...)
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EnsureParentDir ensures the directory holding path exists.
func EnsureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}
