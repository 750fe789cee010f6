package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Env holds secrets and identifiers read from the process environment.
type Env struct {
	AppEnv string `env:"RECOMMEND_ENV" envDefault:"local"`

	PineconeAPIKey      string `env:"PINECONE_API_KEY"`
	PineconeEnvironment string `env:"PINECONE_ENVIRONMENT"`
	PineconeIndexName   string `env:"PINECONE_INDEX_NAME"`

	EmbeddingAPIKey string `env:"EMBEDDING_API_KEY"`
	RerankAPIKey    string `env:"RERANK_API_KEY"` // overrides the provider key for rerank calls
	CohereAPIKey    string `env:"COHERE_API_KEY"`
	QdrantAPIKey    string `env:"QDRANT_API_KEY"`
}

// LoadEnv reads .env (if present) and the process environment.
func LoadEnv() (*Env, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	e := &Env{}
	if err := env.Parse(e); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadEnvFrom parses the given variables instead of the process environment.
func LoadEnvFrom(vars map[string]string) (*Env, error) {
	e := &Env{}
	if err := env.ParseWithOptions(e, env.Options{Environment: vars}); err != nil {
		return nil, err
	}
	return e, nil
}

// RerankKey returns the API key used for rerank calls with the given provider.
func (e *Env) RerankKey(provider string) string {
	if e.RerankAPIKey != "" {
		return e.RerankAPIKey
	}
	switch provider {
	case "pinecone":
		return e.PineconeAPIKey
	case "cohere":
		return e.CohereAPIKey
	}
	return ""
}

// Require reports every variable the configured providers need but are missing.
func (e *Env) Require(cfg *Config) error {
	var missing []string
	need := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	if cfg.Index.Provider == "pinecone" {
		need("PINECONE_API_KEY", e.PineconeAPIKey)
		need("PINECONE_ENVIRONMENT", e.PineconeEnvironment)
		need("PINECONE_INDEX_NAME", e.PineconeIndexName)
	}

	switch cfg.Rerank.Provider {
	case "pinecone":
		if e.RerankAPIKey == "" {
			need("PINECONE_API_KEY", e.PineconeAPIKey)
		}
	case "cohere":
		if e.RerankAPIKey == "" {
			need("COHERE_API_KEY", e.CohereAPIKey)
		}
	}

	if len(missing) == 0 {
		return nil
	}
	return errors.New("missing environment variables: " + strings.Join(dedupe(missing), ", "))
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// String hides secrets when the struct is logged.
func (e *Env) String() string {
	return fmt.Sprintf("Env{AppEnv:%s PineconeEnvironment:%s PineconeIndexName:%s}",
		e.AppEnv, e.PineconeEnvironment, e.PineconeIndexName)
}
