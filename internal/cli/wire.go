package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"recommend/config"
	"recommend/internal/adapter/embedding"
	"recommend/internal/adapter/pinecone"
	"recommend/internal/adapter/qdrant"
	"recommend/internal/adapter/reranker"
	"recommend/internal/domain"
	"recommend/internal/metrics"
	"recommend/internal/port"
	"recommend/internal/usecase"
)

// pipeline bundles the initialized collaborators of one run.
type pipeline struct {
	embedder port.Embedder
	index    port.VectorIndex
	reranker port.Reranker
	metrics  *metrics.Pipeline
	uc       *usecase.RecommendUseCase
	closers  []func() error
}

func (p *pipeline) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// buildPipeline checks credentials and initializes every provider once.
// Missing environment variables fail before any network call. All failures
// wrap domain.ErrInitialization.
func buildPipeline(ctx context.Context, cfg *config.Config, env *config.Env, logger *zap.Logger, onStage func(string)) (*pipeline, error) {
	if err := env.Require(cfg); err != nil {
		logger.Error("Initialization failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrInitialization, err)
	}

	timeout := time.Duration(cfg.HTTP.TimeoutSec) * time.Second
	p := &pipeline{metrics: metrics.NewPipeline()}

	fail := func(what string, err error) (*pipeline, error) {
		p.Close()
		logger.Error("Initialization failed", zap.String("component", what), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInitialization, what, err)
	}

	var err error
	p.embedder, err = newEmbedder(cfg, env, timeout, logger)
	if err != nil {
		return fail("embedder", err)
	}

	p.index, err = newIndex(ctx, cfg, env, timeout, logger, p)
	if err != nil {
		return fail("index", err)
	}

	p.reranker, err = newReranker(cfg, env, timeout, logger)
	if err != nil {
		return fail("reranker", err)
	}

	p.uc = usecase.NewRecommendUseCase(p.embedder, p.index, p.reranker, usecase.Options{
		Logger:           logger,
		Metrics:          p.metrics,
		DescriptionChars: cfg.Output.DescriptionChars,
		OnStage:          onStage,
	})
	return p, nil
}

func newEmbedder(cfg *config.Config, env *config.Env, timeout time.Duration, logger *zap.Logger) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	case "openai":
		return embedding.NewOpenAIEmbedder(embedding.Config{
			APIKey:    env.EmbeddingAPIKey,
			BaseURL:   cfg.Embedding.BaseURL,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
			Timeout:   timeout,
			Logger:    logger,
		})
	}
	return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
}

func newIndex(ctx context.Context, cfg *config.Config, env *config.Env, timeout time.Duration, logger *zap.Logger, p *pipeline) (port.VectorIndex, error) {
	switch cfg.Index.Provider {
	case "pinecone":
		client := pinecone.NewClient(pinecone.ClientConfig{
			APIKey:  env.PineconeAPIKey,
			Timeout: timeout,
			Logger:  logger,
		})
		return pinecone.OpenIndex(ctx, client, pinecone.IndexConfig{
			Environment:   env.PineconeEnvironment,
			IndexName:     env.PineconeIndexName,
			Host:          cfg.Index.Host,
			ControllerURL: cfg.Index.ControllerURL,
			Namespace:     cfg.Index.Namespace,
			Dimension:     cfg.Embedding.Dimension,
		})
	case "qdrant":
		idx, err := qdrant.OpenIndex(ctx, qdrant.Config{
			Host:       cfg.Index.Qdrant.Host,
			Port:       cfg.Index.Qdrant.Port,
			APIKey:     env.QdrantAPIKey,
			UseTLS:     cfg.Index.Qdrant.UseTLS,
			Collection: cfg.Index.Qdrant.Collection,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, idx.Close)
		return idx, nil
	}
	return nil, fmt.Errorf("unknown index provider: %s", cfg.Index.Provider)
}

func newReranker(cfg *config.Config, env *config.Env, timeout time.Duration, logger *zap.Logger) (port.Reranker, error) {
	switch cfg.Rerank.Provider {
	case "pinecone":
		client := pinecone.NewClient(pinecone.ClientConfig{
			APIKey:     env.RerankKey("pinecone"),
			APIVersion: cfg.Rerank.APIVersion,
			Timeout:    timeout,
			Logger:     logger,
		})
		return pinecone.NewReranker(client, cfg.Rerank.BaseURL, cfg.Rerank.Model), nil
	case "cohere":
		return reranker.NewCohereReranker(reranker.CohereConfig{
			APIKey:  env.RerankKey("cohere"),
			Model:   cfg.Rerank.Model,
			BaseURL: cfg.Rerank.BaseURL,
			Timeout: timeout,
			Logger:  logger,
		})
	case "lexical":
		return reranker.NewLexicalReranker(), nil
	}
	return nil, fmt.Errorf("unknown rerank provider: %s", cfg.Rerank.Provider)
}
