package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"recommend/internal/adapter/output"
	"recommend/internal/domain"
	"recommend/internal/metrics"
	"recommend/internal/port"
)

// Pipeline stage names, used in logs, metrics and progress reporting.
const (
	StageEmbed    = "embed"
	StageRetrieve = "retrieve"
	StagePrepare  = "prepare"
	StageRerank   = "rerank"
	StageFormat   = "format"
	StageSave     = "save"
)

// Stages lists the stages of a run in execution order.
var Stages = []string{StageEmbed, StageRetrieve, StagePrepare, StageRerank, StageFormat}

// RecommendUseCase runs one query through the recommendation pipeline.
type RecommendUseCase struct {
	embedder         port.Embedder
	index            port.VectorIndex
	reranker         port.Reranker
	logger           *zap.Logger
	metrics          *metrics.Pipeline
	descriptionChars int
	onStage          func(stage string)
}

// Options holds optional collaborators of RecommendUseCase.
type Options struct {
	Logger           *zap.Logger
	Metrics          *metrics.Pipeline
	DescriptionChars int                // default 200
	OnStage          func(stage string) // called after each completed stage
}

// NewRecommendUseCase creates a new recommend use case.
func NewRecommendUseCase(embedder port.Embedder, index port.VectorIndex, reranker port.Reranker, opts Options) *RecommendUseCase {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	chars := opts.DescriptionChars
	if chars <= 0 {
		chars = 200
	}
	return &RecommendUseCase{
		embedder:         embedder,
		index:            index,
		reranker:         reranker,
		logger:           logger,
		metrics:          opts.Metrics,
		descriptionChars: chars,
		onStage:          opts.OnStage,
	}
}

// Recommendation is the outcome of one run.
type Recommendation struct {
	Query   string
	Hits    int
	Results []domain.FormattedResult
}

// Recommend runs the pipeline once. The first failing stage aborts the run;
// its error wraps the stage sentinel from internal/domain.
func (u *RecommendUseCase) Recommend(ctx context.Context, query string, topK, topN int) (*Recommendation, error) {
	start := time.Now()
	vector, err := u.embedder.Embed(ctx, query)
	u.metrics.ObserveStage(StageEmbed, start, err)
	if err != nil {
		return nil, u.fail(StageEmbed, domain.ErrEmbedding, err)
	}
	u.logger.Info("Generated embedding for query",
		zap.String("query", query),
		zap.Int("dimension", len(vector)),
	)
	u.done(StageEmbed)

	start = time.Now()
	hits, err := u.index.Query(ctx, vector, topK)
	u.metrics.ObserveStage(StageRetrieve, start, err)
	if err != nil {
		return nil, u.fail(StageRetrieve, domain.ErrRetrieval, err)
	}
	u.metrics.SetItems(StageRetrieve, len(hits))
	u.logger.Info(fmt.Sprintf("Retrieved %d results", len(hits)), zap.String("index", u.index.Name()))
	u.done(StageRetrieve)

	start = time.Now()
	docs, err := PrepareDocuments(hits)
	u.metrics.ObserveStage(StagePrepare, start, err)
	if err != nil {
		return nil, u.fail(StagePrepare, domain.ErrMalformedResponse, err)
	}
	u.metrics.SetItems(StagePrepare, len(docs))
	u.logger.Info(fmt.Sprintf("Prepared %d documents for reranking", len(docs)))
	u.done(StagePrepare)

	start = time.Now()
	reranked, err := u.reranker.Rerank(ctx, query, docs, topN)
	u.metrics.ObserveStage(StageRerank, start, err)
	if err != nil {
		return nil, u.fail(StageRerank, domain.ErrRerank, err)
	}
	u.metrics.SetItems(StageRerank, len(reranked))
	u.logger.Info(fmt.Sprintf("Reranked %d documents", len(reranked)), zap.String("model", u.reranker.ModelName()))
	u.done(StageRerank)

	start = time.Now()
	formatted := FormatResults(reranked, u.descriptionChars)
	u.metrics.ObserveStage(StageFormat, start, nil)
	u.done(StageFormat)

	return &Recommendation{
		Query:   query,
		Hits:    len(hits),
		Results: formatted,
	}, nil
}

// Save writes results to path.
func (u *RecommendUseCase) Save(path string, results []domain.FormattedResult) error {
	start := time.Now()
	err := output.WriteJSON(path, results)
	u.metrics.ObserveStage(StageSave, start, err)
	if err != nil {
		return u.fail(StageSave, domain.ErrOutput, err)
	}
	u.logger.Info("Results saved to " + path)
	return nil
}

// fail logs a stage failure and makes sure the returned error carries sentinel.
func (u *RecommendUseCase) fail(stage string, sentinel, err error) error {
	if !errors.Is(err, sentinel) {
		err = fmt.Errorf("%w: %w", sentinel, err)
	}
	u.logger.Error("Stage failed", zap.String("stage", stage), zap.Error(err))
	return err
}

func (u *RecommendUseCase) done(stage string) {
	if u.onStage != nil {
		u.onStage(stage)
	}
}
