package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recommend/config"
	"recommend/internal/adapter/store"
	"recommend/internal/domain"
	"recommend/internal/usecase"
)

var (
	runQuery  string
	runTopK   int
	runTopN   int
	runOutput string
	runJSON   bool
	runQuiet  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Recommend products for a query",
	Long: `Embed the query, retrieve the nearest products, rerank them and print and
save the top results.

Examples:
  recommend run
  recommend run -q "best waterproof camera" -n 5
  recommend run -q "drone" -k 100 -o drones.json --json`,
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runQuery, "query", "q", "", "query text (default from config)")
	runCmd.Flags().IntVarP(&runTopK, "top-k", "k", 0, "number of candidates to retrieve (default from config)")
	runCmd.Flags().IntVarP(&runTopN, "top-n", "n", 0, "number of results to keep after reranking (default from config)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "results file (default from config)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print results as JSON")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "do not print results or progress")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	logger := GetLogger()
	ctx := cmd.Context()

	query := cfg.Retrieve.Query
	if runQuery != "" {
		query = runQuery
	}
	topK := cfg.Retrieve.TopK
	if cmd.Flags().Changed("top-k") {
		topK = runTopK
	}
	topN := cfg.Retrieve.TopN
	if cmd.Flags().Changed("top-n") {
		topN = runTopN
	}
	outPath := cfg.Output.File
	if runOutput != "" {
		outPath = runOutput
	}

	var bar *progressbar.ProgressBar
	onStage := func(stage string) {}
	if !runQuiet {
		bar = newStageBar()
		onStage = func(stage string) {
			bar.Describe("[cyan]" + stage + "[reset]")
			bar.Add(1)
		}
	}

	p, err := buildPipeline(ctx, cfg, appEnv, logger, onStage)
	if err != nil {
		return err
	}
	defer p.Close()
	defer writeMetrics(p, cfg, logger)

	rec, err := p.uc.Recommend(ctx, query, topK, topN)
	if err != nil {
		return err
	}
	if bar != nil {
		bar.Finish()
	}

	if !runQuiet {
		if runJSON {
			output, _ := json.MarshalIndent(rec.Results, "", "  ")
			fmt.Println(string(output))
		} else if err := usecase.DisplayResults(os.Stdout, rec.Results); err != nil {
			return err
		}
	}

	if err := p.uc.Save(outPath, rec.Results); err != nil {
		return err
	}

	if cfg.History.Enabled {
		recordRun(historyPath(), logger, domain.Run{
			ID:             uuid.NewString(),
			Query:          rec.Query,
			CreatedAt:      time.Now().UTC(),
			EmbeddingModel: p.embedder.ModelName(),
			RerankModel:    p.reranker.ModelName(),
			TopK:           topK,
			TopN:           topN,
			Hits:           rec.Hits,
			Results:        rec.Results,
		})
	}

	return nil
}

func newStageBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(len(usecase.Stages),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]starting[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

// writeMetrics exports stage metrics when a textfile is configured. Export
// failures are logged and never fail the run.
func writeMetrics(p *pipeline, cfg *config.Config, logger *zap.Logger) {
	if cfg.Metrics.Textfile == "" {
		return
	}
	if err := p.metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logger.Warn("Failed to write metrics", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
	}
}

// recordRun appends the run to the history store. History is best effort.
func recordRun(path string, logger *zap.Logger, run domain.Run) {
	if err := config.EnsureParentDir(path); err != nil {
		logger.Warn("Failed to create history directory", zap.Error(err))
		return
	}
	st, err := store.NewHistoryStore(path)
	if err != nil {
		logger.Warn("Failed to open history", zap.Error(err))
		return
	}
	defer st.Close()

	if err := st.PutRun(run); err != nil {
		logger.Warn("Failed to record run", zap.Error(err))
		return
	}
	logger.Debug("Run recorded", zap.String("id", run.ID))
}
