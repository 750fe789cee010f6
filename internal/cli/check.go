package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recommend/internal/domain"
)

const checkText = "dimension check"

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify credentials, index and embedder without running a query",
	Long: `Initialize every provider the way 'run' does, then embed a sample text to
confirm the embedder returns vectors of the configured dimension. No
retrieval or rerank request is sent.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	logger := GetLogger()
	ctx := cmd.Context()

	p, err := buildPipeline(ctx, cfg, appEnv, logger, nil)
	if err != nil {
		return err
	}
	defer p.Close()

	vec, err := p.embedder.Embed(ctx, checkText)
	if err != nil {
		return fmt.Errorf("%w: embedder check: %w", domain.ErrInitialization, err)
	}
	if len(vec) != p.embedder.Dimension() {
		return fmt.Errorf("%w: embedder returned %d dimensions, expected %d",
			domain.ErrInitialization, len(vec), p.embedder.Dimension())
	}
	logger.Debug("Embedder check", zap.Int("dimension", len(vec)))

	fmt.Printf("Embedder:  %s (%d dimensions)\n", p.embedder.ModelName(), p.embedder.Dimension())
	fmt.Printf("Index:     %s (%s)\n", p.index.Name(), cfg.Index.Provider)
	fmt.Printf("Reranker:  %s (%s)\n", p.reranker.ModelName(), cfg.Rerank.Provider)
	fmt.Println("OK")
	return nil
}
