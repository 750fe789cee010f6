package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recommend/config"
	"recommend/internal/logger"
)

var (
	cfgFile  string
	cfg      *config.Config
	appEnv   *config.Env
	log      *zap.Logger
	rootDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Product recommendations from a vector index with cross-encoder reranking",
	Long: `recommend embeds a text query, retrieves the nearest products from a vector
index, reranks the candidates with a cross-encoder and prints and saves the
top results.

Credentials are read from the environment (or a .env file):
  PINECONE_API_KEY, PINECONE_ENVIRONMENT, PINECONE_INDEX_NAME

Example usage:
  recommend run                                  # Default query
  recommend run -q "best waterproof camera"      # Custom query
  recommend run -q "tripod" -k 100 -n 5 --json   # Wider recall, JSON output
  recommend check                                # Verify credentials and index`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.LoadExisting(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		appEnv, err = config.LoadEnv()
		if err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		log, err = logger.NewLogger(appEnv.AppEnv, level)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		return nil
	},
}

// historyPath resolves a relative history.path against --dir.
func historyPath() string {
	path := GetConfig().History.Path
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}

// Execute runs the root command. SIGINT and SIGTERM cancel in-flight requests.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if log != nil {
		_ = log.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./recommend.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "directory to look for the config file in (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
}

// GetConfig returns the configuration loaded by the root command.
func GetConfig() *config.Config {
	return cfg
}

// GetLogger returns the command logger, or a no-op logger before it is built.
func GetLogger() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
