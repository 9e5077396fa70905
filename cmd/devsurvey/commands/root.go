package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"devsurvey/internal/cache"
	"devsurvey/internal/config"
	"devsurvey/internal/logger"
)

var (
	configPath *string
	logLevel   *string
)

var rootCmd = &cobra.Command{
	Use:           "devsurvey",
	Short:         "devsurvey builds analysis tables from developer surveys and salary pages.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "configs/devsurvey.yaml", "Path to the YAML config file.")
	logLevel = rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level.")
}

// ExecuteContext runs the root command and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every subcommand needs to run.
type env struct {
	cfg   *config.Config
	log   *logger.Logger
	cache *cache.Manager
}

func setup() (*env, error) {
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return nil, err
	}

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	log := logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	cm := cache.NewManager(cfg.Cache.DataDir, log)
	log.Debug("Loaded configuration", "config", cfg.String(), "run_id", cm.RunID())

	return &env{cfg: cfg, log: log, cache: cm}, nil
}
