package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/factory"
	redisstorage "github.com/jkrumboe/wizard-tracker-sub001/internal/storage/redis"
)

var (
	storageType string
	redisURL    string
	verbose     bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wizardelo",
		Short: "Rating engine for the wizard score tracker",
		Long: `wizardelo manages the multi-player skill ratings derived from
finished games: serving the rating API, rebuilding ratings from the
historical game corpus, and inspecting leaderboards.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Best effort; a missing .env is fine
			_ = godotenv.Load()

			if storageType == "" {
				storageType = os.Getenv("STORAGE_TYPE")
			}
			if redisURL == "" {
				redisURL = os.Getenv("REDIS_URL")
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&storageType, "storage", "", "Storage backend: memory, redis (env: STORAGE_TYPE)")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis-url", "", "Redis URL (env: REDIS_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRecalculateCmd())
	rootCmd.AddCommand(newRankingsCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the CLI's logger honoring the verbose flag
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newApp wires an application from the CLI's storage flags
func newApp(logger *slog.Logger) (*factory.App, error) {
	cfg := factory.Config{
		Logger:      logger,
		StorageType: storageType,
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		if redisURL != "" {
			redisCfg.URL = redisURL
		}
		cfg.RedisConfig = &redisCfg
	}

	return factory.New(cfg)
}
