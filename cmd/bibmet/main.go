// Package main provides the bibmet CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/larkul/openalex-data-bibmet-integration/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

// Persistent flags shared by all subcommands.
var (
	humanOutput bool
	configPath  string
	dbPath      string
	logFile     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibmet",
	Short: "OpenAlex to bibmet integration pipeline",
	Long: `bibmet harvests scholarly works from the OpenAlex API into a raw
document store and normalizes them into a relational schema of works,
authors, institutions, sources, topics, concepts and keywords.

The extract step is restartable: raw documents are processed in bounded
batches and marked as they go, so an interrupted run picks up where it
left off and re-asserts already-committed facts idempotently.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A local .env is optional; real environments set variables directly.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database")
	rootCmd.PersistentFlags().StringVar(&logFile, "logfile", "", "Log file path (in addition to stderr)")
	rootCmd.Version = Version
}

// loadConfig resolves configuration with flag overrides applied.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	return cfg, nil
}

// newLogger builds the structured log stream: JSON records with ISO-8601
// timestamps to stderr, plus the configured log file if any.
func newLogger(logFile string) (*zap.SugaredLogger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{"stderr"}
	if logFile != "" {
		zapCfg.OutputPaths = append(zapCfg.OutputPaths, logFile)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
