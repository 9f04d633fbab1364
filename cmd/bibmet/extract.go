package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/larkul/openalex-data-bibmet-integration/internal/pipeline"
	"github.com/larkul/openalex-data-bibmet-integration/internal/storage"
)

var (
	extractBatchSize int
	extractClean     bool
	extractMatch     string
	extractNoMatch   bool
	extractOnlyMatch bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Normalize raw OpenAlex documents into the relational schema",
	Long: `Extract drains unprocessed raw documents in bounded batches,
normalizes each into entity and relation records and loads them with
idempotent upserts. Every document is marked processed after its single
attempt, success or failure; failures are logged and counted, never
retried automatically. After loading, the matching script runs unless
disabled.`,
	Run: runExtract,
}

func init() {
	extractCmd.Flags().IntVar(&extractBatchSize, "batch-size", 0, "Raw documents per fetch round (default from config)")
	extractCmd.Flags().BoolVar(&extractClean, "clean", false, "Clear derived tables and reset processed flags before extracting")
	extractCmd.Flags().StringVar(&extractMatch, "match", "", "Path to the matching SQL script")
	extractCmd.Flags().BoolVar(&extractNoMatch, "no-match", false, "Skip the matching step")
	extractCmd.Flags().BoolVar(&extractOnlyMatch, "only-match", false, "Run only the matching step, skip extraction")
	rootCmd.AddCommand(extractCmd)
}

// ExtractResponse is the JSON summary of an extract run.
type ExtractResponse struct {
	Stats   pipeline.Stats `json:"stats"`
	Matches *int           `json:"matches,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if extractBatchSize > 0 {
		cfg.BatchSize = extractBatchSize
	}
	if extractMatch != "" {
		cfg.MatchScript = extractMatch
	}

	log, err := newLogger(cfg.LogFile)
	if err != nil {
		exitWithError(ExitError, "creating logger: %v", err)
	}
	defer log.Sync()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		exitWithError(ExitDataError, "opening store: %v", err)
	}
	defer store.Close()

	log.Infow("starting extraction", "db", cfg.DBPath, "batch_size", cfg.BatchSize)

	if extractClean && !extractOnlyMatch {
		log.Infow("cleaning derived tables")
		if err := store.Clean(); err != nil {
			exitWithError(ExitDataError, "cleaning: %v", err)
		}
	}

	var resp ExtractResponse
	if !extractOnlyMatch {
		driver := pipeline.New(store, log, cfg.BatchSize)
		stats, err := driver.Run()
		if err != nil {
			exitWithError(ExitDataError, "extracting: %v", err)
		}
		resp.Stats = stats
	} else {
		log.Infow("skipping extraction (only-match mode)")
	}

	if !extractNoMatch && cfg.MatchScript != "" {
		script, err := os.ReadFile(cfg.MatchScript)
		if err != nil {
			// Matching never rolls back committed loads; a missing or
			// failing script is reported and the run still succeeds.
			log.Errorw("reading match script", "path", cfg.MatchScript, "error", err)
		} else {
			matches, err := store.RunMatch(string(script))
			if err != nil {
				log.Errorw("running match script", "path", cfg.MatchScript, "error", err)
			} else {
				log.Infow("matching complete", "matches", matches)
				resp.Matches = &matches
			}
		}
	}

	if humanOutput {
		outputHuman("attempted: %d\nloaded: %d\nfailed: %d\nworks: %d\nbatches: %d\n",
			resp.Stats.Attempted, resp.Stats.Loaded, resp.Stats.Failed,
			resp.Stats.Works, resp.Stats.Batches)
		if resp.Matches != nil {
			outputHuman("matches: %d\n", *resp.Matches)
		}
	} else {
		outputJSON(resp)
	}
}
