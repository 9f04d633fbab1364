package main

import (
	"github.com/spf13/cobra"

	"github.com/larkul/openalex-data-bibmet-integration/internal/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts for the raw store and derived tables",
	Run:   runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// StatsResponse is the JSON output of the stats command.
type StatsResponse struct {
	Tables      []storage.TableCount `json:"tables"`
	Unprocessed int                  `json:"unprocessed"`
	Matches     int                  `json:"matches"`
}

func runStats(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		exitWithError(ExitDataError, "opening store: %v", err)
	}
	defer store.Close()

	counts, err := store.Counts()
	if err != nil {
		exitWithError(ExitDataError, "counting tables: %v", err)
	}
	_, unprocessed, err := store.CountRaw()
	if err != nil {
		exitWithError(ExitDataError, "counting raw documents: %v", err)
	}
	matches, err := store.CountMatches()
	if err != nil {
		exitWithError(ExitDataError, "counting matches: %v", err)
	}

	resp := StatsResponse{Tables: counts, Unprocessed: unprocessed, Matches: matches}

	if humanOutput {
		for _, tc := range resp.Tables {
			outputHuman("%-22s %d\n", tc.Table, tc.Rows)
		}
		outputHuman("%-22s %d\n", "unprocessed", resp.Unprocessed)
		outputHuman("%-22s %d\n", "work_matches", resp.Matches)
	} else {
		outputJSON(resp)
	}
}
