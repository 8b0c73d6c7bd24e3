package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "equityrun"
	version = "v1.3.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Checklist-driven equity screening engine",
		Version: version,
		Long: `equityrun classifies fundamental metrics against a sector-adjusted
threshold checklist, aggregates them into coverage-adjusted category
scores, and applies a fail-closed eligibility gate per strictness mode.

Market data retrieval and report rendering are external: this tool
consumes a metrics snapshot and emits decision records.`,
	}

	screenCmd := &cobra.Command{
		Use:   "screen",
		Short: "Evaluate a metrics snapshot against the checklist",
		Long:  "Rate every checklist metric, score categories, and gate each ticker as ELIGIBLE, WATCH or INELIGIBLE",
		RunE:  runScreen,
	}
	addScreenFlags(screenCmd.Flags())

	rootCmd.AddCommand(screenCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
