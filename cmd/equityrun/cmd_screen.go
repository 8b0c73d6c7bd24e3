package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/equityrun/equityrun/internal/checklist"
	"github.com/equityrun/equityrun/internal/gates"
	"github.com/equityrun/equityrun/internal/screen"
	"github.com/equityrun/equityrun/internal/telemetry"
)

func addScreenFlags(fs *pflag.FlagSet) {
	fs.String("checklist", "config/checklist.yaml", "Threshold checklist file")
	fs.String("rules", "config/eligibility.yaml", "Eligibility rule sets (falls back to built-ins)")
	fs.String("input", "", "Metrics snapshot JSON (symbol -> payload), required")
	fs.String("mode", "screen", "Strictness mode (strict|permissible|loose or legacy aliases)")
	fs.String("out", "", "Write full reports as JSON to this file (default stdout summary only)")
	fs.Bool("keep-failed", false, "Include INELIGIBLE tickers in the output")
	fs.String("metrics-addr", "", "Serve Prometheus metrics on this address while screening")
}

// snapshotEntry is one ticker's payload in the input file.
type snapshotEntry struct {
	SectorBucket  string              `json:"sector_bucket"`
	Values        map[string]*float64 `json:"values"`
	Notes         map[string]string   `json:"notes"`
	ReversalTotal *float64            `json:"reversal_total"`
	DownsideLabel string              `json:"downside_protection"`
}

func runScreen(cmd *cobra.Command, args []string) error {
	checklistPath, _ := cmd.Flags().GetString("checklist")
	rulesPath, _ := cmd.Flags().GetString("rules")
	inputPath, _ := cmd.Flags().GetString("input")
	mode, _ := cmd.Flags().GetString("mode")
	outPath, _ := cmd.Flags().GetString("out")
	keepFailed, _ := cmd.Flags().GetBool("keep-failed")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	if inputPath == "" {
		return fmt.Errorf("--input is required")
	}

	spec, err := checklist.Load(checklistPath)
	if err != nil {
		return err
	}
	rules := gates.LoadRuleSets(rulesPath)

	snapshot, err := loadSnapshot(inputPath)
	if err != nil {
		return err
	}

	scr := screen.NewScreener(spec, rules, log.Logger)

	metrics := telemetry.NewMetrics()
	scr.AttachTelemetry(metrics)
	if metricsAddr != "" {
		go serveMetrics(metricsAddr, metrics)
	}

	symbols := make([]string, 0, len(snapshot))
	for sym := range snapshot {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	log.Info().
		Int("tickers", len(symbols)).
		Str("mode", string(gates.ResolveMode(mode))).
		Str("checklist", checklistPath).
		Msg("screening started")

	var reports []*screen.TickerReport
	counts := map[gates.Status]int{}

	for _, sym := range symbols {
		entry := snapshot[sym]
		report := scr.Evaluate(screen.Input{
			Symbol:        sym,
			SectorBucket:  entry.SectorBucket,
			Mode:          mode,
			Values:        entry.Values,
			Notes:         entry.Notes,
			ReversalTotal: entry.ReversalTotal,
			DownsideLabel: entry.DownsideLabel,
		})
		counts[report.Eligibility.Status]++

		if report.Eligibility.Status == gates.StatusFail && !keepFailed {
			log.Info().
				Str("symbol", sym).
				Str("reason", report.Eligibility.ReasonsText(1)).
				Msg("dropped")
			continue
		}
		reports = append(reports, report)
	}

	log.Info().
		Int("eligible", counts[gates.StatusPass]).
		Int("watch", counts[gates.StatusWatch]).
		Int("ineligible", counts[gates.StatusFail]).
		Msg("screening complete")

	return writeReports(outPath, reports)
}

func loadSnapshot(path string) (map[string]snapshotEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var snapshot map[string]snapshotEntry
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return snapshot, nil
}

func writeReports(outPath string, reports []*screen.TickerReport) error {
	out, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}
	if outPath == "" {
		for _, r := range reports {
			fmt.Printf("%-8s %-12s cov %5.1f%%  %s\n",
				r.Symbol, r.Eligibility.Label, r.OverallCoverage, r.Eligibility.ReasonsText(3))
		}
		return nil
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	log.Info().Str("path", outPath).Int("reports", len(reports)).Msg("reports written")
	return nil
}

func serveMetrics(addr string, metrics *telemetry.Metrics) {
	r := mux.NewRouter()
	r.Handle("/metrics", metrics.Handler()).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ok"}`)
	}).Methods("GET")

	log.Info().Str("addr", addr).Msg("metrics endpoint listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Warn().Err(err).Msg("metrics endpoint stopped")
	}
}
