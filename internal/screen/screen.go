// Package screen runs the full per-ticker pipeline: threshold selection,
// outlier guarding, rating, category scoring, blending and gating.
package screen

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/equityrun/equityrun/internal/checklist"
	"github.com/equityrun/equityrun/internal/gates"
	"github.com/equityrun/equityrun/internal/ranges"
	"github.com/equityrun/equityrun/internal/scoring"
	"github.com/equityrun/equityrun/internal/telemetry"
)

// Screener evaluates tickers against an immutable threshold spec and rule
// table. All dependencies are injected up front; a Screener is safe for
// concurrent use once constructed.
type Screener struct {
	spec    checklist.Spec
	gate    *gates.Gate
	log     zerolog.Logger
	metrics *telemetry.Metrics
}

// NewScreener builds a screener over pre-loaded thresholds and rules.
func NewScreener(spec checklist.Spec, rules gates.RuleSets, log zerolog.Logger) *Screener {
	return &Screener{
		spec: spec,
		gate: gates.NewGate(rules),
		log:  log,
	}
}

// AttachTelemetry enables Prometheus recording. Call before first use.
func (s *Screener) AttachTelemetry(m *telemetry.Metrics) {
	s.metrics = m
}

// Input is one ticker's externally supplied evaluation payload. Values
// maps canonical metric names to numbers; nil means the provider had no
// data. The screener performs no retries or network I/O of its own.
type Input struct {
	Symbol        string              `json:"symbol"`
	SectorBucket  string              `json:"sector_bucket"`
	Mode          string              `json:"mode"`
	Values        map[string]*float64 `json:"values"`
	Notes         map[string]string   `json:"notes,omitempty"`
	ReversalTotal *float64            `json:"reversal_total,omitempty"`
	DownsideLabel string              `json:"downside_protection,omitempty"`
}

// MetricRow is one evaluated checklist line, ready for rendering.
type MetricRow struct {
	Category       checklist.Category `json:"category"`
	Metric         string             `json:"metric"`
	Value          *float64           `json:"value"`
	Rating         scoring.Rating     `json:"rating"`
	Points         *int               `json:"points"`
	Weight         float64            `json:"weight"`
	WeightedPoints *float64           `json:"weighted_points"`
	SectorMode     string             `json:"sector_mode"`
	Limits         string             `json:"limits"`
	Notes          string             `json:"notes,omitempty"`
}

// TickerReport is the immutable outcome of one evaluation.
type TickerReport struct {
	RunID        string    `json:"run_id"`
	Symbol       string    `json:"symbol"`
	SectorBucket string    `json:"sector_bucket"`
	Timestamp    time.Time `json:"timestamp"`

	Rows       []MetricRow                                  `json:"rows"`
	Categories map[checklist.Category]scoring.CategoryScore `json:"categories"`

	FundamentalRaw      *float64 `json:"fundamental_raw_pct"`
	FundamentalAdjusted *float64 `json:"fundamental_adjusted_pct"`
	OverallCoverage     float64  `json:"overall_coverage_pct"`

	Eligibility gates.EligibilityResult `json:"eligibility"`
}

// Evaluate runs the classification, aggregation and gating pipeline for
// one ticker. Pure apart from logging and optional telemetry.
func (s *Screener) Evaluate(in Input) *TickerReport {
	start := time.Now()

	bucket := in.SectorBucket
	if bucket == "" {
		bucket = checklist.DefaultBucket
	}

	report := &TickerReport{
		RunID:        uuid.NewString(),
		Symbol:       in.Symbol,
		SectorBucket: bucket,
		Timestamp:    start,
		Categories:   make(map[checklist.Category]scoring.CategoryScore, len(checklist.Categories)),
	}

	catRatings := make(map[checklist.Category]map[string]scoring.Rating, len(checklist.Categories))
	catWeights := make(map[checklist.Category]map[string]float64, len(checklist.Categories))

	for _, cat := range checklist.Categories {
		catRatings[cat] = make(map[string]scoring.Rating)
		catWeights[cat] = make(map[string]float64)

		for _, metric := range s.spec.Metrics(cat) {
			row := s.evaluateMetric(cat, metric, bucket, in)
			report.Rows = append(report.Rows, row)

			catRatings[cat][metric] = row.Rating
			catWeights[cat][metric] = row.Weight

			if s.metrics != nil {
				s.metrics.RecordRating(string(cat), string(row.Rating))
			}
		}
	}

	rawByCat := make(map[checklist.Category]*float64, len(checklist.Categories))
	adjByCat := make(map[checklist.Category]*float64, len(checklist.Categories))
	covByCat := make(map[checklist.Category]float64, len(checklist.Categories))

	for _, cat := range checklist.Categories {
		raw, cov := scoring.ScoreCategory(catRatings[cat], catWeights[cat])
		raw = scoring.ApplyCategoryCaps(cat, raw, catRatings[cat])
		adj := scoring.AdjustForCoverage(raw, cov)

		report.Categories[cat] = scoring.CategoryScore{Raw: raw, Coverage: cov, Adjusted: adj}
		rawByCat[cat] = raw
		adjByCat[cat] = adj
		covByCat[cat] = cov
	}

	report.FundamentalRaw = scoring.Blend(rawByCat)
	report.FundamentalAdjusted = scoring.Blend(adjByCat)
	report.OverallCoverage = scoring.BlendFloats(covByCat)

	report.Eligibility = s.gate.Evaluate(gates.Inputs{
		Mode:                in.Mode,
		CategoryAdjusted:    adjByCat,
		CategoryCoverage:    covByCat,
		CategoryRatings:     catRatings,
		SectorBucket:        bucket,
		FundamentalAdjusted: report.FundamentalAdjusted,
		ReversalTotal:       in.ReversalTotal,
		DownsideLabel:       in.DownsideLabel,
	})

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordEvaluation(string(gates.ResolveMode(in.Mode)), string(report.Eligibility.Status), elapsed)
	}

	evt := s.log.Debug()
	if report.Eligibility.Status == gates.StatusFail {
		evt = s.log.Info()
	}
	evt.Str("run_id", report.RunID).
		Str("symbol", in.Symbol).
		Str("sector", bucket).
		Str("status", string(report.Eligibility.Status)).
		Float64("coverage", report.OverallCoverage).
		Dur("elapsed", elapsed).
		Msg("ticker evaluated")

	return report
}

// evaluateMetric rates one checklist line: sector-aware threshold lookup,
// plausibility corridor, then classification.
func (s *Screener) evaluateMetric(cat checklist.Category, metric, bucket string, in Input) MetricRow {
	row := MetricRow{
		Category: cat,
		Metric:   metric,
		Value:    in.Values[metric],
		Weight:   checklist.DefaultWeight(cat, metric),
		Rating:   scoring.RatingNA,
	}

	th, mode, ok := s.spec.Lookup(cat, metric, bucket)
	if !ok {
		row.SectorMode = checklist.DefaultBucket
		row.Notes = in.Notes[metric]
		return row
	}
	row.SectorMode = mode
	row.Limits = limitsText(th)

	notes := th.Notes
	if extra := in.Notes[metric]; extra != "" {
		notes = joinNotes(notes, "⚠ "+extra)
	}

	if row.Value != nil {
		low, high := ranges.Envelope(th.Green, th.Yellow, th.Red)
		if bad, msg := scoring.Aberrant(metric, *row.Value, low, high); bad {
			// The raw value stays in the report; it is only excluded
			// from scoring.
			notes = joinNotes(notes, "⚠ "+msg)
			row.Notes = notes
			return row
		}
	}

	row.Rating = scoring.Classify(row.Value, th.Green, th.Yellow, th.Red)
	if row.Rating != scoring.RatingNA {
		pts := row.Rating.Points()
		wpts := float64(pts) * row.Weight
		row.Points = &pts
		row.WeightedPoints = &wpts
	}
	row.Notes = notes
	return row
}

func limitsText(th checklist.ThresholdSet) string {
	return fmt.Sprintf("G: %s | Y: %s | R: %s", th.Green, th.Yellow, th.Red)
}

func joinNotes(base, extra string) string {
	if base == "" {
		return extra
	}
	return base + "\n" + extra
}
