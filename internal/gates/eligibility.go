package gates

import (
	"fmt"
	"sort"
	"strings"

	"github.com/equityrun/equityrun/internal/checklist"
	"github.com/equityrun/equityrun/internal/scoring"
)

// Status is the terminal gate decision.
type Status string

const (
	StatusPass  Status = "PASS"
	StatusWatch Status = "WATCH"
	StatusFail  Status = "FAIL"
)

// Label is the report-facing name of a Status.
type Label string

const (
	LabelEligible   Label = "ELIGIBLE"
	LabelWatch      Label = "WATCH"
	LabelIneligible Label = "INELIGIBLE"
)

// EligibilityResult is the immutable outcome of one gate evaluation.
type EligibilityResult struct {
	Status             Status   `json:"status"`
	Label              Label    `json:"label"`
	OverallCoveragePct float64  `json:"overall_coverage_pct"`
	Reasons            []string `json:"reasons"`
}

// ReasonsText joins up to maxItems reasons for compact report cells,
// appending a "(+N more)" suffix when truncated. maxItems <= 0 means all.
func (r EligibilityResult) ReasonsText(maxItems int) string {
	if len(r.Reasons) == 0 {
		return ""
	}
	items := r.Reasons
	if maxItems > 0 && maxItems < len(items) {
		items = items[:maxItems]
	}
	suffix := ""
	if len(r.Reasons) > len(items) {
		suffix = fmt.Sprintf(" (+%d more)", len(r.Reasons)-len(items))
	}
	return strings.Join(items, " | ") + suffix
}

// Inputs carries everything one gate evaluation consumes. All fields are
// read-only; nil pointers mean the signal is unavailable.
type Inputs struct {
	Mode                string
	CategoryAdjusted    map[checklist.Category]*float64
	CategoryCoverage    map[checklist.Category]float64
	CategoryRatings     map[checklist.Category]map[string]scoring.Rating
	SectorBucket        string
	FundamentalAdjusted *float64
	ReversalTotal       *float64
	DownsideLabel       string
}

// Gate evaluates eligibility against an injected, immutable rule table.
type Gate struct {
	rules RuleSets
}

// NewGate wraps pre-loaded rule sets. Pass nil to use built-in defaults.
func NewGate(rules RuleSets) *Gate {
	if rules == nil {
		rules = DefaultRuleSets()
	}
	return &Gate{rules: rules}
}

// Evaluate runs every gate and collects all violated conditions; it never
// short-circuits on the first failure, so the reasons list is complete.
//
// Decision policy: no reasons is PASS. In strict mode any reason is FAIL.
// In looser modes, reasons indicating a coverage or data-quality problem
// are FAIL — fail-closed on untrustworthy data, never downgraded — while
// pure score weakness is WATCH.
func (g *Gate) Evaluate(in Inputs) EligibilityResult {
	mode, rules := g.rules.ForMode(in.Mode)
	var reasons []string

	// 1) Overall coverage, blended with the same category weights as the
	// overall score.
	overallCov := scoring.BlendFloats(in.CategoryCoverage)
	if overallCov < rules.MinOverallCoverage {
		reasons = append(reasons, fmt.Sprintf("Low overall coverage (%.0f%% < %.0f%%)",
			overallCov, rules.MinOverallCoverage))
	}

	// 2) Per-category coverage minimums.
	for _, cat := range checklist.Categories {
		limit, ok := rules.MinCategoryCoverage[string(cat)]
		if !ok {
			continue
		}
		cov := in.CategoryCoverage[cat]
		if cov < limit {
			reasons = append(reasons, fmt.Sprintf("Thin %s data (%.0f%% < %.0f%%)", cat, cov, limit))
		}
	}

	// 3) Structural category-score minimums, a red-flag gate independent
	// of coverage.
	for _, cat := range checklist.Categories {
		limit, ok := rules.MinCategoryScore[string(cat)]
		if !ok {
			continue
		}
		if v := in.CategoryAdjusted[cat]; v != nil && *v < limit {
			reasons = append(reasons, fmt.Sprintf("Weak %s structure (%.0f < %g)", cat, *v, limit))
		}
	}

	// 4) Downside-protection policy.
	reasons = append(reasons, downsideReasons(rules, in.DownsideLabel)...)

	// 5) Total-score floors apply in strict mode only; looser screens
	// surface weak totals through ranking, not gating.
	if mode == ModeStrict {
		reasons = append(reasons, totalScoreReasons(rules, in)...)
	}

	// 6) Sector-anchor completeness.
	reasons = append(reasons, anchorReasons(rules, in)...)

	if len(reasons) == 0 {
		return EligibilityResult{
			Status:             StatusPass,
			Label:              LabelEligible,
			OverallCoveragePct: overallCov,
			Reasons:            []string{},
		}
	}

	if mode == ModeStrict {
		return EligibilityResult{
			Status:             StatusFail,
			Label:              LabelIneligible,
			OverallCoveragePct: overallCov,
			Reasons:            reasons,
		}
	}

	// Coverage failures are never soft: an instrument with thin coverage
	// of its critical metrics must not rank highly in a broad screen just
	// because its few available metrics happened to look good.
	for _, r := range reasons {
		if isCoverageReason(r) {
			return EligibilityResult{
				Status:             StatusFail,
				Label:              LabelIneligible,
				OverallCoveragePct: overallCov,
				Reasons:            reasons,
			}
		}
	}

	return EligibilityResult{
		Status:             StatusWatch,
		Label:              LabelWatch,
		OverallCoveragePct: overallCov,
		Reasons:            reasons,
	}
}

func isCoverageReason(reason string) bool {
	r := strings.ToLower(reason)
	return strings.Contains(r, "coverage") || strings.Contains(r, "data")
}

func downsideReasons(rules RuleSet, label string) []string {
	dv := strings.ToUpper(strings.TrimSpace(label))
	if dv == "" {
		dv = "NA"
	}
	inSet := false
	for _, s := range rules.DownsideSet {
		if strings.EqualFold(s, dv) {
			inSet = true
			break
		}
	}

	switch rules.DownsidePolicy {
	case DownsideEnforceAllowed:
		if !inSet {
			return []string{fmt.Sprintf("Downside protection insufficient (%s)", dv)}
		}
	case DownsideFlagWatch:
		if inSet {
			return []string{fmt.Sprintf("Downside protection weak (%s)", dv)}
		}
	}
	return nil
}

func totalScoreReasons(rules RuleSet, in Inputs) []string {
	var reasons []string

	keys := make([]string, 0, len(rules.MinTotalScores))
	for k := range rules.MinTotalScores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		limit := rules.MinTotalScores[key]
		var val *float64
		var name string
		switch key {
		case "fund_adj":
			val, name = in.FundamentalAdjusted, "Fundamental score"
		case "reversal_total":
			val, name = in.ReversalTotal, "Reversal score"
		default:
			continue
		}
		if val != nil && *val < limit {
			reasons = append(reasons, fmt.Sprintf("%s too low (%.0f < %g)", name, *val, limit))
		}
	}
	return reasons
}

// anchorReasons protects against a sector-critical metric silently having
// no data: if the checklist defines at least one metric matching an anchor
// pattern for a category but every matching metric rated NA, the sector's
// load-bearing evidence is missing and the instrument cannot be trusted.
func anchorReasons(rules RuleSet, in Inputs) []string {
	anchors, ok := rules.SectorAnchors[in.SectorBucket]
	if !ok {
		return nil
	}

	var reasons []string
	for _, cat := range checklist.Categories {
		patterns, ok := anchors[string(cat)]
		if !ok {
			continue
		}
		matched, allNA := 0, true
		for metric, rating := range in.CategoryRatings[cat] {
			if !matchesAnyPattern(metric, patterns) {
				continue
			}
			matched++
			if rating != scoring.RatingNA {
				allNA = false
			}
		}
		if matched > 0 && allNA {
			reasons = append(reasons, fmt.Sprintf("Missing %s anchor data for %s sector", cat, in.SectorBucket))
		}
	}
	return reasons
}

func matchesAnyPattern(metric string, patterns []string) bool {
	m := strings.ToLower(metric)
	for _, p := range patterns {
		if strings.Contains(m, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
