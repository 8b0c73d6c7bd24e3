// Package gates decides whether a screened instrument is admissible for a
// strictness mode, fail-closed on coverage and data-quality problems.
package gates

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Mode is a canonical rule-set key. The legacy mode names used by older
// screen configurations resolve onto these three.
type Mode string

const (
	ModeStrict      Mode = "strict"
	ModePermissible Mode = "permissible"
	ModeLoose       Mode = "loose"
)

var modeAliases = map[string]Mode{
	"strict":      ModeStrict,
	"buy":         ModeStrict,
	"portfolio":   ModeStrict,
	"permissible": ModePermissible,
	"shortlist":   ModePermissible,
	"screen":      ModePermissible,
	"loose":       ModeLoose,
	"broad":       ModeLoose,
}

// ResolveMode maps any mode string onto a canonical Mode. It is total:
// unrecognized input resolves to strict, the fail-closed default.
func ResolveMode(mode string) Mode {
	if m, ok := modeAliases[strings.ToLower(strings.TrimSpace(mode))]; ok {
		return m
	}
	return ModeStrict
}

// DownsidePolicy controls how the externally computed downside-protection
// label participates in gating.
type DownsidePolicy string

const (
	// DownsideEnforceAllowed fails any label outside the configured set.
	DownsideEnforceAllowed DownsidePolicy = "enforce_allowed"
	// DownsideFlagWatch adds a soft reason when the label is in the set.
	DownsideFlagWatch DownsidePolicy = "flag_watch"
	// DownsideIgnore skips the check entirely.
	DownsideIgnore DownsidePolicy = "ignore"
)

// RuleSet holds the gate thresholds for one mode. Category keys are the
// canonical category names; sector-anchor patterns are matched as
// case-insensitive substrings against checklist metric names.
type RuleSet struct {
	MinOverallCoverage  float64                        `yaml:"min_overall_coverage"`
	MinCategoryCoverage map[string]float64             `yaml:"min_category_coverage"`
	MinCategoryScore    map[string]float64             `yaml:"min_category_score"`
	MinTotalScores      map[string]float64             `yaml:"min_total_scores"`
	DownsidePolicy      DownsidePolicy                 `yaml:"downside_policy"`
	DownsideSet         []string                       `yaml:"downside_set"`
	SectorAnchors       map[string]map[string][]string `yaml:"sector_anchors"`
}

// RuleSets maps canonical modes to their rule sets. Loaded once and
// read-only afterwards; safe for concurrent use.
type RuleSets map[Mode]RuleSet

// ForMode returns the rule set for a (possibly legacy) mode name, falling
// back to strict when the resolved mode has no entry.
func (rs RuleSets) ForMode(mode string) (Mode, RuleSet) {
	m := ResolveMode(mode)
	if r, ok := rs[m]; ok {
		return m, r
	}
	if r, ok := rs[ModeStrict]; ok {
		return m, r
	}
	return m, DefaultRuleSets()[ModeStrict]
}

// DefaultRuleSets returns the built-in rules used when no config file is
// available. Strict matches the historical buy-mode behavior; permissible
// and loose relax score gates but keep coverage gates hard.
func DefaultRuleSets() RuleSets {
	return RuleSets{
		ModeStrict: {
			MinOverallCoverage: 70.0,
			MinCategoryCoverage: map[string]float64{
				"Balance Sheet": 60.0,
				"Profitability": 50.0,
			},
			MinCategoryScore: map[string]float64{
				"Balance Sheet": 15.0,
			},
			MinTotalScores: map[string]float64{
				"fund_adj":       40.0,
				"reversal_total": 35.0,
			},
			DownsidePolicy: DownsideEnforceAllowed,
			DownsideSet:    []string{"GREEN", "YELLOW"},
			SectorAnchors: map[string]map[string][]string{
				"Financials (Banks)": {
					"Balance Sheet": {"interest coverage", "net debt"},
				},
				"REITs": {
					"Balance Sheet": {"net debt", "interest coverage"},
					"Valuation":     {"fcf yield"},
				},
				"Software/Tech": {
					"Profitability": {"roic", "fcf margin"},
				},
			},
		},
		ModePermissible: {
			MinOverallCoverage: 55.0,
			MinCategoryCoverage: map[string]float64{
				"Balance Sheet": 50.0,
			},
			MinCategoryScore: map[string]float64{
				"Balance Sheet": 10.0,
			},
			DownsidePolicy: DownsideFlagWatch,
			DownsideSet:    []string{"RED", "NA"},
		},
		ModeLoose: {
			MinOverallCoverage: 35.0,
			DownsidePolicy:     DownsideIgnore,
		},
	}
}

// LoadRuleSets reads mode rules from a YAML file. A missing or malformed
// file degrades to DefaultRuleSets with a warning: one bad config must
// never abort a batch run. Modes absent from the file are backfilled from
// the defaults.
func LoadRuleSets(path string) RuleSets {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("eligibility rules unavailable, using built-in defaults")
		return DefaultRuleSets()
	}

	loaded := make(map[string]RuleSet)
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("eligibility rules malformed, using built-in defaults")
		return DefaultRuleSets()
	}

	out := DefaultRuleSets()
	for name, rule := range loaded {
		mode := ResolveMode(name)
		if err := validateRuleSet(rule); err != nil {
			log.Warn().Err(err).Str("mode", name).Msg("skipping invalid rule set")
			continue
		}
		out[mode] = rule
	}
	return out
}

func validateRuleSet(r RuleSet) error {
	if r.MinOverallCoverage < 0 || r.MinOverallCoverage > 100 {
		return fmt.Errorf("min_overall_coverage %.1f out of [0,100]", r.MinOverallCoverage)
	}
	for cat, v := range r.MinCategoryCoverage {
		if v < 0 || v > 100 {
			return fmt.Errorf("min_category_coverage[%s] %.1f out of [0,100]", cat, v)
		}
	}
	switch r.DownsidePolicy {
	case DownsideEnforceAllowed, DownsideFlagWatch, DownsideIgnore, "":
	default:
		return fmt.Errorf("unknown downside_policy %q", r.DownsidePolicy)
	}
	return nil
}
