package gates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equityrun/equityrun/internal/checklist"
	"github.com/equityrun/equityrun/internal/scoring"
)

func fptr(v float64) *float64 { return &v }

// healthyInputs passes every strict default gate.
func healthyInputs(mode string) Inputs {
	return Inputs{
		Mode: mode,
		CategoryAdjusted: map[checklist.Category]*float64{
			checklist.CategoryValuation:     fptr(70),
			checklist.CategoryProfitability: fptr(75),
			checklist.CategoryBalanceSheet:  fptr(80),
			checklist.CategoryGrowth:        fptr(65),
			checklist.CategoryRisk:          fptr(60),
		},
		CategoryCoverage: map[checklist.Category]float64{
			checklist.CategoryValuation:     90,
			checklist.CategoryProfitability: 85,
			checklist.CategoryBalanceSheet:  88,
			checklist.CategoryGrowth:        80,
			checklist.CategoryRisk:          92,
		},
		CategoryRatings:     map[checklist.Category]map[string]scoring.Rating{},
		SectorBucket:        "Industrials",
		FundamentalAdjusted: fptr(68),
		ReversalTotal:       fptr(55),
		DownsideLabel:       "GREEN",
	}
}

func TestResolveMode(t *testing.T) {
	cases := map[string]Mode{
		"strict":      ModeStrict,
		"buy":         ModeStrict,
		"Portfolio":   ModeStrict,
		"permissible": ModePermissible,
		"shortlist":   ModePermissible,
		"screen":      ModePermissible,
		"loose":       ModeLoose,
		"BROAD":       ModeLoose,
		"":            ModeStrict,
		"whatever":    ModeStrict,
		"  buy  ":     ModeStrict,
	}
	for in, want := range cases {
		assert.Equal(t, want, ResolveMode(in), "mode %q", in)
	}
}

func TestEvaluatePassWhenHealthy(t *testing.T) {
	gate := NewGate(nil)

	for _, mode := range []string{"buy", "screen", "broad"} {
		res := gate.Evaluate(healthyInputs(mode))
		assert.Equal(t, StatusPass, res.Status, "mode %s", mode)
		assert.Equal(t, LabelEligible, res.Label)
		assert.Empty(t, res.Reasons)
	}
}

func TestEvaluateFailClosedOnCoverage(t *testing.T) {
	gate := NewGate(nil)

	// Coverage below every mode's minimum must FAIL regardless of how
	// strong the scores are, in every mode.
	for _, mode := range []string{"buy", "portfolio", "shortlist", "broad", "nonsense"} {
		in := healthyInputs(mode)
		for cat := range in.CategoryCoverage {
			in.CategoryCoverage[cat] = 20
		}
		res := gate.Evaluate(in)
		assert.Equal(t, StatusFail, res.Status, "mode %s", mode)
		assert.Equal(t, LabelIneligible, res.Label)
		require.NotEmpty(t, res.Reasons)
		assert.Contains(t, res.Reasons[0], "overall coverage")
	}
}

func TestEvaluateBuyModeCoverageProperty(t *testing.T) {
	// mode="buy", overall coverage 50 against the 70 minimum: FAIL no
	// matter what else looks like.
	gate := NewGate(nil)
	in := healthyInputs("buy")
	for cat := range in.CategoryCoverage {
		in.CategoryCoverage[cat] = 50
	}
	res := gate.Evaluate(in)
	assert.Equal(t, StatusFail, res.Status)
	assert.InDelta(t, 50.0, res.OverallCoveragePct, 1e-9)
}

func TestEvaluateStrictAnyReasonFails(t *testing.T) {
	gate := NewGate(nil)

	// Pure score weakness: fundamental total below the strict floor.
	in := healthyInputs("buy")
	in.FundamentalAdjusted = fptr(20)
	res := gate.Evaluate(in)
	assert.Equal(t, StatusFail, res.Status)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "Fundamental score too low")
}

func TestEvaluateTotalScoreFloorsAreStrictOnly(t *testing.T) {
	gate := NewGate(RuleSets{
		ModeStrict:      {MinTotalScores: map[string]float64{"fund_adj": 40}},
		ModePermissible: {MinTotalScores: map[string]float64{"fund_adj": 40}},
	})

	in := healthyInputs("shortlist")
	in.FundamentalAdjusted = fptr(20)
	res := gate.Evaluate(in)
	assert.Equal(t, StatusPass, res.Status)

	in.Mode = "buy"
	res = gate.Evaluate(in)
	assert.Equal(t, StatusFail, res.Status)
}

func TestEvaluateLooserModesWatchOnScoreWeakness(t *testing.T) {
	gate := NewGate(nil)

	// Weak balance-sheet structure with good coverage: WATCH in
	// permissible mode, not FAIL.
	in := healthyInputs("shortlist")
	in.CategoryAdjusted[checklist.CategoryBalanceSheet] = fptr(5)
	res := gate.Evaluate(in)
	assert.Equal(t, StatusWatch, res.Status)
	assert.Equal(t, LabelWatch, res.Label)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "Weak Balance Sheet structure")
}

func TestEvaluateLooserModesStillFailOnThinCategory(t *testing.T) {
	gate := NewGate(nil)

	// A thin-data reason is never downgraded to WATCH.
	in := healthyInputs("shortlist")
	in.CategoryCoverage[checklist.CategoryBalanceSheet] = 30
	res := gate.Evaluate(in)
	assert.Equal(t, StatusFail, res.Status)
	assert.Contains(t, res.Reasons, "Thin Balance Sheet data (30% < 50%)")
}

func TestEvaluateDownsidePolicies(t *testing.T) {
	gate := NewGate(nil)

	// Strict enforces the allow-set.
	in := healthyInputs("buy")
	in.DownsideLabel = "RED"
	res := gate.Evaluate(in)
	assert.Equal(t, StatusFail, res.Status)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "Downside protection insufficient (RED)")

	// Missing label normalizes to NA and fails the strict allow-set.
	in.DownsideLabel = ""
	res = gate.Evaluate(in)
	assert.Equal(t, StatusFail, res.Status)
	assert.Contains(t, res.Reasons[0], "(NA)")

	// Permissible flags the watch-set but does not fail.
	in = healthyInputs("shortlist")
	in.DownsideLabel = "RED"
	res = gate.Evaluate(in)
	assert.Equal(t, StatusWatch, res.Status)
	assert.Contains(t, res.Reasons[0], "Downside protection weak (RED)")

	// Loose ignores the label entirely.
	in = healthyInputs("broad")
	in.DownsideLabel = "RED"
	res = gate.Evaluate(in)
	assert.Equal(t, StatusPass, res.Status)
}

func TestEvaluateSectorAnchors(t *testing.T) {
	gate := NewGate(nil)

	in := healthyInputs("buy")
	in.SectorBucket = "Financials (Banks)"
	in.CategoryRatings = map[checklist.Category]map[string]scoring.Rating{
		checklist.CategoryBalanceSheet: {
			"Interest Coverage (EBIT / Interest)": scoring.RatingNA,
			"Net Debt / EBITDA":                   scoring.RatingNA,
			"Current Ratio":                       scoring.RatingGreen,
		},
	}
	res := gate.Evaluate(in)
	assert.Equal(t, StatusFail, res.Status)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "Missing Balance Sheet anchor data for Financials (Banks) sector")

	// One scorable anchor metric clears the gate.
	in.CategoryRatings[checklist.CategoryBalanceSheet]["Net Debt / EBITDA"] = scoring.RatingRed
	res = gate.Evaluate(in)
	for _, r := range res.Reasons {
		assert.NotContains(t, r, "anchor")
	}

	// Unrecognized sectors have no anchor requirements.
	in = healthyInputs("buy")
	in.SectorBucket = "Industrials"
	in.CategoryRatings = map[checklist.Category]map[string]scoring.Rating{
		checklist.CategoryBalanceSheet: {"Interest Coverage": scoring.RatingNA},
	}
	assert.Equal(t, StatusPass, gate.Evaluate(in).Status)
}

func TestEvaluateCollectsAllReasons(t *testing.T) {
	gate := NewGate(nil)

	in := healthyInputs("buy")
	for cat := range in.CategoryCoverage {
		in.CategoryCoverage[cat] = 40
	}
	in.CategoryAdjusted[checklist.CategoryBalanceSheet] = fptr(5)
	in.DownsideLabel = "RED"
	in.FundamentalAdjusted = fptr(10)

	res := gate.Evaluate(in)
	assert.Equal(t, StatusFail, res.Status)
	// Overall coverage, two thin categories, weak structure, downside,
	// fundamental floor, reversal passes.
	assert.GreaterOrEqual(t, len(res.Reasons), 5)
}

func TestReasonsText(t *testing.T) {
	res := EligibilityResult{Reasons: []string{"a", "b", "c", "d"}}
	assert.Equal(t, "a | b | c (+1 more)", res.ReasonsText(3))
	assert.Equal(t, "a | b | c | d", res.ReasonsText(0))
	assert.Equal(t, "a (+3 more)", res.ReasonsText(1))
	assert.Equal(t, "", EligibilityResult{}.ReasonsText(3))
}
