package scoring

import (
	"strings"

	"github.com/equityrun/equityrun/internal/checklist"
)

// CategoryWeights is the fixed cross-category blend used for both the
// overall score and the overall coverage percentage.
var CategoryWeights = map[checklist.Category]float64{
	checklist.CategoryValuation:     0.20,
	checklist.CategoryProfitability: 0.25,
	checklist.CategoryBalanceSheet:  0.25,
	checklist.CategoryGrowth:        0.15,
	checklist.CategoryRisk:          0.15,
}

// CategoryScore holds one category's scoring outcome. Raw and Adjusted are
// nil when the category had no positively-weighted scorable metrics.
type CategoryScore struct {
	Raw      *float64 `json:"raw_score_pct"`
	Coverage float64  `json:"coverage_pct"`
	Adjusted *float64 `json:"adjusted_score_pct"`
}

// ScoreCategory computes the raw score and coverage for one category.
//
// Only metrics with weight > 0 participate. Every such metric counts
// toward the coverage denominator; only non-NA ratings count toward the
// score and the coverage numerator. NA is excluded from both sides of the
// score ratio, never treated as zero points.
func ScoreCategory(ratingsByMetric map[string]Rating, weightsByMetric map[string]float64) (raw *float64, coveragePct float64) {
	var possibleW, scorableW, earned, maxEarned float64

	for metric, w := range weightsByMetric {
		if w <= 0 {
			continue
		}
		possibleW += w

		rating, ok := ratingsByMetric[metric]
		if !ok || rating == RatingNA {
			continue
		}
		scorableW += w
		earned += float64(rating.Points()) * w
		maxEarned += 2 * w
	}

	if possibleW > 0 {
		coveragePct = scorableW / possibleW * 100.0
	}
	if maxEarned == 0 {
		return nil, coveragePct
	}
	pct := earned / maxEarned * 100.0
	return &pct, coveragePct
}

// ApplyCategoryCaps clamps a category's raw score when a structural
// red flag is present, before any coverage discount. A levered balance
// sheet or an illiquid stock cannot score highly no matter how the rest
// of the category looks.
func ApplyCategoryCaps(cat checklist.Category, raw *float64, ratingsByMetric map[string]Rating) *float64 {
	if raw == nil {
		return nil
	}
	capped := *raw

	switch cat {
	case checklist.CategoryBalanceSheet:
		if anyRed(ratingsByMetric, "Net Debt / EBITDA", "Interest Coverage") && capped > 60.0 {
			capped = 60.0
		}
	case checklist.CategoryRisk:
		if anyRed(ratingsByMetric, "Avg Daily $ Volume") && capped > 65.0 {
			capped = 65.0
		}
	}

	return &capped
}

func anyRed(ratings map[string]Rating, substrings ...string) bool {
	for metric, rating := range ratings {
		if rating != RatingRed {
			continue
		}
		for _, sub := range substrings {
			if strings.Contains(metric, sub) {
				return true
			}
		}
	}
	return false
}

// AdjustForCoverage discounts a raw score by the scorable share of the
// category. A category fully scored on one of five weighted metrics is
// discounted nearly to zero, so thin-data instruments cannot look strong.
func AdjustForCoverage(raw *float64, coveragePct float64) *float64 {
	if raw == nil {
		return nil
	}
	adj := *raw * coveragePct / 100.0
	return &adj
}

// Blend weighted-averages per-category values into one number using
// CategoryWeights. Nil categories are excluded from both the numerator
// and the denominator, never treated as zero. The same blend serves
// scores and coverage percentages.
func Blend(valuesByCategory map[checklist.Category]*float64) *float64 {
	var wsum, acc float64
	for cat, w := range CategoryWeights {
		v := valuesByCategory[cat]
		if v == nil {
			continue
		}
		wsum += w
		acc += w * *v
	}
	if wsum == 0 {
		return nil
	}
	out := acc / wsum
	return &out
}

// BlendFloats is Blend over always-present values such as coverages.
func BlendFloats(valuesByCategory map[checklist.Category]float64) float64 {
	ptrs := make(map[checklist.Category]*float64, len(valuesByCategory))
	for cat := range valuesByCategory {
		v := valuesByCategory[cat]
		ptrs[cat] = &v
	}
	if out := Blend(ptrs); out != nil {
		return *out
	}
	return 0.0
}
