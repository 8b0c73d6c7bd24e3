// Package scoring classifies metric values against threshold texts and
// aggregates per-metric ratings into coverage-adjusted category scores.
package scoring

import (
	"math"

	"github.com/equityrun/equityrun/internal/ranges"
)

// Rating is the classification assigned to one metric value.
type Rating string

const (
	RatingGreen  Rating = "GREEN"
	RatingYellow Rating = "YELLOW"
	RatingRed    Rating = "RED"
	RatingNA     Rating = "NA"
)

// Points returns the score contribution of a rating. NA is excluded from
// scoring entirely and contributes to neither side of the ratio.
func (r Rating) Points() int {
	switch r {
	case RatingGreen:
		return 2
	case RatingYellow:
		return 1
	default:
		return 0
	}
}

// Classify rates a value against the three threshold texts. Missing,
// NaN or infinite values are NA. Evaluation order is GREEN, then YELLOW,
// then RED, first satisfied range wins: on overlapping author ranges the
// benefit of the doubt goes to the better rating. The order is a business
// rule, not an implementation detail.
func Classify(value *float64, greenText, yellowText, redText string) Rating {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return RatingNA
	}
	v := *value

	for _, band := range []struct {
		text   string
		rating Rating
	}{
		{greenText, RatingGreen},
		{yellowText, RatingYellow},
		{redText, RatingRed},
	} {
		if r, ok := ranges.Parse(band.text); ok && r.Contains(v) {
			return band.rating
		}
	}

	return RatingNA
}
