package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func TestClassifyMissingValues(t *testing.T) {
	assert.Equal(t, RatingNA, Classify(nil, "< 15", "15-25", "> 25"))
	assert.Equal(t, RatingNA, Classify(fptr(math.NaN()), "< 15", "15-25", "> 25"))
	assert.Equal(t, RatingNA, Classify(fptr(math.Inf(1)), "< 15", "15-25", "> 25"))
	assert.Equal(t, RatingNA, Classify(fptr(math.Inf(-1)), "< 15", "15-25", "> 25"))
}

func TestClassifyLowerIsBetter(t *testing.T) {
	assert.Equal(t, RatingGreen, Classify(fptr(10), "< 15", "15-25", "> 25"))
	assert.Equal(t, RatingYellow, Classify(fptr(18), "< 15", "15-25", "> 25"))
	assert.Equal(t, RatingRed, Classify(fptr(30), "< 15", "15-25", "> 25"))
}

func TestClassifyHigherIsBetter(t *testing.T) {
	green, yellow, red := "> 40", "20-40", "< 20"
	assert.Equal(t, RatingGreen, Classify(fptr(45), green, yellow, red))
	assert.Equal(t, RatingYellow, Classify(fptr(30), green, yellow, red))
	assert.Equal(t, RatingRed, Classify(fptr(10), green, yellow, red))
}

func TestClassifyGreenTestedFirst(t *testing.T) {
	// Overlapping author ranges resolve toward the better rating. The
	// GREEN-YELLOW-RED order is a business rule and must hold even when
	// every band matches.
	assert.Equal(t, RatingGreen, Classify(fptr(50), "> 10", "> 10", "> 10"))
	assert.Equal(t, RatingYellow, Classify(fptr(15), "> 20", "10-20", "5-18"))
}

func TestClassifyNoBandMatches(t *testing.T) {
	// 15 falls in neither "< 15" nor "> 25" with a qualitative yellow.
	assert.Equal(t, RatingNA, Classify(fptr(15), "< 15", "Stable", "> 25"))

	// Unparseable thresholds everywhere yield NA, never an error.
	assert.Equal(t, RatingNA, Classify(fptr(42), "good", "okay", "bad"))
}

func TestRatingPoints(t *testing.T) {
	assert.Equal(t, 2, RatingGreen.Points())
	assert.Equal(t, 1, RatingYellow.Points())
	assert.Equal(t, 0, RatingRed.Points())
	assert.Equal(t, 0, RatingNA.Points())
}
