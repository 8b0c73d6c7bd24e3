package scoring

import (
	"math"
	"strings"
)

// Magnitude checks make no sense for metrics denominated in dollars of
// size; a $3T market cap is not an outlier.
var sizeMetrics = []string{"Market Cap", "Enterprise Value", "Avg Daily $ Volume"}

// Corridor half-width multiplier relative to the threshold span. Values
// this far outside the checklist limits are provider glitches, not data.
const corridorMult = 50.0

// Aberrant reports whether a metric value is implausible relative to the
// numeric bounds extracted from its threshold texts, with an explanatory
// note. Downstream forces aberrant values to NA; the raw value itself is
// never altered, only excluded from scoring.
func Aberrant(metricName string, value float64, low, high *float64) (bool, string) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return true, "No meaningful data to calculate this metric (NaN/Inf)."
	}

	for _, k := range sizeMetrics {
		if strings.Contains(metricName, k) {
			return false, ""
		}
	}

	if low == nil && high == nil {
		if math.Abs(value) > 1e15 {
			return true, "No meaningful data to calculate this metric (extreme magnitude)."
		}
		return false, ""
	}

	ref := 1.0
	if low != nil && math.Abs(*low) > ref {
		ref = math.Abs(*low)
	}
	if high != nil && math.Abs(*high) > ref {
		ref = math.Abs(*high)
	}

	var hardLow, hardHigh float64
	switch {
	case low != nil && high != nil:
		span := math.Max(math.Abs(*high-*low), ref*0.05)
		hardLow = *low - corridorMult*span
		hardHigh = *high + corridorMult*span
	case low == nil:
		hardLow = -corridorMult * ref
		hardHigh = *high + corridorMult*ref
	default:
		hardLow = *low - corridorMult*ref
		hardHigh = corridorMult * ref
	}

	if value < hardLow || value > hardHigh {
		return true, "No meaningful data to calculate this metric (aberrant outlier vs checklist limits)."
	}
	return false, ""
}
