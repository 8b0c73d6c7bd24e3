// Package ranges parses free-text checklist threshold cells into numeric bounds.
package ranges

import (
	"regexp"
	"strconv"
	"strings"
)

// Range is an inclusive numeric interval. Either side may be open (nil).
// At least one bound is set on any Range returned by Parse.
type Range struct {
	Low  *float64 `json:"low"`
	High *float64 `json:"high"`
}

// Contains reports whether v satisfies the range. Open-ended bounds are
// strict ("< 15" means below 15), closed ranges are inclusive on both ends.
func (r Range) Contains(v float64) bool {
	switch {
	case r.Low == nil && r.High != nil:
		return v < *r.High
	case r.Low != nil && r.High == nil:
		return v > *r.Low
	case r.Low != nil && r.High != nil:
		return *r.Low <= v && v <= *r.High
	default:
		return false
	}
}

const numPat = `[+-]?\d*\.?\d+`

var (
	wsRe         = regexp.MustCompile(`\s+`)
	toRe         = regexp.MustCompile(`(?i)\s+to\s+`)
	currencyRe   = regexp.MustCompile(`(?i)(` + numPat + `)\s*([KMBT])\b`)
	comparatorRe = regexp.MustCompile(`(<=|>=|<|>)\s*(` + numPat + `)`)
	closedRe     = regexp.MustCompile(`(` + numPat + `)\s*-\s*(` + numPat + `)`)

	currencyMult = map[string]float64{"K": 1e3, "M": 1e6, "B": 1e9, "T": 1e12}

	// Qualitative guidance like "Expanding vs peers" is intentionally
	// unscorable; it never yields a numeric range.
	qualitativeWords = []string{"expanding", "stable", "contracting"}
)

// Parse turns threshold text such as "< 15", "15–25", "> 25 or negative",
// "> $10B" or "-35 to -50" into a Range. It is total: malformed input
// returns ok=false, never a panic. The first matching pattern wins, a
// comparator anywhere in the string before a number-number range.
func Parse(text string) (Range, bool) {
	txt := strings.TrimSpace(text)
	if txt == "" {
		return Range{}, false
	}

	txt = strings.NewReplacer("–", "-", "—", "-").Replace(txt)
	txt = wsRe.ReplaceAllString(txt, " ")

	low := strings.ToLower(txt)
	for _, w := range qualitativeWords {
		if strings.Contains(low, w) {
			return Range{}, false
		}
	}

	// Thousands separators and underscores break float parsing.
	txt = strings.NewReplacer(",", "", "_", "").Replace(txt)

	// Currency suffix multipliers apply only when a $ is present, so
	// "3 B" in prose does not get inflated.
	mul := 1.0
	if strings.Contains(txt, "$") {
		if m := currencyRe.FindStringSubmatch(txt); m != nil {
			mul = currencyMult[strings.ToUpper(m[2])]
			txt = currencyRe.ReplaceAllString(txt, "$1")
		}
		txt = strings.TrimSpace(strings.ReplaceAll(txt, "$", ""))
	}

	// Metrics are stored as percentage points, not fractions.
	txt = strings.TrimSpace(strings.ReplaceAll(txt, "%", ""))

	txt = toRe.ReplaceAllString(txt, " - ")

	if m := comparatorRe.FindStringSubmatch(txt); m != nil {
		n, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return Range{}, false
		}
		n *= mul
		if m[1] == "<" || m[1] == "<=" {
			return Range{High: &n}, true
		}
		return Range{Low: &n}, true
	}

	if m := closedRe.FindStringSubmatch(txt); m != nil {
		a, errA := strconv.ParseFloat(m[1], 64)
		b, errB := strconv.ParseFloat(m[2], 64)
		if errA != nil || errB != nil {
			return Range{}, false
		}
		a *= mul
		b *= mul
		if a > b {
			a, b = b, a
		}
		return Range{Low: &a, High: &b}, true
	}

	return Range{}, false
}

// Envelope extracts the widest numeric bounds across a set of threshold
// texts: the minimum of all lower bounds and the maximum of all upper
// bounds. Used to derive the plausibility corridor for outlier checks.
func Envelope(texts ...string) (low, high *float64) {
	for _, t := range texts {
		r, ok := Parse(t)
		if !ok {
			continue
		}
		if r.Low != nil && (low == nil || *r.Low < *low) {
			v := *r.Low
			low = &v
		}
		if r.High != nil && (high == nil || *r.High > *high) {
			v := *r.High
			high = &v
		}
	}
	return low, high
}
