package checklist

import (
	"regexp"
	"strings"
)

var (
	matchWsRe     = regexp.MustCompile(`\s+`)
	parensRe      = regexp.MustCompile(`\s*\([^)]*\)`)
	tokenStripRe  = regexp.MustCompile(`[^a-z0-9%/\- ]+`)
	headingPhrase = []string{"how to use", "step", "sector id", "adjustments", "notes"}
)

// safePrefixes are metric families where plain containment is unambiguous,
// e.g. "ROIC" vs "ROIC (5Y Median)". Anything outside this list must pass
// the stricter token-overlap rule instead.
var safePrefixes = []string{
	"fcf yield",
	"ev/fcf",
	"margin trend",
	"roic",
	"share count cagr",
	"net buyback yield",
	"shareholder yield",
	"short interest",
	"days to cover",
	"avg daily",
	"max drawdown",
	"realized volatility",
	"worst weekly return",
	"p/e",
	"p/s",
	"ev/ebit",
	"ev/ebitda",
}

func normMetric(s string) string {
	return matchWsRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

func stripParens(s string) string {
	return strings.TrimSpace(parensRe.ReplaceAllString(s, ""))
}

func tokenSet(s string) map[string]struct{} {
	s = normMetric(stripParens(s))
	s = tokenStripRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(matchWsRe.ReplaceAllString(s, " "))
	out := make(map[string]struct{})
	for _, t := range strings.Split(s, " ") {
		if t != "" {
			out[t] = struct{}{}
		}
	}
	return out
}

// isHeadingRow filters the helper rows (usage notes, step markers) that
// authors keep in the sector-adjustments table alongside real metrics.
func isHeadingRow(metric string) bool {
	m := normMetric(metric)
	if m == "" {
		return true
	}
	for _, p := range headingPhrase {
		if strings.Contains(m, p) {
			return true
		}
	}
	return false
}

// MetricMatches reports whether a sector-adjustment row name refers to the
// given canonical checklist metric.
//
// The rules are intentionally conservative: a wrong match silently corrupts
// an unrelated metric's thresholds, so false negatives are preferred. The
// hard guards exist specifically to keep a generic row like "Market Cap"
// from matching "SBC % of Market Cap (TTM)".
func MetricMatches(adjMetric, canonicalMetric string) bool {
	a := normMetric(adjMetric)
	t := normMetric(canonicalMetric)
	if a == "" || t == "" {
		return false
	}

	// 1) Exact match.
	if a == t {
		return true
	}

	// 2) Exact after stripping parenthetical fragments from both sides.
	a2 := normMetric(stripParens(adjMetric))
	t2 := normMetric(stripParens(canonicalMetric))
	if a2 != "" && a2 == t2 {
		return true
	}

	// 3) Hard guards: a marker present on exactly one side rules out the
	// pair entirely.
	if strings.Contains(a2, "sbc") != strings.Contains(t2, "sbc") {
		return false
	}
	if strings.Contains(a2, "%") != strings.Contains(t2, "%") {
		return false
	}
	if strings.Contains(a2, "market cap") != strings.Contains(t2, "market cap") {
		return false
	}

	// 4) Containment is allowed only for the safe-prefix allowlist.
	for _, sp := range safePrefixes {
		if strings.HasPrefix(a2, sp) || strings.HasPrefix(t2, sp) {
			if a2 != "" && (strings.Contains(t2, a2) || strings.Contains(a2, t2)) {
				return true
			}
			break
		}
	}

	// 5) Token overlap, requiring near-identical token sets and similar
	// overall length.
	ta := tokenSet(adjMetric)
	tt := tokenSet(canonicalMetric)
	if len(ta) == 0 || len(tt) == 0 {
		return false
	}
	inter := 0
	for tok := range ta {
		if _, ok := tt[tok]; ok {
			inter++
		}
	}
	denom := len(ta)
	if len(tt) > denom {
		denom = len(tt)
	}
	overlap := float64(inter) / float64(denom)

	lenDiff := len(a2) - len(t2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	return overlap >= 0.85 && lenDiff <= 12
}
