package checklist

import "strings"

// DefaultWeight returns the relative importance of a metric within its
// category. Weights express the house view of which metrics carry a
// category: cash-flow based valuation and leverage metrics dominate,
// size-style metrics are dampened. Unknown metrics weigh 1.0.
func DefaultWeight(cat Category, metric string) float64 {
	has := func(sub string) bool { return strings.Contains(metric, sub) }

	switch cat {
	case CategoryValuation:
		switch {
		case has("EV/FCF"), has("FCF Yield"), has("EV/EBIT"):
			return 1.6
		case has("EV/EBITDA"), has("P/E"):
			return 1.3
		case has("P/S"), has("EV/Gross Profit"):
			return 1.1
		}

	case CategoryProfitability:
		switch {
		case has("ROIC"):
			return 1.8
		case has("Operating Margin"), has("FCF Margin"):
			return 1.4
		case has("Gross Margin"), has("Net Margin"):
			return 1.2
		case has("CFO / Net Income"), has("ROE"):
			return 1.0
		}

	case CategoryBalanceSheet:
		switch {
		case has("Net Debt / EBITDA"), has("Interest Coverage"):
			return 1.7
		case has("Net Debt / FCF"), has("FCF / Interest"):
			return 1.4
		case has("Current Ratio"), has("Quick Ratio"):
			return 1.0
		case has("Cash / Total Assets"):
			return 0.8
		}

	case CategoryGrowth:
		switch {
		case has("FCF per Share CAGR"), has("Revenue per Share CAGR"):
			return 1.4
		case has("Revenue CAGR"):
			return 1.2
		default:
			return 0.9
		}

	case CategoryRisk:
		switch {
		case has("Max Drawdown"), has("Realized Volatility"):
			return 1.4
		case has("Worst Weekly Return"):
			return 1.3
		case has("Avg Daily $ Volume"):
			return 1.2
		case has("Beta"):
			return 1.0
		case has("Short Interest"), has("Days to Cover"):
			return 0.9
		case has("Market Cap"):
			return 0.7
		}
	}

	return 1.0
}

// DefaultWeights builds the weight map for every metric in a category.
func (s Spec) DefaultWeights(cat Category) map[string]float64 {
	out := make(map[string]float64, len(s[cat]))
	for _, m := range s.Metrics(cat) {
		out[m] = DefaultWeight(cat, m)
	}
	return out
}
