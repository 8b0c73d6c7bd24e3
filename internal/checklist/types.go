// Package checklist holds the threshold taxonomy: the fixed category set,
// sector buckets, per-metric threshold texts, and the conservative matcher
// that binds sector-adjustment rows to canonical metric names.
package checklist

// Category is one of the five fixed checklist categories.
type Category string

const (
	CategoryValuation     Category = "Valuation"
	CategoryProfitability Category = "Profitability"
	CategoryBalanceSheet  Category = "Balance Sheet"
	CategoryGrowth        Category = "Growth"
	CategoryRisk          Category = "Risk"
)

// Categories is the canonical evaluation and reporting order.
var Categories = []Category{
	CategoryValuation,
	CategoryProfitability,
	CategoryBalanceSheet,
	CategoryGrowth,
	CategoryRisk,
}

// DefaultBucket is the fallback sector bucket every metric must carry.
const DefaultBucket = "Default (All)"

// SectorBuckets are the coarse sector classifications recognized by the
// sector-adjustment layer. The strings match what the external sector
// classifier produces.
var SectorBuckets = []string{
	DefaultBucket,
	"Software/Tech",
	"Industrials",
	"Consumer Staples",
	"Consumer Discretionary",
	"Healthcare/Pharma",
	"Energy/Materials",
	"Financials (Banks)",
	"REITs",
	"Utilities/Telecom",
}

// ThresholdSet is one row of author-supplied threshold text for a metric
// under a particular sector bucket.
type ThresholdSet struct {
	Green   string `yaml:"green" json:"green"`
	Yellow  string `yaml:"yellow" json:"yellow"`
	Red     string `yaml:"red" json:"red"`
	Marking string `yaml:"marking,omitempty" json:"marking,omitempty"`
	Notes   string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Spec maps category -> metric name -> sector bucket -> thresholds.
// Built once by the loader and treated as immutable afterwards; safe for
// concurrent readers.
type Spec map[Category]map[string]map[string]ThresholdSet

// Metrics returns the metric names defined for a category, in no
// particular order.
func (s Spec) Metrics(cat Category) []string {
	names := make([]string, 0, len(s[cat]))
	for m := range s[cat] {
		names = append(names, m)
	}
	return names
}

// Lookup returns the threshold set for (category, metric) under the given
// sector bucket, falling back to "Default (All)" when no sector override
// exists. The returned bucket names which entry was actually used.
func (s Spec) Lookup(cat Category, metric, sectorBucket string) (ThresholdSet, string, bool) {
	bySector, ok := s[cat][metric]
	if !ok {
		return ThresholdSet{}, "", false
	}
	if ts, ok := bySector[sectorBucket]; ok {
		return ts, sectorBucket, true
	}
	ts, ok := bySector[DefaultBucket]
	return ts, DefaultBucket, ok
}
