package checklist

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// metricRow is one threshold row in the checklist file.
type metricRow struct {
	Metric  string `yaml:"metric"`
	Green   string `yaml:"green"`
	Yellow  string `yaml:"yellow"`
	Red     string `yaml:"red"`
	Marking string `yaml:"marking"`
	Notes   string `yaml:"notes"`
}

// adjustmentRow is one sector-adjustment row. Override cells use the
// "green / yellow / red" three-part convention from the source checklist.
type adjustmentRow struct {
	Metric    string            `yaml:"metric"`
	Notes     string            `yaml:"notes"`
	Overrides map[string]string `yaml:"overrides"`
}

type checklistDoc struct {
	Categories        map[string][]metricRow `yaml:"categories"`
	SectorAdjustments []adjustmentRow        `yaml:"sector_adjustments"`
}

// Load reads a checklist file and builds the threshold spec. Every metric
// gets a "Default (All)" bucket entry; sector-adjustment rows are bound to
// canonical metrics through MetricMatches and layered on top.
//
// Unlike rule-set loading, a missing or unreadable checklist is a hard
// error: no scoring is possible without thresholds.
func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checklist %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Spec from raw checklist YAML.
func Parse(data []byte) (Spec, error) {
	var doc checklistDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse checklist: %w", err)
	}

	known := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		known[c] = true
	}

	spec := make(Spec, len(Categories))
	for _, c := range Categories {
		spec[c] = make(map[string]map[string]ThresholdSet)
	}

	for name, rows := range doc.Categories {
		cat := Category(strings.TrimSpace(name))
		if !known[cat] {
			return nil, fmt.Errorf("unknown category %q in checklist", name)
		}
		for _, row := range rows {
			metric := strings.TrimSpace(row.Metric)
			if metric == "" {
				continue
			}
			spec[cat][metric] = map[string]ThresholdSet{
				DefaultBucket: {
					Green:   row.Green,
					Yellow:  row.Yellow,
					Red:     row.Red,
					Marking: row.Marking,
					Notes:   row.Notes,
				},
			}
		}
	}

	buckets := make(map[string]bool, len(SectorBuckets))
	for _, b := range SectorBuckets {
		buckets[b] = true
	}

	for _, adj := range doc.SectorAdjustments {
		metric := strings.TrimSpace(adj.Metric)
		if metric == "" || isHeadingRow(metric) {
			continue
		}
		for bucket, cell := range adj.Overrides {
			if !buckets[bucket] {
				return nil, fmt.Errorf("unknown sector bucket %q in adjustment for %q", bucket, metric)
			}
			parts := splitOverrideCell(cell)
			if parts == nil {
				continue
			}
			applyOverride(spec, metric, bucket, parts, adj.Notes)
		}
	}

	return spec, nil
}

// splitOverrideCell splits "green / yellow / red" into its three texts.
// Cells with fewer than three parts carry no usable override.
func splitOverrideCell(cell string) []string {
	var parts []string
	for _, p := range strings.Split(cell, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 3 {
		return nil
	}
	return parts[:3]
}

func applyOverride(spec Spec, adjMetric, bucket string, parts []string, notes string) {
	for _, cat := range Categories {
		for canonical, bySector := range spec[cat] {
			if !MetricMatches(adjMetric, canonical) {
				continue
			}
			bySector[bucket] = ThresholdSet{
				Green:   parts[0],
				Yellow:  parts[1],
				Red:     parts[2],
				Marking: bySector[DefaultBucket].Marking,
				Notes:   notes,
			}
		}
	}
}
