// Package telemetry exposes Prometheus metrics for screening runs.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus collectors for the screening engine.
type Metrics struct {
	registry *prometheus.Registry

	// Gate outcomes
	Evaluations *prometheus.CounterVec
	PassRatio   prometheus.Gauge

	// Per-metric classification outcomes
	Ratings *prometheus.CounterVec

	// Pipeline performance
	EvalDuration prometheus.Histogram

	// Rule/config degradations
	RuleFallbacks prometheus.Counter
}

// NewMetrics creates a registry with all screening metrics registered.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equityrun_evaluations_total",
				Help: "Eligibility evaluations by terminal status",
			},
			[]string{"mode", "status"},
		),

		PassRatio: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "equityrun_pass_ratio",
				Help: "Share of evaluations that passed (0.0 to 1.0)",
			},
		),

		Ratings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equityrun_ratings_total",
				Help: "Metric classifications by category and rating",
			},
			[]string{"category", "rating"},
		),

		EvalDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "equityrun_evaluation_duration_seconds",
				Help:    "Duration of one ticker evaluation in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
		),

		RuleFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "equityrun_rule_fallbacks_total",
				Help: "Times the built-in default rule set was substituted",
			},
		),
	}

	m.registry.MustRegister(m.Evaluations, m.PassRatio, m.Ratings, m.EvalDuration, m.RuleFallbacks)
	return m
}

// RecordEvaluation records one gate decision and refreshes the pass ratio.
func (m *Metrics) RecordEvaluation(mode, status string, elapsed time.Duration) {
	m.Evaluations.WithLabelValues(mode, status).Inc()
	m.EvalDuration.Observe(elapsed.Seconds())
	m.updatePassRatio()
}

// RecordRating records one per-metric classification.
func (m *Metrics) RecordRating(category, rating string) {
	m.Ratings.WithLabelValues(category, rating).Inc()
}

// updatePassRatio recomputes pass/total from the counter values.
func (m *Metrics) updatePassRatio() {
	modes := []string{"strict", "permissible", "loose"}
	statuses := []string{"PASS", "WATCH", "FAIL"}

	metric := &io_prometheus_client.Metric{}
	var passed, total float64

	for _, mode := range modes {
		for _, status := range statuses {
			counter, err := m.Evaluations.GetMetricWithLabelValues(mode, status)
			if err != nil {
				continue
			}
			if err := counter.Write(metric); err != nil {
				continue
			}
			v := metric.GetCounter().GetValue()
			total += v
			if status == "PASS" {
				passed += v
			}
		}
	}

	if total > 0 {
		m.PassRatio.Set(passed / total)
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
