package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, m *Metrics) float64 {
	t.Helper()
	dto := &io_prometheus_client.Metric{}
	require.NoError(t, m.PassRatio.Write(dto))
	return dto.GetGauge().GetValue()
}

func TestPassRatioTracksEvaluations(t *testing.T) {
	m := NewMetrics()

	m.RecordEvaluation("strict", "PASS", time.Millisecond)
	m.RecordEvaluation("strict", "PASS", time.Millisecond)
	m.RecordEvaluation("strict", "FAIL", time.Millisecond)

	assert.InDelta(t, 2.0/3.0, gaugeValue(t, m), 1e-9)

	m.RecordEvaluation("loose", "WATCH", time.Millisecond)
	assert.InDelta(t, 2.0/4.0, gaugeValue(t, m), 1e-9)
}

func TestPassRatioUntouchedWithoutEvaluations(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, 0.0, gaugeValue(t, m))
}

func TestHandlerExposesCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordEvaluation("strict", "PASS", 2*time.Millisecond)
	m.RecordRating("Valuation", "GREEN")
	m.RecordRating("Valuation", "GREEN")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `equityrun_evaluations_total{mode="strict",status="PASS"} 1`)
	assert.Contains(t, body, `equityrun_ratings_total{category="Valuation",rating="GREEN"} 2`)
	assert.True(t, strings.Contains(body, "equityrun_evaluation_duration_seconds_bucket"))
}

func TestEachMetricsInstanceIsolated(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordEvaluation("strict", "PASS", time.Millisecond)

	assert.InDelta(t, 1.0, gaugeValue(t, a), 1e-9)
	assert.Equal(t, 0.0, gaugeValue(t, b))
}
