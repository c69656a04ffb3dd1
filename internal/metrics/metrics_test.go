package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value reads a counter or gauge sample from the backtest registry
func value(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := GetRegistry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] == lp.GetValue() {
					matched++
				}
			}
			if matched != len(labels) {
				continue
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordPeriod(t *testing.T) {
	InitRegistry()
	bet := map[string]string{"decision": "bet"}
	before := value(t, "digit_edge_periods_evaluated_total", bet)
	ticketsBefore := value(t, "digit_edge_tickets_placed_total", nil)

	RecordPeriod("bet", 100)
	RecordPeriod("below_threshold", 0)

	assert.Equal(t, before+1, value(t, "digit_edge_periods_evaluated_total", bet))
	assert.Equal(t, ticketsBefore+100, value(t, "digit_edge_tickets_placed_total", nil))
}

func TestRecordIngestion(t *testing.T) {
	InitRegistry()
	const name = "digit_edge_draws_ingested_total"
	outcome := func(o string) map[string]string { return map[string]string{"outcome": o} }
	acceptedBefore := value(t, name, outcome("accepted"))
	dupBefore := value(t, name, outcome("duplicate"))
	rejBefore := value(t, name, outcome("rejected"))

	RecordIngestion(10, 3, 1)

	assert.Equal(t, acceptedBefore+10, value(t, name, outcome("accepted")))
	assert.Equal(t, dupBefore+1, value(t, name, outcome("duplicate")))
	assert.Equal(t, rejBefore+2, value(t, name, outcome("rejected")))
}

func TestGauges(t *testing.T) {
	tests := []struct {
		name    string
		capital float64
	}{
		{"positive capital", 10000},
		{"zero capital", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			UpdateCapital(tt.capital)
			assert.Equal(t, tt.capital, value(t, "digit_edge_current_capital", nil))
		})
	}

	UpdateBacktestROI("replay", -0.12)
	assert.Equal(t, -0.12, value(t, "digit_edge_backtest_roi", map[string]string{"method": "replay"}))
}

func TestRecordersDoNotPanic(t *testing.T) {
	InitRegistry()
	assert.NotPanics(t, func() {
		RecordBacktestRun("replay", "success")
		RecordMonteCarloTrial("success")
		RecordScanThreshold("failure")
		RecordRecommendation("REJECT")
		RecordOpportunityScore("frequency", 57.2)
		RecordWinningPeriod("group6")
		RecordForwardPassDuration(0.2)
		RecordBacktestDuration(1.5)
		RecordJobRun("evaluation", "success", 2.0)
		UpdateOracleCacheItems(12)
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordBacktestRun("replay", "success")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "digit_edge_backtest_runs_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
