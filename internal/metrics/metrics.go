// Package metrics provides the centralized Prometheus registry for the backtester.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "digit_edge"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PeriodsEvaluatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "periods_evaluated_total",
		Help:      "Total number of replayed periods by decision (bet or skip reason)",
	}, []string{"decision"})
	TicketsPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_placed_total",
		Help:      "Total number of simulated tickets placed",
	})
	WinningPeriodsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "winning_periods_total",
		Help:      "Total number of bet periods that paid a prize, by drawn shape",
	}, []string{"shape"})
	DrawsIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "draws_ingested_total",
		Help:      "Total number of draws seen at ingestion by outcome",
	}, []string{"outcome"})
)

// Gauge metrics
var (
	CurrentCapital = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "current_capital",
		Help:      "Capital at the end of the most recent replay",
	})
	OracleCacheItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "oracle_cache_items",
		Help:      "Number of cached probability vectors",
	})
)

// Histogram metrics
var (
	ForwardPassDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "forward_pass_duration_seconds",
		Help:      "Duration of the oracle and scoring forward pass in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.01, 0.1, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PeriodsEvaluatedTotal)
		registry.MustRegister(TicketsPlacedTotal)
		registry.MustRegister(WinningPeriodsTotal)
		registry.MustRegister(DrawsIngestedTotal)

		registry.MustRegister(CurrentCapital)
		registry.MustRegister(OracleCacheItems)

		registry.MustRegister(ForwardPassDuration)
		registry.MustRegister(BacktestDuration)

		registry.MustRegister(OpportunityScore)
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestROI)
		registry.MustRegister(MonteCarloTrialsTotal)
		registry.MustRegister(ScanThresholdsTotal)
		registry.MustRegister(RecommendationsTotal)
		registry.MustRegister(JobRunsTotal)
		registry.MustRegister(JobDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler. Collectors registered on the default
// registry (the oracle client metrics) are served alongside the backtest registry.
func Handler() http.Handler {
	gatherers := prometheus.Gatherers{GetRegistry(), prometheus.DefaultGatherer}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

// RecordPeriod records one replayed period.
func RecordPeriod(decision string, tickets int) {
	PeriodsEvaluatedTotal.WithLabelValues(decision).Inc()
	if tickets > 0 {
		TicketsPlacedTotal.Add(float64(tickets))
	}
}

// RecordWinningPeriod records a bet period that paid out.
func RecordWinningPeriod(shape string) {
	WinningPeriodsTotal.WithLabelValues(shape).Inc()
}

// RecordIngestion records the outcome of an ingestion batch.
func RecordIngestion(accepted, rejected, duplicates int) {
	DrawsIngestedTotal.WithLabelValues("accepted").Add(float64(accepted))
	DrawsIngestedTotal.WithLabelValues("rejected").Add(float64(rejected - duplicates))
	DrawsIngestedTotal.WithLabelValues("duplicate").Add(float64(duplicates))
}

// UpdateCapital updates the current capital gauge.
func UpdateCapital(amount float64) {
	CurrentCapital.Set(amount)
}

// UpdateOracleCacheItems updates the cached vector count.
func UpdateOracleCacheItems(n int) {
	OracleCacheItems.Set(float64(n))
}

// RecordForwardPassDuration records forward pass duration.
func RecordForwardPassDuration(durationSeconds float64) {
	ForwardPassDuration.Observe(durationSeconds)
}

// RecordBacktestDuration records backtest duration.
func RecordBacktestDuration(durationSeconds float64) {
	BacktestDuration.Observe(durationSeconds)
}
