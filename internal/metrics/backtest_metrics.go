// Package metrics defines backtesting-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by method and status",
	}, []string{"method", "status"})

	MonteCarloTrialsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "monte_carlo_trials_total",
		Help:      "Total number of baseline trials by status",
	}, []string{"status"})

	ScanThresholdsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scan_thresholds_total",
		Help:      "Total number of threshold scan units by status",
	}, []string{"status"})

	RecommendationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendations_total",
		Help:      "Total number of run recommendations by verdict",
	}, []string{"recommendation"})
)

// Backtest histogram vectors
var (
	OpportunityScore = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "opportunity_score",
		Help:      "Opportunity scores produced by the forward pass",
		Buckets:   []float64{30, 40, 50, 55, 58.45, 60, 65, 70, 80, 90, 100},
	}, []string{"oracle"})
)

// Backtest gauge vectors
var (
	BacktestROI = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_roi",
		Help:      "ROI of the latest run by method",
	}, []string{"method"})
)

// RecordBacktestRun records a backtest run event.
// method should be one of: "replay", "monte_carlo", "scan"
// status should be one of: "success", "failure"
func RecordBacktestRun(method, status string) {
	BacktestRunsTotal.WithLabelValues(method, status).Inc()
}

// RecordMonteCarloTrial records one baseline trial.
func RecordMonteCarloTrial(status string) {
	MonteCarloTrialsTotal.WithLabelValues(status).Inc()
}

// RecordScanThreshold records one threshold scan unit.
func RecordScanThreshold(status string) {
	ScanThresholdsTotal.WithLabelValues(status).Inc()
}

// RecordRecommendation records a run verdict.
func RecordRecommendation(recommendation string) {
	RecommendationsTotal.WithLabelValues(recommendation).Inc()
}

// RecordOpportunityScore records a forward pass score.
func RecordOpportunityScore(oracleName string, score float64) {
	OpportunityScore.WithLabelValues(oracleName).Observe(score)
}

// UpdateBacktestROI updates the latest ROI gauge for a method.
func UpdateBacktestROI(method string, roi float64) {
	BacktestROI.WithLabelValues(method).Set(roi)
}
