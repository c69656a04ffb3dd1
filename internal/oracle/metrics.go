package oracle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PredictionsTotal tracks oracle predictions
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_predictions_total",
			Help: "Total number of oracle predictions served",
		},
		[]string{"oracle", "cache_hit"},
	)

	// PredictionLatency tracks uncached oracle latency
	PredictionLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_prediction_latency_seconds",
			Help:    "Oracle prediction latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"oracle"},
	)

	// ErrorsTotal tracks oracle failures by kind
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_errors_total",
			Help: "Total number of oracle errors",
		},
		[]string{"oracle", "error_type"},
	)

	// CacheHitRatio tracks the prediction cache hit ratio
	CacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "oracle_cache_hit_ratio",
			Help: "Oracle prediction cache hit ratio",
		},
	)

	// CircuitState is 0 closed, 1 half-open, 2 open
	CircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "oracle_circuit_state",
			Help: "Oracle circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"breaker"},
	)
)
