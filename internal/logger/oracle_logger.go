// Package logger provides oracle-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// OracleLogger provides dedicated logging for probability oracle calls.
type OracleLogger struct {
	*logrus.Entry
}

// NewOracleLogger creates a new oracle logger.
func NewOracleLogger(baseLogger *logrus.Logger) *OracleLogger {
	return &OracleLogger{
		Entry: baseLogger.WithField("component", "oracle"),
	}
}

// LogPrediction logs one oracle request.
func (ol *OracleLogger) LogPrediction(oracle string, windowSize int, cacheHit bool, latencyMs float64) {
	ol.WithFields(logrus.Fields{
		"oracle":      oracle,
		"window_size": windowSize,
		"cache_hit":   cacheHit,
		"latency_ms":  latencyMs,
	}).Debug("Oracle prediction completed")
}

// LogForwardPass logs the cached forward pass over a draw history.
func (ol *OracleLogger) LogForwardPass(periods, scored, skipped int, durationMs float64) {
	ol.WithFields(logrus.Fields{
		"periods":     periods,
		"scored":      scored,
		"skipped":     skipped,
		"duration_ms": durationMs,
	}).Info("Forward pass completed")
}

// LogCircuitStateChange logs oracle circuit breaker transitions.
func (ol *OracleLogger) LogCircuitStateChange(name, from, to string) {
	ol.WithFields(logrus.Fields{
		"breaker": name,
		"from":    from,
		"to":      to,
	}).Warn("Oracle circuit breaker state changed")
}
