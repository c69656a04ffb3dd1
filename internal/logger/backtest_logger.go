// Package logger provides backtest-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// BacktestLogger provides dedicated logging for walk-forward runs.
type BacktestLogger struct {
	*logrus.Entry
}

// NewBacktestLogger creates a new backtest logger.
func NewBacktestLogger(baseLogger *logrus.Logger) *BacktestLogger {
	return &BacktestLogger{
		Entry: baseLogger.WithField("component", "backtest"),
	}
}

// LogPeriodDecision logs the gate verdict for one period.
func (bl *BacktestLogger) LogPeriodDecision(periodID string, score, threshold float64, bet bool) {
	bl.WithFields(logrus.Fields{
		"period":    periodID,
		"score":     score,
		"threshold": threshold,
		"bet":       bet,
	}).Debug("Period decision")
}

// LogSettlement logs a settled bet period.
func (bl *BacktestLogger) LogSettlement(periodID, actual string, tickets int, cost, prize, capital int64) {
	entry := bl.WithFields(logrus.Fields{
		"period":  periodID,
		"actual":  actual,
		"tickets": tickets,
		"cost":    cost,
		"prize":   prize,
		"profit":  prize - cost,
		"capital": capital,
	})
	if prize > 0 {
		entry.Info("Bet period won")
		return
	}
	entry.Debug("Bet period settled")
}

// LogForcedSkip logs a period that could not be wagered.
func (bl *BacktestLogger) LogForcedSkip(periodID, reason string) {
	bl.WithFields(logrus.Fields{
		"period": periodID,
		"reason": reason,
	}).Debug("Period skipped")
}

// LogDegenerateVector logs an oracle output that failed validation.
func (bl *BacktestLogger) LogDegenerateVector(periodID string, err error) {
	bl.WithError(err).WithField("period", periodID).Warn("Degenerate probability vector, period skipped")
}

// LogRunSummary logs the end-of-run statistics.
func (bl *BacktestLogger) LogRunSummary(gate string, periods, betPeriods int, roi, winRate, maxDrawdown, sharpe float64, finalCapital int64) {
	bl.WithFields(logrus.Fields{
		"gate":          gate,
		"periods":       periods,
		"bet_periods":   betPeriods,
		"roi":           roi,
		"win_rate":      winRate,
		"max_drawdown":  maxDrawdown,
		"sharpe":        sharpe,
		"final_capital": finalCapital,
	}).Info("Backtest completed")
}

// LogBaselineSummary logs the Monte Carlo baseline aggregate.
func (bl *BacktestLogger) LogBaselineSummary(trials, excluded int, mean, p5, p95 float64) {
	bl.WithFields(logrus.Fields{
		"trials":   trials,
		"excluded": excluded,
		"roi_mean": mean,
		"roi_p5":   p5,
		"roi_p95":  p95,
	}).Info("Monte Carlo baseline completed")
}

// LogScanResult logs the threshold sweep outcome.
func (bl *BacktestLogger) LogScanResult(thresholds, excluded int, bestROIThreshold, bestROI float64) {
	bl.WithFields(logrus.Fields{
		"thresholds":         thresholds,
		"excluded":           excluded,
		"best_roi_threshold": bestROIThreshold,
		"best_roi":           bestROI,
	}).Info("Threshold scan completed")
}
