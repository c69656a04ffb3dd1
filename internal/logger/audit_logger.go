// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for data and persisted runs.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogDrawRejected logs a draw refused at ingestion.
func (al *AuditLogger) LogDrawRejected(source, periodID, reason, detail string) {
	al.WithFields(logrus.Fields{
		"source": source,
		"period": periodID,
		"reason": reason,
		"detail": detail,
	}).Warn("Draw rejected at ingestion")
}

// LogUnparsedDate logs a draw kept without a date.
func (al *AuditLogger) LogUnparsedDate(source, periodID, raw string) {
	al.WithFields(logrus.Fields{
		"source": source,
		"period": periodID,
		"date":   raw,
	}).Warn("Draw date not recognised, keeping draw undated")
}

// LogIngestion logs the outcome of an ingestion batch.
func (al *AuditLogger) LogIngestion(source string, accepted, rejected, duplicates int) {
	al.WithFields(logrus.Fields{
		"source":     source,
		"accepted":   accepted,
		"rejected":   rejected,
		"duplicates": duplicates,
	}).Info("Draw ingestion completed")
}

// LogRunPersisted logs a backtest run written to storage.
func (al *AuditLogger) LogRunPersisted(runID, configHash, recommendation string) {
	al.WithFields(logrus.Fields{
		"run_id":         runID,
		"config_hash":    configHash,
		"recommendation": recommendation,
	}).Info("Backtest run persisted")
}
