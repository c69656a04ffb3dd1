package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerForEnvironment(t *testing.T) {
	log := NewLoggerForEnvironment("debug", "production")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = NewLoggerForEnvironment("nonsense", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestBacktestLoggerDecision(t *testing.T) {
	log, buf := setupTestLogger()
	NewBacktestLogger(log).LogPeriodDecision("2024101", 61.2, 58.45, true)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "backtest", logEntry["component"])
	assert.Equal(t, "2024101", logEntry["period"])
	assert.Equal(t, true, logEntry["bet"])
}

func TestBacktestLoggerSettlementWin(t *testing.T) {
	log, buf := setupTestLogger()
	NewBacktestLogger(log).LogSettlement("2024101", "012", 10, 20, 173, 10153)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "info", logEntry["level"])
	assert.Equal(t, float64(153), logEntry["profit"])
}

func TestBacktestLoggerDegenerateVector(t *testing.T) {
	log, buf := setupTestLogger()
	NewBacktestLogger(log).LogDegenerateVector("2024102", errors.New("all scores are zero"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "all scores are zero", logEntry["error"])
}

func TestBacktestLoggerRunSummary(t *testing.T) {
	log, buf := setupTestLogger()
	NewBacktestLogger(log).LogRunSummary("fixed(58.45)", 200, 12, 0.35, 0.25, 0.04, 0.8, 10420)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(12), logEntry["bet_periods"])
	assert.Equal(t, "fixed(58.45)", logEntry["gate"])
}

func TestOracleLoggerForwardPass(t *testing.T) {
	log, buf := setupTestLogger()
	NewOracleLogger(log).LogForwardPass(500, 470, 30, 12.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "oracle", logEntry["component"])
	assert.Equal(t, float64(30), logEntry["skipped"])
}

func TestAuditLoggerDrawRejected(t *testing.T) {
	log, buf := setupTestLogger()
	NewAuditLogger(log).LogDrawRejected("json_file", "2024103", "bad_numbers", "digit out of range")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "bad_numbers", logEntry["reason"])
	assert.Equal(t, "json_file", logEntry["source"])
}
