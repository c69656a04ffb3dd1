package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func ready(t *testing.T, s *Server) (int, ReadyResponse) {
	t.Helper()
	rec := get(t, s.Handler(), "/ready")
	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "backtest", Port: "0"})
	for _, path := range []string{"/health", "/live"} {
		rec := get(t, s.Handler(), path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, CheckOK, resp["status"])
		assert.Equal(t, "backtest", resp["service"])
	}
}

func TestReadyFollowsEvaluations(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewServer(Config{ServiceName: "backtest", Port: "0", MaxStaleness: 26 * time.Hour})
	s.now = func() time.Time { return now }

	code, resp := ready(t, s)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, CheckNotReady, resp.Checks["scheduler"])

	s.SetReady(true)
	code, resp = ready(t, s)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, CheckPending, resp.Checks["evaluation"])

	s.RecordEvaluation(Evaluation{Finished: now.Add(-time.Hour), Periods: 100, BetPeriods: 12, ROI: 0.05, Recommendation: "ACCEPT"})
	code, resp = ready(t, s)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, CheckOK, resp.Checks["evaluation"])

	s.RecordEvaluation(Evaluation{Finished: now, Error: "oracle failed"})
	code, resp = ready(t, s)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "failed: oracle failed", resp.Checks["evaluation"])

	s.RecordEvaluation(Evaluation{Finished: now, Periods: 101})
	code, _ = ready(t, s)
	assert.Equal(t, http.StatusOK, code)

	now = now.Add(27 * time.Hour)
	code, resp = ready(t, s)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, CheckStale, resp.Checks["evaluation"])
}

func TestReadyChecksDatabase(t *testing.T) {
	s := NewServer(Config{ServiceName: "backtest", Port: "0", DB: fakePinger{}})
	s.SetReady(true)
	code, resp := ready(t, s)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, CheckOK, resp.Checks["database"])

	failing := NewServer(Config{ServiceName: "backtest", Port: "0", DB: fakePinger{err: errors.New("down")}})
	failing.SetReady(true)
	code, resp = ready(t, failing)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "failed: down", resp.Checks["database"])
}

func TestStatusCountsRuns(t *testing.T) {
	s := NewServer(Config{ServiceName: "backtest", Version: "1.2.0", Port: "0"})
	s.RecordEvaluation(Evaluation{Periods: 50, Recommendation: "REJECT"})
	s.RecordEvaluation(Evaluation{Error: "no draws"})

	rec := get(t, s.Handler(), "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var status Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 2, status.Runs)
	assert.Equal(t, 1, status.Failures)
	require.NotNil(t, status.LastAttempt)
	assert.Equal(t, "no draws", status.LastAttempt.Error)
	require.NotNil(t, status.LastSuccess)
	assert.Equal(t, 50, status.LastSuccess.Periods)
	assert.Equal(t, "REJECT", status.LastSuccess.Recommendation)
}

func TestMetricsPath(t *testing.T) {
	s := NewServer(Config{ServiceName: "backtest", Port: "0", MetricsPath: "/prom"})
	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/prom").Code)
}
