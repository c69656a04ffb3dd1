package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/digit-edge/internal/models"
)

func testHTTPConfig(url string) HTTPConfig {
	cfg := DefaultHTTPConfig(url)
	cfg.Timeout = 2 * time.Second
	cfg.MaxRetries = 2
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.RateLimit = 1000
	cfg.BreakerFailures = 2
	cfg.BreakerCooldown = time.Minute
	return cfg
}

func TestHTTPOraclePredict(t *testing.T) {
	var got predictRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(predictResponse{Probabilities: []float64{0.3, 0.3, 0.3, 0.02, 0.02, 0.02, 0.01, 0.01, 0.01, 0.01}})
	}))
	defer server.Close()

	cfg := testHTTPConfig(server.URL)
	cfg.APIKey = "secret"
	o, err := NewHTTPOracle(cfg, nil)
	require.NoError(t, err)
	defer o.Close()

	vec, err := o.Predict(context.Background(), Request{PeriodID: "2024010", Window: []models.Digits{{1, 2, 3}, {4, 5, 6}}})
	require.NoError(t, err)
	assert.Equal(t, 0.3, vec[0])
	assert.Equal(t, "2024010", got.Period)
	assert.Equal(t, [][3]int{{1, 2, 3}, {4, 5, 6}}, got.Window)
}

func TestHTTPOracleRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(predictResponse{Probabilities: []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}})
	}))
	defer server.Close()

	o, err := NewHTTPOracle(testHTTPConfig(server.URL), nil)
	require.NoError(t, err)

	_, err = o.Predict(context.Background(), Request{Window: []models.Digits{{1, 2, 3}}})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPOracleRejectsDegenerateVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(predictResponse{Probabilities: []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}})
	}))
	defer server.Close()

	o, err := NewHTTPOracle(testHTTPConfig(server.URL), nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = o.Predict(context.Background(), Request{Window: []models.Digits{{1, 2, 3}}})
		assert.ErrorIs(t, err, ErrInvalidResponse)
		assert.ErrorIs(t, err, models.ErrDegenerateVector)
	}
	assert.Equal(t, gobreaker.StateClosed, o.BreakerState())
}

func TestHTTPOracleOpensBreaker(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	o, err := NewHTTPOracle(testHTTPConfig(server.URL), nil)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = o.Predict(context.Background(), Request{Window: []models.Digits{{1, 2, 3}}})
		assert.ErrorIs(t, err, ErrOracleUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, o.BreakerState())

	before := calls.Load()
	_, err = o.Predict(context.Background(), Request{Window: []models.Digits{{1, 2, 3}}})
	assert.ErrorIs(t, err, ErrOracleUnavailable)
	assert.Equal(t, before, calls.Load())
}

func TestNewHTTPOracleRequiresURL(t *testing.T) {
	_, err := NewHTTPOracle(HTTPConfig{}, nil)
	assert.Error(t, err)
}
