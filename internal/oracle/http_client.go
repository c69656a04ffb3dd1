package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/yourusername/digit-edge/internal/logger"
	"github.com/yourusername/digit-edge/internal/models"
)

// HTTPConfig holds configuration for the HTTP oracle client
type HTTPConfig struct {
	URL             string
	APIKey          string
	Timeout         time.Duration
	MaxRetries      int
	RetryWaitMin    time.Duration
	RetryWaitMax    time.Duration
	RateLimit       float64 // requests per second
	BreakerFailures uint32  // consecutive failures before the breaker opens
	BreakerCooldown time.Duration
}

// DefaultHTTPConfig returns recommended defaults
func DefaultHTTPConfig(url string) HTTPConfig {
	return HTTPConfig{
		URL:             url,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		RetryWaitMin:    100 * time.Millisecond,
		RetryWaitMax:    5 * time.Second,
		RateLimit:       20,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

type predictRequest struct {
	Period string   `json:"period,omitempty"`
	Window [][3]int `json:"window"`
}

type predictResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

// HTTPOracle calls a remote model service over JSON
type HTTPOracle struct {
	cfg     HTTPConfig
	client  *retryablehttp.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     *logger.OracleLogger
}

// NewHTTPOracle creates a rate-limited, retrying, circuit-broken oracle client
func NewHTTPOracle(cfg HTTPConfig, log *logrus.Logger) (*HTTPOracle, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("oracle url is required")
	}
	if log == nil {
		log = logrus.New()
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 20
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = customRetryPolicy()
	retryClient.Logger = nil

	o := &HTTPOracle{
		cfg:     cfg,
		client:  retryClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		log:     logger.NewOracleLogger(log),
	}
	o.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "oracle-http",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			// a bad payload is the model's fault, not the transport's
			return err == nil || errors.Is(err, ErrInvalidResponse) || errors.Is(err, models.ErrDegenerateVector) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			CircuitState.WithLabelValues(name).Set(float64(to))
			o.log.LogCircuitStateChange(name, from.String(), to.String())
		},
	})
	return o, nil
}

func (o *HTTPOracle) Name() string {
	return "http"
}

// Predict posts the window and validates the returned vector
func (o *HTTPOracle) Predict(ctx context.Context, req Request) (models.ProbabilityVector, error) {
	start := time.Now()
	result, err := o.breaker.Execute(func() (interface{}, error) {
		return o.call(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			ErrorsTotal.WithLabelValues(o.Name(), "circuit_open").Inc()
			return models.ProbabilityVector{}, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
		}
		return models.ProbabilityVector{}, err
	}

	vec := result.(models.ProbabilityVector)
	o.log.LogPrediction(o.Name(), len(req.Window), false, float64(time.Since(start).Microseconds())/1000)
	return vec, nil
}

func (o *HTTPOracle) call(ctx context.Context, req Request) (models.ProbabilityVector, error) {
	var vec models.ProbabilityVector

	if err := o.limiter.Wait(ctx); err != nil {
		return vec, fmt.Errorf("rate limiter error: %w", err)
	}

	body := predictRequest{Period: req.PeriodID, Window: make([][3]int, len(req.Window))}
	for i, d := range req.Window {
		body.Window[i] = [3]int(d)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return vec, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, o.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return vec, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.cfg.APIKey != "" {
		httpReq.Header.Set("X-API-Key", o.cfg.APIKey)
	}

	resp, err := o.client.Do(httpReq)
	if err != nil {
		ErrorsTotal.WithLabelValues(o.Name(), "network").Inc()
		return vec, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		ErrorsTotal.WithLabelValues(o.Name(), "http_error").Inc()
		return vec, fmt.Errorf("%w: status %d: %s", ErrOracleUnavailable, resp.StatusCode, string(msg))
	}

	var decoded predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		ErrorsTotal.WithLabelValues(o.Name(), "decode").Inc()
		return vec, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	vec, err = models.VectorFromSlice(decoded.Probabilities)
	if err != nil {
		ErrorsTotal.WithLabelValues(o.Name(), "degenerate").Inc()
		return vec, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return vec, nil
}

// Close releases idle connections
func (o *HTTPOracle) Close() error {
	o.client.HTTPClient.CloseIdleConnections()
	return nil
}

// BreakerState reports the current circuit breaker state
func (o *HTTPOracle) BreakerState() gobreaker.State {
	return o.breaker.State()
}

func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true, nil
		}
		return false, nil
	}
}
