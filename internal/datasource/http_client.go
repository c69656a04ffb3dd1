package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimit    float64 // requests per second
}

// DefaultHTTPClientConfig returns recommended defaults
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:      30 * time.Second,
		MaxRetries:   5,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 10 * time.Second,
		RateLimit:    2.0,
	}
}

// HTTPSource downloads a draw export in the same JSON layout as the file source
type HTTPSource struct {
	url     string
	client  *retryablehttp.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// NewHTTPSource creates a rate-limited, retrying draw source
func NewHTTPSource(url string, cfg HTTPClientConfig, logger *logrus.Logger) *HTTPSource {
	if logger == nil {
		logger = logrus.New()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = customRetryPolicy()
	retryClient.Logger = nil

	return &HTTPSource{
		url:     url,
		client:  retryClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:  logger,
	}
}

func (s *HTTPSource) Name() string {
	return "http"
}

func (s *HTTPSource) FetchDraws(ctx context.Context) ([]RawDraw, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, NewDataSourceError(s.Name(), ErrCodeNetworkError, s.url, fmt.Errorf("%w: %v", ErrNetworkError, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewDataSourceError(s.Name(), ErrCodeNotFound, s.url, ErrNotFound)
	case resp.StatusCode >= 500:
		return nil, NewDataSourceError(s.Name(), ErrCodeServerError, fmt.Sprintf("status %d", resp.StatusCode), ErrServerError)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(s.Name(), ErrCodeInvalidData, fmt.Sprintf("status %d: %s", resp.StatusCode, body), ErrInvalidData)
	}

	draws, err := DecodeDraws(resp.Body)
	if err != nil {
		return nil, NewDataSourceError(s.Name(), ErrCodeInvalidData, s.url, err)
	}
	s.logger.WithFields(logrus.Fields{
		"url":   s.url,
		"draws": len(draws),
	}).Debug("Fetched draw export")
	return draws, nil
}

// Close closes any resources held by the client
func (s *HTTPSource) Close() error {
	s.client.HTTPClient.CloseIdleConnections()
	return nil
}

// customRetryPolicy defines which HTTP responses should trigger a retry
func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		// Retry on rate limit (429) and server errors
		if resp.StatusCode == 429 || resp.StatusCode == 500 || resp.StatusCode == 502 || resp.StatusCode == 503 || resp.StatusCode == 504 {
			return true, nil
		}
		return false, nil
	}
}
