package oracle

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/digit-edge/internal/models"
)

// CachedOracle wraps an Oracle with a prediction cache
type CachedOracle struct {
	next   Oracle
	cache  *PredictionCache
	logger *logrus.Logger
}

// NewCachedOracle creates a cached oracle
func NewCachedOracle(next Oracle, ttl time.Duration, logger *logrus.Logger) *CachedOracle {
	if logger == nil {
		logger = logrus.New()
	}
	return &CachedOracle{
		next:   next,
		cache:  NewPredictionCache(ttl),
		logger: logger,
	}
}

func (c *CachedOracle) Name() string {
	return c.next.Name()
}

// Predict serves from cache when the same window was seen before. Errors are not cached.
func (c *CachedOracle) Predict(ctx context.Context, req Request) (models.ProbabilityVector, error) {
	key := cacheKey(c.next.Name(), req.Window)
	if vec, ok := c.cache.Get(key); ok {
		c.logger.WithField("period", req.PeriodID).Debug("Cache hit for prediction")
		PredictionsTotal.WithLabelValues(c.next.Name(), "true").Inc()
		return vec, nil
	}

	start := time.Now()
	vec, err := c.next.Predict(ctx, req)
	PredictionLatency.WithLabelValues(c.next.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		return vec, err
	}

	c.cache.Set(key, vec)
	PredictionsTotal.WithLabelValues(c.next.Name(), "false").Inc()
	return vec, nil
}

// Cache exposes the underlying cache for stats
func (c *CachedOracle) Cache() *PredictionCache {
	return c.cache
}
