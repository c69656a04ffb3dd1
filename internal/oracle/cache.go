package oracle

import (
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/digit-edge/internal/models"
)

// PredictionCache keeps oracle output in memory keyed by oracle name and window fingerprint
type PredictionCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewPredictionCache creates a new prediction cache
func NewPredictionCache(ttl time.Duration) *PredictionCache {
	return &PredictionCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

func cacheKey(oracleName string, window []models.Digits) string {
	return oracleName + ":" + Fingerprint(window)
}

// Get retrieves a cached vector
func (pc *PredictionCache) Get(key string) (models.ProbabilityVector, bool) {
	if v, found := pc.cache.Get(key); found {
		if vec, ok := v.(models.ProbabilityVector); ok {
			pc.hitCount.Add(1)
			pc.updateMetrics()
			return vec, true
		}
	}
	pc.missCount.Add(1)
	pc.updateMetrics()
	return models.ProbabilityVector{}, false
}

// Set stores a vector
func (pc *PredictionCache) Set(key string, vec models.ProbabilityVector) {
	pc.cache.Set(key, vec, pc.ttl)
}

// Clear flushes the entire cache
func (pc *PredictionCache) Clear() {
	pc.cache.Flush()
	pc.hitCount.Store(0)
	pc.missCount.Store(0)
}

// Stats returns cache statistics
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	hits = pc.hitCount.Load()
	misses = pc.missCount.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}

func (pc *PredictionCache) updateMetrics() {
	_, _, ratio := pc.Stats()
	CacheHitRatio.Set(ratio)
}
