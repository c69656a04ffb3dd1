package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/digit-edge/internal/models"
)

func newDefaultScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultRegistry())
	require.NoError(t, err)
	return s
}

func TestScoreKnownValues(t *testing.T) {
	s := newDefaultScorer(t)
	vec := models.ProbabilityVector{0.3, 0.2, 0.1}
	history := []models.Digits{{1, 2, 3}, {1, 2, 3}}

	b, err := s.Breakdown(vec, history)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, b["top1_prob"], 1e-9)
	assert.InDelta(t, 0.2/0.3, b["top3_mean_prob"], 1e-9)
	assert.InDelta(t, 1.0, b["gap_1_2"], 1e-9)
	assert.InDelta(t, 0.33993, b["prob_std"], 1e-4)
	assert.InDelta(t, 1.0, b["top3_concentration"], 1e-6)
	assert.Zero(t, b["digit_freq_std"])
	assert.Zero(t, b["shape_entropy"])
	assert.Zero(t, b["sum_std"])
	assert.InDelta(t, 0.2, b["recent_5_unique"], 1e-9)
	assert.InDelta(t, 0.2, b["max_consecutive_shape"], 1e-9)

	score, err := s.Score(vec, history)
	require.NoError(t, err)
	assert.InDelta(t, 50.399, score, 1e-3)
}

func TestScoreSkipsMalformedHistory(t *testing.T) {
	s := newDefaultScorer(t)
	vec := skewedVector()
	clean := []models.Digits{{1, 2, 3}, {4, 4, 5}, {0, 9, 9}}
	dirty := []models.Digits{{1, 2, 3}, {4, 4, 5}, {1, 12, 3}, {0, 9, 9}, {-1, 0, 0}}

	a, err := s.Score(vec, clean)
	require.NoError(t, err)
	b, err := s.Score(vec, dirty)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestScoreRequiresHistory(t *testing.T) {
	s := newDefaultScorer(t)
	_, err := s.Score(skewedVector(), nil)
	assert.ErrorIs(t, err, ErrEmptyHistory)

	_, err = s.Score(skewedVector(), []models.Digits{{10, 0, 0}})
	assert.ErrorIs(t, err, ErrEmptyHistory)

	modelOnly, err := NewScorer(ModelOnlyRegistry())
	require.NoError(t, err)
	score, err := modelOnly.Score(skewedVector(), nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestScoreRejectsDegenerateVector(t *testing.T) {
	s := newDefaultScorer(t)
	_, err := s.Score(models.ProbabilityVector{}, []models.Digits{{1, 2, 3}})
	assert.ErrorIs(t, err, models.ErrDegenerateVector)
}

func TestShapeEntropyFeature(t *testing.T) {
	s := newDefaultScorer(t)

	b, err := s.Breakdown(skewedVector(), []models.Digits{{1, 1, 1}, {1, 1, 2}, {1, 2, 3}})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, b["shape_entropy"], 1e-9)

	b, err = s.Breakdown(skewedVector(), []models.Digits{{1, 2, 3}, {4, 5, 6}, {1, 1, 2}, {7, 8, 9}})
	require.NoError(t, err)
	assert.InDelta(t, 0.8113, b["shape_entropy"], 1e-4)
}

func TestScoreIsDeterministicAndBounded(t *testing.T) {
	s := newDefaultScorer(t)
	history := []models.Digits{{1, 2, 3}, {4, 4, 5}, {0, 9, 9}, {7, 7, 7}, {3, 5, 8}, {2, 2, 6}}
	first, err := s.Score(skewedVector(), history)
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		again, err := s.Score(skewedVector(), history)
		require.NoError(t, err)
		require.Equal(t, math.Float64bits(first), math.Float64bits(again), "score changed on call %d", i)
	}

	in := FeatureInput{History: history}
	entropy := shapeEntropy(in)
	for i := 0; i < 500; i++ {
		require.Equal(t, math.Float64bits(entropy), math.Float64bits(shapeEntropy(in)))
	}
	assert.GreaterOrEqual(t, first, 0.0)
	assert.LessOrEqual(t, first, s.Registry().MaxScore())
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, 90.0, DefaultRegistry().MaxScore())
	assert.Equal(t, 100.0, ModelOnlyRegistry().MaxScore())
	assert.True(t, DefaultRegistry().RequiresHistory())
	assert.False(t, ModelOnlyRegistry().RequiresHistory())

	f := Feature{Name: "x", Weight: 1, Scale: 1, Extract: topProb}
	_, err := NewRegistry(f, f)
	assert.Error(t, err)
	_, err = NewRegistry(Feature{Name: "y", Weight: 1})
	assert.Error(t, err)
	_, err = NewRegistry()
	assert.Error(t, err)

	reweighted, err := DefaultRegistry().WithWeights(map[string]float64{"top1_prob": 25})
	require.NoError(t, err)
	assert.Equal(t, 100.0, reweighted.MaxScore())
	assert.Equal(t, 90.0, DefaultRegistry().MaxScore())

	_, err = DefaultRegistry().WithWeights(map[string]float64{"nope": 1})
	assert.Error(t, err)

	feature, ok := DefaultRegistry().Get("sum_std")
	require.True(t, ok)
	assert.Equal(t, 1.0, feature.Normalize(7))
	assert.Equal(t, 0.4, feature.Normalize(2))

	_, err = RegistryByName("model_only")
	assert.NoError(t, err)
	_, err = RegistryByName("bogus")
	assert.Error(t, err)
}

func TestConfidence(t *testing.T) {
	s := newDefaultScorer(t)
	assert.InDelta(t, 0.5, s.Confidence(45), 1e-12)
	assert.Equal(t, 1.0, s.Confidence(120))
	assert.Equal(t, 0.0, s.Confidence(-3))
}
