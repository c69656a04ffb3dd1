package strategy

import (
	"fmt"

	"github.com/yourusername/digit-edge/internal/models"
)

// Scorer reduces a probability vector and a history window to one opportunity score
type Scorer struct {
	registry *Registry
}

// NewScorer binds a scorer to an explicit feature registry
func NewScorer(registry *Registry) (*Scorer, error) {
	if registry == nil {
		return nil, fmt.Errorf("feature registry is required")
	}
	return &Scorer{registry: registry}, nil
}

// Registry returns the bound feature table
func (s *Scorer) Registry() *Registry {
	return s.registry
}

// Score computes the weighted sum of normalized features
func (s *Scorer) Score(vec models.ProbabilityVector, history []models.Digits) (float64, error) {
	breakdown, err := s.Breakdown(vec, history)
	if err != nil {
		return 0, err
	}
	var score float64
	for _, f := range s.registry.features {
		score += breakdown[f.Name] * f.Weight
	}
	return score, nil
}

// Breakdown returns each feature's normalized value in [0,1]
func (s *Scorer) Breakdown(vec models.ProbabilityVector, history []models.Digits) (map[string]float64, error) {
	if err := vec.Validate(); err != nil {
		return nil, err
	}
	in := NewFeatureInput(vec, history)
	if len(in.History) == 0 && s.registry.RequiresHistory() {
		return nil, ErrEmptyHistory
	}
	out := make(map[string]float64, len(s.registry.features))
	for _, f := range s.registry.features {
		out[f.Name] = f.Normalize(f.Extract(in))
	}
	return out, nil
}

// Confidence maps a score onto [0,1] relative to the registry maximum
func (s *Scorer) Confidence(score float64) float64 {
	max := s.registry.MaxScore()
	if max <= 0 {
		return 0
	}
	c := score / max
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
