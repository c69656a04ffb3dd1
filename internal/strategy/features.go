package strategy

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/digit-edge/internal/models"
)

// FeatureInput is what every feature extractor sees for one period
type FeatureInput struct {
	Vector  models.ProbabilityVector
	Ranked  []float64 // vector scores, descending
	History []models.Digits
}

// NewFeatureInput builds the input, dropping history entries with digits outside 0-9
func NewFeatureInput(vec models.ProbabilityVector, history []models.Digits) FeatureInput {
	ranked := make([]float64, len(vec))
	copy(ranked, vec[:])
	sort.Sort(sort.Reverse(sort.Float64Slice(ranked)))

	valid := make([]models.Digits, 0, len(history))
	for _, d := range history {
		if d.Valid() {
			valid = append(valid, d)
		}
	}
	return FeatureInput{Vector: vec, Ranked: ranked, History: valid}
}

// Feature is one weighted scoring component. Extract returns a raw value that is
// divided by Scale and clipped to [0,1] before weighting.
type Feature struct {
	Name        string
	Weight      float64
	Scale       float64
	UsesHistory bool
	Extract     func(in FeatureInput) float64
}

// Normalize applies the feature's scale and clips to [0,1]
func (f Feature) Normalize(raw float64) float64 {
	if math.IsNaN(raw) {
		return 0
	}
	scale := f.Scale
	if scale == 0 {
		scale = 1
	}
	return math.Max(0, math.Min(1, raw/scale))
}

// Registry is an ordered, immutable table of features
type Registry struct {
	features []Feature
}

// NewRegistry validates and freezes a feature table
func NewRegistry(features ...Feature) (*Registry, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("registry needs at least one feature")
	}
	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		if f.Name == "" {
			return nil, fmt.Errorf("feature name is required")
		}
		if f.Extract == nil {
			return nil, fmt.Errorf("feature %s has no extractor", f.Name)
		}
		if f.Weight < 0 || f.Scale < 0 {
			return nil, fmt.Errorf("feature %s has negative weight or scale", f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("duplicate feature %s", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	out := make([]Feature, len(features))
	copy(out, features)
	return &Registry{features: out}, nil
}

// Features returns a copy of the table in registration order
func (r *Registry) Features() []Feature {
	out := make([]Feature, len(r.features))
	copy(out, r.features)
	return out
}

// Get looks a feature up by name
func (r *Registry) Get(name string) (Feature, bool) {
	for _, f := range r.features {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// RequiresHistory reports whether any feature reads the draw history
func (r *Registry) RequiresHistory() bool {
	for _, f := range r.features {
		if f.UsesHistory {
			return true
		}
	}
	return false
}

// MaxScore is the score reached when every feature saturates
func (r *Registry) MaxScore() float64 {
	var total float64
	for _, f := range r.features {
		total += f.Weight
	}
	return total
}

// WithWeights returns a new registry with overridden weights; unknown names are an error
func (r *Registry) WithWeights(weights map[string]float64) (*Registry, error) {
	features := r.Features()
	for name, w := range weights {
		found := false
		for i := range features {
			if features[i].Name == name {
				features[i].Weight = w
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown feature %s", name)
		}
	}
	return NewRegistry(features...)
}

// DefaultRegistry is the full ten-feature table using model output and draw history
func DefaultRegistry() *Registry {
	r, _ := NewRegistry(
		Feature{Name: "top1_prob", Weight: 15, Scale: 0.3, Extract: topProb},
		Feature{Name: "top3_mean_prob", Weight: 15, Scale: 0.3, Extract: topThreeMean},
		Feature{Name: "gap_1_2", Weight: 10, Scale: 0.1, Extract: topGap},
		Feature{Name: "prob_std", Weight: 10, Scale: 0.3, Extract: vectorStd},
		Feature{Name: "top3_concentration", Weight: 10, Scale: 1, Extract: topThreeShare},
		Feature{Name: "digit_freq_std", Weight: 8, Scale: 5, UsesHistory: true, Extract: digitFrequencyStd},
		Feature{Name: "shape_entropy", Weight: 7, Scale: 1, UsesHistory: true, Extract: shapeEntropy},
		Feature{Name: "sum_std", Weight: 5, Scale: 5, UsesHistory: true, Extract: sumStd},
		Feature{Name: "recent_5_unique", Weight: 5, Scale: 5, UsesHistory: true, Extract: recentUnique},
		Feature{Name: "max_consecutive_shape", Weight: 5, Scale: 10, UsesHistory: true, Extract: longestShapeRun},
	)
	return r
}

// ModelOnlyRegistry scores from the probability vector alone, on a 0-100 scale
func ModelOnlyRegistry() *Registry {
	r, _ := NewRegistry(
		Feature{Name: "top1_prob", Weight: 30, Scale: 0.3, Extract: topProb},
		Feature{Name: "top3_mean_prob", Weight: 25, Scale: 0.25, Extract: topThreeMean},
		Feature{Name: "gap_1_2", Weight: 20, Scale: 0.1, Extract: topGap},
		Feature{Name: "prob_std", Weight: 15, Scale: 0.15, Extract: vectorStd},
		Feature{Name: "top3_sum", Weight: 10, Scale: 0.6, Extract: topThreeSum},
	)
	return r
}

// RegistryByName resolves a configured registry name
func RegistryByName(name string) (*Registry, error) {
	switch name {
	case "", "full":
		return DefaultRegistry(), nil
	case "model_only":
		return ModelOnlyRegistry(), nil
	default:
		return nil, fmt.Errorf("unknown feature registry %q", name)
	}
}

func topProb(in FeatureInput) float64 {
	return in.Ranked[0]
}

func topThreeMean(in FeatureInput) float64 {
	return topThreeSum(in) / 3
}

func topThreeSum(in FeatureInput) float64 {
	return in.Ranked[0] + in.Ranked[1] + in.Ranked[2]
}

func topGap(in FeatureInput) float64 {
	return in.Ranked[0] - in.Ranked[1]
}

func vectorStd(in FeatureInput) float64 {
	return populationStd(in.Vector[:])
}

func topThreeShare(in FeatureInput) float64 {
	var total float64
	for _, p := range in.Vector {
		total += p
	}
	return topThreeSum(in) / (total + 1e-10)
}

// digitFrequencyStd is the spread of occurrence counts over the digits that appear at least once
func digitFrequencyStd(in FeatureInput) float64 {
	var counts [10]int
	for _, d := range in.History {
		for _, v := range d {
			counts[v]++
		}
	}
	present := make([]float64, 0, len(counts))
	for _, c := range counts {
		if c > 0 {
			present = append(present, float64(c))
		}
	}
	return populationStd(present)
}

// shapeEntropy is the Shannon entropy of the shape distribution normalised by its maximum
func shapeEntropy(in FeatureInput) float64 {
	if len(in.History) == 0 {
		return 0
	}
	var counts [3]int
	for _, d := range in.History {
		counts[shapeIndex(d.Shape())]++
	}
	distinct := 0
	for _, c := range counts {
		if c > 0 {
			distinct++
		}
	}
	maxEntropy := math.Log2(float64(distinct))
	if maxEntropy == 0 {
		return 0
	}
	n := float64(len(in.History))
	var entropy float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		entropy -= p * math.Log2(p)
	}
	return entropy / maxEntropy
}

// shapeIndex fixes the summation order leopard, group3, group6
func shapeIndex(s models.Shape) int {
	switch s {
	case models.ShapeLeopard:
		return 0
	case models.ShapeGroup3:
		return 1
	default:
		return 2
	}
}

func sumStd(in FeatureInput) float64 {
	sums := make([]float64, len(in.History))
	for i, d := range in.History {
		sums[i] = float64(d.Sum())
	}
	return populationStd(sums)
}

func recentUnique(in FeatureInput) float64 {
	start := len(in.History) - 5
	if start < 0 {
		start = 0
	}
	seen := make(map[models.Digits]struct{}, 5)
	for _, d := range in.History[start:] {
		seen[d] = struct{}{}
	}
	return float64(len(seen))
}

func longestShapeRun(in FeatureInput) float64 {
	if len(in.History) == 0 {
		return 0
	}
	longest, current := 1, 1
	for i := 1; i < len(in.History); i++ {
		if in.History[i].Shape() == in.History[i-1].Shape() {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return float64(longest)
}

func populationStd(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}
