package strategy

import (
	"fmt"
	"sort"

	"github.com/yourusername/digit-edge/internal/models"
)

// TopDigits orders digits by descending score, lower digit first on ties, and keeps the first k
func TopDigits(vec models.ProbabilityVector, k int) []int {
	digits := make([]int, len(vec))
	for i := range digits {
		digits[i] = i
	}
	sort.SliceStable(digits, func(i, j int) bool {
		return vec[digits[i]] > vec[digits[j]]
	})
	if k < 0 {
		k = 0
	}
	if k > len(digits) {
		k = len(digits)
	}
	return digits[:k]
}

// Enumerate lists every group6 and group3 combination drawn from the top-k digits,
// ranked by probability. Group6 combinations come first in insertion order, so equal
// probabilities keep that order after ranking.
func Enumerate(vec models.ProbabilityVector, k int, prizes models.PrizeTable) ([]Candidate, error) {
	if k < 1 || k > 10 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, k)
	}
	if err := vec.Validate(); err != nil {
		return nil, err
	}

	top := TopDigits(vec, k)
	candidates := make([]Candidate, 0, groupSixCount(len(top))+len(top)*(len(top)-1))

	for i := 0; i < len(top); i++ {
		for j := i + 1; j < len(top); j++ {
			for l := j + 1; l < len(top); l++ {
				a, b, c := top[i], top[j], top[l]
				combo := models.Digits{a, b, c}.Sorted()
				candidates = append(candidates, Candidate{
					Combo:       combo,
					Type:        models.ShapeGroup6,
					Probability: 6 * vec[a] * vec[b] * vec[c],
					Prize:       prizes.Group6,
				})
			}
		}
	}

	for _, d := range top {
		for _, e := range top {
			if d == e {
				continue
			}
			combo := models.Digits{d, d, e}.Sorted()
			candidates = append(candidates, Candidate{
				Combo:       combo,
				Type:        models.ShapeGroup3,
				Probability: 3 * vec[d] * vec[d] * vec[e],
				Prize:       prizes.Group3,
			})
		}
	}

	RankCandidates(candidates)
	return candidates, nil
}

// RankCandidates sorts in place by descending probability, keeping insertion order on ties
func RankCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Probability > candidates[j].Probability
	})
}

func groupSixCount(n int) int {
	if n < 3 {
		return 0
	}
	return n * (n - 1) * (n - 2) / 6
}
