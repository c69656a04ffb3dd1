package models

import (
	"fmt"
	"math"
)

// ProbabilityVector holds one non-negative score per digit 0-9. Scores need not sum to 1.
type ProbabilityVector [10]float64

// Validate rejects vectors that cannot drive enumeration
func (v ProbabilityVector) Validate() error {
	var total float64
	for digit, p := range v {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: digit %d is %v", ErrDegenerateVector, digit, p)
		}
		if p < 0 {
			return fmt.Errorf("%w: digit %d is negative (%v)", ErrDegenerateVector, digit, p)
		}
		total += p
	}
	if total == 0 {
		return fmt.Errorf("%w: all scores are zero", ErrDegenerateVector)
	}
	return nil
}

// VectorFromSlice converts an oracle response, requiring exactly 10 values
func VectorFromSlice(values []float64) (ProbabilityVector, error) {
	var v ProbabilityVector
	if len(values) != len(v) {
		return v, fmt.Errorf("%w: expected 10 scores, got %d", ErrDegenerateVector, len(values))
	}
	copy(v[:], values)
	return v, v.Validate()
}
