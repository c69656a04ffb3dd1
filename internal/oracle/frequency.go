package oracle

import (
	"context"

	"github.com/yourusername/digit-edge/internal/models"
)

// FrequencyOracle scores each digit by its smoothed share of appearances in the window.
// It needs no external model and serves as the default local oracle.
type FrequencyOracle struct {
	Smoothing float64
}

func (o FrequencyOracle) Name() string {
	return "frequency"
}

func (o FrequencyOracle) Predict(ctx context.Context, req Request) (models.ProbabilityVector, error) {
	var vec models.ProbabilityVector
	if err := ctx.Err(); err != nil {
		return vec, err
	}

	var counts [10]float64
	var seen float64
	for _, d := range req.Window {
		if !d.Valid() {
			continue
		}
		for _, v := range d {
			counts[v]++
			seen++
		}
	}

	total := seen + o.Smoothing*float64(len(counts))
	if total == 0 {
		return vec, models.ErrDegenerateVector
	}
	for digit, c := range counts {
		vec[digit] = (c + o.Smoothing) / total
	}
	return vec, nil
}
