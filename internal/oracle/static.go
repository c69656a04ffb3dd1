package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/yourusername/digit-edge/internal/models"
)

// StaticOracle replays vectors recorded ahead of time, keyed by target period
type StaticOracle struct {
	vectors map[string]models.ProbabilityVector
}

// NewStaticOracle copies the recorded vectors
func NewStaticOracle(vectors map[string]models.ProbabilityVector) *StaticOracle {
	out := make(map[string]models.ProbabilityVector, len(vectors))
	for k, v := range vectors {
		out[k] = v
	}
	return &StaticOracle{vectors: out}
}

type predictionsFile struct {
	Predictions []struct {
		Period        string    `json:"period"`
		Probabilities []float64 `json:"probabilities"`
	} `json:"predictions"`
}

// LoadStaticOracle reads {"predictions":[{"period":"...","probabilities":[...10 floats]}]}.
// Entries with the wrong length are kept as-is so the degenerate vector surfaces at prediction time.
func LoadStaticOracle(path string) (*StaticOracle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read predictions file: %w", err)
	}
	var file predictionsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse predictions file: %w", err)
	}

	vectors := make(map[string]models.ProbabilityVector, len(file.Predictions))
	for _, p := range file.Predictions {
		var vec models.ProbabilityVector
		copy(vec[:], p.Probabilities)
		vectors[p.Period] = vec
	}
	return &StaticOracle{vectors: vectors}, nil
}

func (o *StaticOracle) Name() string {
	return "static"
}

func (o *StaticOracle) Predict(ctx context.Context, req Request) (models.ProbabilityVector, error) {
	if err := ctx.Err(); err != nil {
		return models.ProbabilityVector{}, err
	}
	vec, ok := o.vectors[req.PeriodID]
	if !ok {
		return vec, fmt.Errorf("%w for period %s", ErrNoPrediction, req.PeriodID)
	}
	return vec, nil
}

// Len returns the number of recorded periods
func (o *StaticOracle) Len() int {
	return len(o.vectors)
}
