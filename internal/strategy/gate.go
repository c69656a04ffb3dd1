package strategy

import (
	"fmt"
	"math"
	"sort"
)

// GateMode selects how the bet/skip threshold is derived
type GateMode string

const (
	GateModeFixed      GateMode = "fixed"
	GateModePercentile GateMode = "percentile"
)

// CutMode selects which scores a percentile cut may look at
type CutMode string

const (
	// CutWindow derives one cut from every score in the evaluation window, including later periods
	CutWindow CutMode = "window"
	// CutExpanding uses all strictly earlier scores
	CutExpanding CutMode = "expanding"
	// CutRolling uses the last Lookback strictly earlier scores
	CutRolling CutMode = "rolling"
)

// Decision is the gate's verdict for one period
type Decision struct {
	Bet       bool    `json:"bet"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
	Gap       float64 `json:"gap"`
	WarmingUp bool    `json:"warming_up,omitempty"`
}

// Gate produces a threshold for every period of a scored series. Unscored periods are NaN
// in the input; a NaN threshold means the gate cannot decide yet.
type Gate interface {
	Name() string
	Thresholds(scores []float64) []float64
}

// GateConfig is the configuration surface for NewGate
type GateConfig struct {
	Mode       GateMode
	Threshold  float64
	Percentile float64
	Cut        CutMode
	Lookback   int
	MinHistory int
}

// NewGate builds the configured gate
func NewGate(cfg GateConfig) (Gate, error) {
	switch cfg.Mode {
	case GateModeFixed, "":
		return FixedGate{Threshold: cfg.Threshold}, nil
	case GateModePercentile:
		g := PercentileGate{
			Percentile: cfg.Percentile,
			Cut:        cfg.Cut,
			Lookback:   cfg.Lookback,
			MinHistory: cfg.MinHistory,
		}
		if err := g.Validate(); err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown gate mode %q", cfg.Mode)
	}
}

// Decide bets when the score reaches the threshold
func Decide(score, threshold float64) Decision {
	d := Decision{Score: score, Threshold: threshold}
	if math.IsNaN(threshold) {
		d.WarmingUp = true
		return d
	}
	if math.IsNaN(score) {
		return d
	}
	d.Gap = score - threshold
	d.Bet = score >= threshold
	return d
}

// FixedGate applies one constant threshold
type FixedGate struct {
	Threshold float64
}

func (g FixedGate) Name() string {
	return fmt.Sprintf("fixed(%.2f)", g.Threshold)
}

func (g FixedGate) Thresholds(scores []float64) []float64 {
	out := make([]float64, len(scores))
	for i := range out {
		out[i] = g.Threshold
	}
	return out
}

// PercentileGate bets on periods scoring in the top (1-Percentile) share
type PercentileGate struct {
	Percentile float64
	Cut        CutMode
	Lookback   int
	MinHistory int
}

// Validate checks the percentile and cut parameters
func (g PercentileGate) Validate() error {
	if g.Percentile <= 0 || g.Percentile >= 1 {
		return fmt.Errorf("percentile must be in (0,1), got %v", g.Percentile)
	}
	switch g.Cut {
	case CutWindow, CutExpanding, "":
	case CutRolling:
		if g.Lookback < 1 {
			return fmt.Errorf("rolling cut requires a positive lookback")
		}
	default:
		return fmt.Errorf("unknown cut mode %q", g.Cut)
	}
	return nil
}

func (g PercentileGate) Name() string {
	cut := g.Cut
	if cut == "" {
		cut = CutWindow
	}
	return fmt.Sprintf("percentile(%.2f,%s)", g.Percentile, cut)
}

func (g PercentileGate) Thresholds(scores []float64) []float64 {
	out := make([]float64, len(scores))
	q := g.Percentile * 100

	switch g.Cut {
	case CutExpanding:
		var prior []float64
		for i, s := range scores {
			if len(prior) >= g.minHistory() {
				out[i] = percentileSorted(prior, q)
			} else {
				out[i] = math.NaN()
			}
			if !math.IsNaN(s) {
				idx := sort.SearchFloat64s(prior, s)
				prior = append(prior, 0)
				copy(prior[idx+1:], prior[idx:])
				prior[idx] = s
			}
		}
	case CutRolling:
		for i := range scores {
			start := i - g.Lookback
			if start < 0 {
				start = 0
			}
			out[i] = g.causalCut(finite(scores[start:i]), q)
		}
	default:
		cut := Percentile(finite(scores), q)
		for i := range out {
			out[i] = cut
		}
	}
	return out
}

func (g PercentileGate) causalCut(prior []float64, q float64) float64 {
	if len(prior) < g.minHistory() {
		return math.NaN()
	}
	return Percentile(prior, q)
}

func (g PercentileGate) minHistory() int {
	if g.MinHistory < 1 {
		return 1
	}
	return g.MinHistory
}

// Percentile returns the q-th percentile (0-100) using linear interpolation between
// closest ranks. An empty input yields NaN.
func Percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentileSorted(sorted, q)
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
