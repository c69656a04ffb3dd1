package backtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/yourusername/digit-edge/internal/metrics"
	"github.com/yourusername/digit-edge/internal/models"
	"github.com/yourusername/digit-edge/internal/oracle"
)

// ErrInsufficientHistory is returned when no period can be evaluated
var ErrInsufficientHistory = errors.New("not enough valid draws to evaluate any period")

// SkipReason explains why a period was not wagered
type SkipReason string

const (
	SkipInsufficientHistory SkipReason = "insufficient_history"
	SkipDegenerateVector    SkipReason = "degenerate_vector"
	SkipMissingPrediction   SkipReason = "missing_prediction"
	SkipUnscorable          SkipReason = "unscorable"
	SkipWarmingUp           SkipReason = "warming_up"
	SkipBelowThreshold      SkipReason = "below_threshold"
	SkipInsufficientCapital SkipReason = "insufficient_capital"
	SkipEmptyBudget         SkipReason = "empty_budget"
	SkipNoCandidates        SkipReason = "no_candidates"
)

// SeriesPoint is the cached oracle output and score for one evaluated period.
// Unscored periods carry a NaN score and a skip reason.
type SeriesPoint struct {
	Index      int
	PeriodID   string
	Date       time.Time
	Actual     models.Digits
	Vector     models.ProbabilityVector
	Score      float64
	SkipReason SkipReason
}

// Scored reports whether the point can reach the decision gate
func (p SeriesPoint) Scored() bool {
	return p.SkipReason == "" && !math.IsNaN(p.Score)
}

// Series is the result of one forward pass. It is read-only once built and is shared
// by every replay, percentile cut and threshold scan of the same window.
type Series struct {
	Points     []SeriesPoint
	WindowSize int
	OracleName string
	Dropped    int
}

// Len returns the number of evaluated periods
func (s *Series) Len() int {
	return len(s.Points)
}

// Scores returns one score per evaluated period, NaN where unscored
func (s *Series) Scores() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		if p.Scored() {
			out[i] = p.Score
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Actuals returns the drawn digits of every evaluated period
func (s *Series) Actuals() []models.Digits {
	out := make([]models.Digits, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Actual
	}
	return out
}

// ScoredCount returns how many periods carry a score
func (s *Series) ScoredCount() int {
	n := 0
	for _, p := range s.Points {
		if p.Scored() {
			n++
		}
	}
	return n
}

// Prepare runs the single forward pass: for every evaluated period it slices the
// preceding window of valid draws, calls the oracle once and scores the vector.
// Malformed draws are dropped first so they feed neither the oracle nor settlement.
func (e *Engine) Prepare(ctx context.Context, draws []models.Draw) (*Series, error) {
	start := time.Now()

	valid := make([]models.Draw, 0, len(draws))
	dropped := 0
	for i := range draws {
		if err := draws[i].Validate(); err != nil {
			dropped++
			e.events.LogForcedSkip(draws[i].PeriodID, "invalid_draw")
			continue
		}
		valid = append(valid, draws[i])
	}

	w := e.config.WindowSize
	first := w
	if e.config.TestPeriods > 0 {
		first = len(valid) - e.config.TestPeriods
		if first < 0 {
			first = 0
		}
	}
	if first >= len(valid) {
		return nil, fmt.Errorf("%w: %d valid draws, window %d", ErrInsufficientHistory, len(valid), w)
	}

	series := &Series{
		Points:     make([]SeriesPoint, 0, len(valid)-first),
		WindowSize: w,
		OracleName: e.oracle.Name(),
		Dropped:    dropped,
	}

	for i := first; i < len(valid); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d := valid[i]
		pt := SeriesPoint{Index: i, PeriodID: d.PeriodID, Date: d.Date, Actual: d.Digits, Score: math.NaN()}

		if i < w {
			pt.SkipReason = SkipInsufficientHistory
			series.Points = append(series.Points, pt)
			continue
		}

		window := models.WindowDigits(valid[i-w : i])
		vec, err := e.oracle.Predict(ctx, oracle.Request{PeriodID: d.PeriodID, Window: window})
		if err == nil {
			err = vec.Validate()
		}
		if err != nil {
			reason, fatal := classifyOracleError(err)
			if fatal {
				return nil, fmt.Errorf("oracle failed at period %s: %w", d.PeriodID, err)
			}
			if reason == SkipDegenerateVector {
				e.events.LogDegenerateVector(d.PeriodID, err)
			} else {
				e.events.LogForcedSkip(d.PeriodID, string(reason))
			}
			pt.SkipReason = reason
			series.Points = append(series.Points, pt)
			continue
		}

		score, err := e.scorer.Score(vec, window)
		if err != nil {
			e.events.LogForcedSkip(d.PeriodID, err.Error())
			pt.SkipReason = SkipUnscorable
			series.Points = append(series.Points, pt)
			continue
		}

		pt.Vector = vec
		pt.Score = score
		metrics.RecordOpportunityScore(series.OracleName, score)
		series.Points = append(series.Points, pt)
	}

	elapsed := time.Since(start)
	metrics.RecordForwardPassDuration(elapsed.Seconds())
	scored := series.ScoredCount()
	e.oracleLog.LogForwardPass(series.Len(), scored, series.Len()-scored, float64(elapsed.Milliseconds()))
	return series, nil
}

// classifyOracleError maps an oracle failure to a forced skip. Transport failures and
// cancellation are fatal to the pass.
func classifyOracleError(err error) (SkipReason, bool) {
	switch {
	case errors.Is(err, models.ErrDegenerateVector), errors.Is(err, oracle.ErrInvalidResponse):
		return SkipDegenerateVector, false
	case errors.Is(err, oracle.ErrNoPrediction):
		return SkipMissingPrediction, false
	default:
		return "", true
	}
}
