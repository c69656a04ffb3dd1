package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/digit-edge/internal/metrics"
	"github.com/yourusername/digit-edge/internal/models"
	"github.com/yourusername/digit-edge/internal/strategy"
)

// MonteCarloConfig configures the random-betting baseline
type MonteCarloConfig struct {
	Trials          int
	NumBets         int
	TicketPrice     int64
	Prizes          models.PrizeTable
	Seed            int64
	Workers         int
	MatchBetPeriods bool
}

// Validate validates the baseline configuration
func (c MonteCarloConfig) Validate() error {
	if c.Trials < 1 {
		return fmt.Errorf("monte carlo trials must be positive")
	}
	if c.NumBets < 1 {
		return fmt.Errorf("monte carlo num_bets must be positive")
	}
	if c.TicketPrice <= 0 {
		return fmt.Errorf("ticket price must be positive")
	}
	return nil
}

// TrialResult is the outcome of one random-betting trial
type TrialResult struct {
	Trial int     `json:"trial"`
	Cost  int64   `json:"cost"`
	Prize int64   `json:"prize"`
	Wins  int     `json:"wins"`
	ROI   float64 `json:"roi"`
}

// MonteCarloResult aggregates the baseline trials
type MonteCarloResult struct {
	Trials          int           `json:"trials"`
	Completed       int           `json:"completed"`
	Excluded        int           `json:"excluded"`
	Periods         int           `json:"periods"`
	MeanROI         float64       `json:"mean_roi"`
	StdROI          float64       `json:"std_roi"`
	P5ROI           float64       `json:"p5_roi"`
	P95ROI          float64       `json:"p95_roi"`
	ProfitableShare float64       `json:"profitable_share"`
	Seed            int64         `json:"seed"`
	TrialResults    []TrialResult `json:"trial_results,omitempty"`
}

// BaselineActuals selects the periods the baseline wagers on: every evaluated
// period, or only the model's bet periods when match is set
func BaselineActuals(result *Result, match bool) []models.Digits {
	if result == nil {
		return nil
	}
	actuals := make([]models.Digits, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		if match && !o.Bet {
			continue
		}
		actuals = append(actuals, o.Actual)
	}
	return actuals
}

// RunBaseline runs independent random-betting trials over the same actual outcomes.
// Trial t draws from its own source seeded with seed+t, so results do not depend on
// scheduling. A failed trial is excluded and counted, never fatal.
func RunBaseline(ctx context.Context, actuals []models.Digits, cfg MonteCarloConfig) (MonteCarloResult, error) {
	if err := cfg.Validate(); err != nil {
		return MonteCarloResult{}, err
	}
	if len(actuals) == 0 {
		return MonteCarloResult{}, fmt.Errorf("baseline needs at least one period")
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	trials := make([]*TrialResult, cfg.Trials)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for t := 0; t < cfg.Trials; t++ {
		t := t
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			res, err := runTrial(t, actuals, cfg)
			if err != nil {
				metrics.RecordMonteCarloTrial("failure")
				return nil
			}
			metrics.RecordMonteCarloTrial("success")
			trials[t] = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordBacktestRun("monte_carlo", "failure")
		return MonteCarloResult{}, err
	}

	result := summarizeTrials(trials, cfg)
	result.Periods = len(actuals)
	metrics.RecordBacktestRun("monte_carlo", "success")
	metrics.UpdateBacktestROI("monte_carlo", result.MeanROI)
	return result, nil
}

func runTrial(trial int, actuals []models.Digits, cfg MonteCarloConfig) (res TrialResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("trial %d panicked: %v", trial, r)
		}
	}()

	rng := rand.New(rand.NewSource(cfg.Seed + int64(trial)))
	res.Trial = trial
	for _, actual := range actuals {
		for b := 0; b < cfg.NumBets; b++ {
			combo := models.Digits{rng.Intn(10), rng.Intn(10), rng.Intn(10)}
			res.Cost += cfg.TicketPrice
			if won, prize := models.CheckWin(combo, combo.Shape(), actual, cfg.Prizes); won {
				res.Prize += prize
				res.Wins++
			}
		}
	}
	res.ROI = calculateROI(res.Cost, res.Prize)
	return res, nil
}

func summarizeTrials(trials []*TrialResult, cfg MonteCarloConfig) MonteCarloResult {
	result := MonteCarloResult{Trials: cfg.Trials, Seed: cfg.Seed}
	rois := make([]float64, 0, len(trials))
	profitable := 0
	for _, tr := range trials {
		if tr == nil {
			result.Excluded++
			continue
		}
		result.TrialResults = append(result.TrialResults, *tr)
		rois = append(rois, tr.ROI)
		if tr.Prize > tr.Cost {
			profitable++
		}
	}
	result.Completed = len(rois)
	if result.Completed == 0 {
		return result
	}
	result.MeanROI, result.StdROI = meanStd(rois)
	result.P5ROI = strategy.Percentile(rois, 5)
	result.P95ROI = strategy.Percentile(rois, 95)
	result.ProfitableShare = ratio(profitable, result.Completed)
	return result
}

// Comparison relates a model run to its random baseline
type Comparison struct {
	ModelROI            float64 `json:"model_roi"`
	BaselineMean        float64 `json:"baseline_mean"`
	BaselineP5          float64 `json:"baseline_p5"`
	BaselineP95         float64 `json:"baseline_p95"`
	Improvement         float64 `json:"improvement"`
	SignificantlyBetter bool    `json:"significantly_better"`
}

// Compare reports whether the model beat the baseline's 95th percentile ROI
func Compare(summary Summary, baseline MonteCarloResult) Comparison {
	return Comparison{
		ModelROI:            summary.ROI,
		BaselineMean:        baseline.MeanROI,
		BaselineP5:          baseline.P5ROI,
		BaselineP95:         baseline.P95ROI,
		Improvement:         summary.ROI - baseline.MeanROI,
		SignificantlyBetter: baseline.Completed > 0 && summary.ROI > baseline.P95ROI,
	}
}

// ToJSON exports the baseline without per-trial rows
func (m MonteCarloResult) ToJSON() string {
	m.TrialResults = nil
	data, _ := json.Marshal(m)
	return string(data)
}

// Baseline runs the random-betting baseline over the periods of a finished replay
func (e *Engine) Baseline(ctx context.Context, result *Result, cfg MonteCarloConfig) (MonteCarloResult, error) {
	actuals := BaselineActuals(result, cfg.MatchBetPeriods)
	baseline, err := RunBaseline(ctx, actuals, cfg)
	if err != nil {
		return baseline, err
	}
	if baseline.Excluded > 0 {
		e.logger.WithField("excluded", baseline.Excluded).Warn("Monte Carlo trials excluded")
	}
	e.events.LogBaselineSummary(baseline.Completed, baseline.Excluded, baseline.MeanROI, baseline.P5ROI, baseline.P95ROI)
	return baseline, nil
}
