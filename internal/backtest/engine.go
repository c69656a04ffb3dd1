package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/digit-edge/internal/logger"
	"github.com/yourusername/digit-edge/internal/metrics"
	"github.com/yourusername/digit-edge/internal/models"
	"github.com/yourusername/digit-edge/internal/oracle"
	"github.com/yourusername/digit-edge/internal/strategy"
)

// Engine orchestrates walk-forward backtesting runs
type Engine struct {
	config    BacktestConfig
	oracle    oracle.Oracle
	scorer    *strategy.Scorer
	gate      strategy.Gate
	logger    *logrus.Logger
	events    *logger.BacktestLogger
	oracleLog *logger.OracleLogger
}

// NewEngine creates a new backtesting engine
func NewEngine(cfg BacktestConfig, orc oracle.Oracle, scorer *strategy.Scorer, log *logrus.Logger) (*Engine, error) {
	if orc == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gate, err := strategy.NewGate(cfg.Gate)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
	}

	return &Engine{
		config:    cfg,
		oracle:    orc,
		scorer:    scorer,
		gate:      gate,
		logger:    log,
		events:    logger.NewBacktestLogger(log),
		oracleLog: logger.NewOracleLogger(log),
	}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() BacktestConfig {
	return e.config
}

// Gate returns the configured decision gate
func (e *Engine) Gate() strategy.Gate {
	return e.gate
}

// Logger returns the engine logger
func (e *Engine) Logger() *logrus.Logger {
	return e.logger
}

// PeriodOutcome is the settled record of one evaluated period
type PeriodOutcome struct {
	Index         int                 `json:"index"`
	PeriodID      string              `json:"period"`
	Date          time.Time           `json:"date,omitempty"`
	Actual        models.Digits       `json:"actual"`
	ActualShape   models.Shape        `json:"actual_shape"`
	Scored        bool                `json:"scored"`
	Score         float64             `json:"score"`
	Threshold     float64             `json:"threshold"`
	Gap           float64             `json:"gap"`
	Bet           bool                `json:"bet"`
	SkipReason    SkipReason          `json:"skip_reason,omitempty"`
	Tickets       int                 `json:"tickets"`
	Combinations  int                 `json:"combinations"`
	Cost          int64               `json:"cost"`
	Prize         int64               `json:"prize"`
	Profit        int64               `json:"profit"`
	Won           bool                `json:"won"`
	CapitalBefore int64               `json:"capital_before"`
	CapitalAfter  int64               `json:"capital_after"`
	Sizing        *strategy.Sizing    `json:"sizing,omitempty"`
	Wins          []strategy.PlanLine `json:"wins,omitempty"`
}

// Result is the output of one replay
type Result struct {
	Gate     string          `json:"gate"`
	Outcomes []PeriodOutcome `json:"outcomes"`
	Equity   EquityCurve     `json:"equity_curve"`
	Summary  Summary         `json:"summary"`
}

// FirstPeriod returns the first evaluated period id
func (r *Result) FirstPeriod() string {
	if len(r.Outcomes) == 0 {
		return ""
	}
	return r.Outcomes[0].PeriodID
}

// LastPeriod returns the last evaluated period id
func (r *Result) LastPeriod() string {
	if len(r.Outcomes) == 0 {
		return ""
	}
	return r.Outcomes[len(r.Outcomes)-1].PeriodID
}

// Run prepares the series and replays it with the configured gate
func (e *Engine) Run(ctx context.Context, draws []models.Draw) (*Series, *Result, error) {
	start := time.Now()
	e.logger.WithFields(logrus.Fields{
		"draws":  len(draws),
		"window": e.config.WindowSize,
		"gate":   e.gate.Name(),
		"oracle": e.oracle.Name(),
	}).Info("Starting backtest run")

	series, err := e.Prepare(ctx, draws)
	if err != nil {
		metrics.RecordBacktestRun("replay", "failure")
		return nil, nil, err
	}
	result, err := e.Replay(series, e.gate)
	if err != nil {
		metrics.RecordBacktestRun("replay", "failure")
		return nil, nil, err
	}

	metrics.RecordBacktestRun("replay", "success")
	metrics.RecordBacktestDuration(time.Since(start).Seconds())
	metrics.UpdateBacktestROI("replay", result.Summary.ROI)
	metrics.UpdateCapital(float64(result.Summary.FinalCapital))

	s := result.Summary
	e.events.LogRunSummary(result.Gate, s.Periods, s.BetPeriods, s.ROI, s.WinRate, s.MaxDrawdown, s.SharpeRatio, s.FinalCapital)
	return series, result, nil
}

// Replay walks the cached series once with the given gate. It never calls the oracle,
// so any number of replays can share one forward pass.
func (e *Engine) Replay(series *Series, gate strategy.Gate) (*Result, error) {
	return e.replay(series, gate, true)
}

func (e *Engine) replay(series *Series, gate strategy.Gate, record bool) (*Result, error) {
	if series == nil {
		return nil, fmt.Errorf("series is required")
	}
	if gate == nil {
		gate = e.gate
	}

	thresholds := gate.Thresholds(series.Scores())
	if len(thresholds) != series.Len() {
		return nil, fmt.Errorf("gate %s returned %d thresholds for %d periods", gate.Name(), len(thresholds), series.Len())
	}

	ledger := NewCapitalLedger(e.config.InitialCapital)
	winRate := strategy.NewRollingWinRate(e.config.InitialWinRate)
	result := &Result{
		Gate:     gate.Name(),
		Outcomes: make([]PeriodOutcome, 0, series.Len()),
	}

	for i, pt := range series.Points {
		out, err := e.replayPeriod(pt, thresholds[i], ledger, &winRate)
		if err != nil {
			return nil, err
		}
		if record {
			e.recordOutcome(out)
		}
		result.Outcomes = append(result.Outcomes, out)
	}

	result.Equity = NewEquityCurve(ledger.History(), result.Outcomes)
	result.Summary = Summarize(result.Outcomes, result.Equity, e.config.PeriodsPerYear)
	return result, nil
}

func (e *Engine) replayPeriod(pt SeriesPoint, threshold float64, ledger *CapitalLedger, winRate *strategy.RollingWinRate) (PeriodOutcome, error) {
	out := PeriodOutcome{
		Index:         pt.Index,
		PeriodID:      pt.PeriodID,
		Date:          pt.Date,
		Actual:        pt.Actual,
		ActualShape:   pt.Actual.Shape(),
		CapitalBefore: ledger.Capital(),
	}

	skip := func(reason SkipReason) (PeriodOutcome, error) {
		ledger.Skip()
		out.Bet = false
		out.SkipReason = reason
		out.Tickets, out.Combinations, out.Cost, out.Prize, out.Profit = 0, 0, 0, 0, 0
		out.Sizing, out.Wins = nil, nil
		out.CapitalAfter = ledger.Capital()
		return out, nil
	}

	if !pt.Scored() {
		return skip(pt.SkipReason)
	}
	out.Scored = true
	out.Score = pt.Score

	decision := strategy.Decide(pt.Score, threshold)
	if decision.WarmingUp {
		return skip(SkipWarmingUp)
	}
	out.Threshold = decision.Threshold
	out.Gap = decision.Gap
	if !decision.Bet {
		return skip(SkipBelowThreshold)
	}

	budget, sizing, err := e.budget(ledger.Capital(), pt.Score, *winRate)
	if err != nil {
		if errors.Is(err, strategy.ErrInsufficientCapital) {
			return skip(SkipInsufficientCapital)
		}
		return out, err
	}
	out.Sizing = sizing

	candidates, err := strategy.Enumerate(pt.Vector, e.config.TopK, e.config.Prizes)
	if err != nil {
		if errors.Is(err, models.ErrDegenerateVector) {
			return skip(SkipDegenerateVector)
		}
		return out, err
	}

	plan, err := strategy.Allocate(candidates, budget, e.config.Allocation)
	switch {
	case errors.Is(err, strategy.ErrEmptyBudget):
		return skip(SkipEmptyBudget)
	case errors.Is(err, strategy.ErrNoCandidates):
		return skip(SkipNoCandidates)
	case err != nil:
		return out, err
	}
	if plan.TotalCost > ledger.Capital() {
		return skip(SkipInsufficientCapital)
	}

	settlement := plan.Settle(pt.Actual, e.config.Prizes)
	before, after, err := ledger.Settle(plan.TotalCost, settlement.Prize)
	if err != nil {
		return out, fmt.Errorf("period %s: %w", pt.PeriodID, err)
	}

	out.Bet = true
	out.Tickets = plan.TotalTickets
	out.Combinations = len(plan.Lines)
	out.Cost = plan.TotalCost
	out.Prize = settlement.Prize
	out.Profit = settlement.Prize - plan.TotalCost
	out.Won = settlement.Prize > 0
	out.Wins = settlement.Wins
	out.CapitalBefore = before
	out.CapitalAfter = after
	*winRate = winRate.Record(out.Won)
	return out, nil
}

// budget returns the ticket count for a bet period
func (e *Engine) budget(capital int64, score float64, winRate strategy.RollingWinRate) (int, *strategy.Sizing, error) {
	if e.config.StakeMode != StakeKelly {
		return e.config.NumBets, nil, nil
	}
	sizing, err := strategy.SizePosition(strategy.SizingInput{
		Capital:           capital,
		Confidence:        e.scorer.Confidence(score),
		HistoricalWinRate: winRate.Rate(),
	}, e.config.Sizing)
	if err != nil {
		return 0, nil, err
	}
	return sizing.Tickets, &sizing, nil
}

func (e *Engine) recordOutcome(out PeriodOutcome) {
	if !out.Bet {
		metrics.RecordPeriod(string(out.SkipReason), 0)
		if out.SkipReason == SkipBelowThreshold {
			e.events.LogPeriodDecision(out.PeriodID, out.Score, out.Threshold, false)
		} else {
			e.events.LogForcedSkip(out.PeriodID, string(out.SkipReason))
		}
		return
	}
	metrics.RecordPeriod("bet", out.Tickets)
	if out.Won {
		metrics.RecordWinningPeriod(string(out.ActualShape))
	}
	e.events.LogPeriodDecision(out.PeriodID, out.Score, out.Threshold, true)
	e.events.LogSettlement(out.PeriodID, out.Actual.String(), out.Tickets, out.Cost, out.Prize, out.CapitalAfter)
}
