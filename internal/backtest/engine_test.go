package backtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/yourusername/digit-edge/internal/models"
	"github.com/yourusername/digit-edge/internal/oracle"
	"github.com/yourusername/digit-edge/internal/strategy"
)

type fakeOracle struct {
	calls   atomic.Int64
	predict func(req oracle.Request) (models.ProbabilityVector, error)
}

func (f *fakeOracle) Name() string { return "fake" }
func (f *fakeOracle) Predict(ctx context.Context, req oracle.Request) (models.ProbabilityVector, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return models.ProbabilityVector{}, err
	}
	return f.predict(req)
}

func skewedVector() models.ProbabilityVector {
	rest := 0.25 / 7
	return models.ProbabilityVector{0.3, 0.25, 0.2, rest, rest, rest, rest, rest, rest, rest}
}

func constantOracle(vec models.ProbabilityVector) *fakeOracle {
	return &fakeOracle{predict: func(oracle.Request) (models.ProbabilityVector, error) { return vec, nil }}
}

func testConfig(window int) BacktestConfig {
	cfg := DefaultBacktestConfig()
	cfg.WindowSize = window
	cfg.Gate = strategy.GateConfig{Mode: strategy.GateModeFixed, Threshold: 0}
	return cfg
}

func newTestEngine(t *testing.T, cfg BacktestConfig, orc oracle.Oracle) *Engine {
	t.Helper()
	scorer, err := strategy.NewScorer(strategy.ModelOnlyRegistry())
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}
	engine, err := NewEngine(cfg, orc, scorer, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func draw(i int, d models.Digits) models.Draw {
	return models.Draw{PeriodID: fmt.Sprintf("p%03d", i), Digits: d}
}

func randomDraws(n int, seed int64) []models.Draw {
	rng := rand.New(rand.NewSource(seed))
	draws := make([]models.Draw, n)
	for i := range draws {
		draws[i] = draw(i, models.Digits{rng.Intn(10), rng.Intn(10), rng.Intn(10)})
	}
	return draws
}

func TestRunEndToEndExample(t *testing.T) {
	cfg := testConfig(3)
	cfg.NumBets = 10
	draws := []models.Draw{
		draw(0, models.Digits{0, 1, 2}),
		draw(1, models.Digits{3, 4, 5}),
		draw(2, models.Digits{6, 7, 8}),
		draw(3, models.Digits{0, 1, 2}),
	}
	engine := newTestEngine(t, cfg, constantOracle(skewedVector()))

	series, result, err := engine.Run(context.Background(), draws)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if series.Len() != 1 || len(result.Outcomes) != 1 {
		t.Fatalf("expected one evaluated period, got %d", len(result.Outcomes))
	}

	out := result.Outcomes[0]
	if !out.Bet || !out.Won {
		t.Fatalf("expected a winning bet, got bet=%v won=%v skip=%s", out.Bet, out.Won, out.SkipReason)
	}
	if out.Cost != 20 {
		t.Fatalf("expected cost 20, got %d", out.Cost)
	}
	if len(out.Wins) != 1 || out.Wins[0].Combo.Sorted() != (models.Digits{0, 1, 2}) {
		t.Fatalf("expected the 012 group6 line to win, got %+v", out.Wins)
	}
	if out.Prize < 173*int64(out.Wins[0].Stake) {
		t.Fatalf("expected prize >= 173*stake, got %d", out.Prize)
	}
	if out.Profit != out.Prize-out.Cost {
		t.Fatalf("profit %d != prize %d - cost %d", out.Profit, out.Prize, out.Cost)
	}
	if result.Summary.FinalCapital != cfg.InitialCapital+out.Profit {
		t.Fatalf("unexpected final capital %d", result.Summary.FinalCapital)
	}
}

func TestTopRankedCombinationIsSkewedTriple(t *testing.T) {
	candidates, err := strategy.Enumerate(skewedVector(), 10, models.DefaultPrizeTable())
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if candidates[0].Combo != (models.Digits{0, 1, 2}) || candidates[0].Type != models.ShapeGroup6 {
		t.Fatalf("expected 012 group6 first, got %+v", candidates[0])
	}
}

func TestReplayConservesCapital(t *testing.T) {
	cfg := testConfig(10)
	engine := newTestEngine(t, cfg, constantOracle(skewedVector()))

	_, result, err := engine.Run(context.Background(), randomDraws(300, 7))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	capital := cfg.InitialCapital
	var profit int64
	for _, o := range result.Outcomes {
		if o.CapitalBefore != capital {
			t.Fatalf("period %s opened at %d, ledger at %d", o.PeriodID, o.CapitalBefore, capital)
		}
		if o.CapitalAfter != o.CapitalBefore-o.Cost+o.Prize {
			t.Fatalf("period %s breaks conservation", o.PeriodID)
		}
		if !o.Bet && o.Cost != 0 {
			t.Fatalf("skipped period %s has cost %d", o.PeriodID, o.Cost)
		}
		if o.CapitalAfter < 0 {
			t.Fatalf("capital went negative at %s", o.PeriodID)
		}
		capital = o.CapitalAfter
		profit += o.Profit
	}
	if result.Summary.FinalCapital != cfg.InitialCapital+profit {
		t.Fatalf("final capital %d != initial + profit %d", result.Summary.FinalCapital, cfg.InitialCapital+profit)
	}
	if dd := result.Summary.MaxDrawdown; dd < 0 || dd > 1 {
		t.Fatalf("drawdown out of bounds: %f", dd)
	}
	if len(result.Equity) != len(result.Outcomes)+1 {
		t.Fatalf("equity curve should have %d points, got %d", len(result.Outcomes)+1, len(result.Equity))
	}
}

func TestReplaySkipsBelowThreshold(t *testing.T) {
	cfg := testConfig(5)
	cfg.Gate.Threshold = 1000
	engine := newTestEngine(t, cfg, constantOracle(skewedVector()))

	_, result, err := engine.Run(context.Background(), randomDraws(40, 3))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Summary.BetPeriods != 0 {
		t.Fatalf("expected no bets, got %d", result.Summary.BetPeriods)
	}
	if result.Summary.FinalCapital != cfg.InitialCapital {
		t.Fatalf("capital moved without bets")
	}
	if result.Summary.SkipsByReason[SkipBelowThreshold] != result.Summary.Periods {
		t.Fatalf("expected every period below threshold, got %v", result.Summary.SkipsByReason)
	}
}

func TestPrepareSkipReasons(t *testing.T) {
	cfg := testConfig(3)
	orc := &fakeOracle{predict: func(req oracle.Request) (models.ProbabilityVector, error) {
		switch req.PeriodID {
		case "p004":
			return models.ProbabilityVector{}, nil
		case "p005":
			return models.ProbabilityVector{}, oracle.ErrNoPrediction
		case "p006":
			return models.ProbabilityVector{}, fmt.Errorf("bad payload: %w", oracle.ErrInvalidResponse)
		}
		return skewedVector(), nil
	}}
	engine := newTestEngine(t, cfg, orc)

	series, err := engine.Prepare(context.Background(), randomDraws(8, 1))
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	want := map[string]SkipReason{
		"p003": "",
		"p004": SkipDegenerateVector,
		"p005": SkipMissingPrediction,
		"p006": SkipDegenerateVector,
		"p007": "",
	}
	for _, pt := range series.Points {
		if pt.SkipReason != want[pt.PeriodID] {
			t.Errorf("period %s: expected %q, got %q", pt.PeriodID, want[pt.PeriodID], pt.SkipReason)
		}
	}
	if series.ScoredCount() != 2 {
		t.Fatalf("expected 2 scored periods, got %d", series.ScoredCount())
	}
}

func TestPrepareDropsInvalidDraws(t *testing.T) {
	cfg := testConfig(3)
	draws := randomDraws(6, 2)
	draws[1].Digits = models.Digits{1, 12, 3}
	engine := newTestEngine(t, cfg, constantOracle(skewedVector()))

	series, err := engine.Prepare(context.Background(), draws)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if series.Dropped != 1 {
		t.Fatalf("expected 1 dropped draw, got %d", series.Dropped)
	}
	if series.Len() != 2 {
		t.Fatalf("expected 2 evaluated periods, got %d", series.Len())
	}
}

func TestPrepareInsufficientHistory(t *testing.T) {
	engine := newTestEngine(t, testConfig(10), constantOracle(skewedVector()))

	_, err := engine.Prepare(context.Background(), randomDraws(10, 1))
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestPrepareAbortsOnUnavailableOracle(t *testing.T) {
	orc := &fakeOracle{predict: func(oracle.Request) (models.ProbabilityVector, error) {
		return models.ProbabilityVector{}, oracle.ErrOracleUnavailable
	}}
	engine := newTestEngine(t, testConfig(3), orc)

	_, err := engine.Prepare(context.Background(), randomDraws(6, 1))
	if !errors.Is(err, oracle.ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestReplayDoesNotCallOracle(t *testing.T) {
	orc := constantOracle(skewedVector())
	engine := newTestEngine(t, testConfig(5), orc)

	series, err := engine.Prepare(context.Background(), randomDraws(30, 4))
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	calls := orc.calls.Load()
	if calls != int64(series.Len()) {
		t.Fatalf("expected one oracle call per period, got %d for %d", calls, series.Len())
	}

	for _, th := range []float64{0, 50, 90} {
		if _, err := engine.Replay(series, strategy.FixedGate{Threshold: th}); err != nil {
			t.Fatalf("Replay failed: %v", err)
		}
	}
	if orc.calls.Load() != calls {
		t.Fatalf("replay invoked the oracle")
	}
}

func TestKellyStakeMode(t *testing.T) {
	cfg := testConfig(5)
	cfg.StakeMode = StakeKelly
	engine := newTestEngine(t, cfg, constantOracle(skewedVector()))

	_, result, err := engine.Run(context.Background(), randomDraws(60, 9))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, o := range result.Outcomes {
		if !o.Bet {
			continue
		}
		if o.Sizing == nil {
			t.Fatalf("kelly bet period %s has no sizing", o.PeriodID)
		}
		if o.Tickets != o.Sizing.Tickets {
			t.Fatalf("period %s bought %d tickets, sizer said %d", o.PeriodID, o.Tickets, o.Sizing.Tickets)
		}
	}
}
