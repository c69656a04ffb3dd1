package backtest

import (
	"fmt"

	"github.com/yourusername/digit-edge/internal/config"
	"github.com/yourusername/digit-edge/internal/models"
	"github.com/yourusername/digit-edge/internal/strategy"
)

// StakeMode selects how many tickets a bet period buys
type StakeMode string

const (
	// StakeFixed buys NumBets tickets every bet period
	StakeFixed StakeMode = "fixed"
	// StakeKelly sizes each bet period with the fractional Kelly sizer
	StakeKelly StakeMode = "kelly"
)

// BacktestConfig holds every parameter of a walk-forward run
type BacktestConfig struct {
	WindowSize     int
	TestPeriods    int
	InitialCapital int64
	TicketPrice    int64
	NumBets        int
	TopK           int
	StakeMode      StakeMode
	Prizes         models.PrizeTable
	InitialWinRate float64
	Sizing         strategy.SizingParams
	Allocation     strategy.AllocationParams
	Gate           strategy.GateConfig
	PeriodsPerYear int
	SegmentSize    int
	OutputPath     string
	ExportEnabled  bool
}

// DefaultBacktestConfig mirrors the configuration defaults
func DefaultBacktestConfig() BacktestConfig {
	return BacktestConfig{
		WindowSize:     30,
		InitialCapital: 10000,
		TicketPrice:    2,
		NumBets:        100,
		TopK:           10,
		StakeMode:      StakeFixed,
		Prizes:         models.DefaultPrizeTable(),
		InitialWinRate: 0.1,
		Sizing:         strategy.DefaultSizingParams(),
		Allocation:     strategy.DefaultAllocationParams(),
		Gate:           strategy.GateConfig{Mode: strategy.GateModeFixed, Threshold: 58.45, Percentile: 0.9, Cut: strategy.CutWindow},
		PeriodsPerYear: 358,
		SegmentSize:    50,
	}
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.Config) (BacktestConfig, error) {
	if cfg == nil {
		return BacktestConfig{}, fmt.Errorf("config is required")
	}

	prizes := cfg.Betting.Prizes
	bt := BacktestConfig{
		WindowSize:     cfg.Backtest.WindowSize,
		TestPeriods:    cfg.Backtest.TestPeriods,
		InitialCapital: cfg.Backtest.InitialCapital,
		TicketPrice:    cfg.Betting.TicketPrice,
		NumBets:        cfg.Betting.NumBets,
		TopK:           cfg.Betting.TopK,
		StakeMode:      StakeMode(cfg.Betting.StakeMode),
		Prizes:         prizes,
		InitialWinRate: cfg.Sizing.InitialWinRate,
		Sizing: strategy.SizingParams{
			TicketPrice:      cfg.Betting.TicketPrice,
			Prizes:           prizes,
			KellyMultiplier:  cfg.Sizing.KellyMultiplier,
			MaxRiskFraction:  cfg.Sizing.MaxRiskFraction,
			MinBetAmount:     cfg.Sizing.MinBet,
			MaxBetAmount:     cfg.Sizing.MaxBet,
			HistoryWeight:    cfg.Sizing.HistoryWeight,
			ConfidenceWeight: cfg.Sizing.ConfidenceWeight,
		},
		Allocation: strategy.AllocationParams{
			DecayRate:      cfg.Allocation.DecayRate,
			SelectFraction: cfg.Allocation.SelectFraction,
			MinSelect:      cfg.Allocation.MinSelect,
			TicketPrice:    cfg.Betting.TicketPrice,
		},
		Gate: strategy.GateConfig{
			Mode:       strategy.GateMode(cfg.Gate.Mode),
			Threshold:  cfg.Gate.Threshold,
			Percentile: cfg.Gate.Percentile,
			Cut:        strategy.CutMode(cfg.Gate.Cut),
			Lookback:   cfg.Gate.Lookback,
			MinHistory: cfg.Gate.MinHistory,
		},
		PeriodsPerYear: cfg.Backtest.PeriodsPerYear,
		SegmentSize:    cfg.Backtest.SegmentSize,
		OutputPath:     cfg.Backtest.OutputPath,
		ExportEnabled:  cfg.Backtest.ExportEnabled,
	}

	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (b BacktestConfig) Validate() error {
	if b.WindowSize < 1 {
		return fmt.Errorf("window size must be positive")
	}
	if b.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive")
	}
	if b.TicketPrice <= 0 {
		return fmt.Errorf("ticket price must be positive")
	}
	if b.TopK < 1 || b.TopK > 10 {
		return strategy.ErrInvalidTopK
	}
	switch b.StakeMode {
	case StakeFixed:
		if b.NumBets < 1 {
			return fmt.Errorf("num_bets must be positive in fixed stake mode")
		}
	case StakeKelly:
	default:
		return fmt.Errorf("unknown stake mode %q", b.StakeMode)
	}
	if b.PeriodsPerYear <= 0 {
		return fmt.Errorf("periods per year must be positive")
	}
	if b.Allocation.TicketPrice != b.TicketPrice || b.Sizing.TicketPrice != b.TicketPrice {
		return fmt.Errorf("ticket price must agree across sizing and allocation")
	}
	return nil
}

// MonteCarloFromConfig builds the baseline configuration from app config
func MonteCarloFromConfig(cfg *config.Config) MonteCarloConfig {
	return MonteCarloConfig{
		Trials:          cfg.MonteCarlo.Trials,
		NumBets:         cfg.Betting.NumBets,
		TicketPrice:     cfg.Betting.TicketPrice,
		Prizes:          cfg.Betting.Prizes,
		Seed:            cfg.MonteCarlo.Seed,
		Workers:         cfg.MonteCarlo.Workers,
		MatchBetPeriods: cfg.MonteCarlo.MatchBetPeriods,
	}
}

// ScanFromConfig builds the threshold scan configuration from app config
func ScanFromConfig(cfg *config.Config) ScanConfig {
	return ScanConfig{
		Min:     cfg.Scanner.Min,
		Max:     cfg.Scanner.Max,
		Step:    cfg.Scanner.Step,
		Workers: cfg.Scanner.Workers,
	}
}
