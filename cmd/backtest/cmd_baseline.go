package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/digit-edge/internal/backtest"
	"github.com/yourusername/digit-edge/internal/models"
)

var (
	baselineTrials int
	baselineSeed   int64
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Run only the random-betting Monte Carlo baseline",
	Long: `Wager num_bets uniformly random triples on every evaluated period and report the
distribution of trial ROI. No oracle is queried.`,
	RunE: runBaseline,
}

func init() {
	rootCmd.AddCommand(baselineCmd)

	baselineCmd.Flags().IntVar(&baselineTrials, "trials", 0, "Number of trials (overrides monte_carlo.trials)")
	baselineCmd.Flags().Int64Var(&baselineSeed, "seed", 0, "Base seed (overrides monte_carlo.seed)")
}

func runBaseline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	mc := backtest.MonteCarloFromConfig(a.cfg)
	if cmd.Flags().Changed("trials") {
		mc.Trials = baselineTrials
	}
	if cmd.Flags().Changed("seed") {
		mc.Seed = baselineSeed
	}

	draws, err := a.loadDraws(ctx)
	if err != nil {
		return err
	}
	first := a.btConfig.WindowSize
	if a.btConfig.TestPeriods > 0 && len(draws)-a.btConfig.TestPeriods > first {
		first = len(draws) - a.btConfig.TestPeriods
	}
	if first >= len(draws) {
		return fmt.Errorf("%w: %d draws, window %d", backtest.ErrInsufficientHistory, len(draws), a.btConfig.WindowSize)
	}

	actuals := make([]models.Digits, 0, len(draws)-first)
	for _, d := range draws[first:] {
		actuals = append(actuals, d.Digits)
	}
	result, err := backtest.RunBaseline(ctx, actuals, mc)
	if err != nil {
		return fmt.Errorf("baseline failed: %w", err)
	}

	fmt.Printf("Random Baseline\n===============\n")
	fmt.Printf("Periods: %d  Trials: %d (excluded %d)  Seed: %d\n", result.Periods, result.Completed, result.Excluded, result.Seed)
	fmt.Printf("Mean ROI: %.2f%%  Std: %.2f%%\n", result.MeanROI*100, result.StdROI*100)
	fmt.Printf("P5: %.2f%%  P95: %.2f%%  Profitable trials: %.2f%%\n", result.P5ROI*100, result.P95ROI*100, result.ProfitableShare*100)
	return nil
}
