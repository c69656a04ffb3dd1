// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Global flags shared by every subcommand
var (
	configPath      string
	dataPath        string
	oracleKind      string
	predictionsPath string
	outputPath      string
)

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Walk-forward backtester for pick-3 betting strategies",
	Long: `backtest replays a betting strategy over historical pick-3 draws.

Each period is scored from an oracle's per-digit probabilities; the decision gate
chooses whether to bet, and winning combinations are settled against the actual
draw. Results are compared against a random-betting Monte Carlo baseline.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Path to a JSON draw file (overrides data.path)")
	rootCmd.PersistentFlags().StringVar(&oracleKind, "oracle", "", "Oracle kind: frequency, http or static (overrides oracle.kind)")
	rootCmd.PersistentFlags().StringVar(&predictionsPath, "predictions", "", "Replay precomputed predictions from a JSON file")
	rootCmd.PersistentFlags().StringVar(&outputPath, "output", "", "Directory for exported results (enables export)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
