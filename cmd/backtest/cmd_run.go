package main

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the walk-forward backtest with its random baseline",
	Long: `Run the configured strategy over the draw history, compare it with the
Monte Carlo baseline and print the report.

Examples:
  backtest run --data data/draws.json
  backtest run --oracle static --predictions data/predictions.json --output results`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		_, err = a.evaluate(ctx)
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
