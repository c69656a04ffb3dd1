package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yourusername/digit-edge/internal/backtest"
)

var (
	scanMin  float64
	scanMax  float64
	scanStep float64
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Sweep fixed gate thresholds over one forward pass",
	Long: `Score every period once, then replay the series at each fixed threshold
between --min and --max. The oracle is queried only during the single forward pass.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Float64Var(&scanMin, "min", 0, "Lowest threshold (overrides scanner.min)")
	scanCmd.Flags().Float64Var(&scanMax, "max", 0, "Highest threshold (overrides scanner.max)")
	scanCmd.Flags().Float64Var(&scanStep, "step", 0, "Threshold step (overrides scanner.step)")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	scanCfg := backtest.ScanFromConfig(a.cfg)
	if cmd.Flags().Changed("min") {
		scanCfg.Min = scanMin
	}
	if cmd.Flags().Changed("max") {
		scanCfg.Max = scanMax
	}
	if cmd.Flags().Changed("step") {
		scanCfg.Step = scanStep
	}

	draws, err := a.loadDraws(ctx)
	if err != nil {
		return err
	}
	series, err := a.engine.Prepare(ctx, draws)
	if err != nil {
		return fmt.Errorf("forward pass failed: %w", err)
	}
	result, err := a.engine.Scan(ctx, series, scanCfg)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Print(backtest.GenerateScanReport(result))

	if a.cfg.Backtest.ExportEnabled {
		path := filepath.Join(a.cfg.Backtest.OutputPath, "threshold_scan.csv")
		if err := backtest.GenerateScanCSV(result, path); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		a.log.WithField("output", path).Info("Scan exported")
	}
	return nil
}
