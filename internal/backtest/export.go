package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/digit-edge/internal/logger"
	"github.com/yourusername/digit-edge/internal/models"
	"github.com/yourusername/digit-edge/internal/repository"
)

// ExportToJSON writes the full report to a JSON file
func ExportToJSON(report *Report, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// ExportDir writes the JSON report, the outcome CSV and the equity curve CSV into dir
func ExportDir(report *Report, dir string) error {
	if err := ExportToJSON(report, filepath.Join(dir, "report.json")); err != nil {
		return err
	}
	if err := GenerateCSVExport(report.Result, filepath.Join(dir, "outcomes.csv")); err != nil {
		return fmt.Errorf("failed to write outcomes: %w", err)
	}
	if err := GenerateEquityCSV(report.Result.Equity, filepath.Join(dir, "equity_curve.csv")); err != nil {
		return fmt.Errorf("failed to write equity curve: %w", err)
	}
	return GenerateHTMLReport(report, filepath.Join(dir, "report.html"))
}

// NewBacktestRun converts a report into its persisted row
func NewBacktestRun(report *Report) (*models.BacktestRun, error) {
	full, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	s := report.Result.Summary
	now := time.Now().UTC()
	return &models.BacktestRun{
		ID:                  uuid.New(),
		RunDate:             now,
		FirstPeriod:         report.Result.FirstPeriod(),
		LastPeriod:          report.Result.LastPeriod(),
		ConfigHash:          report.ConfigHash,
		GateMode:            report.Result.Gate,
		InitialCapital:      s.InitialCapital,
		FinalCapital:        s.FinalCapital,
		TotalPeriods:        s.Periods,
		BetPeriods:          s.BetPeriods,
		ROI:                 s.ROI,
		WinRate:             s.WinRate,
		MaxDrawdown:         s.MaxDrawdown,
		SharpeRatio:         s.SharpeRatio,
		CalmarRatio:         s.CalmarRatio,
		BaselineP95:         report.Comparison.BaselineP95,
		SignificantlyBetter: report.Comparison.SignificantlyBetter,
		Recommendation:      report.Recommendation,
		FullResults:         full,
		CreatedAt:           now,
	}, nil
}

// ExportToDatabase persists the run summary
func ExportToDatabase(ctx context.Context, report *Report, repo repository.BacktestRunRepository, audit *logger.AuditLogger) (*models.BacktestRun, error) {
	if repo == nil {
		return nil, fmt.Errorf("backtest run repository is required")
	}
	run, err := NewBacktestRun(report)
	if err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save backtest run: %w", err)
	}
	if audit != nil {
		audit.LogRunPersisted(run.ID.String(), run.ConfigHash, run.Recommendation)
	}
	return run, nil
}
