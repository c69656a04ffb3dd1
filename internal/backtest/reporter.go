package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/digit-edge/internal/models"
)

// GenerateConsoleReport formats a run report for terminal output
func GenerateConsoleReport(report *Report) string {
	s := report.Result.Summary
	c := report.Comparison

	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Gate: %s  Oracle: %s  Scorer: %s\n", report.Result.Gate, report.Oracle, report.Scorer))
	builder.WriteString(fmt.Sprintf("Periods: %s .. %s (%d evaluated, %d dropped draws)\n",
		report.Result.FirstPeriod(), report.Result.LastPeriod(), s.Periods, report.Dropped))
	builder.WriteString(fmt.Sprintf("Bet Periods: %d (%.2f%%)  Wins: %d (%.2f%%)\n", s.BetPeriods, s.BetRate*100, s.WinPeriods, s.WinRate*100))
	builder.WriteString(fmt.Sprintf("Cost: %d  Prize: %d  Profit: %d\n", s.TotalCost, s.TotalPrize, s.Profit))
	builder.WriteString(fmt.Sprintf("ROI: %.2f%%  Annualized: %.2f%%\n", s.ROI*100, s.AnnualizedROI*100))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", s.MaxDrawdown*100))
	builder.WriteString(fmt.Sprintf("Sharpe Ratio: %.3f  Calmar Ratio: %.3f\n", s.SharpeRatio, s.CalmarRatio))
	builder.WriteString(fmt.Sprintf("Capital: %d -> %d\n", s.InitialCapital, s.FinalCapital))

	if len(s.WinsByShape) > 0 {
		builder.WriteString("Wins by shape:")
		for _, shape := range []models.Shape{models.ShapeGroup6, models.ShapeGroup3, models.ShapeLeopard} {
			if n, ok := s.WinsByShape[shape]; ok {
				builder.WriteString(fmt.Sprintf(" %s=%d", shape, n))
			}
		}
		builder.WriteString("\n")
	}

	builder.WriteString("\nRandom Baseline\n")
	builder.WriteString("---------------\n")
	builder.WriteString(fmt.Sprintf("Trials: %d (excluded %d)  Mean ROI: %.2f%%  Std: %.2f%%\n",
		report.Baseline.Completed, report.Baseline.Excluded, c.BaselineMean*100, report.Baseline.StdROI*100))
	builder.WriteString(fmt.Sprintf("P5: %.2f%%  P95: %.2f%%  Profitable trials: %.2f%%\n",
		c.BaselineP5*100, c.BaselineP95*100, report.Baseline.ProfitableShare*100))
	builder.WriteString(fmt.Sprintf("Improvement: %+.2f%%  Significantly better: %t\n", c.Improvement*100, c.SignificantlyBetter))

	builder.WriteString("\nScore Bands\n")
	builder.WriteString("-----------\n")
	for _, b := range report.Bands {
		builder.WriteString(fmt.Sprintf("%-10s scored=%-5d bets=%-5d wins=%-4d roi=%7.2f%%\n", b.Band, b.Scored, b.BetPeriods, b.WinPeriods, b.ROI*100))
	}

	builder.WriteString(fmt.Sprintf("\nSegments of %d: consistency %.2f%%\n", report.Segments.Size, report.Segments.Consistency*100))
	builder.WriteString(fmt.Sprintf("\nRecommendation: %s\n", report.Recommendation))
	return builder.String()
}

// GenerateScanReport formats a threshold sweep for terminal output
func GenerateScanReport(scan *ScanResult) string {
	var builder strings.Builder
	builder.WriteString("Threshold Scan\n")
	builder.WriteString("==============\n")
	builder.WriteString(fmt.Sprintf("%-9s %-6s %-8s %-6s %-8s %-10s %-9s %-8s\n", "threshold", "bets", "betrate", "wins", "winrate", "profit", "roi", "maxdd"))
	for _, r := range scan.Rows {
		builder.WriteString(fmt.Sprintf("%-9.2f %-6d %-7.2f%% %-6d %-7.2f%% %-10d %-8.2f%% %-7.2f%%\n",
			r.Threshold, r.BetPeriods, r.BetRate*100, r.WinPeriods, r.WinRate*100, r.Profit, r.ROI*100, r.MaxDrawdown*100))
	}
	if scan.Excluded > 0 {
		builder.WriteString(fmt.Sprintf("Excluded thresholds: %d\n", scan.Excluded))
	}
	if scan.BestROI != nil {
		builder.WriteString(fmt.Sprintf("Best ROI: %.2f (%.2f%%)\n", scan.BestROI.Threshold, scan.BestROI.ROI*100))
	}
	if scan.BestProfit != nil {
		builder.WriteString(fmt.Sprintf("Best profit: %.2f (%d)\n", scan.BestProfit.Threshold, scan.BestProfit.Profit))
	}
	if scan.Recommended != nil {
		label := "Recommended"
		if scan.LeastLoss {
			label = "Least loss"
		}
		builder.WriteString(fmt.Sprintf("%s: %.2f\n", label, scan.Recommended.Threshold))
	}
	return builder.String()
}

// GenerateHTMLReport creates a simple HTML summary
func GenerateHTMLReport(report *Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	s := report.Result.Summary

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Backtest Report</title></head>
<body>
<h1>Backtest Report</h1>
<p><strong>Recommendation:</strong> %s</p>
<p><strong>ROI:</strong> %.2f%%</p>
<p><strong>Baseline P95 ROI:</strong> %.2f%%</p>
<p><strong>Sharpe Ratio:</strong> %.3f</p>
<p><strong>Max Drawdown:</strong> %.2f%%</p>
<p><strong>Win Rate:</strong> %.2f%%</p>
<p><strong>Final Capital:</strong> %d</p>
</body>
</html>`,
		report.Recommendation,
		s.ROI*100,
		report.Comparison.BaselineP95*100,
		s.SharpeRatio,
		s.MaxDrawdown*100,
		s.WinRate*100,
		s.FinalCapital,
	)

	return os.WriteFile(outputPath, []byte(html), 0o644)
}

// GenerateCSVExport writes the per-period outcomes for spreadsheets
func GenerateCSVExport(result *Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	var builder strings.Builder
	builder.WriteString("index,period,actual,shape,scored,score,threshold,bet,skip_reason,tickets,cost,prize,profit,capital_after\n")
	for _, o := range result.Outcomes {
		builder.WriteString(fmt.Sprintf("%d,%s,%s,%s,%t,%.4f,%.4f,%t,%s,%d,%d,%d,%d,%d\n",
			o.Index, o.PeriodID, o.Actual.String(), o.ActualShape, o.Scored, o.Score, o.Threshold,
			o.Bet, o.SkipReason, o.Tickets, o.Cost, o.Prize, o.Profit, o.CapitalAfter))
	}
	return os.WriteFile(outputPath, []byte(builder.String()), 0o644)
}

// GenerateEquityCSV writes the equity curve
func GenerateEquityCSV(curve EquityCurve, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(curve.ToCSV()), 0o644)
}

// GenerateScanCSV writes the threshold sweep rows
func GenerateScanCSV(scan *ScanResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	var builder strings.Builder
	builder.WriteString("threshold,bet_periods,bet_rate,win_periods,win_rate,cost,prize,profit,roi,max_drawdown,composite\n")
	for _, r := range scan.Rows {
		builder.WriteString(fmt.Sprintf("%.2f,%d,%.6f,%d,%.6f,%d,%d,%d,%.6f,%.6f,%.4f\n",
			r.Threshold, r.BetPeriods, r.BetRate, r.WinPeriods, r.WinRate, r.Cost, r.Prize, r.Profit, r.ROI, r.MaxDrawdown, r.CompositeScore()))
	}
	return os.WriteFile(outputPath, []byte(builder.String()), 0o644)
}
