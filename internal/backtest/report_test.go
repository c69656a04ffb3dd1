package backtest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/digit-edge/internal/logger"
	"github.com/yourusername/digit-edge/internal/repository"
)

func buildReport(t *testing.T) *Report {
	t.Helper()
	cfg := testConfig(5)
	cfg.SegmentSize = 10
	engine := newTestEngine(t, cfg, constantOracle(skewedVector()))

	series, result, err := engine.Run(context.Background(), randomDraws(60, 13))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	mc := baselineConfig(2)
	mc.Trials = 50
	baseline, err := engine.Baseline(context.Background(), result, mc)
	if err != nil {
		t.Fatalf("Baseline failed: %v", err)
	}
	report, err := AggregateResults(cfg, series, result, baseline, "model_only")
	if err != nil {
		t.Fatalf("AggregateResults failed: %v", err)
	}
	return report
}

func TestAggregateResults(t *testing.T) {
	report := buildReport(t)
	if report.Oracle != "fake" || report.Scorer != "model_only" {
		t.Fatalf("unexpected labels %s %s", report.Oracle, report.Scorer)
	}
	if len(report.Segments.Segments) != 6 {
		t.Fatalf("expected 6 segments of 10, got %d", len(report.Segments.Segments))
	}
	if report.Comparison.ModelROI != report.Result.Summary.ROI {
		t.Fatalf("comparison does not use the run ROI")
	}
	switch report.Recommendation {
	case RecommendAccept, RecommendReject, RecommendNeedsReview:
	default:
		t.Fatalf("unexpected recommendation %q", report.Recommendation)
	}

	console := GenerateConsoleReport(report)
	if !strings.Contains(console, "Recommendation: "+report.Recommendation) {
		t.Fatalf("console report is missing the recommendation:\n%s", console)
	}
}

func TestExportDir(t *testing.T) {
	report := buildReport(t)
	dir := t.TempDir()

	if err := ExportDir(report, dir); err != nil {
		t.Fatalf("ExportDir failed: %v", err)
	}
	for _, name := range []string{"report.json", "outcomes.csv", "equity_curve.csv", "report.html"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(report.Result.Equity.ToCSV()), "\n")
	if len(lines) != len(report.Result.Outcomes)+2 {
		t.Fatalf("equity csv should have header plus %d rows, got %d lines", len(report.Result.Outcomes)+1, len(lines))
	}
}

func TestExportToDatabase(t *testing.T) {
	report := buildReport(t)
	repo := repository.NewMemoryBacktestRunRepository()

	run, err := ExportToDatabase(context.Background(), report, repo, logger.NewAuditLogger(logrus.New()))
	if err != nil {
		t.Fatalf("ExportToDatabase failed: %v", err)
	}
	stored, err := repo.GetByID(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.ConfigHash != report.ConfigHash || stored.Recommendation != report.Recommendation {
		t.Fatalf("stored run does not match report: %+v", stored)
	}
	if stored.BetPeriods != report.Result.Summary.BetPeriods {
		t.Fatalf("expected %d bet periods, got %d", report.Result.Summary.BetPeriods, stored.BetPeriods)
	}

	if _, err := ExportToDatabase(context.Background(), report, nil, nil); err == nil {
		t.Fatalf("expected error without a repository")
	}
}
