package backtest

import (
	"encoding/json"

	"github.com/yourusername/digit-edge/internal/metrics"
)

// Recommendation verdicts
const (
	RecommendAccept      = "ACCEPT"
	RecommendReject      = "REJECT"
	RecommendNeedsReview = "NEEDS_REVIEW"
)

// Report combines one replay with its baseline, bands and segments
type Report struct {
	ConfigHash     string           `json:"config_hash"`
	Oracle         string           `json:"oracle"`
	Scorer         string           `json:"scorer"`
	Result         *Result          `json:"result"`
	Baseline       MonteCarloResult `json:"baseline"`
	Comparison     Comparison       `json:"comparison"`
	Bands          []BandResult     `json:"score_bands"`
	Segments       SegmentReport    `json:"segments"`
	Dropped        int              `json:"dropped_draws"`
	Recommendation string           `json:"recommendation"`
}

// AggregateResults builds the run report and its verdict
func AggregateResults(cfg BacktestConfig, series *Series, result *Result, baseline MonteCarloResult, scorerName string) (*Report, error) {
	segments, err := Segments(result.Outcomes, segmentSize(cfg.SegmentSize, len(result.Outcomes)))
	if err != nil {
		return nil, err
	}

	comparison := Compare(result.Summary, baseline)
	report := &Report{
		ConfigHash: HashParameters(cfg),
		Scorer:     scorerName,
		Result:     result,
		Baseline:   baseline,
		Comparison: comparison,
		Bands:      ScoreBands(result.Outcomes, nil),
		Segments:   segments,
	}
	if series != nil {
		report.Oracle = series.OracleName
		report.Dropped = series.Dropped
	}
	report.Recommendation = GenerateRecommendation(result.Summary, comparison, segments.Consistency)
	metrics.RecordRecommendation(report.Recommendation)
	return report, nil
}

// GenerateRecommendation determines if the strategy is worth deploying
func GenerateRecommendation(summary Summary, comparison Comparison, consistency float64) string {
	if summary.BetPeriods == 0 {
		return RecommendReject
	}
	if comparison.SignificantlyBetter && summary.ROI > 0 && consistency >= 0.5 {
		return RecommendAccept
	}
	if !comparison.SignificantlyBetter && summary.ROI < 0 {
		return RecommendReject
	}
	return RecommendNeedsReview
}

// ToJSON exports the report
func (r Report) ToJSON() string {
	data, _ := json.Marshal(r)
	return string(data)
}

func segmentSize(size, periods int) int {
	if size > 0 {
		return size
	}
	if periods > 0 {
		return periods
	}
	return 1
}
