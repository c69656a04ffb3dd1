package backtest

import "math"

// ScoreBand is a half-open score interval [Low, High)
type ScoreBand struct {
	Label string
	Low   float64
	High  float64
}

// DefaultScoreBands are the reporting bands around the default fixed threshold
var DefaultScoreBands = []ScoreBand{
	{Label: ">=60", Low: 60, High: math.Inf(1)},
	{Label: "58.45-60", Low: 58.45, High: 60},
	{Label: "55-58.45", Low: 55, High: 58.45},
	{Label: "50-55", Low: 50, High: 55},
	{Label: "<50", Low: math.Inf(-1), High: 50},
}

// Contains reports whether score falls in the band
func (b ScoreBand) Contains(score float64) bool {
	return score >= b.Low && score < b.High
}

// BandResult is the performance of bet periods whose score fell in one band
type BandResult struct {
	Band       string  `json:"band"`
	Scored     int     `json:"scored"`
	BetPeriods int     `json:"bet_periods"`
	WinPeriods int     `json:"win_periods"`
	WinRate    float64 `json:"win_rate"`
	Cost       int64   `json:"cost"`
	Prize      int64   `json:"prize"`
	Profit     int64   `json:"profit"`
	ROI        float64 `json:"roi"`
}

// ScoreBands groups scored periods by band. Bet statistics only count bet periods.
func ScoreBands(outcomes []PeriodOutcome, bands []ScoreBand) []BandResult {
	if len(bands) == 0 {
		bands = DefaultScoreBands
	}
	results := make([]BandResult, len(bands))
	for i, b := range bands {
		results[i].Band = b.Label
	}

	for _, o := range outcomes {
		if !o.Scored {
			continue
		}
		for i, b := range bands {
			if !b.Contains(o.Score) {
				continue
			}
			r := &results[i]
			r.Scored++
			if o.Bet {
				r.BetPeriods++
				r.Cost += o.Cost
				r.Prize += o.Prize
				if o.Won {
					r.WinPeriods++
				}
			}
			break
		}
	}

	for i := range results {
		r := &results[i]
		r.Profit = r.Prize - r.Cost
		r.ROI = calculateROI(r.Cost, r.Prize)
		r.WinRate = ratio(r.WinPeriods, r.BetPeriods)
	}
	return results
}
