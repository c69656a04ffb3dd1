package backtest

import (
	"fmt"
)

// SegmentResult summarizes one block of consecutive evaluated periods
type SegmentResult struct {
	Segment     int     `json:"segment"`
	FirstPeriod string  `json:"first_period"`
	LastPeriod  string  `json:"last_period"`
	Periods     int     `json:"periods"`
	BetPeriods  int     `json:"bet_periods"`
	WinPeriods  int     `json:"win_periods"`
	Cost        int64   `json:"cost"`
	Prize       int64   `json:"prize"`
	Profit      int64   `json:"profit"`
	ROI         float64 `json:"roi"`
}

// SegmentReport holds per-segment results and their consistency
type SegmentReport struct {
	Size        int             `json:"size"`
	Segments    []SegmentResult `json:"segments"`
	Consistency float64         `json:"consistency"`
}

// Segments splits the outcomes into consecutive blocks of size periods. The last
// block may be shorter. Consistency is the share of segments with at least one
// bet that ended in profit.
func Segments(outcomes []PeriodOutcome, size int) (SegmentReport, error) {
	if size < 1 {
		return SegmentReport{}, fmt.Errorf("segment size must be positive")
	}

	report := SegmentReport{Size: size}
	for start := 0; start < len(outcomes); start += size {
		end := start + size
		if end > len(outcomes) {
			end = len(outcomes)
		}
		block := outcomes[start:end]
		seg := SegmentResult{
			Segment:     len(report.Segments),
			FirstPeriod: block[0].PeriodID,
			LastPeriod:  block[len(block)-1].PeriodID,
			Periods:     len(block),
		}
		for _, o := range block {
			if !o.Bet {
				continue
			}
			seg.BetPeriods++
			seg.Cost += o.Cost
			seg.Prize += o.Prize
			if o.Won {
				seg.WinPeriods++
			}
		}
		seg.Profit = seg.Prize - seg.Cost
		seg.ROI = calculateROI(seg.Cost, seg.Prize)
		report.Segments = append(report.Segments, seg)
	}
	report.Consistency = consistency(report.Segments)
	return report, nil
}

func consistency(segments []SegmentResult) float64 {
	active, profitable := 0, 0
	for _, s := range segments {
		if s.BetPeriods == 0 {
			continue
		}
		active++
		if s.Profit > 0 {
			profitable++
		}
	}
	return ratio(profitable, active)
}
