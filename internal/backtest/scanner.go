package backtest

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/digit-edge/internal/metrics"
	"github.com/yourusername/digit-edge/internal/strategy"
)

// ScanConfig configures a fixed-threshold sweep
type ScanConfig struct {
	Min     float64
	Max     float64
	Step    float64
	Workers int
}

// Validate validates the sweep bounds
func (c ScanConfig) Validate() error {
	if c.Step <= 0 {
		return fmt.Errorf("scan step must be positive")
	}
	if c.Max < c.Min {
		return fmt.Errorf("scan max %.2f is below min %.2f", c.Max, c.Min)
	}
	return nil
}

// Thresholds lists min, min+step, ... up to and including max
func (c ScanConfig) Thresholds() []float64 {
	if c.Validate() != nil {
		return nil
	}
	n := int(math.Floor((c.Max-c.Min)/c.Step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = c.Min + float64(i)*c.Step
	}
	return out
}

// ScanRow is the replay outcome at one threshold
type ScanRow struct {
	Threshold   float64 `json:"threshold"`
	BetPeriods  int     `json:"bet_periods"`
	BetRate     float64 `json:"bet_rate"`
	WinPeriods  int     `json:"win_periods"`
	WinRate     float64 `json:"win_rate"`
	Cost        int64   `json:"cost"`
	Prize       int64   `json:"prize"`
	Profit      int64   `json:"profit"`
	ROI         float64 `json:"roi"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// CompositeScore weighs ROI, win rate and a capped bet rate, all in percent
func (r ScanRow) CompositeScore() float64 {
	return 0.5*r.ROI*100 + 0.3*r.WinRate*100 + 0.2*math.Min(r.BetRate*100, 20)
}

// ScanResult holds every row plus the picks
type ScanResult struct {
	Rows        []ScanRow `json:"rows"`
	Excluded    int       `json:"excluded"`
	BestROI     *ScanRow  `json:"best_roi,omitempty"`
	BestProfit  *ScanRow  `json:"best_profit,omitempty"`
	Recommended *ScanRow  `json:"recommended,omitempty"`
	LeastLoss   bool      `json:"least_loss"`
}

// Scan replays the cached series once per threshold. The oracle is never called.
func (e *Engine) Scan(ctx context.Context, series *Series, cfg ScanConfig) (*ScanResult, error) {
	if series == nil {
		return nil, fmt.Errorf("series is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	thresholds := cfg.Thresholds()
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	rows := make([]*ScanRow, len(thresholds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, th := range thresholds {
		i, th := i, th
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			row, err := e.scanThreshold(series, th)
			if err != nil {
				metrics.RecordScanThreshold("failure")
				e.logger.WithError(err).WithField("threshold", th).Warn("Threshold scan unit failed")
				return nil
			}
			metrics.RecordScanThreshold("success")
			rows[i] = &row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordBacktestRun("scan", "failure")
		return nil, err
	}

	result := collectScanRows(rows)

	metrics.RecordBacktestRun("scan", "success")
	if result.BestROI != nil {
		metrics.UpdateBacktestROI("scan", result.BestROI.ROI)
		e.events.LogScanResult(len(result.Rows), result.Excluded, result.BestROI.Threshold, result.BestROI.ROI)
	} else {
		e.events.LogScanResult(len(result.Rows), result.Excluded, 0, 0)
	}
	return result, nil
}

// collectScanRows keeps completed rows in threshold order; nil slots are failed units
func collectScanRows(rows []*ScanRow) *ScanResult {
	result := &ScanResult{Rows: make([]ScanRow, 0, len(rows))}
	for _, row := range rows {
		if row == nil {
			result.Excluded++
			continue
		}
		result.Rows = append(result.Rows, *row)
	}
	result.pick()
	return result
}

func (e *Engine) scanThreshold(series *Series, threshold float64) (row ScanRow, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("threshold %.2f panicked: %v", threshold, r)
		}
	}()

	res, err := e.replay(series, strategy.FixedGate{Threshold: threshold}, false)
	if err != nil {
		return ScanRow{}, err
	}
	s := res.Summary
	return ScanRow{
		Threshold:   threshold,
		BetPeriods:  s.BetPeriods,
		BetRate:     s.BetRate,
		WinPeriods:  s.WinPeriods,
		WinRate:     s.WinRate,
		Cost:        s.TotalCost,
		Prize:       s.TotalPrize,
		Profit:      s.Profit,
		ROI:         s.ROI,
		MaxDrawdown: s.MaxDrawdown,
	}, nil
}

// pick selects best ROI, best profit and the composite recommendation among rows
// that placed at least one bet. With no profitable row the recommendation falls
// back to the smallest loss.
func (r *ScanResult) pick() {
	var profitable bool
	for i := range r.Rows {
		row := &r.Rows[i]
		if row.BetPeriods == 0 {
			continue
		}
		if r.BestROI == nil || row.ROI > r.BestROI.ROI {
			r.BestROI = row
		}
		if r.BestProfit == nil || row.Profit > r.BestProfit.Profit {
			r.BestProfit = row
		}
		if row.ROI > 0 {
			if !profitable || row.CompositeScore() > r.Recommended.CompositeScore() {
				r.Recommended = row
			}
			profitable = true
		}
	}
	if !profitable && r.BestROI != nil {
		r.Recommended = r.BestROI
		r.LeastLoss = true
	}
}
