package backtest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"

	"github.com/yourusername/digit-edge/internal/models"
)

// Summary represents end-of-run performance statistics
type Summary struct {
	Periods        int                  `json:"periods"`
	ScoredPeriods  int                  `json:"scored_periods"`
	BetPeriods     int                  `json:"bet_periods"`
	SkipPeriods    int                  `json:"skip_periods"`
	WinPeriods     int                  `json:"win_periods"`
	WinRate        float64              `json:"win_rate"`
	BetRate        float64              `json:"bet_rate"`
	TotalTickets   int                  `json:"total_tickets"`
	TotalCost      int64                `json:"total_cost"`
	TotalPrize     int64                `json:"total_prize"`
	Profit         int64                `json:"profit"`
	ROI            float64              `json:"roi"`
	AnnualizedROI  float64              `json:"annualized_roi"`
	MaxDrawdown    float64              `json:"max_drawdown"`
	SharpeRatio    float64              `json:"sharpe_ratio"`
	CalmarRatio    float64              `json:"calmar_ratio"`
	InitialCapital int64                `json:"initial_capital"`
	FinalCapital   int64                `json:"final_capital"`
	WinsByShape    map[models.Shape]int `json:"wins_by_shape"`
	SkipsByReason  map[SkipReason]int   `json:"skips_by_reason"`
}

// Summarize calculates run statistics from settled outcomes and the equity curve
func Summarize(outcomes []PeriodOutcome, curve EquityCurve, periodsPerYear int) Summary {
	s := Summary{
		Periods:       len(outcomes),
		WinsByShape:   make(map[models.Shape]int),
		SkipsByReason: make(map[SkipReason]int),
	}
	if len(curve) > 0 {
		s.InitialCapital = curve[0].Capital
		s.FinalCapital = curve.Final()
	}

	returns := make([]float64, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Scored {
			s.ScoredPeriods++
		}
		if !o.Bet {
			s.SkipPeriods++
			s.SkipsByReason[o.SkipReason]++
			continue
		}
		s.BetPeriods++
		s.TotalTickets += o.Tickets
		s.TotalCost += o.Cost
		s.TotalPrize += o.Prize
		if o.Won {
			s.WinPeriods++
			s.WinsByShape[o.ActualShape]++
		}
		returns = append(returns, float64(o.Profit)/float64(o.Cost))
	}

	s.Profit = s.TotalPrize - s.TotalCost
	s.ROI = calculateROI(s.TotalCost, s.TotalPrize)
	s.WinRate = ratio(s.WinPeriods, s.BetPeriods)
	s.BetRate = ratio(s.BetPeriods, s.Periods)
	s.MaxDrawdown = curve.MaxDrawdown()
	s.SharpeRatio = calculateSharpeRatio(returns)
	s.AnnualizedROI = annualize(s.ROI, s.Periods, periodsPerYear)
	if s.MaxDrawdown > 0 {
		s.CalmarRatio = s.AnnualizedROI / s.MaxDrawdown
	}
	return s
}

// ToJSON exports the summary to JSON
func (s Summary) ToJSON() string {
	data, _ := json.Marshal(s)
	return string(data)
}

// calculateROI is (prize - cost) / cost, zero when nothing was wagered
func calculateROI(cost, prize int64) float64 {
	if cost <= 0 {
		return 0
	}
	return float64(prize-cost) / float64(cost)
}

const dispersionEpsilon = 1e-12

// calculateSharpeRatio is mean over population std of per-period profit/cost.
// Fewer than two bet periods or zero dispersion yields 0.
func calculateSharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, std := meanStd(returns)
	// identical returns leave rounding residue in std
	if std <= dispersionEpsilon*math.Max(1, math.Abs(mean)) {
		return 0
	}
	return mean / std
}

// annualize scales ROI earned over the evaluated periods to one year of draws
func annualize(roi float64, periods, periodsPerYear int) float64 {
	if periods <= 0 || periodsPerYear <= 0 {
		return 0
	}
	return roi * float64(periodsPerYear) / float64(periods)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

// HashParameters creates a stable hash for a parameter set
func HashParameters(params any) string {
	data, _ := json.Marshal(params)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
