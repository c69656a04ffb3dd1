package strategy

import (
	"fmt"
	"math"

	"github.com/yourusername/digit-edge/internal/models"
)

// SizingParams are the fixed inputs of the Kelly position sizer
type SizingParams struct {
	TicketPrice      int64
	Prizes           models.PrizeTable
	KellyMultiplier  float64
	MaxRiskFraction  float64
	MinBetAmount     int64
	MaxBetAmount     int64
	HistoryWeight    float64
	ConfidenceWeight float64
}

// DefaultSizingParams returns quarter-Kelly sizing with a 5% per-period ceiling
func DefaultSizingParams() SizingParams {
	return SizingParams{
		TicketPrice:      2,
		Prizes:           models.DefaultPrizeTable(),
		KellyMultiplier:  0.25,
		MaxRiskFraction:  0.05,
		MinBetAmount:     10,
		MaxBetAmount:     500,
		HistoryWeight:    0.4,
		ConfidenceWeight: 0.6,
	}
}

// SizingInput carries the per-period state the sizer depends on
type SizingInput struct {
	Capital           int64
	Confidence        float64
	HistoricalWinRate float64
}

// Sizing is the sizer's output for one period
type Sizing struct {
	WinProbability   float64 `json:"win_probability"`
	PayoutMultiple   float64 `json:"payout_multiple"`
	KellyFraction    float64 `json:"kelly_fraction"`
	AdjustedFraction float64 `json:"adjusted_fraction"`
	Amount           int64   `json:"amount"`
	Tickets          int     `json:"tickets"`
}

// SizePosition converts capital, confidence and the rolling win rate into a ticket count
// using fractional Kelly, capped by the risk ceiling and the absolute bet bounds.
func SizePosition(in SizingInput, p SizingParams) (Sizing, error) {
	if p.TicketPrice <= 0 {
		return Sizing{}, fmt.Errorf("ticket price must be positive")
	}
	if in.Capital < p.MinBetAmount || in.Capital < p.TicketPrice {
		return Sizing{}, ErrInsufficientCapital
	}

	winProb := p.HistoryWeight*unit(in.HistoricalWinRate) + p.ConfidenceWeight*unit(in.Confidence)
	avgPrize := float64(p.Prizes.Group3+p.Prizes.Group6) / 2
	b := avgPrize / float64(p.TicketPrice)

	var kelly float64
	if b > 0 {
		kelly = (winProb*b - (1 - winProb)) / b
	}
	adjusted := math.Max(0, kelly*p.KellyMultiplier)
	if math.IsNaN(adjusted) || math.IsInf(adjusted, 0) {
		adjusted = 0
	}

	capital := float64(in.Capital)
	amount := math.Min(capital*adjusted, capital*p.MaxRiskFraction)
	amount = math.Max(float64(p.MinBetAmount), math.Min(amount, float64(p.MaxBetAmount)))
	amount = math.Min(amount, capital)

	tickets := int(int64(amount) / p.TicketPrice)
	if tickets < 1 {
		tickets = 1
	}

	return Sizing{
		WinProbability:   winProb,
		PayoutMultiple:   b,
		KellyFraction:    kelly,
		AdjustedFraction: adjusted,
		Amount:           int64(tickets) * p.TicketPrice,
		Tickets:          tickets,
	}, nil
}

// RollingWinRate tracks the share of settled bet periods that paid a prize
type RollingWinRate struct {
	Initial float64
	Bets    int
	Wins    int
}

// NewRollingWinRate starts from a prior rate used until the first bet settles
func NewRollingWinRate(initial float64) RollingWinRate {
	return RollingWinRate{Initial: initial}
}

// Rate returns the observed rate, or the prior before any bet
func (r RollingWinRate) Rate() float64 {
	if r.Bets == 0 {
		return r.Initial
	}
	return float64(r.Wins) / float64(r.Bets)
}

// Record returns the rate updated with one settled bet period
func (r RollingWinRate) Record(won bool) RollingWinRate {
	r.Bets++
	if won {
		r.Wins++
	}
	return r
}

func unit(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
