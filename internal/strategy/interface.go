package strategy

import (
	"errors"

	"github.com/yourusername/digit-edge/internal/models"
)

var (
	ErrNoCandidates        = errors.New("no candidate combinations")
	ErrEmptyBudget         = errors.New("stake budget must be positive")
	ErrInsufficientCapital = errors.New("capital below minimum bet amount")
	ErrEmptyHistory        = errors.New("history window has no valid draws")
	ErrInvalidTopK         = errors.New("top-k must be between 1 and 10")
)

// Candidate is one wagerable combination with its ranking probability
type Candidate struct {
	Combo       models.Digits `json:"combo"`
	Type        models.Shape  `json:"type"`
	Probability float64       `json:"probability"`
	Prize       int64         `json:"prize"`
}

// Key identifies the combination irrespective of digit order
func (c Candidate) Key() string {
	return string(c.Type) + ":" + c.Combo.Sorted().String()
}

// PlanLine is one combination in a betting plan
type PlanLine struct {
	Candidate
	Stake          int     `json:"stake"`
	Cost           int64   `json:"cost"`
	ExpectedReturn float64 `json:"expected_return"`
}

// Plan is the set of wagers for a single period
type Plan struct {
	Lines        []PlanLine `json:"lines"`
	TotalTickets int        `json:"total_tickets"`
	TotalCost    int64      `json:"total_cost"`
}

// Settlement is the result of checking a plan against the drawn digits
type Settlement struct {
	Prize int64      `json:"prize"`
	Wins  []PlanLine `json:"wins,omitempty"`
}

// Settle checks every line of the plan against the actual draw
func (p *Plan) Settle(actual models.Digits, prizes models.PrizeTable) Settlement {
	var s Settlement
	for _, line := range p.Lines {
		won, prize := models.CheckWin(line.Combo, line.Type, actual, prizes)
		if !won {
			continue
		}
		s.Prize += prize * int64(line.Stake)
		s.Wins = append(s.Wins, line)
	}
	return s
}
