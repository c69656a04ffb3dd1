package strategy

import (
	"fmt"
	"math"
)

// AllocationParams control how a stake budget is spread over ranked candidates
type AllocationParams struct {
	DecayRate      float64
	SelectFraction float64
	MinSelect      int
	TicketPrice    int64
}

// DefaultAllocationParams returns geometric decay 0.85 over at least 15 combinations
func DefaultAllocationParams() AllocationParams {
	return AllocationParams{
		DecayRate:      0.85,
		SelectFraction: 0.25,
		MinSelect:      15,
		TicketPrice:    2,
	}
}

// SelectionSize bounds how many ranked candidates receive stakes. It never exceeds the
// budget so every selected candidate can hold at least one ticket.
func SelectionSize(available, budget int, p AllocationParams) int {
	n := int(p.SelectFraction * float64(budget))
	if n < p.MinSelect {
		n = p.MinSelect
	}
	if n > available {
		n = available
	}
	if n > budget {
		n = budget
	}
	return n
}

// DecayWeights returns r^0, r^1, ..., r^(n-1)
func DecayWeights(n int, r float64) []float64 {
	weights := make([]float64, n)
	w := 1.0
	for i := range weights {
		weights[i] = w
		w *= r
	}
	return weights
}

// Partition splits total into len(weights) integer parts proportional to weights, every
// part at least 1, summing to total exactly. Rounding error is repaid one unit at a time
// starting from the last part.
func Partition(weights []float64, total int) ([]int, error) {
	n := len(weights)
	if n == 0 {
		return nil, ErrNoCandidates
	}
	if total < 1 {
		return nil, ErrEmptyBudget
	}
	if n > total {
		return nil, fmt.Errorf("cannot give %d parts at least 1 from a total of %d", n, total)
	}

	var sum float64
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("weight %d is invalid (%v)", i, w)
		}
		sum += w
	}

	parts := make([]int, n)
	assigned := 0
	for i, w := range weights {
		share := 1.0
		if sum > 0 {
			share = math.RoundToEven(float64(total) * w / sum)
		}
		if share < 1 {
			share = 1
		}
		parts[i] = int(share)
		assigned += parts[i]
	}

	diff := total - assigned
	for diff != 0 {
		moved := false
		for i := n - 1; i >= 0 && diff != 0; i-- {
			switch {
			case diff > 0:
				parts[i]++
				diff--
				moved = true
			case parts[i] > 1:
				parts[i]--
				diff++
				moved = true
			}
		}
		if !moved {
			return nil, fmt.Errorf("partition of %d into %d parts did not converge", total, n)
		}
	}
	return parts, nil
}

// Allocate builds a betting plan of exactly budget tickets over the top-ranked candidates
func Allocate(ranked []Candidate, budget int, p AllocationParams) (Plan, error) {
	if budget < 1 {
		return Plan{}, ErrEmptyBudget
	}
	if len(ranked) == 0 {
		return Plan{}, ErrNoCandidates
	}
	if p.TicketPrice <= 0 {
		return Plan{}, fmt.Errorf("ticket price must be positive")
	}

	n := SelectionSize(len(ranked), budget, p)
	stakes, err := Partition(DecayWeights(n, p.DecayRate), budget)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{Lines: make([]PlanLine, n)}
	for i, stake := range stakes {
		c := ranked[i]
		cost := int64(stake) * p.TicketPrice
		plan.Lines[i] = PlanLine{
			Candidate:      c,
			Stake:          stake,
			Cost:           cost,
			ExpectedReturn: c.Probability*float64(c.Prize)*float64(stake) - float64(cost),
		}
		plan.TotalTickets += stake
		plan.TotalCost += cost
	}
	return plan, nil
}
