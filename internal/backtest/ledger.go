package backtest

import "fmt"

// CapitalLedger is the single mutable capital record of one replay. Every period
// appends exactly one entry, so the history starts at the initial capital and has
// one more entry than the number of replayed periods.
type CapitalLedger struct {
	initial int64
	capital int64
	peak    int64
	history []int64
}

// NewCapitalLedger opens a ledger at the initial capital
func NewCapitalLedger(initial int64) *CapitalLedger {
	return &CapitalLedger{
		initial: initial,
		capital: initial,
		peak:    initial,
		history: []int64{initial},
	}
}

// Capital returns the current capital
func (l *CapitalLedger) Capital() int64 {
	return l.capital
}

// Initial returns the opening capital
func (l *CapitalLedger) Initial() int64 {
	return l.initial
}

// Skip records a zero-cost period
func (l *CapitalLedger) Skip() {
	l.history = append(l.history, l.capital)
}

// Settle debits the cost and credits the prize of one bet period.
// capital_after == capital_before - cost + prize holds for every entry.
func (l *CapitalLedger) Settle(cost, prize int64) (before, after int64, err error) {
	if cost <= 0 {
		return 0, 0, fmt.Errorf("bet period cost must be positive, got %d", cost)
	}
	if prize < 0 {
		return 0, 0, fmt.Errorf("prize cannot be negative, got %d", prize)
	}
	if cost > l.capital {
		return 0, 0, fmt.Errorf("cost %d exceeds capital %d", cost, l.capital)
	}

	before = l.capital
	after = before - cost + prize
	l.capital = after
	if after > l.peak {
		l.peak = after
	}
	l.history = append(l.history, after)
	return before, after, nil
}

// Peak returns the highest capital seen so far
func (l *CapitalLedger) Peak() int64 {
	return l.peak
}

// CurrentDrawdown calculates peak-to-current drawdown
func (l *CapitalLedger) CurrentDrawdown() float64 {
	if l.peak <= 0 {
		return 0
	}
	dd := float64(l.peak-l.capital) / float64(l.peak)
	if dd < 0 {
		return 0
	}
	return dd
}

// History returns a copy of the capital curve
func (l *CapitalLedger) History() []int64 {
	out := make([]int64, len(l.history))
	copy(out, l.history)
	return out
}
