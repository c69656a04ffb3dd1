package backtest

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// EquityPoint represents a point in the equity curve
type EquityPoint struct {
	Index    int       `json:"index"`
	PeriodID string    `json:"period,omitempty"`
	Date     time.Time `json:"date,omitempty"`
	Capital  int64     `json:"capital"`
	Peak     int64     `json:"peak"`
	Drawdown float64   `json:"drawdown"`
	Profit   int64     `json:"profit"`
}

// EquityCurve is the capital history of one replay. The first point is the opening
// capital; each following point closes one evaluated period.
type EquityCurve []EquityPoint

// NewEquityCurve pairs the ledger history with the outcomes that produced it
func NewEquityCurve(history []int64, outcomes []PeriodOutcome) EquityCurve {
	curve := make(EquityCurve, 0, len(history))
	var peak int64
	for i, capital := range history {
		if i == 0 || capital > peak {
			peak = capital
		}
		point := EquityPoint{Index: i, Capital: capital, Peak: peak}
		if peak > 0 && capital < peak {
			point.Drawdown = float64(peak-capital) / float64(peak)
		}
		if i > 0 && i-1 < len(outcomes) {
			o := outcomes[i-1]
			point.PeriodID = o.PeriodID
			point.Date = o.Date
			point.Profit = o.Profit
		}
		curve = append(curve, point)
	}
	return curve
}

// MaxDrawdown returns the largest peak-to-trough fall as a fraction of the peak
func (e EquityCurve) MaxDrawdown() float64 {
	maxDD := 0.0
	for _, p := range e {
		if p.Drawdown > maxDD {
			maxDD = p.Drawdown
		}
	}
	return maxDD
}

// Final returns the closing capital
func (e EquityCurve) Final() int64 {
	if len(e) == 0 {
		return 0
	}
	return e[len(e)-1].Capital
}

// ToCSV exports equity curve to CSV string
func (e EquityCurve) ToCSV() string {
	var buf bytes.Buffer
	buf.WriteString("index,period,capital,peak,drawdown,profit\n")
	for _, point := range e {
		buf.WriteString(strconv.Itoa(point.Index))
		buf.WriteString(",")
		buf.WriteString(point.PeriodID)
		buf.WriteString(",")
		buf.WriteString(strconv.FormatInt(point.Capital, 10))
		buf.WriteString(",")
		buf.WriteString(strconv.FormatInt(point.Peak, 10))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Drawdown))
		buf.WriteString(",")
		buf.WriteString(strconv.FormatInt(point.Profit, 10))
		buf.WriteString("\n")
	}
	return buf.String()
}

// ToJSON exports equity curve to JSON string
func (e EquityCurve) ToJSON() string {
	data, _ := json.Marshal(e)
	return string(data)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
