package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BacktestRun represents a persisted walk-forward backtest
type BacktestRun struct {
	ID                  uuid.UUID       `db:"id" json:"id"`
	RunDate             time.Time       `db:"run_date" json:"run_date"`
	FirstPeriod         string          `db:"first_period" json:"first_period"`
	LastPeriod          string          `db:"last_period" json:"last_period"`
	ConfigHash          string          `db:"config_hash" json:"config_hash"`
	GateMode            string          `db:"gate_mode" json:"gate_mode"`
	InitialCapital      int64           `db:"initial_capital" json:"initial_capital"`
	FinalCapital        int64           `db:"final_capital" json:"final_capital"`
	TotalPeriods        int             `db:"total_periods" json:"total_periods"`
	BetPeriods          int             `db:"bet_periods" json:"bet_periods"`
	ROI                 float64         `db:"roi" json:"roi"`
	WinRate             float64         `db:"win_rate" json:"win_rate"`
	MaxDrawdown         float64         `db:"max_drawdown" json:"max_drawdown"`
	SharpeRatio         float64         `db:"sharpe_ratio" json:"sharpe_ratio"`
	CalmarRatio         float64         `db:"calmar_ratio" json:"calmar_ratio"`
	BaselineP95         float64         `db:"baseline_p95" json:"baseline_p95"`
	SignificantlyBetter bool            `db:"significantly_better" json:"significantly_better"`
	Recommendation      string          `db:"recommendation" json:"recommendation"`
	FullResults         json.RawMessage `db:"full_results" json:"full_results"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}
