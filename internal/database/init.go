package database

import (
	"context"
	"fmt"

	"github.com/yourusername/digit-edge/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS draws (
	period_id  TEXT PRIMARY KEY,
	draw_date  DATE,
	d1         SMALLINT NOT NULL CHECK (d1 BETWEEN 0 AND 9),
	d2         SMALLINT NOT NULL CHECK (d2 BETWEEN 0 AND 9),
	d3         SMALLINT NOT NULL CHECK (d3 BETWEEN 0 AND 9),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS backtest_runs (
	id                   UUID PRIMARY KEY,
	run_date             TIMESTAMPTZ NOT NULL,
	first_period         TEXT NOT NULL,
	last_period          TEXT NOT NULL,
	config_hash          TEXT NOT NULL,
	gate_mode            TEXT NOT NULL,
	initial_capital      BIGINT NOT NULL,
	final_capital        BIGINT NOT NULL,
	total_periods        INTEGER NOT NULL,
	bet_periods          INTEGER NOT NULL,
	roi                  DOUBLE PRECISION NOT NULL,
	win_rate             DOUBLE PRECISION NOT NULL,
	max_drawdown         DOUBLE PRECISION NOT NULL,
	sharpe_ratio         DOUBLE PRECISION NOT NULL,
	calmar_ratio         DOUBLE PRECISION NOT NULL,
	baseline_p95         DOUBLE PRECISION NOT NULL,
	significantly_better BOOLEAN NOT NULL,
	recommendation       TEXT NOT NULL,
	full_results         JSONB,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_backtest_runs_run_date ON backtest_runs (run_date DESC);
`

// InitSchema creates the draw and backtest run tables when missing
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Initialize creates a connection pool and makes sure the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
