package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/digit-edge/internal/database"
	"github.com/yourusername/digit-edge/internal/models"
)

const (
	errScanBacktestRun = "failed to scan backtest run: %w"

	backtestRunColumns = `id, run_date, first_period, last_period, config_hash, gate_mode,
		initial_capital, final_capital, total_periods, bet_periods, roi, win_rate,
		max_drawdown, sharpe_ratio, calmar_ratio, baseline_p95, significantly_better,
		recommendation, full_results, created_at`
)

// PostgresBacktestRunRepository implements BacktestRunRepository for PostgreSQL
type PostgresBacktestRunRepository struct {
	db *database.DB
}

// NewPostgresBacktestRunRepository creates a new backtest run repository
func NewPostgresBacktestRunRepository(db *database.DB) BacktestRunRepository {
	return &PostgresBacktestRunRepository{db: db}
}

// Save inserts a backtest run
func (r *PostgresBacktestRunRepository) Save(ctx context.Context, run *models.BacktestRun) error {
	query := `INSERT INTO backtest_runs (` + backtestRunColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		run.ID, run.RunDate, run.FirstPeriod, run.LastPeriod, run.ConfigHash, run.GateMode,
		run.InitialCapital, run.FinalCapital, run.TotalPeriods, run.BetPeriods, run.ROI, run.WinRate,
		run.MaxDrawdown, run.SharpeRatio, run.CalmarRatio, run.BaselineP95, run.SignificantlyBetter,
		run.Recommendation, []byte(run.FullResults), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest run: %w", err)
	}
	return nil
}

// GetByID retrieves one run
func (r *PostgresBacktestRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	query := `SELECT ` + backtestRunColumns + ` FROM backtest_runs WHERE id = $1`
	run, err := scanBacktestRun(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return run, err
}

// GetLatest retrieves the most recent runs
func (r *PostgresBacktestRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error) {
	query := `SELECT ` + backtestRunColumns + ` FROM backtest_runs ORDER BY run_date DESC LIMIT $1`
	rows, err := r.db.Conn(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest backtest runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.BacktestRun
	for rows.Next() {
		run, err := scanBacktestRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanBacktestRun(row pgx.Row) (*models.BacktestRun, error) {
	run := &models.BacktestRun{}
	var full []byte
	if err := row.Scan(
		&run.ID, &run.RunDate, &run.FirstPeriod, &run.LastPeriod, &run.ConfigHash, &run.GateMode,
		&run.InitialCapital, &run.FinalCapital, &run.TotalPeriods, &run.BetPeriods, &run.ROI, &run.WinRate,
		&run.MaxDrawdown, &run.SharpeRatio, &run.CalmarRatio, &run.BaselineP95, &run.SignificantlyBetter,
		&run.Recommendation, &full, &run.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf(errScanBacktestRun, err)
	}
	run.FullResults = full
	return run, nil
}
