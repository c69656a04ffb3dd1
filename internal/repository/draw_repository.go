package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/digit-edge/internal/database"
	"github.com/yourusername/digit-edge/internal/models"
)

const errScanDraw = "failed to scan draw: %w"

// PostgresDrawRepository implements DrawRepository for PostgreSQL
type PostgresDrawRepository struct {
	db *database.DB
}

// NewPostgresDrawRepository creates a new draw repository
func NewPostgresDrawRepository(db *database.DB) DrawRepository {
	return &PostgresDrawRepository{db: db}
}

// List retrieves the full history
func (r *PostgresDrawRepository) List(ctx context.Context) ([]models.Draw, error) {
	query := `SELECT period_id, draw_date, d1, d2, d3 FROM draws ORDER BY period_id`
	rows, err := r.db.Conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query draws: %w", err)
	}
	return scanDraws(rows)
}

// Latest retrieves the last n draws in chronological order
func (r *PostgresDrawRepository) Latest(ctx context.Context, n int) ([]models.Draw, error) {
	query := `
		SELECT period_id, draw_date, d1, d2, d3 FROM (
			SELECT period_id, draw_date, d1, d2, d3 FROM draws ORDER BY period_id DESC LIMIT $1
		) recent ORDER BY period_id
	`
	rows, err := r.db.Conn(ctx).Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest draws: %w", err)
	}
	return scanDraws(rows)
}

// InsertBatch inserts draws in one transaction, ignoring periods already stored
func (r *PostgresDrawRepository) InsertBatch(ctx context.Context, draws []models.Draw) (int, error) {
	if len(draws) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO draws (period_id, draw_date, d1, d2, d3)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (period_id) DO NOTHING
	`

	inserted := 0
	err := r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		batch := &pgx.Batch{}
		for i := range draws {
			d := &draws[i]
			if err := d.Validate(); err != nil {
				return err
			}
			batch.Queue(query, d.PeriodID, nullableDate(d.Date), d.Digits[0], d.Digits[1], d.Digits[2])
		}

		results := r.db.Conn(txCtx).SendBatch(txCtx, batch)
		for range draws {
			tag, err := results.Exec()
			if err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to insert draw: %w", err)
			}
			inserted += int(tag.RowsAffected())
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func scanDraws(rows pgx.Rows) ([]models.Draw, error) {
	defer rows.Close()

	var draws []models.Draw
	for rows.Next() {
		var (
			d    models.Draw
			date *time.Time
		)
		if err := rows.Scan(&d.PeriodID, &date, &d.Digits[0], &d.Digits[1], &d.Digits[2]); err != nil {
			return nil, fmt.Errorf(errScanDraw, err)
		}
		if date != nil {
			d.Date = *date
		}
		draws = append(draws, d)
	}
	return draws, rows.Err()
}
