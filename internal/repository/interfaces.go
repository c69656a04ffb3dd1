package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/digit-edge/internal/models"
)

// DrawRepository defines the interface for historical draw access
type DrawRepository interface {
	// List returns every stored draw ordered by period id
	List(ctx context.Context) ([]models.Draw, error)
	// Latest returns the most recent n draws, oldest first
	Latest(ctx context.Context, n int) ([]models.Draw, error)
	// InsertBatch stores draws, skipping periods already present, and reports how many were new
	InsertBatch(ctx context.Context, draws []models.Draw) (int, error)
}

// BacktestRunRepository defines the interface for persisted backtest runs
type BacktestRunRepository interface {
	Save(ctx context.Context, run *models.BacktestRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error)
	GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error)
}
