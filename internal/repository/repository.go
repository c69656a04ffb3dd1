package repository

import (
	"fmt"

	"github.com/yourusername/digit-edge/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Draw        DrawRepository
	BacktestRun BacktestRunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Draw:        NewPostgresDrawRepository(db),
		BacktestRun: NewPostgresBacktestRunRepository(db),
	}, nil
}

// NewMemoryRepositories returns in-process repositories for runs without a database
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Draw:        NewMemoryDrawRepository(),
		BacktestRun: NewMemoryBacktestRunRepository(),
	}
}
