package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/digit-edge/internal/models"
)

// MemoryDrawRepository keeps draws in process, ordered by period id
type MemoryDrawRepository struct {
	mu    sync.RWMutex
	draws []models.Draw
	index map[string]struct{}
}

// NewMemoryDrawRepository creates an empty in-memory draw store
func NewMemoryDrawRepository() *MemoryDrawRepository {
	return &MemoryDrawRepository{index: make(map[string]struct{})}
}

func (r *MemoryDrawRepository) List(ctx context.Context) ([]models.Draw, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Draw, len(r.draws))
	copy(out, r.draws)
	return out, nil
}

func (r *MemoryDrawRepository) Latest(ctx context.Context, n int) ([]models.Draw, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n <= 0 {
		return nil, nil
	}
	start := len(r.draws) - n
	if start < 0 {
		start = 0
	}
	out := make([]models.Draw, len(r.draws)-start)
	copy(out, r.draws[start:])
	return out, nil
}

func (r *MemoryDrawRepository) InsertBatch(ctx context.Context, draws []models.Draw) (int, error) {
	for i := range draws {
		if err := draws[i].Validate(); err != nil {
			return 0, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	inserted := 0
	for _, d := range draws {
		if _, ok := r.index[d.PeriodID]; ok {
			continue
		}
		r.index[d.PeriodID] = struct{}{}
		r.draws = append(r.draws, d)
		inserted++
	}
	sort.SliceStable(r.draws, func(i, j int) bool {
		return r.draws[i].PeriodID < r.draws[j].PeriodID
	})
	return inserted, nil
}

// MemoryBacktestRunRepository keeps runs in process
type MemoryBacktestRunRepository struct {
	mu   sync.RWMutex
	runs []*models.BacktestRun
}

// NewMemoryBacktestRunRepository creates an empty in-memory run store
func NewMemoryBacktestRunRepository() *MemoryBacktestRunRepository {
	return &MemoryBacktestRunRepository{}
}

func (r *MemoryBacktestRunRepository) Save(ctx context.Context, run *models.BacktestRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.runs {
		if existing.ID == run.ID {
			return models.ErrDuplicateKey
		}
	}
	saved := *run
	r.runs = append(r.runs, &saved)
	return nil
}

func (r *MemoryBacktestRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, run := range r.runs {
		if run.ID == id {
			out := *run
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryBacktestRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.BacktestRun, 0, len(r.runs))
	for _, run := range r.runs {
		cp := *run
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RunDate.After(out[j].RunDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
