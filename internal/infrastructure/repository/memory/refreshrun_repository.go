package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/fpl-insights/internal/domain/refreshrun"
)

const defaultRunCapacity = 50

// RefreshRunRepository keeps the most recent refresh runs in memory. It is
// the fallback when no database is configured.
type RefreshRunRepository struct {
	mu       sync.RWMutex
	runs     []refreshrun.Run
	capacity int
	nextID   int64
}

func NewRefreshRunRepository(capacity int) *RefreshRunRepository {
	if capacity <= 0 {
		capacity = defaultRunCapacity
	}
	return &RefreshRunRepository{
		runs:     make([]refreshrun.Run, 0, capacity),
		capacity: capacity,
		nextID:   1,
	}
}

func (r *RefreshRunRepository) Record(_ context.Context, run refreshrun.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validate refresh run: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	run.ID = r.nextID
	r.nextID++

	// Newest first, bounded.
	r.runs = append([]refreshrun.Run{run}, r.runs...)
	if len(r.runs) > r.capacity {
		r.runs = r.runs[:r.capacity]
	}
	return nil
}

func (r *RefreshRunRepository) ListRecent(_ context.Context, limit int) ([]refreshrun.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.runs) {
		limit = len(r.runs)
	}
	out := make([]refreshrun.Run, limit)
	copy(out, r.runs[:limit])
	return out, nil
}
