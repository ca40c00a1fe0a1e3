package refreshrun

import "context"

// Repository records refresh runs and serves the recent history.
type Repository interface {
	Record(ctx context.Context, run Run) error
	ListRecent(ctx context.Context, limit int) ([]Run, error)
}
