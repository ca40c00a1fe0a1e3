package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fpl-insights/internal/domain/refreshrun"
)

const defaultRecentRunLimit = 20

type RefreshRunRepository struct {
	db *sqlx.DB
}

func NewRefreshRunRepository(db *sqlx.DB) *RefreshRunRepository {
	return &RefreshRunRepository{db: db}
}

func (r *RefreshRunRepository) Record(ctx context.Context, run refreshrun.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validate refresh run: %w", err)
	}

	errMsg := sql.NullString{String: run.Error, Valid: run.Error != ""}
	const query = `
		INSERT INTO refresh_runs
			(trigger, status, stats_gw, transfers_gw, player_count,
			 error_message, duration_ms, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if _, err := r.db.ExecContext(ctx, query,
		string(run.Trigger), string(run.Status),
		run.StatsGW, run.TransfersGW, run.PlayerCount,
		errMsg, run.Duration.Milliseconds(),
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert refresh run: %w", err)
	}

	return nil
}

func (r *RefreshRunRepository) ListRecent(ctx context.Context, limit int) ([]refreshrun.Run, error) {
	if limit <= 0 {
		limit = defaultRecentRunLimit
	}

	const query = `
		SELECT id, trigger, status, stats_gw, transfers_gw, player_count,
		       error_message, duration_ms, started_at, finished_at
		FROM refresh_runs
		ORDER BY started_at DESC, id DESC
		LIMIT $1`

	var rows []refreshRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("select recent refresh runs: %w", err)
	}

	out := make([]refreshrun.Run, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
