package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/fpl-insights/internal/domain/refreshrun"
)

type refreshRunTableModel struct {
	ID           int64          `db:"id"`
	Trigger      string         `db:"trigger"`
	Status       string         `db:"status"`
	StatsGW      int            `db:"stats_gw"`
	TransfersGW  int            `db:"transfers_gw"`
	PlayerCount  int            `db:"player_count"`
	ErrorMessage sql.NullString `db:"error_message"`
	DurationMS   int64          `db:"duration_ms"`
	StartedAt    time.Time      `db:"started_at"`
	FinishedAt   time.Time      `db:"finished_at"`
}

func (m refreshRunTableModel) toDomain() refreshrun.Run {
	return refreshrun.Run{
		ID:          m.ID,
		Trigger:     refreshrun.Trigger(m.Trigger),
		Status:      refreshrun.Status(m.Status),
		StatsGW:     m.StatsGW,
		TransfersGW: m.TransfersGW,
		PlayerCount: m.PlayerCount,
		Error:       m.ErrorMessage.String,
		Duration:    time.Duration(m.DurationMS) * time.Millisecond,
		StartedAt:   m.StartedAt,
		FinishedAt:  m.FinishedAt,
	}
}
