package refreshrun

import (
	"fmt"
	"time"
)

// Trigger identifies what started a refresh.
type Trigger string

const (
	TriggerStartup   Trigger = "startup"
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// Status is the terminal state of a refresh run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusStale     Status = "stale_fallback"
)

// Run is the audit record of one snapshot rebuild.
type Run struct {
	ID          int64         `db:"id" json:"id"`
	Trigger     Trigger       `db:"trigger" json:"trigger"`
	Status      Status        `db:"status" json:"status"`
	StatsGW     int           `db:"stats_gw" json:"stats_gw"`
	TransfersGW int           `db:"transfers_gw" json:"transfers_gw"`
	PlayerCount int           `db:"player_count" json:"player_count"`
	Error       string        `db:"error_message" json:"error,omitempty"`
	Duration    time.Duration `db:"-" json:"duration_ms"`
	StartedAt   time.Time     `db:"started_at" json:"started_at"`
	FinishedAt  time.Time     `db:"finished_at" json:"finished_at"`
}

func (r Run) Validate() error {
	switch r.Trigger {
	case TriggerStartup, TriggerScheduled, TriggerManual:
	default:
		return fmt.Errorf("invalid refresh trigger: %s", r.Trigger)
	}
	switch r.Status {
	case StatusSucceeded, StatusFailed, StatusStale:
	default:
		return fmt.Errorf("invalid refresh status: %s", r.Status)
	}
	if r.StartedAt.IsZero() {
		return fmt.Errorf("refresh run started_at is required")
	}
	return nil
}
