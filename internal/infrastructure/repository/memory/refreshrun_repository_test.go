package memory

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/fpl-insights/internal/domain/refreshrun"
)

func sampleRun(trigger refreshrun.Trigger) refreshrun.Run {
	now := time.Date(2026, 3, 10, 5, 0, 0, 0, time.UTC)
	return refreshrun.Run{
		Trigger:     trigger,
		Status:      refreshrun.StatusSucceeded,
		StatsGW:     4,
		TransfersGW: 5,
		PlayerCount: 650,
		StartedAt:   now,
		FinishedAt:  now.Add(3 * time.Second),
	}
}

func TestRefreshRunRepository_RecordAssignsIDsNewestFirst(t *testing.T) {
	t.Parallel()

	repo := NewRefreshRunRepository(10)
	ctx := context.Background()

	if err := repo.Record(ctx, sampleRun(refreshrun.TriggerStartup)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := repo.Record(ctx, sampleRun(refreshrun.TriggerManual)); err != nil {
		t.Fatalf("record: %v", err)
	}

	runs, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Trigger != refreshrun.TriggerManual {
		t.Fatalf("newest run must come first, got %s", runs[0].Trigger)
	}
	if runs[0].ID <= runs[1].ID {
		t.Fatalf("ids must increase: %d then %d", runs[1].ID, runs[0].ID)
	}
}

func TestRefreshRunRepository_CapacityBound(t *testing.T) {
	t.Parallel()

	repo := NewRefreshRunRepository(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.Record(ctx, sampleRun(refreshrun.TriggerScheduled)); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	runs, err := repo.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("capacity 3 must bound history, got %d", len(runs))
	}
}

func TestRefreshRunRepository_RejectsInvalidRun(t *testing.T) {
	t.Parallel()

	repo := NewRefreshRunRepository(3)
	bad := sampleRun(refreshrun.Trigger("cosmic"))
	if err := repo.Record(context.Background(), bad); err == nil {
		t.Fatal("invalid trigger must be rejected")
	}
}
