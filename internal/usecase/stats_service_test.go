package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fpl-insights/internal/domain/player"
	"github.com/riskibarqy/fpl-insights/internal/domain/refreshrun"
	"github.com/riskibarqy/fpl-insights/internal/domain/team"
	"github.com/riskibarqy/fpl-insights/internal/platform/cache"
)

type fakeStatsSource struct {
	info      GameweekInfo
	teams     []team.Team
	master    []SeasonPlayer
	statsByGW map[int][]player.Player
	fail      bool
	calls     atomic.Int32
}

func (f *fakeStatsSource) ResolveGameweeks(context.Context) (GameweekInfo, error) {
	f.calls.Add(1)
	if f.fail {
		return GameweekInfo{}, errors.New("source down")
	}
	return f.info, nil
}

func (f *fakeStatsSource) MasterPlayers(context.Context) ([]SeasonPlayer, error) {
	return f.master, nil
}

func (f *fakeStatsSource) Teams(context.Context) ([]team.Team, error) {
	return f.teams, nil
}

func (f *fakeStatsSource) GameweekStats(_ context.Context, gw int) ([]player.Player, error) {
	rows, ok := f.statsByGW[gw]
	if !ok {
		return nil, errors.New("no such gameweek")
	}
	return rows, nil
}

type fakeLive struct {
	statuses []LiveStatus
	err      error
}

func (f *fakeLive) LiveStatuses(context.Context) ([]LiveStatus, error) {
	return f.statuses, f.err
}

func (f *fakeLive) CurrentGameweek(context.Context) (int, error) { return 5, nil }

type fakeRuns struct {
	runs []refreshrun.Run
}

func (f *fakeRuns) Record(_ context.Context, run refreshrun.Run) error {
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRuns) ListRecent(_ context.Context, limit int) ([]refreshrun.Run, error) {
	if limit > len(f.runs) {
		limit = len(f.runs)
	}
	return f.runs[:limit], nil
}

func workingSource() *fakeStatsSource {
	return &fakeStatsSource{
		info: GameweekInfo{Latest: 5, StatsGW: 4, TransfersGW: 5},
		teams: []team.Team{
			{Code: 3, Name: "Arsenal", ShortName: "ARS", Elo: 1900},
			{Code: 14, Name: "Liverpool", ShortName: "LIV", Elo: 1920},
		},
		master: []SeasonPlayer{
			{ID: 1, WebName: "Salah", TeamCode: 14, Position: "Midfielder"},
			{ID: 2, WebName: "Raya", TeamCode: 3, Position: "Goalkeeper"},
		},
		statsByGW: map[int][]player.Player{
			4: {
				{ID: 1, WebName: "Salah", NowCost: 13.0, TotalPoints: 65, Minutes: 360, SelectedByPercent: 40},
				{ID: 2, WebName: "Raya", NowCost: 5.6, TotalPoints: 20, Minutes: 360},
				{ID: 3, WebName: "Ghost", NowCost: 4.5, TotalPoints: 2, Minutes: 45},
			},
			5: {
				{ID: 1, NowCost: 13.2, SelectedByPercent: 45.5, TransfersIn: 900, TransfersOut: 100},
			},
		},
	}
}

func newTestStatsService(t *testing.T, source *fakeStatsSource, live LiveDataSource, runs refreshrun.Repository) (*StatsService, *cache.WindowStore[*Snapshot], *cache.Store) {
	t.Helper()

	window := cache.NewWindowStore[*Snapshot]([]int{5, 17})
	views := cache.NewStore(time.Hour)
	svc, err := NewStatsService(StatsServiceConfig{
		Source: source,
		Live:   live,
		Window: window,
		Views:  views,
		Runs:   runs,
	})
	if err != nil {
		t.Fatalf("NewStatsService: %v", err)
	}
	return svc, window, views
}

func TestStatsService_Refresh_AssemblesSnapshot(t *testing.T) {
	t.Parallel()

	source := workingSource()
	runs := &fakeRuns{}
	live := &fakeLive{statuses: []LiveStatus{
		{PlayerID: 1, Status: "a", News: "", ChanceNextRound: 100, ChanceThisRound: 100},
		{PlayerID: 2, Status: "d", News: "Knock, 75% chance", ChanceNextRound: 75, ChanceThisRound: 75},
	}}
	svc, _, views := newTestStatsService(t, source, live, runs)

	views.Set(context.Background(), "team_42", "stale view")

	snap, err := svc.Refresh(context.Background(), refreshrun.TriggerManual)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(snap.Players) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(snap.Players))
	}

	salah, ok := snap.Players.FindByID(1)
	if !ok {
		t.Fatal("row 1 missing")
	}
	if salah.TeamName != "LIV" || salah.Position != player.PositionMidfielder {
		t.Fatalf("master join failed: %+v", salah)
	}
	// Transfer columns come from the newest gameweek file.
	if salah.TransfersIn != 900 || salah.SelectedByPercent != 45.5 || salah.NowCost != 13.2 {
		t.Fatalf("transfer overlay failed: %+v", salah)
	}
	if salah.PointsPerMillion <= 0 {
		t.Fatal("derived metrics not computed")
	}

	// No master row: club falls back to Unknown, availability to defaults.
	ghost, _ := snap.Players.FindByID(3)
	if ghost.TeamName != team.UnknownName {
		t.Fatalf("expected Unknown team, got %q", ghost.TeamName)
	}
	if ghost.ChanceOfPlayingNextRound != 100 {
		t.Fatalf("expected default availability, got %v", ghost.ChanceOfPlayingNextRound)
	}

	raya, _ := snap.Players.FindByID(2)
	if raya.ChanceOfPlayingNextRound != 75 || raya.News == "" {
		t.Fatalf("live overlay failed: %+v", raya)
	}

	if len(runs.runs) != 1 || runs.runs[0].Status != refreshrun.StatusSucceeded {
		t.Fatalf("expected one succeeded run, got %+v", runs.runs)
	}
	if runs.runs[0].PlayerCount != 3 || runs.runs[0].StatsGW != 4 {
		t.Fatalf("run metadata wrong: %+v", runs.runs[0])
	}

	// Cached per-manager views are dropped on refresh.
	if _, ok := views.Get(context.Background(), "team_42"); ok {
		t.Fatal("team view cache should be cleared by refresh")
	}
}

func TestStatsService_Snapshot_ServesCachedInsideWindow(t *testing.T) {
	t.Parallel()

	source := workingSource()
	svc, window, _ := newTestStatsService(t, source, nil, &fakeRuns{})

	window.SetClock(func() time.Time { return time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC) })
	if _, err := svc.Refresh(context.Background(), refreshrun.TriggerStartup); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	resolves := source.calls.Load()

	// Inside the window nothing should re-fetch.
	window.SetClock(func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) })
	for i := 0; i < 5; i++ {
		snap := svc.Snapshot(context.Background())
		if len(snap.Players) != 3 {
			t.Fatalf("unexpected snapshot size %d", len(snap.Players))
		}
	}
	if got := source.calls.Load(); got != resolves {
		t.Fatalf("snapshot reads must not re-fetch: %d -> %d", resolves, got)
	}
}

func TestStatsService_Snapshot_StaleFallbackOnFailedRefresh(t *testing.T) {
	t.Parallel()

	source := workingSource()
	runs := &fakeRuns{}
	svc, window, _ := newTestStatsService(t, source, nil, runs)

	window.SetClock(func() time.Time { return time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC) })
	if _, err := svc.Refresh(context.Background(), refreshrun.TriggerStartup); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// Cross the 17:00 window with the source now failing.
	source.fail = true
	window.SetClock(func() time.Time { return time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC) })

	snap := svc.Snapshot(context.Background())
	if len(snap.Players) != 3 {
		t.Fatal("stale snapshot should still be served")
	}

	last := runs.runs[len(runs.runs)-1]
	if last.Status != refreshrun.StatusStale {
		t.Fatalf("failed refresh over a cached snapshot records stale status, got %s", last.Status)
	}
}

func TestStatsService_Snapshot_EmptyFallbackWithoutCache(t *testing.T) {
	t.Parallel()

	source := workingSource()
	source.fail = true
	runs := &fakeRuns{}
	svc, _, _ := newTestStatsService(t, source, nil, runs)

	snap := svc.Snapshot(context.Background())
	if snap == nil || len(snap.Players) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
	if len(runs.runs) != 1 || runs.runs[0].Status != refreshrun.StatusFailed {
		t.Fatalf("expected one failed run, got %+v", runs.runs)
	}
}

func TestStatsService_CacheStatus(t *testing.T) {
	t.Parallel()

	source := workingSource()
	svc, window, _ := newTestStatsService(t, source, nil, &fakeRuns{})
	window.SetClock(func() time.Time { return time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC) })

	status := svc.CacheStatus(context.Background())
	if status.Status != "empty" || status.LastUpdated != nil {
		t.Fatalf("expected empty status, got %+v", status)
	}

	if _, err := svc.Refresh(context.Background(), refreshrun.TriggerStartup); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	status = svc.CacheStatus(context.Background())
	if status.Status != "active" || status.PlayerCount != 3 {
		t.Fatalf("expected active status with 3 players, got %+v", status)
	}
	if status.StatsGW != 4 || status.TransfersGW != 5 {
		t.Fatalf("gameweeks wrong: %+v", status)
	}
	if len(status.RecentRuns) != 1 {
		t.Fatalf("expected recent run history, got %+v", status.RecentRuns)
	}
	if status.NextUpdate.Hour() != 17 {
		t.Fatalf("next update should be 17:00, got %s", status.NextUpdate)
	}
}

func TestFormatCountdown(t *testing.T) {
	t.Parallel()

	if got := formatCountdown(3*time.Hour + 41*time.Minute); got != "3h 41m" {
		t.Fatalf("got %q", got)
	}
	if got := formatCountdown(-time.Minute); got != "0h 0m" {
		t.Fatalf("negative countdown clamps to zero, got %q", got)
	}
}
