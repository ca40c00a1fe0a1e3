package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fpl-insights/internal/domain/player"
	"github.com/riskibarqy/fpl-insights/internal/domain/refreshrun"
	"github.com/riskibarqy/fpl-insights/internal/domain/team"
	"github.com/riskibarqy/fpl-insights/internal/platform/cache"
	"github.com/riskibarqy/fpl-insights/internal/platform/logging"
	"github.com/riskibarqy/fpl-insights/internal/platform/resilience"
)

// teamViewCachePrefix keys the cached per-manager views; a refresh drops
// them all so they rebuild against the new snapshot.
const teamViewCachePrefix = "team_"

// Snapshot is the immutable enriched player table served to all readers
// until the next refresh window.
type Snapshot struct {
	Players   player.Table `json:"players"`
	Teams     team.Index   `json:"-"`
	Gameweeks GameweekInfo `json:"gameweeks"`
	BuiltAt   time.Time    `json:"built_at"`
}

// CacheStatus reports the snapshot cache state for operators.
type CacheStatus struct {
	Status      string           `json:"status"`
	StatsGW     int              `json:"stats_gw"`
	TransfersGW int              `json:"transfers_gw"`
	PlayerCount int              `json:"player_count"`
	LastUpdated *time.Time       `json:"last_updated,omitempty"`
	NextUpdate  time.Time        `json:"next_update"`
	TimeUntil   string           `json:"time_until"`
	RecentRuns  []refreshrun.Run `json:"recent_runs,omitempty"`
}

type StatsServiceConfig struct {
	Source StatsSource
	Live   LiveDataSource
	Window *cache.WindowStore[*Snapshot]
	Views  *cache.Store
	Runs   refreshrun.Repository
	Logger *logging.Logger
}

// StatsService owns the snapshot lifecycle: lazy window-driven refresh,
// forced refresh, and stale/empty fallbacks so reads never fail.
type StatsService struct {
	source StatsSource
	live   LiveDataSource
	window *cache.WindowStore[*Snapshot]
	views  *cache.Store
	runs   refreshrun.Repository
	logger *logging.Logger
	flight resilience.Group[*Snapshot]
}

func NewStatsService(cfg StatsServiceConfig) (*StatsService, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("stats source is required")
	}
	if cfg.Window == nil {
		return nil, fmt.Errorf("snapshot window store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &StatsService{
		source: cfg.Source,
		live:   cfg.Live,
		window: cfg.Window,
		views:  cfg.Views,
		runs:   cfg.Runs,
		logger: logger,
	}, nil
}

// Snapshot returns the current table, refreshing it first when an update
// window has been crossed. It degrades to the stale snapshot, then to an
// empty table, rather than failing a read.
func (s *StatsService) Snapshot(ctx context.Context) *Snapshot {
	ctx, span := startUsecaseSpan(ctx, "StatsService.Snapshot")
	defer span.End()

	if !s.window.ShouldRefresh() {
		if snap, _, ok := s.window.Get(); ok {
			return snap
		}
	}

	snap, _, _ := s.flight.Do("snapshot", func() (*Snapshot, error) {
		// Another waiter may have refreshed while we queued.
		if !s.window.ShouldRefresh() {
			if cached, _, ok := s.window.Get(); ok {
				return cached, nil
			}
		}

		rebuilt, err := s.Refresh(ctx, refreshrun.TriggerScheduled)
		if err == nil {
			return rebuilt, nil
		}
		if stale, _, ok := s.window.Get(); ok {
			s.logger.WarnContext(ctx, "snapshot refresh failed, serving stale data", "error", err)
			return stale, nil
		}
		s.logger.ErrorContext(ctx, "snapshot refresh failed with no cached data", "error", err)
		return &Snapshot{Players: player.Table{}, Teams: team.Index{}}, nil
	})
	return snap
}

// Refresh forces a rebuild, records the run, and invalidates the cached
// per-manager views on success.
func (s *StatsService) Refresh(ctx context.Context, trigger refreshrun.Trigger) (*Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "StatsService.Refresh")
	defer span.End()

	started := time.Now().UTC()
	snap, err := s.rebuild(ctx)
	finished := time.Now().UTC()

	run := refreshrun.Run{
		Trigger:    trigger,
		Status:     refreshrun.StatusSucceeded,
		Duration:   finished.Sub(started),
		StartedAt:  started,
		FinishedAt: finished,
	}
	if err != nil {
		run.Status = refreshrun.StatusFailed
		if _, _, ok := s.window.Get(); ok {
			run.Status = refreshrun.StatusStale
		}
		run.Error = err.Error()
	} else {
		run.StatsGW = snap.Gameweeks.StatsGW
		run.TransfersGW = snap.Gameweeks.TransfersGW
		run.PlayerCount = len(snap.Players)
	}
	s.recordRun(ctx, run)

	if err != nil {
		return nil, err
	}

	s.window.Set(snap)
	if s.views != nil {
		s.views.DeletePrefix(ctx, teamViewCachePrefix)
	}
	s.logger.InfoContext(ctx, "snapshot refreshed",
		"trigger", string(trigger),
		"players", len(snap.Players),
		"stats_gw", snap.Gameweeks.StatsGW,
		"transfers_gw", snap.Gameweeks.TransfersGW,
		"took", finished.Sub(started).String(),
	)
	return snap, nil
}

// CacheStatus summarizes snapshot freshness and recent refresh history.
func (s *StatsService) CacheStatus(ctx context.Context) CacheStatus {
	ctx, span := startUsecaseSpan(ctx, "StatsService.CacheStatus")
	defer span.End()

	next := s.window.NextUpdate()
	out := CacheStatus{
		Status:     "empty",
		NextUpdate: next,
		TimeUntil:  formatCountdown(time.Until(next)),
	}

	if snap, updatedAt, ok := s.window.Get(); ok {
		out.Status = "active"
		out.StatsGW = snap.Gameweeks.StatsGW
		out.TransfersGW = snap.Gameweeks.TransfersGW
		out.PlayerCount = len(snap.Players)
		out.LastUpdated = &updatedAt
	}

	if s.runs != nil {
		recent, err := s.runs.ListRecent(ctx, 10)
		if err != nil {
			s.logger.WarnContext(ctx, "list recent refresh runs failed", "error", err)
		} else {
			out.RecentRuns = recent
		}
	}
	return out
}

// rebuild fetches all sources and assembles the enriched table.
func (s *StatsService) rebuild(ctx context.Context) (*Snapshot, error) {
	info, err := s.source.ResolveGameweeks(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve gameweeks: %w", err)
	}

	var (
		teams     []team.Team
		master    []SeasonPlayer
		stats     []player.Player
		transfers []player.Player
	)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		teams, err = s.source.Teams(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		master, err = s.source.MasterPlayers(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		stats, err = s.source.GameweekStats(ctx, info.StatsGW)
		return err
	})
	if info.TransfersGW != info.StatsGW {
		p.Go(func(ctx context.Context) error {
			var err error
			transfers, err = s.source.GameweekStats(ctx, info.TransfersGW)
			return err
		})
	}
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("fetch snapshot sources: %w", err)
	}

	rows := s.assemble(ctx, teams, master, stats, transfers, info)
	return &Snapshot{
		Players:   rows,
		Teams:     team.NewIndex(teams),
		Gameweeks: info,
		BuiltAt:   time.Now().UTC(),
	}, nil
}

// assemble joins reference data onto the stats rows, overlays transfer and
// live-availability columns, and computes the derived metrics.
func (s *StatsService) assemble(
	ctx context.Context,
	teams []team.Team,
	master []SeasonPlayer,
	stats []player.Player,
	transfers []player.Player,
	info GameweekInfo,
) player.Table {
	idx := team.NewIndex(teams)
	masterByID := make(map[int]SeasonPlayer, len(master))
	for _, m := range master {
		masterByID[m.ID] = m
	}

	rows := make(player.Table, 0, len(stats))
	for _, row := range stats {
		if m, ok := masterByID[row.ID]; ok {
			row.TeamCode = m.TeamCode
			if pos, err := player.ParsePosition(m.Position); err == nil {
				row.Position = pos
			}
			if row.WebName == "" {
				row.WebName = m.WebName
			}
		}
		row.TeamName = idx.ShortNameFor(row.TeamCode)
		row.ChanceOfPlayingNextRound = 100
		row.ChanceOfPlayingThisRound = 100
		rows = append(rows, row)
	}

	if len(transfers) > 0 {
		overlayTransfers(rows, transfers)
	}
	s.overlayLiveStatus(ctx, rows)

	player.ComputeDerived(rows, info.StatsGW)
	return rows
}

// overlayTransfers copies the transfer-market columns from the newest
// gameweek file onto the stats rows, keeping existing values for players
// missing from it.
func overlayTransfers(rows player.Table, transfers []player.Player) {
	byID := make(map[int]player.Player, len(transfers))
	for _, t := range transfers {
		byID[t.ID] = t
	}

	for i := range rows {
		t, ok := byID[rows[i].ID]
		if !ok {
			continue
		}
		rows[i].TransfersIn = t.TransfersIn
		rows[i].TransfersOut = t.TransfersOut
		rows[i].TransfersInEvent = t.TransfersInEvent
		rows[i].TransfersOutEvent = t.TransfersOutEvent
		rows[i].SelectedByPercent = t.SelectedByPercent
		if t.NowCost > 0 {
			rows[i].NowCost = t.NowCost
		}
	}
}

// overlayLiveStatus merges availability from the live API. The overlay is
// best effort: rows keep their defaults when the API is down.
func (s *StatsService) overlayLiveStatus(ctx context.Context, rows player.Table) {
	if s.live == nil {
		return
	}

	statuses, err := s.live.LiveStatuses(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "live status overlay skipped", "error", err)
		return
	}

	byID := make(map[int]LiveStatus, len(statuses))
	for _, st := range statuses {
		byID[st.PlayerID] = st
	}
	for i := range rows {
		st, ok := byID[rows[i].ID]
		if !ok {
			continue
		}
		if st.Status != "" {
			rows[i].Status = st.Status
		}
		rows[i].News = st.News
		rows[i].ChanceOfPlayingNextRound = st.ChanceNextRound
		rows[i].ChanceOfPlayingThisRound = st.ChanceThisRound
	}
}

func (s *StatsService) recordRun(ctx context.Context, run refreshrun.Run) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Record(ctx, run); err != nil {
		s.logger.WarnContext(ctx, "record refresh run failed", "error", err)
	}
}

func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}
