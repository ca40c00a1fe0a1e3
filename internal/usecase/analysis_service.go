package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fpl-insights/internal/domain/player"
	"github.com/riskibarqy/fpl-insights/internal/domain/view"
	"github.com/riskibarqy/fpl-insights/internal/platform/logging"
)

const (
	overviewGoalkeepers = 5
	overviewOutfielders = 8
	positionTopCount    = 15
	differentialCount   = 5
	searchResultCount   = 20
)

// SnapshotProvider serves the current enriched table.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) *Snapshot
}

// AnalysisService answers the read queries over a snapshot: overview
// boards, per-position tables, differentials, search and named views.
type AnalysisService struct {
	snapshots SnapshotProvider
	logger    *logging.Logger
}

func NewAnalysisService(snapshots SnapshotProvider, logger *logging.Logger) (*AnalysisService, error) {
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot provider is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AnalysisService{snapshots: snapshots, logger: logger}, nil
}

// PositionGroup is one position's slice of a board.
type PositionGroup struct {
	Position     player.Position `json:"position"`
	PositionName string          `json:"position_name"`
	Players      player.Table    `json:"players"`
}

// Overview builds the home board: the top goalkeepers by total points and
// the top outfielders per position by expected goal involvements.
func (s *AnalysisService) Overview(ctx context.Context) ([]PositionGroup, GameweekInfo) {
	ctx, span := startUsecaseSpan(ctx, "AnalysisService.Overview")
	defer span.End()

	snap := s.snapshots.Snapshot(ctx)
	groups := make([]PositionGroup, 0, len(player.AllPositions))
	for _, pos := range player.AllPositions {
		rows := snap.Players.ByPosition(pos)
		if pos == player.PositionGoalkeeper {
			rows = rows.SortBy("total_points", false).Top(overviewGoalkeepers)
		} else {
			rows = rows.SortBy("expected_goal_involvements", false).Top(overviewOutfielders)
		}
		groups = append(groups, PositionGroup{
			Position:     pos,
			PositionName: pos.Name(),
			Players:      rows,
		})
	}
	return groups, snap.Gameweeks
}

// Position returns the top players for one position. Goalkeepers rank by
// total points, outfielders by expected goal involvements.
func (s *AnalysisService) Position(ctx context.Context, raw string) (PositionGroup, error) {
	ctx, span := startUsecaseSpan(ctx, "AnalysisService.Position")
	defer span.End()

	pos, err := player.ParsePosition(raw)
	if err != nil {
		return PositionGroup{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	snap := s.snapshots.Snapshot(ctx)
	rows := snap.Players.ByPosition(pos)
	if pos == player.PositionGoalkeeper {
		rows = rows.SortBy("total_points", false)
	} else {
		rows = rows.SortBy("expected_goal_involvements", false)
	}

	return PositionGroup{
		Position:     pos,
		PositionName: pos.Name(),
		Players:      rows.Top(positionTopCount),
	}, nil
}

// Differentials surfaces low-ownership picks per position. Goalkeepers
// qualify on points; outfielders need meaningful expected involvement,
// with a lower bar for defenders.
func (s *AnalysisService) Differentials(ctx context.Context) []PositionGroup {
	ctx, span := startUsecaseSpan(ctx, "AnalysisService.Differentials")
	defer span.End()

	snap := s.snapshots.Snapshot(ctx)
	groups := make([]PositionGroup, 0, len(player.AllPositions))
	for _, pos := range player.AllPositions {
		rows := snap.Players.ByPosition(pos)

		if pos == player.PositionGoalkeeper {
			rows = rows.Filter(func(p player.Player) bool {
				return p.SelectedByPercent < 5 && p.TotalPoints > 5
			}).SortBy("total_points", false)
		} else {
			minXGI := 0.5
			if pos == player.PositionDefender {
				minXGI = 0.3
			}
			rows = rows.Filter(func(p player.Player) bool {
				return p.SelectedByPercent < 10 && p.ExpectedGoalInvolvements > minXGI
			}).SortBy("expected_goal_involvements", false)
		}

		groups = append(groups, PositionGroup{
			Position:     pos,
			PositionName: pos.Name(),
			Players:      rows.Top(differentialCount),
		})
	}
	return groups
}

// Search finds players by web name, ranked by total points.
func (s *AnalysisService) Search(ctx context.Context, query string) (player.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "AnalysisService.Search")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrInvalidInput)
	}

	snap := s.snapshots.Snapshot(ctx)
	return snap.Players.Search(query).
		SortBy("total_points", false).
		Top(searchResultCount), nil
}

// View applies a registered view configuration to the snapshot.
func (s *AnalysisService) View(ctx context.Context, name string) (view.Config, player.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "AnalysisService.View")
	defer span.End()

	cfg, err := view.Lookup(name)
	if err != nil {
		return view.Config{}, nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	snap := s.snapshots.Snapshot(ctx)
	return cfg, cfg.Apply(snap.Players), nil
}
