package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fpl-insights/internal/domain/player"
	"github.com/riskibarqy/fpl-insights/internal/domain/view"
	"github.com/riskibarqy/fpl-insights/internal/platform/cache"
	"github.com/riskibarqy/fpl-insights/internal/platform/logging"
)

// MyTeamView is a manager's squad annotated with snapshot statistics.
type MyTeamView struct {
	Profile  ManagerProfile `json:"profile"`
	Finance  SquadFinance   `json:"finance"`
	Gameweek int            `json:"gameweek"`
	Players  player.Table   `json:"players"`
}

// TeamService builds personal-team views: live squad picks joined onto
// the shared snapshot. Views are cached per entry until the next refresh.
type TeamService struct {
	snapshots SnapshotProvider
	manager   ManagerSource
	views     *cache.Store
	logger    *logging.Logger
}

func NewTeamService(snapshots SnapshotProvider, manager ManagerSource, views *cache.Store, logger *logging.Logger) (*TeamService, error) {
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot provider is required")
	}
	if manager == nil {
		return nil, fmt.Errorf("manager source is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamService{
		snapshots: snapshots,
		manager:   manager,
		views:     views,
		logger:    logger,
	}, nil
}

// MyTeam returns the annotated squad for an FPL entry id.
func (s *TeamService) MyTeam(ctx context.Context, entryID int) (MyTeamView, error) {
	ctx, span := startUsecaseSpan(ctx, "TeamService.MyTeam")
	defer span.End()

	if entryID <= 0 {
		return MyTeamView{}, fmt.Errorf("%w: entry id must be positive", ErrInvalidInput)
	}

	if s.views == nil {
		return s.build(ctx, entryID)
	}

	key := fmt.Sprintf("%s%d", teamViewCachePrefix, entryID)
	value, err := s.views.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		built, err := s.build(ctx, entryID)
		if err != nil {
			return nil, err
		}
		return built, nil
	})
	if err != nil {
		return MyTeamView{}, err
	}

	out, ok := value.(MyTeamView)
	if !ok {
		return MyTeamView{}, fmt.Errorf("unexpected team view cache entry type %T", value)
	}
	return out, nil
}

func (s *TeamService) build(ctx context.Context, entryID int) (MyTeamView, error) {
	squad, err := s.manager.ManagerSquad(ctx, entryID)
	if err != nil {
		return MyTeamView{}, fmt.Errorf("fetch squad for entry %d: %w", entryID, err)
	}

	snap := s.snapshots.Snapshot(ctx)
	rows := make(player.Table, 0, len(squad.Picks))
	for _, pick := range squad.Picks {
		row, ok := snap.Players.FindByID(pick.PlayerID)
		if !ok {
			// Picks can be missing from the stats table, e.g. players
			// without minutes in the stats gameweek. Keep the slot visible.
			s.logger.DebugContext(ctx, "squad pick missing from snapshot",
				"entry_id", entryID, "player_id", pick.PlayerID)
			row = player.Player{ID: pick.PlayerID, WebName: "Unknown", TeamName: "Unknown"}
		}

		row.InMyTeam = true
		row.MyTeamPosition = pick.Position
		row.IsCaptain = pick.IsCaptain
		row.IsViceCaptain = pick.IsViceCaptain
		row.OnBench = pick.OnBench
		rows = append(rows, row)
	}

	cfg, err := view.Lookup("my_team_detailed")
	if err != nil {
		return MyTeamView{}, fmt.Errorf("my team view config: %w", err)
	}

	return MyTeamView{
		Profile:  squad.Profile,
		Finance:  squad.Finance,
		Gameweek: squad.Gameweek,
		Players:  cfg.Apply(rows),
	}, nil
}
