package usecase

import (
	"context"

	"github.com/riskibarqy/fpl-insights/internal/domain/player"
	"github.com/riskibarqy/fpl-insights/internal/domain/team"
)

// GameweekInfo names the published files feeding one snapshot: stats come
// from the last complete gameweek, transfer columns from the newest one.
type GameweekInfo struct {
	Latest      int `json:"latest"`
	StatsGW     int `json:"stats_gw"`
	TransfersGW int `json:"transfers_gw"`
}

// SeasonPlayer is a row of the season master list, the only source of a
// player's team code and position.
type SeasonPlayer struct {
	ID         int
	Code       int
	WebName    string
	FirstName  string
	SecondName string
	TeamCode   int
	Position   string
}

// StatsSource provides the published CSV statistics exports.
type StatsSource interface {
	ResolveGameweeks(ctx context.Context) (GameweekInfo, error)
	MasterPlayers(ctx context.Context) ([]SeasonPlayer, error)
	Teams(ctx context.Context) ([]team.Team, error)
	GameweekStats(ctx context.Context, gw int) ([]player.Player, error)
}

// LiveStatus is a player's availability from the live fantasy API.
type LiveStatus struct {
	PlayerID        int
	Status          string
	News            string
	ChanceNextRound float64
	ChanceThisRound float64
	SelectedBy      float64
}

// LiveDataSource provides live availability and the active gameweek.
type LiveDataSource interface {
	LiveStatuses(ctx context.Context) ([]LiveStatus, error)
	CurrentGameweek(ctx context.Context) (int, error)
}

// ManagerProfile identifies a fantasy manager and their season totals.
type ManagerProfile struct {
	EntryID       int    `json:"entry_id"`
	TeamName      string `json:"team_name"`
	ManagerName   string `json:"manager_name"`
	OverallPoints int    `json:"overall_points"`
	OverallRank   int    `json:"overall_rank"`
}

// SquadFinance carries a squad's money figures, already in millions.
type SquadFinance struct {
	GameweekPoints int     `json:"gameweek_points"`
	TotalPoints    int     `json:"total_points"`
	TeamValue      float64 `json:"team_value"`
	Bank           float64 `json:"bank"`
	TransfersMade  int     `json:"transfers_made"`
	TransferCost   int     `json:"transfer_cost"`
}

// SquadPick is one slot of a manager's squad for a gameweek.
type SquadPick struct {
	PlayerID      int
	Position      int
	Multiplier    int
	IsCaptain     bool
	IsViceCaptain bool
	OnBench       bool
}

// ManagerSquad is a manager's full squad state for one gameweek.
type ManagerSquad struct {
	Profile  ManagerProfile
	Finance  SquadFinance
	Gameweek int
	Picks    []SquadPick
}

// ManagerSource provides personal-team data from the live fantasy API.
type ManagerSource interface {
	ManagerSquad(ctx context.Context, entryID int) (ManagerSquad, error)
	CurrentGameweek(ctx context.Context) (int, error)
}

// HeadlineGenerator produces the cosmetic one-liner for the overview.
type HeadlineGenerator interface {
	Generate(ctx context.Context, gameweek int) string
}
