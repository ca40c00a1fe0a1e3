package player

import (
	"fmt"
	"strings"
)

// Position represents the four FPL position categories.
type Position string

const (
	PositionGoalkeeper Position = "GKP"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = []Position{
	PositionGoalkeeper,
	PositionDefender,
	PositionMidfielder,
	PositionForward,
}

var positionNames = map[Position]string{
	PositionGoalkeeper: "Goalkeeper",
	PositionDefender:   "Defender",
	PositionMidfielder: "Midfielder",
	PositionForward:    "Forward",
}

// ParsePosition accepts short codes and full names in any case.
func ParsePosition(raw string) (Position, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "GKP", "GK", "GOALKEEPER":
		return PositionGoalkeeper, nil
	case "DEF", "DEFENDER":
		return PositionDefender, nil
	case "MID", "MIDFIELDER":
		return PositionMidfielder, nil
	case "FWD", "FORWARD":
		return PositionForward, nil
	default:
		return "", fmt.Errorf("unknown position %q", raw)
	}
}

// PositionFromElementType maps the FPL API element_type (1..4).
func PositionFromElementType(elementType int) (Position, bool) {
	switch elementType {
	case 1:
		return PositionGoalkeeper, true
	case 2:
		return PositionDefender, true
	case 3:
		return PositionMidfielder, true
	case 4:
		return PositionForward, true
	default:
		return "", false
	}
}

func (p Position) Name() string {
	if name, ok := positionNames[p]; ok {
		return name
	}
	return string(p)
}

// Player is one row of the enriched analysis table: per-gameweek CSV stats
// joined with team reference data, overlaid with live FPL API status, plus
// the derived metrics computed on each rebuild.
type Player struct {
	ID         int    `csv:"id" json:"id"`
	WebName    string `csv:"web_name" json:"web_name"`
	FirstName  string `csv:"first_name" json:"first_name,omitempty"`
	SecondName string `csv:"second_name" json:"second_name,omitempty"`
	Status     string `csv:"status" json:"status"`
	News       string `csv:"news" json:"news"`

	// Joined from the season master list and teams reference data.
	TeamCode int      `csv:"-" json:"team_code"`
	TeamName string   `csv:"-" json:"team_name"`
	Position Position `csv:"-" json:"position"`

	NowCost           float64 `csv:"now_cost" json:"now_cost"`
	CostChangeEvent   float64 `csv:"cost_change_event" json:"cost_change_event"`
	SelectedByPercent float64 `csv:"selected_by_percent" json:"selected_by_percent"`
	TransfersIn       int     `csv:"transfers_in" json:"transfers_in"`
	TransfersOut      int     `csv:"transfers_out" json:"transfers_out"`
	TransfersInEvent  int     `csv:"transfers_in_event" json:"transfers_in_event"`
	TransfersOutEvent int     `csv:"transfers_out_event" json:"transfers_out_event"`

	TotalPoints   int     `csv:"total_points" json:"total_points"`
	EventPoints   int     `csv:"event_points" json:"event_points"`
	PointsPerGame float64 `csv:"points_per_game" json:"points_per_game"`
	Form          float64 `csv:"form" json:"form"`
	Bonus         int     `csv:"bonus" json:"bonus"`
	BPS           int     `csv:"bps" json:"bps"`

	Minutes int `csv:"minutes" json:"minutes"`
	Starts  int `csv:"starts" json:"starts"`

	GoalsScored int `csv:"goals_scored" json:"goals_scored"`
	Assists     int `csv:"assists" json:"assists"`

	ExpectedGoals            float64 `csv:"expected_goals" json:"expected_goals"`
	ExpectedAssists          float64 `csv:"expected_assists" json:"expected_assists"`
	ExpectedGoalInvolvements float64 `csv:"expected_goal_involvements" json:"expected_goal_involvements"`
	ExpectedGoalsConceded    float64 `csv:"expected_goals_conceded" json:"expected_goals_conceded"`

	ICTIndex   float64 `csv:"ict_index" json:"ict_index"`
	Influence  float64 `csv:"influence" json:"influence"`
	Creativity float64 `csv:"creativity" json:"creativity"`
	Threat     float64 `csv:"threat" json:"threat"`

	CleanSheets         int     `csv:"clean_sheets" json:"clean_sheets"`
	GoalsConceded       int     `csv:"goals_conceded" json:"goals_conceded"`
	Saves               int     `csv:"saves" json:"saves"`
	SavesPer90          float64 `csv:"saves_per_90" json:"saves_per_90"`
	SaveValuePerMillion float64 `csv:"save_value_per_million" json:"save_value_per_million"`
	PenaltiesSaved      int     `csv:"penalties_saved" json:"penalties_saved"`

	DefensiveContribution      float64 `csv:"defensive_contribution" json:"defensive_contribution"`
	DefensiveContributionPer90 float64 `csv:"defensive_contribution_per_90" json:"defensive_contribution_per_90"`
	Tackles                    int     `csv:"tackles" json:"tackles"`
	Recoveries                 int     `csv:"recoveries" json:"recoveries"`

	YellowCards int `csv:"yellow_cards" json:"yellow_cards"`
	RedCards    int `csv:"red_cards" json:"red_cards"`

	// Live status from the FPL API bootstrap; players absent from the
	// payload keep the defaults (fully available, no news).
	ChanceOfPlayingNextRound float64 `csv:"-" json:"chance_of_playing_next_round"`
	ChanceOfPlayingThisRound float64 `csv:"-" json:"chance_of_playing_this_round"`

	// Derived metrics, recomputed on every snapshot rebuild.
	PointsPerMillion float64 `csv:"-" json:"points_per_million"`
	MinutesPercent   float64 `csv:"-" json:"minutes_pct"`
	ValueScore       float64 `csv:"-" json:"value_score"`

	// Personal-team annotations, set only on my-team enriched copies.
	InMyTeam       bool `csv:"-" json:"is_in_my_team"`
	MyTeamPosition int  `csv:"-" json:"my_team_position,omitempty"`
	IsCaptain      bool `csv:"-" json:"is_captain"`
	IsViceCaptain  bool `csv:"-" json:"is_vice_captain"`
	OnBench        bool `csv:"-" json:"bench_position"`
}

// TransfersBalance is the net transfer movement over the season.
func (p Player) TransfersBalance() int {
	return p.TransfersIn - p.TransfersOut
}

// Numeric resolves a column name to its value for sorting and filtering.
// Unknown columns report false and are skipped by the view engine.
func (p Player) Numeric(field string) (float64, bool) {
	switch field {
	case "id":
		return float64(p.ID), true
	case "now_cost":
		return p.NowCost, true
	case "cost_change_event":
		return p.CostChangeEvent, true
	case "selected_by_percent":
		return p.SelectedByPercent, true
	case "transfers_in":
		return float64(p.TransfersIn), true
	case "transfers_out":
		return float64(p.TransfersOut), true
	case "transfers_balance":
		return float64(p.TransfersBalance()), true
	case "transfers_in_event":
		return float64(p.TransfersInEvent), true
	case "transfers_out_event":
		return float64(p.TransfersOutEvent), true
	case "total_points":
		return float64(p.TotalPoints), true
	case "event_points":
		return float64(p.EventPoints), true
	case "points_per_game":
		return p.PointsPerGame, true
	case "form":
		return p.Form, true
	case "bonus":
		return float64(p.Bonus), true
	case "bps":
		return float64(p.BPS), true
	case "minutes":
		return float64(p.Minutes), true
	case "starts":
		return float64(p.Starts), true
	case "goals_scored":
		return float64(p.GoalsScored), true
	case "assists":
		return float64(p.Assists), true
	case "expected_goals":
		return p.ExpectedGoals, true
	case "expected_assists":
		return p.ExpectedAssists, true
	case "expected_goal_involvements":
		return p.ExpectedGoalInvolvements, true
	case "expected_goals_conceded":
		return p.ExpectedGoalsConceded, true
	case "ict_index":
		return p.ICTIndex, true
	case "influence":
		return p.Influence, true
	case "creativity":
		return p.Creativity, true
	case "threat":
		return p.Threat, true
	case "clean_sheets":
		return float64(p.CleanSheets), true
	case "goals_conceded":
		return float64(p.GoalsConceded), true
	case "saves":
		return float64(p.Saves), true
	case "saves_per_90":
		return p.SavesPer90, true
	case "save_value_per_million":
		return p.SaveValuePerMillion, true
	case "penalties_saved":
		return float64(p.PenaltiesSaved), true
	case "defensive_contribution":
		return p.DefensiveContribution, true
	case "defensive_contribution_per_90":
		return p.DefensiveContributionPer90, true
	case "tackles":
		return float64(p.Tackles), true
	case "recoveries":
		return float64(p.Recoveries), true
	case "yellow_cards":
		return float64(p.YellowCards), true
	case "red_cards":
		return float64(p.RedCards), true
	case "chance_of_playing_next_round":
		return p.ChanceOfPlayingNextRound, true
	case "chance_of_playing_this_round":
		return p.ChanceOfPlayingThisRound, true
	case "points_per_million":
		return p.PointsPerMillion, true
	case "minutes_pct":
		return p.MinutesPercent, true
	case "value_score":
		return p.ValueScore, true
	case "my_team_position":
		return float64(p.MyTeamPosition), true
	default:
		return 0, false
	}
}
