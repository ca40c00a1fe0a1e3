package fplapi

import (
	"strconv"
	"strings"
)

// Bootstrap is the subset of the bootstrap-static payload the service
// consumes: gameweek schedule, live player status and club names.
type Bootstrap struct {
	Events   []Event         `json:"events"`
	Elements []Element       `json:"elements"`
	Teams    []BootstrapTeam `json:"teams"`
}

type Event struct {
	ID        int  `json:"id"`
	IsCurrent bool `json:"is_current"`
	IsNext    bool `json:"is_next"`
	Finished  bool `json:"finished"`
}

// Element is a player's live record. Prices arrive in tenths of a million,
// several numeric columns arrive as strings.
type Element struct {
	ID                       int     `json:"id"`
	WebName                  string  `json:"web_name"`
	FirstName                string  `json:"first_name"`
	SecondName               string  `json:"second_name"`
	ElementType              int     `json:"element_type"`
	Team                     int     `json:"team"`
	TeamCode                 int     `json:"team_code"`
	NowCost                  int     `json:"now_cost"`
	SelectedByPercent        string  `json:"selected_by_percent"`
	Form                     string  `json:"form"`
	Status                   string  `json:"status"`
	News                     string  `json:"news"`
	ChanceOfPlayingNextRound *int    `json:"chance_of_playing_next_round"`
	ChanceOfPlayingThisRound *int    `json:"chance_of_playing_this_round"`
	Minutes                  int     `json:"minutes"`
	TotalPoints              int     `json:"total_points"`
	EventPoints              int     `json:"event_points"`
	TransfersInEvent         int     `json:"transfers_in_event"`
	TransfersOutEvent        int     `json:"transfers_out_event"`
}

type BootstrapTeam struct {
	ID        int    `json:"id"`
	Code      int    `json:"code"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// Entry is a manager's profile.
type Entry struct {
	ID                   int    `json:"id"`
	Name                 string `json:"name"`
	PlayerFirstName      string `json:"player_first_name"`
	PlayerLastName       string `json:"player_last_name"`
	SummaryOverallRank   int    `json:"summary_overall_rank"`
	SummaryOverallPoints int    `json:"summary_overall_points"`
}

// ManagerName joins the manager's first and last name.
func (e Entry) ManagerName() string {
	return strings.TrimSpace(e.PlayerFirstName + " " + e.PlayerLastName)
}

// PicksResponse is a manager's squad for one gameweek.
type PicksResponse struct {
	EntryHistory EntryHistory `json:"entry_history"`
	Picks        []Pick       `json:"picks"`
}

// EntryHistory carries squad finances in tenths of a million.
type EntryHistory struct {
	Points             int `json:"points"`
	TotalPoints        int `json:"total_points"`
	Value              int `json:"value"`
	Bank               int `json:"bank"`
	EventTransfers     int `json:"event_transfers"`
	EventTransfersCost int `json:"event_transfers_cost"`
}

type Pick struct {
	Element       int  `json:"element"`
	Position      int  `json:"position"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
}

// OnBench reports whether the pick sits outside the starting eleven.
func (p Pick) OnBench() bool {
	return p.Position > 11
}

// Chance normalizes a nullable availability percentage: null means fully
// available.
func Chance(v *int) float64 {
	if v == nil {
		return 100
	}
	return float64(*v)
}

// ParseDecimal reads the API's stringified decimal columns, returning 0 on
// blanks and junk.
func ParseDecimal(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}
