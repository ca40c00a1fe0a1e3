package view

import (
	"fmt"
	"sort"

	"github.com/riskibarqy/fpl-insights/internal/domain/player"
)

// Filter constrains one numeric column. A plain filter keeps rows with
// value >= Min; a ranged filter keeps Min <= value <= Max.
type Filter struct {
	Field  string
	Min    float64
	Max    float64
	Ranged bool
}

func (f Filter) keep(p player.Player) bool {
	v, ok := p.Numeric(f.Field)
	if !ok {
		return true
	}
	if f.Ranged {
		return v >= f.Min && v <= f.Max
	}
	return v >= f.Min
}

// Config is a named analysis view: the columns to expose, the ordering and
// the row filters applied before presentation.
type Config struct {
	Name          string
	Title         string
	Columns       []string
	SortField     string
	SortAscending bool
	Filters       []Filter
}

// Apply runs the view's filters and ordering over a table.
func (c Config) Apply(rows player.Table) player.Table {
	out := rows
	for _, f := range c.Filters {
		out = out.Filter(f.keep)
	}
	return out.SortBy(c.SortField, c.SortAscending)
}

var registry = map[string]Config{
	"overview_table": {
		Name:  "overview_table",
		Title: "Player Overview",
		Columns: []string{
			"web_name", "team_name", "position", "now_cost",
			"selected_by_percent", "total_points", "form",
			"expected_goal_involvements", "points_per_million",
		},
		SortField: "total_points",
		Filters:   []Filter{{Field: "minutes", Min: 90}},
	},
	"position_overview": {
		Name:  "position_overview",
		Title: "Position Overview",
		Columns: []string{
			"web_name", "team_name", "position", "now_cost",
			"selected_by_percent", "total_points", "form",
			"expected_goal_involvements", "clean_sheets",
			"points_per_million",
		},
		SortField: "total_points",
		Filters:   []Filter{{Field: "minutes", Min: 90}},
	},
	"goalkeeper_analysis": {
		Name:  "goalkeeper_analysis",
		Title: "Goalkeeper Analysis",
		Columns: []string{
			"web_name", "team_name", "now_cost", "selected_by_percent",
			"total_points", "saves_per_90", "clean_sheets",
			"save_value_per_million", "points_per_million",
		},
		SortField: "save_value_per_million",
		Filters:   []Filter{{Field: "minutes", Min: 90}},
	},
	"outfield_analysis": {
		Name:  "outfield_analysis",
		Title: "Outfield Analysis",
		Columns: []string{
			"web_name", "team_name", "position", "now_cost",
			"total_points", "form", "expected_goals", "expected_assists",
			"expected_goal_involvements", "points_per_million",
		},
		SortField: "expected_goal_involvements",
		Filters:   []Filter{{Field: "minutes", Min: 90}},
	},
	"my_team_detailed": {
		Name:  "my_team_detailed",
		Title: "My Team",
		Columns: []string{
			"web_name", "team_name", "position", "now_cost",
			"total_points", "form", "minutes_pct", "ict_index",
			"chance_of_playing_next_round", "news",
			"my_team_position", "is_captain", "is_vice_captain",
		},
		SortField:     "my_team_position",
		SortAscending: true,
	},
	"transfer_search": {
		Name:  "transfer_search",
		Title: "Transfer Targets",
		Columns: []string{
			"web_name", "team_name", "position", "now_cost",
			"selected_by_percent", "total_points", "form",
			"expected_goal_involvements", "points_per_million",
			"minutes_pct", "value_score",
		},
		SortField: "value_score",
		Filters: []Filter{
			{Field: "minutes", Min: 180},
			{Field: "chance_of_playing_next_round", Min: 75},
		},
	},
	"differentials": {
		Name:  "differentials",
		Title: "Differentials",
		Columns: []string{
			"web_name", "team_name", "position", "now_cost",
			"selected_by_percent", "total_points", "form",
			"expected_goal_involvements", "points_per_million",
		},
		SortField: "expected_goal_involvements",
		Filters: []Filter{
			{Field: "selected_by_percent", Min: 0, Max: 10, Ranged: true},
			{Field: "minutes", Min: 180},
		},
	},
	"defensive_contribution": {
		Name:  "defensive_contribution",
		Title: "Defensive Contribution",
		Columns: []string{
			"web_name", "team_name", "position", "now_cost",
			"selected_by_percent", "total_points",
			"defensive_contribution", "defensive_contribution_per_90",
			"clean_sheets", "points_per_million",
		},
		SortField: "defensive_contribution",
		Filters:   []Filter{{Field: "minutes", Min: 180}},
	},
}

// Lookup returns the named view configuration.
func Lookup(name string) (Config, error) {
	cfg, ok := registry[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown view %q", name)
	}
	return cfg, nil
}

// Names lists the registered views in stable order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
