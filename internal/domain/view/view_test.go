package view

import (
	"testing"

	"github.com/riskibarqy/fpl-insights/internal/domain/player"
)

func sampleRows() player.Table {
	return player.Table{
		{ID: 1, WebName: "Starter", Minutes: 900, TotalPoints: 60, SelectedByPercent: 40, ExpectedGoalInvolvements: 4.0, ChanceOfPlayingNextRound: 100},
		{ID: 2, WebName: "Differential", Minutes: 700, TotalPoints: 45, SelectedByPercent: 6.5, ExpectedGoalInvolvements: 5.5, ChanceOfPlayingNextRound: 100},
		{ID: 3, WebName: "Benchwarmer", Minutes: 45, TotalPoints: 4, SelectedByPercent: 1.0, ExpectedGoalInvolvements: 0.2, ChanceOfPlayingNextRound: 100},
		{ID: 4, WebName: "Doubtful", Minutes: 800, TotalPoints: 50, SelectedByPercent: 20, ExpectedGoalInvolvements: 3.0, ChanceOfPlayingNextRound: 50},
	}
}

func TestLookup_KnownAndUnknown(t *testing.T) {
	cfg, err := Lookup("overview_table")
	if err != nil {
		t.Fatalf("overview_table must exist: %v", err)
	}
	if cfg.SortField != "total_points" || cfg.SortAscending {
		t.Fatalf("overview sorts by total_points desc, got %+v", cfg)
	}

	if _, err := Lookup("nope"); err == nil {
		t.Fatal("unknown view must error")
	}
}

func TestNames_StableAndComplete(t *testing.T) {
	names := Names()
	if len(names) != 8 {
		t.Fatalf("expected 8 registered views, got %d: %v", len(names), names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names must be sorted: %v", names)
		}
	}
}

func TestConfig_Apply_MinutesFloor(t *testing.T) {
	cfg, _ := Lookup("overview_table")
	out := cfg.Apply(sampleRows())

	for _, p := range out {
		if p.Minutes < 90 {
			t.Fatalf("row %q below minutes floor survived", p.WebName)
		}
	}
	if out[0].WebName != "Starter" {
		t.Fatalf("expected highest scorer first, got %q", out[0].WebName)
	}
}

func TestConfig_Apply_DifferentialsRange(t *testing.T) {
	cfg, _ := Lookup("differentials")
	out := cfg.Apply(sampleRows())

	if len(out) != 1 || out[0].WebName != "Differential" {
		t.Fatalf("only low-ownership regulars qualify, got %v", out)
	}
}

func TestConfig_Apply_TransferSearchAvailability(t *testing.T) {
	cfg, _ := Lookup("transfer_search")
	out := cfg.Apply(sampleRows())

	for _, p := range out {
		if p.ChanceOfPlayingNextRound < 75 {
			t.Fatalf("doubtful player %q survived availability filter", p.WebName)
		}
		if p.Minutes < 180 {
			t.Fatalf("player %q below minutes floor survived", p.WebName)
		}
	}
}

func TestConfig_Apply_MyTeamAscending(t *testing.T) {
	cfg, _ := Lookup("my_team_detailed")
	rows := player.Table{
		{ID: 1, WebName: "Bench", MyTeamPosition: 13},
		{ID: 2, WebName: "Keeper", MyTeamPosition: 1},
		{ID: 3, WebName: "Mid", MyTeamPosition: 7},
	}
	out := cfg.Apply(rows)

	want := []string{"Keeper", "Mid", "Bench"}
	for i, name := range want {
		if out[i].WebName != name {
			t.Fatalf("slot order wrong at %d: got %q want %q", i, out[i].WebName, name)
		}
	}
}

func TestFormatNumeric(t *testing.T) {
	cases := []struct {
		field string
		v     float64
		want  string
	}{
		{"now_cost", 12.5, "£12.5m"},
		{"selected_by_percent", 33.333, "33.3%"},
		{"total_points", 1234, "1,234"},
		{"expected_goal_involvements", 1.234, "1.23"},
		{"minutes_pct", 87.6, "88%"},
		{"value_score", 0.5, "0.50"},
		{"chance_of_playing_next_round", 75, "75%"},
	}
	for _, tc := range cases {
		if got := FormatNumeric(tc.field, tc.v); got != tc.want {
			t.Fatalf("FormatNumeric(%s, %v) = %q, want %q", tc.field, tc.v, got, tc.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label("expected_goal_involvements"); got != "xGI" {
		t.Fatalf("got %q", got)
	}
	if got := Label("mystery_column"); got != "mystery_column" {
		t.Fatalf("unlabelled columns fall back to their name, got %q", got)
	}
}
