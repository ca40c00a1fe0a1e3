package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/fpl-insights/internal/domain/player"
	"github.com/riskibarqy/fpl-insights/internal/domain/team"
	"github.com/riskibarqy/fpl-insights/internal/platform/cache"
	"github.com/riskibarqy/fpl-insights/internal/platform/logging"
	"github.com/riskibarqy/fpl-insights/internal/usecase"
)

type stubStatsSource struct{}

func (stubStatsSource) ResolveGameweeks(context.Context) (usecase.GameweekInfo, error) {
	return usecase.GameweekInfo{Latest: 5, StatsGW: 4, TransfersGW: 5}, nil
}

func (stubStatsSource) MasterPlayers(context.Context) ([]usecase.SeasonPlayer, error) {
	return []usecase.SeasonPlayer{
		{ID: 1, WebName: "Salah", TeamCode: 14, Position: "Midfielder"},
		{ID: 2, WebName: "Raya", TeamCode: 3, Position: "Goalkeeper"},
		{ID: 3, WebName: "Haaland", TeamCode: 43, Position: "Forward"},
	}, nil
}

func (stubStatsSource) Teams(context.Context) ([]team.Team, error) {
	return []team.Team{
		{Code: 3, Name: "Arsenal", ShortName: "ARS"},
		{Code: 14, Name: "Liverpool", ShortName: "LIV"},
		{Code: 43, Name: "Man City", ShortName: "MCI"},
	}, nil
}

func (stubStatsSource) GameweekStats(_ context.Context, gw int) ([]player.Player, error) {
	if gw == 5 {
		return []player.Player{{ID: 1, NowCost: 13.2, SelectedByPercent: 45}}, nil
	}
	return []player.Player{
		{ID: 1, WebName: "Salah", NowCost: 13.0, TotalPoints: 60, Minutes: 360, ExpectedGoalInvolvements: 4.1},
		{ID: 2, WebName: "Raya", NowCost: 5.6, TotalPoints: 28, Minutes: 360},
		{ID: 3, WebName: "Haaland", NowCost: 14.1, TotalPoints: 55, Minutes: 350, ExpectedGoalInvolvements: 4.8},
	}, nil
}

type stubManager struct{}

func (stubManager) ManagerSquad(_ context.Context, entryID int) (usecase.ManagerSquad, error) {
	return usecase.ManagerSquad{
		Profile:  usecase.ManagerProfile{EntryID: entryID, TeamName: "Klopptimists", ManagerName: "Jo Doe"},
		Finance:  usecase.SquadFinance{TeamValue: 100.3, Bank: 1.2},
		Gameweek: 5,
		Picks: []usecase.SquadPick{
			{PlayerID: 2, Position: 1, Multiplier: 1},
			{PlayerID: 1, Position: 2, Multiplier: 2, IsCaptain: true},
			{PlayerID: 3, Position: 3, Multiplier: 1},
		},
	}, nil
}

func (stubManager) CurrentGameweek(context.Context) (int, error) { return 5, nil }

type stubHeadline struct{}

func (stubHeadline) Generate(_ context.Context, gameweek int) string {
	return "Captaincy calls ahead of the deadline"
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	window := cache.NewWindowStore[*usecase.Snapshot]([]int{5, 17})
	views := cache.NewStore(time.Hour)

	statsService, err := usecase.NewStatsService(usecase.StatsServiceConfig{
		Source: stubStatsSource{},
		Window: window,
		Views:  views,
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("NewStatsService: %v", err)
	}
	analysisService, err := usecase.NewAnalysisService(statsService, logger)
	if err != nil {
		t.Fatalf("NewAnalysisService: %v", err)
	}
	teamService, err := usecase.NewTeamService(statsService, stubManager{}, views, logger)
	if err != nil {
		t.Fatalf("NewTeamService: %v", err)
	}
	headlineService, err := usecase.NewHeadlineService(stubHeadline{}, views, logger)
	if err != nil {
		t.Fatalf("NewHeadlineService: %v", err)
	}

	handler := NewHandler(statsService, analysisService, teamService, headlineService, logger)
	return NewRouter(handler, logger, true, []string{"*"})
}

func doRequest(t *testing.T, router http.Handler, method, path string, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope for %s %s: %v", method, path, err)
	}
	return rec, envelope
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := envelope["data"].(map[string]any)
	if data["status"] != "ok" {
		t.Fatalf("unexpected health payload: %v", envelope)
	}
}

func TestRouter_Overview(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodGet, "/v1/overview", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, envelope)
	}

	data, _ := envelope["data"].(map[string]any)
	if data["headline"] != "Captaincy calls ahead of the deadline" {
		t.Fatalf("headline missing: %v", data["headline"])
	}
	groups, _ := data["groups"].([]any)
	if len(groups) != 4 {
		t.Fatalf("expected 4 position groups, got %d", len(groups))
	}
}

func TestRouter_Position(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodGet, "/v1/positions/MID", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := envelope["data"].(map[string]any)
	if data["position_name"] != "Midfielders" {
		t.Fatalf("unexpected position payload: %v", data)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/v1/positions/sweeper", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown position, got %d", rec.Code)
	}
}

func TestRouter_Search(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodGet, "/v1/players/search?q=salah", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rows, _ := envelope["data"].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected one match, got %v", envelope["data"])
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/v1/players/search", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing query, got %d", rec.Code)
	}
}

func TestRouter_Views(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodGet, "/v1/views", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	names, _ := envelope["data"].([]any)
	if len(names) != 8 {
		t.Fatalf("expected 8 view names, got %d", len(names))
	}

	rec, envelope = doRequest(t, router, http.MethodGet, "/v1/views/differentials", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := envelope["data"].(map[string]any)
	if data["title"] != "Differentials" {
		t.Fatalf("unexpected view payload: %v", data["title"])
	}
	columns, _ := data["columns"].([]any)
	if len(columns) == 0 {
		t.Fatal("expected labelled columns in view payload")
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/v1/views/no_such_view", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown view, got %d", rec.Code)
	}
}

func TestRouter_MyTeam(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodGet, "/v1/my-team/7331", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, envelope)
	}
	data, _ := envelope["data"].(map[string]any)
	profile, _ := data["profile"].(map[string]any)
	if profile["team_name"] != "Klopptimists" {
		t.Fatalf("unexpected profile: %v", profile)
	}
	players, _ := data["players"].([]any)
	if len(players) != 3 {
		t.Fatalf("expected 3 squad rows, got %d", len(players))
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/v1/my-team/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric entry id, got %d", rec.Code)
	}
}

func TestRouter_RefreshAndCacheStatus(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodPost, "/v1/refresh", `{"trigger":"manual"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, envelope)
	}
	data, _ := envelope["data"].(map[string]any)
	if data["player_count"] != float64(3) || data["stats_gw"] != float64(4) {
		t.Fatalf("unexpected refresh payload: %v", data)
	}

	rec, _ = doRequest(t, router, http.MethodPost, "/v1/refresh", `{"trigger":"cron"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown trigger, got %d", rec.Code)
	}

	rec, envelope = doRequest(t, router, http.MethodGet, "/v1/cache-status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ = envelope["data"].(map[string]any)
	if data["status"] != "active" {
		t.Fatalf("expected active cache after refresh, got %v", data["status"])
	}
}
