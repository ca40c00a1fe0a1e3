package githubstats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/gocarina/gocsv"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/fpl-insights/internal/domain/player"
	"github.com/riskibarqy/fpl-insights/internal/domain/team"
	"github.com/riskibarqy/fpl-insights/internal/platform/logging"
	"github.com/riskibarqy/fpl-insights/internal/platform/resilience"
	"github.com/riskibarqy/fpl-insights/internal/usecase"
)

const (
	defaultBaseURL     = "https://raw.githubusercontent.com/olbauday/FPL-Elo-Insights/main/data"
	defaultSeason      = "2025-2026"
	defaultSeasonStart = "2025-08-16"

	// A real gameweek stats file is always well past this size; tiny
	// responses are GitHub error pages or placeholder files.
	minValidCSVBytes = 1000

	maxCSVBytes = 16 << 20
)

var errGitHubTransient = crerr.New("github stats transient failure")

// masterPlayerRow is one row of the season-level players.csv, carrying the
// identity fields the per-gameweek stats files omit.
type masterPlayerRow struct {
	PlayerID   int    `csv:"player_id"`
	PlayerCode int    `csv:"player_code"`
	FirstName  string `csv:"first_name"`
	SecondName string `csv:"second_name"`
	WebName    string `csv:"web_name"`
	TeamCode   int    `csv:"team_code"`
	Position   string `csv:"position"`
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Season         string
	SeasonStart    time.Time
	Timeout        time.Duration
	MaxRetries     int
	ProbeSpan      int
	ProbeWorkers   int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches the community-maintained FPL statistics CSV exports.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	season         string
	seasonStart    time.Time
	maxRetries     int
	probeSpan      int
	probeWorkers   int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.Group[[]byte]
	now            func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	season := strings.TrimSpace(cfg.Season)
	if season == "" {
		season = defaultSeason
	}
	seasonStart := cfg.SeasonStart
	if seasonStart.IsZero() {
		seasonStart, _ = time.Parse("2006-01-02", defaultSeasonStart)
	}
	probeSpan := cfg.ProbeSpan
	if probeSpan <= 0 {
		probeSpan = 10
	}
	probeWorkers := cfg.ProbeWorkers
	if probeWorkers <= 0 {
		probeWorkers = 8
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		season:         season,
		seasonStart:    seasonStart.UTC(),
		maxRetries:     max(cfg.MaxRetries, 0),
		probeSpan:      probeSpan,
		probeWorkers:   probeWorkers,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		now:            time.Now,
	}
}

func (c *Client) seasonURL(file string) string {
	return c.baseURL + "/" + c.season + "/" + file
}

func (c *Client) gameweekStatsURL(gw int) string {
	return fmt.Sprintf("%s/%s/By%%20Gameweek/GW%d/playerstats.csv", c.baseURL, c.season, gw)
}

// MasterPlayers fetches the season player list used to resolve team codes
// and positions for the per-gameweek stats rows.
func (c *Client) MasterPlayers(ctx context.Context) ([]usecase.SeasonPlayer, error) {
	raw, err := c.download(ctx, c.seasonURL("players.csv"))
	if err != nil {
		return nil, fmt.Errorf("fetch season players: %w", err)
	}

	var rows []masterPlayerRow
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode players.csv: %w", err)
	}

	out := make([]usecase.SeasonPlayer, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.SeasonPlayer{
			ID:         row.PlayerID,
			Code:       row.PlayerCode,
			WebName:    row.WebName,
			FirstName:  row.FirstName,
			SecondName: row.SecondName,
			TeamCode:   row.TeamCode,
			Position:   row.Position,
		})
	}
	return out, nil
}

// Teams fetches the season club reference data, including Elo ratings.
func (c *Client) Teams(ctx context.Context) ([]team.Team, error) {
	raw, err := c.download(ctx, c.seasonURL("teams.csv"))
	if err != nil {
		return nil, fmt.Errorf("fetch season teams: %w", err)
	}

	var rows []team.Team
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode teams.csv: %w", err)
	}
	return rows, nil
}

// GameweekStats fetches the cumulative player statistics published for a
// single gameweek.
func (c *Client) GameweekStats(ctx context.Context, gw int) ([]player.Player, error) {
	if gw < 1 || gw > maxGameweek {
		return nil, fmt.Errorf("%w: gameweek %d out of range", usecase.ErrInvalidInput, gw)
	}

	raw, err := c.download(ctx, c.gameweekStatsURL(gw))
	if err != nil {
		return nil, fmt.Errorf("fetch gameweek %d stats: %w", gw, err)
	}

	var rows []player.Player
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode gameweek %d playerstats.csv: %w", gw, err)
	}
	return rows, nil
}

func (c *Client) download(ctx context.Context, fullURL string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "github stats circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: statistics source is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	raw, err, _ := c.flight.Do(fullURL, func() ([]byte, error) {
		body, reqErr := c.executeGet(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errGitHubTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return body, reqErr
	})
	return raw, err
}

func (c *Client) executeGet(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "text/csv")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errGitHubTransient, err)
		} else {
			buf := bytebufferpool.Get()
			_, readErr := io.Copy(buf, io.LimitReader(resp.Body, maxCSVBytes))
			_ = resp.Body.Close()

			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errGitHubTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				out := make([]byte, buf.Len())
				copy(out, buf.Bytes())
				bytebufferpool.Put(buf)
				return out, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: source status=%d", errGitHubTransient, resp.StatusCode)
			default:
				bytebufferpool.Put(buf)
				return nil, fmt.Errorf("source status=%d url=%s", resp.StatusCode, fullURL)
			}
			bytebufferpool.Put(buf)
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("source request failed")
	}
	c.logger.WarnContext(ctx, "github stats request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
