package fplapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/fpl-insights/internal/platform/cache"
	"github.com/riskibarqy/fpl-insights/internal/platform/logging"
	"github.com/riskibarqy/fpl-insights/internal/platform/resilience"
	"github.com/riskibarqy/fpl-insights/internal/usecase"
)

const (
	defaultBaseURL      = "https://fantasy.premierleague.com/api"
	defaultBootstrapTTL = 5 * time.Minute

	bootstrapCacheKey = "fpl_bootstrap"

	maxResponseBytes = 24 << 20
)

var errFPLTransient = crerr.New("fpl api transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	BootstrapTTL   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the official FPL API. The bootstrap payload is large and
// changes slowly, so it is cached for a short TTL.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	bootstrap      *cache.Store
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
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	ttl := cfg.BootstrapTTL
	if ttl <= 0 {
		ttl = defaultBootstrapTTL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		bootstrap:      cache.NewStore(ttl),
	}
}

// Bootstrap returns the cached bootstrap-static payload, fetching it at
// most once per TTL across concurrent callers.
func (c *Client) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	value, err := c.bootstrap.GetOrLoad(ctx, bootstrapCacheKey, func(ctx context.Context) (any, error) {
		var payload Bootstrap
		if err := c.doJSON(ctx, "/bootstrap-static/", &payload); err != nil {
			return nil, fmt.Errorf("fetch bootstrap: %w", err)
		}
		return &payload, nil
	})
	if err != nil {
		return nil, err
	}

	payload, ok := value.(*Bootstrap)
	if !ok {
		return nil, fmt.Errorf("unexpected bootstrap cache entry type %T", value)
	}
	return payload, nil
}

// InvalidateBootstrap drops the cached payload so the next call refetches.
func (c *Client) InvalidateBootstrap(ctx context.Context) {
	c.bootstrap.Delete(ctx, bootstrapCacheKey)
}

// CurrentGameweek resolves the active gameweek from the event schedule:
// the event marked current, else the one before the next event.
func (c *Client) CurrentGameweek(ctx context.Context) (int, error) {
	payload, err := c.Bootstrap(ctx)
	if err != nil {
		return 0, err
	}

	for _, ev := range payload.Events {
		if ev.IsCurrent {
			return ev.ID, nil
		}
	}
	for _, ev := range payload.Events {
		if ev.IsNext {
			if ev.ID > 1 {
				return ev.ID - 1, nil
			}
			return 1, nil
		}
	}
	return 0, fmt.Errorf("%w: no current gameweek in schedule", usecase.ErrNotFound)
}

// Entry fetches a manager's profile.
func (c *Client) Entry(ctx context.Context, entryID int) (*Entry, error) {
	if entryID <= 0 {
		return nil, fmt.Errorf("%w: entry id must be positive", usecase.ErrInvalidInput)
	}

	var payload Entry
	if err := c.doJSON(ctx, fmt.Sprintf("/entry/%d/", entryID), &payload); err != nil {
		return nil, fmt.Errorf("fetch entry %d: %w", entryID, err)
	}
	return &payload, nil
}

// Picks fetches a manager's squad for one gameweek.
func (c *Client) Picks(ctx context.Context, entryID, gw int) (*PicksResponse, error) {
	if entryID <= 0 {
		return nil, fmt.Errorf("%w: entry id must be positive", usecase.ErrInvalidInput)
	}
	if gw < 1 {
		return nil, fmt.Errorf("%w: gameweek must be positive", usecase.ErrInvalidInput)
	}

	var payload PicksResponse
	if err := c.doJSON(ctx, fmt.Sprintf("/entry/%d/event/%d/picks/", entryID, gw), &payload); err != nil {
		return nil, fmt.Errorf("fetch picks entry=%d gw=%d: %w", entryID, gw, err)
	}
	return &payload, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fpl api circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: fantasy api is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	raw, err := c.executeGet(ctx, c.baseURL+path)
	if c.circuitEnabled {
		if err != nil && crerr.Is(err, errFPLTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode fantasy api payload: %w", err)
	}
	return nil
}

func (c *Client) executeGet(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errFPLTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()

			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFPLTransient, readErr)
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("%w: fantasy api path %s", usecase.ErrNotFound, fullURL)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: fantasy api status=%d", errFPLTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("fantasy api status=%d url=%s", resp.StatusCode, fullURL)
			}
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
		lastErr = fmt.Errorf("fantasy api request failed")
	}
	c.logger.WarnContext(ctx, "fpl api request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
