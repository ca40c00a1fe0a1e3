package headline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/fpl-insights/internal/platform/logging"
)

// Fallbacks rotate when no generator is configured or it keeps failing.
// Headlines are cosmetic and must never block data paths.
var Fallbacks = []string{
	"Form is temporary, class is permanent.",
	"The stats never lie, but they do tease.",
	"Another gameweek, another template-breaking punt.",
	"Trust the process, bench the doubts.",
}

var errHeadlineTransient = crerr.New("headline generator transient failure")

type ClientConfig struct {
	HTTPClient *http.Client
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	Logger     *logging.Logger
}

// Client calls a generative-text endpoint for a one-line headline.
// A client with no endpoint is valid and always serves fallbacks.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	maxRetries int
	logger     *logging.Logger
	fallbackAt atomic.Int64
}

type generateRequest struct {
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type generateResponse struct {
	Text string `json:"text"`
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
		httpClient.Timeout = 10 * time.Second
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   strings.TrimSpace(cfg.Endpoint),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
	}
}

// Enabled reports whether a generator endpoint is configured.
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

// Generate returns a headline for the given gameweek. Any failure degrades
// to a fallback line instead of an error.
func (c *Client) Generate(ctx context.Context, gameweek int) string {
	if !c.Enabled() {
		return c.nextFallback()
	}

	text, err := c.generate(ctx, gameweek)
	if err != nil {
		c.logger.WarnContext(ctx, "headline generation failed, using fallback", "error", err)
		return c.nextFallback()
	}
	return text
}

func (c *Client) generate(ctx context.Context, gameweek int) (string, error) {
	body, err := sonic.Marshal(generateRequest{
		Prompt:    fmt.Sprintf("One short, witty headline about Fantasy Premier League gameweek %d.", gameweek),
		MaxTokens: 60,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("content-type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errHeadlineTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			_ = resp.Body.Close()

			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response: %v", errHeadlineTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				var payload generateResponse
				if err := sonic.Unmarshal(raw, &payload); err != nil {
					return "", fmt.Errorf("decode generator payload: %w", err)
				}
				text := strings.TrimSpace(payload.Text)
				if text == "" {
					return "", fmt.Errorf("generator returned empty text")
				}
				return text, nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				lastErr = fmt.Errorf("%w: generator status=%d", errHeadlineTransient, resp.StatusCode)
			default:
				return "", fmt.Errorf("generator status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(1<<attempt) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("generator request failed")
	}
	return "", lastErr
}

func (c *Client) nextFallback() string {
	n := c.fallbackAt.Add(1) - 1
	return Fallbacks[int(n)%len(Fallbacks)]
}
