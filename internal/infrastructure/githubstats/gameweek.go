package githubstats

import (
	"context"
	"net/http"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/fpl-insights/internal/usecase"
)

const maxGameweek = 38

// ResolveGameweeks detects the newest published gameweek and derives the
// stats/transfers split from it: transfer columns come from the newest
// gameweek while the stats columns come from the previous, complete one.
func (c *Client) ResolveGameweeks(ctx context.Context) (usecase.GameweekInfo, error) {
	latest, err := c.LatestGameweek(ctx)
	if err != nil {
		return usecase.GameweekInfo{}, err
	}

	statsGW := latest - 1
	if statsGW < 1 {
		statsGW = 1
	}
	return usecase.GameweekInfo{
		Latest:      latest,
		StatsGW:     statsGW,
		TransfersGW: latest,
	}, nil
}

// LatestGameweek finds the newest gameweek with a published stats file.
// It probes outward from a calendar estimate first and falls back to a
// concurrent full scan; an empty dataset reports gameweek 1.
func (c *Client) LatestGameweek(ctx context.Context) (int, error) {
	estimate := c.estimateGameweek()

	candidates := make([]int, 0, 1+2*c.probeSpan)
	candidates = append(candidates, estimate)
	for offset := 1; offset <= c.probeSpan; offset++ {
		candidates = append(candidates, estimate+offset, estimate-offset)
	}

	best := 0
	for _, gw := range candidates {
		if gw < 1 || gw > maxGameweek {
			continue
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if c.gameweekPublished(ctx, gw) && gw > best {
			best = gw
		}
	}
	if best > 0 {
		return best, nil
	}

	c.logger.WarnContext(ctx, "estimate probe found no gameweek, scanning full season", "estimate", estimate)
	if best = c.scanAllGameweeks(ctx); best > 0 {
		return best, nil
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	return 1, nil
}

// scanAllGameweeks probes every gameweek with a bounded worker pool and
// returns the highest published one, or 0.
func (c *Client) scanAllGameweeks(ctx context.Context) int {
	pool, err := ants.NewPool(c.probeWorkers)
	if err != nil {
		c.logger.WarnContext(ctx, "gameweek scan pool unavailable, probing serially", "error", err)
		for gw := maxGameweek; gw >= 1; gw-- {
			if c.gameweekPublished(ctx, gw) {
				return gw
			}
		}
		return 0
	}
	defer pool.Release()

	var (
		mu   sync.Mutex
		best int
		wg   sync.WaitGroup
	)
	for gw := maxGameweek; gw >= 1; gw-- {
		gw := gw
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if !c.gameweekPublished(ctx, gw) {
				return
			}
			mu.Lock()
			if gw > best {
				best = gw
			}
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
		}
	}
	wg.Wait()

	return best
}

// gameweekPublished reports whether a gameweek's stats file exists and is
// plausibly a real export rather than an error page.
func (c *Client) gameweekPublished(ctx context.Context, gw int) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.gameweekStatsURL(gw), nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()

	return resp.StatusCode == http.StatusOK && resp.ContentLength > minValidCSVBytes
}

// estimateGameweek derives a starting point from the season calendar: one
// gameweek per week since kickoff, clamped to the season range.
func (c *Client) estimateGameweek() int {
	elapsed := c.now().UTC().Sub(c.seasonStart)
	weeks := int(elapsed.Hours() / (24 * 7))
	estimate := weeks + 1
	if estimate < 1 {
		estimate = 1
	}
	if estimate > maxGameweek {
		estimate = maxGameweek
	}
	return estimate
}

// Season reports the configured season label, e.g. "2025-2026".
func (c *Client) Season() string {
	return c.season
}
