package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/riskibarqy/fpl-insights/internal/domain/refreshrun"
	"github.com/riskibarqy/fpl-insights/internal/platform/logging"
	"github.com/riskibarqy/fpl-insights/internal/usecase"
)

// refreshTimeout bounds one scheduled rebuild: dataset download, live API
// overlay and assembly included.
const refreshTimeout = 5 * time.Minute

// Scheduler triggers snapshot refreshes at the configured UTC hours. A
// failed run only logs; readers keep the previous snapshot via the
// service's own fallbacks.
type Scheduler struct {
	cron   *cron.Cron
	stats  *usecase.StatsService
	logger *logging.Logger
}

func New(stats *usecase.StatsService, updateHours []int, logger *logging.Logger) (*Scheduler, error) {
	if stats == nil {
		return nil, fmt.Errorf("stats service is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	spec, err := cronSpec(updateHours)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		stats:  stats,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(spec, s.runRefresh); err != nil {
		return nil, fmt.Errorf("register refresh schedule %q: %w", spec, err)
	}

	logger.Info("refresh schedule registered", "spec", spec)
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for an in-flight refresh to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if _, err := s.stats.Refresh(ctx, refreshrun.TriggerScheduled); err != nil {
		s.logger.ErrorContext(ctx, "scheduled refresh failed", "error", err)
	}
}

// cronSpec builds a daily UTC spec from update hours, e.g. [5 17] becomes
// "0 5,17 * * *". Out-of-range hours are rejected rather than dropped so a
// misconfigured schedule fails loudly at startup.
func cronSpec(updateHours []int) (string, error) {
	if len(updateHours) == 0 {
		return "", fmt.Errorf("at least one update hour is required")
	}

	hours := make([]int, 0, len(updateHours))
	seen := make(map[int]struct{}, len(updateHours))
	for _, h := range updateHours {
		if h < 0 || h > 23 {
			return "", fmt.Errorf("update hour %d is out of range", h)
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		hours = append(hours, h)
	}
	sort.Ints(hours)

	parts := make([]string, 0, len(hours))
	for _, h := range hours {
		parts = append(parts, strconv.Itoa(h))
	}
	return fmt.Sprintf("0 %s * * *", strings.Join(parts, ",")), nil
}
