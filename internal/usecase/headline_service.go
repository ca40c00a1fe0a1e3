package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fpl-insights/internal/platform/cache"
	"github.com/riskibarqy/fpl-insights/internal/platform/logging"
)

// HeadlineService serves the cosmetic overview headline, cached per
// gameweek so the generator is not hit on every page load.
type HeadlineService struct {
	generator HeadlineGenerator
	store     *cache.Store
	logger    *logging.Logger
}

func NewHeadlineService(generator HeadlineGenerator, store *cache.Store, logger *logging.Logger) (*HeadlineService, error) {
	if generator == nil {
		return nil, fmt.Errorf("headline generator is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &HeadlineService{generator: generator, store: store, logger: logger}, nil
}

// Headline returns a one-liner for the gameweek. Generation never fails;
// the generator itself degrades to fixed fallback lines.
func (s *HeadlineService) Headline(ctx context.Context, gameweek int) string {
	ctx, span := startUsecaseSpan(ctx, "HeadlineService.Headline")
	defer span.End()

	if s.store == nil {
		return s.generator.Generate(ctx, gameweek)
	}

	key := fmt.Sprintf("headline_gw%d", gameweek)
	value, err := s.store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.generator.Generate(ctx, gameweek), nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "headline cache load failed", "error", err)
		return s.generator.Generate(ctx, gameweek)
	}

	text, _ := value.(string)
	return text
}
