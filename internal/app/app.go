package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fpl-insights/internal/config"
	"github.com/riskibarqy/fpl-insights/internal/domain/refreshrun"
	"github.com/riskibarqy/fpl-insights/internal/infrastructure/fplapi"
	"github.com/riskibarqy/fpl-insights/internal/infrastructure/githubstats"
	"github.com/riskibarqy/fpl-insights/internal/infrastructure/headline"
	"github.com/riskibarqy/fpl-insights/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fpl-insights/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fpl-insights/internal/interfaces/httpapi"
	"github.com/riskibarqy/fpl-insights/internal/platform/cache"
	"github.com/riskibarqy/fpl-insights/internal/platform/logging"
	"github.com/riskibarqy/fpl-insights/internal/scheduler"
	"github.com/riskibarqy/fpl-insights/internal/usecase"
)

// App bundles the wired HTTP server with the background pieces main has
// to start and stop around it.
type App struct {
	Server    *http.Server
	Stats     *usecase.StatsService
	Scheduler *scheduler.Scheduler

	db *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	statsClient := githubstats.NewClient(githubstats.ClientConfig{
		BaseURL:        cfg.StatsBaseURL,
		Season:         cfg.StatsSeason,
		SeasonStart:    cfg.StatsSeasonStart,
		Timeout:        cfg.StatsTimeout,
		MaxRetries:     cfg.StatsMaxRetries,
		ProbeSpan:      cfg.StatsProbeSpan,
		ProbeWorkers:   cfg.StatsProbeWorkers,
		Logger:         logger,
		CircuitBreaker: cfg.StatsCircuit,
	})

	fplClient := fplapi.NewClient(fplapi.ClientConfig{
		BaseURL:        cfg.FPLBaseURL,
		Timeout:        cfg.FPLTimeout,
		MaxRetries:     cfg.FPLMaxRetries,
		BootstrapTTL:   cfg.FPLBootstrapTTL,
		Logger:         logger,
		CircuitBreaker: cfg.FPLCircuit,
	})

	headlineClient := headline.NewClient(headline.ClientConfig{
		Endpoint:   cfg.HeadlineEndpoint,
		APIKey:     cfg.HeadlineAPIKey,
		Timeout:    cfg.HeadlineTimeout,
		MaxRetries: cfg.HeadlineMaxRetries,
		Logger:     logger,
	})

	var (
		runs refreshrun.Repository
		db   *sqlx.DB
	)
	if cfg.DBURL != "" {
		pool, err := postgres.Connect(ctx, normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary))
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		db = pool
		runs = postgres.NewRefreshRunRepository(pool)
		logger.InfoContext(ctx, "refresh run audit backed by postgres", "database", dbNameFromURL(cfg.DBURL))
	} else {
		runs = memory.NewRefreshRunRepository(0)
		logger.InfoContext(ctx, "refresh run audit kept in memory", "reason", "DB_URL not set")
	}

	window := cache.NewWindowStore[*usecase.Snapshot](cfg.RefreshHours)
	views := cache.NewStore(cfg.ViewCacheTTL)

	statsSvc, err := usecase.NewStatsService(usecase.StatsServiceConfig{
		Source: statsClient,
		Live:   fplClient,
		Window: window,
		Views:  views,
		Runs:   runs,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build stats service: %w", err)
	}

	analysisSvc, err := usecase.NewAnalysisService(statsSvc, logger)
	if err != nil {
		return nil, fmt.Errorf("build analysis service: %w", err)
	}

	teamSvc, err := usecase.NewTeamService(statsSvc, fplClient, views, logger)
	if err != nil {
		return nil, fmt.Errorf("build team service: %w", err)
	}

	headlineSvc, err := usecase.NewHeadlineService(headlineClient, views, logger)
	if err != nil {
		return nil, fmt.Errorf("build headline service: %w", err)
	}

	sched, err := scheduler.New(statsSvc, cfg.RefreshHours, logger)
	if err != nil {
		return nil, fmt.Errorf("build refresh scheduler: %w", err)
	}

	handler := httpapi.NewHandler(statsSvc, analysisSvc, teamSvc, headlineSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:    server,
		Stats:     statsSvc,
		Scheduler: sched,
		db:        db,
	}, nil
}

// Close releases resources that outlive the HTTP server, currently only
// the postgres pool when one was opened.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
