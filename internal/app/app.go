package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/tourneyops/scheduler-api/external/alerting"
	"github.com/tourneyops/scheduler-api/internal/config"
	"github.com/tourneyops/scheduler-api/internal/domain/schedule"
	"github.com/tourneyops/scheduler-api/internal/domain/team"
	cacherepo "github.com/tourneyops/scheduler-api/internal/infrastructure/repository/cache"
	"github.com/tourneyops/scheduler-api/internal/infrastructure/repository/memory"
	"github.com/tourneyops/scheduler-api/internal/infrastructure/repository/postgres"
	"github.com/tourneyops/scheduler-api/internal/interfaces/httpapi"
	"github.com/tourneyops/scheduler-api/internal/observability"
	basecache "github.com/tourneyops/scheduler-api/internal/platform/cache"
	idgen "github.com/tourneyops/scheduler-api/internal/platform/id"
	"github.com/tourneyops/scheduler-api/internal/platform/logging"
	"github.com/tourneyops/scheduler-api/internal/platform/resilience"
	"github.com/tourneyops/scheduler-api/internal/usecase"
)

// Application owns the HTTP server and everything it depends on.
// Build it with New, run Server, then call Shutdown on exit.
type Application struct {
	Server *http.Server

	cfg             config.Config
	logger          *logging.Logger
	db              *sqlx.DB
	scheduleService *usecase.ScheduleService
	pprofServer     *http.Server
	shutdownUptrace func(context.Context) error
	stopPyroscope   func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}

	app := &Application{cfg: cfg, logger: logger}

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	app.shutdownUptrace = shutdownUptrace

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		app.closePartial(ctx)
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}
	app.stopPyroscope = stopPyroscope

	pprofServer, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		app.closePartial(ctx)
		return nil, fmt.Errorf("start pprof server: %w", err)
	}
	app.pprofServer = pprofServer

	matchRepo, teamRepo, err := app.buildRepositories(ctx)
	if err != nil {
		app.closePartial(ctx)
		return nil, err
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		matchRepo = cacherepo.NewMatchRepository(matchRepo, store)
		teamRepo = cacherepo.NewTeamRepository(teamRepo, store)
	}

	var alerts usecase.AlertPublisher
	if cfg.AlertWebhookEnabled {
		alerts = alerting.NewWebhookPublisher(alerting.WebhookPublisherConfig{
			URL:     cfg.AlertWebhookURL,
			Token:   cfg.AlertWebhookToken,
			Retries: cfg.AlertWebhookRetries,
			Timeout: cfg.AlertWebhookTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.AlertCircuitEnabled,
				FailureThreshold: cfg.AlertCircuitFailureCount,
				OpenTimeout:      cfg.AlertCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.AlertCircuitHalfOpenMaxReq,
			},
		}, logger)
	}

	scheduleSvc := usecase.NewScheduleService(
		matchRepo,
		teamRepo,
		idgen.NewRandomGenerator("mt"),
		alerts,
		logger,
		cfg.ScheduleConfig(),
	)
	teamSvc := usecase.NewTeamService(teamRepo)
	app.scheduleService = scheduleSvc

	handler := httpapi.NewHandler(scheduleSvc, teamSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if app.Server.Addr == "" {
		app.closePartial(ctx)
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return app, nil
}

func (a *Application) buildRepositories(ctx context.Context) (schedule.Repository, team.Repository, error) {
	switch a.cfg.StorageDriver {
	case config.StoragePostgres:
		return a.buildPostgresRepositories(ctx)
	default:
		var (
			matches []schedule.Match
			teams   []team.Team
		)
		if a.cfg.SeedDemoData {
			matches = memory.SeedMatches()
			teams = memory.SeedTeams()
		}
		return memory.NewMatchRepository(matches), memory.NewTeamRepository(teams), nil
	}
}

func (a *Application) buildPostgresRepositories(ctx context.Context) (schedule.Repository, team.Repository, error) {
	dsn := normalizeDBURL(a.cfg.DBURL, a.cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	a.db = db

	matchRepo := postgres.NewMatchRepository(db)
	teamRepo := postgres.NewTeamRepository(db)

	if a.cfg.SeedDemoData {
		if err := seedPostgres(ctx, matchRepo, teamRepo); err != nil {
			return nil, nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	return matchRepo, teamRepo, nil
}

// seedPostgres upserts the demo fixtures so restarts stay idempotent.
func seedPostgres(ctx context.Context, matchRepo *postgres.MatchRepository, teamRepo *postgres.TeamRepository) error {
	for _, tm := range memory.SeedTeams() {
		if err := teamRepo.Save(ctx, tm); err != nil {
			return err
		}
	}
	for _, match := range memory.SeedMatches() {
		if err := matchRepo.Save(ctx, match); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown drains background work and releases every resource New acquired.
func (a *Application) Shutdown(ctx context.Context) error {
	var firstErr error

	if a.scheduleService != nil {
		a.scheduleService.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close db: %w", err)
		}
	}
	if a.pprofServer != nil {
		if err := observability.StopPprofServer(a.pprofServer, a.logger, 5*time.Second); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop pprof server: %w", err)
		}
	}
	if a.stopPyroscope != nil {
		if err := a.stopPyroscope(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop pyroscope: %w", err)
		}
	}
	if a.shutdownUptrace != nil {
		if err := a.shutdownUptrace(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutdown uptrace: %w", err)
		}
	}

	return firstErr
}

// closePartial tears down whatever New managed to start before failing.
func (a *Application) closePartial(ctx context.Context) {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.pprofServer != nil {
		_ = observability.StopPprofServer(a.pprofServer, a.logger, time.Second)
	}
	if a.stopPyroscope != nil {
		_ = a.stopPyroscope()
	}
	if a.shutdownUptrace != nil {
		_ = a.shutdownUptrace(ctx)
	}
}
