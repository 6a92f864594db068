package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sourcegraph/conc"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/mba-league/mbabot/external/mcping"
	"github.com/mba-league/mbabot/external/mojang"
	"github.com/mba-league/mbabot/internal/config"
	"github.com/mba-league/mbabot/internal/infrastructure/repository/postgres"
	"github.com/mba-league/mbabot/internal/interfaces/discord"
	"github.com/mba-league/mbabot/internal/interfaces/httpapi"
	"github.com/mba-league/mbabot/internal/platform/cache"
	idgen "github.com/mba-league/mbabot/internal/platform/id"
	"github.com/mba-league/mbabot/internal/platform/logging"
	"github.com/mba-league/mbabot/internal/platform/resilience"
	"github.com/mba-league/mbabot/internal/usecase"
)

// Application owns the bot process: the Discord gateway, the HTTP
// bridge, and the background sweep and poll loops.
type Application struct {
	cfg    config.Config
	logger *logging.Logger

	db        *sqlx.DB
	gateway   *discord.Gateway
	bot       *discord.Bot
	httpSrv   *http.Server
	proposals *usecase.ProposalService
	minecraft *usecase.MinecraftService
}

func New(cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	gateway, err := discord.NewGateway(cfg.DiscordToken, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	guildRepo := postgres.NewGuildRepository(db)
	savedRolesRepo := postgres.NewSavedRolesRepository(db)
	teamRepo := postgres.NewTeamRepository(db)
	rosterRepo := postgres.NewRosterRepository(db)
	demandRepo := postgres.NewDemandRepository(db)
	seasonRepo := postgres.NewSeasonRepository(db)
	gameRepo := postgres.NewGameRepository(db)
	statsRepo := postgres.NewStatsRepository(db)
	proposalRepo := postgres.NewProposalRepository(db)
	linkRepo := postgres.NewMinecraftRepository(db)

	var settingsCache *cache.Store
	if cfg.CacheEnabled {
		settingsCache = cache.NewStore(cfg.CacheTTL)
	}

	idGen := idgen.NewRandomGenerator()

	guildSvc := usecase.NewGuildService(guildRepo, savedRolesRepo, settingsCache, logger)
	teamSvc := usecase.NewTeamService(teamRepo, idGen, logger)
	rosterSvc := usecase.NewRosterService(rosterRepo, demandRepo, teamRepo, seasonRepo, guildSvc, gateway, gateway, logger)
	proposalSvc := usecase.NewProposalService(proposalRepo, teamRepo, rosterSvc, guildSvc, gateway, idGen, logger)
	statsSvc := usecase.NewStatsService(
		seasonRepo,
		gameRepo,
		statsRepo,
		teamSvc,
		usecase.NewRefereeGate(guildSvc, gateway),
		idGen,
		logger,
	)

	mojangClient := mojang.NewClient(mojang.ClientConfig{
		BaseURL:    cfg.MojangBaseURL,
		Timeout:    cfg.MojangTimeout,
		MaxRetries: cfg.MojangMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.MojangCircuitEnabled,
			FailureThreshold: cfg.MojangCircuitFailures,
			OpenTimeout:      cfg.MojangCircuitOpenFor,
			HalfOpenMaxReq:   cfg.MojangCircuitHalfOpen,
		},
	})
	pingClient := mcping.NewClient(mcping.ClientConfig{
		Timeout: cfg.PingTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.PingCircuitEnabled,
			FailureThreshold: cfg.PingCircuitFailures,
			OpenTimeout:      cfg.PingCircuitOpenFor,
			HalfOpenMaxReq:   cfg.PingCircuitHalfOpen,
		},
	})

	minecraftSvc := usecase.NewMinecraftService(linkRepo, guildRepo, guildSvc, mojangClient, pingClient, gateway, logger)

	// A freshly created status message has to survive restarts.
	gateway.OnStatusMessageCreated(func(ctx context.Context, guildID, messageID string) error {
		settings, err := guildSvc.Settings(ctx, guildID)
		if err != nil {
			return err
		}
		settings.MinecraftMessageID = messageID
		return guildSvc.UpdateSettings(ctx, settings)
	})

	bot := discord.NewBot(gateway, rosterSvc, proposalSvc, teamSvc, statsSvc, guildSvc, minecraftSvc, logger)

	handler := httpapi.NewHandler(rosterSvc, proposalSvc, teamSvc, statsSvc, logger)
	router := httpapi.NewRouter(handler, cfg.BridgeAPIKey, gateway.Ready, logger, cfg.CORSAllowedOrigins)

	httpSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if httpSrv.Addr == "" {
		_ = db.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &Application{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		gateway:   gateway,
		bot:       bot,
		httpSrv:   httpSrv,
		proposals: proposalSvc,
		minecraft: minecraftSvc,
	}, nil
}

// Run blocks until ctx is cancelled or a component fails to start.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg conc.WaitGroup

	wg.Go(func() {
		defer cancel()
		if err := a.bot.Run(ctx); err != nil {
			a.logger.Error("discord bot stopped", "error", err)
		}
	})

	wg.Go(func() {
		a.logger.Info("http bridge starting", "addr", a.cfg.HTTPAddr)
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http bridge failed", "error", err)
			cancel()
		}
	})

	wg.Go(func() {
		a.runSweepLoop(ctx)
	})

	wg.Go(func() {
		a.runMinecraftPollLoop(ctx)
	})

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http bridge shutdown failed", "error", err)
	}

	wg.Wait()

	if err := a.db.Close(); err != nil {
		a.logger.Error("close database failed", "error", err)
	}

	return nil
}

// runSweepLoop expires pending proposals on a fixed interval.
func (a *Application) runSweepLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := a.proposals.SweepExpired(ctx)
			if err != nil {
				a.logger.WarnContext(ctx, "proposal sweep failed", "error", err)
				continue
			}
			if expired > 0 {
				a.logger.InfoContext(ctx, "proposals expired", "count", expired)
			}
		}
	}
}

// runMinecraftPollLoop refreshes every guild's server status message.
func (a *Application) runMinecraftPollLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.MinecraftPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !a.gateway.Ready() {
				continue
			}
			if err := a.minecraft.RefreshAll(ctx); err != nil {
				a.logger.WarnContext(ctx, "minecraft refresh failed", "error", err)
			}
		}
	}
}

func openDatabase(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
