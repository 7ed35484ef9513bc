package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/cinelog-io/cinelog-engine/pkg/config"
	"github.com/cinelog-io/cinelog-engine/pkg/database"
	"github.com/cinelog-io/cinelog-engine/pkg/handlers"
	"github.com/cinelog-io/cinelog-engine/pkg/letterboxd"
	"github.com/cinelog-io/cinelog-engine/pkg/repositories"
	"github.com/cinelog-io/cinelog-engine/pkg/services"
	"github.com/cinelog-io/cinelog-engine/pkg/tmdb"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.String("sync_username", cfg.Letterboxd.Username),
		zap.Bool("enrichment_configured", cfg.TMDB.IsConfigured()),
		zap.Bool("scheduler_enabled", cfg.Scheduler.Enabled))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	accountRepo := repositories.NewAccountRepository(db)
	filmRepo := repositories.NewFilmRepository(db)
	eventRepo := repositories.NewWatchEventRepository(db)
	watchlistRepo := repositories.NewWatchlistRepository(db)
	enrichmentRepo := repositories.NewEnrichmentRepository(db)
	runRepo := repositories.NewRunRepository(db)
	locker := repositories.NewAdvisoryLocker(db)

	// Source clients
	lbClient := letterboxd.NewClient(nil, cfg.Letterboxd.MinDelay, logger)
	tmdbClient := tmdb.NewClient(cfg.TMDB.APIKey, nil, cfg.TMDB.MinDelay, logger)

	// Services
	upsertService := services.NewUpsertService(accountRepo, filmRepo, eventRepo, watchlistRepo, enrichmentRepo, logger)
	syncService := services.NewSyncService(locker, lbClient, upsertService, runRepo, filmRepo, logger)
	enrichmentService := services.NewEnrichmentService(locker, tmdbClient, upsertService, filmRepo, enrichmentRepo, runRepo, logger)
	statsService := services.NewStatsService(accountRepo, filmRepo, eventRepo, watchlistRepo, runRepo)

	scheduler := services.NewScheduler(cfg.Scheduler, cfg.Letterboxd, syncService, enrichmentService, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// HTTP surface
	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewSyncHandler(syncService, logger).RegisterRoutes(mux)
	handlers.NewEnrichmentHandler(enrichmentService, logger).RegisterRoutes(mux)
	handlers.NewStatsHandler(statsService, logger).RegisterRoutes(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("Starting cinelog-engine",
			zap.String("addr", addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}

// newLogger builds the process logger for the given environment.
func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// runMigrations applies pending schema migrations over a database/sql
// connection, then closes it. The pgx pool is opened separately.
func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	return database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger)
}
