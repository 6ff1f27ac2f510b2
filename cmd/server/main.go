package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/api"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/logging"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/scheduler"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/upstream"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
	})
	logging.SetGlobalLogger(logger)

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			logger.Fatal().Err(err).Str("dir", dir).Msg("Failed to create database directory")
		}
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	schemaVersion, err := database.Migrate(context.Background(), db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}
	logger.Info().
		Str("path", cfg.Database.Path).
		Int64("schema_version", schemaVersion).
		Str("app_version", version.Version).
		Msg("Connected to database")

	// Create repositories
	snapshotRepo, err := repository.NewSnapshotRepository(db, cfg.Snapshot.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create snapshot repository")
	}
	refreshLogRepo := repository.NewRefreshLogRepository(db)

	// Create services
	upstreamClient := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	snapshotService := service.NewSnapshotService(
		upstreamClient,
		snapshotRepo,
		refreshLogRepo,
	)
	dashboardService := service.NewDashboardService(snapshotService)
	systemService := service.NewSystemService(db, snapshotService)

	// Warm the snapshot so the first request does not wait on upstream.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Upstream.Timeout)
		defer cancel()
		if _, err := snapshotService.Current(ctx); err != nil {
			logger.Warn().Err(err).Msg("No snapshot available at startup")
		}
	}()

	sched := scheduler.New(logger, cfg.Upstream.Timeout)
	if cfg.Scheduler.NAVRefresh != "" {
		if err := sched.AddJob(cfg.Scheduler.NAVRefresh, scheduler.NewNAVRefreshJob(snapshotService)); err != nil {
			logger.Fatal().Err(err).Str("schedule", cfg.Scheduler.NAVRefresh).Msg("Invalid NAV refresh schedule")
		}
	}
	sched.Start()

	// Create router
	router := api.NewRouter(systemService, snapshotService, dashboardService, cfg, logger)

	// Refresh and upload requests block on upstream, so the write timeout follows its timeout.
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Upstream.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	sched.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	logger.Info().Msg("Server exited")
}
