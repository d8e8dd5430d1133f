package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veldkamp-software/passfoto/internal/api"
	"github.com/veldkamp-software/passfoto/internal/check"
	"github.com/veldkamp-software/passfoto/internal/config"
	"github.com/veldkamp-software/passfoto/internal/database"
	"github.com/veldkamp-software/passfoto/internal/face"
	"github.com/veldkamp-software/passfoto/internal/pipeline"
	"github.com/veldkamp-software/passfoto/internal/repository"
	"github.com/veldkamp-software/passfoto/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Passfoto API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("provider", cfg.LandmarkProvider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database pools: database/sql for migrations and health, pgxpool for
	// the repositories.
	db, err := database.NewPool(database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	migrator, err := database.NewMigrator(db, "passfoto")
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	// Landmark provider
	provider, err := face.NewLandmarkProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create landmark provider: %w", err)
	}
	defer func() { _ = provider.Close() }()

	// Check set and validation pipeline
	checks, err := check.Defaults(cfg.Checks)
	if err != nil {
		return fmt.Errorf("failed to build check set: %w", err)
	}

	pipelineService := pipeline.New(provider, checks, logger)
	pipelineService.AddSink(pipeline.NewSlogSink(logger))

	// Photo storage and repository
	store, err := storage.NewFileStore(cfg.StorageDir)
	if err != nil {
		return fmt.Errorf("failed to create photo store: %w", err)
	}
	photoRepo := repository.NewPhotoRepository(pool)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Pipeline:  pipelineService,
		PhotoRepo: photoRepo,
		Store:     store,
		Pool:      pool,
		DB:        db,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}
