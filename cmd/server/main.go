package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cssbattle/championship/internal/config"
	"github.com/cssbattle/championship/internal/core"
	"github.com/cssbattle/championship/internal/kv"
	"github.com/cssbattle/championship/internal/logging"
	"github.com/cssbattle/championship/internal/metrics"
	"github.com/cssbattle/championship/internal/storage"
	"github.com/cssbattle/championship/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()
	storeOpts := storage.Options{CreateMissingGroups: cfg.Import.CreateMissingGroups}

	var (
		store       core.PlayerStore
		healthCheck func(context.Context) error
	)
	if cfg.Database.HasDatabase() {
		pool, err := storage.OpenPool(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := storage.NewPostgres(pool, storeOpts)
		if cfg.Database.AutoMigrate {
			if err := pg.Migrate(ctx); err != nil {
				slog.Error("failed to migrate database", "error", err)
				os.Exit(1)
			}
			slog.Info("database schema ready")
		}
		store = pg
		healthCheck = pg.Ping
	} else {
		slog.Warn("DATABASE_URL not set, players are kept in memory and lost on restart")
		store = storage.NewMemory(storeOpts)
	}

	m := metrics.NewManager(
		metrics.WithNamespace(cfg.Metrics.Namespace),
		metrics.WithDurationBuckets(cfg.Metrics.DurationBuckets),
	)
	limiter := core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)
	m.TrackActiveImports(limiter.Active)

	service := core.NewService(store,
		core.WithLimiter(limiter),
		core.WithMetrics(m),
		core.WithMaxFileSize(cfg.Import.MaxFileSize),
		core.WithSaveTimeout(cfg.Import.SaveTimeout),
	)

	server := web.NewServer(service, cfg,
		web.WithPreferences(kv.New(cfg.Preferences.Backend)),
		web.WithMetrics(m),
		web.WithHealthCheck(healthCheck),
	)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if active, _ := service.ActiveImports(); active > 0 {
			slog.Info("waiting for imports to complete", "active", active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
