package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/fixedwidth/internal/config"
	"github.com/JonMunkholm/fixedwidth/internal/logging"
	"github.com/JonMunkholm/fixedwidth/internal/pgload"
	"github.com/JonMunkholm/fixedwidth/internal/service"
	"github.com/JonMunkholm/fixedwidth/internal/web"
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

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"database", cfg.Database.Enabled(),
		"reader_max_concurrent", cfg.Reader.MaxConcurrent,
		"reader_max_file_size", cfg.Reader.MaxFileSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// The database is optional; without it /api/load answers 503
	var db pgload.DB
	if cfg.Database.Enabled() {
		pool, err := pgload.Connect(context.Background(), pgload.PoolConfig{
			URL:             cfg.Database.URL,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		db = pool
		slog.Info("connected to database", "name", pgload.DatabaseName(cfg.Database.URL))
	} else {
		slog.Info("no DATABASE_URL set, loading disabled")
	}

	svc := service.New(service.Config{
		MaxConcurrent: cfg.Reader.MaxConcurrent,
		MaxWait:       cfg.Reader.MaxWaitTime,
		MaxFileSize:   cfg.Reader.MaxFileSize,
		PreviewRows:   cfg.Reader.PreviewRows,
	}, db)

	server := web.NewServer(svc, cfg)

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

		if status := svc.Status(); status.Active > 0 {
			slog.Info("waiting for reads to complete", "active", status.Active)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
