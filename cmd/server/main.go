package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/lasfile/internal/config"
	"github.com/JonMunkholm/lasfile/internal/core"
	"github.com/JonMunkholm/lasfile/internal/logging"
	"github.com/JonMunkholm/lasfile/internal/store"
	"github.com/JonMunkholm/lasfile/internal/web"
)

func main() {
	// Overload lets a local .env win over the shell environment.
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
		"driver", cfg.Database.Driver,
		"ingest_max_concurrent", cfg.Ingest.MaxConcurrent,
		"ingest_max_file_size", cfg.Ingest.MaxFileSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	opts, err := core.OptionsFromConfig(cfg.Ingest)
	if err != nil {
		slog.Error("invalid ingest configuration", "error", err)
		os.Exit(1)
	}
	limiter := core.NewIngestLimiter(cfg.Ingest.MaxConcurrent, cfg.Ingest.MaxWaitTime)
	service := core.NewService(st, limiter, opts)

	server := web.NewServer(service, cfg)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for ingests to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("ingests did not complete in time", "error", err)
			} else {
				slog.Info("all ingests completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// openStore connects the configured storage driver.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	db := cfg.Database
	switch db.Driver {
	case config.DriverMemory:
		slog.Warn("using in-memory store, files are lost on restart")
		return store.NewMemory(), nil

	case config.DriverSQLite:
		st, err := store.NewSQLite(db.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("opened sqlite catalog", "path", db.SQLitePath)
		return st, nil

	case config.DriverPostgres:
		st, err := store.NewPostgres(ctx, store.PostgresConfig{
			URL:             db.URL,
			MaxConns:        db.MaxConns,
			MinConns:        db.MinConns,
			MaxConnLifetime: db.MaxConnLifetime,
			MaxConnIdleTime: db.MaxConnIdleTime,
			CopyBatchSize:   cfg.Ingest.CopyBatchSize,
		})
		if err != nil {
			return nil, err
		}
		if u, err := url.Parse(db.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database")
		}
		return st, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", db.Driver)
	}
}
