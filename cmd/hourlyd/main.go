// Command hourlyd serves the slot and appointment REST API for development.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/javiermolinar/hourly/internal/config"
	"github.com/javiermolinar/hourly/internal/db"
	"github.com/javiermolinar/hourly/internal/db/postgres"
	"github.com/javiermolinar/hourly/internal/logging"
	"github.com/javiermolinar/hourly/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Env, "")
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Log.Env == logging.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	return server.Run(ctx, cfg.Server.Addr, server.NewRouter(repo, logger), logger)
}

func openRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (server.Repository, func(), error) {
	switch cfg.Server.Driver {
	case config.DriverPostgres:
		repo, err := postgres.Open(ctx, cfg.Server.DSN, logger.Named("postgres"))
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres: %w", err)
		}
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close()
			return nil, nil, fmt.Errorf("migrating postgres: %w", err)
		}
		logger.Info("storage ready", zap.String("driver", config.DriverPostgres))
		return repo, func() { _ = repo.Close() }, nil
	default:
		path := cfg.Storage.DBPath
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating data directory: %w", err)
		}
		repo, err := db.New(path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		logger.Info("storage ready", zap.String("driver", config.DriverSQLite), zap.String("path", path))
		return repo, func() { _ = repo.Close() }, nil
	}
}
