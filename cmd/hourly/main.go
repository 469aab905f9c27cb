package main

import (
	"fmt"
	"os"

	"github.com/javiermolinar/hourly/internal/config"
	"github.com/javiermolinar/hourly/internal/logging"
	"github.com/javiermolinar/hourly/internal/ui"
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

	// The TUI owns the terminal, so logs go to the configured file.
	logger, err := logging.New(cfg.Log.Env, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	app := ui.NewApp(cfg, ui.WithLogger(logger))
	defer func() { _ = app.Close() }()
	return app.Execute()
}
