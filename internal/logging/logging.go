// Package logging builds the zap loggers used by the CLI, the TUI and the server.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environments understood by New.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvOff         = "off"
)

// New builds a logger for env. Output goes to path, or stderr when path is
// empty. The "off" environment returns a no-op logger.
func New(env, path string) (*zap.Logger, error) {
	if env == EnvOff {
		return zap.NewNop(), nil
	}

	var config zap.Config
	if env == EnvProduction {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		// Colors only make sense on a terminal.
		if path == "" {
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}

	out := "stderr"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		out = path
	}
	config.OutputPaths = []string{out}
	config.ErrorOutputPaths = []string{out}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// Must is New that panics on error. Meant for main packages.
func Must(env, path string) *zap.Logger {
	logger, err := New(env, path)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return logger
}
