package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_Off(t *testing.T) {
	logger, err := New(EnvOff, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger.Core().Enabled(0) {
		t.Error("off logger should not be enabled")
	}
}

func TestNew_FileOutput(t *testing.T) {
	tests := []string{EnvDevelopment, EnvProduction}
	for _, env := range tests {
		t.Run(env, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "logs", "hourly.log")
			logger, err := New(env, path)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			logger.Info("hello from test")
			_ = logger.Sync()

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("reading log: %v", err)
			}
			if !strings.Contains(string(data), "hello from test") {
				t.Errorf("log file = %q, want message", data)
			}
		})
	}
}
