// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/hourly/internal/slot"
)

// Backend modes.
const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// Server storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	Consultant ConsultantConfig `toml:"consultant"`
	Backend    BackendConfig    `toml:"backend"`
	Schedule   ScheduleConfig   `toml:"schedule"`
	Storage    StorageConfig    `toml:"storage"`
	Server     ServerConfig     `toml:"server"`
	UI         UIConfig         `toml:"ui"`
	Log        LogConfig        `toml:"log"`
}

// ConsultantConfig identifies whose calendar is edited.
type ConsultantConfig struct {
	ID string `toml:"id"`
}

// BackendConfig selects where slots live.
type BackendConfig struct {
	Mode    string `toml:"mode"`     // "remote" or "local"
	BaseURL string `toml:"base_url"` // e.g., "http://localhost:8080"
	Timeout string `toml:"timeout"`  // e.g., "5s"
}

// ScheduleConfig holds the visible hours and the weekly floor.
type ScheduleConfig struct {
	DayStart       string `toml:"day_start"` // first visible hour, e.g., "08:00"
	DayEnd         string `toml:"day_end"`   // end of the last visible hour, e.g., "18:00"
	MinWeeklySlots int    `toml:"min_weekly_slots"`
}

// StorageConfig holds the local database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// ServerConfig holds the development backend settings.
type ServerConfig struct {
	Addr   string `toml:"addr"`
	Driver string `toml:"driver"` // "sqlite" or "postgres"
	DSN    string `toml:"dsn"`    // postgres connection string
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Env  string `toml:"env"`  // "development", "production" or "off"
	File string `toml:"file"` // TUI log file; empty logs to stderr
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			Mode:    BackendLocal,
			BaseURL: "http://localhost:8080",
			Timeout: "5s",
		},
		Schedule: ScheduleConfig{
			DayStart:       "08:00",
			DayEnd:         "18:00",
			MinWeeklySlots: 20,
		},
		Storage: StorageConfig{
			DBPath: defaultDataPath("hourly.db"),
		},
		Server: ServerConfig{
			Addr:   ":8080",
			Driver: DriverSQLite,
		},
		UI: UIConfig{
			Theme: "frappe",
		},
		Log: LogConfig{
			Env:  "development",
			File: defaultDataPath("hourly.log"),
		},
	}
}

// defaultDataPath returns a path under the user data directory.
func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".local", "share", "hourly", name)
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "hourly", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays the file if it exists, loads a .env file
// from the working directory, then applies HOURLY_* overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from the given files into the environment.
// Missing files are skipped and variables already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"HOURLY_CONSULTANT_ID", &cfg.Consultant.ID},
		{"HOURLY_BACKEND", &cfg.Backend.Mode},
		{"HOURLY_BASE_URL", &cfg.Backend.BaseURL},
		{"HOURLY_TIMEOUT", &cfg.Backend.Timeout},
		{"HOURLY_DAY_START", &cfg.Schedule.DayStart},
		{"HOURLY_DAY_END", &cfg.Schedule.DayEnd},
		{"HOURLY_DB_PATH", &cfg.Storage.DBPath},
		{"HOURLY_SERVER_ADDR", &cfg.Server.Addr},
		{"HOURLY_SERVER_DRIVER", &cfg.Server.Driver},
		{"HOURLY_SERVER_DSN", &cfg.Server.DSN},
		{"HOURLY_UI_THEME", &cfg.UI.Theme},
		{"HOURLY_LOG_ENV", &cfg.Log.Env},
		{"HOURLY_LOG_FILE", &cfg.Log.File},
	}
	for _, s := range strs {
		if v := os.Getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	if v := os.Getenv("HOURLY_MIN_WEEKLY_SLOTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HOURLY_MIN_WEEKLY_SLOTS: %w", err)
		}
		cfg.Schedule.MinWeeklySlots = n
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Hours(); err != nil {
		return err
	}
	if c.Schedule.MinWeeklySlots < 0 {
		return errors.New("min_weekly_slots cannot be negative")
	}

	switch c.Backend.Mode {
	case BackendRemote:
		if c.Backend.BaseURL == "" {
			return errors.New("base_url must be set for the remote backend")
		}
	case BackendLocal:
		if c.Storage.DBPath == "" {
			return errors.New("db_path must be set for the local backend")
		}
	default:
		return fmt.Errorf("invalid backend mode: %q", c.Backend.Mode)
	}
	if _, err := c.Backend.TimeoutDuration(); err != nil {
		return err
	}

	switch c.Server.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Server.DSN == "" {
			return errors.New("dsn must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid server driver: %q", c.Server.Driver)
	}

	switch c.Log.Env {
	case "development", "production", "off":
	default:
		return fmt.Errorf("invalid log env: %q", c.Log.Env)
	}
	return nil
}

// Hours returns the visible hours, one per grid row.
func (c *Config) Hours() ([]slot.Hour, error) {
	hours, err := slot.Range(c.Schedule.DayStart, c.Schedule.DayEnd)
	if err != nil {
		return nil, fmt.Errorf("day_start/day_end: %w", err)
	}
	if len(hours) == 0 {
		return nil, errors.New("day_start must be before day_end")
	}
	return hours, nil
}

// TimeoutDuration parses the backend timeout.
func (b BackendConfig) TimeoutDuration() (time.Duration, error) {
	if b.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("timeout must be a positive duration, got %q", b.Timeout)
	}
	return d, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
