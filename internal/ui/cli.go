// Package ui wires the command line: the calendar TUI and the scripted
// week, apply and export commands.
package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/hourly/internal/config"
	"github.com/javiermolinar/hourly/internal/db"
	"github.com/javiermolinar/hourly/internal/remote"
	"github.com/javiermolinar/hourly/internal/schedule"
	"github.com/javiermolinar/hourly/internal/store"
	"github.com/javiermolinar/hourly/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// ErrNoConsultant is returned when no consultant id is configured.
var ErrNoConsultant = errors.New("no consultant id: set consultant.id, HOURLY_CONSULTANT_ID or --consultant")

// App holds the CLI application state.
type App struct {
	config  *config.Config
	logger  *zap.Logger
	root    *cobra.Command
	out     io.Writer
	now     func() time.Time
	backend store.Backend
	closer  io.Closer

	consultant string
}

// Option configures an App.
type Option func(*App)

// WithBackend uses b instead of opening the configured backend.
func WithBackend(b store.Backend) Option {
	return func(a *App) {
		a.backend = b
	}
}

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		a.out = w
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewApp creates a new CLI application with the given config.
func NewApp(cfg *config.Config, opts ...Option) *App {
	a := &App{
		config: cfg,
		logger: zap.NewNop(),
		out:    os.Stdout,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.root = &cobra.Command{
		Use:   "hourly",
		Short: "Declare weekly consulting availability",
		Long: `Hourly edits a consultant's weekly availability.

Run without arguments to open the calendar. Click or drag over hours to
mark them, then commit to create or remove the matching slots.`,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			session, err := a.session()
			if err != nil {
				return err
			}
			return tui.Run(session, a.config.UI.Theme,
				tui.WithConsultant(a.consultantID()),
				tui.WithLogger(a.logger))
		},
	}
	a.root.SetOut(a.out)
	a.root.SetErr(a.out)

	a.root.PersistentFlags().StringVar(&a.consultant, "consultant", "", "Consultant id (default from config)")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.applyCmd())
	a.root.AddCommand(a.exportCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "hourly %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// SetArgs overrides the command line arguments.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// Close releases the backend if the app opened it.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

func (a *App) consultantID() string {
	if a.consultant != "" {
		return a.consultant
	}
	return a.config.Consultant.ID
}

// openBackend returns the configured backend, opening it on first use.
func (a *App) openBackend() (store.Backend, error) {
	if a.backend != nil {
		return a.backend, nil
	}

	switch a.config.Backend.Mode {
	case config.BackendRemote:
		timeout, err := a.config.Backend.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		hc := remote.DefaultHTTPClient()
		if timeout > 0 {
			hc.Timeout = timeout
		}
		a.backend = remote.NewClient(a.config.Backend.BaseURL,
			remote.WithHTTPClient(hc),
			remote.WithLogger(a.logger.Named("remote")))
	default:
		path := a.config.Storage.DBPath
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		repo, err := db.New(path)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.backend = repo
		a.closer = repo
	}
	a.logger.Debug("backend opened", zap.String("mode", a.config.Backend.Mode))
	return a.backend, nil
}

// session builds an editing session for the selected consultant.
func (a *App) session() (*schedule.Session, error) {
	id := a.consultantID()
	if id == "" {
		return nil, ErrNoConsultant
	}
	hours, err := a.config.Hours()
	if err != nil {
		return nil, err
	}
	backend, err := a.openBackend()
	if err != nil {
		return nil, err
	}
	st := store.New(backend, id, a.logger)
	return schedule.New(st, schedule.Config{
		Hours:          hours,
		MinWeeklySlots: a.config.Schedule.MinWeeklySlots,
		Now:            a.now,
	}, a.logger), nil
}
