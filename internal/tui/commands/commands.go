// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/hourly/internal/reconcile"
	"github.com/javiermolinar/hourly/internal/schedule"
)

// Loader refreshes the persisted state.
type Loader interface {
	Reload(ctx context.Context) error
}

// Applier dispatches a prepared plan.
type Applier interface {
	Apply(ctx context.Context, plan reconcile.Plan) (schedule.Result, error)
}

// LoadedMsg is sent when a reload finishes.
type LoadedMsg struct {
	Err error
}

// AppliedMsg is sent when a commit finishes, successfully or not.
type AppliedMsg struct {
	Result schedule.Result
	Err    error
}

// StatusMsg shows a temporary status line.
type StatusMsg struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// Load reloads slots and appointments.
func Load(l Loader) tea.Cmd {
	return func() tea.Msg {
		return LoadedMsg{Err: l.Reload(context.Background())}
	}
}

// Apply runs the plan against the backend.
func Apply(a Applier, plan reconcile.Plan) tea.Cmd {
	return func() tea.Msg {
		res, err := a.Apply(context.Background(), plan)
		return AppliedMsg{Result: res, Err: err}
	}
}

// Status shows msg now.
func Status(msg string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Msg: msg}
	}
}

// ClearStatusAfter clears the status line after d.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
