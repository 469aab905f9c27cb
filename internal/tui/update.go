package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/hourly/internal/tui/commands"
	"github.com/javiermolinar/hourly/internal/tui/view"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		scroll := m.layout.Scroll
		m.layout = view.NewGridLayout(msg.Width, msg.Height, m.rowCount())
		m.layout = m.layout.ScrollBy(scroll).ScrollTo(m.cursor.Row)
		return m, nil

	case commands.LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.logger.Warn("load failed", zap.Error(msg.Err))
			return m.withError(fmt.Errorf("load failed: %w", msg.Err))
		}
		return m, nil

	case commands.AppliedMsg:
		return m.handleApplied(msg)

	case commands.StatusMsg:
		return m.withStatus(msg.Msg)

	case commands.ClearStatusMsg:
		if !time.Now().Before(m.statusTime) {
			m.statusMsg = ""
			m.statusErr = false
		}
		return m, nil
	}

	if m.mode == ModePrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleApplied reports a finished commit. The selection is dropped once any
// mutation reached the backend, since the marks were computed against the
// state before the commit.
func (m Model) handleApplied(msg commands.AppliedMsg) (tea.Model, tea.Cmd) {
	m.committing = false
	res := msg.Result
	if res.Applied() || msg.Err == nil {
		m.session.ClearSelection()
	}

	if msg.Err != nil {
		m.logger.Warn("commit failed",
			zap.Int("created", res.Created),
			zap.Int("deleted", res.Deleted),
			zap.Error(msg.Err))
		if res.Applied() {
			return m.withError(fmt.Errorf("partially applied (created %d, deleted %d): %w", res.Created, res.Deleted, msg.Err))
		}
		return m.withError(msg.Err)
	}

	text := fmt.Sprintf("Created %d, deleted %d", res.Created, res.Deleted)
	if n := len(res.Plan.Skipped); n > 0 {
		text += fmt.Sprintf(", skipped %d booked", n)
	}
	if res.ReloadErr != nil {
		m.logger.Warn("reload after commit failed", zap.Error(res.ReloadErr))
		return m.withError(fmt.Errorf("%s but reload failed: %w", text, res.ReloadErr))
	}
	return m.withStatus(text)
}
