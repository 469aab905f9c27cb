package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/hourly/internal/calendar"
	"github.com/javiermolinar/hourly/internal/constraint"
	"github.com/javiermolinar/hourly/internal/dateutil"
	"github.com/javiermolinar/hourly/internal/schedule"
	"github.com/javiermolinar/hourly/internal/summary"
	"github.com/javiermolinar/hourly/internal/tui/commands"
)

// keyMap holds the bindings of normal mode.
type keyMap struct {
	Left, Right, Up, Down key.Binding
	PageUp, PageDown      key.Binding
	PrevWeek, NextWeek    key.Binding
	Today                 key.Binding
	GoTo                  key.Binding
	Consultant            key.Binding
	Toggle                key.Binding
	ToggleDay             key.Binding
	Clear                 key.Binding
	Commit                key.Binding
	Reload                key.Binding
	Copy                  key.Binding
	Help                  key.Binding
	Quit                  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "prev day")),
		Right:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "next day")),
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "earlier")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "later")),
		PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "scroll up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "scroll down")),
		PrevWeek:   key.NewBinding(key.WithKeys("H", "shift+left", "["), key.WithHelp("H", "prev week")),
		NextWeek:   key.NewBinding(key.WithKeys("L", "shift+right", "]"), key.WithHelp("L", "next week")),
		Today:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		GoTo:       key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to date")),
		Consultant: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "switch consultant")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		ToggleDay:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "toggle day")),
		Clear:      key.NewBinding(key.WithKeys("esc", "c"), key.WithHelp("esc", "clear")),
		Commit:     key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("enter", "commit")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy week")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.ToggleDay, k.Commit, k.PrevWeek, k.NextWeek, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.PageUp, k.PageDown},
		{k.PrevWeek, k.NextWeek, k.Today, k.GoTo, k.Consultant},
		{k.Toggle, k.ToggleDay, k.Clear, k.Commit},
		{k.Reload, k.Copy, k.Help, k.Quit},
	}
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logger.Debug("key", zap.String("key", msg.String()), zap.Int("mode", int(m.mode)))

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeConfirm:
		return m.handleConfirmKeys(msg)
	case ModePrompt:
		return m.handlePromptKeys(msg)
	case ModeHelp:
		m.mode = ModeNormal
		return m, nil
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	// Navigation
	case key.Matches(msg, k.Left):
		m.cursor.Day = max(m.cursor.Day-1, 0)
	case key.Matches(msg, k.Right):
		m.cursor.Day = min(m.cursor.Day+1, calendar.DaysPerWeek-1)
	case key.Matches(msg, k.Up):
		m.cursor.Row = max(m.cursor.Row-1, 0)
		m.layout = m.layout.ScrollTo(m.cursor.Row)
	case key.Matches(msg, k.Down):
		m.cursor.Row = min(m.cursor.Row+1, m.rowCount()-1)
		m.layout = m.layout.ScrollTo(m.cursor.Row)
	case key.Matches(msg, k.PageUp):
		m.cursor.Row = max(m.cursor.Row-max(m.layout.Rows, 1), 0)
		m.layout = m.layout.ScrollTo(m.cursor.Row)
	case key.Matches(msg, k.PageDown):
		m.cursor.Row = min(m.cursor.Row+max(m.layout.Rows, 1), m.rowCount()-1)
		m.layout = m.layout.ScrollTo(m.cursor.Row)

	// Weeks
	case key.Matches(msg, k.PrevWeek):
		m.session.PrevWeek()
	case key.Matches(msg, k.NextWeek):
		m.session.NextWeek()
	case key.Matches(msg, k.Today):
		m.session.SetWeekOffset(0)
		m.cursor.Day = dateutil.MondayIndex(m.session.Now().Weekday())
	case key.Matches(msg, k.GoTo):
		return m.openPrompt(promptGoTo)
	case key.Matches(msg, k.Consultant):
		return m.openPrompt(promptConsultant)

	// Selection
	case key.Matches(msg, k.Toggle):
		if err := m.session.PointerDown(m.cursor.Day, m.cursor.Row); err != nil {
			return m.withError(err)
		}
		m.session.PointerUp()
	case key.Matches(msg, k.ToggleDay):
		if err := m.session.ToggleDay(m.cursor.Day); err != nil {
			return m.withError(err)
		}
	case key.Matches(msg, k.Clear):
		m.session.ClearSelection()
	case key.Matches(msg, k.Commit):
		return m.prepareCommit()

	case key.Matches(msg, k.Reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, commands.Load(m.session)
	case key.Matches(msg, k.Copy):
		return m.copyWeek()
	case key.Matches(msg, k.Help):
		m.mode = ModeHelp
	}
	return m, nil
}

// prepareCommit diffs the selection and opens the confirmation dialog.
func (m Model) prepareCommit() (tea.Model, tea.Cmd) {
	// committing covers the gap before the Apply command reaches the session.
	if m.committing || m.session.Busy() {
		return m.withError(schedule.ErrCommitInFlight)
	}
	plan, err := m.session.Prepare()
	if err != nil {
		return m.withError(err)
	}
	m.pending = &plan
	m.mode = ModeConfirm
	return m, nil
}

// handleConfirmKeys handles the commit dialog.
func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		if m.committing || m.pending == nil {
			return m, nil
		}
		plan := *m.pending
		m.pending = nil
		m.mode = ModeNormal
		m.committing = true
		m.statusMsg = "Committing..."
		m.statusErr = false
		return m, commands.Apply(m.session, plan)
	case "n", "N", "esc", "q":
		m.pending = nil
		m.mode = ModeNormal
	}
	return m, nil
}

// openPrompt focuses the input line for kind.
func (m Model) openPrompt(kind promptKind) (tea.Model, tea.Cmd) {
	m.asking = kind
	switch kind {
	case promptConsultant:
		m.prompt.Prompt = "consultant: "
		m.prompt.Placeholder = m.consultant
	default:
		m.prompt.Prompt = "go to: "
		m.prompt.Placeholder = "2025-01-15, friday, next-week, last-week"
	}
	m.mode = ModePrompt
	m.prompt.Reset()
	cmd := m.prompt.Focus()
	return m, cmd
}

// switchConsultant opens another consultant's calendar and reloads it.
func (m Model) switchConsultant(id string) (tea.Model, tea.Cmd) {
	if id == "" || id == m.consultant {
		return m, nil
	}
	if m.committing {
		return m.withError(schedule.ErrCommitInFlight)
	}
	if err := m.session.SetConsultant(id); err != nil {
		return m.withError(err)
	}
	m.consultant = id
	m.pending = nil
	m.loading = true
	m, status := m.withStatus("Switched to " + id)
	return m, tea.Batch(commands.Load(m.session), status)
}

// handlePromptKeys handles the go-to-date prompt.
func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt.Blur()
		m.mode = ModeNormal
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.prompt.Value())
		m.prompt.Blur()
		m.mode = ModeNormal
		if m.asking == promptConsultant {
			return m.switchConsultant(value)
		}
		return m.goTo(value)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// goTo jumps to the week containing the date typed in the prompt. Absolute
// dates may lie in the past; keywords such as "tomorrow" or "friday" resolve
// forward from today.
func (m Model) goTo(value string) (Model, tea.Cmd) {
	now := m.session.Now()
	date, err := dateutil.ParseDate(value)
	if err != nil {
		date, err = dateutil.ParseRelativeDate(value, now)
	}
	if err != nil {
		return m.withError(fmt.Errorf("%q: %w", value, err))
	}
	m.session.SetWeekOffset(calendar.OffsetOf(now, date))
	m.cursor.Day = dateutil.MondayIndex(date.Weekday())
	return m, nil
}

// copyWeek puts the plain-text week summary on the clipboard.
func (m Model) copyWeek() (tea.Model, tea.Cmd) {
	ws := summary.SummarizeWeek(m.session.Week(), m.session.Snapshot(), m.session.MinWeeklySlots())
	if err := clipboard.WriteAll(ws.Text()); err != nil {
		return m.withError(fmt.Errorf("copy failed: %w", err))
	}
	return m.withStatus("Week copied to clipboard")
}

// errorText turns session errors into a status line.
func errorText(err error) string {
	var verr *constraint.ValidationError
	switch {
	case errors.As(err, &verr):
		return "Cannot commit: " + verr.Reason
	case errors.Is(err, schedule.ErrNothingToCommit):
		return "Nothing to commit"
	case errors.Is(err, schedule.ErrCommitInFlight):
		return "A commit is already in progress"
	default:
		return "Error: " + err.Error()
	}
}
