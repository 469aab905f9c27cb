// Package tui provides the terminal calendar for editing weekly availability.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/hourly/internal/dateutil"
	"github.com/javiermolinar/hourly/internal/reconcile"
	"github.com/javiermolinar/hourly/internal/schedule"
	"github.com/javiermolinar/hourly/internal/tui/commands"
	"github.com/javiermolinar/hourly/internal/tui/theme"
	"github.com/javiermolinar/hourly/internal/tui/view"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal  Mode = iota
	ModeConfirm      // commit dialog open
	ModePrompt       // go-to-date or consultant input
	ModeHelp
)

// promptKind selects what the input line asks for.
type promptKind int

const (
	promptGoTo promptKind = iota
	promptConsultant
)

// How long status lines stay up.
const (
	statusTimeout = 3 * time.Second
	errorTimeout  = 5 * time.Second
)

// Position represents a cursor position in the grid.
type Position struct {
	Day int // 0=Monday, 6=Sunday
	Row int // index into the visible hours
}

// Model is the main TUI model.
type Model struct {
	session    *schedule.Session
	consultant string
	logger     *zap.Logger

	styles *Styles
	keys   keyMap
	help   help.Model
	prompt textinput.Model
	asking promptKind

	mode       Mode
	cursor     Position
	layout     view.GridLayout
	width      int
	height     int
	loading    bool
	committing bool
	pending    *reconcile.Plan // plan awaiting confirmation

	statusMsg  string
	statusErr  bool
	statusTime time.Time
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithConsultant sets the consultant name shown in the title.
func WithConsultant(id string) ModelOption {
	return func(m *Model) {
		m.consultant = id
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ModelOption {
	return func(m *Model) {
		if l != nil {
			m.logger = l.Named("tui")
		}
	}
}

// New creates a new TUI model.
func New(session *schedule.Session, themeName string, opts ...ModelOption) *Model {
	t, err := theme.Load(themeName)
	if err != nil {
		t, _ = theme.Load(theme.DefaultName)
	}
	styles := NewStyles(t)

	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	ti.PromptStyle = styles.PromptStyle
	ti.TextStyle = styles.PromptStyle
	ti.PlaceholderStyle = styles.PlaceholderStyle

	h := help.New()
	h.Styles.ShortKey = styles.HelpStyle.Bold(true)
	h.Styles.ShortDesc = styles.HelpStyle
	h.Styles.ShortSeparator = styles.HelpStyle
	h.Styles.FullKey = styles.Modal.Accent
	h.Styles.FullDesc = styles.Modal.Body
	h.Styles.FullSeparator = styles.Modal.Body

	m := &Model{
		session: session,
		logger:  zap.NewNop(),
		styles:  styles,
		keys:    defaultKeyMap(),
		help:    h,
		prompt:  ti,
		cursor:  Position{Day: dateutil.MondayIndex(session.Now().Weekday())},
		layout:  view.NewGridLayout(0, 0, len(session.Hours())),
		loading: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.focusNow()
	return m
}

// focusNow puts the cursor on the current hour when it is visible.
func (m *Model) focusNow() {
	if row, err := m.session.RowOf(hourOf(m.session.Now())); err == nil {
		m.cursor.Row = row
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return commands.Load(m.session)
}

// Run starts the TUI.
func Run(session *schedule.Session, themeName string, opts ...ModelOption) error {
	model := New(session, themeName, opts...)
	p := tea.NewProgram(*model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (m Model) rowCount() int {
	return len(m.session.Hours())
}

// withStatus shows msg and schedules its removal.
func (m Model) withStatus(msg string) (Model, tea.Cmd) {
	m.statusMsg = msg
	m.statusErr = false
	m.statusTime = time.Now().Add(statusTimeout)
	return m, commands.ClearStatusAfter(statusTimeout)
}

// withError shows err as a status line.
func (m Model) withError(err error) (Model, tea.Cmd) {
	m.logger.Debug("status error", zap.Error(err))
	m.statusMsg = errorText(err)
	m.statusErr = true
	m.statusTime = time.Now().Add(errorTimeout)
	return m, commands.ClearStatusAfter(errorTimeout)
}
