package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/hourly/internal/tui/theme"
	"github.com/javiermolinar/hourly/internal/tui/view"
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	TitleStyle        lipgloss.Style
	TitleWarningStyle lipgloss.Style

	DayHeaderStyle      lipgloss.Style
	DayHeaderTodayStyle lipgloss.Style
	TimeColumnStyle     lipgloss.Style
	BorderStyle         lipgloss.Style

	// Cell styles
	EmptyStyle         lipgloss.Style
	EmptyPastStyle     lipgloss.Style
	AvailableStyle     lipgloss.Style
	AvailablePastStyle lipgloss.Style
	BookedStyle        lipgloss.Style
	BookedPastStyle    lipgloss.Style
	MarkedStyle        lipgloss.Style
	CursorStyle        lipgloss.Style

	// Footer
	LegendStyle lipgloss.Style
	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style
	HelpStyle   lipgloss.Style

	// Prompt
	PromptStyle      lipgloss.Style
	PlaceholderStyle lipgloss.Style

	Modal view.ModalStyles
}

// NewStyles creates styles from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	base := lipgloss.NewStyle().Background(p.Bg).Foreground(p.Fg)

	s := &Styles{palette: p}

	s.TitleStyle = base.Bold(true).Foreground(p.Accent)
	s.TitleWarningStyle = base.Bold(true).Foreground(p.Warning)

	s.DayHeaderStyle = base.Bold(true)
	s.DayHeaderTodayStyle = base.Bold(true).Foreground(p.TextOnAccent).Background(p.Accent)
	s.TimeColumnStyle = base.Foreground(p.FgMuted)
	s.BorderStyle = base.Foreground(p.BgSelection)

	s.EmptyStyle = base
	s.EmptyPastStyle = base.Foreground(p.FgMuted).Faint(true)
	s.AvailableStyle = lipgloss.NewStyle().Background(p.AvailableBg).Foreground(p.TextOnAvailable)
	s.AvailablePastStyle = lipgloss.NewStyle().Background(p.AvailablePastBg).Foreground(p.FgMuted)
	s.BookedStyle = lipgloss.NewStyle().Background(p.BookedBg).Foreground(p.TextOnBooked).Bold(true)
	s.BookedPastStyle = lipgloss.NewStyle().Background(p.BookedPastBg).Foreground(p.FgMuted)
	s.MarkedStyle = lipgloss.NewStyle().Background(p.MarkedBg).Foreground(p.TextOnMarked).Bold(true)
	s.CursorStyle = lipgloss.NewStyle().Background(p.Accent).Foreground(p.TextOnAccent).Bold(true)

	s.LegendStyle = base.Foreground(p.FgMuted)
	s.StatusStyle = base.Foreground(p.Fg)
	s.ErrorStyle = base.Foreground(p.Warning).Bold(true)
	s.HelpStyle = base.Foreground(p.FgMuted)

	s.PromptStyle = lipgloss.NewStyle().Background(p.BgHighlight).Foreground(p.Fg)
	s.PlaceholderStyle = lipgloss.NewStyle().Background(p.BgHighlight).Foreground(p.FgMuted)

	modalBase := lipgloss.NewStyle().Background(p.BgHighlight).Foreground(p.Fg)
	s.Modal = view.ModalStyles{
		Frame: modalBase.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			BorderBackground(p.BgHighlight).
			Padding(1, 2),
		Title:  modalBase.Bold(true).Foreground(p.Accent),
		Body:   modalBase,
		Hint:   modalBase.Foreground(p.FgMuted),
		Accent: modalBase.Foreground(p.Accent),
		Bg:     p.BgHighlight,
	}
	return s
}

// Bg returns the screen background color.
func (s *Styles) Bg() lipgloss.Color {
	return s.palette.Bg
}
