package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/hourly/internal/calendar"
	"github.com/javiermolinar/hourly/internal/schedule"
	"github.com/javiermolinar/hourly/internal/slot"
	"github.com/javiermolinar/hourly/internal/tui/view"
)

// Cell labels.
const (
	labelOpen   = "open"
	labelBooked = "booked"
	labelAdd    = "+ add"
	labelRemove = "- remove"
)

// maxPlanLines caps the slot list in the commit dialog.
const maxPlanLines = 8

// View renders the TUI.
func (m Model) View() string {
	return view.Render(m.viewState())
}

func (m Model) viewState() view.ViewState {
	state := view.ViewState{
		Width:            m.width,
		Height:           m.height,
		Bg:               m.styles.Bg(),
		ModalBg:          m.styles.Modal.Bg,
		EmptyPlaceholder: "Loading...",
	}
	if m.width == 0 || m.height == 0 {
		return state
	}

	state.Title = m.renderTitle()
	state.Grid = view.RenderGrid(m.gridState())
	state.Footer = view.RenderFooter(m.footerState())
	state.Modal = m.renderModal()
	return state
}

func (m Model) renderTitle() string {
	week := m.session.Week()
	current, projected := m.session.WeeklyCount()
	floor := m.session.MinWeeklySlots()

	parts := []string{"hourly"}
	if m.consultant != "" {
		parts = append(parts, m.consultant)
	}
	parts = append(parts, view.WeekRange(week), view.CountLabel(current, projected, floor))
	if m.loading {
		parts = append(parts, "loading...")
	}
	text := " " + strings.Join(parts, " · ")

	style := m.styles.TitleStyle
	if projected < floor {
		style = m.styles.TitleWarningStyle
	}
	return style.Width(m.width).MaxWidth(m.width).Render(text)
}

func (m Model) gridState() view.GridState {
	week := m.session.Week()
	grid := m.session.Grid()
	hours := m.session.Hours()

	headers, today := view.HeaderLabels(week, m.session.Now())
	var headerStyles [calendar.DaysPerWeek]lipgloss.Style
	for d := range headerStyles {
		headerStyles[d] = m.styles.DayHeaderStyle
		if today[d] {
			headerStyles[d] = m.styles.DayHeaderTodayStyle
		}
	}

	labels := make([]string, len(hours))
	cells := make([][]view.GridCell, len(hours))
	for r, h := range hours {
		labels[r] = h.Label()
		cells[r] = make([]view.GridCell, calendar.DaysPerWeek)
		for d := 0; d < calendar.DaysPerWeek; d++ {
			cell := m.gridCell(grid[d][r])
			if m.mode == ModeNormal && m.cursor.Day == d && m.cursor.Row == r {
				cell.Style = m.styles.CursorStyle
			}
			cells[r][d] = cell
		}
	}

	return view.GridState{
		Layout:       m.layout,
		Headers:      headers,
		HeaderStyles: headerStyles,
		TimeLabels:   labels,
		Cells:        cells,
		TimeStyle:    m.styles.TimeColumnStyle,
		BorderStyle:  m.styles.BorderStyle,
	}
}

// gridCell picks the text and style of one cell.
func (m Model) gridCell(c schedule.CellView) view.GridCell {
	s := m.styles
	switch {
	case c.Marked && c.Slot != nil:
		return view.GridCell{Text: labelRemove, Style: s.MarkedStyle}
	case c.Marked:
		return view.GridCell{Text: labelAdd, Style: s.MarkedStyle}
	case c.Booked:
		text := labelBooked
		if c.Appointment != nil && c.Appointment.Status != slot.AppointmentCanceled && c.Appointment.CustomerID != "" {
			text = c.Appointment.CustomerID
		}
		if c.Past {
			return view.GridCell{Text: text, Style: s.BookedPastStyle}
		}
		return view.GridCell{Text: text, Style: s.BookedStyle}
	case c.Slot != nil:
		if c.Past {
			return view.GridCell{Text: labelOpen, Style: s.AvailablePastStyle}
		}
		return view.GridCell{Text: labelOpen, Style: s.AvailableStyle}
	case c.Past:
		return view.GridCell{Style: s.EmptyPastStyle}
	default:
		return view.GridCell{Style: s.EmptyStyle}
	}
}

func (m Model) footerState() view.FooterState {
	s := m.styles
	legend := strings.Join([]string{
		s.AvailableStyle.Render(" " + labelOpen + " "),
		s.BookedStyle.Render(" " + labelBooked + " "),
		s.MarkedStyle.Render(" marked "),
		s.LegendStyle.Render(fmt.Sprintf("%d marked", len(m.session.Marked()))),
	}, s.LegendStyle.Render(" "))

	statusStyle := s.StatusStyle
	status := m.statusMsg
	switch {
	case m.mode == ModePrompt:
		status = m.prompt.View()
	case m.statusErr:
		statusStyle = s.ErrorStyle
	case status == "" && m.committing:
		status = "Committing..."
	case status == "":
		status = m.describeCursor()
	}

	return view.FooterState{
		Width:       m.width,
		LegendText:  " " + legend,
		StatusText:  " " + status,
		HelpText:    " " + m.help.ShortHelpView(m.keys.ShortHelp()),
		LegendStyle: s.LegendStyle,
		StatusStyle: statusStyle,
		HelpStyle:   s.HelpStyle,
	}
}

// describeCursor summarizes the cell under the cursor.
func (m Model) describeCursor() string {
	if m.cursor.Row < 0 || m.cursor.Row >= m.rowCount() {
		return ""
	}
	c := m.session.Cell(m.cursor.Day, m.cursor.Row)
	text := c.Start.Format("Mon 02 Jan 15:04")
	switch {
	case c.Appointment != nil && c.Appointment.Status != slot.AppointmentCanceled:
		text += fmt.Sprintf(" · %s", c.Appointment.Status)
		if c.Appointment.CustomerID != "" {
			text += " by " + c.Appointment.CustomerID
		}
	case c.Booked:
		text += " · booked"
	case c.Slot != nil:
		text += " · open"
	default:
		text += " · no slot"
	}
	if c.Past {
		text += " (past)"
	}
	return text
}

func (m Model) renderModal() string {
	switch m.mode {
	case ModeConfirm:
		if m.pending == nil {
			return ""
		}
		return view.RenderModal("Commit changes?", m.planLines(), "y confirm · n cancel", m.styles.Modal)
	case ModeHelp:
		body := strings.Split(m.help.FullHelpView(m.keys.FullHelp()), "\n")
		return view.RenderModal("Keys", body, "press any key to close", m.styles.Modal)
	}
	return ""
}

// planLines describes the pending plan.
func (m Model) planLines() []string {
	plan := m.pending
	lines := []string{
		fmt.Sprintf("Create %d slot(s), remove %d slot(s)", len(plan.ToCreate), len(plan.ToDelete)),
	}
	if n := len(plan.Skipped); n > 0 {
		lines = append(lines, fmt.Sprintf("%d booked hour(s) left untouched", n))
	}

	var items []string
	for _, d := range plan.ToCreate {
		items = append(items, "+ "+formatStart(d.Start))
	}
	snap := m.session.Snapshot()
	for _, id := range plan.ToDelete {
		if s, ok := snap.SlotByID(id); ok {
			items = append(items, "- "+formatStart(s.Start))
		}
	}
	if len(items) > 0 {
		lines = append(lines, "")
	}
	if len(items) > maxPlanLines {
		rest := len(items) - maxPlanLines
		items = append(items[:maxPlanLines], fmt.Sprintf("... and %d more", rest))
	}
	return append(lines, items...)
}

func formatStart(t time.Time) string {
	return t.Format("Mon 02 Jan 15:04")
}

func hourOf(t time.Time) slot.Hour {
	return slot.Hour(t.Hour())
}
