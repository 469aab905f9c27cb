package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/hourly/internal/calendar"
)

// GridCell is the text and style of one rendered cell.
type GridCell struct {
	Text  string
	Style lipgloss.Style
}

// GridState holds everything needed to draw the week grid.
type GridState struct {
	Layout       GridLayout
	Headers      [calendar.DaysPerWeek]string
	HeaderStyles [calendar.DaysPerWeek]lipgloss.Style
	TimeLabels   []string     // one per hour row
	Cells        [][]GridCell // [row][day], all rows
	TimeStyle    lipgloss.Style
	BorderStyle  lipgloss.Style
}

// RenderGrid draws the header, the rule and the visible hour rows.
func RenderGrid(s GridState) string {
	l := s.Layout
	sep := s.BorderStyle.Render("│")
	lines := make([]string, 0, HeaderHeight+l.Rows)

	var b strings.Builder
	b.WriteString(s.TimeStyle.Render(strings.Repeat(" ", TimeColWidth)))
	for d := 0; d < calendar.DaysPerWeek; d++ {
		b.WriteString(sep)
		b.WriteString(fit(s.HeaderStyles[d].Align(lipgloss.Center), s.Headers[d], l.ColW))
	}
	b.WriteString(sep)
	lines = append(lines, b.String())

	rule := strings.Repeat("─", TimeColWidth) + "┼"
	for d := 0; d < calendar.DaysPerWeek; d++ {
		rule += strings.Repeat("─", l.ColW)
		if d < calendar.DaysPerWeek-1 {
			rule += "┼"
		}
	}
	lines = append(lines, s.BorderStyle.Render(rule+"┤"))

	for r := l.Scroll; r < l.Scroll+l.Rows && r < len(s.Cells); r++ {
		b.Reset()
		label := ""
		if r < len(s.TimeLabels) {
			label = s.TimeLabels[r]
		}
		b.WriteString(fit(s.TimeStyle, label, TimeColWidth))
		for d := 0; d < calendar.DaysPerWeek; d++ {
			b.WriteString(sep)
			cell := GridCell{}
			if d < len(s.Cells[r]) {
				cell = s.Cells[r][d]
			}
			b.WriteString(fit(cell.Style, cell.Text, l.ColW))
		}
		b.WriteString(sep)
		lines = append(lines, b.String())
	}

	return strings.Join(lines, "\n")
}

// fit renders text in exactly width cells.
func fit(style lipgloss.Style, text string, width int) string {
	if width <= 0 {
		return ""
	}
	text = ansi.Truncate(text, width, "…")
	return style.Width(width).MaxWidth(width).Render(text)
}
