package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// FooterState holds the lines and styles of the footer.
type FooterState struct {
	Width       int
	LegendText  string
	StatusText  string
	HelpText    string
	LegendStyle lipgloss.Style
	StatusStyle lipgloss.Style
	HelpStyle   lipgloss.Style
}

// RenderFooter renders the legend, status and help lines.
func RenderFooter(s FooterState) string {
	lines := []string{
		footerLine(s.Width, s.LegendStyle, s.LegendText),
		footerLine(s.Width, s.StatusStyle, s.StatusText),
		footerLine(s.Width, s.HelpStyle, s.HelpText),
	}
	return strings.Join(lines, "\n")
}

func footerLine(width int, style lipgloss.Style, content string) string {
	frameW, _ := style.GetFrameSize()
	contentWidth := max(width-frameW, 0)
	if contentWidth > 0 {
		content = ansi.Truncate(content, contentWidth, "")
	}
	return style.Width(contentWidth).Render(content)
}
