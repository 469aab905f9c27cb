package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ModalStyles groups the styles of the confirmation dialog.
type ModalStyles struct {
	Frame  lipgloss.Style
	Title  lipgloss.Style
	Body   lipgloss.Style
	Hint   lipgloss.Style
	Accent lipgloss.Style
	Bg     lipgloss.Color
}

// RenderModal renders a titled dialog with body lines and a hint line.
func RenderModal(title string, body []string, hint string, styles ModalStyles) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(title))
	if len(body) > 0 {
		b.WriteString("\n\n")
		for i, line := range body {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(styles.Body.Render(line))
		}
	}
	if hint != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Hint.Render(hint))
	}
	return styles.Frame.Render(b.String())
}
