// Package view renders the calendar grid, its footer and dialogs.
package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PadLinesWithBackground pads content to width x height with a background color.
func PadLinesWithBackground(content string, width, height int, bg lipgloss.Color) string {
	if width <= 0 || height <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]

	pad := lipgloss.NewStyle().Background(bg)
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + pad.Render(strings.Repeat(" ", width-w))
		}
	}
	return strings.Join(lines, "\n")
}

// Overlay centers box over base, which is width x height.
func Overlay(base, box string, width, height int, boxBg lipgloss.Color) string {
	boxLines := strings.Split(box, "\n")
	boxW := 0
	for _, line := range boxLines {
		boxW = max(boxW, lipgloss.Width(line))
	}
	if boxW == 0 || width <= 0 || height <= 0 {
		return base
	}
	boxW = min(boxW, width)

	top := max((height-len(boxLines))/2, 0)
	left := max((width-boxW)/2, 0)

	baseLines := strings.Split(PadLinesWithBackground(base, width, height, lipgloss.Color("")), "\n")
	bgSeq := backgroundSeq(boxBg)
	pad := lipgloss.NewStyle().Background(boxBg)

	for i, line := range boxLines {
		row := top + i
		if row >= height {
			break
		}
		w := lipgloss.Width(line)
		switch {
		case w > boxW:
			line = ansi.Cut(line, 0, boxW)
		case w < boxW:
			line += pad.Render(strings.Repeat(" ", boxW-w))
		}
		if bgSeq != "" {
			line = strings.ReplaceAll(line, ansi.ResetStyle, ansi.ResetStyle+bgSeq)
		}
		baseLine := baseLines[row]
		baseLines[row] = ansi.Cut(baseLine, 0, left) + line + ansi.ResetStyle + ansi.Cut(baseLine, left+boxW, width)
	}
	return strings.Join(baseLines, "\n")
}

// backgroundSeq returns the escape sequence that sets bg, or "" for no color.
func backgroundSeq(bg lipgloss.Color) string {
	if bg == "" {
		return ""
	}
	return ansi.Style{}.BackgroundColor(ansi.HexColor(string(bg))).String()
}
