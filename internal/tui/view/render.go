package view

import "github.com/charmbracelet/lipgloss"

// ViewState contains pre-rendered sections of the screen.
type ViewState struct {
	Width            int
	Height           int
	Title            string
	Grid             string
	Footer           string
	Modal            string
	ModalBg          lipgloss.Color
	Bg               lipgloss.Color
	EmptyPlaceholder string
}

// Render composes the final view output.
func Render(state ViewState) string {
	if state.Width == 0 || state.Height == 0 {
		if state.EmptyPlaceholder != "" {
			return state.EmptyPlaceholder
		}
		return "Loading..."
	}

	base := state.Title + "\n" + state.Grid
	base = PadLinesWithBackground(base, state.Width, state.Height-FooterHeight, state.Bg)
	base += "\n" + state.Footer

	if state.Modal != "" {
		return Overlay(base, state.Modal, state.Width, state.Height, state.ModalBg)
	}
	return base
}
