package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// handleMouseMsg maps mouse events onto the selection machine. A press starts
// a drag on a cell, motion extends it and the release ends it. A press on a
// day header toggles the whole day.
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeNormal {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.layout = m.layout.ScrollBy(-1)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.layout = m.layout.ScrollBy(1)
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if m.layout.OnHeader(msg.Y) {
			day, ok := m.layout.DayAt(msg.X)
			if !ok {
				return m, nil
			}
			m.cursor.Day = day
			if err := m.session.ToggleDay(day); err != nil {
				return m.withError(err)
			}
			return m, nil
		}
		day, row, ok := m.layout.HitTest(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.cursor = Position{Day: day, Row: row}
		if err := m.session.PointerDown(day, row); err != nil {
			return m.withError(err)
		}

	case tea.MouseActionMotion:
		if !m.session.Dragging() {
			return m, nil
		}
		day, row, ok := m.layout.HitTest(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.cursor = Position{Day: day, Row: row}
		m.session.PointerEnter(day, row)

	case tea.MouseActionRelease:
		m.session.PointerUp()
	}
	return m, nil
}
