package selection

import (
	"errors"
	"fmt"
)

// Selection errors.
var (
	ErrCellLocked     = errors.New("cell is booked or in the past")
	ErrCellOutOfRange = errors.New("cell is outside the grid")
)

// Phase is the drag phase of the machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Mode is the action a drag applies to every cell it touches.
type Mode int

const (
	ModeSelect Mode = iota
	ModeDeselect
)

func (m Mode) String() string {
	if m == ModeDeselect {
		return "deselect"
	}
	return "select"
}

// State is one immutable state of the machine.
type State struct {
	Phase Phase
	Mode  Mode // meaningful only while dragging
	Marks Marks

	// toggled remembers the partial marks a full-day toggle overwrote, so the
	// next toggle of the same day puts them back.
	toggled *dayToggle
}

type dayToggle struct {
	week, day int
	prior     []Cell
}

// Grid describes the shape of the week grid the machine runs on.
type Grid struct {
	Hours  int             // visible hour rows per day
	Locked func(Cell) bool // booked or past cells; nil means nothing is locked
}

func (g Grid) inRange(c Cell) bool {
	return c.Day >= 0 && c.Day < 7 && c.Hour >= 0 && c.Hour < g.Hours
}

func (g Grid) locked(c Cell) bool {
	return g.Locked != nil && g.Locked(c)
}

// Event is an input to the machine.
type Event interface {
	isEvent()
}

// PointerDown starts a drag on a cell.
type PointerDown struct{ Cell Cell }

// PointerEnter extends a drag into a cell.
type PointerEnter struct{ Cell Cell }

// PointerUp ends a drag.
type PointerUp struct{}

// ToggleFullDay marks every free hour of a day, or unmarks them if all are marked.
type ToggleFullDay struct {
	Week int
	Day  int
}

// Clear drops every mark and ends any drag.
type Clear struct{}

func (PointerDown) isEvent()   {}
func (PointerEnter) isEvent()  {}
func (PointerUp) isEvent()     {}
func (ToggleFullDay) isEvent() {}
func (Clear) isEvent()         {}

// Transition is the single transition function of the machine.
// On error the returned state equals s.
func Transition(s State, ev Event, g Grid) (State, error) {
	switch ev := ev.(type) {
	case PointerDown:
		if s.Phase != PhaseIdle {
			return s, nil
		}
		if !g.inRange(ev.Cell) {
			return s, ErrCellOutOfRange
		}
		if g.locked(ev.Cell) {
			return s, ErrCellLocked
		}
		// The mode is fixed here, so a click toggles exactly one cell and a drag
		// applies the same action to the whole run.
		mode := ModeSelect
		if s.Marks.Has(ev.Cell) {
			mode = ModeDeselect
		}
		return State{
			Phase: PhaseDragging,
			Mode:  mode,
			Marks: s.Marks.with(ev.Cell, mode == ModeSelect),
		}, nil

	case PointerEnter:
		if s.Phase != PhaseDragging {
			return s, nil
		}
		if !g.inRange(ev.Cell) || g.locked(ev.Cell) {
			return s, nil
		}
		s.Marks = s.Marks.with(ev.Cell, s.Mode == ModeSelect)
		s.toggled = nil
		return s, nil

	case PointerUp:
		s.Phase = PhaseIdle
		s.Mode = ModeSelect
		return s, nil

	case ToggleFullDay:
		if ev.Day < 0 || ev.Day >= 7 {
			return s, ErrCellOutOfRange
		}
		return toggleDay(s, ev, g)

	case Clear:
		return State{}, nil

	default:
		return s, fmt.Errorf("unknown event %T", ev)
	}
}

// toggleDay unmarks the free cells of a day if all are marked and marks them
// all otherwise. Marking over a partial selection records it, and a toggle
// that directly follows restores it instead of clearing the day.
func toggleDay(s State, ev ToggleFullDay, g Grid) (State, error) {
	free := make([]Cell, 0, g.Hours)
	var marked []Cell
	for h := 0; h < g.Hours; h++ {
		c := Cell{Week: ev.Week, Day: ev.Day, Hour: h}
		if g.locked(c) {
			continue
		}
		free = append(free, c)
		if s.Marks.Has(c) {
			marked = append(marked, c)
		}
	}
	if len(free) == 0 {
		return s, ErrCellLocked
	}

	allMarked := len(marked) == len(free)
	undo := s.toggled
	s.toggled = nil

	switch {
	case allMarked && undo != nil && undo.week == ev.Week && undo.day == ev.Day:
		s.Marks = s.Marks.withAll(free, false).withAll(undo.prior, true)
	case allMarked:
		s.Marks = s.Marks.withAll(free, false)
	default:
		if len(marked) > 0 {
			s.toggled = &dayToggle{week: ev.Week, day: ev.Day, prior: marked}
		}
		s.Marks = s.Marks.withAll(free, true)
	}
	return s, nil
}
