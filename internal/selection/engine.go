package selection

// Engine holds the current state of the selection machine.
// It is not safe for concurrent use; the view drives it from its update loop.
type Engine struct {
	state State
	grid  Grid
}

// Option configures an Engine.
type Option func(*Engine)

// WithLock sets the predicate for cells that cannot be marked.
func WithLock(locked func(Cell) bool) Option {
	return func(e *Engine) {
		e.grid.Locked = locked
	}
}

// NewEngine creates an idle engine for a grid with hours rows per day.
func NewEngine(hours int, opts ...Option) *Engine {
	e := &Engine{grid: Grid{Hours: hours}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetLock replaces the locked-cell predicate, e.g. after the slot list reloads.
func (e *Engine) SetLock(locked func(Cell) bool) {
	e.grid.Locked = locked
}

// Hours returns the number of hour rows per day.
func (e *Engine) Hours() int {
	return e.grid.Hours
}

// Apply runs one event through the machine.
func (e *Engine) Apply(ev Event) error {
	next, err := Transition(e.state, ev, e.grid)
	if err != nil {
		return err
	}
	e.state = next
	return nil
}

// PointerDown starts a drag on c.
func (e *Engine) PointerDown(c Cell) error {
	return e.Apply(PointerDown{Cell: c})
}

// PointerEnter extends the current drag into c.
func (e *Engine) PointerEnter(c Cell) {
	_ = e.Apply(PointerEnter{Cell: c})
}

// PointerUp ends the current drag.
func (e *Engine) PointerUp() {
	_ = e.Apply(PointerUp{})
}

// ToggleFullDay toggles every free hour of a day.
func (e *Engine) ToggleFullDay(week, day int) error {
	return e.Apply(ToggleFullDay{Week: week, Day: day})
}

// Clear drops every mark.
func (e *Engine) Clear() {
	_ = e.Apply(Clear{})
}

// State returns the current state snapshot.
func (e *Engine) State() State {
	return e.state
}

// Dragging returns true while a drag is in progress.
func (e *Engine) Dragging() bool {
	return e.state.Phase == PhaseDragging
}

// IsMarked reports whether c is marked.
func (e *Engine) IsMarked(c Cell) bool {
	return e.state.Marks.Has(c)
}

// Marked returns the marked cells in order.
func (e *Engine) Marked() []Cell {
	return e.state.Marks.Cells()
}

// MarkedIn returns the marked cells of one week offset.
func (e *Engine) MarkedIn(week int) []Cell {
	return e.state.Marks.InWeek(week)
}

// Count returns the number of marked cells.
func (e *Engine) Count() int {
	return e.state.Marks.Len()
}
