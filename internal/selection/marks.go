// Package selection implements the drag-to-select state machine of the week grid.
package selection

import "sort"

// Cell addresses one hour of one day in one projected week.
type Cell struct {
	Week int // week offset from the current week
	Day  int // 0=Monday ... 6=Sunday
	Hour int // row index into the visible hours
}

// Less orders cells by week, day, then hour.
func (c Cell) Less(o Cell) bool {
	if c.Week != o.Week {
		return c.Week < o.Week
	}
	if c.Day != o.Day {
		return c.Day < o.Day
	}
	return c.Hour < o.Hour
}

// Marks is an immutable set of marked cells.
// Every modification returns a new set, so a State can be kept as a snapshot.
type Marks struct {
	set map[Cell]struct{}
}

// Has reports whether c is marked.
func (m Marks) Has(c Cell) bool {
	_, ok := m.set[c]
	return ok
}

// Len returns the number of marked cells.
func (m Marks) Len() int {
	return len(m.set)
}

// Cells returns the marked cells in order.
func (m Marks) Cells() []Cell {
	out := make([]Cell, 0, len(m.set))
	for c := range m.set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// InWeek returns the marked cells of one week offset, in order.
func (m Marks) InWeek(week int) []Cell {
	var out []Cell
	for _, c := range m.Cells() {
		if c.Week == week {
			out = append(out, c)
		}
	}
	return out
}

// with returns a copy of m where c is marked (on) or unmarked (off).
// The receiver is returned unchanged when nothing would change.
func (m Marks) with(c Cell, on bool) Marks {
	if m.Has(c) == on {
		return m
	}
	next := make(map[Cell]struct{}, len(m.set)+1)
	for k := range m.set {
		next[k] = struct{}{}
	}
	if on {
		next[c] = struct{}{}
	} else {
		delete(next, c)
	}
	return Marks{set: next}
}

// withAll applies on to every cell in cells with a single copy.
func (m Marks) withAll(cells []Cell, on bool) Marks {
	next := make(map[Cell]struct{}, len(m.set)+len(cells))
	for k := range m.set {
		next[k] = struct{}{}
	}
	for _, c := range cells {
		if on {
			next[c] = struct{}{}
		} else {
			delete(next, c)
		}
	}
	return Marks{set: next}
}
