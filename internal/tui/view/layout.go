package view

import "github.com/javiermolinar/hourly/internal/calendar"

// Grid geometry.
const (
	TimeColWidth = 6 // "09:00 "
	MinColWidth  = 5
	MaxColWidth  = 22
	TitleHeight  = 1
	HeaderHeight = 2 // day labels and the rule under them
	FooterHeight = 3 // legend, status, help
)

// GridLayout is the on-screen geometry of the week grid. Every line of the
// grid is one hour, and each day column is ColW cells wide plus one border.
type GridLayout struct {
	ColW   int // inner width of a day column
	Top    int // screen line of the day header
	Rows   int // visible hour rows
	Scroll int // index of the first visible hour
	Hours  int // total hour rows
}

// NewGridLayout fits the grid into a width x height terminal.
func NewGridLayout(width, height, hours int) GridLayout {
	colW := (width - TimeColWidth - calendar.DaysPerWeek - 1) / calendar.DaysPerWeek
	colW = min(max(colW, MinColWidth), MaxColWidth)

	rows := height - TitleHeight - HeaderHeight - FooterHeight
	rows = min(max(rows, 0), hours)

	return GridLayout{
		ColW:  colW,
		Top:   TitleHeight,
		Rows:  rows,
		Hours: hours,
	}
}

// Width returns the rendered width of the grid.
func (l GridLayout) Width() int {
	return TimeColWidth + calendar.DaysPerWeek*(l.ColW+1) + 1
}

// FirstRowY returns the screen line of the first visible hour.
func (l GridLayout) FirstRowY() int {
	return l.Top + HeaderHeight
}

// DayAt returns the day column under screen column x.
func (l GridLayout) DayAt(x int) (int, bool) {
	x -= TimeColWidth
	if x < 0 {
		return 0, false
	}
	day := x / (l.ColW + 1)
	if day >= calendar.DaysPerWeek {
		return 0, false
	}
	return day, true
}

// HitTest maps a screen position to a grid cell.
func (l GridLayout) HitTest(x, y int) (day, row int, ok bool) {
	day, ok = l.DayAt(x)
	if !ok {
		return 0, 0, false
	}
	r := y - l.FirstRowY()
	if r < 0 || r >= l.Rows {
		return 0, 0, false
	}
	return day, r + l.Scroll, true
}

// OnHeader reports whether screen line y is the day header.
func (l GridLayout) OnHeader(y int) bool {
	return y == l.Top
}

// ScrollTo adjusts Scroll so row is visible.
func (l GridLayout) ScrollTo(row int) GridLayout {
	if l.Rows <= 0 {
		return l
	}
	if row < l.Scroll {
		l.Scroll = row
	}
	if row >= l.Scroll+l.Rows {
		l.Scroll = row - l.Rows + 1
	}
	return l.clampScroll()
}

// ScrollBy moves the viewport by delta rows.
func (l GridLayout) ScrollBy(delta int) GridLayout {
	l.Scroll += delta
	return l.clampScroll()
}

func (l GridLayout) clampScroll() GridLayout {
	l.Scroll = min(max(l.Scroll, 0), max(l.Hours-l.Rows, 0))
	return l
}
