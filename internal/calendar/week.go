// Package calendar projects calendar weeks and matches persisted slots onto them.
package calendar

import (
	"time"

	"github.com/javiermolinar/hourly/internal/dateutil"
)

// DaysPerWeek is the number of days in a projected week.
const DaysPerWeek = 7

// Day describes one column of the weekly grid.
type Day struct {
	Weekday int       // 1=Monday ... 7=Sunday
	Date    time.Time // midnight of the day, in the reference location
}

// Index returns the zero-based column index (0=Monday, 6=Sunday).
func (d Day) Index() int {
	return d.Weekday - 1
}

// Name returns the full weekday name, e.g. "Monday".
func (d Day) Name() string {
	return WeekdayName(d.Index())
}

// ShortName returns the short weekday name, e.g. "Mon".
func (d Day) ShortName() string {
	return WeekdayShortName(d.Index())
}

// Contains reports whether t falls on this day in the day's location.
func (d Day) Contains(t time.Time) bool {
	t = t.In(d.Date.Location())
	return t.Year() == d.Date.Year() && t.Month() == d.Date.Month() && t.Day() == d.Date.Day()
}

// At returns the start of the given hour on this day.
func (d Day) At(hour int) time.Time {
	return dateutil.AtHour(d.Date, hour)
}

// Week is the seven-day projection starting on Monday.
type Week [DaysPerWeek]Day

// Project returns the seven days of the week offset weeks away from the week
// containing reference. It has no state and no I/O.
func Project(reference time.Time, offset int) Week {
	monday := dateutil.StartOfWeek(reference).AddDate(0, 0, 7*offset)

	var w Week
	for i := 0; i < DaysPerWeek; i++ {
		w[i] = Day{
			Weekday: i + 1,
			Date:    monday.AddDate(0, 0, i),
		}
	}
	return w
}

// Monday returns the first day of the week.
func (w Week) Monday() time.Time {
	return w[0].Date
}

// Bounds returns the half-open interval [Monday 00:00, next Monday 00:00).
func (w Week) Bounds() (start, end time.Time) {
	start = w[0].Date
	return start, start.AddDate(0, 0, DaysPerWeek)
}

// Contains reports whether t falls inside the week.
func (w Week) Contains(t time.Time) bool {
	start, end := w.Bounds()
	t = t.In(start.Location())
	return !t.Before(start) && t.Before(end)
}

// DayByDate returns the day matching date, false if not in this week.
func (w Week) DayByDate(date time.Time) (Day, bool) {
	for _, d := range w {
		if d.Contains(date) {
			return d, true
		}
	}
	return Day{}, false
}

// DayOf returns the day containing t, in t's location.
func DayOf(t time.Time) Day {
	return Day{
		Weekday: dateutil.MondayIndex(t.Weekday()) + 1,
		Date:    dateutil.TruncateToDay(t),
	}
}

// OffsetOf returns the week offset of date relative to reference.
func OffsetOf(reference, date time.Time) int {
	return dateutil.WeeksBetween(reference, date)
}

// WeekdayName returns the name of the weekday (0=Monday).
func WeekdayName(weekday int) string {
	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return names[weekday]
}

// WeekdayShortName returns the short name of the weekday (0=Monday).
func WeekdayShortName(weekday int) string {
	names := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return names[weekday]
}
