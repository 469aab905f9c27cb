// Package dateutil provides local calendar arithmetic shared by the week grid.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidWeekday    = errors.New("unknown weekday")
)

// weekdayMap maps weekday names and their short forms to time.Weekday values.
var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

// ParseDate parses a date string in YYYY-MM-DD format in the local time zone.
// If the string is empty, returns today's date.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return TruncateToDay(time.Now()), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseWeekday parses a weekday name ("monday", "mon", case-insensitive).
func ParseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdayMap[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, ErrInvalidWeekday
	}
	return wd, nil
}

// MondayIndex returns the weekday index counted from Monday (Monday=0, Sunday=6).
func MondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// StartOfWeek returns the Monday (midnight) of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	t = TruncateToDay(t)
	return t.AddDate(0, 0, -MondayIndex(t.Weekday()))
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (monday, sunday time.Time) {
	monday = StartOfWeek(t)
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AtHour returns midnight of day's date plus hour hours, in day's location.
func AtHour(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
}

// SameHour reports whether t falls on the given calendar date and hour.
// t is compared in day's location so that a UTC timestamp from the backend
// still matches the local cell it represents.
func SameHour(t, day time.Time, hour int) bool {
	t = t.In(day.Location())
	return t.Year() == day.Year() &&
		t.Month() == day.Month() &&
		t.Day() == day.Day() &&
		t.Hour() == hour
}

// WeeksBetween returns the number of calendar weeks from the week containing
// from to the week containing to. Negative when to is earlier.
func WeeksBetween(from, to time.Time) int {
	a := StartOfWeek(from)
	b := StartOfWeek(to)
	days := int(b.Sub(a).Hours()/24 + 0.5)
	if b.Before(a) {
		days = -int(a.Sub(b).Hours()/24 + 0.5)
	}
	return days / 7
}

// ParseRelativeDate resolves the target of a calendar jump against relativeTo.
// It accepts "", "today", "tomorrow", "yesterday", a weekday name (next
// occurrence), "next-<weekday>", "next-week", "last-week" and YYYY-MM-DD.
// Past dates are allowed. Matching is case-insensitive.
func ParseRelativeDate(s string, relativeTo time.Time) (time.Time, error) {
	today := TruncateToDay(relativeTo)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "next-week":
		return today.AddDate(0, 0, 7), nil
	case "last-week":
		return today.AddDate(0, 0, -7), nil
	}

	if name, ok := strings.CutPrefix(input, "next-"); ok {
		if target, ok := weekdayMap[name]; ok {
			return nextWeekday(today, target), nil
		}
		return time.Time{}, ErrInvalidDateFormat
	}
	if target, ok := weekdayMap[input]; ok {
		return nextWeekday(today, target), nil
	}

	result, err := time.ParseInLocation("2006-01-02", input, today.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return result, nil
}

// nextWeekday returns the next occurrence of the given weekday after today.
// If today is the target weekday, returns one week from today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	current := today.Weekday()
	daysUntil := int(target) - int(current)
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return today.AddDate(0, 0, daysUntil)
}
