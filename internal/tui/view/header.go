package view

import (
	"fmt"
	"strconv"
	"time"

	"github.com/javiermolinar/hourly/internal/calendar"
)

// HeaderLabels builds the day column labels and marks today's column.
func HeaderLabels(week calendar.Week, today time.Time) ([calendar.DaysPerWeek]string, [calendar.DaysPerWeek]bool) {
	var labels [calendar.DaysPerWeek]string
	var isToday [calendar.DaysPerWeek]bool

	for i, day := range week {
		label := day.ShortName() + " " + strconv.Itoa(day.Date.Day())
		if day.Contains(today) {
			label = "*" + label + "*"
			isToday[i] = true
		}
		labels[i] = label
	}
	return labels, isToday
}

// WeekRange formats the week as "Jun 10 - Jun 16, 2024".
func WeekRange(week calendar.Week) string {
	start, end := week.Bounds()
	last := end.AddDate(0, 0, -1)
	return start.Format("Jan 2") + " - " + last.Format("Jan 2, 2006")
}

// CountLabel describes the weekly slot count against the floor, e.g.
// "18 slots (20 after commit) / min 20".
func CountLabel(current, projected, floor int) string {
	s := fmt.Sprintf("%d slots", current)
	if projected != current {
		s += fmt.Sprintf(" (%d after commit)", projected)
	}
	if floor > 0 {
		s += fmt.Sprintf(" / min %d", floor)
	}
	return s
}
