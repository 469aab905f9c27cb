// Package summary condenses a week of slots into per-day hour ranges.
package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/javiermolinar/hourly/internal/calendar"
	"github.com/javiermolinar/hourly/internal/dateutil"
	"github.com/javiermolinar/hourly/internal/slot"
)

// HourRange is a run of consecutive slot hours, To exclusive.
type HourRange struct {
	From slot.Hour
	To   slot.Hour
}

func (r HourRange) String() string {
	return r.From.Label() + "-" + r.To.Label()
}

// DaySummary holds the slots of one day.
type DaySummary struct {
	Day    calendar.Day
	Ranges []HourRange
	Booked []slot.Hour
	Slots  int
}

// WeekSummary holds aggregated availability for one week.
type WeekSummary struct {
	Start  time.Time
	End    time.Time
	Days   [calendar.DaysPerWeek]DaySummary
	Total  int
	Booked int
	Floor  int
}

// BelowFloor reports whether the week holds fewer slots than the floor.
func (w *WeekSummary) BelowFloor() bool {
	return w.Floor > 0 && w.Total < w.Floor
}

// SummarizeWeek groups the week's slots by day. Booked hours include
// appointments that hold an hour without a booked slot record.
func SummarizeWeek(week calendar.Week, snap slot.Snapshot, floor int) *WeekSummary {
	start, end := dateutil.WeekRange(week.Monday())
	ws := &WeekSummary{Start: start, End: end, Floor: floor}

	for i, day := range week {
		ds := DaySummary{Day: day}

		var hours []slot.Hour
		for _, s := range snap.Slots {
			if day.Contains(s.Start) {
				hours = append(hours, slot.Hour(s.Start.In(day.Date.Location()).Hour()))
			}
		}
		sort.Slice(hours, func(a, b int) bool { return hours[a] < hours[b] })
		ds.Slots = len(hours)
		ds.Ranges = ranges(hours)

		for h := slot.Hour(0); h < 24; h++ {
			if calendar.IsBooked(day, h, snap) {
				ds.Booked = append(ds.Booked, h)
			}
		}

		ws.Days[i] = ds
		ws.Total += ds.Slots
		ws.Booked += len(ds.Booked)
	}
	return ws
}

func ranges(hours []slot.Hour) []HourRange {
	var out []HourRange
	for _, h := range hours {
		if n := len(out); n > 0 && out[n-1].To == h {
			out[n-1].To = h + 1
			continue
		}
		if n := len(out); n > 0 && out[n-1].To > h {
			continue // duplicate hour
		}
		out = append(out, HourRange{From: h, To: h + 1})
	}
	return out
}

// Lines renders the summary as plain text, one line per day.
func (w *WeekSummary) Lines() []string {
	lines := []string{
		fmt.Sprintf("Week of %s - %s", w.Start.Format("Jan 2"), w.End.Format("Jan 2, 2006")),
	}
	for _, d := range w.Days {
		label := fmt.Sprintf("%s %02d", d.Day.ShortName(), d.Day.Date.Day())
		if len(d.Ranges) == 0 {
			lines = append(lines, label+"  -")
			continue
		}
		parts := make([]string, len(d.Ranges))
		for i, r := range d.Ranges {
			parts[i] = r.String()
		}
		line := fmt.Sprintf("%s  %s  (%d)", label, strings.Join(parts, ", "), d.Slots)
		if len(d.Booked) > 0 {
			booked := make([]string, len(d.Booked))
			for i, h := range d.Booked {
				booked[i] = h.Label()
			}
			line += "  booked " + strings.Join(booked, ", ")
		}
		lines = append(lines, line)
	}
	total := fmt.Sprintf("Total: %d slots, %d booked", w.Total, w.Booked)
	if w.Floor > 0 {
		total += fmt.Sprintf(" / min %d", w.Floor)
	}
	return append(lines, total)
}

// Text renders the summary for copying.
func (w *WeekSummary) Text() string {
	return strings.Join(w.Lines(), "\n")
}
