// Package reconcile turns a grid selection into the create and delete sets
// that bring the persisted slots in line with it.
package reconcile

import (
	"github.com/javiermolinar/hourly/internal/calendar"
	"github.com/javiermolinar/hourly/internal/selection"
	"github.com/javiermolinar/hourly/internal/slot"
)

// Plan is the outcome of a diff.
type Plan struct {
	ToCreate []slot.Draft
	ToDelete []slot.ID
	// Skipped holds marked cells left alone because they are booked.
	Skipped []selection.Cell
}

// Empty returns true if the plan would not change anything.
func (p Plan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToDelete) == 0
}

// Diff maps every marked cell onto week and hours and classifies it:
// an empty cell becomes a create, a cell holding an available slot becomes
// a delete candidate, and a booked cell is skipped. Cells outside the grid
// are ignored. Unmarked cells never produce work.
func Diff(marked []selection.Cell, snap slot.Snapshot, week calendar.Week, hours []slot.Hour) Plan {
	var plan Plan
	created := make(map[int64]bool)
	deleted := make(map[slot.ID]bool)

	for _, c := range marked {
		if c.Day < 0 || c.Day >= calendar.DaysPerWeek || c.Hour < 0 || c.Hour >= len(hours) {
			continue
		}
		day := week[c.Day]
		hour := hours[c.Hour]

		if calendar.IsBooked(day, hour, snap) {
			plan.Skipped = append(plan.Skipped, c)
			continue
		}

		if s, ok := calendar.FindSlot(day, hour, snap.Slots); ok {
			if !deleted[s.ID] {
				deleted[s.ID] = true
				plan.ToDelete = append(plan.ToDelete, s.ID)
			}
			continue
		}

		d := slot.NewDraft(day.At(int(hour)))
		key := d.Start.Unix()
		if created[key] {
			continue
		}
		created[key] = true
		plan.ToCreate = append(plan.ToCreate, d)
	}
	return plan
}
