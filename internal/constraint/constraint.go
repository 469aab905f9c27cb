// Package constraint checks a reconciliation plan against the scheduling rules
// before any mutation reaches the backend.
package constraint

import (
	"fmt"

	"github.com/javiermolinar/hourly/internal/calendar"
	"github.com/javiermolinar/hourly/internal/dateutil"
	"github.com/javiermolinar/hourly/internal/reconcile"
	"github.com/javiermolinar/hourly/internal/slot"
)

// DefaultMinWeeklySlots is the weekly commitment floor.
const DefaultMinWeeklySlots = 20

// Rule names the check a plan failed.
type Rule string

const (
	RuleWeeklyMinimum Rule = "weekly_minimum"
	RuleBookedDelete  Rule = "booked_delete"
	RuleUnknownSlot   Rule = "unknown_slot"
	RuleCollision     Rule = "collision"
)

// ValidationError is a local rejection of a plan. The plan must not be sent.
type ValidationError struct {
	Rule   Rule
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// Validator evaluates plans against the post-mutation state of one week.
type Validator struct {
	MinWeeklySlots int
}

// New returns a validator with the given floor. A non-positive floor uses the default.
func New(minWeeklySlots int) Validator {
	if minWeeklySlots <= 0 {
		minWeeklySlots = DefaultMinWeeklySlots
	}
	return Validator{MinWeeklySlots: minWeeklySlots}
}

// Validate runs every rule with the default floor.
func Validate(week calendar.Week, snap slot.Snapshot, plan reconcile.Plan) error {
	return New(DefaultMinWeeklySlots).Validate(week, snap, plan)
}

// Validate approves plan or returns a *ValidationError.
// Only slots of week count toward the floor.
func (v Validator) Validate(week calendar.Week, snap slot.Snapshot, plan reconcile.Plan) error {
	existing := len(calendar.SlotsInWeek(week, snap.Slots))

	deleting := 0
	for _, id := range plan.ToDelete {
		s, ok := snap.SlotByID(id)
		if !ok {
			return &ValidationError{
				Rule:   RuleUnknownSlot,
				Reason: fmt.Sprintf("slot %s is no longer available, reload and try again", id),
			}
		}
		if calendar.IsBooked(calendar.DayOf(s.Start), slot.Hour(s.Start.Hour()), snap) {
			return &ValidationError{
				Rule:   RuleBookedDelete,
				Reason: fmt.Sprintf("slot at %s is booked and cannot be removed", s.Start.Format("Mon 02 Jan 15:04")),
			}
		}
		if week.Contains(s.Start) {
			deleting++
		}
	}

	creating := 0
	for _, d := range plan.ToCreate {
		if collides(d, snap.Slots) {
			return &ValidationError{
				Rule:   RuleCollision,
				Reason: fmt.Sprintf("a slot already exists at %s", d.Start.Format("Mon 02 Jan 15:04")),
			}
		}
		if week.Contains(d.Start) {
			creating++
		}
	}

	if total := existing - deleting + creating; total < v.MinWeeklySlots {
		return &ValidationError{
			Rule: RuleWeeklyMinimum,
			Reason: fmt.Sprintf("week of %s would have %d slots, at least %d are required",
				week.Monday().Format("2006-01-02"), total, v.MinWeeklySlots),
		}
	}
	return nil
}

func collides(d slot.Draft, slots []slot.Slot) bool {
	day := dateutil.TruncateToDay(d.Start)
	for _, s := range slots {
		if dateutil.SameHour(s.Start, day, d.Start.Hour()) {
			return true
		}
	}
	return false
}
