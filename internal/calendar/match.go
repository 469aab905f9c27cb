package calendar

import (
	"github.com/javiermolinar/hourly/internal/dateutil"
	"github.com/javiermolinar/hourly/internal/slot"
)

// FindSlot returns the slot starting at hour on day.
// Matching is by calendar date and hour, not by instant, so backend
// serialization drift below one hour does not break the lookup.
func FindSlot(day Day, hour slot.Hour, slots []slot.Slot) (slot.Slot, bool) {
	for _, s := range slots {
		if dateutil.SameHour(s.Start, day.Date, int(hour)) {
			return s, true
		}
	}
	return slot.Slot{}, false
}

// FindAppointment returns the appointment occupying hour on day, using the
// appointment's effective start (booking date first, then embedded slot time).
// A live appointment wins over canceled ones for the same hour.
func FindAppointment(day Day, hour slot.Hour, appts []slot.Appointment) (slot.Appointment, bool) {
	var canceled *slot.Appointment
	for i, a := range appts {
		if !occupies(a, day, hour) {
			continue
		}
		if a.Status != slot.AppointmentCanceled {
			return a, true
		}
		if canceled == nil {
			canceled = &appts[i]
		}
	}
	if canceled != nil {
		return *canceled, true
	}
	return slot.Appointment{}, false
}

// IsBooked reports whether the cell holds a booked slot or a live appointment.
// Canceled appointments do not lock the cell.
func IsBooked(day Day, hour slot.Hour, snap slot.Snapshot) bool {
	if s, ok := FindSlot(day, hour, snap.Slots); ok && s.IsBooked() {
		return true
	}
	for _, a := range snap.Appointments {
		if a.Status != slot.AppointmentCanceled && occupies(a, day, hour) {
			return true
		}
	}
	return false
}

func occupies(a slot.Appointment, day Day, hour slot.Hour) bool {
	start, ok := a.EffectiveStart()
	return ok && dateutil.SameHour(start, day.Date, int(hour))
}

// SlotsInWeek returns the slots whose start falls inside w.
func SlotsInWeek(w Week, slots []slot.Slot) []slot.Slot {
	var out []slot.Slot
	for _, s := range slots {
		if w.Contains(s.Start) {
			out = append(out, s)
		}
	}
	return out
}
