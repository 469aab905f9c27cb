package slot

import "time"

// AppointmentStatus represents the booking lifecycle as reported by the booking subsystem.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCanceled  AppointmentStatus = "canceled"
)

// Appointment is a booking attached to a consultant's hour. It is read-only here.
type Appointment struct {
	ID         string
	SlotID     ID         // reference only, never traversed
	SlotStart  *time.Time // embedded slot-time start, if the backend sent one
	Booking    *time.Time // dateBooking, takes precedence over SlotStart
	CustomerID string
	ServiceID  string
	Status     AppointmentStatus
	CreatedAt  time.Time
}

// EffectiveStart returns the hour the appointment occupies.
// The booking date wins over the embedded slot time; older records only carry the latter.
func (a Appointment) EffectiveStart() (time.Time, bool) {
	if a.Booking != nil && !a.Booking.IsZero() {
		return *a.Booking, true
	}
	if a.SlotStart != nil && !a.SlotStart.IsZero() {
		return *a.SlotStart, true
	}
	return time.Time{}, false
}
