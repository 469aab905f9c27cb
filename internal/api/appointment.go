package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/javiermolinar/hourly/internal/slot"
)

// SlotRef is the slot_time field of an appointment. The backend sends either
// the populated slot object or the bare slot id.
type SlotRef struct {
	ID        string
	StartTime *time.Time
}

type slotRefObject struct {
	ID        string     `json:"_id"`
	StartTime *time.Time `json:"start_time,omitempty"`
}

// UnmarshalJSON accepts a string id, an object, or null.
func (r *SlotRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = SlotRef{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = SlotRef{ID: id}
		return nil
	case len(data) > 0 && data[0] == '{':
		var obj slotRefObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*r = SlotRef{ID: obj.ID, StartTime: obj.StartTime}
		return nil
	default:
		return fmt.Errorf("slot_time: unexpected JSON %s", data)
	}
}

// MarshalJSON writes the object form when the start time is known.
func (r SlotRef) MarshalJSON() ([]byte, error) {
	if r.StartTime == nil {
		return json.Marshal(r.ID)
	}
	return json.Marshal(slotRefObject{ID: r.ID, StartTime: r.StartTime})
}

// Appointment is a record of GET /appointments.
type Appointment struct {
	ID          string     `json:"_id"`
	SlotTime    *SlotRef   `json:"slot_time,omitempty"`
	DateBooking *time.Time `json:"dateBooking,omitempty"`
	CustomerID  string     `json:"customer_id,omitempty"`
	ServiceID   string     `json:"service_id,omitempty"`
	Status      string     `json:"status,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// BookRequest is the body of POST /appointments on the development server.
type BookRequest struct {
	SlotID     string `json:"slot_id"     binding:"required"`
	CustomerID string `json:"customer_id" binding:"required"`
	ServiceID  string `json:"service_id"`
}

// FromAppointment converts a domain appointment to its wire form.
func FromAppointment(a slot.Appointment) Appointment {
	out := Appointment{
		ID:          a.ID,
		DateBooking: a.Booking,
		CustomerID:  a.CustomerID,
		ServiceID:   a.ServiceID,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
	}
	if a.SlotID != "" || a.SlotStart != nil {
		out.SlotTime = &SlotRef{ID: string(a.SlotID), StartTime: a.SlotStart}
	}
	return out
}

// ToAppointment converts the wire form to a domain appointment.
func (a Appointment) ToAppointment() slot.Appointment {
	out := slot.Appointment{
		ID:         a.ID,
		Booking:    a.DateBooking,
		CustomerID: a.CustomerID,
		ServiceID:  a.ServiceID,
		Status:     slot.AppointmentStatus(a.Status),
		CreatedAt:  a.CreatedAt,
	}
	if a.SlotTime != nil {
		out.SlotID = slot.ID(a.SlotTime.ID)
		out.SlotStart = a.SlotTime.StartTime
	}
	return out
}
