// Package slot defines the core domain types for hourly availability.
package slot

import (
	"errors"
	"fmt"
	"time"
)

// Duration is the fixed length of every slot.
const Duration = time.Hour

// Validation errors.
var (
	ErrEmptyConsultant  = errors.New("consultant id cannot be empty")
	ErrNotOnHour        = errors.New("slot must start on the hour")
	ErrInvalidHour      = errors.New("hour must be in HH:00 format between 00:00 and 23:00")
	ErrInvalidEndOfSlot = errors.New("slot end must be exactly one hour after start")
)

// Domain errors shared by every backend.
var (
	ErrSlotBooked    = errors.New("slot is booked")
	ErrSlotNotFound  = errors.New("slot not found")
	ErrDuplicateSlot = errors.New("slot already exists for this hour")

	ErrAppointmentNotFound = errors.New("appointment not found")
)

// ID identifies a persisted slot. It is assigned by the backend and opaque to the core.
type ID string

// Status represents the state of a slot.
type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusBooked:
		return true
	default:
		return false
	}
}

// Slot is one hour of declared availability owned by a consultant.
type Slot struct {
	ID           ID
	ConsultantID string
	Start        time.Time
	End          time.Time
	Status       Status
}

// IsBooked returns true if an appointment holds the slot.
func (s Slot) IsBooked() bool {
	return s.Status == StatusBooked
}

// HasPassed reports whether the slot started before now.
func (s Slot) HasPassed(now time.Time) bool {
	return s.Start.Before(now)
}

// Draft is a proposed slot submitted in a batch create.
type Draft struct {
	Start time.Time
	End   time.Time
}

// NewDraft returns the one-hour draft starting at start.
func NewDraft(start time.Time) Draft {
	return Draft{Start: start, End: start.Add(Duration)}
}

// Validate checks that the draft spans exactly one hour starting on the hour.
func (d Draft) Validate() error {
	if d.Start.Minute() != 0 || d.Start.Second() != 0 || d.Start.Nanosecond() != 0 {
		return fmt.Errorf("%s: %w", d.Start.Format(time.RFC3339), ErrNotOnHour)
	}
	if !d.End.Equal(d.Start.Add(Duration)) {
		return fmt.Errorf("%s: %w", d.Start.Format(time.RFC3339), ErrInvalidEndOfSlot)
	}
	return nil
}

// ValidateDrafts validates every draft and rejects repeated start times.
func ValidateDrafts(consultantID string, drafts []Draft) error {
	if consultantID == "" {
		return ErrEmptyConsultant
	}
	seen := make(map[int64]bool, len(drafts))
	for _, d := range drafts {
		if err := d.Validate(); err != nil {
			return err
		}
		key := d.Start.Unix()
		if seen[key] {
			return fmt.Errorf("%s: %w", d.Start.Format(time.RFC3339), ErrDuplicateSlot)
		}
		seen[key] = true
	}
	return nil
}
