// Package api holds the JSON shapes of the slot REST surface, shared by the
// HTTP client and the development server.
package api

import (
	"time"

	"github.com/javiermolinar/hourly/internal/slot"
)

// Slot is a persisted slot as served by GET /slot-time.
type Slot struct {
	ID           string    `json:"_id"`
	ConsultantID string    `json:"consultant_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
}

// SlotDraft is one entry of a batch create.
type SlotDraft struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time"   binding:"required"`
}

// CreateSlotsRequest is the body of POST /slot-time.
type CreateSlotsRequest struct {
	ConsultantID string      `json:"consultant_id" binding:"required"`
	Slots        []SlotDraft `json:"slots"         binding:"required,min=1,dive"`
}

// CreateSlotsResponse is returned by POST /slot-time.
type CreateSlotsResponse struct {
	Created int    `json:"created"`
	Slots   []Slot `json:"slots"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FromSlot converts a domain slot to its wire form.
func FromSlot(s slot.Slot) Slot {
	return Slot{
		ID:           string(s.ID),
		ConsultantID: s.ConsultantID,
		StartTime:    s.Start,
		EndTime:      s.End,
		Status:       string(s.Status),
	}
}

// ToSlot converts the wire form to a domain slot. An unknown status is read
// as available, since only "booked" locks a cell.
func (s Slot) ToSlot() slot.Slot {
	status := slot.Status(s.Status)
	if !status.Valid() {
		status = slot.StatusAvailable
	}
	end := s.EndTime
	if end.IsZero() {
		end = s.StartTime.Add(slot.Duration)
	}
	return slot.Slot{
		ID:           slot.ID(s.ID),
		ConsultantID: s.ConsultantID,
		Start:        s.StartTime,
		End:          end,
		Status:       status,
	}
}

// NewCreateSlotsRequest builds the batch create body.
func NewCreateSlotsRequest(consultantID string, drafts []slot.Draft) CreateSlotsRequest {
	req := CreateSlotsRequest{
		ConsultantID: consultantID,
		Slots:        make([]SlotDraft, 0, len(drafts)),
	}
	for _, d := range drafts {
		req.Slots = append(req.Slots, SlotDraft{StartTime: d.Start, EndTime: d.End})
	}
	return req
}

// Drafts converts the request body back to domain drafts.
func (r CreateSlotsRequest) Drafts() []slot.Draft {
	out := make([]slot.Draft, 0, len(r.Slots))
	for _, d := range r.Slots {
		out = append(out, slot.Draft{Start: d.StartTime, End: d.EndTime})
	}
	return out
}
