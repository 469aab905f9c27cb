package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/javiermolinar/hourly/internal/slot"
)

func TestAppointment_SlotTimeForms(t *testing.T) {
	nine := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		body      string
		wantID    slot.ID
		wantStart *time.Time
	}{
		{
			name:      "embedded object",
			body:      `{"_id":"a1","slot_time":{"_id":"s1","start_time":"2024-06-10T09:00:00Z"}}`,
			wantID:    "s1",
			wantStart: &nine,
		},
		{
			name:   "bare id",
			body:   `{"_id":"a1","slot_time":"s1"}`,
			wantID: "s1",
		},
		{
			name: "null",
			body: `{"_id":"a1","slot_time":null}`,
		},
		{
			name: "missing",
			body: `{"_id":"a1"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Appointment
			if err := json.Unmarshal([]byte(tt.body), &a); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			got := a.ToAppointment()
			if got.SlotID != tt.wantID {
				t.Errorf("SlotID = %q, want %q", got.SlotID, tt.wantID)
			}
			switch {
			case tt.wantStart == nil && got.SlotStart != nil:
				t.Errorf("SlotStart = %v, want nil", got.SlotStart)
			case tt.wantStart != nil && (got.SlotStart == nil || !got.SlotStart.Equal(*tt.wantStart)):
				t.Errorf("SlotStart = %v, want %v", got.SlotStart, tt.wantStart)
			}
		})
	}
}

func TestAppointment_BareIDHasNoEffectiveStart(t *testing.T) {
	var a Appointment
	if err := json.Unmarshal([]byte(`{"_id":"a1","slot_time":"s1"}`), &a); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := a.ToAppointment().EffectiveStart(); ok {
		t.Error("an appointment with only a slot id should have no effective start")
	}
}

func TestAppointment_DateBookingWins(t *testing.T) {
	body := `{"_id":"a1","dateBooking":"2024-06-10T11:00:00Z","slot_time":{"_id":"s1","start_time":"2024-06-10T09:00:00Z"}}`
	var a Appointment
	if err := json.Unmarshal([]byte(body), &a); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	start, ok := a.ToAppointment().EffectiveStart()
	if !ok || start.Hour() != 11 {
		t.Errorf("EffectiveStart() = %v, %v, want 11:00", start, ok)
	}
}

func TestSlotRef_InvalidJSON(t *testing.T) {
	var r SlotRef
	if err := r.UnmarshalJSON([]byte("42")); err == nil {
		t.Error("UnmarshalJSON(42) error = nil, want error")
	}
}

func TestSlot_ToSlotDefaults(t *testing.T) {
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	s := Slot{ID: "s1", StartTime: start, Status: "weird"}.ToSlot()
	if s.Status != slot.StatusAvailable {
		t.Errorf("Status = %q, want available", s.Status)
	}
	if !s.End.Equal(start.Add(time.Hour)) {
		t.Errorf("End = %v, want start+1h", s.End)
	}
}
