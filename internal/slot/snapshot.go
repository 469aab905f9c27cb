package slot

// Snapshot is a by-value copy of a consultant's persisted state.
type Snapshot struct {
	ConsultantID string
	Slots        []Slot
	Appointments []Appointment
}

// SlotByID returns the slot with the given id.
func (s Snapshot) SlotByID(id ID) (Slot, bool) {
	for _, sl := range s.Slots {
		if sl.ID == id {
			return sl, true
		}
	}
	return Slot{}, false
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{ConsultantID: s.ConsultantID}
	if s.Slots != nil {
		out.Slots = append(make([]Slot, 0, len(s.Slots)), s.Slots...)
	}
	if s.Appointments != nil {
		out.Appointments = append(make([]Appointment, 0, len(s.Appointments)), s.Appointments...)
	}
	return out
}
