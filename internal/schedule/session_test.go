package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/javiermolinar/hourly/internal/constraint"
	"github.com/javiermolinar/hourly/internal/selection"
	"github.com/javiermolinar/hourly/internal/slot"
	"github.com/javiermolinar/hourly/internal/store"
)

// memBackend is an in-memory store.Backend.
type memBackend struct {
	slots     []slot.Slot
	appts     []slot.Appointment
	nextID    int
	deleteErr map[slot.ID]error
	creates   int
}

func (m *memBackend) ListSlots(context.Context, string) ([]slot.Slot, error) {
	return append([]slot.Slot(nil), m.slots...), nil
}

func (m *memBackend) ListAppointments(context.Context, string) ([]slot.Appointment, error) {
	return append([]slot.Appointment(nil), m.appts...), nil
}

func (m *memBackend) CreateSlots(_ context.Context, consultantID string, drafts []slot.Draft) (int, error) {
	m.creates++
	for _, d := range drafts {
		m.nextID++
		m.slots = append(m.slots, slot.Slot{
			ID:           slot.ID(fmt.Sprintf("new%d", m.nextID)),
			ConsultantID: consultantID,
			Start:        d.Start,
			End:          d.End,
			Status:       slot.StatusAvailable,
		})
	}
	return len(drafts), nil
}

func (m *memBackend) DeleteSlot(_ context.Context, id slot.ID) error {
	if err := m.deleteErr[id]; err != nil {
		return err
	}
	for i, s := range m.slots {
		if s.ID == id {
			m.slots = append(m.slots[:i], m.slots[i+1:]...)
			return nil
		}
	}
	return slot.ErrSlotNotFound
}

func (m *memBackend) add(id string, start time.Time, status slot.Status) {
	m.slots = append(m.slots, slot.Slot{
		ID:           slot.ID(id),
		ConsultantID: "c1",
		Start:        start,
		End:          start.Add(slot.Duration),
		Status:       status,
	})
}

// monday is 2024-06-10; the session clock sits at 07:00 that day so every
// visible hour of the week is in the future.
var monday = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

func at(day, clock int) time.Time {
	return monday.AddDate(0, 0, day).Add(time.Duration(clock) * time.Hour)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// seedWeek adds 20 available slots, Monday..Friday 08:00-11:00.
func seedWeek(m *memBackend) {
	for d := 0; d < 5; d++ {
		for h := 8; h < 12; h++ {
			m.add(fmt.Sprintf("s%d%d", d, h), at(d, h), slot.StatusAvailable)
		}
	}
}

func newTestSession(t *testing.T, m *memBackend) *Session {
	t.Helper()
	hours, err := slot.Range("08:00", "18:00")
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	st := store.New(m, "c1", nil)
	if err := st.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	return New(st, Config{
		Hours:          hours,
		MinWeeklySlots: constraint.DefaultMinWeeklySlots,
		Now:            fixedClock(at(0, 7)),
	}, nil)
}

// row converts a clock hour to a grid row.
func row(clock int) int {
	return clock - 8
}

func TestSession_BookedCellByAppointment(t *testing.T) {
	m := &memBackend{}
	m.add("s1", at(0, 9), slot.StatusAvailable)
	booking := at(0, 9)
	m.appts = []slot.Appointment{{ID: "a1", Booking: &booking, Status: slot.AppointmentConfirmed}}
	s := newTestSession(t, m)

	v := s.Cell(0, row(9))
	if v.Slot == nil || v.Slot.ID != "s1" {
		t.Errorf("Slot = %v, want s1", v.Slot)
	}
	if v.Appointment == nil || v.Appointment.ID != "a1" {
		t.Errorf("Appointment = %v, want a1", v.Appointment)
	}
	if !v.Booked || !v.Locked() {
		t.Error("cell should be booked and locked")
	}

	if err := s.PointerDown(0, row(9)); !errors.Is(err, selection.ErrCellLocked) {
		t.Errorf("PointerDown() error = %v, want ErrCellLocked", err)
	}
	_ = s.ToggleDay(0)
	plan, _ := s.Prepare()
	for _, id := range plan.ToDelete {
		if id == "s1" {
			t.Fatal("booked slot s1 scheduled for deletion")
		}
	}
}

func TestSession_PastCellsLocked(t *testing.T) {
	m := &memBackend{}
	s := newTestSession(t, m)
	s.now = fixedClock(at(0, 12))

	if !s.Cell(0, row(11)).Past {
		t.Error("11:00 should be past at 12:00")
	}
	if s.Cell(0, row(12)).Past {
		t.Error("12:00 should not be past at 12:00")
	}
	if err := s.PointerDown(0, row(10)); !errors.Is(err, selection.ErrCellLocked) {
		t.Errorf("PointerDown(past) error = %v, want ErrCellLocked", err)
	}

	_ = s.ToggleDay(0)
	if got := len(s.Marked()); got != 6 {
		t.Errorf("Marked() = %d, want 6 future hours", got)
	}
}

func TestSession_SetWeekOffsetClearsSelection(t *testing.T) {
	s := newTestSession(t, &memBackend{})
	_ = s.PointerDown(2, 0)
	s.PointerUp()

	s.NextWeek()
	if s.WeekOffset() != 1 {
		t.Errorf("WeekOffset() = %d, want 1", s.WeekOffset())
	}
	if got := len(s.Marked()); got != 0 {
		t.Errorf("Marked() = %d after week change, want 0", got)
	}
	if !s.Week().Monday().Equal(monday.AddDate(0, 0, 7)) {
		t.Errorf("Monday = %v, want 2024-06-17", s.Week().Monday())
	}

	s.PrevWeek()
	s.PrevWeek()
	if !s.Week().Monday().Equal(monday.AddDate(0, 0, -7)) {
		t.Errorf("Monday = %v, want 2024-06-03", s.Week().Monday())
	}
}

func TestSession_CommitCreatesAndDeletes(t *testing.T) {
	m := &memBackend{}
	seedWeek(m)
	s := newTestSession(t, m)

	if err := s.SelectRange(5, row(9), row(10)); err != nil {
		t.Fatalf("SelectRange() error = %v", err)
	}
	_ = s.PointerDown(0, row(8))
	s.PointerUp()

	res, err := s.Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if res.Created != 2 || res.Deleted != 1 {
		t.Errorf("Result = %+v, want 2 created 1 deleted", res)
	}
	if len(m.slots) != 21 {
		t.Errorf("backend slots = %d, want 21", len(m.slots))
	}
	if len(s.Marked()) != 0 {
		t.Error("selection should be cleared after a successful commit")
	}
	if v := s.Cell(5, row(9)); v.Slot == nil {
		t.Error("store should be reloaded with the new slot")
	}
}

func TestSession_CommitBelowFloorKeepsSelection(t *testing.T) {
	m := &memBackend{}
	seedWeek(m)
	s := newTestSession(t, m)

	_ = s.SelectRange(1, row(8), row(10))
	res, err := s.Commit(context.Background())

	var verr *constraint.ValidationError
	if !errors.As(err, &verr) || verr.Rule != constraint.RuleWeeklyMinimum {
		t.Fatalf("Commit() error = %v, want weekly minimum violation", err)
	}
	if len(res.Plan.ToDelete) != 3 {
		t.Errorf("plan deletes = %d, want 3", len(res.Plan.ToDelete))
	}
	if len(m.slots) != 20 {
		t.Errorf("backend slots = %d, want 20 untouched", len(m.slots))
	}
	if len(s.Marked()) != 3 {
		t.Errorf("Marked() = %d, want selection kept", len(s.Marked()))
	}
}

func TestSession_CommitNothing(t *testing.T) {
	s := newTestSession(t, &memBackend{})
	if _, err := s.Commit(context.Background()); !errors.Is(err, ErrNothingToCommit) {
		t.Errorf("Commit() error = %v, want ErrNothingToCommit", err)
	}
}

func TestSession_CommitInFlight(t *testing.T) {
	m := &memBackend{}
	seedWeek(m)
	s := newTestSession(t, m)
	_ = s.ToggleDay(5)

	plan, err := s.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	s.busy.Store(true)
	if _, err := s.Commit(context.Background()); !errors.Is(err, ErrCommitInFlight) {
		t.Errorf("Commit() error = %v, want ErrCommitInFlight", err)
	}
	if _, err := s.Apply(context.Background(), plan); !errors.Is(err, ErrCommitInFlight) {
		t.Errorf("Apply() error = %v, want ErrCommitInFlight", err)
	}
	if m.creates != 0 {
		t.Error("no batch should be sent while a commit is in flight")
	}

	s.busy.Store(false)
	if _, err := s.Apply(context.Background(), plan); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if s.Busy() {
		t.Error("Busy() should be false after Apply returns")
	}
}

func TestSession_DeleteConflictAfterCreate(t *testing.T) {
	m := &memBackend{deleteErr: map[slot.ID]error{"s08": slot.ErrSlotBooked}}
	seedWeek(m)
	s := newTestSession(t, m)

	_ = s.SelectRange(6, row(8), row(9))
	_ = s.PointerDown(0, row(8))
	s.PointerUp()

	res, err := s.Commit(context.Background())
	var cerr *store.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("Commit() error = %v, want *store.ConflictError", err)
	}
	if res.Created != 2 || res.Deleted != 0 {
		t.Errorf("Result = %+v, want 2 created 0 deleted", res)
	}
	if len(s.Marked()) != 0 {
		t.Error("selection should be cleared once creates went through")
	}
}

func TestSession_Grid(t *testing.T) {
	m := &memBackend{}
	m.add("s1", at(3, 14), slot.StatusBooked)
	s := newTestSession(t, m)

	grid := s.Grid()
	for d, col := range grid {
		if len(col) != 10 {
			t.Fatalf("day %d has %d rows, want 10", d, len(col))
		}
	}
	if !grid[3][row(14)].Booked {
		t.Error("Thursday 14:00 should be booked")
	}
	if grid[3][row(14)].Start.Hour() != 14 {
		t.Errorf("Start = %v, want 14:00", grid[3][row(14)].Start)
	}
}

func TestSession_HourIndex(t *testing.T) {
	s := newTestSession(t, &memBackend{})
	if i, ok := s.HourIndex(slot.Hour(13)); !ok || i != 5 {
		t.Errorf("HourIndex(13) = %d, %v, want 5, true", i, ok)
	}
	if _, ok := s.HourIndex(slot.Hour(20)); ok {
		t.Error("HourIndex(20) should be out of range")
	}
}

func TestSession_RowOf(t *testing.T) {
	s := newTestSession(t, &memBackend{})
	if r, err := s.RowOf(slot.Hour(9)); err != nil || r != 1 {
		t.Errorf("RowOf(9) = %d, %v, want 1, nil", r, err)
	}
	if _, err := s.RowOf(slot.Hour(7)); !errors.Is(err, ErrHourNotVisible) {
		t.Errorf("RowOf(7) error = %v, want ErrHourNotVisible", err)
	}
}

func TestSession_WeeklyCount(t *testing.T) {
	m := &memBackend{}
	seedWeek(m)
	s := newTestSession(t, m)

	if cur, proj := s.WeeklyCount(); cur != 20 || proj != 20 {
		t.Errorf("WeeklyCount() = %d, %d, want 20, 20", cur, proj)
	}

	_ = s.SelectRange(5, row(9), row(11))
	_ = s.PointerDown(0, row(8))
	s.PointerUp()

	if cur, proj := s.WeeklyCount(); cur != 20 || proj != 22 {
		t.Errorf("WeeklyCount() = %d, %d, want 20, 22", cur, proj)
	}
}

func TestSession_SetConsultant(t *testing.T) {
	m := &memBackend{}
	seedWeek(m)
	s := newTestSession(t, m)

	if err := s.PointerDown(5, row(9)); err != nil {
		t.Fatalf("PointerDown() error = %v", err)
	}
	s.PointerUp()

	if err := s.SetConsultant("c2"); err != nil {
		t.Fatalf("SetConsultant() error = %v", err)
	}
	if got := s.Consultant(); got != "c2" {
		t.Errorf("Consultant() = %q, want c2", got)
	}
	if got := len(s.Marked()); got != 0 {
		t.Errorf("marked = %d, want 0", got)
	}
	if got := len(s.Snapshot().Slots); got != 0 {
		t.Errorf("slots = %d, want 0 before reload", got)
	}
}

func TestSession_SetConsultantWhileBusy(t *testing.T) {
	s := newTestSession(t, &memBackend{})
	s.busy.Store(true)

	if err := s.SetConsultant("c2"); !errors.Is(err, ErrCommitInFlight) {
		t.Errorf("SetConsultant() error = %v, want %v", err, ErrCommitInFlight)
	}
	if got := s.Consultant(); got != "c1" {
		t.Errorf("Consultant() = %q, want c1", got)
	}
}
