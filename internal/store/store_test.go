package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/javiermolinar/hourly/internal/slot"
)

type fakeBackend struct {
	slots        map[string][]slot.Slot
	appointments map[string][]slot.Appointment

	listErr   error
	apptErr   error
	createErr error
	deleteErr map[slot.ID]error

	onList  func()
	lists   int
	deletes []slot.ID
	nextID  int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		slots:        make(map[string][]slot.Slot),
		appointments: make(map[string][]slot.Appointment),
		deleteErr:    make(map[slot.ID]error),
	}
}

func (f *fakeBackend) ListSlots(_ context.Context, consultantID string) ([]slot.Slot, error) {
	f.lists++
	if f.onList != nil {
		f.onList()
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]slot.Slot(nil), f.slots[consultantID]...), nil
}

func (f *fakeBackend) ListAppointments(_ context.Context, consultantID string) ([]slot.Appointment, error) {
	if f.apptErr != nil {
		return nil, f.apptErr
	}
	return append([]slot.Appointment(nil), f.appointments[consultantID]...), nil
}

func (f *fakeBackend) CreateSlots(_ context.Context, consultantID string, drafts []slot.Draft) (int, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	for _, d := range drafts {
		f.nextID++
		f.slots[consultantID] = append(f.slots[consultantID], slot.Slot{
			ID:           slot.ID(string(rune('a' + f.nextID))),
			ConsultantID: consultantID,
			Start:        d.Start,
			End:          d.End,
			Status:       slot.StatusAvailable,
		})
	}
	return len(drafts), nil
}

func (f *fakeBackend) DeleteSlot(_ context.Context, id slot.ID) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	f.deletes = append(f.deletes, id)
	for c, list := range f.slots {
		for i, s := range list {
			if s.ID == id {
				f.slots[c] = append(list[:i:i], list[i+1:]...)
				return nil
			}
		}
	}
	return slot.ErrSlotNotFound
}

var base = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func seeded() *fakeBackend {
	f := newFakeBackend()
	f.slots["c1"] = []slot.Slot{
		{ID: "s1", ConsultantID: "c1", Start: base, End: base.Add(time.Hour), Status: slot.StatusAvailable},
		{ID: "s2", ConsultantID: "c1", Start: base.Add(time.Hour), End: base.Add(2 * time.Hour), Status: slot.StatusBooked},
	}
	f.slots["c2"] = []slot.Slot{
		{ID: "x1", ConsultantID: "c2", Start: base, End: base.Add(time.Hour), Status: slot.StatusAvailable},
	}
	f.appointments["c1"] = []slot.Appointment{{ID: "a1", SlotID: "s2", Status: slot.AppointmentConfirmed}}
	return f
}

func TestStore_LoadAll(t *testing.T) {
	s := New(seeded(), "c1", nil)
	if s.Loaded() {
		t.Error("new store should not be loaded")
	}
	if err := s.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if !s.Loaded() {
		t.Error("store should be loaded")
	}
	if got := len(s.Slots()); got != 2 {
		t.Errorf("Slots() = %d, want 2", got)
	}
	if got := len(s.Appointments()); got != 1 {
		t.Errorf("Appointments() = %d, want 1", got)
	}
}

func TestStore_LoadAllNoConsultant(t *testing.T) {
	s := New(seeded(), "", nil)
	if err := s.LoadAll(context.Background()); !errors.Is(err, ErrNoConsultant) {
		t.Errorf("LoadAll() error = %v, want ErrNoConsultant", err)
	}
}

func TestStore_FetchErrorKeepsLists(t *testing.T) {
	tests := []struct {
		name string
		fail func(f *fakeBackend)
		op   string
	}{
		{"slots", func(f *fakeBackend) { f.listErr = errors.New("boom") }, "slots"},
		{"appointments", func(f *fakeBackend) { f.apptErr = errors.New("boom") }, "appointments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := seeded()
			s := New(f, "c1", nil)
			if err := s.LoadAll(context.Background()); err != nil {
				t.Fatalf("LoadAll() error = %v", err)
			}

			tt.fail(f)
			err := s.LoadAll(context.Background())
			var ferr *FetchError
			if !errors.As(err, &ferr) {
				t.Fatalf("LoadAll() error = %v, want *FetchError", err)
			}
			if ferr.Op != tt.op {
				t.Errorf("Op = %q, want %q", ferr.Op, tt.op)
			}
			if got := len(s.Slots()); got != 2 {
				t.Errorf("Slots() = %d after failed reload, want 2", got)
			}
		})
	}
}

func TestStore_StaleLoadDiscarded(t *testing.T) {
	f := seeded()
	s := New(f, "c1", nil)
	f.onList = func() {
		f.onList = nil
		s.SetConsultant("c2")
	}

	if err := s.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v, want nil for a stale load", err)
	}
	if s.Loaded() {
		t.Error("stale load must not mark the store loaded")
	}
	if got := len(s.Slots()); got != 0 {
		t.Errorf("Slots() = %d, want 0 after stale load", got)
	}

	if err := s.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	slots := s.Slots()
	if len(slots) != 1 || slots[0].ID != "x1" {
		t.Errorf("Slots() = %v, want the c2 slot", slots)
	}
}

func TestStore_SetConsultantSameIsNoop(t *testing.T) {
	s := New(seeded(), "c1", nil)
	_ = s.LoadAll(context.Background())
	s.SetConsultant("c1")
	if !s.Loaded() || len(s.Slots()) != 2 {
		t.Error("setting the same consultant should keep the lists")
	}
}

func TestStore_BatchCreateReloads(t *testing.T) {
	f := seeded()
	s := New(f, "c1", nil)
	_ = s.LoadAll(context.Background())

	drafts := []slot.Draft{
		slot.NewDraft(base.Add(2 * time.Hour)),
		slot.NewDraft(base.Add(3 * time.Hour)),
	}
	n, err := s.BatchCreate(context.Background(), drafts)
	if err != nil {
		t.Fatalf("BatchCreate() error = %v", err)
	}
	if n != 2 {
		t.Errorf("created = %d, want 2", n)
	}
	if got := len(s.Slots()); got != 4 {
		t.Errorf("Slots() = %d, want 4 after reload", got)
	}
}

func TestStore_BatchCreateFailure(t *testing.T) {
	f := seeded()
	f.createErr = errors.New("status 500")
	s := New(f, "c1", nil)

	n, err := s.BatchCreate(context.Background(), []slot.Draft{slot.NewDraft(base.Add(5 * time.Hour))})
	if err == nil {
		t.Fatal("BatchCreate() error = nil, want failure")
	}
	if n != 0 {
		t.Errorf("created = %d, want 0", n)
	}
	if f.lists != 1 {
		t.Errorf("lists = %d, want a reload after failure", f.lists)
	}
}

func TestStore_BatchCreateRejectsBadDrafts(t *testing.T) {
	f := seeded()
	s := New(f, "c1", nil)

	bad := []slot.Draft{{Start: base.Add(30 * time.Minute), End: base.Add(90 * time.Minute)}}
	if _, err := s.BatchCreate(context.Background(), bad); !errors.Is(err, slot.ErrNotOnHour) {
		t.Errorf("BatchCreate() error = %v, want ErrNotOnHour", err)
	}
	if f.lists != 0 {
		t.Error("an invalid batch must not reach the backend")
	}
}

func TestStore_DeleteConflict(t *testing.T) {
	f := seeded()
	f.deleteErr["s1"] = slot.ErrSlotBooked
	s := New(f, "c1", nil)

	err := s.Delete(context.Background(), "s1")
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("Delete() error = %v, want *ConflictError", err)
	}
	if cerr.ID != "s1" {
		t.Errorf("ID = %q, want s1", cerr.ID)
	}
	if !errors.Is(err, slot.ErrSlotBooked) {
		t.Error("ConflictError should unwrap to ErrSlotBooked")
	}
	if f.lists != 1 {
		t.Errorf("lists = %d, want a forced reload", f.lists)
	}
}

func TestStore_Delete(t *testing.T) {
	f := seeded()
	s := New(f, "c1", nil)

	if err := s.Delete(context.Background(), "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := len(s.Slots()); got != 1 {
		t.Errorf("Slots() = %d, want 1", got)
	}
}

func TestStore_DeleteAllStopsAtFirstFailure(t *testing.T) {
	f := seeded()
	f.slots["c1"] = append(f.slots["c1"], slot.Slot{ID: "s3", ConsultantID: "c1", Start: base.Add(3 * time.Hour)})
	f.deleteErr["s3"] = slot.ErrSlotBooked
	s := New(f, "c1", nil)

	n, err := s.DeleteAll(context.Background(), []slot.ID{"s1", "s3", "s2"})
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("DeleteAll() error = %v, want *ConflictError", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if len(f.deletes) != 1 || f.deletes[0] != "s1" {
		t.Errorf("deletes = %v, want [s1]", f.deletes)
	}
	if f.lists != 1 {
		t.Errorf("lists = %d, want exactly one reload", f.lists)
	}
}

func TestStore_DeleteAllReloadsOnce(t *testing.T) {
	f := seeded()
	s := New(f, "c1", nil)

	n, err := s.DeleteAll(context.Background(), []slot.ID{"s1", "s2"})
	if err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	if f.lists != 1 {
		t.Errorf("lists = %d, want 1", f.lists)
	}
}

func TestStore_CopiesAreIndependent(t *testing.T) {
	s := New(seeded(), "c1", nil)
	_ = s.LoadAll(context.Background())

	snap := s.Snapshot()
	snap.Slots[0].Status = slot.StatusBooked
	if s.Slots()[0].IsBooked() {
		t.Error("mutating a snapshot must not touch the store")
	}
}
