// Package store keeps the local copy of a consultant's slots and appointments
// and routes every mutation through a backend, reloading after each one.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/javiermolinar/hourly/internal/slot"
)

// Backend is the persistence surface the store depends on.
// Implementations: the REST client in internal/remote and the sqlite
// repository in internal/db.
type Backend interface {
	ListSlots(ctx context.Context, consultantID string) ([]slot.Slot, error)
	// CreateSlots inserts every draft or none of them.
	CreateSlots(ctx context.Context, consultantID string, drafts []slot.Draft) (int, error)
	// DeleteSlot returns slot.ErrSlotBooked if the slot is held by an appointment.
	DeleteSlot(ctx context.Context, id slot.ID) error
	ListAppointments(ctx context.Context, consultantID string) ([]slot.Appointment, error)
}

// Store is the in-memory mirror of the backend for one consultant.
type Store struct {
	backend Backend
	logger  *zap.Logger

	mu           sync.RWMutex
	consultantID string
	generation   uint64
	slots        []slot.Slot
	appointments []slot.Appointment
	loaded       bool
}

// New creates a store for consultantID. A nil logger disables logging.
func New(backend Backend, consultantID string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend:      backend,
		logger:       logger.Named("store"),
		consultantID: consultantID,
	}
}

// SetConsultant switches the active consultant and drops the loaded lists.
// A LoadAll still in flight for the previous consultant is discarded.
func (s *Store) SetConsultant(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == s.consultantID {
		return
	}
	s.consultantID = id
	s.generation++
	s.slots = nil
	s.appointments = nil
	s.loaded = false
}

// Consultant returns the active consultant id.
func (s *Store) Consultant() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.consultantID
}

// Loaded returns true once a LoadAll has succeeded for the active consultant.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Slots returns a copy of the loaded slots.
func (s *Store) Slots() []slot.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]slot.Slot(nil), s.slots...)
}

// Appointments returns a copy of the loaded appointments.
func (s *Store) Appointments() []slot.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]slot.Appointment(nil), s.appointments...)
}

// Snapshot returns a copy of everything loaded for the active consultant.
func (s *Store) Snapshot() slot.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slot.Snapshot{
		ConsultantID: s.consultantID,
		Slots:        s.slots,
		Appointments: s.appointments,
	}.Clone()
}

// LoadAll fetches slots and appointments and replaces both lists.
// On failure it returns a *FetchError and the previous lists stay in place.
// A result that arrives after the consultant changed is dropped without error.
func (s *Store) LoadAll(ctx context.Context) error {
	s.mu.RLock()
	consultantID, gen := s.consultantID, s.generation
	s.mu.RUnlock()

	if consultantID == "" {
		return ErrNoConsultant
	}

	slots, err := s.backend.ListSlots(ctx, consultantID)
	if err != nil {
		s.logger.Warn("load slots failed", zap.String("consultant_id", consultantID), zap.Error(err))
		return &FetchError{Op: "slots", Err: err}
	}
	appts, err := s.backend.ListAppointments(ctx, consultantID)
	if err != nil {
		s.logger.Warn("load appointments failed", zap.String("consultant_id", consultantID), zap.Error(err))
		return &FetchError{Op: "appointments", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.Debug("discarding stale load", zap.String("consultant_id", consultantID))
		return nil
	}
	s.slots = slots
	s.appointments = appts
	s.loaded = true

	s.logger.Debug("loaded",
		zap.String("consultant_id", consultantID),
		zap.Int("slots", len(slots)),
		zap.Int("appointments", len(appts)),
	)
	return nil
}

// BatchCreate submits drafts in one request. Any failure is a failure of the
// whole batch. The store reloads afterwards in both cases, so a batch that
// reached the backend before the error surfaced still shows up.
func (s *Store) BatchCreate(ctx context.Context, drafts []slot.Draft) (int, error) {
	consultantID := s.Consultant()
	if consultantID == "" {
		return 0, ErrNoConsultant
	}
	if len(drafts) == 0 {
		return 0, nil
	}
	if err := slot.ValidateDrafts(consultantID, drafts); err != nil {
		return 0, fmt.Errorf("invalid batch: %w", err)
	}

	n, err := s.backend.CreateSlots(ctx, consultantID, drafts)
	if err != nil {
		s.logger.Error("batch create failed",
			zap.String("consultant_id", consultantID),
			zap.Int("drafts", len(drafts)),
			zap.Error(err),
		)
		s.reload(ctx)
		return 0, fmt.Errorf("creating %d slots: %w", len(drafts), err)
	}

	s.logger.Info("slots created", zap.String("consultant_id", consultantID), zap.Int("count", n))
	return n, s.LoadAll(ctx)
}

// Delete removes one slot and reloads.
// A slot booked in the meantime yields a *ConflictError.
func (s *Store) Delete(ctx context.Context, id slot.ID) error {
	if err := s.deleteOne(ctx, id); err != nil {
		s.reload(ctx)
		return err
	}
	return s.LoadAll(ctx)
}

// DeleteAll removes the slots one by one, stopping at the first failure,
// and reloads once. It returns how many were deleted.
func (s *Store) DeleteAll(ctx context.Context, ids []slot.ID) (int, error) {
	deleted := 0
	for _, id := range ids {
		if err := s.deleteOne(ctx, id); err != nil {
			s.reload(ctx)
			return deleted, err
		}
		deleted++
	}
	if deleted == 0 {
		return 0, nil
	}
	return deleted, s.LoadAll(ctx)
}

func (s *Store) deleteOne(ctx context.Context, id slot.ID) error {
	err := s.backend.DeleteSlot(ctx, id)
	switch {
	case err == nil:
		s.logger.Info("slot deleted", zap.String("slot_id", string(id)))
		return nil
	case errors.Is(err, slot.ErrSlotBooked):
		s.logger.Warn("delete refused, slot booked", zap.String("slot_id", string(id)))
		return &ConflictError{ID: id, Err: err}
	default:
		s.logger.Error("delete failed", zap.String("slot_id", string(id)), zap.Error(err))
		return fmt.Errorf("deleting slot %s: %w", id, err)
	}
}

// reload refreshes after a failed mutation. Its own error is only logged;
// the mutation error is what the caller needs.
func (s *Store) reload(ctx context.Context) {
	if err := s.LoadAll(ctx); err != nil {
		s.logger.Warn("reload after failure", zap.Error(err))
	}
}
