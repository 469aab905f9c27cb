// Package postgres provides the PostgreSQL slot repository of the dev server.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/javiermolinar/hourly/internal/slot"
)

// uniqueViolation is the SQLSTATE of a unique constraint failure.
const uniqueViolation = "23505"

// Repository stores slots and appointments in PostgreSQL.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Open connects to dsn and checks the connection.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Repository{pool: pool, logger: logger.Named("postgres")}, nil
}

// Close closes the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// Ping checks the connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// ListSlots returns every slot of a consultant ordered by start time.
func (r *Repository) ListSlots(ctx context.Context, consultantID string) ([]slot.Slot, error) {
	query := `
		SELECT id::text, consultant_id, start_time, end_time, status
		FROM slots
		WHERE consultant_id = $1
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, consultantID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []slot.Slot
	for rows.Next() {
		var (
			s      slot.Slot
			id     string
			status string
		)
		if err := rows.Scan(&id, &s.ConsultantID, &s.Start, &s.End, &status); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		s.ID = slot.ID(id)
		s.Status = slot.Status(status)
		slots = append(slots, s)
	}

	return slots, rows.Err()
}

// CreateSlots inserts every draft in one transaction.
func (r *Repository) CreateSlots(ctx context.Context, consultantID string, drafts []slot.Draft) (int, error) {
	if err := slot.ValidateDrafts(consultantID, drafts); err != nil {
		return 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, d := range drafts {
		batch.Queue(`
			INSERT INTO slots (id, consultant_id, start_time, end_time, status)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), consultantID, d.Start.UTC(), d.End.UTC(), string(slot.StatusAvailable))
	}

	results := tx.SendBatch(ctx, batch)
	for range drafts {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			if isUniqueViolation(err) {
				return 0, fmt.Errorf("create slots: %w", slot.ErrDuplicateSlot)
			}
			return 0, fmt.Errorf("create slots: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("create slots: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	r.logger.Debug("slots created", zap.String("consultant_id", consultantID), zap.Int("count", len(drafts)))
	return len(drafts), nil
}

// DeleteSlot removes a slot that no live appointment holds.
func (r *Repository) DeleteSlot(ctx context.Context, id slot.ID) error {
	slotID, err := uuid.Parse(string(id))
	if err != nil {
		return fmt.Errorf("slot %s: %w", id, slot.ErrSlotNotFound)
	}

	tag, err := r.pool.Exec(ctx, `
		DELETE FROM slots
		WHERE id = $1
		  AND status = 'available'
		  AND NOT EXISTS (
		      SELECT 1 FROM appointments
		      WHERE slot_id = $1 AND status <> 'canceled'
		  )
	`, slotID)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM slots WHERE id = $1)`, slotID).Scan(&exists); err != nil {
		return fmt.Errorf("check slot: %w", err)
	}
	if !exists {
		return fmt.Errorf("slot %s: %w", id, slot.ErrSlotNotFound)
	}
	return fmt.Errorf("slot %s: %w", id, slot.ErrSlotBooked)
}

// ListAppointments returns the appointments of a consultant with the start
// of the slot each one holds.
func (r *Repository) ListAppointments(ctx context.Context, consultantID string) ([]slot.Appointment, error) {
	query := `
		SELECT a.id::text, a.slot_id::text, s.start_time, a.date_booking,
		       a.customer_id, a.service_id, a.status, a.created_at
		FROM appointments a
		LEFT JOIN slots s ON s.id = a.slot_id
		WHERE a.consultant_id = $1
		ORDER BY a.date_booking
	`

	rows, err := r.pool.Query(ctx, query, consultantID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appts []slot.Appointment
	for rows.Next() {
		var (
			a         slot.Appointment
			slotID    string
			slotStart *time.Time
			booking   time.Time
			status    string
		)
		err := rows.Scan(&a.ID, &slotID, &slotStart, &booking, &a.CustomerID, &a.ServiceID, &status, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		a.SlotID = slot.ID(slotID)
		a.SlotStart = slotStart
		a.Booking = &booking
		a.Status = slot.AppointmentStatus(status)
		appts = append(appts, a)
	}

	return appts, rows.Err()
}

// BookSlot attaches a confirmed appointment to an available slot.
func (r *Repository) BookSlot(ctx context.Context, id slot.ID, customerID, serviceID string) (slot.Appointment, error) {
	slotID, err := uuid.Parse(string(id))
	if err != nil {
		return slot.Appointment{}, fmt.Errorf("slot %s: %w", id, slot.ErrSlotNotFound)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return slot.Appointment{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		consultantID string
		start        time.Time
		status       string
	)
	err = tx.QueryRow(ctx,
		`SELECT consultant_id, start_time, status FROM slots WHERE id = $1 FOR UPDATE`, slotID,
	).Scan(&consultantID, &start, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return slot.Appointment{}, fmt.Errorf("slot %s: %w", id, slot.ErrSlotNotFound)
	}
	if err != nil {
		return slot.Appointment{}, fmt.Errorf("get slot: %w", err)
	}
	if slot.Status(status) == slot.StatusBooked {
		return slot.Appointment{}, fmt.Errorf("slot %s: %w", id, slot.ErrSlotBooked)
	}

	a := slot.Appointment{
		ID:         uuid.NewString(),
		SlotID:     id,
		SlotStart:  &start,
		Booking:    &start,
		CustomerID: customerID,
		ServiceID:  serviceID,
		Status:     slot.AppointmentConfirmed,
	}

	if _, err := tx.Exec(ctx, `UPDATE slots SET status = 'booked' WHERE id = $1`, slotID); err != nil {
		return slot.Appointment{}, fmt.Errorf("book slot: %w", err)
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO appointments (id, slot_id, consultant_id, customer_id, service_id, date_booking, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, a.ID, slotID, consultantID, customerID, serviceID, start, string(a.Status)).Scan(&a.CreatedAt)
	if err != nil {
		return slot.Appointment{}, fmt.Errorf("create appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return slot.Appointment{}, fmt.Errorf("commit transaction: %w", err)
	}

	r.logger.Info("slot booked", zap.String("slot_id", string(id)), zap.String("appointment_id", a.ID))
	return a, nil
}

// CancelAppointment cancels an appointment and frees its slot.
func (r *Repository) CancelAppointment(ctx context.Context, id string) error {
	apptID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("appointment %s: %w", id, slot.ErrAppointmentNotFound)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var slotID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE appointments SET status = 'canceled'
		WHERE id = $1 AND status <> 'canceled'
		RETURNING slot_id
	`, apptID).Scan(&slotID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("appointment %s: %w", id, slot.ErrAppointmentNotFound)
	}
	if err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE slots SET status = 'available' WHERE id = $1`, slotID); err != nil {
		return fmt.Errorf("release slot: %w", err)
	}

	return tx.Commit(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
