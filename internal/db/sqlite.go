// Package db provides the SQLite slot repository.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/hourly/internal/slot"
)

// timeLayout is the storage format of every timestamp. Values are stored in
// UTC so that text order equals time order.
const timeLayout = time.RFC3339

// SQLite stores slots and appointments in a SQLite file.
// It serves as the local backend of the store and as the dev server repository.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer at a time; avoids SQLITE_BUSY between concurrent transactions.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListSlots returns every slot of a consultant ordered by start time.
func (s *SQLite) ListSlots(ctx context.Context, consultantID string) ([]slot.Slot, error) {
	query := `
		SELECT id, consultant_id, start_time, end_time, status
		FROM slots
		WHERE consultant_id = ?
		ORDER BY start_time
	`

	rows, err := s.db.QueryContext(ctx, query, consultantID)
	if err != nil {
		return nil, fmt.Errorf("querying slots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var slots []slot.Slot
	for rows.Next() {
		var (
			sl         slot.Slot
			id         string
			start, end string
			status     string
		)
		if err := rows.Scan(&id, &sl.ConsultantID, &start, &end, &status); err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}
		sl.ID = slot.ID(id)
		sl.Status = slot.Status(status)
		if sl.Start, err = parseTime(start); err != nil {
			return nil, fmt.Errorf("parsing start time: %w", err)
		}
		if sl.End, err = parseTime(end); err != nil {
			return nil, fmt.Errorf("parsing end time: %w", err)
		}
		slots = append(slots, sl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slots: %w", err)
	}

	return slots, nil
}

// CreateSlots inserts every draft in one transaction.
// A draft on an hour the consultant already has rejects the whole batch
// with slot.ErrDuplicateSlot.
func (s *SQLite) CreateSlots(ctx context.Context, consultantID string, drafts []slot.Draft) (int, error) {
	if err := slot.ValidateDrafts(consultantID, drafts); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := s.now().UTC().Format(timeLayout)
	for _, d := range drafts {
		start := d.Start.UTC().Format(timeLayout)

		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM slots WHERE consultant_id = ? AND start_time = ?`,
			consultantID, start,
		).Scan(&exists)
		if err != nil {
			return 0, fmt.Errorf("checking slot: %w", err)
		}
		if exists > 0 {
			return 0, fmt.Errorf("%s: %w", start, slot.ErrDuplicateSlot)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO slots (id, consultant_id, start_time, end_time, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, uuid.NewString(), consultantID, start, d.End.UTC().Format(timeLayout), slot.StatusAvailable, createdAt)
		if err != nil {
			return 0, fmt.Errorf("inserting slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	return len(drafts), nil
}

// DeleteSlot removes a slot that no live appointment holds.
// Returns slot.ErrSlotBooked or slot.ErrSlotNotFound otherwise.
func (s *SQLite) DeleteSlot(ctx context.Context, id slot.ID) error {
	query := `
		DELETE FROM slots
		WHERE id = ?
		  AND status = 'available'
		  AND NOT EXISTS (
		      SELECT 1 FROM appointments
		      WHERE slot_id = ? AND status != 'canceled'
		  )
	`

	result, err := s.db.ExecContext(ctx, query, string(id), string(id))
	if err != nil {
		return fmt.Errorf("deleting slot: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	var status string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM slots WHERE id = ?`, string(id)).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("slot %s: %w", id, slot.ErrSlotNotFound)
	}
	if err != nil {
		return fmt.Errorf("querying slot: %w", err)
	}
	return fmt.Errorf("slot %s: %w", id, slot.ErrSlotBooked)
}

// ListAppointments returns the appointments of a consultant with the start
// of the slot each one holds.
func (s *SQLite) ListAppointments(ctx context.Context, consultantID string) ([]slot.Appointment, error) {
	query := `
		SELECT a.id, a.slot_id, s.start_time, a.date_booking, a.customer_id,
		       a.service_id, a.status, a.created_at
		FROM appointments a
		LEFT JOIN slots s ON s.id = a.slot_id
		WHERE a.consultant_id = ?
		ORDER BY a.date_booking
	`

	rows, err := s.db.QueryContext(ctx, query, consultantID)
	if err != nil {
		return nil, fmt.Errorf("querying appointments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var appts []slot.Appointment
	for rows.Next() {
		var (
			a         slot.Appointment
			slotID    string
			slotStart sql.NullString
			booking   string
			status    string
			createdAt string
		)
		err := rows.Scan(&a.ID, &slotID, &slotStart, &booking, &a.CustomerID, &a.ServiceID, &status, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}
		a.SlotID = slot.ID(slotID)
		a.Status = slot.AppointmentStatus(status)

		b, err := parseTime(booking)
		if err != nil {
			return nil, fmt.Errorf("parsing booking date: %w", err)
		}
		a.Booking = &b
		if slotStart.Valid {
			st, err := parseTime(slotStart.String)
			if err != nil {
				return nil, fmt.Errorf("parsing slot start: %w", err)
			}
			a.SlotStart = &st
		}
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing created at: %w", err)
		}
		appts = append(appts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating appointments: %w", err)
	}

	return appts, nil
}

// BookSlot attaches a confirmed appointment to an available slot and marks
// the slot booked.
func (s *SQLite) BookSlot(ctx context.Context, id slot.ID, customerID, serviceID string) (slot.Appointment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return slot.Appointment{}, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var consultantID, start, status string
	err = tx.QueryRowContext(ctx,
		`SELECT consultant_id, start_time, status FROM slots WHERE id = ?`, string(id),
	).Scan(&consultantID, &start, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return slot.Appointment{}, fmt.Errorf("slot %s: %w", id, slot.ErrSlotNotFound)
	}
	if err != nil {
		return slot.Appointment{}, fmt.Errorf("querying slot: %w", err)
	}
	if slot.Status(status) == slot.StatusBooked {
		return slot.Appointment{}, fmt.Errorf("slot %s: %w", id, slot.ErrSlotBooked)
	}

	startTime, err := parseTime(start)
	if err != nil {
		return slot.Appointment{}, fmt.Errorf("parsing start time: %w", err)
	}
	now := s.now().UTC().Truncate(time.Second)
	a := slot.Appointment{
		ID:         uuid.NewString(),
		SlotID:     id,
		SlotStart:  &startTime,
		Booking:    &startTime,
		CustomerID: customerID,
		ServiceID:  serviceID,
		Status:     slot.AppointmentConfirmed,
		CreatedAt:  now,
	}

	if _, err := tx.ExecContext(ctx, `UPDATE slots SET status = ? WHERE id = ?`, slot.StatusBooked, string(id)); err != nil {
		return slot.Appointment{}, fmt.Errorf("booking slot: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (id, slot_id, consultant_id, customer_id, service_id, date_booking, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, string(id), consultantID, customerID, serviceID, start, a.Status, now.Format(timeLayout))
	if err != nil {
		return slot.Appointment{}, fmt.Errorf("inserting appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return slot.Appointment{}, fmt.Errorf("committing transaction: %w", err)
	}

	return a, nil
}

// CancelAppointment cancels an appointment and frees its slot.
func (s *SQLite) CancelAppointment(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var slotID string
	err = tx.QueryRowContext(ctx,
		`SELECT slot_id FROM appointments WHERE id = ? AND status != 'canceled'`, id,
	).Scan(&slotID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("appointment %s: %w", id, slot.ErrAppointmentNotFound)
	}
	if err != nil {
		return fmt.Errorf("querying appointment: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE appointments SET status = 'canceled' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("canceling appointment: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE slots SET status = ? WHERE id = ?`, slot.StatusAvailable, slotID); err != nil {
		return fmt.Errorf("releasing slot: %w", err)
	}

	return tx.Commit()
}

// parseTime parses a stored timestamp.
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
