package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS slots (
			id            TEXT PRIMARY KEY,
			consultant_id TEXT NOT NULL,
			start_time    TEXT NOT NULL,
			end_time      TEXT NOT NULL,
			status        TEXT NOT NULL DEFAULT 'available' CHECK(status IN ('available', 'booked')),
			created_at    TEXT NOT NULL,
			UNIQUE (consultant_id, start_time)
		);

		CREATE INDEX IF NOT EXISTS idx_slots_consultant ON slots(consultant_id, start_time);

		CREATE TABLE IF NOT EXISTS appointments (
			id            TEXT PRIMARY KEY,
			slot_id       TEXT NOT NULL,
			consultant_id TEXT NOT NULL,
			customer_id   TEXT NOT NULL,
			service_id    TEXT NOT NULL DEFAULT '',
			date_booking  TEXT NOT NULL,
			status        TEXT NOT NULL DEFAULT 'confirmed'
			              CHECK(status IN ('pending', 'confirmed', 'completed', 'canceled')),
			created_at    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_appointments_consultant ON appointments(consultant_id);
		CREATE INDEX IF NOT EXISTS idx_appointments_slot ON appointments(slot_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
