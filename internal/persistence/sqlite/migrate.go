package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order; each entry runs at most once, tracked in
// the schema_migrations table.
var migrations = []string{
	`CREATE TABLE users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		display_name  TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		is_host       INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE calendars (
		id                   TEXT PRIMARY KEY,
		host_id              TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		topics               TEXT NOT NULL,
		description          TEXT NOT NULL,
		external_calendar_id TEXT NOT NULL,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,
	`CREATE TABLE time_slots (
		id          TEXT PRIMARY KEY,
		calendar_id TEXT NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		weekdays    TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX idx_time_slots_calendar ON time_slots(calendar_id)`,
	`CREATE TABLE bookings (
		id           TEXT PRIMARY KEY,
		time_slot_id TEXT NOT NULL REFERENCES time_slots(id) ON DELETE CASCADE,
		guest_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		booked_for   TEXT NOT NULL,
		topic        TEXT NOT NULL,
		description  TEXT NOT NULL,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX idx_bookings_guest ON bookings(guest_id)`,
	`CREATE TABLE sessions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token      TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		revoked_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
}

// Migrate brings the schema up to date. Safe to call on every startup.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("sqlite: create schema_migrations: %w", err)
	}

	return d.WithTransaction(ctx, func(tx *sql.Tx) error {
		var current int
		if err := tx.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
			return fmt.Errorf("sqlite: read schema version: %w", err)
		}

		for i := current; i < len(migrations); i++ {
			if _, err := tx.Exec(migrations[i]); err != nil {
				return fmt.Errorf("sqlite: apply migration %d: %w", i+1, err)
			}
			if _, err := tx.Exec(
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))",
				i+1,
			); err != nil {
				return fmt.Errorf("sqlite: record migration %d: %w", i+1, err)
			}
		}

		return nil
	})
}
