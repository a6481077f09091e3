package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/booking-platform/internal/persistence"
)

// CalendarRepository implements persistence.CalendarRepository using SQLite.
type CalendarRepository struct {
	db *DB
}

// NewCalendarRepository creates a new SQLite calendar repository.
func NewCalendarRepository(db *DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

const calendarColumns = "id, host_id, topics, description, external_calendar_id, created_at, updated_at"

// CreateCalendar inserts a new calendar. The UNIQUE host_id constraint keeps
// each host at one calendar.
func (r *CalendarRepository) CreateCalendar(ctx context.Context, calendar persistence.Calendar) (persistence.Calendar, error) {
	if calendar.ID == "" || calendar.HostID == "" {
		return persistence.Calendar{}, persistence.ErrConstraintViolation
	}

	topics, err := encodeTopics(calendar.Topics)
	if err != nil {
		return persistence.Calendar{}, err
	}

	query := `
		INSERT INTO calendars (` + calendarColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.db.ExecContext(ctx, query,
		calendar.ID,
		calendar.HostID,
		topics,
		calendar.Description,
		calendar.ExternalID,
		calendar.CreatedAt.Format(time.RFC3339),
		calendar.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return persistence.Calendar{}, mapError(err)
	}

	return calendar, nil
}

// GetCalendarByHost retrieves the calendar owned by hostID.
func (r *CalendarRepository) GetCalendarByHost(ctx context.Context, hostID string) (persistence.Calendar, error) {
	if hostID == "" {
		return persistence.Calendar{}, persistence.ErrNotFound
	}

	row := r.db.db.QueryRowContext(ctx, `SELECT `+calendarColumns+` FROM calendars WHERE host_id = ?`, hostID)
	return scanCalendar(row)
}

// UpdateCalendar overwrites the mutable calendar fields.
func (r *CalendarRepository) UpdateCalendar(ctx context.Context, calendar persistence.Calendar) (persistence.Calendar, error) {
	if calendar.ID == "" {
		return persistence.Calendar{}, persistence.ErrConstraintViolation
	}

	topics, err := encodeTopics(calendar.Topics)
	if err != nil {
		return persistence.Calendar{}, err
	}

	query := `
		UPDATE calendars
		SET topics = ?, description = ?, external_calendar_id = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.db.ExecContext(ctx, query,
		topics,
		calendar.Description,
		calendar.ExternalID,
		calendar.UpdatedAt.Format(time.RFC3339),
		calendar.ID,
	)
	if err != nil {
		return persistence.Calendar{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Calendar{}, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Calendar{}, persistence.ErrNotFound
	}

	return calendar, nil
}

func scanCalendar(row *sql.Row) (persistence.Calendar, error) {
	var calendar persistence.Calendar
	var topics, createdAt, updatedAt string

	err := row.Scan(
		&calendar.ID,
		&calendar.HostID,
		&topics,
		&calendar.Description,
		&calendar.ExternalID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Calendar{}, mapError(err)
	}

	if calendar.Topics, err = decodeTopics(topics); err != nil {
		return persistence.Calendar{}, err
	}
	if calendar.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return persistence.Calendar{}, err
	}
	if calendar.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return persistence.Calendar{}, err
	}

	return calendar, nil
}
