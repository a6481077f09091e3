package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/booking-platform/internal/calendardate"
	"github.com/example/booking-platform/internal/persistence"
)

// TimeSlotRepository implements persistence.TimeSlotRepository using SQLite.
type TimeSlotRepository struct {
	db *DB
}

// NewTimeSlotRepository creates a new SQLite time slot repository.
func NewTimeSlotRepository(db *DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

const timeSlotColumns = "id, calendar_id, start_time, end_time, weekdays, created_at, updated_at"

// CreateTimeSlot inserts a slot after the admit callback has accepted it
// against the calendar's current slots. Loading and inserting happen in one
// transaction so two concurrent submissions cannot both pass admission.
func (r *TimeSlotRepository) CreateTimeSlot(ctx context.Context, slot persistence.TimeSlot, admit func(existing []persistence.TimeSlot) error) (persistence.TimeSlot, error) {
	if slot.ID == "" || slot.CalendarID == "" {
		return persistence.TimeSlot{}, persistence.ErrConstraintViolation
	}

	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		rows, err := tx.Query(
			`SELECT `+timeSlotColumns+` FROM time_slots WHERE calendar_id = ? ORDER BY created_at ASC, id ASC`,
			slot.CalendarID,
		)
		if err != nil {
			return mapError(err)
		}
		existing, err := collectTimeSlots(rows)
		if err != nil {
			return err
		}

		if err := admit(existing); err != nil {
			return err
		}

		_, err = tx.Exec(
			`INSERT INTO time_slots (`+timeSlotColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			slot.ID,
			slot.CalendarID,
			slot.Start.String(),
			slot.End.String(),
			encodeWeekdays(slot.Weekdays),
			slot.CreatedAt.Format(time.RFC3339),
			slot.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return mapError(err)
		}

		return nil
	})
	if err != nil {
		return persistence.TimeSlot{}, err
	}

	return slot, nil
}

// ListTimeSlots returns the calendar's slots ordered by creation.
func (r *TimeSlotRepository) ListTimeSlots(ctx context.Context, calendarID string) ([]persistence.TimeSlot, error) {
	rows, err := r.db.db.QueryContext(ctx,
		`SELECT `+timeSlotColumns+` FROM time_slots WHERE calendar_id = ? ORDER BY created_at ASC, id ASC`,
		calendarID,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return collectTimeSlots(rows)
}

// GetTimeSlot retrieves a slot by ID, scoped to the given calendar. A slot
// that exists under a different calendar reads as not found.
func (r *TimeSlotRepository) GetTimeSlot(ctx context.Context, id, calendarID string) (persistence.TimeSlot, error) {
	if id == "" || calendarID == "" {
		return persistence.TimeSlot{}, persistence.ErrNotFound
	}

	row := r.db.db.QueryRowContext(ctx,
		`SELECT `+timeSlotColumns+` FROM time_slots WHERE id = ? AND calendar_id = ?`,
		id, calendarID,
	)

	var slot persistence.TimeSlot
	var start, end, weekdays, createdAt, updatedAt string

	err := row.Scan(&slot.ID, &slot.CalendarID, &start, &end, &weekdays, &createdAt, &updatedAt)
	if err != nil {
		return persistence.TimeSlot{}, mapError(err)
	}

	return decodeTimeSlot(slot, start, end, weekdays, createdAt, updatedAt)
}

// GetTimeSlotByID retrieves a slot without calendar scoping. Used when the
// slot reference is already trusted, such as resolving a stored booking.
func (r *TimeSlotRepository) GetTimeSlotByID(ctx context.Context, id string) (persistence.TimeSlot, error) {
	if id == "" {
		return persistence.TimeSlot{}, persistence.ErrNotFound
	}

	row := r.db.db.QueryRowContext(ctx,
		`SELECT `+timeSlotColumns+` FROM time_slots WHERE id = ?`,
		id,
	)

	var slot persistence.TimeSlot
	var start, end, weekdays, createdAt, updatedAt string

	err := row.Scan(&slot.ID, &slot.CalendarID, &start, &end, &weekdays, &createdAt, &updatedAt)
	if err != nil {
		return persistence.TimeSlot{}, mapError(err)
	}

	return decodeTimeSlot(slot, start, end, weekdays, createdAt, updatedAt)
}

func collectTimeSlots(rows *sql.Rows) ([]persistence.TimeSlot, error) {
	defer rows.Close()

	var slots []persistence.TimeSlot
	for rows.Next() {
		var slot persistence.TimeSlot
		var start, end, weekdays, createdAt, updatedAt string

		if err := rows.Scan(&slot.ID, &slot.CalendarID, &start, &end, &weekdays, &createdAt, &updatedAt); err != nil {
			return nil, mapError(err)
		}

		decoded, err := decodeTimeSlot(slot, start, end, weekdays, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		slots = append(slots, decoded)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return slots, nil
}

func decodeTimeSlot(slot persistence.TimeSlot, start, end, weekdays, createdAt, updatedAt string) (persistence.TimeSlot, error) {
	var err error
	if slot.Start, err = calendardate.ParseTimeOfDay(start); err != nil {
		return persistence.TimeSlot{}, err
	}
	if slot.End, err = calendardate.ParseTimeOfDay(end); err != nil {
		return persistence.TimeSlot{}, err
	}
	if slot.Weekdays, err = decodeWeekdays(weekdays); err != nil {
		return persistence.TimeSlot{}, err
	}
	if slot.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return persistence.TimeSlot{}, err
	}
	if slot.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return persistence.TimeSlot{}, err
	}
	return slot, nil
}
