package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/booking-platform/internal/calendardate"
	"github.com/example/booking-platform/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	db *DB
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = "id, time_slot_id, guest_id, booked_for, topic, description, created_at"

// CreateBooking inserts a new appointment.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error) {
	if booking.ID == "" || booking.TimeSlotID == "" || booking.GuestID == "" {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.db.ExecContext(ctx, query,
		booking.ID,
		booking.TimeSlotID,
		booking.GuestID,
		booking.When.String(),
		booking.Topic,
		booking.Description,
		booking.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}

	return booking, nil
}

// ListBookingsByGuest returns the guest's bookings ordered by appointment date.
func (r *BookingRepository) ListBookingsByGuest(ctx context.Context, guestID string) ([]persistence.Booking, error) {
	rows, err := r.db.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE guest_id = ? ORDER BY booked_for ASC, created_at ASC`,
		guestID,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return bookings, nil
}

func scanBooking(rows *sql.Rows) (persistence.Booking, error) {
	var booking persistence.Booking
	var bookedFor, createdAt string

	err := rows.Scan(
		&booking.ID,
		&booking.TimeSlotID,
		&booking.GuestID,
		&bookedFor,
		&booking.Topic,
		&booking.Description,
		&createdAt,
	)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}

	if booking.When, err = calendardate.ParseDate(bookedFor); err != nil {
		return persistence.Booking{}, err
	}
	if booking.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return persistence.Booking{}, err
	}

	return booking, nil
}
