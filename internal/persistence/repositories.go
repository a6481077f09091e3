package persistence

import (
	"context"
	"time"
)

// UserRepository persists account records.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	// DeleteUser removes the user together with their sessions, their guest
	// bookings, and, for hosts, the owned calendar with its slots and
	// bookings, all within one transaction.
	DeleteUser(ctx context.Context, id string) error
}

// CalendarRepository persists calendar records.
type CalendarRepository interface {
	CreateCalendar(ctx context.Context, calendar Calendar) (Calendar, error)
	GetCalendarByHost(ctx context.Context, hostID string) (Calendar, error)
	UpdateCalendar(ctx context.Context, calendar Calendar) (Calendar, error)
}

// TimeSlotRepository persists recurring slots. Admission is transactional:
// CreateTimeSlot loads the calendar's existing slots, passes them to admit,
// and inserts only when admit returns nil, all inside a single transaction.
type TimeSlotRepository interface {
	CreateTimeSlot(ctx context.Context, slot TimeSlot, admit func(existing []TimeSlot) error) (TimeSlot, error)
	ListTimeSlots(ctx context.Context, calendarID string) ([]TimeSlot, error)
	GetTimeSlot(ctx context.Context, id, calendarID string) (TimeSlot, error)
}

// BookingRepository persists bookings.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	ListBookingsByGuest(ctx context.Context, guestID string) ([]Booking, error)
}

// SessionRepository persists login sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) error
}
