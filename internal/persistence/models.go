// Package persistence defines the storage records and repository contracts
// used by the SQLite-backed data layer.
package persistence

import (
	"time"

	"github.com/example/booking-platform/internal/calendardate"
)

// User is the stored account record, including the password hash that the
// application layer never exposes.
type User struct {
	ID           string
	Username     string
	Email        string
	DisplayName  string
	PasswordHash string
	IsHost       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Calendar is the stored calendar record owned by a single host.
type Calendar struct {
	ID          string
	HostID      string
	Topics      []string
	Description string
	ExternalID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TimeSlot is the stored recurring weekly slot belonging to a calendar.
type TimeSlot struct {
	ID         string
	CalendarID string
	Start      calendardate.TimeOfDay
	End        calendardate.TimeOfDay
	Weekdays   []calendardate.Weekday
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Booking is a stored appointment tying a guest to a slot on a concrete date.
type Booking struct {
	ID          string
	TimeSlotID  string
	GuestID     string
	When        calendardate.Date
	Topic       string
	Description string
	CreatedAt   time.Time
}

// Session is a stored login session.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
