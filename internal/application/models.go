package application

import (
	"time"

	"github.com/example/booking-platform/internal/calendardate"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	IsHost bool
}

// User represents an account exposed by the application services.
type User struct {
	ID          string
	Username    string
	Email       string
	DisplayName string
	IsHost      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// SignupParams captures caller provided signup fields.
type SignupParams struct {
	Username      string
	Email         string
	DisplayName   string
	Password      string
	PasswordAgain string
	IsHost        bool
}

// UserPatch describes a partial profile update. Only non-nil fields are applied.
type UserPatch struct {
	Email         *string
	DisplayName   *string
	Password      *string
	PasswordAgain *string
}

// UpdateProfileParams wraps the data required to update the authenticated user's profile.
type UpdateProfileParams struct {
	Principal Principal
	Patch     UserPatch
}

// Calendar represents a host's booking calendar.
type Calendar struct {
	ID          string
	HostID      string
	Topics      []string
	Description string
	ExternalID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CalendarInput captures caller provided calendar fields.
type CalendarInput struct {
	Topics      []string
	Description string
	ExternalID  string
}

// CalendarPatch describes a partial calendar update. Only non-nil fields are applied.
type CalendarPatch struct {
	Topics      *[]string
	Description *string
	ExternalID  *string
}

// CreateCalendarParams wraps the data required to create a calendar.
type CreateCalendarParams struct {
	Principal Principal
	Input     CalendarInput
}

// UpdateCalendarParams wraps the data required to partially update a calendar.
type UpdateCalendarParams struct {
	Principal Principal
	Patch     CalendarPatch
}

// CalendarDetail pairs a calendar with its owner for response composition.
type CalendarDetail struct {
	Calendar Calendar
	Host     User
	// Owned reports whether the requesting principal is the calendar's host,
	// which unlocks the detail representation.
	Owned bool
}

// TimeSlot represents a recurring weekly availability window on a calendar.
type TimeSlot struct {
	ID         string
	CalendarID string
	Start      calendardate.TimeOfDay
	End        calendardate.TimeOfDay
	Weekdays   []calendardate.Weekday
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TimeSlotInput captures caller provided time slot fields.
type TimeSlotInput struct {
	Start    calendardate.TimeOfDay
	End      calendardate.TimeOfDay
	Weekdays []calendardate.Weekday
}

// CreateTimeSlotParams wraps the data required to publish a time slot.
type CreateTimeSlotParams struct {
	Principal Principal
	Input     TimeSlotInput
}

// Booking represents a concrete dated reservation against one time slot.
type Booking struct {
	ID          string
	TimeSlotID  string
	GuestID     string
	When        calendardate.Date
	Topic       string
	Description string
	CreatedAt   time.Time
	// Slot is the referenced time slot, materialized for response composition.
	Slot TimeSlot
}

// CreateBookingParams wraps the data required to reserve an appointment.
type CreateBookingParams struct {
	Principal    Principal
	HostUsername string
	TimeSlotID   string
	When         calendardate.Date
	Topic        string
	Description  string
}

// SlotAvailability describes one time slot's concrete options inside a month.
type SlotAvailability struct {
	Slot  TimeSlot
	Dates []calendardate.Date
	// NextDate is the nearest date on or after the reference day matching one
	// of the slot's weekdays.
	NextDate calendardate.Date
}

// MonthAvailability is the calendar-grid month view for a host.
type MonthAvailability struct {
	Year  int
	Month time.Month
	// Grid is the Sunday-first month layout: leading zero sentinels followed
	// by day numbers.
	Grid  []int
	Slots []SlotAvailability
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// LoginParams captures the data required to authenticate a user.
type LoginParams struct {
	Username string
	Password string
}

// LoginResult captures the outcome of a successful login.
type LoginResult struct {
	User    User
	Session Session
}
