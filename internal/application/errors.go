package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrDuplicateUsername is returned when a signup or profile update collides with an existing username.
	ErrDuplicateUsername = errors.New("application: username already exists")
	// ErrDuplicateEmail is returned when a signup or profile update collides with an existing email.
	ErrDuplicateEmail = errors.New("application: email already exists")
	// ErrInvalidCredentials is returned when login credentials or a session token cannot be accepted.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a session token has passed its expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token was explicitly revoked.
	ErrSessionRevoked = errors.New("application: session revoked")

	// ErrGuestPermission is returned when a non-host user attempts a host-only operation.
	ErrGuestPermission = errors.New("application: operation requires a host account")
	// ErrHostNotFound is returned when the named host does not exist or has no calendar.
	ErrHostNotFound = errors.New("application: host not found")
	// ErrCalendarNotFound is returned when the acting host has no calendar.
	ErrCalendarNotFound = errors.New("application: calendar not found")
	// ErrCalendarExists is returned when a host attempts to create a second calendar.
	ErrCalendarExists = errors.New("application: calendar already exists")

	// ErrTimeSlotNotFound is returned when the requested time slot is absent
	// from the host's calendar, or when the booking date's weekday is outside
	// the slot's weekday set.
	ErrTimeSlotNotFound = errors.New("application: time slot not found")
	// ErrSelfBooking is returned when a host attempts to book their own calendar.
	ErrSelfBooking = errors.New("application: cannot book own calendar")
	// ErrPastBooking is returned when the requested booking date lies in the past.
	ErrPastBooking = errors.New("application: booking date is in the past")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
