package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/example/booking-platform/internal/persistence"
)

// constraints we surface by name so callers can map them to domain errors.
var namedConstraints = []string{
	"users.username",
	"users.email",
	"calendars.host_id",
	"sessions.token",
}

// mapError translates driver errors into persistence layer errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		for _, constraint := range namedConstraints {
			if strings.Contains(msg, constraint) {
				return &persistence.ConstraintError{Constraint: constraint}
			}
		}
		return persistence.ErrConstraintViolation
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return persistence.ErrConstraintViolation
	}

	return err
}
