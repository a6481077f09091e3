package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/booking-platform/internal/application"
	"github.com/example/booking-platform/internal/conflict"
)

var (
	errBadRequestBody      = errors.New("the request body is malformed")
	errInvalidMonth        = errors.New("year and month must be numeric path segments")
	errMissingSessionToken = errors.New("a session token is required")
)

// errorResponse is the JSON envelope for every error reply.
type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps domain errors onto status codes and stable error
// codes that clients can branch on.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "The username or password is incorrect.",
		})
	case errors.Is(err, application.ErrSessionExpired):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_EXPIRED",
			Message:   "The session has expired. Log in again.",
		})
	case errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_REVOKED",
			Message:   "The session has been revoked. Log in again.",
		})
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_UNAUTHORIZED",
			Message:   "Authentication is required.",
		})
	case errors.Is(err, application.ErrGuestPermission):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "ACCOUNT_NOT_HOST",
			Message:   "Only host accounts may manage calendars and time slots.",
		})
	case errors.Is(err, application.ErrHostNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{
			ErrorCode: "HOST_NOT_FOUND",
			Message:   "No bookable host exists under that username.",
		})
	case errors.Is(err, application.ErrCalendarNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{
			ErrorCode: "CALENDAR_NOT_FOUND",
			Message:   "The calendar does not exist.",
		})
	case errors.Is(err, application.ErrTimeSlotNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{
			ErrorCode: "TIME_SLOT_NOT_FOUND",
			Message:   "The time slot does not exist on that calendar for the requested date.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "The requested resource was not found."})
	case errors.Is(err, application.ErrDuplicateUsername):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ACCOUNT_USERNAME_TAKEN",
			Message:   "That username is already registered.",
		})
	case errors.Is(err, application.ErrDuplicateEmail):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ACCOUNT_EMAIL_TAKEN",
			Message:   "That email address is already registered.",
		})
	case errors.Is(err, application.ErrCalendarExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "CALENDAR_EXISTS",
			Message:   "The host already owns a calendar.",
		})
	case errors.Is(err, conflict.ErrSlotOverlap):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "TIME_SLOT_OVERLAP",
			Message:   "The time slot overlaps an existing slot on a shared weekday.",
		})
	case errors.Is(err, conflict.ErrInvalidInterval):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "TIME_SLOT_INVALID_INTERVAL",
			Message:   "The start time must be before the end time.",
		})
	case errors.Is(err, application.ErrSelfBooking):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "BOOKING_SELF",
			Message:   "A host cannot book their own calendar.",
		})
	case errors.Is(err, application.ErrPastBooking):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "BOOKING_PAST_DATE",
			Message:   "The appointment date must not be in the past.",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				ErrorCode: "VALIDATION_FAILED",
				Message:   "The submitted values are invalid.",
				Errors:    vErr.FieldErrors,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "An internal error occurred."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request is malformed."
	case http.StatusUnauthorized:
		return "Authentication is required."
	case http.StatusForbidden:
		return "You are not allowed to perform this operation."
	case http.StatusNotFound:
		return "The requested resource was not found."
	case http.StatusConflict:
		return "The request conflicts with the current state of the resource."
	case http.StatusUnprocessableEntity:
		return "The submitted values are invalid."
	default:
		return "An internal error occurred."
	}
}
