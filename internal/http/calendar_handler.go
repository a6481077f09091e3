package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/example/booking-platform/internal/application"
)

type calendarService interface {
	CreateCalendar(ctx context.Context, params application.CreateCalendarParams) (application.Calendar, error)
	UpdateCalendar(ctx context.Context, params application.UpdateCalendarParams) (application.Calendar, error)
	HostCalendarDetail(ctx context.Context, hostUsername string, viewer *application.Principal) (application.CalendarDetail, error)
}

// CalendarHandler serves calendar creation, update, and public detail.
type CalendarHandler struct {
	service   calendarService
	responder responder
	logger    *slog.Logger
}

// NewCalendarHandler creates a CalendarHandler.
func NewCalendarHandler(service calendarService, logger *slog.Logger) *CalendarHandler {
	base := defaultLogger(logger)
	return &CalendarHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CalendarHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CalendarHandler", operation, attrs...)
}

// Create publishes the authenticated host's calendar.
func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req calendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode calendar request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	calendar, err := h.service.CreateCalendar(r.Context(), application.CreateCalendarParams{
		Principal: principal,
		Input: application.CalendarInput{
			Topics:      req.Topics,
			Description: req.Description,
			ExternalID:  req.GoogleCalendarID,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "calendar creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("calendar_id", calendar.ID).InfoContext(r.Context(), "calendar created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, calendarResponse{Calendar: toCalendarDTO(calendar)})
}

// Update applies a partial update to the authenticated host's calendar.
func (h *CalendarHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req calendarPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode calendar patch", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID)

	calendar, err := h.service.UpdateCalendar(r.Context(), application.UpdateCalendarParams{
		Principal: principal,
		Patch: application.CalendarPatch{
			Topics:      req.Topics,
			Description: req.Description,
			ExternalID:  req.GoogleCalendarID,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "calendar update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "calendar updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, calendarResponse{Calendar: toCalendarDTO(calendar)})
}

// Detail returns a host's calendar. The external calendar reference is only
// included when the viewer owns the calendar.
func (h *CalendarHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	hostUsername := strings.TrimSpace(mux.Vars(r)["host_username"])

	var viewer *application.Principal
	if principal, ok := PrincipalFromContext(r.Context()); ok {
		viewer = &principal
	}

	logger := h.log(r.Context(), "Detail", "host_username", hostUsername)

	detail, err := h.service.HostCalendarDetail(r.Context(), hostUsername, viewer)
	if err != nil {
		logger.ErrorContext(r.Context(), "calendar lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dto := toCalendarDTO(detail.Calendar)
	if !detail.Owned {
		dto.GoogleCalendarID = ""
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, calendarDetailResponse{
		Calendar: dto,
		Host:     toPublicUserDTO(detail.Host),
		Owned:    detail.Owned,
	})
}

type calendarRequest struct {
	Topics           []string `json:"topics"`
	Description      string   `json:"description"`
	GoogleCalendarID string   `json:"google_calendar_id"`
}

type calendarPatchRequest struct {
	Topics           *[]string `json:"topics"`
	Description      *string   `json:"description"`
	GoogleCalendarID *string   `json:"google_calendar_id"`
}

type calendarDTO struct {
	ID               string   `json:"id"`
	Topics           []string `json:"topics"`
	Description      string   `json:"description"`
	GoogleCalendarID string   `json:"google_calendar_id,omitempty"`
}

type calendarResponse struct {
	Calendar calendarDTO `json:"calendar"`
}

type calendarDetailResponse struct {
	Calendar calendarDTO `json:"calendar"`
	Host     userDTO     `json:"host"`
	Owned    bool        `json:"owned"`
}

func toCalendarDTO(calendar application.Calendar) calendarDTO {
	return calendarDTO{
		ID:               calendar.ID,
		Topics:           calendar.Topics,
		Description:      calendar.Description,
		GoogleCalendarID: calendar.ExternalID,
	}
}
