package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/booking-platform/internal/application"
	"github.com/example/booking-platform/internal/calendardate"
)

type timeSlotService interface {
	CreateTimeSlot(ctx context.Context, params application.CreateTimeSlotParams) (application.TimeSlot, error)
	ListTimeSlots(ctx context.Context, principal application.Principal) ([]application.TimeSlot, error)
}

// TimeSlotHandler serves slot publication and listing for the authenticated
// host's calendar.
type TimeSlotHandler struct {
	service   timeSlotService
	responder responder
	logger    *slog.Logger
}

// NewTimeSlotHandler creates a TimeSlotHandler.
func NewTimeSlotHandler(service timeSlotService, logger *slog.Logger) *TimeSlotHandler {
	base := defaultLogger(logger)
	return &TimeSlotHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TimeSlotHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TimeSlotHandler", operation, attrs...)
}

// Create publishes a new recurring slot on the host's calendar.
func (h *TimeSlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req timeSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode time slot request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "unparseable time slot fields", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	slot, err := h.service.CreateTimeSlot(r.Context(), application.CreateTimeSlotParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "time slot creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("time_slot_id", slot.ID).InfoContext(r.Context(), "time slot published")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, timeSlotResponse{TimeSlot: toTimeSlotDTO(slot)})
}

// List returns the slots on the host's calendar.
func (h *TimeSlotHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	slots, err := h.service.ListTimeSlots(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "time slot listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]timeSlotDTO, 0, len(slots))
	for _, slot := range slots {
		dtos = append(dtos, toTimeSlotDTO(slot))
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, timeSlotListResponse{TimeSlots: dtos})
}

type timeSlotRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Weekdays  []int  `json:"weekdays"`
}

func (req timeSlotRequest) toInput() (application.TimeSlotInput, error) {
	start, err := calendardate.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return application.TimeSlotInput{}, err
	}
	end, err := calendardate.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return application.TimeSlotInput{}, err
	}

	weekdays := make([]calendardate.Weekday, 0, len(req.Weekdays))
	for _, day := range req.Weekdays {
		weekdays = append(weekdays, calendardate.Weekday(day))
	}

	return application.TimeSlotInput{Start: start, End: end, Weekdays: weekdays}, nil
}

type timeSlotDTO struct {
	ID        string `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Weekdays  []int  `json:"weekdays"`
}

type timeSlotResponse struct {
	TimeSlot timeSlotDTO `json:"time_slot"`
}

type timeSlotListResponse struct {
	TimeSlots []timeSlotDTO `json:"time_slots"`
}

func toTimeSlotDTO(slot application.TimeSlot) timeSlotDTO {
	weekdays := make([]int, 0, len(slot.Weekdays))
	for _, day := range slot.Weekdays {
		weekdays = append(weekdays, int(day))
	}

	return timeSlotDTO{
		ID:        slot.ID,
		StartTime: slot.Start.String(),
		EndTime:   slot.End.String(),
		Weekdays:  weekdays,
	}
}
