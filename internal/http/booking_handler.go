package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/booking-platform/internal/application"
	"github.com/example/booking-platform/internal/calendardate"
)

type bookingService interface {
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	ListMyBookings(ctx context.Context, principal application.Principal) ([]application.Booking, error)
	MonthlyAvailability(ctx context.Context, hostUsername string, year int, month time.Month) (application.MonthAvailability, error)
}

// BookingHandler serves appointment creation, the guest's booking list, and
// the month availability view.
type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

// Create books an appointment on the named host's calendar.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	hostUsername := strings.TrimSpace(mux.Vars(r)["host_username"])

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	when, err := calendardate.ParseDate(req.Date)
	if err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "unparseable appointment date", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "host_username", hostUsername)

	booking, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		Principal:    principal,
		HostUsername: hostUsername,
		TimeSlotID:   req.TimeSlotID,
		When:         when,
		Topic:        req.Topic,
		Description:  req.Description,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "appointment booked")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toBookingDTO(booking)})
}

// ListMine returns the authenticated guest's bookings.
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListMine", "principal_id", principal.UserID)

	bookings, err := h.service.ListMyBookings(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]bookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		dtos = append(dtos, toBookingDTO(booking))
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingListResponse{Bookings: dtos})
}

// Availability returns a host's month grid with the bookable dates per slot.
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	vars := mux.Vars(r)
	hostUsername := strings.TrimSpace(vars["host_username"])

	year, yearErr := strconv.Atoi(vars["year"])
	month, monthErr := strconv.Atoi(vars["month"])
	if yearErr != nil || monthErr != nil {
		h.log(r.Context(), "Availability", "error_kind", "bad_request").ErrorContext(r.Context(), "unparseable availability path", "year_error", yearErr, "month_error", monthErr)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMonth)
		return
	}

	logger := h.log(r.Context(), "Availability", "host_username", hostUsername, "year", year, "month", month)

	availability, err := h.service.MonthlyAvailability(r.Context(), hostUsername, year, time.Month(month))
	if err != nil {
		logger.ErrorContext(r.Context(), "availability lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAvailabilityDTO(availability))
}

type bookingRequest struct {
	TimeSlotID  string `json:"time_slot_id"`
	Date        string `json:"date"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
}

type bookingDTO struct {
	ID          string      `json:"id"`
	Date        string      `json:"date"`
	Topic       string      `json:"topic"`
	Description string      `json:"description"`
	TimeSlot    timeSlotDTO `json:"time_slot"`
	CreatedAt   string      `json:"created_at,omitempty"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type bookingListResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

func toBookingDTO(booking application.Booking) bookingDTO {
	dto := bookingDTO{
		ID:          booking.ID,
		Date:        booking.When.String(),
		Topic:       booking.Topic,
		Description: booking.Description,
		TimeSlot:    toTimeSlotDTO(booking.Slot),
	}
	if !booking.CreatedAt.IsZero() {
		dto.CreatedAt = booking.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

type slotAvailabilityDTO struct {
	TimeSlot timeSlotDTO `json:"time_slot"`
	Dates    []string    `json:"dates"`
	NextDate string      `json:"next_date,omitempty"`
}

type availabilityResponse struct {
	Year  int                   `json:"year"`
	Month int                   `json:"month"`
	Grid  []int                 `json:"grid"`
	Slots []slotAvailabilityDTO `json:"slots"`
}

func toAvailabilityDTO(availability application.MonthAvailability) availabilityResponse {
	slots := make([]slotAvailabilityDTO, 0, len(availability.Slots))
	for _, slot := range availability.Slots {
		dates := make([]string, 0, len(slot.Dates))
		for _, date := range slot.Dates {
			dates = append(dates, date.String())
		}

		dto := slotAvailabilityDTO{
			TimeSlot: toTimeSlotDTO(slot.Slot),
			Dates:    dates,
		}
		if !slot.NextDate.IsZero() {
			dto.NextDate = slot.NextDate.String()
		}
		slots = append(slots, dto)
	}

	return availabilityResponse{
		Year:  availability.Year,
		Month: int(availability.Month),
		Grid:  availability.Grid,
		Slots: slots,
	}
}
