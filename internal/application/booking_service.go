package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/booking-platform/internal/calendardate"
	"github.com/example/booking-platform/internal/metrics"
)

// BookingRepository captures the persistence operations needed by the booking service.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	ListBookingsByGuest(ctx context.Context, guestID string) ([]Booking, error)
}

// BookingService validates and records guest reservations against host calendars.
type BookingService struct {
	bookings    BookingRepository
	slots       TimeSlotRepository
	calendars   CalendarRepository
	users       UserDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for the booking service.
func NewBookingService(bookings BookingRepository, slots TimeSlotRepository, calendars CalendarRepository, users UserDirectory, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, slots, calendars, users, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a BookingService with a specified logger.
func NewBookingServiceWithLogger(bookings BookingRepository, slots TimeSlotRepository, calendars CalendarRepository, users UserDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		slots:       slots,
		calendars:   calendars,
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateBooking runs the admission chain for a guest's reservation request
// and persists the booking once every step passes. Validation is strictly
// sequential and terminal on first failure; the single write happens last.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (booking Booking, err error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil || s.slots == nil || s.calendars == nil || s.users == nil {
		return Booking{}, fmt.Errorf("booking service not configured")
	}

	logger := s.loggerWith(ctx, "CreateBooking",
		"guest_id", params.Principal.UserID,
		"host_username", params.HostUsername,
		"when", params.When.String(),
	)
	defer func() {
		if err != nil {
			metrics.ObserveBookingRejected(ErrorKind(err))
			logger.ErrorContext(ctx, "booking rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		metrics.ObserveBookingCreated()
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	host, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(params.HostUsername))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrHostNotFound
		}
		return
	}
	if !host.IsHost {
		err = ErrHostNotFound
		return
	}

	calendar, err := s.calendars.GetCalendarByHost(ctx, host.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrHostNotFound
		}
		return
	}

	if params.Principal.UserID == host.ID {
		err = ErrSelfBooking
		return
	}

	slot, err := s.slots.GetTimeSlot(ctx, params.TimeSlotID, calendar.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrTimeSlotNotFound
		}
		return
	}

	// A date outside the slot's weekday set reads as "no such slot" rather
	// than a distinct error kind.
	if !weekdayInSet(params.When.Weekday(), slot.Weekdays) {
		err = ErrTimeSlotNotFound
		return
	}

	today := calendardate.DateOf(s.now())
	if params.When.Before(today) {
		err = ErrPastBooking
		return
	}

	booking, err = s.bookings.CreateBooking(ctx, Booking{
		ID:          s.idGenerator(),
		TimeSlotID:  slot.ID,
		GuestID:     params.Principal.UserID,
		When:        params.When,
		Topic:       strings.TrimSpace(params.Topic),
		Description: params.Description,
		CreatedAt:   s.now(),
		Slot:        slot,
	})
	if err != nil {
		return Booking{}, err
	}
	if booking.Slot.ID == "" {
		booking.Slot = slot
	}
	return booking, nil
}

// ListMyBookings returns the authenticated guest's reservations.
func (s *BookingService) ListMyBookings(ctx context.Context, principal Principal) ([]Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return nil, fmt.Errorf("booking repository not configured")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	return s.bookings.ListBookingsByGuest(ctx, principal.UserID)
}

// MonthlyAvailability composes the calendar-grid month view for a host: the
// Sunday-first day grid plus each slot's concrete dates within the month and
// its next bookable date.
func (s *BookingService) MonthlyAvailability(ctx context.Context, hostUsername string, year int, month time.Month) (MonthAvailability, error) {
	if s == nil {
		return MonthAvailability{}, fmt.Errorf("BookingService is nil")
	}
	if s.slots == nil || s.calendars == nil || s.users == nil {
		return MonthAvailability{}, fmt.Errorf("booking service not configured")
	}

	if month < time.January || month > time.December || year < 1 {
		vErr := &ValidationError{}
		vErr.add("month", "month must name a real calendar month")
		return MonthAvailability{}, vErr
	}

	host, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(hostUsername))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrHostNotFound
		}
		return MonthAvailability{}, err
	}
	if !host.IsHost {
		return MonthAvailability{}, ErrHostNotFound
	}

	calendar, err := s.calendars.GetCalendarByHost(ctx, host.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrHostNotFound
		}
		return MonthAvailability{}, err
	}

	slots, err := s.slots.ListTimeSlots(ctx, calendar.ID)
	if err != nil {
		return MonthAvailability{}, err
	}

	today := calendardate.DateOf(s.now())
	view := MonthAvailability{
		Year:  year,
		Month: month,
		Grid:  calendardate.RangeDaysOfMonth(year, month),
	}
	for _, slot := range slots {
		view.Slots = append(view.Slots, SlotAvailability{
			Slot:     slot,
			Dates:    calendardate.DatesInMonth(year, month, slot.Weekdays),
			NextDate: nextBookableDate(slot.Weekdays, today),
		})
	}
	return view, nil
}

func weekdayInSet(day calendardate.Weekday, set []calendardate.Weekday) bool {
	for _, member := range set {
		if member == day {
			return true
		}
	}
	return false
}

// nextBookableDate picks the earliest upcoming date matching any of the
// slot's weekdays, counting today itself.
func nextBookableDate(weekdays []calendardate.Weekday, from calendardate.Date) calendardate.Date {
	var best calendardate.Date
	for _, day := range weekdays {
		candidate := calendardate.NextWeekday(day, from)
		if best.IsZero() || candidate.Before(best) {
			best = candidate
		}
	}
	return best
}
