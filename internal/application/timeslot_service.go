package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/booking-platform/internal/calendardate"
	"github.com/example/booking-platform/internal/conflict"
	"github.com/example/booking-platform/internal/metrics"
)

// TimeSlotRepository captures the persistence operations needed by the time slot service.
type TimeSlotRepository interface {
	// CreateTimeSlot inserts the slot after the admit callback approves it
	// against the calendar's current slot set. The read of existing slots and
	// the insert execute within one transaction, so two concurrent creations
	// for the same calendar cannot both pass admission against stale state.
	CreateTimeSlot(ctx context.Context, slot TimeSlot, admit func(existing []TimeSlot) error) (TimeSlot, error)
	ListTimeSlots(ctx context.Context, calendarID string) ([]TimeSlot, error)
	GetTimeSlot(ctx context.Context, id, calendarID string) (TimeSlot, error)
}

// TimeSlotService admits and publishes recurring availability windows.
type TimeSlotService struct {
	slots       TimeSlotRepository
	calendars   CalendarRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTimeSlotService wires dependencies for the time slot service.
func NewTimeSlotService(slots TimeSlotRepository, calendars CalendarRepository, idGenerator func() string, now func() time.Time) *TimeSlotService {
	return NewTimeSlotServiceWithLogger(slots, calendars, idGenerator, now, nil)
}

// NewTimeSlotServiceWithLogger constructs a TimeSlotService with a specified logger.
func NewTimeSlotServiceWithLogger(slots TimeSlotRepository, calendars CalendarRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TimeSlotService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TimeSlotService{
		slots:       slots,
		calendars:   calendars,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *TimeSlotService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TimeSlotService", operation, attrs...)
}

// CreateTimeSlot validates and publishes a recurring availability window on
// the host's calendar. Admission runs against the calendar's current slots
// inside the insert transaction.
func (s *TimeSlotService) CreateTimeSlot(ctx context.Context, params CreateTimeSlotParams) (slot TimeSlot, err error) {
	if s == nil {
		return TimeSlot{}, fmt.Errorf("TimeSlotService is nil")
	}
	if s.slots == nil || s.calendars == nil {
		return TimeSlot{}, fmt.Errorf("time slot service not configured")
	}

	logger := s.loggerWith(ctx, "CreateTimeSlot", "host_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			if errors.Is(err, conflict.ErrSlotOverlap) {
				metrics.ObserveSlotOverlapRejected()
			}
			logger.ErrorContext(ctx, "time slot creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("time_slot_id", slot.ID).InfoContext(ctx, "time slot created")
	}()

	if !params.Principal.IsHost {
		err = ErrGuestPermission
		return
	}

	input := params.Input
	input.Weekdays = dedupeWeekdays(input.Weekdays)
	if vErr := validateTimeSlotInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	calendar, err := s.calendars.GetCalendarByHost(ctx, params.Principal.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrCalendarNotFound
		}
		return
	}

	candidate := conflict.Slot{
		CalendarID: calendar.ID,
		Start:      input.Start,
		End:        input.End,
		Weekdays:   input.Weekdays,
	}

	now := s.now()
	slot, err = s.slots.CreateTimeSlot(ctx, TimeSlot{
		ID:         s.idGenerator(),
		CalendarID: calendar.ID,
		Start:      input.Start,
		End:        input.End,
		Weekdays:   input.Weekdays,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, func(existing []TimeSlot) error {
		return conflict.CheckSlot(toConflictSlots(existing), candidate)
	})
	return
}

// ListTimeSlots returns the slots published on the host's calendar.
func (s *TimeSlotService) ListTimeSlots(ctx context.Context, principal Principal) ([]TimeSlot, error) {
	if s == nil {
		return nil, fmt.Errorf("TimeSlotService is nil")
	}
	if s.slots == nil || s.calendars == nil {
		return nil, fmt.Errorf("time slot service not configured")
	}
	if !principal.IsHost {
		return nil, ErrGuestPermission
	}

	calendar, err := s.calendars.GetCalendarByHost(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrCalendarNotFound
		}
		return nil, err
	}

	return s.slots.ListTimeSlots(ctx, calendar.ID)
}

func toConflictSlots(slots []TimeSlot) []conflict.Slot {
	if len(slots) == 0 {
		return nil
	}
	out := make([]conflict.Slot, 0, len(slots))
	for _, slot := range slots {
		out = append(out, conflict.Slot{
			ID:         slot.ID,
			CalendarID: slot.CalendarID,
			Start:      slot.Start,
			End:        slot.End,
			Weekdays:   slot.Weekdays,
		})
	}
	return out
}

func dedupeWeekdays(weekdays []calendardate.Weekday) []calendardate.Weekday {
	seen := make(map[calendardate.Weekday]struct{}, len(weekdays))
	out := make([]calendardate.Weekday, 0, len(weekdays))
	for _, day := range weekdays {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	return out
}

func validateTimeSlotInput(input TimeSlotInput) *ValidationError {
	vErr := &ValidationError{}

	if !input.Start.Valid() {
		vErr.add("start_time", "start time is invalid")
	}
	if !input.End.Valid() {
		vErr.add("end_time", "end time is invalid")
	}
	if len(input.Weekdays) == 0 {
		vErr.add("weekdays", "at least one weekday is required")
	}
	for _, day := range input.Weekdays {
		if !day.Valid() {
			vErr.add("weekdays", "weekdays must be between 0 (Monday) and 6 (Sunday)")
			break
		}
	}

	return vErr
}
