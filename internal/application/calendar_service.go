package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
)

// CalendarRepository captures the persistence operations needed by the calendar service.
type CalendarRepository interface {
	// CreateCalendar persists a calendar. A second calendar for the same host
	// violates the unique host constraint and surfaces as ErrCalendarExists.
	CreateCalendar(ctx context.Context, calendar Calendar) (Calendar, error)
	GetCalendarByHost(ctx context.Context, hostID string) (Calendar, error)
	UpdateCalendar(ctx context.Context, calendar Calendar) (Calendar, error)
}

// UserDirectory resolves account records for calendar and booking flows.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
}

// CalendarService orchestrates calendar creation, partial updates, and lookups.
type CalendarService struct {
	calendars   CalendarRepository
	users       UserDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCalendarService wires dependencies for the calendar service.
func NewCalendarService(calendars CalendarRepository, users UserDirectory, idGenerator func() string, now func() time.Time) *CalendarService {
	return NewCalendarServiceWithLogger(calendars, users, idGenerator, now, nil)
}

// NewCalendarServiceWithLogger constructs a CalendarService with a specified logger.
func NewCalendarServiceWithLogger(calendars CalendarRepository, users UserDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CalendarService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CalendarService{
		calendars:   calendars,
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *CalendarService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CalendarService", operation, attrs...)
}

// CreateCalendar publishes the host's calendar. Each host owns at most one.
func (s *CalendarService) CreateCalendar(ctx context.Context, params CreateCalendarParams) (calendar Calendar, err error) {
	if s == nil {
		return Calendar{}, fmt.Errorf("CalendarService is nil")
	}
	if s.calendars == nil {
		return Calendar{}, fmt.Errorf("calendar repository not configured")
	}

	logger := s.loggerWith(ctx, "CreateCalendar", "host_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "calendar creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("calendar_id", calendar.ID).InfoContext(ctx, "calendar created")
	}()

	if !params.Principal.IsHost {
		err = ErrGuestPermission
		return
	}

	input := CalendarInput{
		Topics:      dedupeTopics(params.Input.Topics),
		Description: strings.TrimSpace(params.Input.Description),
		ExternalID:  strings.TrimSpace(params.Input.ExternalID),
	}
	if vErr := validateCalendarInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	calendar, err = s.calendars.CreateCalendar(ctx, Calendar{
		ID:          s.idGenerator(),
		HostID:      params.Principal.UserID,
		Topics:      input.Topics,
		Description: input.Description,
		ExternalID:  input.ExternalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return
}

// UpdateCalendar applies the provided patch fields to the host's calendar.
func (s *CalendarService) UpdateCalendar(ctx context.Context, params UpdateCalendarParams) (calendar Calendar, err error) {
	if s == nil {
		return Calendar{}, fmt.Errorf("CalendarService is nil")
	}
	if s.calendars == nil {
		return Calendar{}, fmt.Errorf("calendar repository not configured")
	}

	logger := s.loggerWith(ctx, "UpdateCalendar", "host_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "calendar update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("calendar_id", calendar.ID).InfoContext(ctx, "calendar updated")
	}()

	if !params.Principal.IsHost {
		err = ErrGuestPermission
		return
	}

	existing, err := s.calendars.GetCalendarByHost(ctx, params.Principal.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrCalendarNotFound
		}
		return
	}

	patch := params.Patch
	vErr := &ValidationError{}
	updated := existing

	if patch.Topics != nil {
		topics := dedupeTopics(*patch.Topics)
		if len(topics) == 0 {
			vErr.add("topics", "at least one topic is required")
		}
		updated.Topics = topics
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if len(description) < 10 {
			vErr.add("description", "description must be at least 10 characters")
		}
		updated.Description = description
	}
	if patch.ExternalID != nil {
		externalID := strings.TrimSpace(*patch.ExternalID)
		if _, mailErr := mail.ParseAddress(externalID); mailErr != nil {
			vErr.add("external_calendar_id", "external calendar id is invalid")
		}
		updated.ExternalID = externalID
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated.UpdatedAt = s.now()
	calendar, err = s.calendars.UpdateCalendar(ctx, updated)
	return
}

// HostCalendarDetail resolves a host's calendar by username. The viewer, when
// present and equal to the host, unlocks the owned (detail) representation.
func (s *CalendarService) HostCalendarDetail(ctx context.Context, hostUsername string, viewer *Principal) (CalendarDetail, error) {
	if s == nil {
		return CalendarDetail{}, fmt.Errorf("CalendarService is nil")
	}
	if s.calendars == nil || s.users == nil {
		return CalendarDetail{}, fmt.Errorf("calendar service not configured")
	}

	host, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(hostUsername))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrHostNotFound
		}
		return CalendarDetail{}, err
	}

	calendar, err := s.calendars.GetCalendarByHost(ctx, host.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrCalendarNotFound
		}
		return CalendarDetail{}, err
	}

	owned := viewer != nil && viewer.UserID == host.ID
	return CalendarDetail{Calendar: calendar, Host: host, Owned: owned}, nil
}

// dedupeTopics removes duplicate topics while preserving first occurrence order.
func dedupeTopics(topics []string) []string {
	seen := make(map[string]struct{}, len(topics))
	out := make([]string, 0, len(topics))
	for _, topic := range topics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}
		out = append(out, topic)
	}
	return out
}

func validateCalendarInput(input CalendarInput) *ValidationError {
	vErr := &ValidationError{}

	if len(input.Topics) == 0 {
		vErr.add("topics", "at least one topic is required")
	}
	if len(input.Description) < 10 {
		vErr.add("description", "description must be at least 10 characters")
	}
	if _, err := mail.ParseAddress(input.ExternalID); err != nil {
		vErr.add("external_calendar_id", "external calendar id is invalid")
	}

	return vErr
}
