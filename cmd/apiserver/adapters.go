package main

import (
	"context"
	"errors"
	"time"

	"github.com/example/booking-platform/internal/application"
	"github.com/example/booking-platform/internal/persistence"
	"github.com/example/booking-platform/internal/persistence/sqlite"
)

// The adapters translate between the application layer's storage contracts
// and the SQLite repositories: model conversion plus mapping the persistence
// errors onto the application sentinels.

func mapPersistenceError(err error) error {
	if err == nil {
		return nil
	}

	var cErr *persistence.ConstraintError
	if errors.As(err, &cErr) {
		switch cErr.Constraint {
		case "users.username":
			return application.ErrDuplicateUsername
		case "users.email":
			return application.ErrDuplicateEmail
		case "calendars.host_id":
			return application.ErrCalendarExists
		}
		return err
	}

	if errors.Is(err, persistence.ErrNotFound) {
		return application.ErrNotFound
	}

	return err
}

// --- accounts ---

// accountRepositoryAdapter satisfies application.AccountRepository,
// application.UserDirectory, and application.CredentialStore.
type accountRepositoryAdapter struct {
	repo *sqlite.UserRepository
}

func newAccountRepositoryAdapter(repo *sqlite.UserRepository) *accountRepositoryAdapter {
	return &accountRepositoryAdapter{repo: repo}
}

func (a *accountRepositoryAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	stored, err := a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash))
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *accountRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *accountRepositoryAdapter) GetUserByUsername(ctx context.Context, username string) (application.User, error) {
	stored, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *accountRepositoryAdapter) UpdateUser(ctx context.Context, user application.User, passwordHash *string) (application.User, error) {
	hash := ""
	if passwordHash != nil {
		hash = *passwordHash
	} else {
		current, err := a.repo.GetUser(ctx, user.ID)
		if err != nil {
			return application.User{}, mapPersistenceError(err)
		}
		hash = current.PasswordHash
	}

	stored, err := a.repo.UpdateUser(ctx, toPersistenceUser(user, hash))
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *accountRepositoryAdapter) DeleteUser(ctx context.Context, id string) error {
	return mapPersistenceError(a.repo.DeleteUser(ctx, id))
}

func (a *accountRepositoryAdapter) GetCredentialsByUsername(ctx context.Context, username string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return application.UserCredentials{}, mapPersistenceError(err)
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		PasswordHash: passwordHash,
		IsHost:       user.IsHost,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationUser(user persistence.User) application.User {
	return application.User{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsHost:      user.IsHost,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// --- sessions ---

type sessionRepositoryAdapter struct {
	repo *sqlite.SessionRepository
}

func newSessionRepositoryAdapter(repo *sqlite.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return mapPersistenceError(a.repo.DeleteExpiredSessions(ctx, reference))
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		RevokedAt: session.RevokedAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

func toApplicationSession(session persistence.Session) application.Session {
	return application.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		RevokedAt: session.RevokedAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

// --- calendars ---

type calendarRepositoryAdapter struct {
	repo *sqlite.CalendarRepository
}

func newCalendarRepositoryAdapter(repo *sqlite.CalendarRepository) *calendarRepositoryAdapter {
	return &calendarRepositoryAdapter{repo: repo}
}

func (a *calendarRepositoryAdapter) CreateCalendar(ctx context.Context, calendar application.Calendar) (application.Calendar, error) {
	stored, err := a.repo.CreateCalendar(ctx, toPersistenceCalendar(calendar))
	if err != nil {
		return application.Calendar{}, mapPersistenceError(err)
	}
	return toApplicationCalendar(stored), nil
}

func (a *calendarRepositoryAdapter) GetCalendarByHost(ctx context.Context, hostID string) (application.Calendar, error) {
	stored, err := a.repo.GetCalendarByHost(ctx, hostID)
	if err != nil {
		return application.Calendar{}, mapPersistenceError(err)
	}
	return toApplicationCalendar(stored), nil
}

func (a *calendarRepositoryAdapter) UpdateCalendar(ctx context.Context, calendar application.Calendar) (application.Calendar, error) {
	stored, err := a.repo.UpdateCalendar(ctx, toPersistenceCalendar(calendar))
	if err != nil {
		return application.Calendar{}, mapPersistenceError(err)
	}
	return toApplicationCalendar(stored), nil
}

func toPersistenceCalendar(calendar application.Calendar) persistence.Calendar {
	return persistence.Calendar{
		ID:          calendar.ID,
		HostID:      calendar.HostID,
		Topics:      calendar.Topics,
		Description: calendar.Description,
		ExternalID:  calendar.ExternalID,
		CreatedAt:   calendar.CreatedAt,
		UpdatedAt:   calendar.UpdatedAt,
	}
}

func toApplicationCalendar(calendar persistence.Calendar) application.Calendar {
	return application.Calendar{
		ID:          calendar.ID,
		HostID:      calendar.HostID,
		Topics:      calendar.Topics,
		Description: calendar.Description,
		ExternalID:  calendar.ExternalID,
		CreatedAt:   calendar.CreatedAt,
		UpdatedAt:   calendar.UpdatedAt,
	}
}

// --- time slots ---

type timeSlotRepositoryAdapter struct {
	repo *sqlite.TimeSlotRepository
}

func newTimeSlotRepositoryAdapter(repo *sqlite.TimeSlotRepository) *timeSlotRepositoryAdapter {
	return &timeSlotRepositoryAdapter{repo: repo}
}

func (a *timeSlotRepositoryAdapter) CreateTimeSlot(ctx context.Context, slot application.TimeSlot, admit func(existing []application.TimeSlot) error) (application.TimeSlot, error) {
	stored, err := a.repo.CreateTimeSlot(ctx, toPersistenceTimeSlot(slot), func(existing []persistence.TimeSlot) error {
		return admit(toApplicationTimeSlots(existing))
	})
	if err != nil {
		return application.TimeSlot{}, mapPersistenceError(err)
	}
	return toApplicationTimeSlot(stored), nil
}

func (a *timeSlotRepositoryAdapter) ListTimeSlots(ctx context.Context, calendarID string) ([]application.TimeSlot, error) {
	stored, err := a.repo.ListTimeSlots(ctx, calendarID)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	return toApplicationTimeSlots(stored), nil
}

func (a *timeSlotRepositoryAdapter) GetTimeSlot(ctx context.Context, id, calendarID string) (application.TimeSlot, error) {
	stored, err := a.repo.GetTimeSlot(ctx, id, calendarID)
	if err != nil {
		return application.TimeSlot{}, mapPersistenceError(err)
	}
	return toApplicationTimeSlot(stored), nil
}

func toPersistenceTimeSlot(slot application.TimeSlot) persistence.TimeSlot {
	return persistence.TimeSlot{
		ID:         slot.ID,
		CalendarID: slot.CalendarID,
		Start:      slot.Start,
		End:        slot.End,
		Weekdays:   slot.Weekdays,
		CreatedAt:  slot.CreatedAt,
		UpdatedAt:  slot.UpdatedAt,
	}
}

func toApplicationTimeSlot(slot persistence.TimeSlot) application.TimeSlot {
	return application.TimeSlot{
		ID:         slot.ID,
		CalendarID: slot.CalendarID,
		Start:      slot.Start,
		End:        slot.End,
		Weekdays:   slot.Weekdays,
		CreatedAt:  slot.CreatedAt,
		UpdatedAt:  slot.UpdatedAt,
	}
}

func toApplicationTimeSlots(slots []persistence.TimeSlot) []application.TimeSlot {
	if len(slots) == 0 {
		return nil
	}
	converted := make([]application.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		converted = append(converted, toApplicationTimeSlot(slot))
	}
	return converted
}

// --- bookings ---

type bookingRepositoryAdapter struct {
	repo  *sqlite.BookingRepository
	slots *sqlite.TimeSlotRepository
}

func newBookingRepositoryAdapter(repo *sqlite.BookingRepository, slots *sqlite.TimeSlotRepository) *bookingRepositoryAdapter {
	return &bookingRepositoryAdapter{repo: repo, slots: slots}
}

func (a *bookingRepositoryAdapter) CreateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	stored, err := a.repo.CreateBooking(ctx, persistence.Booking{
		ID:          booking.ID,
		TimeSlotID:  booking.TimeSlotID,
		GuestID:     booking.GuestID,
		When:        booking.When,
		Topic:       booking.Topic,
		Description: booking.Description,
		CreatedAt:   booking.CreatedAt,
	})
	if err != nil {
		return application.Booking{}, mapPersistenceError(err)
	}

	booking.ID = stored.ID
	return booking, nil
}

func (a *bookingRepositoryAdapter) ListBookingsByGuest(ctx context.Context, guestID string) ([]application.Booking, error) {
	stored, err := a.repo.ListBookingsByGuest(ctx, guestID)
	if err != nil {
		return nil, mapPersistenceError(err)
	}

	bookings := make([]application.Booking, 0, len(stored))
	for _, record := range stored {
		booking := application.Booking{
			ID:          record.ID,
			TimeSlotID:  record.TimeSlotID,
			GuestID:     record.GuestID,
			When:        record.When,
			Topic:       record.Topic,
			Description: record.Description,
			CreatedAt:   record.CreatedAt,
		}
		// Materialize the referenced slot for response composition; a slot
		// deleted since booking leaves the zero value.
		if slot, err := a.slots.GetTimeSlotByID(ctx, record.TimeSlotID); err == nil {
			booking.Slot = toApplicationTimeSlot(slot)
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}
