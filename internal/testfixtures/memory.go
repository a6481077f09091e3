package testfixtures

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/booking-platform/internal/application"
)

// MemoryStore is an in-memory implementation of every repository interface the
// application services depend on. It returns the application sentinels
// directly, mirroring the contract of the SQLite-backed repositories.
type MemoryStore struct {
	mu        sync.Mutex
	users     map[string]application.User
	hashes    map[string]string
	sessions  map[string]application.Session
	calendars map[string]application.Calendar
	slots     map[string]application.TimeSlot
	bookings  map[string]application.Booking
	slotSeq   []string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]application.User),
		hashes:    make(map[string]string),
		sessions:  make(map[string]application.Session),
		calendars: make(map[string]application.Calendar),
		slots:     make(map[string]application.TimeSlot),
		bookings:  make(map[string]application.Booking),
	}
}

// --- application.AccountRepository ---

func (s *MemoryStore) CreateUser(_ context.Context, user application.User, passwordHash string) (application.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return application.User{}, application.ErrDuplicateUsername
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return application.User{}, application.ErrDuplicateEmail
		}
	}

	s.users[user.ID] = user
	s.hashes[user.ID] = passwordHash
	return user, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (application.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return application.User{}, application.ErrNotFound
	}
	return user, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (application.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.findByUsernameLocked(username)
	if !ok {
		return application.User{}, application.ErrNotFound
	}
	return user, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, user application.User, passwordHash *string) (application.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return application.User{}, application.ErrNotFound
	}

	for id, existing := range s.users {
		if id == user.ID {
			continue
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return application.User{}, application.ErrDuplicateEmail
		}
	}

	s.users[user.ID] = user
	if passwordHash != nil {
		s.hashes[user.ID] = *passwordHash
	}
	return user, nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return application.ErrNotFound
	}

	delete(s.users, id)
	delete(s.hashes, id)

	for token, session := range s.sessions {
		if session.UserID == id {
			delete(s.sessions, token)
		}
	}
	for bookingID, booking := range s.bookings {
		if booking.GuestID == id {
			delete(s.bookings, bookingID)
		}
	}
	for calendarID, calendar := range s.calendars {
		if calendar.HostID != id {
			continue
		}
		delete(s.calendars, calendarID)
		for slotID, slot := range s.slots {
			if slot.CalendarID != calendarID {
				continue
			}
			delete(s.slots, slotID)
			s.slotSeq = removeID(s.slotSeq, slotID)
			for bookingID, booking := range s.bookings {
				if booking.TimeSlotID == slotID {
					delete(s.bookings, bookingID)
				}
			}
		}
	}

	return nil
}

// --- application.CredentialStore ---

func (s *MemoryStore) GetCredentialsByUsername(_ context.Context, username string) (application.UserCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.findByUsernameLocked(username)
	if !ok {
		return application.UserCredentials{}, application.ErrNotFound
	}
	return application.UserCredentials{User: user, PasswordHash: s.hashes[user.ID]}, nil
}

// --- application.SessionRepository ---

func (s *MemoryStore) CreateSession(_ context.Context, session application.Session) (application.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.Token] = session
	return session, nil
}

func (s *MemoryStore) GetSession(_ context.Context, token string) (application.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return application.Session{}, application.ErrNotFound
	}
	return session, nil
}

func (s *MemoryStore) RevokeSession(_ context.Context, token string, revokedAt time.Time) (application.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok || session.RevokedAt != nil {
		return application.Session{}, application.ErrNotFound
	}

	session.RevokedAt = &revokedAt
	session.UpdatedAt = revokedAt
	s.sessions[token] = session
	return session, nil
}

func (s *MemoryStore) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}

// --- application.CalendarRepository ---

func (s *MemoryStore) CreateCalendar(_ context.Context, calendar application.Calendar) (application.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.calendars {
		if existing.HostID == calendar.HostID {
			return application.Calendar{}, application.ErrCalendarExists
		}
	}

	s.calendars[calendar.ID] = calendar
	return calendar, nil
}

func (s *MemoryStore) GetCalendarByHost(_ context.Context, hostID string) (application.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, calendar := range s.calendars {
		if calendar.HostID == hostID {
			return calendar, nil
		}
	}
	return application.Calendar{}, application.ErrNotFound
}

func (s *MemoryStore) UpdateCalendar(_ context.Context, calendar application.Calendar) (application.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.calendars[calendar.ID]; !ok {
		return application.Calendar{}, application.ErrNotFound
	}

	s.calendars[calendar.ID] = calendar
	return calendar, nil
}

// --- application.TimeSlotRepository ---

func (s *MemoryStore) CreateTimeSlot(_ context.Context, slot application.TimeSlot, admit func(existing []application.TimeSlot) error) (application.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.slotsForCalendarLocked(slot.CalendarID)
	if err := admit(existing); err != nil {
		return application.TimeSlot{}, err
	}

	s.slots[slot.ID] = slot
	s.slotSeq = append(s.slotSeq, slot.ID)
	return slot, nil
}

func (s *MemoryStore) ListTimeSlots(_ context.Context, calendarID string) ([]application.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.slotsForCalendarLocked(calendarID), nil
}

func (s *MemoryStore) GetTimeSlot(_ context.Context, id, calendarID string) (application.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok || slot.CalendarID != calendarID {
		return application.TimeSlot{}, application.ErrNotFound
	}
	return slot, nil
}

// --- application.BookingRepository ---

func (s *MemoryStore) CreateBooking(_ context.Context, booking application.Booking) (application.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookings[booking.ID] = booking
	return booking, nil
}

func (s *MemoryStore) ListBookingsByGuest(_ context.Context, guestID string) ([]application.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bookings []application.Booking
	for _, booking := range s.bookings {
		if booking.GuestID == guestID {
			bookings = append(bookings, booking)
		}
	}

	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].When.Equal(bookings[j].When) {
			return bookings[i].CreatedAt.Before(bookings[j].CreatedAt)
		}
		return bookings[i].When.Before(bookings[j].When)
	})

	return bookings, nil
}

// --- helpers ---

func (s *MemoryStore) findByUsernameLocked(username string) (application.User, bool) {
	for _, user := range s.users {
		if user.Username == username {
			return user, true
		}
	}
	return application.User{}, false
}

func (s *MemoryStore) slotsForCalendarLocked(calendarID string) []application.TimeSlot {
	var slots []application.TimeSlot
	for _, id := range s.slotSeq {
		slot, ok := s.slots[id]
		if ok && slot.CalendarID == calendarID {
			slots = append(slots, slot)
		}
	}
	return slots
}

func removeID(ids []string, target string) []string {
	result := ids[:0]
	for _, id := range ids {
		if id != target {
			result = append(result, id)
		}
	}
	return result
}
