package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/booking-platform/internal/application"
	apihttp "github.com/example/booking-platform/internal/http"
	"github.com/example/booking-platform/internal/testfixtures"
)

func testHasher(password string) (string, error) {
	return "hash:" + password, nil
}

func testVerifier(hashedPassword, password string) error {
	if hashedPassword != "hash:"+password {
		return application.ErrInvalidCredentials
	}
	return nil
}

type apiFixture struct {
	store  *testfixtures.MemoryStore
	clock  *testfixtures.Clock
	server http.Handler
}

func newAPIFixture(t *testing.T, signupOpen bool) *apiFixture {
	t.Helper()

	store := testfixtures.NewMemoryStore()
	clock := testfixtures.NewClock(time.Time{})
	ids := testfixtures.NewIDGenerator("id")
	tokens := testfixtures.NewIDGenerator("token")

	accountService := application.NewAccountService(store, testHasher, ids.NextFunc(), clock.NowFunc())
	authService := application.NewAuthService(store, store, testVerifier, tokens.NextFunc(), clock.NowFunc(), time.Hour)
	calendarService := application.NewCalendarService(store, store, ids.NextFunc(), clock.NowFunc())
	timeSlotService := application.NewTimeSlotService(store, store, ids.NextFunc(), clock.NowFunc())
	bookingService := application.NewBookingService(store, store, store, store, ids.NextFunc(), clock.NowFunc())

	server := apihttp.NewRouter(apihttp.RouterConfig{
		Accounts:  apihttp.NewAccountHandler(accountService, signupOpen, nil),
		Auth:      apihttp.NewAuthHandler(authService, nil),
		Calendars: apihttp.NewCalendarHandler(calendarService, nil),
		TimeSlots: apihttp.NewTimeSlotHandler(timeSlotService, nil),
		Bookings:  apihttp.NewBookingHandler(bookingService, nil),
		Sessions:  authService,
	})

	return &apiFixture{store: store, clock: clock, server: server}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	f.server.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
	return body
}

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	code, _ := decodeBody(t, recorder)["error_code"].(string)
	return code
}

func (f *apiFixture) signup(t *testing.T, username, email string, isHost bool) {
	t.Helper()

	recorder := f.do(t, http.MethodPost, "/account/signup", "", map[string]any{
		"username":       username,
		"email":          email,
		"display_name":   "Test " + username,
		"password":       "password1",
		"password_again": "password1",
		"is_host":        isHost,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("signup for %s = %d: %s", username, recorder.Code, recorder.Body.String())
	}
}

func (f *apiFixture) login(t *testing.T, username string) string {
	t.Helper()

	recorder := f.do(t, http.MethodPost, "/account/login", "", map[string]any{
		"username": username,
		"password": "password1",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("login for %s = %d: %s", username, recorder.Code, recorder.Body.String())
	}
	token, _ := decodeBody(t, recorder)["token"].(string)
	if token == "" {
		t.Fatal("login response carries no token")
	}
	return token
}

func (f *apiFixture) createCalendar(t *testing.T, token string) {
	t.Helper()

	recorder := f.do(t, http.MethodPost, "/calendars", token, map[string]any{
		"topics":             []string{"go", "testing"},
		"description":        "Office hours for backend questions",
		"google_calendar_id": "host@example.com",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("calendar create = %d: %s", recorder.Code, recorder.Body.String())
	}
}

func (f *apiFixture) createTimeSlot(t *testing.T, token string, start, end string, weekdays []int) string {
	t.Helper()

	recorder := f.do(t, http.MethodPost, "/time-slots", token, map[string]any{
		"start_time": start,
		"end_time":   end,
		"weekdays":   weekdays,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("time slot create = %d: %s", recorder.Code, recorder.Body.String())
	}
	slot, _ := decodeBody(t, recorder)["time_slot"].(map[string]any)
	id, _ := slot["id"].(string)
	return id
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, true)
	if recorder := f.do(t, http.MethodGet, "/healthz", "", nil); recorder.Code != http.StatusNoContent {
		t.Fatalf("healthz = %d", recorder.Code)
	}
}

func TestSignupEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("creates an account", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)

		recorder := f.do(t, http.MethodPost, "/account/signup", "", map[string]any{
			"username":       "alice",
			"email":          "alice@example.com",
			"display_name":   "Alice A",
			"password":       "password1",
			"password_again": "password1",
			"is_host":        true,
		})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
		}

		user, _ := decodeBody(t, recorder)["user"].(map[string]any)
		if user["username"] != "alice" || user["is_host"] != true {
			t.Fatalf("user = %v", user)
		}
		if user["email"] != "alice@example.com" {
			t.Fatal("the owner's own representation should include the email")
		}
	})

	t.Run("rejects when signups are closed", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, false)

		recorder := f.do(t, http.MethodPost, "/account/signup", "", map[string]any{
			"username": "alice",
		})
		if recorder.Code != http.StatusForbidden {
			t.Fatalf("status = %d", recorder.Code)
		}
		if code := errorCode(t, recorder); code != "SIGNUP_CLOSED" {
			t.Fatalf("error_code = %q", code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)

		req := httptest.NewRequest(http.MethodPost, "/account/signup", bytes.NewBufferString("{"))
		recorder := httptest.NewRecorder()
		f.server.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", recorder.Code)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", false)

		recorder := f.do(t, http.MethodPost, "/account/signup", "", map[string]any{
			"username":       "alice",
			"email":          "other@example.com",
			"display_name":   "Other Alice",
			"password":       "password1",
			"password_again": "password1",
		})
		if recorder.Code != http.StatusConflict {
			t.Fatalf("status = %d", recorder.Code)
		}
		if code := errorCode(t, recorder); code != "ACCOUNT_USERNAME_TAKEN" {
			t.Fatalf("error_code = %q", code)
		}
	})

	t.Run("validation errors are itemized", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)

		recorder := f.do(t, http.MethodPost, "/account/signup", "", map[string]any{
			"username":       "al",
			"email":          "not-an-address",
			"display_name":   "Alice A",
			"password":       "pw",
			"password_again": "pw",
		})
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d", recorder.Code)
		}
		body := decodeBody(t, recorder)
		if body["error_code"] != "VALIDATION_FAILED" {
			t.Fatalf("error_code = %v", body["error_code"])
		}
		fields, _ := body["errors"].(map[string]any)
		for _, field := range []string{"username", "email", "password"} {
			if _, ok := fields[field]; !ok {
				t.Fatalf("expected field %q in %v", field, fields)
			}
		}
	})
}

func TestLoginAndSessionFlow(t *testing.T) {
	t.Parallel()

	t.Run("login issues token, cookie, and header", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", true)

		recorder := f.do(t, http.MethodPost, "/account/login", "", map[string]any{
			"username": "alice",
			"password": "password1",
		})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
		}
		if recorder.Header().Get("X-Session-Token") == "" {
			t.Fatal("missing X-Session-Token header")
		}

		var sessionCookie *http.Cookie
		for _, cookie := range recorder.Result().Cookies() {
			if cookie.Name == "session_token" {
				sessionCookie = cookie
			}
		}
		if sessionCookie == nil || sessionCookie.Value == "" || !sessionCookie.HttpOnly {
			t.Fatalf("session cookie = %+v", sessionCookie)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", false)

		recorder := f.do(t, http.MethodPost, "/account/login", "", map[string]any{
			"username": "alice",
			"password": "wrong-password",
		})
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", recorder.Code)
		}
		if code := errorCode(t, recorder); code != "AUTH_INVALID_CREDENTIALS" {
			t.Fatalf("error_code = %q", code)
		}
	})

	t.Run("authenticated routes require a token", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)

		if recorder := f.do(t, http.MethodGet, "/account/@me", "", nil); recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", recorder.Code)
		}
	})

	t.Run("bearer token unlocks the profile", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", true)
		token := f.login(t, "alice")

		recorder := f.do(t, http.MethodGet, "/account/@me", token, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
		}
		user, _ := decodeBody(t, recorder)["user"].(map[string]any)
		if user["username"] != "alice" {
			t.Fatalf("user = %v", user)
		}
	})

	t.Run("session cookie works as a fallback", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", false)
		token := f.login(t, "alice")

		req := httptest.NewRequest(http.MethodGet, "/account/@me", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
		recorder := httptest.NewRecorder()
		f.server.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
		}
	})

	t.Run("expired session", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", false)
		token := f.login(t, "alice")

		f.clock.Advance(2 * time.Hour)
		recorder := f.do(t, http.MethodGet, "/account/@me", token, nil)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", recorder.Code)
		}
		if code := errorCode(t, recorder); code != "AUTH_SESSION_EXPIRED" {
			t.Fatalf("error_code = %q", code)
		}
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", false)
		token := f.login(t, "alice")

		if recorder := f.do(t, http.MethodPost, "/account/logout", token, nil); recorder.Code != http.StatusNoContent {
			t.Fatalf("logout status = %d", recorder.Code)
		}

		recorder := f.do(t, http.MethodGet, "/account/@me", token, nil)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", recorder.Code)
		}
		if code := errorCode(t, recorder); code != "AUTH_SESSION_REVOKED" {
			t.Fatalf("error_code = %q", code)
		}
	})

	t.Run("logout without a token", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)

		recorder := f.do(t, http.MethodPost, "/account/logout", "", nil)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", recorder.Code)
		}
	})
}

func TestProfileEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("patch updates the profile", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", false)
		token := f.login(t, "alice")

		recorder := f.do(t, http.MethodPatch, "/account/@me", token, map[string]any{
			"display_name": "Renamed Alice",
		})
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
		}
		user, _ := decodeBody(t, recorder)["user"].(map[string]any)
		if user["display_name"] != "Renamed Alice" {
			t.Fatalf("user = %v", user)
		}
	})

	t.Run("public detail hides the email", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", true)

		recorder := f.do(t, http.MethodGet, "/account/users/alice", "", nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d", recorder.Code)
		}
		user, _ := decodeBody(t, recorder)["user"].(map[string]any)
		if _, ok := user["email"]; ok {
			t.Fatal("public representation must omit the email")
		}
	})

	t.Run("unknown username", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)

		if recorder := f.do(t, http.MethodGet, "/account/users/nobody", "", nil); recorder.Code != http.StatusNotFound {
			t.Fatalf("status = %d", recorder.Code)
		}
	})

	t.Run("delete unregisters the account", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", false)
		token := f.login(t, "alice")

		if recorder := f.do(t, http.MethodDelete, "/account/@me", token, nil); recorder.Code != http.StatusNoContent {
			t.Fatalf("delete status = %d", recorder.Code)
		}

		recorder := f.do(t, http.MethodPost, "/account/login", "", map[string]any{
			"username": "alice",
			"password": "password1",
		})
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("login after unregistration = %d", recorder.Code)
		}
	})
}

func TestCalendarEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("host publishes and views their calendar", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", true)
		token := f.login(t, "alice")
		f.createCalendar(t, token)

		recorder := f.do(t, http.MethodGet, "/calendars/alice", token, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
		}
		body := decodeBody(t, recorder)
		if body["owned"] != true {
			t.Fatal("owner view should be marked owned")
		}
		calendar, _ := body["calendar"].(map[string]any)
		if calendar["google_calendar_id"] != "host@example.com" {
			t.Fatal("owner view should include the external calendar reference")
		}
	})

	t.Run("anonymous detail hides the external reference", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", true)
		token := f.login(t, "alice")
		f.createCalendar(t, token)

		recorder := f.do(t, http.MethodGet, "/calendars/alice", "", nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d", recorder.Code)
		}
		body := decodeBody(t, recorder)
		if body["owned"] != false {
			t.Fatal("anonymous view must not be owned")
		}
		calendar, _ := body["calendar"].(map[string]any)
		if _, ok := calendar["google_calendar_id"]; ok {
			t.Fatal("anonymous view must omit the external calendar reference")
		}
	})

	t.Run("guests cannot publish calendars", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "bob", "bob@example.com", false)
		token := f.login(t, "bob")

		recorder := f.do(t, http.MethodPost, "/calendars", token, map[string]any{
			"topics":             []string{"go"},
			"description":        "A perfectly valid description",
			"google_calendar_id": "bob@example.com",
		})
		if recorder.Code != http.StatusForbidden {
			t.Fatalf("status = %d", recorder.Code)
		}
		if code := errorCode(t, recorder); code != "ACCOUNT_NOT_HOST" {
			t.Fatalf("error_code = %q", code)
		}
	})

	t.Run("second calendar conflicts", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", true)
		token := f.login(t, "alice")
		f.createCalendar(t, token)

		recorder := f.do(t, http.MethodPost, "/calendars", token, map[string]any{
			"topics":             []string{"go"},
			"description":        "A perfectly valid description",
			"google_calendar_id": "host@example.com",
		})
		if recorder.Code != http.StatusConflict {
			t.Fatalf("status = %d", recorder.Code)
		}
		if code := errorCode(t, recorder); code != "CALENDAR_EXISTS" {
			t.Fatalf("error_code = %q", code)
		}
	})

	t.Run("patch updates the description", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", true)
		token := f.login(t, "alice")
		f.createCalendar(t, token)

		recorder := f.do(t, http.MethodPatch, "/calendars", token, map[string]any{
			"description": "Updated office hours description",
		})
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
		}
		calendar, _ := decodeBody(t, recorder)["calendar"].(map[string]any)
		if calendar["description"] != "Updated office hours description" {
			t.Fatalf("calendar = %v", calendar)
		}
	})
}

func TestTimeSlotEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("publishes and lists slots", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", true)
		token := f.login(t, "alice")
		f.createCalendar(t, token)

		f.createTimeSlot(t, token, "10:00", "11:00", []int{0, 2})

		recorder := f.do(t, http.MethodGet, "/time-slots", token, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d", recorder.Code)
		}
		slots, _ := decodeBody(t, recorder)["time_slots"].([]any)
		if len(slots) != 1 {
			t.Fatalf("got %d slots, want 1", len(slots))
		}
		slot, _ := slots[0].(map[string]any)
		if slot["start_time"] != "10:00" || slot["end_time"] != "11:00" {
			t.Fatalf("slot = %v", slot)
		}
	})

	t.Run("overlapping slot conflicts", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", true)
		token := f.login(t, "alice")
		f.createCalendar(t, token)
		f.createTimeSlot(t, token, "10:00", "11:00", []int{0})

		recorder := f.do(t, http.MethodPost, "/time-slots", token, map[string]any{
			"start_time": "10:30",
			"end_time":   "11:30",
			"weekdays":   []int{0},
		})
		if recorder.Code != http.StatusConflict {
			t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
		}
		if code := errorCode(t, recorder); code != "TIME_SLOT_OVERLAP" {
			t.Fatalf("error_code = %q", code)
		}
	})

	t.Run("inverted interval", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", true)
		token := f.login(t, "alice")
		f.createCalendar(t, token)

		recorder := f.do(t, http.MethodPost, "/time-slots", token, map[string]any{
			"start_time": "12:00",
			"end_time":   "11:00",
			"weekdays":   []int{0},
		})
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d", recorder.Code)
		}
		if code := errorCode(t, recorder); code != "TIME_SLOT_INVALID_INTERVAL" {
			t.Fatalf("error_code = %q", code)
		}
	})

	t.Run("unparseable clock value", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		f.signup(t, "alice", "alice@example.com", true)
		token := f.login(t, "alice")
		f.createCalendar(t, token)

		recorder := f.do(t, http.MethodPost, "/time-slots", token, map[string]any{
			"start_time": "ten o'clock",
			"end_time":   "11:00",
			"weekdays":   []int{0},
		})
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", recorder.Code)
		}
	})
}

func TestBookingEndpoints(t *testing.T) {
	t.Parallel()

	// seedHost registers a host with one Monday/Wednesday slot and a guest,
	// returning the guest's token and the slot id.
	seedHost := func(t *testing.T, f *apiFixture) (string, string) {
		t.Helper()
		f.signup(t, "alice", "alice@example.com", true)
		hostToken := f.login(t, "alice")
		f.createCalendar(t, hostToken)
		slotID := f.createTimeSlot(t, hostToken, "10:00", "11:00", []int{0, 2})

		f.signup(t, "bob", "bob@example.com", false)
		return f.login(t, "bob"), slotID
	}

	t.Run("books an appointment", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		guestToken, slotID := seedHost(t, f)

		recorder := f.do(t, http.MethodPost, "/bookings/alice", guestToken, map[string]any{
			"time_slot_id": slotID,
			"date":         "2025-06-02",
			"topic":        "code review",
			"description":  "please look at the retry logic",
		})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
		}
		booking, _ := decodeBody(t, recorder)["booking"].(map[string]any)
		if booking["date"] != "2025-06-02" || booking["topic"] != "code review" {
			t.Fatalf("booking = %v", booking)
		}
		slot, _ := booking["time_slot"].(map[string]any)
		if slot["id"] != slotID {
			t.Fatalf("booking slot = %v", slot)
		}
	})

	t.Run("past dates are rejected", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		guestToken, slotID := seedHost(t, f)

		recorder := f.do(t, http.MethodPost, "/bookings/alice", guestToken, map[string]any{
			"time_slot_id": slotID,
			"date":         "2025-05-26",
		})
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d", recorder.Code)
		}
		if code := errorCode(t, recorder); code != "BOOKING_PAST_DATE" {
			t.Fatalf("error_code = %q", code)
		}
	})

	t.Run("weekday outside the slot reads as not found", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		guestToken, slotID := seedHost(t, f)

		recorder := f.do(t, http.MethodPost, "/bookings/alice", guestToken, map[string]any{
			"time_slot_id": slotID,
			"date":         "2025-06-03",
		})
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("status = %d", recorder.Code)
		}
		if code := errorCode(t, recorder); code != "TIME_SLOT_NOT_FOUND" {
			t.Fatalf("error_code = %q", code)
		}
	})

	t.Run("unparseable date", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		guestToken, slotID := seedHost(t, f)

		recorder := f.do(t, http.MethodPost, "/bookings/alice", guestToken, map[string]any{
			"time_slot_id": slotID,
			"date":         "first Monday of June",
		})
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", recorder.Code)
		}
	})

	t.Run("lists the guest's bookings", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		guestToken, slotID := seedHost(t, f)

		for _, date := range []string{"2025-06-11", "2025-06-04"} {
			recorder := f.do(t, http.MethodPost, "/bookings/alice", guestToken, map[string]any{
				"time_slot_id": slotID,
				"date":         date,
			})
			if recorder.Code != http.StatusCreated {
				t.Fatalf("booking for %s = %d: %s", date, recorder.Code, recorder.Body.String())
			}
		}

		recorder := f.do(t, http.MethodGet, "/bookings", guestToken, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d", recorder.Code)
		}
		bookings, _ := decodeBody(t, recorder)["bookings"].([]any)
		if len(bookings) != 2 {
			t.Fatalf("got %d bookings, want 2", len(bookings))
		}
		first, _ := bookings[0].(map[string]any)
		if first["date"] != "2025-06-04" {
			t.Fatalf("bookings should be date ordered, first = %v", first)
		}
	})

	t.Run("availability view", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		_, slotID := seedHost(t, f)

		recorder := f.do(t, http.MethodGet, "/calendars/alice/availability/2025/6", "", nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
		}
		body := decodeBody(t, recorder)
		if body["year"] != float64(2025) || body["month"] != float64(6) {
			t.Fatalf("header = %v-%v", body["year"], body["month"])
		}
		grid, _ := body["grid"].([]any)
		if len(grid) != 30 {
			t.Fatalf("grid length = %d, want 30", len(grid))
		}

		slots, _ := body["slots"].([]any)
		if len(slots) != 1 {
			t.Fatalf("got %d slot views, want 1", len(slots))
		}
		view, _ := slots[0].(map[string]any)
		slot, _ := view["time_slot"].(map[string]any)
		if slot["id"] != slotID {
			t.Fatalf("slot view = %v", view)
		}
		dates, _ := view["dates"].([]any)
		if len(dates) != 9 {
			t.Fatalf("got %d dates, want 9", len(dates))
		}
		if view["next_date"] != "2025-06-02" {
			t.Fatalf("next_date = %v", view["next_date"])
		}
	})

	t.Run("non-numeric month segment", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)
		seedHost(t, f)

		recorder := f.do(t, http.MethodGet, "/calendars/alice/availability/2025/June", "", nil)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", recorder.Code)
		}
	})

	t.Run("unknown host availability", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t, true)

		recorder := f.do(t, http.MethodGet, "/calendars/nobody/availability/2025/6", "", nil)
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("status = %d", recorder.Code)
		}
		if code := errorCode(t, recorder); code != "HOST_NOT_FOUND" {
			t.Fatalf("error_code = %q", code)
		}
	})
}

func TestRequestLoggerMiddleware(t *testing.T) {
	t.Parallel()

	var handled bool
	wrapped := apihttp.RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apihttp.LoggerFromContext(r.Context()) == nil {
			t.Error("request scoped logger missing from context")
		}
		handled = true
		w.WriteHeader(http.StatusNoContent)
	}))

	recorder := httptest.NewRecorder()
	wrapped.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if !handled || recorder.Code != http.StatusNoContent {
		t.Fatalf("handled=%v status=%d", handled, recorder.Code)
	}
}
