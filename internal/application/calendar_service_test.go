package application_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/example/booking-platform/internal/application"
	"github.com/example/booking-platform/internal/testfixtures"
)

func newCalendarService(store *testfixtures.MemoryStore) *application.CalendarService {
	ids := testfixtures.NewIDGenerator("cal")
	clock := testfixtures.NewClock(time.Time{})
	return application.NewCalendarService(store, store, ids.NextFunc(), clock.NowFunc())
}

func hostPrincipal(id string) application.Principal {
	return application.Principal{UserID: id, IsHost: true}
}

func calendarInput() application.CalendarInput {
	return application.CalendarInput{
		Topics:      []string{"go", "databases"},
		Description: "Office hours for backend questions",
		ExternalID:  "host@example.com",
	}
}

func TestCalendarServiceCreateCalendar(t *testing.T) {
	t.Parallel()

	t.Run("publishes a calendar for a host", func(t *testing.T) {
		t.Parallel()
		service := newCalendarService(testfixtures.NewMemoryStore())

		calendar, err := service.CreateCalendar(context.Background(), application.CreateCalendarParams{
			Principal: hostPrincipal("host-1"),
			Input:     calendarInput(),
		})
		if err != nil {
			t.Fatalf("CreateCalendar returned error: %v", err)
		}
		if calendar.ID != "cal-1" || calendar.HostID != "host-1" {
			t.Fatalf("calendar = %+v", calendar)
		}
	})

	t.Run("rejects guests", func(t *testing.T) {
		t.Parallel()
		service := newCalendarService(testfixtures.NewMemoryStore())

		_, err := service.CreateCalendar(context.Background(), application.CreateCalendarParams{
			Principal: application.Principal{UserID: "guest-1"},
			Input:     calendarInput(),
		})
		if !errors.Is(err, application.ErrGuestPermission) {
			t.Fatalf("expected ErrGuestPermission, got %v", err)
		}
	})

	t.Run("one calendar per host", func(t *testing.T) {
		t.Parallel()
		service := newCalendarService(testfixtures.NewMemoryStore())

		params := application.CreateCalendarParams{Principal: hostPrincipal("host-1"), Input: calendarInput()}
		if _, err := service.CreateCalendar(context.Background(), params); err != nil {
			t.Fatalf("first create failed: %v", err)
		}
		if _, err := service.CreateCalendar(context.Background(), params); !errors.Is(err, application.ErrCalendarExists) {
			t.Fatalf("expected ErrCalendarExists, got %v", err)
		}
	})

	t.Run("dedupes topics preserving first occurrence", func(t *testing.T) {
		t.Parallel()
		service := newCalendarService(testfixtures.NewMemoryStore())

		input := calendarInput()
		input.Topics = []string{"go", " databases ", "go", "", "testing"}

		calendar, err := service.CreateCalendar(context.Background(), application.CreateCalendarParams{
			Principal: hostPrincipal("host-1"),
			Input:     input,
		})
		if err != nil {
			t.Fatalf("CreateCalendar returned error: %v", err)
		}
		if want := []string{"go", "databases", "testing"}; !reflect.DeepEqual(calendar.Topics, want) {
			t.Fatalf("topics = %v, want %v", calendar.Topics, want)
		}
	})

	t.Run("validation failures name the offending fields", func(t *testing.T) {
		t.Parallel()
		cases := []struct {
			name   string
			mutate func(*application.CalendarInput)
			field  string
		}{
			{"no topics", func(in *application.CalendarInput) { in.Topics = nil }, "topics"},
			{"blank topics only", func(in *application.CalendarInput) { in.Topics = []string{" ", ""} }, "topics"},
			{"short description", func(in *application.CalendarInput) { in.Description = "too short" }, "description"},
			{"malformed external id", func(in *application.CalendarInput) { in.ExternalID = "not-a-calendar" }, "external_calendar_id"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				service := newCalendarService(testfixtures.NewMemoryStore())

				input := calendarInput()
				tc.mutate(&input)

				_, err := service.CreateCalendar(context.Background(), application.CreateCalendarParams{
					Principal: hostPrincipal("host-1"),
					Input:     input,
				})
				var vErr *application.ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if _, ok := vErr.FieldErrors[tc.field]; !ok {
					t.Fatalf("expected field %q in %v", tc.field, vErr.FieldErrors)
				}
			})
		}
	})
}

func TestCalendarServiceUpdateCalendar(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*application.CalendarService, application.Calendar) {
		t.Helper()
		service := newCalendarService(testfixtures.NewMemoryStore())
		calendar, err := service.CreateCalendar(context.Background(), application.CreateCalendarParams{
			Principal: hostPrincipal("host-1"),
			Input:     calendarInput(),
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		return service, calendar
	}

	t.Run("applies only provided fields", func(t *testing.T) {
		t.Parallel()
		service, created := setup(t)

		description := "Updated office hours for backend questions"
		updated, err := service.UpdateCalendar(context.Background(), application.UpdateCalendarParams{
			Principal: hostPrincipal("host-1"),
			Patch:     application.CalendarPatch{Description: &description},
		})
		if err != nil {
			t.Fatalf("UpdateCalendar returned error: %v", err)
		}
		if updated.Description != description {
			t.Fatalf("description = %q", updated.Description)
		}
		if !reflect.DeepEqual(updated.Topics, created.Topics) {
			t.Fatal("topics should be untouched")
		}
	})

	t.Run("rejects a patch that empties the topics", func(t *testing.T) {
		t.Parallel()
		service, _ := setup(t)

		topics := []string{" ", ""}
		_, err := service.UpdateCalendar(context.Background(), application.UpdateCalendarParams{
			Principal: hostPrincipal("host-1"),
			Patch:     application.CalendarPatch{Topics: &topics},
		})
		var vErr *application.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["topics"]; !ok {
			t.Fatalf("expected topics field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects guests", func(t *testing.T) {
		t.Parallel()
		service, _ := setup(t)

		description := "A perfectly valid description"
		_, err := service.UpdateCalendar(context.Background(), application.UpdateCalendarParams{
			Principal: application.Principal{UserID: "guest-1"},
			Patch:     application.CalendarPatch{Description: &description},
		})
		if !errors.Is(err, application.ErrGuestPermission) {
			t.Fatalf("expected ErrGuestPermission, got %v", err)
		}
	})

	t.Run("host without a calendar", func(t *testing.T) {
		t.Parallel()
		service := newCalendarService(testfixtures.NewMemoryStore())

		description := "A perfectly valid description"
		_, err := service.UpdateCalendar(context.Background(), application.UpdateCalendarParams{
			Principal: hostPrincipal("host-1"),
			Patch:     application.CalendarPatch{Description: &description},
		})
		if !errors.Is(err, application.ErrCalendarNotFound) {
			t.Fatalf("expected ErrCalendarNotFound, got %v", err)
		}
	})
}

func TestCalendarServiceHostCalendarDetail(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*application.CalendarService, application.User) {
		t.Helper()
		store := testfixtures.NewMemoryStore()
		accounts := application.NewAccountService(store, plainHasher, testfixtures.NewIDGenerator("user").NextFunc(), testfixtures.NewClock(time.Time{}).NowFunc())
		host, err := accounts.Signup(context.Background(), signupParams())
		if err != nil {
			t.Fatalf("signup failed: %v", err)
		}

		service := newCalendarService(store)
		if _, err := service.CreateCalendar(context.Background(), application.CreateCalendarParams{
			Principal: hostPrincipal(host.ID),
			Input:     calendarInput(),
		}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		return service, host
	}

	t.Run("anonymous viewer gets the public representation", func(t *testing.T) {
		t.Parallel()
		service, host := setup(t)

		detail, err := service.HostCalendarDetail(context.Background(), host.Username, nil)
		if err != nil {
			t.Fatalf("HostCalendarDetail returned error: %v", err)
		}
		if detail.Owned {
			t.Fatal("anonymous viewer must not own the calendar")
		}
		if detail.Host.ID != host.ID {
			t.Fatalf("host = %+v", detail.Host)
		}
	})

	t.Run("the host views their own calendar as owned", func(t *testing.T) {
		t.Parallel()
		service, host := setup(t)

		viewer := hostPrincipal(host.ID)
		detail, err := service.HostCalendarDetail(context.Background(), host.Username, &viewer)
		if err != nil {
			t.Fatalf("HostCalendarDetail returned error: %v", err)
		}
		if !detail.Owned {
			t.Fatal("host viewer should own the calendar")
		}
	})

	t.Run("another viewer does not own the calendar", func(t *testing.T) {
		t.Parallel()
		service, host := setup(t)

		viewer := application.Principal{UserID: "someone-else"}
		detail, err := service.HostCalendarDetail(context.Background(), host.Username, &viewer)
		if err != nil {
			t.Fatalf("HostCalendarDetail returned error: %v", err)
		}
		if detail.Owned {
			t.Fatal("foreign viewer must not own the calendar")
		}
	})

	t.Run("unknown username", func(t *testing.T) {
		t.Parallel()
		service, _ := setup(t)

		if _, err := service.HostCalendarDetail(context.Background(), "nobody", nil); !errors.Is(err, application.ErrHostNotFound) {
			t.Fatalf("expected ErrHostNotFound, got %v", err)
		}
	})

	t.Run("host without a calendar", func(t *testing.T) {
		t.Parallel()
		store := testfixtures.NewMemoryStore()
		accounts := application.NewAccountService(store, plainHasher, testfixtures.NewIDGenerator("user").NextFunc(), testfixtures.NewClock(time.Time{}).NowFunc())
		host, err := accounts.Signup(context.Background(), signupParams())
		if err != nil {
			t.Fatalf("signup failed: %v", err)
		}

		service := newCalendarService(store)
		if _, err := service.HostCalendarDetail(context.Background(), host.Username, nil); !errors.Is(err, application.ErrCalendarNotFound) {
			t.Fatalf("expected ErrCalendarNotFound, got %v", err)
		}
	})
}
