package http

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig wires the handlers and cross-cutting middleware into one
// http.Handler.
type RouterConfig struct {
	Accounts  *AccountHandler
	Auth      *AuthHandler
	Calendars *CalendarHandler
	TimeSlots *TimeSlotHandler
	Bookings  *BookingHandler

	// Sessions guards the authenticated routes and, where present, enriches
	// public routes with an optional principal.
	Sessions SessionValidator

	// MetricsEnabled exposes /metrics and request duration collection.
	MetricsEnabled bool

	// Middleware runs outermost-first around every route.
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the full route table.
func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()

	for _, middleware := range cfg.Middleware {
		if middleware != nil {
			router.Use(middleware)
		}
	}
	if cfg.MetricsEnabled {
		router.Use(ObserveRequests())

		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)

	if cfg.Accounts != nil {
		router.HandleFunc("/account/signup", cfg.Accounts.Signup).Methods(http.MethodPost)
		router.HandleFunc("/account/users/{username}", cfg.Accounts.UserDetail).Methods(http.MethodGet)
	}
	if cfg.Auth != nil {
		router.HandleFunc("/account/login", cfg.Auth.Login).Methods(http.MethodPost)
		router.HandleFunc("/account/logout", cfg.Auth.Logout).Methods(http.MethodPost)
	}

	if cfg.Sessions != nil {
		authed := router.NewRoute().Subrouter()
		authed.Use(RequireSession(cfg.Sessions, nil))

		if cfg.Accounts != nil {
			authed.HandleFunc("/account/@me", cfg.Accounts.Me).Methods(http.MethodGet)
			authed.HandleFunc("/account/@me", cfg.Accounts.UpdateMe).Methods(http.MethodPatch)
			authed.HandleFunc("/account/@me", cfg.Accounts.DeleteMe).Methods(http.MethodDelete)
		}
		if cfg.Calendars != nil {
			authed.HandleFunc("/calendars", cfg.Calendars.Create).Methods(http.MethodPost)
			authed.HandleFunc("/calendars", cfg.Calendars.Update).Methods(http.MethodPatch)
		}
		if cfg.TimeSlots != nil {
			authed.HandleFunc("/time-slots", cfg.TimeSlots.Create).Methods(http.MethodPost)
			authed.HandleFunc("/time-slots", cfg.TimeSlots.List).Methods(http.MethodGet)
		}
		if cfg.Bookings != nil {
			authed.HandleFunc("/bookings", cfg.Bookings.ListMine).Methods(http.MethodGet)
			authed.HandleFunc("/bookings/{host_username}", cfg.Bookings.Create).Methods(http.MethodPost)
		}

		public := router.NewRoute().Subrouter()
		public.Use(OptionalSession(cfg.Sessions))

		if cfg.Calendars != nil {
			public.HandleFunc("/calendars/{host_username}", cfg.Calendars.Detail).Methods(http.MethodGet)
		}
		if cfg.Bookings != nil {
			public.HandleFunc("/calendars/{host_username}/availability/{year}/{month}", cfg.Bookings.Availability).Methods(http.MethodGet)
		}
	}

	return handlers.RecoveryHandler()(router)
}
