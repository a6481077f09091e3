package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/booking-platform/internal/application"
	"github.com/example/booking-platform/internal/config"
	httptransport "github.com/example/booking-platform/internal/http"
	"github.com/example/booking-platform/internal/logging"
	"github.com/example/booking-platform/internal/metrics"
	"github.com/example/booking-platform/internal/persistence/sqlite"
)

func main() {
	logger := logging.NewServerLogger(slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := db.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	if cfg.MetricsEnabled {
		metrics.Register()
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now
	hasher := func(password string) (string, error) {
		return application.HashPassword(password, application.DefaultArgon2idParams)
	}

	accountRepo := newAccountRepositoryAdapter(sqlite.NewUserRepository(db))
	sessionRepo := newSessionRepositoryAdapter(sqlite.NewSessionRepository(db))
	calendarRepo := newCalendarRepositoryAdapter(sqlite.NewCalendarRepository(db))
	sqliteSlots := sqlite.NewTimeSlotRepository(db)
	timeSlotRepo := newTimeSlotRepositoryAdapter(sqliteSlots)
	bookingRepo := newBookingRepositoryAdapter(sqlite.NewBookingRepository(db), sqliteSlots)

	accountService := application.NewAccountServiceWithLogger(accountRepo, hasher, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(accountRepo, sessionRepo, nil, tokenGenerator, now, cfg.SessionTTL, logger)
	calendarService := application.NewCalendarServiceWithLogger(calendarRepo, accountRepo, idGenerator, now, logger)
	timeSlotService := application.NewTimeSlotServiceWithLogger(timeSlotRepo, calendarRepo, idGenerator, now, logger)
	bookingService := application.NewBookingServiceWithLogger(bookingRepo, timeSlotRepo, calendarRepo, accountRepo, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Accounts:       httptransport.NewAccountHandler(accountService, cfg.SignupOpen, logger),
		Auth:           httptransport.NewAuthHandler(authService, logger),
		Calendars:      httptransport.NewCalendarHandler(calendarService, logger),
		TimeSlots:      httptransport.NewTimeSlotHandler(timeSlotService, logger),
		Bookings:       httptransport.NewBookingHandler(bookingService, logger),
		Sessions:       authService,
		MetricsEnabled: cfg.MetricsEnabled,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
