// Package config loads environment driven configuration for the booking
// platform service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the service.
type Config struct {
	HTTPPort       int
	SQLiteDSN      string
	SessionTTL     time.Duration
	SignupOpen     bool
	MetricsEnabled bool
}

// Load reads an optional .env file, then parses configuration values from the
// process environment. Defaults apply to every field, so an empty environment
// yields a runnable development configuration.
func Load() (Config, error) {
	// Missing .env is not an error; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:       8080,
		SQLiteDSN:      "file:booking.db?_foreign_keys=on",
		SessionTTL:     24 * time.Hour,
		SignupOpen:     true,
		MetricsEnabled: true,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if openValue := strings.TrimSpace(os.Getenv("BOOKING_SIGNUP_OPEN")); openValue != "" {
		open, err := strconv.ParseBool(openValue)
		if err != nil {
			invalid = append(invalid, "BOOKING_SIGNUP_OPEN")
		} else {
			cfg.SignupOpen = open
		}
	}

	if metricsValue := strings.TrimSpace(os.Getenv("BOOKING_METRICS_ENABLED")); metricsValue != "" {
		enabled, err := strconv.ParseBool(metricsValue)
		if err != nil {
			invalid = append(invalid, "BOOKING_METRICS_ENABLED")
		} else {
			cfg.MetricsEnabled = enabled
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
