package sqlite

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/booking-platform/internal/calendardate"
)

// Column encodings: timestamps are RFC3339, dates "2006-01-02", times of day
// "15:04", topics a JSON array, weekdays a comma separated list of ordinals.

func encodeTopics(topics []string) (string, error) {
	if topics == nil {
		topics = []string{}
	}
	raw, err := json.Marshal(topics)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode topics: %w", err)
	}
	return string(raw), nil
}

func decodeTopics(raw string) ([]string, error) {
	var topics []string
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		return nil, fmt.Errorf("sqlite: decode topics: %w", err)
	}
	return topics, nil
}

func encodeWeekdays(weekdays []calendardate.Weekday) string {
	parts := make([]string, len(weekdays))
	for i, day := range weekdays {
		parts[i] = strconv.Itoa(int(day))
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(raw string) ([]calendardate.Weekday, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	weekdays := make([]calendardate.Weekday, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("sqlite: decode weekdays %q: %w", raw, err)
		}
		weekdays = append(weekdays, calendardate.Weekday(n))
	}
	return weekdays, nil
}

func parseTimestamp(raw, column string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse %s: %w", column, err)
	}
	return ts, nil
}

func parseTimestampPtr(raw string) (*time.Time, error) {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
