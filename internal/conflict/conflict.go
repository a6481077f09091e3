// Package conflict decides whether a proposed recurring availability window
// may join a calendar's existing set of time slots. The check is pure; the
// caller is responsible for loading the calendar's current slots and for
// persisting the candidate only after admission, inside one transaction.
package conflict

import (
	"errors"

	"github.com/example/booking-platform/internal/calendardate"
)

// Slot is a recurring weekly availability window: a half-open local time
// interval [Start, End) repeated on each weekday in Weekdays.
type Slot struct {
	ID         string
	CalendarID string
	Start      calendardate.TimeOfDay
	End        calendardate.TimeOfDay
	Weekdays   []calendardate.Weekday
}

// ErrInvalidInterval indicates the candidate's start does not precede its end.
var ErrInvalidInterval = errors.New("conflict: start time must be before end time")

// ErrSlotOverlap indicates the candidate collides with an existing slot on a
// shared weekday.
var ErrSlotOverlap = errors.New("conflict: time slot overlaps an existing slot")

// IntervalsOverlap reports whether two half-open clock intervals intersect.
// Intervals that merely touch at a boundary do not overlap.
func IntervalsOverlap(aStart, aEnd, bStart, bEnd calendardate.TimeOfDay) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// WeekdaysIntersect reports whether the two weekday sets share an element.
func WeekdaysIntersect(a, b []calendardate.Weekday) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[calendardate.Weekday]struct{}, len(a))
	for _, day := range a {
		set[day] = struct{}{}
	}
	for _, day := range b {
		if _, ok := set[day]; ok {
			return true
		}
	}
	return false
}

// CheckSlot admits or rejects a candidate slot against the calendar's
// existing slots. The candidate interval is validated before any overlap
// evaluation. Existing slots must already be restricted to the candidate's
// calendar; slots on other calendars never conflict.
func CheckSlot(existing []Slot, candidate Slot) error {
	if !candidate.Start.Before(candidate.End) {
		return ErrInvalidInterval
	}

	for _, slot := range existing {
		if !IntervalsOverlap(slot.Start, slot.End, candidate.Start, candidate.End) {
			continue
		}
		if WeekdaysIntersect(slot.Weekdays, candidate.Weekdays) {
			return ErrSlotOverlap
		}
	}
	return nil
}
