// Package calendardate provides naive calendar arithmetic for the booking
// domain: Monday-indexed weekdays, local clock times of day, and month grid
// helpers. Values carry no timezone; the platform treats all times as local
// clock readings.
package calendardate

import (
	"fmt"
	"time"
)

// Weekday identifies a day of the week, Monday-indexed (0=Monday..6=Sunday).
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// String returns the English weekday name, or a numeric form for out of range values.
func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// Valid reports whether the weekday lies in the Monday..Sunday range.
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// FromTimeWeekday converts the Sunday-indexed time.Weekday into the
// Monday-indexed domain form.
func FromTimeWeekday(w time.Weekday) Weekday {
	return Weekday((int(w) + 6) % 7)
}

// TimeWeekday converts back to the Sunday-indexed time.Weekday.
func (w Weekday) TimeWeekday() time.Weekday {
	return time.Weekday((int(w) + 1) % 7)
}

// Date is a calendar date without time or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the calendar date from an instant, using the instant's location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a date in ISO "2006-01-02" form.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return Date{}, fmt.Errorf("calendardate: invalid date %q: %w", value, err)
	}
	return DateOf(t), nil
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the Monday-indexed weekday of the date.
func (d Date) Weekday() Weekday {
	return FromTimeWeekday(d.time().Weekday())
}

// AddDays returns the date shifted by the given number of days.
func (d Date) AddDays(days int) Date {
	return DateOf(d.time().AddDate(0, 0, days))
}

// Before reports whether d falls strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Equal reports whether both dates name the same day.
func (d Date) Equal(other Date) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String formats the date in ISO "2006-01-02" form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// StartWeekdayOfMonth returns the weekday of the first day of the month.
func StartWeekdayOfMonth(year int, month time.Month) Weekday {
	return Date{Year: year, Month: month, Day: 1}.Weekday()
}

// LastDayOfMonth returns the number of days in the month. December rolls the
// next-month probe into January of the following year.
func LastDayOfMonth(year int, month time.Month) int {
	nextYear, nextMonth := year, month+1
	if month == time.December {
		nextYear, nextMonth = year+1, time.January
	}
	first := time.Date(nextYear, nextMonth, 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 0, -1).Day()
}

// RangeDaysOfMonth returns the month laid out for a Sunday-first calendar
// grid: leading zero sentinels pad up to the first day's column, followed by
// the day numbers 1..last.
func RangeDaysOfMonth(year int, month time.Month) []int {
	padding := (int(StartWeekdayOfMonth(year, month)) + 1) % 7
	last := LastDayOfMonth(year, month)

	days := make([]int, padding, padding+last)
	for day := 1; day <= last; day++ {
		days = append(days, day)
	}
	return days
}

// NextWeekday returns from itself when it already falls on the target
// weekday, otherwise the nearest future date (within the next six days)
// matching it.
func NextWeekday(target Weekday, from Date) Date {
	ahead := (int(target) - int(from.Weekday()) + 7) % 7
	if ahead == 0 {
		return from
	}
	return from.AddDays(ahead)
}

// DatesInMonth lists every date of the month whose weekday is in the given
// set, in chronological order. Duplicate weekdays in the set do not produce
// duplicate dates.
func DatesInMonth(year int, month time.Month, weekdays []Weekday) []Date {
	if len(weekdays) == 0 {
		return nil
	}
	wanted := make(map[Weekday]struct{}, len(weekdays))
	for _, day := range weekdays {
		wanted[day] = struct{}{}
	}

	last := LastDayOfMonth(year, month)
	dates := make([]Date, 0, last)
	for day := 1; day <= last; day++ {
		date := Date{Year: year, Month: month, Day: day}
		if _, ok := wanted[date.Weekday()]; ok {
			dates = append(dates, date)
		}
	}
	return dates
}
