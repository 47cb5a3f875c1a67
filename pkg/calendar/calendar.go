// Package calendar normalizes instants to plain calendar days. Every day is
// represented as midnight UTC so storage and comparison never disagree
// across time zones.
package calendar

import (
	"errors"
	"strings"
	"time"

	errorvalues "github.com/limbo/habitrack/internal/error_values"
)

const Layout = "2006-01-02"

const day = 24 * time.Hour

// Day returns midnight UTC of the UTC date of t.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Today(now func() time.Time) time.Time {
	return Day(now())
}

// Parse accepts YYYY-MM-DD or an RFC3339 timestamp. Timestamps are moved to
// UTC before the date part is taken.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.Join(errorvalues.ErrInvalidDate, errors.New("date is empty"))
	}
	if t, err := time.Parse(Layout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Join(errorvalues.ErrInvalidDate, errors.New("unsupported date format: "+s))
	}
	return Day(t), nil
}

func Format(t time.Time) string {
	return Day(t).Format(Layout)
}

// DaysBetween returns the number of whole days from earlier to later.
// Negative when later is actually before earlier.
func DaysBetween(later, earlier time.Time) int {
	return int(Day(later).Sub(Day(earlier)) / day)
}

func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// MonthRange returns the first and last day of the given month.
func MonthRange(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, errors.Join(errorvalues.ErrInvalidDate, errors.New("month must be in 1..12"))
	}
	if year < 1970 || year > 9999 {
		return time.Time{}, time.Time{}, errors.Join(errorvalues.ErrInvalidDate, errors.New("year out of range"))
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last, nil
}
