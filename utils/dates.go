package utils

import (
	"fmt"
	"time"
)

const ISODate = "2006-01-02"

// ParseISODate parses a YYYY-MM-DD string into a date at midnight UTC.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatISODate renders a time as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return t.Format(ISODate)
}

// DateOnly truncates a time to its calendar date, keeping the location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether two times fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return a.Format(ISODate) == b.Format(ISODate)
}

// IsWeekday reports whether t is Monday through Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// RelativeDayLabel returns "today", "tomorrow" or "yesterday" for dates
// adjacent to now, otherwise the ISO date.
func RelativeDayLabel(t, now time.Time) string {
	switch {
	case SameDate(t, now):
		return "today"
	case SameDate(t, now.AddDate(0, 0, 1)):
		return "tomorrow"
	case SameDate(t, now.AddDate(0, 0, -1)):
		return "yesterday"
	}
	return FormatISODate(t)
}

// WithinDateWindow reports whether ref falls inside [from, until], both
// endpoints inclusive, comparing calendar dates only.
func WithinDateWindow(ref, from, until time.Time) bool {
	r := DateOnly(ref)
	return !r.Before(DateOnly(from)) && !r.After(DateOnly(until))
}
