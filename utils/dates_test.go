package utils

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRelativeDayLabel(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"same day", date(2026, 3, 14), "today"},
		{"same day different hour", time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC), "today"},
		{"next day", date(2026, 3, 15), "tomorrow"},
		{"previous day", date(2026, 3, 13), "yesterday"},
		{"two days ahead", date(2026, 3, 16), "2026-03-16"},
		{"a week back", date(2026, 3, 7), "2026-03-07"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeDayLabel(tt.in, now); got != tt.want {
				t.Errorf("RelativeDayLabel(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWithinDateWindow(t *testing.T) {
	from := date(2026, 2, 1)
	until := date(2026, 3, 2)

	tests := []struct {
		name string
		ref  time.Time
		want bool
	}{
		{"day before start", date(2026, 1, 31), false},
		{"first day", from, true},
		{"first day late evening", time.Date(2026, 2, 1, 23, 0, 0, 0, time.UTC), true},
		{"middle", date(2026, 2, 15), true},
		{"last day", until, true},
		{"day after end", date(2026, 3, 3), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinDateWindow(tt.ref, from, until); got != tt.want {
				t.Errorf("WithinDateWindow(%v) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestIsWeekday(t *testing.T) {
	// 2026-03-13 is a Friday
	if !IsWeekday(date(2026, 3, 13)) {
		t.Error("Friday should be a weekday")
	}
	if IsWeekday(date(2026, 3, 14)) {
		t.Error("Saturday should not be a weekday")
	}
	if IsWeekday(date(2026, 3, 15)) {
		t.Error("Sunday should not be a weekday")
	}
	if !IsWeekday(date(2026, 3, 16)) {
		t.Error("Monday should be a weekday")
	}
}

func TestParseISODate(t *testing.T) {
	got, err := ParseISODate("2026-02-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !SameDate(got, date(2026, 2, 1)) {
		t.Errorf("parsed %v, want 2026-02-01", got)
	}

	if _, err := ParseISODate("01/02/2026"); err == nil {
		t.Error("expected error for non-ISO format")
	}
	if _, err := ParseISODate(""); err == nil {
		t.Error("expected error for empty string")
	}
}
