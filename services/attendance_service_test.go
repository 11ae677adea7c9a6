package services

import (
	"testing"

	"dancestudio_go/models"
)

func TestResolveToggle(t *testing.T) {
	tests := []struct {
		name    string
		current string
		target  string
		want    string
	}{
		{"none to present", models.AttendanceNone, models.AttendancePresent, models.AttendancePresent},
		{"none to absent", models.AttendanceNone, models.AttendanceAbsent, models.AttendanceAbsent},
		{"present pressed again flips to absent", models.AttendancePresent, models.AttendancePresent, models.AttendanceAbsent},
		{"absent pressed again flips to present", models.AttendanceAbsent, models.AttendanceAbsent, models.AttendancePresent},
		{"present to absent", models.AttendancePresent, models.AttendanceAbsent, models.AttendanceAbsent},
		{"absent to present", models.AttendanceAbsent, models.AttendancePresent, models.AttendancePresent},
		{"excused to present", models.AttendanceExcused, models.AttendancePresent, models.AttendancePresent},
		{"excused pressed again resets", models.AttendanceExcused, models.AttendanceExcused, models.AttendanceNone},
		{"none pressed again resets", models.AttendanceNone, models.AttendanceNone, models.AttendanceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveToggle(tt.current, tt.target); got != tt.want {
				t.Errorf("ResolveToggle(%q, %q) = %q, want %q", tt.current, tt.target, got, tt.want)
			}
		})
	}
}

func TestResolveNoteStatus(t *testing.T) {
	tests := []struct {
		name    string
		current string
		note    string
		want    string
	}{
		{"note on unmarked student excuses", models.AttendanceNone, "sick", models.AttendanceExcused},
		{"note on present student excuses", models.AttendancePresent, "leaving early", models.AttendanceExcused},
		{"whitespace note does not excuse", models.AttendanceNone, "   ", models.AttendanceNone},
		{"clearing note releases excused", models.AttendanceExcused, "", models.AttendanceNone},
		{"clearing note keeps present", models.AttendancePresent, "", models.AttendancePresent},
		{"clearing note keeps absent", models.AttendanceAbsent, "", models.AttendanceAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveNoteStatus(tt.current, tt.note); got != tt.want {
				t.Errorf("ResolveNoteStatus(%q, %q) = %q, want %q", tt.current, tt.note, got, tt.want)
			}
		})
	}
}

// A full press cycle must return to where it started regardless of the
// intermediate statuses.
func TestResolveToggleCycle(t *testing.T) {
	status := models.AttendanceNone
	presses := []string{
		models.AttendancePresent, // -> present
		models.AttendancePresent, // -> absent
		models.AttendancePresent, // -> present
		models.AttendanceAbsent,  // -> absent
		models.AttendanceAbsent,  // -> present
	}
	want := []string{
		models.AttendancePresent,
		models.AttendanceAbsent,
		models.AttendancePresent,
		models.AttendanceAbsent,
		models.AttendancePresent,
	}
	for i, press := range presses {
		status = ResolveToggle(status, press)
		if status != want[i] {
			t.Fatalf("press %d: got %q, want %q", i, status, want[i])
		}
	}
}
