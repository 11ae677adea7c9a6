package services

import (
	"testing"
	"time"

	"dancestudio_go/models"
)

func TestNextWindow(t *testing.T) {
	tests := []struct {
		name      string
		from      time.Time
		until     time.Time
		wantFrom  time.Time
		wantUntil time.Time
	}{
		{
			"thirty day window",
			day(2026, 2, 1), day(2026, 3, 2),
			day(2026, 3, 3), day(2026, 4, 1),
		},
		{
			"calendar month window",
			day(2026, 1, 1), day(2026, 1, 31),
			day(2026, 2, 1), day(2026, 3, 3),
		},
		{
			"single day window",
			day(2026, 5, 10), day(2026, 5, 10),
			day(2026, 5, 11), day(2026, 5, 11),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := models.Pass{ValidFrom: tt.from, ValidUntil: tt.until}
			gotFrom, gotUntil := NextWindow(old)
			if !gotFrom.Equal(tt.wantFrom) {
				t.Errorf("from = %s, want %s", gotFrom.Format("2006-01-02"), tt.wantFrom.Format("2006-01-02"))
			}
			if !gotUntil.Equal(tt.wantUntil) {
				t.Errorf("until = %s, want %s", gotUntil.Format("2006-01-02"), tt.wantUntil.Format("2006-01-02"))
			}
		})
	}
}

func TestNextWindowStartsAfterOldEnd(t *testing.T) {
	old := models.Pass{ValidFrom: day(2026, 2, 1), ValidUntil: day(2026, 3, 2)}
	from, until := NextWindow(old)

	if !from.After(old.ValidUntil) {
		t.Error("successor window must start after the old window ends")
	}
	oldDays := int(old.ValidUntil.Sub(old.ValidFrom).Hours()/24) + 1
	newDays := int(until.Sub(from).Hours()/24) + 1
	if oldDays != newDays {
		t.Errorf("successor length %d days, want %d", newDays, oldDays)
	}
}

func TestExtendForHolidays(t *testing.T) {
	from := day(2026, 3, 3)
	until := day(2026, 4, 1)

	holiday := func(d time.Time) models.PublicHoliday {
		return models.PublicHoliday{HolidayDate: d}
	}

	tests := []struct {
		name     string
		holidays []models.PublicHoliday
		want     time.Time
	}{
		{"no holidays", nil, until},
		{
			// 2026-03-06 is a Friday
			"one weekday holiday inside window",
			[]models.PublicHoliday{holiday(day(2026, 3, 6))},
			day(2026, 4, 2),
		},
		{
			// 2026-03-08 is a Sunday; the studio was closed anyway
			"weekend holiday does not extend",
			[]models.PublicHoliday{holiday(day(2026, 3, 8))},
			until,
		},
		{
			"holiday outside window does not extend",
			[]models.PublicHoliday{holiday(day(2026, 4, 6))},
			until,
		},
		{
			"two weekday holidays extend by two days",
			[]models.PublicHoliday{holiday(day(2026, 3, 6)), holiday(day(2026, 3, 16))},
			day(2026, 4, 3),
		},
		{
			"holiday on window boundary counts",
			[]models.PublicHoliday{holiday(day(2026, 4, 1))},
			day(2026, 4, 2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtendForHolidays(from, until, tt.holidays)
			if !got.Equal(tt.want) {
				t.Errorf("ExtendForHolidays = %s, want %s", got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}
