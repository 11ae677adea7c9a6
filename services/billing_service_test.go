package services

import (
	"testing"
	"time"

	"dancestudio_go/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pass(id uint, from, until time.Time, active bool) models.Pass {
	return models.Pass{
		BaseModel:  models.BaseModel{ID: id},
		ValidFrom:  from,
		ValidUntil: until,
		IsActive:   active,
	}
}

func TestResolveCoverageBasics(t *testing.T) {
	ref := day(2026, 2, 15)

	t.Run("no passes at all", func(t *testing.T) {
		covering, expiry := ResolveCoverage(nil, ref)
		if covering != nil || expiry != nil {
			t.Errorf("expected (nil, nil), got (%v, %v)", covering, expiry)
		}
	})

	t.Run("single covering pass", func(t *testing.T) {
		passes := []models.Pass{pass(1, day(2026, 2, 1), day(2026, 3, 2), true)}
		covering, _ := ResolveCoverage(passes, ref)
		if covering == nil || covering.ID != 1 {
			t.Fatalf("expected pass 1, got %v", covering)
		}
	})

	t.Run("window bounds are inclusive", func(t *testing.T) {
		passes := []models.Pass{pass(1, day(2026, 2, 1), day(2026, 3, 2), true)}
		for _, edge := range []time.Time{day(2026, 2, 1), day(2026, 3, 2)} {
			if covering, _ := ResolveCoverage(passes, edge); covering == nil {
				t.Errorf("pass should cover boundary date %s", edge.Format("2006-01-02"))
			}
		}
		if covering, _ := ResolveCoverage(passes, day(2026, 3, 3)); covering != nil {
			t.Error("pass should not cover the day after valid_until")
		}
	})

	t.Run("inactive pass never covers", func(t *testing.T) {
		passes := []models.Pass{pass(1, day(2026, 2, 1), day(2026, 3, 2), false)}
		covering, expiry := ResolveCoverage(passes, ref)
		if covering != nil {
			t.Error("inactive pass must not cover")
		}
		if expiry == nil || !expiry.Equal(day(2026, 3, 2)) {
			t.Errorf("expiry should still be tracked, got %v", expiry)
		}
	})
}

// Overlapping active passes resolve to the one with the latest valid_until,
// whatever order they arrive in.
func TestResolveCoverageDeterministic(t *testing.T) {
	ref := day(2026, 2, 15)
	a := pass(1, day(2026, 2, 1), day(2026, 2, 28), true)
	b := pass(2, day(2026, 2, 10), day(2026, 3, 10), true)

	for name, passes := range map[string][]models.Pass{
		"a then b": {a, b},
		"b then a": {b, a},
	} {
		covering, _ := ResolveCoverage(passes, ref)
		if covering == nil || covering.ID != 2 {
			t.Errorf("%s: expected pass 2 (latest valid_until), got %v", name, covering)
		}
	}
}

// mostRecentExpiry must span ALL passes, not only active ones, so a lapsed
// student shows when they last had coverage.
func TestResolveCoverageMostRecentExpiry(t *testing.T) {
	ref := day(2026, 6, 1)
	passes := []models.Pass{
		pass(1, day(2025, 11, 1), day(2025, 11, 30), false),
		pass(2, day(2026, 1, 1), day(2026, 1, 31), false),
		pass(3, day(2025, 12, 1), day(2025, 12, 31), true),
	}

	covering, expiry := ResolveCoverage(passes, ref)
	if covering != nil {
		t.Fatalf("nothing should cover June, got %v", covering)
	}
	if expiry == nil || !expiry.Equal(day(2026, 1, 31)) {
		t.Errorf("expected most recent expiry 2026-01-31, got %v", expiry)
	}
}

func TestIsPaid(t *testing.T) {
	p := pass(5, day(2026, 2, 1), day(2026, 3, 2), true)
	otherID := uint(9)

	payment := func(passID *uint, paidAt time.Time) models.Payment {
		return models.Payment{PassID: passID, PaidAt: paidAt}
	}

	tests := []struct {
		name     string
		payments []models.Payment
		want     bool
	}{
		{"no payments", nil, false},
		{"payment on window start", []models.Payment{payment(&p.ID, day(2026, 2, 1))}, true},
		{"payment during window", []models.Payment{payment(&p.ID, day(2026, 2, 20))}, true},
		{"late payment still counts", []models.Payment{payment(&p.ID, day(2026, 4, 1))}, true},
		{"payment the day before window start", []models.Payment{payment(&p.ID, day(2026, 1, 31))}, false},
		{"payment start day with clock time", []models.Payment{payment(&p.ID, time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC))}, true},
		{"payment for another pass", []models.Payment{payment(&otherID, day(2026, 2, 10))}, false},
		{"unlinked payment", []models.Payment{payment(nil, day(2026, 2, 10))}, false},
		{"one stale one valid", []models.Payment{payment(&p.ID, day(2026, 1, 15)), payment(&p.ID, day(2026, 2, 3))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPaid(p, tt.payments); got != tt.want {
				t.Errorf("IsPaid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyStudents(t *testing.T) {
	ref := day(2026, 2, 15)

	students := []models.Student{
		{BaseModel: models.BaseModel{ID: 1}, FullName: "Anna"},
		{BaseModel: models.BaseModel{ID: 2}, FullName: "Piotr"},
		{BaseModel: models.BaseModel{ID: 3}, FullName: "Magda"},
		{BaseModel: models.BaseModel{ID: 4}, FullName: "Tomek"},
	}

	annaPass := pass(10, day(2026, 2, 1), day(2026, 3, 2), true)
	annaPass.StudentID = 1
	piotrPass := pass(11, day(2026, 2, 1), day(2026, 3, 2), true)
	piotrPass.StudentID = 2
	magdaOld := pass(12, day(2025, 12, 1), day(2025, 12, 31), false)
	magdaOld.StudentID = 3

	passesByStudent := map[uint][]models.Pass{
		1: {annaPass},
		2: {piotrPass},
		3: {magdaOld},
	}
	paymentsByPass := map[uint][]models.Payment{
		10: {{PassID: &annaPass.ID, PaidAt: day(2026, 2, 2)}},
	}

	result := ClassifyStudents(students, passesByStudent, paymentsByPass, ref)
	if len(result) != 4 {
		t.Fatalf("got %d entries, want 4", len(result))
	}

	byID := map[uint]StudentClassification{}
	for _, entry := range result {
		byID[entry.StudentID] = entry
	}

	if byID[1].Status != StatusPaid || !byID[1].Paid {
		t.Errorf("Anna should be paid, got %+v", byID[1])
	}
	if byID[2].Status != StatusUnpaidPass || byID[2].Pass == nil {
		t.Errorf("Piotr should be unpaid_pass with pass info, got %+v", byID[2])
	}
	if byID[3].Status != StatusExpired || byID[3].MostRecentExpiry == nil {
		t.Errorf("Magda should be expired with expiry, got %+v", byID[3])
	}
	if byID[4].Status != StatusNoPass || byID[4].MostRecentExpiry != nil {
		t.Errorf("Tomek should be no_pass without expiry, got %+v", byID[4])
	}
}

// Students enrolled in several groups arrive more than once; the first
// occurrence wins and no duplicate rows appear.
func TestClassifyStudentsDedupe(t *testing.T) {
	ref := day(2026, 2, 15)
	students := []models.Student{
		{BaseModel: models.BaseModel{ID: 1}, FullName: "Anna"},
		{BaseModel: models.BaseModel{ID: 2}, FullName: "Piotr"},
		{BaseModel: models.BaseModel{ID: 1}, FullName: "Anna"},
		{BaseModel: models.BaseModel{ID: 1}, FullName: "Anna"},
	}

	result := ClassifyStudents(students, nil, nil, ref)
	if len(result) != 2 {
		t.Fatalf("got %d entries, want 2", len(result))
	}
	if result[0].StudentID != 1 || result[1].StudentID != 2 {
		t.Errorf("unexpected order: %+v", result)
	}
}

func TestMatchesName(t *testing.T) {
	if !matchesName("Anna Kowalska", "") {
		t.Error("empty filter should match everything")
	}
	if !matchesName("Anna Kowalska", "kowal") {
		t.Error("filter should be case-insensitive substring")
	}
	if matchesName("Anna Kowalska", "nowak") {
		t.Error("non-matching filter should not match")
	}
}
