package services

import (
	"errors"
	"testing"

	"dancestudio_go/models"
)

func record(sessionID, studentID uint, status string) models.AttendanceRecord {
	return models.AttendanceRecord{
		SessionID: sessionID,
		StudentID: studentID,
		Status:    status,
	}
}

func TestLedgerApplyConfirmed(t *testing.T) {
	ledger := NewLedger(func(sessionID uint) ([]models.AttendanceRecord, error) {
		t.Fatal("refetch must not run on a successful write")
		return nil, nil
	})

	rec := record(1, 10, models.AttendancePresent)
	confirmed := record(1, 10, models.AttendancePresent)
	confirmed.ID = 77

	phase, err := ledger.Apply(rec, func() (*models.AttendanceRecord, error) {
		return &confirmed, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if phase != WriteConfirmed {
		t.Errorf("phase = %q, want %q", phase, WriteConfirmed)
	}

	records := ledger.Records(1)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].ID != 77 {
		t.Errorf("view should hold the store-confirmed record, got id %d", records[0].ID)
	}
}

func TestLedgerApplyRollsBackToStore(t *testing.T) {
	stored := []models.AttendanceRecord{record(1, 10, models.AttendanceAbsent)}
	ledger := NewLedger(func(sessionID uint) ([]models.AttendanceRecord, error) {
		return stored, nil
	})
	if err := ledger.Load(1); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	phase, err := ledger.Apply(record(1, 10, models.AttendancePresent), func() (*models.AttendanceRecord, error) {
		return nil, errors.New("write failed")
	})
	if err == nil {
		t.Fatal("expected error from failed persist")
	}
	if phase != WriteRolledBack {
		t.Errorf("phase = %q, want %q", phase, WriteRolledBack)
	}

	records := ledger.Records(1)
	if len(records) != 1 || records[0].Status != models.AttendanceAbsent {
		t.Errorf("view should show the store's record after rollback, got %+v", records)
	}
}

// A failed write for a student the store has never seen must not leave an
// optimistic record dangling, even when the re-fetch fails too.
func TestLedgerNeverDanglingAfterDoubleFailure(t *testing.T) {
	ledger := NewLedger(func(sessionID uint) ([]models.AttendanceRecord, error) {
		return nil, errors.New("store unreachable")
	})

	phase, err := ledger.Apply(record(2, 20, models.AttendancePresent), func() (*models.AttendanceRecord, error) {
		return nil, errors.New("write failed")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if phase != WriteRolledBack {
		t.Errorf("phase = %q, want %q", phase, WriteRolledBack)
	}
	if records := ledger.Records(2); len(records) != 0 {
		t.Errorf("expected empty view, got %+v", records)
	}
}

// When re-fetch fails but the student had a pre-mutation record, that record
// comes back instead.
func TestLedgerRestoresPreviousOnRefetchFailure(t *testing.T) {
	calls := 0
	ledger := NewLedger(func(sessionID uint) ([]models.AttendanceRecord, error) {
		calls++
		if calls == 1 {
			return []models.AttendanceRecord{record(3, 30, models.AttendanceExcused)}, nil
		}
		return nil, errors.New("store unreachable")
	})
	if err := ledger.Load(3); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	_, err := ledger.Apply(record(3, 30, models.AttendancePresent), func() (*models.AttendanceRecord, error) {
		return nil, errors.New("write failed")
	})
	if err == nil {
		t.Fatal("expected error")
	}

	records := ledger.Records(3)
	if len(records) != 1 || records[0].Status != models.AttendanceExcused {
		t.Errorf("expected pre-mutation record restored, got %+v", records)
	}
}

// The store's confirmed row wins over the optimistic guess when another
// client raced the write.
func TestLedgerStoreWinsOverGuess(t *testing.T) {
	ledger := NewLedger(func(sessionID uint) ([]models.AttendanceRecord, error) {
		return nil, nil
	})

	confirmed := record(4, 40, models.AttendanceAbsent)
	phase, err := ledger.Apply(record(4, 40, models.AttendancePresent), func() (*models.AttendanceRecord, error) {
		return &confirmed, nil
	})
	if err != nil || phase != WriteConfirmed {
		t.Fatalf("phase=%q err=%v", phase, err)
	}

	records := ledger.Records(4)
	if len(records) != 1 || records[0].Status != models.AttendanceAbsent {
		t.Errorf("expected store's status, got %+v", records)
	}
}
