package services

import (
	"sort"
	"sync"

	"dancestudio_go/models"
)

// Write phases of an optimistic attendance mutation.
const (
	WritePending    = "pending"
	WriteConfirmed  = "confirmed"
	WriteRolledBack = "rolled_back"
)

// Ledger is the optimistic view of attendance per session: a mutation becomes
// visible before the store round-trip so rapid marking never waits on
// latency, then is either confirmed with the store's row or rolled back by
// re-fetching the source of truth. A failed write never leaves a dangling
// optimistic record behind.
type Ledger struct {
	mu      sync.Mutex
	records map[uint]map[uint]models.AttendanceRecord // sessionID -> studentID -> record

	refetch func(sessionID uint) ([]models.AttendanceRecord, error)
}

// NewLedger wires a ledger to its re-fetch function, the source of truth
// consulted whenever a write fails or a session view is (re)loaded.
func NewLedger(refetch func(sessionID uint) ([]models.AttendanceRecord, error)) *Ledger {
	return &Ledger{
		records: make(map[uint]map[uint]models.AttendanceRecord),
		refetch: refetch,
	}
}

// Load replaces the cached view of a session with the store's records.
func (l *Ledger) Load(sessionID uint) error {
	fresh, err := l.refetch(sessionID)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.replaceLocked(sessionID, fresh)
	return nil
}

// Records returns the current (possibly optimistic) view of a session,
// ordered by student id for stable output.
func (l *Ledger) Records(sessionID uint) []models.AttendanceRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	byStudent := l.records[sessionID]
	out := make([]models.AttendanceRecord, 0, len(byStudent))
	for _, rec := range byStudent {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out
}

// Apply runs one mutation through the pending -> confirmed | rolled-back
// machine. The optimistic record is visible immediately; persist is then
// asked to write it and returns the record as the store confirmed it, which
// replaces the guess (the store wins when another client raced us). On
// persist failure the session is re-fetched so the view never shows a status
// the store does not have. Returns the terminal phase.
func (l *Ledger) Apply(rec models.AttendanceRecord, persist func() (*models.AttendanceRecord, error)) (string, error) {
	l.mu.Lock()
	prev, hadPrev := l.records[rec.SessionID][rec.StudentID]
	l.setLocked(rec)
	l.mu.Unlock()

	confirmed, err := persist()
	if err != nil {
		l.mu.Lock()
		fresh, ferr := l.refetch(rec.SessionID)
		if ferr == nil {
			l.replaceLocked(rec.SessionID, fresh)
		} else if hadPrev {
			// Re-fetch also failed; fall back to the pre-mutation record.
			l.setLocked(prev)
		} else {
			delete(l.records[rec.SessionID], rec.StudentID)
		}
		l.mu.Unlock()
		return WriteRolledBack, err
	}

	if confirmed != nil {
		l.mu.Lock()
		l.setLocked(*confirmed)
		l.mu.Unlock()
	}
	return WriteConfirmed, nil
}

func (l *Ledger) setLocked(rec models.AttendanceRecord) {
	if l.records[rec.SessionID] == nil {
		l.records[rec.SessionID] = make(map[uint]models.AttendanceRecord)
	}
	l.records[rec.SessionID][rec.StudentID] = rec
}

func (l *Ledger) replaceLocked(sessionID uint, fresh []models.AttendanceRecord) {
	byStudent := make(map[uint]models.AttendanceRecord, len(fresh))
	for _, rec := range fresh {
		byStudent[rec.StudentID] = rec
	}
	l.records[sessionID] = byStudent
}
