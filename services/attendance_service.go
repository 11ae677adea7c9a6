package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dancestudio_go/database"
	"dancestudio_go/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResolveToggle computes the status an attendance button press should
// produce. Pressing the status a student already has flips present<->absent
// rather than being a no-op; any other target simply wins.
func ResolveToggle(current, target string) string {
	if current == target {
		switch target {
		case models.AttendancePresent:
			return models.AttendanceAbsent
		case models.AttendanceAbsent:
			return models.AttendancePresent
		default:
			return models.AttendanceNone
		}
	}
	return target
}

// ResolveNoteStatus computes the status a note save should produce: a
// non-empty note marks the student excused, clearing the note releases an
// excused status back to none and leaves anything else alone.
func ResolveNoteStatus(current, note string) string {
	if strings.TrimSpace(note) != "" {
		return models.AttendanceExcused
	}
	if current == models.AttendanceExcused {
		return models.AttendanceNone
	}
	return current
}

// ToggleInput carries one attendance mutation. Exactly one of StudentID or
// (IsSubstitute + SubstituteName) identifies the target person.
type ToggleInput struct {
	SessionID      uint
	StudentID      uint
	Target         string // desired status for a status press; ignored on note saves
	Note           string
	NoteSave       bool // note-save button instead of a status press
	IsSubstitute   bool
	SubstituteName string
	MarkedBy       uint
}

// AttendanceService owns the attendance records of class sessions.
type AttendanceService struct {
	db *gorm.DB
}

func NewAttendanceService() *AttendanceService {
	return &AttendanceService{db: database.DB}
}

// LoadAttendance returns all records for a session. A zero session id is the
// "not yet loaded" state and yields an empty list, not an error.
func (as *AttendanceService) LoadAttendance(sessionID uint) ([]models.AttendanceRecord, error) {
	if sessionID == 0 {
		return []models.AttendanceRecord{}, nil
	}
	var records []models.AttendanceRecord
	err := as.db.Preload("Student").Where("session_id = ?", sessionID).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance for session %d: %w", sessionID, err)
	}
	return records, nil
}

// Toggle applies one attendance mutation as an idempotent upsert keyed on
// (session, student): repeated presses never create duplicate rows and the
// last successful write wins. Guests are resolved to a Student row first.
func (as *AttendanceService) Toggle(in ToggleInput) (*models.AttendanceRecord, error) {
	if in.SessionID == 0 {
		return nil, errors.New("session id is required")
	}

	var record models.AttendanceRecord
	err := as.db.Transaction(func(tx *gorm.DB) error {
		studentID := in.StudentID
		if in.IsSubstitute {
			id, err := as.resolveGuest(tx, in.SessionID, in.SubstituteName)
			if err != nil {
				return err
			}
			studentID = id
		}
		if studentID == 0 {
			return errors.New("student id is required")
		}

		var current models.AttendanceRecord
		err := tx.Where("session_id = ? AND student_id = ?", in.SessionID, studentID).First(&current).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to read current attendance: %w", err)
		}

		status := current.Status
		if status == "" {
			status = models.AttendanceNone
		}
		note := current.Note
		if in.NoteSave {
			note = in.Note
			status = ResolveNoteStatus(status, in.Note)
		} else {
			status = ResolveToggle(status, in.Target)
		}

		now := time.Now()
		record = models.AttendanceRecord{
			SessionID:      in.SessionID,
			StudentID:      studentID,
			Status:         status,
			Note:           note,
			IsSubstitute:   in.IsSubstitute,
			SubstituteName: in.SubstituteName,
			MarkedBy:       in.MarkedBy,
			MarkedAt:       &now,
		}

		// Upsert on the (session_id, student_id) unique index so concurrent
		// first presses collapse into one row.
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "note", "is_substitute", "substitute_name", "marked_by", "marked_at", "updated_at",
			}),
		}).Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// resolveGuest finds or creates the Student row for a substitute/guest name.
// Identity is exact full-name match scoped to the session group's studio -
// no fuzzy matching, collisions between unrelated people with the same name
// are accepted behavior.
func (as *AttendanceService) resolveGuest(tx *gorm.DB, sessionID uint, name string) (uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("substitute name is required")
	}

	var session models.ClassSession
	if err := tx.Preload("Group").First(&session, sessionID).Error; err != nil {
		return 0, fmt.Errorf("session %d not found: %w", sessionID, err)
	}
	studioID := session.Group.StudioID

	var student models.Student
	err := tx.Where("studio_id = ? AND full_name = ?", studioID, name).First(&student).Error
	if err == nil {
		return student.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("guest lookup failed: %w", err)
	}

	student = models.Student{
		StudioID: studioID,
		FullName: name,
		IsGuest:  true,
		Active:   true,
	}
	if err := tx.Create(&student).Error; err != nil {
		return 0, fmt.Errorf("failed to create guest student: %w", err)
	}
	return student.ID, nil
}
