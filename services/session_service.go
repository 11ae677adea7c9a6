package services

import (
	"errors"
	"fmt"

	"dancestudio_go/database"
	"dancestudio_go/models"
	"dancestudio_go/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionCreationError signals that a session could not be materialized for
// a reason other than "already exists". Callers should surface a retryable
// error state and must not attempt attendance writes without a session id.
type SessionCreationError struct {
	GroupID uint
	Date    string
	Err     error
}

func (e *SessionCreationError) Error() string {
	return fmt.Sprintf("failed to ensure session for group %d on %s: %v", e.GroupID, e.Date, e.Err)
}

func (e *SessionCreationError) Unwrap() error {
	return e.Err
}

// SessionService materializes class sessions for (group, date) pairs.
type SessionService struct {
	db *gorm.DB
}

func NewSessionService() *SessionService {
	return &SessionService{db: database.DB}
}

// EnsureSession returns the canonical session id for (groupID, isoDate),
// creating the row if absent. A zero group id or empty date is a no-op and
// yields id 0 with no error - "not ready", not a failure. Safe under
// concurrent callers: the insert rides the (group_id, session_date) unique
// index with ON CONFLICT DO NOTHING, then re-reads the winner.
func (ss *SessionService) EnsureSession(groupID uint, isoDate string) (uint, error) {
	if groupID == 0 || isoDate == "" {
		return 0, nil
	}

	date, err := utils.ParseISODate(isoDate)
	if err != nil {
		return 0, &SessionCreationError{GroupID: groupID, Date: isoDate, Err: err}
	}

	var session models.ClassSession
	err = ss.db.Where("group_id = ? AND session_date = ?", groupID, date).First(&session).Error
	if err == nil {
		return session.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, &SessionCreationError{GroupID: groupID, Date: isoDate, Err: err}
	}

	fresh := models.ClassSession{GroupID: groupID, SessionDate: date}
	res := ss.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh)
	if res.Error != nil {
		return 0, &SessionCreationError{GroupID: groupID, Date: isoDate, Err: res.Error}
	}
	if res.RowsAffected == 0 {
		// Lost the race; another caller inserted first. Read the winner.
		if err := ss.db.Where("group_id = ? AND session_date = ?", groupID, date).First(&session).Error; err != nil {
			return 0, &SessionCreationError{GroupID: groupID, Date: isoDate, Err: err}
		}
		return session.ID, nil
	}

	return fresh.ID, nil
}

// CancelFutureSessions flags sessions of a group on or after the given date
// as cancelled. Past sessions are retained untouched so history survives
// group deactivation.
func (ss *SessionService) CancelFutureSessions(groupID uint, fromISO string) (int64, error) {
	from, err := utils.ParseISODate(fromISO)
	if err != nil {
		return 0, err
	}
	res := ss.db.Model(&models.ClassSession{}).
		Where("group_id = ? AND session_date >= ?", groupID, from).
		Update("cancelled", true)
	return res.RowsAffected, res.Error
}
