package services

import (
	"errors"
	"fmt"
	"time"

	"dancestudio_go/database"
	"dancestudio_go/models"
	"dancestudio_go/utils"

	"gorm.io/gorm"
)

// ErrOverlappingPass rejects creating a second active pass whose window
// overlaps an existing active one for the same student.
var ErrOverlappingPass = errors.New("student already has an active pass overlapping this window")

// ErrRenewalFailed flags a renewal that could not complete atomically. The
// transaction rolls back, so the student keeps the old active pass.
var ErrRenewalFailed = errors.New("pass renewal failed")

// PassService owns the pass lifecycle: purchase, renewal, deactivation.
type PassService struct {
	db *gorm.DB
}

func NewPassService() *PassService {
	return &PassService{db: database.DB}
}

// CreatePassInput carries a pass purchase.
type CreatePassInput struct {
	StudentID    uint
	TemplateName string
	ValidFrom    time.Time
	ValidUntil   time.Time
	Price        int
	TotalEntries *int
	AutoRenew    bool
}

// CreatePass inserts a new active pass after checking the overlap guard.
func (ps *PassService) CreatePass(in CreatePassInput) (*models.Pass, error) {
	if in.ValidUntil.Before(in.ValidFrom) {
		return nil, fmt.Errorf("valid_until %s precedes valid_from %s",
			utils.FormatISODate(in.ValidUntil), utils.FormatISODate(in.ValidFrom))
	}

	pass := models.Pass{
		StudentID:    in.StudentID,
		TemplateName: in.TemplateName,
		ValidFrom:    utils.DateOnly(in.ValidFrom),
		ValidUntil:   utils.DateOnly(in.ValidUntil),
		Price:        in.Price,
		TotalEntries: in.TotalEntries,
		AutoRenew:    in.AutoRenew,
		IsActive:     true,
	}

	err := ps.db.Transaction(func(tx *gorm.DB) error {
		overlapping, err := ps.hasActiveOverlap(tx, in.StudentID, pass.ValidFrom, pass.ValidUntil, 0)
		if err != nil {
			return err
		}
		if overlapping {
			return ErrOverlappingPass
		}
		return tx.Create(&pass).Error
	})
	if err != nil {
		return nil, err
	}
	return &pass, nil
}

// NextWindow computes the successor window of a pass: it starts the day
// after the old valid_until and keeps the old window's length in days.
func NextWindow(old models.Pass) (time.Time, time.Time) {
	from := utils.DateOnly(old.ValidUntil).AddDate(0, 0, 1)
	days := int(utils.DateOnly(old.ValidUntil).Sub(utils.DateOnly(old.ValidFrom)).Hours()/24) + 1
	until := from.AddDate(0, 0, days-1)
	return from, until
}

// ExtendForHolidays pushes valid_until back by one day per weekday public
// holiday inside [from, until]. Weekend holidays do not count - the studio
// would have been closed anyway.
func ExtendForHolidays(from, until time.Time, holidays []models.PublicHoliday) time.Time {
	extension := 0
	for _, h := range holidays {
		if !utils.IsWeekday(h.HolidayDate) {
			continue
		}
		if utils.WithinDateWindow(h.HolidayDate, from, until) {
			extension++
		}
	}
	return utils.DateOnly(until).AddDate(0, 0, extension)
}

// RenewPass creates the successor pass and deactivates the old one inside a
// single transaction, insert first so a partial failure can never leave the
// student with zero active passes. The new window starts the day after the
// old valid_until; weekday public holidays inside the new window extend it.
func (ps *PassService) RenewPass(passID uint, recordedBy uint) (*models.Pass, error) {
	var successor models.Pass
	err := ps.db.Transaction(func(tx *gorm.DB) error {
		var old models.Pass
		if err := tx.First(&old, passID).Error; err != nil {
			return fmt.Errorf("pass %d not found: %w", passID, err)
		}
		if !old.IsActive {
			return fmt.Errorf("pass %d is not active", passID)
		}

		from, until := NextWindow(old)

		var holidays []models.PublicHoliday
		if err := tx.Where("holiday_date >= ? AND holiday_date <= ?", from, until).Find(&holidays).Error; err != nil {
			return fmt.Errorf("failed to load holidays: %w", err)
		}
		until = ExtendForHolidays(from, until, holidays)

		overlapping, err := ps.hasActiveOverlap(tx, old.StudentID, from, until, old.ID)
		if err != nil {
			return err
		}
		if overlapping {
			return ErrOverlappingPass
		}

		successor = models.Pass{
			StudentID:     old.StudentID,
			TemplateName:  old.TemplateName,
			ValidFrom:     from,
			ValidUntil:    until,
			Price:         old.Price,
			TotalEntries:  old.TotalEntries,
			AutoRenew:     old.AutoRenew,
			IsActive:      true,
			RenewedFromID: &old.ID,
		}
		if err := tx.Create(&successor).Error; err != nil {
			return fmt.Errorf("%w: insert of successor failed: %v", ErrRenewalFailed, err)
		}

		// Deactivate only after the successor exists.
		if err := tx.Model(&old).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("%w: deactivation of pass %d failed: %v", ErrRenewalFailed, old.ID, err)
		}

		ps.notifyRenewal(tx, old, successor, recordedBy)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &successor, nil
}

// AutoRenewDuePasses renews every active auto_renew pass whose window ended
// before today. Returns the number of successful renewals.
func (ps *PassService) AutoRenewDuePasses(now time.Time) (int, error) {
	today := utils.DateOnly(now)

	var due []models.Pass
	err := ps.db.Where("auto_renew = ? AND is_active = ? AND valid_until < ?", true, true, today).Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load due passes: %w", err)
	}

	renewed := 0
	var firstErr error
	for _, pass := range due {
		if _, err := ps.RenewPass(pass.ID, 0); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		renewed++
	}
	return renewed, firstErr
}

// FindOrphanedRenewals is the defensive reconciliation check: passes that
// were deactivated with the renewal marker set on nothing - i.e. no active
// successor references them. Under the transactional renewal this should
// always come back empty; anything found means manual repair.
func (ps *PassService) FindOrphanedRenewals() ([]models.Pass, error) {
	var orphans []models.Pass
	err := ps.db.
		Where("is_active = ? AND auto_renew = ?", false, true).
		Where("NOT EXISTS (SELECT 1 FROM passes s WHERE s.renewed_from_id = passes.id AND s.deleted_at IS NULL)").
		Find(&orphans).Error
	if err != nil {
		return nil, fmt.Errorf("reconciliation query failed: %w", err)
	}
	return orphans, nil
}

// DeactivatePass soft-disables a pass without renewal.
func (ps *PassService) DeactivatePass(passID uint) error {
	res := ps.db.Model(&models.Pass{}).Where("id = ?", passID).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pass %d not found", passID)
	}
	return nil
}

func (ps *PassService) hasActiveOverlap(tx *gorm.DB, studentID uint, from, until time.Time, excludeID uint) (bool, error) {
	var count int64
	q := tx.Model(&models.Pass{}).
		Where("student_id = ? AND is_active = ?", studentID, true).
		Where("valid_from <= ? AND valid_until >= ?", until, from)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("overlap check failed: %w", err)
	}
	return count > 0, nil
}

// notifyRenewal leaves an in-app notification for the staff who will record
// the payment. Best effort - a failed notification never fails the renewal.
func (ps *PassService) notifyRenewal(tx *gorm.DB, old, successor models.Pass, recordedBy uint) {
	if recordedBy == 0 {
		return
	}
	notification := models.Notification{
		UserID: recordedBy,
		Title:  "Pass renewed",
		Message: fmt.Sprintf("Pass %q for student %d renewed: %s - %s.",
			successor.TemplateName, successor.StudentID,
			utils.FormatISODate(successor.ValidFrom), utils.FormatISODate(successor.ValidUntil)),
		Type: "success",
	}
	tx.Create(&notification)
}
