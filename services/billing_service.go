package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"dancestudio_go/database"
	"dancestudio_go/models"
	"dancestudio_go/utils"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Roster classification statuses.
const (
	StatusPaid       = "paid"
	StatusUnpaidPass = "unpaid_pass"
	StatusExpired    = "expired"
	StatusNoPass     = "no_pass"
)

// PassInfo is the slice of a Pass the billing views need to deep-link a
// prefilled payment action.
type PassInfo struct {
	ID           uint      `json:"id"`
	TemplateName string    `json:"template_name"`
	ValidFrom    time.Time `json:"valid_from"`
	ValidUntil   time.Time `json:"valid_until"`
	Price        int       `json:"price"`
	AutoRenew    bool      `json:"auto_renew"`
}

// StudentClassification is one roster entry of the billing views.
type StudentClassification struct {
	StudentID        uint       `json:"student_id"`
	StudentName      string     `json:"student_name"`
	Status           string     `json:"status"`
	Pass             *PassInfo  `json:"pass,omitempty"`
	Paid             bool       `json:"paid"`
	MostRecentExpiry *time.Time `json:"most_recent_expiry,omitempty"`
}

// RevenueSummary is the monthly revenue aggregation for one studio.
type RevenueSummary struct {
	Total    int `json:"total"`
	Cash     int `json:"cash"`
	Transfer int `json:"transfer"`
	Count    int `json:"count"`
}

// ResolveCoverage selects the single pass covering ref among a student's
// passes. Covering means active with valid_from <= ref <= valid_until, both
// dates inclusive. When several active passes overlap (a data anomaly, not a
// feature) the one with the latest valid_until wins, independent of input
// order. When none cover, the maximum valid_until across ALL passes is
// returned so callers can tell "lapsed" apart from "never had a pass".
func ResolveCoverage(passes []models.Pass, ref time.Time) (*models.Pass, *time.Time) {
	var covering *models.Pass
	var mostRecentExpiry *time.Time

	for i := range passes {
		p := &passes[i]
		until := utils.DateOnly(p.ValidUntil)
		if mostRecentExpiry == nil || until.After(*mostRecentExpiry) {
			u := until
			mostRecentExpiry = &u
		}
		if !p.IsActive {
			continue
		}
		if !utils.WithinDateWindow(ref, p.ValidFrom, p.ValidUntil) {
			continue
		}
		if covering == nil || utils.DateOnly(p.ValidUntil).After(utils.DateOnly(covering.ValidUntil)) {
			covering = p
		}
	}

	if covering != nil {
		return covering, nil
	}
	return nil, mostRecentExpiry
}

// IsPaid reports whether a pass has a qualifying payment: one linked to the
// pass with paid_at on or after valid_from. Payments predating the coverage
// period never count, even when they share the pass id through some data
// inconsistency. Amounts are ignored - any qualifying payment marks the
// whole period paid.
func IsPaid(pass models.Pass, payments []models.Payment) bool {
	from := utils.DateOnly(pass.ValidFrom)
	for _, payment := range payments {
		if payment.PassID == nil || *payment.PassID != pass.ID {
			continue
		}
		if !utils.DateOnly(payment.PaidAt).Before(from) {
			return true
		}
	}
	return false
}

// ClassifyStudents runs the coverage resolver and payment matcher across a
// roster. Each student appears at most once - first occurrence wins even if
// the input carries duplicates from overlapping groups.
func ClassifyStudents(students []models.Student, passesByStudent map[uint][]models.Pass, paymentsByPass map[uint][]models.Payment, ref time.Time) []StudentClassification {
	out := make([]StudentClassification, 0, len(students))
	seen := make(map[uint]bool, len(students))

	for _, student := range students {
		if seen[student.ID] {
			continue
		}
		seen[student.ID] = true

		entry := StudentClassification{
			StudentID:   student.ID,
			StudentName: student.FullName,
		}

		pass, mostRecentExpiry := ResolveCoverage(passesByStudent[student.ID], ref)
		switch {
		case pass != nil:
			entry.Pass = &PassInfo{
				ID:           pass.ID,
				TemplateName: pass.TemplateName,
				ValidFrom:    pass.ValidFrom,
				ValidUntil:   pass.ValidUntil,
				Price:        pass.Price,
				AutoRenew:    pass.AutoRenew,
			}
			entry.Paid = IsPaid(*pass, paymentsByPass[pass.ID])
			if entry.Paid {
				entry.Status = StatusPaid
			} else {
				entry.Status = StatusUnpaidPass
			}
		case mostRecentExpiry != nil:
			entry.Status = StatusExpired
			entry.MostRecentExpiry = mostRecentExpiry
		default:
			entry.Status = StatusNoPass
		}

		out = append(out, entry)
	}

	return out
}

// BillingService composes coverage resolution and payment matching over
// studio rosters. Studio scope is always an explicit parameter, never
// ambient state.
type BillingService struct {
	db          *gorm.DB
	redisClient *redis.Client
}

func NewBillingService() *BillingService {
	return &BillingService{db: database.DB, redisClient: database.GetRedisClient()}
}

// StudentsWithPassStatus classifies the entire active roster of a studio as
// of ref. Results are cached in Redis for a short TTL because the dashboard
// polls this on every view.
func (bs *BillingService) StudentsWithPassStatus(studioID uint, ref time.Time) ([]StudentClassification, error) {
	cacheKey := fmt.Sprintf("billing:status:%d:%s", studioID, utils.FormatISODate(ref))
	if cached := bs.readCache(cacheKey); cached != nil {
		return cached, nil
	}

	var students []models.Student
	err := bs.db.Where("studio_id = ? AND active = ?", studioID, true).
		Order("full_name ASC").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for studio %d: %w", studioID, err)
	}

	result, err := bs.classify(students, ref)
	if err != nil {
		return nil, err
	}

	bs.writeCache(cacheKey, result)
	return result, nil
}

// DailyRoster classifies students enrolled in groups meeting on ref's
// weekday. Paid students are omitted - this backs the "to pay today" view,
// which only surfaces entries needing attention.
func (bs *BillingService) DailyRoster(studioID uint, ref time.Time) ([]StudentClassification, error) {
	weekday := int(ref.Weekday())

	var students []models.Student
	err := bs.db.
		Joins("JOIN group_members ON group_members.student_id = students.id AND group_members.status = ? AND group_members.deleted_at IS NULL", "active").
		Joins("JOIN `groups` ON `groups`.id = group_members.group_id AND `groups`.active = ? AND `groups`.weekday = ?", true, weekday).
		Where("students.studio_id = ? AND students.active = ?", studioID, true).
		Order("students.full_name ASC").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load daily roster for studio %d: %w", studioID, err)
	}

	classified, err := bs.classify(students, ref)
	if err != nil {
		return nil, err
	}

	needsAttention := make([]StudentClassification, 0, len(classified))
	for _, entry := range classified {
		if entry.Status != StatusPaid {
			needsAttention = append(needsAttention, entry)
		}
	}
	return needsAttention, nil
}

// OverdueStudents lists students with no pass covering today, optionally
// filtered by a case-insensitive name substring.
func (bs *BillingService) OverdueStudents(studioID uint, nameFilter string) ([]StudentClassification, error) {
	classified, err := bs.StudentsWithPassStatus(studioID, time.Now())
	if err != nil {
		return nil, err
	}

	out := make([]StudentClassification, 0)
	for _, entry := range classified {
		if entry.Status != StatusExpired && entry.Status != StatusNoPass {
			continue
		}
		if !matchesName(entry.StudentName, nameFilter) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// UnpaidPasses lists students whose covering pass has no qualifying payment,
// optionally filtered by name.
func (bs *BillingService) UnpaidPasses(studioID uint, nameFilter string) ([]StudentClassification, error) {
	classified, err := bs.StudentsWithPassStatus(studioID, time.Now())
	if err != nil {
		return nil, err
	}

	out := make([]StudentClassification, 0)
	for _, entry := range classified {
		if entry.Status != StatusUnpaidPass {
			continue
		}
		if !matchesName(entry.StudentName, nameFilter) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// MonthlyRevenue sums payments of a studio within one calendar month, split
// by method. It only looks at payment timestamps, never at pass coverage.
func (bs *BillingService) MonthlyRevenue(studioID uint, year, month int) (*RevenueSummary, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	type row struct {
		Method string
		Total  int
		Count  int
	}
	var rows []row
	err := bs.db.Model(&models.Payment{}).
		Select("payments.method AS method, COALESCE(SUM(payments.amount),0) AS total, COUNT(*) AS count").
		Joins("JOIN students ON students.id = payments.student_id").
		Where("students.studio_id = ? AND payments.paid_at >= ? AND payments.paid_at < ?", studioID, start, end).
		Group("payments.method").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue for studio %d: %w", studioID, err)
	}

	summary := &RevenueSummary{}
	for _, r := range rows {
		summary.Total += r.Total
		summary.Count += r.Count
		switch r.Method {
		case models.PaymentCash:
			summary.Cash = r.Total
		case models.PaymentTransfer:
			summary.Transfer = r.Total
		}
	}
	return summary, nil
}

// classify loads the passes and payments of the given students in two bulk
// queries and runs the pure classification over them.
func (bs *BillingService) classify(students []models.Student, ref time.Time) ([]StudentClassification, error) {
	if len(students) == 0 {
		return []StudentClassification{}, nil
	}

	studentIDs := make([]uint, 0, len(students))
	for _, s := range students {
		studentIDs = append(studentIDs, s.ID)
	}

	var passes []models.Pass
	if err := bs.db.Where("student_id IN ?", studentIDs).Find(&passes).Error; err != nil {
		return nil, fmt.Errorf("failed to load passes: %w", err)
	}
	passesByStudent := make(map[uint][]models.Pass, len(students))
	passIDs := make([]uint, 0, len(passes))
	for _, p := range passes {
		passesByStudent[p.StudentID] = append(passesByStudent[p.StudentID], p)
		passIDs = append(passIDs, p.ID)
	}

	paymentsByPass := make(map[uint][]models.Payment)
	if len(passIDs) > 0 {
		var payments []models.Payment
		if err := bs.db.Where("pass_id IN ?", passIDs).Find(&payments).Error; err != nil {
			return nil, fmt.Errorf("failed to load payments: %w", err)
		}
		for _, payment := range payments {
			if payment.PassID != nil {
				paymentsByPass[*payment.PassID] = append(paymentsByPass[*payment.PassID], payment)
			}
		}
	}

	result := ClassifyStudents(students, passesByStudent, paymentsByPass, ref)
	sort.SliceStable(result, func(i, j int) bool { return result[i].StudentName < result[j].StudentName })
	return result, nil
}

func matchesName(name, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(filter))
}

func (bs *BillingService) readCache(key string) []StudentClassification {
	if bs.redisClient == nil {
		return nil
	}
	data, err := bs.redisClient.Get(context.Background(), key).Result()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).Debug("billing cache read failed")
		}
		return nil
	}
	var cached []StudentClassification
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		return nil
	}
	return cached
}

func (bs *BillingService) writeCache(key string, value []StudentClassification) {
	if bs.redisClient == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := bs.redisClient.Set(context.Background(), key, data, 30*time.Second).Err(); err != nil {
		logrus.WithError(err).Debug("billing cache write failed")
	}
}

// InvalidateStatusCache drops cached classifications for a studio. Called
// after pass or payment mutations so the dashboard catches up immediately.
func (bs *BillingService) InvalidateStatusCache(studioID uint) {
	if bs.redisClient == nil {
		return
	}
	ctx := context.Background()
	pattern := fmt.Sprintf("billing:status:%d:*", studioID)
	keys, err := bs.redisClient.Keys(ctx, pattern).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	bs.redisClient.Del(ctx, keys...)
}
