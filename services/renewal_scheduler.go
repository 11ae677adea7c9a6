package services

import (
	"time"

	"dancestudio_go/config"
	"dancestudio_go/database"
	"dancestudio_go/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs the recurring maintenance jobs: nightly pass auto-renewal
// with reconciliation, monthly revenue reports, and activity-log upkeep.
type Scheduler struct {
	cron       *cron.Cron
	passes     *PassService
	reports    *ReportService
	logArchive *LogArchiveService
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		passes:     NewPassService(),
		reports:    NewReportService(),
		logArchive: NewLogArchiveService(),
	}
}

// Start registers the cron entries and launches the scheduler goroutine.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(config.AppConfig.AutoRenewCronSpec, s.runAutoRenew); err != nil {
		logrus.WithError(err).Error("failed to schedule auto-renew job")
	}
	if _, err := s.cron.AddFunc(config.AppConfig.ReportCronSpec, s.runMonthlyReports); err != nil {
		logrus.WithError(err).Error("failed to schedule report job")
	}
	if _, err := s.cron.AddFunc("@every 1h", s.runLogMaintenance); err != nil {
		logrus.WithError(err).Error("failed to schedule log maintenance job")
	}

	s.cron.Start()
	logrus.Info("Scheduler started")
}

// Stop halts the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runAutoRenew() {
	renewed, err := s.passes.AutoRenewDuePasses(time.Now())
	if err != nil {
		logrus.WithError(err).Error("auto-renew run finished with errors")
	}
	if renewed > 0 {
		logrus.Infof("Auto-renewed %d passes", renewed)
	}

	orphans, err := s.passes.FindOrphanedRenewals()
	if err != nil {
		logrus.WithError(err).Error("renewal reconciliation check failed")
		return
	}
	for _, orphan := range orphans {
		logrus.WithFields(logrus.Fields{
			"pass_id":    orphan.ID,
			"student_id": orphan.StudentID,
		}).Warn("pass deactivated without active successor - needs repair")
	}
}

// runMonthlyReports generates last month's revenue workbook for every
// active studio.
func (s *Scheduler) runMonthlyReports() {
	prev := time.Now().AddDate(0, -1, 0)

	var studios []models.Studio
	if err := database.DB.Where("active = ?", true).Find(&studios).Error; err != nil {
		logrus.WithError(err).Error("failed to load studios for report run")
		return
	}

	for _, studio := range studios {
		if _, err := s.reports.GenerateMonthlyRevenueReport(studio.ID, prev.Year(), int(prev.Month())); err != nil {
			logrus.WithError(err).WithField("studio_id", studio.ID).Error("monthly revenue report failed")
		}
	}
}

func (s *Scheduler) runLogMaintenance() {
	if err := s.logArchive.FlushCachedLogsToDatabase(); err != nil {
		logrus.WithError(err).Warn("FlushCachedLogsToDatabase failed")
	}
	if err := s.logArchive.ArchiveOldLogs(30); err != nil {
		logrus.WithError(err).Warn("ArchiveOldLogs failed")
	}
}
