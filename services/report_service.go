package services

import (
	"bytes"
	"fmt"
	"time"

	"dancestudio_go/database"
	"dancestudio_go/models"
	"dancestudio_go/storage"
	"dancestudio_go/utils"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportService builds Excel workbooks for the billing views and archives
// them to S3.
type ReportService struct {
	db      *gorm.DB
	billing *BillingService
}

func NewReportService() *ReportService {
	return &ReportService{db: database.DB, billing: NewBillingService()}
}

// GenerateMonthlyRevenueReport writes one workbook with every payment of
// the studio in the given month plus a method-split summary, uploads it and
// records a ReportArchive row.
func (rs *ReportService) GenerateMonthlyRevenueReport(studioID uint, year, month int) (*models.ReportArchive, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	var payments []models.Payment
	err := rs.db.Preload("Student").
		Joins("JOIN students ON students.id = payments.student_id").
		Where("students.studio_id = ? AND payments.paid_at >= ? AND payments.paid_at < ?", studioID, start, end).
		Order("payments.paid_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	summary, err := rs.billing.MonthlyRevenue(studioID, year, month)
	if err != nil {
		return nil, err
	}

	buf, err := rs.buildRevenueWorkbook(payments, summary, year, month)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("revenue_%d_%04d_%02d.xlsx", studioID, year, month)
	archive := models.ReportArchive{
		FileName:    fileName,
		ReportType:  "monthly_revenue",
		StudioID:    studioID,
		PeriodYear:  year,
		PeriodMonth: month,
		RecordCount: len(payments),
		FileSize:    int64(buf.Len()),
		Status:      "pending",
	}

	store, err := storage.NewStorageService()
	if err != nil {
		archive.Status = "failed"
		archive.Error = err.Error()
		rs.db.Create(&archive)
		return nil, err
	}

	key, err := store.UploadReport("reports/revenue", fileName,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	if err != nil {
		archive.Status = "failed"
		archive.Error = err.Error()
		rs.db.Create(&archive)
		return nil, fmt.Errorf("failed to upload revenue report: %w", err)
	}

	archive.S3Key = key
	archive.Status = "completed"
	if err := rs.db.Create(&archive).Error; err != nil {
		logrus.WithError(err).Error("failed to record report archive row")
	}

	logrus.WithFields(logrus.Fields{
		"studio_id": studioID,
		"s3_key":    key,
		"payments":  len(payments),
	}).Info("Monthly revenue report generated")

	return &archive, nil
}

func (rs *ReportService) buildRevenueWorkbook(payments []models.Payment, summary *RevenueSummary, year, month int) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Revenue"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Date", "Student", "Amount (PLN)", "Method", "Pass ID"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, payment := range payments {
		row := i + 2
		passID := ""
		if payment.PassID != nil {
			passID = fmt.Sprintf("%d", *payment.PassID)
		}
		values := []interface{}{
			payment.PaidAt.Format("2006-01-02 15:04"),
			payment.Student.FullName,
			float64(payment.Amount) / 100.0,
			payment.Method,
			passID,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	summaryRow := len(payments) + 3
	lines := [][2]interface{}{
		{fmt.Sprintf("Summary %04d-%02d", year, month), ""},
		{"Total", float64(summary.Total) / 100.0},
		{"Cash", float64(summary.Cash) / 100.0},
		{"Transfer", float64(summary.Transfer) / 100.0},
		{"Payments", summary.Count},
	}
	for i, line := range lines {
		labelCell, _ := excelize.CoordinatesToCellName(1, summaryRow+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, summaryRow+i)
		if err := f.SetCellValue(sheet, labelCell, line[0]); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, valueCell, line[1]); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf, nil
}

// GenerateUnpaidPassesReport exports the current unpaid-passes list of a
// studio for front-desk follow-up.
func (rs *ReportService) GenerateUnpaidPassesReport(studioID uint) (*bytes.Buffer, string, error) {
	entries, err := rs.billing.UnpaidPasses(studioID, "")
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Unpaid"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", err
	}

	headers := []string{"Student", "Pass", "Valid From", "Valid Until", "Price (PLN)", "Auto Renew"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, "", err
		}
	}

	for i, entry := range entries {
		if entry.Pass == nil {
			continue
		}
		row := i + 2
		values := []interface{}{
			entry.StudentName,
			entry.Pass.TemplateName,
			utils.FormatISODate(entry.Pass.ValidFrom),
			utils.FormatISODate(entry.Pass.ValidUntil),
			float64(entry.Pass.Price) / 100.0,
			entry.Pass.AutoRenew,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize workbook: %w", err)
	}
	fileName := fmt.Sprintf("unpaid_passes_%d_%s.xlsx", studioID, utils.FormatISODate(time.Now()))
	return buf, fileName, nil
}
