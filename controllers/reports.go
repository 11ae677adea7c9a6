package controllers

import (
	"strconv"
	"time"

	"dancestudio_go/middleware"
	"dancestudio_go/services"

	"github.com/gofiber/fiber/v2"
)

// ReportController triggers Excel exports and lists archived reports.
type ReportController struct {
	reports  *services.ReportService
	archives *services.LogArchiveService
}

func NewReportController() *ReportController {
	return &ReportController{
		reports:  services.NewReportService(),
		archives: services.NewLogArchiveService(),
	}
}

type GenerateRevenueReportRequest struct {
	StudioID uint `json:"studio_id"`
	Year     int  `json:"year"`
	Month    int  `json:"month"`
}

// GenerateRevenueReport builds the monthly revenue workbook, uploads it to
// S3 and returns the archive row.
func (rc *ReportController) GenerateRevenueReport(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return err
	}

	var req GenerateRevenueReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.StudioID == 0 {
		req.StudioID = claims.StudioID
	}
	if req.StudioID != claims.StudioID && claims.Role != "owner" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Cannot generate reports for another studio",
		})
	}

	now := time.Now()
	if req.Year == 0 {
		req.Year = now.Year()
	}
	if req.Month == 0 {
		req.Month = int(now.Month())
	}
	if req.Month < 1 || req.Month > 12 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid month",
		})
	}

	archive, err := rc.reports.GenerateMonthlyRevenueReport(req.StudioID, req.Year, req.Month)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate revenue report",
		})
	}

	middleware.LogActivity(c, "CREATE", "reports", archive.ID, fiber.Map{
		"report_type": archive.ReportType,
		"period":      strconv.Itoa(req.Year) + "-" + strconv.Itoa(req.Month),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Revenue report generated",
		"archive": archive,
	})
}

// DownloadUnpaidPassesReport streams the current unpaid-passes workbook
func (rc *ReportController) DownloadUnpaidPassesReport(c *fiber.Ctx) error {
	studioID, err := resolveStudioID(c)
	if err != nil {
		return err
	}

	buf, fileName, err := rc.reports.GenerateUnpaidPassesReport(studioID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate unpaid passes report",
		})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	return c.Send(buf.Bytes())
}

// GetReportArchives lists generated report files
func (rc *ReportController) GetReportArchives(c *fiber.Ctx) error {
	archives, err := rc.archives.GetArchives()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch report archives",
		})
	}

	return c.JSON(fiber.Map{
		"archives": archives,
		"total":    len(archives),
	})
}
