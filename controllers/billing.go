package controllers

import (
	"strconv"
	"time"

	"dancestudio_go/middleware"
	"dancestudio_go/services"
	"dancestudio_go/utils"

	"github.com/gofiber/fiber/v2"
)

// BillingController exposes the pass-status views: studio roster
// classification, daily to-pay list, overdue and unpaid splits, and the
// monthly revenue summary.
type BillingController struct {
	billing *services.BillingService
}

func NewBillingController() *BillingController {
	return &BillingController{billing: services.NewBillingService()}
}

// resolveStudioID picks the studio scope of a request. The JWT claim is the
// default; only owners may ask for another studio explicitly. Services below
// this line always receive the id as a parameter, never ambient state.
func resolveStudioID(c *fiber.Ctx) (uint, error) {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return 0, err
	}

	raw := c.Query("studio_id")
	if raw == "" {
		return claims.StudioID, nil
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid studio ID")
	}
	if uint(id) != claims.StudioID && claims.Role != "owner" {
		return 0, fiber.NewError(fiber.StatusForbidden, "Cannot access another studio")
	}
	return uint(id), nil
}

// resolveRefDate parses an optional ?date= query, defaulting to today
func resolveRefDate(c *fiber.Ctx) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), nil
	}
	ref, err := utils.ParseISODate(raw)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}
	return ref, nil
}

// GetStudentsWithPassStatus classifies the whole active roster of a studio
func (bc *BillingController) GetStudentsWithPassStatus(c *fiber.Ctx) error {
	studioID, err := resolveStudioID(c)
	if err != nil {
		return err
	}
	ref, err := resolveRefDate(c)
	if err != nil {
		return err
	}

	entries, err := bc.billing.StudentsWithPassStatus(studioID, ref)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to classify students",
		})
	}

	return c.JSON(fiber.Map{
		"students": entries,
		"total":    len(entries),
		"date":     utils.FormatISODate(ref),
	})
}

// GetDailyUnpaid lists students attending today's classes who still need to
// pay. Paid students are omitted on purpose - the front desk only needs the
// exceptions.
func (bc *BillingController) GetDailyUnpaid(c *fiber.Ctx) error {
	studioID, err := resolveStudioID(c)
	if err != nil {
		return err
	}
	ref, err := resolveRefDate(c)
	if err != nil {
		return err
	}

	entries, err := bc.billing.DailyRoster(studioID, ref)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build daily roster",
		})
	}

	return c.JSON(fiber.Map{
		"students":  entries,
		"total":     len(entries),
		"date":      utils.FormatISODate(ref),
		"day_label": utils.RelativeDayLabel(ref, time.Now()),
	})
}

// GetOverdueStudents lists students with no covering pass today
func (bc *BillingController) GetOverdueStudents(c *fiber.Ctx) error {
	studioID, err := resolveStudioID(c)
	if err != nil {
		return err
	}

	entries, err := bc.billing.OverdueStudents(studioID, c.Query("name"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch overdue students",
		})
	}

	return c.JSON(fiber.Map{
		"students": entries,
		"total":    len(entries),
	})
}

// GetUnpaidPasses lists students whose current pass has no qualifying payment
func (bc *BillingController) GetUnpaidPasses(c *fiber.Ctx) error {
	studioID, err := resolveStudioID(c)
	if err != nil {
		return err
	}

	entries, err := bc.billing.UnpaidPasses(studioID, c.Query("name"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch unpaid passes",
		})
	}

	return c.JSON(fiber.Map{
		"students": entries,
		"total":    len(entries),
	})
}

// GetMonthlyRevenue sums a studio's payments for one calendar month
func (bc *BillingController) GetMonthlyRevenue(c *fiber.Ctx) error {
	studioID, err := resolveStudioID(c)
	if err != nil {
		return err
	}

	now := time.Now()
	year, _ := strconv.Atoi(c.Query("year", strconv.Itoa(now.Year())))
	month, _ := strconv.Atoi(c.Query("month", strconv.Itoa(int(now.Month()))))
	if month < 1 || month > 12 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid month",
		})
	}

	summary, err := bc.billing.MonthlyRevenue(studioID, year, month)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to aggregate revenue",
		})
	}

	return c.JSON(fiber.Map{
		"revenue": summary,
		"year":    year,
		"month":   month,
	})
}
