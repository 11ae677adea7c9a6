package controllers

import (
	"strconv"

	"dancestudio_go/database"
	"dancestudio_go/middleware"
	"dancestudio_go/models"
	"dancestudio_go/utils"

	"github.com/gofiber/fiber/v2"
)

// HolidayController manages the public-holiday calendar. Weekday holidays
// extend auto-renewing pass windows, so the calendar feeds billing directly.
type HolidayController struct{}

type CreateHolidayRequest struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

// GetHolidays lists holidays, optionally restricted to one year
func (hc *HolidayController) GetHolidays(c *fiber.Ctx) error {
	query := database.DB.Model(&models.PublicHoliday{})
	if year := c.Query("year"); year != "" {
		query = query.Where("YEAR(holiday_date) = ?", year)
	}

	var holidays []models.PublicHoliday
	if err := query.Order("holiday_date ASC").Find(&holidays).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch holidays",
		})
	}

	return c.JSON(fiber.Map{
		"holidays": holidays,
		"total":    len(holidays),
	})
}

// CreateHoliday adds a closure day
func (hc *HolidayController) CreateHoliday(c *fiber.Ctx) error {
	var req CreateHolidayRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Label == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Label is required",
		})
	}
	date, err := utils.ParseISODate(req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date, expected YYYY-MM-DD",
		})
	}

	var existing models.PublicHoliday
	if err := database.DB.Where("holiday_date = ?", date).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Holiday already exists on this date",
		})
	}

	holiday := models.PublicHoliday{HolidayDate: date, Label: req.Label}
	if err := database.DB.Create(&holiday).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create holiday",
		})
	}

	middleware.LogActivity(c, "CREATE", "holidays", holiday.ID, holiday)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Holiday created successfully",
		"holiday": holiday,
	})
}

// DeleteHoliday removes a closure day
func (hc *HolidayController) DeleteHoliday(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid holiday ID",
		})
	}

	var holiday models.PublicHoliday
	if err := database.DB.First(&holiday, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Holiday not found",
		})
	}

	if err := database.DB.Delete(&holiday).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete holiday",
		})
	}

	middleware.LogActivity(c, "DELETE", "holidays", holiday.ID, holiday)

	return c.JSON(fiber.Map{
		"message": "Holiday deleted successfully",
	})
}
