package controllers

import (
	"strconv"

	"dancestudio_go/database"
	"dancestudio_go/middleware"
	"dancestudio_go/models"

	"github.com/gofiber/fiber/v2"
)

type StudioController struct{}

// GetStudios returns all studios
func (sc *StudioController) GetStudios(c *fiber.Ctx) error {
	var studios []models.Studio
	if err := database.DB.Order("name ASC").Find(&studios).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch studios",
		})
	}

	return c.JSON(fiber.Map{
		"studios": studios,
		"total":   len(studios),
	})
}

// GetStudio returns a specific studio by ID
func (sc *StudioController) GetStudio(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid studio ID",
		})
	}

	var studio models.Studio
	if err := database.DB.Preload("Groups", "active = ?", true).
		First(&studio, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Studio not found",
		})
	}

	return c.JSON(fiber.Map{
		"studio": studio,
	})
}

// CreateStudio creates a new studio (owner only)
func (sc *StudioController) CreateStudio(c *fiber.Ctx) error {
	var studio models.Studio
	if err := c.BodyParser(&studio); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if studio.Name == "" || studio.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and code are required",
		})
	}

	var existing models.Studio
	if err := database.DB.Where("code = ?", studio.Code).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Studio code already exists",
		})
	}

	studio.Active = true
	if err := database.DB.Create(&studio).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create studio",
		})
	}

	middleware.LogActivity(c, "CREATE", "studios", studio.ID, studio)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Studio created successfully",
		"studio":  studio,
	})
}

// UpdateStudio updates an existing studio (owner only)
func (sc *StudioController) UpdateStudio(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid studio ID",
		})
	}

	var studio models.Studio
	if err := database.DB.First(&studio, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Studio not found",
		})
	}

	var updateData models.Studio
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := database.DB.Model(&studio).Updates(updateData).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update studio",
		})
	}

	middleware.LogActivity(c, "UPDATE", "studios", studio.ID, updateData)

	return c.JSON(fiber.Map{
		"message": "Studio updated successfully",
		"studio":  studio,
	})
}

// DeactivateStudio disables a studio (owner only)
func (sc *StudioController) DeactivateStudio(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid studio ID",
		})
	}

	var studio models.Studio
	if err := database.DB.First(&studio, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Studio not found",
		})
	}

	if err := database.DB.Model(&studio).Update("active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to deactivate studio",
		})
	}

	middleware.LogActivity(c, "DEACTIVATE", "studios", studio.ID, nil)

	return c.JSON(fiber.Map{
		"message": "Studio deactivated successfully",
	})
}
