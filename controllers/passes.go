package controllers

import (
	"errors"
	"strconv"

	"dancestudio_go/database"
	"dancestudio_go/middleware"
	"dancestudio_go/models"
	"dancestudio_go/services"
	"dancestudio_go/utils"

	"github.com/gofiber/fiber/v2"
)

// PassController manages the pass lifecycle: purchase, renewal,
// deactivation, plus the renewal reconciliation check.
type PassController struct {
	passes  *services.PassService
	billing *services.BillingService
}

func NewPassController() *PassController {
	return &PassController{
		passes:  services.NewPassService(),
		billing: services.NewBillingService(),
	}
}

type CreatePassRequest struct {
	StudentID    uint   `json:"student_id"`
	TemplateName string `json:"template_name"`
	ValidFrom    string `json:"valid_from"`
	ValidUntil   string `json:"valid_until"`
	Price        int    `json:"price"`
	TotalEntries *int   `json:"total_entries"`
	AutoRenew    bool   `json:"auto_renew"`
}

// GetStudentPasses lists a student's passes, newest window first
func (pc *PassController) GetStudentPasses(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("student_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var passes []models.Pass
	if err := database.DB.Where("student_id = ?", uint(studentID)).
		Order("valid_until DESC").
		Find(&passes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch passes",
		})
	}

	return c.JSON(fiber.Map{
		"passes": utils.SerializePasses(passes),
		"total":  len(passes),
	})
}

// CreatePass records a pass purchase
func (pc *PassController) CreatePass(c *fiber.Ctx) error {
	var req CreatePassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.StudentID == 0 || req.TemplateName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Student ID and template name are required",
		})
	}

	from, err := utils.ParseISODate(req.ValidFrom)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid valid_from, expected YYYY-MM-DD",
		})
	}
	until, err := utils.ParseISODate(req.ValidUntil)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid valid_until, expected YYYY-MM-DD",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	pass, err := pc.passes.CreatePass(services.CreatePassInput{
		StudentID:    req.StudentID,
		TemplateName: req.TemplateName,
		ValidFrom:    from,
		ValidUntil:   until,
		Price:        req.Price,
		TotalEntries: req.TotalEntries,
		AutoRenew:    req.AutoRenew,
	})
	if err != nil {
		if errors.Is(err, services.ErrOverlappingPass) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Student already has an active pass overlapping this window",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create pass",
		})
	}

	pc.billing.InvalidateStatusCache(student.StudioID)
	middleware.LogActivity(c, "CREATE", "passes", pass.ID, utils.SerializePass(*pass))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Pass created successfully",
		"pass":    utils.SerializePass(*pass),
	})
}

// RenewPass creates the successor pass and deactivates the old one in a
// single transaction. The response carries both windows.
func (pc *PassController) RenewPass(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid pass ID",
		})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	successor, err := pc.passes.RenewPass(uint(id), user.ID)
	if err != nil {
		if errors.Is(err, services.ErrOverlappingPass) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Renewal window overlaps another active pass",
			})
		}
		if errors.Is(err, services.ErrRenewalFailed) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":     "Renewal did not complete; the old pass is still active",
				"retryable": true,
			})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Pass not found or not active",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, successor.StudentID).Error; err == nil {
		pc.billing.InvalidateStatusCache(student.StudioID)
	}
	middleware.LogActivity(c, "RENEW", "passes", successor.ID, utils.SerializePass(*successor))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Pass renewed successfully",
		"pass":    utils.SerializePass(*successor),
	})
}

// DeactivatePass disables a pass without creating a successor
func (pc *PassController) DeactivatePass(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid pass ID",
		})
	}

	var pass models.Pass
	if err := database.DB.Preload("Student").First(&pass, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Pass not found",
		})
	}

	if err := pc.passes.DeactivatePass(uint(id)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to deactivate pass",
		})
	}

	pc.billing.InvalidateStatusCache(pass.Student.StudioID)
	middleware.LogActivity(c, "DEACTIVATE", "passes", pass.ID, nil)

	return c.JSON(fiber.Map{
		"message": "Pass deactivated successfully",
	})
}

// GetOrphanedRenewals surfaces passes deactivated by a renewal that has no
// active successor. Always empty unless something needs manual repair.
func (pc *PassController) GetOrphanedRenewals(c *fiber.Ctx) error {
	orphans, err := pc.passes.FindOrphanedRenewals()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Reconciliation query failed",
		})
	}

	return c.JSON(fiber.Map{
		"orphans": utils.SerializePasses(orphans),
		"total":   len(orphans),
	})
}
