package controllers

import (
	"strconv"
	"time"

	"dancestudio_go/database"
	"dancestudio_go/middleware"
	"dancestudio_go/models"
	"dancestudio_go/services"
	"dancestudio_go/utils"

	"github.com/gofiber/fiber/v2"
)

// PaymentController records and lists payments. A payment marks a pass
// period paid only when it lands on or after the pass window start; the
// matching itself lives in the billing service.
type PaymentController struct {
	billing *services.BillingService
}

func NewPaymentController() *PaymentController {
	return &PaymentController{billing: services.NewBillingService()}
}

type CreatePaymentRequest struct {
	StudentID uint   `json:"student_id"`
	PassID    *uint  `json:"pass_id"`
	Amount    int    `json:"amount"`
	Method    string `json:"method"`
	PaidAt    string `json:"paid_at"` // ISO date, defaults to today
}

// CreatePayment records a payment
func (pc *PaymentController) CreatePayment(c *fiber.Ctx) error {
	var req CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.StudentID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Student ID is required",
		})
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Amount must be positive",
		})
	}
	if !utils.IsValidPaymentMethod(req.Method) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment method",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	if req.PassID != nil {
		var pass models.Pass
		if err := database.DB.Where("id = ? AND student_id = ?", *req.PassID, req.StudentID).
			First(&pass).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Pass not found for this student",
			})
		}
	}

	paidAt := time.Now()
	if req.PaidAt != "" {
		parsed, err := utils.ParseISODate(req.PaidAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid paid_at, expected YYYY-MM-DD",
			})
		}
		paidAt = parsed
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	payment := models.Payment{
		StudentID:  req.StudentID,
		PassID:     req.PassID,
		Amount:     req.Amount,
		Method:     req.Method,
		PaidAt:     paidAt,
		RecordedBy: user.ID,
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record payment",
		})
	}

	pc.billing.InvalidateStatusCache(student.StudioID)
	middleware.LogActivity(c, "CREATE", "payments", payment.ID, fiber.Map{
		"student_id": payment.StudentID,
		"amount":     payment.Amount,
		"method":     payment.Method,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment recorded successfully",
		"payment": payment,
	})
}

// GetPayments lists payments with optional student and month filters
func (pc *PaymentController) GetPayments(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Payment{}).Preload("Student").Preload("Pass")

	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if year := c.Query("year"); year != "" {
		if month := c.Query("month"); month != "" {
			y, _ := strconv.Atoi(year)
			m, _ := strconv.Atoi(month)
			if m >= 1 && m <= 12 {
				start := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.Local)
				query = query.Where("paid_at >= ? AND paid_at < ?", start, start.AddDate(0, 1, 0))
			}
		}
	}

	var total int64
	query.Count(&total)

	var payments []models.Payment
	if err := query.Order("paid_at DESC").
		Offset(offset).Limit(limit).
		Find(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payments",
		})
	}

	return c.JSON(fiber.Map{
		"payments": payments,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetStudentPayments lists all payments of one student
func (pc *PaymentController) GetStudentPayments(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("student_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var payments []models.Payment
	if err := database.DB.Preload("Pass").
		Where("student_id = ?", uint(studentID)).
		Order("paid_at DESC").
		Find(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payments",
		})
	}

	return c.JSON(fiber.Map{
		"payments": payments,
		"total":    len(payments),
	})
}
