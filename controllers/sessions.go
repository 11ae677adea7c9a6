package controllers

import (
	"errors"
	"strconv"
	"time"

	"dancestudio_go/database"
	"dancestudio_go/middleware"
	"dancestudio_go/models"
	"dancestudio_go/services"
	"dancestudio_go/utils"

	"github.com/gofiber/fiber/v2"
)

// SessionController materializes class sessions and serves the attendance
// screen. All attendance reads and writes go through the optimistic ledger
// so the response after a failed write already shows the store's truth.
type SessionController struct {
	sessions   *services.SessionService
	attendance *services.AttendanceService
	ledger     *services.Ledger
}

func NewSessionController() *SessionController {
	attendance := services.NewAttendanceService()
	return &SessionController{
		sessions:   services.NewSessionService(),
		attendance: attendance,
		ledger:     services.NewLedger(attendance.LoadAttendance),
	}
}

type EnsureSessionRequest struct {
	GroupID uint   `json:"group_id"`
	Date    string `json:"date"` // ISO yyyy-mm-dd
}

type ToggleAttendanceRequest struct {
	StudentID      uint   `json:"student_id"`
	Status         string `json:"status"`
	Note           string `json:"note"`
	NoteSave       bool   `json:"note_save"`
	IsSubstitute   bool   `json:"is_substitute"`
	SubstituteName string `json:"substitute_name"`
}

// EnsureSession returns the canonical session id for a (group, date) pair,
// creating it when absent. An incomplete selection yields session_id 0 and
// no error so the client can keep rendering while the user picks a date.
func (sc *SessionController) EnsureSession(c *fiber.Ctx) error {
	var req EnsureSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.GroupID != 0 {
		var group models.Group
		if err := database.DB.First(&group, req.GroupID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Group not found",
			})
		}
	}

	sessionID, err := sc.sessions.EnsureSession(req.GroupID, req.Date)
	if err != nil {
		var creationErr *services.SessionCreationError
		if errors.As(err, &creationErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":     "Failed to create session",
				"retryable": true,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to ensure session",
		})
	}

	if sessionID == 0 {
		return c.JSON(fiber.Map{
			"session_id": 0,
			"message":    "Group and date are both required before a session exists",
		})
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID,
	})
}

// GetSession returns one session with its group
func (sc *SessionController) GetSession(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var session models.ClassSession
	if err := database.DB.Preload("Group").First(&session, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	return c.JSON(fiber.Map{
		"session":   session,
		"day_label": utils.RelativeDayLabel(session.SessionDate, time.Now()),
	})
}

// GetAttendance returns the attendance view of a session. session id 0 is
// allowed and yields an empty list - the screen before a date is picked.
func (sc *SessionController) GetAttendance(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	if id == 0 {
		return c.JSON(fiber.Map{
			"records": []utils.AttendanceEntryDTO{},
		})
	}

	if err := sc.ledger.Load(uint(id)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load attendance",
		})
	}

	return c.JSON(fiber.Map{
		"records": utils.SerializeAttendanceRecords(sc.ledger.Records(uint(id))),
	})
}

// ToggleAttendance applies one attendance mutation through the ledger.
// Pressing the status a student already has flips present and absent; saving
// a non-empty note marks excused. Responses always carry the full session
// view so the client can reconcile after a rollback.
func (sc *SessionController) ToggleAttendance(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}
	sessionID := uint(id)

	var req ToggleAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if !req.NoteSave && !utils.IsValidAttendanceStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid attendance status",
		})
	}
	if !req.IsSubstitute && req.StudentID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Student ID is required",
		})
	}
	if req.IsSubstitute && req.SubstituteName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Substitute name is required",
		})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	in := services.ToggleInput{
		SessionID:      sessionID,
		StudentID:      req.StudentID,
		Target:         req.Status,
		Note:           req.Note,
		NoteSave:       req.NoteSave,
		IsSubstitute:   req.IsSubstitute,
		SubstituteName: req.SubstituteName,
		MarkedBy:       user.ID,
	}

	persist := func() (*models.AttendanceRecord, error) {
		return sc.attendance.Toggle(in)
	}

	var phase string
	var toggleErr error
	if req.IsSubstitute {
		// Guests resolve to a student row inside the store write, so there
		// is no key to hold an optimistic record under. Write through and
		// reload the session view instead.
		phase = services.WriteConfirmed
		if _, toggleErr = persist(); toggleErr != nil {
			phase = services.WriteRolledBack
		}
		if err := sc.ledger.Load(sessionID); err != nil && toggleErr == nil {
			toggleErr = err
			phase = services.WriteRolledBack
		}
	} else {
		optimistic := sc.optimisticRecord(sessionID, req, user.ID)
		phase, toggleErr = sc.ledger.Apply(optimistic, persist)
	}

	status := fiber.StatusOK
	response := fiber.Map{
		"phase":   phase,
		"records": utils.SerializeAttendanceRecords(sc.ledger.Records(sessionID)),
	}
	if toggleErr != nil {
		status = fiber.StatusInternalServerError
		response["error"] = "Failed to save attendance"
	} else {
		middleware.LogActivity(c, "UPDATE", "attendance", sessionID, fiber.Map{
			"student_id": req.StudentID,
			"status":     req.Status,
			"note_save":  req.NoteSave,
		})
	}
	return c.Status(status).JSON(response)
}

// optimisticRecord predicts the record the store write will produce, based
// on the ledger's current view of the session.
func (sc *SessionController) optimisticRecord(sessionID uint, req ToggleAttendanceRequest, markedBy uint) models.AttendanceRecord {
	current := models.AttendanceNone
	note := ""
	for _, rec := range sc.ledger.Records(sessionID) {
		if rec.StudentID == req.StudentID {
			if rec.Status != "" {
				current = rec.Status
			}
			note = rec.Note
			break
		}
	}

	var status string
	if req.NoteSave {
		note = req.Note
		status = services.ResolveNoteStatus(current, req.Note)
	} else {
		status = services.ResolveToggle(current, req.Status)
	}

	now := time.Now()
	return models.AttendanceRecord{
		SessionID: sessionID,
		StudentID: req.StudentID,
		Status:    status,
		Note:      note,
		MarkedBy:  markedBy,
		MarkedAt:  &now,
	}
}

// GetGroupSessions lists materialized sessions of a group, newest first
func (sc *SessionController) GetGroupSessions(c *fiber.Ctx) error {
	groupID, err := strconv.ParseUint(c.Params("group_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "30"))
	var sessions []models.ClassSession
	if err := database.DB.Where("group_id = ?", uint(groupID)).
		Order("session_date DESC").Limit(limit).
		Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch sessions",
		})
	}

	return c.JSON(fiber.Map{
		"sessions": sessions,
		"total":    len(sessions),
	})
}
