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

// GroupController manages recurring weekly class slots and their rosters.
// Groups are never hard-deleted; deactivation cancels future sessions and
// keeps past ones for attendance history.
type GroupController struct {
	sessions *services.SessionService
}

func NewGroupController() *GroupController {
	return &GroupController{sessions: services.NewSessionService()}
}

// GetGroups returns groups of the caller's studio
func (gc *GroupController) GetGroups(c *fiber.Ctx) error {
	studioID, err := resolveStudioID(c)
	if err != nil {
		return err
	}

	query := database.DB.Where("studio_id = ?", studioID)
	if weekday := c.Query("weekday"); weekday != "" {
		query = query.Where("weekday = ?", weekday)
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	var groups []models.Group
	if err := query.Preload("Instructor").
		Order("weekday ASC, start_time ASC").
		Find(&groups).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch groups",
		})
	}

	return c.JSON(fiber.Map{
		"groups": groups,
		"total":  len(groups),
	})
}

// GetGroup returns one group with its roster
func (gc *GroupController) GetGroup(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	var group models.Group
	if err := database.DB.Preload("Instructor").
		Preload("Members", "status = ?", "active").
		Preload("Members.Student").
		First(&group, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	return c.JSON(fiber.Map{
		"group": group,
	})
}

// CreateGroup creates a new weekly class slot
func (gc *GroupController) CreateGroup(c *fiber.Ctx) error {
	var group models.Group
	if err := c.BodyParser(&group); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return err
	}
	if group.StudioID == 0 {
		group.StudioID = claims.StudioID
	}
	if group.StudioID != claims.StudioID && claims.Role != "owner" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Cannot create groups for another studio",
		})
	}

	if group.Name == "" || group.StartTime == "" || group.EndTime == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, start time and end time are required",
		})
	}
	if group.Weekday < 0 || group.Weekday > 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Weekday must be between 0 (Sunday) and 6 (Saturday)",
		})
	}

	group.Active = true
	if err := database.DB.Create(&group).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create group",
		})
	}

	middleware.LogActivity(c, "CREATE", "groups", group.ID, group)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Group created successfully",
		"group":   group,
	})
}

// UpdateGroup updates a group's schedule or details
func (gc *GroupController) UpdateGroup(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	var group models.Group
	if err := database.DB.First(&group, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	var updateData models.Group
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updateData.StudioID = group.StudioID

	if err := database.DB.Model(&group).Updates(updateData).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update group",
		})
	}

	middleware.LogActivity(c, "UPDATE", "groups", group.ID, updateData)

	return c.JSON(fiber.Map{
		"message": "Group updated successfully",
		"group":   group,
	})
}

// DeactivateGroup disables a group and cancels its future sessions. Past
// sessions stay untouched so attendance history survives.
func (gc *GroupController) DeactivateGroup(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	var group models.Group
	if err := database.DB.First(&group, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	if err := database.DB.Model(&group).Update("active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to deactivate group",
		})
	}

	cancelled, err := gc.sessions.CancelFutureSessions(group.ID, utils.FormatISODate(time.Now()))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Group deactivated but future sessions could not be cancelled",
		})
	}

	middleware.LogActivity(c, "DEACTIVATE", "groups", group.ID, fiber.Map{
		"cancelled_sessions": cancelled,
	})

	return c.JSON(fiber.Map{
		"message":            "Group deactivated successfully",
		"cancelled_sessions": cancelled,
	})
}

type AddMemberRequest struct {
	StudentID uint `json:"student_id"`
}

// AddMember enrolls a student into a group
func (gc *GroupController) AddMember(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	var req AddMemberRequest
	if err := c.BodyParser(&req); err != nil || req.StudentID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Student ID is required",
		})
	}

	var group models.Group
	if err := database.DB.First(&group, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	var student models.Student
	if err := database.DB.Where("id = ? AND studio_id = ?", req.StudentID, group.StudioID).
		First(&student).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Student not found in this studio",
		})
	}

	var existing models.GroupMember
	if err := database.DB.Where("group_id = ? AND student_id = ?", group.ID, student.ID).
		First(&existing).Error; err == nil {
		if existing.Status == "active" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Student is already a member of this group",
			})
		}
		if err := database.DB.Model(&existing).Update("status", "active").Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to re-activate membership",
			})
		}
		return c.JSON(fiber.Map{
			"message": "Membership re-activated",
			"member":  existing,
		})
	}

	now := time.Now()
	member := models.GroupMember{
		GroupID:   group.ID,
		StudentID: student.ID,
		Status:    "active",
		JoinedAt:  &now,
	}
	if err := database.DB.Create(&member).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add member",
		})
	}

	middleware.LogActivity(c, "CREATE", "group_members", member.ID, member)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Member added successfully",
		"member":  member,
	})
}

// RemoveMember marks a membership inactive; attendance history stays
func (gc *GroupController) RemoveMember(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}
	studentID, err := strconv.ParseUint(c.Params("student_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var member models.GroupMember
	if err := database.DB.Where("group_id = ? AND student_id = ?", uint(id), uint(studentID)).
		First(&member).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Membership not found",
		})
	}

	if err := database.DB.Model(&member).Update("status", "inactive").Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove member",
		})
	}

	middleware.LogActivity(c, "DEACTIVATE", "group_members", member.ID, nil)

	return c.JSON(fiber.Map{
		"message": "Member removed successfully",
	})
}
