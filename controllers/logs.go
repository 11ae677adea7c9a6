package controllers

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"dancestudio_go/database"
	"dancestudio_go/models"
	"dancestudio_go/services"
	"dancestudio_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// LogController serves the activity log views. Recent entries may still sit
// in the Redis queue waiting for the hourly flush, so the recent view merges
// both sources.
type LogController struct {
	archives *services.LogArchiveService
}

func NewLogController() *LogController {
	return &LogController{archives: services.NewLogArchiveService()}
}

// GetLogs retrieves paginated activity logs with filters
func (lc *LogController) GetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.ActivityLog{}).Preload("User")

	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}
	if startDate := c.Query("start_date"); startDate != "" {
		if parsed, err := utils.ParseISODate(startDate); err == nil {
			query = query.Where("created_at >= ?", parsed)
		}
	}
	if endDate := c.Query("end_date"); endDate != "" {
		if parsed, err := utils.ParseISODate(endDate); err == nil {
			query = query.Where("created_at < ?", parsed.Add(24*time.Hour))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logrus.WithError(err).Error("Failed to count activity logs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve logs",
		})
	}

	var activityLogs []models.ActivityLog
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&activityLogs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve logs",
		})
	}

	return c.JSON(fiber.Map{
		"logs": activityLogs,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetRecentLogs returns the newest entries, merging the Redis queue with the
// database so nothing disappears between flushes.
func (lc *LogController) GetRecentLogs(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	logs := lc.readCachedLogs(limit)

	if len(logs) < limit {
		var dbLogs []models.ActivityLog
		if err := database.DB.Preload("User").
			Order("created_at DESC").
			Limit(limit - len(logs)).
			Find(&dbLogs).Error; err == nil {
			logs = append(logs, dbLogs...)
		}
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"total": len(logs),
	})
}

// readCachedLogs pulls not-yet-flushed entries off the Redis queue
func (lc *LogController) readCachedLogs(limit int) []models.ActivityLog {
	client := database.GetRedisClient()
	if client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	keys, err := client.ZRevRange(ctx, "logs:queue", 0, int64(limit-1)).Result()
	if err != nil || len(keys) == 0 {
		return nil
	}

	logs := make([]models.ActivityLog, 0, len(keys))
	for _, key := range keys {
		data, err := client.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var entry models.ActivityLog
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			continue
		}
		logs = append(logs, entry)
	}
	return logs
}

// GetLogStats returns aggregate counters for the admin dashboard
func (lc *LogController) GetLogStats(c *fiber.Ctx) error {
	now := time.Now()
	today := utils.DateOnly(now)

	var total, totalToday int64
	database.DB.Model(&models.ActivityLog{}).Count(&total)
	database.DB.Model(&models.ActivityLog{}).Where("created_at >= ?", today).Count(&totalToday)

	type breakdown struct {
		Key   string
		Count int64
	}
	actionBreakdown := map[string]int64{}
	var actions []breakdown
	database.DB.Model(&models.ActivityLog{}).
		Select("action AS `key`, COUNT(*) AS count").
		Group("action").
		Scan(&actions)
	for _, b := range actions {
		actionBreakdown[b.Key] = b.Count
	}

	resourceBreakdown := map[string]int64{}
	var resources []breakdown
	database.DB.Model(&models.ActivityLog{}).
		Select("resource AS `key`, COUNT(*) AS count").
		Group("resource").
		Scan(&resources)
	for _, b := range resources {
		resourceBreakdown[b.Key] = b.Count
	}

	return c.JSON(fiber.Map{
		"total":              total,
		"total_today":        totalToday,
		"action_breakdown":   actionBreakdown,
		"resource_breakdown": resourceBreakdown,
	})
}

// TriggerLogMaintenance flushes the Redis queue to the database and archives
// old rows to S3. Normally the scheduler does this; the endpoint exists for
// manual runs.
func (lc *LogController) TriggerLogMaintenance(c *fiber.Ctx) error {
	if err := lc.archives.FlushCachedLogsToDatabase(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to flush cached logs",
		})
	}

	daysOld, _ := strconv.Atoi(c.Query("days_old", "90"))
	if err := lc.archives.ArchiveOldLogs(daysOld); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Flush succeeded but archiving failed",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Log maintenance completed",
	})
}
