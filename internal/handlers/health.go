package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/services"
)

// HealthHandler provides the health check endpoint.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Archive queue mode
	queue := services.GetArchiveQueue()
	queueMode := "sync"
	if queue != nil && queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	// Live project count
	var projectCount int64
	models.GetDB().Model(&models.Project{}).
		Where("is_archived = ?", false).
		Count(&projectCount)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "taskhive",
		"components": gin.H{
			"database":      dbStatus,
			"queue_mode":    queueMode,
			"live_projects": projectCount,
		},
	})
}
