package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rickyarm/kit-gmail/internal/services"
)

// LogsHandler serves recent run logs
type LogsHandler struct {
	logService *services.LogService
}

// NewLogsHandler creates a new LogsHandler instance
func NewLogsHandler(logService *services.LogService) *LogsHandler {
	return &LogsHandler{logService: logService}
}

// Recent returns the most recent log entries, newest first
func (h *LogsHandler) Recent(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.logService.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": entries})
}
