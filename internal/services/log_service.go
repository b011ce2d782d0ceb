package services

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/rickyarm/kit-gmail/internal/database/models"
	"gorm.io/gorm"
)

// LogService records structured run logs in the database
type LogService struct {
	db       *gorm.DB
	logLevel models.LogLevel
}

// NewLogService creates a new LogService instance
func NewLogService(db *gorm.DB) *LogService {
	return &LogService{
		db:       db,
		logLevel: models.LogLevelInfo,
	}
}

// NewLogServiceWithLevel creates a new LogService instance with specified log level
func NewLogServiceWithLevel(db *gorm.DB, level string) *LogService {
	return &LogService{
		db:       db,
		logLevel: parseLogLevel(level),
	}
}

// parseLogLevel converts a string to LogLevel
func parseLogLevel(level string) models.LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return models.LogLevelDebug
	case "INFO":
		return models.LogLevelInfo
	case "WARN", "WARNING":
		return models.LogLevelWarn
	case "ERROR":
		return models.LogLevelError
	default:
		return models.LogLevelInfo
	}
}

// shouldLog checks if a log entry should be recorded based on log level
func (s *LogService) shouldLog(level models.LogLevel) bool {
	levelPriority := map[models.LogLevel]int{
		models.LogLevelDebug: 0,
		models.LogLevelInfo:  1,
		models.LogLevelWarn:  2,
		models.LogLevelError: 3,
	}
	return levelPriority[level] >= levelPriority[s.logLevel]
}

// Log records one log entry; details are serialized to JSON
func (s *LogService) Log(level models.LogLevel, module models.LogModule, action, message string, details interface{}) {
	if !s.shouldLog(level) {
		return
	}

	detailsJSON := ""
	if details != nil {
		if data, err := json.Marshal(details); err == nil {
			detailsJSON = string(data)
		}
	}

	entry := models.Log{
		Level:   string(level),
		Module:  string(module),
		Action:  action,
		Message: message,
		Details: detailsJSON,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("Warning: failed to write log entry: %v", err)
	}
}

// Info records an info-level entry
func (s *LogService) Info(module models.LogModule, action, message string, details interface{}) {
	s.Log(models.LogLevelInfo, module, action, message, details)
}

// Error records an error-level entry
func (s *LogService) Error(module models.LogModule, action, message string, details interface{}) {
	s.Log(models.LogLevelError, module, action, message, details)
}

// Recent returns the most recent log entries, newest first
func (s *LogService) Recent(limit int) ([]models.Log, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.Log
	err := s.db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
