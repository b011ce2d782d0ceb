package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rickyarm/kit-gmail/internal/api/handlers"
	"github.com/rickyarm/kit-gmail/internal/api/middleware"
	"github.com/rickyarm/kit-gmail/internal/config"
	"github.com/rickyarm/kit-gmail/internal/contacts"
	"github.com/rickyarm/kit-gmail/internal/services"
	"gorm.io/gorm"
)

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, *middleware.APIKeyManager, error) {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitOrigins(cfg.CORSOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	keyManager, err := middleware.NewAPIKeyManager(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}

	logService := services.NewLogServiceWithLevel(db, cfg.LogLevel)

	contactManager := contacts.NewManager(db)
	if err := contactManager.LoadContacts(); err != nil {
		return nil, nil, err
	}

	contactsHandler := handlers.NewContactsHandler(contactManager, logService)
	logsHandler := handlers.NewLogsHandler(logService)

	// Health check endpoint (no auth required)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.Use(middleware.APIKeyMiddleware(keyManager))

		contactGroup := api.Group("/contacts")
		{
			contactGroup.GET("/stats", contactsHandler.GetStats)
			contactGroup.GET("/frequent", contactsHandler.ListFrequent)
			contactGroup.GET("/spam", contactsHandler.ListSpam)
			contactGroup.GET("/important", contactsHandler.ListImportant)
			contactGroup.GET("/search", contactsHandler.Search)
			contactGroup.GET("/suggestions", contactsHandler.GetSuggestions)
		}

		api.GET("/logs", logsHandler.Recent)
	}

	return router, keyManager, nil
}

// splitOrigins parses the comma separated CORS origin list
func splitOrigins(origins string) []string {
	if origins == "" || origins == "*" {
		return []string{"*"}
	}
	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
