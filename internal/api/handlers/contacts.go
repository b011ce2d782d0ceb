package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rickyarm/kit-gmail/internal/contacts"
	"github.com/rickyarm/kit-gmail/internal/services"
)

// ContactsHandler serves read-only queries over the contact population
type ContactsHandler struct {
	manager    *contacts.Manager
	logService *services.LogService
}

// NewContactsHandler creates a new ContactsHandler instance
func NewContactsHandler(manager *contacts.Manager, logService *services.LogService) *ContactsHandler {
	return &ContactsHandler{
		manager:    manager,
		logService: logService,
	}
}

// GetStats returns population-wide contact statistics
func (h *ContactsHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.GetContactStats())
}

// ListFrequent returns frequent contacts, most active first
func (h *ContactsHandler) ListFrequent(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	c.JSON(http.StatusOK, gin.H{"contacts": h.manager.FrequentContacts(limit)})
}

// ListSpam returns contacts identified as spam
func (h *ContactsHandler) ListSpam(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"contacts": h.manager.SpamContacts()})
}

// ListImportant returns contacts marked as important
func (h *ContactsHandler) ListImportant(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"contacts": h.manager.ImportantContacts()})
}

// Search matches a query against contact addresses and names
func (h *ContactsHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": h.manager.FindContacts(query)})
}

// GetSuggestions returns contact-management action candidates
func (h *ContactsHandler) GetSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.GetSuggestions())
}
