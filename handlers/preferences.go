package handlers

import (
	"net/http"

	"vecino/middleware"
	"vecino/models"
	"vecino/services/notification"
	"vecino/utils"

	"github.com/gin-gonic/gin"
)

// PreferencesHandler exposes notification preference management.
type PreferencesHandler struct {
	Service notification.NotificationService
}

func NewPreferencesHandler(service notification.NotificationService) *PreferencesHandler {
	return &PreferencesHandler{Service: service}
}

// GetHandler returns the caller's preferences, creating defaults lazily.
func (h *PreferencesHandler) GetHandler(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
		return
	}

	prefs, err := h.Service.GetPreferences(c.Request.Context(), callerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// PatchHandler merges a partial update; nested quietHours and
// typePreferences entries merge rather than replace.
func (h *PreferencesHandler) PatchHandler(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
		return
	}

	var patch models.PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	prefs, err := h.Service.UpdatePreferences(c.Request.Context(), callerID, patch)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// ResetHandler recreates the caller's preferences with defaults.
func (h *PreferencesHandler) ResetHandler(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
		return
	}

	prefs, err := h.Service.ResetPreferences(c.Request.Context(), callerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// ToggleTypeHandler flips one notification type on or off.
func (h *PreferencesHandler) ToggleTypeHandler(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	prefs, err := h.Service.ToggleType(c.Request.Context(), callerID, models.NotificationType(c.Param("type")), req.Enabled)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// SetQuietHoursHandler sets or moves the quiet-hours window.
func (h *PreferencesHandler) SetQuietHoursHandler(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
		return
	}

	var window models.QuietHours
	if err := c.ShouldBindJSON(&window); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	prefs, err := h.Service.SetQuietHours(c.Request.Context(), callerID, window)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// ClearQuietHoursHandler removes the quiet-hours window.
func (h *PreferencesHandler) ClearQuietHoursHandler(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
		return
	}

	prefs, err := h.Service.ClearQuietHours(c.Request.Context(), callerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}
