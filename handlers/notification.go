package handlers

import (
	"errors"
	"net/http"
	"time"

	notificationRepo "vecino/database/repository/notification"
	"vecino/middleware"
	"vecino/models"
	"vecino/services/notification"
	"vecino/utils"

	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the delivery engine over HTTP.
type NotificationHandler struct {
	Service notification.NotificationService
}

func NewNotificationHandler(service notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// createRequest accepts a single recipient or a bulk recipient list.
type createRequest struct {
	notification.CreateInput
	UserIDs []string `json:"userIds,omitempty"`
}

// CreateHandler creates one notification, or one per recipient when userIds
// is given.
func (h *NotificationHandler) CreateHandler(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if len(req.UserIDs) > 0 {
		ns, err := h.Service.CreateBulk(c.Request.Context(), req.UserIDs, req.CreateInput)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"notifications": ns})
		return
	}

	n, err := h.Service.Create(c.Request.Context(), req.CreateInput)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// QueryHandler lists the caller's notifications newest-first, capped at 100.
func (h *NotificationHandler) QueryHandler(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
		return
	}

	filter := notificationRepo.QueryFilter{
		UserID:     callerID,
		Type:       models.NotificationType(c.Query("type")),
		Status:     models.NotificationStatus(c.Query("status")),
		Priority:   models.Priority(c.Query("priority")),
		UnreadOnly: c.Query("unreadOnly") == "true",
	}
	if v := c.Query("startDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := c.Query("endDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndDate = &t
		}
	}

	ns, err := h.Service.Query(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": ns})
}

// MarkReadHandler marks one owned notification read; idempotent.
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
		return
	}

	if err := h.Service.MarkRead(c.Request.Context(), callerID, c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllReadHandler marks every unread notification of the caller read.
func (h *NotificationHandler) MarkAllReadHandler(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
		return
	}

	count, err := h.Service.MarkAllRead(c.Request.Context(), callerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": count})
}

// DeleteHandler removes one owned notification.
func (h *NotificationHandler) DeleteHandler(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
		return
	}

	if err := h.Service.Delete(c.Request.Context(), callerID, c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// StatsHandler returns delivery statistics for the caller over an optional
// date range.
func (h *NotificationHandler) StatsHandler(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
		return
	}

	var start, end *time.Time
	if v := c.Query("startDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			start = &t
		}
	}
	if v := c.Query("endDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			end = &t
		}
	}

	stats, err := h.Service.GetStats(c.Request.Context(), callerID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// deliveryConfirmation is the provider webhook payload for async delivery
// confirmations.
type deliveryConfirmation struct {
	NotificationID    string         `json:"notificationId" binding:"required"`
	Channel           models.Channel `json:"channel" binding:"required"`
	ProviderMessageID string         `json:"providerMessageId"`
}

// ConfirmDeliveredHandler records an async provider delivery confirmation.
func (h *NotificationHandler) ConfirmDeliveredHandler(c *gin.Context) {
	var req deliveryConfirmation
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := h.Service.ConfirmDelivered(c.Request.Context(), req.NotificationID, req.Channel, req.ProviderMessageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Delivery confirmed"})
}

func (h *NotificationHandler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, notification.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, notification.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, notification.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
