package handlers

import (
	"net/http"

	"vecino/middleware"
	"vecino/services/user"
	"vecino/utils"

	"github.com/gin-gonic/gin"
)

// DeviceHandler manages the resident's push device token.
type DeviceHandler struct {
	UserService user.UserService
}

func NewDeviceHandler(userService user.UserService) *DeviceHandler {
	return &DeviceHandler{UserService: userService}
}

// UpdateFCMTokenHandler stores the caller's current push device token.
func (h *DeviceHandler) UpdateFCMTokenHandler(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
		return
	}

	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := h.UserService.RegisterFCMToken(callerID, req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device token updated"})
}
