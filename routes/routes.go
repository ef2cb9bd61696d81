package routes

import (
	"net/http"
	"time"

	"vecino/handlers"
	"vecino/middleware"
	"vecino/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every endpoint of the delivery engine.
func RegisterRoutes(
	r *gin.Engine,
	notif *handlers.NotificationHandler,
	prefs *handlers.PreferencesHandler,
	device *handlers.DeviceHandler,
) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})

	// Provider delivery-confirmation webhook; authenticated with a service
	// token upstream, not a resident JWT.
	r.POST("/api/webhooks/delivery", notif.ConfirmDeliveredHandler)

	api := r.Group("/api/notifications")
	api.Use(middleware.JWTAuthMiddleware())
	api.Use(middleware.RateLimitMiddleware())
	{
		api.POST("", notif.CreateHandler)
		api.GET("", notif.QueryHandler)
		api.GET("/stats", notif.StatsHandler)
		api.PUT("/read-all", notif.MarkAllReadHandler)
		api.PUT("/:id/read", notif.MarkReadHandler)
		api.DELETE("/:id", notif.DeleteHandler)

		api.GET("/preferences", prefs.GetHandler)
		api.PATCH("/preferences", prefs.PatchHandler)
		api.POST("/preferences/reset", prefs.ResetHandler)
		api.PUT("/preferences/types/:type", prefs.ToggleTypeHandler)
		api.PUT("/preferences/quiet-hours", prefs.SetQuietHoursHandler)
		api.DELETE("/preferences/quiet-hours", prefs.ClearQuietHoursHandler)

		api.PUT("/device-token", device.UpdateFCMTokenHandler)
	}
}
