package routes

import (
	"github.com/gin-gonic/gin"

	"aquawatch-be/controllers"
	"aquawatch-be/middlewares"
)

// NotificationRoutes sets up the emergency notification routes
func NotificationRoutes(r *gin.Engine, notifications *controllers.NotificationController) {
	group := r.Group("/api/notifications")
	{
		group.GET("", notifications.ListNotifications)
		group.POST("", middlewares.AuthMiddleware(), middlewares.AdminMiddleware(), notifications.CreateNotification)
		group.DELETE("/:id", middlewares.AuthMiddleware(), middlewares.AdminMiddleware(), notifications.DeleteNotification)
	}
}
