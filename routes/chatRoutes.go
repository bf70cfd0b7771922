package routes

import (
	"github.com/gin-gonic/gin"

	"aquawatch-be/controllers"
	"aquawatch-be/middlewares"
)

// ChatRoutes sets up the assistant routes
func ChatRoutes(r *gin.Engine, chat *controllers.ChatController) {
	group := r.Group("/api/chat")
	{
		group.POST("/sessions", chat.OpenSession)
		group.GET("/sessions/:id", chat.GetSession)
		group.POST("/sessions/:id/messages", chat.SendMessage)
		group.POST("/sessions/:id/retry", chat.RetrySession)
		group.GET("/quick-actions", middlewares.OptionalAuthMiddleware(), chat.GetQuickActions)
	}
}
