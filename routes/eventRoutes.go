package routes

import (
	"github.com/gin-gonic/gin"

	"aquawatch-be/controllers"
)

// EventRoutes sets up the SSE change stream
func EventRoutes(r *gin.Engine, events *controllers.EventController) {
	r.GET("/api/events", events.StreamEvents)
}
