package routes

import (
	"github.com/gin-gonic/gin"

	"aquawatch-be/controllers"
	"aquawatch-be/middlewares"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine, issues *controllers.IssueController) {
	group := r.Group("/api/issues")
	{
		group.POST("", middlewares.OptionalAuthMiddleware(), middlewares.ReportRateLimiter(10), issues.CreateIssue)
		group.GET("", middlewares.OptionalAuthMiddleware(), issues.GetAllIssues)
		group.GET("/mine", middlewares.AuthMiddleware(), issues.GetMyIssues)
		group.GET("/analytics", middlewares.AuthMiddleware(), middlewares.AdminMiddleware(), issues.GetIssueAnalytics)
		group.GET("/:id", middlewares.OptionalAuthMiddleware(), issues.GetIssue)
		group.PUT("/:id", middlewares.AuthMiddleware(), issues.UpdateIssue)
		group.DELETE("/:id", middlewares.AuthMiddleware(), issues.DeleteIssue)
		group.POST("/:id/upvote", middlewares.AuthMiddleware(), issues.ToggleUpvote)
		group.PATCH("/:id/status", middlewares.AuthMiddleware(), middlewares.AdminMiddleware(), issues.UpdateIssueStatus)
	}
}
