package routes

import (
	"github.com/gin-gonic/gin"

	"aquawatch-be/controllers"
	"aquawatch-be/middlewares"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, auth *controllers.AuthController) {
	group := r.Group("/api/auth")
	{
		group.POST("/register", auth.RegisterUser)
		group.POST("/login", auth.LoginUser)
		group.GET("/me", middlewares.AuthMiddleware(), auth.GetMe)
		group.POST("/logout", auth.LogoutUser)
	}
}
