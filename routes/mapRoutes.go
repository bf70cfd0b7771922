package routes

import (
	"github.com/gin-gonic/gin"

	"aquawatch-be/controllers"
	"aquawatch-be/middlewares"
)

// MapRoutes sets up the map data, view state and weather routes
func MapRoutes(r *gin.Engine, maps *controllers.MapController, weather *controllers.WeatherController) {
	group := r.Group("/api/map")
	{
		group.GET("/data", middlewares.OptionalAuthMiddleware(), maps.GetMapData)
		group.GET("/state", middlewares.OptionalAuthMiddleware(), maps.GetMapState)
		group.PATCH("/state", middlewares.OptionalAuthMiddleware(), maps.UpdateMapState)
	}

	r.GET("/api/weather", weather.GetCurrentWeather)
}
