package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aquawatch-be/geo"
	"aquawatch-be/weather"
)

// WeatherController serves standalone current-conditions lookups.
type WeatherController struct {
	client *weather.Client
}

func NewWeatherController(client *weather.Client) *WeatherController {
	return &WeatherController{client: client}
}

// GetCurrentWeather looks up conditions for a validated coordinate pair
func (wc *WeatherController) GetCurrentWeather(c *gin.Context) {
	var query struct {
		Lat float64 `form:"lat" binding:"required"`
		Lng float64 `form:"lng" binding:"required"`
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !geo.Validate(query.Lat, query.Lng) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		return
	}

	conditions, err := wc.client.Current(c.Request.Context(), query.Lat, query.Lng)
	if err != nil {
		if err == weather.ErrNotConfigured {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Weather lookups are not configured"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch weather data"})
		return
	}

	c.JSON(http.StatusOK, conditions)
}
