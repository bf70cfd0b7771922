package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"aquawatch-be/chat"
	"aquawatch-be/common"
	"aquawatch-be/config"
	"aquawatch-be/controllers"
	"aquawatch-be/geo"
	"aquawatch-be/mapstate"
	"aquawatch-be/models"
	"aquawatch-be/realtime"
	"aquawatch-be/routes"
	"aquawatch-be/weather"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	env, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := common.GetLogger()

	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}
	logger.Info("MongoDB connection established")

	if err := models.EnsureUpvoteIndex(db.Collection("issue_upvotes")); err != nil {
		log.Fatalf("Failed to create upvote index: %v", err)
	}

	config.ConnectRedis()
	hub := realtime.NewHub(config.RedisClient)

	// External collaborators are constructed once here and handed to every
	// consumer; nothing reaches for them ambiently.
	var generator chat.Generator
	if env.GeminiAPIKey != "" {
		generator = chat.NewGemini(env.GeminiAPIKey)
	}
	chatManager := chat.NewManager(generator)
	weatherClient := weather.NewClient(env.WeatherAPIKey)
	locator := geo.NewLocator()
	views := mapstate.NewStore()

	authController := controllers.NewAuthController(db)
	if err := authController.SeedAdmin(env); err != nil {
		logger.Error("failed to seed admin account", zap.Error(err))
	}

	issueController := controllers.NewIssueController(db, hub)
	notificationController := controllers.NewNotificationController(db, hub)
	mapController := controllers.NewMapController(db, locator, weatherClient, views)
	chatController := controllers.NewChatController(chatManager, db)
	weatherController := controllers.NewWeatherController(weatherClient)
	eventController := controllers.NewEventController(hub)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Session-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.AuthRoutes(r, authController)
	routes.IssueRoutes(r, issueController)
	routes.MapRoutes(r, mapController, weatherController)
	routes.NotificationRoutes(r, notificationController)
	routes.ChatRoutes(r, chatController)
	routes.EventRoutes(r, eventController)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	logger.Info("starting server", zap.String("port", env.Port))
	if err := r.Run(":" + env.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
