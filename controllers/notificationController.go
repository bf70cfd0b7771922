package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"aquawatch-be/models"
	"aquawatch-be/realtime"
)

const notificationsTable = "emergency_notifications"

// NotificationController serves the emergency banner messages: admin
// create, public list newest-first, admin delete. No update exists.
type NotificationController struct {
	notifications *mongo.Collection
	hub           *realtime.Hub
}

func NewNotificationController(db *mongo.Database, hub *realtime.Hub) *NotificationController {
	return &NotificationController{
		notifications: db.Collection(notificationsTable),
		hub:           hub,
	}
}

// CreateNotification handles admin creation of an emergency notification
func (nc *NotificationController) CreateNotification(c *gin.Context) {
	var input struct {
		Message  string `json:"message" binding:"required,max=500"`
		Severity string `json:"severity" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidNotificationSeverity(input.Severity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid severity"})
		return
	}

	notification := models.EmergencyNotification{
		ID:        primitive.NewObjectID(),
		Message:   input.Message,
		Severity:  models.NotificationSeverity(input.Severity),
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := nc.notifications.InsertOne(ctx, notification)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
		return
	}

	nc.hub.Publish(ctx, notificationsTable, realtime.ActionInsert, notification.ID.Hex())

	c.JSON(http.StatusCreated, notification)
}

// ListNotifications returns all notifications newest-first
func (nc *NotificationController) ListNotifications(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := nc.notifications.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}
	defer cursor.Close(ctx)

	notifications := make([]models.EmergencyNotification, 0)
	if err := cursor.All(ctx, &notifications); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode notifications"})
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// DeleteNotification handles admin deletion of a notification
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := nc.notifications.DeleteOne(ctx, bson.M{"_id": notificationID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	nc.hub.Publish(ctx, notificationsTable, realtime.ActionDelete, notificationID.Hex())

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}
