package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"aquawatch-be/chat"
	"aquawatch-be/models"
)

// ChatController exposes the assistant sessions and quick actions.
type ChatController struct {
	manager *chat.Manager
	issues  *mongo.Collection
}

func NewChatController(manager *chat.Manager, db *mongo.Database) *ChatController {
	return &ChatController{
		manager: manager,
		issues:  db.Collection("water_issues"),
	}
}

// OpenSession creates a new conversation
func (cc *ChatController) OpenSession(c *gin.Context) {
	session := cc.manager.Open()
	c.JSON(http.StatusCreated, session)
}

// GetSession returns the transcript and state
func (cc *ChatController) GetSession(c *gin.Context) {
	session, err := cc.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// SendMessage appends a user message and drives the model call
func (cc *ChatController) SendMessage(c *gin.Context) {
	var input struct {
		Message string `json:"message" binding:"required,max=2000"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	session, err := cc.manager.Send(ctx, c.Param("id"), input.Message)
	if err != nil {
		switch err {
		case chat.ErrSessionNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat session not found"})
		case chat.ErrSessionBusy:
			c.JSON(http.StatusConflict, gin.H{"error": "A message is already being sent"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		}
		return
	}

	c.JSON(http.StatusOK, session)
}

// RetrySession clears the error state and re-initializes
func (cc *ChatController) RetrySession(c *gin.Context) {
	session, err := cc.manager.Retry(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetQuickActions returns the shortcut prompts, personalized from the
// caller's recent reports when authenticated.
func (cc *ChatController) GetQuickActions(c *gin.Context) {
	var recentTypes []string

	if userID := currentUserID(c); userID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(3).
			SetProjection(bson.M{"issueType": 1})

		cursor, err := cc.issues.Find(ctx, bson.M{"userId": userID}, findOptions)
		if err == nil {
			var issues []models.WaterIssue
			if err := cursor.All(ctx, &issues); err == nil {
				for _, issue := range issues {
					recentTypes = append(recentTypes, string(issue.IssueType))
				}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"quickActions": chat.PersonalizeQuickActions(recentTypes)})
}
