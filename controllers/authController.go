package controllers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"aquawatch-be/common"
	"aquawatch-be/config"
	"aquawatch-be/models"
	authUtils "aquawatch-be/utils"
)

// AuthController serves registration, login, session introspection and
// logout over JWT cookies.
type AuthController struct {
	users *mongo.Collection
}

func NewAuthController(db *mongo.Database) *AuthController {
	return &AuthController{users: db.Collection("users")}
}

// SeedAdmin ensures the configured admin account exists. Admin access comes
// from this seeded account and its role claim; there is no credential
// special-casing anywhere in the request path.
func (ac *AuthController) SeedAdmin(env *config.Env) error {
	if env.AdminEmail == "" || env.AdminPassword == "" {
		return nil
	}

	logger := common.GetLoggerWith("auth")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := ac.users.CountDocuments(ctx, bson.M{"email": env.AdminEmail})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := models.User{
		Name:      "Administrator",
		Email:     env.AdminEmail,
		Password:  env.AdminPassword,
		Role:      models.RoleAdmin,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := admin.HashPassword(); err != nil {
		return err
	}

	if _, err := ac.users.InsertOne(ctx, admin); err != nil {
		return err
	}

	logger.Info("seeded admin account", zap.String("email", env.AdminEmail))
	return nil
}

// RegisterUser handles user registration
func (ac *AuthController) RegisterUser(c *gin.Context) {
	logger := common.GetLoggerWith("auth")

	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := ac.users.CountDocuments(ctx, bson.M{"email": input.Email})
	if err != nil {
		logger.Error("error checking existing user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
		return
	}

	user := models.User{
		Name:      input.Name,
		Email:     input.Email,
		Password:  input.Password,
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := user.HashPassword(); err != nil {
		logger.Error("error hashing password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	result, err := ac.users.InsertOne(ctx, user)
	if err != nil {
		logger.Error("error inserting user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        result.InsertedID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	})
}

// LoginUser handles user login
func (ac *AuthController) LoginUser(c *gin.Context) {
	logger := common.GetLoggerWith("auth")

	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := ac.users.FindOne(ctx, bson.M{"email": input.Email}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := authUtils.GenerateAndSetToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		logger.Error("error generating token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	environment := os.Getenv("GO_ENV")
	domain := os.Getenv("DOMAIN")

	// For production, don't set domain to allow cross-origin cookies
	if environment == "production" {
		domain = ""
	}

	cookie := &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		MaxAge:   3600, // 1 hour
		Path:     "/",
		Domain:   domain,
		Secure:   environment == "production",
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	}
	http.SetCookie(c.Writer, cookie)

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"isAdmin":   user.IsAdmin(),
		"token":     token,
		"createdAt": user.CreatedAt,
	})
}

// GetMe retrieves the authenticated user's information
func (ac *AuthController) GetMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	objectID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = ac.users.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"isAdmin":   user.IsAdmin(),
		"createdAt": user.CreatedAt,
	})
}

// LogoutUser handles user logout by clearing the auth_token cookie
func (ac *AuthController) LogoutUser(c *gin.Context) {
	environment := os.Getenv("GO_ENV")
	domain := os.Getenv("DOMAIN")

	c.SetCookie("auth_token", "", -1, "/", domain, environment == "production", true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}
