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
	"go.uber.org/zap"

	"aquawatch-be/common"
	"aquawatch-be/geo"
	"aquawatch-be/models"
	"aquawatch-be/realtime"
	"aquawatch-be/store"
)

const issuesTable = "water_issues"

// IssueController serves the water issue CRUD, upvote toggling, admin
// triage and analytics.
type IssueController struct {
	issues  *mongo.Collection
	upvotes *mongo.Collection
	hub     *realtime.Hub
}

func NewIssueController(db *mongo.Database, hub *realtime.Hub) *IssueController {
	return &IssueController{
		issues:  db.Collection("water_issues"),
		upvotes: db.Collection("issue_upvotes"),
		hub:     hub,
	}
}

// currentUserID returns the user id set by the auth middleware, or "".
func currentUserID(c *gin.Context) string {
	if userIDVal, exists := c.Get("user_id"); exists {
		if userID, ok := userIDVal.(string); ok {
			return userID
		}
	}
	return ""
}

// CreateIssue handles report submission. Unauthenticated reports are
// accepted under the anonymous sentinel id.
func (ic *IssueController) CreateIssue(c *gin.Context) {
	var input struct {
		Location    [2]float64 `json:"location" binding:"required"`
		IssueType   string     `json:"issueType" binding:"required"`
		Description string     `json:"description" binding:"required,max=1000"`
		Severity    string     `json:"severity" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidIssueType(input.IssueType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue type"})
		return
	}
	if !models.ValidSeverity(input.Severity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid severity"})
		return
	}
	if !geo.ValidatePair(input.Location) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		return
	}

	userID := currentUserID(c)
	if userID == "" {
		userID = models.AnonymousUserID
	}

	normalized := geo.Normalize(input.Location)
	issue := models.WaterIssue{
		ID: primitive.NewObjectID(),
		// Stored longitude-first to match the upstream point convention.
		Location:    []float64{normalized[1], normalized[0]},
		IssueType:   models.IssueType(input.IssueType),
		Description: input.Description,
		Severity:    models.IssueSeverity(input.Severity),
		Status:      models.StatusPending,
		UserID:      userID,
		UpvoteCount: 0,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := ic.issues.InsertOne(ctx, issue)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	ic.hub.Publish(ctx, issuesTable, realtime.ActionInsert, issue.ID.Hex())

	c.JSON(http.StatusCreated, store.Decorate([]models.WaterIssue{issue}, nil, normalized)[0])
}

// fetchUpvotedSet loads the requesting user's upvote relations. The flag is
// always derived here rather than trusted from any stored field. A failed
// lookup degrades to hasUpvoted=false for every row.
func (ic *IssueController) fetchUpvotedSet(ctx context.Context, userID string) map[string]bool {
	if userID == "" {
		return nil
	}

	logger := common.GetLoggerWith(common.LoggerNameStore)

	cursor, err := ic.upvotes.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		logger.Warn("upvote lookup failed", zap.String("user", userID), zap.Error(err))
		return nil
	}
	defer cursor.Close(ctx)

	var upvotes []models.Upvote
	if err := cursor.All(ctx, &upvotes); err != nil {
		logger.Warn("upvote decode failed", zap.String("user", userID), zap.Error(err))
		return nil
	}
	return store.UpvotedSet(upvotes)
}

// GetAllIssues returns every issue with resolved coordinates and the
// caller's upvote state merged in, urgent first then newest
func (ic *IssueController) GetAllIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	center := requestCenter(c)

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := ic.issues.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.WaterIssue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	upvoted := ic.fetchUpvotedSet(ctx, currentUserID(c))

	views := store.Decorate(issues, upvoted, center)
	store.SortForList(views)

	c.JSON(http.StatusOK, gin.H{"issues": views, "totalIssues": len(views)})
}

// requestCenter reads an optional lat/lng query pair, falling back to the
// default center on anything invalid.
func requestCenter(c *gin.Context) [2]float64 {
	var query struct {
		Lat *float64 `form:"lat"`
		Lng *float64 `form:"lng"`
	}
	if err := c.ShouldBindQuery(&query); err == nil && query.Lat != nil && query.Lng != nil {
		if geo.Validate(*query.Lat, *query.Lng) {
			return geo.Normalize([2]float64{*query.Lat, *query.Lng})
		}
	}
	return geo.DefaultCenter
}

// GetIssue retrieves a single issue by id
func (ic *IssueController) GetIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.WaterIssue
	err = ic.issues.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	upvoted := ic.fetchUpvotedSet(ctx, currentUserID(c))
	c.JSON(http.StatusOK, store.Decorate([]models.WaterIssue{issue}, upvoted, requestCenter(c))[0])
}

// GetMyIssues returns the authenticated user's reports
func (ic *IssueController) GetMyIssues(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := ic.issues.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.WaterIssue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	upvoted := ic.fetchUpvotedSet(ctx, userID)
	c.JSON(http.StatusOK, store.Decorate(issues, upvoted, requestCenter(c)))
}

// UpdateIssue lets the report owner amend description or severity
func (ic *IssueController) UpdateIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	userID := currentUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Description *string `json:"description,omitempty"`
		Severity    *string `json:"severity,omitempty"`
		IssueType   *string `json:"issueType,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.WaterIssue
	err = ic.issues.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	if issue.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to update this issue"})
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.Description != nil {
		if *input.Description == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Description cannot be empty"})
			return
		}
		update["description"] = *input.Description
	}
	if input.Severity != nil {
		if !models.ValidSeverity(*input.Severity) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid severity"})
			return
		}
		update["severity"] = *input.Severity
	}
	if input.IssueType != nil {
		if !models.ValidIssueType(*input.IssueType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue type"})
			return
		}
		update["issueType"] = *input.IssueType
	}

	_, err = ic.issues.UpdateOne(ctx, bson.M{"_id": issueID}, bson.M{"$set": update})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}

	ic.hub.Publish(ctx, issuesTable, realtime.ActionUpdate, issueID.Hex())

	c.JSON(http.StatusOK, gin.H{"message": "Issue updated successfully"})
}

// UpdateIssueStatus moves an issue to any status; admin only, transitions
// are unconstrained
func (ic *IssueController) UpdateIssueStatus(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := ic.issues.UpdateOne(ctx, bson.M{"_id": issueID}, bson.M{"$set": bson.M{
		"status":    input.Status,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	ic.hub.Publish(ctx, issuesTable, realtime.ActionUpdate, issueID.Hex())

	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully", "status": input.Status})
}

// DeleteIssue allows the creator of an issue to delete it
func (ic *IssueController) DeleteIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	userID := currentUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.WaterIssue
	err = ic.issues.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	if issue.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to delete this issue"})
		return
	}

	_, err = ic.issues.DeleteOne(ctx, bson.M{"_id": issueID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete issue"})
		return
	}

	// Delete associated upvotes
	_, _ = ic.upvotes.DeleteMany(ctx, bson.M{"issueId": issueID})

	ic.hub.Publish(ctx, issuesTable, realtime.ActionDelete, issueID.Hex())

	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

// ToggleUpvote flips the caller's upvote on an issue. The denormalized
// counter moves by an atomic $inc, decrements guarded so it never drops
// below zero.
func (ic *IssueController) ToggleUpvote(c *gin.Context) {
	logger := common.GetLoggerWith(common.LoggerNameStore)

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	userID := currentUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please sign in to upvote issues"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.WaterIssue
	err = ic.issues.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	count, err := ic.upvotes.CountDocuments(ctx, bson.M{"issueId": issueID, "userId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing upvotes"})
		return
	}

	hasUpvoted := count > 0
	if hasUpvoted {
		_, err = ic.upvotes.DeleteOne(ctx, bson.M{"issueId": issueID, "userId": userID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove upvote"})
			return
		}

		// Guarded decrement keeps the counter non-negative.
		_, err = ic.issues.UpdateOne(ctx,
			bson.M{"_id": issueID, "upvoteCount": bson.M{"$gt": 0}},
			bson.M{"$inc": bson.M{"upvoteCount": -1}})
	} else {
		upvote := models.Upvote{
			ID:        primitive.NewObjectID(),
			IssueID:   issueID,
			UserID:    userID,
			CreatedAt: time.Now(),
		}
		_, err = ic.upvotes.InsertOne(ctx, upvote)
		if mongo.IsDuplicateKeyError(err) {
			// Concurrent toggle won the race; the unique index keeps the
			// relation at one row.
			err = nil
		} else if err == nil {
			_, err = ic.issues.UpdateOne(ctx, bson.M{"_id": issueID},
				bson.M{"$inc": bson.M{"upvoteCount": 1}})
		}
	}
	if err != nil {
		logger.Error("upvote toggle failed",
			zap.String("issue", issueID.Hex()), zap.String("user", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update upvote"})
		return
	}

	ic.hub.Publish(ctx, issuesTable, realtime.ActionUpdate, issueID.Hex())

	// Read back after the write so the count shown reflects the source of
	// truth, not an optimistic local guess.
	err = ic.issues.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upvoted":     !hasUpvoted,
		"upvoteCount": issue.UpvoteCount,
		"hasUpvoted":  !hasUpvoted,
	})
}

// GetIssueAnalytics returns the aggregates behind the admin dashboard
func (ic *IssueController) GetIssueAnalytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	byStatus, err := ic.groupCounts(ctx, "$status")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get status analytics"})
		return
	}

	byType, err := ic.groupCounts(ctx, "$issueType")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get type analytics"})
		return
	}

	// Last 7 days submission counts
	var last7Days []gin.H
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		nextDate := date.AddDate(0, 0, 1)

		count, err := ic.issues.CountDocuments(ctx, bson.M{
			"createdAt": bson.M{"$gte": date, "$lt": nextDate},
		})
		if err != nil {
			count = 0
		}

		last7Days = append(last7Days, gin.H{
			"date":  date.Format("2006-01-02"),
			"count": count,
		})
	}

	// Top upvoted issues off the denormalized counter
	findOptions := options.Find().
		SetSort(bson.D{{Key: "upvoteCount", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetLimit(5)

	cursor, err := ic.issues.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top issues"})
		return
	}
	defer cursor.Close(ctx)

	var topIssues []models.WaterIssue
	if err := cursor.All(ctx, &topIssues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode top issues"})
		return
	}

	type topIssue struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		IssueType   string `json:"issueType"`
		UpvoteCount int64  `json:"upvoteCount"`
	}
	topUpvoted := make([]topIssue, 0, len(topIssues))
	for _, issue := range topIssues {
		topUpvoted = append(topUpvoted, topIssue{
			ID:          issue.ID.Hex(),
			Description: issue.Description,
			IssueType:   string(issue.IssueType),
			UpvoteCount: issue.UpvoteCount,
		})
	}

	totalIssues, err := ic.issues.CountDocuments(ctx, bson.M{})
	if err != nil {
		totalIssues = 0
	}

	resolvedIssues, err := ic.issues.CountDocuments(ctx, bson.M{"status": models.StatusResolved})
	if err != nil {
		resolvedIssues = 0
	}

	openIssues, err := ic.issues.CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": []models.IssueStatus{models.StatusPending, models.StatusInProgress, models.StatusUrgent}},
	})
	if err != nil {
		openIssues = 0
	}

	resolutionRate := 0.0
	if totalIssues > 0 {
		resolutionRate = float64(resolvedIssues) / float64(totalIssues)
	}

	c.JSON(http.StatusOK, gin.H{
		"issuesByStatus": byStatus,
		"issuesByType":   byType,
		"last7Days":      last7Days,
		"topUpvoted":     topUpvoted,
		"totalIssues":    totalIssues,
		"openIssues":     openIssues,
		"resolutionRate": resolutionRate,
	})
}

func (ic *IssueController) groupCounts(ctx context.Context, field string) ([]bson.M, error) {
	pipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   field,
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	cursor, err := ic.issues.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
