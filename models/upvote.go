package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Upvote is a (issue, user) relation row. At most one exists per pair,
// enforced by the unique index below.
type Upvote struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssueID   primitive.ObjectID `bson:"issueId" json:"issueId"`
	UserID    string             `bson:"userId" json:"userId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// EnsureUpvoteIndex creates a unique compound index for (issueId, userId)
func EnsureUpvoteIndex(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "issueId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}
