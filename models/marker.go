package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Authority is a water authority contact point shown on the map.
type Authority struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Location interface{}        `bson:"location" json:"location"`
	Type     string             `bson:"type" json:"type"`
	Phone    string             `bson:"phone" json:"phone"`
}

// Reservoir is a water reservoir shown on the map.
type Reservoir struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Location     interface{}        `bson:"location" json:"location"`
	Capacity     float64            `bson:"capacity" json:"capacity"`
	CurrentLevel float64            `bson:"currentLevel" json:"currentLevel"`
}
