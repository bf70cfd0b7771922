package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationSeverity enum
type NotificationSeverity string

const (
	NotificationHigh   NotificationSeverity = "high"
	NotificationMedium NotificationSeverity = "medium"
	NotificationLow    NotificationSeverity = "low"
)

// ValidNotificationSeverity reports whether s names a known severity.
func ValidNotificationSeverity(s string) bool {
	switch NotificationSeverity(s) {
	case NotificationHigh, NotificationMedium, NotificationLow:
		return true
	}
	return false
}

// EmergencyNotification is an admin-authored banner message. Created and
// deleted by admins, listed newest-first, never updated.
type EmergencyNotification struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Message   string               `bson:"message" json:"message"`
	Severity  NotificationSeverity `bson:"severity" json:"severity"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}
