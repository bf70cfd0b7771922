package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnonymousUserID marks reports submitted without a session.
const AnonymousUserID = "00000000-0000-0000-0000-000000000000"

// IssueType enum
type IssueType string

const (
	Leak          IssueType = "leak"
	Flood         IssueType = "flood"
	Contamination IssueType = "contamination"
	Shortage      IssueType = "shortage"
	OtherIssue    IssueType = "other"
)

// IssueSeverity enum
type IssueSeverity string

const (
	SeverityLow      IssueSeverity = "low"
	SeverityMedium   IssueSeverity = "medium"
	SeverityHigh     IssueSeverity = "high"
	SeverityCritical IssueSeverity = "critical"
)

// IssueStatus enum
type IssueStatus string

const (
	StatusPending    IssueStatus = "pending"
	StatusInProgress IssueStatus = "inProgress"
	StatusResolved   IssueStatus = "resolved"
	StatusUrgent     IssueStatus = "urgent"
)

// ValidIssueType reports whether t names a known issue type.
func ValidIssueType(t string) bool {
	switch IssueType(t) {
	case Leak, Flood, Contamination, Shortage, OtherIssue:
		return true
	}
	return false
}

// ValidSeverity reports whether s names a known severity.
func ValidSeverity(s string) bool {
	switch IssueSeverity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidStatus reports whether s names a known status. Transitions are
// unconstrained, so this is the only status check anywhere.
func ValidStatus(s string) bool {
	switch IssueStatus(s) {
	case StatusPending, StatusInProgress, StatusResolved, StatusUrgent:
		return true
	}
	return false
}

// WaterIssue is a reported water problem. Location is kept as the raw
// upstream value (point string or numeric pair); geo.ParsePoint is the only
// way to read it.
type WaterIssue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Location    interface{}        `bson:"location" json:"location"`
	IssueType   IssueType          `bson:"issueType" json:"issueType"`
	Description string             `bson:"description" json:"description"`
	Severity    IssueSeverity      `bson:"severity" json:"severity"`
	Status      IssueStatus        `bson:"status" json:"status"`
	UserID      string             `bson:"userId" json:"userId"`
	UpvoteCount int64              `bson:"upvoteCount" json:"upvoteCount"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
