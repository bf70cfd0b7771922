package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"aquawatch-be/geo"
	"aquawatch-be/models"
)

var center = [2]float64{28.6139, 77.2090}

func TestResolveLocation(t *testing.T) {
	got := ResolveLocation("(77.21,28.61)", center)
	assert.Equal(t, [2]float64{28.61, 77.21}, got)

	got = ResolveLocation([]interface{}{77.21, 28.61}, center)
	assert.Equal(t, [2]float64{28.61, 77.21}, got)

	// Malformed rows degrade to the center instead of erroring.
	assert.Equal(t, center, ResolveLocation("garbage", center))
	assert.Equal(t, center, ResolveLocation(nil, center))
	assert.Equal(t, center, ResolveLocation("(200,95)", center))
}

func TestResolveLocationSurvivesBsonRoundTrip(t *testing.T) {
	// Issues are stored with a []float64 location; bson hands it back as
	// primitive.A, which must still resolve to the original pair.
	stored := models.WaterIssue{
		ID:        primitive.NewObjectID(),
		Location:  []float64{77.21, 28.61},
		IssueType: models.Leak,
		Severity:  models.SeverityHigh,
		Status:    models.StatusPending,
		UserID:    models.AnonymousUserID,
		CreatedAt: time.Now(),
	}

	raw, err := bson.Marshal(stored)
	assert.NoError(t, err)

	var decoded models.WaterIssue
	assert.NoError(t, bson.Unmarshal(raw, &decoded))

	assert.Equal(t, [2]float64{28.61, 77.21}, ResolveLocation(decoded.Location, center))
}

func issueWith(status models.IssueStatus, createdAt time.Time) models.WaterIssue {
	return models.WaterIssue{
		ID:          primitive.NewObjectID(),
		Location:    "(77.21,28.61)",
		IssueType:   models.Leak,
		Description: "pipe burst",
		Severity:    models.SeverityHigh,
		Status:      status,
		UserID:      models.AnonymousUserID,
		CreatedAt:   createdAt,
	}
}

func TestDecorateMergesUpvotes(t *testing.T) {
	a := issueWith(models.StatusPending, time.Now())
	b := issueWith(models.StatusPending, time.Now())

	views := Decorate([]models.WaterIssue{a, b}, map[string]bool{a.ID.Hex(): true}, center)

	assert.Len(t, views, 2)
	assert.True(t, views[0].HasUpvoted)
	assert.False(t, views[1].HasUpvoted)
	assert.Equal(t, [2]float64{28.61, 77.21}, views[0].Coordinates)
}

func TestDecorateAnonymous(t *testing.T) {
	a := issueWith(models.StatusPending, time.Now())

	views := Decorate([]models.WaterIssue{a}, nil, center)
	assert.False(t, views[0].HasUpvoted)
}

func TestDecorateBadRowUsesCenter(t *testing.T) {
	a := issueWith(models.StatusPending, time.Now())
	a.Location = "not a point"

	views := Decorate([]models.WaterIssue{a}, nil, center)
	assert.Equal(t, center, views[0].Coordinates)
}

func TestSortForListUrgentFirst(t *testing.T) {
	now := time.Now()
	oldUrgent := issueWith(models.StatusUrgent, now.Add(-48*time.Hour))
	newPending := issueWith(models.StatusPending, now)
	oldPending := issueWith(models.StatusPending, now.Add(-24*time.Hour))

	views := Decorate([]models.WaterIssue{newPending, oldPending, oldUrgent}, nil, center)
	SortForList(views)

	// Urgent wins regardless of recency, then newest first.
	assert.Equal(t, oldUrgent.ID, views[0].ID)
	assert.Equal(t, newPending.ID, views[1].ID)
	assert.Equal(t, oldPending.ID, views[2].ID)
}

func TestUpvotedSet(t *testing.T) {
	issueID := primitive.NewObjectID()
	set := UpvotedSet([]models.Upvote{{
		ID:        primitive.NewObjectID(),
		IssueID:   issueID,
		UserID:    "user-1",
		CreatedAt: time.Now(),
	}})

	assert.True(t, set[issueID.Hex()])
	assert.False(t, set[primitive.NewObjectID().Hex()])
}

func TestNormalizedPairSurvivesResolve(t *testing.T) {
	pair := geo.Normalize([2]float64{28.6139, 77.209})
	assert.True(t, geo.ValidatePair(pair))
}
