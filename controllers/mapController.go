package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"aquawatch-be/common"
	"aquawatch-be/geo"
	"aquawatch-be/mapstate"
	"aquawatch-be/models"
	"aquawatch-be/store"
	"aquawatch-be/weather"
)

// MapController assembles the map page bundle: resolved center, issue and
// infrastructure markers, weather for the center, plus the per-session view
// state operations.
type MapController struct {
	issues      *mongo.Collection
	upvotes     *mongo.Collection
	authorities *mongo.Collection
	reservoirs  *mongo.Collection
	locator     *geo.Locator
	weather     *weather.Client
	views       *mapstate.Store
}

func NewMapController(db *mongo.Database, locator *geo.Locator, weatherClient *weather.Client, views *mapstate.Store) *MapController {
	return &MapController{
		issues:      db.Collection("water_issues"),
		upvotes:     db.Collection("issue_upvotes"),
		authorities: db.Collection("authorities"),
		reservoirs:  db.Collection("reservoirs"),
		locator:     locator,
		weather:     weatherClient,
		views:       views,
	}
}

// sessionID keys map view state. Falls back to client IP so anonymous
// sessions still get a stable view.
func sessionID(c *gin.Context) string {
	if id := c.GetHeader("X-Session-ID"); id != "" {
		return id
	}
	if userID := currentUserID(c); userID != "" {
		return userID
	}
	return c.ClientIP()
}

// resolveCenter picks the map center: explicit valid query coordinates win,
// then IP geolocation bounded by its timeout, then the default center. The
// response is never blocked past the geolocation bound.
func (mc *MapController) resolveCenter(c *gin.Context) [2]float64 {
	var query struct {
		Lat *float64 `form:"lat"`
		Lng *float64 `form:"lng"`
	}
	if err := c.ShouldBindQuery(&query); err == nil && query.Lat != nil && query.Lng != nil {
		if geo.Validate(*query.Lat, *query.Lng) {
			return geo.Normalize([2]float64{*query.Lat, *query.Lng})
		}
	}

	return mc.locator.LocateOrDefault(c.Request.Context(), c.ClientIP())
}

// GetMapData returns everything the map view needs in one round trip.
// Weather degrades to an error string; marker rows with bad coordinates
// degrade to the center.
func (mc *MapController) GetMapData(c *gin.Context) {
	logger := common.GetLoggerWith(common.LoggerNameStore)

	center := mc.resolveCenter(c)
	mc.views.SetCenter(sessionID(c), center)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := mc.issues.Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	var issues []models.WaterIssue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	var upvoted map[string]bool
	if userID := currentUserID(c); userID != "" {
		upvotesCursor, err := mc.upvotes.Find(ctx, bson.M{"userId": userID})
		if err == nil {
			var upvotes []models.Upvote
			if err := upvotesCursor.All(ctx, &upvotes); err == nil {
				upvoted = store.UpvotedSet(upvotes)
			}
		}
	}

	views := store.Decorate(issues, upvoted, center)
	store.SortForList(views)

	authorities := mc.markers(ctx, mc.authorities, center)
	reservoirs := mc.reservoirMarkers(ctx, center)

	response := gin.H{
		"center":      center,
		"zoom":        mc.views.Get(sessionID(c)).Zoom,
		"issues":      views,
		"authorities": authorities,
		"reservoirs":  reservoirs,
	}

	conditions, err := mc.weather.Current(ctx, center[0], center[1])
	if err != nil {
		logger.Warn("weather unavailable for map bundle", zap.Error(err))
		response["weather"] = nil
		response["weatherError"] = err.Error()
	} else {
		response["weather"] = conditions
	}

	c.JSON(http.StatusOK, response)
}

type authorityView struct {
	models.Authority
	Coordinates [2]float64 `json:"coordinates"`
}

func (mc *MapController) markers(ctx context.Context, collection *mongo.Collection, center [2]float64) []authorityView {
	views := make([]authorityView, 0)

	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return views
	}
	var rows []models.Authority
	if err := cursor.All(ctx, &rows); err != nil {
		return views
	}

	for _, row := range rows {
		views = append(views, authorityView{
			Authority:   row,
			Coordinates: store.ResolveLocation(row.Location, center),
		})
	}
	return views
}

type reservoirView struct {
	models.Reservoir
	Coordinates [2]float64 `json:"coordinates"`
}

func (mc *MapController) reservoirMarkers(ctx context.Context, center [2]float64) []reservoirView {
	views := make([]reservoirView, 0)

	cursor, err := mc.reservoirs.Find(ctx, bson.M{})
	if err != nil {
		return views
	}
	var rows []models.Reservoir
	if err := cursor.All(ctx, &rows); err != nil {
		return views
	}

	for _, row := range rows {
		views = append(views, reservoirView{
			Reservoir:   row,
			Coordinates: store.ResolveLocation(row.Location, center),
		})
	}
	return views
}

// GetMapState returns the caller's current view state
func (mc *MapController) GetMapState(c *gin.Context) {
	c.JSON(http.StatusOK, mc.views.Get(sessionID(c)))
}

// UpdateMapState applies partial view state changes. An invalid center is
// reported and ignored; an invalid zoom clamps to the default.
func (mc *MapController) UpdateMapState(c *gin.Context) {
	var input struct {
		Center        *[2]float64     `json:"center,omitempty"`
		Zoom          *float64        `json:"zoom,omitempty"`
		Layers        map[string]bool `json:"layers,omitempty"`
		SelectedIssue *string         `json:"selectedIssue,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := sessionID(c)
	centerAccepted := true

	if input.Center != nil {
		centerAccepted = mc.views.SetCenter(session, *input.Center)
	}
	if input.Zoom != nil {
		mc.views.SetZoom(session, *input.Zoom)
	}
	for layer, visible := range input.Layers {
		mc.views.ToggleLayer(session, layer, visible)
	}
	if input.SelectedIssue != nil {
		mc.views.SelectIssue(session, *input.SelectedIssue)
	}

	c.JSON(http.StatusOK, gin.H{
		"state":          mc.views.Get(session),
		"centerAccepted": centerAccepted,
	})
}
