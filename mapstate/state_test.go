package mapstate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"aquawatch-be/geo"
)

func TestDefaultView(t *testing.T) {
	s := NewStore()
	view := s.Get("session-1")

	assert.Equal(t, geo.DefaultCenter, view.Center)
	assert.Equal(t, geo.DefaultZoom, view.Zoom)
	assert.True(t, view.VisibleLayers["issues"])
	assert.True(t, view.VisibleLayers["authorities"])
	assert.True(t, view.VisibleLayers["reservoirs"])
	assert.False(t, view.VisibleLayers["weather"])
	assert.Empty(t, view.SelectedIssue)
}

func TestSetCenterRejectsInvalid(t *testing.T) {
	s := NewStore()

	assert.False(t, s.SetCenter("s", [2]float64{999, 0}))
	assert.False(t, s.SetCenter("s", [2]float64{0, 181}))
	assert.False(t, s.SetCenter("s", [2]float64{math.NaN(), 0}))

	// Rejected centers leave the previous value untouched.
	assert.Equal(t, geo.DefaultCenter, s.Get("s").Center)
}

func TestSetCenterNormalizes(t *testing.T) {
	s := NewStore()

	assert.True(t, s.SetCenter("s", [2]float64{12.3456789, 77.1234564}))
	assert.Equal(t, [2]float64{12.345679, 77.123456}, s.Get("s").Center)
}

func TestSetZoomClamps(t *testing.T) {
	s := NewStore()

	assert.Equal(t, geo.DefaultZoom, s.SetZoom("s", 25))
	assert.Equal(t, geo.DefaultZoom, s.SetZoom("s", -1))
	assert.Equal(t, geo.DefaultZoom, s.SetZoom("s", math.NaN()))
	assert.Equal(t, 15, s.SetZoom("s", 15))
	assert.Equal(t, 15, s.Get("s").Zoom)
}

func TestToggleLayer(t *testing.T) {
	s := NewStore()

	s.ToggleLayer("s", "weather", true)
	assert.True(t, s.Get("s").VisibleLayers["weather"])

	s.ToggleLayer("s", "issues", false)
	assert.False(t, s.Get("s").VisibleLayers["issues"])
}

func TestSelectIssue(t *testing.T) {
	s := NewStore()

	s.SelectIssue("s", "abc123")
	assert.Equal(t, "abc123", s.Get("s").SelectedIssue)

	s.SelectIssue("s", "")
	assert.Empty(t, s.Get("s").SelectedIssue)
}

func TestGetReturnsDetachedSnapshot(t *testing.T) {
	s := NewStore()

	snapshot := s.Get("s")
	s.ToggleLayer("s", "weather", true)

	// Mutations after Get never show up in an earlier snapshot.
	assert.False(t, snapshot.VisibleLayers["weather"])

	// Nor does writing through a snapshot touch the store.
	snapshot.VisibleLayers["issues"] = false
	assert.True(t, s.Get("s").VisibleLayers["issues"])
}

func TestSessionsAreIndependent(t *testing.T) {
	s := NewStore()

	assert.True(t, s.SetCenter("a", [2]float64{10, 10}))
	assert.Equal(t, [2]float64{10, 10}, s.Get("a").Center)
	assert.Equal(t, geo.DefaultCenter, s.Get("b").Center)
}
