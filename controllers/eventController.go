package controllers

import (
	"io"

	"github.com/gin-gonic/gin"

	"aquawatch-be/realtime"
)

// EventController relays the change-event stream over SSE. Clients treat
// any event as a cue to re-fetch; no incremental patching happens here.
type EventController struct {
	hub *realtime.Hub
}

func NewEventController(hub *realtime.Hub) *EventController {
	return &EventController{hub: hub}
}

// StreamEvents holds the connection open and forwards change events
func (ec *EventController) StreamEvents(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	events, closeSub := ec.hub.Subscribe(c.Request.Context())
	defer closeSub()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("change", event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
