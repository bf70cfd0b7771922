package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"aquawatch-be/common"
)

func newTestHub(t *testing.T) (*Hub, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewHub(client), mr
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	common.SetTestLoggerNop()

	hub, _ := newTestHub(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, closeSub := hub.Subscribe(ctx)
	defer closeSub()

	// Give the subscription a moment to register before publishing.
	time.Sleep(50 * time.Millisecond)

	hub.Publish(ctx, "water_issues", ActionInsert, "abc123")

	select {
	case event := <-events:
		assert.Equal(t, "water_issues", event.Table)
		assert.Equal(t, ActionInsert, event.Action)
		assert.Equal(t, "abc123", event.RecordID)
		assert.False(t, event.Timestamp.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestPublishOnNilHubIsNoop(t *testing.T) {
	var hub *Hub
	hub.Publish(context.Background(), "water_issues", ActionUpdate, "x")
}

func TestSubscribeClosesOnCancel(t *testing.T) {
	common.SetTestLoggerNop()

	hub, _ := newTestHub(t)

	ctx, cancel := context.WithCancel(context.Background())
	events, closeSub := hub.Subscribe(ctx)

	cancel()
	closeSub()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel did not close")
	}
}
