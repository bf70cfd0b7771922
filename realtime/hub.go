// Package realtime fans table change events out to connected clients.
// Every mutation publishes on a Redis channel; the SSE endpoint relays the
// stream so clients re-fetch on any event instead of patching incrementally.
package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"aquawatch-be/common"
)

const channel = "aquawatch:changes"

// Actions mirror the mutation that produced the event.
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event is one table change notification.
type Event struct {
	Table     string    `json:"table"`
	Action    string    `json:"action"`
	RecordID  string    `json:"recordId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub publishes and subscribes change events over Redis.
type Hub struct {
	client *redis.Client
}

func NewHub(client *redis.Client) *Hub {
	return &Hub{client: client}
}

// Publish sends an event; failures are logged and swallowed so a Redis
// hiccup never fails the mutation that triggered it.
func (h *Hub) Publish(ctx context.Context, table, action, recordID string) {
	if h == nil || h.client == nil {
		return
	}

	event := Event{
		Table:     table,
		Action:    action,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	if err := h.client.Publish(ctx, channel, payload).Err(); err != nil {
		common.GetLoggerWith(common.LoggerNameRealtime).Warn("failed to publish change event",
			zap.String("table", table), zap.String("action", action), zap.Error(err))
	}
}

// Subscribe returns a channel of decoded events plus a close function. The
// channel is closed when ctx ends or the subscription drops.
func (h *Hub) Subscribe(ctx context.Context) (<-chan Event, func()) {
	events := make(chan Event)
	pubsub := h.client.Subscribe(ctx, channel)

	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, func() { _ = pubsub.Close() }
}
