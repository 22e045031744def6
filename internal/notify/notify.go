// Package notify emits abstract notification events for the external
// real-time delivery layer. Delivery is best-effort: callers log failures
// and never propagate them to the originating operation.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matcha-app/matcha-core/internal/cache"
)

// Event types emitted by the core.
const (
	EventLike    = "like"
	EventMatch   = "match"
	EventView    = "view"
	EventMessage = "message"
)

// Event is the payload handed to the delivery layer. ActorID identifies who
// triggered the event, RecipientID who should be told about it.
type Event struct {
	Type        string    `json:"type"`
	ActorID     uint64    `json:"actor_id"`
	RecipientID uint64    `json:"recipient_id"`
	At          time.Time `json:"at"`
}

// Dispatcher attempts delivery of a single event.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) error
}

// RedisDispatcher publishes events as JSON on per-recipient pub/sub
// channels; the websocket layer subscribes to notify:user:<id>.
type RedisDispatcher struct {
	cache *cache.RedisCache
}

func NewRedisDispatcher(c *cache.RedisCache) *RedisDispatcher {
	return &RedisDispatcher{cache: c}
}

// Channel returns the pub/sub channel carrying a user's events.
func Channel(userID uint64) string {
	return fmt.Sprintf("notify:user:%d", userID)
}

func (d *RedisDispatcher) Dispatch(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return d.cache.Publish(ctx, Channel(ev.RecipientID), payload)
}
