package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventCache remembers Stripe event IDs whose orders were already
// recorded, so at-least-once webhook redeliveries can be skipped before
// touching the order store. It is a fast path only: the store's
// conditional insert remains the source of idempotency, so cache misses
// or Redis outages are safe. Events are marked only after a successful
// store write, so a redelivery after a failed write is still processed.
type EventCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEventCache(client *redis.Client, ttl time.Duration) *EventCache {
	return &EventCache{client: client, ttl: ttl}
}

func (c *EventCache) key(eventID string) string {
	return "idem:event:" + eventID
}

// Seen reports whether the event ID was already processed.
func (c *EventCache) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(eventID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkProcessed records the event ID with a TTL.
func (c *EventCache) MarkProcessed(ctx context.Context, eventID string) error {
	return c.client.Set(ctx, c.key(eventID), "1", c.ttl).Err()
}
