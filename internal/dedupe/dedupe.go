// Package dedupe records idempotency keys in Redis so repeated task-creation
// requests are rejected instead of inserting duplicate rows.
package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper stores seen idempotency keys with a TTL shared by all service
// instances.
type Deduper struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Deduper using the provided Redis client and TTL.
func New(client *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{client: client, ttl: ttl}
}

func (d *Deduper) key(userID int64, key string) string {
	return fmt.Sprintf("dedupe:%d:%s", userID, key)
}

// Add records the key if it does not already exist. It returns true when the
// key was newly added.
func (d *Deduper) Add(ctx context.Context, userID int64, key string) (bool, error) {
	return d.client.SetNX(ctx, d.key(userID, key), 1, d.ttl).Result()
}

// Remove deletes a previously recorded key. It is used when the downstream
// write fails so the caller may retry with the same key.
func (d *Deduper) Remove(ctx context.Context, userID int64, key string) error {
	return d.client.Del(ctx, d.key(userID, key)).Err()
}
