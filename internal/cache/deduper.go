package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper records idempotency keys in redis so a re-sent command is applied once
// across every instance. A nil client accepts every key.
type Deduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDeduper(client *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{client: client, ttl: ttl}
}

func (d *Deduper) key(userID int64, key string) string {
	return fmt.Sprintf("idem:%d:%s", userID, key)
}

// Add records the key if it does not already exist. It returns true when the
// key was newly added.
func (d *Deduper) Add(ctx context.Context, userID int64, key string) (bool, error) {
	if d == nil || d.client == nil {
		return true, nil
	}
	return d.client.SetNX(ctx, d.key(userID, key), 1, d.ttl).Result()
}

// Remove deletes a previously recorded key so the caller may retry after a failure.
func (d *Deduper) Remove(ctx context.Context, userID int64, key string) error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Del(ctx, d.key(userID, key)).Err()
}
