package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SlotCache is a short-lived cache of computed slot lists, keyed by
// practitioner and date. The engine treats it as best effort: a miss or a
// cache failure just means the slots get recomputed.
type SlotCache interface {
	Get(ctx context.Context, practitionerID, date string) ([]string, bool, error)
	Set(ctx context.Context, practitionerID, date string, slots []string) error
}

type redisSlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSlotCache creates a cache over a per practitioner+date Redis key.
// The TTL is the staleness window callers accept for availability answers;
// there is no explicit invalidation.
func NewRedisSlotCache(client *redis.Client, ttl time.Duration) SlotCache {
	return &redisSlotCache{
		client: client,
		ttl:    ttl,
	}
}

func cacheKey(practitionerID, date string) string {
	return fmt.Sprintf("slots:%s:%s", practitionerID, date)
}

func (c *redisSlotCache) Get(ctx context.Context, practitionerID, date string) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(practitionerID, date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read slot cache: %w", err)
	}

	var slots []string
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false, fmt.Errorf("decode slot cache entry: %w", err)
	}
	return slots, true, nil
}

func (c *redisSlotCache) Set(ctx context.Context, practitionerID, date string, slots []string) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode slot cache entry: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(practitionerID, date), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("write slot cache: %w", err)
	}
	return nil
}
