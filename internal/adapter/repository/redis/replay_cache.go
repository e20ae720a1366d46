package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayCache stores successful HTTP responses keyed by the request's
// idempotency key so edge replays short-circuit without touching the ledger.
// It is an optimization only: the authoritative idempotency guard is the
// idempotency_keys table written inside the ledger transaction.
type ReplayCache struct {
	client *redis.Client
	prefix string
}

// NewReplayCache creates a new ReplayCache.
func NewReplayCache(client *redis.Client) *ReplayCache {
	return &ReplayCache{
		client: client,
		prefix: "replay:",
	}
}

// Get retrieves a cached response. Returns (nil, nil) on a cache miss.
func (c *ReplayCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, err
	}

	return value, nil
}

// Set stores a response with a TTL. Losing the entry is harmless; the
// database guard still makes the replay a no-op.
func (c *ReplayCache) Set(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, response, ttl).Err()
}
