package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateCache implements rates.Cache using Redis. A cache miss surfaces as
// redis.Nil, which the rate client treats like any other miss.
type RateCache struct {
	client *redis.Client
	prefix string
}

// NewRateCache creates a new RateCache.
func NewRateCache(client *redis.Client) *RateCache {
	return &RateCache{
		client: client,
		prefix: "rates:",
	}
}

// Get retrieves a cached rate by currency code.
func (c *RateCache) Get(ctx context.Context, currency string) (string, error) {
	return c.client.Get(ctx, c.prefix+currency).Result()
}

// Set stores a rate with TTL.
func (c *RateCache) Set(ctx context.Context, currency, rate string, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+currency, rate, ttl).Err()
}
