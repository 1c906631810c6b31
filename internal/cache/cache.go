// Package cache provides a Redis-backed cache for executed query results,
// keyed by plan fingerprint.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates that a key was not found in the cache.
type ErrCacheMiss struct {
	Key string
}

// Error implements the error interface.
func (e ErrCacheMiss) Error() string {
	return fmt.Sprintf("cache miss: %s", e.Key)
}

// Config holds cache configuration.
type Config struct {
	// Addr is the Redis server address (host:port).
	Addr string
	// Password is the Redis password (optional).
	Password string
	// DB is the Redis database number.
	DB int
	// TTL is how long cached results stay valid.
	TTL time.Duration
	// Prefix is prepended to every cache key.
	Prefix string
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{
		Addr:   "localhost:6379",
		TTL:    5 * time.Minute,
		Prefix: "gridiron:result:",
	}
}

// ResultCache caches serialized query results in Redis.
type ResultCache struct {
	client *redis.Client
	config Config

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a result cache and verifies the Redis connection.
func New(config Config) (*ResultCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &ResultCache{client: client, config: config}, nil
}

// NewWithClient creates a result cache around an existing client.
func NewWithClient(client *redis.Client, config Config) *ResultCache {
	return &ResultCache{client: client, config: config}
}

// Get retrieves a cached result. A miss is reported as ErrCacheMiss.
func (c *ResultCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.config.Prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.misses.Add(1)
			return nil, ErrCacheMiss{Key: key}
		}
		return nil, err
	}

	c.hits.Add(1)
	return value, nil
}

// Set stores a result under the configured TTL.
func (c *ResultCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, c.config.Prefix+key, value, c.config.TTL).Err()
}

// Invalidate removes a single cached result.
func (c *ResultCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.config.Prefix+key).Err()
}

// Clear removes every cached result under the configured prefix and resets
// the hit/miss counters.
func (c *ResultCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.config.Prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}

	c.hits.Store(0)
	c.misses.Store(0)
	return nil
}

// Stats summarizes cache effectiveness.
type Stats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	Requests int64   `json:"requests"`
	HitRate  float64 `json:"hitRate"`
}

// Stats returns hit/miss counters for this process.
func (c *ResultCache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	stats := Stats{
		Hits:     hits,
		Misses:   misses,
		Requests: hits + misses,
	}
	if stats.Requests > 0 {
		stats.HitRate = float64(hits) / float64(stats.Requests)
	}
	return stats
}

// Close releases the underlying Redis connection.
func (c *ResultCache) Close() error {
	return c.client.Close()
}
