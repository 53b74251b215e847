// Package cache provides a Redis-backed response cache for chat turns.
// Identical questions from the same user skip inference entirely.
//
// The cache fails open: a missing or unhealthy Redis never blocks a turn,
// it only disables the speedup.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// DefaultTTL keeps responses for a day; career advice goes stale slowly.
const DefaultTTL = 24 * time.Hour

// ResponseCache caches final turn responses keyed by user and message.
type ResponseCache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a ResponseCache.
type Option func(*ResponseCache)

// WithTTL sets the expiration for cached responses.
func WithTTL(ttl time.Duration) Option {
	return func(c *ResponseCache) { c.ttl = ttl }
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *ResponseCache) { c.prefix = prefix }
}

// New creates a cache connected to the Redis server at addr.
func New(addr, password string, db int, opts ...Option) *ResponseCache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a cache from an existing Redis client.
func NewFromClient(client *backend.Client, opts ...Option) *ResponseCache {
	c := &ResponseCache{
		client: client,
		prefix: "careergini:response:",
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// key hashes the normalized message so keys stay bounded regardless of
// message length.
func (c *ResponseCache) key(userID, message string) string {
	normalized := strings.ToLower(strings.TrimSpace(message))
	sum := sha256.Sum256([]byte(normalized))
	return c.prefix + userID + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached response for (userID, message) and whether it
// was present. Errors (including an unreachable server) read as a miss.
func (c *ResponseCache) Get(ctx context.Context, userID, message string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, c.key(userID, message)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a response. Errors are swallowed; the cache is advisory.
func (c *ResponseCache) Set(ctx context.Context, userID, message, response string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, c.key(userID, message), response, c.ttl)
}

// Invalidate drops every cached response for a user, e.g. after their
// profile changes.
func (c *ResponseCache) Invalidate(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}

	var cursor uint64
	pattern := c.prefix + userID + ":*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Ping checks connectivity. Useful for health endpoints.
func (c *ResponseCache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *ResponseCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
