package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores JSON-encoded values under "<name>:<key>".
type Redis[K comparable, V any] struct {
	client *redis.Client
	name   string
	prefix string
	ttl    time.Duration
}

// NewRedis returns a Redis-backed cache. A non-positive ttl keeps entries
// until they are overwritten or deleted.
func NewRedis[K comparable, V any](client *redis.Client, name string, ttl time.Duration) *Redis[K, V] {
	if ttl < 0 {
		ttl = 0
	}

	return &Redis[K, V]{
		client: client,
		name:   name,
		prefix: name + ":",
		ttl:    ttl,
	}
}

// Name returns the logical name of this instance.
func (c *Redis[K, V]) Name() string {
	return c.name
}

func (c *Redis[K, V]) key(k K) string {
	return fmt.Sprint(c.prefix, k)
}

// Get returns the value for key.
func (c *Redis[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V

	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("cache %s: get: %w", c.name, err)
	}

	var value V
	if err := json.Unmarshal(raw, &value); err != nil {
		return zero, false, fmt.Errorf("cache %s: decode: %w", c.name, err)
	}

	return value, true, nil
}

// Put stores value for key with the instance TTL.
func (c *Redis[K, V]) Put(ctx context.Context, key K, value V) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache %s: encode: %w", c.name, err)
	}

	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache %s: put: %w", c.name, err)
	}

	return nil
}

// Delete evicts key.
func (c *Redis[K, V]) Delete(ctx context.Context, key K) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("cache %s: delete: %w", c.name, err)
	}

	return nil
}
