package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemorySize is used when NewMemory receives a non-positive size.
const DefaultMemorySize = 10_000

// Memory is an in-process, size-bounded LRU with a per-entry TTL.
//
// It is safe for concurrent use. Entries are not shared between replicas, so
// it fits single-instance deployments and tests.
type Memory[K comparable, V any] struct {
	name string
	lru  *expirable.LRU[K, V]
}

// NewMemory returns an in-process cache. A non-positive ttl disables expiry.
func NewMemory[K comparable, V any](name string, size int, ttl time.Duration) *Memory[K, V] {
	if size <= 0 {
		size = DefaultMemorySize
	}
	if ttl < 0 {
		ttl = 0
	}

	return &Memory[K, V]{
		name: name,
		lru:  expirable.NewLRU[K, V](size, nil, ttl),
	}
}

// Name returns the logical name of this instance.
func (c *Memory[K, V]) Name() string {
	return c.name
}

// Get returns the value for key.
func (c *Memory[K, V]) Get(_ context.Context, key K) (V, bool, error) {
	v, ok := c.lru.Get(key)
	return v, ok, nil
}

// Put stores value for key.
func (c *Memory[K, V]) Put(_ context.Context, key K, value V) error {
	c.lru.Add(key, value)
	return nil
}

// Delete evicts key.
func (c *Memory[K, V]) Delete(_ context.Context, key K) error {
	c.lru.Remove(key)
	return nil
}

// Len reports the number of live entries.
func (c *Memory[K, V]) Len() int {
	return c.lru.Len()
}
