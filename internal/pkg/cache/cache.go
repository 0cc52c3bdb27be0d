package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DriverRedis selects the Redis backend shared by every replica.
	DriverRedis = "redis"
	// DriverMemory selects the in-process LRU backend.
	DriverMemory = "memory"
)

var (
	// ErrUnknownDriver indicates an unsupported cache driver.
	ErrUnknownDriver = errors.New("cache: unknown driver")
	// ErrMissingClient indicates the redis driver was selected without a client.
	ErrMissingClient = errors.New("cache: redis client is required")
	// ErrEmptyName indicates a cache instance was created without a name.
	ErrEmptyName = errors.New("cache: name is required")
)

// Cache is a named key/value store with backend-owned expiry.
type Cache[K comparable, V any] interface {
	// Name returns the logical name of this instance.
	Name() string
	// Get returns the value for key. The boolean is false on a miss.
	Get(ctx context.Context, key K) (V, bool, error)
	// Put stores value for key, replacing any previous value.
	Put(ctx context.Context, key K, value V) error
	// Delete evicts key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key K) error
}

// Options configures a cache instance.
type Options struct {
	// Name identifies the instance and namespaces its keys.
	Name string
	// TTL is how long an entry lives after its last Put.
	TTL time.Duration
	// Redis is the shared client, required by DriverRedis.
	Redis *redis.Client
	// MemorySize bounds the number of entries kept by DriverMemory.
	MemorySize int
}

// NewFromDriver constructs a Cache implementation by driver name.
func NewFromDriver[K comparable, V any](driver string, opts Options) (Cache[K, V], error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, ErrEmptyName
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverRedis:
		if opts.Redis == nil {
			return nil, ErrMissingClient
		}
		return NewRedis[K, V](opts.Redis, opts.Name, opts.TTL), nil
	case DriverMemory:
		return NewMemory[K, V](opts.Name, opts.MemorySize, opts.TTL), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
