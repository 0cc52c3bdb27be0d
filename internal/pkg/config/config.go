package config

import (
	"io"
	"time"
)

// Config reads typed configuration values by dotted key.
//
// Missing keys yield the zero value of the requested type. Implementations
// may reload values at runtime, so callers that need a stable value read it
// once at startup.
type Config interface {
	io.Closer

	// IsSet reports whether key is present in the file or the environment.
	IsSet(key string) bool

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetUint(key string) uint
	GetFloat64(key string) float64

	// GetSecond reads an integer number of seconds.
	GetSecond(key string) time.Duration

	// GetArray reads a comma separated list. Elements are trimmed and empty
	// elements dropped.
	GetArray(key string) []string
}
