package storage

import (
	"context"
	"errors"
)

// Common errors returned by KV implementations
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrUnavailable = errors.New("storage unavailable")
)

// Entry is one key/value pair in a multi-key write.
type Entry struct {
	Key   string
	Value string
}

// KV is the only surface the stores use to touch the durable medium. Each
// store owns its key exclusively and never reads another store's key.
type KV interface {
	// Get returns the raw value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set overwrites the full value under key.
	Set(ctx context.Context, key, value string) error

	// SetMulti writes all entries atomically where the medium supports it.
	SetMulti(ctx context.Context, entries []Entry) error

	// Close shuts down the underlying medium.
	Close() error
}
