// Package store provides the settings/log persistence interface and its
// SQLite and in-memory implementations.
package store

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Store is a synchronous key-value store scoped by namespace. Values are
// JSON-encoded; the last write wins.
type Store interface {
	// Load decodes the value stored under ns/key into dst.
	// Returns false (and no error) when the key does not exist.
	Load(ctx context.Context, ns, key string, dst any) (bool, error)

	// Save encodes v and stores it under ns/key, replacing any previous value.
	Save(ctx context.Context, ns, key string, v any) error

	// Close closes the store.
	Close() error
}
