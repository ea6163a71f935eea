// Package storage provides the persistence layer: raw key-value backends, a
// JSON adapter over them, and the bus-driven activity log and completion
// tracker.
package storage

import "context"

// KV is a raw string key-value store. Implementations must be safe for
// concurrent use.
type KV interface {
	// GetItem returns the value stored under key. ok is false when the key
	// has never been written, which is a defined outcome, not an error.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)

	// SetItem stores value under key, replacing any existing value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Keys returns all stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)

	// Clear removes every key.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
