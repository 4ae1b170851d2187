// Package store provides the artifact store used to persist analysis
// results, template versions, and rendered previews. Values are opaque byte
// blobs keyed by id, with optional expiry for ephemeral artifacts such as
// analyses.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the id is unknown or expired.
var ErrNotFound = errors.New("store: not found")

// Store is a key-value artifact store with TTL support.
type Store interface {
	// Put stores data under id. A ttl of zero means no expiry.
	Put(ctx context.Context, id string, data []byte, ttl time.Duration) error

	// Get returns the data stored under id, or ErrNotFound.
	Get(ctx context.Context, id string) ([]byte, error)

	// Delete removes the entry for id. Deleting a missing id is not an
	// error.
	Delete(ctx context.Context, id string) error

	Close() error
}

// Sweeper is implemented by stores that can evict expired entries in bulk.
type Sweeper interface {
	// Sweep removes expired entries and reports how many were evicted.
	Sweep(ctx context.Context) (int, error)
}
