// Package store defines the ordered key-value contract the onlook server
// persists through. A Store is a flat, lexicographically ordered namespace
// of string keys; multi-key mutations go through a Batch, which commits
// atomically or not at all.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for a key.
var ErrNotFound = errors.New("key not found")

// Store is an ordered key-value store. Keys are strings compared in byte
// order; values are opaque. Implementations must return ErrNotFound
// (possibly wrapped) from Get on absence.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Batch starts a multi-key mutation. Nothing is visible to readers
	// until Write commits, and a committed batch is all-or-nothing.
	Batch() Batch

	// ScanKeys returns every key in the half-open range [start, end) in
	// lexicographic order. An empty end means no upper bound.
	ScanKeys(ctx context.Context, start, end string) ([]string, error)

	Close() error
}

// Batch accumulates puts and deletes for one atomic Write. Batches are not
// safe for concurrent use and must not be reused after Write.
type Batch interface {
	Put(key string, value []byte)
	Delete(key string)
	Write(ctx context.Context) error
}

// PrefixRange returns the [start, end) range covering every key that
// begins with prefix, suitable for ScanKeys. An empty end means the range
// is unbounded above (only possible when prefix is empty or all 0xff).
func PrefixRange(prefix string) (start, end string) {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return prefix, string(b[:i+1])
		}
	}
	return prefix, ""
}
