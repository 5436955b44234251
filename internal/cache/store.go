// Package cache implements the durable, TTL-based response cache shared by
// all resolvers: request fingerprinting, pluggable storage backends, an LRU
// memo in front of the backend and per-key single-flight.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by a Store when no entry exists for a key.
var ErrNotFound = errors.New("cache entry not found")

// Entry is one cached payload and the time it was written.
type Entry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	WrittenAt time.Time       `json:"written_at"`
}

// Store is a durable key/value backend. Load returns ErrNotFound for absent
// keys; any other error (including undecodable data) is treated as a miss by
// Cache. Save must be atomic per key.
type Store interface {
	Load(ctx context.Context, key string) (Entry, error)
	Save(ctx context.Context, entry Entry) error
	Clear(ctx context.Context) error
	Close() error
}

// Purger is implemented by stores that can drop entries older than a cutoff.
type Purger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Clock returns the current time. Tests inject a fake to cross TTL
// boundaries.
type Clock func() time.Time

// CorruptEntryError marks data that exists but cannot be decoded.
type CorruptEntryError struct {
	Key string
	Err error
}

func (e *CorruptEntryError) Error() string {
	return "corrupt cache entry " + e.Key + ": " + e.Err.Error()
}

func (e *CorruptEntryError) Unwrap() error {
	return e.Err
}
