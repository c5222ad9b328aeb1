// Package cache persists embeddings keyed by namespace, model and text, and
// collapses concurrent requests for the same key into one upstream call.
package cache

import (
	"context"
	"time"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Entry is one stored embedding.
type Entry struct {
	Vector    []float32
	Model     string
	CreatedAt time.Time
}

// Store is the persistence behind Cache. Implementations must be safe for concurrent use.
// Freshness is decided by Cache on read, so stores never expire entries themselves.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	// Put overwrites any previous entry for key.
	Put(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
	Len(ctx context.Context) (int, error)
	Close() error
}
