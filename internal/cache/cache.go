package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/spigell/fit-scorer/internal/ai"
	"github.com/spigell/fit-scorer/internal/logger"
)

const defaultConcurrency = 4

// Config tunes a Cache.
type Config struct {
	// Model is the embedding model id. It is part of the key and checked on read.
	Model string
	// TTL bounds the age of a usable entry. Zero or less keeps entries forever.
	TTL time.Duration
	// Concurrency bounds simultaneous upstream calls.
	Concurrency int
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Fills   int64 `json:"fills"`
	Shared  int64 `json:"shared"`
	Stale   int64 `json:"stale"`
	Entries int   `json:"entries"`
}

// Cache returns embeddings from Store and fills misses from the embedder.
// Concurrent misses for the same key share one upstream call.
type Cache struct {
	store    Store
	embedder ai.Embedder
	model    string
	ttl      time.Duration
	sem      *semaphore.Weighted
	group    singleflight.Group
	now      func() time.Time
	logger   *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
	fills  atomic.Int64
	shared atomic.Int64
	stale  atomic.Int64
}

// New creates a Cache over store.
func New(store Store, embedder ai.Embedder, cfg Config, log *zap.Logger) *Cache {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Cache{
		store:    store,
		embedder: embedder,
		model:    cfg.Model,
		ttl:      cfg.TTL,
		sem:      semaphore.NewWeighted(int64(concurrency)),
		now:      time.Now,
		logger:   logger.WithFields(log, zap.String(logger.FieldModel, cfg.Model)),
	}
}

// Key derives the storage key of text within namespace for model.
func Key(namespace, model, text string) string {
	h := sha256.New()
	for _, part := range []string{namespace, model, text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Model returns the model id entries are produced with.
func (c *Cache) Model() string {
	return c.model
}

// Get returns the embedding of text in namespace, generating and storing it on a miss.
// id only labels log lines. Upstream failures are returned as is and never cached.
func (c *Cache) Get(ctx context.Context, namespace, id, text string) ([]float32, error) {
	key := Key(namespace, c.model, text)

	vec, state := c.lookup(ctx, key)
	switch state {
	case entryFresh:
		c.hits.Add(1)
		return vec, nil
	case entryStale:
		c.stale.Add(1)
	}
	c.misses.Add(1)

	for attempt := 1; ; attempt++ {
		led := false
		// the shared call runs on the context of whichever caller started it
		ch := c.group.DoChan(key, func() (any, error) {
			led = true
			return c.fill(ctx, key, namespace, id, text)
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-ch:
			if res.Shared {
				c.shared.Add(1)
			}
			if res.Err == nil {
				return res.Val.([]float32), nil
			}
			// a call started by another caller died with that caller's context, ours is still live
			if !led && isContextError(res.Err) && ctx.Err() == nil {
				c.logger.Debug("shared embedding call was cancelled by another caller, retrying",
					zap.String(logger.FieldNamespace, namespace),
					zap.String("id", id),
					zap.Int("attempt", attempt),
				)
				continue
			}
			return nil, res.Err
		}
	}
}

// Invalidate drops the entry of text in namespace.
func (c *Cache) Invalidate(ctx context.Context, namespace, text string) error {
	return c.store.Delete(ctx, Key(namespace, c.model, text))
}

// Stats returns the current counters.
func (c *Cache) Stats(ctx context.Context) Stats {
	entries, err := c.store.Len(ctx)
	if err != nil {
		c.logger.Warn("counting cache entries failed", zap.Error(err))
	}
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Fills:   c.fills.Load(),
		Shared:  c.shared.Load(),
		Stale:   c.stale.Load(),
		Entries: entries,
	}
}

// Close releases the store.
func (c *Cache) Close() error {
	return c.store.Close()
}

type entryState int

const (
	entryMissing entryState = iota
	entryStale
	entryFresh
)

func (c *Cache) lookup(ctx context.Context, key string) ([]float32, entryState) {
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("reading cached embedding failed, treating as miss", zap.Error(err))
		return nil, entryMissing
	}
	if !ok {
		return nil, entryMissing
	}
	if entry.Model != c.model || (c.ttl > 0 && c.now().Sub(entry.CreatedAt) >= c.ttl) {
		return nil, entryStale
	}
	return entry.Vector, entryFresh
}

func (c *Cache) fill(ctx context.Context, key, namespace, id, text string) ([]float32, error) {
	// another caller may have stored the entry between our miss and this call
	if vec, state := c.lookup(ctx, key); state == entryFresh {
		return vec, nil
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	c.fills.Add(1)
	start := c.now()
	vec, err := c.embedder.Embed(ctx, text, c.model)
	if err != nil {
		return nil, err
	}

	if err := c.store.Put(ctx, key, Entry{Vector: vec, Model: c.model, CreatedAt: c.now()}); err != nil {
		c.logger.Warn("storing embedding failed", zap.Error(err), zap.String(logger.FieldNamespace, namespace))
	}

	c.logger.Debug("embedding cached",
		zap.String(logger.FieldNamespace, namespace),
		zap.String("id", id),
		zap.Int("text_length", len(text)),
		zap.Duration("took", c.now().Sub(start)),
	)
	return vec, nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
