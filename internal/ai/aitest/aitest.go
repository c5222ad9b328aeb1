// Package aitest provides deterministic embedders for tests.
package aitest

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
)

// Dimensions of vectors produced by BagOfWords.
const Dimensions = 64

// BagOfWords hashes every word of text into a fixed-size count vector.
// Texts sharing words get a positive cosine, identical word sets get 1.
func BagOfWords(text string) []float32 {
	v := make([]float32, Dimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		v[h.Sum32()%Dimensions]++
	}
	return v
}

// Counting embeds with Vector (BagOfWords when nil) and records every call.
type Counting struct {
	Vector func(text string) []float32
	Err    error

	mu    sync.Mutex
	calls map[string]int
	total int
}

func (c *Counting) Embed(_ context.Context, text, _ string) ([]float32, error) {
	c.mu.Lock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[text]++
	c.total++
	c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	if c.Vector != nil {
		return c.Vector(text), nil
	}
	return BagOfWords(text), nil
}

// Calls returns how often text was embedded.
func (c *Counting) Calls(text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[text]
}

// Total returns the number of Embed calls.
func (c *Counting) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Fixed maps texts to predefined vectors and falls back to BagOfWords.
type Fixed map[string][]float32

func (f Fixed) Embed(_ context.Context, text, _ string) ([]float32, error) {
	if v, ok := f[text]; ok {
		return v, nil
	}
	return BagOfWords(text), nil
}

// Blocking holds every call until Release is closed or the caller's context ends.
type Blocking struct {
	Started chan struct{}
	Release chan struct{}

	once  sync.Once
	mu    sync.Mutex
	total int
}

// NewBlocking returns a Blocking embedder with fresh channels.
func NewBlocking() *Blocking {
	return &Blocking{Started: make(chan struct{}), Release: make(chan struct{})}
}

func (b *Blocking) Embed(ctx context.Context, text, _ string) ([]float32, error) {
	b.mu.Lock()
	b.total++
	b.mu.Unlock()
	b.once.Do(func() { close(b.Started) })

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.Release:
		return BagOfWords(text), nil
	}
}

// Total returns the number of Embed calls.
func (b *Blocking) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}
