package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitForReturnsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	assert.ErrorIs(t, WaitFor(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitForElapses(t *testing.T) {
	t.Parallel()

	assert.NoError(t, WaitFor(context.Background(), time.Millisecond))
	assert.NoError(t, WaitFor(context.Background(), 0))
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 0},
		{attempt: 1, want: 100 * time.Millisecond},
		{attempt: 2, want: 200 * time.Millisecond},
		{attempt: 3, want: 400 * time.Millisecond},
		{attempt: 10, want: time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Backoff(100*time.Millisecond, tt.attempt, time.Second), "attempt %d", tt.attempt)
	}
}
