package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("FIT_SCORER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FIT_SCORER_TEST_POSTGRES_DSN is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := NewPostgresStore(ctx, dsn, "embedding_cache_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	created := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, s.Put(ctx, "k1", Entry{Vector: []float32{0.5, -1, 2}, Model: "m", CreatedAt: created}))

	got, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{0.5, -1, 2}, got.Vector)
	assert.Equal(t, "m", got.Model)
	assert.True(t, created.Equal(got.CreatedAt))

	require.NoError(t, s.Delete(ctx, "k1"))
	_, ok, err = s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewPostgresStoreRejectsBadTableNames(t *testing.T) {
	_, err := NewPostgresStore(context.Background(), "postgres://localhost/db", "cache; DROP TABLE users")
	require.Error(t, err)
}
