package ai

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func stubWait(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	original := wait
	wait = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	t.Cleanup(func() { wait = original })
	return &delays
}

func TestRetryPolicyRetriesTemporaryErrors(t *testing.T) {
	delays := stubWait(t)

	calls := 0
	policy := RetryPolicy{Attempts: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}
	err := policy.Do(context.Background(), zap.NewNop(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &ProviderError{Provider: ProviderGemini, StatusCode: http.StatusInternalServerError, Err: errors.New("boom")}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *delays)
}

func TestRetryPolicyStopsAfterAttemptsExhausted(t *testing.T) {
	stubWait(t)

	calls := 0
	policy := RetryPolicy{Attempts: 2}
	err := policy.Do(context.Background(), nil, func(context.Context) error {
		calls++
		return &ProviderError{Provider: ProviderOpenAI, StatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")}
	})
	assert.True(t, IsProviderError(err), "got %v", err)
	assert.Equal(t, 2, calls)
}

func TestRetryPolicyDoesNotRetryPermanentErrors(t *testing.T) {
	stubWait(t)

	calls := 0
	policy := RetryPolicy{Attempts: 5}
	_ = policy.Do(context.Background(), nil, func(context.Context) error {
		calls++
		return &ProviderError{Provider: ProviderGemini, StatusCode: http.StatusBadRequest, Err: errors.New("bad request")}
	})
	assert.Equal(t, 1, calls)

	calls = 0
	_ = policy.Do(context.Background(), nil, func(context.Context) error {
		calls++
		return errors.New("not a provider error")
	})
	assert.Equal(t, 1, calls, "plain errors are not retried")
}

func TestRetryPolicyDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	stubWait(t)

	calls := 0
	policy := RetryPolicy{Attempts: 3, MaxDelay: 10 * time.Second}
	err := policy.Do(context.Background(), nil, func(context.Context) error {
		calls++
		return &ProviderError{
			Provider:   ProviderGemini,
			StatusCode: http.StatusTooManyRequests,
			RetryAfter: time.Minute,
			Err:        errors.New("quota exhausted"),
		}
	})
	require.Error(t, err, "a quota delay beyond MaxDelay is not waited out")
	assert.Equal(t, 1, calls)
}

func TestProviderErrorTemporary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   bool
	}{
		{status: http.StatusTooManyRequests, want: true},
		{status: http.StatusServiceUnavailable, want: true},
		{status: http.StatusUnauthorized, want: false},
		{status: 0, want: false},
	}
	for _, tt := range tests {
		pe := &ProviderError{StatusCode: tt.status, Err: errors.New("x")}
		assert.Equal(t, tt.want, pe.Temporary(), "status %d", tt.status)
	}

	timeout := &ProviderError{Err: context.DeadlineExceeded}
	assert.True(t, timeout.Temporary(), "network timeouts are temporary")
}

func TestCheckVector(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckVector([]float32{0.1, 0.2}))
	assert.Error(t, CheckVector(nil))
	assert.Error(t, CheckVector([]float32{float32(math.NaN())}))
}

type countingEmbedder struct{ calls int }

func (c *countingEmbedder) Embed(context.Context, string, string) ([]float32, error) {
	c.calls++
	return []float32{1}, nil
}

func TestNewRateLimited(t *testing.T) {
	t.Parallel()

	inner := &countingEmbedder{}
	assert.Equal(t, Embedder(inner), NewRateLimited(inner, 0, 0), "a disabled limiter returns the inner embedder")

	_, err := NewRateLimited(inner, 1000, 1).Embed(context.Background(), "a", "m")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewRateLimited(inner, 0.001, 1).Embed(ctx, "a", "m")
	assert.Error(t, err, "a cancelled context fails")
	assert.Equal(t, 1, inner.calls)
}
