package ai

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited spaces out calls to the wrapped embedder.
type RateLimited struct {
	next    Embedder
	limiter *rate.Limiter
}

// NewRateLimited wraps next with a token bucket of rps requests per second.
// A non-positive rps returns next unchanged.
func NewRateLimited(next Embedder, rps float64, burst int) Embedder {
	if rps <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *RateLimited) Embed(ctx context.Context, text, model string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Embed(ctx, text, model)
}
