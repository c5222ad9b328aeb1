package ai

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/fit-scorer/internal/utils"
)

const (
	defaultAttempts  = 3
	defaultBaseDelay = 500 * time.Millisecond
	defaultMaxDelay  = 10 * time.Second
)

var wait = utils.WaitFor

// RetryPolicy bounds how often a temporary provider failure is repeated.
type RetryPolicy struct {
	// Attempts is the total number of calls, including the first one.
	Attempts  int
	BaseDelay time.Duration
	// MaxDelay caps the backoff. A provider asking to wait longer than this is not retried.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the policy used when the configuration is silent.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: defaultAttempts, BaseDelay: defaultBaseDelay, MaxDelay: defaultMaxDelay}
}

// Do calls fn until it succeeds, fails permanently or the attempts run out.
func (p RetryPolicy) Do(ctx context.Context, logger *zap.Logger, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		var pe *ProviderError
		if !errors.As(err, &pe) || !pe.Temporary() || attempt == attempts {
			return err
		}

		delay := utils.Backoff(p.BaseDelay, attempt, p.MaxDelay)
		if pe.RetryAfter > 0 {
			if p.MaxDelay > 0 && pe.RetryAfter > p.MaxDelay {
				logger.Warn("provider asked to wait longer than allowed, giving up",
					zap.Duration("retry_after", pe.RetryAfter),
					zap.Duration("max_delay", p.MaxDelay),
				)
				return err
			}
			delay = pe.RetryAfter
		}

		logger.Debug("retrying embedding request",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if werr := wait(ctx, delay); werr != nil {
			return werr
		}
	}
	return err
}
