package ai

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ProviderError is an upstream embedding failure. It is never cached.
type ProviderError struct {
	Provider   string
	Model      string
	StatusCode int
	// RetryAfter is the delay the provider asked for, when it said so.
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s embedding with %s failed (status %d): %v", e.Provider, e.Model, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s embedding with %s failed: %v", e.Provider, e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Temporary reports whether repeating the request may succeed.
func (e *ProviderError) Temporary() bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode == http.StatusRequestTimeout:
		return true
	case e.StatusCode >= http.StatusInternalServerError:
		return true
	case e.StatusCode == 0:
		var netErr interface{ Timeout() bool }
		return errors.As(e.Err, &netErr) && netErr.Timeout()
	}
	return false
}

// IsProviderError reports whether err carries a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
