// Package ai defines the embedding provider abstraction shared by the
// Gemini and OpenAI adapters together with retry and rate limiting helpers.
package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Embedder turns text into a vector with the named model.
type Embedder interface {
	Embed(ctx context.Context, text, model string) ([]float32, error)
}

// ErrEmptyText is returned when there is nothing to embed.
var ErrEmptyText = errors.New("text to embed must not be empty")

// CheckVector rejects vectors a provider should never return.
func CheckVector(v []float32) error {
	if len(v) == 0 {
		return errors.New("embedding is empty")
	}
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("embedding value at index %d is not finite", i)
		}
	}
	return nil
}
