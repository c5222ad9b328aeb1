// Package openai embeds text with any OpenAI compatible embeddings endpoint.
package openai

import (
	"context"
	"errors"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spigell/fit-scorer/internal/ai"
	"github.com/spigell/fit-scorer/internal/logger"
)

const defaultModel = string(goopenai.SmallEmbedding3)

type embeddingsCreator interface {
	CreateEmbeddings(ctx context.Context, conv goopenai.EmbeddingRequestConverter) (goopenai.EmbeddingResponse, error)
}

// Embedder produces embeddings with the OpenAI embeddings API.
type Embedder struct {
	client embeddingsCreator
	model  string
	retry  ai.RetryPolicy
	logger *zap.Logger
}

// New creates an Embedder. baseURL may point at a compatible gateway and defaults to api.openai.com.
func New(apiKey, baseURL, model string, retry ai.RetryPolicy, log *zap.Logger) (*Embedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	return newEmbedder(goopenai.NewClientWithConfig(cfg), model, retry, log), nil
}

func newEmbedder(client embeddingsCreator, model string, retry ai.RetryPolicy, log *zap.Logger) *Embedder {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Embedder{
		client: client,
		model:  model,
		retry:  retry,
		logger: logger.WithEmbeddingFields(log, ai.ProviderOpenAI, model),
	}
}

// Model returns the default model used when a call does not name one.
func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}

// Embed returns the embedding of text. An empty model falls back to the configured one.
func (e *Embedder) Embed(ctx context.Context, text, model string) ([]float32, error) {
	if e == nil || e.client == nil {
		return nil, errors.New("openai embedder is not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ai.ErrEmptyText
	}
	if model = strings.TrimSpace(model); model == "" {
		model = e.model
	}

	req := goopenai.EmbeddingRequest{
		Input: []string{text},
		Model: goopenai.EmbeddingModel(model),
	}

	var vector []float32
	err := e.retry.Do(ctx, e.logger, func(ctx context.Context) error {
		resp, err := e.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return wrapError(model, err)
		}
		if len(resp.Data) == 0 {
			return &ai.ProviderError{Provider: ai.ProviderOpenAI, Model: model, Err: errors.New("no embeddings returned")}
		}
		values := resp.Data[0].Embedding
		if err := ai.CheckVector(values); err != nil {
			return &ai.ProviderError{Provider: ai.ProviderOpenAI, Model: model, Err: err}
		}
		vector = values
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("openai embedding generated",
		zap.Int("text_length", len(text)),
		zap.Int("dimensions", len(vector)),
	)
	return vector, nil
}

func wrapError(model string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	pe := &ai.ProviderError{Provider: ai.ProviderOpenAI, Model: model, Err: err}

	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		pe.StatusCode = reqErr.HTTPStatusCode
	}
	return pe
}
