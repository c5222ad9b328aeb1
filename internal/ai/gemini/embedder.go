package gemini

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/fit-scorer/internal/ai"
	"github.com/spigell/fit-scorer/internal/logger"
)

const (
	defaultModel = "gemini-embedding-001"
	taskType     = "SEMANTIC_SIMILARITY"
)

var retryDelayPattern = regexp.MustCompile(`(?i)retry (?:after|in) ([0-9]+(?:\.[0-9]+)?)\s*s`)

type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder produces embeddings with the Gemini API.
type Embedder struct {
	models contentEmbedder
	model  string
	retry  ai.RetryPolicy
	logger *zap.Logger
}

// New creates an Embedder backed by the Gemini API.
func New(ctx context.Context, apiKey, model string, retry ai.RetryPolicy, log *zap.Logger) (*Embedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newEmbedder(client.Models, model, retry, log), nil
}

func newEmbedder(models contentEmbedder, model string, retry ai.RetryPolicy, log *zap.Logger) *Embedder {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Embedder{
		models: models,
		model:  model,
		retry:  retry,
		logger: logger.WithEmbeddingFields(log, ai.ProviderGemini, model),
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
	if e == nil || e.models == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ai.ErrEmptyText
	}
	if model = strings.TrimSpace(model); model == "" {
		model = e.model
	}

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	config := &genai.EmbedContentConfig{TaskType: taskType}

	var vector []float32
	err := e.retry.Do(ctx, e.logger, func(ctx context.Context) error {
		resp, err := e.models.EmbedContent(ctx, model, contents, config)
		if err != nil {
			return wrapError(model, err)
		}
		if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
			return &ai.ProviderError{Provider: ai.ProviderGemini, Model: model, Err: errors.New("no embeddings returned")}
		}
		values := resp.Embeddings[0].Values
		if err := ai.CheckVector(values); err != nil {
			return &ai.ProviderError{Provider: ai.ProviderGemini, Model: model, Err: err}
		}
		vector = values
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini embedding generated",
		zap.Int("text_length", len(text)),
		zap.Int("dimensions", len(vector)),
	)
	return vector, nil
}

func wrapError(model string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	pe := &ai.ProviderError{Provider: ai.ProviderGemini, Model: model, Err: err}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.Code
		pe.RetryAfter = parseRetryDelay(apiErr.Message)
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		pe.StatusCode = apiErrPtr.Code
		pe.RetryAfter = parseRetryDelay(apiErrPtr.Message)
	}
	return pe
}

func parseRetryDelay(message string) time.Duration {
	m := retryDelayPattern.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	seconds, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
