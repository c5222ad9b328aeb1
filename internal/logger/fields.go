package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/fit-scorer/internal/utils"
)

const (
	// FieldProvider is the structured log field key for the embedding provider name.
	FieldProvider = "embedding_provider"
	// FieldModel is the structured log field key for the embedding model identifier.
	FieldModel = "embedding_model"
	// FieldNamespace is the cache namespace an embedding was requested for.
	FieldNamespace = "namespace"
	// FieldRequestID correlates log lines of one HTTP request.
	FieldRequestID = "request_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, falling back to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// EmbeddingFields describes which provider and model served an embedding.
func EmbeddingFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithEmbeddingFields attaches the provider and model fields to logger.
func WithEmbeddingFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, EmbeddingFields(provider, model)...)
}

// Preview logs a bounded excerpt of text together with its full length.
func Preview(key, text string, limit int) []zap.Field {
	return []zap.Field{
		zap.Int(key+"_length", len(text)),
		zap.String(key+"_preview", utils.TruncateForLog(text, limit)),
	}
}
