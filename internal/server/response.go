package server

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spigell/fit-scorer/internal/ai"
	"github.com/spigell/fit-scorer/internal/profile"
)

// Error types reported in the error envelope.
const (
	ErrorTypeMalformedInput = "malformed_input"
	ErrorTypeProvider       = "provider_error"
	ErrorTypeTimeout        = "timeout"
	ErrorTypeHTTP           = "http_error"
	ErrorTypeInternal       = "internal"
)

// SuccessResponse is the envelope of every successful reply.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorDetail classifies a failure.
type ErrorDetail struct {
	Type       string `json:"type"`
	Field      string `json:"field,omitempty"`
	Provider   string `json:"provider,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// ErrorResponse is the envelope of every failed reply.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   ErrorDetail `json:"error"`
}

func success(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// handleError maps errors returned by handlers onto status codes and the error envelope.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code, detail := classify(err)

	log := s.requestLogger(c)
	if code >= fiber.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", code), zap.Error(err))
	} else {
		log.Info("request rejected", zap.Int("status", code), zap.Error(err))
	}

	message := err.Error()
	if detail.Type == ErrorTypeInternal {
		message = "internal error"
	}
	return c.Status(code).JSON(ErrorResponse{
		Success: false,
		Message: message,
		Error:   detail,
	})
}

func classify(err error) (int, ErrorDetail) {
	var malformed *profile.MalformedInputError
	if errors.As(err, &malformed) {
		return fiber.StatusBadRequest, ErrorDetail{Type: ErrorTypeMalformedInput, Field: malformed.Field}
	}
	if errors.Is(err, profile.ErrMalformedInput) {
		return fiber.StatusBadRequest, ErrorDetail{Type: ErrorTypeMalformedInput}
	}

	var provider *ai.ProviderError
	if errors.As(err, &provider) {
		return fiber.StatusBadGateway, ErrorDetail{
			Type:       ErrorTypeProvider,
			Provider:   provider.Provider,
			StatusCode: provider.StatusCode,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fiber.StatusGatewayTimeout, ErrorDetail{Type: ErrorTypeTimeout}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, ErrorDetail{Type: ErrorTypeHTTP}
	}

	return fiber.StatusInternalServerError, ErrorDetail{Type: ErrorTypeInternal}
}
