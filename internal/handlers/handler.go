// Package handlers implements the HTTP intake endpoints.
package handlers

import (
	"github.com/logtide/logtide/internal/logging"
	"github.com/logtide/logtide/internal/sink"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	logger *logging.Logger
	sink   *sink.Sink
}

// New creates a new handler instance
func New(logger *logging.Logger, s *sink.Sink) *Handler {
	return &Handler{
		logger: logger.With("component", "handlers"),
		sink:   s,
	}
}

// ErrorResponse is the error payload shape for all endpoints
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and human-readable message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}
