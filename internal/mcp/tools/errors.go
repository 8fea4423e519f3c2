package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/usestring/pyroscope-mcp/pkg/client"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodePyroscopeError = "PYROSCOPE_ERROR"
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeTimeout        = "TIMEOUT"
	ErrCodeNotLoaded      = "NOT_LOADED"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapPyroscopeError converts an error from the Pyroscope client to a coded
// error.
func WrapPyroscopeError(err error) error {
	if err == nil {
		return nil
	}

	var (
		coded  *CodedError
		apiErr *client.APIError
		valErr *client.ValidationError
		netErr net.Error
	)
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		coded = &CodedError{Code: ErrCodeNotFound, Message: apiErr.Message, Cause: err}
	case errors.As(err, &apiErr):
		coded = &CodedError{Code: ErrCodePyroscopeError, Message: apiErr.Message, Cause: err}
	case errors.As(err, &valErr):
		coded = &CodedError{Code: ErrCodePyroscopeError, Message: "unexpected response from pyroscope", Cause: err}
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		coded = &CodedError{Code: ErrCodeTimeout, Message: "request timed out", Cause: err}
	default:
		coded = &CodedError{Code: ErrCodePyroscopeError, Message: err.Error(), Cause: err}
	}

	slog.Warn("pyroscope API error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)
	return coded
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

// ErrNotLoaded is returned when a tool needs data that has not been fetched.
func ErrNotLoaded(what, hint string) error {
	return &CodedError{
		Code:    ErrCodeNotLoaded,
		Message: fmt.Sprintf("%s is not loaded; %s", what, hint),
	}
}
