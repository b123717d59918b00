package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for comparison using errors.Is()
// These are generic errors that can be wrapped with additional context
var (
	// Authentication errors
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Input errors
	ErrValidation = errors.New("validation failed")

	// Transport errors
	ErrNetwork = errors.New("network error")
	ErrTimeout = errors.New("request timeout")

	// Response errors
	ErrDecode   = errors.New("response decode failed")
	ErrNotFound = errors.New("resource not found")
	ErrServer   = errors.New("server error")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing required configuration")
)

// APIError provides structured error information with context.
// It implements the error interface and supports error wrapping.
type APIError struct {
	Op      string // Operation that failed (e.g., "client.Login")
	Kind    string // Error kind (e.g., "auth", "network", "decode")
	Status  int    // HTTP status code, 0 when no response was received
	Message string // Human-readable message (server-supplied when available)
	Err     error  // Underlying error for wrapping
}

// Error returns the string representation of the error
func (e *APIError) Error() string {
	if e.Op != "" && e.Err != nil {
		if e.Message != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError
func NewAPIError(op, kind string, err error) *APIError {
	return &APIError{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// ServerMessage extracts the server-supplied message from an error chain.
// Returns empty string when the error carries no message.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// IsAuthError checks if an error is authentication-related
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrInvalidCredentials)
}

// IsValidationError checks if an error was raised by local input validation
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNetworkError checks if an error is a transport failure
// (DNS failure, timeout, connection reset - the request never produced a response)
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrTimeout)
}

// IsServerError checks if an error represents a non-2xx server response
func IsServerError(err error) bool {
	return errors.Is(err, ErrServer)
}

// IsNotFound checks if an error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConfigurationError checks if an error is configuration-related
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrMissingConfiguration)
}
