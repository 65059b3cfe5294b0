package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrTerminal        = errors.New("job already in terminal state")
	ErrNotConfigured   = errors.New("not configured")
	ErrCancelled       = errors.New("cancelled")
	ErrProviderFailure = errors.New("provider failure")
)

// UpstreamError carries the status and message returned by a remote service.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s error: %d", e.Service, e.StatusCode)
}

// ValidationError is a client facing rejection. It matches ErrInvalidRequest
// under errors.Is and its text is safe to return in a response body.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRequest }

// Invalid builds a ValidationError.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
