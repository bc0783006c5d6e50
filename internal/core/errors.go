package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup misses. Wrap with %w so callers can
// keep using errors.Is at the transport boundary.
var ErrNotFound = errors.New("not found")

// ValidationError marks input the caller got wrong. Detected before any
// remote call is made.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedTypeError rejects a file whose extension is outside the accepted
// set. It is a validation-class failure and maps to 400.
type UnsupportedTypeError struct {
	Extension string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q: accepted types are pdf, txt, doc, docx", e.Extension)
}

// ConfigurationError distinguishes a missing or broken local secret from a
// provider-side failure.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// ProviderError carries the status code and raw body of a non-success
// provider response. Provider failures are never coerced to defaults.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider: http %d: %s", e.StatusCode, e.Body)
}

// RunFailedError reports a run that reached a failed terminal state on the
// provider side.
type RunFailedError struct {
	Status RunStatus
}

func (e *RunFailedError) Error() string {
	return fmt.Sprintf("run finished with status %q", e.Status)
}

// RunTimeoutError reports a poll budget exhausted without a terminal state.
// The remote run may still be executing; it is not cancelled.
type RunTimeoutError struct {
	Attempts int
}

func (e *RunTimeoutError) Error() string {
	return fmt.Sprintf("run did not finish after %d polls", e.Attempts)
}

// DuplicateResourceError reports a registry uniqueness violation on
// vector_store_id or file_id.
type DuplicateResourceError struct {
	Field string
	Value string
}

func (e *DuplicateResourceError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Field, e.Value)
}
