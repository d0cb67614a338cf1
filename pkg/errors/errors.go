// Package errors provides the error taxonomy for the contactsync system.
// Every failure a pipeline run can hit maps onto one of the sentinel
// errors here, so callers can branch with errors.Is instead of string
// matching, and the batch synchronizer can classify per-item outcomes.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's chain matches target.
// It's an alias for the standard library errors.Is.
var Is = errors.Is

// Sentinel errors for the contactsync system.
var (
	// ErrNotFound indicates that a remote contact was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates that the directory's rate limit has been exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates that the remote directory is temporarily unavailable.
	ErrUnavailable = errors.New("directory unavailable")

	// ErrTimeout indicates that a remote call timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = errors.New("operation canceled")

	// ErrDirectoryUnreachable indicates the directory could not be queried
	// during reconciliation. The run aborts before any writes.
	ErrDirectoryUnreachable = errors.New("directory unreachable")

	// ErrRemoteDuplicate indicates multiple remote contacts matched one
	// identity key. Never auto-resolved.
	ErrRemoteDuplicate = errors.New("remote duplicate")

	// ErrAPIKeyRequired indicates that an API key is required but not provided.
	ErrAPIKeyRequired = errors.New("API key required")
)

// ValidationError represents a per-record validation failure reported by
// the remote directory. Validation failures indicate bad data, not a
// transient condition, and are never retried.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an error returned by the remote directory API.
type APIError struct {
	Directory  string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Directory, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Directory, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support, mapping HTTP status classes onto the
// sentinel taxonomy.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 429:
		return target == ErrRateLimited
	case e.StatusCode == 404:
		return target == ErrNotFound
	case e.StatusCode == 400 || e.StatusCode == 422:
		return target == ErrInvalidInput
	case e.StatusCode >= 500:
		return target == ErrUnavailable
	}
	return false
}

// NewAPIError creates a new APIError.
func NewAPIError(directory string, statusCode int, message string) *APIError {
	return &APIError{
		Directory:  directory,
		StatusCode: statusCode,
		Message:    message,
	}
}

// LookupError wraps a directory lookup failure during reconciliation.
// It always satisfies errors.Is(err, ErrDirectoryUnreachable) so the run
// fails closed before any writes.
type LookupError struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("directory lookup for %s failed: %v", e.Key, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *LookupError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *LookupError) Is(target error) bool {
	return target == ErrDirectoryUnreachable
}

// SyncError represents a failure while applying a batch of operations.
type SyncError struct {
	Batch     int
	SourceIDs []string
	Err       error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	if len(e.SourceIDs) > 0 {
		return fmt.Sprintf("sync error in batch %d (affected records: %v): %v", e.Batch, e.SourceIDs, e.Err)
	}
	return fmt.Sprintf("sync error in batch %d: %v", e.Batch, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *SyncError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// ParseError represents an error when parsing data formats.
type ParseError struct {
	Format  string
	File    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapParse wraps an error as a ParseError.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}

// Helper functions for error checking.

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRateLimited checks if an error is a rate limit error.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsUnavailable checks if an error indicates directory unavailability.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsRetryable reports whether the batch synchronizer may retry after the
// error. Rate limiting, timeouts, and unavailability are transient;
// everything else is terminal.
func IsRetryable(err error) bool {
	return IsRateLimited(err) || IsTimeout(err) || IsUnavailable(err)
}
