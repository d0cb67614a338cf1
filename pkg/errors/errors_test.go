package errors

import (
	"fmt"
	"testing"
)

func TestAPIErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"429 maps to rate limited", 429, ErrRateLimited},
		{"404 maps to not found", 404, ErrNotFound},
		{"400 maps to invalid input", 400, ErrInvalidInput},
		{"422 maps to invalid input", 422, ErrInvalidInput},
		{"500 maps to unavailable", 500, ErrUnavailable},
		{"503 maps to unavailable", 503, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError("hubspot", tt.status, "boom")
			if !Is(err, tt.target) {
				t.Errorf("expected status %d to match %v", tt.status, tt.target)
			}
		})
	}
}

func TestAPIErrorWrapped(t *testing.T) {
	inner := NewAPIError("hubspot", 429, "slow down")
	wrapped := fmt.Errorf("submitting batch: %w", inner)

	if !IsRateLimited(wrapped) {
		t.Error("expected wrapped API error to be rate limited")
	}
	if !IsRetryable(wrapped) {
		t.Error("expected rate limited error to be retryable")
	}
}

func TestLookupErrorFailsClosed(t *testing.T) {
	err := &LookupError{Key: "email:jane@co.com", Err: ErrTimeout}

	if !Is(err, ErrDirectoryUnreachable) {
		t.Error("expected lookup error to match ErrDirectoryUnreachable")
	}
	if !IsTimeout(err) {
		t.Error("expected lookup error to unwrap to timeout")
	}
}

func TestValidationErrorNotRetryable(t *testing.T) {
	err := NewValidationError("email", "not-an-email", "invalid email")

	if !IsValidation(err) {
		t.Error("expected validation error to match ErrInvalidInput")
	}
	if IsRetryable(err) {
		t.Error("validation errors must never be retryable")
	}
}
