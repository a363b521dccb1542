package models

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError indicates rejected input, before any processing starts.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError indicates an unknown resource id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ForbiddenError indicates a resource owned by a different user.
type ForbiddenError struct {
	Resource string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("access to this %s is not allowed", e.Resource)
}

// ConflictError indicates a request that collides with work already in
// flight, such as re-submitting a project that is still processing.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// QuotaExceededError indicates a daily quota was exhausted.
type QuotaExceededError struct {
	Kind    string
	Limit   int
	ResetAt time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily %s quota of %d exceeded, resets at %s", e.Kind, e.Limit, e.ResetAt.Format(time.RFC3339))
}

// ProviderTransientError wraps a retryable AI provider failure
// (rate limit, timeout, 5xx).
type ProviderTransientError struct {
	Err error
}

func (e *ProviderTransientError) Error() string {
	return fmt.Sprintf("transient provider error: %v", e.Err)
}

func (e *ProviderTransientError) Unwrap() error {
	return e.Err
}

// ProviderParseError indicates a malformed structured response from a provider.
type ProviderParseError struct {
	Err error
}

func (e *ProviderParseError) Error() string {
	return fmt.Sprintf("failed to parse provider response: %v", e.Err)
}

func (e *ProviderParseError) Unwrap() error {
	return e.Err
}

// StorageError indicates a blob store or database I/O failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a retryable provider error
func IsTransient(err error) bool {
	var te *ProviderTransientError
	return errors.As(err, &te)
}
