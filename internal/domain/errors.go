package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a request that failed field-level validation.
	ErrValidation = errors.New("validation failed")
	// ErrNamespaceMismatch signals an upsert batch spanning several namespaces.
	ErrNamespaceMismatch = errors.New("all vectors must share namespace")
	// ErrEngineUnavailable signals that the vector engine could not be reached.
	ErrEngineUnavailable = errors.New("engine unavailable")

	// ErrEmbeddingQuotaExceeded signals an exhausted embedding budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// ValidationError carries the offending field alongside ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NamespaceMismatchError reports the first item whose namespace differs from the batch.
type NamespaceMismatchError struct {
	Index    int
	Expected string
	Got      string
}

func (e *NamespaceMismatchError) Error() string {
	return "All vectors must share namespace"
}

func (e *NamespaceMismatchError) Unwrap() error { return ErrNamespaceMismatch }
