package shared

import "errors"

// ErrorKind classifies a domain error by how a caller is expected to react to it.
type ErrorKind string

const (
	// KindValidation marks malformed or out-of-range input. Never retried.
	KindValidation ErrorKind = "VALIDATION"
	// KindNotFound marks an unresolved identifier.
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindState marks an operation that is illegal in the entity's current state.
	KindState ErrorKind = "STATE"
	// KindInsufficientResource marks stock, payment or points that fall short.
	KindInsufficientResource ErrorKind = "INSUFFICIENT_RESOURCE"
	// KindTransientConflict marks exhausted optimistic retries. The only retryable kind.
	KindTransientConflict ErrorKind = "TRANSIENT_CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so that sentinel comparisons survive
// message customisation.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Retryable reports whether the failed operation may be retried as-is.
func (e *DomainError) Retryable() bool {
	return e.Kind == KindTransientConflict
}

// NewDomainError creates a new validation-kind domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates an error for caller-fixable input problems
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewNotFoundError creates an error for an unresolved identifier
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: code, Message: message}
}

// NewStateError creates an error for an operation illegal in the current state
func NewStateError(code, message string) *DomainError {
	return &DomainError{Kind: KindState, Code: code, Message: message}
}

// NewInsufficientError creates an error for a resource that falls short
func NewInsufficientError(code, message string) *DomainError {
	return &DomainError{Kind: KindInsufficientResource, Code: code, Message: message}
}

// NewConflictError creates a retryable concurrency error
func NewConflictError(code, message string) *DomainError {
	return &DomainError{Kind: KindTransientConflict, Code: code, Message: message}
}

// KindOf returns the kind of a domain error, or "" when err is not one.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsRetryable reports whether err is a transient conflict.
func IsRetryable(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Retryable()
}

// Common domain errors
var (
	ErrNotFound            = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewValidationError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewConflictError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrTransientConflict   = NewConflictError("TRANSIENT_CONFLICT", "Operation kept conflicting with concurrent updates, retry later")
	ErrInvalidState        = NewStateError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewInsufficientError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInsufficientPayment = NewInsufficientError("INSUFFICIENT_PAYMENT", "Payment does not cover the invoice total")
	ErrInsufficientPoints  = NewInsufficientError("INSUFFICIENT_POINTS", "Insufficient loyalty points")
)
