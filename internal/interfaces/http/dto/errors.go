package dto

import (
	"net/http"

	"github.com/erp/pos/internal/domain/shared"
)

// Error codes raised by the HTTP layer itself. Domain errors keep their own
// code and are mapped to a status by kind.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeNotFound is used for unknown routes
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// RetryAfterSeconds is sent with every transient conflict response
const RetryAfterSeconds = 1

// KindHTTPStatus maps domain error kinds to HTTP status codes
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation:           http.StatusBadRequest,
	shared.KindNotFound:             http.StatusNotFound,
	shared.KindState:                http.StatusConflict,
	shared.KindInsufficientResource: http.StatusUnprocessableEntity,
	shared.KindTransientConflict:    http.StatusServiceUnavailable,
}

// StatusForKind returns the HTTP status for a domain error kind.
// Unknown kinds are internal errors.
func StatusForKind(kind shared.ErrorKind) int {
	if status, ok := KindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
