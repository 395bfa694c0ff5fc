// Package apperror provides structured error handling following RFC 7807 Problem Details.
// Every failure leaving the data-access layer is an AppError so callers can branch on its kind.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"
	CodeTxDone   = "TRANSACTION_FINALIZED"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// Kind is the coarse classification callers branch on.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindNotFound
	KindDuplicate
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "BadRequest"
	case KindNotFound:
		return "NotFound"
	case KindDuplicate:
		return "Duplicate"
	default:
		return "Internal"
	}
}

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (entity, id, field)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// Kind maps the error code onto one of the four caller-visible kinds.
func (e *AppError) Kind() Kind {
	switch e.Code {
	case CodeValidation, CodeInvalidInput:
		return KindBadRequest
	case CodeNotFound:
		return KindNotFound
	case CodeDuplicate:
		return KindDuplicate
	default:
		return KindInternal
	}
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidInput creates a bad request error for malformed identifiers and references (400)
func NewInvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewDatabase wraps a store failure (connectivity, protocol, constraint other than unique).
func NewDatabase(op string, err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    op + " failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewTimeout creates a timeout error, e.g. when no pooled connection became available.
func NewTimeout(op string, err error) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    op + " timed out",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewTxDone is returned for any use of a transaction after commit or rollback.
func NewTxDone(state string) *AppError {
	return &AppError{
		Code:       CodeTxDone,
		Message:    "transaction already " + state,
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"state": state},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf classifies any error. Errors that are not AppError are Internal.
func KindOf(err error) Kind {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind()
	}
	return KindInternal
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// IsDuplicate checks if error is CodeDuplicate
func IsDuplicate(err error) bool {
	return err != nil && KindOf(err) == KindDuplicate
}

// IsBadRequest checks if error is a validation or invalid input error
func IsBadRequest(err error) bool {
	return err != nil && KindOf(err) == KindBadRequest
}

// IsTxDone checks if error reports use of a finalized transaction
func IsTxDone(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeTxDone
	}
	return false
}
