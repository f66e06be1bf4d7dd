// Package apperror defines the error kinds shared by the service and HTTP layers.
//
// Services return these; handler.writeError maps them to status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrMissingParameter  = errors.New("missing parameter")
	ErrInvalidSchema     = errors.New("invalid schema")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNotFound          = errors.New("not found")
	ErrUpdateFailed      = errors.New("update failed")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrRateLimited       = errors.New("rate limited")
	ErrPayloadTooLarge   = errors.New("payload too large")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field or parameter causing the error
	Cause   error  // Optional: underlying failure, never shown to clients
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// MissingParameter reports a required query parameter that was absent or blank.
func MissingParameter(param string) *AppError {
	return &AppError{
		Err:     ErrMissingParameter,
		Message: fmt.Sprintf("%s query required", param),
		Field:   param,
	}
}

func InvalidSchema(field, message string) *AppError {
	return &AppError{
		Err:     ErrInvalidSchema,
		Message: message,
		Field:   field,
	}
}

func InvalidIdentifier(resource, id string) *AppError {
	return &AppError{
		Err:     ErrInvalidIdentifier,
		Message: fmt.Sprintf("invalid %s id %q", resource, id),
		Field:   "id",
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// UpdateFailed hides the store failure behind a fixed message.
func UpdateFailed(resource string, cause error) *AppError {
	return &AppError{
		Err:     ErrUpdateFailed,
		Message: fmt.Sprintf("Failed to update %s", resource),
		Cause:   cause,
	}
}

func StoreUnavailable(cause error) *AppError {
	return &AppError{
		Err:     ErrStoreUnavailable,
		Message: "document store unavailable",
		Cause:   cause,
	}
}

func RateLimited() *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Message: "rate limit exceeded",
	}
}

// PayloadTooLarge reports a request body over the accepted size.
func PayloadTooLarge(limit int64) *AppError {
	return &AppError{
		Err:     ErrPayloadTooLarge,
		Message: fmt.Sprintf("request body exceeds %d bytes", limit),
	}
}
