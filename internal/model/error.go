package model

import "errors"

// Standard error codes shared with the backend API.
const (
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeRequestFailed     = "REQUEST_FAILED"
	ErrCodeSessionSave       = "SESSION_SAVE_FAILED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// APIError is the single error type surfaced by the API client. Code is
// the machine-readable signal callers match on; Message is human-readable
// and safe to render. Raw HTTP status codes are never exposed.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error.
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// ErrorCode extracts the machine-readable code from an error, or an empty
// string when the error carries none.
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// IsCode reports whether the error carries the given code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
