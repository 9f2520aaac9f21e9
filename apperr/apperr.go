package apperr

import "errors"

// Machine-readable error codes returned in the response body.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// Error is a typed API error carrying the machine-readable code and HTTP
// status rendered at the boundary as {"error":{"code","message"}}.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

// Validation builds a 400 error
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Status: 400}
}

// Unauthorized builds a 401 error
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg, Status: 401}
}

// Forbidden builds a 403 error
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg, Status: 403}
}

// NotFound builds a 404 error
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg, Status: 404}
}

// Conflict builds a 409 error
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg, Status: 409}
}

// ServiceUnavailable builds a 503 error for downstream failures
func ServiceUnavailable(msg string) *Error {
	return &Error{Code: CodeServiceUnavailable, Message: msg, Status: 503}
}

// Internal builds a 500 error
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg, Status: 500}
}

// From extracts a typed Error from err, or wraps it as Internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("An unexpected error occurred")
}
