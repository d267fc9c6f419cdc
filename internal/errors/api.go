package errors

import (
	"fmt"
	"net/http"
)

// API error codes returned in the error_code member of a problem
const (
	CodeValidation  = "VALIDATION_FAILED"
	CodeNotFound    = "NOT_FOUND"
	CodeRateLimited = "RATE_LIMIT_EXCEEDED"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError is a request-level failure raised by an HTTP handler
type APIError struct {
	Status  int
	Code    string
	Message string
	// Field names the offending query parameter of a validation failure
	Field string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// ErrValidation reports an invalid query parameter
func ErrValidation(field, message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: CodeValidation, Message: message, Field: field}
}

// NotFoundError reports a missing resource such as a table name
func NotFoundError(resource string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// Unavailable reports that the data behind an endpoint is not ready
func Unavailable(message string) *APIError {
	return &APIError{Status: http.StatusServiceUnavailable, Code: CodeUnavailable, Message: message}
}

// RateLimited reports a request refused by the limiter
func RateLimited() *APIError {
	return &APIError{Status: http.StatusTooManyRequests, Code: CodeRateLimited, Message: "rate limit exceeded, retry later"}
}
