package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType classifies failures of the census pipeline
type ErrorType string

const (
	ErrTypeSourceUnavailable ErrorType = "SOURCE_UNAVAILABLE"
	ErrTypeParsing           ErrorType = "PARSING"
	ErrTypeSchemaMismatch    ErrorType = "SCHEMA_MISMATCH"
	ErrTypeStorage           ErrorType = "STORAGE"
	ErrTypeValidation        ErrorType = "VALIDATION"
	ErrTypeConfig            ErrorType = "CONFIG"
	ErrTypeNotFound          ErrorType = "NOT_FOUND"
	ErrTypeNoData            ErrorType = "NO_DATA"
)

// HTTPStatus is the status an error of this type is served with
func (t ErrorType) HTTPStatus() int {
	switch t {
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeNoData:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrNoData is returned when no requested year produced any canonical record.
// It is the only loader outcome that aborts a run.
var ErrNoData = NewAppError(ErrTypeNoData, "no data loaded for the requested years", nil)

// AppError is a typed pipeline error. Fields carries the values needed to
// act on it, such as the offending path.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Fields  map[string]any
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(e.Type)))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches an AppError of the same type and message, so a wrapped
// sentinel such as ErrNoData still satisfies errors.Is
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Type == e.Type && t.Message == e.Message
}

// With records a field on the error and returns it
func (e *AppError) With(key string, value any) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// NewAppError creates a typed error
func NewAppError(t ErrorType, message string, cause error) *AppError {
	return &AppError{Type: t, Message: message, Cause: cause}
}

// TypeOf returns the type of the first AppError in err's chain, or ""
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// NewSourceUnavailableError reports a source file that is absent or cannot be opened
func NewSourceUnavailableError(path string, cause error) *AppError {
	return NewAppError(ErrTypeSourceUnavailable, "source unavailable", cause).With("path", path)
}

// NewParsingError reports a source that opened but could not be decoded
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewSchemaMismatchError reports a concept none of whose aliases are present
func NewSchemaMismatchError(concept string) *AppError {
	return NewAppError(ErrTypeSchemaMismatch, "no column for "+concept, nil).With("concept", concept)
}

func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil).With("resource", resource)
}

func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
