package types

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorKind classifies an AppError for transport mapping.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindInternal     ErrorKind = "internal"
)

// AppError is the error type returned by services and middleware.
// Fields carries per-field messages for validation failures.
type AppError struct {
	Kind    ErrorKind         `json:"type"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s [%s]", e.Kind, e.Message, strings.Join(parts, "; "))
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status maps the error kind to an HTTP status code.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// Validation returns a validation error listing the offending fields.
func Validation(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

// FieldError is a validation error for a single field.
func FieldError(field, message string) *AppError {
	return Validation("validation failed", map[string]string{field: message})
}

func NotFound(format string, args ...any) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal server error", Err: err}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
