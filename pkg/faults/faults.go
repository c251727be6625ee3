// Package faults defines the error kinds shared by every domain system and
// their mapping onto HTTP status codes.
package faults

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds. Domain errors wrap exactly one of these.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidOverride = errors.New("invalid override")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
)

// Error carries a human-readable detail and the offending values alongside its kind.
type Error struct {
	Kind   error
	Detail string
	Values []any
}

func (e *Error) Error() string {
	return e.Detail
}

// Unwrap exposes the kind to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

// NotFound builds an ErrNotFound error.
func NotFound(format string, args ...any) *Error {
	return newError(ErrNotFound, format, args...)
}

// InvalidOverride builds an ErrInvalidOverride error.
func InvalidOverride(format string, args ...any) *Error {
	return newError(ErrInvalidOverride, format, args...)
}

// Validation builds an ErrValidation error.
func Validation(format string, args ...any) *Error {
	return newError(ErrValidation, format, args...)
}

// Conflict builds an ErrConflict error.
func Conflict(format string, args ...any) *Error {
	return newError(ErrConflict, format, args...)
}

// With attaches the values that caused the error.
func (e *Error) With(values ...any) *Error {
	e.Values = append(e.Values, values...)
	return e
}

// KindName returns the wire name of the error kind, or "internal" for
// errors outside the taxonomy.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidOverride):
		return "invalid_override"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	}
	return "internal"
}

// ValuesOf returns the offending values carried by err, if any.
func ValuesOf(err error) []any {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Values
	}
	return nil
}

// MapHTTPStatus maps error kinds to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidOverride):
		return http.StatusBadRequest
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// JoinIDs renders ids as a comma-separated list for error details.
func JoinIDs[T any](ids []T) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	}
}
