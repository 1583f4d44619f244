package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failure categories callers may branch on.
type Kind string

const (
	KindNotFound      Kind = "NOT_FOUND"
	KindConflict      Kind = "CONFLICT"
	KindInvalidState  Kind = "INVALID_STATE"
	KindAlreadyExists Kind = "ALREADY_EXISTS"
	KindValidation    Kind = "VALIDATION"
	KindUnauthorized  Kind = "UNAUTHORIZED"
	KindForbidden     Kind = "FORBIDDEN"
	KindInternal      Kind = "INTERNAL"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Path    string `json:"path,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing kind and code so cloned sentinels compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// New creates a new Error instance.
func New(kind Kind, code string, status int, message string) *Error {
	return &Error{Kind: kind, Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, kind Kind, code string, status int, message string) *Error {
	return &Error{Kind: kind, Code: code, Status: status, Message: message, Err: err}
}

// Internal wraps an infrastructure failure as an INTERNAL error.
func Internal(err error, message string) *Error {
	return Wrap(err, KindInternal, ErrInternal.Code, ErrInternal.Status, message)
}

// Validation wraps a payload validation failure.
func Validation(err error, message string) *Error {
	return Wrap(err, KindValidation, ErrValidation.Code, ErrValidation.Status, message)
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New(KindNotFound, "NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New(KindForbidden, "FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New(KindUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New(KindConflict, "CONFLICT", http.StatusConflict, "conflict")
	ErrScheduleConflict   = New(KindConflict, "SCHEDULE_CONFLICT", http.StatusConflict, "schedule conflict")
	ErrActiveWindowExists = New(KindConflict, "ACTIVE_WINDOW_EXISTS", http.StatusBadRequest, "there is already an upcoming or ongoing registration")
	ErrCapacityExceeded   = New(KindConflict, "CAPACITY_EXCEEDED", http.StatusBadRequest, "student capacity is full")
	ErrInvalidState       = New(KindInvalidState, "INVALID_STATE", http.StatusBadRequest, "invalid state")
	ErrInvalidTransition  = New(KindInvalidState, "INVALID_STATE_TRANSITION", http.StatusBadRequest, "invalid status transition")
	ErrAlreadyEnrolled    = New(KindAlreadyExists, "ALREADY_ENROLLED", http.StatusBadRequest, "student already enrolled")
	ErrAlreadyExists      = New(KindAlreadyExists, "ALREADY_EXISTS", http.StatusBadRequest, "resource already exists")
	ErrValidation         = New(KindValidation, "VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New(KindInternal, "INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New(KindNotFound, "CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err, ErrInternal.Message)
}

// KindOf reports the category of err, INTERNAL for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return FromError(err).Kind
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithPath returns a copy annotated with the offending field path.
func WithPath(err *Error, path, message string) *Error {
	clone := Clone(err, message)
	if clone != nil {
		clone.Path = path
	}
	return clone
}
