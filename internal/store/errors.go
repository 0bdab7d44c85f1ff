package store

import (
	"fmt"
	"net/http"
	"strings"
)

// Error is a store error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a store error with the same status code.
// Lets derived sentinels (WithMessage, WithCause) keep matching their base.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{
		Code:    e.Code,
		Message: msg,
		Err:     e.Err,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
	}

	ErrInvalidInput = &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid input",
	}

	// Per-collection not-found sentinels so callers can tell which
	// reference in a multi-document operation failed to resolve.
	ErrUserNotFound     = ErrNotFound.WithMessage("user not found")
	ErrCategoryNotFound = ErrNotFound.WithMessage("category not found")
	ErrBookmarkNotFound = ErrNotFound.WithMessage("bookmark not found")
	ErrSessionNotFound  = ErrNotFound.WithMessage("session not found")

	ErrDuplicateUser     = ErrAlreadyExists.WithMessage("username or email already taken")
	ErrDuplicateCategory = ErrAlreadyExists.WithMessage("category already exists")
	ErrDuplicateBookmark = ErrAlreadyExists.WithMessage("bookmark already exists")
	ErrDuplicateSession  = ErrAlreadyExists.WithMessage("session already exists")
)

// normalizeLookup lowercases and trims a value used as a unique index key.
func normalizeLookup(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
