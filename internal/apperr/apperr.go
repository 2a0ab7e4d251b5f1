package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can react without matching on text.
type Kind string

const (
	// KindInvalid indicates malformed input.
	KindInvalid Kind = "INVALID"

	// KindUnauthenticated indicates a missing or unusable identity.
	KindUnauthenticated Kind = "UNAUTHENTICATED"

	// KindForbidden indicates a valid identity without sufficient rights.
	KindForbidden Kind = "FORBIDDEN"

	// KindNotFound indicates the target or a referenced entity is absent.
	KindNotFound Kind = "NOT_FOUND"

	// KindConflict indicates a uniqueness or referential invariant would break.
	KindConflict Kind = "CONFLICT"

	// KindInternal indicates an unexpected fault.
	KindInternal Kind = "INTERNAL"
)

// Error is the single result error type returned by the services layer.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements the unwrap interface
func (e *Error) Unwrap() error {
	return e.Err
}

func Invalid(message string) *Error {
	return &Error{Kind: KindInvalid, Message: message}
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict creates a conflict error. err may carry the violated constraint.
func Conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of err. Errors that are not an *Error are internal;
// a nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the client-facing message of err. Internal details are
// never exposed.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "internal error"
}
