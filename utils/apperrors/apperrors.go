package apperrors

import (
	"errors"
	"fmt"
)

// Kind is the stable, user-visible classification of a failure. Handlers map
// kinds to HTTP statuses; internal causes stay in the wrapped error chain and
// are only ever logged.
type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindSlotConflict      Kind = "SLOT_CONFLICT"
	KindInvalidState      Kind = "INVALID_STATE"
	KindNotFound          Kind = "NOT_FOUND"
	KindExternalService   Kind = "EXTERNAL_SERVICE_ERROR"
	KindInternal          Kind = "INTERNAL_ERROR"
)

// Error carries a kind plus a message safe to show to callers. Cause holds
// the internal error chain and is never serialized.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func InvalidTransition(message string) *Error {
	return New(KindInvalidTransition, message)
}

func SlotConflict(message string) *Error {
	return New(KindSlotConflict, message)
}

func InvalidState(message string) *Error {
	return New(KindInvalidState, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func External(message string, cause error) *Error {
	return Wrap(KindExternalService, message, cause)
}

func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, message, cause)
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message from an error chain.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
