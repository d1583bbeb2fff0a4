// Package apperrors defines the discriminated error taxonomy surfaced
// by the platform's services, so handlers can branch on kind instead of
// string-matching messages.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindPrecondition Kind = "precondition"
	KindConflict     Kind = "conflict"
	KindProvider     Kind = "provider"
	KindNotFound     Kind = "not_found"
)

type Error struct {
	Kind    Kind
	Message string
	// Fields lists the specific missing or malformed fields for
	// validation errors, so callers re-prompt for exactly those.
	Fields []string
	// Retryable marks provider errors the caller may retry with
	// backoff, as opposed to definitive rejections.
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func Precondition(message string) *Error {
	return &Error{Kind: KindPrecondition, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Provider(message string, retryable bool, err error) *Error {
	return &Error{Kind: KindProvider, Message: message, Retryable: retryable, Err: err}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// IsKind reports whether err (or anything it wraps) is an *Error of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsRetryable reports whether err is a provider error the caller should
// retry with backoff rather than treat as a data problem.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindProvider && e.Retryable
	}
	return false
}

// AsError extracts the typed error, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
