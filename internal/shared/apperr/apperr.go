package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error for propagation and HTTP mapping.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindForbidden     Kind = "forbidden"
	KindExpired       Kind = "expired"
	KindValidation    Kind = "validation_error"
	KindConflict      Kind = "conflict"
	KindRender        Kind = "render_failed"
	KindRenderTimeout Kind = "render_timeout"
	KindDecryption    Kind = "decryption_failed"
	KindDependency    Kind = "dependency_failed"
)

// Sentinels usable with errors.Is; any *Error of the same Kind matches.
var (
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden     = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrExpired       = &Error{Kind: KindExpired, Message: "expired"}
	ErrValidation    = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrConflict      = &Error{Kind: KindConflict, Message: "conflict"}
	ErrRender        = &Error{Kind: KindRender, Message: "render failed"}
	ErrRenderTimeout = &Error{Kind: KindRenderTimeout, Message: "render timed out"}
	ErrDecryption    = &Error{Kind: KindDecryption, Message: "decryption failed"}
	ErrDependency    = &Error{Kind: KindDependency, Message: "dependency failed"}
)

// Error is the typed error carried across service boundaries.
// Reason is a machine-readable refinement of Kind (e.g. "wrong_password").
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, and the Reason too when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// Code returns the machine code exposed to API clients.
func (e *Error) Code() string {
	if e.Reason != "" {
		return e.Reason
	}
	return string(e.Kind)
}

// New builds an error of the given kind with a human-readable message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithReason builds an error of the given kind with a reason code.
func WithReason(kind Kind, reason, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFound is shorthand for a KindNotFound error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Forbidden is shorthand for a KindForbidden error.
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// Validation is shorthand for a KindValidation error.
func Validation(message string) *Error { return New(KindValidation, message) }

// As extracts the *Error in err's chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" when it carries none.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}
