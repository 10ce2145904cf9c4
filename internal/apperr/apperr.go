// Package apperr defines the recoverable error taxonomy the session engine
// reports to the request boundary.
package apperr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies an engine error for HTTP mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalidTransition
	KindAlreadyCompleted
	KindConfirmationRequired
)

// Code returns the wire identifier for the kind.
func (k Kind) Code() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindAlreadyCompleted:
		return "already_completed"
	case KindConfirmationRequired:
		return "confirmation_required"
	default:
		return "internal"
	}
}

// Error carries a kind, a caller-facing message, and for
// confirmation-required failures the set IDs still missing completion.
type Error struct {
	Kind          Kind
	Msg           string
	MissingSetIDs []uuid.UUID
	Err           error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Code()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from err, or KindUnknown for plain errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// As is a convenience wrapper around errors.As for *Error.
func As(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}

// NotFound reports a missing entity.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden reports an ownership violation.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// Conflict reports a business-rule violation such as a second active session.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// InvalidTransition reports an illegal state-machine move.
func InvalidTransition(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTransition, Msg: fmt.Sprintf(format, args...)}
}

// AlreadyCompleted reports an attempt to re-complete a set.
func AlreadyCompleted(format string, args ...any) *Error {
	return &Error{Kind: KindAlreadyCompleted, Msg: fmt.Sprintf(format, args...)}
}

// ConfirmationRequired reports a finish attempt with incomplete sets; the
// caller is expected to re-prompt and retry with the force flag.
func ConfirmationRequired(missing []uuid.UUID) *Error {
	return &Error{
		Kind:          KindConfirmationRequired,
		Msg:           fmt.Sprintf("%d sets are not completed", len(missing)),
		MissingSetIDs: missing,
	}
}
