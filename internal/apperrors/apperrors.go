package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the transport layer can map it to a status
// code without string matching.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindInvalidInput    Kind = "invalid_input"
	KindForbidden       Kind = "forbidden"
	KindInvalidState    Kind = "invalid_state"
	KindAlreadyPaid     Kind = "already_paid"
	KindPaymentProvider Kind = "payment_provider_error"
	KindStorage         Kind = "storage_error"
)

// Error carries a kind alongside a human-readable reason. Business-rule
// violations are detected before any write, so an Error of one of the
// business kinds implies no partial mutation happened.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports that a referenced entity does not exist.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput reports malformed or out-of-range request data.
func InvalidInput(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports that the actor lacks rights over the resource.
func Forbidden(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// InvalidState reports an operation that is not valid for the entity's
// current state.
func InvalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// AlreadyPaid reports a duplicate successful-payment attempt.
func AlreadyPaid(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAlreadyPaid, Message: fmt.Sprintf(format, args...)}
}

// PaymentProvider wraps a failure from the external payment provider.
func PaymentProvider(message string, err error) *Error {
	return &Error{Kind: KindPaymentProvider, Message: message, Err: err}
}

// Storage wraps a persistence failure.
func Storage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindStorage for untyped errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
