// Package ncerr implements the NOODLES server error taxonomy: a small
// closed set of error codes that every validation, referential, dispatch,
// and handler failure path is expressed in terms of.
package ncerr

import "fmt"

// Code identifies the category of a NOODLES server error.
type Code uint16

const (
	// CodeNone is the zero value; never used on a constructed Error.
	CodeNone Code = iota

	// CodeNotFound indicates a lookup (component, name) found nothing.
	CodeNotFound

	// CodeInUse indicates a delete failed because live referrers exist.
	CodeInUse

	// CodeInvalidArgument indicates a dangling reference, missing
	// required field, bad enum, or non-finite numeric value.
	CodeInvalidArgument

	// CodeMethodNotFound indicates an unknown method ID or a method not
	// attached to the invoked context.
	CodeMethodNotFound

	// CodeInternalError wraps any unrecognized handler error.
	CodeInternalError
)

// String returns the name of the code, used in error messages and
// metric labels. The MethodException on the wire carries the numeric
// code, not this name.
func (c Code) String() string {
	switch c {
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeInUse:
		return "IN_USE"
	case CodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case CodeMethodNotFound:
		return "METHOD_NOT_FOUND"
	case CodeInternalError:
		return "INTERNAL_ERROR"
	default:
		return "NONE"
	}
}

// Error is the structured error type used across the server core. It
// carries enough information to be encoded directly as a MethodException
// payload by pkg/dispatch.
type Error struct {
	Code    Code
	Message string
	Data    any // optional extra payload, encoded verbatim when present
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New constructs an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithData attaches an optional data payload and returns the same Error
// for chaining.
func (e *Error) WithData(data any) *Error {
	e.Data = data
	return e
}

// NotFound is a convenience constructor for the common lookup-miss case.
func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, format, args...)
}

// InUse is a convenience constructor for referential-integrity failures.
func InUse(format string, args ...any) *Error {
	return New(CodeInUse, format, args...)
}

// InvalidArgument is a convenience constructor for validation failures.
func InvalidArgument(format string, args ...any) *Error {
	return New(CodeInvalidArgument, format, args...)
}

// MethodNotFound is a convenience constructor for dispatch-resolution
// failures.
func MethodNotFound(format string, args ...any) *Error {
	return New(CodeMethodNotFound, format, args...)
}

// Internal is a convenience constructor wrapping an unrecognized error.
func Internal(err error) *Error {
	return &Error{Code: CodeInternalError, Message: err.Error()}
}

// As extracts a *Error from err, returning (nil, false) if err is not one.
func As(err error) (*Error, bool) {
	ne, ok := err.(*Error)
	return ne, ok
}
