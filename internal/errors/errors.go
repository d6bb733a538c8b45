package errors

import (
	"errors"
	"fmt"
)

// Code categorizes errors crossing package boundaries
type Code string

const (
	// CodeUnknown indicates an unclassified error
	CodeUnknown Code = "unknown"

	// CodeInvalidArgument indicates the caller supplied a bad value
	CodeInvalidArgument Code = "invalid_argument"

	// CodeNotFound indicates a requested resource was not found
	CodeNotFound Code = "not_found"

	// CodeFailedPrecondition indicates an operation was rejected because
	// the client is not in a state that allows it (not your turn, a move
	// already in flight, movement mode not armed)
	CodeFailedPrecondition Code = "failed_precondition"

	// CodeUnavailable indicates the arena server could not be reached or
	// answered with a transport-level failure
	CodeUnavailable Code = "unavailable"

	// CodeRejected indicates the server answered cleanly but refused the
	// operation (success=false in the response body)
	CodeRejected Code = "rejected"

	// CodeInternal indicates an internal client error
	CodeInternal Code = "internal"
)

// Error is an application error with a code and optional metadata
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta adds metadata to the error (builder pattern)
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates a new error with the given code and message
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new error with a formatted message
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with additional context, preserving the code when
// the cause is already a coded error
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return &Error{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}

	return &Error{
		Code:    CodeUnknown,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error and forces a specific code
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}

	wrapped := Wrap(err, message)
	wrapped.Code = code
	return wrapped
}

// Helper constructors for the common codes

// InvalidArgument creates an invalid argument error
func InvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, message)
}

// InvalidArgumentf creates a formatted invalid argument error
func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

// NotFound creates a not found error
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// NotFoundf creates a formatted not found error
func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

// FailedPrecondition creates a failed precondition error
func FailedPrecondition(message string) *Error {
	return New(CodeFailedPrecondition, message)
}

// FailedPreconditionf creates a formatted failed precondition error
func FailedPreconditionf(format string, args ...any) *Error {
	return Newf(CodeFailedPrecondition, format, args...)
}

// Unavailable creates an unavailable error
func Unavailable(message string) *Error {
	return New(CodeUnavailable, message)
}

// Rejected creates a server-rejected error
func Rejected(message string) *Error {
	return New(CodeRejected, message)
}

// Rejectedf creates a formatted server-rejected error
func Rejectedf(format string, args ...any) *Error {
	return Newf(CodeRejected, format, args...)
}

// Internal creates an internal error
func Internal(message string) *Error {
	return New(CodeInternal, message)
}

// Internalf creates a formatted internal error
func Internalf(format string, args ...any) *Error {
	return Newf(CodeInternal, format, args...)
}

// Is checks if the error carries a specific code
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return Is(err, CodeNotFound)
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return Is(err, CodeInvalidArgument)
}

// IsFailedPrecondition checks if the error is a failed precondition error
func IsFailedPrecondition(err error) bool {
	return Is(err, CodeFailedPrecondition)
}

// IsUnavailable checks if the error is an unavailable error
func IsUnavailable(err error) bool {
	return Is(err, CodeUnavailable)
}

// IsRejected checks if the error is a server-rejected error
func IsRejected(err error) bool {
	return Is(err, CodeRejected)
}

// GetCode returns the error code, CodeUnknown for foreign errors
func GetCode(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}
