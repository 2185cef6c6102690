// Package errs defines the recoverable error taxonomy shared by the stack,
// the interpreter and the engine bridge.
//
// Errors of the recoverable types are caught at the batch boundary: the batch
// is discarded and the user sees an error flash. Anything else escaping a
// command handler is a defect and propagates to the caller.
package errs

import (
	"errors"
	"fmt"
)

// Error types, grouped by the layer that raises them.
const (
	// Stack errors
	ErrStackUnderflow = "STACK_UNDERFLOW"
	ErrStackType      = "STACK_TYPE_ERROR"

	// Interpreter errors
	ErrPrefixArgumentRequired = "PREFIX_ARGUMENT_REQUIRED"
	ErrUnknownCommand         = "UNKNOWN_COMMAND"
	ErrInvalidArgument        = "INVALID_ARGUMENT"
	ErrMathSyntax             = "MATH_SYNTAX"

	// Engine bridge errors
	ErrEngineConversion = "ENGINE_CONVERSION"
	ErrEngineFailure    = "ENGINE_FAILURE"
)

// recoverable lists the types discarded at the batch boundary.
var recoverable = map[string]bool{
	ErrStackUnderflow:         true,
	ErrStackType:              true,
	ErrPrefixArgumentRequired: true,
	ErrUnknownCommand:         true,
	ErrInvalidArgument:        true,
	ErrMathSyntax:             true,
	ErrEngineConversion:       true,
	ErrEngineFailure:          true,
}

// Error is a recoverable failure. Type is one of the Err constants and
// decides how the batch boundary treats it; Context carries the values a
// front end may want to show next to Message, such as the offending
// expression of an engine conversion.
type Error struct {
	Type    string
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *Error) Error() string {
	msg := e.Type + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error of the given type.
func New(errorType, message string) *Error {
	return &Error{Type: errorType, Message: message, Context: map[string]interface{}{}}
}

// Newf is New with a formatted message.
func Newf(errorType, format string, args ...interface{}) *Error {
	return New(errorType, fmt.Sprintf(format, args...))
}

// Wrap returns an error of the given type around cause, typically an I/O or
// process failure met by the engine bridge.
func Wrap(errorType, message string, cause error) *Error {
	e := New(errorType, message)
	e.Cause = cause
	return e
}

// WithContext records key and returns e, so calls chain off a constructor.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	e.Context[key] = value
	return e
}

// GetContext looks up a value recorded with WithContext.
func (e *Error) GetContext(key string) (interface{}, bool) {
	v, ok := e.Context[key]
	return v, ok
}

// StackUnderflow reports that fewer than needed items are on the stack.
func StackUnderflow(needed, available int) *Error {
	return Newf(ErrStackUnderflow, "need %d item(s), stack has %d", needed, available).
		WithContext("needed", needed).
		WithContext("available", available)
}

// StackType reports that a stack item has the wrong kind.
func StackType(expected string) *Error {
	return Newf(ErrStackType, "expected %s", expected).
		WithContext("expected", expected)
}

// PrefixArgumentRequired reports a command invoked without its numeric prefix.
func PrefixArgumentRequired(command string) *Error {
	return Newf(ErrPrefixArgumentRequired, "%s needs a prefix argument", command).
		WithContext("command", command)
}

// UnknownCommand reports a command name with no registered handler.
func UnknownCommand(name, suggestion string) *Error {
	e := Newf(ErrUnknownCommand, "unknown command %q", name).
		WithContext("command", name)
	if suggestion != "" {
		e.Message += fmt.Sprintf(" (did you mean %q?)", suggestion)
		e.WithContext("suggestion", suggestion)
	}
	return e
}

// InvalidArgument reports a malformed handler argument.
func InvalidArgument(command, format string, args ...interface{}) *Error {
	return Newf(ErrInvalidArgument, "%s: "+format, append([]interface{}{command}, args...)...).
		WithContext("command", command)
}

// MathSyntax reports math-entry text that does not parse.
func MathSyntax(input string, pos int, format string, args ...interface{}) *Error {
	return Newf(ErrMathSyntax, format, args...).
		WithContext("input", input).
		WithContext("position", pos)
}

// Type returns the error type of err, or "" when err is not an *Error.
func Type(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}

// Is reports whether err, or an error it wraps, has the given type.
func Is(err error, errorType string) bool {
	return err != nil && Type(err) == errorType
}

// IsRecoverable reports whether err belongs to the taxonomy discarded at the
// batch boundary.
func IsRecoverable(err error) bool {
	return recoverable[Type(err)]
}
