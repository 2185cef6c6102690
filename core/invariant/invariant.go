// Package invariant holds the contract checks shared by the texstack core.
//
// Expression trees, stacks and documents are immutable values whose shape is
// fixed by their constructors. A failed check here means a caller broke that
// shape, so every function panics. Failures a user can cause (an empty stack,
// a missing prefix argument) are reported through core/errs instead.
package invariant

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
)

// Precondition guards arguments on entry.
//
//	func NewInfix(operands, operators []Expr, splitAt int) *Infix {
//	    invariant.Precondition(len(operators) == len(operands)-1, "operator count mismatch")
//	    ...
//	}
func Precondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition guards a result before it is handed back.
func Postcondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant guards internal consistency in the middle of an algorithm,
// e.g. the operand count while reducing an operator-precedence stack.
func Invariant(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// NotNil rejects nil, including a typed nil such as (*Text)(nil) held in an
// Expr interface.
func NotNil(value interface{}, name string) {
	if value == nil || typedNil(value) {
		fail("PRECONDITION", "%s must not be nil", name)
	}
}

func typedNil(value interface{}) bool {
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	}
	return false
}

// InRange rejects value outside the closed interval [lo, hi]. Slice indices
// are checked as InRange(i, 0, len(s)-1, "index").
func InRange(value, lo, hi int, name string) {
	if value < lo || value > hi {
		fail("PRECONDITION", "%s must be in range [%d, %d], got %d", name, lo, hi, value)
	}
}

// ContextNotBackground rejects a nil or Background context. Calls that can
// block on an external engine or the filesystem must be cancellable by the
// caller.
func ContextNotBackground(ctx context.Context, location string) {
	switch {
	case ctx == nil:
		fail("PRECONDITION", "%s: context must not be nil", location)
	case ctx == context.Background():
		fail("PRECONDITION", "%s: context must not be Background() - pass the caller's context", location)
	}
}

// fail panics with the violation kind, the message and the first frame
// outside this package.
func fail(kind, format string, args ...interface{}) {
	msg := kind + " VIOLATION: " + fmt.Sprintf(format, args...)

	pc := make([]uintptr, 1)
	if runtime.Callers(3, pc) > 0 {
		frame, _ := runtime.CallersFrames(pc).Next()
		msg += fmt.Sprintf("\n  at %s (%s:%d)", frame.Function, frame.File, frame.Line)
	}
	panic(msg)
}
