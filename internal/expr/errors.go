package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/rowfilter/internal/value"
)

// ErrorCode categorizes expression errors.
type ErrorCode string

const (
	// ErrCodeSyntax indicates the expression text could not be parsed.
	ErrCodeSyntax ErrorCode = "SYNTAX"

	// ErrCodeTypeMismatch indicates an operator or function received a value
	// of a type it does not accept.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeUnknownVariable indicates an identifier that is not a column.
	ErrCodeUnknownVariable ErrorCode = "UNKNOWN_VARIABLE"

	// ErrCodeUnknownFunction indicates a call to a name with no registered function.
	ErrCodeUnknownFunction ErrorCode = "UNKNOWN_FUNCTION"

	// ErrCodeArity indicates a function called with the wrong number of arguments.
	ErrCodeArity ErrorCode = "ARITY"

	// ErrCodeDivisionByZero indicates integer division or modulo by zero.
	ErrCodeDivisionByZero ErrorCode = "DIVISION_BY_ZERO"

	// ErrCodeOverflow indicates integer arithmetic whose result does not fit
	// in 64 bits.
	ErrCodeOverflow ErrorCode = "OVERFLOW"
)

// Error is an expression parse or evaluation error.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Pos is the byte offset in the expression text for syntax errors, -1 otherwise.
	Pos int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Code, e.Pos, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Code returns the ErrorCode of err if it is or wraps an *Error, "" otherwise.
func Code(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsSyntaxError returns true if err is a syntax error.
func IsSyntaxError(err error) bool {
	return Code(err) == ErrCodeSyntax
}

// IsTypeError returns true if err is a type mismatch.
func IsTypeError(err error) bool {
	return Code(err) == ErrCodeTypeMismatch
}

func syntaxErrorf(pos int, format string, args ...any) *Error {
	return &Error{Code: ErrCodeSyntax, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func evalErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Pos: -1}
}

// NewTypeError creates a type mismatch naming the accepted types and the
// value actually received.
func NewTypeError(context string, expected []value.Type, actual value.Value) *Error {
	names := make([]string, len(expected))
	for i, t := range expected {
		names[i] = t.String()
	}
	return evalErrorf(ErrCodeTypeMismatch, "%s: expected %s, got %s %s",
		context, strings.Join(names, " or "), actual.Type(), actual)
}

// NewArityError creates an error for a call with the wrong argument count.
func NewArityError(name string, want, got int) *Error {
	return evalErrorf(ErrCodeArity, "%s expects %d argument(s), got %d", name, want, got)
}
