package filter

import (
	"errors"
	"fmt"
)

// CompileErrorKind distinguishes the two ways an expression is rejected.
type CompileErrorKind string

const (
	// CompileSyntax indicates the expression text did not parse.
	CompileSyntax CompileErrorKind = "syntax"

	// CompileValidation indicates the expression parsed but failed the dry
	// run against the representative row.
	CompileValidation CompileErrorKind = "validation"
)

// CompileError is returned by Compile when an expression is rejected before
// any data line is read.
type CompileError struct {
	Kind       CompileErrorKind
	Expression string
	Err        error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Kind == CompileSyntax {
		return fmt.Sprintf("could not compile expression '%s', check the syntax: %v", e.Expression, e.Err)
	}
	return fmt.Sprintf("expression test failed for '%s', check the syntax and column types: %v", e.Expression, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// IsCompileError returns true if err is or wraps a *CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}

// IOOp names the stream operation that failed.
type IOOp string

const (
	OpRead  IOOp = "read"
	OpWrite IOOp = "write"
	OpFlush IOOp = "flush"
)

// IOError is a fatal stream failure during a run. Line is the 0-based line
// index being processed, or -1 for the final flush.
type IOError struct {
	Op   IOOp
	Line int
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	switch {
	case e.Op == OpRead:
		return fmt.Sprintf("failed to read input at line %d: %v", e.Line, e.Err)
	case e.Line >= 0:
		return fmt.Sprintf("failed to write output at line %d: %v", e.Line, e.Err)
	default:
		return fmt.Sprintf("failed to write output: %v", e.Err)
	}
}

func (e *IOError) Unwrap() error {
	return e.Err
}
