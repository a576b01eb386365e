package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/rowfilter/internal/config"
	"github.com/roach88/rowfilter/internal/filter"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution, including runs that keep nothing
	ExitFailure      = 1 // Runtime failure (unreadable input, failed write, interrupted run)
	ExitCommandError = 2 // Command error (bad flags, bad job file, rejected expression)
)

// Error codes reported in JSON error responses.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeUsage       = "E002" // Missing or conflicting flags
	ErrCodeSyntax      = "E301" // Expression did not parse
	ErrCodeValidation  = "E302" // Expression failed the dry run
	ErrCodeIO          = "E401" // Input or output failure
	ErrCodeHistory     = "E402" // Run history unavailable
	ErrCodeInterrupted = "E403" // Run cancelled before completion
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	reported bool // already written by an OutputFormatter
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// IsReported returns true if err was already written to the user by an
// OutputFormatter, so the caller should only exit with its code.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.reported
}

// classify maps an error from the filter stack to an exit code and a JSON
// error code.
func classify(err error) (int, string) {
	var ce *filter.CompileError
	var ioErr *filter.IOError
	switch {
	case errors.As(err, &ce):
		if ce.Kind == filter.CompileSyntax {
			return ExitCommandError, ErrCodeSyntax
		}
		return ExitCommandError, ErrCodeValidation
	case config.IsLoadError(err):
		var le *config.LoadError
		errors.As(err, &le)
		return ExitCommandError, le.Code
	case errors.As(err, &ioErr):
		return ExitFailure, ErrCodeIO
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ExitFailure, ErrCodeInterrupted
	default:
		return ExitFailure, ErrCodeGeneric
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E301", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result. Text output prints data with its
// String form, so values that already end in a newline are printed as is.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	if s, ok := data.(fmt.Stringer); ok {
		_, err := io.WriteString(f.Writer, s.String())
		return err
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format. JSON errors go to Writer
// alongside successful responses; text errors go to the error writer.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err through the formatter and returns it as an ExitError
// carrying the exit and error codes for its class.
func (f *OutputFormatter) Fail(message string, err error) error {
	exit, code := classify(err)
	return f.FailWith(exit, code, message, err)
}

// FailWith reports err with an explicit exit code and error code.
func (f *OutputFormatter) FailWith(exit int, code, message string, err error) error {
	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), nil)
	exitErr := WrapExitError(exit, message, err)
	exitErr.reported = true
	return exitErr
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
