package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/rowfilter/internal/filter"
)

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Output is everything the filter wrote.
	Output string `json:"output"`

	// Report is nil when the run failed.
	Report *filter.Report `json:"report,omitempty"`

	// Err is the run error message, empty on success.
	Err string `json:"error,omitempty"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run executes a scenario against an in-memory input.
//
// The returned error reports a scenario that could not be set up; a filter
// that fails or misbehaves is reported through Result instead.
func Run(scenario *Scenario) (*Result, error) {
	types, err := scenario.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to set up scenario %s: %w", scenario.Name, err)
	}

	var out bytes.Buffer
	report, runErr := filter.Run(context.Background(), strings.NewReader(scenario.Input), &out, filter.Options{
		Expression: scenario.Expression,
		SkipLines:  scenario.SkipLines,
		Types:      types,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	result := NewResult()
	result.Output = out.String()
	result.Report = report
	if runErr != nil {
		result.Err = runErr.Error()
	}

	for _, e := range checkExpectations(scenario.Expect, result, runErr) {
		result.AddError(e.Error())
	}
	return result, nil
}
