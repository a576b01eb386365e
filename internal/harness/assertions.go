package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/rowfilter/internal/filter"
)

// AssertionError is returned when an expectation fails.
type AssertionError struct {
	Field    string // expect field that failed
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

func checkExpectations(expect Expect, result *Result, runErr error) []*AssertionError {
	var failures []*AssertionError
	fail := func(field, expected, actual string) {
		failures = append(failures, &AssertionError{Field: field, Expected: expected, Actual: actual})
	}

	if expect.Error != "" {
		switch {
		case runErr == nil:
			fail("error", fmt.Sprintf("error containing %q", expect.Error), "run succeeded")
		case !strings.Contains(runErr.Error(), expect.Error):
			fail("error", fmt.Sprintf("error containing %q", expect.Error), runErr.Error())
		}
		if expect.ErrorKind != "" && runErr != nil {
			var ce *filter.CompileError
			if !errors.As(runErr, &ce) {
				fail("error_kind", expect.ErrorKind, "not a compile error")
			} else if string(ce.Kind) != expect.ErrorKind {
				fail("error_kind", expect.ErrorKind, string(ce.Kind))
			}
		}
	} else if runErr != nil {
		fail("error", "no error", runErr.Error())
	}

	if expect.Output != nil && *expect.Output != result.Output {
		fail("output", fmt.Sprintf("%q", *expect.Output), fmt.Sprintf("%q", result.Output))
	}

	r := result.Report
	if r == nil {
		if expect.Report != nil || expect.Kept != nil || expect.Invalid != nil ||
			expect.Skipped != nil || expect.FirstInvalidLine != nil {
			fail("report", "a report", "run failed before reporting")
		}
		return failures
	}

	if expect.Report != nil && *expect.Report != r.String() {
		fail("report", fmt.Sprintf("%q", *expect.Report), fmt.Sprintf("%q", r.String()))
	}
	checkCount := func(field string, want *int, got int) {
		if want != nil && *want != got {
			fail(field, fmt.Sprint(*want), fmt.Sprint(got))
		}
	}
	checkCount("kept", expect.Kept, r.KeptLines)
	checkCount("invalid", expect.Invalid, r.InvalidLines)
	checkCount("skipped", expect.Skipped, r.SkippedLines)
	if expect.FirstInvalidLine != nil && r.InvalidLines == 0 {
		fail("first_invalid_line", fmt.Sprint(*expect.FirstInvalidLine), "no invalid lines")
	} else {
		checkCount("first_invalid_line", expect.FirstInvalidLine, r.FirstInvalidLine)
	}

	return failures
}
