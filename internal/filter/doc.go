// Package filter implements expression-driven row filtering of
// tab-separated text.
//
// A run has three phases:
//
//  1. ReferencedColumns scans the expression for c<N> references.
//  2. Compile parses the expression and dry-runs it against a mock row built
//     from one representative value per declared column type. Expressions
//     that cannot type-check (comparing a string column with a number, calling
//     an unknown function, returning a non-boolean) are rejected here, before
//     a possibly multi-gigabyte input is touched.
//  3. Run streams the input once, in order, on a single goroutine. Header
//     lines pass through, blank and '#' lines are skipped, and every other line
//     is coerced into a reused RowContext and evaluated. A line that fails to
//     coerce or evaluate is counted as invalid; it never aborts the run.
//
// The resulting Report renders as the summary printed after a run.
package filter
