// Package harness runs conformance scenarios against the filter.
//
// # Scenario Format
//
// Scenarios are YAML files. Input is usually a double-quoted YAML string so
// tab separators can be written as \t:
//
//	name: keep_chr1
//	description: "string equality on the first column"
//	types: [str, int, int]
//	expression: c1=="chr1"
//	skip_lines: 0
//	input: "chr1\t100\t200\nchr2\t300\t400\n"
//	expect:
//	  output: "chr1\t100\t200\n"
//	  kept: 1
//	  invalid: 0
//	  report: "Kept 50.00% of 2 valid lines (2 total lines)\n"
//
// Every expect field is optional. A scenario that must be rejected sets
// expect.error to a substring of the error message, and optionally
// expect.error_kind to "syntax" or "validation".
//
// # Golden Files
//
// RunWithGolden snapshots the output, report and error of a scenario as
// canonical JSON under testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
