package filter

import (
	"fmt"
	"math"
	"strings"
)

// Report summarizes one pass over the input. Counters only grow during the
// pass and the Report is read-only once Run returns it.
type Report struct {
	// Expression is the filter expression the run used.
	Expression string `json:"expression"`

	// TotalLines counts every line read, headers and comments included.
	TotalLines int `json:"total_lines"`

	// HeaderLines counts lines copied verbatim because of the skip count.
	HeaderLines int `json:"header_lines"`

	// SkippedLines counts blank lines and lines starting with '#'.
	SkippedLines int `json:"skipped_lines"`

	// InvalidLines counts data lines whose coercion or evaluation failed.
	InvalidLines int `json:"invalid_lines"`

	// FirstInvalidLine is the 0-based index of the first invalid line.
	// Meaningful only when InvalidLines > 0.
	FirstInvalidLine int `json:"first_invalid_line"`

	// FirstInvalidContent is the raw text of the first invalid line.
	FirstInvalidContent string `json:"first_invalid_content,omitempty"`

	// FirstInvalidError describes why the first invalid line was rejected.
	FirstInvalidError string `json:"first_invalid_error,omitempty"`

	// KeptLines counts lines written to the output, headers included.
	KeptLines int `json:"kept_lines"`
}

// ValidLines is TotalLines minus blank and comment lines.
func (r *Report) ValidLines() int {
	return r.TotalLines - r.SkippedLines
}

// KeptPercent is the share of valid lines kept, rounded to two decimals.
// It is 0 when there are no valid lines.
func (r *Report) KeptPercent() float64 {
	valid := r.ValidLines()
	if valid <= 0 {
		return 0
	}
	return math.Round(10000*float64(r.KeptLines)/float64(valid)) / 100
}

// recordInvalid counts an invalid line, keeping only the first occurrence.
func (r *Report) recordInvalid(index int, line string, err error) {
	if r.InvalidLines == 0 {
		r.FirstInvalidLine = index
		r.FirstInvalidContent = line
		r.FirstInvalidError = err.Error()
	}
	r.InvalidLines++
}

// String renders the human-readable summary: one sentence per line, each
// present only when it applies.
func (r *Report) String() string {
	var sb strings.Builder

	if valid := r.ValidLines(); valid > 0 {
		fmt.Fprintf(&sb, "Kept %.2f%% of %d valid lines (%d total lines)\n",
			100*float64(r.KeptLines)/float64(valid), valid, r.TotalLines)
	} else {
		fmt.Fprintf(&sb, "No lines kept. Check filter condition '%s', see tool tips, syntax and examples\n", r.Expression)
	}

	if r.InvalidLines > 0 {
		fmt.Fprintf(&sb, "Skipped %d invalid line(s) starting at line %d: '%s'\n",
			r.InvalidLines, r.FirstInvalidLine, r.FirstInvalidContent)
	}

	if r.SkippedLines > 0 {
		fmt.Fprintf(&sb, "Skipped %d comment (starting with #) or blank line(s)\n", r.SkippedLines)
	}

	return sb.String()
}
