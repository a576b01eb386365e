package filter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/roach88/rowfilter/internal/value"
)

const (
	bufferSize = 64 << 10

	// cancelCheckInterval is how many lines pass between context checks.
	cancelCheckInterval = 4096
)

// Options configures a run.
type Options struct {
	// Expression is the boolean filter expression. It is ignored when
	// Compiled is set.
	Expression string

	// Compiled is an expression already compiled against Types. Callers
	// that validate before opening files pass it here so Run does not
	// compile a second time.
	Compiled *Compiled

	// SkipLines is the number of leading lines copied verbatim as headers.
	SkipLines int

	// Types declares the column types, left to right. Like Expression it
	// is ignored when Compiled is set.
	Types []value.Type

	// Logger receives progress logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Run filters r into w.
//
// The expression is compiled and validated before the first line is read,
// unless opts.Compiled supplies it.
// Lines are then processed strictly in order:
//
//  1. the first SkipLines lines are copied to w untouched;
//  2. blank lines and lines starting with '#' are counted and dropped;
//  3. the referenced fields are coerced and the expression evaluated;
//     lines evaluating to true are written to w followed by '\n'.
//
// A line whose coercion or evaluation fails is counted as invalid and the
// run continues. Compile errors, read and write failures and cancellation
// of ctx abort the run; w is flushed only on success.
func Run(ctx context.Context, r io.Reader, w io.Writer, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SkipLines < 0 {
		return nil, fmt.Errorf("skip lines must not be negative, got %d", opts.SkipLines)
	}

	compiled := opts.Compiled
	if compiled == nil {
		var err error
		compiled, err = Compile(opts.Expression, ReferencedColumns(opts.Expression), opts.Types)
		if err != nil {
			return nil, err
		}
	}

	logger.Info("filter starting",
		"expression", compiled.Expression(),
		"columns", oneBased(compiled.columns),
		"types", compiled.types,
		"skip_lines", opts.SkipLines)

	report := &Report{Expression: compiled.Expression()}
	row := compiled.NewContext()
	br := bufio.NewReaderSize(r, bufferSize)
	bw := bufio.NewWriterSize(w, bufferSize)

	for index := 0; ; index++ {
		if index%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("filter cancelled at line %d: %w", index, err)
			}
		}

		line, err := readLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &IOError{Op: OpRead, Line: index, Err: err}
		}
		report.TotalLines++

		if index < opts.SkipLines {
			if err := writeLine(bw, line); err != nil {
				return nil, &IOError{Op: OpWrite, Line: index, Err: err}
			}
			report.HeaderLines++
			report.KeptLines++
			continue
		}

		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			report.SkippedLines++
			continue
		}

		if err := row.Load(line); err != nil {
			invalidLine(logger, report, index, line, err)
			continue
		}

		keep, err := compiled.Match(row)
		if err != nil {
			invalidLine(logger, report, index, line, err)
			continue
		}
		if !keep {
			continue
		}

		if err := writeLine(bw, line); err != nil {
			return nil, &IOError{Op: OpWrite, Line: index, Err: err}
		}
		report.KeptLines++
	}

	if err := bw.Flush(); err != nil {
		return nil, &IOError{Op: OpFlush, Line: -1, Err: err}
	}

	logger.Info("filter finished",
		"total", humanize.Comma(int64(report.TotalLines)),
		"kept", humanize.Comma(int64(report.KeptLines)),
		"invalid", humanize.Comma(int64(report.InvalidLines)),
		"skipped", humanize.Comma(int64(report.SkippedLines)))

	return report, nil
}

func invalidLine(logger *slog.Logger, report *Report, index int, line string, err error) {
	if report.InvalidLines == 0 {
		logger.Debug("first invalid line", "line", index, "error", err)
	}
	report.recordInvalid(index, line, err)
}

// readLine returns the next line without its "\n" or "\r\n" terminator.
// A final line without a terminator is returned as is; io.EOF is returned
// only once no bytes remain.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func writeLine(bw *bufio.Writer, line string) error {
	if _, err := bw.WriteString(line); err != nil {
		return err
	}
	return bw.WriteByte('\n')
}

// oneBased renders column indices the way expressions spell them.
func oneBased(columns []int) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = fmt.Sprintf("c%d", c+1)
	}
	return names
}
