package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/rowfilter/internal/config"
	"github.com/roach88/rowfilter/internal/fileio"
	"github.com/roach88/rowfilter/internal/filter"
	"github.com/roach88/rowfilter/internal/runid"
	"github.com/roach88/rowfilter/internal/store"
	"github.com/roach88/rowfilter/internal/value"
)

// jobFlags are the flags that describe a job. Commands register the subset
// they need; resolveJob only looks at flags that were set.
type jobFlags struct {
	InFile     string
	OutFile    string
	Expression string
	SkipLines  int
	Types      string
	Job        string
	History    string
}

// FilterOptions holds flags for the filter command.
type FilterOptions struct {
	*RootOptions
	jobFlags

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs runid.Generator

	// Now allows overriding the clock used for history timestamps (for testing).
	// If nil, defaults to time.Now.
	Now func() time.Time
}

// FilterResult is the outcome of a successful filter run.
type FilterResult struct {
	RunID       string         `json:"run_id,omitempty"`
	Fingerprint string         `json:"fingerprint"`
	Report      *filter.Report `json:"report"`
}

// String renders the summary printed after a run.
func (r FilterResult) String() string {
	return r.Report.String()
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	return newFilterCommand(&FilterOptions{RootOptions: rootOpts})
}

func newFilterCommand(opts *FilterOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Keep the rows matching an expression",
		Long: `Stream a tab-separated file and keep the rows for which the expression
is true. The expression is compiled and checked against the declared column
types before any file is opened.

Input compressed with gzip or zstd is detected from its first bytes. Output
is compressed when its path ends in .gz or .zst. Use - for stdin or stdout.

The summary goes to stdout when rows are written to a file, and to stderr
when the rows themselves go to stdout.

Example:
  rowfilter filter -i genes.bed -o long.bed -t str,int,int -e 'c3-c2>=2000'
  rowfilter filter --job long-genes.yaml --history runs.db
  zcat genes.bed.gz | rowfilter filter -t str -e 'c1=="chr1"' > chr1.bed`,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(opts, cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.InFile, "in-file", "i", fileio.Stdio, "input file (- for stdin)")
	flags.StringVarP(&opts.OutFile, "out-file", "o", fileio.Stdio, "output file (- for stdout)")
	flags.StringVarP(&opts.Expression, "expression", "e", "", "filter expression, e.g. 'c1==\"chr1\" && c3-c2>=2000'")
	flags.IntVarP(&opts.SkipLines, "skip-lines", "s", 0, "number of header lines copied through unfiltered")
	flags.StringVarP(&opts.Types, "types", "t", "", "comma-separated column types (str,int,float,bool,none,list)")
	flags.StringVar(&opts.Job, "job", "", "job file (.yaml, .yml or .cue); flags override its values")
	flags.StringVar(&opts.History, "history", "", "SQLite database to record the run in")

	return cmd
}

func runFilter(opts *FilterOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    reportWriter(cmd, opts.OutFile),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	job, err := resolveJob(cmd, &opts.jobFlags)
	if err != nil {
		return failJob(formatter, err)
	}
	formatter.Writer = reportWriter(cmd, job.Output)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	// Rejected expressions must never create or truncate the output file.
	columns := filter.ReferencedColumns(job.Expression)
	compiled, err := filter.Compile(job.Expression, columns, job.Types)
	if err != nil {
		return formatter.Fail("expression rejected", err)
	}

	fp, err := job.Fingerprint()
	if err != nil {
		return formatter.FailWith(ExitCommandError, ErrCodeGeneric, "failed to fingerprint job", err)
	}

	in, err := openInput(cmd, job.Input)
	if err != nil {
		return formatter.FailWith(ExitFailure, ErrCodeIO,
			fmt.Sprintf("Failed to open input file '%s'", displayPath(job.Input, "stdin")), err)
	}
	defer in.Close()
	logInput(logger, in)

	out, err := openOutput(cmd, job.Output)
	if err != nil {
		return formatter.FailWith(ExitFailure, ErrCodeIO,
			fmt.Sprintf("Failed to create output file '%s'", displayPath(job.Output, "stdout")), err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	started := now()

	report, runErr := filter.Run(ctx, in, out, filter.Options{
		Compiled:  compiled,
		SkipLines: job.SkipLines,
		Logger:    logger,
	})
	if runErr != nil {
		// The output is incomplete either way; finishing the encoder would
		// only write to a stream that already failed.
		if err := out.Abort(); err != nil {
			logger.Debug("output abort failed", "output", out.Name(), "error", err)
		}
		return formatter.Fail("filter failed", runErr)
	}
	if closeErr := out.Close(); closeErr != nil {
		return formatter.FailWith(ExitFailure, ErrCodeIO,
			fmt.Sprintf("Failed to write output file '%s'", out.Name()), closeErr)
	}

	result := FilterResult{Fingerprint: fp, Report: report}

	if job.History != "" {
		gen := opts.RunIDs
		if gen == nil {
			gen = runid.UUIDv7Generator{}
		}
		result.RunID = gen.Generate()

		err := recordRun(parentCtx, job.History, store.Run{
			ID:          result.RunID,
			Fingerprint: fp,
			StartedAt:   started,
			Duration:    now().Sub(started),
			Input:       in.Name(),
			Output:      out.Name(),
			Expression:  job.Expression,
			Types:       job.Types,
			SkipLines:   job.SkipLines,
			Report:      *report,
		})
		if err != nil {
			return formatter.FailWith(ExitFailure, ErrCodeHistory, "failed to record run", err)
		}
		logger.Debug("run recorded", "id", result.RunID, "history", job.History)
	}

	return formatter.Success(result)
}

// resolveJob loads the job file, if any, and applies every flag that was
// set explicitly on the command line.
func resolveJob(cmd *cobra.Command, f *jobFlags) (config.Job, error) {
	var job config.Job
	if f.Job != "" {
		loaded, err := config.LoadJob(f.Job)
		if err != nil {
			return config.Job{}, err
		}
		job = *loaded
	} else {
		job.Input, job.Output = f.InFile, f.OutFile
	}

	flags := cmd.Flags()
	var o config.Overrides
	if flags.Changed("in-file") {
		o.Input = &f.InFile
	}
	if flags.Changed("out-file") {
		o.Output = &f.OutFile
	}
	if flags.Changed("expression") {
		o.Expression = &f.Expression
	}
	if flags.Changed("skip-lines") {
		o.SkipLines = &f.SkipLines
	}
	if flags.Changed("types") {
		types, err := value.ParseTypes(f.Types)
		if err != nil {
			return config.Job{}, fmt.Errorf("--types: %w", err)
		}
		o.Types, o.TypesSet = types, true
	}
	if flags.Changed("history") {
		o.History = &f.History
	}

	job = job.Apply(o)
	if err := job.Validate(); err != nil {
		return config.Job{}, err
	}
	return job, nil
}

func failJob(formatter *OutputFormatter, err error) error {
	if config.IsLoadError(err) {
		return formatter.Fail("failed to load job", err)
	}
	return formatter.FailWith(ExitCommandError, ErrCodeUsage, "invalid arguments", err)
}

// reportWriter picks where the summary goes: stderr when the rows go to
// stdout, stdout otherwise.
func reportWriter(cmd *cobra.Command, output string) io.Writer {
	if output == "" || output == fileio.Stdio {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

func openInput(cmd *cobra.Command, path string) (*fileio.Input, error) {
	if path == "" || path == fileio.Stdio {
		return fileio.WrapInput(cmd.InOrStdin(), "stdin")
	}
	return fileio.OpenInput(path)
}

func openOutput(cmd *cobra.Command, path string) (*fileio.Output, error) {
	if path == "" || path == fileio.Stdio {
		return fileio.WrapOutput(cmd.OutOrStdout(), "stdout"), nil
	}
	return fileio.CreateOutput(path)
}

func displayPath(path, stdio string) string {
	if path == "" || path == fileio.Stdio {
		return stdio
	}
	return path
}

func logInput(logger *slog.Logger, in *fileio.Input) {
	attrs := []any{"path", in.Name(), "compression", in.Compression()}
	if in.Size() >= 0 {
		attrs = append(attrs, "size", humanize.Bytes(uint64(in.Size())))
	}
	logger.Info("input opened", attrs...)
}

func recordRun(ctx context.Context, path string, run store.Run) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.RecordRun(ctx, run)
}
