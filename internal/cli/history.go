package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/rowfilter/internal/config"
	"github.com/roach88/rowfilter/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	History     string
	Job         string
	Fingerprint string
	Limit       int
}

// HistoryResult lists recorded runs, newest first.
type HistoryResult struct {
	Runs []store.Run `json:"runs"`
}

func (r HistoryResult) String() string {
	if len(r.Runs) == 0 {
		return "No runs recorded\n"
	}
	var sb strings.Builder
	for _, run := range r.Runs {
		rep := run.Report
		fmt.Fprintf(&sb, "%s  %s  %s  kept %s of %s valid lines",
			run.ID,
			run.StartedAt.UTC().Format(time.RFC3339),
			run.Fingerprint[:min(12, len(run.Fingerprint))],
			humanize.Comma(int64(rep.KeptLines)),
			humanize.Comma(int64(rep.ValidLines())))
		if rep.InvalidLines > 0 {
			fmt.Fprintf(&sb, ", %s invalid", humanize.Comma(int64(rep.InvalidLines)))
		}
		fmt.Fprintf(&sb, "  %s\n", run.Expression)
	}
	return sb.String()
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded filter runs",
		Long: `List the runs recorded with filter --history, newest first.

Runs can be narrowed to one job, either by its fingerprint or by giving the
job file itself. With --job, the database defaults to the job's history path.

Example:
  rowfilter history --history runs.db --limit 5
  rowfilter history --job long-genes.yaml --format json`,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.History, "history", "", "SQLite database of recorded runs")
	cmd.Flags().StringVar(&opts.Job, "job", "", "only list runs of this job file")
	cmd.Flags().StringVar(&opts.Fingerprint, "fingerprint", "", "only list runs with this job fingerprint")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	dbPath, fp := opts.History, opts.Fingerprint
	if opts.Job != "" {
		if fp != "" {
			return formatter.FailWith(ExitCommandError, ErrCodeUsage, "invalid arguments",
				fmt.Errorf("--job and --fingerprint are mutually exclusive"))
		}
		job, err := config.LoadJob(opts.Job)
		if err != nil {
			return formatter.Fail("failed to load job", err)
		}
		if fp, err = job.Fingerprint(); err != nil {
			return formatter.FailWith(ExitCommandError, ErrCodeGeneric, "failed to fingerprint job", err)
		}
		if dbPath == "" {
			dbPath = job.History
		}
	}
	if dbPath == "" {
		return formatter.FailWith(ExitCommandError, ErrCodeUsage, "invalid arguments",
			fmt.Errorf("--history is required"))
	}
	if opts.Limit < 0 {
		return formatter.FailWith(ExitCommandError, ErrCodeUsage, "invalid arguments",
			fmt.Errorf("--limit must not be negative, got %d", opts.Limit))
	}

	formatter.VerboseLog("Reading run history from %s", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		return formatter.FailWith(ExitFailure, ErrCodeHistory, "failed to open run history", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), store.ListOptions{Fingerprint: fp, Limit: opts.Limit})
	if err != nil {
		return formatter.FailWith(ExitFailure, ErrCodeHistory, "failed to list runs", err)
	}
	return formatter.Success(HistoryResult{Runs: runs})
}
