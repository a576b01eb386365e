package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rowfilter/internal/filter"
	"github.com/roach88/rowfilter/internal/value"
)

// CheckResult describes an expression that compiled against its column types.
type CheckResult struct {
	Expression  string       `json:"expression"`
	Columns     []int        `json:"columns"`
	Types       []value.Type `json:"types"`
	MockLine    string       `json:"mock_line"`
	Fingerprint string       `json:"fingerprint"`
}

func (r CheckResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✓ Expression OK: %s\n", r.Expression)
	if len(r.Columns) == 0 {
		sb.WriteString("Columns: none\n")
	} else {
		names := make([]string, len(r.Columns))
		for i, c := range r.Columns {
			names[i] = fmt.Sprintf("c%d", c)
		}
		fmt.Fprintf(&sb, "Columns: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&sb, "Fingerprint: %s\n", r.Fingerprint)
	return sb.String()
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	f := &jobFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compile an expression without reading any file",
		Long: `Parse the expression and dry-run it against one representative row built
from the declared column types. Reports the referenced columns, or the reason
the expression would be rejected by filter.

Example:
  rowfilter check -t str,int,int -e 'c1=="chr1" && c3-c2>=2000'
  rowfilter check --job long-genes.cue`,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, f, cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.Expression, "expression", "e", "", "filter expression")
	flags.IntVarP(&f.SkipLines, "skip-lines", "s", 0, "number of header lines (part of the fingerprint)")
	flags.StringVarP(&f.Types, "types", "t", "", "comma-separated column types (str,int,float,bool,none,list)")
	flags.StringVar(&f.Job, "job", "", "job file (.yaml, .yml or .cue); flags override its values")

	return cmd
}

func runCheck(opts *RootOptions, f *jobFlags, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	job, err := resolveJob(cmd, f)
	if err != nil {
		return failJob(formatter, err)
	}

	columns := filter.ReferencedColumns(job.Expression)
	formatter.VerboseLog("Referenced columns (0-based): %v", columns)
	if _, err := filter.Compile(job.Expression, columns, job.Types); err != nil {
		return formatter.Fail("expression rejected", err)
	}

	fp, err := job.Fingerprint()
	if err != nil {
		return formatter.FailWith(ExitCommandError, ErrCodeGeneric, "failed to fingerprint job", err)
	}

	oneBased := make([]int, len(columns))
	for i, c := range columns {
		oneBased[i] = c + 1
	}
	types := job.Types
	if types == nil {
		types = []value.Type{}
	}

	return formatter.Success(CheckResult{
		Expression:  job.Expression,
		Columns:     oneBased,
		Types:       types,
		MockLine:    filter.MockLine(job.Types),
		Fingerprint: fp,
	})
}
