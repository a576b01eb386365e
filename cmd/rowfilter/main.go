// Command rowfilter keeps the rows of a tab-separated file that match an
// expression over typed columns.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/rowfilter/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil && !cli.IsReported(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
