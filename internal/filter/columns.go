package filter

import (
	"regexp"
	"sort"
	"strconv"
)

var columnRefPattern = regexp.MustCompile(`c([0-9]+)`)

// ReferencedColumns scans expression text for c<N> references and returns
// the distinct 0-based column indices, ascending.
//
// This is a text scan, not a parse: a "c3" inside a string literal counts
// too. c0 is not a column and is skipped.
func ReferencedColumns(expression string) []int {
	seen := make(map[int]bool)
	var columns []int
	for _, m := range columnRefPattern.FindAllStringSubmatch(expression, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		if !seen[n-1] {
			seen[n-1] = true
			columns = append(columns, n-1)
		}
	}
	sort.Ints(columns)
	return columns
}
