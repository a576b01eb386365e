package filter

import (
	"strings"

	"github.com/roach88/rowfilter/internal/expr"
	"github.com/roach88/rowfilter/internal/functions"
	"github.com/roach88/rowfilter/internal/value"
)

// mockFields holds one representative raw field per column type. Numbers
// are nonzero so a dry run does not trip over division by a column.
var mockFields = map[value.Type]string{
	value.TypeBool:   "true",
	value.TypeFloat:  "0.1",
	value.TypeInt:    "1",
	value.TypeString: "string",
	value.TypeNone:   "",
	value.TypeList:   "1,2,3",
}

// Compiled is a parsed and validated expression bound to a column schema.
// It is immutable; every row gets evaluated against the same Compiled.
type Compiled struct {
	tree    *expr.Tree
	columns []int
	types   []value.Type
	funcs   *functions.Registry
}

// Compile parses expression and dry-runs it against a mock row built from
// types, restricted to the referenced columns. The dry run evaluates both
// operands of every && and ||, and its result must be a boolean. Either failure is a *CompileError; nothing is read
// from the data stream until Compile succeeds.
func Compile(expression string, columns []int, types []value.Type) (*Compiled, error) {
	tree, err := expr.Parse(expression)
	if err != nil {
		return nil, &CompileError{Kind: CompileSyntax, Expression: expression, Err: err}
	}

	c := &Compiled{
		tree:    tree,
		columns: columns,
		types:   types,
		funcs:   functions.Builtins(),
	}

	mock := c.NewContext()
	if err := mock.Load(MockLine(types)); err != nil {
		return nil, &CompileError{Kind: CompileValidation, Expression: expression, Err: err}
	}
	if _, err := tree.Check(mock); err != nil {
		return nil, &CompileError{Kind: CompileValidation, Expression: expression, Err: err}
	}
	return c, nil
}

// MockLine renders one representative line for the declared types.
func MockLine(types []value.Type) string {
	fields := make([]string, len(types))
	for i, t := range types {
		fields[i] = mockFields[t]
	}
	return strings.Join(fields, string(FieldSeparator))
}

// NewContext returns a fresh row context sized for the referenced columns.
func (c *Compiled) NewContext() *RowContext {
	return NewRowContext(c.columns, c.types, c.funcs)
}

// Match evaluates the expression against a loaded row context. && and ||
// short-circuit, so a guard like c2 != 0 && 8 / c2 > 1 rejects a zero
// without an error.
func (c *Compiled) Match(row *RowContext) (bool, error) {
	return c.tree.EvalBool(row)
}

// Expression returns the source text.
func (c *Compiled) Expression() string {
	return c.tree.Source()
}

// Columns returns the referenced 0-based column indices.
func (c *Compiled) Columns() []int {
	return append([]int(nil), c.columns...)
}
