package filter

import (
	"strings"

	"github.com/roach88/rowfilter/internal/expr"
	"github.com/roach88/rowfilter/internal/functions"
	"github.com/roach88/rowfilter/internal/value"
)

// FieldSeparator separates columns within a line.
const FieldSeparator = '\t'

// RowContext is the per-row evaluation environment. It holds one slot per
// referenced column, and Load overwrites every slot, so it is reused across
// rows without allocation beyond the coerced values themselves. Column
// numbers are only used as keys: a reference to c50000000000 costs one slot,
// not fifty billion.
//
// RowContext implements expr.Env.
type RowContext struct {
	columns []int         // referenced, ascending
	types   []value.Type  // declared types by position
	slots   []value.Value // slots[i] holds column columns[i]
	index   map[int]int   // column -> slot
	funcs   *functions.Registry
}

// NewRowContext creates a context for the given referenced columns.
func NewRowContext(columns []int, types []value.Type, funcs *functions.Registry) *RowContext {
	slots := make([]value.Value, len(columns))
	index := make(map[int]int, len(columns))
	for i, col := range columns {
		slots[i] = value.Empty{}
		index[col] = i
	}
	return &RowContext{
		columns: columns,
		types:   types,
		slots:   slots,
		index:   index,
		funcs:   funcs,
	}
}

// Load coerces the referenced fields of line into the context. A field past
// the end of the line becomes Empty whatever its declared type; a column
// with no declared type is treated as None. The first coercion failure is
// returned as a *value.ParseError and leaves the context partially updated.
func (c *RowContext) Load(line string) error {
	fields := fieldIter{rest: line}
	field, ok, pos := "", true, 0
	for i, col := range c.columns {
		for ok && pos <= col {
			field, ok = fields.next()
			pos++
		}
		if !ok {
			c.slots[i] = value.Empty{}
			continue
		}
		v, err := value.Coerce(col, field, c.typeOf(col))
		if err != nil {
			return err
		}
		c.slots[i] = v
	}
	return nil
}

func (c *RowContext) typeOf(col int) value.Type {
	if col < len(c.types) {
		return c.types[col]
	}
	return value.TypeNone
}

// fieldIter walks the separated fields of a line without splitting it.
type fieldIter struct {
	rest string
	done bool
}

func (it *fieldIter) next() (string, bool) {
	if it.done {
		return "", false
	}
	i := strings.IndexByte(it.rest, FieldSeparator)
	if i < 0 {
		it.done = true
		return it.rest, true
	}
	field := it.rest[:i]
	it.rest = it.rest[i+1:]
	return field, true
}

// Column implements expr.Env. Columns that were not referenced read as Empty.
func (c *RowContext) Column(index int) value.Value {
	i, ok := c.index[index]
	if !ok {
		return value.Empty{}
	}
	return c.slots[i]
}

// Function implements expr.Env.
func (c *RowContext) Function(name string) (expr.Function, bool) {
	return c.funcs.Lookup(name)
}
