package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rowfilter/internal/expr"
	"github.com/roach88/rowfilter/internal/functions"
	"github.com/roach88/rowfilter/internal/value"
)

var bedTypes = []value.Type{
	value.TypeString, value.TypeInt, value.TypeInt,
	value.TypeString, value.TypeInt, value.TypeString,
}

func TestReferencedColumns(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 5}, ReferencedColumns(`c1=="chr1" && c3-c2>=2000 && c6=="+"`))
	assert.Equal(t, []int{0}, ReferencedColumns(`c1 == "a" || c1 == "b"`))
	assert.Equal(t, []int{9, 11}, ReferencedColumns(`c12 > c10`))
	assert.Empty(t, ReferencedColumns(`true`))
	assert.Empty(t, ReferencedColumns(`c0 == 1`))

	// Text scan: references inside string literals count too.
	assert.Equal(t, []int{0, 2}, ReferencedColumns(`c1 == "c3"`))
}

func TestMockLine(t *testing.T) {
	types := []value.Type{value.TypeBool, value.TypeFloat, value.TypeInt, value.TypeString, value.TypeNone, value.TypeList}
	assert.Equal(t, "true\t0.1\t1\tstring\t\t1,2,3", MockLine(types))
	assert.Equal(t, "", MockLine(nil))
}

func TestCompileAccepts(t *testing.T) {
	expressions := []string{
		`c1=="chr22"`,
		`c1=="chr1" && c3-c2>=2000 && c6=="+"`,
		`c5 > 5 || c2 / c3 > 0`,
		`in("chr", c1)`,
		`c7 == ()`, // beyond declared types: Empty
		`len(c4) > 0`,
	}
	for _, src := range expressions {
		t.Run(src, func(t *testing.T) {
			c, err := Compile(src, ReferencedColumns(src), bedTypes)
			require.NoError(t, err)
			assert.Equal(t, src, c.Expression())
		})
	}
}

func TestCompileListAndBool(t *testing.T) {
	types := []value.Type{value.TypeList, value.TypeBool, value.TypeFloat}
	src := `in("2", c1) && c2 && c3 < 1.5`
	_, err := Compile(src, ReferencedColumns(src), types)
	require.NoError(t, err)
}

func TestCompileSyntaxError(t *testing.T) {
	src := `c1 == `
	_, err := Compile(src, ReferencedColumns(src), bedTypes)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CompileSyntax, ce.Kind)
	assert.Equal(t, src, ce.Expression)
	assert.True(t, expr.IsSyntaxError(err))
	assert.Contains(t, err.Error(), "could not compile expression")
}

func TestCompileValidationErrors(t *testing.T) {
	tests := []struct {
		src  string
		code expr.ErrorCode
	}{
		{`c1 > 5`, expr.ErrCodeTypeMismatch},        // string column vs number
		{`c2 + c3`, expr.ErrCodeTypeMismatch},       // not boolean
		{`in(c2, c1)`, expr.ErrCodeTypeMismatch},    // int needle in string
		{`c1 == chr1`, expr.ErrCodeUnknownVariable}, // unquoted string
		{`contains(c1, "x")`, expr.ErrCodeUnknownFunction},
		{`c2 / (c3 - 1) > 0`, expr.ErrCodeDivisionByZero},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Compile(tt.src, ReferencedColumns(tt.src), bedTypes)
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, CompileValidation, ce.Kind)
			assert.Equal(t, tt.code, expr.Code(err), "%v", err)
			assert.Contains(t, err.Error(), "expression test failed")
		})
	}
}

func TestRowContextLoad(t *testing.T) {
	row := NewRowContext([]int{0, 2, 4}, bedTypes, functions.Builtins())

	require.NoError(t, row.Load("chr1\t100\t200"))
	assert.Equal(t, value.String("chr1"), row.Column(0))
	assert.Equal(t, value.Empty{}, row.Column(1), "unreferenced column stays empty")
	assert.Equal(t, value.Int(200), row.Column(2))
	assert.Equal(t, value.Empty{}, row.Column(4), "missing field is empty")
	assert.Equal(t, value.Empty{}, row.Column(99))

	require.NoError(t, row.Load("chr2\tx\t300\tname\t7"))
	assert.Equal(t, value.String("chr2"), row.Column(0))
	assert.Equal(t, value.Int(300), row.Column(2))
	assert.Equal(t, value.Int(7), row.Column(4))
}

func TestRowContextEmptyFields(t *testing.T) {
	types := []value.Type{value.TypeString, value.TypeString, value.TypeList}
	row := NewRowContext([]int{1, 2}, types, functions.Builtins())

	require.NoError(t, row.Load("a\t\t"))
	assert.Equal(t, value.String(""), row.Column(1))
	assert.Equal(t, value.List{value.String("")}, row.Column(2))
}

func TestRowContextSkipsUnreferencedGarbage(t *testing.T) {
	row := NewRowContext([]int{0}, bedTypes, functions.Builtins())
	require.NoError(t, row.Load("chr1\tnot-a-number\tnope"))
}

func TestRowContextParseError(t *testing.T) {
	row := NewRowContext([]int{0, 1}, bedTypes, functions.Builtins())
	err := row.Load("chr1\tabc\t200")
	require.Error(t, err)

	var pe *value.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Column)
	assert.Equal(t, "abc", pe.Raw)
}

func TestRowContextHugeColumnIndex(t *testing.T) {
	row := NewRowContext([]int{0, 1 << 40}, bedTypes, functions.Builtins())
	require.NoError(t, row.Load("chr1\t5"))
	assert.Equal(t, value.String("chr1"), row.Column(0))
	assert.Equal(t, value.Empty{}, row.Column(1<<40))
}

func TestCompileHugeColumnReference(t *testing.T) {
	src := `c1 == "a" || c50000000000 == ()`
	c, err := Compile(src, ReferencedColumns(src), []value.Type{value.TypeString})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 49999999999}, c.Columns())
}

func TestCompileChecksShortCircuitedOperand(t *testing.T) {
	src := `c2 > 0 || c1 > 5`
	_, err := Compile(src, ReferencedColumns(src), bedTypes)
	require.Error(t, err)
	assert.True(t, IsCompileError(err))
	assert.Equal(t, expr.ErrCodeTypeMismatch, expr.Code(err))
}

func TestRowContextUndeclaredColumnIsNone(t *testing.T) {
	row := NewRowContext([]int{7}, bedTypes, functions.Builtins())
	require.NoError(t, row.Load("a\tb\tc\td\te\tf\tg\th"))
	assert.Equal(t, value.Empty{}, row.Column(7))
}
