package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rowfilter/internal/expr"
	"github.com/roach88/rowfilter/internal/value"
)

func call(t *testing.T, name string, args ...value.Value) (value.Value, error) {
	t.Helper()
	fn, ok := Builtins().Lookup(name)
	require.True(t, ok, "function %s should be registered", name)
	return fn.Call(args)
}

func TestBuiltinNames(t *testing.T) {
	assert.Equal(t, []string{"ends_with", "in", "len", "starts_with"}, Builtins().Names())

	_, ok := Builtins().Lookup("missing")
	assert.False(t, ok)
}

func TestInList(t *testing.T) {
	haystack := value.List{value.String("a"), value.String("b"), value.String("c")}

	got, err := call(t, "in", value.String("a"), haystack)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), got)

	got, err = call(t, "in", value.String("d"), haystack)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), got)
}

func TestInListComparesTypes(t *testing.T) {
	strings := value.List{value.String("1"), value.String("2")}
	got, err := call(t, "in", value.Int(2), strings)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), got)

	ints := value.List{value.Int(1), value.Int(2)}
	got, err = call(t, "in", value.Int(2), ints)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), got)
}

func TestInString(t *testing.T) {
	haystack := value.String("foo bar baz")

	got, err := call(t, "in", value.String("bar"), haystack)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), got)

	got, err = call(t, "in", value.String("qux"), haystack)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), got)
}

func TestInErrors(t *testing.T) {
	_, err := call(t, "in", value.Int(1), value.String("abc"))
	require.Error(t, err)
	assert.True(t, expr.IsTypeError(err))

	_, err = call(t, "in", value.String("a"), value.Int(5))
	require.Error(t, err)
	assert.True(t, expr.IsTypeError(err))
	assert.Contains(t, err.Error(), "expected list or str, got int 5")

	_, err = call(t, "in", value.String("a"))
	assert.Equal(t, expr.ErrCodeArity, expr.Code(err))
}

func TestLen(t *testing.T) {
	got, err := call(t, "len", value.String("chr22"))
	require.NoError(t, err)
	assert.Equal(t, value.Int(5), got)

	got, err = call(t, "len", value.List{value.String("")})
	require.NoError(t, err)
	assert.Equal(t, value.Int(1), got)

	_, err = call(t, "len", value.Bool(true))
	assert.True(t, expr.IsTypeError(err))
}

func TestStartsEndsWith(t *testing.T) {
	got, err := call(t, "starts_with", value.String("chr22"), value.String("chr"))
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), got)

	got, err = call(t, "ends_with", value.String("read_1/2"), value.String("/1"))
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), got)

	_, err = call(t, "starts_with", value.Int(1), value.String("1"))
	assert.True(t, expr.IsTypeError(err))

	_, err = call(t, "ends_with", value.String("x"))
	assert.Equal(t, expr.ErrCodeArity, expr.Code(err))
}
