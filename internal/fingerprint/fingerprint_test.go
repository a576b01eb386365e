package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rowfilter/internal/value"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"int64", int64(-100), "-100"},
		{"bool", true, "true"},
		{"strings", []string{"a", "b"}, `["a","b"]`},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"mixed array", []any{"x", 1, false}, `["x",1,false]`},
		{"no html escaping", "<a & b>", `"<a & b>"`},
		{"control characters", "a\tb\n", `"a\tb\n"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"zebra": 1,
		"alpha": map[string]any{"b": 1, "a": 2},
		"beta":  3,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"beta":3,"zebra":1}`, string(got))
}

func TestMarshalCanonicalUTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as a surrogate pair (0xD83D...), which sorts before
	// U+FF61 in UTF-16 but after it in UTF-8.
	got, err := MarshalCanonical(map[string]any{"\uff61": 1, "\U0001F600": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uff61\":1}", string(got))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed := "e\u0301"
	composed := "\u00e9"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	got, err := MarshalCanonical("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(got))

	// A literal backslash followed by the text u2028 stays escaped.
	got, err = MarshalCanonical(`\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(got))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	for _, v := range []any{nil, 1.5, float32(2), []any{nil}, map[string]any{"f": 0.1}, struct{}{}} {
		_, err := MarshalCanonical(v)
		assert.Error(t, err, "%#v", v)
	}
}

func TestJobDeterministic(t *testing.T) {
	types := []value.Type{value.TypeString, value.TypeInt, value.TypeInt}

	id1, err := Job(`c1=="chr1"`, types, 1)
	require.NoError(t, err)
	id2 := MustJob(`c1=="chr1"`, types, 1)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
}

func TestJobChangesWithInput(t *testing.T) {
	types := []value.Type{value.TypeString, value.TypeInt}

	base := MustJob(`c1=="chr1"`, types, 0)
	assert.NotEqual(t, base, MustJob(`c1=="chr2"`, types, 0), "expression")
	assert.NotEqual(t, base, MustJob(`c1=="chr1"`, types, 1), "skip count")
	assert.NotEqual(t, base, MustJob(`c1=="chr1"`, []value.Type{value.TypeString, value.TypeFloat}, 0), "types")
	assert.NotEqual(t, base, MustJob(`c1=="chr1"`, types[:1], 0), "type count")
}

func TestJobNormalizesExpression(t *testing.T) {
	types := []value.Type{value.TypeString}
	assert.Equal(t,
		MustJob("c1==\"cafe\u0301\"", types, 0),
		MustJob("c1==\"caf\u00e9\"", types, 0))
}

func TestHashWithDomainSeparation(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t, hashWithDomain("rowfilter/job/v1", data), hashWithDomain("rowfilter/job/v2", data))
	// Moving bytes across the domain boundary must change the hash.
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}
