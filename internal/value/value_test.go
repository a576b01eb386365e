package value

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseType(t *testing.T) {
	cases := map[string]Type{
		"str":     TypeString,
		"String":  TypeString,
		"int":     TypeInt,
		"INTEGER": TypeInt,
		"float":   TypeFloat,
		"bool":    TypeBool,
		"boolean": TypeBool,
		"none":    TypeNone,
		" list ":  TypeList,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := ParseType(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := ParseType("decimal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown column type")
}

func TestParseTypes(t *testing.T) {
	types, err := ParseTypes("str,int,int,list")
	require.NoError(t, err)
	assert.Equal(t, []Type{TypeString, TypeInt, TypeInt, TypeList}, types)

	types, err = ParseTypes("")
	require.NoError(t, err)
	assert.Empty(t, types)

	_, err = ParseTypes("str,nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column 2")
}

func TestTypeTextRoundTrip(t *testing.T) {
	var decoded struct {
		Types []Type `yaml:"types"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("types: [str, integer, bool]"), &decoded))
	assert.Equal(t, []Type{TypeString, TypeInt, TypeBool}, decoded.Types)

	data, err := json.Marshal(decoded.Types)
	require.NoError(t, err)
	assert.JSONEq(t, `["str","int","bool"]`, string(data))
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		typ  Type
		want Value
	}{
		{"string", "chr1", TypeString, String("chr1")},
		{"empty string", "", TypeString, String("")},
		{"int", "100", TypeInt, Int(100)},
		{"negative int", "-7", TypeInt, Int(-7)},
		{"float", "0.25", TypeFloat, Float(0.25)},
		{"float exponent", "1e3", TypeFloat, Float(1000)},
		{"bool", "true", TypeBool, Bool(true)},
		{"bool false", "false", TypeBool, Bool(false)},
		{"none ignores text", "whatever 123", TypeNone, Empty{}},
		{"list", "a,b,c", TypeList, List{String("a"), String("b"), String("c")}},
		{"empty list field", "", TypeList, List{String("")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(0, tt.raw, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceParseError(t *testing.T) {
	_, err := Coerce(1, "12a", TypeInt)
	require.Error(t, err)
	assert.True(t, IsParseError(err))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Column)
	assert.Equal(t, "12a", pe.Raw)
	assert.Equal(t, TypeInt, pe.Type)
	assert.ErrorIs(t, err, strconv.ErrSyntax)
	assert.Equal(t, `column c2: cannot parse "12a" as int: invalid syntax`, err.Error())

	_, err = Coerce(0, "yes please", TypeBool)
	assert.True(t, IsParseError(err))

	_, err = Coerce(0, "1.2.3", TypeFloat)
	assert.True(t, IsParseError(err))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(String("a"), String("a")))
	assert.False(t, Equal(String("2"), Int(2)))
	assert.False(t, Equal(Int(2), Float(2)))
	assert.True(t, Equal(Empty{}, Empty{}))
	assert.True(t, Equal(List{String("a"), Int(1)}, List{String("a"), Int(1)}))
	assert.False(t, Equal(List{String("a")}, List{String("a"), String("b")}))
	assert.False(t, Equal(Bool(true), String("true")))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "chr1", String("chr1").String())
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "0.5", Float(0.5).String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "()", Empty{}.String())
	assert.Equal(t, `("a", 1)`, List{String("a"), Int(1)}.String())
	assert.Equal(t, "list", TypeList.String())
}
