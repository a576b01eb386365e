package value

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Type is the declared semantic type of a column, and also the dynamic type
// of a Value. A column declared None always yields Empty.
type Type int

const (
	TypeString Type = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeNone
	TypeList
)

// typeNames maps accepted spellings to types. The first spelling listed for
// a type in typeCanonical is the one Type.String returns.
var typeNames = map[string]Type{
	"str":     TypeString,
	"string":  TypeString,
	"int":     TypeInt,
	"integer": TypeInt,
	"float":   TypeFloat,
	"bool":    TypeBool,
	"boolean": TypeBool,
	"none":    TypeNone,
	"list":    TypeList,
}

var typeCanonical = [...]string{
	TypeString: "str",
	TypeInt:    "int",
	TypeFloat:  "float",
	TypeBool:   "bool",
	TypeNone:   "none",
	TypeList:   "list",
}

// TypeNames lists the canonical type spellings in declaration order.
func TypeNames() []string {
	return append([]string(nil), typeCanonical[:]...)
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeCanonical) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeCanonical[t]
}

// ParseType parses a column type name, case-insensitively.
func ParseType(s string) (Type, error) {
	t, ok := typeNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown column type %q: must be one of %s", s, strings.Join(TypeNames(), ", "))
	}
	return t, nil
}

// ParseTypes parses a comma-separated list of column type names.
func ParseTypes(s string) ([]Type, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	types := make([]Type, 0, len(parts))
	for i, p := range parts {
		t, err := ParseType(p)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		types = append(types, t)
	}
	return types, nil
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(typeCanonical) {
		return nil, fmt.Errorf("invalid column type %d", int(t))
	}
	return []byte(typeCanonical[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so types decode from
// YAML, JSON and CUE job files by name.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value is a sealed interface over the typed values an expression sees.
// Only String, Int, Float, Bool, Empty and List implement it.
type Value interface {
	Type() Type
	String() string
	value() // Sealed
}

// String is a string value.
type String string

// Int is a 64-bit signed integer value.
type Int int64

// Float is a 64-bit floating point value.
type Float float64

// Bool is a boolean value.
type Bool bool

// Empty is the absent value: None columns, missing fields and `()`.
type Empty struct{}

// List is an ordered sequence of values. Coerced list columns hold only
// String elements; tuple literals in expressions may hold any type.
type List []Value

func (String) Type() Type { return TypeString }
func (Int) Type() Type    { return TypeInt }
func (Float) Type() Type  { return TypeFloat }
func (Bool) Type() Type   { return TypeBool }
func (Empty) Type() Type  { return TypeNone }
func (List) Type() Type   { return TypeList }

func (String) value() {}
func (Int) value()    {}
func (Float) value()  {}
func (Bool) value()   {}
func (Empty) value()  {}
func (List) value()   {}

func (s String) String() string { return string(s) }
func (i Int) String() string    { return strconv.FormatInt(int64(i), 10) }
func (f Float) String() string  { return strconv.FormatFloat(float64(f), 'g', -1, 64) }
func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }
func (Empty) String() string    { return "()" }

func (l List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range l {
		if i > 0 {
			sb.WriteString(", ")
		}
		if s, ok := v.(String); ok {
			sb.WriteString(strconv.Quote(string(s)))
			continue
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// MarshalJSON renders Empty as null so reports and debug output stay valid JSON.
func (Empty) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// MarshalJSON renders a list as a JSON array.
func (l List) MarshalJSON() ([]byte, error) {
	elems := make([]any, len(l))
	for i, v := range l {
		elems[i] = v
	}
	return json.Marshal(elems)
}

// Equal reports whether a and b are the same value of the same type.
// Int 2 and String "2" are not equal. List equality is element-wise.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Empty:
		_, ok := b.(Empty)
		return ok
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
