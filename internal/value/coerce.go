package value

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ListSeparator splits the raw text of a List column into elements.
const ListSeparator = ","

// ParseError reports a raw field that cannot be read as its declared type.
type ParseError struct {
	// Column is the 0-based column position.
	Column int

	// Raw is the field text as it appeared in the line.
	Raw string

	// Type is the declared column type.
	Type Type

	// Err is the underlying strconv error.
	Err error
}

// Error implements the error interface. Columns are reported 1-based, the
// way expressions refer to them.
func (e *ParseError) Error() string {
	return fmt.Sprintf("column c%d: cannot parse %q as %s: %v", e.Column+1, e.Raw, e.Type, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError returns true if err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Coerce converts the raw text of column into a Value of type t.
//
//   - TypeString keeps the text as is.
//   - TypeInt, TypeFloat and TypeBool use strconv parsing rules.
//   - TypeNone always yields Empty, whatever the text.
//   - TypeList splits on ListSeparator and never fails; an empty field
//     yields a one-element list holding the empty string.
func Coerce(column int, raw string, t Type) (Value, error) {
	switch t {
	case TypeString:
		return String(raw), nil
	case TypeInt:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &ParseError{Column: column, Raw: raw, Type: t, Err: numError(err)}
		}
		return Int(i), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &ParseError{Column: column, Raw: raw, Type: t, Err: numError(err)}
		}
		return Float(f), nil
	case TypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &ParseError{Column: column, Raw: raw, Type: t, Err: numError(err)}
		}
		return Bool(b), nil
	case TypeNone:
		return Empty{}, nil
	case TypeList:
		parts := strings.Split(raw, ListSeparator)
		list := make(List, len(parts))
		for i, p := range parts {
			list[i] = String(p)
		}
		return list, nil
	default:
		return nil, &ParseError{Column: column, Raw: raw, Type: t, Err: fmt.Errorf("unsupported column type %d", int(t))}
	}
}

// numError strips the function name and input that strconv.NumError repeats,
// since ParseError already carries both.
func numError(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}
