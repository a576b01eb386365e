// Package functions holds the fixed table of builtins callable from filter
// expressions, such as in(needle, haystack).
//
// The registry is read-only after package initialization and the functions
// keep no state, so one Registry is shared by every row of every run.
package functions

import (
	"sort"
	"strings"

	"github.com/roach88/rowfilter/internal/expr"
	"github.com/roach88/rowfilter/internal/value"
)

// Registry maps function names to implementations.
type Registry struct {
	funcs map[string]expr.Function
}

var builtins = newRegistry(
	In{},
	Len{},
	StartsWith{},
	EndsWith{},
)

func newRegistry(fns ...expr.Function) *Registry {
	r := &Registry{funcs: make(map[string]expr.Function, len(fns))}
	for _, fn := range fns {
		r.funcs[fn.Name()] = fn
	}
	return r
}

// Builtins returns the process-wide registry of builtin functions.
func Builtins() *Registry {
	return builtins
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (expr.Function, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered function names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// In is in(needle, haystack).
//
// For a list haystack it reports whether any element equals needle, type
// included. For a string haystack the needle must be a string and In reports
// whether it is a substring. Any other haystack is a type mismatch.
type In struct{}

func (In) Name() string { return "in" }

func (In) Call(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, expr.NewArityError("in", 2, len(args))
	}
	needle, haystack := args[0], args[1]

	switch h := haystack.(type) {
	case value.List:
		for _, elem := range h {
			if value.Equal(elem, needle) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case value.String:
		s, ok := needle.(value.String)
		if !ok {
			return nil, expr.NewTypeError("in: needle for string haystack", []value.Type{value.TypeString}, needle)
		}
		return value.Bool(strings.Contains(string(h), string(s))), nil
	default:
		return nil, expr.NewTypeError("in: haystack", []value.Type{value.TypeList, value.TypeString}, haystack)
	}
}

// Len is len(x): the byte length of a string or the element count of a list.
type Len struct{}

func (Len) Name() string { return "len" }

func (Len) Call(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, expr.NewArityError("len", 1, len(args))
	}
	switch v := args[0].(type) {
	case value.String:
		return value.Int(len(v)), nil
	case value.List:
		return value.Int(len(v)), nil
	default:
		return nil, expr.NewTypeError("len", []value.Type{value.TypeString, value.TypeList}, v)
	}
}

// StartsWith is starts_with(s, prefix).
type StartsWith struct{}

func (StartsWith) Name() string { return "starts_with" }

func (StartsWith) Call(args []value.Value) (value.Value, error) {
	s, affix, err := stringPair("starts_with", args)
	if err != nil {
		return nil, err
	}
	return value.Bool(strings.HasPrefix(s, affix)), nil
}

// EndsWith is ends_with(s, suffix).
type EndsWith struct{}

func (EndsWith) Name() string { return "ends_with" }

func (EndsWith) Call(args []value.Value) (value.Value, error) {
	s, affix, err := stringPair("ends_with", args)
	if err != nil {
		return nil, err
	}
	return value.Bool(strings.HasSuffix(s, affix)), nil
}

func stringPair(name string, args []value.Value) (string, string, error) {
	if len(args) != 2 {
		return "", "", expr.NewArityError(name, 2, len(args))
	}
	a, ok := args[0].(value.String)
	if !ok {
		return "", "", expr.NewTypeError(name+": first argument", []value.Type{value.TypeString}, args[0])
	}
	b, ok := args[1].(value.String)
	if !ok {
		return "", "", expr.NewTypeError(name+": second argument", []value.Type{value.TypeString}, args[1])
	}
	return string(a), string(b), nil
}
