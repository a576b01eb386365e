package expr

import (
	"github.com/roach88/rowfilter/internal/value"
)

// Node is a sealed interface over expression tree nodes.
//
// Node types:
//   - Literal: constant value
//   - Column: reference to a 0-based column, written c<N> (1-based)
//   - Variable: any other identifier, resolved at evaluation time
//   - Unary: ! or - applied to one operand
//   - Binary: arithmetic, comparison or logical operator
//   - Call: function call by name
//   - Tuple: parenthesized comma list, evaluates to a value.List
//
// Trees are never mutated after parsing.
type Node interface {
	node() // Sealed
}

// Literal is a constant.
type Literal struct {
	Value value.Value
}

// Column references a column by its 0-based position.
type Column struct {
	Index int
}

// Variable is an identifier that is not a column reference.
type Variable struct {
	Name string
}

// Unary applies Op (tokBang or tokMinus) to X.
type Unary struct {
	Op tokenType
	X  Node
}

// Binary applies Op to Left and Right.
type Binary struct {
	Op    tokenType
	Left  Node
	Right Node
}

// Call invokes the named function with Args.
type Call struct {
	Name string
	Args []Node
}

// Tuple is a parenthesized list of two or more expressions.
type Tuple struct {
	Elems []Node
}

func (Literal) node()  {}
func (Column) node()   {}
func (Variable) node() {}
func (Unary) node()    {}
func (Binary) node()   {}
func (Call) node()     {}
func (Tuple) node()    {}
