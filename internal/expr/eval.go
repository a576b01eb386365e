package expr

import (
	"math"

	"github.com/roach88/rowfilter/internal/value"
)

// Function is a named operation callable from expressions.
// Implementations must hold no per-row state; one instance serves every row.
type Function interface {
	// Name is the identifier used to call the function.
	Name() string

	// Call applies the function to already-evaluated arguments.
	Call(args []value.Value) (value.Value, error)
}

// Env supplies the values an expression reads.
type Env interface {
	// Column returns the value bound to the 0-based column index.
	Column(index int) value.Value

	// Function looks up a function by name.
	Function(name string) (Function, bool)
}

// Eval evaluates the tree against env. The right operand of && and || is
// evaluated only when the left one does not decide the result.
func (t *Tree) Eval(env Env) (value.Value, error) {
	return evaluator{env: env}.eval(t.root)
}

// EvalBool evaluates the tree and requires a boolean result.
func (t *Tree) EvalBool(env Env) (bool, error) {
	return evalBool(evaluator{env: env}, t.root)
}

// Check is EvalBool without short-circuiting: every sub-expression is
// evaluated, so a type error anywhere in the tree is reported. It is meant
// for a dry run against a representative env.
func (t *Tree) Check(env Env) (bool, error) {
	return evalBool(evaluator{env: env, eager: true}, t.root)
}

func evalBool(ev evaluator, root Node) (bool, error) {
	v, err := ev.eval(root)
	if err != nil {
		return false, err
	}
	b, ok := v.(value.Bool)
	if !ok {
		return false, NewTypeError("expression result", []value.Type{value.TypeBool}, v)
	}
	return bool(b), nil
}

type evaluator struct {
	env   Env
	eager bool // evaluate both operands of && and ||
}

func (ev evaluator) eval(n Node) (value.Value, error) {
	switch n := n.(type) {
	case Literal:
		return n.Value, nil
	case Column:
		return ev.env.Column(n.Index), nil
	case Variable:
		return nil, evalErrorf(ErrCodeUnknownVariable, "unknown variable %q: columns are referenced as c1, c2, ...", n.Name)
	case Unary:
		x, err := ev.eval(n.X)
		if err != nil {
			return nil, err
		}
		return evalUnary(n.Op, x)
	case Binary:
		if !ev.eager && (n.Op == tokAnd || n.Op == tokOr) {
			return ev.logical(n)
		}
		left, err := ev.eval(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := ev.eval(n.Right)
		if err != nil {
			return nil, err
		}
		return evalBinary(n.Op, left, right)
	case Call:
		fn, ok := ev.env.Function(n.Name)
		if !ok {
			return nil, evalErrorf(ErrCodeUnknownFunction, "unknown function %q", n.Name)
		}
		args := make([]value.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := ev.eval(a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return fn.Call(args)
	case Tuple:
		list := make(value.List, len(n.Elems))
		for i, e := range n.Elems {
			v, err := ev.eval(e)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil
	default:
		return nil, evalErrorf(ErrCodeSyntax, "unsupported node %T", n)
	}
}

// logical evaluates && and || left to right, stopping once the left
// operand decides the result.
func (ev evaluator) logical(n Binary) (value.Value, error) {
	left, err := ev.eval(n.Left)
	if err != nil {
		return nil, err
	}
	lb, ok := left.(value.Bool)
	if !ok {
		return nil, NewTypeError("left operand of "+n.Op.String(), []value.Type{value.TypeBool}, left)
	}
	if (n.Op == tokAnd && !lb) || (n.Op == tokOr && lb) {
		return lb, nil
	}
	right, err := ev.eval(n.Right)
	if err != nil {
		return nil, err
	}
	return evalBinary(n.Op, lb, right)
}

func evalUnary(op tokenType, x value.Value) (value.Value, error) {
	switch op {
	case tokBang:
		b, ok := x.(value.Bool)
		if !ok {
			return nil, NewTypeError("operand of !", []value.Type{value.TypeBool}, x)
		}
		return !b, nil
	case tokMinus:
		switch v := x.(type) {
		case value.Int:
			if v == math.MinInt64 {
				return nil, evalErrorf(ErrCodeOverflow, "integer negation -(%d) overflows", v)
			}
			return -v, nil
		case value.Float:
			return -v, nil
		}
		return nil, NewTypeError("operand of -", numberTypes, x)
	}
	return nil, evalErrorf(ErrCodeSyntax, "unsupported unary operator %s", op)
}

var numberTypes = []value.Type{value.TypeInt, value.TypeFloat}

func evalBinary(op tokenType, l, r value.Value) (value.Value, error) {
	switch op {
	case tokAnd, tokOr:
		lb, ok := l.(value.Bool)
		if !ok {
			return nil, NewTypeError("left operand of "+op.String(), []value.Type{value.TypeBool}, l)
		}
		rb, ok := r.(value.Bool)
		if !ok {
			return nil, NewTypeError("right operand of "+op.String(), []value.Type{value.TypeBool}, r)
		}
		if op == tokAnd {
			return lb && rb, nil
		}
		return lb || rb, nil
	case tokEq:
		return value.Bool(equal(l, r)), nil
	case tokNotEq:
		return value.Bool(!equal(l, r)), nil
	case tokLT, tokLTE, tokGT, tokGTE:
		return compare(op, l, r)
	case tokPlus:
		if ls, ok := l.(value.String); ok {
			if rs, ok := r.(value.String); ok {
				return ls + rs, nil
			}
		}
		return arithmetic(op, l, r)
	case tokMinus, tokStar, tokSlash, tokPercent, tokCaret:
		return arithmetic(op, l, r)
	}
	return nil, evalErrorf(ErrCodeSyntax, "unsupported binary operator %s", op)
}

// equal is value.Equal except that numbers compare across Int and Float.
func equal(l, r value.Value) bool {
	if lf, lok := asFloat(l); lok {
		if rf, rok := asFloat(r); rok {
			if li, ok := l.(value.Int); ok {
				if ri, ok := r.(value.Int); ok {
					return li == ri
				}
			}
			return lf == rf
		}
	}
	return value.Equal(l, r)
}

func compare(op tokenType, l, r value.Value) (value.Value, error) {
	var c int
	switch {
	case isInt(l) && isInt(r):
		li, ri := l.(value.Int), r.(value.Int)
		c = cmp3(li < ri, li > ri)
	case isNumber(l) && isNumber(r):
		lf, _ := asFloat(l)
		rf, _ := asFloat(r)
		if math.IsNaN(lf) || math.IsNaN(rf) {
			return value.Bool(false), nil
		}
		c = cmp3(lf < rf, lf > rf)
	default:
		ls, lok := l.(value.String)
		rs, rok := r.(value.String)
		if !lok || !rok {
			return nil, evalErrorf(ErrCodeTypeMismatch, "cannot compare %s %s with %s %s using %s: operands must both be numbers or both be strings",
				l.Type(), l, r.Type(), r, op)
		}
		c = cmp3(ls < rs, ls > rs)
	}
	switch op {
	case tokLT:
		return value.Bool(c < 0), nil
	case tokLTE:
		return value.Bool(c <= 0), nil
	case tokGT:
		return value.Bool(c > 0), nil
	default:
		return value.Bool(c >= 0), nil
	}
}

func arithmetic(op tokenType, l, r value.Value) (value.Value, error) {
	if !isNumber(l) {
		return nil, NewTypeError("left operand of "+op.String(), numberTypes, l)
	}
	if !isNumber(r) {
		return nil, NewTypeError("right operand of "+op.String(), numberTypes, r)
	}

	if li, ok := l.(value.Int); ok {
		if ri, ok := r.(value.Int); ok {
			return intArithmetic(op, li, ri)
		}
	}

	lf, _ := asFloat(l)
	rf, _ := asFloat(r)
	switch op {
	case tokPlus:
		return value.Float(lf + rf), nil
	case tokMinus:
		return value.Float(lf - rf), nil
	case tokStar:
		return value.Float(lf * rf), nil
	case tokSlash:
		return value.Float(lf / rf), nil
	case tokPercent:
		return value.Float(math.Mod(lf, rf)), nil
	default:
		return value.Float(math.Pow(lf, rf)), nil
	}
}

func intArithmetic(op tokenType, l, r value.Int) (value.Value, error) {
	switch op {
	case tokPlus:
		sum := l + r
		if (sum > l) != (r > 0) {
			return nil, overflowf(l, op, r)
		}
		return sum, nil
	case tokMinus:
		diff := l - r
		if (diff < l) != (r > 0) {
			return nil, overflowf(l, op, r)
		}
		return diff, nil
	case tokStar:
		prod, ok := mulInt(l, r)
		if !ok {
			return nil, overflowf(l, op, r)
		}
		return prod, nil
	case tokSlash:
		if r == 0 {
			return nil, evalErrorf(ErrCodeDivisionByZero, "integer division %d / 0", l)
		}
		if l == math.MinInt64 && r == -1 {
			return nil, overflowf(l, op, r)
		}
		return l / r, nil
	case tokPercent:
		if r == 0 {
			return nil, evalErrorf(ErrCodeDivisionByZero, "integer modulo %d %% 0", l)
		}
		return l % r, nil
	default:
		// Integer powers stay integral only for non-negative exponents.
		if r < 0 {
			return value.Float(math.Pow(float64(l), float64(r))), nil
		}
		result := value.Int(1)
		base := l
		for e := r; e > 0; e >>= 1 {
			var ok bool
			if e&1 == 1 {
				if result, ok = mulInt(result, base); !ok {
					return nil, overflowf(l, op, r)
				}
			}
			if e > 1 {
				if base, ok = mulInt(base, base); !ok {
					return nil, overflowf(l, op, r)
				}
			}
		}
		return result, nil
	}
}

// mulInt multiplies l and r, reporting false if the product does not fit.
func mulInt(l, r value.Int) (value.Int, bool) {
	if l == 0 || r == 0 {
		return 0, true
	}
	if (l == -1 && r == math.MinInt64) || (r == -1 && l == math.MinInt64) {
		return 0, false
	}
	prod := l * r
	return prod, prod/r == l
}

func overflowf(l value.Int, op tokenType, r value.Int) *Error {
	return evalErrorf(ErrCodeOverflow, "integer %d %s %d overflows", l, op, r)
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func isInt(v value.Value) bool {
	_, ok := v.(value.Int)
	return ok
}

func isNumber(v value.Value) bool {
	_, ok := asFloat(v)
	return ok
}

func asFloat(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case value.Int:
		return float64(n), true
	case value.Float:
		return float64(n), true
	}
	return 0, false
}
