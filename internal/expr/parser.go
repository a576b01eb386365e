package expr

import (
	"strconv"

	"github.com/roach88/rowfilter/internal/value"
)

// Binding powers, lowest first.
const (
	precLowest = iota
	precOr
	precAnd
	precCompare
	precSum
	precProduct
	precPower
	precPrefix
)

var precedences = map[tokenType]int{
	tokOr:      precOr,
	tokAnd:     precAnd,
	tokEq:      precCompare,
	tokNotEq:   precCompare,
	tokLT:      precCompare,
	tokLTE:     precCompare,
	tokGT:      precCompare,
	tokGTE:     precCompare,
	tokPlus:    precSum,
	tokMinus:   precSum,
	tokStar:    precProduct,
	tokSlash:   precProduct,
	tokPercent: precProduct,
	tokCaret:   precPower,
}

// Tree is a parsed expression. It is immutable and safe to evaluate any
// number of times against different environments.
type Tree struct {
	src  string
	root Node
}

// Source returns the expression text the tree was parsed from.
func (t *Tree) Source() string {
	return t.src
}

// Root returns the root node.
func (t *Tree) Root() Node {
	return t.root
}

// Parse parses expression text into a Tree. Failures are *Error values with
// code ErrCodeSyntax and the byte offset of the offending token.
func Parse(src string) (*Tree, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().typ == tokEOF {
		return nil, syntaxErrorf(0, "empty expression")
	}
	root, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokEOF {
		return nil, syntaxErrorf(tok.pos, "unexpected %s after expression", describe(tok))
	}
	return &Tree{src: src, root: root}, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or when the expression is known to be valid.
func MustParse(src string) *Tree {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.typ != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ tokenType) (token, error) {
	tok := p.advance()
	if tok.typ != typ {
		return tok, syntaxErrorf(tok.pos, "expected %s, found %s", typ, describe(tok))
	}
	return tok, nil
}

// parseExpr is a precedence-climbing loop over binary operators.
func (p *parser) parseExpr(minPrec int) (Node, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().typ
		prec, ok := precedences[op]
		if !ok || prec <= minPrec {
			return left, nil
		}
		p.advance()
		next := prec
		if op == tokCaret {
			next = prec - 1 // right associative
		}
		right, err := p.parseExpr(next)
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parsePrefix() (Node, error) {
	tok := p.advance()
	switch tok.typ {
	case tokInt:
		i, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, syntaxErrorf(tok.pos, "integer literal %s out of range", tok.text)
		}
		return Literal{Value: value.Int(i)}, nil
	case tokFloat:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, syntaxErrorf(tok.pos, "invalid float literal %s", tok.text)
		}
		return Literal{Value: value.Float(f)}, nil
	case tokString:
		return Literal{Value: value.String(tok.text)}, nil
	case tokTrue:
		return Literal{Value: value.Bool(true)}, nil
	case tokFalse:
		return Literal{Value: value.Bool(false)}, nil
	case tokIdent:
		if p.peek().typ == tokLParen {
			return p.parseCall(tok)
		}
		if idx, ok := ColumnIndex(tok.text); ok {
			return Column{Index: idx}, nil
		}
		return Variable{Name: tok.text}, nil
	case tokBang, tokMinus:
		x, err := p.parseExpr(precPrefix)
		if err != nil {
			return nil, err
		}
		return Unary{Op: tok.typ, X: x}, nil
	case tokLParen:
		return p.parseGroup()
	default:
		return nil, syntaxErrorf(tok.pos, "unexpected %s", describe(tok))
	}
}

// parseGroup parses what follows "(": the empty value, a parenthesized
// expression, or a tuple.
func (p *parser) parseGroup() (Node, error) {
	if p.peek().typ == tokRParen {
		p.advance()
		return Literal{Value: value.Empty{}}, nil
	}
	elems, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return Tuple{Elems: elems}, nil
}

func (p *parser) parseCall(name token) (Node, error) {
	p.advance() // (
	if p.peek().typ == tokRParen {
		p.advance()
		return Call{Name: name.text}, nil
	}
	args, err := p.parseList()
	if err != nil {
		return nil, err
	}
	return Call{Name: name.text, Args: args}, nil
}

// parseList parses comma-separated expressions up to and including ")".
func (p *parser) parseList() ([]Node, error) {
	var elems []Node
	for {
		n, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		elems = append(elems, n)
		if p.peek().typ != tokComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return elems, nil
}

// ColumnIndex reports whether name is a column reference c<N> with N >= 1,
// and returns its 0-based index.
func ColumnIndex(name string) (int, bool) {
	if len(name) < 2 || name[0] != 'c' {
		return 0, false
	}
	for i := 1; i < len(name); i++ {
		if !isDigit(name[i]) {
			return 0, false
		}
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

func describe(tok token) string {
	if tok.typ == tokEOF {
		return tok.typ.String()
	}
	return strconv.Quote(tok.text)
}
