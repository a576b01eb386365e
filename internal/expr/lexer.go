package expr

import (
	"strings"
)

// tokenType enumerates expression tokens.
type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokTrue
	tokFalse

	tokLParen // (
	tokRParen // )
	tokComma  // ,

	tokPlus    // +
	tokMinus   // -
	tokStar    // *
	tokSlash   // /
	tokPercent // %
	tokCaret   // ^
	tokBang    // !

	tokEq    // ==
	tokNotEq // !=
	tokLT    // <
	tokLTE   // <=
	tokGT    // >
	tokGTE   // >=
	tokAnd   // &&
	tokOr    // ||
)

var tokenNames = map[tokenType]string{
	tokEOF:     "end of expression",
	tokIdent:   "identifier",
	tokInt:     "integer",
	tokFloat:   "float",
	tokString:  "string",
	tokTrue:    "true",
	tokFalse:   "false",
	tokLParen:  "(",
	tokRParen:  ")",
	tokComma:   ",",
	tokPlus:    "+",
	tokMinus:   "-",
	tokStar:    "*",
	tokSlash:   "/",
	tokPercent: "%",
	tokCaret:   "^",
	tokBang:    "!",
	tokEq:      "==",
	tokNotEq:   "!=",
	tokLT:      "<",
	tokLTE:     "<=",
	tokGT:      ">",
	tokGTE:     ">=",
	tokAnd:     "&&",
	tokOr:      "||",
}

func (t tokenType) String() string {
	return tokenNames[t]
}

type token struct {
	typ  tokenType
	text string // literal text; decoded contents for strings
	pos  int
}

// lexer splits expression text into tokens.
type lexer struct {
	src string
	pos int
}

// tokenize returns all tokens of src, ending with tokEOF.
func tokenize(src string) ([]token, error) {
	l := &lexer{src: src}
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.typ == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{typ: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	ch := l.src[l.pos]

	switch {
	case isLetter(ch):
		return l.ident(), nil
	case isDigit(ch) || (ch == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
		return l.number()
	case ch == '"':
		return l.quoted()
	}

	two := ""
	if l.pos+1 < len(l.src) {
		two = l.src[l.pos : l.pos+2]
	}
	switch two {
	case "==":
		l.pos += 2
		return token{typ: tokEq, text: two, pos: start}, nil
	case "!=":
		l.pos += 2
		return token{typ: tokNotEq, text: two, pos: start}, nil
	case "<=":
		l.pos += 2
		return token{typ: tokLTE, text: two, pos: start}, nil
	case ">=":
		l.pos += 2
		return token{typ: tokGTE, text: two, pos: start}, nil
	case "&&":
		l.pos += 2
		return token{typ: tokAnd, text: two, pos: start}, nil
	case "||":
		l.pos += 2
		return token{typ: tokOr, text: two, pos: start}, nil
	}

	var typ tokenType
	switch ch {
	case '(':
		typ = tokLParen
	case ')':
		typ = tokRParen
	case ',':
		typ = tokComma
	case '+':
		typ = tokPlus
	case '-':
		typ = tokMinus
	case '*':
		typ = tokStar
	case '/':
		typ = tokSlash
	case '%':
		typ = tokPercent
	case '^':
		typ = tokCaret
	case '!':
		typ = tokBang
	case '<':
		typ = tokLT
	case '>':
		typ = tokGT
	default:
		return token{}, syntaxErrorf(start, "unexpected character %q", ch)
	}
	l.pos++
	return token{typ: typ, text: string(ch), pos: start}, nil
}

func (l *lexer) ident() token {
	start := l.pos
	for l.pos < len(l.src) && (isLetter(l.src[l.pos]) || isDigit(l.src[l.pos])) {
		l.pos++
	}
	text := l.src[start:l.pos]
	switch text {
	case "true":
		return token{typ: tokTrue, text: text, pos: start}
	case "false":
		return token{typ: tokFalse, text: text, pos: start}
	}
	return token{typ: tokIdent, text: text, pos: start}
}

func (l *lexer) number() (token, error) {
	start := l.pos
	typ := tokInt
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		typ = tokFloat
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		typ = tokFloat
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		digits := l.pos
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		if digits == l.pos {
			return token{}, syntaxErrorf(start, "malformed exponent in %q", l.src[start:l.pos])
		}
	}
	if l.pos < len(l.src) && isLetter(l.src[l.pos]) {
		return token{}, syntaxErrorf(start, "malformed number %q", l.src[start:l.pos+1])
	}
	return token{typ: typ, text: l.src[start:l.pos], pos: start}, nil
}

func (l *lexer) quoted() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		switch ch {
		case '"':
			l.pos++
			return token{typ: tokString, text: sb.String(), pos: start}, nil
		case '\\':
			if l.pos+1 >= len(l.src) {
				return token{}, syntaxErrorf(start, "unterminated string")
			}
			esc := l.src[l.pos+1]
			switch esc {
			case '"', '\\':
				sb.WriteByte(esc)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				return token{}, syntaxErrorf(l.pos, "unknown escape sequence \\%c", esc)
			}
			l.pos += 2
		default:
			sb.WriteByte(ch)
			l.pos++
		}
	}
	return token{}, syntaxErrorf(start, "unterminated string")
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isLetter(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
