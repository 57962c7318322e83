package expr

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// parse.go: a small Pratt parser for calculator notation.
//
// Grammar, loosest to tightest:
//
//	a + b, a - b        binding power 10, left-assoc
//	a * b, a / b        binding power 20, left-assoc
//	-a, +a              prefix, binding power 30
//	a ^ b, a ** b       binding power 40, right-assoc
//	f(a), (a), atoms
//
// Multiplication is always explicit: "2x" is a syntax error. When the parser
// knows an unknown function (WithFunction), its name and any trailing primes
// become Deriv nodes: y, y(x), y', y′, y''.

// ErrEmpty is returned for input with no tokens.
var ErrEmpty = errors.New("expr: empty expression")

// SyntaxError reports a parse failure at a byte offset into the source.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Option configures Parse.
type Option func(*parser)

// WithFunction makes fn an unknown function of wrt. Occurrences of fn, fn(wrt)
// and fn followed by primes parse as Deriv nodes of the matching order.
func WithFunction(fn, wrt string) Option {
	return func(p *parser) {
		p.fn = fn
		p.wrt = wrt
	}
}

var constants = map[string]func() Expr{
	"pi": func() Expr { return NFloat(math.Pi) },
	"E":  func() Expr { return NFloat(math.E) },
}

var aliases = map[string]string{
	"log":    "ln",
	"arcsin": "asin",
	"arccos": "acos",
	"arctan": "atan",
}

// Parse reads src into a simplified expression tree.
func Parse(src string, opts ...Option) (Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 1 {
		return nil, ErrEmpty
	}
	p := &parser{toks: toks}
	for _, opt := range opts {
		opt(p)
	}
	e, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %s", t)
	}
	return e.Simplify(), nil
}

// MustParse is Parse for trusted input. It panics on error.
func MustParse(src string, opts ...Option) Expr {
	e, err := Parse(src, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// ============================================================
// Lexer
// ============================================================

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokLParen
	tokRParen
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPow
)

type token struct {
	kind   tokenKind
	text   string
	primes int
	pos    int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokNum, tokIdent:
		return fmt.Sprintf("%q", t.text+strings.Repeat("'", t.primes))
	}
	return fmt.Sprintf("%q", t.text)
}

func isPrime(r rune) bool { return r == '\'' || r == '′' }

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isDigit(r) || (r == '.' && i+1 < len(src) && isDigit(rune(src[i+1]))):
			start := i
			i = scanNumber(src, i)
			toks = append(toks, token{kind: tokNum, text: src[start:i], pos: start})
		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					break
				}
				i += size
			}
			tok := token{kind: tokIdent, text: src[start:i], pos: start}
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if !isPrime(r) {
					break
				}
				tok.primes++
				i += size
			}
			toks = append(toks, tok)
		default:
			kind, width := tokEOF, 1
			switch r {
			case '(':
				kind = tokLParen
			case ')':
				kind = tokRParen
			case '+':
				kind = tokPlus
			case '-':
				kind = tokMinus
			case '/':
				kind = tokSlash
			case '^':
				kind = tokPow
			case '*':
				kind = tokStar
				if strings.HasPrefix(src[i:], "**") {
					kind, width = tokPow, 2
				}
			default:
				return nil, &SyntaxError{Offset: i, Msg: fmt.Sprintf("unexpected character %q", r)}
			}
			toks = append(toks, token{kind: kind, text: src[i : i+width], pos: i})
			i += width
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// scanNumber consumes digits, an optional fraction and an optional exponent
// starting at i and returns the offset just past the literal.
func scanNumber(src string, i int) int {
	for i < len(src) && isDigit(rune(src[i])) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(rune(src[i])) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(rune(src[j])) {
			i = j
			for i < len(src) && isDigit(rune(src[i])) {
				i++
			}
		}
	}
	return i
}

// ============================================================
// Parser
// ============================================================

const unaryBP = 30

func lbp(k tokenKind) (int, bool) {
	switch k {
	case tokPlus, tokMinus:
		return 10, true
	case tokStar, tokSlash:
		return 20, true
	case tokPow:
		return 40, true
	}
	return 0, false
}

type parser struct {
	toks []token
	i    int
	fn   string
	wrt  string
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{Offset: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokenKind, what string) error {
	t := p.next()
	if t.kind != kind {
		return p.errorf(t, "expected %s, found %s", what, t)
	}
	return nil
}

func (p *parser) expr(minBP int) (Expr, error) {
	left, err := p.prefix()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		bp, ok := lbp(op.kind)
		if !ok || bp < minBP {
			return left, nil
		}
		p.next()
		rbp := bp + 1
		if op.kind == tokPow {
			rbp = bp
		}
		right, err := p.expr(rbp)
		if err != nil {
			return nil, err
		}
		left = combine(op.kind, left, right)
	}
}

func combine(op tokenKind, left, right Expr) Expr {
	switch op {
	case tokPlus:
		return &Add{terms: []Expr{left, right}}
	case tokMinus:
		return &Add{terms: []Expr{left, &Mul{factors: []Expr{N(-1), right}}}}
	case tokStar:
		return &Mul{factors: []Expr{left, right}}
	case tokSlash:
		return &Mul{factors: []Expr{left, &Pow{base: right, exp: N(-1)}}}
	}
	if s, ok := left.(*Sym); ok && s.name == "e" {
		return funcOf("exp", right)
	}
	return &Pow{base: left, exp: right}
}

func (p *parser) prefix() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		n, ok := parseNum(t.text)
		if !ok {
			return nil, p.errorf(t, "malformed number %s", t)
		}
		return n, nil
	case tokMinus, tokPlus:
		operand, err := p.expr(unaryBP)
		if err != nil {
			return nil, err
		}
		if t.kind == tokPlus {
			return operand, nil
		}
		return &Mul{factors: []Expr{N(-1), operand}}, nil
	case tokLParen:
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return e, nil
	case tokIdent:
		return p.ident(t)
	}
	return nil, p.errorf(t, "unexpected %s", t)
}

func (p *parser) ident(t token) (Expr, error) {
	name := t.text
	if p.fn != "" && name == p.fn {
		if p.peek().kind == tokLParen {
			p.next()
			arg := p.next()
			if arg.kind != tokIdent || arg.text != p.wrt || arg.primes != 0 {
				return nil, p.errorf(arg, "%s must be applied to %s", p.fn, p.wrt)
			}
			if err := p.expect(tokRParen, `")"`); err != nil {
				return nil, err
			}
		}
		return D(p.fn, p.wrt, t.primes), nil
	}
	if t.primes > 0 {
		return nil, p.errorf(t, "derivative mark on %q, which is not the unknown function", name)
	}

	if p.peek().kind == tokLParen {
		p.next()
		arg, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		if alias, ok := aliases[name]; ok {
			name = alias
		}
		if name == "sqrt" {
			return &Pow{base: arg, exp: F(1, 2)}, nil
		}
		if !IsBuiltin(name) {
			return nil, p.errorf(t, "unknown function %q", t.text)
		}
		return funcOf(name, arg), nil
	}
	if c, ok := constants[name]; ok {
		return c(), nil
	}
	return S(name), nil
}

// AssignedValue returns the text after the first "name = " marker in s.
// ok is false when the marker is absent.
func AssignedValue(s, name string) (string, bool) {
	marker := name + " = "
	_, rest, found := strings.Cut(s, marker)
	if !found {
		return "", false
	}
	if i := strings.Index(rest, marker); i >= 0 {
		rest = rest[:i]
	}
	return rest, true
}
