package formula

import (
	"fmt"
	"strings"
	"unicode"
)

// =============================================================================
// LEXER
// =============================================================================

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokOne
	tokPlus
	tokStar
	tokColon
	tokTilde
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '.'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

func lex(src string) ([]token, error) {
	var toks []token
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+':
			toks = append(toks, token{tokPlus, "+", i})
			i++
		case r == '*':
			toks = append(toks, token{tokStar, "*", i})
			i++
		case r == ':':
			toks = append(toks, token{tokColon, ":", i})
			i++
		case r == '~':
			toks = append(toks, token{tokTilde, "~", i})
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case r == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case r == '1':
			if i+1 < len(runes) && isIdentPart(runes[i+1]) {
				return nil, &ParseError{Pos: i, Msg: "numeric literals other than 1 are not supported"}
			}
			toks = append(toks, token{tokOne, "1", i})
			i++
		case isIdentStart(r):
			if r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
				return nil, &ParseError{Pos: i, Msg: "numeric literals other than 1 are not supported"}
			}
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			toks = append(toks, token{tokIdent, string(runes[start:i]), start})
		default:
			return nil, &ParseError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	toks = append(toks, token{tokEOF, "", len(runes)})
	return toks, nil
}

// =============================================================================
// PARSER
// =============================================================================

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorf(t, "expected %s", what)
	}
	return t, nil
}

func (p *parser) errorf(t token, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if t.kind == tokEOF {
		msg += ", got end of input"
	} else {
		msg += fmt.Sprintf(", got %q", t.text)
	}
	return &ParseError{Pos: t.pos, Msg: msg}
}

// Parse reads a formula of the form
//
//	[Surv(time, status) ~] term + term * term + strata(v) ...
//
// `*` produces a Cross and `:` an Interact Mul. All operators are
// left-associative; `:` binds tighter than `*`, which binds tighter than `+`.
func Parse(src string) (Formula, error) {
	if strings.TrimSpace(src) == "" {
		return Formula{}, &ParseError{Pos: 0, Msg: "empty formula"}
	}
	toks, err := lex(src)
	if err != nil {
		return Formula{}, err
	}
	p := &parser{toks: toks}

	var f Formula
	if p.hasTilde() {
		resp, err := p.parseResponse()
		if err != nil {
			return Formula{}, err
		}
		if _, err := p.expect(tokTilde, "'~'"); err != nil {
			return Formula{}, err
		}
		f.Response = resp
	}

	rhs, err := p.parseSum()
	if err != nil {
		return Formula{}, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return Formula{}, p.errorf(t, "expected operator or end of formula")
	}
	f.RHS = rhs
	return f, nil
}

// MustParse is Parse for literals known to be valid; it panics on error.
func MustParse(src string) Formula {
	f, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return f
}

// ParseExpr parses a right-hand side only.
func ParseExpr(src string) (Expr, error) {
	f, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if f.Response != nil {
		return nil, &ParseError{Pos: 0, Msg: "expected a right-hand side without response"}
	}
	return f.RHS, nil
}

func (p *parser) hasTilde() bool {
	for _, t := range p.toks {
		if t.kind == tokTilde {
			return true
		}
	}
	return false
}

func (p *parser) parseResponse() (*Response, error) {
	t := p.next()
	if t.kind != tokIdent || t.text != "Surv" {
		return nil, p.errorf(t, "expected Surv(time, status) response")
	}
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	timeTok, err := p.expect(tokIdent, "time variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokComma, "','"); err != nil {
		return nil, err
	}
	statusTok, err := p.expect(tokIdent, "status variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return &Response{Time: timeTok.text, Status: statusTok.text}, nil
}

func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokPlus {
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = Add{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseProduct() (Expr, error) {
	left, err := p.parseInteraction()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokStar {
		p.next()
		right, err := p.parseInteraction()
		if err != nil {
			return nil, err
		}
		left = Mul{Left: left, Right: right, Op: Cross}
	}
	return left, nil
}

func (p *parser) parseInteraction() (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokColon {
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = Mul{Left: left, Right: right, Op: Interact}
	}
	return left, nil
}

func (p *parser) parseFactor() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokOne:
		return Intercept{}, nil
	case tokLParen:
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokIdent:
		if p.peek().kind != tokLParen {
			return Var{Name: t.text}, nil
		}
		if t.text != "strata" {
			return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unsupported function %q", t.text)}
		}
		p.next()
		name, err := p.expect(tokIdent, "strata variable")
		if err != nil {
			return nil, err
		}
		if p.peek().kind == tokComma {
			return nil, &ParseError{Pos: p.peek().pos, Msg: "strata() takes a single variable"}
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return Strata{Name: name.text}, nil
	}
	return nil, p.errorf(t, "expected term")
}
