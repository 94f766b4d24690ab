package expr

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp     // + - * / // % **
	tokLParen // (
	tokRParen // )
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

// lex tokenizes src. Every character must belong to the allowed token set;
// quotes, brackets, commas, comparison operators and the rest of the host
// language simply do not lex.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			seenDot := false
			for i < len(src) {
				ch := src[i]
				if ch >= '0' && ch <= '9' {
					i++
					continue
				}
				if ch == '.' && !seenDot {
					seenDot = true
					i++
					continue
				}
				if (ch == 'e' || ch == 'E') && i+1 < len(src) {
					next := src[i+1]
					if next >= '0' && next <= '9' || ((next == '+' || next == '-') && i+2 < len(src) && src[i+2] >= '0' && src[i+2] <= '9') {
						i += 2
						for i < len(src) && src[i] >= '0' && src[i] <= '9' {
							i++
						}
					}
				}
				break
			}
			text := src[start:i]
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, invalid(src, fmt.Sprintf("bad number %q", text))
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: n})
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i]})
		case c == '*':
			if strings.HasPrefix(src[i:], "**") {
				toks = append(toks, token{kind: tokOp, text: "**"})
				i += 2
			} else {
				toks = append(toks, token{kind: tokOp, text: "*"})
				i++
			}
		case c == '/':
			if strings.HasPrefix(src[i:], "//") {
				toks = append(toks, token{kind: tokOp, text: "//"})
				i += 2
			} else {
				toks = append(toks, token{kind: tokOp, text: "/"})
				i++
			}
		case c == '+' || c == '-' || c == '%':
			toks = append(toks, token{kind: tokOp, text: string(c)})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		default:
			return nil, invalid(src, fmt.Sprintf("disallowed character %q", string(c)))
		}
	}
	toks = append(toks, token{kind: tokEOF})
	return toks, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// parser is a recursive-descent parser over the lexed tokens.
// Precedence, low to high: additive, multiplicative, unary, power.
// Power is right-associative and binds tighter than a unary minus on its
// left, so -2**2 parses as -(2**2).
type parser struct {
	src  string
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

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && (p.peek().text == "+" || p.peek().text == "-") {
		op := p.next().text
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryOp{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp {
		op := p.peek().text
		if op != "*" && op != "/" && op != "//" && op != "%" {
			break
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryOp{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if t := p.peek(); t.kind == tokOp && (t.text == "+" || t.text == "-") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryOp{neg: t.text == "-", operand: operand}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind == tokOp && t.text == "**" {
		p.next()
		// Right operand may itself be unary: 2**-3.
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binaryOp{op: "**", l: base, r: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (node, error) {
	switch t := p.next(); t.kind {
	case tokNumber:
		return numLit(t.num), nil
	case tokIdent:
		return varRef(t.text), nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, invalid(p.src, "missing closing parenthesis")
		}
		p.next()
		return inner, nil
	case tokEOF:
		return nil, invalid(p.src, "unexpected end of expression")
	default:
		return nil, invalid(p.src, fmt.Sprintf("unexpected %q", t.text))
	}
}
