// Package expr implements the restricted arithmetic expression language used
// by derived-value and sort definitions. The grammar is an explicit allow-list:
// numeric literals, variable references, unary +/-, and the binary operators
// + - * / // % **. Anything else fails to parse. There is deliberately no
// deny-list anywhere in this package; a construct is only reachable if one of
// the parse functions below produces a node for it.
package expr

import (
	"fmt"
	"math"

	"github.com/pvemon/ttydash/internal/errors"
)

// Context maps variable names to values. Values are float64 for numbers and
// string for labels; a reference to a missing name or a non-numeric value
// evaluates to unknown, never to an error.
type Context map[string]interface{}

// Merge copies all entries from src into ctx, overwriting existing keys.
func (ctx Context) Merge(src Context) {
	for k, v := range src {
		ctx[k] = v
	}
}

// Expr is a compiled arithmetic expression. Compile once per distinct
// expression text; Eval is pure and safe to call repeatedly.
type Expr struct {
	src  string
	root node
}

// Parse compiles an expression. It returns an EXPR-coded error for any
// construct outside the allowed grammar.
func Parse(src string) (*Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, invalid(src, fmt.Sprintf("unexpected %q", p.peek().text))
	}
	return &Expr{src: src, root: root}, nil
}

// String returns the original expression text.
func (e *Expr) String() string { return e.src }

// Eval evaluates the expression against ctx. The second return is false when
// the result is unknown: a missing or non-numeric variable, division or
// modulo by zero, or a power operation that leaves the real number range.
// Unknown propagates through every operator.
func (e *Expr) Eval(ctx Context) (float64, bool) {
	return e.root.eval(ctx)
}

func invalid(src, detail string) error {
	return errors.New(errors.ErrExpr,
		fmt.Sprintf("Invalid expression %q: %s", src, detail),
		"Only numbers, variable names, unary +/-, and + - * / // % ** are allowed")
}

// ----- AST -----

type node interface {
	eval(ctx Context) (float64, bool)
}

type numLit float64

func (n numLit) eval(Context) (float64, bool) { return float64(n), true }

type varRef string

func (v varRef) eval(ctx Context) (float64, bool) {
	raw, ok := ctx[string(v)]
	if !ok {
		return 0, false
	}
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

type unaryOp struct {
	neg     bool
	operand node
}

func (u unaryOp) eval(ctx Context) (float64, bool) {
	v, ok := u.operand.eval(ctx)
	if !ok {
		return 0, false
	}
	if u.neg {
		return -v, true
	}
	return v, true
}

type binaryOp struct {
	op   string
	l, r node
}

func (b binaryOp) eval(ctx Context) (float64, bool) {
	l, ok := b.l.eval(ctx)
	if !ok {
		return 0, false
	}
	r, ok := b.r.eval(ctx)
	if !ok {
		return 0, false
	}
	switch b.op {
	case "+":
		return l + r, true
	case "-":
		return l - r, true
	case "*":
		return l * r, true
	case "/":
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case "//":
		if r == 0 {
			return 0, false
		}
		return math.Floor(l / r), true
	case "%":
		if r == 0 {
			return 0, false
		}
		// Sign-of-divisor modulo, matching the expression language's
		// floored-division semantics.
		m := math.Mod(l, r)
		if m != 0 && (m < 0) != (r < 0) {
			m += r
		}
		return m, true
	case "**":
		v := math.Pow(l, r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	return 0, false
}
