// Package derive computes user-defined derived values by bounded relaxation:
// a fixed number of passes over the ordered definition list, writing results
// into a shared accumulator so later definitions can see earlier ones within
// the same pass and chains across definitions stabilize across passes.
package derive

import (
	"github.com/pvemon/ttydash/internal/expr"
)

// Passes is the fixed relaxation depth. Dependency chains up to this depth
// resolve; cyclic definitions do not error, they simply stop with whatever
// values the final pass produced. Configurations may rely on that truncation,
// so this is deliberately not a dependency-ordered solver.
const Passes = 3

// Def is one compiled derived definition. Expr is nil when the definition
// failed to compile; it then yields unknown on every pass.
type Def struct {
	ID     string
	Expr   *expr.Expr
	PerRow bool
}

// Result is one derived evaluation outcome. Every definition id gets an
// entry whether or not the final pass produced a number: renderers need the
// id's presence so an unknown derived value masks a same-named base value
// instead of letting it show through.
type Result struct {
	Value float64
	Known bool
}

// Resolve evaluates defs against the global context and the per-row contexts.
// A definition that fails for one row or one pass never aborts the others.
func Resolve(global expr.Context, rows map[string]expr.Context, defs []Def) (map[string]Result, map[string]map[string]Result) {
	derivedGlobal := make(map[string]Result)
	derivedRows := make(map[string]map[string]Result, len(rows))
	for id := range rows {
		derivedRows[id] = make(map[string]Result)
	}

	for pass := 0; pass < Passes; pass++ {
		for _, d := range defs {
			if d.PerRow {
				for rowID, base := range rows {
					ctx := make(expr.Context, len(global)+len(derivedGlobal)+len(base)+len(derivedRows[rowID]))
					ctx.Merge(global)
					mergeKnown(ctx, derivedGlobal)
					ctx.Merge(base)
					mergeKnown(ctx, derivedRows[rowID])
					store(derivedRows[rowID], d, ctx)
				}
			} else {
				ctx := make(expr.Context, len(global)+len(derivedGlobal))
				ctx.Merge(global)
				mergeKnown(ctx, derivedGlobal)
				store(derivedGlobal, d, ctx)
			}
		}
	}

	return derivedGlobal, derivedRows
}

// mergeKnown copies resolved values into an evaluation context. Unknown
// entries stay out: referencing one evaluates to unknown, same as a missing
// name.
func mergeKnown(ctx expr.Context, acc map[string]Result) {
	for k, r := range acc {
		if r.Known {
			ctx[k] = r.Value
		}
	}
}

// store writes the evaluation result into acc, overwriting any prior value.
// An unknown result overwrites too, so stale values from earlier passes
// cannot leak forward.
func store(acc map[string]Result, d Def, ctx expr.Context) {
	if d.Expr == nil {
		acc[d.ID] = Result{}
		return
	}
	val, ok := d.Expr.Eval(ctx)
	if !ok {
		acc[d.ID] = Result{}
		return
	}
	acc[d.ID] = Result{Value: val, Known: true}
}
