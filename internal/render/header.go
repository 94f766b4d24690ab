package render

import (
	"strconv"
	"strings"

	"github.com/pvemon/ttydash/internal/derive"
	"github.com/pvemon/ttydash/internal/expr"
)

// Value is a resolved template value: either numeric or textual. Computed
// builtins (uptime) produce text; counts and metric lookups produce numbers.
type Value struct {
	Num  float64
	Str  string
	Text bool
}

// NumValue wraps a numeric template value.
func NumValue(v float64) Value { return Value{Num: v} }

// TextValue wraps a textual template value.
func TextValue(s string) Value { return Value{Str: s, Text: true} }

// RenderHeader expands ${name}, ${name|format}, and ${name|format:decimals}
// tokens in a header template. Name lookup order: computed values, then
// global derived values, then the global metric context. Unresolved names
// render as the missing placeholder. Backslash escapes written literally in
// the template are interpreted exactly once; substituted values pass through
// untouched so their own backslashes are never reinterpreted.
func RenderHeader(template string, computed map[string]Value, derivedGlobal map[string]derive.Result, global expr.Context, missing string) string {
	var b strings.Builder
	b.Grow(len(template))
	rest := template
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			b.WriteString(interpretEscapes(rest))
			break
		}
		end := strings.Index(rest[start:], "}")
		if end < 0 {
			b.WriteString(interpretEscapes(rest))
			break
		}
		b.WriteString(interpretEscapes(rest[:start]))
		token := rest[start+2 : start+end]
		b.WriteString(expandToken(token, computed, derivedGlobal, global, missing))
		rest = rest[start+end+1:]
	}
	return b.String()
}

func expandToken(token string, computed map[string]Value, derivedGlobal map[string]derive.Result, global expr.Context, missing string) string {
	name := token
	format := ""
	decimals := 1
	if i := strings.Index(token, "|"); i >= 0 {
		name = token[:i]
		format = token[i+1:]
		if j := strings.Index(format, ":"); j >= 0 {
			if d, err := strconv.Atoi(format[j+1:]); err == nil {
				decimals = d
			}
			format = format[:j]
		}
	}

	val, ok := lookup(name, computed, derivedGlobal, global)
	if !ok {
		return missing
	}
	if val.Text {
		return val.Str
	}
	if format == "" {
		return strconv.FormatFloat(val.Num, 'g', -1, 64)
	}
	return Format(val.Num, true, format, decimals, missing)
}

func lookup(name string, computed map[string]Value, derivedGlobal map[string]derive.Result, global expr.Context) (Value, bool) {
	if v, ok := computed[name]; ok {
		return v, true
	}
	// A derived id that evaluated to unknown still owns its name: it renders
	// as missing instead of exposing a same-named global metric value.
	if r, ok := derivedGlobal[name]; ok {
		if !r.Known {
			return Value{}, false
		}
		return NumValue(r.Value), true
	}
	if raw, ok := global[name]; ok {
		switch v := raw.(type) {
		case float64:
			return NumValue(v), true
		case string:
			return TextValue(v), true
		}
	}
	return Value{}, false
}
