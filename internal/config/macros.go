package config

import (
	"regexp"
	"strings"
)

// colorMacroPattern matches ${colors.path.to.value} tokens.
var colorMacroPattern = regexp.MustCompile(`\$\{colors\.([a-zA-Z0-9_.-]+)\}`)

// ApplyColorMacros rewrites every string leaf of the decoded configuration
// tree, replacing ${colors.path} tokens with the value at that path in the
// colors table. Unresolvable tokens are left verbatim. This is a plain
// textual replacement pass applied once, before the engine is built; it is
// not a templating engine.
func ApplyColorMacros(tree map[string]interface{}) map[string]interface{} {
	colors, _ := tree["colors"].(map[string]interface{})
	rewritten := rewriteStrings(tree, func(s string) string {
		return colorMacroPattern.ReplaceAllStringFunc(s, func(token string) string {
			path := colorMacroPattern.FindStringSubmatch(token)[1]
			if val, ok := resolveColor(colors, path); ok {
				return val
			}
			return token
		})
	})
	return rewritten.(map[string]interface{})
}

// resolveColor walks a dotted path through the colors tree.
func resolveColor(colors map[string]interface{}, path string) (string, bool) {
	var node interface{} = colors
	for _, part := range strings.Split(path, ".") {
		m, ok := node.(map[string]interface{})
		if !ok {
			return "", false
		}
		node, ok = m[part]
		if !ok {
			return "", false
		}
	}
	s, ok := node.(string)
	return s, ok
}

// rewriteStrings applies fn to every string leaf of a yaml-decoded tree,
// returning a fresh tree.
func rewriteStrings(node interface{}, fn func(string) string) interface{} {
	switch v := node.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, child := range v {
			out[k] = rewriteStrings(child, fn)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, child := range v {
			out[i] = rewriteStrings(child, fn)
		}
		return out
	case string:
		return fn(v)
	default:
		return v
	}
}

// SubstVars replaces ${var} tokens in a query string using globals.vars.
// Applied at fetch time, to query strings only.
func SubstVars(s string, vars map[string]string) string {
	out := s
	for k, v := range vars {
		out = strings.ReplaceAll(out, "${"+k+"}", v)
	}
	return out
}
