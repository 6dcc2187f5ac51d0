package invariants

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Context maps check aliases to the chainable output data those checks
// produced earlier in the same group evaluation.
type Context map[string]map[string]any

// With returns a copy of the context extended with one alias. The receiver is
// never mutated; each evaluation step threads its own snapshot.
func (c Context) With(alias string, data map[string]any) Context {
	next := make(Context, len(c)+1)

	for k, v := range c {
		next[k] = v
	}

	next[alias] = data
	return next
}

// ResolvePlaceholders walks the parameter map and substitutes every
// {{alias.property}} token whose alias and property resolve against the
// context. The token body splits on the first dot only; property lookup is
// case-insensitive. Unresolvable tokens stay verbatim so a missing chain
// degrades into a literal-string comparison instead of aborting. The returned
// resolutions list holds each distinct token that was substituted.
func ResolvePlaceholders(params map[string]any, chain Context) (map[string]any, []string) {
	resolutions := []string{}
	seen := map[string]bool{}

	record := func(token string) {
		if !seen[token] {
			seen[token] = true
			resolutions = append(resolutions, token)
		}
	}

	resolved, _ := resolveValue(params, chain, record).(map[string]any)
	return resolved, resolutions
}

func resolveValue(value any, chain Context, record func(string)) any {
	switch v := value.(type) {
	case string:
		return resolveString(v, chain, record)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = resolveValue(item, chain, record)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = resolveValue(item, chain, record)
		}
		return out
	}

	return value
}

func resolveString(s string, chain Context, record func(string)) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
		body := token[2 : len(token)-2]

		alias, property, ok := strings.Cut(body, ".")
		if !ok {
			return token
		}

		data, ok := chain[alias]
		if !ok {
			return token
		}

		for key, value := range data {
			if strings.EqualFold(key, property) {
				record(token)
				return Stringify(value)
			}
		}

		return token
	})
}
