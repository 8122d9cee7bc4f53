package renderer

import (
	"regexp"
	"strings"
)

// ScopeSelector returns the attribute selector that matches a container
// tagged with token.
func ScopeSelector(token string) string {
	return `[data-scope="` + token + `"]`
}

type blockKind int

const (
	// blockRule is a style rule body; braces nested in it are copied as is.
	blockRule blockKind = iota
	// blockGroup holds rules that are scoped like top-level ones (@media).
	blockGroup
	// blockKeyframes holds keyframe stops, which are never scoped.
	blockKeyframes
	// blockOpaque is any other at-rule body (@font-face, @page).
	blockOpaque
)

var groupAtRules = map[string]bool{
	"media":          true,
	"supports":       true,
	"container":      true,
	"layer":          true,
	"scope":          true,
	"document":       true,
	"-moz-document":  true,
	"starting-style": true,
}

var keyframeStopPattern = regexp.MustCompile(`^\d+(\.\d+)?%$`)

// ScopeStyles prefixes every selector in css with scope so the rules only
// apply inside the scoped container. Selector lists are split on top-level
// commas. Selectors starting with :root, keyframe stops and the contents of
// @keyframes blocks are left alone, as are selectors that already start
// with scope, which makes the transform idempotent. Rules inside @media and
// similar grouping at-rules are scoped; other at-rule bodies are copied.
func ScopeStyles(css, scope string) string {
	if scope == "" || strings.TrimSpace(css) == "" {
		return css
	}

	var (
		out   strings.Builder
		stack []blockKind
		start int
	)
	out.Grow(len(css) + len(scope)*8)

	context := func() blockKind {
		if len(stack) == 0 {
			return blockGroup
		}
		return stack[len(stack)-1]
	}

	for i := 0; i < len(css); {
		switch c := css[i]; {
		case c == '/' && i+1 < len(css) && css[i+1] == '*':
			end := strings.Index(css[i+2:], "*/")
			next := len(css)
			if end >= 0 {
				next = i + 2 + end + 2
			}
			// comments ahead of a selector are flushed so they stay verbatim
			if strings.TrimSpace(css[start:i]) == "" {
				out.WriteString(css[start:next])
				start = next
			}
			i = next

		case c == '"' || c == '\'':
			i = skipString(css, i)

		case c == '{':
			prelude := css[start:i]
			kind := blockOpaque
			switch context() {
			case blockGroup:
				if name, ok := atRuleName(prelude); ok {
					switch {
					case strings.HasSuffix(name, "keyframes"):
						kind = blockKeyframes
					case groupAtRules[name]:
						kind = blockGroup
					}
					out.WriteString(prelude)
				} else {
					kind = blockRule
					out.WriteString(scopeSelectorList(prelude, scope))
				}
			case blockKeyframes:
				kind = blockRule
				out.WriteString(prelude)
			default:
				out.WriteString(prelude)
			}
			out.WriteByte('{')
			stack = append(stack, kind)
			i++
			start = i

		case c == '}':
			out.WriteString(css[start : i+1])
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			i++
			start = i

		case c == ';':
			out.WriteString(css[start : i+1])
			i++
			start = i

		default:
			i++
		}
	}

	out.WriteString(css[start:])
	return out.String()
}

// skipString returns the index just past the quoted string starting at i.
func skipString(css string, i int) int {
	quote := css[i]
	for j := i + 1; j < len(css); j++ {
		switch css[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(css)
}

// atRuleName returns the lowercased name of an at-rule prelude.
func atRuleName(prelude string) (string, bool) {
	trimmed := strings.TrimSpace(prelude)
	if !strings.HasPrefix(trimmed, "@") {
		return "", false
	}
	name := trimmed[1:]
	if end := strings.IndexAny(name, " \t\r\n(\"'"); end >= 0 {
		name = name[:end]
	}
	return strings.ToLower(name), true
}

// scopeSelectorList rewrites a rule prelude. Leading whitespace is kept and
// the list is rejoined with ", " followed by a single space.
func scopeSelectorList(prelude, scope string) string {
	body := strings.TrimLeft(prelude, " \t\r\n")
	lead := prelude[:len(prelude)-len(body)]

	var scoped []string
	for _, sel := range splitSelectors(body) {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		scoped = append(scoped, scopeSelector(sel, scope))
	}
	if len(scoped) == 0 {
		return prelude
	}
	return lead + strings.Join(scoped, ", ") + " "
}

func scopeSelector(sel, scope string) string {
	lower := strings.ToLower(sel)
	switch {
	case strings.HasPrefix(sel, scope),
		strings.HasPrefix(lower, ":root"),
		lower == "from", lower == "to",
		keyframeStopPattern.MatchString(sel):
		return sel
	}
	return scope + " " + sel
}

// splitSelectors splits a selector list on commas outside parentheses,
// brackets and strings.
func splitSelectors(list string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(list); i++ {
		switch list[i] {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case '"', '\'':
			i = skipString(list, i) - 1
		case ',':
			if depth == 0 {
				parts = append(parts, list[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, list[start:])
}
