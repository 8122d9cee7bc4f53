package parser

import (
	"regexp"
	"strings"

	"github.com/conneroisu/partials/internal/types"
)

// FenceLanguage is the info string of a fenced block holding invocations.
const FenceLanguage = "component"

// InlineCodePrefix marks an inline code span as an invocation, e.g. `c:badge`.
const InlineCodePrefix = "c:"

var (
	invocationPattern = regexp.MustCompile(`^([a-zA-Z_][\w-]*)\s*(?:\(([\s\S]*)\))?$`)
	argumentPattern   = regexp.MustCompile(`(\w[\w-]*)\s*=\s*(?:"([^"]*?)"|'([^']*?)')`)
	inlinePattern     = regexp.MustCompile(`::(([a-zA-Z_][\w-]*)(?:\([^)]*\))?)::`)
)

// ParseInvocation parses "name" or `name(key="value", other='value')`.
//
// Arguments are found by scanning, so separators are free-form and pairs
// without a quoted value are skipped. When a key repeats, the last value
// wins. The result is absent for blank input or an invalid name.
func ParseInvocation(text string) (*types.Invocation, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false
	}

	match := invocationPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return nil, false
	}

	return &types.Invocation{
		Name:  match[1],
		Props: parseArguments(match[2]),
	}, true
}

func parseArguments(args string) map[string]string {
	props := make(map[string]string)
	if strings.TrimSpace(args) == "" {
		return props
	}

	for _, loc := range argumentPattern.FindAllStringSubmatchIndex(args, -1) {
		key := args[loc[2]:loc[3]]
		switch {
		case loc[4] >= 0:
			props[key] = args[loc[4]:loc[5]]
		case loc[6] >= 0:
			props[key] = args[loc[6]:loc[7]]
		}
	}

	return props
}

// ParseBlock parses every line of a fenced block independently. Lines that
// do not parse are dropped without affecting the others.
func ParseBlock(source string) []types.Invocation {
	var invocations []types.Invocation
	for _, line := range strings.Split(source, "\n") {
		if inv, ok := ParseInvocation(line); ok {
			invocations = append(invocations, *inv)
		}
	}
	return invocations
}

// ParseInlineCode parses the content of an inline code span of the form
// `c:name(...)`. Surrounding backticks are tolerated.
func ParseInlineCode(code string) (*types.Invocation, bool) {
	content := strings.TrimSpace(strings.Trim(code, "`"))
	if !strings.HasPrefix(content, InlineCodePrefix) {
		return nil, false
	}
	return ParseInvocation(content[len(InlineCodePrefix):])
}

// InlineMatch is one ::name(...):: occurrence in running text.
type InlineMatch struct {
	// Start and End are byte offsets of the whole match including colons
	Start, End int
	// Raw is the matched text, kept so unresolved matches can be restored
	Raw string
	// Invocation is the parsed call, nil when it did not parse
	Invocation *types.Invocation
}

// FindInline locates every ::name:: or ::name(key="value")::
// occurrence in text.
func FindInline(text string) []InlineMatch {
	var matches []InlineMatch
	for _, loc := range inlinePattern.FindAllStringSubmatchIndex(text, -1) {
		m := InlineMatch{
			Start: loc[0],
			End:   loc[1],
			Raw:   text[loc[0]:loc[1]],
		}
		if inv, ok := ParseInvocation(text[loc[2]:loc[3]]); ok {
			m.Invocation = inv
		}
		matches = append(matches, m)
	}
	return matches
}

// ContainsInline reports whether text has at least one inline invocation.
func ContainsInline(text string) bool {
	return inlinePattern.MatchString(text)
}

// FormatInvocation renders a definition's defaults as an invocation string,
// keeping the declared prop order. Parsing the result and rendering it
// produces the same output as rendering with no overrides.
func FormatInvocation(def *types.Definition) string {
	if def.Props.Len() == 0 {
		return def.Name
	}

	args := make([]string, 0, def.Props.Len())
	for _, key := range def.Props.Keys {
		args = append(args, key+"="+quoteArgument(def.Props.Values[key]))
	}
	return def.Name + "(" + strings.Join(args, ", ") + ")"
}

// FenceSnippet wraps FormatInvocation in a fenced component block, ready to
// paste into a document.
func FenceSnippet(def *types.Definition) string {
	return "```" + FenceLanguage + "\n" + FormatInvocation(def) + "\n```"
}

func quoteArgument(value string) string {
	if strings.Contains(value, `"`) && !strings.Contains(value, "'") {
		return "'" + value + "'"
	}
	return `"` + value + `"`
}
