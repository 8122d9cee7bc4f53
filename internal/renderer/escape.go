package renderer

import (
	"regexp"
	"strings"
)

var (
	htmlEscaper        = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	placeholderPattern = regexp.MustCompile(`\{\{\s*([\w-]+)\s*\}\}`)
)

// EscapeHTML escapes &, <, > and the double quote. Single quotes are left
// alone, so values must not be placed inside single-quoted attributes.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// MergeProps overlays overrides on defaults. Neither input is modified.
func MergeProps(defaults, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Substitute replaces every {{key}} placeholder in template with the escaped
// value of props[key]. Whitespace inside the braces is ignored and unknown
// keys become the empty string. No placeholder survives in the result.
func Substitute(template string, props map[string]string) string {
	out := placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := placeholderPattern.FindStringSubmatch(token)[1]
		return EscapeHTML(props[key])
	})

	// removing one token can join its neighbours into a new one
	for placeholderPattern.MatchString(out) {
		out = placeholderPattern.ReplaceAllString(out, "")
	}
	return out
}

// Placeholders lists the distinct keys referenced by template, in order of
// first appearance.
func Placeholders(template string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			keys = append(keys, match[1])
		}
	}
	return keys
}
