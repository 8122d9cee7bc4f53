package parser

import (
	"regexp"
	"strings"

	"github.com/conneroisu/partials/internal/types"
)

// The front matter reader is line oriented on purpose: it accepts flat
// "key: value" pairs and one level of indented mapping, nothing more.
// Anything it cannot make sense of is treated as absent.

var (
	// frontMatterPattern matches an opening "---" line at the start of the
	// document (after optional whitespace), the metadata, and a closing "---" line.
	frontMatterPattern = regexp.MustCompile(`^\s*---[ \t]*\r?\n(?:([\s\S]*?)\r?\n)?---[ \t]*(?:\r?\n|$)`)

	// mapEntryPattern matches a two-or-more-space indented "key: value" line.
	mapEntryPattern = regexp.MustCompile(`^[ \t]{2,}([\w-]+):[ \t]*(.*)$`)
)

// splitFrontMatter separates the metadata block from the body. ok is false
// when the document has no front matter.
func splitFrontMatter(content string) (meta, body string, ok bool) {
	content = strings.TrimPrefix(content, "\uFEFF")

	loc := frontMatterPattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return "", "", false
	}

	if loc[2] >= 0 {
		meta = content[loc[2]:loc[3]]
	}
	return meta, content[loc[1]:], true
}

// scalarValue extracts a single-line "key: value" from the metadata. The
// first matching line wins.
func scalarValue(meta, key string) string {
	pattern := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(key) + `:[ \t]*(.+)$`)
	match := pattern.FindStringSubmatch(meta)
	if match == nil {
		return ""
	}
	return unquote(strings.TrimSpace(match[1]))
}

// mappingValue extracts the flat mapping introduced by "key:" with a blank
// value. The mapping ends at the first line that is not an indented entry.
func mappingValue(meta, key string) types.Props {
	props := types.NewProps()
	header := regexp.MustCompile(`^` + regexp.QuoteMeta(key) + `:\s*$`)

	inMap := false
	for _, line := range strings.Split(meta, "\n") {
		if header.MatchString(line) {
			inMap = true
			continue
		}
		if !inMap {
			continue
		}

		match := mapEntryPattern.FindStringSubmatch(line)
		if match == nil {
			inMap = false
			continue
		}
		props.Set(match[1], unquote(strings.TrimSpace(match[2])))
	}

	return props
}

// unquote strips one layer of matching single or double quotes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
