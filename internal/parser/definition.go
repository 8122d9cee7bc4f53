// Package parser turns component source documents and invocation strings
// into component records.
//
// A component source document is markdown with front matter followed by an
// HTML template and optional <style> and <script> blocks:
//
//	---
//	name: button
//	description: A customizable button
//	props:
//	  text: Click Me
//	  color: "#7c5cbf"
//	---
//	<button style="background: {{color}}">{{text}}</button>
//	<style>button { border: none; }</style>
//	<script>el.querySelector("button").addClass("ready")</script>
//
// Parsing never fails loudly: malformed input yields an absent result so a
// folder of definitions or a block of invocations survives any single bad
// entry.
package parser

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/conneroisu/partials/internal/types"
)

var (
	stylePattern  = regexp.MustCompile(`(?is)<style>(.*?)</style>`)
	scriptPattern = regexp.MustCompile(`(?is)<script>(.*?)</script>`)
	mdSuffix      = regexp.MustCompile(`(?i)\.md$`)
)

// ParseDefinitionFile reads and parses a component source document.
// Read failures are returned as errors; a document that is not a valid
// component yields (nil, false, nil).
func ParseDefinitionFile(path string) (*types.Definition, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("reading component file: %w", err)
	}
	def, ok := ParseDefinition(string(content), path)
	return def, ok, nil
}

// ParseDefinition parses a component definition from a document's content.
// path is recorded as the definition's source and supplies the name when
// the front matter does not.
//
// The result is absent when the document has no front matter or when the
// template is blank once the <style> and <script> blocks are removed.
func ParseDefinition(content, path string) (*types.Definition, bool) {
	meta, body, ok := splitFrontMatter(content)
	if !ok {
		return nil, false
	}
	body = strings.TrimSpace(body)

	name := scalarValue(meta, "name")
	if name == "" {
		name = NameFromPath(path)
	}

	styles, body := extractBlock(stylePattern, body)
	script, body := extractBlock(scriptPattern, body)

	template := strings.TrimSpace(body)
	if template == "" {
		return nil, false
	}

	return &types.Definition{
		Name:        name,
		Description: scalarValue(meta, "description"),
		Props:       mappingValue(meta, "props"),
		Template:    template,
		Styles:      styles,
		Script:      script,
		SourcePath:  path,
	}, true
}

// extractBlock returns the trimmed inner text of the first match of pattern
// and the body with that match removed. Later matches stay in the body.
func extractBlock(pattern *regexp.Regexp, body string) (inner, rest string) {
	loc := pattern.FindStringSubmatchIndex(body)
	if loc == nil {
		return "", body
	}
	inner = strings.TrimSpace(body[loc[2]:loc[3]])
	return inner, body[:loc[0]] + body[loc[1]:]
}

// NameFromPath derives a component name from the last path segment with a
// trailing ".md" removed.
//
//	NameFromPath("_components/ui/button.md") // "button"
//	NameFromPath("card.MD")                  // "card"
func NameFromPath(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		path = path[idx+1:]
	}
	return mdSuffix.ReplaceAllString(path, "")
}
