//go:build property
// +build property

package renderer

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/partials/internal/types"
)

// TestRenderProperties checks override precedence and complete substitution.
func TestRenderProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("overrides always win over defaults", prop.ForAll(
		func(key, def, override string) bool {
			merged := MergeProps(map[string]string{key: def}, map[string]string{key: override})
			return merged[key] == override
		},
		gen.Identifier(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("defaults survive when not overridden", prop.ForAll(
		func(key, other, value string) bool {
			if key == other {
				return true
			}
			merged := MergeProps(map[string]string{key: value}, map[string]string{other: "x"})
			return merged[key] == value
		},
		gen.Identifier(),
		gen.Identifier(),
		gen.AlphaString(),
	))

	properties.Property("no placeholder survives substitution", prop.ForAll(
		func(keys []string, filler string) bool {
			var b strings.Builder
			props := make(map[string]string)
			for i, k := range keys {
				b.WriteString(filler)
				b.WriteString("{{ " + k + " }}")
				if i%2 == 0 {
					props[k] = "{{" + k + "}}"
				}
			}
			out := Substitute(b.String(), props)
			return !placeholderPattern.MatchString(out)
		},
		gen.SliceOf(gen.Identifier()),
		gen.OneConstOf("", "{", "}", "<p>", "{{", "}}", " "),
	))

	properties.Property("substituted values are escaped", prop.ForAll(
		func(value string) bool {
			out := Substitute("<p>{{v}}</p>", map[string]string{"v": value})
			inner := strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
			return !strings.ContainsAny(inner, `<>"`)
		},
		gen.OneGenOf(gen.AnyString(), gen.OneConstOf(`<script>`, `"quoted"`, `a & b`, `</p><p>`)),
	))

	properties.TestingRun(t)
}

// TestScopeProperties checks that scoping is idempotent and that two
// renders of the same styles differ only in the scope token.
func TestScopeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	selector := gen.OneConstOf(".a", "p", "#id", ".b:hover", "ul > li", ":root", "a[href]", "from", "25%")
	rule := gen.SliceOfN(3, selector).Map(func(sels []string) string {
		return strings.Join(sels, ", ") + " { color: red; }"
	})
	stylesheet := gen.SliceOf(gen.OneGenOf(
		rule,
		rule.Map(func(r string) string { return "@media print { " + r + " }" }),
		gen.Const("@keyframes k { from { a: b } to { a: c } }"),
	)).Map(func(rules []string) string { return strings.Join(rules, "\n") })

	properties.Property("scoping is idempotent", prop.ForAll(
		func(css string) bool {
			scope := ScopeSelector("pc-x-aaaaaa")
			once := ScopeStyles(css, scope)
			return ScopeStyles(once, scope) == once
		},
		stylesheet,
	))

	properties.Property("renders differ only in the scope token", prop.ForAll(
		func(css string) bool {
			first := ScopeStyles(css, ScopeSelector("pc-x-aaaaaa"))
			second := ScopeStyles(css, ScopeSelector("pc-x-bbbbbb"))
			return strings.ReplaceAll(first, "pc-x-aaaaaa", "pc-x-bbbbbb") == second
		},
		stylesheet,
	))

	properties.Property("rendered containers carry fresh tokens", prop.ForAll(
		func(text string) bool {
			props := types.NewProps()
			props.Set("text", "d")
			def := &types.Definition{Name: "p", Props: props, Template: "<p>{{text}}</p>", Styles: "p { a: b }"}
			r := New()
			a, b := NewElement("div"), NewElement("div")
			r.Render(a, def, map[string]string{"text": text}, types.DefaultRenderOptions())
			r.Render(b, def, map[string]string{"text": text}, types.DefaultRenderOptions())

			tokenA, _ := GetAttr(a, ScopeAttr)
			tokenB, _ := GetAttr(b, ScopeAttr)
			styleA := TextContent(QuerySelector(a, "style"))
			styleB := TextContent(QuerySelector(b, "style"))
			return strings.ReplaceAll(styleA, tokenA, tokenB) == styleB &&
				TextContent(QuerySelector(a, "p")) == text
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
