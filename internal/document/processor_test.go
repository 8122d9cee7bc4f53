package document

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/conneroisu/partials/internal/errors"
	"github.com/conneroisu/partials/internal/registry"
	"github.com/conneroisu/partials/internal/renderer"
	"github.com/conneroisu/partials/internal/types"
)

func fixedToken(name string) string { return "pc-" + name + "-test01" }

func newTestProcessor(t *testing.T, defs ...*types.Definition) *Processor {
	t.Helper()
	reg := registry.NewComponentRegistry()
	for _, def := range defs {
		reg.Register(def)
	}
	return NewProcessor(reg,
		WithRenderer(renderer.New(renderer.WithTokenSource(fixedToken))),
		WithComponentsFolder("_components"),
	)
}

func badge() *types.Definition {
	props := types.NewProps()
	props.Set("text", "badge")
	return &types.Definition{
		Name:     "badge",
		Props:    props,
		Template: `<span class="badge">{{text}}</span>`,
	}
}

func alert() *types.Definition {
	props := types.NewProps()
	props.Set("message", "careful")
	return &types.Definition{
		Name:     "alert",
		Props:    props,
		Template: `<div class="alert">{{message}}</div>`,
		Styles:   ".alert { color: red; }",
	}
}

func renderString(t *testing.T, p *Processor, source string) (string, Stats) {
	t.Helper()
	var buf bytes.Buffer
	stats, err := p.Render(context.Background(), &buf, []byte(source))
	require.NoError(t, err)
	return strings.TrimSpace(buf.String()), stats
}

func process(t *testing.T, p *Processor, source string) (*html.Node, Stats) {
	t.Helper()
	body, stats, err := p.Process(context.Background(), []byte(source))
	require.NoError(t, err)
	return body, stats
}

func errorTexts(root *html.Node) []string {
	var texts []string
	for _, n := range renderer.QuerySelectorAll(root, ".partials-error-text") {
		texts = append(texts, renderer.TextContent(n))
	}
	return texts
}

func TestProcess_FencedBlock(t *testing.T) {
	p := newTestProcessor(t, badge(), alert())

	body, stats := process(t, p, "# Title\n\n```component\nbadge(text=\"NEW\")\nnot an invocation ((\nalert\n```\n")

	fence := renderer.QuerySelector(body, "."+FenceClass)
	require.NotNil(t, fence)
	assert.Nil(t, renderer.QuerySelector(body, "pre"))

	components := renderer.QuerySelectorAll(fence, "."+renderer.ContainerClass)
	require.Len(t, components, 2)

	name, _ := renderer.GetAttr(components[0], renderer.ComponentAttr)
	assert.Equal(t, "badge", name)
	assert.Equal(t, "NEW", renderer.TextContent(renderer.QuerySelector(components[0], ".badge")))

	name, _ = renderer.GetAttr(components[1], renderer.ComponentAttr)
	assert.Equal(t, "alert", name)
	assert.Equal(t, "careful", renderer.TextContent(renderer.QuerySelector(components[1], ".alert")))

	assert.Equal(t, 2, stats.Rendered)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, []string{"alert", "badge"}, stats.Used)
}

func TestProcess_FencedBlockUsesConfiguredDisplayMode(t *testing.T) {
	reg := registry.NewComponentRegistry()
	reg.Register(badge())
	p := NewProcessor(reg, WithRenderOptions(types.RenderOptions{DisplayMode: types.DisplayBlock}))

	body, _ := process(t, p, "```component\nbadge\n```\n")
	component := renderer.QuerySelector(body, "."+renderer.ContainerClass)
	require.NotNil(t, component)
	assert.True(t, renderer.HasClass(component, renderer.BlockClass))
}

func TestProcess_UnknownComponentInBlock(t *testing.T) {
	p := newTestProcessor(t, badge())

	body, stats := process(t, p, "```component\nbadge\nbadeg\n```\n")

	assert.Equal(t, 1, stats.Rendered)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t,
		[]string{`component "badeg" not found. Did you mean "badge"? Available components: badge`},
		errorTexts(body))
}

func TestProcess_UnknownComponentWithEmptyRegistry(t *testing.T) {
	p := newTestProcessor(t)

	body, _ := process(t, p, "```component\nbadge\n```\n")

	assert.Equal(t,
		[]string{`component "badge" not found. Create component definitions in the "_components" folder first.`},
		errorTexts(body))
}

func TestProcess_BlockWithoutInvocations(t *testing.T) {
	p := newTestProcessor(t, badge())

	body, stats := process(t, p, "```component\n\n(((\n```\n")

	assert.Equal(t, []string{errors.ErrNoInvocations.Error()}, errorTexts(body))
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, stats.Rendered)
}

func TestProcess_OtherFencesUntouched(t *testing.T) {
	p := newTestProcessor(t, badge())

	out, stats := renderString(t, p, "```go\nbadge\n```\n")

	assert.Equal(t, "<pre><code class=\"language-go\">badge\n</code></pre>", out)
	assert.Zero(t, stats.Rendered)
}

func TestRender_InlineText(t *testing.T) {
	p := newTestProcessor(t, badge())

	out, stats := renderString(t, p, "Status ::badge(text=\"NEW\"):: done")

	assert.Equal(t,
		`<p>Status <span class="partials-inline-wrapper partials-component" data-component="badge" data-scope="pc-badge-test01">`+
			`<div class="partials-inner"><span class="badge">NEW</span></div></span> done</p>`,
		out)
	assert.Equal(t, 1, stats.Rendered)
}

func TestRender_InlineTextSeveralMatches(t *testing.T) {
	p := newTestProcessor(t, badge())

	body, stats := process(t, p, "::badge:: and ::missing:: and ::badge(text='b')::")

	assert.Equal(t, 2, stats.Rendered)
	assert.Equal(t, []string{"badge"}, stats.Used)

	paragraph := renderer.QuerySelector(body, "p")
	require.NotNil(t, paragraph)
	text := renderer.TextContent(paragraph)
	assert.Contains(t, text, "::missing::")
	assert.Equal(t, "badge and ::missing:: and b", text)
}

func TestRender_InlineTextInNestedFormatting(t *testing.T) {
	p := newTestProcessor(t, badge())

	body, stats := process(t, p, "- item with **bold ::badge:: text**\n")

	assert.Equal(t, 1, stats.Rendered)
	strong := renderer.QuerySelector(body, "strong")
	require.NotNil(t, strong)
	assert.NotNil(t, renderer.QuerySelector(strong, "."+InlineWrapperClass))
}

func TestRender_InlineTextIgnoredInCode(t *testing.T) {
	p := newTestProcessor(t, badge())

	out, stats := renderString(t, p, "Use `::badge::` to show a badge.\n\n    ::badge::\n")

	assert.Zero(t, stats.Rendered)
	assert.Contains(t, out, "<code>::badge::</code>")
	assert.Contains(t, out, "<pre><code>::badge::\n</code></pre>")
}

func TestRender_InlineCode(t *testing.T) {
	p := newTestProcessor(t, badge())

	body, stats := process(t, p, "A `c:badge(text=\"hot\")` item and `c:missing` here.")

	assert.Equal(t, 1, stats.Rendered)

	wrapper := renderer.QuerySelector(body, "."+InlineWrapperClass)
	require.NotNil(t, wrapper)
	assert.False(t, renderer.HasClass(wrapper, renderer.BlockClass))
	assert.Equal(t, "hot", renderer.TextContent(wrapper))

	codes := renderer.QuerySelectorAll(body, "code")
	require.Len(t, codes, 1)
	assert.Equal(t, "c:missing", renderer.TextContent(codes[0]))
}

func TestRender_InlineFormsIgnoreBlockMode(t *testing.T) {
	reg := registry.NewComponentRegistry()
	reg.Register(badge())
	p := NewProcessor(reg, WithRenderOptions(types.RenderOptions{DisplayMode: types.DisplayBlock}))

	body, _ := process(t, p, "Text ::badge:: and `c:badge`")

	wrappers := renderer.QuerySelectorAll(body, "."+InlineWrapperClass)
	require.Len(t, wrappers, 2)
	for _, w := range wrappers {
		assert.False(t, renderer.HasClass(w, renderer.BlockClass))
	}
}

func TestRender_ComponentOutputIsNotReexpanded(t *testing.T) {
	echo := &types.Definition{
		Name:     "echo",
		Props:    types.NewProps(),
		Template: "<p>::echo::</p>",
	}
	p := newTestProcessor(t, echo)

	_, stats := process(t, p, "::echo::")

	assert.Equal(t, 1, stats.Rendered)
}

func TestRender_ScopedStyles(t *testing.T) {
	p := newTestProcessor(t, alert())

	out, _ := renderString(t, p, "```component\nalert(message=\"x\")\n```\n")

	assert.Contains(t, out, `<style>[data-scope="pc-alert-test01"] .alert { color: red; }</style>`)
}

func TestRender_EscapesProps(t *testing.T) {
	p := newTestProcessor(t, badge())

	out, _ := renderString(t, p, "```component\nbadge(text=\"<script>x</script>\")\n```\n")

	assert.NotContains(t, out, "<script>x</script>")
	assert.Contains(t, out, "&lt;script&gt;x&lt;/script&gt;")
}

func TestPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Page("A <b> title", []byte("<p>hi</p>"), true).Render(context.Background(), &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>A &lt;b&gt; title</title>")
	assert.Contains(t, out, "<p>hi</p>")
	assert.Contains(t, out, `"`+ReloadPath+`"`)
	assert.True(t, strings.HasSuffix(out, "</body></html>"))

	buf.Reset()
	require.NoError(t, Page("t", nil, false).Render(context.Background(), &buf))
	assert.NotContains(t, buf.String(), "<script>")
}
