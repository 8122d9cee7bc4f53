// Package document renders markdown documents with their component
// invocations expanded.
//
// Markdown is converted to HTML with goldmark and the result is walked as
// an x/net/html tree. Three invocation forms are recognized:
//
//	```component
//	badge(text="NEW")
//	button(text="Go")
//	```
//
// a fenced block with one invocation per line, `c:badge(text="NEW")` as an
// inline code span, and ::badge(text="NEW"):: inside running text.
package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"

	"github.com/conneroisu/partials/internal/errors"
	"github.com/conneroisu/partials/internal/logging"
	"github.com/conneroisu/partials/internal/parser"
	"github.com/conneroisu/partials/internal/registry"
	"github.com/conneroisu/partials/internal/renderer"
	"github.com/conneroisu/partials/internal/types"
)

// Class names applied by the processor.
const (
	FenceClass         = "partials-fence"
	InlineWrapperClass = "partials-inline-wrapper"
)

// inlineTextParents are the elements whose direct text may hold
// ::name(...):: invocations.
var inlineTextParents = map[string]bool{
	"p": true, "li": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "dd": true, "dt": true,
	"span": true, "em": true, "strong": true, "a": true, "mark": true,
	"del": true, "ins": true, "sub": true, "sup": true,
}

// Stats describes what a Process call expanded.
type Stats struct {
	// Rendered counts component instances rendered
	Rendered int
	// Failed counts error blocks shown in place of components
	Failed int
	// Used lists the distinct component names rendered, sorted
	Used []string
}

// Processor expands component invocations in markdown documents.
type Processor struct {
	registry *registry.ComponentRegistry
	renderer *renderer.Renderer
	markdown goldmark.Markdown
	options  types.RenderOptions
	folder   string
	logger   logging.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithRenderOptions sets the options used for block and fenced invocations.
// Inline forms always render in inline mode.
func WithRenderOptions(opts types.RenderOptions) Option {
	return func(p *Processor) { p.options = opts }
}

// WithRenderer sets the component renderer.
func WithRenderer(r *renderer.Renderer) Option {
	return func(p *Processor) {
		if r != nil {
			p.renderer = r
		}
	}
}

// WithComponentsFolder names the folder mentioned in lookup errors.
func WithComponentsFolder(folder string) Option {
	return func(p *Processor) { p.folder = folder }
}

// WithLogger sets the processor's logger.
func WithLogger(logger logging.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger.WithComponent("document")
		}
	}
}

// NewProcessor creates a processor resolving names against reg.
func NewProcessor(reg *registry.ComponentRegistry, opts ...Option) *Processor {
	p := &Processor{
		registry: reg,
		options:  types.DefaultRenderOptions(),
		logger:   logging.Nop(),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(gmparser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.renderer == nil {
		p.renderer = renderer.New(renderer.WithLogger(p.logger))
	}
	return p
}

// Render writes the HTML body fragment for a markdown document.
func (p *Processor) Render(ctx context.Context, w io.Writer, source []byte) (Stats, error) {
	body, stats, err := p.Process(ctx, source)
	if err != nil {
		return stats, err
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return stats, fmt.Errorf("writing document: %w", err)
		}
	}
	return stats, nil
}

// Process converts markdown to an HTML tree rooted at a <body> element and
// expands every invocation in it.
func (p *Processor) Process(ctx context.Context, source []byte) (*html.Node, Stats, error) {
	var buf bytes.Buffer
	if err := p.markdown.Convert(source, &buf); err != nil {
		return nil, Stats{}, fmt.Errorf("converting markdown: %w", err)
	}

	body := renderer.NewElement("body")
	nodes, err := html.ParseFragment(&buf, body)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("parsing rendered markdown: %w", err)
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}

	return body, p.Expand(ctx, body), nil
}

// Expand replaces the invocations found under root in place.
func (p *Processor) Expand(ctx context.Context, root *html.Node) Stats {
	run := &expansion{Processor: p, ctx: ctx, used: make(map[string]bool)}

	var fences, codes []*html.Node
	walk(root, func(n *html.Node) bool {
		switch n.Data {
		case "pre":
			if code := n.FirstChild; code != nil && code.Type == html.ElementNode && code.Data == "code" &&
				renderer.HasClass(code, "language-"+parser.FenceLanguage) {
				fences = append(fences, n)
			}
			return false
		case "code":
			codes = append(codes, n)
			return false
		}
		return !isComponent(n)
	})

	for _, pre := range fences {
		run.expandFence(pre)
	}
	for _, code := range codes {
		run.expandInlineCode(code)
	}
	run.expandText(root)

	stats := Stats{Rendered: run.rendered, Failed: run.failed}
	for name := range run.used {
		stats.Used = append(stats.Used, name)
	}
	sort.Strings(stats.Used)
	return stats
}

type expansion struct {
	*Processor
	ctx      context.Context
	rendered int
	failed   int
	used     map[string]bool
}

func (e *expansion) lookup(name string) (*types.Definition, error) {
	if def, ok := e.registry.Get(name); ok {
		return def, nil
	}
	return nil, errors.NewLookupError(name, e.registry.Names(), e.folder)
}

func (e *expansion) render(container *html.Node, def *types.Definition, props map[string]string, opts types.RenderOptions) {
	e.renderer.RenderContext(e.ctx, container, def, props, opts)
	e.rendered++
	e.used[def.Name] = true
}

func (e *expansion) expandFence(pre *html.Node) {
	source := renderer.TextContent(pre.FirstChild)
	container := renderer.NewElement("div")
	renderer.SetAttr(container, "class", FenceClass)
	replace(pre, container)

	invocations := parser.ParseBlock(source)
	if len(invocations) == 0 {
		renderer.RenderError(container, errors.ErrNoInvocations.Error())
		e.failed++
		e.logger.Warn(e.ctx, errors.ErrNoInvocations, "component block has no valid invocation")
		return
	}

	for _, inv := range invocations {
		child := renderer.NewElement("div")
		container.AppendChild(child)

		def, err := e.lookup(inv.Name)
		if err != nil {
			renderer.RenderError(child, err.Error())
			e.failed++
			e.logger.Warn(e.ctx, err, "unknown component", "name", inv.Name)
			continue
		}
		e.render(child, def, inv.Props, e.options)
	}
}

func (e *expansion) expandInlineCode(code *html.Node) {
	inv, ok := parser.ParseInlineCode(renderer.TextContent(code))
	if !ok {
		return
	}
	def, err := e.lookup(inv.Name)
	if err != nil {
		e.logger.Debug(e.ctx, "leaving inline code untouched", "name", inv.Name)
		return
	}

	span := renderer.NewElement("span")
	renderer.SetAttr(span, "class", InlineWrapperClass)
	replace(code, span)
	e.render(span, def, inv.Props, e.inlineOptions())
}

// expandText rewrites text nodes holding ::name(...):: invocations. Code,
// preformatted text and rendered components are never entered.
func (e *expansion) expandText(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.TextNode:
			if inlineTextParents[n.Data] && parser.ContainsInline(c.Data) {
				e.replaceInline(c)
			}
		case html.ElementNode:
			if c.Data != "code" && c.Data != "pre" && c.Data != "script" && c.Data != "style" && !isComponent(c) {
				e.expandText(c)
			}
		}
		c = next
	}
}

func (e *expansion) replaceInline(text *html.Node) {
	parent := text.Parent
	data := text.Data
	last := 0

	for _, m := range parser.FindInline(data) {
		if m.Start > last {
			parent.InsertBefore(renderer.NewText(data[last:m.Start]), text)
		}
		last = m.End

		if m.Invocation == nil {
			parent.InsertBefore(renderer.NewText(m.Raw), text)
			continue
		}
		def, err := e.lookup(m.Invocation.Name)
		if err != nil {
			parent.InsertBefore(renderer.NewText(m.Raw), text)
			continue
		}

		span := renderer.NewElement("span")
		renderer.SetAttr(span, "class", InlineWrapperClass)
		parent.InsertBefore(span, text)
		e.render(span, def, m.Invocation.Props, e.inlineOptions())
	}

	if last < len(data) {
		parent.InsertBefore(renderer.NewText(data[last:]), text)
	}
	parent.RemoveChild(text)
}

func (e *expansion) inlineOptions() types.RenderOptions {
	return types.RenderOptions{EnableScripts: e.options.EnableScripts, DisplayMode: types.DisplayInline}
}

func isComponent(n *html.Node) bool {
	return n.Type == html.ElementNode && renderer.HasClass(n, renderer.ContainerClass)
}

// walk visits element descendants of root; visit returns false to skip a
// subtree.
func walk(root *html.Node, visit func(*html.Node) bool) {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if visit(c) {
			walk(c, visit)
		}
	}
}

func replace(old, replacement *html.Node) {
	old.Parent.InsertBefore(replacement, old)
	old.Parent.RemoveChild(old)
}

