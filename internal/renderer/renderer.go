// Package renderer instantiates component definitions into HTML nodes.
//
// Rendering merges the caller's props over the definition's defaults,
// substitutes them into the template with HTML escaping, scopes the
// component's styles to a per-render token and optionally runs the
// component's script against the rendered nodes. A render never fails the
// caller: script failures are logged and swallowed, and lookup failures are
// shown in place with RenderError.
package renderer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/conneroisu/partials/internal/errors"
	"github.com/conneroisu/partials/internal/logging"
	"github.com/conneroisu/partials/internal/types"
)

// Class names applied to rendered containers.
const (
	ContainerClass = "partials-component"
	BlockClass     = "partials-block"
	InnerClass     = "partials-inner"
	ErrorClass     = "partials-error"
)

// Attributes applied to rendered containers.
const (
	ComponentAttr = "data-component"
	ScopeAttr     = "data-scope"
)

// DefaultScriptTimeout bounds a single script execution.
const DefaultScriptTimeout = 2 * time.Second

const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// TokenSource produces a scope token for a render of the named component.
type TokenSource func(name string) string

// Renderer renders component definitions into container nodes. It holds no
// per-render state and is safe for concurrent use as long as each call gets
// its own container.
type Renderer struct {
	logger        logging.Logger
	scripts       ScriptRunner
	scriptTimeout time.Duration
	tokens        TokenSource
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for script failures and recovered panics.
func WithLogger(logger logging.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger.WithComponent("renderer")
		}
	}
}

// WithScriptRunner replaces the default script runtime.
func WithScriptRunner(runner ScriptRunner) Option {
	return func(r *Renderer) { r.scripts = runner }
}

// WithScriptTimeout sets the timeout of the default script runtime.
func WithScriptTimeout(timeout time.Duration) Option {
	return func(r *Renderer) {
		if timeout > 0 {
			r.scriptTimeout = timeout
		}
	}
}

// WithTokenSource replaces the random scope token generator.
func WithTokenSource(source TokenSource) Option {
	return func(r *Renderer) {
		if source != nil {
			r.tokens = source
		}
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		logger:        logging.Nop(),
		scriptTimeout: DefaultScriptTimeout,
		tokens:        RandomToken,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.scripts == nil {
		r.scripts = NewScriptRuntime(r.scriptTimeout, r.logger)
	}
	return r
}

// Render instantiates def into container. See RenderContext.
func (r *Renderer) Render(container *html.Node, def *types.Definition, userProps map[string]string, opts types.RenderOptions) {
	r.RenderContext(context.Background(), container, def, userProps, opts)
}

// RenderContext instantiates def into container, appending a scoped
// <style> element when the definition has styles and a
// <div class="partials-inner"> holding the substituted template. The
// container is tagged with the component name and a fresh scope token.
// When opts.EnableScripts is set the definition's script runs against the
// inner element; ctx bounds that execution.
func (r *Renderer) RenderContext(ctx context.Context, container *html.Node, def *types.Definition, userProps map[string]string, opts types.RenderOptions) {
	if container == nil || def == nil {
		r.logger.Warn(ctx, nil, "render called without a container or definition")
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(ctx, fmt.Errorf("%v", rec), "component render panicked",
				"name", def.Name, "path", def.SourcePath)
		}
	}()

	token := r.tokens(def.Name)
	AddClass(container, ContainerClass)
	if opts.DisplayMode == types.DisplayBlock {
		AddClass(container, BlockClass)
	}
	SetAttr(container, ComponentAttr, def.Name)
	SetAttr(container, ScopeAttr, token)

	props := MergeProps(def.Props.Values, userProps)

	if strings.TrimSpace(def.Styles) != "" {
		style := NewElement("style")
		style.AppendChild(NewText(ScopeStyles(def.Styles, ScopeSelector(token))))
		container.AppendChild(style)
	}

	inner := NewElement("div")
	SetAttr(inner, "class", InnerClass)
	AppendHTML(inner, Substitute(def.Template, props))
	container.AppendChild(inner)

	if !opts.EnableScripts || strings.TrimSpace(def.Script) == "" {
		return
	}
	if err := r.scripts.Run(ctx, def.Script, inner, props); err != nil {
		r.logger.Error(ctx, errors.NewScriptError(def.Name, def.SourcePath, err), "component script failed",
			"name", def.Name, "path", def.SourcePath)
	}
}

// RenderError replaces the container's children with a visible error block.
func RenderError(container *html.Node, message string) {
	if container == nil {
		return
	}
	AddClass(container, ContainerClass)
	AddClass(container, ErrorClass)
	RemoveChildren(container)

	content := NewElement("div")
	SetAttr(content, "class", "partials-error-content")

	icon := NewElement("span")
	SetAttr(icon, "class", "partials-error-icon")
	icon.AppendChild(NewText("⚠️"))

	text := NewElement("span")
	SetAttr(text, "class", "partials-error-text")
	text.AppendChild(NewText(message))

	content.AppendChild(icon)
	content.AppendChild(text)
	container.AppendChild(content)
}

// RandomToken returns a scope token of the form pc-<name>-<6 base36 chars>.
// Characters of name that are not safe inside an attribute selector are
// replaced with '-'.
func RandomToken(name string) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = tokenAlphabet[rand.IntN(len(tokenAlphabet))]
	}
	return "pc-" + tokenName(name) + "-" + string(suffix)
}

func tokenName(name string) string {
	if name == "" {
		return "component"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}
