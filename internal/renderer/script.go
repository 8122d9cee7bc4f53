package renderer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"github.com/conneroisu/partials/internal/logging"
)

// ScriptRunner executes a component script against its rendered root.
type ScriptRunner interface {
	Run(ctx context.Context, script string, root *html.Node, props map[string]string) error
}

// ScriptRuntime runs component scripts in an embedded JavaScript
// interpreter. Each run gets a fresh VM with no filesystem or network
// access; the only globals are the element, the props and a console that
// writes to the logger.
type ScriptRuntime struct {
	timeout time.Duration
	logger  logging.Logger
}

// NewScriptRuntime creates a runtime that interrupts scripts running longer
// than timeout.
func NewScriptRuntime(timeout time.Duration, logger logging.Logger) *ScriptRuntime {
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &ScriptRuntime{timeout: timeout, logger: logger}
}

// Run evaluates script as the body of function(el, props). el wraps root;
// props is a plain object of the merged props.
func (s *ScriptRuntime) Run(ctx context.Context, script string, root *html.Node, props map[string]string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	vm := goja.New()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("script panicked: %v", rec)
		}
	}()

	timer := time.AfterFunc(s.timeout, func() {
		vm.Interrupt(fmt.Sprintf("script exceeded %s", s.timeout))
	})
	defer timer.Stop()
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	if err := vm.Set("console", s.console(ctx, vm)); err != nil {
		return err
	}

	value, err := vm.RunString("(function(el, props) {\n" + script + "\n})")
	if err != nil {
		return fmt.Errorf("compiling script: %w", err)
	}
	fn, ok := goja.AssertFunction(value)
	if !ok {
		return fmt.Errorf("script did not evaluate to a function")
	}

	propsObject := vm.NewObject()
	for k, v := range props {
		if err := propsObject.Set(k, v); err != nil {
			return err
		}
	}

	if _, err := fn(goja.Undefined(), wrapElement(vm, root), propsObject); err != nil {
		return fmt.Errorf("running script: %w", err)
	}
	return nil
}

func (s *ScriptRuntime) console(ctx context.Context, vm *goja.Runtime) *goja.Object {
	console := vm.NewObject()
	logTo := func(level string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, 0, len(call.Arguments))
			for _, arg := range call.Arguments {
				parts = append(parts, arg.String())
			}
			s.logger.Debug(ctx, "script console", "level", level, "message", strings.Join(parts, " "))
			return goja.Undefined()
		}
	}
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		_ = console.Set(level, logTo(level))
	}
	return console
}

// wrapElement exposes a small DOM surface over n to scripts.
func wrapElement(vm *goja.Runtime, n *html.Node) *goja.Object {
	el := vm.NewObject()

	_ = el.Set("tagName", strings.ToUpper(n.Data))
	_ = el.Set("getAttribute", func(name string) goja.Value {
		if value, ok := GetAttr(n, name); ok {
			return vm.ToValue(value)
		}
		return goja.Null()
	})
	_ = el.Set("setAttribute", func(name, value string) { SetAttr(n, name, value) })
	_ = el.Set("removeAttribute", func(name string) { RemoveAttr(n, name) })
	_ = el.Set("addClass", func(class string) { AddClass(n, class) })
	_ = el.Set("removeClass", func(class string) { RemoveClass(n, class) })
	_ = el.Set("hasClass", func(class string) bool { return HasClass(n, class) })
	_ = el.Set("textContent", func() string { return TextContent(n) })
	_ = el.Set("setText", func(text string) {
		RemoveChildren(n)
		n.AppendChild(NewText(text))
	})
	_ = el.Set("setHTML", func(markup string) {
		RemoveChildren(n)
		AppendHTML(n, markup)
	})
	_ = el.Set("append", func(markup string) { AppendHTML(n, markup) })
	_ = el.Set("querySelector", func(selector string) goja.Value {
		if found := QuerySelector(n, selector); found != nil {
			return wrapElement(vm, found)
		}
		return goja.Null()
	})
	_ = el.Set("querySelectorAll", func(selector string) goja.Value {
		found := QuerySelectorAll(n, selector)
		items := make([]interface{}, 0, len(found))
		for _, f := range found {
			items = append(items, wrapElement(vm, f))
		}
		return vm.NewArray(items...)
	})

	return el
}
