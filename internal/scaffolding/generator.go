// Package scaffolding writes new component definition files from built-in
// templates.
package scaffolding

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/conneroisu/partials/internal/errors"
	"github.com/conneroisu/partials/internal/types"
)

// definitionLayout renders a component source document. It uses [[ ]]
// delimiters so {{prop}} placeholders pass through untouched.
const definitionLayout = `---
name: [[.Name]]
[[- if .Description]]
description: [[quote .Description]]
[[- end]]
[[- if .Props]]
props:
[[- range .Props]]
  [[.Name]]: [[quote .Default]]
[[- end]]
[[- end]]
---
[[.Markup]]
[[- if .Styles]]

<style>
[[.Styles]]
</style>
[[- end]]
[[- if .Script]]

<script>
[[.Script]]
</script>
[[- end]]
`

var layout = template.Must(newTemplate("definition").Parse(definitionLayout))

func newTemplate(name string) *template.Template {
	return template.New(name).Delims("[[", "]]").Funcs(template.FuncMap{"quote": quote})
}

// ComponentGenerator handles component scaffolding
type ComponentGenerator struct {
	templates map[string]ComponentTemplate
	folder    string
}

// GenerateOptions holds options for component generation
type GenerateOptions struct {
	Name        string
	Template    string
	Description string
	// Force overwrites an existing file
	Force bool
}

// NewComponentGenerator creates a generator writing into folder.
func NewComponentGenerator(folder string) *ComponentGenerator {
	return &ComponentGenerator{
		templates: GetBuiltinTemplates(),
		folder:    folder,
	}
}

// Generate writes a new component definition and returns its path.
func (g *ComponentGenerator) Generate(opts GenerateOptions) (string, error) {
	if err := ValidateComponentName(opts.Name); err != nil {
		return "", err
	}
	if opts.Template == "" {
		opts.Template = "blank"
	}

	tmpl, exists := g.templates[opts.Template]
	if !exists {
		return "", errors.NewValidationError(errors.ErrCodeComponentNotFound,
			fmt.Sprintf("template %q not found (available: %s)", opts.Template, strings.Join(g.TemplateNames(), ", ")))
	}
	tmpl.Name = opts.Name
	if opts.Description != "" {
		tmpl.Description = opts.Description
	}

	content, err := Render(tmpl)
	if err != nil {
		return "", err
	}

	path := filepath.Join(g.folder, opts.Name+".md")
	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.NewValidationError(errors.ErrCodeComponentExists, "component file already exists").WithPath(path)
		}
	}

	if err := os.MkdirAll(g.folder, 0o755); err != nil {
		return "", errors.NewIOError(errors.ErrCodeWriteFailed, "failed to create components folder", err).WithPath(g.folder)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", errors.NewIOError(errors.ErrCodeWriteFailed, "failed to write component", err).WithPath(path)
	}

	return path, nil
}

// GenerateStarterSet writes every starter template. Existing files are
// kept unless force is set; the returned paths are the files written.
func (g *ComponentGenerator) GenerateStarterSet(force bool) ([]string, error) {
	var written []string
	for _, name := range g.TemplateNames() {
		tmpl := g.templates[name]
		if !tmpl.Starter {
			continue
		}

		path, err := g.Generate(GenerateOptions{Name: tmpl.Name, Template: name, Force: force})
		if errors.IsCode(err, errors.ErrCodeComponentExists) {
			continue
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// TemplateNames returns the available template names, sorted.
func (g *ComponentGenerator) TemplateNames() []string {
	names := make([]string, 0, len(g.templates))
	for name := range g.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetTemplate returns a specific template
func (g *ComponentGenerator) GetTemplate(name string) (ComponentTemplate, bool) {
	tmpl, exists := g.templates[name]
	return tmpl, exists
}

// AddCustomTemplate adds a custom template
func (g *ComponentGenerator) AddCustomTemplate(name string, tmpl ComponentTemplate) {
	g.templates[name] = tmpl
}

// Render produces the source document for tmpl. Name references in the
// markup, styles and script are expanded first.
func Render(tmpl ComponentTemplate) ([]byte, error) {
	expanded := tmpl
	for _, field := range []*string{&expanded.Markup, &expanded.Styles, &expanded.Script} {
		text, err := expand(*field, tmpl)
		if err != nil {
			return nil, err
		}
		*field = strings.TrimSpace(text)
	}

	var buf bytes.Buffer
	if err := layout.Execute(&buf, expanded); err != nil {
		return nil, fmt.Errorf("failed to render component %s: %w", tmpl.Name, err)
	}
	return buf.Bytes(), nil
}

func expand(text string, tmpl ComponentTemplate) (string, error) {
	if !strings.Contains(text, "[[") {
		return text, nil
	}
	t, err := newTemplate(tmpl.Name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, tmpl); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// ValidateComponentName checks if a component name is valid
func ValidateComponentName(name string) error {
	if name == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidName, "component name cannot be empty")
	}
	if !types.IsIdentifier(name) {
		return errors.NewValidationError(errors.ErrCodeInvalidName,
			fmt.Sprintf("component name %q must start with a letter or underscore and contain only letters, digits, '_' or '-'", name))
	}
	return nil
}

// quote wraps front matter values that would otherwise be read differently.
func quote(value string) string {
	needsQuotes := value == "" ||
		strings.TrimSpace(value) != value ||
		strings.ContainsAny(value, "#:") ||
		strings.HasPrefix(value, `"`) || strings.HasPrefix(value, "'")
	if !needsQuotes {
		return value
	}
	if strings.Contains(value, `"`) {
		return "'" + value + "'"
	}
	return `"` + value + `"`
}
