package scaffolding

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/conneroisu/partials/internal/errors"
	"github.com/conneroisu/partials/internal/parser"
	"github.com/conneroisu/partials/internal/renderer"
	"github.com/conneroisu/partials/internal/types"
)

func TestBuiltinTemplatesParse(t *testing.T) {
	for name, tmpl := range GetBuiltinTemplates() {
		t.Run(name, func(t *testing.T) {
			if tmpl.Name == "" {
				tmpl.Name = "widget"
			}
			content, err := Render(tmpl)
			require.NoError(t, err)

			def, ok := parser.ParseDefinition(string(content), tmpl.Name+".md")
			require.True(t, ok, "generated document must parse:\n%s", content)
			assert.Equal(t, tmpl.Name, def.Name)
			assert.Equal(t, tmpl.Description, def.Description)
			assert.Equal(t, len(tmpl.Props), def.Props.Len())
			for _, prop := range tmpl.Props {
				value, ok := def.Props.Get(prop.Name)
				assert.True(t, ok, prop.Name)
				assert.Equal(t, prop.Default, value)
			}
			assert.NotContains(t, def.Template, "[[")
			assert.NotContains(t, def.Styles, "{{", "styles are not substituted")
			assert.Equal(t, tmpl.Script != "", def.Script != "")
		})
	}
}

func TestRender_ExpandsName(t *testing.T) {
	tmpl := GetBuiltinTemplates()["blank"]
	tmpl.Name = "chip"

	content, err := Render(tmpl)
	require.NoError(t, err)

	def, ok := parser.ParseDefinition(string(content), "chip.md")
	require.True(t, ok)
	assert.Equal(t, `<div class="chip">{{text}}</div>`, def.Template)
	assert.Contains(t, def.Styles, ".chip {")
}

func TestProgressScriptFillsBar(t *testing.T) {
	tmpl := GetBuiltinTemplates()["progress"]
	content, err := Render(tmpl)
	require.NoError(t, err)
	def, ok := parser.ParseDefinition(string(content), "progress.md")
	require.True(t, ok)

	tests := []struct {
		value    string
		width    string
		complete bool
	}{
		{"40", "width: 40%;", false},
		{"250", "width: 100%;", true},
		{"nope", "width: 0%;", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			container := renderer.NewElement("div")
			renderer.New().Render(container, def, map[string]string{"value": tt.value},
				types.RenderOptions{EnableScripts: true, DisplayMode: types.DisplayInline})

			fill := renderer.QuerySelector(container, ".progress-fill")
			require.NotNil(t, fill)
			style, _ := renderer.GetAttr(fill, "style")
			assert.Contains(t, style, tt.width)
			assert.Contains(t, style, "background: #7c5cbf;")

			track := renderer.QuerySelector(container, ".progress")
			require.NotNil(t, track)
			assert.Equal(t, tt.complete, renderer.HasClass(track, "complete"))

			var buf bytes.Buffer
			require.NoError(t, html.Render(&buf, container))
			assert.Contains(t, buf.String(), "Progress: "+tt.value+"%")
		})
	}
}

func TestGenerate(t *testing.T) {
	folder := filepath.Join(t.TempDir(), "_components")
	g := NewComponentGenerator(folder)

	path, err := g.Generate(GenerateOptions{Name: "status-pill", Template: "badge", Description: "Shows: status"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(folder, "status-pill.md"), path)

	def, ok, err := parser.ParseDefinitionFile(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "status-pill", def.Name)
	assert.Equal(t, "Shows: status", def.Description)

	_, err = g.Generate(GenerateOptions{Name: "status-pill", Template: "badge"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeComponentExists))

	_, err = g.Generate(GenerateOptions{Name: "status-pill", Template: "card", Force: true})
	require.NoError(t, err)
	def, _, err = parser.ParseDefinitionFile(path)
	require.NoError(t, err)
	assert.Contains(t, def.Template, "card-title")
}

func TestGenerate_DefaultsToBlank(t *testing.T) {
	g := NewComponentGenerator(t.TempDir())

	path, err := g.Generate(GenerateOptions{Name: "note"})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `<div class="note">{{text}}</div>`)
}

func TestGenerate_Rejects(t *testing.T) {
	g := NewComponentGenerator(t.TempDir())

	tests := []struct {
		name string
		opts GenerateOptions
		code string
	}{
		{"empty name", GenerateOptions{}, errors.ErrCodeInvalidName},
		{"path in name", GenerateOptions{Name: "../evil"}, errors.ErrCodeInvalidName},
		{"leading digit", GenerateOptions{Name: "1up"}, errors.ErrCodeInvalidName},
		{"unknown template", GenerateOptions{Name: "x", Template: "carousel"}, errors.ErrCodeComponentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Generate(tt.opts)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestGenerateStarterSet(t *testing.T) {
	folder := t.TempDir()
	g := NewComponentGenerator(folder)

	written, err := g.GenerateStarterSet(false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(folder, "badge.md"),
		filepath.Join(folder, "button.md"),
		filepath.Join(folder, "card.md"),
		filepath.Join(folder, "progress.md"),
	}, written)

	written, err = g.GenerateStarterSet(false)
	require.NoError(t, err)
	assert.Empty(t, written)

	written, err = g.GenerateStarterSet(true)
	require.NoError(t, err)
	assert.Len(t, written, 4)
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"Click Me":   "Click Me",
		"#7c5cbf":    `"#7c5cbf"`,
		"a: b":       `"a: b"`,
		"":           `""`,
		" padded":    `" padded"`,
		`say "hi" #`: `'say "hi" #'`,
		`"quoted"`:   `'"quoted"'`,
	}

	for in, want := range tests {
		assert.Equal(t, want, quote(in), in)
	}
}
