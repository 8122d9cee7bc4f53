package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/partials/internal/parser"
	"github.com/conneroisu/partials/internal/types"
)

// resetFlags restores every flag to its default so commands can run
// repeatedly in one process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		value := f.Value
		if v, ok := value.(*validatingValue); ok {
			value = v.Value
		}
		_ = value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// workspaceDir changes into a fresh directory initialized with starter
// components.
func workspaceDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	_, _, err := execute(t, "init")
	require.NoError(t, err)
	return dir
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, _, err := execute(t, "init")
	require.NoError(t, err)

	assert.Contains(t, out, "Created .partials.yml")
	for _, name := range []string{"badge", "button", "card", "progress"} {
		assert.FileExists(t, filepath.Join("_components", name+".md"))
	}
	assert.FileExists(t, "example.md")

	config, err := os.ReadFile(".partials.yml")
	require.NoError(t, err)
	assert.Contains(t, string(config), "folder: _components")
	assert.Contains(t, string(config), "script_timeout: 2s")

	// a second run keeps existing files
	out, _, err = execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, ".partials.yml already exists, skipping")
	assert.NotContains(t, out, "button.md")
}

func TestInitCommand_MinimalInProjectDir(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := execute(t, "init", "notes", "--minimal", "--folder", "parts")
	require.NoError(t, err)

	assert.Contains(t, out, "cd notes")
	assert.DirExists(t, filepath.Join("notes", "parts"))
	assert.NoFileExists(t, filepath.Join("notes", "parts", "button.md"))
	assert.NoFileExists(t, filepath.Join("notes", "example.md"))

	config, err := os.ReadFile(filepath.Join("notes", ".partials.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(config), "folder: parts")
}

func TestListCommand(t *testing.T) {
	workspaceDir(t)

	out, _, err := execute(t, "list", "-o", "json", "--with-props")
	require.NoError(t, err)

	var items []struct {
		Name  string            `json:"name"`
		Props map[string]string `json:"props"`
		Usage string            `json:"usage"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 4)
	assert.Equal(t, "badge", items[0].Name)
	assert.Equal(t, "New", items[0].Props["text"])
	assert.Equal(t, `badge(text="New", color="#4caf50")`, items[0].Usage)

	out, _, err = execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "progress")
	assert.Contains(t, out, "Total: 4 components")
	assert.NotContains(t, out, "PROPS")
}

func TestListCommand_InvalidFormat(t *testing.T) {
	workspaceDir(t)

	_, _, err := execute(t, "list", "-o", "jsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "json"?`)
}

func TestRenderCommand(t *testing.T) {
	workspaceDir(t)

	out, _, err := execute(t, "render", "example.md")
	require.NoError(t, err)

	assert.Contains(t, out, `data-component="card"`)
	assert.Contains(t, out, `data-component="badge"`)
	assert.Contains(t, out, "width: 75%;")
	assert.NotContains(t, out, "<html")
	assert.NotContains(t, out, "```")
}

func TestRenderCommand_PageToFile(t *testing.T) {
	workspaceDir(t)

	_, stderr, err := execute(t, "render", "example.md", "--page", "--title", "Demo", "-o", "out.html", "--no-scripts")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Wrote out.html")

	html, err := os.ReadFile("out.html")
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>Demo</title>")
	assert.NotContains(t, string(html), "width: 75%;")
	assert.NotContains(t, string(html), "new WebSocket")
}

func TestRenderCommand_BlockDisplay(t *testing.T) {
	workspaceDir(t)

	out, _, err := execute(t, "render", "example.md", "--display", "block")
	require.NoError(t, err)
	assert.Contains(t, out, "partials-block")

	_, _, err = execute(t, "render", "example.md", "--display", "grid")
	assert.Error(t, err)
}

func TestRenderCommand_NoWorkspace(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("doc.md", []byte("# hi\n"), 0o644))

	_, _, err := execute(t, "render", "doc.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "partials init")
}

func TestPreviewCommand(t *testing.T) {
	workspaceDir(t)

	out, _, err := execute(t, "preview", "badge", "--props", `{"text":"<b>HOT</b>"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `data-component="badge"`)
	assert.Contains(t, out, "&lt;b&gt;HOT&lt;/b&gt;")

	_, _, err = execute(t, "preview", "badeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Did you mean "badge"?`)
}

func TestValidateCommand(t *testing.T) {
	workspaceDir(t)

	out, _, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Components: 4")
	assert.Contains(t, out, "All components are valid")

	require.NoError(t, os.WriteFile(filepath.Join("_components", "notes.md"), []byte("just notes\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join("_components", "pill.md"),
		[]byte("---\nname: badge\nprops:\n  unused: x\n---\n<i>{{text}}</i>\n<style>i { color: {{color}}; }</style>\n"), 0o644))

	out, _, err = execute(t, "validate", "--format", "json")
	require.Error(t, err)

	var summary struct {
		Valid      bool                `json:"valid"`
		Skipped    []string            `json:"skipped"`
		Duplicates map[string][]string `json:"duplicates"`
		Reports    []ComponentReport   `json:"reports"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.False(t, summary.Valid)
	assert.Equal(t, []string{filepath.Join("_components", "notes.md")}, summary.Skipped)
	assert.Len(t, summary.Duplicates["badge"], 2)
	require.Len(t, summary.Reports, 1)
	assert.Len(t, summary.Reports[0].Warnings, 3)
}

func TestValidateCommand_ConfigErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".partials.yml", []byte("server:\n  port: 70000\n"), 0o644))

	out, _, err := execute(t, "validate")
	require.Error(t, err)
	assert.Contains(t, out, "server.port")
}

func TestComponentCommands(t *testing.T) {
	workspaceDir(t)

	out, _, err := execute(t, "component", "create", "chip", "--template", "badge")
	require.NoError(t, err)
	assert.Contains(t, out, "chip.md")
	assert.Contains(t, out, "```component\nchip(")
	assert.FileExists(t, filepath.Join("_components", "chip.md"))

	_, _, err = execute(t, "component", "create", "chip")
	assert.Error(t, err)

	_, _, err = execute(t, "component", "create", "chip2", "--template", "carousel")
	assert.Error(t, err)

	out, _, err = execute(t, "component", "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "progress")
	assert.Contains(t, out, "blank")
}

func TestConfigShow(t *testing.T) {
	workspaceDir(t)

	out, _, err := execute(t, "config", "show", "--format", "json")
	require.NoError(t, err)

	var cfg map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "2s", cfg["render"]["script_timeout"])
	assert.Equal(t, "_components", cfg["components"]["folder"])

	out, _, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# partials configuration"))
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))

	out, _, err = execute(t, "version", "--format", "json")
	require.NoError(t, err)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go_version")
}

func TestParseProps(t *testing.T) {
	propsFile := filepath.Join(t.TempDir(), "props.json")
	require.NoError(t, os.WriteFile(propsFile, []byte(`{"title":"From file"}`), 0o644))

	tests := []struct {
		name     string
		input    string
		expected map[string]string
		wantErr  bool
	}{
		{"empty", "", map[string]string{}, false},
		{"strings", `{"text":"Hi","color":"red"}`, map[string]string{"text": "Hi", "color": "red"}, false},
		{"scalars", `{"count":3,"ratio":0.5,"on":true,"none":null}`,
			map[string]string{"count": "3", "ratio": "0.5", "on": "true", "none": ""}, false},
		{"file", "@" + propsFile, map[string]string{"title": "From file"}, false},
		{"missing file", "@/does/not/exist.json", nil, true},
		{"not json", "text=Hi", nil, true},
		{"nested", `{"a":{"b":"c"}}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := &StandardFlags{Props: tt.input}
			props, err := flags.ParseProps()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, props)
		})
	}
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, ValidatePort("8080"))
	assert.NoError(t, ValidatePort("0"))
	assert.Error(t, ValidatePort("65536"))
	assert.Error(t, ValidatePort("-1"))
	assert.Error(t, ValidatePort("http"))
}

func TestValidateFormatWithSuggestion(t *testing.T) {
	valid := []string{"table", "json", "yaml"}

	assert.NoError(t, ValidateFormatWithSuggestion("JSON", valid))

	err := ValidateFormatWithSuggestion("yml", valid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "yaml"?`)
}

func TestCheckDefinition(t *testing.T) {
	definition := func(template string, props ...string) *types.Definition {
		p := types.NewProps()
		for i := 0; i+1 < len(props); i += 2 {
			p.Set(props[i], props[i+1])
		}
		return &types.Definition{Name: "chip", Props: p, Template: template}
	}

	tests := []struct {
		name     string
		def      *types.Definition
		contains []string
	}{
		{"clean", definition(`<b>{{text}}</b>`, "text", "Hi"), nil},
		{"missing default", definition(`<b>{{text}}</b>`), []string{"{{text}} has no default"}},
		{"unused prop", definition(`<b>static</b>`, "text", "Hi"), []string{`prop "text" is declared but never used`}},
		{"double quotes only", definition(`<b>{{text}}</b>`, "text", `say "hi"`), nil},
		{"both quote styles", definition(`<b>{{text}}</b>`, "text", `it's "hi"`), []string{`default for "text" contains both quote characters`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := checkDefinition(tt.def)
			require.Len(t, warnings, len(tt.contains))
			for i, want := range tt.contains {
				assert.Contains(t, warnings[i], want)
			}
		})
	}
}

func TestCheckDefinition_FlagsDefaultsThatDoNotRoundTrip(t *testing.T) {
	props := types.NewProps()
	props.Set("text", `it's "hi"`)
	def := &types.Definition{Name: "chip", Props: props, Template: `<b>{{text}}</b>`}

	inv, ok := parser.ParseInvocation(parser.FormatInvocation(def))
	if ok {
		assert.NotEqual(t, `it's "hi"`, inv.Props["text"])
	}
	assert.NotEmpty(t, checkDefinition(def))
}
