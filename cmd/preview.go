package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/conneroisu/partials/internal/document"
	"github.com/conneroisu/partials/internal/errors"
	"github.com/conneroisu/partials/internal/renderer"
)

var previewCmd = &cobra.Command{
	Use:     "preview <component>",
	Aliases: []string{"p"},
	Short:   "Render a single component",
	Long: `Render one component with its default props, optionally overridden, and
print the resulting HTML.

Examples:
  partials preview badge                          # Defaults only
  partials preview badge --props '{"text":"HOT"}' # Override props
  partials preview card --props @card.json        # Props from a file
  partials preview progress --page > out.html     # Full page, scripts applied`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

var (
	previewFlags *StandardFlags
	previewPage  bool
)

func init() {
	rootCmd.AddCommand(previewCmd)

	previewFlags = AddStandardFlags(previewCmd, "render", "props")
	previewCmd.Flags().BoolVar(&previewPage, "page", false, "Wrap the output in a complete HTML page")
}

func runPreview(cmd *cobra.Command, args []string) error {
	props, err := previewFlags.ParseProps()
	if err != nil {
		return err
	}

	ws, err := openWorkspace(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	name := args[0]
	def, ok := ws.registry.Get(name)
	if !ok {
		return errors.NewLookupError(name, ws.registry.Names(), ws.cfg.Components.Folder)
	}

	opts := previewFlags.ApplyRenderFlags(ws.cfg.RenderOptions())
	container := renderer.NewElement("div")
	ws.renderer().RenderContext(cmd.Context(), container, def, props, opts)

	var fragment bytes.Buffer
	if err := html.Render(&fragment, container); err != nil {
		return fmt.Errorf("failed to write component: %w", err)
	}

	out := cmd.OutOrStdout()
	if previewPage {
		return document.Page(name, fragment.Bytes(), false).Render(cmd.Context(), out)
	}
	fmt.Fprintln(out, fragment.String())
	return nil
}
