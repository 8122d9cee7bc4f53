package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/partials/internal/document"
)

var renderCmd = &cobra.Command{
	Use:     "render <document.md>",
	Aliases: []string{"r"},
	Short:   "Render a markdown document to HTML",
	Long: `Render a markdown document, expanding every component invocation, and
write the HTML to stdout or to a file.

Examples:
  partials render notes.md                  # HTML fragment on stdout
  partials render notes.md -o notes.html    # Write to a file
  partials render notes.md --page           # Full HTML page
  partials render notes.md --display block  # Render fences as blocks
  partials render notes.md --no-scripts     # Skip component scripts`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var (
	renderFlags  *StandardFlags
	renderOutput string
	renderPage   bool
	renderTitle  string
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderFlags = AddStandardFlags(renderCmd, "render")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Output file (default stdout)")
	renderCmd.Flags().BoolVar(&renderPage, "page", false, "Wrap the output in a complete HTML page")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "Page title (default: document file name)")
}

func runRender(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	ws, err := openWorkspace(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	proc := ws.processor(renderFlags.ApplyRenderFlags(ws.cfg.RenderOptions()))

	var out io.Writer = cmd.OutOrStdout()
	if renderOutput != "" {
		file, err := os.Create(renderOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	stats, err := renderDocument(cmd, proc, out, args[0], source)
	if err != nil {
		return err
	}

	ws.logger.Debug(cmd.Context(), "rendered document",
		"path", args[0], "components", stats.Rendered, "failed", stats.Failed)
	if stats.Failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %d component invocation(s) failed to render\n", stats.Failed)
	}
	if renderOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d components)\n", renderOutput, stats.Rendered)
	}
	return nil
}

// renderDocument writes source as a fragment or, with --page, a full page.
func renderDocument(cmd *cobra.Command, proc *document.Processor, out io.Writer, path string, source []byte) (document.Stats, error) {
	if !renderPage {
		return proc.Render(cmd.Context(), out, source)
	}

	var body bytes.Buffer
	stats, err := proc.Render(cmd.Context(), &body, source)
	if err != nil {
		return stats, err
	}

	title := renderTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return stats, document.Page(title, body.Bytes(), false).Render(cmd.Context(), out)
}
