package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/partials/internal/document"
	"github.com/conneroisu/partials/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <document.md>",
	Short: "Re-render a document whenever it or a component changes",
	Long: `Watch a document and the components folder, writing the rendered HTML
page to a file after every change. This is useful when another tool serves
or post-processes the output.

Examples:
  partials watch notes.md                     # Writes notes.html
  partials watch notes.md -o public/index.html
  partials watch notes.md --verbose           # Show each changed file`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var (
	watchFlags   *StandardFlags
	watchOutput  string
	watchVerbose bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchFlags = AddStandardFlags(watchCmd, "render")
	watchCmd.Flags().StringVarP(&watchOutput, "out", "o", "", "Output file (default: document name with .html)")
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Verbose output")
}

// documentWriter renders one document to one output file.
type documentWriter struct {
	source string
	output string
	proc   *document.Processor
}

func (d *documentWriter) write(ctx context.Context) (document.Stats, error) {
	source, err := os.ReadFile(d.source)
	if err != nil {
		return document.Stats{}, fmt.Errorf("failed to read document: %w", err)
	}

	var body bytes.Buffer
	stats, err := d.proc.Render(ctx, &body, source)
	if err != nil {
		return stats, err
	}

	var page bytes.Buffer
	title := strings.TrimSuffix(filepath.Base(d.source), filepath.Ext(d.source))
	if err := document.Page(title, body.Bytes(), false).Render(ctx, &page); err != nil {
		return stats, err
	}

	// write then rename so readers never see a partial file
	tmp := d.output + ".tmp"
	if err := os.WriteFile(tmp, page.Bytes(), 0o644); err != nil {
		return stats, fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Rename(tmp, d.output); err != nil {
		return stats, fmt.Errorf("failed to write output: %w", err)
	}
	return stats, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := ValidateFileExists(args[0]); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ws, err := openWorkspace(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	output := watchOutput
	if output == "" {
		output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".html"
	}
	writer := &documentWriter{
		source: args[0],
		output: output,
		proc:   ws.processor(watchFlags.ApplyRenderFlags(ws.cfg.RenderOptions())),
	}

	out := cmd.OutOrStdout()
	report := func(reason string) {
		start := time.Now()
		stats, err := writer.write(ctx)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %v\n", err)
			return
		}
		fmt.Fprintf(out, "✓ %s: wrote %s (%d components, %d failed) in %s\n",
			reason, output, stats.Rendered, stats.Failed, time.Since(start).Round(time.Millisecond))
	}
	report("initial render")

	fw, err := watcher.NewFileWatcher(150*time.Millisecond, ws.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Stop()

	folder := ws.cfg.Components.Folder
	fw.AddFilter(watcher.MarkdownFilter)
	fw.AddFilter(watcher.NoTempFilter)
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.AnyOf(
		watcher.PathFilter(args[0]),
		watcher.AllOf(
			watcher.UnderFilter(folder),
			watcher.ExcludeFilter(folder, ws.cfg.Components.ExcludePatterns),
		),
	))
	fw.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		for _, event := range events {
			if watchVerbose {
				fmt.Fprintf(out, "   %s: %s\n", event.Type, event.Path)
			}
			if event.Dir {
				ws.scanner.RemoveDir(ctx, event.Path)
				continue
			}
			if sameFile(event.Path, args[0]) {
				continue
			}
			if event.Gone() {
				ws.scanner.RemoveFile(ctx, event.Path)
			} else if _, err := ws.scanner.ScanFile(ctx, event.Path); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %v\n", err)
			}
		}
		report(fmt.Sprintf("%d file(s) changed", len(events)))
		return nil
	})

	if err := fw.AddRecursive(folder); err != nil {
		return fmt.Errorf("failed to watch %s: %w", folder, err)
	}
	// editors replace files on save, so watch the directory
	if err := fw.AddPath(filepath.Dir(args[0])); err != nil {
		return fmt.Errorf("failed to watch %s: %w", args[0], err)
	}
	if err := fw.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Fprintln(out, "👀 Watching for changes... (Press Ctrl+C to stop)")
	<-ctx.Done()
	fmt.Fprintln(out, "\n🛑 Stopping file watcher...")
	return nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
