package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/partials/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve [document.md]",
	Short: "Preview a document with live reload",
	Long: `Start the preview server. With a document argument the index page renders
that document; without one it shows a catalog of every component with its
default props. Pages reload whenever a component definition or the document
changes.

Examples:
  partials serve                   # Component catalog at http://localhost:8080
  partials serve notes.md          # Preview notes.md
  partials serve notes.md -p 3000  # Use a different port
  partials serve --open            # Open the browser once the server is up`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

var serveFlags *StandardFlags

func init() {
	rootCmd.AddCommand(serveCmd)

	serveFlags = AddStandardFlags(serveCmd, "server")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := serveFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if len(args) > 0 {
		if err := ValidateFileExists(args[0]); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.TargetFiles = args

	logger := newLogger(cfg, cmd.ErrOrStderr())
	srv := server.New(cfg, server.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		fmt.Fprintf(out, "Previewing %s at http://%s\n", args[0], cfg.Address())
	} else {
		fmt.Fprintf(out, "Serving component catalog at http://%s\n", cfg.Address())
	}
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("preview server: %w", err)
	}
	return nil
}
