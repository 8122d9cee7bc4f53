package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/partials/internal/config"
	"github.com/conneroisu/partials/internal/scaffolding"
)

var initCmd = &cobra.Command{
	Use:     "init [dir]",
	Aliases: []string{"i"},
	Short:   "Create a configuration file and starter components",
	Long: `Initialize a partials workspace: a .partials.yml configuration file, a
components folder holding starter components (button, card, badge and a
scripted progress bar) and an example document using them.

If no directory is given, initializes the current directory. Existing files
are kept unless --force is given.

Examples:
  partials init                 # Initialize in current directory
  partials init notes           # Initialize in ./notes
  partials init --minimal       # Configuration and empty folder only
  partials init --force         # Overwrite existing starter files`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initMinimal bool
	initForce   bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initMinimal, "minimal", false, "Minimal setup without starter components")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

const exampleDocument = `# Partials example

Components render from fenced blocks, one invocation per line:

` + "```component" + `
card(title="Welcome", content="Cards take a title and some content.")
button(text="Get started", color="#2196f3")
` + "```" + `

Or inline in a sentence: this feature is ::badge(text="NEW")::.

Inline code works too: ` + "`c:badge(text=\"BETA\", color=\"#ff9800\")`" + `.

Scripts run after rendering:

` + "```component" + `
progress(label="Upload", value="75")
` + "```" + `
`

func runInit(cmd *cobra.Command, args []string) error {
	projectDir := "."
	if len(args) > 0 {
		projectDir = args[0]
		if err := os.MkdirAll(projectDir, 0o755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initializing partials in %s\n", projectDir)

	cfg := config.Default()
	if folder, err := cmd.Flags().GetString("folder"); err == nil && cmd.Flags().Changed("folder") {
		cfg.Components.Folder = folder
	}

	configPath := filepath.Join(projectDir, config.FileName)
	if exists(configPath) && !initForce {
		fmt.Fprintf(out, "⚠ %s already exists, skipping\n", config.FileName)
	} else {
		if err := cfg.WriteFile(configPath); err != nil {
			return fmt.Errorf("failed to create configuration file: %w", err)
		}
		fmt.Fprintf(out, "✓ Created %s\n", config.FileName)
	}

	folder := filepath.Join(projectDir, cfg.Components.Folder)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create components folder: %w", err)
	}

	if !initMinimal {
		generator := scaffolding.NewComponentGenerator(folder)
		written, err := generator.GenerateStarterSet(initForce)
		if err != nil {
			return fmt.Errorf("failed to create starter components: %w", err)
		}
		for _, path := range written {
			fmt.Fprintf(out, "✓ Created %s\n", path)
		}

		examplePath := filepath.Join(projectDir, "example.md")
		if exists(examplePath) && !initForce {
			fmt.Fprintln(out, "⚠ example.md already exists, skipping")
		} else {
			if err := os.WriteFile(examplePath, []byte(exampleDocument), 0o644); err != nil {
				return fmt.Errorf("failed to write example document: %w", err)
			}
			fmt.Fprintf(out, "✓ Created %s\n", examplePath)
		}
	}

	fmt.Fprintln(out, "\nNext steps:")
	if projectDir != "." {
		fmt.Fprintf(out, "  cd %s\n", projectDir)
	}
	fmt.Fprintln(out, "  partials list")
	if initMinimal {
		fmt.Fprintln(out, "  partials component create <name>")
	} else {
		fmt.Fprintln(out, "  partials serve example.md")
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
