package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/partials/internal/parser"
	"github.com/conneroisu/partials/internal/scaffolding"
)

var componentCmd = &cobra.Command{
	Use:     "component",
	Aliases: []string{"c"},
	Short:   "Generate component definitions",
	Long: `Generate component definitions from built-in templates.

Examples:
  partials component create chip                     # Blank component
  partials component create cta --template button    # Start from the button
  partials component templates                       # List available templates`,
}

var componentCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new component from a template",
	Long: `Create a new component definition in the components folder.

Templates: blank, button, card, badge, alert, progress.

Examples:
  partials component create chip
  partials component create cta --template button --description "Call to action"
  partials component create card --template card --force`,
	Args: cobra.ExactArgs(1),
	RunE: runComponentCreate,
}

var componentTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available component templates",
	Args:  cobra.NoArgs,
	RunE:  runComponentTemplates,
}

var (
	componentTemplate    string
	componentDescription string
	componentForce       bool
)

func init() {
	rootCmd.AddCommand(componentCmd)
	componentCmd.AddCommand(componentCreateCmd)
	componentCmd.AddCommand(componentTemplatesCmd)

	componentCreateCmd.Flags().StringVarP(&componentTemplate, "template", "t", "blank", "Template to start from")
	componentCreateCmd.Flags().StringVarP(&componentDescription, "description", "d", "", "Component description")
	componentCreateCmd.Flags().BoolVar(&componentForce, "force", false, "Overwrite an existing component file")

	AddFlagValidation(componentCreateCmd, "template", func(name string) error {
		return ValidateFormatWithSuggestion(name, scaffolding.NewComponentGenerator("").TemplateNames())
	})
}

func runComponentCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	generator := scaffolding.NewComponentGenerator(cfg.Components.Folder)
	path, err := generator.Generate(scaffolding.GenerateOptions{
		Name:        args[0],
		Template:    componentTemplate,
		Description: componentDescription,
		Force:       componentForce,
	})
	if err != nil {
		return err
	}

	def, ok, err := parser.ParseDefinitionFile(path)
	if err != nil || !ok {
		return fmt.Errorf("generated %s but it does not parse as a component", path)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created %s\n\nUse it with:\n\n%s\n", path, parser.FenceSnippet(def))
	return nil
}

func runComponentTemplates(cmd *cobra.Command, args []string) error {
	generator := scaffolding.NewComponentGenerator("")

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TEMPLATE\tPROPS\tSCRIPT\tDESCRIPTION")
	for _, name := range generator.TemplateNames() {
		tmpl, _ := generator.GetTemplate(name)
		script := "no"
		if tmpl.Script != "" {
			script = "yes"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", name, len(tmpl.Props), script, tmpl.Description)
	}
	return w.Flush()
}
