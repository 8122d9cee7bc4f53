package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/partials/internal/config"
	"github.com/conneroisu/partials/internal/registry"
	"github.com/conneroisu/partials/internal/renderer"
	"github.com/conneroisu/partials/internal/scanner"
	"github.com/conneroisu/partials/internal/types"
)

var validateFormat string

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check configuration and component definitions",
	Long: `Validate the configuration and every file in the components folder:

- Configuration values, with suggestions for fixes
- Markdown files that are not valid components (no front matter or template)
- Component names declared by more than one file
- Template placeholders with no declared default

Examples:
  partials validate               # Human readable report
  partials validate --format json # Output results as JSON`,
	Args: cobra.NoArgs,
	RunE: runValidateCommand,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")

	AddFlagValidation(validateCmd, "format", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{"text", "json"})
	})
}

// ComponentReport describes problems found in one component definition.
type ComponentReport struct {
	Component string   `json:"component"`
	Path      string   `json:"path"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ValidationSummary is the outcome of a validate run.
type ValidationSummary struct {
	Valid        bool                     `json:"valid"`
	ConfigErrors []config.ValidationError `json:"config_errors,omitempty"`
	ConfigWarns  []config.ValidationError `json:"config_warnings,omitempty"`
	Components   int                      `json:"components"`
	Skipped      []string                 `json:"skipped,omitempty"`
	Unreadable   int                      `json:"unreadable,omitempty"`
	Duplicates   map[string][]string      `json:"duplicates,omitempty"`
	Reports      []ComponentReport        `json:"reports,omitempty"`

	configResult   *config.ValidationResult
	duplicateNames []string
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Decode()
	if err != nil {
		return err
	}

	summary := ValidationSummary{}
	result := config.ValidateConfigWithDetails(cfg)
	summary.configResult = result
	summary.ConfigErrors = result.Errors
	summary.ConfigWarns = result.Warnings

	if !result.HasErrors() {
		if err := validateComponents(cmd, cfg, &summary); err != nil {
			return err
		}
	}

	// skipped files are reported but do not fail the run
	summary.Valid = !result.HasErrors() && len(summary.Duplicates) == 0 && summary.Unreadable == 0

	out := cmd.OutOrStdout()
	switch validateFormat {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(summary); err != nil {
			return err
		}
	default:
		outputValidationText(out, summary)
	}

	if !summary.Valid {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func validateComponents(cmd *cobra.Command, cfg *config.Config, summary *ValidationSummary) error {
	reg := registry.NewComponentRegistry()
	scan := scanner.NewComponentScanner(reg,
		scanner.WithExcludePatterns(cfg.Components.ExcludePatterns),
		scanner.WithLogger(newLogger(cfg, cmd.ErrOrStderr())),
	)

	result, err := scan.ScanDirectory(cmd.Context(), cfg.Components.Folder)
	if result == nil {
		return fmt.Errorf("failed to scan %s: %w", cfg.Components.Folder, err)
	}

	summary.Components = reg.Count()
	summary.Skipped = result.Skipped
	summary.Unreadable = result.Failed
	if len(result.Duplicates) > 0 {
		summary.Duplicates = result.Duplicates
		summary.duplicateNames = result.SortedDuplicates()
	}

	for _, def := range reg.GetAll() {
		if warnings := checkDefinition(def); len(warnings) > 0 {
			summary.Reports = append(summary.Reports, ComponentReport{
				Component: def.Name,
				Path:      def.SourcePath,
				Warnings:  warnings,
			})
		}
	}
	return nil
}

// checkDefinition reports placeholders that have no declared default,
// declared props the template never uses and defaults that cannot be
// quoted in an invocation.
func checkDefinition(def *types.Definition) []string {
	var warnings []string

	used := make(map[string]bool)
	for _, key := range renderer.Placeholders(def.Template) {
		used[key] = true
		if _, ok := def.Props.Get(key); !ok {
			warnings = append(warnings, fmt.Sprintf("placeholder {{%s}} has no default and renders empty unless passed", key))
		}
	}
	for _, key := range renderer.Placeholders(def.Styles) {
		warnings = append(warnings, fmt.Sprintf("placeholder {{%s}} in <style> is not substituted; use an inline style attribute", key))
	}

	for _, key := range def.Props.Keys {
		if !used[key] {
			warnings = append(warnings, fmt.Sprintf("prop %q is declared but never used", key))
		}
		// invocation values have no escapes, so one quote style must be free
		if value := def.Props.Values[key]; strings.Contains(value, `"`) && strings.Contains(value, "'") {
			warnings = append(warnings, fmt.Sprintf("default for %q contains both quote characters and cannot be written as an invocation argument", key))
		}
	}
	return warnings
}

func outputValidationText(out io.Writer, summary ValidationSummary) {
	if report := summary.configResult.String(); report != "" {
		fmt.Fprintln(out, report)
	}

	fmt.Fprintf(out, "Validation Summary:\n")
	fmt.Fprintf(out, "  Components: %d\n", summary.Components)
	fmt.Fprintf(out, "  Skipped files: %d\n", len(summary.Skipped))
	fmt.Fprintf(out, "  Duplicate names: %d\n", len(summary.Duplicates))
	if summary.Unreadable > 0 {
		fmt.Fprintf(out, "  Unreadable files: %d\n", summary.Unreadable)
	}
	fmt.Fprintln(out)

	if len(summary.Skipped) > 0 {
		fmt.Fprintln(out, "Not components (missing front matter or template):")
		for _, path := range summary.Skipped {
			fmt.Fprintf(out, "  • %s\n", path)
		}
		fmt.Fprintln(out)
	}

	for _, name := range summary.duplicateNames {
		paths := summary.Duplicates[name]
		fmt.Fprintf(out, "Duplicate %q, using %s:\n", name, paths[len(paths)-1])
		for _, path := range paths {
			fmt.Fprintf(out, "  • %s\n", path)
		}
		fmt.Fprintln(out)
	}

	for _, report := range summary.Reports {
		fmt.Fprintf(out, "⚠️  %s (%s)\n", report.Component, report.Path)
		for _, warning := range report.Warnings {
			fmt.Fprintf(out, "  • %s\n", warning)
		}
	}

	if summary.Valid {
		fmt.Fprintln(out, "✅ All components are valid")
	} else {
		fmt.Fprintln(out, "❌ Validation failed")
	}
}
