package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/partials/internal/parser"
	"github.com/conneroisu/partials/internal/types"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l", "ls"},
	Short:   "List all available components",
	Long: `List the components found in the components folder with their source
files and, optionally, their default props and a usage snippet.

Examples:
  partials list                   # List all components in table format
  partials list -o json           # Output as JSON (short flag)
  partials list --output yaml     # Output as YAML
  partials list -p                # Include default props (short flag)`,
	RunE: runList,
}

var (
	listFlags     *StandardFlags
	listWithProps bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listFlags = AddStandardFlags(listCmd, "output")
	listCmd.Flags().BoolVarP(&listWithProps, "with-props", "p", false, "Include default props and usage")
}

// listItem is the serialized shape of a listed component.
type listItem struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	SourcePath  string       `json:"source_path" yaml:"source_path"`
	Props       *types.Props `json:"props,omitempty" yaml:"props,omitempty"`
	Usage       string       `json:"usage,omitempty" yaml:"usage,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	if err := listFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	ws, err := openWorkspace(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	defs := ws.registry.GetAll()
	if len(defs) == 0 {
		if !listFlags.Quiet {
			fmt.Fprintf(out, "No components found in %s.\n", ws.cfg.Components.Folder)
		}
		return nil
	}

	items := make([]listItem, 0, len(defs))
	for _, def := range defs {
		item := listItem{
			Name:        def.Name,
			Description: def.Description,
			SourcePath:  def.SourcePath,
		}
		if listWithProps {
			item.Props = &def.Props
			item.Usage = parser.FormatInvocation(def)
		}
		items = append(items, item)
	}

	switch strings.ToLower(listFlags.OutputFormat) {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(items)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		defer encoder.Close()
		return encoder.Encode(items)
	case "table":
		return outputTable(out, items)
	default:
		return fmt.Errorf("unsupported format: %s", listFlags.OutputFormat)
	}
}

func outputTable(out io.Writer, items []listItem) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	header := "NAME\tFILE\tDESCRIPTION"
	separator := "----\t----\t-----------"
	if listWithProps {
		header += "\tPROPS"
		separator += "\t-----"
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, separator)

	for _, item := range items {
		row := fmt.Sprintf("%s\t%s\t%s", item.Name, item.SourcePath, item.Description)
		if listWithProps {
			props := make([]string, 0, item.Props.Len())
			for _, key := range item.Props.Keys {
				value, _ := item.Props.Get(key)
				props = append(props, fmt.Sprintf("%s=%q", key, value))
			}
			row += "\t" + strings.Join(props, ", ")
		}
		fmt.Fprintln(w, row)
	}

	fmt.Fprintf(w, "\nTotal: %d components\n", len(items))
	return w.Flush()
}
