package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/partials/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect partials configuration",
	Long: `Inspect the configuration partials resolves from .partials.yml, PARTIALS_*
environment variables, defaults and command-line flags.

Examples:
  partials config show                # Resolved configuration as YAML
  partials config show --format json  # Resolved configuration as JSON
  partials config path                # Which config file is in use`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the resolved configuration after:
- Loading from configuration file
- Applying environment variable overrides
- Setting default values
- Processing command-line flags`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintln(cmd.OutOrStdout(), used)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "no configuration file found; using defaults (run 'partials init' to create %s)\n", config.FileName)
		return nil
	},
}

var configFormat string

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)

	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml", "Output format (yaml, json)")
	AddFlagValidation(configShowCmd, "format", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{"yaml", "json"})
	})
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cfg)
	default:
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
}
