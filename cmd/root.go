// Package cmd provides the command-line interface for partials with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --folder, --port, etc.) - highest priority
//	2. PARTIALS_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (PARTIALS_SERVER_PORT, etc.)
//	4. Configuration files (.partials.yml) - lowest priority
//
// Environment Variables:
//
//	PARTIALS_CONFIG_FILE: Path to custom configuration file
//	PARTIALS_COMPONENTS_FOLDER: Override the components folder
//	PARTIALS_RENDER_ENABLE_SCRIPTS: Enable/disable component scripts
//	And the rest following the PARTIALS_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/partials/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "partials",
	Short: "Reusable markdown components for your notes",
	Long: `Partials renders markdown documents that invoke reusable components.

Components are markdown files with front matter, an HTML template, and an
optional <style> and <script>. Documents use them three ways:

  ` + "```component" + `
  badge(text="NEW")
  ` + "```" + `

  Inline in text: ::badge(text="NEW")::
  Inline code:    ` + "`c:badge(text=\"NEW\")`" + `

Quick Start:
  partials init                   Create example components and config
  partials list                   List available components
  partials render notes.md        Render a document to HTML
  partials serve notes.md         Preview a document with live reload`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .partials.yml, can also use PARTIALS_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("folder", "_components", "folder holding component definitions")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

// bindFlags routes flags through viper so they take precedence over the
// config file only when set.
func bindFlags() {
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("components.folder", rootCmd.PersistentFlags().Lookup("folder"))
	_ = viper.BindPFlag("development.debug", rootCmd.PersistentFlags().Lookup("debug"))
	bindServerFlags(serveCmd)
}

// initConfig initializes the configuration system with support for multiple config sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. PARTIALS_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .partials.yml in current directory
func initConfig() {
	bindFlags()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(strings.TrimSuffix(config.FileName, ".yml"))
	}

	// Enable automatic environment variable binding with PARTIALS_ prefix
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults apply
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
