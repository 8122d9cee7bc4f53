package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/partials/internal/errors"
	"github.com/conneroisu/partials/internal/types"
)

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Server flags
	Port int
	Host string
	Open bool

	// Render flags
	Display   string
	NoScripts bool
	Props     string

	// Output flags
	OutputFormat string
	Quiet        bool
}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "server":
			addServerFlags(cmd, flags)
		case "render":
			addRenderFlags(cmd, flags)
		case "props":
			cmd.Flags().StringVar(&flags.Props, "props", "", `Prop overrides as JSON, e.g. '{"text":"Hi"}', or @file.json`)
		case "output":
			addOutputFlags(cmd, flags)
		}
	}

	return flags
}

func addServerFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().IntVarP(&flags.Port, "port", "p", 8080, "Port to serve on")
	cmd.Flags().StringVar(&flags.Host, "host", "localhost", "Host to bind to")
	cmd.Flags().BoolVar(&flags.Open, "open", false, "Open the browser once the server is up")

	AddFlagValidation(cmd, "port", ValidatePort)
}

func addRenderFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVar(&flags.Display, "display", "", "Display mode for fenced components (inline|block)")
	cmd.Flags().BoolVar(&flags.NoScripts, "no-scripts", false, "Do not run component scripts")

	AddFlagValidation(cmd, "display", func(mode string) error {
		return ValidateFormatWithSuggestion(mode, []string{string(types.DisplayInline), string(types.DisplayBlock)})
	})
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", "table", "Output format (table|json|yaml)")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress output")

	AddFlagValidation(cmd, "output", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{"table", "json", "yaml"})
	})
}

func bindServerFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.open", cmd.Flags().Lookup("open"))
}

// ApplyRenderFlags overrides the render section for explicitly set flags.
func (f *StandardFlags) ApplyRenderFlags(opts types.RenderOptions) types.RenderOptions {
	if f.Display != "" {
		opts.DisplayMode = types.DisplayMode(strings.ToLower(f.Display))
	}
	if f.NoScripts {
		opts.EnableScripts = false
	}
	return opts
}

// ParseProps parses prop overrides, given inline as a JSON object or as
// @file.json. Values may be strings, numbers or booleans.
func (f *StandardFlags) ParseProps() (map[string]string, error) {
	if f.Props == "" {
		return map[string]string{}, nil
	}

	data := []byte(f.Props)
	source := "props"
	if strings.HasPrefix(f.Props, "@") {
		filename := strings.TrimPrefix(f.Props, "@")
		content, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read props file %s: %w", filename, err)
		}
		data = content
		source = "props file " + filename
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", source, err)
	}

	props := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			props[key] = v
		case float64:
			props[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			props[key] = strconv.FormatBool(v)
		case nil:
			props[key] = ""
		default:
			return nil, fmt.Errorf("prop %q must be a string, number or boolean", key)
		}
	}
	return props, nil
}

// ValidateFlags validates flag combinations and values
func (f *StandardFlags) ValidateFlags() error {
	if f.Port < 0 || f.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", f.Port)
	}

	if f.Display != "" && !types.DisplayMode(strings.ToLower(f.Display)).Valid() {
		return fmt.Errorf("invalid display mode %s, must be one of: inline, block", f.Display)
	}

	if f.OutputFormat != "" {
		if err := ValidateFormatWithSuggestion(f.OutputFormat, []string{"table", "json", "yaml"}); err != nil {
			return err
		}
	}

	return nil
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidatePort validates a port flag value.
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}

	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", port)
	}

	return nil
}

// ValidateFileExists checks that an optional file argument exists.
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	return nil
}

// ValidateFormatWithSuggestion accepts one of valid, case-insensitively, and
// suggests the closest value otherwise.
func ValidateFormatWithSuggestion(value string, valid []string) error {
	for _, v := range valid {
		if strings.EqualFold(value, v) {
			return nil
		}
	}

	msg := fmt.Sprintf("invalid value %q, must be one of: %s", value, strings.Join(valid, ", "))
	if suggestions := errors.Suggest(value, valid, 1); len(suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %q?)", suggestions[0])
	}
	return fmt.Errorf("%s", msg)
}
