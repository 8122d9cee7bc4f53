package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/conneroisu/partials/internal/types"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("❌ Validation Errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("⚠️  Validation Warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

func (vr *ValidationResult) addError(field string, value interface{}, message string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, message string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

// ValidateConfigWithDetails checks every section and collects all problems
// instead of stopping at the first, adding warnings for settings that are
// valid but probably not intended.
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateComponentsConfigDetails(&config.Components, result)
	validateRenderConfigDetails(&config.Render, result)
	validateServerConfigDetails(&config.Server, result)
	validateLogConfigDetails(&config.Log, result)

	result.Valid = !result.HasErrors()

	return result
}

func validateComponentsConfigDetails(config *ComponentsConfig, result *ValidationResult) {
	if err := validatePath(config.Folder); err != nil {
		result.addError("components.folder", config.Folder, err.Error(),
			"Use a folder inside the vault, e.g. _components")
	} else if !pathExists(config.Folder) {
		result.addWarning("components.folder", config.Folder, "folder does not exist",
			"Run 'partials init' to create it with example components")
	}

	for _, pattern := range config.ExcludePatterns {
		if !doublestar.ValidatePattern(pattern) {
			result.addError("components.exclude_patterns", pattern,
				fmt.Sprintf("invalid glob pattern '%s'", pattern),
				"Patterns use doublestar syntax, e.g. **/_*.md")
			continue
		}
		if matched, _ := doublestar.Match(pattern, "sub/button.md"); matched {
			result.addWarning("components.exclude_patterns", pattern,
				fmt.Sprintf("pattern '%s' excludes every component", pattern))
		}
	}
}

func validateRenderConfigDetails(config *RenderConfig, result *ValidationResult) {
	if !types.DisplayMode(config.DisplayMode).Valid() {
		result.addError("render.display_mode", config.DisplayMode,
			fmt.Sprintf("unknown display mode %q", config.DisplayMode),
			fmt.Sprintf("Valid modes: %s, %s", types.DisplayInline, types.DisplayBlock))
	}

	if config.ScriptTimeout <= 0 {
		result.addError("render.script_timeout", config.ScriptTimeout, "script timeout must be positive",
			"Use a duration such as 2s")
	}
}

func validateServerConfigDetails(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.addError("server.port", config.Port,
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			"Common development ports: 3000, 8080, 8000",
			"Port 0 allows system to assign an available port")
	} else if config.Port > 0 && config.Port < 1024 {
		result.addWarning("server.port", config.Port, "port below 1024 requires elevated privileges",
			"Use a port of 1024 or above")
	}

	if err := validateServerConfig(&ServerConfig{Host: config.Host}); err != nil {
		result.addError("server.host", config.Host, err.Error())
	} else if config.Host == "0.0.0.0" {
		result.addWarning("server.host", config.Host, "preview server is reachable from other machines",
			"Use localhost unless you need remote access")
	}
}

func validateLogConfigDetails(config *LogConfig, result *ValidationResult) {
	if err := validateLogConfig(config); err != nil {
		result.addError("log", config, err.Error(),
			"Levels: debug, info, warn, error", "Formats: text, json")
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
