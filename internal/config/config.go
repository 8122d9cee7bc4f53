// Package config provides configuration management for partials using Viper
// for loading from files, environment variables, and command-line flags.
//
// The configuration system supports a .partials.yml file, environment
// variable overrides with the PARTIALS_ prefix, defaults, and validation.
// It covers where component definitions live, how they render, the preview
// server, and logging.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/conneroisu/partials/internal/errors"
	"github.com/conneroisu/partials/internal/types"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".partials.yml"

// EnvPrefix prefixes environment variable overrides.
const EnvPrefix = "PARTIALS"

type Config struct {
	Components  ComponentsConfig  `mapstructure:"components" yaml:"components" json:"components"`
	Render      RenderConfig      `mapstructure:"render" yaml:"render" json:"render"`
	Development DevelopmentConfig `mapstructure:"development" yaml:"development" json:"development"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server" json:"server"`
	Log         LogConfig         `mapstructure:"log" yaml:"log" json:"log"`
	TargetFiles []string          `mapstructure:"-" yaml:"-" json:"-"` // CLI arguments, not from config file
}

type ComponentsConfig struct {
	Folder          string   `mapstructure:"folder" yaml:"folder" json:"folder"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns" json:"exclude_patterns"`
}

type RenderConfig struct {
	EnableScripts bool          `mapstructure:"enable_scripts" yaml:"enable_scripts" json:"enable_scripts"`
	DisplayMode   string        `mapstructure:"display_mode" yaml:"display_mode" json:"display_mode"`
	ScriptTimeout time.Duration `mapstructure:"script_timeout" yaml:"script_timeout" json:"script_timeout"`
}

type DevelopmentConfig struct {
	LiveReload bool `mapstructure:"live_reload" yaml:"live_reload" json:"live_reload"`
	Debug      bool `mapstructure:"debug" yaml:"debug" json:"debug"`
}

type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host" json:"host"`
	Port int    `mapstructure:"port" yaml:"port" json:"port"`
	Open bool   `mapstructure:"open" yaml:"open" json:"open"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Components: ComponentsConfig{
			Folder:          "_components",
			ExcludePatterns: []string{"**/_*.md", "**/*.draft.md"},
		},
		Render: RenderConfig{
			EnableScripts: true,
			DisplayMode:   string(types.DisplayInline),
			ScriptTimeout: 2 * time.Second,
		},
		Development: DevelopmentConfig{
			LiveReload: true,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers Default's values with viper so unset keys resolve
// and environment overrides are discovered by Unmarshal.
func SetDefaults() {
	d := Default()
	viper.SetDefault("components.folder", d.Components.Folder)
	viper.SetDefault("components.exclude_patterns", d.Components.ExcludePatterns)
	viper.SetDefault("render.enable_scripts", d.Render.EnableScripts)
	viper.SetDefault("render.display_mode", d.Render.DisplayMode)
	viper.SetDefault("render.script_timeout", d.Render.ScriptTimeout)
	viper.SetDefault("development.live_reload", d.Development.LiveReload)
	viper.SetDefault("development.debug", d.Development.Debug)
	viper.SetDefault("server.host", d.Server.Host)
	viper.SetDefault("server.port", d.Server.Port)
	viper.SetDefault("server.open", d.Server.Open)
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
}

// Load decodes and validates the configuration viper has gathered from
// defaults, the config file, the environment and bound flags.
func Load() (*Config, error) {
	config, err := Decode()
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, "invalid configuration").WithCause(err)
	}

	return config, nil
}

// Decode reads and normalizes the configuration without validating it.
func Decode() (*Config, error) {
	SetDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, "could not decode configuration").WithCause(err)
	}

	// Handle exclude patterns set via viper (workaround for viper slice handling)
	if viper.IsSet("components.exclude_patterns") && len(config.Components.ExcludePatterns) == 0 {
		config.Components.ExcludePatterns = viper.GetStringSlice("components.exclude_patterns")
	}

	config.Components.Folder = filepath.Clean(strings.TrimSpace(config.Components.Folder))
	config.Render.DisplayMode = strings.ToLower(strings.TrimSpace(config.Render.DisplayMode))
	config.Log.Level = strings.ToLower(strings.TrimSpace(config.Log.Level))
	config.Log.Format = strings.ToLower(strings.TrimSpace(config.Log.Format))

	// debug mode raises the log level
	if config.Development.Debug {
		config.Log.Level = "debug"
	}

	return &config, nil
}

// RenderOptions converts the render section into renderer options.
func (c *Config) RenderOptions() types.RenderOptions {
	return types.RenderOptions{
		EnableScripts: c.Render.EnableScripts,
		DisplayMode:   types.DisplayMode(c.Render.DisplayMode),
	}
}

// Address returns the preview server's listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateComponentsConfig(&config.Components); err != nil {
		return fmt.Errorf("components config: %w", err)
	}

	if err := validateRenderConfig(&config.Render); err != nil {
		return fmt.Errorf("render config: %w", err)
	}

	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	return nil
}

func validateComponentsConfig(config *ComponentsConfig) error {
	if err := validatePath(config.Folder); err != nil {
		return fmt.Errorf("invalid folder '%s': %w", config.Folder, err)
	}

	for _, pattern := range config.ExcludePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern '%s'", pattern)
		}
	}

	return nil
}

func validateRenderConfig(config *RenderConfig) error {
	if !types.DisplayMode(config.DisplayMode).Valid() {
		return fmt.Errorf("display_mode must be %q or %q, got %q",
			types.DisplayInline, types.DisplayBlock, config.DisplayMode)
	}

	if config.ScriptTimeout <= 0 {
		return fmt.Errorf("script_timeout must be positive, got %s", config.ScriptTimeout)
	}

	return nil
}

func validateServerConfig(config *ServerConfig) error {
	// Validate port range (allow 0 for system-assigned ports in testing)
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\", " "}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %q", char)
			}
		}
	}

	return nil
}

func validateLogConfig(config *LogConfig) error {
	switch config.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", config.Level)
	}

	switch config.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", config.Format)
	}

	return nil
}

// validatePath rejects empty paths and paths that climb out of their base
// with ".." segments.
func validatePath(path string) error {
	if path == "" || path == "." {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	for _, segment := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if segment == ".." {
			return errors.ErrPathTraversal(path)
		}
	}

	return nil
}
