package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const fileHeader = `# partials configuration
# Every key can be overridden with a PARTIALS_<SECTION>_<KEY> environment
# variable, e.g. PARTIALS_SERVER_PORT=3000.
`

// MarshalYAML writes script_timeout as a duration string such as "2s".
func (r RenderConfig) MarshalYAML() (interface{}, error) {
	return struct {
		EnableScripts bool   `yaml:"enable_scripts"`
		DisplayMode   string `yaml:"display_mode"`
		ScriptTimeout string `yaml:"script_timeout"`
	}{
		EnableScripts: r.EnableScripts,
		DisplayMode:   r.DisplayMode,
		ScriptTimeout: r.ScriptTimeout.String(),
	}, nil
}

// MarshalJSON writes script_timeout as a duration string such as "2s".
func (r RenderConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EnableScripts bool   `json:"enable_scripts"`
		DisplayMode   string `json:"display_mode"`
		ScriptTimeout string `json:"script_timeout"`
	}{
		EnableScripts: r.EnableScripts,
		DisplayMode:   r.DisplayMode,
		ScriptTimeout: r.ScriptTimeout.String(),
	})
}

// Marshal encodes the configuration as a commented YAML document.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile saves the configuration to path.
func (c *Config) WriteFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
