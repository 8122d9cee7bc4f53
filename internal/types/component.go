// Package types provides common type definitions used throughout partials.
// This package contains shared types to avoid circular dependencies between packages.
package types

import (
	"regexp"
	"time"
)

// identifierPattern is the syntax shared by component names and invocation targets.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][\w-]*$`)

// IsIdentifier reports whether s can be used as a component name in an invocation.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// Definition is a parsed, named, reusable template record. A Definition is
// treated as immutable once returned by the parser; the registry replaces
// it wholesale when its source document changes.
type Definition struct {
	// Name is the registry key (front matter "name" or the file's base name)
	Name string `json:"name" yaml:"name"`
	// Description is optional human-readable documentation
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Props holds the declared default values in declaration order
	Props Props `json:"props" yaml:"props"`
	// Template is the raw markup containing {{identifier}} placeholders
	Template string `json:"template" yaml:"template"`
	// Styles is the raw, unscoped CSS body of the first <style> block
	Styles string `json:"styles,omitempty" yaml:"styles,omitempty"`
	// Script is the raw body of the first <script> block
	Script string `json:"script,omitempty" yaml:"script,omitempty"`
	// SourcePath records provenance for diagnostics
	SourcePath string `json:"source_path" yaml:"source_path"`
}

// Props is an ordered string mapping. Order only matters for display.
type Props struct {
	Keys   []string
	Values map[string]string
}

// NewProps creates an empty ordered mapping.
func NewProps() Props {
	return Props{Values: make(map[string]string)}
}

// Set stores value under key, keeping the key's first position.
func (p *Props) Set(key, value string) {
	if p.Values == nil {
		p.Values = make(map[string]string)
	}
	if _, exists := p.Values[key]; !exists {
		p.Keys = append(p.Keys, key)
	}
	p.Values[key] = value
}

// Get returns the value stored under key.
func (p Props) Get(key string) (string, bool) {
	v, ok := p.Values[key]
	return v, ok
}

// Len returns the number of declared props.
func (p Props) Len() int {
	return len(p.Keys)
}

// Map returns a copy of the values.
func (p Props) Map() map[string]string {
	out := make(map[string]string, len(p.Values))
	for k, v := range p.Values {
		out[k] = v
	}
	return out
}

// MarshalJSON renders the mapping as a JSON object in declaration order.
func (p Props) MarshalJSON() ([]byte, error) {
	return marshalOrderedJSON(p.Keys, p.Values)
}

// MarshalYAML renders the mapping as a YAML mapping in declaration order.
func (p Props) MarshalYAML() (interface{}, error) {
	return orderedYAML(p.Keys, p.Values), nil
}

// Invocation is a use-site reference to a definition. It is created,
// consumed and discarded within a single render call.
type Invocation struct {
	// Name is the component to look up
	Name string
	// Props are the caller's overrides; unknown keys are accepted
	Props map[string]string
}

// DisplayMode controls container styling only.
type DisplayMode string

const (
	DisplayInline DisplayMode = "inline"
	DisplayBlock  DisplayMode = "block"
)

// Valid reports whether the mode is one of the recognized values.
func (m DisplayMode) Valid() bool {
	return m == DisplayInline || m == DisplayBlock
}

// RenderOptions is the per-call render configuration supplied by the host.
type RenderOptions struct {
	// EnableScripts allows the definition's script body to run
	EnableScripts bool
	// DisplayMode selects the block or inline container class
	DisplayMode DisplayMode
}

// DefaultRenderOptions mirrors the host's default settings.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		EnableScripts: true,
		DisplayMode:   DisplayInline,
	}
}

// EventType represents the type of component change event.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeUpdated EventType = "updated"
	EventTypeRemoved EventType = "removed"
)

// ComponentEvent represents a change in the component registry, used for
// notifications to watchers like the preview server.
type ComponentEvent struct {
	// Type indicates the kind of change (added, updated, removed)
	Type EventType
	// Definition is the affected definition (the previous one for removals)
	Definition *Definition
	// Timestamp records when the event occurred
	Timestamp time.Time
}
