// Package version reports build information for the partials binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time with -ldflags "-X github.com/conneroisu/partials/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// engineModules are the dependencies whose versions decide how documents
// render, reported alongside the binary version.
var engineModules = map[string]string{
	"github.com/yuin/goldmark": "markdown",
	"github.com/dop251/goja":   "scripts",
	"golang.org/x/net":         "html",
}

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string            `json:"version" yaml:"version"`
	GitCommit string            `json:"git_commit" yaml:"git_commit"`
	BuildTime time.Time         `json:"build_time" yaml:"build_time"`
	GoVersion string            `json:"go_version" yaml:"go_version"`
	Platform  string            `json:"platform" yaml:"platform"`
	Dirty     bool              `json:"dirty,omitempty" yaml:"dirty,omitempty"`
	Engines   map[string]string `json:"engines,omitempty" yaml:"engines,omitempty"`
}

// GetBuildInfo returns comprehensive build information
func GetBuildInfo() *BuildInfo {
	info := &BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: parseTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	if info.Version == "" || info.Version == "dev" {
		if v := build.Main.Version; v != "" && v != "(devel)" {
			info.Version = v
		}
	}

	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "" || info.GitCommit == "unknown" {
				info.GitCommit = setting.Value
			}
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		case "vcs.time":
			if info.BuildTime.IsZero() {
				info.BuildTime = parseTime(setting.Value)
			}
		}
	}

	for _, dep := range build.Deps {
		if label, ok := engineModules[dep.Path]; ok {
			if info.Engines == nil {
				info.Engines = make(map[string]string)
			}
			info.Engines[label] = dep.Version
		}
	}

	return info
}

// GetShortVersion returns a short version string suitable for display
func GetShortVersion() string {
	return GetBuildInfo().Short()
}

// Short formats the version with an abbreviated commit.
func (b *BuildInfo) Short() string {
	if len(b.GitCommit) < 7 || b.GitCommit == "unknown" {
		return b.Version
	}
	commit := b.GitCommit[:7]
	if b.Dirty {
		commit += "-dirty"
	}
	if b.Version == "dev" {
		return "dev-" + commit
	}
	return fmt.Sprintf("%s (%s)", b.Version, commit)
}

// String returns a detailed multi-line description.
func (b *BuildInfo) String() string {
	parts := []string{"Version: " + b.Version}

	if b.GitCommit != "unknown" && b.GitCommit != "" {
		parts = append(parts, "Commit: "+b.GitCommit)
	}
	if !b.BuildTime.IsZero() {
		parts = append(parts, "Built: "+b.BuildTime.Format(time.RFC3339))
	}
	parts = append(parts, "Go: "+b.GoVersion, "Platform: "+b.Platform)

	for _, label := range []string{"markdown", "scripts", "html"} {
		if v, ok := b.Engines[label]; ok {
			parts = append(parts, fmt.Sprintf("Engine %s: %s", label, v))
		}
	}

	return strings.Join(parts, "\n")
}

// IsRelease returns true if this is a release build (not dev)
func (b *BuildInfo) IsRelease() bool {
	return b.Version != "dev" && !strings.HasPrefix(b.Version, "dev-")
}

func parseTime(value string) time.Time {
	if value == "" || value == "unknown" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
