// Package config loads and validates tsonic workspace and project
// configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Mode selects how the fixed set of JavaScript built-in method names is
// lowered: against the BCL directly, or against the JS-semantics runtime
// extension methods.
type Mode string

const (
	ModeDotnet Mode = "dotnet"
	ModeJS     Mode = "js"
)

// DefaultMode is the single named default for the mode switch.
const DefaultMode = ModeDotnet

// Config represents a tsonic project configuration (tsonic.json).
type Config struct {
	// RootNamespace is the C# namespace every derived module namespace is
	// joined under. Required.
	RootNamespace string `json:"rootNamespace"`

	// EntryPoint is the entry module path, relative to the project
	// directory (default: "<sourceRoot>/main.ts").
	EntryPoint string `json:"entryPoint,omitempty"`

	// SourceRoot is the directory all local modules must live under
	// (default: "src").
	SourceRoot string `json:"sourceRoot,omitempty"`

	// OutputDirectory receives the generated C# tree and project manifest
	// (default: "out").
	OutputDirectory string `json:"outputDirectory,omitempty"`

	// OutputName names the generated assembly. When empty it defaults to
	// the container-class name of the entry module, computed after
	// resolution.
	OutputName string `json:"outputName,omitempty"`

	// Mode is "dotnet" or "js" (default: "dotnet").
	Mode Mode `json:"mode,omitempty"`

	// TargetFrameworkMoniker is the TFM written into the project manifest
	// (default: "net9.0").
	TargetFrameworkMoniker string `json:"targetFrameworkMoniker,omitempty"`

	// TypeRoots are directories scanned recursively for .d.ts files and
	// their bindings.json / metadata.json manifests.
	TypeRoots []string `json:"typeRoots,omitempty"`

	// PackageReferences are NuGet package references copied into the
	// project manifest, "Name@Version".
	PackageReferences []string `json:"packageReferences,omitempty"`

	// LibraryReferences are paths to prebuilt assemblies referenced by
	// the project manifest.
	LibraryReferences []string `json:"libraryReferences,omitempty"`

	// FrameworkReferences are shared-framework references (e.g.
	// "Microsoft.AspNetCore.App").
	FrameworkReferences []string `json:"frameworkReferences,omitempty"`
}

// DefaultConfig returns a config with the documented defaults. RootNamespace
// has no default; Validate rejects a config without one.
func DefaultConfig() Config {
	return Config{
		SourceRoot:             "src",
		OutputDirectory:        "out",
		Mode:                   DefaultMode,
		TargetFrameworkMoniker: "net9.0",
	}
}

// Discover searches dir and its ancestors for a tsonic.json. Returns the
// full path, or empty string if none found.
func Discover(dir string) string {
	for {
		p := filepath.Join(dir, "tsonic.json")
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load reads and parses a tsonic.json config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}

	return &config, nil
}

// EntryPointOrDefault returns the configured entry point, or the default
// main module under the source root.
func (c *Config) EntryPointOrDefault() string {
	if c.EntryPoint != "" {
		return c.EntryPoint
	}
	return filepath.Join(c.SourceRoot, "main.ts")
}
