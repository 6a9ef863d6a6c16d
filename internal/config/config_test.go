package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.SourceRoot != "src" {
		t.Fatalf("expected default sourceRoot 'src', got %q", cfg.SourceRoot)
	}
	if cfg.OutputDirectory != "out" {
		t.Fatalf("expected default outputDirectory 'out', got %q", cfg.OutputDirectory)
	}
	if cfg.Mode != ModeDotnet {
		t.Fatalf("expected default mode 'dotnet', got %q", cfg.Mode)
	}
	if cfg.TargetFrameworkMoniker != "net9.0" {
		t.Fatalf("expected default TFM 'net9.0', got %q", cfg.TargetFrameworkMoniker)
	}
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "tsonic.json")
	content := `{
		"rootNamespace": "MyApp",
		"entryPoint": "src/App.ts",
		"mode": "js",
		"typeRoots": ["types"],
		"packageReferences": ["Newtonsoft.Json@13.0.3"]
	}`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RootNamespace != "MyApp" {
		t.Fatalf("unexpected rootNamespace: %q", cfg.RootNamespace)
	}
	if cfg.Mode != ModeJS {
		t.Fatalf("unexpected mode: %q", cfg.Mode)
	}
	if cfg.SourceRoot != "src" {
		t.Fatalf("defaults should survive partial config, got sourceRoot %q", cfg.SourceRoot)
	}
}

func TestLoadRejectsMissingRootNamespace(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "tsonic.json")
	if err := os.WriteFile(configPath, []byte(`{"mode": "dotnet"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Fatal("expected error for missing rootNamespace")
	}
}

func TestLoadRejectsBadMode(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "tsonic.json")
	if err := os.WriteFile(configPath, []byte(`{"rootNamespace": "X", "mode": "wasm"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestValidateBadPackageReference(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RootNamespace = "X"
	cfg.PackageReferences = []string{"Newtonsoft.Json"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for package reference without version")
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(root, "tsonic.json")
	if err := os.WriteFile(configPath, []byte(`{"rootNamespace":"X"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Discover(nested); got != configPath {
		t.Fatalf("expected %q, got %q", configPath, got)
	}
}

func TestEntryPointDefault(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.EntryPointOrDefault(); got != filepath.Join("src", "main.ts") {
		t.Fatalf("unexpected default entry point %q", got)
	}
}
