// Package backend shells out to the host .NET SDK. The compiler core
// emits source and a manifest; publishing is this thin collaborator's
// whole job.
package backend

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Publisher runs dotnet publish over an emitted project.
type Publisher struct {
	// DotnetPath overrides the dotnet executable; empty means $PATH.
	DotnetPath string
	// WorkDir is the directory holding the emitted project manifest.
	WorkDir string
	// Configuration is the build configuration (default Release).
	Configuration string
}

// New creates a publisher over the emitted output directory.
func New(workDir string) *Publisher {
	return &Publisher{WorkDir: workDir, Configuration: "Release"}
}

// WriteOutputs writes the emitted file batch to disk under the output
// directory. The emitter buffers everything in memory; this is the only
// place generated files touch the filesystem, so a killed build never
// leaves a partial tree behind a successful exit code.
func WriteOutputs(outputDir string, files map[string]string, projectFileName, projectFile string) error {
	for rel, content := range files {
		p := filepath.Join(outputDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}
	p := filepath.Join(outputDir, projectFileName)
	if err := os.WriteFile(p, []byte(projectFile), 0o644); err != nil {
		return fmt.Errorf("write project manifest: %w", err)
	}
	return nil
}

// Publish invokes dotnet publish and streams its output through.
func (p *Publisher) Publish() error {
	dotnet := p.DotnetPath
	if dotnet == "" {
		dotnet = "dotnet"
	}
	configuration := p.Configuration
	if configuration == "" {
		configuration = "Release"
	}

	cmd := exec.Command(dotnet, "publish", "-c", configuration)
	cmd.Dir = p.WorkDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("dotnet publish: %w", err)
	}
	return nil
}
