package testutil

import (
	"context"
	"path"
	"runtime"
	"testing"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/microsoft/typescript-go/shim/bundled"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/core"
	"github.com/microsoft/typescript-go/shim/tsoptions"
	"github.com/microsoft/typescript-go/shim/tspath"
)

// ProgramDir returns the absolute path to testdata/program/, which holds
// the tsconfig shared by inline-source tests.
func ProgramDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return path.Join(path.Dir(filename), "..", "..", "testdata", "program")
}

// Env holds a front-end program, checker and source files for tests that
// lower inline TypeScript.
type Env struct {
	Program *shimcompiler.Program
	Checker *shimchecker.Checker
	// Files maps the relative fixture name to its source file.
	Files   map[string]*ast.SourceFile
	Release func()
}

// Setup creates a front-end program from inline TypeScript sources keyed
// by relative file name, obtains the checker, and returns the environment.
// The caller must call env.Release when done.
func Setup(t *testing.T, sources map[string]string) *Env {
	t.Helper()

	rootDir := ProgramDir()
	virtualFiles := make(map[string]string, len(sources))
	for name, src := range sources {
		virtualFiles[tspath.ResolvePath(rootDir, name)] = src
	}

	fs := NewDefaultOverlayVFS(virtualFiles)
	host := shimcompiler.NewCompilerHost(rootDir, fs, bundled.LibPath(), nil, nil)

	parsed, diags := tsoptions.GetParsedCommandLineOfConfigFile(
		"tsconfig.json", &core.CompilerOptions{}, nil, host, nil,
	)
	if len(diags) > 0 {
		t.Fatalf("tsconfig parse errors: %v", diags[0].String())
	}

	program := shimcompiler.NewProgram(shimcompiler.ProgramOptions{
		Config:                      parsed,
		SingleThreaded:              core.TSTrue,
		Host:                        host,
		UseSourceOfProjectReference: true,
	})
	if program == nil {
		t.Fatal("failed to create program")
	}
	program.BindSourceFiles()

	files := make(map[string]*ast.SourceFile, len(sources))
	for name := range sources {
		sf := program.GetSourceFile(name)
		if sf == nil {
			t.Fatalf("source file %q not found in program", name)
		}
		files[name] = sf
	}

	checker, release := shimcompiler.Program_GetTypeChecker(program, context.Background())
	if checker == nil {
		t.Fatal("failed to get type checker")
	}

	return &Env{
		Program: program,
		Checker: checker,
		Files:   files,
		Release: release,
	}
}
