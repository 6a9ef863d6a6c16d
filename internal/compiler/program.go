// Package compiler assembles the Program snapshot: the typed TypeScript
// program from the external front-end plus the binding and metadata
// registries loaded from the configured type roots.
package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/microsoft/typescript-go/shim/ast"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/core"
	shimscanner "github.com/microsoft/typescript-go/shim/scanner"
	"github.com/microsoft/typescript-go/shim/tsoptions"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"

	"github.com/tsoniclang/tsonic/internal/bindings"
	"github.com/tsoniclang/tsonic/internal/clrmeta"
	"github.com/tsoniclang/tsonic/internal/config"
	"github.com/tsoniclang/tsonic/internal/diagnostic"
)

// Program is the phase-1 snapshot every later phase reads from.
type Program struct {
	TS           *shimcompiler.Program
	ParsedConfig *tsoptions.ParsedCommandLine
	Config       *config.Config
	// ProjectDir is the directory the config file was loaded from; all
	// relative config paths resolve against it.
	ProjectDir string
	Bindings   *bindings.Registry
	Metadata   *clrmeta.Registry
}

// Load drives the external TypeScript front-end and the manifest loaders,
// returning the program snapshot. The loader fails fast: the first error
// diagnostic halts the pipeline, because every later phase would emit
// noise on a half-loaded program.
func Load(cfg *config.Config, projectDir string, tsconfigPath string) (*Program, []diagnostic.Diagnostic, error) {
	fs := CreateDefaultFS()
	host := CreateDefaultHost(projectDir, fs)

	parsed, diags, err := parseTSConfig(fs, projectDir, tsconfigPath, host)
	if err != nil {
		return nil, nil, err
	}
	if len(diags) > 0 {
		return nil, diags, nil
	}

	tsProgram, diags, err := createProgram(parsed, host)
	if err != nil {
		return nil, nil, err
	}
	if len(diags) > 0 {
		return nil, diags, nil
	}

	collector := diagnostic.NewCollector()
	bindReg, metaReg := loadRegistries(cfg, projectDir, collector)
	if collector.HasErrors() {
		return nil, collector.Sorted(), nil
	}

	return &Program{
		TS:           tsProgram,
		ParsedConfig: parsed,
		Config:       cfg,
		ProjectDir:   projectDir,
		Bindings:     bindReg,
		Metadata:     metaReg,
	}, collector.Sorted(), nil
}

// parseTSConfig parses tsconfig.json using the front-end's JSONC parser,
// which handles comments, trailing commas and extends chains.
func parseTSConfig(fs vfs.FS, cwd string, tsconfigPath string, host shimcompiler.CompilerHost) (*tsoptions.ParsedCommandLine, []diagnostic.Diagnostic, error) {
	resolved := tspath.ResolvePath(cwd, tsconfigPath)
	if !fs.FileExists(resolved) {
		return nil, nil, fmt.Errorf("could not find tsconfig at %v", resolved)
	}

	parsed, parseDiags := tsoptions.GetParsedCommandLineOfConfigFile(tsconfigPath, &core.CompilerOptions{}, nil, host, nil)
	if len(parseDiags) > 0 {
		return nil, convertDiagnostics(parseDiags), nil
	}
	if parsed != nil && len(parsed.Errors) > 0 {
		return nil, convertDiagnostics(parsed.Errors), nil
	}
	return parsed, nil, nil
}

// createProgram builds and binds the TS program. The pipeline is
// single-pass per invocation; the front-end runs single-threaded so
// checker answers are stable across runs.
func createProgram(parsed *tsoptions.ParsedCommandLine, host shimcompiler.CompilerHost) (*shimcompiler.Program, []diagnostic.Diagnostic, error) {
	opts := shimcompiler.ProgramOptions{
		Config:                      parsed,
		SingleThreaded:              core.TSTrue,
		Host:                        host,
		UseSourceOfProjectReference: true,
	}

	program := shimcompiler.NewProgram(opts)
	if program == nil {
		return nil, nil, errors.New("failed to create program")
	}

	programDiags := program.GetProgramDiagnostics()
	if len(programDiags) > 0 {
		return nil, convertDiagnostics(programDiags), nil
	}

	program.BindSourceFiles()
	return program, nil, nil
}

// loadRegistries scans each configured type root for .d.ts manifests and
// merges bindings and metadata, then cross-checks one against the other.
func loadRegistries(cfg *config.Config, projectDir string, diags *diagnostic.Collector) (*bindings.Registry, *clrmeta.Registry) {
	bindReg := bindings.NewRegistry()
	metaReg := clrmeta.NewRegistry()
	for _, root := range cfg.TypeRoots {
		abs := root
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(projectDir, root)
		}
		if _, err := os.Stat(abs); err != nil {
			diags.Error(diagnostic.CodeManifestRead, abs, 0, 0,
				fmt.Sprintf("type root does not exist: %v", err))
			continue
		}
		bindReg = bindReg.Merge(bindings.LoadDir(abs, diags))
		metaReg = metaReg.Merge(clrmeta.LoadDir(abs, diags))
	}

	crossCheck(bindReg, metaReg, diags)
	return bindReg, metaReg
}

// crossCheck enforces the registry invariant: no binding points at a CLR
// name absent from metadata.
func crossCheck(bindReg *bindings.Registry, metaReg *clrmeta.Registry, diags *diagnostic.Collector) {
	boundTypes := make(map[string]string)
	boundMembers := make(map[string][]string)
	for _, alias := range bindReg.TypeAliases() {
		e, _ := bindReg.LookupType(alias)
		boundTypes[alias] = e.QualifiedType
		for _, m := range bindReg.MemberAliases(alias) {
			me, _ := bindReg.LookupMember(alias, m)
			boundMembers[alias] = append(boundMembers[alias], me.Member)
		}
	}
	metaReg.CrossCheck(boundTypes, boundMembers, diags)
}

// SourceFiles returns the program's source files, excluding declaration
// files.
func (p *Program) SourceFiles() []*ast.SourceFile {
	var files []*ast.SourceFile
	for _, f := range p.TS.GetSourceFiles() {
		if !f.IsDeclarationFile {
			files = append(files, f)
		}
	}
	return files
}

// SourceFile returns the source file for an absolute path, or nil.
func (p *Program) SourceFile(path string) *ast.SourceFile {
	for _, f := range p.TS.GetSourceFiles() {
		if f.FileName() == path {
			return f
		}
	}
	return nil
}

// convertDiagnostics converts front-end diagnostics to the coded model.
// Parse errors keep their original span; they have no tsonic code group of
// their own and surface in the 2xxx group as unsupported input.
func convertDiagnostics(tsdiags []*ast.Diagnostic) []diagnostic.Diagnostic {
	diags := make([]diagnostic.Diagnostic, len(tsdiags))
	for i, d := range tsdiags {
		var filePath string
		var line, col int
		if d.File() != nil {
			filePath = d.File().FileName()
			l, c := shimscanner.GetECMALineAndCharacterOfPosition(d.File(), d.Pos())
			line, col = l+1, c+1
		}
		diags[i] = diagnostic.Diagnostic{
			Code:     diagnostic.CodeUnsupportedLiteralType,
			Severity: diagnostic.SeverityError,
			File:     filePath,
			Line:     line,
			Column:   col,
			Message:  d.String(),
		}
	}
	return diags
}
