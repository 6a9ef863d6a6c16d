package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"

	"github.com/tsoniclang/tsonic/internal/analysis"
	"github.com/tsoniclang/tsonic/internal/backend"
	"github.com/tsoniclang/tsonic/internal/compiler"
	"github.com/tsoniclang/tsonic/internal/config"
	"github.com/tsoniclang/tsonic/internal/diagnostic"
	"github.com/tsoniclang/tsonic/internal/emit"
	"github.com/tsoniclang/tsonic/internal/ir"
	"github.com/tsoniclang/tsonic/internal/irbuild"
	"github.com/tsoniclang/tsonic/internal/resolver"
	"github.com/tsoniclang/tsonic/internal/specialize"
	"github.com/tsoniclang/tsonic/internal/validator"
)

// buildFlags holds parsed build-command flags.
type buildFlags struct {
	project string
	config  string
	mode    string
	publish bool
	timing  bool
}

func parseBuildFlags(args []string) (*buildFlags, error) {
	flags := &buildFlags{project: "tsconfig.json"}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--project", "-p":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("--project requires a path")
			}
			flags.project = args[i]
		case "--config":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("--config requires a path")
			}
			flags.config = args[i]
		case "--mode":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("--mode requires dotnet or js")
			}
			flags.mode = args[i]
		case "--publish":
			flags.publish = true
		case "--timing":
			flags.timing = true
		default:
			return nil, fmt.Errorf("unknown flag %q", args[i])
		}
	}
	return flags, nil
}

func runBuild(args []string) int {
	flags, err := parseBuildFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cfg, projectDir, err := loadConfig(flags, cwd)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if flags.mode != "" {
		cfg.Mode = config.Mode(flags.mode)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	timing := &TimingReport{}
	start := time.Now()
	diags, ok := compile(cfg, projectDir, flags, timing)
	timing.Total = time.Since(start)

	printDiagnostics(diags)
	if flags.timing {
		timing.Print()
	}
	if !ok {
		return exitCode(diags)
	}
	return 0
}

func loadConfig(flags *buildFlags, cwd string) (*config.Config, string, error) {
	if flags.config != "" {
		resolved := flags.config
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(cwd, resolved)
		}
		cfg, err := config.Load(resolved)
		if err != nil {
			return nil, "", err
		}
		return cfg, filepath.Dir(resolved), nil
	}
	if p := config.Discover(cwd); p != "" {
		cfg, err := config.Load(p)
		if err != nil {
			return nil, "", err
		}
		return cfg, filepath.Dir(p), nil
	}
	return nil, "", fmt.Errorf("no tsonic.json found in %s or its ancestors", cwd)
}

// compile drives the six-phase pipeline. The first failing phase halts
// it; diagnostics from the failing phase are returned for printing.
func compile(cfg *config.Config, projectDir string, flags *buildFlags, timing *TimingReport) ([]diagnostic.Diagnostic, bool) {
	// Phase 1: program.
	phaseStart := time.Now()
	program, diags, err := compiler.Load(cfg, projectDir, flags.project)
	timing.Program = time.Since(phaseStart)
	if err != nil {
		return []diagnostic.Diagnostic{{
			Code: diagnostic.CodeManifestRead, Severity: diagnostic.SeverityError, Message: err.Error(),
		}}, false
	}
	if len(diags) > 0 {
		return diags, false
	}

	// Phase 2: resolve.
	phaseStart = time.Now()
	sourceRoot := cfg.SourceRoot
	if !filepath.IsAbs(sourceRoot) {
		sourceRoot = filepath.Join(projectDir, sourceRoot)
	}
	entry := cfg.EntryPointOrDefault()
	if !filepath.IsAbs(entry) {
		entry = filepath.Join(projectDir, entry)
	}
	res := &resolver.Resolver{
		SourceRoot:    sourceRoot,
		RootNamespace: cfg.RootNamespace,
		Bindings:      program.Bindings,
		Shape:         resolver.ProgramShapes(program),
	}
	collector := diagnostic.NewCollector()
	graph, ok := res.BuildGraph(entry, collector)
	timing.Resolve = time.Since(phaseStart)
	if !ok {
		return collector.Sorted(), false
	}

	checker, release := shimcompiler.Program_GetTypeChecker(program.TS, context.Background())
	defer release()

	// Phase 3: validate.
	phaseStart = time.Now()
	collector = diagnostic.NewCollector()
	v := validator.New(checker, collector)
	for _, path := range sortedModulePaths(graph) {
		if sf := program.SourceFile(path); sf != nil {
			v.CheckFile(sf)
		}
	}
	timing.Validate = time.Since(phaseStart)
	if collector.HasErrors() {
		return collector.Sorted(), false
	}

	// Phase 4: IR.
	phaseStart = time.Now()
	collector = diagnostic.NewCollector()
	builder := irbuild.New(checker, program.Bindings, program.Metadata, collector)
	for _, path := range sortedModulePaths(graph) {
		if sf := program.SourceFile(path); sf != nil {
			builder.RegisterGenerics(sf)
		}
	}
	modules := make(map[string]*ir.Module, len(graph.Modules))
	for _, path := range sortedModulePaths(graph) {
		sf := program.SourceFile(path)
		if sf == nil {
			continue
		}
		modules[path] = builder.BuildModule(sf, graph.Modules[path], graph.Resolved[path], path == graph.EntryPoint)
	}
	timing.Lower = time.Since(phaseStart)
	if collector.HasErrors() {
		return collector.Sorted(), false
	}

	// Phase 5: analyse.
	phaseStart = time.Now()
	collector = diagnostic.NewCollector()
	result, ok := analysis.Analyze(modules, graph.Imports, builder.Specs(), collector)
	timing.Analyze = time.Since(phaseStart)
	if !ok {
		return collector.Sorted(), false
	}

	// Phase 6: specialise and emit.
	phaseStart = time.Now()
	specOut := specialize.Run(modules, result.Specs)
	collector = diagnostic.NewCollector()
	outputName := cfg.OutputName
	if outputName == "" {
		// Default: the container-class name of the entry module.
		outputName = graph.Modules[graph.EntryPoint].ContainerClass
	}
	emitted, ok := emit.Emit(&emit.Input{
		Modules:                modules,
		BuildOrder:             result.BuildOrder,
		Symbols:                result.Symbols,
		Specs:                  specOut,
		Metadata:               program.Metadata,
		Mode:                   emit.Mode(cfg.Mode),
		RootNamespace:          cfg.RootNamespace,
		SourceRoot:             sourceRoot,
		OutputName:             outputName,
		TargetFrameworkMoniker: cfg.TargetFrameworkMoniker,
		PackageReferences:      cfg.PackageReferences,
		LibraryReferences:      cfg.LibraryReferences,
		FrameworkReferences:    cfg.FrameworkReferences,
	}, collector)
	timing.Emit = time.Since(phaseStart)
	if !ok {
		return collector.Sorted(), false
	}

	outputDir := cfg.OutputDirectory
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(projectDir, outputDir)
	}
	if err := backend.WriteOutputs(outputDir, emitted.Files, emitted.ProjectFileName, emitted.ProjectFile); err != nil {
		return []diagnostic.Diagnostic{{
			Code: diagnostic.CodeManifestRead, Severity: diagnostic.SeverityError, Message: err.Error(),
		}}, false
	}
	fmt.Fprintf(os.Stderr, "emitted %d file(s) to %s\n", len(emitted.Files)+1, outputDir)

	if flags.publish {
		if err := backend.New(outputDir).Publish(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return collector.Sorted(), false
		}
	}
	return collector.Sorted(), true
}

func sortedModulePaths(graph *resolver.Graph) []string {
	paths := make([]string, 0, len(graph.Modules))
	for p := range graph.Modules {
		paths = append(paths, p)
	}
	for i := 1; i < len(paths); i++ {
		for j := i; j > 0 && paths[j] < paths[j-1]; j-- {
			paths[j], paths[j-1] = paths[j-1], paths[j]
		}
	}
	return paths
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
)

// printDiagnostics renders each diagnostic with severity coloring.
func printDiagnostics(diags []diagnostic.Diagnostic) {
	for _, d := range diags {
		switch d.Severity {
		case diagnostic.SeverityError:
			errColor.Fprintln(os.Stderr, d.String())
		case diagnostic.SeverityWarning:
			warnColor.Fprintln(os.Stderr, d.String())
		default:
			fmt.Fprintln(os.Stderr, d.String())
		}
	}
}

// exitCode maps the first error's code group onto a category-specific
// process exit code.
func exitCode(diags []diagnostic.Diagnostic) int {
	for _, d := range diags {
		if d.Severity != diagnostic.SeverityError {
			continue
		}
		switch int(d.Code) / 1000 {
		case 1:
			return 10
		case 2:
			return 20
		case 3:
			return 30
		case 4:
			return 40
		case 5:
			return 50
		case 7:
			return 70
		case 9:
			return 90
		}
	}
	return 1
}
