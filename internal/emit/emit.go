package emit

import (
	"path/filepath"
	"strings"

	"github.com/tsoniclang/tsonic/internal/analysis"
	"github.com/tsoniclang/tsonic/internal/clrmeta"
	"github.com/tsoniclang/tsonic/internal/diagnostic"
	"github.com/tsoniclang/tsonic/internal/ir"
	"github.com/tsoniclang/tsonic/internal/specialize"
)

// Mode selects the builtin routing table.
type Mode string

const (
	ModeDotnet Mode = "dotnet"
	ModeJS     Mode = "js"
)

// Input is the emitter's phase input.
type Input struct {
	Modules    map[string]*ir.Module
	BuildOrder []string
	Symbols    *analysis.SymbolTable
	Specs      *specialize.Output
	Metadata   *clrmeta.Registry

	Mode          Mode
	RootNamespace string
	SourceRoot    string

	OutputName             string
	TargetFrameworkMoniker string
	PackageReferences      []string
	LibraryReferences      []string
	FrameworkReferences    []string
}

// Output is the emitted file set: relative path → C# source, plus the
// project manifest. Nothing touches disk; the host writes the batch.
type Output struct {
	Files           map[string]string
	ProjectFileName string
	ProjectFile     string
}

// Emit lowers the whole bundle. Modules are emitted in build order so
// forward references across modules always target already-emitted
// symbols; within a module, declarations follow source order.
func Emit(in *Input, diags *diagnostic.Collector) (*Output, bool) {
	out := &Output{Files: make(map[string]string)}

	adaptersByDecl := make(map[string]*specialize.Adapter)
	if in.Specs != nil {
		for key, a := range in.Specs.AdapterByDecl {
			// key is "module#decl#param"; call sites resolve by decl
			// name.
			parts := strings.Split(key, "#")
			if len(parts) == 3 {
				adaptersByDecl[parts[1]] = a
			}
		}
	}

	needsGeneratorSupport := false
	needsArrayCompat := false

	for _, path := range in.BuildOrder {
		module := in.Modules[path]
		if module == nil {
			continue
		}
		me := &moduleEmitter{
			mode:           in.Mode,
			module:         module,
			diags:          diags,
			meta:           in.Metadata,
			usings:         make(map[string]bool),
			hoisted:        make(map[string]string),
			hoistTypes:     make(map[string]ir.Type),
			specNames:      map[string]string{},
			adaptersByDecl: adaptersByDecl,
		}
		if in.Specs != nil {
			me.specNames = in.Specs.NameByKey
			me.specs = in.Specs.Decls[path]
			me.adapters = in.Specs.Adapters[path]
		}

		source := me.emitModule()
		out.Files[outputPath(in, module)] = source

		if me.needsGeneratorSupport {
			needsGeneratorSupport = true
		}
		if me.usings[JSRuntimeCompatNamespace] {
			needsArrayCompat = true
		}
	}

	if diags.HasErrors() {
		return nil, false
	}

	if needsGeneratorSupport {
		out.Files[filepath.ToSlash(filepath.Join(in.RootNamespace, "GeneratorSupport.cs"))] = generatorSupportSource
	}
	if needsArrayCompat {
		out.Files[filepath.ToSlash(filepath.Join(in.RootNamespace, "ArrayCompat.cs"))] = arrayCompatSource
	}

	out.ProjectFileName = in.OutputName + ".csproj"
	out.ProjectFile = projectManifest(in, out)
	return out, true
}

// outputPath mirrors the source tree under the root-namespace directory;
// the basename equals the container-class name.
func outputPath(in *Input, module *ir.Module) string {
	rel, err := filepath.Rel(in.SourceRoot, module.FilePath)
	if err != nil {
		rel = filepath.Base(module.FilePath)
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		dir = ""
	}
	return filepath.ToSlash(filepath.Join(in.RootNamespace, dir, module.ContainerClass+".cs"))
}
