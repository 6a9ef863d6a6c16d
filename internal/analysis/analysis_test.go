package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsoniclang/tsonic/internal/diagnostic"
	"github.com/tsoniclang/tsonic/internal/ir"
)

func mod(path, container string, exports ...ir.Export) *ir.Module {
	return &ir.Module{FilePath: path, ContainerClass: container, Exports: exports}
}

func TestBuildOrderDependenciesFirst(t *testing.T) {
	modules := map[string]*ir.Module{
		"/src/App.ts":  mod("/src/App.ts", "App"),
		"/src/lib.ts":  mod("/src/lib.ts", "lib"),
		"/src/util.ts": mod("/src/util.ts", "util"),
	}
	imports := map[string][]string{
		"/src/App.ts": {"/src/lib.ts"},
		"/src/lib.ts": {"/src/util.ts"},
	}
	diags := diagnostic.NewCollector()
	res, ok := Analyze(modules, imports, nil, diags)
	if !ok {
		t.Fatalf("unexpected failure: %s", diags.FormatAll())
	}
	want := []string{"/src/util.ts", "/src/lib.ts", "/src/App.ts"}
	if diff := cmp.Diff(want, res.BuildOrder); diff != "" {
		t.Fatalf("build order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildOrderIsDeterministic(t *testing.T) {
	modules := map[string]*ir.Module{
		"/src/a.ts": mod("/src/a.ts", "a"),
		"/src/b.ts": mod("/src/b.ts", "b"),
		"/src/c.ts": mod("/src/c.ts", "c"),
	}
	diags := diagnostic.NewCollector()
	res, ok := Analyze(modules, nil, nil, diags)
	if !ok {
		t.Fatal("unexpected failure")
	}
	// Independent modules order lexicographically.
	want := []string{"/src/a.ts", "/src/b.ts", "/src/c.ts"}
	if diff := cmp.Diff(want, res.BuildOrder); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSurvivingCycleIsFatal(t *testing.T) {
	modules := map[string]*ir.Module{
		"/src/a.ts": mod("/src/a.ts", "a"),
		"/src/b.ts": mod("/src/b.ts", "b"),
	}
	imports := map[string][]string{
		"/src/a.ts": {"/src/b.ts"},
		"/src/b.ts": {"/src/a.ts"},
	}
	diags := diagnostic.NewCollector()
	if _, ok := Analyze(modules, imports, nil, diags); ok {
		t.Fatal("expected failure on cycle")
	}
	if diags.Errors()[0].Code != diagnostic.CodeAnalysisCycle {
		t.Fatalf("expected 5001, got %s", diags.FormatAll())
	}
}

func TestSymbolTable(t *testing.T) {
	modules := map[string]*ir.Module{
		"/src/a.ts": mod("/src/a.ts", "a", ir.Export{Name: "f", Kind: "function"}),
		"/src/b.ts": mod("/src/b.ts", "b", ir.Export{Name: "f", Kind: "function"}, ir.Export{Name: "C", Kind: "class"}),
	}
	diags := diagnostic.NewCollector()
	res, _ := Analyze(modules, nil, nil, diags)

	owners := res.Symbols.Lookup("f")
	if len(owners) != 2 {
		t.Fatalf("f should have 2 owners, got %d", len(owners))
	}
	exports := res.Symbols.Exports("/src/b.ts")
	if len(exports) != 2 || exports[1].Name != "C" || exports[1].Container != "b" {
		t.Fatalf("unexpected exports: %+v", exports)
	}
}

func TestSpecDedup(t *testing.T) {
	specs := []ir.SpecRequest{
		{DeclModule: "/src/lib.ts", DeclName: "id", TypeArgs: []ir.Type{ir.NewPrimitive(ir.PrimDouble)}},
		{DeclModule: "/src/lib.ts", DeclName: "id", TypeArgs: []ir.Type{ir.NewPrimitive(ir.PrimDouble)}},
		{DeclModule: "/src/lib.ts", DeclName: "id", TypeArgs: []ir.Type{ir.NewPrimitive(ir.PrimString)}},
	}
	modules := map[string]*ir.Module{"/src/lib.ts": mod("/src/lib.ts", "lib")}
	diags := diagnostic.NewCollector()
	res, _ := Analyze(modules, nil, specs, diags)
	if len(res.Specs) != 2 {
		t.Fatalf("expected 2 deduplicated requests, got %d", len(res.Specs))
	}
}
