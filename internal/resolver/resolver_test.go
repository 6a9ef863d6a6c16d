package resolver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsoniclang/tsonic/internal/diagnostic"
)

func TestDerive(t *testing.T) {
	cases := []struct {
		rel           string
		wantNamespace string
		wantContainer string
	}{
		{"main.ts", "R", "main"},
		{"models/User.ts", "R.models", "User"},
		{"my-feature/x.ts", "R.myfeature", "x"},
		{"api/v1/handlers.ts", "R.api.v1", "handlers"},
		{"my-file-name.ts", "R", "myfilename"},
	}
	for _, c := range cases {
		ns, container := Derive("R", c.rel)
		if ns != c.wantNamespace || container != c.wantContainer {
			t.Fatalf("Derive(R, %q) = (%q, %q), want (%q, %q)",
				c.rel, ns, container, c.wantNamespace, c.wantContainer)
		}
	}
}

func TestClassify(t *testing.T) {
	r := &Resolver{}
	cases := []struct {
		specifier string
		want      Kind
		ok        bool
	}{
		{"./util.ts", KindLocalSource, true},
		{"../lib/x.ts", KindLocalSource, true},
		{"/abs/x.ts", KindLocalSource, true},
		{"System.Collections.Generic", KindDotnetNamespace, true},
		{"System", KindDotnetNamespace, true},
		{"System..Generic", "", false},
		{"lodash", "", false},
		{"fs", "", false},
	}
	for _, c := range cases {
		kind, ok := r.Classify(c.specifier)
		if ok != c.ok || kind != c.want {
			t.Fatalf("Classify(%q) = (%q, %v), want (%q, %v)", c.specifier, kind, ok, c.want, c.ok)
		}
	}
}

// writeTree writes TS sources under a temp source root and returns the
// root. Values are file contents keyed by relative path.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// fixtureShapes parses a tiny fixture syntax instead of real TS: each line
// "import <spec>" is an import, "class <Name>" a class, "exportfn <Name>"
// an exported function.
func fixtureShapes(root string) ShapeFunc {
	return func(absPath string) (*ModuleShape, error) {
		data, err := os.ReadFile(absPath)
		if err != nil {
			return nil, err
		}
		shape := &ModuleShape{}
		for i, line := range strings.Split(string(data), "\n") {
			fields := strings.Fields(line)
			if len(fields) != 2 {
				continue
			}
			switch fields[0] {
			case "import":
				shape.Imports = append(shape.Imports, ImportSite{Specifier: fields[1], Line: i + 1, Column: 1})
			case "class":
				shape.ClassNames = append(shape.ClassNames, fields[1])
			case "exportfn":
				shape.ExportedNames = append(shape.ExportedNames, fields[1])
				shape.HasFuncOrValueExport = true
			case "exportclass":
				shape.ClassNames = append(shape.ClassNames, fields[1])
				shape.ExportedNames = append(shape.ExportedNames, fields[1])
			}
		}
		return shape, nil
	}
}

func newTestResolver(root string) *Resolver {
	return &Resolver{
		SourceRoot:    root,
		RootNamespace: "R",
		Shape:         fixtureShapes(root),
	}
}

func TestGraphHappyPath(t *testing.T) {
	root := writeTree(t, map[string]string{
		"App.ts":         "import ./models/User.ts\nexportfn main",
		"models/User.ts": "exportclass User",
	})
	r := newTestResolver(root)
	diags := diagnostic.NewCollector()
	g, ok := r.BuildGraph(filepath.Join(root, "App.ts"), diags)
	if !ok {
		t.Fatalf("unexpected failure: %s", diags.FormatAll())
	}
	if len(g.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(g.Modules))
	}

	main := g.Modules[g.EntryPoint]
	if main.Namespace != "R" || main.ContainerClass != "App" {
		t.Fatalf("entry derivation wrong: %+v", main)
	}
	if !main.IsStaticContainer {
		t.Fatal("entry exports a function and no same-named class: should be a static container")
	}

	userPath, _ := realpath(filepath.Join(root, "models/User.ts"))
	user := g.Modules[userPath]
	if user.Namespace != "R.models" || user.ContainerClass != "User" {
		t.Fatalf("user derivation wrong: %+v", user)
	}
	if user.IsStaticContainer {
		t.Fatal("module whose only export is the same-named class must not be a static container")
	}
}

func TestMissingExtension(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.ts": "import ./U",
		"U.ts":    "exportclass U",
	})
	r := newTestResolver(root)
	diags := diagnostic.NewCollector()
	if _, ok := r.BuildGraph(filepath.Join(root, "main.ts"), diags); ok {
		t.Fatal("expected failure")
	}
	errs := diags.Errors()
	if len(errs) == 0 || errs[0].Code != diagnostic.CodeMissingExtension {
		t.Fatalf("expected 1001, got %s", diags.FormatAll())
	}
	if errs[0].Line != 1 {
		t.Fatalf("expected diagnostic at the import site, got line %d", errs[0].Line)
	}
}

func TestCaseMismatch(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.ts": "import ./user.ts",
		"User.ts": "exportclass User",
	})
	r := newTestResolver(root)
	diags := diagnostic.NewCollector()
	if _, ok := r.BuildGraph(filepath.Join(root, "main.ts"), diags); ok {
		t.Fatal("expected failure")
	}
	var codes []diagnostic.Code
	for _, d := range diags.Errors() {
		codes = append(codes, d.Code)
	}
	// Case-insensitive filesystems resolve the wrong-case path and report
	// 1003; case-sensitive ones report 1005. Either is a hard error.
	if len(codes) == 0 || (codes[0] != diagnostic.CodeCaseMismatch && codes[0] != diagnostic.CodeFileNotFound) {
		t.Fatalf("expected 1003 or 1005, got %s", diags.FormatAll())
	}
}

func TestCycle(t *testing.T) {
	root := writeTree(t, map[string]string{
		"A.ts": "import ./B.ts",
		"B.ts": "import ./C.ts",
		"C.ts": "import ./A.ts",
	})
	r := newTestResolver(root)
	diags := diagnostic.NewCollector()
	if _, ok := r.BuildGraph(filepath.Join(root, "A.ts"), diags); ok {
		t.Fatal("expected failure")
	}
	errs := diags.Errors()
	if len(errs) == 0 || errs[0].Code != diagnostic.CodeCircularImport {
		t.Fatalf("expected 1006, got %s", diags.FormatAll())
	}
	msg := errs[0].Message
	for _, name := range []string{"A.ts", "B.ts", "C.ts"} {
		if !strings.Contains(msg, name) {
			t.Fatalf("cycle message should name %s: %q", name, msg)
		}
	}
}

func TestUnknownModule(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.ts": "import lodash",
	})
	r := newTestResolver(root)
	diags := diagnostic.NewCollector()
	if _, ok := r.BuildGraph(filepath.Join(root, "main.ts"), diags); ok {
		t.Fatal("expected failure")
	}
	if diags.Errors()[0].Code != diagnostic.CodeUnknownModule {
		t.Fatalf("expected 1004, got %s", diags.FormatAll())
	}
}

func TestContainerExportCollision(t *testing.T) {
	root := writeTree(t, map[string]string{
		"util.ts": "exportfn util",
	})
	r := newTestResolver(root)
	diags := diagnostic.NewCollector()
	if _, ok := r.BuildGraph(filepath.Join(root, "util.ts"), diags); ok {
		t.Fatal("expected failure")
	}
	if diags.Errors()[0].Code != diagnostic.CodeContainerNameCollision {
		t.Fatalf("expected 2003, got %s", diags.FormatAll())
	}
}

func TestOutsideSourceRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "src")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(parent, "outside.ts"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "main.ts"), []byte("import ../outside.ts"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := newTestResolver(root)
	diags := diagnostic.NewCollector()
	if _, ok := r.BuildGraph(filepath.Join(root, "main.ts"), diags); ok {
		t.Fatal("expected failure")
	}
	if diags.Errors()[0].Code != diagnostic.CodeOutsideSourceRoot {
		t.Fatalf("expected 1002, got %s", diags.FormatAll())
	}
}
