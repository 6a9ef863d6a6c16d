package clrmeta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tsoniclang/tsonic/internal/diagnostic"
)

const fixture = `{
	"types": [
		{
			"qualified": "System.Collections.Generic.Dictionary` + "`" + `2",
			"assembly": "System.Runtime",
			"kind": "class",
			"members": {
				"TryGetValue(TKey,TValue)": {
					"name": "TryGetValue",
					"kind": "method",
					"returnType": "System.Boolean",
					"paramModifiers": ["none", "out"]
				}
			}
		},
		{
			"qualified": "System.String",
			"assembly": "System.Runtime",
			"kind": "class",
			"isSealed": true,
			"members": {
				"ToUpperInvariant()": {"name": "ToUpperInvariant", "kind": "method", "returnType": "System.String"}
			}
		},
		{
			"qualified": "System.IO.Stream",
			"assembly": "System.Runtime",
			"kind": "class",
			"members": {
				"Read(System.Byte[],System.Int32,System.Int32)": {
					"name": "Read", "kind": "method", "isVirtual": true, "returnType": "System.Int32"
				}
			}
		}
	]
}`

func loadFixture(t *testing.T) *Registry {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}
	diags := diagnostic.NewCollector()
	r := LoadDir(dir, diags)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diags.FormatAll())
	}
	return r
}

func TestTypeMetadata(t *testing.T) {
	r := loadFixture(t)
	if !r.IsSealedType("System.String") {
		t.Fatal("System.String should be sealed")
	}
	if r.IsSealedType("System.IO.Stream") {
		t.Fatal("Stream should not be sealed")
	}
	if r.IsSealedType("No.Such.Type") {
		t.Fatal("unknown type should not report sealed")
	}
}

func TestMemberMetadata(t *testing.T) {
	r := loadFixture(t)

	m, ok := r.MemberMetadata("System.Collections.Generic.Dictionary`2", "TryGetValue(TKey,TValue)")
	if !ok {
		t.Fatal("expected TryGetValue metadata")
	}
	if len(m.ParamModifiers) != 2 || m.ParamModifiers[1] != ModOut {
		t.Fatalf("expected out modifier on second parameter, got %v", m.ParamModifiers)
	}

	if !r.IsVirtual("System.IO.Stream", "Read(System.Byte[],System.Int32,System.Int32)") {
		t.Fatal("Stream.Read should be virtual")
	}
	if r.IsVirtual("System.String", "ToUpperInvariant()") {
		t.Fatal("ToUpperInvariant should not be virtual")
	}
}

func TestNormalizeSignature(t *testing.T) {
	cases := []struct {
		name   string
		params []string
		want   string
	}{
		{"Main", nil, "Main()"},
		{"TryGetValue", []string{"TKey", "TValue"}, "TryGetValue(TKey,TValue)"},
		{"Read", []string{"System.Byte[]", "System.Int32 ", " System.Int32"}, "Read(System.Byte[],System.Int32,System.Int32)"},
	}
	for _, c := range cases {
		if got := NormalizeSignature(c.name, c.params); got != c.want {
			t.Fatalf("NormalizeSignature(%q, %v) = %q, want %q", c.name, c.params, got, c.want)
		}
	}
}

func TestCrossCheckReportsMissingTargets(t *testing.T) {
	r := loadFixture(t)
	diags := diagnostic.NewCollector()
	r.CrossCheck(
		map[string]string{
			"System.String": "System.String",
			"fs":            "Tsonic.Node.FileSystem",
		},
		map[string][]string{
			"System.String": {"NoSuchMember"},
		},
		diags,
	)
	errs := diags.Errors()
	if len(errs) != 2 {
		t.Fatalf("expected 2 cross-check errors, got %d: %s", len(errs), diags.FormatAll())
	}
	for _, d := range errs {
		if d.Code != diagnostic.CodeBindingNoMeta {
			t.Fatalf("expected code 9004, got %d", d.Code)
		}
	}
}

func TestConflictingTypeMetadata(t *testing.T) {
	dir := t.TempDir()
	a := `{"types": [{"qualified": "N.T", "assembly": "A", "kind": "class"}]}`
	b := `{"types": [{"qualified": "N.T", "assembly": "A", "kind": "struct"}]}`
	if err := os.MkdirAll(filepath.Join(dir, "a"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "b"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a", "metadata.json"), []byte(a), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b", "metadata.json"), []byte(b), 0o644); err != nil {
		t.Fatal(err)
	}
	diags := diagnostic.NewCollector()
	LoadDir(dir, diags)
	if !diags.HasErrors() {
		t.Fatal("expected conflict diagnostic")
	}
}
