package bindings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tsoniclang/tsonic/internal/diagnostic"
)

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

const v2Fixture = `{
	"schemaVersion": 2,
	"namespaces": [
		{
			"alias": "System",
			"assembly": "System.Runtime",
			"types": [
				{
					"alias": "Console",
					"clr": "System.Console",
					"members": [
						{"alias": "writeLine", "clr": "WriteLine", "kind": "method"},
						{"alias": "out", "clr": "Out", "kind": "property"}
					]
				}
			]
		}
	]
}`

func TestLoadV2Hierarchical(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "bindings.json", v2Fixture)

	diags := diagnostic.NewCollector()
	r := LoadDir(dir, diags)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diags.FormatAll())
	}

	ns, ok := r.LookupNamespace("System")
	if !ok || ns.Assembly != "System.Runtime" {
		t.Fatalf("namespace lookup failed: %+v ok=%v", ns, ok)
	}

	typ, ok := r.LookupType("System.Console")
	if !ok || typ.QualifiedType != "System.Console" {
		t.Fatalf("type lookup failed: %+v ok=%v", typ, ok)
	}

	m, ok := r.LookupMember("System.Console", "writeLine")
	if !ok || m.Member != "WriteLine" || m.Kind != KindMethod {
		t.Fatalf("member lookup failed: %+v ok=%v", m, ok)
	}

	if _, ok := r.LookupMember("System.Console", "readLine"); ok {
		t.Fatal("unexpected member binding")
	}
}

func TestLoadV1Flat(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "bindings.json",
		`{"bindings": {"fs": {"assembly": "Tsonic.Node", "type": "Tsonic.Node.FileSystem"}}}`)

	diags := diagnostic.NewCollector()
	r := LoadDir(dir, diags)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diags.FormatAll())
	}

	e, ok := r.LookupBare("fs")
	if !ok || e.QualifiedType != "Tsonic.Node.FileSystem" {
		t.Fatalf("bare lookup failed: %+v ok=%v", e, ok)
	}
}

func TestDuplicateBindingIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, filepath.Join(dir, "a"), "bindings.json",
		`{"bindings": {"fs": {"assembly": "A", "type": "A.Fs"}}}`)
	writeManifest(t, filepath.Join(dir, "b"), "bindings.json",
		`{"bindings": {"fs": {"assembly": "B", "type": "B.Fs"}}}`)

	diags := diagnostic.NewCollector()
	LoadDir(dir, diags)
	if !diags.HasErrors() {
		t.Fatal("expected duplicate-binding diagnostic")
	}
	if diags.Errors()[0].Code != diagnostic.CodeDuplicateBinding {
		t.Fatalf("expected code 9003, got %d", diags.Errors()[0].Code)
	}
}

func TestMalformedManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "bindings.json", `{"neither": true}`)

	diags := diagnostic.NewCollector()
	LoadDir(dir, diags)
	if !diags.HasErrors() {
		t.Fatal("expected schema diagnostic")
	}
	if diags.Errors()[0].Code != diagnostic.CodeManifestSchema {
		t.Fatalf("expected code 9002, got %d", diags.Errors()[0].Code)
	}
}

func TestInvalidMemberKind(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "bindings.json", `{
		"schemaVersion": 2,
		"namespaces": [{"alias": "N", "assembly": "A", "types": [
			{"alias": "T", "clr": "N.T", "members": [{"alias": "x", "clr": "X", "kind": "event"}]}
		]}]
	}`)

	diags := diagnostic.NewCollector()
	r := LoadDir(dir, diags)
	if !diags.HasErrors() {
		t.Fatal("expected schema diagnostic for invalid member kind")
	}
	if _, ok := r.LookupMember("N.T", "x"); ok {
		t.Fatal("invalid member must not be registered")
	}
}
