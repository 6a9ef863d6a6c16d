package diagnostic

import (
	"strings"
	"testing"
)

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Code:     CodeMissingExtension,
		Severity: SeverityError,
		File:     "src/A.ts",
		Line:     3,
		Column:   10,
		Message:  `import "./U" is missing the .ts extension`,
		Hint:     `write "./U.ts"`,
	}
	s := d.String()
	if !strings.HasPrefix(s, "src/A.ts:3:10 - error TSN1001:") {
		t.Fatalf("unexpected prefix: %q", s)
	}
	if !strings.Contains(s, "hint:") {
		t.Fatalf("expected hint in output: %q", s)
	}
}

func TestDiagnosticStringNoLocation(t *testing.T) {
	d := Diagnostic{Code: CodeManifestRead, Severity: SeverityError, Message: "cannot read bindings.json"}
	if got := d.String(); got != "error TSN9001: cannot read bindings.json" {
		t.Fatalf("unexpected format: %q", got)
	}
}

func TestCollectorHasErrors(t *testing.T) {
	c := NewCollector()
	if c.HasErrors() {
		t.Fatal("fresh collector should have no errors")
	}
	c.Warn(CodeEmptyArrayNoAnnotation, "a.ts", 1, 1, "warn")
	if c.HasErrors() {
		t.Fatal("warnings must not count as errors")
	}
	c.Error(CodeExportStar, "a.ts", 2, 1, "export * is not supported")
	if !c.HasErrors() || c.ErrorCount() != 1 {
		t.Fatalf("expected 1 error, got %d", c.ErrorCount())
	}
}

func TestCollectorSortedIsStable(t *testing.T) {
	c := NewCollector()
	c.Error(CodeCircularImport, "b.ts", 1, 1, "cycle")
	c.Error(CodeMissingExtension, "a.ts", 5, 1, "ext")
	c.Error(CodeCaseMismatch, "a.ts", 2, 1, "case")
	got := c.Sorted()
	if got[0].Code != CodeCaseMismatch || got[1].Code != CodeMissingExtension || got[2].Code != CodeCircularImport {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestEveryCodeHasAName(t *testing.T) {
	for _, c := range KnownCodes() {
		if CodeName(c) == "" {
			t.Fatalf("code %d has no name", c)
		}
	}
	if CodeName(Code(1234)) != "" {
		t.Fatal("unknown code should map to empty name")
	}
}

func TestCodeGroups(t *testing.T) {
	groups := map[Code]int{
		CodeMissingExtension:       1,
		CodeContainerNameCollision: 2,
		CodeDefaultExport:          3,
		CodeUnlowerableExpression:  4,
		CodeAnalysisCycle:          5,
		CodeResidualIntrinsic:      7,
		CodeDuplicateBinding:       9,
	}
	for c, thousands := range groups {
		if int(c)/1000 != thousands {
			t.Fatalf("code %d not in %dxxx group", c, thousands)
		}
	}
}
