package emit

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

var update = flag.Bool("update", false, "rewrite golden files")

func goldenPath(name string) string {
	return filepath.Join("..", "..", "testdata", "golden", name)
}

// TestGoldenHelloDotnet compares the full emitted file set against the
// committed txtar archive, byte for byte.
func TestGoldenHelloDotnet(t *testing.T) {
	out, _ := emitOne(t, helloModule(), ModeDotnet)

	if *update {
		archive := &txtar.Archive{
			Comment: []byte("Golden output for the hello entry-point module in dotnet mode.\n"),
		}
		for _, name := range sortedFileNames(out) {
			archive.Files = append(archive.Files, txtar.File{
				Name: name,
				Data: []byte(out.Files[name]),
			})
		}
		if err := os.WriteFile(goldenPath("hello_dotnet.txtar"), txtar.Format(archive), 0o644); err != nil {
			t.Fatal(err)
		}
		return
	}

	data, err := os.ReadFile(goldenPath("hello_dotnet.txtar"))
	if err != nil {
		t.Fatalf("golden file missing (run with -update): %v", err)
	}
	archive := txtar.Parse(data)
	for _, f := range archive.Files {
		got, ok := out.Files[f.Name]
		if !ok {
			t.Fatalf("golden file %s not emitted; emitted: %v", f.Name, fileNames(out))
		}
		if got != string(f.Data) {
			t.Fatalf("output for %s differs from golden:\n--- golden ---\n%s\n--- got ---\n%s", f.Name, f.Data, got)
		}
	}
}

func sortedFileNames(out *Output) []string {
	names := fileNames(out)
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	return names
}
