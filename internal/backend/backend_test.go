package backend

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"MyApp/App.cs":        "// app",
		"MyApp/models/User.cs": "// user",
	}
	if err := WriteOutputs(dir, files, "App.csproj", "<Project />"); err != nil {
		t.Fatal(err)
	}

	for rel, want := range files {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != want {
			t.Fatalf("content mismatch for %s", rel)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "App.csproj"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<Project />" {
		t.Fatal("project manifest mismatch")
	}
}
