package clrmeta

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-json-experiment/json"

	"github.com/tsoniclang/tsonic/internal/diagnostic"
)

// manifestFile is the on-disk name of a metadata manifest.
const manifestFile = "metadata.json"

// manifest is the metadata.json schema: a list of CLR types.
type manifest struct {
	SchemaVersion int        `json:"schemaVersion,omitempty"`
	Types         []TypeMeta `json:"types"`
}

// LoadDir scans a type-root directory recursively for metadata.json files
// and merges them into a registry. Problems surface as 9xxx diagnostics.
func LoadDir(root string, diags *diagnostic.Collector) *Registry {
	r := NewRegistry()
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == manifestFile {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		diags.Error(diagnostic.CodeManifestRead, root, 0, 0,
			fmt.Sprintf("failed to scan type root: %v", err))
		return r
	}
	sort.Strings(paths)
	for _, p := range paths {
		r.loadFile(p, diags)
	}
	return r
}

func (r *Registry) loadFile(path string, diags *diagnostic.Collector) {
	data, err := os.ReadFile(path)
	if err != nil {
		diags.Error(diagnostic.CodeManifestRead, path, 0, 0,
			fmt.Sprintf("failed to read manifest: %v", err))
		return
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		diags.Error(diagnostic.CodeManifestSchema, path, 0, 0,
			fmt.Sprintf("malformed manifest: %v", err))
		return
	}

	for i := range m.Types {
		t := m.Types[i]
		if t.Qualified == "" {
			diags.Error(diagnostic.CodeManifestSchema, path, 0, 0,
				"type entry without qualified name")
			continue
		}
		switch t.Kind {
		case TypeClass, TypeInterface, TypeStruct, TypeEnum, TypeDelegate:
		default:
			diags.Error(diagnostic.CodeManifestSchema, path, 0, 0,
				fmt.Sprintf("type %q has invalid kind %q", t.Qualified, t.Kind))
			continue
		}
		if prev, ok := r.types[t.Qualified]; ok {
			// Identical re-declarations across manifests are tolerated
			// (shared dependencies ship overlapping metadata); any
			// difference is a conflict.
			if prev.Assembly != t.Assembly || prev.Kind != t.Kind || prev.IsSealed != t.IsSealed {
				diags.Error(diagnostic.CodeManifestSchema, path, 0, 0,
					fmt.Sprintf("conflicting metadata for type %q", t.Qualified))
			}
			continue
		}
		copied := t
		r.types[t.Qualified] = &copied
	}
}

// CrossCheck verifies that every binding target exists in metadata.
// boundTypes maps each binding alias to its qualified CLR type and
// boundMembers maps it to the CLR member names bound under it; missing
// targets are reported as 9004.
func (r *Registry) CrossCheck(boundTypes map[string]string, boundMembers map[string][]string, diags *diagnostic.Collector) {
	types := make([]string, 0, len(boundTypes))
	for alias := range boundTypes {
		types = append(types, alias)
	}
	sort.Strings(types)
	for _, alias := range types {
		qualified := boundTypes[alias]
		if !r.HasType(qualified) {
			diags.Error(diagnostic.CodeBindingNoMeta, "", 0, 0,
				fmt.Sprintf("binding %q points at CLR type %q absent from metadata", alias, qualified))
			continue
		}
		for _, member := range boundMembers[alias] {
			if !r.HasMemberNamed(qualified, member) {
				diags.Error(diagnostic.CodeBindingNoMeta, "", 0, 0,
					fmt.Sprintf("binding on %q names CLR member %q absent from metadata", qualified, member))
			}
		}
	}
}
