package bindings

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/tsoniclang/tsonic/internal/diagnostic"
)

// manifestFile is the on-disk name of a binding manifest.
const manifestFile = "bindings.json"

// v2Manifest is the hierarchical schema: namespaces → types → members.
type v2Manifest struct {
	SchemaVersion int           `json:"schemaVersion"`
	Namespaces    []v2Namespace `json:"namespaces"`
}

type v2Namespace struct {
	// Alias is the TS-visible namespace path (e.g. "System.Collections").
	Alias string `json:"alias"`
	// Clr is the CLR namespace. Defaults to Alias when empty.
	Clr      string   `json:"clr,omitempty"`
	Assembly string   `json:"assembly"`
	Types    []v2Type `json:"types"`
}

type v2Type struct {
	// Alias is the TS type alias, possibly camelCased by tsbindgen.
	Alias string `json:"alias"`
	// Clr is the CLR qualified type name.
	Clr      string     `json:"clr"`
	Assembly string     `json:"assembly,omitempty"`
	Members  []v2Member `json:"members,omitempty"`
}

type v2Member struct {
	Alias string `json:"alias"`
	Clr   string `json:"clr"`
	// Kind is "method", "property", "constructor" or "field".
	Kind string `json:"kind"`
}

// v1Manifest is the legacy flat schema mapping bare specifiers to a CLR
// container type: {"bindings": {"fs": {"assembly": "...", "type": "..."}}}.
type v1Manifest struct {
	Bindings map[string]v1Binding `json:"bindings"`
}

type v1Binding struct {
	Assembly string `json:"assembly"`
	Type     string `json:"type"`
}

// probe distinguishes the two schema versions before a full decode.
// Raw members keep the probe schema-agnostic.
type probe struct {
	SchemaVersion int            `json:"schemaVersion"`
	Namespaces    jsontext.Value `json:"namespaces"`
	Bindings      jsontext.Value `json:"bindings"`
}

// LoadDir scans a type-root directory recursively for bindings.json files
// and merges them into a registry. Load problems are reported as 9xxx
// diagnostics on the collector; the returned registry contains everything
// that loaded cleanly.
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
	// Stable merge order regardless of WalkDir platform quirks.
	sort.Strings(paths)
	for _, p := range paths {
		r.loadFile(p, diags)
	}
	return r
}

// loadFile parses a single bindings.json, accepting both schema versions.
func (r *Registry) loadFile(path string, diags *diagnostic.Collector) {
	data, err := os.ReadFile(path)
	if err != nil {
		diags.Error(diagnostic.CodeManifestRead, path, 0, 0,
			fmt.Sprintf("failed to read manifest: %v", err))
		return
	}

	var p probe
	if err := json.Unmarshal(data, &p); err != nil {
		diags.Error(diagnostic.CodeManifestSchema, path, 0, 0,
			fmt.Sprintf("malformed manifest: %v", err))
		return
	}

	switch {
	case p.SchemaVersion >= 2 || len(p.Namespaces) > 0:
		var m v2Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			diags.Error(diagnostic.CodeManifestSchema, path, 0, 0,
				fmt.Sprintf("malformed v2 manifest: %v", err))
			return
		}
		r.mergeV2(path, &m, diags)
	case len(p.Bindings) > 0:
		var m v1Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			diags.Error(diagnostic.CodeManifestSchema, path, 0, 0,
				fmt.Sprintf("malformed v1 manifest: %v", err))
			return
		}
		r.mergeV1(path, &m, diags)
	default:
		diags.Error(diagnostic.CodeManifestSchema, path, 0, 0,
			`manifest has neither "namespaces" (v2) nor "bindings" (v1)`)
	}
}

func (r *Registry) mergeV2(path string, m *v2Manifest, diags *diagnostic.Collector) {
	for _, ns := range m.Namespaces {
		clrNS := ns.Clr
		if clrNS == "" {
			clrNS = ns.Alias
		}
		err := r.addNamespace(Entry{
			AliasPath: ns.Alias,
			Assembly:  ns.Assembly,
			Kind:      KindNamespace,
		})
		if err != nil {
			diags.Error(diagnostic.CodeDuplicateBinding, path, 0, 0, err.Error())
			continue
		}
		for _, t := range ns.Types {
			assembly := t.Assembly
			if assembly == "" {
				assembly = ns.Assembly
			}
			typeAlias := joinAlias(ns.Alias, t.Alias)
			err := r.addType(Entry{
				AliasPath:     typeAlias,
				Assembly:      assembly,
				QualifiedType: t.Clr,
				Kind:          KindType,
			})
			if err != nil {
				diags.Error(diagnostic.CodeDuplicateBinding, path, 0, 0, err.Error())
				continue
			}
			for _, mem := range m.membersOf(t) {
				kind := MemberKind(mem.Kind)
				switch kind {
				case KindMethod, KindProperty, KindConstructor, KindField:
				default:
					diags.Error(diagnostic.CodeManifestSchema, path, 0, 0,
						fmt.Sprintf("member %q on %q has invalid kind %q", mem.Alias, typeAlias, mem.Kind))
					continue
				}
				err := r.addMember(typeAlias, mem.Alias, Entry{
					AliasPath:     joinAlias(typeAlias, mem.Alias),
					Assembly:      assembly,
					QualifiedType: t.Clr,
					Member:        mem.Clr,
					Kind:          kind,
				})
				if err != nil {
					diags.Error(diagnostic.CodeDuplicateBinding, path, 0, 0, err.Error())
				}
			}
		}
	}
}

// membersOf exists so schema evolution (per-type member lists today,
// shared member groups tomorrow) stays local to the decode layer.
func (m *v2Manifest) membersOf(t v2Type) []v2Member {
	return t.Members
}

func (r *Registry) mergeV1(path string, m *v1Manifest, diags *diagnostic.Collector) {
	// Deterministic merge order for duplicate detection.
	specifiers := make([]string, 0, len(m.Bindings))
	for s := range m.Bindings {
		specifiers = append(specifiers, s)
	}
	sort.Strings(specifiers)
	for _, s := range specifiers {
		b := m.Bindings[s]
		if b.Assembly == "" || b.Type == "" {
			diags.Error(diagnostic.CodeManifestSchema, path, 0, 0,
				fmt.Sprintf("bare binding %q must name both assembly and type", s))
			continue
		}
		err := r.addBare(s, Entry{
			AliasPath:     s,
			Assembly:      b.Assembly,
			QualifiedType: b.Type,
			Kind:          KindType,
		})
		if err != nil {
			diags.Error(diagnostic.CodeDuplicateBinding, path, 0, 0, err.Error())
		}
	}
}
