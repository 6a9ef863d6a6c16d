// Package resolver classifies import specifiers, builds the module graph
// and derives the C# namespace and container class of every local module.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tsoniclang/tsonic/internal/bindings"
	"github.com/tsoniclang/tsonic/internal/diagnostic"
)

// tsExtension is the project's TypeScript extension, fixed at project
// creation.
const tsExtension = ".ts"

// Kind classifies a resolved import specifier.
type Kind string

const (
	KindLocalSource     Kind = "local_source"
	KindDotnetNamespace Kind = "dotnet_namespace"
	KindBoundExternal   Kind = "bound_external"
)

// ResolvedModule is one resolved import target.
type ResolvedModule struct {
	// Specifier is the import specifier exactly as written.
	Specifier string
	Kind      Kind
	// Path is the absolute resolved source path for local modules; for
	// the other kinds it holds the namespace or bound qualified name.
	Path string

	// Local-module attributes.
	Namespace         string
	ContainerClass    string
	IsStaticContainer bool
}

// ImportSite is one import declaration discovered in a module, with its
// source location for diagnostics.
type ImportSite struct {
	Specifier string
	Line      int
	Column    int
}

// ModuleShape summarises the top-level declarations of a local module, as
// far as the resolver needs them: whether the module exports functions or
// values, and its class names.
type ModuleShape struct {
	Imports []ImportSite
	// HasFuncOrValueExport is true when any top-level function or value
	// is exported.
	HasFuncOrValueExport bool
	// ClassNames are the top-level class declaration names.
	ClassNames []string
	// ExportedNames are all top-level exported declaration names.
	ExportedNames []string
}

// ShapeFunc supplies the shape of a local module by absolute path. The
// production implementation reads the front-end AST; tests substitute a
// fixture.
type ShapeFunc func(absPath string) (*ModuleShape, error)

// Resolver owns the module graph.
type Resolver struct {
	SourceRoot    string // absolute
	RootNamespace string
	Bindings      *bindings.Registry
	Shape         ShapeFunc
}

// dotnetNamespaceRe matches specifiers classified as .NET namespaces:
// leading uppercase ASCII letter, then letters, digits and dots.
var dotnetNamespaceRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9.]*$`)

// Classify applies the specifier classification rules in order; the first
// match wins. A specifier matching no rule reports 1004 at the caller.
func (r *Resolver) Classify(specifier string) (Kind, bool) {
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") || strings.HasPrefix(specifier, "/") {
		return KindLocalSource, true
	}
	if dotnetNamespaceRe.MatchString(specifier) && !strings.Contains(specifier, "..") {
		return KindDotnetNamespace, true
	}
	if r.Bindings != nil {
		if _, ok := r.Bindings.LookupBare(specifier); ok {
			return KindBoundExternal, true
		}
	}
	return "", false
}

// ResolveImport resolves one specifier appearing in containingFile. Local
// failures are fail-fast: downstream phases would emit noise on a
// partially resolved graph.
func (r *Resolver) ResolveImport(containingFile, specifier string, site ImportSite, diags *diagnostic.Collector) (*ResolvedModule, bool) {
	kind, ok := r.Classify(specifier)
	if !ok {
		diags.ErrorWithHint(diagnostic.CodeUnknownModule, containingFile, site.Line, site.Column,
			fmt.Sprintf("cannot resolve module %q", specifier),
			"local imports start with ./ or ../, .NET namespaces start with an uppercase letter, and everything else must appear in a bindings.json")
		return nil, false
	}

	switch kind {
	case KindLocalSource:
		return r.resolveLocal(containingFile, specifier, site, diags)
	case KindDotnetNamespace:
		return &ResolvedModule{Specifier: specifier, Kind: KindDotnetNamespace, Path: specifier}, true
	case KindBoundExternal:
		e, _ := r.Bindings.LookupBare(specifier)
		return &ResolvedModule{Specifier: specifier, Kind: KindBoundExternal, Path: e.QualifiedType}, true
	}
	return nil, false
}

func (r *Resolver) resolveLocal(containingFile, specifier string, site ImportSite, diags *diagnostic.Collector) (*ResolvedModule, bool) {
	if !strings.HasSuffix(specifier, tsExtension) {
		diags.ErrorWithHint(diagnostic.CodeMissingExtension, containingFile, site.Line, site.Column,
			fmt.Sprintf("import %q is missing the %s extension", specifier, tsExtension),
			fmt.Sprintf("write %q", specifier+tsExtension))
		return nil, false
	}

	joined := filepath.Join(filepath.Dir(containingFile), specifier)
	resolved, err := realpath(joined)
	if err != nil {
		diags.Error(diagnostic.CodeFileNotFound, containingFile, site.Line, site.Column,
			fmt.Sprintf("imported module %q does not exist (%v)", specifier, err))
		return nil, false
	}

	rel, err := filepath.Rel(r.SourceRoot, resolved)
	if err != nil || strings.HasPrefix(rel, "..") {
		diags.Error(diagnostic.CodeOutsideSourceRoot, containingFile, site.Line, site.Column,
			fmt.Sprintf("imported module %q resolves outside the source root", specifier))
		return nil, false
	}

	if mismatch, actual := caseMismatch(r.SourceRoot, rel); mismatch {
		diags.ErrorWithHint(diagnostic.CodeCaseMismatch, containingFile, site.Line, site.Column,
			fmt.Sprintf("import %q differs from the on-disk path in case", specifier),
			fmt.Sprintf("the file on disk is %q", actual))
		return nil, false
	}

	ns, container := Derive(r.RootNamespace, rel)
	return &ResolvedModule{
		Specifier:      specifier,
		Kind:           KindLocalSource,
		Path:           resolved,
		Namespace:      ns,
		ContainerClass: container,
	}, true
}

// realpath canonicalises a path, resolving symlinks where the platform
// allows and falling back to lexical cleaning.
func realpath(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return filepath.Clean(path), nil
	}
	return resolved, nil
}

// caseMismatch compares each component of rel against the directory
// listing, so a case-insensitive filesystem still reports the exact
// on-disk spelling.
func caseMismatch(root, rel string) (bool, string) {
	dir := root
	var actualRel []string
	for _, component := range strings.Split(filepath.ToSlash(rel), "/") {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return false, ""
		}
		found := ""
		for _, e := range entries {
			if e.Name() == component {
				found = component
				break
			}
			if strings.EqualFold(e.Name(), component) {
				found = e.Name()
			}
		}
		if found == "" {
			return false, ""
		}
		actualRel = append(actualRel, found)
		if found != component {
			return true, filepath.Join(append([]string{root}, actualRel...)...)
		}
		dir = filepath.Join(dir, found)
	}
	return false, ""
}

// Derive computes the namespace and container-class name of a local module
// from its path relative to the source root. Hyphens introduced by path
// segments are dropped; case is preserved exactly.
func Derive(rootNamespace, rel string) (namespace, containerClass string) {
	rel = filepath.ToSlash(rel)
	dir, base := "", rel
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		dir, base = rel[:i], rel[i+1:]
	}

	namespace = rootNamespace
	if dir != "" {
		for _, seg := range strings.Split(dir, "/") {
			namespace += "." + strings.ReplaceAll(seg, "-", "")
		}
	}

	containerClass = strings.TrimSuffix(base, tsExtension)
	containerClass = strings.ReplaceAll(containerClass, "-", "")
	return namespace, containerClass
}
