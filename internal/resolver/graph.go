package resolver

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tsoniclang/tsonic/internal/diagnostic"
)

// Graph is the resolved module graph. Nodes are local modules keyed by
// absolute path; edges are directed local-import relationships. Non-local
// resolutions hang off each node's Resolved list but never become edges.
type Graph struct {
	// EntryPoint is the absolute path of the entry module.
	EntryPoint string
	// Modules maps absolute path → resolved local module.
	Modules map[string]*ResolvedModule
	// Shapes maps absolute path → the module's declaration summary.
	Shapes map[string]*ModuleShape
	// Resolved maps absolute path → every import resolution of that
	// module, in source order.
	Resolved map[string][]*ResolvedModule
	// Adjacency and reverse adjacency over local modules only.
	Imports    map[string][]string
	ImportedBy map[string][]string
}

// BuildGraph constructs the module graph by depth-first traversal from the
// entry point, visiting local imports only. A node revisited while still
// on the DFS stack is a cycle (1006), named in full.
func (r *Resolver) BuildGraph(entryPoint string, diags *diagnostic.Collector) (*Graph, bool) {
	entry, err := realpath(entryPoint)
	if err != nil {
		diags.Error(diagnostic.CodeFileNotFound, entryPoint, 0, 0,
			fmt.Sprintf("entry point does not exist: %v", err))
		return nil, false
	}

	g := &Graph{
		EntryPoint: entry,
		Modules:    make(map[string]*ResolvedModule),
		Shapes:     make(map[string]*ModuleShape),
		Resolved:   make(map[string][]*ResolvedModule),
		Imports:    make(map[string][]string),
		ImportedBy: make(map[string][]string),
	}

	entryRel, relErr := relToRoot(r.SourceRoot, entry)
	if relErr != nil {
		diags.Error(diagnostic.CodeOutsideSourceRoot, entry, 0, 0,
			"entry point must live under the source root")
		return nil, false
	}
	ns, container := Derive(r.RootNamespace, entryRel)
	g.Modules[entry] = &ResolvedModule{
		Specifier:      entryPoint,
		Kind:           KindLocalSource,
		Path:           entry,
		Namespace:      ns,
		ContainerClass: container,
	}

	onStack := map[string]bool{}
	var stack []string
	if !r.visit(g, entry, onStack, &stack, diags) {
		return nil, false
	}

	r.finishShapes(g, diags)
	if diags.HasErrors() {
		return nil, false
	}
	return g, true
}

func (r *Resolver) visit(g *Graph, path string, onStack map[string]bool, stack *[]string, diags *diagnostic.Collector) bool {
	if onStack[path] {
		diags.Error(diagnostic.CodeCircularImport, path, 0, 0, cycleMessage(*stack, path))
		return false
	}
	if _, seen := g.Shapes[path]; seen {
		return true
	}

	shape, err := r.Shape(path)
	if err != nil {
		diags.Error(diagnostic.CodeFileNotFound, path, 0, 0,
			fmt.Sprintf("cannot read module: %v", err))
		return false
	}
	g.Shapes[path] = shape

	onStack[path] = true
	*stack = append(*stack, path)
	defer func() {
		delete(onStack, path)
		*stack = (*stack)[:len(*stack)-1]
	}()

	for _, site := range shape.Imports {
		resolved, ok := r.ResolveImport(path, site.Specifier, site, diags)
		if !ok {
			return false
		}
		g.Resolved[path] = append(g.Resolved[path], resolved)
		if resolved.Kind != KindLocalSource {
			continue
		}
		if _, known := g.Modules[resolved.Path]; !known {
			g.Modules[resolved.Path] = resolved
		}
		g.Imports[path] = append(g.Imports[path], resolved.Path)
		g.ImportedBy[resolved.Path] = append(g.ImportedBy[resolved.Path], path)
		if !r.visit(g, resolved.Path, onStack, stack, diags) {
			return false
		}
	}
	return true
}

// finishShapes fills in the static-container decision and checks the
// container/export name collision once every module's shape is known.
func (r *Resolver) finishShapes(g *Graph, diags *diagnostic.Collector) {
	paths := make([]string, 0, len(g.Modules))
	for p := range g.Modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		m := g.Modules[p]
		shape := g.Shapes[p]
		if shape == nil {
			continue
		}
		hasSameNameClass := false
		for _, c := range shape.ClassNames {
			if c == m.ContainerClass {
				hasSameNameClass = true
				break
			}
		}
		m.IsStaticContainer = shape.HasFuncOrValueExport && !hasSameNameClass

		for _, name := range shape.ExportedNames {
			if name == m.ContainerClass && !hasSameNameClass {
				diags.Error(diagnostic.CodeContainerNameCollision, p, 0, 0,
					fmt.Sprintf("exported declaration %q collides with the module's container class name", name))
			}
		}
	}
}

// cycleMessage renders a cycle as "circular import: A -> B -> C -> A" using
// paths trimmed to their interesting suffix.
func cycleMessage(stack []string, repeat string) string {
	start := 0
	for i, p := range stack {
		if p == repeat {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, stack[start:]...), repeat)
	for i, p := range cycle {
		cycle[i] = shortPath(p)
	}
	return "circular import: " + strings.Join(cycle, " -> ")
}

func shortPath(p string) string {
	parts := strings.Split(p, "/")
	if len(parts) <= 2 {
		return p
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

func relToRoot(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%q is outside %q", path, root)
	}
	return rel, nil
}
