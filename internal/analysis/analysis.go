// Package analysis computes the deterministic build order, the symbol
// table, and the deduplicated specialisation-request set over the IR
// bundle. All results are immutable after construction.
package analysis

import (
	"sort"

	"github.com/tsoniclang/tsonic/internal/diagnostic"
	"github.com/tsoniclang/tsonic/internal/ir"
)

// Symbol is one exported symbol in the global index.
type Symbol struct {
	Name   string
	Kind   string
	Module string // file path of the owning module
	// Container is the owning container-class name.
	Container string
}

// SymbolTable resolves cross-module references during emission without a
// second pass through the type checker.
type SymbolTable struct {
	// byName maps an exported name to its owning modules, in build order.
	byName map[string][]Symbol
	// byModule maps a module path to its exports in declaration order.
	byModule map[string][]Symbol
}

// Lookup returns every module exporting name.
func (st *SymbolTable) Lookup(name string) []Symbol {
	return st.byName[name]
}

// Exports returns a module's exported symbols in declaration order.
func (st *SymbolTable) Exports(module string) []Symbol {
	return st.byModule[module]
}

// Result is the phase-5 output.
type Result struct {
	// BuildOrder lists module file paths, dependencies first.
	BuildOrder []string
	Symbols    *SymbolTable
	// Specs is the deduplicated specialisation-request list, ordered by
	// canonical key.
	Specs []ir.SpecRequest
}

// Analyze builds the analysis result. imports maps module path → imported
// local module paths. The cycle check is redundant with validation but
// cheap; a surviving back-edge is a hard 5001.
func Analyze(modules map[string]*ir.Module, imports map[string][]string, specs []ir.SpecRequest, diags *diagnostic.Collector) (*Result, bool) {
	order, ok := buildOrder(modules, imports, diags)
	if !ok {
		return nil, false
	}

	st := &SymbolTable{
		byName:   make(map[string][]Symbol),
		byModule: make(map[string][]Symbol),
	}
	for _, path := range order {
		m := modules[path]
		if m == nil {
			continue
		}
		for _, e := range m.Exports {
			sym := Symbol{Name: e.Name, Kind: e.Kind, Module: path, Container: m.ContainerClass}
			st.byName[e.Name] = append(st.byName[e.Name], sym)
			st.byModule[path] = append(st.byModule[path], sym)
		}
	}

	return &Result{
		BuildOrder: order,
		Symbols:    st,
		Specs:      dedupeSpecs(specs),
	}, true
}

// buildOrder topologically sorts the module graph with Kahn's algorithm,
// breaking ties lexicographically so the order is a pure function of the
// graph.
func buildOrder(modules map[string]*ir.Module, imports map[string][]string, diags *diagnostic.Collector) ([]string, bool) {
	indegree := make(map[string]int, len(modules))
	dependents := make(map[string][]string, len(modules))
	for path := range modules {
		indegree[path] = 0
	}
	for path, deps := range imports {
		for _, dep := range deps {
			if _, ok := modules[dep]; !ok {
				continue
			}
			indegree[path]++
			dependents[dep] = append(dependents[dep], path)
		}
	}

	var ready []string
	for path, d := range indegree {
		if d == 0 {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		deps := append([]string{}, dependents[next]...)
		sort.Strings(deps)
		for _, d := range deps {
			indegree[d]--
			if indegree[d] == 0 {
				ready = insertSorted(ready, d)
			}
		}
	}

	if len(order) != len(modules) {
		var stuck []string
		for path, d := range indegree {
			if d > 0 {
				stuck = append(stuck, path)
			}
		}
		sort.Strings(stuck)
		for _, path := range stuck {
			diags.Error(diagnostic.CodeAnalysisCycle, path, 0, 0,
				"module participates in an import cycle that survived validation")
		}
		return nil, false
	}
	return order, true
}

func insertSorted(xs []string, x string) []string {
	i := sort.SearchStrings(xs, x)
	xs = append(xs, "")
	copy(xs[i+1:], xs[i:])
	xs[i] = x
	return xs
}

// dedupeSpecs drops duplicate requests by canonical key, keeping key
// order for determinism.
func dedupeSpecs(specs []ir.SpecRequest) []ir.SpecRequest {
	seen := make(map[string]ir.SpecRequest)
	for _, s := range specs {
		key := s.Key()
		if _, ok := seen[key]; !ok {
			seen[key] = s
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]ir.SpecRequest, len(keys))
	for i, k := range keys {
		out[i] = seen[k]
	}
	return out
}
