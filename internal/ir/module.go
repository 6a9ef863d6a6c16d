package ir

import "strings"

// ImportKind mirrors the resolver's classification of a specifier.
type ImportKind string

const (
	ImportLocal     ImportKind = "local"
	ImportNamespace ImportKind = "dotnet-namespace"
	ImportBound     ImportKind = "bound-external"
)

// Import is one import declaration of a module, post-resolution.
type Import struct {
	Specifier string
	Kind      ImportKind
	// ResolvedPath is the absolute source path for local imports.
	ResolvedPath string
	// Qualified is the CLR namespace or type for non-local imports.
	Qualified string
	// Names are the imported binding names; empty for namespace imports.
	Names []string
	// NamespaceAlias is set for `import * as x` forms.
	NamespaceAlias string
}

// Export records one exported symbol of a module.
type Export struct {
	Name string
	// Kind is "function", "class", "interface", "enum", "const", "let"
	// or "type".
	Kind string
}

// Module is the IR of one source file.
type Module struct {
	// FilePath is the absolute path of the source file.
	FilePath string
	// Namespace is the derived C# namespace.
	Namespace string
	// ContainerClass is the derived container-class name.
	ContainerClass string
	// IsStaticContainer marks modules whose top-level functions and
	// values are emitted as static members.
	IsStaticContainer bool

	Imports []Import
	Body    []Stmt
	Exports []Export

	// IsEntryPoint marks the module whose exported main gets the Main
	// wrapper.
	IsEntryPoint bool
}

// ExportedNames returns the exported names in declaration order.
func (m *Module) ExportedNames() []string {
	names := make([]string, len(m.Exports))
	for i, e := range m.Exports {
		names[i] = e.Name
	}
	return names
}

// SpecRequest is a monomorphisation request: one generic declaration
// paired with a concrete type-argument tuple.
type SpecRequest struct {
	// DeclModule is the file path of the module declaring the generic.
	DeclModule string
	// DeclName is the generic function or class name.
	DeclName string
	TypeArgs []Type
}

// Key returns the canonical dedup key for the request.
func (r SpecRequest) Key() string {
	var sb strings.Builder
	sb.WriteString(r.DeclModule)
	sb.WriteByte('#')
	sb.WriteString(r.DeclName)
	sb.WriteByte('<')
	for i, t := range r.TypeArgs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(t.Key())
	}
	sb.WriteByte('>')
	return sb.String()
}

// SuffixFor derives the stable specialisation name suffix from a
// type-argument tuple: dots in qualified names are dropped, [] becomes
// "Array", type arguments are joined with underscores.
func SuffixFor(args []Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = suffixPart(a)
	}
	return strings.Join(parts, "_")
}

func suffixPart(t Type) string {
	switch t.Kind {
	case TypeArray:
		return suffixPart(*t.Elem) + "Array"
	case TypeReference:
		name := t.Name
		if t.Clr != nil {
			name = t.Clr.QualifiedType
		}
		name = strings.ReplaceAll(name, ".", "")
		name = strings.ReplaceAll(name, "`", "")
		if len(t.TypeArgs) > 0 {
			var sb strings.Builder
			sb.WriteString(name)
			sb.WriteString("Of")
			for _, a := range t.TypeArgs {
				sb.WriteString(suffixPart(a))
			}
			return sb.String()
		}
		return name
	case TypePrimitive:
		return t.Name
	case TypeNull:
		return "nullref"
	default:
		return strings.ReplaceAll(string(t.Kind), "-", "")
	}
}
