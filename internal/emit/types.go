package emit

import (
	"strings"

	"github.com/tsoniclang/tsonic/internal/ir"
)

// typeName renders an IR type as C# source.
func (m *moduleEmitter) typeName(t ir.Type) string {
	name := m.typeNameCore(t)
	if t.Nullable {
		return name + "?"
	}
	return name
}

func (m *moduleEmitter) typeNameCore(t ir.Type) string {
	switch t.Kind {
	case ir.TypePrimitive:
		return t.Name
	case ir.TypeVoid:
		return "void"
	case ir.TypeAny, ir.TypeUnknown:
		return "object"
	case ir.TypeNull:
		return "object"
	case ir.TypeNever:
		return "object"
	case ir.TypeParam:
		return t.Name
	case ir.TypeArray:
		return m.typeName(*t.Elem) + "[]"
	case ir.TypeReference:
		return m.referenceName(t)
	case ir.TypeFunction:
		return m.delegateName(t)
	case ir.TypeObject:
		if hoisted, ok := m.hoisted[t.Key()]; ok {
			return hoisted
		}
		return "object"
	case ir.TypeUnion:
		// Unions that survived nullable collapse lower to object with
		// type tests at use sites.
		return "object"
	case ir.TypeIntersection:
		return "object"
	case ir.TypeLiteral:
		switch t.LiteralKind {
		case "string":
			return "string"
		case "number":
			return "double"
		case "bool":
			return "bool"
		}
		return "object"
	default:
		return "object"
	}
}

// referenceName qualifies CLR-bound references and rewrites the local
// aliases the compiler recognises structurally.
func (m *moduleEmitter) referenceName(t ir.Type) string {
	base := t.Name
	if t.Clr != nil {
		base = t.Clr.QualifiedType
		if ns, ok := splitNamespace(base); ok {
			m.use(ns)
			base = base[len(ns)+1:]
		}
		base = stripArity(base)
	}
	switch base {
	case "Promise":
		m.use("System.Threading.Tasks")
		if len(t.TypeArgs) == 1 && t.TypeArgs[0].Kind != ir.TypeVoid {
			return "Task<" + m.typeName(t.TypeArgs[0]) + ">"
		}
		return "Task"
	case "Error":
		m.use("System")
		return "Exception"
	}
	if len(t.TypeArgs) > 0 {
		args := make([]string, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = m.typeName(a)
		}
		return base + "<" + strings.Join(args, ", ") + ">"
	}
	return base
}

// delegateName lowers a function type to Action or Func.
func (m *moduleEmitter) delegateName(t ir.Type) string {
	m.use("System")
	params := make([]string, 0, len(t.Params)+1)
	for _, p := range t.Params {
		params = append(params, m.typeName(p))
	}
	if t.Return == nil || t.Return.IsVoid() {
		if len(params) == 0 {
			return "Action"
		}
		return "Action<" + strings.Join(params, ", ") + ">"
	}
	params = append(params, m.typeName(*t.Return))
	return "Func<" + strings.Join(params, ", ") + ">"
}

// returnTypeName renders a function return, wrapping async returns in
// Task and generators in enumerable sequences.
func (m *moduleEmitter) returnTypeName(fn *ir.FuncDecl) string {
	if fn.Generator != nil {
		return m.generatorReturnType(fn.Generator)
	}
	if fn.IsAsync {
		m.use("System.Threading.Tasks")
		if fn.Return.IsVoid() {
			return "Task"
		}
		return "Task<" + m.typeName(fn.Return) + ">"
	}
	return m.typeName(fn.Return)
}

func (m *moduleEmitter) generatorReturnType(g *ir.GeneratorInfo) string {
	if g.Bidirectional {
		// Bidirectional generators return the synthesised wrapper; the
		// caller drives it through next/return/throw.
		return "" // filled in by the generator lowering
	}
	if g.IsAsync {
		m.use("System.Collections.Generic")
		return "IAsyncEnumerable<" + m.typeName(g.Yield) + ">"
	}
	m.use("System.Collections.Generic")
	return "IEnumerable<" + m.typeName(g.Yield) + ">"
}

// splitNamespace returns the namespace part of a qualified name
// ("System.Collections.Generic.List" → "System.Collections.Generic"); ok is
// false when the name has no dot.
func splitNamespace(qualified string) (string, bool) {
	i := strings.LastIndex(qualified, ".")
	if i < 0 {
		return "", false
	}
	return qualified[:i], true
}

// stripArity drops the CLR generic arity suffix ("List`1" → "List").
func stripArity(name string) string {
	if i := strings.IndexByte(name, '`'); i >= 0 {
		return name[:i]
	}
	return name
}

// defaultValue renders the C# default expression for a type.
func defaultValue(t ir.Type) string {
	if t.Nullable {
		return "null"
	}
	switch t.Kind {
	case ir.TypePrimitive:
		switch t.Name {
		case ir.PrimString:
			return "\"\""
		case ir.PrimBool:
			return "false"
		case ir.PrimObject:
			return "null"
		default:
			return "0"
		}
	default:
		return "null"
	}
}

// mangle builds a deterministic identifier from parts.
func mangle(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				return r
			default:
				return -1
			}
		}, p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, "_")
}
