// Package ir defines the language-neutral intermediate representation the
// front half of the pipeline lowers TypeScript into and the emitter lowers
// out of. Every node is immutable after construction; rewriting passes
// build fresh nodes.
package ir

import "strings"

// TypeKind is the primary classification of an IR type.
type TypeKind string

const (
	TypePrimitive    TypeKind = "primitive"
	TypeReference    TypeKind = "reference"
	TypeArray        TypeKind = "array"
	TypeFunction     TypeKind = "function"
	TypeObject       TypeKind = "object" // anonymous object literal type
	TypeUnion        TypeKind = "union"
	TypeIntersection TypeKind = "intersection"
	TypeLiteral      TypeKind = "literal"
	TypeParam        TypeKind = "typeparam"
	TypeAny          TypeKind = "any"
	TypeUnknown      TypeKind = "unknown"
	TypeVoid         TypeKind = "void"
	TypeNever        TypeKind = "never"
	TypeNull         TypeKind = "null"
)

// Primitive names used by Type.Name when Kind == TypePrimitive. These are
// already CLR-oriented: the builder maps TS number to "double" and the
// branded numeric aliases to their namesakes.
const (
	PrimDouble = "double"
	PrimFloat  = "float"
	PrimInt    = "int"
	PrimUint   = "uint"
	PrimLong   = "long"
	PrimUlong  = "ulong"
	PrimShort  = "short"
	PrimUshort = "ushort"
	PrimByte   = "byte"
	PrimSbyte  = "sbyte"
	PrimBool   = "bool"
	PrimString = "string"
	PrimChar   = "char"
	PrimObject = "object"
)

// Type is one node of the closed IR type family.
type Type struct {
	Kind TypeKind

	// Name is the primitive name, reference name, literal spelling, or
	// type-parameter name depending on Kind.
	Name string

	// Nullable marks T | null / T | undefined collapsed into the target
	// nullable model.
	Nullable bool

	// Clr carries the resolved CLR identity for references that trace to
	// a bound type.
	Clr *ClrRef

	// TypeArgs holds generic type arguments for references.
	TypeArgs []Type

	// Elem is the element type for arrays.
	Elem *Type

	// Params and Return describe function types.
	Params []Type
	Return *Type

	// Members holds the members of an anonymous object type, in source
	// order.
	Members []ObjectMember

	// Variants holds union or intersection members.
	Variants []Type

	// LiteralKind refines TypeLiteral: "string", "number" or "bool";
	// Name holds the spelling.
	LiteralKind string
}

// ObjectMember is a property or method of an anonymous object type.
type ObjectMember struct {
	Name     string
	Type     Type
	Optional bool
	// Method is true when the member was spelled as a method signature;
	// its Type is then a function type.
	Method bool
}

// ClrRef records the CLR identity an identifier, member access or type
// reference resolved to through the binding registry.
type ClrRef struct {
	Assembly      string
	QualifiedType string
	// Member is set on member accesses and member-bound identifiers.
	Member string
}

// NewPrimitive returns a primitive type node.
func NewPrimitive(name string) Type {
	return Type{Kind: TypePrimitive, Name: name}
}

// NewReference returns a reference type node.
func NewReference(name string, args ...Type) Type {
	return Type{Kind: TypeReference, Name: name, TypeArgs: args}
}

// NewArray returns an array type node.
func NewArray(elem Type) Type {
	return Type{Kind: TypeArray, Elem: &elem}
}

// Void, Any and friends avoid repeated literals at call sites.
var (
	Void    = Type{Kind: TypeVoid}
	Any     = Type{Kind: TypeAny}
	Unknown = Type{Kind: TypeUnknown}
	Never   = Type{Kind: TypeNever}
	Null    = Type{Kind: TypeNull}
)

// IsVoid reports whether the type is void.
func (t Type) IsVoid() bool { return t.Kind == TypeVoid }

// IsNumeric reports whether the type is a numeric primitive.
func (t Type) IsNumeric() bool {
	if t.Kind != TypePrimitive {
		return false
	}
	switch t.Name {
	case PrimDouble, PrimFloat, PrimInt, PrimUint, PrimLong, PrimUlong,
		PrimShort, PrimUshort, PrimByte, PrimSbyte:
		return true
	}
	return false
}

// IsValueType reports whether the lowered C# type is a value type, which
// decides the spelling of its nullable form.
func (t Type) IsValueType() bool {
	switch t.Kind {
	case TypePrimitive:
		return t.Name != PrimString && t.Name != PrimObject
	default:
		return false
	}
}

// Key returns a canonical string for the type, used for specialisation
// dedup and deterministic naming. It is a pure function of the structure.
func (t Type) Key() string {
	var sb strings.Builder
	t.writeKey(&sb)
	return sb.String()
}

func (t Type) writeKey(sb *strings.Builder) {
	switch t.Kind {
	case TypePrimitive, TypeParam, TypeLiteral:
		sb.WriteString(t.Name)
	case TypeReference:
		if t.Clr != nil {
			sb.WriteString(t.Clr.QualifiedType)
		} else {
			sb.WriteString(t.Name)
		}
		if len(t.TypeArgs) > 0 {
			sb.WriteByte('<')
			for i, a := range t.TypeArgs {
				if i > 0 {
					sb.WriteByte(',')
				}
				a.writeKey(sb)
			}
			sb.WriteByte('>')
		}
	case TypeArray:
		t.Elem.writeKey(sb)
		sb.WriteString("[]")
	case TypeFunction:
		sb.WriteString("fn(")
		for i, p := range t.Params {
			if i > 0 {
				sb.WriteByte(',')
			}
			p.writeKey(sb)
		}
		sb.WriteByte(')')
		if t.Return != nil {
			sb.WriteString("=>")
			t.Return.writeKey(sb)
		}
	case TypeObject:
		sb.WriteByte('{')
		for i, m := range t.Members {
			if i > 0 {
				sb.WriteByte(';')
			}
			sb.WriteString(m.Name)
			sb.WriteByte(':')
			m.Type.writeKey(sb)
		}
		sb.WriteByte('}')
	case TypeUnion, TypeIntersection:
		sep := "|"
		if t.Kind == TypeIntersection {
			sep = "&"
		}
		for i, v := range t.Variants {
			if i > 0 {
				sb.WriteString(sep)
			}
			v.writeKey(sb)
		}
	default:
		sb.WriteString(string(t.Kind))
	}
	if t.Nullable {
		sb.WriteByte('?')
	}
}
