package irbuild

import (
	"fmt"
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"

	"github.com/tsoniclang/tsonic/internal/diagnostic"
	"github.com/tsoniclang/tsonic/internal/ir"
)

// brandedNumeric maps the branded numeric aliases exported by the
// conventional types package onto their namesake CLR primitives.
var brandedNumeric = map[string]string{
	"int":    ir.PrimInt,
	"uint":   ir.PrimUint,
	"long":   ir.PrimLong,
	"ulong":  ir.PrimUlong,
	"short":  ir.PrimShort,
	"ushort": ir.PrimUshort,
	"byte":   ir.PrimByte,
	"sbyte":  ir.PrimSbyte,
	"float":  ir.PrimFloat,
	"char":   ir.PrimChar,
}

// lowerTypeNode lowers a syntactic type annotation. Annotations beat
// checker inference everywhere both exist, because the annotation is what
// the user audited.
func (b *Builder) lowerTypeNode(t *ast.Node) ir.Type {
	if t == nil {
		return ir.Any
	}
	if b.depth >= maxTypeDepth {
		return ir.NewPrimitive(ir.PrimObject)
	}
	b.depth++
	defer func() { b.depth-- }()

	switch t.Kind {
	case ast.KindNumberKeyword:
		return ir.NewPrimitive(ir.PrimDouble)
	case ast.KindStringKeyword:
		return ir.NewPrimitive(ir.PrimString)
	case ast.KindBooleanKeyword:
		return ir.NewPrimitive(ir.PrimBool)
	case ast.KindVoidKeyword:
		return ir.Void
	case ast.KindAnyKeyword:
		return ir.NewPrimitive(ir.PrimObject)
	case ast.KindUnknownKeyword:
		return ir.NewPrimitive(ir.PrimObject)
	case ast.KindNeverKeyword:
		return ir.Never
	case ast.KindUndefinedKeyword:
		return ir.Null
	case ast.KindObjectKeyword:
		return ir.NewPrimitive(ir.PrimObject)

	case ast.KindLiteralType:
		return b.lowerLiteralType(t)

	case ast.KindArrayType:
		elem := b.lowerTypeNode(t.AsArrayTypeNode().ElementType)
		return ir.NewArray(elem)

	case ast.KindTypeReference:
		return b.lowerTypeReference(t)

	case ast.KindUnionType:
		return b.lowerUnionType(t)

	case ast.KindIntersectionType:
		members := t.AsIntersectionTypeNode().Types.Nodes
		variants := make([]ir.Type, len(members))
		for i, m := range members {
			variants[i] = b.lowerTypeNode(m)
		}
		return ir.Type{Kind: ir.TypeIntersection, Variants: variants}

	case ast.KindFunctionType:
		return b.lowerFunctionType(t)

	case ast.KindTypeLiteral:
		return b.lowerTypeLiteral(t)

	case ast.KindParenthesizedType:
		return b.lowerTypeNode(t.AsParenthesizedTypeNode().Type)

	case ast.KindConditionalType:
		b.errorAt(diagnostic.CodeConditionalType, t,
			"conditional types are not supported outside specialisable overloads")
		return ir.NewPrimitive(ir.PrimObject)

	case ast.KindMappedType:
		b.errorAt(diagnostic.CodeUnsupportedMappedType, t,
			"mapped types over unconstrained keys are not supported")
		return ir.NewPrimitive(ir.PrimObject)

	default:
		b.errorAt(diagnostic.CodeUnsupportedLiteralType, t,
			fmt.Sprintf("unsupported type construct (kind %v)", t.Kind))
		return ir.NewPrimitive(ir.PrimObject)
	}
}

func (b *Builder) lowerLiteralType(t *ast.Node) ir.Type {
	lit := t.AsLiteralTypeNode().Literal
	switch lit.Kind {
	case ast.KindNullKeyword:
		return ir.Null
	case ast.KindStringLiteral:
		return ir.Type{Kind: ir.TypeLiteral, LiteralKind: "string", Name: lit.AsStringLiteral().Text}
	case ast.KindNumericLiteral:
		return ir.Type{Kind: ir.TypeLiteral, LiteralKind: "number", Name: lit.Text()}
	case ast.KindTrueKeyword:
		return ir.Type{Kind: ir.TypeLiteral, LiteralKind: "bool", Name: "true"}
	case ast.KindFalseKeyword:
		return ir.Type{Kind: ir.TypeLiteral, LiteralKind: "bool", Name: "false"}
	default:
		b.errorAt(diagnostic.CodeUnsupportedLiteralType, t, "unsupported literal type")
		return ir.NewPrimitive(ir.PrimObject)
	}
}

// lowerTypeReference handles named types: branded numerics, generic
// parameters in scope, Array<T>, and CLR-bound references.
func (b *Builder) lowerTypeReference(t *ast.Node) ir.Type {
	ref := t.AsTypeReference()
	name := typeNameText(ref.TypeName)

	if prim, ok := brandedNumeric[name]; ok {
		return ir.NewPrimitive(prim)
	}
	if b.typeParams[name] {
		return ir.Type{Kind: ir.TypeParam, Name: name}
	}

	var args []ir.Type
	if ref.TypeArguments != nil {
		args = make([]ir.Type, len(ref.TypeArguments.Nodes))
		for i, a := range ref.TypeArguments.Nodes {
			args[i] = b.lowerTypeNode(a)
		}
	}

	if name == "Array" && len(args) == 1 {
		return ir.NewArray(args[0])
	}

	out := ir.Type{Kind: ir.TypeReference, Name: name, TypeArgs: args}
	if ci, ok := b.clrScope[rootName(ref.TypeName)]; ok && ci.hasEntry && !ci.namespaceOnly {
		out.Clr = &ir.ClrRef{Assembly: ci.entry.Assembly, QualifiedType: ci.entry.QualifiedType}
	} else if ci, ok := b.clrScope[rootName(ref.TypeName)]; ok && ci.namespaceOnly {
		// sys.DateTime style: the member selects a type in the bound
		// namespace.
		aliasPath := ci.aliasPath + "." + memberName(ref.TypeName)
		if e, ok := b.bindings.LookupType(aliasPath); ok {
			out.Clr = &ir.ClrRef{Assembly: e.Assembly, QualifiedType: e.QualifiedType}
		}
	}
	return out
}

// lowerUnionType collapses T | null to nullable T and keeps every other
// union as an ir.TypeUnion; the emitter spells those as object.
func (b *Builder) lowerUnionType(t *ast.Node) ir.Type {
	members := t.AsUnionTypeNode().Types.Nodes
	var nonNull []ir.Type
	sawNull := false
	for _, m := range members {
		lowered := b.lowerTypeNode(m)
		if lowered.Kind == ir.TypeNull {
			sawNull = true
			continue
		}
		nonNull = append(nonNull, lowered)
	}

	if len(nonNull) == 1 {
		out := nonNull[0]
		if sawNull {
			if out.Kind == ir.TypeParam {
				// The validator reports 7415; recover with object so
				// lowering can continue.
				return ir.NewPrimitive(ir.PrimObject)
			}
			out.Nullable = true
		}
		return out
	}

	variants := nonNull
	out := ir.Type{Kind: ir.TypeUnion, Variants: variants, Nullable: sawNull}
	return out
}

func (b *Builder) lowerFunctionType(t *ast.Node) ir.Type {
	fn := t.AsFunctionTypeNode()
	params := make([]ir.Type, 0, len(fn.Parameters.Nodes))
	for _, p := range fn.Parameters.Nodes {
		params = append(params, b.lowerTypeNode(p.AsParameterDeclaration().Type))
	}
	ret := b.lowerTypeNode(fn.Type)
	return ir.Type{Kind: ir.TypeFunction, Params: params, Return: &ret}
}

// lowerTypeLiteral lowers an anonymous object type. Members are kept in
// source order; the emitter hoists these into synthesised record classes.
func (b *Builder) lowerTypeLiteral(t *ast.Node) ir.Type {
	lit := t.AsTypeLiteralNode()
	out := ir.Type{Kind: ir.TypeObject}
	for _, m := range lit.Members.Nodes {
		switch m.Kind {
		case ast.KindPropertySignature:
			ps := m.AsPropertySignatureDeclaration()
			if ps.Name() == nil {
				continue
			}
			out.Members = append(out.Members, ir.ObjectMember{
				Name:     ps.Name().Text(),
				Type:     b.lowerTypeNode(ps.Type),
				Optional: ps.PostfixToken != nil,
			})
		case ast.KindMethodSignature:
			ms := m.AsMethodSignatureDeclaration()
			if ms.Name() == nil {
				continue
			}
			params := make([]ir.Type, 0, len(ms.Parameters.Nodes))
			for _, p := range ms.Parameters.Nodes {
				params = append(params, b.lowerTypeNode(p.AsParameterDeclaration().Type))
			}
			ret := b.lowerTypeNode(ms.Type)
			out.Members = append(out.Members, ir.ObjectMember{
				Name:   ms.Name().Text(),
				Type:   ir.Type{Kind: ir.TypeFunction, Params: params, Return: &ret},
				Method: true,
			})
		}
	}
	return out
}

// typeNameText renders a (possibly qualified) type name.
func typeNameText(name *ast.Node) string {
	switch name.Kind {
	case ast.KindIdentifier:
		return name.AsIdentifier().Text
	case ast.KindQualifiedName:
		qn := name.AsQualifiedName()
		return typeNameText(qn.Left) + "." + qn.Right.Text()
	default:
		return ""
	}
}

// rootName returns the leftmost identifier of a qualified type name.
func rootName(name *ast.Node) string {
	for name.Kind == ast.KindQualifiedName {
		name = name.AsQualifiedName().Left
	}
	if name.Kind == ast.KindIdentifier {
		return name.AsIdentifier().Text
	}
	return ""
}

// memberName returns the rightmost identifier of a qualified type name.
func memberName(name *ast.Node) string {
	if name.Kind == ast.KindQualifiedName {
		return name.AsQualifiedName().Right.Text()
	}
	if name.Kind == ast.KindIdentifier {
		return name.AsIdentifier().Text
	}
	return ""
}

// inferNumericLiteral picks the IR primitive for a numeric literal
// spelling: integer-looking literals default to int, widening to long on
// 32-bit overflow; fractional literals are double.
func inferNumericLiteral(text string) ir.Type {
	if strings.ContainsAny(text, ".eE") {
		return ir.NewPrimitive(ir.PrimDouble)
	}
	// Hex/binary/octal literals skip the decimal parse below and are int.
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0o") {
		return ir.NewPrimitive(ir.PrimInt)
	}
	neg := strings.HasPrefix(text, "-")
	digits := strings.TrimPrefix(text, "-")
	var v uint64
	for _, r := range digits {
		if r < '0' || r > '9' {
			return ir.NewPrimitive(ir.PrimDouble)
		}
		v = v*10 + uint64(r-'0')
		if v > 1<<63 {
			return ir.NewPrimitive(ir.PrimDouble)
		}
	}
	limit := uint64(1 << 31)
	if !neg {
		limit = 1<<31 - 1
	}
	if v > limit {
		return ir.NewPrimitive(ir.PrimLong)
	}
	return ir.NewPrimitive(ir.PrimInt)
}

// widenArrayElements scans array-literal element types and escalates the
// element type: any long forces long, any double forces double.
func widenArrayElements(elems []ir.Expr) ir.Type {
	if len(elems) == 0 {
		return ir.Any
	}
	out := elems[0].Type
	for _, e := range elems[1:] {
		t := e.Type
		if t.Key() == out.Key() {
			continue
		}
		if out.IsNumeric() && t.IsNumeric() {
			out = widerNumeric(out, t)
			continue
		}
		return ir.NewPrimitive(ir.PrimObject)
	}
	return out
}

func widerNumeric(a, b ir.Type) ir.Type {
	rank := func(t ir.Type) int {
		switch t.Name {
		case ir.PrimDouble, ir.PrimFloat:
			return 3
		case ir.PrimLong, ir.PrimUlong:
			return 2
		default:
			return 1
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
