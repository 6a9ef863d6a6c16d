package irbuild

import (
	"fmt"

	"github.com/microsoft/typescript-go/shim/ast"

	"github.com/tsoniclang/tsonic/internal/clrmeta"
	"github.com/tsoniclang/tsonic/internal/diagnostic"
	"github.com/tsoniclang/tsonic/internal/ir"
)

// intrinsics are the compile-time intrinsics recognised by name at call
// sites. istype must be erased during overload specialisation; the
// emitter reports 7441 on survivors.
var intrinsics = map[string]bool{
	"stackalloc":  true,
	"sizeof":      true,
	"nameof":      true,
	"defaultof":   true,
	"trycast":     true,
	"asinterface": true,
	"istype":      true,
	"thisarg":     true,
	"ptr":         true,
}

// lowerExpression lowers one expression node.
func (b *Builder) lowerExpression(node *ast.Node) ir.Expr {
	switch node.Kind {
	case ast.KindNumericLiteral:
		text := node.Text()
		return ir.Expr{Kind: ir.ExprLiteral, Loc: b.loc(node), LitKind: ir.LitNumber, Value: text, Type: inferNumericLiteral(text)}
	case ast.KindStringLiteral:
		return ir.Expr{Kind: ir.ExprLiteral, Loc: b.loc(node), LitKind: ir.LitString, Value: node.AsStringLiteral().Text, Type: ir.NewPrimitive(ir.PrimString)}
	case ast.KindNoSubstitutionTemplateLiteral:
		return ir.Expr{Kind: ir.ExprLiteral, Loc: b.loc(node), LitKind: ir.LitString, Value: node.Text(), Type: ir.NewPrimitive(ir.PrimString)}
	case ast.KindTrueKeyword:
		return ir.Expr{Kind: ir.ExprLiteral, Loc: b.loc(node), LitKind: ir.LitBool, Value: "true", Type: ir.NewPrimitive(ir.PrimBool)}
	case ast.KindFalseKeyword:
		return ir.Expr{Kind: ir.ExprLiteral, Loc: b.loc(node), LitKind: ir.LitBool, Value: "false", Type: ir.NewPrimitive(ir.PrimBool)}
	case ast.KindNullKeyword:
		return ir.Expr{Kind: ir.ExprLiteral, Loc: b.loc(node), LitKind: ir.LitNull, Value: "null", Type: ir.Null}
	case ast.KindIdentifier:
		return b.lowerIdentifier(node)
	case ast.KindThisKeyword:
		return ir.Expr{Kind: ir.ExprThis, Loc: b.loc(node)}
	case ast.KindArrayLiteralExpression:
		return b.lowerArrayLiteral(node)
	case ast.KindObjectLiteralExpression:
		return b.lowerObjectLiteral(node)
	case ast.KindPropertyAccessExpression:
		return b.lowerMemberAccess(node)
	case ast.KindElementAccessExpression:
		ea := node.AsElementAccessExpression()
		obj := b.lowerExpression(ea.Expression)
		idx := b.lowerExpression(ea.ArgumentExpression)
		elem := ir.Any
		if obj.Type.Kind == ir.TypeArray {
			elem = *obj.Type.Elem
		}
		return ir.Expr{Kind: ir.ExprMemberAccess, Loc: b.loc(node), Name: "", Object: &obj, Args: []ir.Expr{idx}, Type: elem}
	case ast.KindCallExpression:
		return b.lowerCall(node)
	case ast.KindNewExpression:
		return b.lowerNew(node)
	case ast.KindParenthesizedExpression:
		return b.lowerExpression(node.AsParenthesizedExpression().Expression)
	case ast.KindPrefixUnaryExpression:
		return b.lowerPrefixUnary(node)
	case ast.KindPostfixUnaryExpression:
		pu := node.AsPostfixUnaryExpression()
		operand := b.lowerExpression(pu.Operand)
		return ir.Expr{Kind: ir.ExprUpdate, Loc: b.loc(node), Name: tokenKindText(pu.Operator), Object: &operand, Type: operand.Type}
	case ast.KindBinaryExpression:
		return b.lowerBinary(node)
	case ast.KindConditionalExpression:
		ce := node.AsConditionalExpression()
		cond := b.lowerExpression(ce.Condition)
		whenTrue := b.lowerExpression(ce.WhenTrue)
		whenFalse := b.lowerExpression(ce.WhenFalse)
		return ir.Expr{Kind: ir.ExprTernary, Loc: b.loc(node), Object: &cond, Left: &whenTrue, Right: &whenFalse, Type: whenTrue.Type}
	case ast.KindTemplateExpression:
		return b.lowerTemplate(node)
	case ast.KindSpreadElement:
		operand := b.lowerExpression(node.AsSpreadElement().Expression)
		return ir.Expr{Kind: ir.ExprSpread, Loc: b.loc(node), Object: &operand, Type: operand.Type}
	case ast.KindAwaitExpression:
		operand := b.lowerExpression(node.AsAwaitExpression().Expression)
		t := operand.Type
		if t.Kind == ir.TypeReference && t.Name == "Promise" && len(t.TypeArgs) == 1 {
			t = t.TypeArgs[0]
		}
		return ir.Expr{Kind: ir.ExprAwait, Loc: b.loc(node), Object: &operand, Type: t}
	case ast.KindYieldExpression:
		ye := node.AsYieldExpression()
		out := ir.Expr{Kind: ir.ExprYield, Loc: b.loc(node), Delegate: ye.AsteriskToken != nil}
		if ye.Expression != nil {
			operand := b.lowerExpression(ye.Expression)
			out.Object = &operand
		}
		return out
	case ast.KindArrowFunction:
		return b.lowerArrow(node)
	case ast.KindFunctionExpression:
		return b.lowerFunctionExpression(node)
	case ast.KindAsExpression:
		as := node.AsAsExpression()
		inner := b.lowerExpression(as.Expression)
		inner.Type = b.lowerTypeNode(as.Type)
		return inner
	case ast.KindNonNullExpression:
		inner := b.lowerExpression(node.AsNonNullExpression().Expression)
		inner.Narrowed = true
		t := inner.Type
		t.Nullable = false
		inner.Type = t
		return inner
	default:
		b.errorAt(diagnostic.CodeUnlowerableExpression, node,
			fmt.Sprintf("unsupported expression (kind %v)", node.Kind))
		return ir.Expr{Kind: ir.ExprLiteral, Loc: b.loc(node), LitKind: ir.LitNull, Value: "null", Type: ir.Any}
	}
}

func (b *Builder) lowerIdentifier(node *ast.Node) ir.Expr {
	name := node.AsIdentifier().Text
	out := ir.Expr{Kind: ir.ExprIdentifier, Loc: b.loc(node), Name: name}
	if ci, ok := b.clrScope[name]; ok && ci.hasEntry {
		out.Clr = &ir.ClrRef{Assembly: ci.entry.Assembly, QualifiedType: ci.entry.QualifiedType}
		out.Type = ir.Type{Kind: ir.TypeReference, Name: name, Clr: out.Clr}
	} else if t, ok := b.locals[name]; ok {
		out.Type = t
	}
	if b.narrowed[name] {
		out.Narrowed = true
	}
	return out
}

func (b *Builder) lowerArrayLiteral(node *ast.Node) ir.Expr {
	lit := node.AsArrayLiteralExpression()
	out := ir.Expr{Kind: ir.ExprArrayLiteral, Loc: b.loc(node)}
	for _, e := range lit.Elements.Nodes {
		out.Args = append(out.Args, b.lowerExpression(e))
	}
	elem := widenArrayElements(out.Args)
	out.Type = ir.NewArray(elem)
	return out
}

func (b *Builder) lowerObjectLiteral(node *ast.Node) ir.Expr {
	lit := node.AsObjectLiteralExpression()
	out := ir.Expr{Kind: ir.ExprObjectLiteral, Loc: b.loc(node)}
	objType := ir.Type{Kind: ir.TypeObject}
	for _, p := range lit.Properties.Nodes {
		switch p.Kind {
		case ast.KindPropertyAssignment:
			pa := p.AsPropertyAssignment()
			if pa.Name() == nil {
				continue
			}
			value := b.lowerExpression(pa.Initializer)
			name := pa.Name().Text()
			out.Props = append(out.Props, ir.Prop{Name: name, Value: value})
			objType.Members = append(objType.Members, ir.ObjectMember{Name: name, Type: value.Type})
		case ast.KindShorthandPropertyAssignment:
			spa := p.AsShorthandPropertyAssignment()
			if spa.Name() == nil {
				continue
			}
			name := spa.Name().Text()
			value := ir.Expr{Kind: ir.ExprIdentifier, Loc: b.loc(p), Name: name}
			out.Props = append(out.Props, ir.Prop{Name: name, Value: value})
			objType.Members = append(objType.Members, ir.ObjectMember{Name: name, Type: ir.Any})
		case ast.KindSpreadAssignment:
			sa := p.AsSpreadAssignment()
			value := b.lowerExpression(sa.Expression)
			out.Props = append(out.Props, ir.Prop{Value: value, Spread: true})
		}
	}
	out.Type = objType
	return out
}

// lowerMemberAccess decorates CLR-bound accesses: when the receiver is a
// bound type or namespace, the member alias resolves through the binding
// registry; the binding wins over the written name, everything else is
// spelled verbatim.
func (b *Builder) lowerMemberAccess(node *ast.Node) ir.Expr {
	pa := node.AsPropertyAccessExpression()
	obj := b.lowerExpression(pa.Expression)
	name := pa.Name().Text()
	out := ir.Expr{Kind: ir.ExprMemberAccess, Loc: b.loc(node), Name: name, Object: &obj, Optional: pa.QuestionDotToken != nil}

	if obj.Kind == ir.ExprIdentifier {
		if ci, ok := b.clrScope[obj.Name]; ok {
			switch {
			case ci.namespaceOnly:
				aliasPath := ci.aliasPath + "." + name
				if e, ok := b.bindings.LookupType(aliasPath); ok {
					out.Clr = &ir.ClrRef{Assembly: e.Assembly, QualifiedType: e.QualifiedType}
				}
			case ci.hasEntry:
				if e, ok := b.bindings.LookupMember(ci.aliasPath, name); ok {
					out.Clr = &ir.ClrRef{Assembly: e.Assembly, QualifiedType: e.QualifiedType, Member: e.Member}
				} else {
					out.Clr = &ir.ClrRef{Assembly: ci.entry.Assembly, QualifiedType: ci.entry.QualifiedType, Member: name}
				}
			}
		}
	}
	// Instance member on a value whose declared type is CLR-bound: the
	// member name is spelled verbatim unless a member binding renames it.
	if out.Clr == nil && obj.Type.Kind == ir.TypeReference && obj.Type.Clr != nil {
		if b.metadata.HasMemberNamed(obj.Type.Clr.QualifiedType, name) {
			out.Clr = &ir.ClrRef{
				Assembly:      obj.Type.Clr.Assembly,
				QualifiedType: obj.Type.Clr.QualifiedType,
				Member:        name,
			}
		}
	}
	if obj.Narrowed && obj.Type.Nullable {
		out.Narrowed = true
	}
	return out
}

// lowerCall lowers calls: intrinsics, CLR-bound calls (with overload
// metadata and parameter modifiers), and local generic calls that spawn
// specialisation requests.
func (b *Builder) lowerCall(node *ast.Node) ir.Expr {
	call := node.AsCallExpression()

	if call.Expression.Kind == ast.KindIdentifier {
		name := call.Expression.AsIdentifier().Text
		if intrinsics[name] {
			return b.lowerIntrinsic(node, call, name)
		}
	}

	callee := b.lowerExpression(call.Expression)
	out := ir.Expr{Kind: ir.ExprCall, Loc: b.loc(node), Object: &callee}
	for _, a := range call.Arguments.Nodes {
		out.Args = append(out.Args, b.lowerExpression(a))
	}
	if call.TypeArguments != nil {
		for _, t := range call.TypeArguments.Nodes {
			out.TypeArgs = append(out.TypeArgs, b.lowerTypeNode(t))
		}
	}

	// CLR-bound member call: propagate overload signature and parameter
	// modifiers from metadata.
	if callee.Clr != nil && callee.Clr.Member != "" {
		if m, ok := b.metadata.MemberByName(callee.Clr.QualifiedType, callee.Clr.Member); ok {
			out.ResolvedSignature = signatureOf(callee.Clr.Member, m)
			out.ArgModifiers = modifiersFor(m, len(out.Args))
			b.checkOutArguments(node, &out)
		}
	}

	// Local generic call: infer missing type arguments from argument
	// types and request a specialisation.
	if callee.Kind == ir.ExprIdentifier {
		if declModule, ok := b.genericDecls[callee.Name]; ok {
			if len(out.TypeArgs) == 0 {
				for _, a := range out.Args {
					out.TypeArgs = append(out.TypeArgs, a.Type)
				}
			}
			req := ir.SpecRequest{DeclModule: declModule, DeclName: callee.Name, TypeArgs: out.TypeArgs}
			out.SpecKey = req.Key()
			b.specs = append(b.specs, req)
		}
	}

	return out
}

// checkOutArguments enforces that out-modified arguments are writable
// l-values.
func (b *Builder) checkOutArguments(node *ast.Node, call *ir.Expr) {
	for i, mod := range call.ArgModifiers {
		if mod != string(clrmeta.ModOut) && mod != string(clrmeta.ModRef) {
			continue
		}
		if i >= len(call.Args) {
			break
		}
		arg := call.Args[i]
		if arg.Kind != ir.ExprIdentifier && arg.Kind != ir.ExprMemberAccess {
			b.errorAt(diagnostic.CodeUnlowerableExpression, node,
				fmt.Sprintf("argument %d is passed by %s and must be a writable variable", i+1, mod))
		}
	}
}

func (b *Builder) lowerNew(node *ast.Node) ir.Expr {
	ne := node.AsNewExpression()
	callee := b.lowerExpression(ne.Expression)
	out := ir.Expr{Kind: ir.ExprNew, Loc: b.loc(node), Object: &callee}
	if ne.Arguments != nil {
		for _, a := range ne.Arguments.Nodes {
			out.Args = append(out.Args, b.lowerExpression(a))
		}
	}
	if ne.TypeArguments != nil {
		for _, t := range ne.TypeArguments.Nodes {
			out.TypeArgs = append(out.TypeArgs, b.lowerTypeNode(t))
		}
	}
	t := ir.Type{Kind: ir.TypeReference, Name: callee.Name, TypeArgs: out.TypeArgs, Clr: callee.Clr}
	out.Type = t
	return out
}

func (b *Builder) lowerPrefixUnary(node *ast.Node) ir.Expr {
	pu := node.AsPrefixUnaryExpression()
	operand := b.lowerExpression(pu.Operand)
	op := tokenKindText(pu.Operator)
	kind := ir.ExprUnary
	if op == "++" || op == "--" {
		kind = ir.ExprUpdate
	}
	t := operand.Type
	if op == "!" {
		t = ir.NewPrimitive(ir.PrimBool)
	}
	return ir.Expr{Kind: kind, Loc: b.loc(node), Name: op, Object: &operand, Prefix: true, Type: t}
}

func (b *Builder) lowerBinary(node *ast.Node) ir.Expr {
	bin := node.AsBinaryExpression()
	left := b.lowerExpression(bin.Left)
	right := b.lowerExpression(bin.Right)
	op := tokenText(bin.OperatorToken)

	kind := ir.ExprBinary
	t := left.Type
	switch op {
	case "&&", "||", "??":
		kind = ir.ExprLogical
	case "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=", "??=":
		kind = ir.ExprAssignment
	case "===", "!==", "==", "!=", "<", ">", "<=", ">=", "instanceof", "in":
		t = ir.NewPrimitive(ir.PrimBool)
	case "+":
		if left.Type.Name == ir.PrimString || right.Type.Name == ir.PrimString {
			t = ir.NewPrimitive(ir.PrimString)
		} else if left.Type.IsNumeric() && right.Type.IsNumeric() {
			t = widerNumeric(left.Type, right.Type)
		}
	case "-", "*", "/", "%":
		if left.Type.IsNumeric() && right.Type.IsNumeric() {
			t = widerNumeric(left.Type, right.Type)
		}
	}

	return ir.Expr{Kind: kind, Loc: b.loc(node), Name: op, Left: &left, Right: &right, Type: t}
}

func (b *Builder) lowerTemplate(node *ast.Node) ir.Expr {
	te := node.AsTemplateExpression()
	out := ir.Expr{Kind: ir.ExprTemplate, Loc: b.loc(node), Type: ir.NewPrimitive(ir.PrimString)}
	out.Quasis = append(out.Quasis, te.Head.Text())
	for _, span := range te.TemplateSpans.Nodes {
		ts := span.AsTemplateSpan()
		out.Args = append(out.Args, b.lowerExpression(ts.Expression))
		out.Quasis = append(out.Quasis, ts.Literal.Text())
	}
	return out
}

func (b *Builder) lowerArrow(node *ast.Node) ir.Expr {
	arrow := node.AsArrowFunction()
	fn := &ir.FuncLit{IsAsync: hasModifier(node, ast.KindAsyncKeyword)}
	fn.Params = b.lowerParameters(arrow.Parameters)
	fn.Return = b.lowerReturnType(arrow.Type, fn.IsAsync)
	if arrow.Body.Kind == ast.KindBlock {
		fn.Body = b.lowerBody(arrow.Body)
	} else {
		expr := b.lowerExpression(arrow.Body)
		fn.ExprBody = &expr
		if fn.Return.IsVoid() && arrow.Type == nil {
			fn.Return = expr.Type
		}
	}
	return ir.Expr{Kind: ir.ExprArrow, Loc: b.loc(node), Fn: fn, Type: funcLitType(fn)}
}

func (b *Builder) lowerFunctionExpression(node *ast.Node) ir.Expr {
	fe := node.AsFunctionExpression()
	fn := &ir.FuncLit{IsAsync: hasModifier(node, ast.KindAsyncKeyword)}
	fn.Params = b.lowerParameters(fe.Parameters)
	fn.Return = b.lowerReturnType(fe.Type, fn.IsAsync)
	fn.Body = b.lowerBody(fe.Body)
	return ir.Expr{Kind: ir.ExprFunction, Loc: b.loc(node), Fn: fn, Type: funcLitType(fn)}
}

func funcLitType(fn *ir.FuncLit) ir.Type {
	params := make([]ir.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Type
	}
	ret := fn.Return
	return ir.Type{Kind: ir.TypeFunction, Params: params, Return: &ret}
}

// lowerIntrinsic lowers the compile-time intrinsics to tagged IR nodes
// the emitter expands to CLR keywords.
func (b *Builder) lowerIntrinsic(node *ast.Node, call *ast.CallExpression, name string) ir.Expr {
	out := ir.Expr{Kind: ir.ExprIntrinsic, Loc: b.loc(node), Name: name}
	if call.TypeArguments != nil {
		for _, t := range call.TypeArguments.Nodes {
			out.TypeArgs = append(out.TypeArgs, b.lowerTypeNode(t))
		}
	}
	for _, a := range call.Arguments.Nodes {
		out.Args = append(out.Args, b.lowerExpression(a))
	}
	switch name {
	case "sizeof":
		out.Type = ir.NewPrimitive(ir.PrimInt)
	case "nameof":
		out.Type = ir.NewPrimitive(ir.PrimString)
	case "istype":
		out.Type = ir.NewPrimitive(ir.PrimBool)
	default:
		if len(out.TypeArgs) == 1 {
			out.Type = out.TypeArgs[0]
		}
	}
	return out
}

// signatureOf returns the member name as the call's resolved signature.
// Parameter types are not included: MemberByName matches by name only and
// does not report which signature-keyed entry it found.
func signatureOf(member string, m clrmeta.MemberMeta) string {
	_ = m
	return member
}

// modifiersFor pads the metadata modifier list out to the argument count.
func modifiersFor(m clrmeta.MemberMeta, argc int) []string {
	out := make([]string, argc)
	for i := 0; i < argc && i < len(m.ParamModifiers); i++ {
		if m.ParamModifiers[i] != clrmeta.ModNone {
			out[i] = string(m.ParamModifiers[i])
		}
	}
	return out
}

// tokenText spells an operator token.
func tokenText(tok *ast.Node) string {
	return tokenKindText(tok.Kind)
}

func tokenKindText(kind ast.Kind) string {
	switch kind {
	case ast.KindPlusToken:
		return "+"
	case ast.KindMinusToken:
		return "-"
	case ast.KindAsteriskToken:
		return "*"
	case ast.KindSlashToken:
		return "/"
	case ast.KindPercentToken:
		return "%"
	case ast.KindPlusPlusToken:
		return "++"
	case ast.KindMinusMinusToken:
		return "--"
	case ast.KindEqualsToken:
		return "="
	case ast.KindPlusEqualsToken:
		return "+="
	case ast.KindMinusEqualsToken:
		return "-="
	case ast.KindAsteriskEqualsToken:
		return "*="
	case ast.KindSlashEqualsToken:
		return "/="
	case ast.KindPercentEqualsToken:
		return "%="
	case ast.KindEqualsEqualsEqualsToken:
		return "==="
	case ast.KindExclamationEqualsEqualsToken:
		return "!=="
	case ast.KindEqualsEqualsToken:
		return "=="
	case ast.KindExclamationEqualsToken:
		return "!="
	case ast.KindLessThanToken:
		return "<"
	case ast.KindGreaterThanToken:
		return ">"
	case ast.KindLessThanEqualsToken:
		return "<="
	case ast.KindGreaterThanEqualsToken:
		return ">="
	case ast.KindAmpersandAmpersandToken:
		return "&&"
	case ast.KindBarBarToken:
		return "||"
	case ast.KindQuestionQuestionToken:
		return "??"
	case ast.KindQuestionQuestionEqualsToken:
		return "??="
	case ast.KindExclamationToken:
		return "!"
	case ast.KindTildeToken:
		return "~"
	case ast.KindAmpersandToken:
		return "&"
	case ast.KindBarToken:
		return "|"
	case ast.KindCaretToken:
		return "^"
	case ast.KindLessThanLessThanToken:
		return "<<"
	case ast.KindGreaterThanGreaterThanToken:
		return ">>"
	case ast.KindInstanceOfKeyword:
		return "instanceof"
	case ast.KindInKeyword:
		return "in"
	default:
		return "?"
	}
}
