package emit

import (
	"fmt"
	"strings"

	"github.com/tsoniclang/tsonic/internal/diagnostic"
	"github.com/tsoniclang/tsonic/internal/ir"
)

// expr renders one expression as C# source text.
func (m *moduleEmitter) expr(e ir.Expr) string {
	switch e.Kind {
	case ir.ExprLiteral:
		return m.literal(e)
	case ir.ExprIdentifier:
		return m.identifier(e)
	case ir.ExprThis:
		return "this"
	case ir.ExprArrayLiteral:
		return m.arrayLiteral(e)
	case ir.ExprObjectLiteral:
		return m.objectLiteral(e)
	case ir.ExprMemberAccess:
		return m.memberAccess(e)
	case ir.ExprCall:
		return m.call(e)
	case ir.ExprNew:
		return m.newExpr(e)
	case ir.ExprUnary:
		return m.unary(e)
	case ir.ExprUpdate:
		if e.Prefix {
			return e.Name + m.expr(*e.Object)
		}
		return m.expr(*e.Object) + e.Name
	case ir.ExprBinary:
		return m.binary(e)
	case ir.ExprLogical:
		return fmt.Sprintf("%s %s %s", m.expr(*e.Left), e.Name, m.expr(*e.Right))
	case ir.ExprTernary:
		return fmt.Sprintf("%s ? %s : %s", m.expr(*e.Object), m.expr(*e.Left), m.expr(*e.Right))
	case ir.ExprAssignment:
		return fmt.Sprintf("%s %s %s", m.expr(*e.Left), e.Name, m.expr(*e.Right))
	case ir.ExprTemplate:
		return m.template(e)
	case ir.ExprSpread:
		// Spread outside an array literal or call surfaces verbatim;
		// the containers lower it themselves.
		return m.expr(*e.Object)
	case ir.ExprAwait:
		return "await " + m.expr(*e.Object)
	case ir.ExprYield:
		// Plain yields are handled by statement lowering; a yield in
		// expression position outside a recognised shape cannot be
		// lowered.
		m.errorAt(diagnostic.CodeUnlowerableExpression, e.Loc,
			"yield in this position is not supported; assign the yield result in its own statement")
		return "default"
	case ir.ExprArrow, ir.ExprFunction:
		return m.lambda(e)
	case ir.ExprIntrinsic:
		return m.intrinsic(e)
	default:
		m.errorAt(diagnostic.CodeUnlowerableExpression, e.Loc,
			fmt.Sprintf("cannot lower expression kind %q", e.Kind))
		return "default"
	}
}

func (m *moduleEmitter) literal(e ir.Expr) string {
	switch e.LitKind {
	case ir.LitString:
		return quoteCSharp(e.Value)
	case ir.LitNumber:
		if e.Type.Name == ir.PrimLong {
			return e.Value + "L"
		}
		return e.Value
	case ir.LitBool:
		return e.Value
	case ir.LitNull:
		return "null"
	}
	return e.Value
}

func (m *moduleEmitter) identifier(e ir.Expr) string {
	if e.Clr != nil && e.Clr.Member == "" {
		// A bound type used as a value: qualify through its namespace.
		if ns, ok := splitNamespace(e.Clr.QualifiedType); ok {
			m.use(ns)
			return stripArity(e.Clr.QualifiedType[len(ns)+1:])
		}
		return stripArity(e.Clr.QualifiedType)
	}
	if e.Narrowed && e.Type.Nullable && e.Type.IsValueType() {
		return escapeIdent(e.Name) + ".Value"
	}
	return escapeIdent(e.Name)
}

func (m *moduleEmitter) arrayLiteral(e ir.Expr) string {
	elemType := "object"
	if e.Type.Kind == ir.TypeArray {
		elemType = m.typeName(*e.Type.Elem)
	}

	hasSpread := false
	for _, el := range e.Args {
		if el.Kind == ir.ExprSpread {
			hasSpread = true
			break
		}
	}
	if !hasSpread {
		parts := make([]string, len(e.Args))
		for i, el := range e.Args {
			parts[i] = m.expr(el)
		}
		return fmt.Sprintf("new %s[] { %s }", elemType, strings.Join(parts, ", "))
	}

	// Spread elements lower to a concatenation chain.
	m.use("System.Linq")
	var chain string
	var run []string
	flush := func() {
		if len(run) == 0 {
			return
		}
		segment := fmt.Sprintf("new %s[] { %s }", elemType, strings.Join(run, ", "))
		if chain == "" {
			chain = segment
		} else {
			chain = fmt.Sprintf("%s.Concat(%s)", chain, segment)
		}
		run = nil
	}
	for _, el := range e.Args {
		if el.Kind == ir.ExprSpread {
			flush()
			operand := m.expr(*el.Object)
			if chain == "" {
				chain = operand
			} else {
				chain = fmt.Sprintf("%s.Concat(%s)", chain, operand)
			}
			continue
		}
		run = append(run, m.expr(el))
	}
	flush()
	return chain + ".ToArray()"
}

func (m *moduleEmitter) objectLiteral(e ir.Expr) string {
	// Object literals whose type was hoisted into a record class
	// construct that class; the rest construct anonymous objects.
	if hoisted, ok := m.hoisted[e.Type.Key()]; ok {
		parts := make([]string, 0, len(e.Props))
		for _, p := range e.Props {
			if p.Spread {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s = %s", escapeIdent(p.Name), m.expr(p.Value)))
		}
		return fmt.Sprintf("new %s { %s }", hoisted, strings.Join(parts, ", "))
	}
	parts := make([]string, 0, len(e.Props))
	for _, p := range e.Props {
		if p.Spread {
			m.errorAt(diagnostic.CodeUnlowerableExpression, e.Loc,
				"object spread is only supported into hoisted record types")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s = %s", escapeIdent(p.Name), m.expr(p.Value)))
	}
	return fmt.Sprintf("new { %s }", strings.Join(parts, ", "))
}

func (m *moduleEmitter) memberAccess(e ir.Expr) string {
	// Element access carries its index in Args with an empty Name.
	if e.Name == "" && len(e.Args) == 1 {
		return fmt.Sprintf("%s[%s]", m.expr(*e.Object), m.expr(e.Args[0]))
	}

	obj := m.expr(*e.Object)
	name := e.Name
	if e.Clr != nil && e.Clr.Member != "" {
		name = e.Clr.Member
		if e.Object.Kind == ir.ExprIdentifier && e.Object.Clr != nil {
			// Static access through a bound type.
			if ns, ok := splitNamespace(e.Clr.QualifiedType); ok {
				m.use(ns)
				obj = stripArity(e.Clr.QualifiedType[len(ns)+1:])
			}
		}
	}
	if e.Name == "length" && e.Object.Type.Kind == ir.TypeArray {
		name = "Length"
	}
	if e.Name == "length" && e.Object.Type.Name == ir.PrimString {
		name = "Length"
	}
	op := "."
	if e.Optional {
		op = "?."
	}
	return obj + op + escapeIdent(name)
}

func (m *moduleEmitter) call(e ir.Expr) string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		rendered := m.expr(a)
		if i < len(e.ArgModifiers) && e.ArgModifiers[i] != "" {
			rendered = e.ArgModifiers[i] + " " + rendered
		}
		args[i] = rendered
	}

	callee := e.Object

	// Monomorphised call sites reference the specialisation.
	if e.SpecKey != "" {
		if name, ok := m.specNames[e.SpecKey]; ok {
			return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
		}
	}

	// Structural-constraint call sites wrap their arguments.
	if callee.Kind == ir.ExprIdentifier {
		if wrapped, ok := m.wrapStructuralArgs(callee.Name, e, args); ok {
			return wrapped
		}
	}

	if recv, ok := isBuiltinCall(callee); ok {
		return m.emitBuiltinCall(recv, callee, args)
	}

	target := m.expr(*callee)
	if len(e.TypeArgs) > 0 && e.SpecKey == "" && callee.Kind == ir.ExprMemberAccess && callee.Clr != nil {
		targs := make([]string, len(e.TypeArgs))
		for i, t := range e.TypeArgs {
			targs[i] = m.typeName(t)
		}
		target += "<" + strings.Join(targs, ", ") + ">"
	}
	return fmt.Sprintf("%s(%s)", target, strings.Join(args, ", "))
}

// wrapStructuralArgs rewrites a call to a structural generic: arguments
// for structurally constrained parameters are wrapped in the synthesised
// adapter.
func (m *moduleEmitter) wrapStructuralArgs(name string, e ir.Expr, args []string) (string, bool) {
	adapter := m.adapterFor(name)
	if adapter == nil {
		return "", false
	}
	wrapped := make([]string, len(args))
	for i, a := range args {
		wrapped[i] = fmt.Sprintf("new %s(%s)", adapter.WrapperName, a)
	}
	_ = e
	return fmt.Sprintf("%s(%s)", name, strings.Join(wrapped, ", ")), true
}

func (m *moduleEmitter) newExpr(e ir.Expr) string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = m.expr(a)
	}
	name := ""
	switch {
	case e.Object.Kind == ir.ExprIdentifier && e.Object.Name == "Error":
		m.use("System")
		name = "Exception"
	case e.Object.Clr != nil:
		qualified := e.Object.Clr.QualifiedType
		if ns, ok := splitNamespace(qualified); ok {
			m.use(ns)
			qualified = qualified[len(ns)+1:]
		}
		name = stripArity(qualified)
	default:
		name = m.expr(*e.Object)
	}
	if len(e.TypeArgs) > 0 {
		targs := make([]string, len(e.TypeArgs))
		for i, t := range e.TypeArgs {
			targs[i] = m.typeName(t)
		}
		name += "<" + strings.Join(targs, ", ") + ">"
	}
	return fmt.Sprintf("new %s(%s)", name, strings.Join(args, ", "))
}

func (m *moduleEmitter) unary(e ir.Expr) string {
	operand := m.expr(*e.Object)
	switch e.Name {
	case "!":
		return "!" + maybeParen(operand)
	case "-", "+", "~":
		return e.Name + maybeParen(operand)
	case "typeof":
		// typeof only survives validation inside erased overload
		// families; anything else is unlowerable.
		m.errorAt(diagnostic.CodeUnlowerableExpression, e.Loc, "typeof has no runtime lowering")
		return "default"
	default:
		return e.Name + operand
	}
}

// binary lowers operators, giving strict equality value semantics on
// primitives and reference semantics elsewhere.
func (m *moduleEmitter) binary(e ir.Expr) string {
	l, r := m.expr(*e.Left), m.expr(*e.Right)
	switch e.Name {
	case "===":
		if isReferenceComparison(e) {
			return fmt.Sprintf("ReferenceEquals(%s, %s)", l, r)
		}
		return fmt.Sprintf("%s == %s", l, r)
	case "!==":
		if isReferenceComparison(e) {
			return fmt.Sprintf("!ReferenceEquals(%s, %s)", l, r)
		}
		return fmt.Sprintf("%s != %s", l, r)
	case "==", "!=":
		// Loose equality never survives the subset gate with coercion
		// semantics; value comparison is the defined meaning.
		op := e.Name
		return fmt.Sprintf("%s %s %s", l, op, r)
	case "instanceof":
		return fmt.Sprintf("%s is %s", l, r)
	case "in":
		return fmt.Sprintf("%s.ContainsKey(%s)", r, l)
	default:
		return fmt.Sprintf("%s %s %s", l, e.Name, r)
	}
}

// isReferenceComparison reports whether strict equality compares
// references: both sides non-primitive, non-null.
func isReferenceComparison(e ir.Expr) bool {
	prim := func(t ir.Type) bool {
		return t.Kind == ir.TypePrimitive || t.Kind == ir.TypeLiteral || t.Kind == ir.TypeNull
	}
	return !prim(e.Left.Type) && !prim(e.Right.Type)
}

func (m *moduleEmitter) template(e ir.Expr) string {
	var sb strings.Builder
	sb.WriteString("$\"")
	for i, quasi := range e.Quasis {
		sb.WriteString(escapeInterpolated(quasi))
		if i < len(e.Args) {
			sb.WriteString("{")
			sb.WriteString(m.expr(e.Args[i]))
			sb.WriteString("}")
		}
	}
	sb.WriteString("\"")
	return sb.String()
}

func (m *moduleEmitter) lambda(e ir.Expr) string {
	fn := e.Fn
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s %s", m.typeName(p.Type), escapeIdent(p.Name))
	}
	prefix := ""
	if fn.IsAsync {
		prefix = "async "
	}
	head := fmt.Sprintf("%s(%s) =>", prefix, strings.Join(params, ", "))
	if fn.ExprBody != nil {
		return fmt.Sprintf("%s %s", head, m.expr(*fn.ExprBody))
	}
	body := NewWriter()
	body.Indent()
	saved := m.w
	m.w = body
	for _, s := range fn.Body {
		m.stmt(s)
	}
	m.w = saved
	return fmt.Sprintf("%s\n{\n%s}", head, body.String())
}

// intrinsic expands the compile-time intrinsics to CLR constructs. A
// residual istype is a specialisation leak and is a hard error.
func (m *moduleEmitter) intrinsic(e ir.Expr) string {
	typeArg := ""
	if len(e.TypeArgs) > 0 {
		typeArg = m.typeName(e.TypeArgs[0])
	}
	switch e.Name {
	case "sizeof":
		return fmt.Sprintf("sizeof(%s)", typeArg)
	case "nameof":
		if len(e.Args) == 1 {
			return fmt.Sprintf("nameof(%s)", m.expr(e.Args[0]))
		}
		return fmt.Sprintf("nameof(%s)", typeArg)
	case "defaultof":
		return fmt.Sprintf("default(%s)", typeArg)
	case "stackalloc":
		if len(e.Args) == 1 {
			return fmt.Sprintf("stackalloc %s[%s]", typeArg, m.expr(e.Args[0]))
		}
		return fmt.Sprintf("stackalloc %s[0]", typeArg)
	case "trycast":
		if len(e.Args) == 1 {
			return fmt.Sprintf("%s as %s", m.expr(e.Args[0]), typeArg)
		}
	case "asinterface":
		if len(e.Args) == 1 {
			return fmt.Sprintf("(%s)%s", typeArg, m.expr(e.Args[0]))
		}
	case "thisarg":
		return "this"
	case "ptr":
		if len(e.Args) == 1 {
			return fmt.Sprintf("&%s", m.expr(e.Args[0]))
		}
	case "istype":
		m.errorAt(diagnostic.CodeResidualIntrinsic, e.Loc,
			"istype survived overload specialisation and cannot be emitted")
		return "default"
	}
	m.errorAt(diagnostic.CodeUnlowerableExpression, e.Loc,
		fmt.Sprintf("intrinsic %q has no lowering for this argument shape", e.Name))
	return "default"
}

func maybeParen(s string) string {
	if strings.ContainsAny(s, " ") {
		return "(" + s + ")"
	}
	return s
}

// quoteCSharp renders a C# string literal.
func quoteCSharp(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// escapeInterpolated escapes a template quasi for an interpolated string.
func escapeInterpolated(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "{", "{{")
	s = strings.ReplaceAll(s, "}", "}}")
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// csharpKeywords need @-escaping when used as identifiers.
var csharpKeywords = map[string]bool{
	"abstract": true, "as": true, "base": true, "bool": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true, "checked": true,
	"class": true, "const": true, "continue": true, "decimal": true,
	"default": true, "delegate": true, "do": true, "double": true,
	"else": true, "enum": true, "event": true, "explicit": true,
	"extern": true, "false": true, "finally": true, "fixed": true,
	"float": true, "for": true, "foreach": true, "goto": true, "if": true,
	"implicit": true, "in": true, "int": true, "interface": true,
	"internal": true, "is": true, "lock": true, "long": true,
	"namespace": true, "new": true, "null": true, "object": true,
	"operator": true, "out": true, "override": true, "params": true,
	"private": true, "protected": true, "public": true, "readonly": true,
	"ref": true, "return": true, "sbyte": true, "sealed": true,
	"short": true, "sizeof": true, "stackalloc": true, "static": true,
	"string": true, "struct": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "typeof": true, "uint": true,
	"ulong": true, "unchecked": true, "unsafe": true, "ushort": true,
	"using": true, "virtual": true, "void": true, "volatile": true,
	"while": true,
}

func escapeIdent(name string) string {
	if csharpKeywords[name] {
		return "@" + name
	}
	return name
}
