// Package validator enforces the ESM rules and the supported TypeScript
// feature subset on the resolved module graph. All checks are pure; the
// validator collects every violation it can find before returning.
package validator

import (
	"fmt"
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	shimscanner "github.com/microsoft/typescript-go/shim/scanner"

	"github.com/tsoniclang/tsonic/internal/diagnostic"
)

// markerInterface is the interface name reserved for value-type tagging.
// A class may spell `implements` against it; every other interface must be
// consumed via `extends` because interfaces lower to classes.
const markerInterface = "Struct"

// Validator walks each local module's AST.
type Validator struct {
	checker *shimchecker.Checker
	diags   *diagnostic.Collector
	file    *ast.SourceFile
}

// New creates a validator reporting into diags.
func New(checker *shimchecker.Checker, diags *diagnostic.Collector) *Validator {
	return &Validator{checker: checker, diags: diags}
}

// CheckFile runs every feature-subset check over one source file.
func (v *Validator) CheckFile(sf *ast.SourceFile) {
	v.file = sf
	for _, stmt := range sf.Statements.Nodes {
		v.checkTopLevel(stmt)
	}
	v.walk(sf.AsNode())
}

func (v *Validator) errorAt(code diagnostic.Code, node *ast.Node, message string) {
	line, col := shimscanner.GetECMALineAndCharacterOfPosition(v.file, node.Pos())
	v.diags.Error(code, v.file.FileName(), line+1, col+1, message)
}

// checkTopLevel handles statement-shaped rules that only apply at module
// scope.
func (v *Validator) checkTopLevel(stmt *ast.Node) {
	switch stmt.Kind {
	case ast.KindExportAssignment:
		v.errorAt(diagnostic.CodeDefaultExport, stmt,
			"default exports are not supported; use a named export")
	case ast.KindExportDeclaration:
		decl := stmt.AsExportDeclaration()
		if decl.ExportClause == nil {
			v.errorAt(diagnostic.CodeExportStar, stmt,
				"export * is not supported; re-export names explicitly")
		}
	case ast.KindModuleDeclaration:
		if !isAmbient(stmt) {
			v.errorAt(diagnostic.CodeNamespaceDecl, stmt,
				"namespace declarations are not supported; use module files")
		}
	}
}

// walk applies the expression- and declaration-level rules everywhere.
func (v *Validator) walk(node *ast.Node) {
	switch node.Kind {
	case ast.KindDecorator:
		v.errorAt(diagnostic.CodeDecorator, node, "decorators are not supported")

	case ast.KindCallExpression:
		call := node.AsCallExpression()
		if call.Expression.Kind == ast.KindImportKeyword {
			v.errorAt(diagnostic.CodeDynamicImport, node,
				"dynamic import() is not supported; imports must be static")
		}
		v.checkPromiseCombinator(node, call)

	case ast.KindIndexSignature:
		v.checkIndexSignature(node)

	case ast.KindClassDeclaration:
		v.checkImplementsClauses(node)

	case ast.KindFunctionDeclaration:
		decl := node.AsFunctionDeclaration()
		v.checkNullableGenerics(node, decl.TypeParameters, decl.Parameters, decl.Type)

	case ast.KindMethodDeclaration:
		decl := node.AsMethodDeclaration()
		v.checkNullableGenerics(node, decl.TypeParameters, decl.Parameters, decl.Type)

	case ast.KindVariableDeclaration:
		v.checkEmptyArrayLiteral(node)
	}

	node.ForEachChild(func(child *ast.Node) bool {
		v.walk(child)
		return false
	})
}

// checkPromiseCombinator rejects .then/.catch/.finally on promises; the
// subset requires async/await.
func (v *Validator) checkPromiseCombinator(node *ast.Node, call *ast.CallExpression) {
	if call.Expression.Kind != ast.KindPropertyAccessExpression {
		return
	}
	pa := call.Expression.AsPropertyAccessExpression()
	name := pa.Name().Text()
	switch name {
	case "then", "catch", "finally":
	default:
		return
	}
	recv := v.checker.GetTypeAtLocation(pa.Expression)
	if recv == nil {
		return
	}
	if strings.HasPrefix(v.checker.TypeToString(recv), "Promise<") {
		v.errorAt(diagnostic.CodePromiseCombinator, node,
			fmt.Sprintf("Promise.%s is not supported; use await", name))
	}
}

// checkIndexSignature rejects symbol-keyed index signatures, which have no
// lowering in the target type system.
func (v *Validator) checkIndexSignature(node *ast.Node) {
	sig := node.AsIndexSignatureDeclaration()
	for _, p := range sig.Parameters.Nodes {
		pt := p.AsParameterDeclaration().Type
		if pt != nil && pt.Kind == ast.KindSymbolKeyword {
			v.errorAt(diagnostic.CodeSymbolIndexSignature, node,
				"symbol-keyed index signatures are not supported")
		}
	}
}

// checkImplementsClauses enforces that interfaces are consumed via
// extends: interfaces lower to classes, so a true implementation spelled
// `implements` would silently drop the inherited bodies. The value-type
// marker interface is exempt.
func (v *Validator) checkImplementsClauses(node *ast.Node) {
	decl := node.AsClassDeclaration()
	if decl.HeritageClauses == nil {
		return
	}
	for _, clause := range decl.HeritageClauses.Nodes {
		hc := clause.AsHeritageClause()
		if hc.Token != ast.KindImplementsKeyword {
			continue
		}
		for _, t := range hc.Types.Nodes {
			name := heritageName(t)
			if name == markerInterface {
				continue
			}
			v.errorAt(diagnostic.CodeImplementsNonMarker, t,
				fmt.Sprintf("implements %q is not supported: interfaces are lowered to classes, spell this `extends %s`", name, name))
		}
	}
}

func heritageName(t *ast.Node) string {
	expr := t.AsExpressionWithTypeArguments().Expression
	switch expr.Kind {
	case ast.KindIdentifier:
		return expr.AsIdentifier().Text
	case ast.KindPropertyAccessExpression:
		return expr.AsPropertyAccessExpression().Name().Text()
	default:
		return ""
	}
}

// checkNullableGenerics reports T | null over an unconstrained type
// parameter: the target nullable model needs to know whether T is a value
// or reference type.
func (v *Validator) checkNullableGenerics(node *ast.Node, typeParams *ast.NodeList, params *ast.NodeList, returnType *ast.Node) {
	if typeParams == nil {
		return
	}
	unconstrained := map[string]bool{}
	for _, tp := range typeParams.Nodes {
		d := tp.AsTypeParameter()
		if d.Constraint == nil && d.Name() != nil {
			unconstrained[d.Name().Text()] = true
		}
	}
	if len(unconstrained) == 0 {
		return
	}

	check := func(t *ast.Node) {
		if t == nil {
			return
		}
		v.findNullableParamUse(t, unconstrained)
	}
	if params != nil {
		for _, p := range params.Nodes {
			check(p.AsParameterDeclaration().Type)
		}
	}
	check(returnType)
}

func (v *Validator) findNullableParamUse(t *ast.Node, unconstrained map[string]bool) {
	if t.Kind == ast.KindUnionType {
		union := t.AsUnionTypeNode()
		var paramRef *ast.Node
		hasNull := false
		for _, member := range union.Types.Nodes {
			switch {
			case isNullOrUndefinedType(member):
				hasNull = true
			case member.Kind == ast.KindTypeReference:
				ref := member.AsTypeReference()
				if ref.TypeName.Kind == ast.KindIdentifier && unconstrained[ref.TypeName.AsIdentifier().Text] {
					paramRef = member
				}
			}
		}
		if hasNull && paramRef != nil {
			name := paramRef.AsTypeReference().TypeName.AsIdentifier().Text
			v.errorAt(diagnostic.CodeNullableGenericParam, t,
				fmt.Sprintf("%s | null cannot be represented: unconstrained type parameter %s may already be nullable; constrain %s or remove the null", name, name, name))
			return
		}
	}
	t.ForEachChild(func(child *ast.Node) bool {
		v.findNullableParamUse(child, unconstrained)
		return false
	})
}

func isNullOrUndefinedType(t *ast.Node) bool {
	if t.Kind == ast.KindUndefinedKeyword {
		return true
	}
	if t.Kind == ast.KindLiteralType {
		return t.AsLiteralTypeNode().Literal.Kind == ast.KindNullKeyword
	}
	return false
}

// checkEmptyArrayLiteral rejects `const xs = []` with no annotation: there
// is no element type to lower the array to.
func (v *Validator) checkEmptyArrayLiteral(node *ast.Node) {
	decl := node.AsVariableDeclaration()
	if decl.Type != nil || decl.Initializer == nil {
		return
	}
	if decl.Initializer.Kind != ast.KindArrayLiteralExpression {
		return
	}
	if len(decl.Initializer.AsArrayLiteralExpression().Elements.Nodes) == 0 {
		v.errorAt(diagnostic.CodeEmptyArrayNoAnnotation, node,
			"empty array literal needs a type annotation")
	}
}

// isAmbient reports whether a declaration carries the declare modifier.
func isAmbient(node *ast.Node) bool {
	mods := node.Modifiers()
	if mods == nil {
		return false
	}
	for _, m := range mods.Nodes {
		if m.Kind == ast.KindDeclareKeyword {
			return true
		}
	}
	return false
}
