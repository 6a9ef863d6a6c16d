package irbuild

import (
	"github.com/microsoft/typescript-go/shim/ast"

	"github.com/tsoniclang/tsonic/internal/ir"
)

// generatorInfo derives the lowering schema of a function* declaration: a
// generator is bidirectional iff any yield's value is consumed, which is
// what forces the exchange-object lowering.
func (b *Builder) generatorInfo(decl *ast.FunctionDeclaration, fn *ir.FuncDecl) *ir.GeneratorInfo {
	return b.generatorInfoFromType(decl.Type, fn.IsAsync, decl.Body)
}

func (b *Builder) generatorInfoFromType(typeNode *ast.Node, isAsync bool, body *ast.Node) *ir.GeneratorInfo {
	info := &ir.GeneratorInfo{
		IsAsync: isAsync,
		Yield:   ir.NewPrimitive(ir.PrimObject),
		Send:    ir.Void,
		Result:  ir.Void,
	}

	// Generator<Y, R, N> / AsyncGenerator<Y, R, N> annotations supply
	// the three type slots.
	if typeNode != nil && typeNode.Kind == ast.KindTypeReference {
		ref := typeNode.AsTypeReference()
		name := typeNameText(ref.TypeName)
		if (name == "Generator" || name == "AsyncGenerator" || name == "IterableIterator") && ref.TypeArguments != nil {
			args := ref.TypeArguments.Nodes
			if len(args) > 0 {
				info.Yield = b.lowerTypeNode(args[0])
			}
			if len(args) > 1 {
				info.Result = b.lowerTypeNode(args[1])
			}
			if len(args) > 2 {
				info.Send = b.lowerTypeNode(args[2])
			}
		}
		if name == "AsyncGenerator" {
			info.IsAsync = true
		}
	}

	info.Bidirectional = body != nil && yieldValueConsumed(body)
	return info
}

// yieldValueConsumed walks a generator body looking for a yield whose
// value is used: any yield that is not the whole of an expression
// statement. Nested functions have their own yields and are skipped.
func yieldValueConsumed(node *ast.Node) bool {
	found := false
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		if found {
			return
		}
		switch n.Kind {
		case ast.KindFunctionDeclaration, ast.KindFunctionExpression, ast.KindArrowFunction:
			return
		case ast.KindExpressionStatement:
			inner := n.AsExpressionStatement().Expression
			if inner.Kind == ast.KindYieldExpression {
				// Discarded yield: keep walking its operand only.
				if ye := inner.AsYieldExpression(); ye.Expression != nil {
					walk(ye.Expression)
				}
				return
			}
		case ast.KindYieldExpression:
			found = true
			return
		}
		n.ForEachChild(func(child *ast.Node) bool {
			walk(child)
			return false
		})
	}
	walk(node)
	return found
}
