package resolver

import (
	"fmt"

	"github.com/microsoft/typescript-go/shim/ast"
	shimscanner "github.com/microsoft/typescript-go/shim/scanner"

	"github.com/tsoniclang/tsonic/internal/compiler"
)

// ProgramShapes adapts the front-end program into a ShapeFunc: the module
// summary is read straight off the typed AST.
func ProgramShapes(p *compiler.Program) ShapeFunc {
	return func(absPath string) (*ModuleShape, error) {
		sf := p.SourceFile(absPath)
		if sf == nil {
			return nil, fmt.Errorf("%s is not part of the program", absPath)
		}
		return shapeOf(sf), nil
	}
}

func shapeOf(sf *ast.SourceFile) *ModuleShape {
	shape := &ModuleShape{}
	for _, stmt := range sf.Statements.Nodes {
		switch stmt.Kind {
		case ast.KindImportDeclaration:
			decl := stmt.AsImportDeclaration()
			spec := decl.ModuleSpecifier
			if spec == nil || spec.Kind != ast.KindStringLiteral {
				continue
			}
			line, col := shimscanner.GetECMALineAndCharacterOfPosition(sf, stmt.Pos())
			shape.Imports = append(shape.Imports, ImportSite{
				Specifier: spec.AsStringLiteral().Text,
				Line:      line + 1,
				Column:    col + 1,
			})

		case ast.KindClassDeclaration:
			decl := stmt.AsClassDeclaration()
			if decl.Name() != nil {
				name := decl.Name().Text()
				shape.ClassNames = append(shape.ClassNames, name)
				if isExported(stmt) {
					shape.ExportedNames = append(shape.ExportedNames, name)
				}
			}

		case ast.KindFunctionDeclaration:
			decl := stmt.AsFunctionDeclaration()
			if decl.Name() != nil && isExported(stmt) {
				shape.ExportedNames = append(shape.ExportedNames, decl.Name().Text())
				shape.HasFuncOrValueExport = true
			}

		case ast.KindVariableStatement:
			if !isExported(stmt) {
				continue
			}
			decls := stmt.AsVariableStatement().DeclarationList.AsVariableDeclarationList().Declarations
			for _, d := range decls.Nodes {
				name := d.AsVariableDeclaration().Name()
				if name != nil && name.Kind == ast.KindIdentifier {
					shape.ExportedNames = append(shape.ExportedNames, name.Text())
					shape.HasFuncOrValueExport = true
				}
			}

		case ast.KindInterfaceDeclaration:
			decl := stmt.AsInterfaceDeclaration()
			if decl.Name() != nil && isExported(stmt) {
				shape.ExportedNames = append(shape.ExportedNames, decl.Name().Text())
			}

		case ast.KindEnumDeclaration:
			decl := stmt.AsEnumDeclaration()
			if decl.Name() != nil && isExported(stmt) {
				shape.ExportedNames = append(shape.ExportedNames, decl.Name().Text())
			}

		case ast.KindTypeAliasDeclaration:
			decl := stmt.AsTypeAliasDeclaration()
			if decl.Name() != nil && isExported(stmt) {
				shape.ExportedNames = append(shape.ExportedNames, decl.Name().Text())
			}
		}
	}
	return shape
}

// isExported reports whether a top-level statement carries the export
// modifier.
func isExported(node *ast.Node) bool {
	mods := node.Modifiers()
	if mods == nil {
		return false
	}
	for _, m := range mods.Nodes {
		if m.Kind == ast.KindExportKeyword {
			return true
		}
	}
	return false
}
