// Package irbuild lowers the typed TypeScript AST into the IR, querying
// the external checker for types, symbols and signatures and decorating
// CLR-bound names from the registries.
package irbuild

import (
	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	shimscanner "github.com/microsoft/typescript-go/shim/scanner"

	"github.com/tsoniclang/tsonic/internal/bindings"
	"github.com/tsoniclang/tsonic/internal/clrmeta"
	"github.com/tsoniclang/tsonic/internal/diagnostic"
	"github.com/tsoniclang/tsonic/internal/ir"
	"github.com/tsoniclang/tsonic/internal/resolver"
)

// maxTypeDepth bounds recursive type lowering. Deeply self-expanding
// types fall back to object rather than overflowing the stack.
const maxTypeDepth = 24

// Builder lowers one module at a time. The builder is multi-error: it
// records a diagnostic and keeps lowering so one run reports as much as
// possible.
type Builder struct {
	checker  *shimchecker.Checker
	bindings *bindings.Registry
	metadata *clrmeta.Registry
	diags    *diagnostic.Collector

	file   *ast.SourceFile
	module *ir.Module

	// clrScope maps local identifier names to their binding alias path,
	// established by dotnet-namespace and bound-external imports.
	clrScope map[string]clrImport

	// typeParams holds the generic parameter names in scope while
	// lowering a declaration body.
	typeParams map[string]bool

	// narrowed holds identifiers proven non-null on the current
	// control-flow path.
	narrowed map[string]bool

	// locals maps in-scope variable and parameter names to their IR
	// types, so receivers of member accesses know what they are.
	locals map[string]ir.Type

	// specs accumulates specialisation requests found at call sites.
	specs []ir.SpecRequest

	// genericDecls names the local generic functions of the program, so
	// call sites know which targets are specialisable.
	genericDecls map[string]string // name → declaring module path

	depth int
}

// clrImport is a CLR name brought into scope by an import.
type clrImport struct {
	// aliasPath is the bindings alias path ("System.Console") or the
	// dotnet namespace itself for namespace imports.
	aliasPath string
	// namespaceOnly marks `import * as sys from "System"` style
	// bindings, where members select types rather than type members.
	namespaceOnly bool
	entry         bindings.Entry
	hasEntry      bool
}

// New creates a builder over one program's checker and registries.
func New(checker *shimchecker.Checker, bindReg *bindings.Registry, metaReg *clrmeta.Registry, diags *diagnostic.Collector) *Builder {
	return &Builder{
		checker:      checker,
		bindings:     bindReg,
		metadata:     metaReg,
		diags:        diags,
		genericDecls: make(map[string]string),
	}
}

// RegisterGenerics records the generic declarations of a module before
// any module body is lowered, so cross-module call sites can request
// specialisations.
func (b *Builder) RegisterGenerics(sf *ast.SourceFile) {
	for _, stmt := range sf.Statements.Nodes {
		if stmt.Kind != ast.KindFunctionDeclaration {
			continue
		}
		decl := stmt.AsFunctionDeclaration()
		if decl.Name() != nil && decl.TypeParameters != nil && len(decl.TypeParameters.Nodes) > 0 {
			b.genericDecls[decl.Name().Text()] = sf.FileName()
		}
	}
}

// BuildModule lowers one resolved local module.
func (b *Builder) BuildModule(sf *ast.SourceFile, resolved *resolver.ResolvedModule, imports []*resolver.ResolvedModule, isEntry bool) *ir.Module {
	b.file = sf
	b.clrScope = make(map[string]clrImport)
	b.typeParams = make(map[string]bool)
	b.narrowed = make(map[string]bool)
	b.locals = make(map[string]ir.Type)
	b.module = &ir.Module{
		FilePath:          sf.FileName(),
		Namespace:         resolved.Namespace,
		ContainerClass:    resolved.ContainerClass,
		IsStaticContainer: resolved.IsStaticContainer,
		IsEntryPoint:      isEntry,
	}

	b.lowerImports(sf, imports)

	for _, stmt := range sf.Statements.Nodes {
		if stmt.Kind == ast.KindImportDeclaration {
			continue
		}
		if s, ok := b.lowerStatement(stmt); ok {
			b.module.Body = append(b.module.Body, s)
			b.recordExport(stmt, s)
		}
	}

	return b.module
}

// Specs returns the specialisation requests collected so far across all
// built modules.
func (b *Builder) Specs() []ir.SpecRequest {
	return b.specs
}

// loc converts a node position into a diagnostic location.
func (b *Builder) loc(node *ast.Node) ir.Loc {
	line, col := shimscanner.GetECMALineAndCharacterOfPosition(b.file, node.Pos())
	return ir.Loc{File: b.file.FileName(), Line: line + 1, Column: col + 1}
}

func (b *Builder) errorAt(code diagnostic.Code, node *ast.Node, message string) {
	l := b.loc(node)
	b.diags.Error(code, l.File, l.Line, l.Column, message)
}

// lowerImports records the module's imports in IR form and brings
// CLR-bound names into scope.
func (b *Builder) lowerImports(sf *ast.SourceFile, imports []*resolver.ResolvedModule) {
	i := 0
	for _, stmt := range sf.Statements.Nodes {
		if stmt.Kind != ast.KindImportDeclaration {
			continue
		}
		if i >= len(imports) {
			break
		}
		resolvedImport := imports[i]
		i++

		decl := stmt.AsImportDeclaration()
		imp := ir.Import{Specifier: resolvedImport.Specifier}
		switch resolvedImport.Kind {
		case resolver.KindLocalSource:
			imp.Kind = ir.ImportLocal
			imp.ResolvedPath = resolvedImport.Path
		case resolver.KindDotnetNamespace:
			imp.Kind = ir.ImportNamespace
			imp.Qualified = resolvedImport.Path
		case resolver.KindBoundExternal:
			imp.Kind = ir.ImportBound
			imp.Qualified = resolvedImport.Path
		}

		if decl.ImportClause != nil {
			clause := decl.ImportClause.AsImportClause()
			b.bindImportClause(clause, resolvedImport, &imp)
		}
		b.module.Imports = append(b.module.Imports, imp)
	}
}

// bindImportClause connects imported local names to CLR alias paths.
func (b *Builder) bindImportClause(clause *ast.ImportClause, resolved *resolver.ResolvedModule, imp *ir.Import) {
	named := clause.NamedBindings
	if named == nil {
		return
	}
	switch named.Kind {
	case ast.KindNamespaceImport:
		local := named.AsNamespaceImport().Name().Text()
		imp.NamespaceAlias = local
		if resolved.Kind == resolver.KindDotnetNamespace {
			b.clrScope[local] = clrImport{aliasPath: resolved.Path, namespaceOnly: true}
		} else if resolved.Kind == resolver.KindBoundExternal {
			e, _ := b.bindings.LookupBare(resolved.Specifier)
			b.clrScope[local] = clrImport{aliasPath: resolved.Specifier, entry: e, hasEntry: true}
		}
	case ast.KindNamedImports:
		for _, spec := range named.AsNamedImports().Elements.Nodes {
			is := spec.AsImportSpecifier()
			local := is.Name().Text()
			imported := local
			if is.PropertyName != nil {
				imported = is.PropertyName.Text()
			}
			imp.Names = append(imp.Names, local)
			if resolved.Kind != resolver.KindDotnetNamespace {
				continue
			}
			aliasPath := resolved.Path + "." + imported
			ci := clrImport{aliasPath: aliasPath}
			if e, ok := b.bindings.LookupType(aliasPath); ok {
				ci.entry = e
				ci.hasEntry = true
			} else if e, ok := b.bindings.LookupNamespace(aliasPath); ok {
				ci.entry = e
				ci.hasEntry = true
				ci.namespaceOnly = true
			}
			b.clrScope[local] = ci
		}
	}
}

// recordExport appends an export record for an exported declaration.
func (b *Builder) recordExport(node *ast.Node, s ir.Stmt) {
	if !s.Exported {
		return
	}
	switch s.Kind {
	case ir.StmtFuncDecl:
		b.module.Exports = append(b.module.Exports, ir.Export{Name: s.Func.Name, Kind: "function"})
	case ir.StmtClassDecl:
		b.module.Exports = append(b.module.Exports, ir.Export{Name: s.Class.Name, Kind: "class"})
	case ir.StmtInterfaceDecl:
		b.module.Exports = append(b.module.Exports, ir.Export{Name: s.Iface.Name, Kind: "interface"})
	case ir.StmtEnumDecl:
		b.module.Exports = append(b.module.Exports, ir.Export{Name: s.Enum.Name, Kind: "enum"})
	case ir.StmtTypeAlias:
		b.module.Exports = append(b.module.Exports, ir.Export{Name: s.Alias.Name, Kind: "type"})
	case ir.StmtVarDecl:
		kind := "let"
		if s.Const {
			kind = "const"
		}
		b.module.Exports = append(b.module.Exports, ir.Export{Name: s.VarName, Kind: kind})
	}
	_ = node
}

// isExported reports whether a statement carries the export modifier.
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
