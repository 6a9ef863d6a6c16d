package irbuild

import (
	"fmt"

	"github.com/microsoft/typescript-go/shim/ast"

	"github.com/tsoniclang/tsonic/internal/diagnostic"
	"github.com/tsoniclang/tsonic/internal/ir"
)

// lowerStatement lowers one statement. The bool result is false for
// statements that produce no IR (ambient declarations, stray semicolons).
func (b *Builder) lowerStatement(node *ast.Node) (ir.Stmt, bool) {
	switch node.Kind {
	case ast.KindVariableStatement:
		return b.lowerVariableStatement(node)
	case ast.KindFunctionDeclaration:
		return b.lowerFunctionDeclaration(node)
	case ast.KindClassDeclaration:
		return b.lowerClassDeclaration(node)
	case ast.KindInterfaceDeclaration:
		return b.lowerInterfaceDeclaration(node)
	case ast.KindEnumDeclaration:
		return b.lowerEnumDeclaration(node)
	case ast.KindTypeAliasDeclaration:
		return b.lowerTypeAliasDeclaration(node)
	case ast.KindExpressionStatement:
		expr := b.lowerExpression(node.AsExpressionStatement().Expression)
		return ir.Stmt{Kind: ir.StmtExpr, Loc: b.loc(node), Expr: &expr}, true
	case ast.KindReturnStatement:
		s := ir.Stmt{Kind: ir.StmtReturn, Loc: b.loc(node)}
		if e := node.AsReturnStatement().Expression; e != nil {
			lowered := b.lowerExpression(e)
			s.Expr = &lowered
		}
		return s, true
	case ast.KindIfStatement:
		return b.lowerIfStatement(node)
	case ast.KindWhileStatement:
		w := node.AsWhileStatement()
		cond := b.lowerExpression(w.Expression)
		return ir.Stmt{Kind: ir.StmtWhile, Loc: b.loc(node), Cond: &cond, Body: b.lowerBody(w.Statement)}, true
	case ast.KindDoStatement:
		d := node.AsDoStatement()
		cond := b.lowerExpression(d.Expression)
		return ir.Stmt{Kind: ir.StmtDoWhile, Loc: b.loc(node), Cond: &cond, Body: b.lowerBody(d.Statement)}, true
	case ast.KindForStatement:
		return b.lowerForStatement(node)
	case ast.KindForOfStatement:
		return b.lowerForOfStatement(node)
	case ast.KindSwitchStatement:
		return b.lowerSwitchStatement(node)
	case ast.KindThrowStatement:
		e := b.lowerExpression(node.AsThrowStatement().Expression)
		return ir.Stmt{Kind: ir.StmtThrow, Loc: b.loc(node), Expr: &e}, true
	case ast.KindTryStatement:
		return b.lowerTryStatement(node)
	case ast.KindBlock:
		return ir.Stmt{Kind: ir.StmtBlock, Loc: b.loc(node), Body: b.lowerBody(node)}, true
	case ast.KindBreakStatement:
		return ir.Stmt{Kind: ir.StmtBreak, Loc: b.loc(node)}, true
	case ast.KindContinueStatement:
		return ir.Stmt{Kind: ir.StmtContinue, Loc: b.loc(node)}, true
	case ast.KindEmptyStatement:
		return ir.Stmt{}, false
	case ast.KindModuleDeclaration:
		// Ambient module declarations contribute types only; the
		// validator already rejected the non-ambient form.
		return ir.Stmt{}, false
	default:
		b.errorAt(diagnostic.CodeUnlowerableStatement, node,
			fmt.Sprintf("unsupported statement (kind %v)", node.Kind))
		return ir.Stmt{}, false
	}
}

// lowerBody flattens a statement or block into a statement list.
func (b *Builder) lowerBody(node *ast.Node) []ir.Stmt {
	if node == nil {
		return nil
	}
	var stmts []ir.Stmt
	if node.Kind == ast.KindBlock {
		for _, s := range node.AsBlock().Statements.Nodes {
			if lowered, ok := b.lowerStatement(s); ok {
				stmts = append(stmts, lowered)
			}
		}
		return stmts
	}
	if lowered, ok := b.lowerStatement(node); ok {
		stmts = append(stmts, lowered)
	}
	return stmts
}

func (b *Builder) lowerVariableStatement(node *ast.Node) (ir.Stmt, bool) {
	stmt := node.AsVariableStatement()
	list := stmt.DeclarationList.AsVariableDeclarationList()
	isConst := list.Flags&ast.NodeFlagsConst != 0

	// Multi-declarator statements lower to a block of single
	// declarations so the emitter never needs comma declarators.
	decls := list.Declarations.Nodes
	exported := isExported(node)
	if len(decls) == 1 {
		return b.lowerVariableDeclaration(decls[0], isConst, exported, node), true
	}
	out := ir.Stmt{Kind: ir.StmtBlock, Loc: b.loc(node)}
	for _, d := range decls {
		out.Body = append(out.Body, b.lowerVariableDeclaration(d, isConst, exported, node))
	}
	return out, true
}

func (b *Builder) lowerVariableDeclaration(node *ast.Node, isConst, exported bool, parent *ast.Node) ir.Stmt {
	decl := node.AsVariableDeclaration()
	s := ir.Stmt{
		Kind:     ir.StmtVarDecl,
		Loc:      b.loc(node),
		Const:    isConst,
		Exported: exported,
	}
	if decl.Name() != nil {
		s.VarName = decl.Name().Text()
	}
	if decl.Initializer != nil {
		init := b.lowerExpression(decl.Initializer)
		s.Init = &init
	}
	if decl.Type != nil {
		s.VarType = b.lowerTypeNode(decl.Type)
	} else if s.Init != nil {
		s.VarType = s.Init.Type
	} else {
		s.VarType = ir.Any
	}
	if s.VarName != "" {
		b.locals[s.VarName] = s.VarType
	}
	return s
}

func (b *Builder) lowerFunctionDeclaration(node *ast.Node) (ir.Stmt, bool) {
	decl := node.AsFunctionDeclaration()
	if decl.Body == nil {
		// Ambient or overload signature: overload bodies are selected
		// during specialisation, signatures themselves emit nothing.
		return ir.Stmt{}, false
	}

	fn := &ir.FuncDecl{IsAsync: hasModifier(node, ast.KindAsyncKeyword)}
	if decl.Name() != nil {
		fn.Name = decl.Name().Text()
	}

	restoreParams := b.pushTypeParams(decl.TypeParameters)
	defer restoreParams()
	fn.TypeParams = b.lowerTypeParameters(decl.TypeParameters)
	fn.Params = b.lowerParameters(decl.Parameters)
	fn.Return = b.lowerReturnType(decl.Type, fn.IsAsync)

	if decl.AsteriskToken != nil {
		fn.Generator = b.generatorInfo(decl, fn)
	}

	restoreLocals := b.pushLocals(fn.Params)
	fn.Body = b.lowerBody(decl.Body)
	restoreLocals()

	return ir.Stmt{
		Kind:     ir.StmtFuncDecl,
		Loc:      b.loc(node),
		Exported: isExported(node),
		Func:     fn,
	}, true
}

// lowerReturnType unwraps Promise<T> for async functions; the emitter
// re-wraps as Task<T>.
func (b *Builder) lowerReturnType(t *ast.Node, isAsync bool) ir.Type {
	if t == nil {
		return ir.Void
	}
	lowered := b.lowerTypeNode(t)
	if isAsync && lowered.Kind == ir.TypeReference && lowered.Name == "Promise" {
		if len(lowered.TypeArgs) == 1 {
			return lowered.TypeArgs[0]
		}
		return ir.Void
	}
	return lowered
}

func (b *Builder) lowerTypeParameters(list *ast.NodeList) []ir.TypeParamDecl {
	if list == nil {
		return nil
	}
	out := make([]ir.TypeParamDecl, 0, len(list.Nodes))
	for _, tp := range list.Nodes {
		d := tp.AsTypeParameter()
		param := ir.TypeParamDecl{}
		if d.Name() != nil {
			param.Name = d.Name().Text()
		}
		if d.Constraint != nil {
			c := b.lowerTypeNode(d.Constraint)
			param.Constraint = &c
		}
		out = append(out, param)
	}
	return out
}

// pushLocals brings a function's parameters into the local type scope and
// returns a restorer that snapshots the enclosing scope.
func (b *Builder) pushLocals(params []ir.Param) func() {
	saved := make(map[string]ir.Type, len(b.locals))
	for k, v := range b.locals {
		saved[k] = v
	}
	for _, p := range params {
		b.locals[p.Name] = p.Type
	}
	return func() { b.locals = saved }
}

// pushTypeParams brings a declaration's type parameters into scope and
// returns the restorer.
func (b *Builder) pushTypeParams(list *ast.NodeList) func() {
	if list == nil {
		return func() {}
	}
	added := []string{}
	for _, tp := range list.Nodes {
		d := tp.AsTypeParameter()
		if d.Name() != nil {
			name := d.Name().Text()
			if !b.typeParams[name] {
				b.typeParams[name] = true
				added = append(added, name)
			}
		}
	}
	return func() {
		for _, name := range added {
			delete(b.typeParams, name)
		}
	}
}

func (b *Builder) lowerParameters(list *ast.NodeList) []ir.Param {
	if list == nil {
		return nil
	}
	out := make([]ir.Param, 0, len(list.Nodes))
	for _, p := range list.Nodes {
		decl := p.AsParameterDeclaration()
		param := ir.Param{
			Optional: decl.QuestionToken != nil,
			Rest:     decl.DotDotDotToken != nil,
		}
		if decl.Name() != nil {
			param.Name = decl.Name().Text()
		}
		param.Type = b.lowerTypeNode(decl.Type)
		if decl.Initializer != nil {
			d := b.lowerExpression(decl.Initializer)
			param.Default = &d
		}
		out = append(out, param)
	}
	return out
}

func (b *Builder) lowerClassDeclaration(node *ast.Node) (ir.Stmt, bool) {
	decl := node.AsClassDeclaration()
	cls := &ir.ClassDecl{IsAbstract: hasModifier(node, ast.KindAbstractKeyword)}
	if decl.Name() != nil {
		cls.Name = decl.Name().Text()
	}

	restoreParams := b.pushTypeParams(decl.TypeParameters)
	defer restoreParams()
	cls.TypeParams = b.lowerTypeParameters(decl.TypeParameters)

	if decl.HeritageClauses != nil {
		for _, clause := range decl.HeritageClauses.Nodes {
			hc := clause.AsHeritageClause()
			for _, t := range hc.Types.Nodes {
				lowered := b.lowerHeritageType(t)
				if hc.Token == ast.KindExtendsKeyword {
					ext := lowered
					cls.Extends = &ext
				} else {
					cls.Implements = append(cls.Implements, lowered)
				}
			}
		}
	}

	for _, member := range decl.Members.Nodes {
		switch member.Kind {
		case ast.KindPropertyDeclaration:
			pd := member.AsPropertyDeclaration()
			field := ir.FieldDecl{
				Static:   hasModifier(member, ast.KindStaticKeyword),
				Readonly: hasModifier(member, ast.KindReadonlyKeyword),
				Optional: pd.PostfixToken != nil,
			}
			if pd.Name() != nil {
				field.Name = pd.Name().Text()
			}
			field.Type = b.lowerTypeNode(pd.Type)
			if pd.Initializer != nil {
				init := b.lowerExpression(pd.Initializer)
				field.Init = &init
				if pd.Type == nil {
					field.Type = init.Type
				}
			}
			cls.Fields = append(cls.Fields, field)

		case ast.KindMethodDeclaration:
			md := member.AsMethodDeclaration()
			m := b.lowerMethod(member, md)
			cls.Methods = append(cls.Methods, m)

		case ast.KindConstructor:
			cd := member.AsConstructorDeclaration()
			ctor := ir.FuncDecl{Name: "constructor"}
			ctor.Params = b.lowerParameters(cd.Parameters)
			ctor.Body = b.lowerBody(cd.Body)
			cls.Ctors = append(cls.Ctors, ctor)
		}
	}

	return ir.Stmt{
		Kind:     ir.StmtClassDecl,
		Loc:      b.loc(node),
		Exported: isExported(node),
		Class:    cls,
	}, true
}

func (b *Builder) lowerHeritageType(t *ast.Node) ir.Type {
	ewta := t.AsExpressionWithTypeArguments()
	out := ir.Type{Kind: ir.TypeReference}
	switch ewta.Expression.Kind {
	case ast.KindIdentifier:
		out.Name = ewta.Expression.AsIdentifier().Text
	case ast.KindPropertyAccessExpression:
		pa := ewta.Expression.AsPropertyAccessExpression()
		out.Name = pa.Name().Text()
	}
	if ewta.TypeArguments != nil {
		for _, a := range ewta.TypeArguments.Nodes {
			out.TypeArgs = append(out.TypeArgs, b.lowerTypeNode(a))
		}
	}
	if ci, ok := b.clrScope[out.Name]; ok && ci.hasEntry && !ci.namespaceOnly {
		out.Clr = &ir.ClrRef{Assembly: ci.entry.Assembly, QualifiedType: ci.entry.QualifiedType}
	}
	return out
}

func (b *Builder) lowerMethod(node *ast.Node, md *ast.MethodDeclaration) ir.FuncDecl {
	fn := ir.FuncDecl{IsAsync: hasModifier(node, ast.KindAsyncKeyword)}
	if md.Name() != nil {
		fn.Name = md.Name().Text()
	}
	restoreParams := b.pushTypeParams(md.TypeParameters)
	defer restoreParams()
	fn.TypeParams = b.lowerTypeParameters(md.TypeParameters)
	fn.Params = b.lowerParameters(md.Parameters)
	fn.Return = b.lowerReturnType(md.Type, fn.IsAsync)
	if md.AsteriskToken != nil {
		fn.Generator = b.generatorInfoFromType(md.Type, fn.IsAsync, md.Body)
	}
	restoreLocals := b.pushLocals(fn.Params)
	fn.Body = b.lowerBody(md.Body)
	restoreLocals()
	return fn
}

func (b *Builder) lowerInterfaceDeclaration(node *ast.Node) (ir.Stmt, bool) {
	decl := node.AsInterfaceDeclaration()
	iface := &ir.InterfaceDecl{}
	if decl.Name() != nil {
		iface.Name = decl.Name().Text()
	}
	restoreParams := b.pushTypeParams(decl.TypeParameters)
	defer restoreParams()
	iface.TypeParams = b.lowerTypeParameters(decl.TypeParameters)

	if decl.HeritageClauses != nil {
		for _, clause := range decl.HeritageClauses.Nodes {
			for _, t := range clause.AsHeritageClause().Types.Nodes {
				iface.Extends = append(iface.Extends, b.lowerHeritageType(t))
			}
		}
	}

	for _, m := range decl.Members.Nodes {
		switch m.Kind {
		case ast.KindPropertySignature:
			ps := m.AsPropertySignatureDeclaration()
			if ps.Name() == nil {
				continue
			}
			iface.Members = append(iface.Members, ir.ObjectMember{
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
			iface.Members = append(iface.Members, ir.ObjectMember{
				Name:   ms.Name().Text(),
				Type:   ir.Type{Kind: ir.TypeFunction, Params: params, Return: &ret},
				Method: true,
			})
		}
	}

	return ir.Stmt{
		Kind:     ir.StmtInterfaceDecl,
		Loc:      b.loc(node),
		Exported: isExported(node),
		Iface:    iface,
	}, true
}

func (b *Builder) lowerEnumDeclaration(node *ast.Node) (ir.Stmt, bool) {
	decl := node.AsEnumDeclaration()
	en := &ir.EnumDecl{}
	if decl.Name() != nil {
		en.Name = decl.Name().Text()
	}
	for _, m := range decl.Members.Nodes {
		em := m.AsEnumMember()
		member := ir.EnumMember{}
		if em.Name() != nil {
			member.Name = em.Name().Text()
		}
		if em.Initializer != nil {
			member.Value = em.Initializer.Text()
		}
		en.Members = append(en.Members, member)
	}
	return ir.Stmt{
		Kind:     ir.StmtEnumDecl,
		Loc:      b.loc(node),
		Exported: isExported(node),
		Enum:     en,
	}, true
}

func (b *Builder) lowerTypeAliasDeclaration(node *ast.Node) (ir.Stmt, bool) {
	decl := node.AsTypeAliasDeclaration()
	alias := &ir.AliasDecl{}
	if decl.Name() != nil {
		alias.Name = decl.Name().Text()
	}
	restoreParams := b.pushTypeParams(decl.TypeParameters)
	defer restoreParams()
	alias.TypeParams = b.lowerTypeParameters(decl.TypeParameters)
	alias.Target = b.lowerTypeNode(decl.Type)
	return ir.Stmt{
		Kind:     ir.StmtTypeAlias,
		Loc:      b.loc(node),
		Exported: isExported(node),
		Alias:    alias,
	}, true
}

// lowerIfStatement also applies flow-sensitive null narrowing: inside the
// then-branch of `x !== null`, uses of x read the narrowed value.
func (b *Builder) lowerIfStatement(node *ast.Node) (ir.Stmt, bool) {
	stmt := node.AsIfStatement()
	cond := b.lowerExpression(stmt.Expression)
	s := ir.Stmt{Kind: ir.StmtIf, Loc: b.loc(node), Cond: &cond}

	narrowedName := nonNullTestTarget(stmt.Expression)
	if narrowedName != "" && !b.narrowed[narrowedName] {
		b.narrowed[narrowedName] = true
		s.Then = b.lowerBody(stmt.ThenStatement)
		delete(b.narrowed, narrowedName)
	} else {
		s.Then = b.lowerBody(stmt.ThenStatement)
	}
	if stmt.ElseStatement != nil {
		s.Else = b.lowerBody(stmt.ElseStatement)
	}
	return s, true
}

// nonNullTestTarget returns the identifier name of an `x !== null` test,
// or empty.
func nonNullTestTarget(cond *ast.Node) string {
	if cond.Kind != ast.KindBinaryExpression {
		return ""
	}
	bin := cond.AsBinaryExpression()
	if bin.OperatorToken.Kind != ast.KindExclamationEqualsEqualsToken {
		return ""
	}
	left, right := bin.Left, bin.Right
	if right.Kind == ast.KindIdentifier && left.Kind == ast.KindNullKeyword {
		left, right = right, left
	}
	if left.Kind == ast.KindIdentifier && right.Kind == ast.KindNullKeyword {
		return left.AsIdentifier().Text
	}
	return ""
}

func (b *Builder) lowerForStatement(node *ast.Node) (ir.Stmt, bool) {
	stmt := node.AsForStatement()
	s := ir.Stmt{Kind: ir.StmtFor, Loc: b.loc(node)}
	if stmt.Initializer != nil {
		if stmt.Initializer.Kind == ast.KindVariableDeclarationList {
			list := stmt.Initializer.AsVariableDeclarationList()
			isConst := list.Flags&ast.NodeFlagsConst != 0
			for _, d := range list.Declarations.Nodes {
				decl := b.lowerVariableDeclaration(d, isConst, false, node)
				s.Then = append(s.Then, decl)
			}
		} else {
			pre := b.lowerExpression(stmt.Initializer)
			s.Pre = &pre
		}
	}
	if stmt.Condition != nil {
		cond := b.lowerExpression(stmt.Condition)
		s.Cond = &cond
	}
	if stmt.Incrementor != nil {
		post := b.lowerExpression(stmt.Incrementor)
		s.Post = &post
	}
	s.Body = b.lowerBody(stmt.Statement)
	return s, true
}

func (b *Builder) lowerForOfStatement(node *ast.Node) (ir.Stmt, bool) {
	stmt := node.AsForInOrOfStatement()
	kind := ir.StmtForOf
	if stmt.AwaitModifier != nil {
		kind = ir.StmtForAwaitOf
	}
	s := ir.Stmt{Kind: kind, Loc: b.loc(node)}

	if stmt.Initializer.Kind == ast.KindVariableDeclarationList {
		decls := stmt.Initializer.AsVariableDeclarationList().Declarations.Nodes
		if len(decls) == 1 {
			d := decls[0].AsVariableDeclaration()
			if d.Name() != nil {
				s.IterVar = d.Name().Text()
			}
			s.IterType = b.lowerTypeNode(d.Type)
		}
	}
	iterable := b.lowerExpression(stmt.Expression)
	s.Iterable = &iterable
	if s.IterType.Kind == ir.TypeAny && iterable.Type.Kind == ir.TypeArray {
		s.IterType = *iterable.Type.Elem
	}
	s.Body = b.lowerBody(stmt.Statement)
	return s, true
}

func (b *Builder) lowerSwitchStatement(node *ast.Node) (ir.Stmt, bool) {
	stmt := node.AsSwitchStatement()
	disc := b.lowerExpression(stmt.Expression)
	s := ir.Stmt{Kind: ir.StmtSwitch, Loc: b.loc(node), Disc: &disc}
	for _, clause := range stmt.CaseBlock.AsCaseBlock().Clauses.Nodes {
		switch clause.Kind {
		case ast.KindCaseClause:
			cc := clause.AsCaseOrDefaultClause()
			test := b.lowerExpression(cc.Expression)
			arm := ir.SwitchCase{Test: &test}
			for _, st := range cc.Statements.Nodes {
				if lowered, ok := b.lowerStatement(st); ok {
					arm.Body = append(arm.Body, lowered)
				}
			}
			s.Cases = append(s.Cases, arm)
		case ast.KindDefaultClause:
			dc := clause.AsCaseOrDefaultClause()
			arm := ir.SwitchCase{}
			for _, st := range dc.Statements.Nodes {
				if lowered, ok := b.lowerStatement(st); ok {
					arm.Body = append(arm.Body, lowered)
				}
			}
			s.Cases = append(s.Cases, arm)
		}
	}
	return s, true
}

func (b *Builder) lowerTryStatement(node *ast.Node) (ir.Stmt, bool) {
	stmt := node.AsTryStatement()
	s := ir.Stmt{Kind: ir.StmtTry, Loc: b.loc(node)}
	s.Body = b.lowerBody(stmt.TryBlock)
	if stmt.CatchClause != nil {
		cc := stmt.CatchClause.AsCatchClause()
		s.HasCatch = true
		if cc.VariableDeclaration != nil {
			if name := cc.VariableDeclaration.AsVariableDeclaration().Name(); name != nil {
				s.CatchVar = name.Text()
			}
		}
		s.Catch = b.lowerBody(cc.Block)
	}
	if stmt.FinallyBlock != nil {
		s.HasFinal = true
		s.Finally = b.lowerBody(stmt.FinallyBlock)
	}
	return s, true
}

// hasModifier reports whether a node carries the given modifier keyword.
func hasModifier(node *ast.Node, kind ast.Kind) bool {
	mods := node.Modifiers()
	if mods == nil {
		return false
	}
	for _, m := range mods.Nodes {
		if m.Kind == kind {
			return true
		}
	}
	return false
}
