package emit

import (
	"fmt"

	"github.com/tsoniclang/tsonic/internal/diagnostic"
	"github.com/tsoniclang/tsonic/internal/ir"
)

// stmt renders one statement into the current writer.
func (m *moduleEmitter) stmt(s ir.Stmt) {
	switch s.Kind {
	case ir.StmtVarDecl:
		m.localVar(s)
	case ir.StmtExpr:
		if m.tryYieldStatement(s) {
			return
		}
		m.w.Line("%s;", m.expr(*s.Expr))
	case ir.StmtReturn:
		if s.Expr != nil {
			m.w.Line("return %s;", m.expr(*s.Expr))
		} else {
			m.w.Line("return;")
		}
	case ir.StmtIf:
		m.w.Block("if (%s)", m.expr(*s.Cond))
		m.stmts(s.Then)
		if len(s.Else) > 0 {
			m.w.EndBlockSuffix("")
			m.w.Block("else")
			m.stmts(s.Else)
		}
		m.w.EndBlock()
	case ir.StmtWhile:
		m.w.Block("while (%s)", m.expr(*s.Cond))
		m.stmts(s.Body)
		m.w.EndBlock()
	case ir.StmtDoWhile:
		m.w.Block("do")
		m.stmts(s.Body)
		m.w.EndBlockSuffix(fmt.Sprintf(" while (%s);", m.expr(*s.Cond)))
	case ir.StmtFor:
		m.forStmt(s)
	case ir.StmtForOf:
		m.w.Block("foreach (var %s in %s)", escapeIdent(s.IterVar), m.expr(*s.Iterable))
		m.stmts(s.Body)
		m.w.EndBlock()
	case ir.StmtForAwaitOf:
		m.w.Block("await foreach (var %s in %s)", escapeIdent(s.IterVar), m.expr(*s.Iterable))
		m.stmts(s.Body)
		m.w.EndBlock()
	case ir.StmtSwitch:
		m.switchStmt(s)
	case ir.StmtThrow:
		m.throwStmt(s)
	case ir.StmtTry:
		m.tryStmt(s)
	case ir.StmtBlock:
		m.w.Line("{")
		m.w.Indent()
		m.stmts(s.Body)
		m.w.EndBlock()
	case ir.StmtBreak:
		m.w.Line("break;")
	case ir.StmtContinue:
		m.w.Line("continue;")
	case ir.StmtFuncDecl:
		m.localFunction(s.Func)
	case ir.StmtClassDecl, ir.StmtInterfaceDecl, ir.StmtEnumDecl, ir.StmtTypeAlias:
		// Nested type declarations were split off during module
		// emission; reaching one here is a lowering bug surfaced as a
		// diagnostic rather than bad output.
		m.errorAt(diagnostic.CodeUnlowerableStatement, s.Loc, "declaration in statement position")
	default:
		m.errorAt(diagnostic.CodeUnlowerableStatement, s.Loc,
			fmt.Sprintf("cannot lower statement kind %q", s.Kind))
	}
}

func (m *moduleEmitter) stmts(list []ir.Stmt) {
	for _, s := range list {
		m.stmt(s)
	}
}

func (m *moduleEmitter) localVar(s ir.Stmt) {
	t := m.typeName(s.VarType)
	name := escapeIdent(s.VarName)
	if s.Init == nil {
		m.w.Line("%s %s = %s;", t, name, defaultValue(s.VarType))
		return
	}
	if yielded, ok := m.tryYieldInitializer(s); ok {
		_ = yielded
		return
	}
	m.w.Line("%s %s = %s;", t, name, m.expr(*s.Init))
}

func (m *moduleEmitter) forStmt(s ir.Stmt) {
	init := ""
	if len(s.Then) == 1 && s.Then[0].Kind == ir.StmtVarDecl {
		d := s.Then[0]
		value := defaultValue(d.VarType)
		if d.Init != nil {
			value = m.expr(*d.Init)
		}
		init = fmt.Sprintf("%s %s = %s", m.typeName(d.VarType), escapeIdent(d.VarName), value)
	} else if s.Pre != nil {
		init = m.expr(*s.Pre)
	}
	cond := ""
	if s.Cond != nil {
		cond = m.expr(*s.Cond)
	}
	post := ""
	if s.Post != nil {
		post = m.expr(*s.Post)
	}
	m.w.Block("for (%s; %s; %s)", init, cond, post)
	m.stmts(s.Body)
	m.w.EndBlock()
}

func (m *moduleEmitter) switchStmt(s ir.Stmt) {
	m.w.Block("switch (%s)", m.expr(*s.Disc))
	for _, c := range s.Cases {
		if c.Test != nil {
			m.w.Line("case %s:", m.expr(*c.Test))
		} else {
			m.w.Line("default:")
		}
		m.w.Indent()
		m.stmts(c.Body)
		if !endsWithJump(c.Body) {
			m.w.Line("break;")
		}
		m.w.Dedent()
	}
	m.w.EndBlock()
}

func endsWithJump(body []ir.Stmt) bool {
	if len(body) == 0 {
		return false
	}
	switch body[len(body)-1].Kind {
	case ir.StmtBreak, ir.StmtContinue, ir.StmtReturn, ir.StmtThrow:
		return true
	}
	return false
}

// throwStmt rejects non-exception values: the CLR can only throw
// exceptions, and wrapping silently would change observable behavior.
func (m *moduleEmitter) throwStmt(s ir.Stmt) {
	e := *s.Expr
	if e.Kind == ir.ExprLiteral {
		m.errorAt(diagnostic.CodeThrowNonException, s.Loc,
			"only Error values can be thrown; wrap this value in new Error(...)")
		return
	}
	m.w.Line("throw %s;", m.expr(e))
}

func (m *moduleEmitter) tryStmt(s ir.Stmt) {
	m.w.Block("try")
	m.stmts(s.Body)
	if s.HasCatch {
		m.use("System")
		if s.CatchVar != "" {
			m.w.EndBlockSuffix("")
			m.w.Block("catch (Exception %s)", escapeIdent(s.CatchVar))
		} else {
			m.w.EndBlockSuffix("")
			m.w.Block("catch")
		}
		m.stmts(s.Catch)
	}
	if s.HasFinal {
		m.w.EndBlockSuffix("")
		m.w.Block("finally")
		m.stmts(s.Finally)
	}
	m.w.EndBlock()
}

// localFunction renders a nested function declaration as a C# local
// function.
func (m *moduleEmitter) localFunction(fn *ir.FuncDecl) {
	params := m.paramList(fn.Params)
	ret := m.returnTypeName(fn)
	prefix := ""
	if fn.IsAsync {
		prefix = "async "
	}
	m.w.Block("%s%s %s(%s)", prefix, ret, escapeIdent(fn.Name), params)
	m.stmts(fn.Body)
	m.w.EndBlock()
}

// tryYieldStatement lowers the recognised yield statement shapes inside
// generator bodies. Returns true when the statement was consumed.
func (m *moduleEmitter) tryYieldStatement(s ir.Stmt) bool {
	if m.gen == nil || s.Expr == nil {
		return false
	}
	e := *s.Expr

	// Plain `yield e;`
	if e.Kind == ir.ExprYield {
		m.emitYield(e)
		return true
	}

	// `x op= yield e;` — bidirectional exchange.
	if e.Kind == ir.ExprAssignment && e.Right != nil && e.Right.Kind == ir.ExprYield {
		if !m.gen.Bidirectional {
			m.errorAt(diagnostic.CodeUnlowerableStatement, s.Loc,
				"yield value consumed in a generator not marked bidirectional")
			return true
		}
		m.emitYield(*e.Right)
		input := m.exchangeInput()
		m.w.Line("%s %s %s;", m.expr(*e.Left), e.Name, input)
		return true
	}

	return false
}

// tryYieldInitializer lowers `const x = yield e;`.
func (m *moduleEmitter) tryYieldInitializer(s ir.Stmt) (bool, bool) {
	if m.gen == nil || !m.gen.Bidirectional || s.Init == nil || s.Init.Kind != ir.ExprYield {
		return false, false
	}
	m.emitYield(*s.Init)
	m.w.Line("%s %s = %s;", m.typeName(m.gen.Send), escapeIdent(s.VarName), m.exchangeInput())
	return true, true
}

// emitYield writes the output cell (bidirectional) or the value directly
// and suspends.
func (m *moduleEmitter) emitYield(e ir.Expr) {
	if e.Delegate {
		operand := m.expr(*e.Object)
		m.w.Block("foreach (var __v in %s)", operand)
		m.w.Line("yield return __v;")
		m.w.EndBlock()
		return
	}
	value := "default"
	if e.Object != nil {
		value = m.expr(*e.Object)
	}
	if m.gen.Bidirectional {
		m.w.Line("__exchange.Output = %s;", value)
		m.w.Line("yield return __exchange.Output;")
		return
	}
	m.w.Line("yield return %s;", value)
}

// exchangeInput reads the value sent into the resumed yield.
func (m *moduleEmitter) exchangeInput() string {
	if m.gen.Send.IsValueType() {
		return "(__exchange.Input ?? default)"
	}
	return "__exchange.Input"
}
