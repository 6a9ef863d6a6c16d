// Package specialize discharges specialisation requests: it monomorphises
// generic functions per distinct type-argument tuple and synthesises
// nominal adapters for structural constraints. Rewrites are recorded in
// lookup tables the emitter consults; IR nodes themselves are rebuilt,
// never mutated.
package specialize

import (
	"sort"

	"github.com/tsoniclang/tsonic/internal/ir"
)

// maxRounds bounds the fixpoint for recursive generics. A generic calling
// itself with fresh type arguments each round is unbounded expansion; the
// bound turns it into a hard stop instead of a hang.
const maxRounds = 32

// SpecializedDecl is one monomorphised declaration.
type SpecializedDecl struct {
	// Module is the declaring module's file path; the specialisation is
	// emitted adjacent to its base.
	Module string
	// BaseName is the generic's name; Name is the specialised name.
	BaseName string
	Name     string
	Func     *ir.FuncDecl
}

// Adapter is the synthesised pair for one structural constraint: a
// nominal interface and a wrapper that forwards each member from a held
// object.
type Adapter struct {
	Module        string
	DeclName      string
	ParamName     string
	InterfaceName string
	WrapperName   string
	Members       []ir.ObjectMember
}

// Output is the specialiser result.
type Output struct {
	// Decls holds specialised declarations keyed by declaring module, in
	// deterministic order.
	Decls map[string][]SpecializedDecl
	// NameByKey maps a request's canonical key to the specialised name;
	// the emitter rewrites tagged call sites through it.
	NameByKey map[string]string
	// Adapters holds synthesised adapters keyed by declaring module.
	Adapters map[string][]Adapter
	// AdapterByDecl maps "module#decl#param" to its adapter for
	// call-site wrapping.
	AdapterByDecl map[string]*Adapter
}

// genericIndex locates generic declarations by module and name.
type genericIndex map[string]*ir.FuncDecl

func indexKey(module, name string) string { return module + "#" + name }

// Run discharges every request against the generic declarations found in
// modules.
func Run(modules map[string]*ir.Module, requests []ir.SpecRequest) *Output {
	generics := make(genericIndex)
	for path, m := range modules {
		for _, s := range m.Body {
			if s.Kind == ir.StmtFuncDecl && len(s.Func.TypeParams) > 0 {
				generics[indexKey(path, s.Func.Name)] = s.Func
			}
		}
	}

	out := &Output{
		Decls:         make(map[string][]SpecializedDecl),
		NameByKey:     make(map[string]string),
		Adapters:      make(map[string][]Adapter),
		AdapterByDecl: make(map[string]*Adapter),
	}

	// Structural-constraint generics take the adapter route and keep a
	// single generic declaration; everything else monomorphises.
	structural := map[string]bool{}
	keys := make([]string, 0, len(generics))
	for k := range generics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		decl := generics[k]
		for _, tp := range decl.TypeParams {
			if tp.Structural() {
				structural[k] = true
				module := k[:len(k)-len(decl.Name)-1]
				a := synthesizeAdapter(module, decl.Name, tp)
				out.Adapters[module] = append(out.Adapters[module], a)
				key := module + "#" + decl.Name + "#" + tp.Name
				stored := a
				out.AdapterByDecl[key] = &stored
			}
		}
	}

	// Fixpoint over monomorphisation: specialised bodies may request
	// further specialisations (recursive generics).
	pending := append([]ir.SpecRequest{}, requests...)
	done := map[string]bool{}
	for round := 0; round < maxRounds && len(pending) > 0; round++ {
		var next []ir.SpecRequest
		sort.SliceStable(pending, func(i, j int) bool { return pending[i].Key() < pending[j].Key() })
		for _, req := range pending {
			key := req.Key()
			if done[key] {
				continue
			}
			done[key] = true
			// Requests whose arguments still mention type parameters are
			// not dischargeable; they concretise inside an enclosing
			// specialisation and re-enter through the fixpoint.
			if !concrete(req.TypeArgs) {
				continue
			}

			declKey := indexKey(req.DeclModule, req.DeclName)
			decl, ok := generics[declKey]
			if !ok || structural[declKey] {
				continue
			}
			spec, newReqs := monomorphise(req, decl)
			out.Decls[req.DeclModule] = append(out.Decls[req.DeclModule], spec)
			out.NameByKey[key] = spec.Name
			next = append(next, newReqs...)
		}
		pending = next
	}

	return out
}

// monomorphise builds one specialised declaration and collects any
// requests its substituted body still carries.
func monomorphise(req ir.SpecRequest, decl *ir.FuncDecl) (SpecializedDecl, []ir.SpecRequest) {
	subst := make(map[string]ir.Type, len(decl.TypeParams))
	for i, tp := range decl.TypeParams {
		if i < len(req.TypeArgs) {
			subst[tp.Name] = req.TypeArgs[i]
		} else {
			subst[tp.Name] = ir.NewPrimitive(ir.PrimObject)
		}
	}

	name := decl.Name + "_" + ir.SuffixFor(req.TypeArgs)
	fresh := &ir.FuncDecl{
		Name:    name,
		IsAsync: decl.IsAsync,
		Return:  substType(decl.Return, subst),
	}
	if decl.Generator != nil {
		g := *decl.Generator
		g.Yield = substType(g.Yield, subst)
		g.Send = substType(g.Send, subst)
		g.Result = substType(g.Result, subst)
		fresh.Generator = &g
	}
	for _, p := range decl.Params {
		np := p
		np.Type = substType(p.Type, subst)
		fresh.Params = append(fresh.Params, np)
	}

	var collected []ir.SpecRequest
	fresh.Body = substStmts(decl.Body, subst, &collected)
	return SpecializedDecl{
		Module:   req.DeclModule,
		BaseName: decl.Name,
		Name:     name,
		Func:     fresh,
	}, collected
}

// synthesizeAdapter builds the nominal interface and forwarding wrapper
// for one structural constraint.
func synthesizeAdapter(module, declName string, tp ir.TypeParamDecl) Adapter {
	return Adapter{
		Module:        module,
		DeclName:      declName,
		ParamName:     tp.Name,
		InterfaceName: "I_" + declName + "_" + tp.Name,
		WrapperName:   "W_" + declName + "_" + tp.Name,
		Members:       tp.Constraint.Members,
	}
}

// substType substitutes type parameters with concrete types.
func substType(t ir.Type, subst map[string]ir.Type) ir.Type {
	switch t.Kind {
	case ir.TypeParam:
		if concrete, ok := subst[t.Name]; ok {
			if t.Nullable {
				concrete.Nullable = true
			}
			return concrete
		}
		return t
	case ir.TypeArray:
		elem := substType(*t.Elem, subst)
		out := t
		out.Elem = &elem
		return out
	case ir.TypeReference:
		out := t
		out.TypeArgs = substTypes(t.TypeArgs, subst)
		return out
	case ir.TypeFunction:
		out := t
		out.Params = substTypes(t.Params, subst)
		if t.Return != nil {
			ret := substType(*t.Return, subst)
			out.Return = &ret
		}
		return out
	case ir.TypeUnion, ir.TypeIntersection:
		out := t
		out.Variants = substTypes(t.Variants, subst)
		return out
	case ir.TypeObject:
		out := t
		out.Members = make([]ir.ObjectMember, len(t.Members))
		for i, m := range t.Members {
			m.Type = substType(m.Type, subst)
			out.Members[i] = m
		}
		return out
	default:
		return t
	}
}

func substTypes(ts []ir.Type, subst map[string]ir.Type) []ir.Type {
	if ts == nil {
		return nil
	}
	out := make([]ir.Type, len(ts))
	for i, t := range ts {
		out[i] = substType(t, subst)
	}
	return out
}

// substStmts rebuilds a statement list with substituted types, collecting
// specialisation requests that became concrete through substitution.
func substStmts(stmts []ir.Stmt, subst map[string]ir.Type, collected *[]ir.SpecRequest) []ir.Stmt {
	if stmts == nil {
		return nil
	}
	out := make([]ir.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = substStmt(s, subst, collected)
	}
	return out
}

func substStmt(s ir.Stmt, subst map[string]ir.Type, collected *[]ir.SpecRequest) ir.Stmt {
	s.VarType = substType(s.VarType, subst)
	s.IterType = substType(s.IterType, subst)
	s.Init = substExprPtr(s.Init, subst, collected)
	s.Expr = substExprPtr(s.Expr, subst, collected)
	s.Cond = substExprPtr(s.Cond, subst, collected)
	s.Pre = substExprPtr(s.Pre, subst, collected)
	s.Post = substExprPtr(s.Post, subst, collected)
	s.Disc = substExprPtr(s.Disc, subst, collected)
	s.Iterable = substExprPtr(s.Iterable, subst, collected)
	s.Then = substStmts(s.Then, subst, collected)
	s.Else = substStmts(s.Else, subst, collected)
	s.Body = substStmts(s.Body, subst, collected)
	s.Catch = substStmts(s.Catch, subst, collected)
	s.Finally = substStmts(s.Finally, subst, collected)
	if s.Cases != nil {
		cases := make([]ir.SwitchCase, len(s.Cases))
		for i, c := range s.Cases {
			cases[i] = ir.SwitchCase{
				Test: substExprPtr(c.Test, subst, collected),
				Body: substStmts(c.Body, subst, collected),
			}
		}
		s.Cases = cases
	}
	if s.Func != nil {
		fn := *s.Func
		fn.Return = substType(fn.Return, subst)
		params := make([]ir.Param, len(fn.Params))
		for i, p := range fn.Params {
			p.Type = substType(p.Type, subst)
			params[i] = p
		}
		fn.Params = params
		fn.Body = substStmts(fn.Body, subst, collected)
		s.Func = &fn
	}
	return s
}

func substExprPtr(e *ir.Expr, subst map[string]ir.Type, collected *[]ir.SpecRequest) *ir.Expr {
	if e == nil {
		return nil
	}
	out := substExpr(*e, subst, collected)
	return &out
}

func substExpr(e ir.Expr, subst map[string]ir.Type, collected *[]ir.SpecRequest) ir.Expr {
	e.Type = substType(e.Type, subst)
	e.TypeArgs = substTypes(e.TypeArgs, subst)
	e.Object = substExprPtr(e.Object, subst, collected)
	e.Left = substExprPtr(e.Left, subst, collected)
	e.Right = substExprPtr(e.Right, subst, collected)
	if e.Args != nil {
		args := make([]ir.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = substExpr(a, subst, collected)
		}
		e.Args = args
	}
	if e.Props != nil {
		props := make([]ir.Prop, len(e.Props))
		for i, p := range e.Props {
			p.Value = substExpr(p.Value, subst, collected)
			props[i] = p
		}
		e.Props = props
	}
	if e.Fn != nil {
		fn := *e.Fn
		fn.Return = substType(fn.Return, subst)
		params := make([]ir.Param, len(fn.Params))
		for i, p := range fn.Params {
			p.Type = substType(p.Type, subst)
			params[i] = p
		}
		fn.Params = params
		fn.Body = substStmts(fn.Body, subst, collected)
		fn.ExprBody = substExprPtr(fn.ExprBody, subst, collected)
		e.Fn = &fn
	}

	// A generic call whose type arguments became concrete through
	// substitution is a fresh specialisation request: retag the call so
	// the emitter finds its target.
	if e.Kind == ir.ExprCall && e.SpecKey != "" && e.Object != nil && e.Object.Kind == ir.ExprIdentifier {
		req := ir.SpecRequest{DeclModule: declModuleFromKey(e.SpecKey), DeclName: e.Object.Name, TypeArgs: e.TypeArgs}
		e.SpecKey = req.Key()
		*collected = append(*collected, req)
	}
	return e
}

// concrete reports whether no type argument still mentions a type
// parameter.
func concrete(args []ir.Type) bool {
	var check func(t ir.Type) bool
	check = func(t ir.Type) bool {
		switch t.Kind {
		case ir.TypeParam:
			return false
		case ir.TypeArray:
			return check(*t.Elem)
		case ir.TypeReference:
			for _, a := range t.TypeArgs {
				if !check(a) {
					return false
				}
			}
		case ir.TypeFunction:
			for _, p := range t.Params {
				if !check(p) {
					return false
				}
			}
			if t.Return != nil && !check(*t.Return) {
				return false
			}
		case ir.TypeUnion, ir.TypeIntersection:
			for _, v := range t.Variants {
				if !check(v) {
					return false
				}
			}
		}
		return true
	}
	for _, a := range args {
		if !check(a) {
			return false
		}
	}
	return true
}

// declModuleFromKey recovers the declaring module from a canonical key
// ("module#name<args>").
func declModuleFromKey(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == '#' {
			return key[:i]
		}
	}
	return key
}
