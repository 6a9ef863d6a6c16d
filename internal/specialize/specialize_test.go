package specialize

import (
	"testing"

	"github.com/tsoniclang/tsonic/internal/ir"
)

// identity builds `function id<T>(x: T): T { return x }` in IR form.
func identityDecl() *ir.FuncDecl {
	ret := ir.Expr{Kind: ir.ExprIdentifier, Name: "x", Type: ir.Type{Kind: ir.TypeParam, Name: "T"}}
	return &ir.FuncDecl{
		Name:       "id",
		TypeParams: []ir.TypeParamDecl{{Name: "T"}},
		Params:     []ir.Param{{Name: "x", Type: ir.Type{Kind: ir.TypeParam, Name: "T"}}},
		Return:     ir.Type{Kind: ir.TypeParam, Name: "T"},
		Body:       []ir.Stmt{{Kind: ir.StmtReturn, Expr: &ret}},
	}
}

func modules(decls ...*ir.FuncDecl) map[string]*ir.Module {
	m := &ir.Module{FilePath: "/src/lib.ts", ContainerClass: "lib"}
	for _, d := range decls {
		m.Body = append(m.Body, ir.Stmt{Kind: ir.StmtFuncDecl, Func: d})
	}
	return map[string]*ir.Module{"/src/lib.ts": m}
}

func TestMonomorphisation(t *testing.T) {
	mods := modules(identityDecl())
	reqs := []ir.SpecRequest{
		{DeclModule: "/src/lib.ts", DeclName: "id", TypeArgs: []ir.Type{ir.NewPrimitive(ir.PrimDouble)}},
		{DeclModule: "/src/lib.ts", DeclName: "id", TypeArgs: []ir.Type{ir.NewPrimitive(ir.PrimString)}},
	}
	out := Run(mods, reqs)

	decls := out.Decls["/src/lib.ts"]
	if len(decls) != 2 {
		t.Fatalf("expected exactly 2 specialisations, got %d", len(decls))
	}
	names := map[string]bool{}
	for _, d := range decls {
		names[d.Name] = true
	}
	if !names["id_double"] || !names["id_string"] {
		t.Fatalf("unexpected specialisation names: %v", names)
	}

	// Substitution must reach parameter, return and body types.
	for _, d := range decls {
		if d.Func.Params[0].Type.Kind == ir.TypeParam {
			t.Fatalf("parameter type not substituted in %s", d.Name)
		}
		if d.Func.Return.Kind == ir.TypeParam {
			t.Fatalf("return type not substituted in %s", d.Name)
		}
	}
}

func TestDeterministicNames(t *testing.T) {
	mods := modules(identityDecl())
	req := ir.SpecRequest{DeclModule: "/src/lib.ts", DeclName: "id", TypeArgs: []ir.Type{ir.NewArray(ir.NewPrimitive(ir.PrimInt))}}
	a := Run(mods, []ir.SpecRequest{req})
	b := Run(modules(identityDecl()), []ir.SpecRequest{req})
	if a.NameByKey[req.Key()] != b.NameByKey[req.Key()] {
		t.Fatal("specialisation naming must be a pure function of the request")
	}
	if a.NameByKey[req.Key()] != "id_intArray" {
		t.Fatalf("unexpected name %q", a.NameByKey[req.Key()])
	}
}

func TestDuplicateRequestsCollapse(t *testing.T) {
	mods := modules(identityDecl())
	req := ir.SpecRequest{DeclModule: "/src/lib.ts", DeclName: "id", TypeArgs: []ir.Type{ir.NewPrimitive(ir.PrimDouble)}}
	out := Run(mods, []ir.SpecRequest{req, req, req})
	if len(out.Decls["/src/lib.ts"]) != 1 {
		t.Fatalf("duplicates must collapse, got %d decls", len(out.Decls["/src/lib.ts"]))
	}
}

func TestRecursiveGenericFixpoint(t *testing.T) {
	// wrap<T>(x: T): T { return wrap<T>(x) } — self-recursive with the
	// same type argument: the fixpoint must terminate with one
	// specialisation.
	callee := ir.Expr{Kind: ir.ExprIdentifier, Name: "wrap"}
	selfCall := ir.Expr{
		Kind:    ir.ExprCall,
		Object:  &callee,
		Args:    []ir.Expr{{Kind: ir.ExprIdentifier, Name: "x", Type: ir.Type{Kind: ir.TypeParam, Name: "T"}}},
		TypeArgs: []ir.Type{{Kind: ir.TypeParam, Name: "T"}},
		SpecKey: "/src/lib.ts#wrap<T>",
	}
	decl := &ir.FuncDecl{
		Name:       "wrap",
		TypeParams: []ir.TypeParamDecl{{Name: "T"}},
		Params:     []ir.Param{{Name: "x", Type: ir.Type{Kind: ir.TypeParam, Name: "T"}}},
		Return:     ir.Type{Kind: ir.TypeParam, Name: "T"},
		Body:       []ir.Stmt{{Kind: ir.StmtReturn, Expr: &selfCall}},
	}
	mods := modules(decl)
	req := ir.SpecRequest{DeclModule: "/src/lib.ts", DeclName: "wrap", TypeArgs: []ir.Type{ir.NewPrimitive(ir.PrimInt)}}
	out := Run(mods, []ir.SpecRequest{req})
	if len(out.Decls["/src/lib.ts"]) != 1 {
		t.Fatalf("expected 1 specialisation after fixpoint, got %d", len(out.Decls["/src/lib.ts"]))
	}
	// The rewritten body call must point at the specialisation itself.
	body := out.Decls["/src/lib.ts"][0].Func.Body
	inner := body[0].Expr
	if inner.SpecKey == "" || out.NameByKey[inner.SpecKey] != "wrap_int" {
		t.Fatalf("recursive call not retargeted: key=%q", inner.SpecKey)
	}
}

func TestStructuralAdapterSynthesis(t *testing.T) {
	constraint := ir.Type{Kind: ir.TypeObject, Members: []ir.ObjectMember{
		{Name: "id", Type: ir.NewPrimitive(ir.PrimDouble)},
	}}
	decl := &ir.FuncDecl{
		Name:       "getId",
		TypeParams: []ir.TypeParamDecl{{Name: "T", Constraint: &constraint}},
		Params:     []ir.Param{{Name: "o", Type: ir.Type{Kind: ir.TypeParam, Name: "T"}}},
		Return:     ir.NewPrimitive(ir.PrimDouble),
	}
	mods := modules(decl)
	out := Run(mods, nil)

	adapters := out.Adapters["/src/lib.ts"]
	if len(adapters) != 1 {
		t.Fatalf("expected 1 adapter, got %d", len(adapters))
	}
	a := adapters[0]
	if a.InterfaceName != "I_getId_T" || a.WrapperName != "W_getId_T" {
		t.Fatalf("unexpected adapter names: %+v", a)
	}
	if len(a.Members) != 1 || a.Members[0].Name != "id" {
		t.Fatalf("adapter members wrong: %+v", a.Members)
	}
	if out.AdapterByDecl["/src/lib.ts#getId#T"] == nil {
		t.Fatal("adapter index missing")
	}
}

func TestStructuralGenericsAreNotMonomorphised(t *testing.T) {
	constraint := ir.Type{Kind: ir.TypeObject, Members: []ir.ObjectMember{
		{Name: "id", Type: ir.NewPrimitive(ir.PrimDouble)},
	}}
	decl := &ir.FuncDecl{
		Name:       "getId",
		TypeParams: []ir.TypeParamDecl{{Name: "T", Constraint: &constraint}},
		Params:     []ir.Param{{Name: "o", Type: ir.Type{Kind: ir.TypeParam, Name: "T"}}},
		Return:     ir.NewPrimitive(ir.PrimDouble),
	}
	mods := modules(decl)
	req := ir.SpecRequest{DeclModule: "/src/lib.ts", DeclName: "getId", TypeArgs: []ir.Type{ir.NewPrimitive(ir.PrimObject)}}
	out := Run(mods, []ir.SpecRequest{req})
	if len(out.Decls["/src/lib.ts"]) != 0 {
		t.Fatal("structural generics take the adapter route, not monomorphisation")
	}
}
