package emit

import (
	"strings"
	"testing"

	"github.com/tsoniclang/tsonic/internal/diagnostic"
	"github.com/tsoniclang/tsonic/internal/ir"
	"github.com/tsoniclang/tsonic/internal/specialize"
)

// helloModule builds the IR of `export function main(): void {
// console.log("Hello"); }` at src/App.ts.
func helloModule() *ir.Module {
	console := ir.Expr{Kind: ir.ExprIdentifier, Name: "console"}
	log := ir.Expr{Kind: ir.ExprMemberAccess, Name: "log", Object: &console}
	call := ir.Expr{
		Kind:   ir.ExprCall,
		Object: &log,
		Args: []ir.Expr{{
			Kind: ir.ExprLiteral, LitKind: ir.LitString, Value: "Hello",
			Type: ir.NewPrimitive(ir.PrimString),
		}},
	}
	return &ir.Module{
		FilePath:          "/proj/src/App.ts",
		Namespace:         "MyApp",
		ContainerClass:    "App",
		IsStaticContainer: true,
		IsEntryPoint:      true,
		Body: []ir.Stmt{{
			Kind:     ir.StmtFuncDecl,
			Exported: true,
			Func: &ir.FuncDecl{
				Name:   "main",
				Return: ir.Void,
				Body:   []ir.Stmt{{Kind: ir.StmtExpr, Expr: &call}},
			},
		}},
		Exports: []ir.Export{{Name: "main", Kind: "function"}},
	}
}

func emitOne(t *testing.T, module *ir.Module, mode Mode) (*Output, *diagnostic.Collector) {
	t.Helper()
	in := &Input{
		Modules:                map[string]*ir.Module{module.FilePath: module},
		BuildOrder:             []string{module.FilePath},
		Mode:                   mode,
		RootNamespace:          "MyApp",
		SourceRoot:             "/proj/src",
		OutputName:             "App",
		TargetFrameworkMoniker: "net9.0",
	}
	diags := diagnostic.NewCollector()
	out, ok := Emit(in, diags)
	if !ok {
		t.Fatalf("emit failed: %s", diags.FormatAll())
	}
	return out, diags
}

func TestHelloDotnetMode(t *testing.T) {
	out, _ := emitOne(t, helloModule(), ModeDotnet)

	source, ok := out.Files["MyApp/App.cs"]
	if !ok {
		t.Fatalf("expected MyApp/App.cs, got %v", fileNames(out))
	}
	for _, want := range []string{
		"namespace MyApp",
		"public static class App",
		"public static void main()",
		`Console.WriteLine("Hello");`,
		"using System;",
		"internal static class Program",
		"MyApp.App.main();",
	} {
		if !strings.Contains(source, want) {
			t.Fatalf("missing %q in:\n%s", want, source)
		}
	}
	if strings.Contains(source, JSRuntimeNamespace) {
		t.Fatal("dotnet mode must not reference the JS runtime")
	}
}

func TestHelloJSMode(t *testing.T) {
	out, _ := emitOne(t, helloModule(), ModeJS)
	source := out.Files["MyApp/App.cs"]
	for _, want := range []string{
		"using " + JSRuntimeNamespace + ";",
		`console.log("Hello");`,
	} {
		if !strings.Contains(source, want) {
			t.Fatalf("missing %q in:\n%s", want, source)
		}
	}
	if strings.Contains(source, "Console.WriteLine") {
		t.Fatal("js mode must not route console through the BCL")
	}
}

func TestModeAffectsOnlyRoutingAndManifest(t *testing.T) {
	dotnetOut, _ := emitOne(t, helloModule(), ModeDotnet)
	jsOut, _ := emitOne(t, helloModule(), ModeJS)
	if !strings.Contains(jsOut.ProjectFile, "Tsonic.JsRuntime") {
		t.Fatal("js mode manifest must reference the JS runtime package")
	}
	if strings.Contains(dotnetOut.ProjectFile, "Tsonic.JsRuntime") {
		t.Fatal("dotnet mode manifest must not reference the JS runtime package")
	}
}

func TestDeterminism(t *testing.T) {
	a, _ := emitOne(t, helloModule(), ModeDotnet)
	b, _ := emitOne(t, helloModule(), ModeDotnet)
	if len(a.Files) != len(b.Files) {
		t.Fatal("file sets differ across runs")
	}
	for name, src := range a.Files {
		if b.Files[name] != src {
			t.Fatalf("output for %s differs across runs", name)
		}
	}
	if a.ProjectFile != b.ProjectFile {
		t.Fatal("project manifest differs across runs")
	}
}

func TestArrayPushRouting(t *testing.T) {
	arr := ir.Expr{
		Kind: ir.ExprIdentifier, Name: "xs",
		Type: ir.NewArray(ir.NewPrimitive(ir.PrimInt)),
	}
	push := ir.Expr{Kind: ir.ExprMemberAccess, Name: "push", Object: &arr}
	call := ir.Expr{Kind: ir.ExprCall, Object: &push, Args: []ir.Expr{{
		Kind: ir.ExprLiteral, LitKind: ir.LitNumber, Value: "4", Type: ir.NewPrimitive(ir.PrimInt),
	}}}
	module := &ir.Module{
		FilePath:          "/proj/src/arr.ts",
		Namespace:         "MyApp",
		ContainerClass:    "arr",
		IsStaticContainer: true,
		Body: []ir.Stmt{{
			Kind:     ir.StmtFuncDecl,
			Exported: true,
			Func: &ir.FuncDecl{
				Name:   "run",
				Return: ir.Void,
				Body:   []ir.Stmt{{Kind: ir.StmtExpr, Expr: &call}},
			},
		}},
	}

	dotnetOut, _ := emitOne(t, module, ModeDotnet)
	src := dotnetOut.Files["MyApp/arr.cs"]
	if !strings.Contains(src, "ArrayCompat.Push(ref xs, 4)") {
		t.Fatalf("dotnet push should use the list-add compat helper:\n%s", src)
	}
	if _, ok := dotnetOut.Files["MyApp/ArrayCompat.cs"]; !ok {
		t.Fatal("compat helper source missing from output")
	}

	jsOut, _ := emitOne(t, module, ModeJS)
	src = jsOut.Files["MyApp/arr.cs"]
	if !strings.Contains(src, "xs.push(4)") {
		t.Fatalf("js push should call the extension method:\n%s", src)
	}
	if !strings.Contains(src, "using "+JSRuntimeNamespace+";") {
		t.Fatal("js mode must import the runtime namespace")
	}
}

func TestMonomorphisedCallSites(t *testing.T) {
	// function id<T>(x: T): T plus id<double>(1) and id<string>("s").
	ret := ir.Expr{Kind: ir.ExprIdentifier, Name: "x", Type: ir.Type{Kind: ir.TypeParam, Name: "T"}}
	id := &ir.FuncDecl{
		Name:       "id",
		TypeParams: []ir.TypeParamDecl{{Name: "T"}},
		Params:     []ir.Param{{Name: "x", Type: ir.Type{Kind: ir.TypeParam, Name: "T"}}},
		Return:     ir.Type{Kind: ir.TypeParam, Name: "T"},
		Body:       []ir.Stmt{{Kind: ir.StmtReturn, Expr: &ret}},
	}
	mkCall := func(args ir.Type, lit ir.Expr) ir.Stmt {
		callee := ir.Expr{Kind: ir.ExprIdentifier, Name: "id"}
		req := ir.SpecRequest{DeclModule: "/proj/src/lib.ts", DeclName: "id", TypeArgs: []ir.Type{args}}
		call := ir.Expr{Kind: ir.ExprCall, Object: &callee, Args: []ir.Expr{lit}, TypeArgs: []ir.Type{args}, SpecKey: req.Key()}
		return ir.Stmt{Kind: ir.StmtExpr, Expr: &call}
	}
	module := &ir.Module{
		FilePath:          "/proj/src/lib.ts",
		Namespace:         "MyApp",
		ContainerClass:    "lib",
		IsStaticContainer: true,
		Body: []ir.Stmt{
			{Kind: ir.StmtFuncDecl, Exported: true, Func: id},
			{Kind: ir.StmtFuncDecl, Exported: true, Func: &ir.FuncDecl{
				Name:   "run",
				Return: ir.Void,
				Body: []ir.Stmt{
					mkCall(ir.NewPrimitive(ir.PrimDouble), ir.Expr{Kind: ir.ExprLiteral, LitKind: ir.LitNumber, Value: "1", Type: ir.NewPrimitive(ir.PrimDouble)}),
					mkCall(ir.NewPrimitive(ir.PrimString), ir.Expr{Kind: ir.ExprLiteral, LitKind: ir.LitString, Value: "s", Type: ir.NewPrimitive(ir.PrimString)}),
				},
			}},
		},
	}

	specOut := specialize.Run(map[string]*ir.Module{module.FilePath: module}, []ir.SpecRequest{
		{DeclModule: module.FilePath, DeclName: "id", TypeArgs: []ir.Type{ir.NewPrimitive(ir.PrimDouble)}},
		{DeclModule: module.FilePath, DeclName: "id", TypeArgs: []ir.Type{ir.NewPrimitive(ir.PrimString)}},
	})

	in := &Input{
		Modules:                map[string]*ir.Module{module.FilePath: module},
		BuildOrder:             []string{module.FilePath},
		Specs:                  specOut,
		Mode:                   ModeDotnet,
		RootNamespace:          "MyApp",
		SourceRoot:             "/proj/src",
		OutputName:             "lib",
		TargetFrameworkMoniker: "net9.0",
	}
	diags := diagnostic.NewCollector()
	out, ok := Emit(in, diags)
	if !ok {
		t.Fatalf("emit failed: %s", diags.FormatAll())
	}
	src := out.Files["MyApp/lib.cs"]
	for _, want := range []string{
		"double id_double(double x)",
		"string id_string(string x)",
		"id_double(1);",
		`id_string("s");`,
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("missing %q in:\n%s", want, src)
		}
	}
}

func TestBidirectionalGeneratorShape(t *testing.T) {
	// function* acc(): Generator<number, void, number> { let t = 0;
	// while (true) { t += yield t; } }
	tIdent := func() *ir.Expr {
		e := ir.Expr{Kind: ir.ExprIdentifier, Name: "t", Type: ir.NewPrimitive(ir.PrimDouble)}
		return &e
	}
	yield := ir.Expr{Kind: ir.ExprYield, Object: tIdent()}
	plusEq := ir.Expr{Kind: ir.ExprAssignment, Name: "+=", Left: tIdent(), Right: &yield}
	cond := ir.Expr{Kind: ir.ExprLiteral, LitKind: ir.LitBool, Value: "true", Type: ir.NewPrimitive(ir.PrimBool)}
	init := ir.Expr{Kind: ir.ExprLiteral, LitKind: ir.LitNumber, Value: "0", Type: ir.NewPrimitive(ir.PrimDouble)}
	acc := &ir.FuncDecl{
		Name:   "acc",
		Return: ir.Void,
		Generator: &ir.GeneratorInfo{
			Bidirectional: true,
			Yield:         ir.NewPrimitive(ir.PrimDouble),
			Send:          ir.NewPrimitive(ir.PrimDouble),
			Result:        ir.Void,
		},
		Body: []ir.Stmt{
			{Kind: ir.StmtVarDecl, VarName: "t", VarType: ir.NewPrimitive(ir.PrimDouble), Init: &init},
			{Kind: ir.StmtWhile, Cond: &cond, Body: []ir.Stmt{
				{Kind: ir.StmtExpr, Expr: &plusEq},
			}},
		},
	}
	module := &ir.Module{
		FilePath:          "/proj/src/gen.ts",
		Namespace:         "MyApp",
		ContainerClass:    "gen",
		IsStaticContainer: true,
		Body:              []ir.Stmt{{Kind: ir.StmtFuncDecl, Exported: true, Func: acc}},
	}

	out, _ := emitOne(t, module, ModeDotnet)
	src := out.Files["MyApp/gen.cs"]
	for _, want := range []string{
		"sealed class acc_Exchange",
		"public double? Input;",
		"public double Output;",
		"IEnumerable<double> acc_iterator(acc_Exchange __exchange)",
		"__exchange.Output = t;",
		"yield return __exchange.Output;",
		"t += (__exchange.Input ?? default);",
		"sealed class acc_Generator",
		"public GeneratorResult<double> next(double? value = default)",
		"public GeneratorResult<double> @return(double value = default)",
		"public GeneratorResult<double> @throw(Exception err)",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("missing %q in:\n%s", want, src)
		}
	}
	if _, ok := out.Files["MyApp/GeneratorSupport.cs"]; !ok {
		t.Fatal("generator support type missing")
	}
}

func TestStructuralAdapterEmission(t *testing.T) {
	constraint := ir.Type{Kind: ir.TypeObject, Members: []ir.ObjectMember{
		{Name: "id", Type: ir.NewPrimitive(ir.PrimDouble)},
	}}
	oID := ir.Expr{Kind: ir.ExprIdentifier, Name: "o", Type: ir.Type{Kind: ir.TypeParam, Name: "T"}}
	access := ir.Expr{Kind: ir.ExprMemberAccess, Name: "id", Object: &oID, Type: ir.NewPrimitive(ir.PrimDouble)}
	getID := &ir.FuncDecl{
		Name:       "getId",
		TypeParams: []ir.TypeParamDecl{{Name: "T", Constraint: &constraint}},
		Params:     []ir.Param{{Name: "o", Type: ir.Type{Kind: ir.TypeParam, Name: "T"}}},
		Return:     ir.NewPrimitive(ir.PrimDouble),
		Body:       []ir.Stmt{{Kind: ir.StmtReturn, Expr: &access}},
	}

	obj := ir.Expr{Kind: ir.ExprObjectLiteral,
		Props: []ir.Prop{
			{Name: "id", Value: ir.Expr{Kind: ir.ExprLiteral, LitKind: ir.LitNumber, Value: "1", Type: ir.NewPrimitive(ir.PrimDouble)}},
			{Name: "name", Value: ir.Expr{Kind: ir.ExprLiteral, LitKind: ir.LitString, Value: "x", Type: ir.NewPrimitive(ir.PrimString)}},
		},
		Type: ir.Type{Kind: ir.TypeObject},
	}
	callee := ir.Expr{Kind: ir.ExprIdentifier, Name: "getId"}
	call := ir.Expr{Kind: ir.ExprCall, Object: &callee, Args: []ir.Expr{obj}}
	module := &ir.Module{
		FilePath:          "/proj/src/lib.ts",
		Namespace:         "MyApp",
		ContainerClass:    "lib",
		IsStaticContainer: true,
		Body: []ir.Stmt{
			{Kind: ir.StmtFuncDecl, Exported: true, Func: getID},
			{Kind: ir.StmtFuncDecl, Exported: true, Func: &ir.FuncDecl{
				Name: "run", Return: ir.Void,
				Body: []ir.Stmt{{Kind: ir.StmtExpr, Expr: &call}},
			}},
		},
	}

	specOut := specialize.Run(map[string]*ir.Module{module.FilePath: module}, nil)
	in := &Input{
		Modules:                map[string]*ir.Module{module.FilePath: module},
		BuildOrder:             []string{module.FilePath},
		Specs:                  specOut,
		Mode:                   ModeDotnet,
		RootNamespace:          "MyApp",
		SourceRoot:             "/proj/src",
		OutputName:             "lib",
		TargetFrameworkMoniker: "net9.0",
	}
	diags := diagnostic.NewCollector()
	out, ok := Emit(in, diags)
	if !ok {
		t.Fatalf("emit failed: %s", diags.FormatAll())
	}
	src := out.Files["MyApp/lib.cs"]
	for _, want := range []string{
		"public interface I_getId_T",
		"double id { get; }",
		"public sealed class W_getId_T : I_getId_T",
		"public double id => (double)_value.id;",
		"where T : I_getId_T",
		"getId(new W_getId_T(",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("missing %q in:\n%s", want, src)
		}
	}
}

func TestResidualIntrinsicIsFatal(t *testing.T) {
	istype := ir.Expr{Kind: ir.ExprIntrinsic, Name: "istype", TypeArgs: []ir.Type{ir.NewPrimitive(ir.PrimString)}}
	module := &ir.Module{
		FilePath:          "/proj/src/bad.ts",
		Namespace:         "MyApp",
		ContainerClass:    "bad",
		IsStaticContainer: true,
		Body: []ir.Stmt{{Kind: ir.StmtFuncDecl, Exported: true, Func: &ir.FuncDecl{
			Name: "f", Return: ir.Void,
			Body: []ir.Stmt{{Kind: ir.StmtExpr, Expr: &istype}},
		}}},
	}
	in := &Input{
		Modules:                map[string]*ir.Module{module.FilePath: module},
		BuildOrder:             []string{module.FilePath},
		Mode:                   ModeDotnet,
		RootNamespace:          "MyApp",
		SourceRoot:             "/proj/src",
		OutputName:             "bad",
		TargetFrameworkMoniker: "net9.0",
	}
	diags := diagnostic.NewCollector()
	if _, ok := Emit(in, diags); ok {
		t.Fatal("expected failure on residual istype")
	}
	if diags.Errors()[0].Code != diagnostic.CodeResidualIntrinsic {
		t.Fatalf("expected 7441, got %s", diags.FormatAll())
	}
}

func TestThrowLiteralIsFatal(t *testing.T) {
	lit := ir.Expr{Kind: ir.ExprLiteral, LitKind: ir.LitString, Value: "boom", Type: ir.NewPrimitive(ir.PrimString)}
	module := &ir.Module{
		FilePath:          "/proj/src/bad.ts",
		Namespace:         "MyApp",
		ContainerClass:    "bad",
		IsStaticContainer: true,
		Body: []ir.Stmt{{Kind: ir.StmtFuncDecl, Exported: true, Func: &ir.FuncDecl{
			Name: "f", Return: ir.Void,
			Body: []ir.Stmt{{Kind: ir.StmtThrow, Expr: &lit}},
		}}},
	}
	in := &Input{
		Modules:                map[string]*ir.Module{module.FilePath: module},
		BuildOrder:             []string{module.FilePath},
		Mode:                   ModeDotnet,
		RootNamespace:          "MyApp",
		SourceRoot:             "/proj/src",
		OutputName:             "bad",
		TargetFrameworkMoniker: "net9.0",
	}
	diags := diagnostic.NewCollector()
	if _, ok := Emit(in, diags); ok {
		t.Fatal("expected failure on thrown literal")
	}
	if diags.Errors()[0].Code != diagnostic.CodeThrowNonException {
		t.Fatalf("expected 4003, got %s", diags.FormatAll())
	}
}

func fileNames(out *Output) []string {
	names := make([]string, 0, len(out.Files))
	for n := range out.Files {
		names = append(names, n)
	}
	return names
}
