package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tsoniclang/tsonic/internal/clrmeta"
	"github.com/tsoniclang/tsonic/internal/diagnostic"
	"github.com/tsoniclang/tsonic/internal/ir"
	"github.com/tsoniclang/tsonic/internal/specialize"
)

// header is written at the top of every generated file.
const header = "// <auto-generated>\n//     Generated by the tsonic compiler. Do not edit.\n// </auto-generated>\n"

// moduleEmitter emits one module's C# file.
type moduleEmitter struct {
	w      *Writer
	mode   Mode
	module *ir.Module
	diags  *diagnostic.Collector

	usings map[string]bool

	// hoisted maps anonymous object-type keys to their synthesised
	// record-class names; hoistOrder keeps emission deterministic.
	hoisted    map[string]string
	hoistOrder []string
	hoistTypes map[string]ir.Type

	// specNames maps canonical request keys to specialised names.
	specNames map[string]string
	// specs are the specialisations declared by this module.
	specs []specialize.SpecializedDecl
	// adapters are this module's structural-constraint adapters;
	// adaptersByDecl indexes every module's adapters by generic name
	// for call-site wrapping.
	adapters       []specialize.Adapter
	adaptersByDecl map[string]*specialize.Adapter

	// gen is the generator schema of the function currently being
	// emitted, nil outside generator bodies.
	gen *ir.GeneratorInfo

	// meta decides override/new modifiers against CLR base types.
	meta *clrmeta.Registry

	// needsGeneratorSupport is set when a bidirectional generator was
	// emitted; the project then carries the shared support type.
	needsGeneratorSupport bool
}

func (m *moduleEmitter) use(ns string) {
	if ns != "" && ns != m.module.Namespace {
		m.usings[ns] = true
	}
}

func (m *moduleEmitter) errorAt(code diagnostic.Code, loc ir.Loc, message string) {
	m.diags.Error(code, loc.File, loc.Line, loc.Column, message)
}

func (m *moduleEmitter) adapterFor(declName string) *specialize.Adapter {
	return m.adaptersByDecl[declName]
}

// emitModule renders the complete C# file for one module.
func (m *moduleEmitter) emitModule() string {
	m.hoistAnonymousTypes()

	body := NewWriter()
	m.w = body

	if m.mode == ModeJS {
		m.use(JSRuntimeNamespace)
	}

	m.w.Block("namespace %s", m.module.Namespace)
	m.emitHoistedRecords()
	m.emitContainer()
	m.emitTopLevelTypes()
	m.emitAdapters()
	if m.module.IsEntryPoint {
		m.emitEntryPoint()
	}
	m.w.EndBlock()

	// Usings are collected during body emission, so the final file is
	// assembled afterwards.
	final := NewWriter()
	final.Raw(header)
	nss := make([]string, 0, len(m.usings))
	for ns := range m.usings {
		nss = append(nss, ns)
	}
	sort.Strings(nss)
	for _, ns := range nss {
		final.Line("using %s;", ns)
	}
	if len(nss) > 0 {
		final.Blank()
	}
	final.Raw(body.String())
	return final.String()
}

// hoistAnonymousTypes assigns record-class names to anonymous object
// types appearing as parameter or return types.
func (m *moduleEmitter) hoistAnonymousTypes() {
	hoist := func(owner string, slot string, t ir.Type) {
		if t.Kind != ir.TypeObject || len(t.Members) == 0 {
			return
		}
		key := t.Key()
		if _, ok := m.hoisted[key]; ok {
			return
		}
		name := mangle("Rec", owner, slot)
		m.hoisted[key] = name
		m.hoistOrder = append(m.hoistOrder, key)
		m.hoistTypes[key] = t
	}

	for _, s := range m.module.Body {
		if s.Kind != ir.StmtFuncDecl {
			continue
		}
		fn := s.Func
		for _, p := range fn.Params {
			hoist(fn.Name, p.Name, p.Type)
		}
		hoist(fn.Name, "Result", fn.Return)
	}
}

func (m *moduleEmitter) emitHoistedRecords() {
	for _, key := range m.hoistOrder {
		t := m.hoistTypes[key]
		m.w.Block("public sealed class %s", m.hoisted[key])
		for _, member := range t.Members {
			mt := member.Type
			if member.Optional {
				mt.Nullable = true
			}
			m.w.Line("public %s %s { get; set; }", m.typeName(mt), escapeIdent(member.Name))
		}
		m.w.EndBlock()
		m.w.Blank()
	}
}

// emitContainer renders the container class holding the module's
// top-level functions and values.
func (m *moduleEmitter) emitContainer() {
	static := ""
	if m.module.IsStaticContainer {
		static = "static "
	}

	hasMembers := false
	for _, s := range m.module.Body {
		if s.Kind == ir.StmtVarDecl || s.Kind == ir.StmtFuncDecl {
			hasMembers = true
			break
		}
	}
	if !hasMembers && !m.module.IsEntryPoint {
		return
	}

	m.w.Block("public %sclass %s", static, m.module.ContainerClass)
	first := true
	for _, s := range m.module.Body {
		switch s.Kind {
		case ir.StmtVarDecl:
			m.emitContainerField(s)
		case ir.StmtFuncDecl:
			if !first {
				m.w.Blank()
			}
			m.emitFunction(s.Func, s.Exported, true)
			m.emitAdjacentSpecialisations(s.Func.Name)
		default:
			continue
		}
		first = false
	}
	m.w.EndBlock()
	m.w.Blank()
}

// emitContainerField renders a top-level const or let as a static field.
func (m *moduleEmitter) emitContainerField(s ir.Stmt) {
	visibility := "internal"
	if s.Exported {
		visibility = "public"
	}
	mod := "static"
	if s.Const {
		mod = "static readonly"
	}
	if s.Init != nil {
		m.w.Line("%s %s %s %s = %s;", visibility, mod, m.typeName(s.VarType), escapeIdent(s.VarName), m.expr(*s.Init))
	} else {
		m.w.Line("%s %s %s %s;", visibility, mod, m.typeName(s.VarType), escapeIdent(s.VarName))
	}
}

// emitFunction renders a function declaration as a method.
func (m *moduleEmitter) emitFunction(fn *ir.FuncDecl, exported bool, static bool) {
	if fn.Generator != nil && fn.Generator.Bidirectional {
		m.emitBidirectionalGenerator(fn, exported, static)
		return
	}

	visibility := "internal"
	if exported {
		visibility = "public"
	}
	mods := visibility
	if static {
		mods += " static"
	}
	if fn.IsAsync && fn.Generator == nil {
		mods += " async"
	}

	ret := m.returnTypeName(fn)
	name := escapeIdent(fn.Name)
	if len(fn.TypeParams) > 0 {
		names := make([]string, len(fn.TypeParams))
		for i, tp := range fn.TypeParams {
			names[i] = tp.Name
		}
		name += "<" + strings.Join(names, ", ") + ">"
	}
	head := fmt.Sprintf("%s %s %s(%s)", mods, ret, name, m.paramList(fn.Params))
	head += m.whereClauses(fn)

	m.w.Block("%s", head)
	prevGen := m.gen
	m.gen = fn.Generator
	m.stmts(fn.Body)
	m.gen = prevGen
	m.w.EndBlock()
}

// whereClauses renders nominal generic constraints. Structural
// constraints were rewritten to the synthesised interface by the
// specialiser.
func (m *moduleEmitter) whereClauses(fn *ir.FuncDecl) string {
	var parts []string
	for _, tp := range fn.TypeParams {
		if tp.Constraint == nil {
			continue
		}
		if tp.Structural() {
			if a := m.adapterFor(fn.Name); a != nil && a.ParamName == tp.Name {
				parts = append(parts, fmt.Sprintf(" where %s : %s", tp.Name, a.InterfaceName))
			}
			continue
		}
		parts = append(parts, fmt.Sprintf(" where %s : %s", tp.Name, m.typeName(*tp.Constraint)))
	}
	return strings.Join(parts, "")
}

func (m *moduleEmitter) paramList(params []ir.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		t := p.Type
		if p.Optional {
			t.Nullable = true
		}
		piece := ""
		if p.Modifier != "" {
			piece = p.Modifier + " "
		}
		if p.Rest {
			piece += "params "
		}
		piece += m.typeName(t) + " " + escapeIdent(p.Name)
		if p.Default != nil {
			piece += " = " + m.expr(*p.Default)
		} else if p.Optional {
			piece += " = null"
		}
		parts = append(parts, piece)
	}
	return strings.Join(parts, ", ")
}

// emitAdjacentSpecialisations renders every specialisation of a generic
// immediately after its base declaration.
func (m *moduleEmitter) emitAdjacentSpecialisations(baseName string) {
	for _, spec := range m.specs {
		if spec.BaseName != baseName {
			continue
		}
		m.w.Blank()
		m.emitFunction(spec.Func, true, true)
	}
}

// emitTopLevelTypes renders the module's class, interface, enum and
// discriminated-union declarations beside the container.
func (m *moduleEmitter) emitTopLevelTypes() {
	for _, s := range m.module.Body {
		switch s.Kind {
		case ir.StmtClassDecl:
			m.emitClass(s.Class, s.Exported)
			m.w.Blank()
		case ir.StmtInterfaceDecl:
			m.emitInterfaceAsClass(s.Iface, s.Exported)
			m.w.Blank()
		case ir.StmtEnumDecl:
			m.emitEnum(s.Enum, s.Exported)
			m.w.Blank()
		case ir.StmtTypeAlias:
			m.emitAlias(s.Alias, s.Exported)
		}
	}
}

func (m *moduleEmitter) emitClass(cls *ir.ClassDecl, exported bool) {
	visibility := "internal"
	if exported {
		visibility = "public"
	}
	head := visibility
	if cls.IsAbstract {
		head += " abstract"
	}
	head += " class " + cls.Name
	if len(cls.TypeParams) > 0 {
		names := make([]string, len(cls.TypeParams))
		for i, tp := range cls.TypeParams {
			names[i] = tp.Name
		}
		head += "<" + strings.Join(names, ", ") + ">"
	}
	if cls.Extends != nil {
		head += " : " + m.typeName(*cls.Extends)
	}

	m.w.Block("%s", head)
	for _, f := range cls.Fields {
		t := f.Type
		if f.Optional {
			t.Nullable = true
		}
		mods := "public"
		if f.Static {
			mods += " static"
		}
		if f.Readonly {
			mods += " readonly"
		}
		if f.Init != nil {
			m.w.Line("%s %s %s = %s;", mods, m.typeName(t), escapeIdent(f.Name), m.expr(*f.Init))
		} else {
			m.w.Line("%s %s %s;", mods, m.typeName(t), escapeIdent(f.Name))
		}
	}
	for _, ctor := range cls.Ctors {
		m.w.Blank()
		m.w.Block("public %s(%s)", cls.Name, m.paramList(ctor.Params))
		m.stmts(ctor.Body)
		m.w.EndBlock()
	}
	for i := range cls.Methods {
		m.w.Blank()
		m.emitMethod(cls, &cls.Methods[i])
	}
	m.w.EndBlock()
}

// emitMethod chooses override/new modifiers against CLR base metadata.
func (m *moduleEmitter) emitMethod(cls *ir.ClassDecl, fn *ir.FuncDecl) {
	if fn.Generator != nil && fn.Generator.Bidirectional {
		m.emitBidirectionalGenerator(fn, true, false)
		return
	}
	mods := "public"
	if fn.IsAsync && fn.Generator == nil {
		mods += " async"
	}
	if cls.Extends != nil && cls.Extends.Clr != nil {
		base := cls.Extends.Clr.QualifiedType
		if m.meta != nil {
			if member, ok := m.meta.MemberByName(base, fn.Name); ok {
				if member.IsVirtual || member.IsAbstract {
					mods += " override"
				} else {
					mods += " new"
				}
			}
		}
	}
	head := fmt.Sprintf("%s %s %s(%s)", mods, m.returnTypeName(fn), escapeIdent(fn.Name), m.paramList(fn.Params))
	m.w.Block("%s", head)
	prevGen := m.gen
	m.gen = fn.Generator
	m.stmts(fn.Body)
	m.gen = prevGen
	m.w.EndBlock()
}

// emitInterfaceAsClass lowers an interface declaration to a class with
// auto-properties. Optional members become nullable.
func (m *moduleEmitter) emitInterfaceAsClass(iface *ir.InterfaceDecl, exported bool) {
	visibility := "internal"
	if exported {
		visibility = "public"
	}
	head := visibility + " class " + iface.Name
	if len(iface.TypeParams) > 0 {
		names := make([]string, len(iface.TypeParams))
		for i, tp := range iface.TypeParams {
			names[i] = tp.Name
		}
		head += "<" + strings.Join(names, ", ") + ">"
	}
	if len(iface.Extends) == 1 {
		head += " : " + m.typeName(iface.Extends[0])
	}
	m.w.Block("%s", head)
	for _, member := range iface.Members {
		t := member.Type
		if member.Optional {
			t.Nullable = true
		}
		if member.Method {
			m.w.Line("public %s %s { get; set; }", m.delegateName(member.Type), escapeIdent(member.Name))
			continue
		}
		m.w.Line("public %s %s { get; set; }", m.typeName(t), escapeIdent(member.Name))
	}
	m.w.EndBlock()
}

func (m *moduleEmitter) emitEnum(en *ir.EnumDecl, exported bool) {
	visibility := "internal"
	if exported {
		visibility = "public"
	}
	m.w.Block("%s enum %s", visibility, en.Name)
	for _, member := range en.Members {
		if member.Value != "" {
			m.w.Line("%s = %s,", member.Name, member.Value)
		} else {
			m.w.Line("%s,", member.Name)
		}
	}
	m.w.EndBlock()
}

// emitAlias lowers the alias shapes that produce declarations:
// object-literal aliases become sealed classes, discriminated unions
// become a base class plus derived variants. Aliases of plain types
// resolve structurally at use sites and emit nothing.
func (m *moduleEmitter) emitAlias(alias *ir.AliasDecl, exported bool) {
	visibility := "internal"
	if exported {
		visibility = "public"
	}
	t := alias.Target
	switch t.Kind {
	case ir.TypeObject:
		m.w.Block("%s sealed class %s", visibility, alias.Name)
		for _, member := range t.Members {
			mt := member.Type
			if member.Optional {
				mt.Nullable = true
			}
			m.w.Line("public %s %s { get; set; }", m.typeName(mt), escapeIdent(member.Name))
		}
		m.w.EndBlock()
		m.w.Blank()
	case ir.TypeUnion:
		if tag, ok := discriminantOf(t); ok {
			m.emitDiscriminatedUnion(alias, t, tag, visibility)
		}
	}
}

// discriminantOf finds a common literal-typed member shared by every
// union variant.
func discriminantOf(t ir.Type) (string, bool) {
	counts := map[string]int{}
	for _, v := range t.Variants {
		if v.Kind != ir.TypeObject {
			return "", false
		}
		for _, member := range v.Members {
			if member.Type.Kind == ir.TypeLiteral {
				counts[member.Name]++
			}
		}
	}
	names := make([]string, 0, len(counts))
	for name, n := range counts {
		if n == len(t.Variants) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return names[0], true
}

// emitDiscriminatedUnion lowers a tagged union to a base class and one
// derived class per variant, with the discriminator on the base.
func (m *moduleEmitter) emitDiscriminatedUnion(alias *ir.AliasDecl, t ir.Type, tag, visibility string) {
	m.w.Block("%s abstract class %s", visibility, alias.Name)
	m.w.Line("public abstract string %s { get; }", escapeIdent(tag))
	m.w.EndBlock()
	m.w.Blank()
	for _, v := range t.Variants {
		variantName := ""
		for _, member := range v.Members {
			if member.Name == tag && member.Type.Kind == ir.TypeLiteral {
				variantName = member.Type.Name
			}
		}
		className := mangle(alias.Name, variantName)
		m.w.Block("%s sealed class %s : %s", visibility, className, alias.Name)
		for _, member := range v.Members {
			if member.Name == tag {
				m.w.Line("public override string %s => %s;", escapeIdent(tag), quoteCSharp(variantName))
				continue
			}
			mt := member.Type
			if member.Optional {
				mt.Nullable = true
			}
			m.w.Line("public %s %s { get; set; }", m.typeName(mt), escapeIdent(member.Name))
		}
		m.w.EndBlock()
		m.w.Blank()
	}
}

// emitEntryPoint renders the Main wrapper forwarding to the exported
// main.
func (m *moduleEmitter) emitEntryPoint() {
	var mainFn *ir.FuncDecl
	for _, s := range m.module.Body {
		if s.Kind == ir.StmtFuncDecl && s.Func.Name == "main" && s.Exported {
			mainFn = s.Func
		}
	}
	if mainFn == nil {
		return
	}
	m.w.Block("internal static class Program")
	target := fmt.Sprintf("%s.%s.main()", m.module.Namespace, m.module.ContainerClass)
	if mainFn.IsAsync {
		m.use("System.Threading.Tasks")
		m.w.Block("private static async Task Main(string[] args)")
		m.w.Line("await %s;", target)
	} else {
		m.w.Block("private static void Main(string[] args)")
		m.w.Line("%s;", target)
	}
	m.w.EndBlock()
	m.w.EndBlock()
}
