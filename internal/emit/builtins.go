package emit

import (
	"fmt"
	"strings"

	"github.com/tsoniclang/tsonic/internal/ir"
)

// JSRuntimeNamespace is the namespace of the JS-semantics extension
// methods, referenced in js mode only.
const JSRuntimeNamespace = "Tsonic.JsRuntime"

// builtinReceiver classifies the receiver a builtin name applies to.
type builtinReceiver int

const (
	recvArray builtinReceiver = iota
	recvString
	recvMathObject
	recvConsoleObject
)

// arrayBuiltins and stringBuiltins are the fixed sets of routed names.
// Routing is hard-coded by design: bindings govern all other interop.
var arrayBuiltins = map[string]bool{
	"push": true, "pop": true, "shift": true, "unshift": true,
	"slice": true, "splice": true, "map": true, "filter": true,
	"reduce": true, "find": true, "some": true, "every": true,
	"join": true, "sort": true, "indexOf": true, "includes": true,
	"concat": true, "reverse": true, "forEach": true,
}

var stringBuiltins = map[string]bool{
	"toUpperCase": true, "toLowerCase": true, "slice": true,
	"charAt": true, "indexOf": true, "includes": true,
	"startsWith": true, "endsWith": true, "trim": true,
	"split": true, "replace": true, "padStart": true, "padEnd": true,
}

// isBuiltinCall reports whether a call routes through the builtin table.
func isBuiltinCall(callee *ir.Expr) (builtinReceiver, bool) {
	if callee.Kind != ir.ExprMemberAccess || callee.Object == nil {
		return 0, false
	}
	if callee.Object.Kind == ir.ExprIdentifier && callee.Object.Clr == nil {
		switch callee.Object.Name {
		case "Math":
			return recvMathObject, true
		case "console":
			return recvConsoleObject, true
		}
	}
	switch callee.Object.Type.Kind {
	case ir.TypeArray:
		if arrayBuiltins[callee.Name] {
			return recvArray, true
		}
	case ir.TypePrimitive:
		if callee.Object.Type.Name == ir.PrimString && stringBuiltins[callee.Name] {
			return recvString, true
		}
	}
	return 0, false
}

// emitBuiltinCall renders a routed builtin. In js mode every routed name
// becomes a JS-runtime extension-method call preserving JS semantics; in
// dotnet mode each name maps onto its BCL equivalent.
func (m *moduleEmitter) emitBuiltinCall(recv builtinReceiver, callee *ir.Expr, args []string) string {
	if m.mode == ModeJS {
		m.use(JSRuntimeNamespace)
		switch recv {
		case recvMathObject:
			return fmt.Sprintf("Math.%s(%s)", callee.Name, strings.Join(args, ", "))
		case recvConsoleObject:
			return fmt.Sprintf("console.%s(%s)", callee.Name, strings.Join(args, ", "))
		default:
			obj := m.expr(*callee.Object)
			return fmt.Sprintf("%s.%s(%s)", obj, callee.Name, strings.Join(args, ", "))
		}
	}

	switch recv {
	case recvMathObject:
		return m.dotnetMath(callee.Name, args)
	case recvConsoleObject:
		return m.dotnetConsole(callee.Name, args)
	case recvArray:
		return m.dotnetArray(callee, args)
	case recvString:
		return m.dotnetString(callee, args)
	}
	return ""
}

func (m *moduleEmitter) dotnetConsole(name string, args []string) string {
	m.use("System")
	joined := strings.Join(args, ", ")
	switch name {
	case "error", "warn":
		return fmt.Sprintf("Console.Error.WriteLine(%s)", joined)
	default:
		return fmt.Sprintf("Console.WriteLine(%s)", joined)
	}
}

func (m *moduleEmitter) dotnetMath(name string, args []string) string {
	m.use("System")
	joined := strings.Join(args, ", ")
	switch name {
	case "round":
		// JS rounds half-up (toward +Infinity); BCL rounds half-even.
		// Floor(x + 0.5) reproduces the JS result for negative midpoints
		// too, which MidpointRounding.AwayFromZero would round down.
		return fmt.Sprintf("Math.Floor((%s) + 0.5)", joined)
	case "trunc":
		return fmt.Sprintf("Math.Truncate(%s)", joined)
	case "random":
		return "Random.Shared.NextDouble()"
	default:
		return fmt.Sprintf("Math.%s(%s)", csharpCase(name), joined)
	}
}

// dotnetArray routes array builtins in dotnet mode. Arrays lower to
// native T[]: non-mutating names go through LINQ and materialise with
// ToArray; mutating names (push, pop, shift, unshift, splice) resize, so
// they go through the ref-taking compat helpers.
func (m *moduleEmitter) dotnetArray(callee *ir.Expr, args []string) string {
	obj := m.expr(*callee.Object)
	joined := strings.Join(args, ", ")
	switch callee.Name {
	case "push":
		m.use(JSRuntimeCompatNamespace)
		return fmt.Sprintf("ArrayCompat.Push(ref %s, %s)", obj, joined)
	case "pop":
		m.use(JSRuntimeCompatNamespace)
		return fmt.Sprintf("ArrayCompat.Pop(ref %s)", obj)
	case "shift":
		m.use(JSRuntimeCompatNamespace)
		return fmt.Sprintf("ArrayCompat.Shift(ref %s)", obj)
	case "unshift":
		m.use(JSRuntimeCompatNamespace)
		return fmt.Sprintf("ArrayCompat.Unshift(ref %s, %s)", obj, joined)
	case "splice":
		m.use(JSRuntimeCompatNamespace)
		return fmt.Sprintf("ArrayCompat.Splice(ref %s, %s)", obj, joined)
	case "map":
		m.use("System.Linq")
		return fmt.Sprintf("%s.Select(%s).ToArray()", obj, joined)
	case "filter":
		m.use("System.Linq")
		return fmt.Sprintf("%s.Where(%s).ToArray()", obj, joined)
	case "reduce":
		m.use("System.Linq")
		if len(args) == 2 {
			return fmt.Sprintf("%s.Aggregate(%s, %s)", obj, args[1], args[0])
		}
		return fmt.Sprintf("%s.Aggregate(%s)", obj, joined)
	case "find":
		m.use("System.Linq")
		return fmt.Sprintf("%s.FirstOrDefault(%s)", obj, joined)
	case "some":
		m.use("System.Linq")
		return fmt.Sprintf("%s.Any(%s)", obj, joined)
	case "every":
		m.use("System.Linq")
		return fmt.Sprintf("%s.All(%s)", obj, joined)
	case "join":
		sep := `", "`
		if len(args) > 0 {
			sep = args[0]
		}
		return fmt.Sprintf("string.Join(%s, %s)", sep, obj)
	case "sort":
		m.use("System")
		if len(args) > 0 {
			return fmt.Sprintf("Array.Sort(%s, %s)", obj, joined)
		}
		return fmt.Sprintf("Array.Sort(%s)", obj)
	case "indexOf":
		m.use("System")
		return fmt.Sprintf("Array.IndexOf(%s, %s)", obj, joined)
	case "includes":
		m.use("System.Linq")
		return fmt.Sprintf("%s.Contains(%s)", obj, joined)
	case "concat":
		m.use("System.Linq")
		return fmt.Sprintf("%s.Concat(%s).ToArray()", obj, joined)
	case "reverse":
		m.use("System")
		return fmt.Sprintf("Array.Reverse(%s)", obj)
	case "forEach":
		m.use("System")
		return fmt.Sprintf("Array.ForEach(%s, %s)", obj, joined)
	case "slice":
		m.use("System.Linq")
		switch len(args) {
		case 0:
			return fmt.Sprintf("%s.ToArray()", obj)
		case 1:
			return fmt.Sprintf("%s.Skip(%s).ToArray()", obj, args[0])
		default:
			return fmt.Sprintf("%s.Skip(%s).Take(%s - %s).ToArray()", obj, args[0], args[1], args[0])
		}
	default:
		return fmt.Sprintf("%s.%s(%s)", obj, callee.Name, joined)
	}
}

func (m *moduleEmitter) dotnetString(callee *ir.Expr, args []string) string {
	obj := m.expr(*callee.Object)
	joined := strings.Join(args, ", ")
	switch callee.Name {
	case "toUpperCase":
		return fmt.Sprintf("%s.ToUpperInvariant()", obj)
	case "toLowerCase":
		return fmt.Sprintf("%s.ToLowerInvariant()", obj)
	case "charAt":
		return fmt.Sprintf("%s[%s].ToString()", obj, joined)
	case "indexOf":
		m.use("System")
		return fmt.Sprintf("%s.IndexOf(%s, StringComparison.Ordinal)", obj, joined)
	case "includes":
		return fmt.Sprintf("%s.Contains(%s)", obj, joined)
	case "startsWith":
		m.use("System")
		return fmt.Sprintf("%s.StartsWith(%s, StringComparison.Ordinal)", obj, joined)
	case "endsWith":
		m.use("System")
		return fmt.Sprintf("%s.EndsWith(%s, StringComparison.Ordinal)", obj, joined)
	case "trim":
		return fmt.Sprintf("%s.Trim()", obj)
	case "split":
		return fmt.Sprintf("%s.Split(%s)", obj, joined)
	case "replace":
		return fmt.Sprintf("%s.Replace(%s)", obj, joined)
	case "padStart":
		return fmt.Sprintf("%s.PadLeft(%s)", obj, joined)
	case "padEnd":
		return fmt.Sprintf("%s.PadRight(%s)", obj, joined)
	case "slice":
		// Negative offsets are a JS affordance; dotnet mode remaps the
		// common non-negative forms and leaves the rest to js mode.
		switch len(args) {
		case 1:
			return fmt.Sprintf("%s.Substring(%s)", obj, args[0])
		case 2:
			return fmt.Sprintf("%s.Substring(%s, %s - %s)", obj, args[0], args[1], args[0])
		default:
			return obj
		}
	default:
		return fmt.Sprintf("%s.%s(%s)", obj, callee.Name, joined)
	}
}

// JSRuntimeCompatNamespace hosts the few list helpers dotnet mode cannot
// express as a single BCL call (pop/shift return the removed element).
const JSRuntimeCompatNamespace = "Tsonic.Runtime.Compat"

// csharpCase upper-cases the first letter of a routed Math name.
func csharpCase(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
