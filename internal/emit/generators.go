package emit

import (
	"fmt"

	"github.com/tsoniclang/tsonic/internal/ir"
)

// Bidirectional generators need a value to flow into a resumed
// suspension, which IEnumerator does not provide. The exchange-object
// pattern routes both directions through one cell: the iterator writes
// Output before each yield and reads Input after resuming; the wrapper
// writes Input before MoveNext and reads Output after. `throw(err)`
// rethrows at the driver rather than inside the suspension — an open
// limitation of the underlying iterator abstraction.

// emitBidirectionalGenerator renders the exchange object, the iterator
// method and the wrapper class for one bidirectional generator, then a
// factory method under the generator's own name.
func (m *moduleEmitter) emitBidirectionalGenerator(fn *ir.FuncDecl, exported bool, static bool) {
	exchangeName := fn.Name + "_Exchange"
	wrapperName := fn.Name + "_Generator"
	iterName := fn.Name + "_iterator"

	visibility := "internal"
	if exported {
		visibility = "public"
	}
	staticMod := ""
	if static {
		staticMod = "static "
	}

	yieldT := m.typeName(fn.Generator.Yield)
	sendT := m.typeName(fn.Generator.Send)
	sendCell := sendT
	if fn.Generator.Send.IsValueType() {
		sendCell += "?"
	}

	// Exchange object: one Input/Output cell pair per generator
	// instance.
	m.w.Block("%s sealed class %s", visibility, exchangeName)
	m.w.Line("public %s Input;", sendCell)
	m.w.Line("public %s Output;", yieldT)
	m.w.EndBlock()
	m.w.Blank()

	// Iterator method: the original body with yields routed through the
	// exchange.
	m.use("System.Collections.Generic")
	m.w.Block("private %sIEnumerable<%s> %s(%s __exchange)", staticMod, yieldT, iterName, exchangeName)
	prevGen := m.gen
	m.gen = fn.Generator
	m.stmts(fn.Body)
	m.gen = prevGen
	m.w.EndBlock()
	m.w.Blank()

	// Wrapper class exposing the generator protocol.
	m.use("Tsonic.Support")
	m.w.Block("%s sealed class %s", visibility, wrapperName)
	m.w.Line("private readonly %s _exchange;", exchangeName)
	m.w.Line("private readonly IEnumerator<%s> _iter;", yieldT)
	m.w.Line("private bool _done;")
	m.w.Blank()
	m.w.Block("public %s(%s exchange, IEnumerable<%s> sequence)", wrapperName, exchangeName, yieldT)
	m.w.Line("_exchange = exchange;")
	m.w.Line("_iter = sequence.GetEnumerator();")
	m.w.EndBlock()
	m.w.Blank()

	m.w.Block("public GeneratorResult<%s> next(%s value = default)", yieldT, sendCell)
	m.w.Line("if (_done) return GeneratorResult<%s>.Done(default);", yieldT)
	m.w.Line("_exchange.Input = value;")
	m.w.Block("if (_iter.MoveNext())")
	m.w.Line("return GeneratorResult<%s>.Next(_exchange.Output);", yieldT)
	m.w.EndBlock()
	m.w.Line("_done = true;")
	m.w.Line("return GeneratorResult<%s>.Done(default);", yieldT)
	m.w.EndBlock()
	m.w.Blank()

	m.w.Block("public GeneratorResult<%s> @return(%s value = default)", yieldT, yieldT)
	m.w.Line("_done = true;")
	m.w.Line("_iter.Dispose();")
	m.w.Line("return GeneratorResult<%s>.Done(value);", yieldT)
	m.w.EndBlock()
	m.w.Blank()

	m.use("System")
	m.w.Block("public GeneratorResult<%s> @throw(Exception err)", yieldT)
	m.w.Line("_done = true;")
	m.w.Line("_iter.Dispose();")
	m.w.Line("throw err;")
	m.w.EndBlock()
	m.w.EndBlock()
	m.w.Blank()

	// Factory under the generator's own name, so call sites read the
	// same as the source.
	m.w.Block("%s %s%s %s(%s)", visibility, staticMod, wrapperName, escapeIdent(fn.Name), m.paramList(fn.Params))
	m.w.Line("var __exchange = new %s();", exchangeName)
	m.w.Line("return new %s(__exchange, %s(__exchange));", wrapperName, iterName)
	m.w.EndBlock()

	m.needsGeneratorSupport = true
}

// emitAdapters renders the structural-constraint adapters synthesised
// for this module: the nominal interface and the forwarding wrapper.
func (m *moduleEmitter) emitAdapters() {
	for _, a := range m.adapters {
		m.w.Block("public interface %s", a.InterfaceName)
		for _, member := range a.Members {
			if member.Method {
				m.w.Line("%s;", m.adapterMethodSignature(member))
				continue
			}
			m.w.Line("%s %s { get; }", m.typeName(member.Type), escapeIdent(member.Name))
		}
		m.w.EndBlock()
		m.w.Blank()

		// The wrapper holds the structural value as object and forwards
		// each member dynamically; the cost is paid only at generic call
		// boundaries.
		m.w.Block("public sealed class %s : %s", a.WrapperName, a.InterfaceName)
		m.w.Line("private readonly dynamic _value;")
		m.w.Blank()
		m.w.Block("public %s(object value)", a.WrapperName)
		m.w.Line("_value = value;")
		m.w.EndBlock()
		m.w.Blank()
		for _, member := range a.Members {
			if member.Method {
				m.emitAdapterMethodForward(member)
				continue
			}
			m.w.Line("public %s %s => (%s)_value.%s;",
				m.typeName(member.Type), escapeIdent(member.Name),
				m.typeName(member.Type), member.Name)
		}
		m.w.EndBlock()
		m.w.Blank()
	}
}

func (m *moduleEmitter) adapterMethodSignature(member ir.ObjectMember) string {
	ret := "void"
	params := ""
	if member.Type.Kind == ir.TypeFunction {
		if member.Type.Return != nil {
			ret = m.typeName(*member.Type.Return)
		}
		params = m.positionalParams(member.Type.Params)
	}
	return fmt.Sprintf("%s %s(%s)", ret, escapeIdent(member.Name), params)
}

func (m *moduleEmitter) emitAdapterMethodForward(member ir.ObjectMember) {
	ret := "void"
	if member.Type.Kind == ir.TypeFunction && member.Type.Return != nil {
		ret = m.typeName(*member.Type.Return)
	}
	params := ""
	argNames := ""
	if member.Type.Kind == ir.TypeFunction {
		params = m.positionalParams(member.Type.Params)
		argNames = positionalArgs(len(member.Type.Params))
	}
	if ret == "void" {
		m.w.Block("public void %s(%s)", escapeIdent(member.Name), params)
		m.w.Line("_value.%s(%s);", member.Name, argNames)
	} else {
		m.w.Block("public %s %s(%s)", ret, escapeIdent(member.Name), params)
		m.w.Line("return (%s)_value.%s(%s);", ret, member.Name, argNames)
	}
	m.w.EndBlock()
}

func (m *moduleEmitter) positionalParams(types []ir.Type) string {
	out := ""
	for i, t := range types {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s a%d", m.typeName(t), i)
	}
	return out
}

func positionalArgs(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("a%d", i)
	}
	return out
}

// generatorSupportSource is the shared support type emitted once per
// project when any bidirectional generator exists.
const generatorSupportSource = header + `namespace Tsonic.Support
{
    public readonly struct GeneratorResult<T>
    {
        public readonly T Value;
        public readonly bool IsDone;

        private GeneratorResult(T value, bool done)
        {
            Value = value;
            IsDone = done;
        }

        public static GeneratorResult<T> Next(T value) => new GeneratorResult<T>(value, false);
        public static GeneratorResult<T> Done(T value) => new GeneratorResult<T>(value, true);
    }
}
`

// arrayCompatSource hosts the dotnet-mode array mutators that cannot be
// a single BCL call because native arrays resize by reallocation.
const arrayCompatSource = header + `using System;

namespace Tsonic.Runtime.Compat
{
    public static class ArrayCompat
    {
        public static double Push<T>(ref T[] array, T value)
        {
            Array.Resize(ref array, array.Length + 1);
            array[array.Length - 1] = value;
            return array.Length;
        }

        public static T Pop<T>(ref T[] array)
        {
            var last = array[array.Length - 1];
            Array.Resize(ref array, array.Length - 1);
            return last;
        }

        public static T Shift<T>(ref T[] array)
        {
            var first = array[0];
            var next = new T[array.Length - 1];
            Array.Copy(array, 1, next, 0, next.Length);
            array = next;
            return first;
        }

        public static double Unshift<T>(ref T[] array, T value)
        {
            var next = new T[array.Length + 1];
            next[0] = value;
            Array.Copy(array, 0, next, 1, array.Length);
            array = next;
            return array.Length;
        }

        public static T[] Splice<T>(ref T[] array, int start, int deleteCount)
        {
            var removed = new T[deleteCount];
            Array.Copy(array, start, removed, 0, deleteCount);
            var next = new T[array.Length - deleteCount];
            Array.Copy(array, 0, next, 0, start);
            Array.Copy(array, start + deleteCount, next, start, array.Length - start - deleteCount);
            array = next;
            return removed;
        }
    }
}
`
