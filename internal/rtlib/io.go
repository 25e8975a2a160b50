package rtlib

import (
	"strconv"
	"strings"

	"jstep/internal/types"
	"jstep/internal/vm"
)

func declareIO(d *decl) {
	bt := d.tbl.Builtins()
	write := func(c *vm.Call, i int, nl bool) {
		s := strArg(c, i)
		if nl {
			s += "\n"
		}
		d.lib.console.Write(s)
	}

	ps := d.class("PrintStream", types.KindClass, d.object(), types.ClassFinal)
	d.method(ps, "print", types.NoTypeID, 0, func(c *vm.Call) (vm.Value, error) {
		write(c, 1, false)
		return vm.Null(), nil
	}, text("x", bt.Object))
	d.method(ps, "println", types.NoTypeID, 0, func(c *vm.Call) (vm.Value, error) {
		write(c, 1, true)
		return vm.Null(), nil
	}, text("x", bt.Object))
	d.method(ps, "println", types.NoTypeID, 0, func(c *vm.Call) (vm.Value, error) {
		d.lib.console.Write("\n")
		return vm.Null(), nil
	})

	sys := d.class("System", types.KindClass, d.object(), types.ClassFinal)
	d.constant(sys, "out", ps.Type, func(c *vm.Call) (vm.Value, error) {
		return vm.Obj(stdout(c, ps)), nil
	})

	// print/println without a receiver
	g := d.class("$Global", types.KindClass, d.object(), types.ClassFinal)
	d.static(g, "print", types.NoTypeID, func(c *vm.Call) (vm.Value, error) {
		write(c, 0, false)
		return vm.Null(), nil
	}, text("x", bt.Object))
	d.static(g, "println", types.NoTypeID, func(c *vm.Call) (vm.Value, error) {
		write(c, 0, true)
		return vm.Null(), nil
	}, text("x", bt.Object))
	d.static(g, "println", types.NoTypeID, func(c *vm.Call) (vm.Value, error) {
		d.lib.console.Write("\n")
		return vm.Null(), nil
	})

	in := d.class("Input", types.KindClass, d.object(), types.ClassFinal)
	// prompt comes from the optional String argument
	prompt := func(c *vm.Call, kind string) string {
		if len(c.Args) > 0 {
			return strArg(c, 0)
		}
		return kind
	}
	read := func(kind string, decode func(p *vm.ThreadPool, line string) (vm.Value, error)) vm.NativeFunc {
		return func(c *vm.Call) (vm.Value, error) {
			s := c.PauseForInput(prompt(c, kind))
			if decode == nil {
				// EOF даёт null, как BufferedReader.readLine
				return vm.Null(), vm.Suspended
			}
			s.Decode = func(p *vm.ThreadPool, v vm.Value) (vm.Value, error) {
				if v.IsNull() {
					return vm.Null(), &vm.ThrowError{Value: p.NewThrowable("NoSuchElementException", "no more input")}
				}
				return decode(p, str(v))
			}
			return vm.Null(), vm.Suspended
		}
	}
	number := func(parse func(s string) (vm.Value, bool)) func(p *vm.ThreadPool, line string) (vm.Value, error) {
		return func(p *vm.ThreadPool, line string) (vm.Value, error) {
			s := strings.TrimSpace(line)
			v, ok := parse(s)
			if !ok {
				return vm.Null(), &vm.ThrowError{Value: p.NewThrowable("NumberFormatException", "For input string: \""+s+"\"")}
			}
			return v, nil
		}
	}
	readers := []struct {
		name string
		ret  types.TypeID
		fn   vm.NativeFunc
	}{
		{"readLine", bt.String, read("line", nil)},
		{"readInt", bt.Int, read("int", number(func(s string) (vm.Value, bool) {
			n, err := strconv.ParseInt(s, 10, 32)
			return vm.Int(int32(n)), err == nil
		}))},
		{"readDouble", bt.Double, read("double", number(func(s string) (vm.Value, bool) {
			x, err := strconv.ParseFloat(s, 64)
			return vm.Double(x), err == nil
		}))},
	}
	for _, r := range readers {
		d.method(in, r.name, r.ret, types.MethodStatic|types.MethodBlocking, r.fn)
		d.method(in, r.name, r.ret, types.MethodStatic|types.MethodBlocking, r.fn, param("prompt", bt.String))
	}
}

func stdout(c *vm.Call, ps *types.Class) *vm.Object {
	return c.Pool.Singleton("System.out", func() *vm.Object { return c.Pool.NewObject(ps) })
}
