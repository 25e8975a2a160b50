package rtlib

import (
	"strings"

	"jstep/internal/types"
	"jstep/internal/vm"
)

// exception hierarchy: name -> base
var exceptionClasses = []struct {
	name string
	base string
}{
	{"RuntimeException", "Exception"},
	{"ArithmeticException", "RuntimeException"},
	{"NullPointerException", "RuntimeException"},
	{"ClassCastException", "RuntimeException"},
	{"IndexOutOfBoundsException", "RuntimeException"},
	{"ArrayIndexOutOfBoundsException", "IndexOutOfBoundsException"},
	{"StringIndexOutOfBoundsException", "IndexOutOfBoundsException"},
	{"NegativeArraySizeException", "RuntimeException"},
	{"IllegalArgumentException", "RuntimeException"},
	{"NumberFormatException", "IllegalArgumentException"},
	{"IllegalStateException", "RuntimeException"},
	{"NoSuchElementException", "RuntimeException"},
	{"InterruptedException", "Exception"},
	{"StackOverflowError", "Error"},
}

func declareThrowables(d *decl) {
	bt := d.tbl.Builtins()
	th := d.class("Throwable", types.KindClass, d.object(), types.ClassThrowable)
	d.hidden(th, vm.MessageAttr, bt.String)

	// один native на все конструкторы: (this[, message])
	init := d.native(func(c *vm.Call) (vm.Value, error) {
		o := c.This()
		if len(c.Args) > 1 {
			a := c.Types().Attr(o.Class, vm.MessageAttr)
			o.Attrs[a.Index] = c.Args[1]
		}
		return vm.Null(), nil
	})
	ctors := func(c *types.Class) {
		d.tbl.AddMethod(c, &types.Method{Name: "<init>", Vis: types.VisPublic, Flags: types.MethodCtor, Native: init})
		d.tbl.AddMethod(c, &types.Method{Name: "<init>", Vis: types.VisPublic, Flags: types.MethodCtor, Native: init,
			Params: []types.Param{param("message", bt.String)}})
	}
	ctors(th)
	d.method(th, "getMessage", bt.String, 0, func(c *vm.Call) (vm.Value, error) {
		o := c.This()
		return o.Attrs[c.Types().Attr(o.Class, vm.MessageAttr).Index], nil
	})
	d.method(th, "toString", bt.String, 0, func(c *vm.Call) (vm.Value, error) {
		o := c.This()
		if msg, ok := c.Pool.Message(o); ok {
			return vm.Str(o.Class.Name + ": " + msg), nil
		}
		return vm.Str(o.Class.Name), nil
	})
	d.method(th, "printStackTrace", types.NoTypeID, 0, func(c *vm.Call) (vm.Value, error) {
		o := c.This()
		var sb strings.Builder
		sb.WriteString(o.Class.Name)
		if msg, ok := c.Pool.Message(o); ok {
			sb.WriteString(": ")
			sb.WriteString(msg)
		}
		sb.WriteString("\n")
		if site, ok := o.Native.(*vm.ThrowSite); ok {
			u := vm.Uncaught{Backtrace: site.Backtrace, Span: site.Span}
			text := u.FormatWithFiles(c.Pool.Files())
			if _, rest, found := strings.Cut(text, "\n"); found {
				sb.WriteString(rest)
			}
		}
		d.lib.console.Write(sb.String())
		return vm.Null(), nil
	})

	byName := map[string]*types.Class{"Throwable": th}
	for _, base := range []string{"Exception", "Error"} {
		c := d.class(base, types.KindClass, th.Type, types.ClassThrowable)
		ctors(c)
		byName[base] = c
	}
	for _, e := range exceptionClasses {
		c := d.class(e.name, types.KindClass, byName[e.base].Type, types.ClassThrowable)
		ctors(c)
		byName[e.name] = c
	}
}
