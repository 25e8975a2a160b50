// Package rtlib is the runtime library: native classes declared into each
// compile's type table and the native functions the interpreter calls for
// them.
package rtlib

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"jstep/internal/source"
	"jstep/internal/types"
	"jstep/internal/vm"
)

var ErrRedeclared = errors.New("library class declared twice")

// Console receives program output. Input is requested through the pool's
// OnInput hook and answered with Suspension.Resume.
type Console interface {
	Write(s string)
}

// Library implements compctx.Library.
type Library struct {
	console  Console
	natives  []vm.NativeFunc
	toString types.MethodID
}

func New(console Console) *Library {
	if console == nil {
		console = discard{}
	}
	return &Library{console: console}
}

type discard struct{}

func (discard) Write(string) {}

// Natives returns the native table of the last Declare, indexed by
// NativeID. IDs are assigned in a fixed order, so tables of different
// compiles agree.
func (l *Library) Natives() []vm.NativeFunc { return l.natives }

// Declare registers the library classes into tbl.
func (l *Library) Declare(tbl *types.Table) error {
	l.natives = []vm.NativeFunc{nil}
	d := &decl{tbl: tbl, lib: l}
	steps := []func(*decl){
		declareObject,
		declareString,
		declareThrowables,
		declareEnum,
		declareMath,
		declareBoxes,
		declareIO,
		declareThreads,
		declareCollections,
	}
	for _, step := range steps {
		step(d)
		if d.err != nil {
			return d.err
		}
	}
	return nil
}

// decl accumulates declarations; the first error sticks.
type decl struct {
	tbl *types.Table
	lib *Library
	err error
}

func (d *decl) native(fn vm.NativeFunc) types.NativeID {
	id, err := safecast.Conv[uint32](len(d.lib.natives))
	if err != nil {
		d.fail(fmt.Errorf("native table overflow: %w", err))
		return types.NoNativeID
	}
	d.lib.natives = append(d.lib.natives, fn)
	return types.NativeID(id)
}

func (d *decl) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *decl) class(name string, kind types.Kind, base types.TypeID, flags types.ClassFlags) *types.Class {
	c, ok := d.tbl.NewClass(name, kind, 0, source.Span{})
	if !ok {
		d.fail(fmt.Errorf("%w: %s", ErrRedeclared, name))
		return c
	}
	c.Base = base
	c.Flags = flags | types.ClassNative
	return c
}

func (d *decl) object() types.TypeID { return d.tbl.Builtins().Object }

func (d *decl) method(c *types.Class, name string, ret types.TypeID, flags types.MethodFlags, fn vm.NativeFunc, params ...types.Param) *types.Method {
	m := &types.Method{Name: name, Params: params, Return: ret, Vis: types.VisPublic, Flags: flags}
	if fn != nil {
		m.Native = d.native(fn)
	}
	return d.tbl.AddMethod(c, m)
}

func (d *decl) static(c *types.Class, name string, ret types.TypeID, fn vm.NativeFunc, params ...types.Param) *types.Method {
	return d.method(c, name, ret, types.MethodStatic, fn, params...)
}

func (d *decl) ctor(c *types.Class, fn vm.NativeFunc, params ...types.Param) *types.Method {
	return d.method(c, "<init>", types.NoTypeID, types.MethodCtor, fn, params...)
}

func (d *decl) abstract(c *types.Class, name string, ret types.TypeID, params ...types.Param) *types.Method {
	return d.method(c, name, ret, types.MethodAbstract, nil, params...)
}

// hidden adds an instance attribute user code cannot name.
func (d *decl) hidden(c *types.Class, name string, t types.TypeID) {
	d.tbl.AddAttr(c, &types.Attribute{Name: name, Type: t, Vis: types.VisPrivate})
}

// constant adds a static final attribute computed by fn.
func (d *decl) constant(c *types.Class, name string, t types.TypeID, fn vm.NativeFunc) {
	d.tbl.AddAttr(c, &types.Attribute{Name: name, Type: t, Static: true, Final: true, Vis: types.VisPublic, Computed: d.native(fn)})
}

func param(name string, t types.TypeID) types.Param { return types.Param{Name: name, Type: t} }

// text is a parameter converted to String at the call site.
func text(name string, t types.TypeID) types.Param {
	return types.Param{Name: name, Type: t, Stringify: true}
}

func arg(c *vm.Call, i int) vm.Value {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return vm.Null()
}

// display renders v without running compiled code: objects whose
// toString is native use it, compiled overrides fall back to Name@hash.
func (l *Library) display(c *vm.Call, v vm.Value) string {
	o := v.Object()
	if o == nil {
		return c.String(v)
	}
	m := c.Types().Method(c.Types().Dispatch(o.Class, l.toString))
	if m == nil || m.Native == types.NoNativeID || int(m.Native) >= len(l.natives) {
		return c.String(v)
	}
	r, err := l.natives[m.Native](&vm.Call{Pool: c.Pool, Thread: c.Thread, Method: m, Args: []vm.Value{v}, Span: c.Span})
	if err != nil {
		return c.String(v)
	}
	return str(r)
}

func str(v vm.Value) string {
	s, _ := v.Primitive()
	return s
}
