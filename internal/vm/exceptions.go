package vm

import (
	"fmt"

	"jstep/internal/types"
)

// NewThrowable allocates an exception of the named library class with its
// message set. An unknown class falls back to RuntimeException.
func (p *ThreadPool) NewThrowable(class, msg string) Value {
	c := p.tbl.ClassByName(class)
	if c == nil {
		c = p.tbl.ClassByName("RuntimeException")
	}
	if c == nil {
		return Null()
	}
	o := p.heap.newObject(c)
	if a := p.tbl.Attr(c, MessageAttr); a != nil && !a.Static && a.Index < len(o.Attrs) {
		if msg == "" {
			o.Attrs[a.Index] = Null()
		} else {
			o.Attrs[a.Index] = Str(msg)
		}
	}
	return Obj(o)
}

// NewObject allocates an instance of c with default attribute values.
func (p *ThreadPool) NewObject(c *types.Class) *Object { return p.heap.newObject(c) }

// NewArray allocates an array of type t (an array type) with n elements.
func (p *ThreadPool) NewArray(t types.TypeID, n int) *Array { return p.heap.newArray(t, n) }

// Message returns the message of an exception object.
func (p *ThreadPool) Message(o *Object) (string, bool) {
	if o == nil {
		return "", false
	}
	a := p.tbl.Attr(o.Class, MessageAttr)
	if a == nil || a.Static || a.Index >= len(o.Attrs) {
		return "", false
	}
	v := o.Attrs[a.Index]
	if v.Kind != VKString {
		return "", false
	}
	return v.S, true
}

// throwBuiltin raises a runtime exception at the current step of t.
func (p *ThreadPool) throwBuiltin(t *Thread, class, format string, args ...any) {
	p.throw(t, p.NewThrowable(class, fmt.Sprintf(format, args...)))
}

// throw unwinds t to the innermost matching catch clause. Exceptions that
// leave the last frame stop the thread.
func (p *ThreadPool) throw(t *Thread, exc Value) {
	if exc.Object() == nil {
		exc = p.NewThrowable("NullPointerException", "")
	}
	p.unwind(t, exc)
}

func (p *ThreadPool) unwind(t *Thread, exc Value) {
	o := exc.Object()
	if o != nil && o.Native == nil && p.isThrowable(o.Class) {
		site := &ThrowSite{Backtrace: t.backtrace()}
		if f := t.Top(); f != nil {
			site.Span = f.span()
		}
		o.Native = site
	}
	for len(t.frames) > 0 {
		f := t.Top()
		for len(f.catches) > 0 {
			mk := f.catches[len(f.catches)-1]
			f.catches = f.catches[:len(f.catches)-1]
			if mk.handler >= len(f.Prog.Handlers) {
				continue
			}
			for _, cl := range f.Prog.Handlers[mk.handler].Clauses {
				if !p.catches(o, cl.Types) {
					continue
				}
				t.stack = t.stack[:mk.height]
				t.stack[f.Base+cl.Slot] = exc
				f.PC = cl.Target
				return
			}
		}
		t.popFrame()
	}
	p.uncaught(t, exc)
}

func (p *ThreadPool) isThrowable(c *types.Class) bool {
	for cur := c; cur != nil; cur = p.tbl.ClassOf(cur.Base) {
		if cur.Is(types.ClassThrowable) {
			return true
		}
		if cur.Base == types.NoTypeID {
			break
		}
	}
	return false
}

func (p *ThreadPool) catches(o *Object, list []types.TypeID) bool {
	if o == nil {
		return false
	}
	for _, ty := range list {
		if p.tbl.IsSubclass(o.Class, p.tbl.ClassOf(ty)) {
			return true
		}
	}
	return false
}

func (p *ThreadPool) uncaught(t *Thread, exc Value) {
	u := &Uncaught{Thread: t.Name, Value: exc}
	if o := exc.Object(); o != nil {
		u.Class = o.Class.Name
		u.Message, _ = p.Message(o)
		if site, ok := o.Native.(*ThrowSite); ok {
			u.Span = site.Span
			u.Backtrace = site.Backtrace
		}
	}
	p.report(t, u)
}

// fault stops t after an interpreter defect.
func (p *ThreadPool) fault(t *Thread, err error) {
	u := &Uncaught{Thread: t.Name, Class: "InternalError", Message: err.Error(), Fault: true}
	if f := t.Top(); f != nil {
		u.Span = f.span()
	}
	u.Backtrace = t.backtrace()
	t.frames = nil
	t.stack = nil
	p.report(t, u)
}

func (p *ThreadPool) report(t *Thread, u *Uncaught) {
	if t.scratch {
		t.failure = u
	} else if p.hooks.OnUncaught != nil {
		p.hooks.OnUncaught(u)
	}
	p.finish(t)
}
