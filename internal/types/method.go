package types

import (
	"fmt"

	"fortio.org/safecast"

	"jstep/internal/source"
)

type MethodID uint32

const NoMethodID MethodID = 0

// NativeID indexes the runtime library's native function table.
type NativeID uint32

const NoNativeID NativeID = 0

type MethodFlags uint8

const (
	MethodStatic MethodFlags = 1 << iota
	MethodAbstract
	MethodCtor
	MethodFinal
	// MethodBlocking marks natives that may suspend the calling thread.
	MethodBlocking
)

type Param struct {
	Name string
	Type TypeID
	// Stringify asks the call site to convert the argument with toString()
	// before passing it, so natives never need to call back into user code.
	Stringify bool
}

type Method struct {
	ID     MethodID
	Name   string
	Owner  ClassID
	Params []Param
	Return TypeID // NoTypeID - void
	Vis    Visibility
	Flags  MethodFlags
	Span   source.Span
	// Virtual is set when some subclass overrides the method, or the
	// method is abstract; calls then dispatch through the vtable.
	Virtual bool
	// Origin links a specialized copy to the generic declaration.
	Origin MethodID
	Native NativeID
}

func (m *Method) Is(f MethodFlags) bool { return m.Flags&f != 0 }

// Impl is the method whose code runs: the generic origin for specialized copies.
func (m *Method) Impl() MethodID {
	if m.Origin != NoMethodID {
		return m.Origin
	}
	return m.ID
}

// AddMethod appends a method record to c.
func (t *Table) AddMethod(c *Class, m *Method) *Method {
	n, err := safecast.Conv[uint32](len(t.methods))
	if err != nil {
		panic(fmt.Errorf("method table overflow: %w", err))
	}
	m.ID = MethodID(n)
	m.Owner = c.ID
	t.methods = append(t.methods, m)
	c.Methods = append(c.Methods, m.ID)
	c.byName[m.Name] = append(c.byName[m.Name], m.ID)
	return m
}

func (t *Table) Method(id MethodID) *Method {
	if id == NoMethodID || int(id) >= len(t.methods) {
		return nil
	}
	return t.methods[id]
}

// Methods returns every method record, specialized copies included.
func (t *Table) Methods() []*Method {
	return t.methods[1:]
}

// OwnMethods returns the methods c declares under name.
func (t *Table) OwnMethods(c *Class, name string) []*Method {
	t.EnsureMembers(c)
	ids := c.byName[name]
	out := make([]*Method, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.methods[id])
	}
	return out
}

// Ctors returns the constructors of c.
func (t *Table) Ctors(c *Class) []*Method {
	return t.OwnMethods(c, "<init>")
}

// LookupMethods collects the candidates named name visible from c: own
// methods first, then inherited ones not hidden by an equal signature.
func (t *Table) LookupMethods(c *Class, name string) []*Method {
	if c == nil {
		return nil
	}
	out := t.OwnMethods(c, name)
	for _, anc := range t.Ancestors(c) {
		for _, m := range t.OwnMethods(anc, name) {
			if !t.hasSameParams(out, m) {
				out = append(out, m)
			}
		}
	}
	if c.Kind == KindInterface && t.builtins.Object != NoTypeID {
		// интерфейсные значения - тоже Object
		if obj := t.ClassOf(t.builtins.Object); obj != nil && obj != c {
			for _, m := range t.OwnMethods(obj, name) {
				if !t.hasSameParams(out, m) {
					out = append(out, m)
				}
			}
		}
	}
	return out
}

func (t *Table) hasSameParams(list []*Method, m *Method) bool {
	for _, o := range list {
		if t.SameParams(o, m) {
			return true
		}
	}
	return false
}

// SameParams compares parameter type lists exactly.
func (t *Table) SameParams(a, b *Method) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].Type != b.Params[i].Type {
			return false
		}
	}
	return true
}

// FindMethod finds an own method with exactly the given parameter types.
func (t *Table) FindMethod(c *Class, name string, params ...TypeID) *Method {
	for _, m := range t.OwnMethods(c, name) {
		if len(m.Params) != len(params) {
			continue
		}
		match := true
		for i := range params {
			if m.Params[i].Type != params[i] {
				match = false
				break
			}
		}
		if match {
			return m
		}
	}
	return nil
}

// Dispatch returns the implementation of m for instances of c.
func (t *Table) Dispatch(c *Class, m MethodID) MethodID {
	if c == nil {
		return m
	}
	if c.Origin != NoClassID {
		c = t.Class(c.Origin)
	}
	if impl, ok := c.VTable[m]; ok {
		return impl
	}
	return m
}
