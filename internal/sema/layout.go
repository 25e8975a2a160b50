package sema

import (
	"jstep/internal/diag"
	"jstep/internal/types"
)

// layoutAll assigns attribute indices and builds vtables, root classes
// first. Library classes are laid out the same way.
func (r *resolver) layoutAll() {
	for _, c := range r.tbl.Classes() {
		if c.Origin == types.NoClassID {
			r.layout(c)
		}
	}
	for _, c := range r.tbl.Classes() {
		r.tbl.EnsureMembers(c)
	}
}

func (r *resolver) origin(c *types.Class) *types.Class {
	if c != nil && c.Origin != types.NoClassID {
		return r.tbl.Class(c.Origin)
	}
	return c
}

func (r *resolver) layout(c *types.Class) {
	if c == nil || c.LaidOut || r.visiting[c.ID] {
		return
	}
	if c.Origin != types.NoClassID {
		r.layout(r.origin(c))
		r.tbl.EnsureMembers(c)
		return
	}
	r.visiting[c.ID] = true
	defer delete(r.visiting, c.ID)

	tbl := r.tbl
	var base *types.Class
	if c.Base != types.NoTypeID {
		base = tbl.ClassOf(c.Base)
		r.layout(base)
		tbl.EnsureMembers(base)
	}
	for _, it := range c.Interfaces {
		ic := tbl.ClassOf(it)
		r.layout(ic)
		tbl.EnsureMembers(ic)
	}

	// атрибуты наследника продолжают нумерацию базы
	n := 0
	if base != nil {
		n = base.AttrCount
	}
	for i, a := range c.Attrs {
		a.Index = n + i
	}
	c.AttrCount = n + len(c.Attrs)

	if base != nil {
		for k, v := range r.origin(base).VTable {
			c.VTable[k] = v
		}
	}
	for _, it := range c.Interfaces {
		for k, v := range r.origin(tbl.ClassOf(it)).VTable {
			if _, ok := c.VTable[k]; !ok {
				c.VTable[k] = v
			}
		}
	}

	ancestors := tbl.Ancestors(c)
	for _, anc := range ancestors {
		tbl.EnsureMembers(anc)
		for _, id := range anc.Methods {
			a := tbl.Method(id)
			if !overridable(a) {
				continue
			}
			if m := r.findOverride(c, a); m != nil {
				r.override(c, a, m)
			}
		}
	}
	if c.Kind != types.KindInterface {
		r.fillFromInherited(c, ancestors)
		if !c.Is(types.ClassAbstract) {
			r.checkAbstract(c, ancestors)
		}
	}
	c.LaidOut = true
}

func overridable(m *types.Method) bool {
	return !m.Is(types.MethodStatic) && !m.Is(types.MethodCtor) && m.Vis != types.VisPrivate
}

// findOverride picks the own method of c overriding a: an exact parameter
// match wins over one whose parameters merely accept a's. Illegal
// overrides are reported and yield nil.
func (r *resolver) findOverride(c *types.Class, a *types.Method) *types.Method {
	tbl := r.tbl
	var exact, loose *types.Method
	for _, m := range tbl.OwnMethods(c, a.Name) {
		if m.Is(types.MethodCtor) || len(m.Params) != len(a.Params) {
			continue
		}
		if sameParamTypes(m.Params, a.Params) {
			exact = m
			break
		}
		if loose == nil && !m.Is(types.MethodStatic) && r.paramsAccept(m, a) {
			loose = m
		}
	}
	m := exact
	if m == nil {
		m = loose
	}
	if m == nil {
		return nil
	}

	var problem string
	switch {
	case m.Is(types.MethodStatic):
		problem = "static method " + tbl.Signature(m) + " cannot hide instance method of " + r.ownerName(a)
	case a.Is(types.MethodFinal):
		problem = tbl.Signature(m) + " cannot override final method of " + r.ownerName(a)
	case !r.returnCompatible(m.Return, a.Return):
		problem = tbl.Signature(m) + " cannot override " + r.ownerName(a) + "." + a.Name +
			": return type " + tbl.String(m.Return) + " is not compatible with " + tbl.String(a.Return)
	case m.Vis == types.VisPrivate:
		problem = tbl.Signature(m) + " cannot reduce the visibility of " + r.ownerName(a) + "." + a.Name
	}
	if problem != "" {
		if d := r.info.byClass[c.ID]; d != nil {
			diag.ReportError(r.reporter(d.Unit), diag.SemaInvalidOverride, m.Span, problem).
				WithNote(a.Span, "overridden method is declared here").Emit()
		}
		return nil
	}
	return m
}

func (r *resolver) ownerName(m *types.Method) string {
	if c := r.tbl.Class(m.Owner); c != nil {
		return c.Name
	}
	return "?"
}

// paramsAccept: each parameter of the override accepts the overridden one.
func (r *resolver) paramsAccept(m, a *types.Method) bool {
	for i := range a.Params {
		if !r.tbl.IsAssignable(a.Params[i].Type, m.Params[i].Type) {
			return false
		}
	}
	return true
}

func (r *resolver) returnCompatible(got, want types.TypeID) bool {
	if got == want {
		return true
	}
	if got == types.NoTypeID || want == types.NoTypeID {
		return false
	}
	gk := r.tbl.Kind(got)
	if gk.IsPrimitive() || r.tbl.Kind(want).IsPrimitive() {
		return false
	}
	return r.tbl.IsAssignable(got, want)
}

// override makes m the implementation of a for instances of c. Entries
// that pointed at a's implementation are redirected as well.
func (r *resolver) override(c *types.Class, a, m *types.Method) {
	ak := a.Impl()
	a.Virtual = true
	if am := r.tbl.Method(ak); am != nil {
		am.Virtual = true
	}
	impl := m.Impl()
	for k, v := range c.VTable {
		if v == ak {
			c.VTable[k] = impl
		}
	}
	c.VTable[ak] = impl
}

// implOf returns what runs for a on instances of c.
func (r *resolver) implOf(c *types.Class, a *types.Method) *types.Method {
	return r.tbl.Method(r.tbl.Dispatch(c, a.Impl()))
}

// fillFromInherited lets a concrete method inherited from a base class
// implement an abstract method of an interface.
func (r *resolver) fillFromInherited(c *types.Class, ancestors []*types.Class) {
	tbl := r.tbl
	for _, anc := range ancestors {
		for _, id := range anc.Methods {
			a := tbl.Method(id)
			if !a.Is(types.MethodAbstract) || !r.implOf(c, a).Is(types.MethodAbstract) {
				continue
			}
			for cur := tbl.ClassOf(c.Base); cur != nil && c.Base != types.NoTypeID; cur = tbl.ClassOf(cur.Base) {
				if m := r.concreteMatch(cur, a); m != nil {
					r.override(c, a, m)
					break
				}
				if cur.Base == types.NoTypeID {
					break
				}
			}
		}
	}
}

func (r *resolver) concreteMatch(cur *types.Class, a *types.Method) *types.Method {
	for _, m := range r.tbl.OwnMethods(cur, a.Name) {
		if m.Is(types.MethodAbstract) || !overridable(m) || len(m.Params) != len(a.Params) {
			continue
		}
		if r.paramsAccept(m, a) && r.returnCompatible(m.Return, a.Return) {
			return m
		}
	}
	return nil
}

func (r *resolver) checkAbstract(c *types.Class, ancestors []*types.Class) {
	d := r.info.byClass[c.ID]
	if d == nil {
		return
	}
	tbl := r.tbl
	reported := make(map[string]bool)
	for _, anc := range ancestors {
		for _, id := range anc.Methods {
			a := tbl.Method(id)
			if !a.Is(types.MethodAbstract) || !r.implOf(c, a).Is(types.MethodAbstract) {
				continue
			}
			sig := tbl.Signature(a)
			if reported[sig] {
				continue
			}
			reported[sig] = true
			it := d.Unit.Builder.Item(d.Item)
			diag.ReportError(r.reporter(d.Unit), diag.SemaAbstractNotImplemented, it.NameSpan,
				c.Name+" must implement abstract method "+sig+" of "+anc.Name).
				WithNote(a.Span, "declared here").Emit()
		}
	}
}
