package types

import (
	"errors"
	"fmt"
	"strings"
)

var ErrTypeArgCount = errors.New("wrong number of type arguments")

// FreezeMembers is called once member signatures of declared classes are
// final; from then on specializations copy them on first access.
func (t *Table) FreezeMembers() {
	t.membersFrozen = true
}

// Specialize returns the specialization of a generic class for args. It is
// cached per (generic, args); a generic applied to its own parameters is
// the generic itself.
func (t *Table) Specialize(generic *Class, args []TypeID) (*Class, error) {
	if generic.Origin != NoClassID {
		generic = t.Class(generic.Origin)
	}
	if len(args) != len(generic.TypeParams) {
		return nil, fmt.Errorf("%w: %s expects %d, got %d", ErrTypeArgCount, generic.Name, len(generic.TypeParams), len(args))
	}
	if len(args) == 0 {
		return generic, nil
	}
	self := true
	for i, a := range args {
		if a != generic.TypeParams[i].Type {
			self = false
			break
		}
	}
	if self {
		return generic, nil
	}

	var key strings.Builder
	fmt.Fprintf(&key, "%d", generic.ID)
	for _, a := range args {
		fmt.Fprintf(&key, ",%d", a)
	}
	if id, ok := t.specs[key.String()]; ok {
		return t.classes[id], nil
	}

	name := generic.Name + "<" + t.joinTypes(args) + ">"
	c := t.newClassRecord(name, generic.Kind, generic.Module, generic.Span)
	c.Origin = generic.ID
	c.TypeArgs = append([]TypeID(nil), args...)
	c.Flags = generic.Flags
	t.specs[key.String()] = c.ID
	t.syncHeader(c)
	return c, nil
}

// Subst replaces the type parameters of owner inside id by args.
func (t *Table) Subst(id TypeID, owner *Class, args []TypeID) TypeID {
	ty, ok := t.Lookup(id)
	if !ok {
		return id
	}
	switch ty.Kind {
	case KindTypeParam:
		if ty.Class == owner.ID && int(ty.Index) < len(args) {
			return args[ty.Index]
		}
	case KindArray:
		return t.ArrayOf(t.Subst(ty.Elem, owner, args))
	case KindClass, KindInterface, KindEnum:
		c := t.Class(ty.Class)
		if c == nil || c.Origin == NoClassID {
			return id
		}
		sub := make([]TypeID, len(c.TypeArgs))
		changed := false
		for i, a := range c.TypeArgs {
			sub[i] = t.Subst(a, owner, args)
			changed = changed || sub[i] != a
		}
		if !changed {
			return id
		}
		if s, err := t.Specialize(t.Class(c.Origin), sub); err == nil {
			return s.Type
		}
	}
	return id
}

// SyncSpecializations refreshes base and interfaces of every
// specialization from its generic declaration.
func (t *Table) SyncSpecializations() {
	for _, c := range t.classes[1:] {
		if c.Origin != NoClassID {
			t.syncHeader(c)
		}
	}
}

func (t *Table) syncHeader(c *Class) {
	origin := t.Class(c.Origin)
	c.Base = t.Subst(origin.Base, origin, c.TypeArgs)
	c.Interfaces = c.Interfaces[:0]
	for _, it := range origin.Interfaces {
		c.Interfaces = append(c.Interfaces, t.Subst(it, origin, c.TypeArgs))
	}
	c.Broken = origin.Broken
}

// EnsureMembers fills a specialization's attributes and methods from its
// origin. Declarations are left untouched.
func (t *Table) EnsureMembers(c *Class) {
	if c == nil || c.Origin == NoClassID || !t.membersFrozen {
		return
	}
	origin := t.Class(c.Origin)
	if !c.membersCopied {
		c.membersCopied = true
		for _, a := range origin.Attrs {
			cp := *a
			cp.Type = t.Subst(a.Type, origin, c.TypeArgs)
			cp.Owner = c.ID
			c.Attrs = append(c.Attrs, &cp)
		}
		// статические поля общие для всех специализаций
		c.Statics = origin.Statics
		for _, id := range origin.Methods {
			m := t.methods[id]
			cp := &Method{
				Name:    m.Name,
				Return:  t.Subst(m.Return, origin, c.TypeArgs),
				Vis:     m.Vis,
				Flags:   m.Flags,
				Span:    m.Span,
				Virtual: m.Virtual,
				Origin:  m.ID,
				Native:  m.Native,
			}
			for _, p := range m.Params {
				p.Type = t.Subst(p.Type, origin, c.TypeArgs)
				cp.Params = append(cp.Params, p)
			}
			t.AddMethod(c, cp)
		}
	}
	if origin.LaidOut && !c.LaidOut {
		for i, a := range origin.Attrs {
			c.Attrs[i].Index = a.Index
		}
		c.AttrCount = origin.AttrCount
		c.VTable = origin.VTable
		c.LaidOut = true
	}
}
