package sema

import (
	"slices"
	"strings"

	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/types"
)

// link resolves class headers: type parameter bounds, extends and
// implements. A header whose types name a class not declared anywhere, or
// a generic class whose own header is not linked yet, is deferred until
// no more progress can be made; the leftovers are linked anyway and
// report what is missing.
func (r *resolver) link() {
	pending := slices.Clone(r.info.Classes)
	for len(pending) > 0 {
		var next []*ClassDecl
		for _, d := range pending {
			if r.headerPending(d) {
				next = append(next, d)
				continue
			}
			r.linkHeader(d)
		}
		if len(next) == len(pending) {
			for _, d := range next {
				r.linkHeader(d)
			}
			break
		}
		pending = next
	}
	r.checkCycles()
	r.tbl.SyncSpecializations()
}

func (r *resolver) headerTypes(d *ClassDecl) []ast.TypeID {
	it := d.Unit.Builder.Item(d.Item)
	var out []ast.TypeID
	for _, tp := range it.TypeParams {
		if tp.Bound.IsValid() {
			out = append(out, tp.Bound)
		}
	}
	out = append(out, it.Extends...)
	return append(out, it.Implements...)
}

func (r *resolver) headerPending(d *ClassDecl) bool {
	for _, id := range r.headerTypes(d) {
		if r.typePending(d, id) {
			return true
		}
	}
	return false
}

func (r *resolver) typePending(d *ClassDecl, id ast.TypeID) bool {
	b := d.Unit.Builder
	te := b.Type(id)
	if te == nil {
		return false
	}
	switch te.Kind {
	case ast.TypeArray:
		return r.typePending(d, te.Elem)
	case ast.TypeNamed:
		name := b.Name(te.Name)
		if _, ok := r.info.typeParamOf(TypeEnv{Class: d.Class}, name); ok {
			return false
		}
		if _, ok := boxed[name]; ok {
			return false
		}
		c := r.tbl.ClassByName(name)
		if c == nil {
			return true
		}
		if od := r.info.byClass[c.ID]; od != nil && od != d && !od.linked && len(te.Args) > 0 {
			return true
		}
		for _, a := range te.Args {
			if r.typePending(d, a) {
				return true
			}
		}
	}
	return false
}

func (r *resolver) defaultBase(c *types.Class) types.TypeID {
	switch c.Kind {
	case types.KindInterface:
		return types.NoTypeID
	case types.KindEnum:
		if e := r.tbl.ClassByName("Enum"); e != nil {
			return e.Type
		}
	}
	return r.tbl.Builtins().Object
}

func (r *resolver) linkHeader(d *ClassDecl) {
	it := d.Unit.Builder.Item(d.Item)
	c := d.Class
	env := r.env(d)
	tbl := r.tbl
	bt := tbl.Builtins()

	for i, tp := range it.TypeParams {
		if !tp.Bound.IsValid() {
			continue
		}
		bound := r.info.ResolveValueType(env, tp.Bound)
		k := tbl.Kind(bound)
		switch {
		case bound == bt.Invalid:
		case k == types.KindClass || k == types.KindInterface:
			c.TypeParams[i].Bound = bound
		default:
			r.report(d.Unit, diag.SemaInvalidBase, d.Unit.Builder.Type(tp.Bound).Span,
				"type parameter bound must be a class or interface, not %s", tbl.String(bound))
		}
	}

	c.Base = r.defaultBase(c)
	switch it.Kind {
	case ast.ClassPlain:
		if len(it.Extends) > 0 {
			if base, ok := r.headerParent(d, it.Extends[0], types.KindClass); ok {
				c.Base = base
			}
		}
		r.linkInterfaces(d, it.Implements)
	case ast.ClassInterface:
		r.linkInterfaces(d, it.Extends)
	case ast.ClassEnum:
		r.linkInterfaces(d, it.Implements)
	}
	d.linked = true
}

func (r *resolver) linkInterfaces(d *ClassDecl, list []ast.TypeID) {
	for _, id := range list {
		t, ok := r.headerParent(d, id, types.KindInterface)
		if !ok || slices.Contains(d.Class.Interfaces, t) {
			continue
		}
		d.Class.Interfaces = append(d.Class.Interfaces, t)
	}
}

// headerParent resolves one supertype and checks it has the wanted kind.
func (r *resolver) headerParent(d *ClassDecl, id ast.TypeID, want types.Kind) (types.TypeID, bool) {
	tbl := r.tbl
	sp := d.Unit.Builder.Type(id).Span
	t := r.info.ResolveValueType(r.env(d), id)
	if t == tbl.Builtins().Invalid {
		return t, false
	}
	k := tbl.Kind(t)
	pc := tbl.ClassOf(t)
	switch {
	case k == types.KindTypeParam || pc == nil || !k.IsClassLike() && k != types.KindString:
		r.report(d.Unit, diag.SemaInvalidBase, sp, "%s cannot be used as a supertype", tbl.String(t))
		return t, false
	case k != want && want == types.KindInterface:
		r.report(d.Unit, diag.SemaInvalidBase, sp, "%s is not an interface", tbl.String(t))
		return t, false
	case k == types.KindInterface && want == types.KindClass:
		r.report(d.Unit, diag.SemaInvalidBase, sp, "a class cannot extend interface %s; use 'implements'", tbl.String(t))
		return t, false
	case k != want:
		r.report(d.Unit, diag.SemaInvalidBase, sp, "cannot extend %s", tbl.String(t))
		return t, false
	case pc.Is(types.ClassFinal):
		r.report(d.Unit, diag.SemaInvalidBase, sp, "cannot inherit from final type %s", tbl.String(t))
		return t, false
	}
	return t, true
}

// checkCycles finds inheritance cycles among declared classes. Every
// member of a cycle is reported, marked broken and cut off from its
// supertypes so later passes terminate.
func (r *resolver) checkCycles() {
	const (
		white = iota
		grey
		black
	)
	state := make(map[*ClassDecl]int, len(r.info.Classes))
	var stack []*ClassDecl

	var visit func(d *ClassDecl)
	visit = func(d *ClassDecl) {
		state[d] = grey
		stack = append(stack, d)
		parents := append([]types.TypeID{d.Class.Base}, d.Class.Interfaces...)
		for _, p := range parents {
			if p == types.NoTypeID {
				continue
			}
			pd := r.info.Decl(r.tbl.ClassOf(p))
			if pd == nil {
				continue
			}
			switch state[pd] {
			case white:
				visit(pd)
			case grey:
				r.breakCycle(stack[slices.Index(stack, pd):])
			}
		}
		stack = stack[:len(stack)-1]
		state[d] = black
	}
	for _, d := range r.info.Classes {
		if state[d] == white {
			visit(d)
		}
	}
}

func (r *resolver) breakCycle(cycle []*ClassDecl) {
	names := make([]string, 0, len(cycle)+1)
	for _, d := range cycle {
		names = append(names, d.Class.Name)
	}
	names = append(names, cycle[0].Class.Name)
	path := strings.Join(names, " -> ")
	for _, d := range cycle {
		if d.Class.Broken {
			continue
		}
		it := d.Unit.Builder.Item(d.Item)
		r.report(d.Unit, diag.SemaCyclicInheritance, it.NameSpan, "cyclic inheritance: %s", path)
		d.Class.Broken = true
		d.Class.Base = r.defaultBase(d.Class)
		d.Class.Interfaces = nil
	}
}
