package sema

import (
	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/source"
	"jstep/internal/types"
)

func visibility(m ast.Modifiers) types.Visibility {
	switch {
	case m.Has(ast.ModPrivate):
		return types.VisPrivate
	case m.Has(ast.ModProtected):
		return types.VisProtected
	case m.Has(ast.ModPublic):
		return types.VisPublic
	}
	return types.VisPackage
}

func sameParamTypes(a, b []types.Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type {
			return false
		}
	}
	return true
}

// members declares fields, methods and constructors of every class, then
// freezes member lists so specializations can copy them.
func (r *resolver) members() {
	for _, d := range r.info.Classes {
		r.declareMembers(d)
	}
	r.tbl.FreezeMembers()
}

func (r *resolver) declareMembers(d *ClassDecl) {
	b := d.Unit.Builder
	it := b.Item(d.Item)
	c := d.Class
	tbl := r.tbl

	instEnv := r.env(d)
	staticEnv := instEnv
	staticEnv.Static = true
	fields := make(map[string]source.Span)

	if it.Kind == ast.ClassEnum {
		for _, ec := range it.EnumConsts {
			name := b.Name(ec.Name)
			if prev, dup := fields[name]; dup {
				diag.ReportError(r.reporter(d.Unit), diag.SemaDuplicateMember, ec.Span, "enum constant "+name+" is already defined").
					WithNote(prev, "previous definition").Emit()
				continue
			}
			fields[name] = ec.Span
			tbl.AddAttr(c, &types.Attribute{
				Name: name, Type: c.Type, Static: true, Final: true, Vis: types.VisPublic, Span: ec.Span,
			})
			c.EnumConsts = append(c.EnumConsts, name)
		}
		d.Values = r.addSynthetic(d, &types.Method{
			Name:   "values",
			Return: tbl.ArrayOf(c.Type),
			Flags:  types.MethodStatic,
			Vis:    types.VisPublic,
			Span:   it.NameSpan,
		})
	}

	hasCtor := false
	for _, mid := range it.Members {
		m := b.Member(mid)
		name := b.Name(m.Name)
		static := m.Mods.Has(ast.ModStatic)
		env := instEnv
		if static {
			env = staticEnv
		}

		if m.Kind == ast.MemberField {
			t := r.info.ResolveValueType(env, m.Type)
			if prev, dup := fields[name]; dup {
				diag.ReportError(r.reporter(d.Unit), diag.SemaDuplicateMember, m.NameSpan,
					"field "+name+" is already defined in "+c.Name).WithNote(prev, "previous definition").Emit()
				continue
			}
			fields[name] = m.NameSpan
			a := &types.Attribute{
				Name:   name,
				Type:   t,
				Static: static,
				Final:  m.Mods.Has(ast.ModFinal),
				Vis:    visibility(m.Mods),
				Span:   m.NameSpan,
			}
			tbl.AddAttr(c, a)
			d.Fields[mid] = a
			continue
		}

		meth := &types.Method{Name: name, Vis: visibility(m.Mods), Span: m.NameSpan}
		if m.Kind == ast.MemberCtor {
			meth.Name = "<init>"
			meth.Flags |= types.MethodCtor
			hasCtor = true
		} else {
			meth.Return = r.info.ResolveType(env, m.Type)
		}
		if static {
			meth.Flags |= types.MethodStatic
		}
		if m.Mods.Has(ast.ModFinal) {
			meth.Flags |= types.MethodFinal
		}
		if m.Mods.Has(ast.ModAbstract) {
			meth.Flags |= types.MethodAbstract
			meth.Virtual = true
		}
		pnames := make(map[string]bool, len(m.Params))
		for _, p := range m.Params {
			pname := b.Name(p.Name)
			if pnames[pname] {
				r.report(d.Unit, diag.SemaDuplicateVar, p.Span, "parameter %s is already defined", pname)
			}
			pnames[pname] = true
			meth.Params = append(meth.Params, types.Param{Name: pname, Type: r.info.ResolveValueType(env, p.Type)})
		}

		switch {
		case meth.Is(types.MethodAbstract) && static:
			r.report(d.Unit, diag.SemaMissingBody, m.NameSpan, "static method %s cannot be abstract", name)
		case meth.Is(types.MethodAbstract) && c.Kind != types.KindInterface && !c.Is(types.ClassAbstract):
			r.report(d.Unit, diag.SemaMissingBody, m.NameSpan, "abstract method %s in non-abstract class %s", name, c.Name)
		}

		dup := false
		for _, o := range tbl.OwnMethods(c, meth.Name) {
			if sameParamTypes(o.Params, meth.Params) {
				what := "method " + tbl.Signature(meth)
				if meth.Is(types.MethodCtor) {
					what = "constructor " + c.Name + tbl.Signature(meth)[len("<init>"):]
				}
				diag.ReportError(r.reporter(d.Unit), diag.SemaSignatureMismatch, m.NameSpan,
					what+" is already defined in "+c.Name).WithNote(o.Span, "previous definition").Emit()
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		tbl.AddMethod(c, meth)
		r.info.byMember[memberKey{module: d.Unit.ID, member: mid}] = meth.ID
		r.info.Methods[meth.ID] = MethodDecl{Unit: d.Unit, Class: c, Member: mid}
	}

	if !hasCtor && c.Kind != types.KindInterface {
		vis := types.VisPublic
		if c.Kind == types.KindEnum {
			vis = types.VisPrivate
		}
		d.DefaultCtor = r.addSynthetic(d, &types.Method{
			Name:  "<init>",
			Flags: types.MethodCtor,
			Vis:   vis,
			Span:  it.NameSpan,
		})
	}
}

func (r *resolver) addSynthetic(d *ClassDecl, m *types.Method) *types.Method {
	r.tbl.AddMethod(d.Class, m)
	r.info.Methods[m.ID] = MethodDecl{Unit: d.Unit, Class: d.Class, Member: ast.NoMemberID}
	return m
}
