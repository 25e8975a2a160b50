package sema

import (
	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/types"
)

func classKind(k ast.ClassKind) types.Kind {
	switch k {
	case ast.ClassInterface:
		return types.KindInterface
	case ast.ClassEnum:
		return types.KindEnum
	default:
		return types.KindClass
	}
}

// collect registers every declared class name with its type parameters.
// Bounds and bases are filled by link.
func (r *resolver) collect() {
	for _, u := range r.ctx.Units {
		if u.Builder == nil {
			continue
		}
		file := u.Builder.File(u.AST)
		if file == nil {
			continue
		}
		for _, itemID := range file.Items {
			it := u.Builder.Item(itemID)
			name := u.Builder.Name(it.Name)
			c, ok := r.tbl.NewClass(name, classKind(it.Kind), uint32(u.ID), it.NameSpan)
			if !ok {
				b := diag.ReportError(r.reporter(u), diag.SemaDuplicateType, it.NameSpan, "duplicate type "+name)
				if c.Module != 0 {
					b.WithNote(c.Span, "previously declared here")
				} else {
					b.WithNote(it.NameSpan, name+" is a library class")
				}
				b.Emit()
				continue
			}
			if it.Mods.Has(ast.ModAbstract) {
				c.Flags |= types.ClassAbstract
			}
			if it.Mods.Has(ast.ModFinal) || it.Kind == ast.ClassEnum {
				c.Flags |= types.ClassFinal
			}
			seen := make(map[string]bool, len(it.TypeParams))
			for i, tp := range it.TypeParams {
				pname := u.Builder.Name(tp.Name)
				if seen[pname] {
					r.report(u, diag.SemaDuplicateType, tp.Span, "duplicate type parameter %s", pname)
				}
				seen[pname] = true
				c.TypeParams = append(c.TypeParams, types.TypeParam{Name: pname, Type: r.tbl.TypeParam(c.ID, i)})
			}
			d := &ClassDecl{Class: c, Unit: u, Item: itemID, Fields: make(map[ast.MemberID]*types.Attribute)}
			r.info.Classes = append(r.info.Classes, d)
			r.info.byClass[c.ID] = d
		}
	}
}
