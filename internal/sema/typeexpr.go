package sema

import (
	"fmt"

	"jstep/internal/ast"
	"jstep/internal/diag"
	"jstep/internal/source"
	"jstep/internal/types"
	"jstep/internal/unit"
)

// TypeEnv is the context a type expression is resolved in.
type TypeEnv struct {
	Unit     *unit.Unit
	Class    *types.Class // его параметры типа видимы
	Reporter diag.Reporter
	// Static hides the type parameters of Class.
	Static bool
	// Hint is the target type used to infer the arguments of new C<>().
	Hint types.TypeID
}

// boxed names denote the primitive types: generics accept primitives
// directly, so Integer and int are the same type.
var boxed = map[string]types.Kind{
	"Integer":   types.KindInt,
	"Double":    types.KindDouble,
	"Boolean":   types.KindBool,
	"Character": types.KindChar,
}

// ResolveType maps a syntactic type to a semantic one. void yields
// NoTypeID; errors are reported and yield the invalid type.
func (info *Info) ResolveType(env TypeEnv, id ast.TypeID) types.TypeID {
	return info.resolveType(env, id)
}

// ResolveValueType is ResolveType for positions where void is illegal.
func (info *Info) ResolveValueType(env TypeEnv, id ast.TypeID) types.TypeID {
	t := info.resolveType(env, id)
	if t == types.NoTypeID {
		info.report(env, diag.SemaVoidValue, env.Unit.Builder.Type(id).Span, "'void' type not allowed here")
		return info.Types.Builtins().Invalid
	}
	return t
}

func (info *Info) report(env TypeEnv, code diag.Code, sp source.Span, format string, args ...any) {
	if env.Reporter == nil {
		return
	}
	diag.ReportError(env.Reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (info *Info) resolveType(env TypeEnv, id ast.TypeID) types.TypeID {
	tbl := info.Types
	bt := tbl.Builtins()
	te := env.Unit.Builder.Type(id)
	if te == nil {
		return bt.Invalid
	}
	switch te.Kind {
	case ast.TypeVoid:
		return types.NoTypeID
	case ast.TypeInt:
		return bt.Int
	case ast.TypeDouble:
		return bt.Double
	case ast.TypeBoolean:
		return bt.Bool
	case ast.TypeChar:
		return bt.Char
	case ast.TypeArray:
		elem := info.resolveType(env, te.Elem)
		switch {
		case elem == bt.Invalid:
			return bt.Invalid
		case elem == types.NoTypeID:
			info.report(env, diag.SemaVoidValue, te.Span, "arrays of void are not allowed")
			return bt.Invalid
		}
		return tbl.ArrayOf(elem)
	case ast.TypeVar:
		// var выводится генератором из инициализатора
		return bt.Invalid
	case ast.TypeNamed:
		return info.resolveNamed(env, te)
	}
	return bt.Invalid
}

// typeParamOf finds a type parameter of the environment's class by name.
func (info *Info) typeParamOf(env TypeEnv, name string) (types.TypeParam, bool) {
	c := env.Class
	if c == nil {
		return types.TypeParam{}, false
	}
	if c.Origin != types.NoClassID {
		c = info.Types.Class(c.Origin)
	}
	for _, tp := range c.TypeParams {
		if tp.Name == name {
			return tp, true
		}
	}
	return types.TypeParam{}, false
}

func (info *Info) resolveNamed(env TypeEnv, te *ast.TypeExpr) types.TypeID {
	tbl := info.Types
	bt := tbl.Builtins()
	name := env.Unit.Builder.Name(te.Name)

	if tp, ok := info.typeParamOf(env, name); ok {
		if env.Static {
			info.report(env, diag.SemaStaticContext, te.Span, "type parameter %s cannot be used in a static context", name)
			return bt.Invalid
		}
		if len(te.Args) > 0 || te.Diamond {
			info.report(env, diag.SemaTypeArgCount, te.Span, "type parameter %s cannot have type arguments", name)
		}
		return tp.Type
	}
	if k, ok := boxed[name]; ok && len(te.Args) == 0 && !te.Diamond {
		return tbl.Intern(types.Type{Kind: k})
	}
	c := tbl.ClassByName(name)
	if c == nil || c.Name[0] == '$' {
		info.report(env, diag.SemaUnresolvedType, te.Span, "cannot find type %s", name)
		return bt.Invalid
	}
	env.Unit.Use(unit.ModuleID(c.Module), te.Span, c.Type)

	if te.Diamond {
		if hint := tbl.ClassOf(env.Hint); hint != nil && hint.Origin == c.ID && tbl.Kind(env.Hint).IsClassLike() {
			return env.Hint
		}
		if !c.IsGeneric() {
			info.report(env, diag.SemaTypeArgCount, te.Span, "%s is not generic", name)
			return c.Type
		}
		info.report(env, diag.SemaTypeArgCount, te.Span, "cannot infer type arguments for %s<>", name)
		return bt.Invalid
	}
	if len(te.Args) == 0 {
		if c.IsGeneric() {
			info.report(env, diag.SemaTypeArgCount, te.Span, "generic type %s requires %d type argument(s)", name, len(c.TypeParams))
			return bt.Invalid
		}
		return c.Type
	}
	if !c.IsGeneric() {
		info.report(env, diag.SemaTypeArgCount, te.Span, "type %s is not generic", name)
		return c.Type
	}

	args := make([]types.TypeID, 0, len(te.Args))
	ok := true
	for _, a := range te.Args {
		at := info.resolveType(env, a)
		switch at {
		case bt.Invalid:
			ok = false
		case types.NoTypeID:
			info.report(env, diag.SemaVoidValue, env.Unit.Builder.Type(a).Span, "'void' cannot be a type argument")
			ok = false
		}
		args = append(args, at)
	}
	if !ok {
		return bt.Invalid
	}
	spec, err := tbl.Specialize(c, args)
	if err != nil {
		info.report(env, diag.SemaTypeArgCount, te.Span, "%s", err.Error())
		return bt.Invalid
	}
	if info.boundsReady(c) {
		for i, tp := range c.TypeParams {
			if tp.Bound == types.NoTypeID {
				continue
			}
			want := tbl.Subst(tp.Bound, c, args)
			if !tbl.IsAssignable(args[i], want) {
				info.report(env, diag.SemaTypeMismatch, env.Unit.Builder.Type(te.Args[i]).Span,
					"type argument %s is not within bound %s of %s", tbl.String(args[i]), tbl.String(want), tp.Name)
			}
		}
	}
	return spec.Type
}

// boundsReady reports whether c's header, type parameter bounds included,
// has been linked.
func (info *Info) boundsReady(c *types.Class) bool {
	d := info.byClass[c.ID]
	return d == nil || d.linked
}
