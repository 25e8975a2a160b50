package types

// IsSubclass reports whether sub equals sup or inherits from it through
// bases or interfaces.
func (t *Table) IsSubclass(sub, sup *Class) bool {
	if sub == nil || sup == nil {
		return false
	}
	if sub == sup {
		return true
	}
	for _, anc := range t.Ancestors(sub) {
		if anc == sup {
			return true
		}
	}
	return false
}

// IsAssignable implements assignment conversion: identity, primitive
// widening char→int→double, null to any reference, subclass to ancestor,
// array covariance for reference elements, and anything to Object.
func (t *Table) IsAssignable(from, to TypeID) bool {
	if from == to {
		return true
	}
	fk, tk := t.Kind(from), t.Kind(to)
	if fk == KindInvalid || tk == KindInvalid {
		return true // ошибка уже выдана
	}
	if fk == KindVoid || tk == KindVoid {
		return false
	}
	if to == t.builtins.Object && t.builtins.Object != NoTypeID {
		return true
	}
	switch {
	case fk.IsPrimitive() || tk.IsPrimitive():
		return t.widens(fk, tk)
	case fk == KindNull:
		return tk.IsReference()
	case fk == KindArray && tk == KindArray:
		fe, te := t.Elem(from), t.Elem(to)
		if t.Kind(fe).IsPrimitive() || t.Kind(te).IsPrimitive() {
			return fe == te
		}
		return t.IsAssignable(fe, te)
	case fk == KindTypeParam:
		if tk == KindTypeParam {
			return false
		}
		return t.IsAssignable(t.Bound(from), to)
	case tk == KindTypeParam:
		return false
	}
	return t.IsSubclass(t.ClassOf(from), t.ClassOf(to))
}

func (t *Table) widens(from, to Kind) bool {
	switch from {
	case KindChar:
		return to == KindChar || to == KindInt || to == KindDouble
	case KindInt:
		return to == KindInt || to == KindDouble
	case KindDouble:
		return to == KindDouble
	case KindBool:
		return to == KindBool
	}
	return false
}

// IsCastable reports whether an explicit cast (T) from is legal.
func (t *Table) IsCastable(from, to TypeID) bool {
	fk, tk := t.Kind(from), t.Kind(to)
	if fk == KindInvalid || tk == KindInvalid {
		return true
	}
	if fk.IsNumeric() && tk.IsNumeric() {
		return true
	}
	if fk.IsPrimitive() || tk.IsPrimitive() {
		return from == to || from == t.builtins.Object || t.IsAssignable(from, to)
	}
	if t.IsAssignable(from, to) || t.IsAssignable(to, from) {
		return true
	}
	// интерфейсы: приведение к/от незапечатанного класса допустимо
	fc, tc := t.ClassOf(from), t.ClassOf(to)
	if fc != nil && tc != nil && (fc.Kind == KindInterface || tc.Kind == KindInterface) {
		return !fc.Is(ClassFinal) && !tc.Is(ClassFinal)
	}
	return fk == KindTypeParam || tk == KindTypeParam
}

// BinaryNumeric returns the promoted operand type of an arithmetic
// operation, or NoTypeID when either side is not numeric.
func (t *Table) BinaryNumeric(a, b TypeID) TypeID {
	ak, bk := t.Kind(a), t.Kind(b)
	if !ak.IsNumeric() || !bk.IsNumeric() {
		return NoTypeID
	}
	if ak == KindDouble || bk == KindDouble {
		return t.builtins.Double
	}
	return t.builtins.Int
}

// Erase maps a specialization to its generic declaration's type and a
// type parameter to its bound.
func (t *Table) Erase(id TypeID) TypeID {
	ty, ok := t.Lookup(id)
	if !ok {
		return id
	}
	switch ty.Kind {
	case KindTypeParam:
		return t.Erase(t.Bound(id))
	case KindArray:
		return t.ArrayOf(t.Erase(ty.Elem))
	case KindClass, KindInterface, KindEnum:
		if c := t.Class(ty.Class); c != nil && c.Origin != NoClassID {
			return t.Class(c.Origin).Type
		}
	}
	return id
}
