package gen

import "jstep/internal/ast"

// terminatesAll reports whether control cannot fall off the end of list.
func (f *fn) terminatesAll(list []ast.StmtID) bool {
	for _, id := range list {
		if f.terminates(id) {
			return true
		}
	}
	return false
}

func (f *fn) terminates(id ast.StmtID) bool {
	st := f.b.Stmts.Get(id)
	if st == nil {
		return false
	}
	switch st.Kind {
	case ast.StmtReturn, ast.StmtThrow:
		return true
	case ast.StmtBlock:
		blk, _ := f.b.Stmts.Block(id)
		return f.terminatesAll(blk.Stmts)
	case ast.StmtIf:
		s, _ := f.b.Stmts.If(id)
		return s.Else.IsValid() && f.terminates(s.Then) && f.terminates(s.Else)
	case ast.StmtWhile:
		s, _ := f.b.Stmts.Loop(id)
		return f.isTrue(s.Cond) && !f.breaksOut(s.Body, 0)
	case ast.StmtDoWhile:
		s, _ := f.b.Stmts.Loop(id)
		if f.breaksOut(s.Body, 0) {
			return false
		}
		return f.terminates(s.Body) || f.isTrue(s.Cond)
	case ast.StmtFor:
		s, _ := f.b.Stmts.For(id)
		return (!s.Cond.IsValid() || f.isTrue(s.Cond)) && !f.breaksOut(s.Body, 0)
	case ast.StmtSwitch:
		s, _ := f.b.Stmts.Switch(id)
		hasDefault := false
		for _, c := range s.Cases {
			if len(c.Labels) == 0 {
				hasDefault = true
			}
			for _, b := range c.Body {
				if f.breaksOut(b, 0) {
					return false
				}
			}
		}
		if !hasDefault || len(s.Cases) == 0 {
			return false
		}
		return f.terminatesAll(s.Cases[len(s.Cases)-1].Body)
	case ast.StmtTry:
		s, _ := f.b.Stmts.Try(id)
		if !f.terminates(s.Body) {
			return false
		}
		for _, c := range s.Catches {
			if !f.terminates(c.Body) {
				return false
			}
		}
		return true
	}
	return false
}

func (f *fn) isTrue(id ast.ExprID) bool {
	lit, ok := f.b.Exprs.Literal(f.b.Exprs.Unparen(id))
	return ok && lit.Kind == ast.LitTrue
}

// breaksOut reports a break that leaves the statement at nesting depth 0:
// breaks inside nested loops and switches target those.
func (f *fn) breaksOut(id ast.StmtID, depth int) bool {
	st := f.b.Stmts.Get(id)
	if st == nil {
		return false
	}
	switch st.Kind {
	case ast.StmtBreak:
		return depth == 0
	case ast.StmtBlock:
		blk, _ := f.b.Stmts.Block(id)
		for _, s := range blk.Stmts {
			if f.breaksOut(s, depth) {
				return true
			}
		}
	case ast.StmtIf:
		s, _ := f.b.Stmts.If(id)
		return f.breaksOut(s.Then, depth) || (s.Else.IsValid() && f.breaksOut(s.Else, depth))
	case ast.StmtWhile, ast.StmtDoWhile:
		s, _ := f.b.Stmts.Loop(id)
		return f.breaksOut(s.Body, depth+1)
	case ast.StmtFor:
		s, _ := f.b.Stmts.For(id)
		return f.breaksOut(s.Body, depth+1)
	case ast.StmtForEach:
		s, _ := f.b.Stmts.ForEach(id)
		return f.breaksOut(s.Body, depth+1)
	case ast.StmtSwitch:
		s, _ := f.b.Stmts.Switch(id)
		for _, c := range s.Cases {
			for _, b := range c.Body {
				if f.breaksOut(b, depth+1) {
					return true
				}
			}
		}
	case ast.StmtTry:
		s, _ := f.b.Stmts.Try(id)
		if f.breaksOut(s.Body, depth) {
			return true
		}
		for _, c := range s.Catches {
			if f.breaksOut(c.Body, depth) {
				return true
			}
		}
	}
	return false
}
