package unit

import (
	"jstep/internal/diag"
	"jstep/internal/lexer"
	"jstep/internal/parser"
	"jstep/internal/source"
)

// Attach registers the current text of u in files. Call it sequentially
// before parsing units in parallel.
func (u *Unit) Attach(files *source.FileSet) {
	if !u.Dirty && u.Builder != nil {
		return
	}
	u.File = files.AddVirtual(u.Path, u.Text)
}

// Analyze lexes and parses a dirty unit; file must be the one Attach
// registered. Clean units are left as they are and false is returned.
func (u *Unit) Analyze(file *source.File, maxDiags int) bool {
	if !u.Dirty && u.Builder != nil {
		return false
	}
	u.Lex = diag.NewBag(maxDiags)
	u.Parse = diag.NewBag(maxDiags)
	u.Tokens = lexer.Tokenize(file, lexer.Options{Reporter: diag.BagReporter{Bag: u.Lex}})
	res := parser.ParseFile(u.Tokens, parser.Options{
		Reporter:  diag.BagReporter{Bag: u.Parse},
		MaxErrors: uint(max(maxDiags, 0)), // #nosec G115
	})
	u.Builder = res.Builder
	u.AST = res.File
	u.Healed = res.Healed
	u.Colors = lexer.Highlight(res.Tokens)
	u.Dirty = false
	return true
}
