package parser

import (
	"jstep/internal/ast"
	"jstep/internal/token"
)

// Приоритеты бинарных операторов (больше = сильнее связывает)
const (
	precNone = iota
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
)

type binInfo struct {
	op   ast.BinaryOp
	prec int
}

var binaryOps = map[token.Kind]binInfo{
	token.OrOr:    {ast.BinOr, precOr},
	token.AndAnd:  {ast.BinAnd, precAnd},
	token.Pipe:    {ast.BinBitOr, precBitOr},
	token.Caret:   {ast.BinBitXor, precBitXor},
	token.Amp:     {ast.BinBitAnd, precBitAnd},
	token.EqEq:    {ast.BinEq, precEquality},
	token.BangEq:  {ast.BinNe, precEquality},
	token.Lt:      {ast.BinLt, precRelational},
	token.LtEq:    {ast.BinLe, precRelational},
	token.Gt:      {ast.BinGt, precRelational},
	token.GtEq:    {ast.BinGe, precRelational},
	token.Shl:     {ast.BinShl, precShift},
	token.Plus:    {ast.BinAdd, precAdditive},
	token.Minus:   {ast.BinSub, precAdditive},
	token.Star:    {ast.BinMul, precMultiplicative},
	token.Slash:   {ast.BinDiv, precMultiplicative},
	token.Percent: {ast.BinMod, precMultiplicative},
}

var assignOps = map[token.Kind]ast.AssignOp{
	token.Assign:        {},
	token.PlusAssign:    {Compound: true, Op: ast.BinAdd},
	token.MinusAssign:   {Compound: true, Op: ast.BinSub},
	token.StarAssign:    {Compound: true, Op: ast.BinMul},
	token.SlashAssign:   {Compound: true, Op: ast.BinDiv},
	token.PercentAssign: {Compound: true, Op: ast.BinMod},
	token.AmpAssign:     {Compound: true, Op: ast.BinBitAnd},
	token.PipeAssign:    {Compound: true, Op: ast.BinBitOr},
	token.CaretAssign:   {Compound: true, Op: ast.BinBitXor},
	token.ShlAssign:     {Compound: true, Op: ast.BinShl},
	token.ShrAssign:     {Compound: true, Op: ast.BinShr},
}

// peekBinary returns the binary operator at the cursor and how many tokens
// it spans. '>>' arrives as two adjacent '>' tokens.
func (p *Parser) peekBinary() (binInfo, int, bool) {
	tok := p.peek()
	if tok.Kind == token.Gt {
		next := p.peekN(1)
		if next.Kind == token.Gt && !next.Virtual && next.Span.Start == tok.Span.End {
			return binInfo{ast.BinShr, precShift}, 2, true
		}
	}
	info, ok := binaryOps[tok.Kind]
	return info, 1, ok
}
