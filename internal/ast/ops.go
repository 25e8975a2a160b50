package ast

// BinaryOp enumerates binary operators, short-circuit ones included.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinShl
	BinShr
	BinLt
	BinLe
	BinGt
	BinGe
	BinEq
	BinNe
	BinBitAnd
	BinBitXor
	BinBitOr
	BinAnd // &&
	BinOr  // ||
)

var binaryNames = [...]string{
	BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/", BinMod: "%", BinShl: "<<", BinShr: ">>",
	BinLt: "<", BinLe: "<=", BinGt: ">", BinGe: ">=", BinEq: "==", BinNe: "!=",
	BinBitAnd: "&", BinBitXor: "^", BinBitOr: "|", BinAnd: "&&", BinOr: "||",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryNames) {
		return binaryNames[op]
	}
	return "?"
}

// IsComparison reports whether op yields boolean from ordered or equality comparison.
func (op BinaryOp) IsComparison() bool {
	return op >= BinLt && op <= BinNe
}

type UnaryOp uint8

const (
	UnNeg UnaryOp = iota
	UnPlus
	UnNot
	UnBitNot
)

func (op UnaryOp) String() string {
	switch op {
	case UnNeg:
		return "-"
	case UnPlus:
		return "+"
	case UnNot:
		return "!"
	case UnBitNot:
		return "~"
	}
	return "?"
}

// AssignOp is '=' or the binary operator of a compound assignment.
type AssignOp struct {
	Compound bool
	Op       BinaryOp
}
