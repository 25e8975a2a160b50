package steps

import "fmt"

// Op is the operation of a Step.
type Op uint8

const (
	OpNop Op = iota

	OpPushConst // A = индекс константы
	OpPushNull
	OpLoadLocal  // A = slot
	OpStoreLocal // A = slot; с FlagKeep значение остаётся на стеке
	OpPop
	OpDup
	OpDup2  // a b -> a b a b
	OpDupX1 // a b -> b a b
	OpDupX2 // a b c -> c a b c

	OpLoadField    // A = attribute index; obj -> v
	OpStoreField   // A = attribute index; obj v ->
	OpLoadStatic   // A = class, B = static index
	OpStoreStatic  // A = class, B = static index; v ->
	OpLoadComputed // A = native id; obj -> v

	OpArrayLoad   // arr idx -> v
	OpArrayStore  // arr idx v ->
	OpArrayLength // arr -> int
	OpNewArray    // A = array type, B = number of sized dimensions
	OpArrayLit    // A = array type, B = element count

	OpNew      // A = class type
	OpBinary   // A = BinOp, B = NumKind
	OpUnary    // A = UnOp, B = NumKind
	OpConvert  // A = from NumKind, B = to NumKind
	OpToString // A = Object.toString method; any -> String
	OpCheckCast
	OpInstanceOf

	OpJump        // A = target
	OpJumpIfFalse // A = target; bool ->
	OpJumpIfTrue  // A = target; bool ->

	OpCall        // A = method, B = argc (receiver included)
	OpCallVirtual // A = method, B = argc (receiver included)
	OpReturn
	OpReturnValue
	OpThrow

	OpEnterCatch // A = handler index
	OpLeaveCatch

	opCount
)

var opNames = [...]string{
	OpNop: "nop", OpPushConst: "push_const", OpPushNull: "push_null", OpLoadLocal: "load_local",
	OpStoreLocal: "store_local", OpPop: "pop", OpDup: "dup", OpDup2: "dup2", OpDupX1: "dup_x1",
	OpDupX2: "dup_x2", OpLoadField: "load_field", OpStoreField: "store_field",
	OpLoadStatic: "load_static", OpStoreStatic: "store_static", OpLoadComputed: "load_computed",
	OpArrayLoad: "array_load", OpArrayStore: "array_store", OpArrayLength: "array_length",
	OpNewArray: "new_array", OpArrayLit: "array_lit", OpNew: "new", OpBinary: "binary",
	OpUnary: "unary", OpConvert: "convert", OpToString: "to_string", OpCheckCast: "check_cast",
	OpInstanceOf: "instanceof", OpJump: "jump", OpJumpIfFalse: "jump_if_false",
	OpJumpIfTrue: "jump_if_true", OpCall: "call", OpCallVirtual: "call_virtual",
	OpReturn: "return", OpReturnValue: "return_value", OpThrow: "throw",
	OpEnterCatch: "enter_catch", OpLeaveCatch: "leave_catch",
}

func (op Op) String() string {
	if op < opCount {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", op)
}

// IsJump reports ops whose A operand is a code offset.
func (op Op) IsJump() bool {
	return op == OpJump || op == OpJumpIfFalse || op == OpJumpIfTrue
}

// EndsBlock reports control transfers after which a multi-step is cut.
func (op Op) EndsBlock() bool {
	switch op {
	case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpCall, OpCallVirtual, OpToString,
		OpReturn, OpReturnValue, OpThrow, OpEnterCatch, OpLeaveCatch:
		return true
	}
	return false
}

// NumKind selects the operand representation of arithmetic and comparisons.
type NumKind uint8

const (
	NumInt NumKind = iota
	NumDouble
	NumBool
	NumChar
	NumString
	NumRef
)

func (k NumKind) String() string {
	switch k {
	case NumInt:
		return "int"
	case NumDouble:
		return "double"
	case NumBool:
		return "bool"
	case NumChar:
		return "char"
	case NumString:
		return "string"
	case NumRef:
		return "ref"
	}
	return "?"
}

// BinOp mirrors the source-level binary operators, short-circuit excluded.
type BinOp uint8

const (
	BinAdd BinOp = iota
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
	BinAnd
	BinXor
	BinOr
)

var binNames = [...]string{"+", "-", "*", "/", "%", "<<", ">>", "<", "<=", ">", ">=", "==", "!=", "&", "^", "|"}

func (op BinOp) String() string {
	if int(op) < len(binNames) {
		return binNames[op]
	}
	return "?"
}

type UnOp uint8

const (
	UnNeg UnOp = iota
	UnNot
	UnBitNot
)

func (op UnOp) String() string {
	switch op {
	case UnNeg:
		return "-"
	case UnNot:
		return "!"
	case UnBitNot:
		return "~"
	}
	return "?"
}
