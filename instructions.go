package bozon

import "fmt"

// Opcode is the compile-time executor's instruction set (§4.4). Unlike
// the teacher's byte-oriented parsing VM, operands here are indices
// into a Program's constant/local tables rather than raw encoded
// bytes — the executor interprets structured ConstantValue, not text —
// but the dispatch-loop shape (a flat code slice, a pc, an explicit
// operand stack) is the same idiom.
//
// NOTE: changing the order of these variants changes a serialized
// Program's format; see bytecode_encode.go.
type Opcode byte

const (
	OpHalt Opcode = iota
	OpPushConst
	OpLoadLocal
	OpStoreLocal
	OpPop
	OpDup
	OpUnaryOp
	OpBinaryOp
	OpMakeArray
	OpMakeTuple
	OpIndex
	OpJump
	OpJumpIfFalse
	OpCall
	OpCallIntrinsic
	OpReturn
)

var opcodeNames = map[Opcode]string{
	OpHalt:          "halt",
	OpPushConst:     "push_const",
	OpLoadLocal:     "load_local",
	OpStoreLocal:    "store_local",
	OpPop:           "pop",
	OpDup:           "dup",
	OpUnaryOp:       "unary_op",
	OpBinaryOp:      "binary_op",
	OpMakeArray:     "make_array",
	OpMakeTuple:     "make_tuple",
	OpIndex:         "index",
	OpJump:          "jump",
	OpJumpIfFalse:   "jump_if_false",
	OpCall:          "call",
	OpCallIntrinsic: "call_intrinsic",
	OpReturn:        "return",
}

func (op Opcode) String() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return fmt.Sprintf("opcode(%d)", byte(op))
}

// Instruction is one executor instruction. A/B/C are opcode-specific
// operands (constant pool index, local slot, jump target, operator
// kind, argument count) — never more than three are meaningful for any
// given opcode.
type Instruction struct {
	Op   Opcode
	A, B, C int64
	Loc  SrcTokens
}

func (i Instruction) String() string {
	return fmt.Sprintf("%-16s %d %d %d", i.Op, i.A, i.B, i.C)
}
