package bozon

import (
	"testing"

	"github.com/bozon-lang/bozonc/ascii"
	"github.com/stretchr/testify/assert"
)

func TestOpcode_String(t *testing.T) {
	assert.Equal(t, "push_const", OpPushConst.String())
	assert.Equal(t, "return", OpReturn.String())
	assert.Contains(t, Opcode(200).String(), "opcode(200)")
}

func TestInstruction_String(t *testing.T) {
	ins := Instruction{Op: OpJump, A: 3}
	assert.Contains(t, ins.String(), "jump")
	assert.Contains(t, ins.String(), "3")
}

func TestProgram_Disassemble_RendersEachInstruction(t *testing.T) {
	fn := &FunctionDecl{Name: "addone"}
	p := NewProgram(fn)
	p.emit(Instruction{Op: OpPushConst, A: p.addConst(&SintValue{Value: 1, Kind: TypeInt32})})
	p.emit(Instruction{Op: OpBinaryOp, A: int64(OpAdd)})
	p.emit(Instruction{Op: OpReturn})

	out := p.Disassemble(ascii.DefaultTheme)
	assert.Contains(t, out, "addone")
	assert.Contains(t, out, "push_const")
	assert.Contains(t, out, "1")
	assert.Contains(t, out, "return")
}
