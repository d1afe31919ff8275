package bozon

import (
	"fmt"
	"strings"

	"github.com/bozon-lang/bozonc/ascii"
)

// Program is a compiled function body ready for the executor (§4.4).
// One Program exists per reachable consteval-executable FunctionDecl;
// EntryPoint is the first instruction of the function itself, all
// other code in the slice belongs to nested compound/if/while bodies
// laid out linearly.
type Program struct {
	Code       []Instruction
	Consts     []ConstantValue
	Locals     []*VarDecl // index == local slot
	EntryPoint int
	Func       *FunctionDecl
}

func NewProgram(fn *FunctionDecl) *Program {
	return &Program{Func: fn}
}

func (p *Program) emit(i Instruction) int {
	p.Code = append(p.Code, i)
	return len(p.Code) - 1
}

func (p *Program) addConst(v ConstantValue) int64 {
	for i, c := range p.Consts {
		if c == v {
			return int64(i)
		}
	}
	p.Consts = append(p.Consts, v)
	return int64(len(p.Consts) - 1)
}

// patchJump rewrites a jump instruction's target operand once its
// destination is known, the way a one-pass compiler backpatches
// forward branches.
func (p *Program) patchJump(at int, target int) {
	p.Code[at].A = int64(target)
}

// Disassemble renders the program the way the teacher's ascii-themed
// printers render ASTs: one instruction per line, constants and
// operators colorized by role.
func (p *Program) Disassemble(theme ascii.Theme) string {
	var b strings.Builder
	name := "<anonymous>"
	if p.Func != nil {
		name = p.Func.Name
	}
	fmt.Fprintf(&b, "%s\n", ascii.Color(theme.Label, "function %s", name))
	for i, ins := range p.Code {
		fmt.Fprintf(&b, "%4d  %s", i, ascii.Color(theme.Operator, "%-14s", ins.Op))
		switch ins.Op {
		case OpPushConst:
			if int(ins.A) < len(p.Consts) {
				fmt.Fprintf(&b, " %s", ascii.Color(theme.Literal, "%s", p.Consts[ins.A]))
			}
		case OpLoadLocal, OpStoreLocal:
			if int(ins.A) < len(p.Locals) {
				fmt.Fprintf(&b, " %s", ascii.Color(theme.Operand, "%s", p.Locals[ins.A].Name))
			}
		case OpJump, OpJumpIfFalse:
			fmt.Fprintf(&b, " -> %s", ascii.Color(theme.Span, "%d", ins.A))
		case OpBinaryOp, OpUnaryOp:
			fmt.Fprintf(&b, " %s", ascii.Color(theme.Operator, "%s", OperatorKind(ins.A)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
