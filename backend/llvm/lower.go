package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/bozon-lang/bozonc"
)

// Module lowers every reachable function in a session to a single
// LLVM module (§4.6), grounded on the builder-per-function pattern of
// _examples/other_examples/.../internal-codegen-llvm.go.go: declare
// every function signature first, then fill in bodies, so mutually
// recursive calls resolve regardless of declaration order.
type Module struct {
	session *bozon.Session
	m       *ir.Module
	funcs   map[*bozon.FunctionDecl]*ir.Func
	abi     ABI
}

func NewModule(session *bozon.Session, triple string) *Module {
	m := ir.NewModule()
	m.TargetTriple = triple
	return &Module{session: session, m: m, funcs: make(map[*bozon.FunctionDecl]*ir.Func), abi: ABIFromTarget(triple)}
}

func (mod *Module) Module() *ir.Module { return mod.m }

func (mod *Module) Declare(fn *bozon.FunctionDecl) *ir.Func {
	if f, ok := mod.funcs[fn]; ok {
		return f
	}
	retType := MapType(fn.Return)
	params := make([]*ir.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = ir.NewParam(p.Name, MapType(p.Type))
	}
	f := mod.m.NewFunc(fn.SymbolName, retType, params...)
	mod.funcs[fn] = f
	return f
}

// Lower emits fn's body. Intrinsic and libc-linked declarations are
// left as bare declarations (no body) the way an `extern` signature
// would be.
func (mod *Module) Lower(fn *bozon.FunctionDecl) error {
	f := mod.Declare(fn)
	if fn.Intrinsic != bozon.IntrinsicNone || fn.Linkage&bozon.LinkageLibc != 0 {
		return nil
	}

	fb := &funcBuilder{
		mod:    mod,
		fn:     fn,
		f:      f,
		locals: make(map[*bozon.VarDecl]value.Value),
	}
	entry := f.NewBlock("entry")
	fb.block = entry

	for i, p := range fn.Params {
		alloca := entry.NewAlloca(MapType(p.Type))
		alloca.SetName(p.Name + ".addr")
		entry.NewStore(f.Params[i], alloca)
		fb.locals[p] = alloca
	}

	for _, stmt := range fn.Body {
		if err := fb.stmt(stmt); err != nil {
			return fmt.Errorf("lowering %s: %w", fn.Name, err)
		}
	}
	if fb.block.Term == nil {
		if _, ok := fn.Return.Term.(bozon.VoidTerm); ok {
			fb.block.NewRet(nil)
		} else {
			fb.block.NewUnreachable()
		}
	}
	return nil
}

type loopTargets struct {
	continueBlock, breakBlock *ir.Block
}

type funcBuilder struct {
	mod    *Module
	fn     *bozon.FunctionDecl
	f      *ir.Func
	block  *ir.Block
	locals map[*bozon.VarDecl]value.Value
	loops  []loopTargets
}

func (fb *funcBuilder) stmt(s bozon.Stmt) error {
	switch v := s.(type) {
	case bozon.ExprStmt:
		_, err := fb.expr(v.Expr)
		return err

	case bozon.VarDeclStmt:
		alloca := fb.block.NewAlloca(MapType(v.Var.Type))
		alloca.SetName(v.Var.Name)
		fb.locals[v.Var] = alloca
		if v.Init != nil {
			val, err := fb.expr(v.Init)
			if err != nil {
				return err
			}
			fb.block.NewStore(val, alloca)
		}
		return nil

	case bozon.BlockStmt:
		for _, inner := range v.Body {
			if err := fb.stmt(inner); err != nil {
				return err
			}
		}
		return nil

	case bozon.IfStmt:
		return fb.ifStmt(v)

	case bozon.WhileStmt:
		return fb.whileStmt(v)

	case bozon.SwitchStmt:
		return fb.switchStmt(v)

	case bozon.BreakStmt:
		if len(fb.loops) == 0 {
			return fmt.Errorf("break outside a loop")
		}
		fb.block.NewBr(fb.loops[len(fb.loops)-1].breakBlock)
		return nil

	case bozon.ContinueStmt:
		if len(fb.loops) == 0 {
			return fmt.Errorf("continue outside a loop")
		}
		fb.block.NewBr(fb.loops[len(fb.loops)-1].continueBlock)
		return nil

	case bozon.ReturnStmt:
		if v.Value == nil {
			fb.block.NewRet(nil)
			return nil
		}
		val, err := fb.expr(v.Value)
		if err != nil {
			return err
		}
		fb.block.NewRet(val)
		return nil

	default:
		return fmt.Errorf("lowering: unhandled statement %T", s)
	}
}

func (fb *funcBuilder) ifStmt(v bozon.IfStmt) error {
	cond, err := fb.expr(v.Cond)
	if err != nil {
		return err
	}
	thenBlock := fb.f.NewBlock("")
	elseBlock := fb.f.NewBlock("")
	mergeBlock := fb.f.NewBlock("")
	fb.block.NewCondBr(cond, thenBlock, elseBlock)

	fb.block = thenBlock
	for _, stmt := range v.Then {
		if err := fb.stmt(stmt); err != nil {
			return err
		}
	}
	if fb.block.Term == nil {
		fb.block.NewBr(mergeBlock)
	}

	fb.block = elseBlock
	for _, stmt := range v.Else {
		if err := fb.stmt(stmt); err != nil {
			return err
		}
	}
	if fb.block.Term == nil {
		fb.block.NewBr(mergeBlock)
	}

	fb.block = mergeBlock
	return nil
}

func (fb *funcBuilder) whileStmt(v bozon.WhileStmt) error {
	headerBlock := fb.f.NewBlock("")
	bodyBlock := fb.f.NewBlock("")
	exitBlock := fb.f.NewBlock("")

	fb.block.NewBr(headerBlock)
	fb.block = headerBlock
	cond, err := fb.expr(v.Cond)
	if err != nil {
		return err
	}
	fb.block.NewCondBr(cond, bodyBlock, exitBlock)

	fb.loops = append(fb.loops, loopTargets{continueBlock: headerBlock, breakBlock: exitBlock})
	fb.block = bodyBlock
	for _, stmt := range v.Body {
		if err := fb.stmt(stmt); err != nil {
			return err
		}
	}
	if fb.block.Term == nil {
		fb.block.NewBr(headerBlock)
	}
	fb.loops = fb.loops[:len(fb.loops)-1]

	fb.block = exitBlock
	return nil
}

// switchStmt lowers to a chain of compare-and-branch blocks, one per
// case, matching the first whose constant equals the subject — the
// same model as compiler.go's compileSwitch, since the executor only
// ever sees fully-typed, fully-constant case labels.
func (fb *funcBuilder) switchStmt(v bozon.SwitchStmt) error {
	subject, err := fb.expr(v.Subject)
	if err != nil {
		return err
	}
	isFloat := isFloatType(subject.Type())
	sig := isSignedOperand(v.Subject.Type)

	mergeBlock := fb.f.NewBlock("")
	for _, cs := range v.Cases {
		matchVal, err := fb.constant(cs.Match, v.Subject.Type)
		if err != nil {
			return err
		}
		caseBlock := fb.f.NewBlock("")
		nextBlock := fb.f.NewBlock("")
		cond := fb.compare(bozon.OpEqual, subject, matchVal, isFloat, sig)
		fb.block.NewCondBr(cond, caseBlock, nextBlock)

		fb.block = caseBlock
		for _, stmt := range cs.Body {
			if err := fb.stmt(stmt); err != nil {
				return err
			}
		}
		if fb.block.Term == nil {
			fb.block.NewBr(mergeBlock)
		}

		fb.block = nextBlock
	}
	if fb.block.Term == nil {
		fb.block.NewBr(mergeBlock)
	}
	fb.block = mergeBlock
	return nil
}

func (fb *funcBuilder) expr(e *bozon.Expr) (value.Value, error) {
	if e.Kind == bozon.ExprConstant {
		return fb.constant(e.Constant, e.Type)
	}

	switch v := e.Body.(type) {
	case bozon.LiteralExpr:
		return fb.constant(v.Value, e.Type)

	case bozon.IdentifierExpr:
		addr, ok := fb.locals[v.Var]
		if !ok {
			return nil, fmt.Errorf("identifier %q lowered before its declaration", v.Var.Name)
		}
		if e.Category == bozon.ValueLvalue {
			return addr, nil
		}
		return fb.block.NewLoad(MapType(v.Var.Type), addr), nil

	case bozon.UnaryExpr:
		return fb.unary(v, e.Type)

	case bozon.BinaryExpr:
		return fb.binary(v, e.Type)

	case bozon.CallExpr:
		return fb.call(v)

	case bozon.CastExpr:
		return fb.cast(v, e.Type)

	case bozon.SubscriptExpr:
		return fb.subscript(v)

	case bozon.CompoundExpr:
		return fb.compound(v, e.Type)

	case bozon.IfExpr:
		return fb.ifExpr(v, e.Type)

	default:
		return nil, fmt.Errorf("lowering: unhandled expression %T", e.Body)
	}
}

// compound lowers a statement-expression: every statement runs for
// its side effects, except a trailing ExprStmt whose value becomes
// the compound's own value — the same convention as compiler.go's
// CompoundExpr case.
func (fb *funcBuilder) compound(v bozon.CompoundExpr, t bozon.Typespec) (value.Value, error) {
	for i, stmt := range v.Stmts {
		if i == len(v.Stmts)-1 {
			if es, ok := stmt.(bozon.ExprStmt); ok {
				return fb.expr(es.Expr)
			}
		}
		if err := fb.stmt(stmt); err != nil {
			return nil, err
		}
	}
	if bozon.IsTerm[bozon.VoidTerm](t) {
		return nil, nil
	}
	return fb.constant(&bozon.NullValue{}, t)
}

func (fb *funcBuilder) constant(c bozon.ConstantValue, t bozon.Typespec) (value.Value, error) {
	switch v := c.(type) {
	case *bozon.SintValue:
		return constant.NewInt(MapType(t).(*types.IntType), v.Value), nil
	case *bozon.UintValue:
		return constant.NewInt(MapType(t).(*types.IntType), int64(v.Value)), nil
	case *bozon.Float32Value:
		return constant.NewFloat(types.Float, float64(v.Value)), nil
	case *bozon.Float64Value:
		return constant.NewFloat(types.Double, v.Value), nil
	case *bozon.BoolValue:
		if v.Value {
			return constant.True, nil
		}
		return constant.False, nil
	case *bozon.CharValue:
		return constant.NewInt(types.I32, int64(v.Value)), nil
	case *bozon.NullValue:
		return constant.NewNull(MapType(t).(*types.PointerType)), nil
	default:
		return nil, fmt.Errorf("lowering: constant kind %T has no scalar LLVM form", c)
	}
}

func (fb *funcBuilder) unary(v bozon.UnaryExpr, t bozon.Typespec) (value.Value, error) {
	operand, err := fb.expr(v.Operand)
	if err != nil {
		return nil, err
	}
	isFloat := isFloatType(operand.Type())
	switch v.Op {
	case bozon.OpUnaryMinus:
		if isFloat {
			return fb.block.NewFSub(constant.NewFloat(operand.Type().(*types.FloatType), 0), operand), nil
		}
		return fb.block.NewSub(constant.NewInt(operand.Type().(*types.IntType), 0), operand), nil
	case bozon.OpBitNot:
		allOnes := constant.NewInt(operand.Type().(*types.IntType), -1)
		return fb.block.NewXor(operand, allOnes), nil
	case bozon.OpLogicalNot:
		return fb.block.NewXor(operand, constant.True), nil
	case bozon.OpUnaryPlus:
		return operand, nil
	default:
		return nil, fmt.Errorf("lowering: unary operator %s has no LLVM form", v.Op)
	}
}

func (fb *funcBuilder) binary(v bozon.BinaryExpr, t bozon.Typespec) (value.Value, error) {
	if v.Op == bozon.OpLogicalAnd || v.Op == bozon.OpLogicalOr {
		return fb.shortCircuit(v)
	}
	if v.Op == bozon.OpLogicalXor {
		left, err := fb.expr(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := fb.expr(v.Right)
		if err != nil {
			return nil, err
		}
		return fb.block.NewXor(left, right), nil
	}
	left, err := fb.expr(v.Left)
	if err != nil {
		return nil, err
	}
	right, err := fb.expr(v.Right)
	if err != nil {
		return nil, err
	}
	isFloat := isFloatType(left.Type())
	sig := isSignedOperand(v.Left.Type)

	switch v.Op {
	case bozon.OpAdd:
		if isFloat {
			return fb.block.NewFAdd(left, right), nil
		}
		return fb.block.NewAdd(left, right), nil
	case bozon.OpSubtract:
		if isFloat {
			return fb.block.NewFSub(left, right), nil
		}
		return fb.block.NewSub(left, right), nil
	case bozon.OpMultiply:
		if isFloat {
			return fb.block.NewFMul(left, right), nil
		}
		return fb.block.NewMul(left, right), nil
	case bozon.OpDivide:
		if isFloat {
			return fb.block.NewFDiv(left, right), nil
		}
		if sig {
			return fb.block.NewSDiv(left, right), nil
		}
		return fb.block.NewUDiv(left, right), nil
	case bozon.OpModulo:
		if isFloat {
			return fb.block.NewFRem(left, right), nil
		}
		if sig {
			return fb.block.NewSRem(left, right), nil
		}
		return fb.block.NewURem(left, right), nil
	case bozon.OpBitAnd:
		return fb.block.NewAnd(left, right), nil
	case bozon.OpBitOr:
		return fb.block.NewOr(left, right), nil
	case bozon.OpBitXor:
		return fb.block.NewXor(left, right), nil
	case bozon.OpShiftLeft:
		return fb.block.NewShl(left, right), nil
	case bozon.OpShiftRight:
		if sig {
			return fb.block.NewAShr(left, right), nil
		}
		return fb.block.NewLShr(left, right), nil
	case bozon.OpEqual, bozon.OpNotEqual, bozon.OpLess, bozon.OpLessEqual, bozon.OpGreater, bozon.OpGreaterEqual:
		return fb.compare(v.Op, left, right, isFloat, sig), nil
	default:
		return nil, fmt.Errorf("lowering: binary operator %s has no LLVM form", v.Op)
	}
}

func (fb *funcBuilder) compare(op bozon.OperatorKind, left, right value.Value, isFloat, signed bool) value.Value {
	if isFloat {
		pred := map[bozon.OperatorKind]enum.FPred{
			bozon.OpEqual: enum.FPredOEQ, bozon.OpNotEqual: enum.FPredONE,
			bozon.OpLess: enum.FPredOLT, bozon.OpLessEqual: enum.FPredOLE,
			bozon.OpGreater: enum.FPredOGT, bozon.OpGreaterEqual: enum.FPredOGE,
		}[op]
		return fb.block.NewFCmp(pred, left, right)
	}
	var pred enum.IPred
	switch op {
	case bozon.OpEqual:
		pred = enum.IPredEQ
	case bozon.OpNotEqual:
		pred = enum.IPredNE
	case bozon.OpLess:
		if signed {
			pred = enum.IPredSLT
		} else {
			pred = enum.IPredULT
		}
	case bozon.OpLessEqual:
		if signed {
			pred = enum.IPredSLE
		} else {
			pred = enum.IPredULE
		}
	case bozon.OpGreater:
		if signed {
			pred = enum.IPredSGT
		} else {
			pred = enum.IPredUGT
		}
	case bozon.OpGreaterEqual:
		if signed {
			pred = enum.IPredSGE
		} else {
			pred = enum.IPredUGE
		}
	}
	return fb.block.NewICmp(pred, left, right)
}

// shortCircuit lowers && and || with blocks instead of a select, so
// the right operand's side effects only run when needed (§4.5, §4.6.3
// "loops capture break/continue"; the same block-splitting idiom
// applies to any short-circuiting control flow).
func (fb *funcBuilder) shortCircuit(v bozon.BinaryExpr) (value.Value, error) {
	left, err := fb.expr(v.Left)
	if err != nil {
		return nil, err
	}
	rhsBlock := fb.f.NewBlock("")
	mergeBlock := fb.f.NewBlock("")
	startBlock := fb.block

	if v.Op == bozon.OpLogicalAnd {
		fb.block.NewCondBr(left, rhsBlock, mergeBlock)
	} else {
		fb.block.NewCondBr(left, mergeBlock, rhsBlock)
	}

	fb.block = rhsBlock
	right, err := fb.expr(v.Right)
	if err != nil {
		return nil, err
	}
	fb.block.NewBr(mergeBlock)
	rhsEnd := fb.block

	fb.block = mergeBlock
	phi := ir.NewPhi(ir.NewIncoming(left, startBlock), ir.NewIncoming(right, rhsEnd))
	mergeBlock.Insts = append(mergeBlock.Insts, phi)
	return phi, nil
}

func (fb *funcBuilder) call(v bozon.CallExpr) (value.Value, error) {
	if v.Func == nil {
		return nil, fmt.Errorf("lowering: call to an unresolved function")
	}
	args := make([]value.Value, len(v.Args))
	for i, a := range v.Args {
		val, err := fb.expr(a)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}
	callee := fb.mod.Declare(v.Func)
	return fb.block.NewCall(callee, args...), nil
}

func (fb *funcBuilder) cast(v bozon.CastExpr, target bozon.Typespec) (value.Value, error) {
	operand, err := fb.expr(v.Operand)
	if err != nil {
		return nil, err
	}
	srcInt, srcIsInt := operand.Type().(*types.IntType)
	dstType := MapType(target)
	dstInt, dstIsInt := dstType.(*types.IntType)

	switch {
	case srcIsInt && dstIsInt:
		switch {
		case dstInt.BitSize > srcInt.BitSize:
			if isSignedOperand(v.Operand.Type) {
				return fb.block.NewSExt(operand, dstInt), nil
			}
			return fb.block.NewZExt(operand, dstInt), nil
		case dstInt.BitSize < srcInt.BitSize:
			return fb.block.NewTrunc(operand, dstInt), nil
		default:
			return operand, nil
		}
	case srcIsInt && isFloatType(dstType):
		if isSignedOperand(v.Operand.Type) {
			return fb.block.NewSIToFP(operand, dstType), nil
		}
		return fb.block.NewUIToFP(operand, dstType), nil
	case isFloatType(operand.Type()) && dstIsInt:
		if isSignedOperand(target) {
			return fb.block.NewFPToSI(operand, dstInt), nil
		}
		return fb.block.NewFPToUI(operand, dstInt), nil
	case isFloatType(operand.Type()) && isFloatType(dstType):
		return fb.block.NewFPExt(operand, dstType), nil
	default:
		return fb.block.NewBitCast(operand, dstType), nil
	}
}

func (fb *funcBuilder) subscript(v bozon.SubscriptExpr) (value.Value, error) {
	base, err := fb.expr(v.Base)
	if err != nil {
		return nil, err
	}
	idx, err := fb.expr(v.Index)
	if err != nil {
		return nil, err
	}
	zero := constant.NewInt(types.I64, 0)
	gep := fb.block.NewGetElementPtr(base.Type().(*types.PointerType).ElemType, base, zero, idx)
	return fb.block.NewLoad(gep.Type().(*types.PointerType).ElemType, gep), nil
}

func (fb *funcBuilder) ifExpr(v bozon.IfExpr, t bozon.Typespec) (value.Value, error) {
	cond, err := fb.expr(v.Cond)
	if err != nil {
		return nil, err
	}
	thenBlock := fb.f.NewBlock("")
	elseBlock := fb.f.NewBlock("")
	mergeBlock := fb.f.NewBlock("")
	fb.block.NewCondBr(cond, thenBlock, elseBlock)

	fb.block = thenBlock
	thenVal, err := fb.expr(v.Then)
	if err != nil {
		return nil, err
	}
	fb.block.NewBr(mergeBlock)
	thenEnd := fb.block

	fb.block = elseBlock
	elseVal, err := fb.expr(v.Else)
	if err != nil {
		return nil, err
	}
	fb.block.NewBr(mergeBlock)
	elseEnd := fb.block

	fb.block = mergeBlock
	phi := ir.NewPhi(ir.NewIncoming(thenVal, thenEnd), ir.NewIncoming(elseVal, elseEnd))
	mergeBlock.Insts = append(mergeBlock.Insts, phi)
	return phi, nil
}

func isFloatType(t types.Type) bool {
	_, ok := t.(*types.FloatType)
	return ok
}

func isSignedOperand(t bozon.Typespec) bool {
	if len(t.Modifiers) != 0 {
		return false
	}
	bt, ok := t.Term.(bozon.BaseTypeTerm)
	return ok && bt.Info.Kind.IsSigned()
}
