package bozon

import "fmt"

// Executor runs consteval function bodies at compile time (§4.4). It
// compiles a FunctionDecl's statement tree into a Program once (cached
// per decl in the Executor) and then interprets that program with a
// bounded call stack, turning Bozon-level intrinsics (compile_error,
// compile_warning) into diagnostics and host-level recursion limits
// into returned errors rather than letting either crash the compiler
// process.
type Executor struct {
	session *Session
	stack   *execStack
	cache   map[*FunctionDecl]*Program
}

func NewExecutor(s *Session) *Executor {
	return &Executor{
		session: s,
		stack:   newExecStack(s.Config.GetInt("consteval.recursion_limit")),
		cache:   make(map[*FunctionDecl]*Program),
	}
}

// Execute runs fn with args already evaluated to constants, returning
// its result or a diagnostic-carrying error (§4.4's execute contract).
func (e *Executor) Execute(fn *FunctionDecl, args []ConstantValue) (result ConstantValue, err error) {
	p, perr := e.program(fn)
	if perr != nil {
		return nil, perr
	}

	// By the time Execute runs, overload resolution and generic
	// instantiation have already produced a concrete FunctionDecl per
	// distinct argument-type tuple (func.go's Instantiate/
	// CacheInstantiation), so the symbol name alone is a sound
	// resolve-in-progress key.
	frame, ferr := e.stack.enter(p, fn.SymbolName)
	if ferr != nil {
		return nil, ferr
	}
	defer e.stack.leave()

	for i, a := range args {
		if i < len(frame.locals) {
			frame.locals[i] = a
		}
	}

	// A panic from a malformed program (an internalf invariant
	// violation, or a Go runtime fault inside a Safe* helper) becomes
	// an error returned from Execute instead of unwinding out of the
	// compiler. No diagnostic is recorded for it, and the error carries
	// no source span.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compile-time evaluation of %q panicked: %v", fn.Name, r)
		}
	}()

	return e.run(frame)
}

// Program compiles fn to bytecode without running it, for callers that
// only want the disassembly (the --emit=null driver path).
func (e *Executor) Program(fn *FunctionDecl) (*Program, error) {
	return e.program(fn)
}

func (e *Executor) program(fn *FunctionDecl) (*Program, error) {
	if fn.Intrinsic != IntrinsicNone {
		return &Program{Func: fn}, nil
	}
	if p, ok := e.cache[fn]; ok {
		return p, nil
	}
	p := NewProgram(fn)
	c := &compiler{program: p, locals: make(map[*VarDecl]int64)}
	for _, param := range fn.Params {
		c.declareLocal(param)
	}
	for _, stmt := range fn.Body {
		c.compileStmt(stmt)
	}
	p.emit(Instruction{Op: OpPushConst, A: p.addConst(&NullValue{})})
	p.emit(Instruction{Op: OpReturn})
	e.cache[fn] = p
	return p, nil
}

func (e *Executor) run(f *execFrame) (ConstantValue, error) {
	p := f.program
	for f.pc < len(p.Code) {
		ins := p.Code[f.pc]
		switch ins.Op {
		case OpHalt:
			return nil, nil

		case OpPushConst:
			f.push(p.Consts[ins.A])
			f.pc++

		case OpLoadLocal:
			f.push(f.locals[ins.A])
			f.pc++

		case OpStoreLocal:
			f.locals[ins.A] = f.top()
			f.pc++

		case OpPop:
			f.pop()
			f.pc++

		case OpDup:
			f.push(f.top())
			f.pc++

		case OpUnaryOp:
			v := f.pop()
			res, err := e.applyUnary(OperatorKind(ins.A), v, ins.Loc)
			if err != nil {
				return nil, err
			}
			f.push(res)
			f.pc++

		case OpBinaryOp:
			b := f.pop()
			a := f.pop()
			res, err := e.applyBinary(OperatorKind(ins.A), a, b, ins.Loc)
			if err != nil {
				return nil, err
			}
			f.push(res)
			f.pc++

		case OpMakeArray:
			n := int(ins.A)
			elems := make([]ConstantValue, n)
			for i := n - 1; i >= 0; i-- {
				elems[i] = f.pop()
			}
			f.push(&ArrayValue{Elems: elems})
			f.pc++

		case OpMakeTuple:
			n := int(ins.A)
			elems := make([]ConstantValue, n)
			for i := n - 1; i >= 0; i-- {
				elems[i] = f.pop()
			}
			f.push(&TupleValue{Elems: elems})
			f.pc++

		case OpIndex:
			idx := f.pop()
			base := f.pop()
			res, err := indexConstant(base, idx, ins.Loc)
			if err != nil {
				return nil, err
			}
			f.push(res)
			f.pc++

		case OpJump:
			f.pc = int(ins.A)

		case OpJumpIfFalse:
			cond := f.pop()
			b, ok := AsBool(cond)
			if !ok {
				internalf("OpJumpIfFalse: top of stack is not bool")
			}
			if !b {
				f.pc = int(ins.A)
			} else {
				f.pc++
			}

		case OpCallIntrinsic:
			res, err := e.callIntrinsic(IntrinsicID(ins.A), f, int(ins.B), ins.Loc)
			if err != nil {
				return nil, err
			}
			f.push(res)
			f.pc++

		case OpCall:
			internalf("OpCall: general function calls are lowered through Execute, not inline")

		case OpReturn:
			if len(f.operand) == 0 {
				return &NullValue{}, nil
			}
			return f.pop(), nil

		default:
			internalf("executor: unhandled opcode %s", ins.Op)
		}
	}
	return nil, fmt.Errorf("program for %q fell off the end without a return", p.Func.Name)
}

func (e *Executor) callIntrinsic(id IntrinsicID, f *execFrame, argc int, loc SrcTokens) (ConstantValue, error) {
	args := make([]ConstantValue, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = f.pop()
	}
	switch id {
	case IntrinsicCompileError:
		msg := ""
		if len(args) > 0 {
			if s, ok := args[0].(*StringValue); ok {
				msg = s.Value
			}
		}
		e.session.Diagnostics.Errorf(loc, "%s", msg)
		return nil, fmt.Errorf("compile_error: %s", msg)

	case IntrinsicCompileWarning:
		msg := ""
		if len(args) > 0 {
			if s, ok := args[0].(*StringValue); ok {
				msg = s.Value
			}
		}
		e.session.Diagnostics.Add(CompileError{Severity: SeverityWarning, Location: loc, Message: msg})
		return &NullValue{}, nil

	case IntrinsicBitreverse, IntrinsicPopcount, IntrinsicCtz, IntrinsicClz, IntrinsicByteswap:
		return evalBitIntrinsic(id, args, loc)

	default:
		return nil, fmt.Errorf("intrinsic %d is not implemented in the compile-time executor", id)
	}
}

func indexConstant(base, idx ConstantValue, loc SrcTokens) (ConstantValue, error) {
	arr, ok := base.(*ArrayValue)
	if !ok {
		return nil, fmt.Errorf("cannot index a non-array constant")
	}
	var i int64
	switch v := idx.(type) {
	case *SintValue:
		i = v.Value
	case *UintValue:
		i = int64(v.Value)
	default:
		return nil, fmt.Errorf("array index must be an integer constant")
	}
	if i < 0 || i >= int64(len(arr.Elems)) {
		return nil, fmt.Errorf("array index %d out of range [0, %d)", i, len(arr.Elems))
	}
	return arr.Elems[i], nil
}
