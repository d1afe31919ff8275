package bozon

import "fmt"

// execFrame is one activation of a consteval function call, mirroring
// the shape of the teacher's parsing frame stack (vm_stack.go) but
// carrying an operand stack of ConstantValue and a local-variable
// table instead of parser backtracking state.
type execFrame struct {
	program *Program
	pc      int
	locals  []ConstantValue
	operand []ConstantValue
	key     string // resolve-in-progress key, for cycle detection
}

func newExecFrame(p *Program, key string) *execFrame {
	return &execFrame{
		program: p,
		locals:  make([]ConstantValue, len(p.Locals)),
		key:     key,
	}
}

func (f *execFrame) push(v ConstantValue) { f.operand = append(f.operand, v) }

func (f *execFrame) pop() ConstantValue {
	v := f.operand[len(f.operand)-1]
	f.operand = f.operand[:len(f.operand)-1]
	return v
}

func (f *execFrame) top() ConstantValue { return f.operand[len(f.operand)-1] }

// execStack is the executor's call stack. Its depth is bounded by
// Config's consteval recursion limit (§4.4's "the executor must detect
// unbounded recursion and report it as a diagnostic, not a host
// stack overflow").
type execStack struct {
	frames  []*execFrame
	inFlight map[string]bool
	limit   int
}

func newExecStack(limit int) *execStack {
	return &execStack{inFlight: make(map[string]bool), limit: limit}
}

// enter pushes a new frame for (fn, argTypes) keyed by key, detecting
// both runaway depth and a consteval resolution cycle (the same
// function instantiation already in progress on this stack) — the
// "cyclic consteval detection via resolve-in-progress set" feature
// supplemented from original_source (§12).
func (s *execStack) enter(p *Program, key string) (*execFrame, error) {
	if s.inFlight[key] {
		return nil, fmt.Errorf("cyclic compile-time evaluation detected while evaluating %q", key)
	}
	if len(s.frames) >= s.limit {
		return nil, fmt.Errorf("compile-time evaluation exceeded the recursion limit (%d) while evaluating %q", s.limit, key)
	}
	f := newExecFrame(p, key)
	s.inFlight[key] = true
	s.frames = append(s.frames, f)
	return f, nil
}

func (s *execStack) leave() {
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	delete(s.inFlight, f.key)
}

func (s *execStack) current() *execFrame { return s.frames[len(s.frames)-1] }
