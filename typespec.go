package bozon

import "fmt"

// Modifier is one of the closed set of typespec modifier layers
// (§3.2). lvalue_reference, move_reference, and variadic only ever
// appear as the outermost modifier (checked by Typespec.Validate).
type Modifier int

const (
	ModMut Modifier = iota
	ModConsteval
	ModPointer
	ModOptional
	ModLvalueReference
	ModMoveReference
	ModAutoReference
	ModAutoReferenceMut
	ModVariadic
)

func (m Modifier) String() string {
	switch m {
	case ModMut:
		return "mut"
	case ModConsteval:
		return "consteval"
	case ModPointer:
		return "pointer"
	case ModOptional:
		return "optional"
	case ModLvalueReference:
		return "lvalue_reference"
	case ModMoveReference:
		return "move_reference"
	case ModAutoReference:
		return "auto_reference"
	case ModAutoReferenceMut:
		return "auto_reference_mut"
	case ModVariadic:
		return "variadic"
	default:
		return "unknown_modifier"
	}
}

func (m Modifier) isOuterOnly() bool {
	return m == ModLvalueReference || m == ModMoveReference || m == ModVariadic
}

func (m Modifier) isReference() bool {
	return m == ModLvalueReference || m == ModMoveReference ||
		m == ModAutoReference || m == ModAutoReferenceMut
}

// Terminator is the closed set of typespec terminators (§3.2). It is
// a sealed interface: every concrete variant below is the only kind
// that may implement it, enforced by the unexported marker method.
type Terminator interface {
	isTerminator()
	String() string
}

type UnresolvedTerm struct{ Name string }

func (UnresolvedTerm) isTerminator()    {}
func (t UnresolvedTerm) String() string { return "unresolved(" + t.Name + ")" }

type BaseTypeTerm struct{ Info *TypeInfo }

func (BaseTypeTerm) isTerminator()    {}
func (t BaseTypeTerm) String() string { return t.Info.Name }

type EnumTerm struct{ Decl *EnumDecl }

func (EnumTerm) isTerminator()    {}
func (t EnumTerm) String() string { return t.Decl.Name }

type VoidTerm struct{}

func (VoidTerm) isTerminator()    {}
func (VoidTerm) String() string { return "void" }

type CallingConvention int

const (
	CCDefault CallingConvention = iota
	CCC
	CCFast
)

type FunctionTerm struct {
	Params []Typespec
	Return *Typespec
	CC     CallingConvention
}

func (FunctionTerm) isTerminator() {}
func (t FunctionTerm) String() string {
	s := "function("
	for i, p := range t.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s + ") -> " + t.Return.String()
}

type ArrayTerm struct {
	Size int
	Elem *Typespec
}

func (ArrayTerm) isTerminator() {}
func (t ArrayTerm) String() string {
	return fmt.Sprintf("[%d: %s]", t.Size, t.Elem.String())
}

type ArraySliceTerm struct{ Elem *Typespec }

func (ArraySliceTerm) isTerminator()    {}
func (t ArraySliceTerm) String() string { return "[:" + t.Elem.String() + "]" }

type TupleTerm struct{ Elems []Typespec }

func (TupleTerm) isTerminator() {}
func (t TupleTerm) String() string {
	s := "["
	for i, e := range t.Elems {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + "]"
}

type AutoTerm struct{}

func (AutoTerm) isTerminator()    {}
func (AutoTerm) String() string { return "auto" }

type TypenameTerm struct{}

func (TypenameTerm) isTerminator()    {}
func (TypenameTerm) String() string { return "typename" }

// Typespec is a list of modifiers (outer to inner, index 0 outermost)
// terminated by a single Terminator (§3.2). A zero-value Typespec with
// Term == nil is "empty" per the invariant in §3.2.
type Typespec struct {
	Modifiers []Modifier
	Term       Terminator
}

func Base(info *TypeInfo) Typespec { return Typespec{Term: BaseTypeTerm{Info: info}} }
func Void() Typespec                { return Typespec{Term: VoidTerm{}} }
func Auto() Typespec                 { return Typespec{Term: AutoTerm{}} }
func Unresolved(name string) Typespec { return Typespec{Term: UnresolvedTerm{Name: name}} }

func (t Typespec) String() string {
	s := ""
	for _, m := range t.Modifiers {
		s += m.String() + " "
	}
	if t.Term == nil {
		return s + "<empty>"
	}
	return s + t.Term.String()
}

// AddLayer pushes a modifier as the new outermost layer.
func (t Typespec) AddLayer(m Modifier) Typespec {
	mods := make([]Modifier, 0, len(t.Modifiers)+1)
	mods = append(mods, m)
	mods = append(mods, t.Modifiers...)
	return Typespec{Modifiers: mods, Term: t.Term}
}

// RemoveLayer pops the outermost modifier. Calling it on a typespec
// with no modifiers is a caller error (§4.1: "operations on empty
// typespecs are caller errors").
func (t Typespec) RemoveLayer() Typespec {
	if len(t.Modifiers) == 0 {
		internalf("RemoveLayer called on a typespec with no modifier layers")
	}
	return Typespec{Modifiers: t.Modifiers[1:], Term: t.Term}
}

func (t Typespec) outer() (Modifier, bool) {
	if len(t.Modifiers) == 0 {
		return 0, false
	}
	return t.Modifiers[0], true
}

// IsMod reports whether the outermost layer is modifier m.
func (t Typespec) IsMod(m Modifier) bool {
	outer, ok := t.outer()
	return ok && outer == m
}

// IsTerm reports whether, with no modifiers left, the terminator is
// of kind T.
func IsTerm[T Terminator](t Typespec) bool {
	if len(t.Modifiers) != 0 {
		return false
	}
	_, ok := t.Term.(T)
	return ok
}

// GetTerm returns the terminator cast to T; it internalf-panics if the
// typespec has leftover modifiers or the terminator isn't a T — the
// same "caller error" contract as the rest of §4.1.
func GetTerm[T Terminator](t Typespec) T {
	if len(t.Modifiers) != 0 {
		internalf("GetTerm called on a typespec with modifier layers left")
	}
	v, ok := t.Term.(T)
	if !ok {
		internalf("GetTerm: terminator is not of the requested kind")
	}
	return v
}

// Validate checks the structural invariants of §3.2: lvalue_reference
// / move_reference / variadic only outermost, and mut/consteval never
// coexisting on the same layer.
func (t Typespec) Validate() error {
	for i, m := range t.Modifiers {
		if m.isOuterOnly() && i != 0 {
			return fmt.Errorf("modifier %s may only appear as the outermost layer", m)
		}
	}
	for i := 0; i+1 < len(t.Modifiers); i++ {
		a, b := t.Modifiers[i], t.Modifiers[i+1]
		if (a == ModMut && b == ModConsteval) || (a == ModConsteval && b == ModMut) {
			return fmt.Errorf("mut and consteval cannot coexist on the same layer")
		}
	}
	return nil
}

// Equal implements structural equality (§4.1): equal modifier
// sequences and equal terminators, recursing through function, array,
// and tuple terminators; base-type identity is pointer-identity.
func (t Typespec) Equal(o Typespec) bool {
	if len(t.Modifiers) != len(o.Modifiers) {
		return false
	}
	for i := range t.Modifiers {
		if t.Modifiers[i] != o.Modifiers[i] {
			return false
		}
	}
	return terminatorsEqual(t.Term, o.Term)
}

func terminatorsEqual(a, b Terminator) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case BaseTypeTerm:
		bv, ok := b.(BaseTypeTerm)
		return ok && av.Info == bv.Info
	case EnumTerm:
		bv, ok := b.(EnumTerm)
		return ok && av.Decl == bv.Decl
	case VoidTerm:
		_, ok := b.(VoidTerm)
		return ok
	case AutoTerm:
		_, ok := b.(AutoTerm)
		return ok
	case TypenameTerm:
		_, ok := b.(TypenameTerm)
		return ok
	case UnresolvedTerm:
		bv, ok := b.(UnresolvedTerm)
		return ok && av.Name == bv.Name
	case ArrayTerm:
		bv, ok := b.(ArrayTerm)
		return ok && av.Size == bv.Size && av.Elem.Equal(*bv.Elem)
	case ArraySliceTerm:
		bv, ok := b.(ArraySliceTerm)
		return ok && av.Elem.Equal(*bv.Elem)
	case TupleTerm:
		bv, ok := b.(TupleTerm)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !av.Elems[i].Equal(bv.Elems[i]) {
				return false
			}
		}
		return true
	case FunctionTerm:
		bv, ok := b.(FunctionTerm)
		if !ok || len(av.Params) != len(bv.Params) || av.CC != bv.CC {
			return false
		}
		for i := range av.Params {
			if !av.Params[i].Equal(bv.Params[i]) {
				return false
			}
		}
		return av.Return.Equal(*bv.Return)
	default:
		internalf("terminatorsEqual: unhandled terminator variant %T", a)
		return false
	}
}

// Hash commutes with Equal; it is used only for type de-duplication,
// never for diagnostics or code generation.
func (t Typespec) Hash() uint64 {
	var h uint64 = 1469598103934665603 // FNV-1a offset basis
	mix := func(x uint64) {
		h ^= x
		h *= 1099511628211
	}
	for _, m := range t.Modifiers {
		mix(uint64(m) + 1)
	}
	mix(hashTerminator(t.Term))
	return h
}

func hashTerminator(term Terminator) uint64 {
	if term == nil {
		return 0
	}
	switch v := term.(type) {
	case BaseTypeTerm:
		h := uint64(0)
		for _, c := range v.Info.Name {
			h = h*131 + uint64(c)
		}
		return h ^ 0xB000
	case EnumTerm:
		h := uint64(0)
		for _, c := range v.Decl.Name {
			h = h*131 + uint64(c)
		}
		return h ^ 0xE000
	case VoidTerm:
		return 0xF0F0
	case AutoTerm:
		return 0xA0A0
	case TypenameTerm:
		return 0xABAB
	case UnresolvedTerm:
		h := uint64(0)
		for _, c := range v.Name {
			h = h*131 + uint64(c)
		}
		return h ^ 0xABCD
	case ArrayTerm:
		return hashTerminator(v.Elem.Term)*31 + uint64(v.Size)
	case ArraySliceTerm:
		return hashTerminator(v.Elem.Term)*37 + 0x5117
	case TupleTerm:
		h := uint64(0x7001)
		for _, e := range v.Elems {
			h = h*31 + e.Hash()
		}
		return h
	case FunctionTerm:
		h := uint64(0x9001) + uint64(v.CC)
		for _, p := range v.Params {
			h = h*31 + p.Hash()
		}
		return h*31 + v.Return.Hash()
	default:
		return 0
	}
}

// IsComplete reports whether t satisfies §3.2's completeness rule.
func IsComplete(t Typespec) bool {
	for _, m := range t.Modifiers {
		if m == ModVariadic {
			return false
		}
	}
	return isCompleteTerm(t.Term)
}

func isCompleteTerm(term Terminator) bool {
	switch v := term.(type) {
	case nil:
		return false
	case UnresolvedTerm, AutoTerm, TypenameTerm:
		return false
	case VoidTerm, BaseTypeTerm, EnumTerm:
		return true
	case ArrayTerm:
		return IsComplete(*v.Elem)
	case ArraySliceTerm:
		return IsComplete(*v.Elem)
	case TupleTerm:
		for _, e := range v.Elems {
			if !IsComplete(e) {
				return false
			}
		}
		return true
	case FunctionTerm:
		for _, p := range v.Params {
			if !IsComplete(p) {
				return false
			}
		}
		return IsComplete(*v.Return)
	default:
		return false
	}
}

// --- single-layer strip helpers (§4.1) ---
// Each strips exactly one layer when present; a no-op otherwise.

func (t Typespec) RemoveMut() Typespec {
	if t.IsMod(ModMut) {
		return t.RemoveLayer()
	}
	return t
}

func (t Typespec) RemoveConsteval() Typespec {
	if t.IsMod(ModConsteval) {
		return t.RemoveLayer()
	}
	return t
}

func (t Typespec) RemoveMutabilityModifiers() Typespec {
	for t.IsMod(ModMut) || t.IsMod(ModConsteval) {
		t = t.RemoveLayer()
	}
	return t
}

func (t Typespec) RemoveAnyReference() Typespec {
	if outer, ok := t.outer(); ok && outer.isReference() {
		return t.RemoveLayer()
	}
	return t
}

func (t Typespec) RemoveLvalueOrMoveReference() Typespec {
	if t.IsMod(ModLvalueReference) || t.IsMod(ModMoveReference) {
		return t.RemoveLayer()
	}
	return t
}

func (t Typespec) RemovePointer() Typespec {
	if t.IsMod(ModPointer) {
		return t.RemoveLayer()
	}
	return t
}

func (t Typespec) RemoveOptional() Typespec {
	if t.IsMod(ModOptional) {
		return t.RemoveLayer()
	}
	return t
}

// IsOptionalPointerLike reports whether t is `?P` where P is a
// pointer, function pointer, or reference (§3.2, S4) — these are
// represented as a single nullable machine pointer rather than a
// (value, has_value) pair.
func IsOptionalPointerLike(t Typespec) bool {
	if !t.IsMod(ModOptional) {
		return false
	}
	inner := t.RemoveLayer()
	if inner.IsMod(ModPointer) {
		return true
	}
	if outer, ok := inner.outer(); ok && outer.isReference() {
		return true
	}
	if len(inner.Modifiers) == 0 {
		if _, ok := inner.Term.(FunctionTerm); ok {
			return true
		}
	}
	return false
}

// SizeOf returns the in-memory size in bytes of a complete typespec,
// used by consteval array-bound folding and the LLVM/C type mappers.
func SizeOf(t Typespec) int {
	if outer, ok := t.outer(); ok {
		switch outer {
		case ModPointer:
			return 8
		case ModOptional:
			if IsOptionalPointerLike(t) {
				return 8
			}
			return SizeOf(t.RemoveLayer()) + 1
		case ModLvalueReference, ModMoveReference, ModAutoReference, ModAutoReferenceMut:
			return 8
		default:
			return SizeOf(t.RemoveLayer())
		}
	}
	switch v := t.Term.(type) {
	case BaseTypeTerm:
		return v.Info.Size()
	case VoidTerm:
		return 0
	case ArrayTerm:
		return v.Size * SizeOf(*v.Elem)
	case ArraySliceTerm:
		return 16 // {T*, len}
	case TupleTerm:
		size := 0
		for _, e := range v.Elems {
			size += SizeOf(e)
		}
		return size
	case FunctionTerm:
		return 8 // function pointer
	case EnumTerm:
		return 4
	default:
		return 0
	}
}

// EnumDecl and CallingConvention's companion types live here since the
// typespec terminator set names them directly.
type EnumDecl struct {
	Name     string
	Underlying *TypeInfo
	Values   map[string]int64
}
