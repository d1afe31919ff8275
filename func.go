package bozon

// ResolveState tracks how far a function declaration's resolution has
// progressed (§3.5): none -> parameters -> symbol -> all, or error at
// any point.
type ResolveState int

const (
	ResolveNone ResolveState = iota
	ResolveParameters
	ResolveSymbol
	ResolveAll
	ResolveError
)

// Linkage bits (§3.5).
type Linkage int

const (
	LinkageInternal Linkage = 1 << iota
	LinkageExternal
	LinkageIntrinsic
	LinkageLibc
)

// IntrinsicID names one of the built-in intrinsic functions the
// executor and both backends special-case (§4.4 Open Questions,
// §4.7's "built-in library").
type IntrinsicID int

const (
	IntrinsicNone IntrinsicID = iota
	IntrinsicCompileError
	IntrinsicCompileWarning
	IntrinsicSizeof   // Open Question: stubbed, see DESIGN.md
	IntrinsicForRange // Open Question: stubbed, see DESIGN.md
	IntrinsicBitreverse
	IntrinsicPopcount
	IntrinsicCtz
	IntrinsicClz
	IntrinsicByteswap
)

// FunctionDecl is the typed model of a function body (§3.5). Generic
// (consteval-parameterized) functions carry an instantiation table
// keyed by the substituted parameter types' encoded symbol name, so
// repeat instantiations with identical argument types are memoized.
type FunctionDecl struct {
	Name       string
	SymbolName string
	Params     []*VarDecl
	Return     Typespec
	CC         CallingConvention
	Linkage    Linkage
	State      ResolveState

	Body      []Stmt
	Intrinsic IntrinsicID
	LibcName  string // set when Linkage&LinkageLibc != 0

	IsGeneric     bool
	Instantiations map[string]*FunctionDecl // keyed by EncodeSymbolName of the substituted param tuple
}

func (f *FunctionDecl) ParamTypes() []Typespec {
	ts := make([]Typespec, len(f.Params))
	for i, p := range f.Params {
		ts[i] = p.Type
	}
	return ts
}

// Instantiate returns the existing instantiation for argTypes if one
// was already compiled, or nil.
func (f *FunctionDecl) Instantiate(argTypes []Typespec) (*FunctionDecl, bool) {
	key := TupleTerm{Elems: argTypes}
	name := encodeTerminator(key)
	if f.Instantiations == nil {
		return nil, false
	}
	inst, ok := f.Instantiations[name]
	return inst, ok
}

func (f *FunctionDecl) CacheInstantiation(argTypes []Typespec, inst *FunctionDecl) {
	if f.Instantiations == nil {
		f.Instantiations = make(map[string]*FunctionDecl)
	}
	key := TupleTerm{Elems: argTypes}
	f.Instantiations[encodeTerminator(key)] = inst
}

// FunctionType returns the typespec of f as seen by the overload
// resolver and by symbol-name encoding.
func (f *FunctionDecl) FunctionType() Typespec {
	ret := f.Return
	return Typespec{Term: FunctionTerm{Params: f.ParamTypes(), Return: &ret, CC: f.CC}}
}
