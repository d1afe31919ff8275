package bozon

// TypeInfoKind enumerates the built-in base types plus the
// user-declared struct kind. Base-type identity for structural `==`
// is pointer-identity of the owning *TypeInfo (§4.1), so every base
// type is interned once in a Session's type arena.
type TypeInfoKind int

const (
	TypeInt8 TypeInfoKind = iota
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeFloat32
	TypeFloat64
	TypeChar
	TypeStr
	TypeBool
	TypeStruct
)

func (k TypeInfoKind) String() string {
	switch k {
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeUint8:
		return "uint8"
	case TypeUint16:
		return "uint16"
	case TypeUint32:
		return "uint32"
	case TypeUint64:
		return "uint64"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeChar:
		return "char"
	case TypeStr:
		return "str"
	case TypeBool:
		return "bool"
	case TypeStruct:
		return "struct"
	default:
		return "unknown"
	}
}

func (k TypeInfoKind) isInteger() bool {
	switch k {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64,
		TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		return true
	}
	return false
}

func (k TypeInfoKind) isSigned() bool {
	switch k {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return true
	}
	return false
}

// IsSigned exports isSigned for backends lowering a base type to a
// target ISA, where sign/zero-extend and sdiv/udiv choice depends on
// signedness (§4.6.1, §4.6.3).
func (k TypeInfoKind) IsSigned() bool { return k.isSigned() }

func (k TypeInfoKind) isFloat() bool {
	return k == TypeFloat32 || k == TypeFloat64
}

func (k TypeInfoKind) bitWidth() int {
	switch k {
	case TypeInt8, TypeUint8:
		return 8
	case TypeInt16, TypeUint16:
		return 16
	case TypeInt32, TypeUint32, TypeFloat32:
		return 32
	case TypeInt64, TypeUint64, TypeFloat64:
		return 64
	case TypeChar:
		return 32
	case TypeBool:
		return 8
	default:
		return 0
	}
}

// StructDecl is the side-table entry for a user-declared struct, kept
// separate from TypeInfo's own identity so the mutable resolve state
// of a struct's member list can change after the TypeInfo pointer has
// already been interned and referenced elsewhere (§9: "keep a
// separate side-table for the mutable resolve state").
type StructDecl struct {
	Name    string
	Members []StructMember
}

type StructMember struct {
	Name string
	Type Typespec
}

// TypeInfo is an interned, de-duplicated description of a structural
// type (§2 item 2). Two TypeInfo values denote the same type iff they
// are the same pointer.
type TypeInfo struct {
	Kind   TypeInfoKind
	Name   string // canonical base name, e.g. "int32", or struct name
	Struct *StructDecl
}

func (t *TypeInfo) Size() int {
	switch t.Kind {
	case TypeStr:
		return 16 // {i8*, i8*}
	case TypeStruct:
		size := 0
		for _, m := range t.Struct.Members {
			size += SizeOf(m.Type)
		}
		return size
	default:
		return t.Kind.bitWidth() / 8
	}
}

// TypeInterner is the monotonic add/lookup arena described in §9
// ("represent with an interning arena ... rather than reference
// counting"). It never removes entries, so existing *TypeInfo
// pointers remain stable for the program's whole lifetime.
type TypeInterner struct {
	byName map[string]*TypeInfo
	all    []*TypeInfo
}

func NewTypeInterner() *TypeInterner {
	in := &TypeInterner{byName: make(map[string]*TypeInfo)}
	for _, k := range []TypeInfoKind{
		TypeInt8, TypeInt16, TypeInt32, TypeInt64,
		TypeUint8, TypeUint16, TypeUint32, TypeUint64,
		TypeFloat32, TypeFloat64, TypeChar, TypeStr, TypeBool,
	} {
		in.intern(&TypeInfo{Kind: k, Name: k.String()})
	}
	return in
}

func (in *TypeInterner) intern(t *TypeInfo) *TypeInfo {
	if existing, ok := in.byName[t.Name]; ok {
		return existing
	}
	in.byName[t.Name] = t
	in.all = append(in.all, t)
	return t
}

// Builtin looks up one of the thirteen built-in base types by name.
func (in *TypeInterner) Builtin(name string) (*TypeInfo, bool) {
	t, ok := in.byName[name]
	return t, ok
}

// DeclareStruct interns a new (or returns the existing) struct
// TypeInfo for the given name. Forward-referenced structs are
// interned with a nil Struct side-table entry until their member list
// resolves (§3.3's "unresolved identifiers (placeholders for forward
// references)").
func (in *TypeInterner) DeclareStruct(name string) *TypeInfo {
	if existing, ok := in.byName[name]; ok {
		return existing
	}
	return in.intern(&TypeInfo{Kind: TypeStruct, Name: name})
}
