package c

import (
	"fmt"
	"strings"

	"github.com/bozon-lang/bozonc"
)

// typeNamer assigns a stable C type name to every struct typespec the
// module touches and topologically orders their declarations, so a
// struct containing a pointer to another struct never needs the
// pointee defined first, but one embedding a struct by value does.
type typeNamer struct {
	names   map[*bozon.TypeInfo]string
	order   []*bozon.TypeInfo
	visited map[*bozon.TypeInfo]int // 0 unvisited, 1 in progress, 2 done
}

func newTypeNamer() *typeNamer {
	return &typeNamer{
		names:   make(map[*bozon.TypeInfo]string),
		visited: make(map[*bozon.TypeInfo]int),
	}
}

// register walks t, recording every struct TypeInfo reachable through
// value-typed members (a pointer or reference member doesn't force an
// ordering, since in C a pointer to an incomplete type is legal).
func (n *typeNamer) register(t bozon.Typespec) {
	if len(t.Modifiers) != 0 {
		if t.Modifiers[0] == bozon.ModPointer || t.Modifiers[0] == bozon.ModLvalueReference ||
			t.Modifiers[0] == bozon.ModMoveReference {
			return
		}
		n.register(t.RemoveLayer())
		return
	}
	if !bozon.IsTerm[bozon.BaseTypeTerm](t) {
		if bozon.IsTerm[bozon.ArrayTerm](t) {
			n.register(*bozon.GetTerm[bozon.ArrayTerm](t).Elem)
		}
		if bozon.IsTerm[bozon.TupleTerm](t) {
			for _, e := range bozon.GetTerm[bozon.TupleTerm](t).Elems {
				n.register(e)
			}
		}
		return
	}
	info := bozon.GetTerm[bozon.BaseTypeTerm](t).Info
	if info.Kind != bozon.TypeStruct {
		return
	}
	switch n.visited[info] {
	case 2:
		return
	case 1:
		return // cycle through a by-value member is a declared-type error elsewhere; don't loop here
	}
	n.visited[info] = 1
	for _, m := range info.Struct.Members {
		n.register(m.Type)
	}
	n.visited[info] = 2
	if _, ok := n.names[info]; !ok {
		n.names[info] = "struct_" + sanitizeCIdent(info.Name)
		n.order = append(n.order, info)
	}
}

func (n *typeNamer) nameOf(info *bozon.TypeInfo) string { return n.names[info] }

// CType renders t as a C type string (§4.7), e.g. "int32_t",
// "struct { const char *data; int64_t len; }" for str, "struct_Point *";
// "int32_t[4]" is instead emitted by the caller as a declarator since C
// array types aren't a trailing suffix on their own.
func (n *typeNamer) CType(t bozon.Typespec) string {
	if len(t.Modifiers) != 0 {
		switch t.Modifiers[0] {
		case bozon.ModPointer, bozon.ModLvalueReference, bozon.ModMoveReference,
			bozon.ModAutoReference, bozon.ModAutoReferenceMut:
			return n.CType(t.RemoveLayer()) + " *"
		case bozon.ModOptional:
			if bozon.IsOptionalPointerLike(t) {
				return n.CType(t.RemoveLayer()) + " *"
			}
			inner := n.CType(t.RemoveLayer())
			return fmt.Sprintf("struct { %s value; int has_value; }", inner)
		default:
			return n.CType(t.RemoveLayer())
		}
	}
	if bozon.IsTerm[bozon.VoidTerm](t) {
		return "void"
	}
	if bozon.IsTerm[bozon.BaseTypeTerm](t) {
		return n.baseCType(bozon.GetTerm[bozon.BaseTypeTerm](t).Info)
	}
	if bozon.IsTerm[bozon.ArraySliceTerm](t) {
		elem := n.CType(*bozon.GetTerm[bozon.ArraySliceTerm](t).Elem)
		return fmt.Sprintf("struct { %s *data; int64_t len; }", elem)
	}
	if bozon.IsTerm[bozon.TupleTerm](t) {
		tup := bozon.GetTerm[bozon.TupleTerm](t)
		fields := make([]string, len(tup.Elems))
		for i, e := range tup.Elems {
			fields[i] = fmt.Sprintf("%s f%d;", n.CType(e), i)
		}
		return "struct { " + strings.Join(fields, " ") + " }"
	}
	if bozon.IsTerm[bozon.EnumTerm](t) {
		return "int32_t"
	}
	return "void"
}

func (n *typeNamer) baseCType(info *bozon.TypeInfo) string {
	switch info.Kind {
	case bozon.TypeInt8:
		return "int8_t"
	case bozon.TypeInt16:
		return "int16_t"
	case bozon.TypeInt32:
		return "int32_t"
	case bozon.TypeInt64:
		return "int64_t"
	case bozon.TypeUint8:
		return "uint8_t"
	case bozon.TypeUint16:
		return "uint16_t"
	case bozon.TypeUint32:
		return "uint32_t"
	case bozon.TypeUint64:
		return "uint64_t"
	case bozon.TypeFloat32:
		return "float"
	case bozon.TypeFloat64:
		return "double"
	case bozon.TypeChar:
		return "int32_t"
	case bozon.TypeBool:
		return "int"
	case bozon.TypeStr:
		return "struct { const char *data; int64_t len; }"
	case bozon.TypeStruct:
		if name, ok := n.names[info]; ok {
			return name
		}
		return "struct_" + sanitizeCIdent(info.Name)
	default:
		return "void"
	}
}

// writeTypeDecls emits one typedef per registered struct, in
// dependency order, mirroring the teacher's practice of writing every
// static table before the code that indexes into it.
func (n *typeNamer) writeTypeDecls(w *outputWriter) {
	for _, info := range n.order {
		name := n.names[info]
		w.writel(fmt.Sprintf("typedef struct %s {", name))
		w.indent()
		for _, m := range info.Struct.Members {
			w.writeil(fmt.Sprintf("%s %s;", n.CType(m.Type), sanitizeCIdent(m.Name)))
		}
		w.unindent()
		w.writel(fmt.Sprintf("} %s;", name))
		w.writel("")
	}
}
