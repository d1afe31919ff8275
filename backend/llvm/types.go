// Package llvm lowers a typed Bozon function body to LLVM IR via
// github.com/llir/llvm, the way
// _examples/other_examples/.../internal-codegen-llvm.go.go lowers a
// small typed AST to *ir.Module — same builder-per-function, one
// llvm block per source block idiom, retargeted at §4.6's type
// mapping, ABI classifier, and emission rules.
package llvm

import (
	"github.com/llir/llvm/ir/types"

	"github.com/bozon-lang/bozonc"
)

// MapType implements §4.6.1's type mapping from a complete Typespec to
// an LLVM type. Pointer, reference, and function typespecs all become
// an opaque pointer; optional-pointer-like collapses to the pointee's
// pointer type (the null sentinel needs no extra storage); any other
// optional becomes a `{T, i1}` struct.
func MapType(t bozon.Typespec) types.Type {
	if outer, ok := outerMod(t); ok {
		switch outer {
		case bozon.ModPointer:
			return types.NewPointer(MapType(t.RemoveLayer()))
		case bozon.ModLvalueReference, bozon.ModMoveReference, bozon.ModAutoReference, bozon.ModAutoReferenceMut:
			return types.NewPointer(MapType(t.RemoveLayer()))
		case bozon.ModOptional:
			if bozon.IsOptionalPointerLike(t) {
				return MapType(t.RemoveLayer())
			}
			inner := MapType(t.RemoveLayer())
			return types.NewStruct(inner, types.I1)
		default:
			return MapType(t.RemoveLayer())
		}
	}

	if bozon.IsTerm[bozon.VoidTerm](t) {
		return types.Void
	}
	if bozon.IsTerm[bozon.BaseTypeTerm](t) {
		return mapBase(bozon.GetTerm[bozon.BaseTypeTerm](t).Info)
	}
	if bozon.IsTerm[bozon.ArrayTerm](t) {
		a := bozon.GetTerm[bozon.ArrayTerm](t)
		return types.NewArray(uint64(a.Size), MapType(*a.Elem))
	}
	if bozon.IsTerm[bozon.ArraySliceTerm](t) {
		a := bozon.GetTerm[bozon.ArraySliceTerm](t)
		return types.NewStruct(types.NewPointer(MapType(*a.Elem)), types.I64)
	}
	if bozon.IsTerm[bozon.TupleTerm](t) {
		tup := bozon.GetTerm[bozon.TupleTerm](t)
		fields := make([]types.Type, len(tup.Elems))
		for i, e := range tup.Elems {
			fields[i] = MapType(e)
		}
		return types.NewStruct(fields...)
	}
	if bozon.IsTerm[bozon.FunctionTerm](t) {
		fn := bozon.GetTerm[bozon.FunctionTerm](t)
		params := make([]types.Type, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = MapType(p)
		}
		return types.NewPointer(types.NewFunc(MapType(*fn.Return), params...))
	}
	if bozon.IsTerm[bozon.EnumTerm](t) {
		return types.I32
	}
	return types.Void
}

func mapBase(info *bozon.TypeInfo) types.Type {
	switch info.Kind {
	case bozon.TypeInt8, bozon.TypeUint8:
		return types.I8
	case bozon.TypeInt16, bozon.TypeUint16:
		return types.I16
	case bozon.TypeInt32, bozon.TypeUint32:
		return types.I32
	case bozon.TypeInt64, bozon.TypeUint64:
		return types.I64
	case bozon.TypeFloat32:
		return types.Float
	case bozon.TypeFloat64:
		return types.Double
	case bozon.TypeChar:
		return types.I32
	case bozon.TypeBool:
		return types.I1
	case bozon.TypeStr:
		return types.NewStruct(types.I8Ptr, types.I8Ptr)
	case bozon.TypeStruct:
		fields := make([]types.Type, len(info.Struct.Members))
		for i, m := range info.Struct.Members {
			fields[i] = MapType(m.Type)
		}
		return types.NewStruct(fields...)
	default:
		return types.Void
	}
}

func outerMod(t bozon.Typespec) (bozon.Modifier, bool) {
	if len(t.Modifiers) == 0 {
		return 0, false
	}
	return t.Modifiers[0], true
}
