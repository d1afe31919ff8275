package c

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bozon "github.com/bozon-lang/bozonc"
)

func newTestFuncEmitter(t *testing.T) *funcEmitter {
	t.Helper()
	session := bozon.NewSession()
	mod := &moduleEmitter{session: session, opt: Options{UnitName: "test"}, types: newTypeNamer(), out: newOutputWriter("  ")}
	return &funcEmitter{mod: mod, out: mod.out, locals: make(map[*bozon.VarDecl]string)}
}

func TestConstantLiteralRendersEachScalarKind(t *testing.T) {
	fe := newTestFuncEmitter(t)

	cases := []struct {
		name string
		v    bozon.ConstantValue
		want string
	}{
		{"sint", &bozon.SintValue{Value: -7, Kind: bozon.TypeInt32}, "-7"},
		{"uint", &bozon.UintValue{Value: 7, Kind: bozon.TypeUint32}, "7u"},
		{"bool true", &bozon.BoolValue{Value: true}, "1"},
		{"bool false", &bozon.BoolValue{Value: false}, "0"},
		{"char", &bozon.CharValue{Value: 'A'}, "65"},
		{"null", &bozon.NullValue{}, "NULL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := fe.constantLiteral(tc.v)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCheckedBinaryRoutesIntDivisionThroughRuntime(t *testing.T) {
	interner := bozon.NewTypeInterner()
	i32, _ := interner.Builtin("int32")
	i32t := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: i32}}

	got, ok := checkedBinary(bozon.OpDivide, i32t, "a", "b")
	require.True(t, ok)
	assert.Equal(t, "bozon_checked_div_i64(a, b)", got)

	got, ok = checkedBinary(bozon.OpModulo, i32t, "a", "b")
	require.True(t, ok)
	assert.Equal(t, "bozon_checked_mod_i64(a, b)", got)
}

func TestCheckedBinaryLeavesFloatDivisionAlone(t *testing.T) {
	interner := bozon.NewTypeInterner()
	f64, _ := interner.Builtin("float64")
	f64t := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: f64}}

	_, ok := checkedBinary(bozon.OpDivide, f64t, "a", "b")
	assert.False(t, ok, "float division is not checked through the integer runtime helpers")
}

func TestExprAtPrecParenthesizesLooserBoundOperand(t *testing.T) {
	fe := newTestFuncEmitter(t)
	interner := bozon.NewTypeInterner()
	i32, _ := interner.Builtin("int32")
	i32t := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: i32}}

	one := bozon.ConstExpr(bozon.SrcTokens{}, i32t, &bozon.SintValue{Value: 1, Kind: bozon.TypeInt32})
	two := bozon.ConstExpr(bozon.SrcTokens{}, i32t, &bozon.SintValue{Value: 2, Kind: bozon.TypeInt32})
	sum := bozon.DynamicExpr(bozon.SrcTokens{}, i32t, bozon.ValueRvalue, bozon.BinaryExpr{Op: bozon.OpAdd, Left: one, Right: two})

	got, err := fe.exprAtPrec(sum, precedenceOf(bozon.OpMultiply))
	require.NoError(t, err)
	assert.Equal(t, "(1 + 2)", got)
}
