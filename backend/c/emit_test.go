package c_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bozon "github.com/bozon-lang/bozonc"
	bc "github.com/bozon-lang/bozonc/backend/c"
)

// maxFunc builds `fn max(a: int32, b: int32) -> int32 { if (a > b) { return
// a; } return b; }` directly as a typed tree.
func maxFunc(t *testing.T, session *bozon.Session) *bozon.FunctionDecl {
	t.Helper()
	i32, ok := session.Interner.Builtin("int32")
	require.True(t, ok)
	boolInfo, _ := session.Interner.Builtin("bool")
	i32t := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: i32}}
	boolT := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: boolInfo}}

	a := &bozon.VarDecl{Name: "a", Type: i32t, IsArg: true}
	b := &bozon.VarDecl{Name: "b", Type: i32t, IsArg: true}
	aExpr := bozon.DynamicExpr(bozon.SrcTokens{}, i32t, bozon.ValueLvalue, bozon.IdentifierExpr{Var: a})
	bExpr := bozon.DynamicExpr(bozon.SrcTokens{}, i32t, bozon.ValueLvalue, bozon.IdentifierExpr{Var: b})
	cond := bozon.DynamicExpr(bozon.SrcTokens{}, boolT, bozon.ValueRvalue, bozon.BinaryExpr{Op: bozon.OpGreater, Left: aExpr, Right: bExpr})

	return &bozon.FunctionDecl{
		Name:       "max",
		SymbolName: "max",
		Params:     []*bozon.VarDecl{a, b},
		Return:     i32t,
		CC:         bozon.CCDefault,
		Linkage:    bozon.LinkageInternal,
		Body: []bozon.Stmt{
			bozon.IfStmt{Cond: cond, Then: []bozon.Stmt{bozon.ReturnStmt{Value: aExpr}}},
			bozon.ReturnStmt{Value: bExpr},
		},
	}
}

func TestEmitModuleRendersFunctionAndRuntime(t *testing.T) {
	session := bozon.NewSession()
	fn := maxFunc(t, session)

	out, err := bc.EmitModule(session, []*bozon.FunctionDecl{fn}, bc.Options{UnitName: "sample"})
	require.NoError(t, err)

	assert.True(t, strings.Contains(out, "int32_t max(int32_t a, int32_t b)"))
	assert.True(t, strings.Contains(out, "if (a > b)"))
	assert.True(t, strings.Contains(out, "bozon_checked_div_i64"), "embedded runtime must be present")
}

func TestEmitModuleRemoveLibOmitsEmbeddedRuntime(t *testing.T) {
	session := bozon.NewSession()
	fn := maxFunc(t, session)

	out, err := bc.EmitModule(session, []*bozon.FunctionDecl{fn}, bc.Options{UnitName: "sample", RemoveLib: true})
	require.NoError(t, err)

	assert.True(t, strings.Contains(out, `#include "bozon_runtime.h"`))
	assert.False(t, strings.Contains(out, "bozon_checked_div_i64"))
}

func TestEmitModuleDividesThroughCheckedRuntime(t *testing.T) {
	session := bozon.NewSession()
	i32, _ := session.Interner.Builtin("int32")
	i32t := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: i32}}
	a := &bozon.VarDecl{Name: "a", Type: i32t, IsArg: true}
	b := &bozon.VarDecl{Name: "b", Type: i32t, IsArg: true}
	aExpr := bozon.DynamicExpr(bozon.SrcTokens{}, i32t, bozon.ValueLvalue, bozon.IdentifierExpr{Var: a})
	bExpr := bozon.DynamicExpr(bozon.SrcTokens{}, i32t, bozon.ValueLvalue, bozon.IdentifierExpr{Var: b})
	div := bozon.DynamicExpr(bozon.SrcTokens{}, i32t, bozon.ValueRvalue, bozon.BinaryExpr{Op: bozon.OpDivide, Left: aExpr, Right: bExpr})

	fn := &bozon.FunctionDecl{
		Name: "div", SymbolName: "div", Params: []*bozon.VarDecl{a, b}, Return: i32t,
		CC: bozon.CCDefault, Linkage: bozon.LinkageInternal,
		Body: []bozon.Stmt{bozon.ReturnStmt{Value: div}},
	}

	out, err := bc.EmitModule(session, []*bozon.FunctionDecl{fn}, bc.Options{UnitName: "sample"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "return bozon_checked_div_i64(a, b);"))
}
