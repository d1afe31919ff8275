package llvm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bozon "github.com/bozon-lang/bozonc"
	bllvm "github.com/bozon-lang/bozonc/backend/llvm"
)

// addOneFunc builds `fn add_one(x: int32) -> int32 { return x + 1; }`
// directly as a typed tree, the way syntax.Parser would leave it.
func addOneFunc(t *testing.T, session *bozon.Session) *bozon.FunctionDecl {
	t.Helper()
	i32, ok := session.Interner.Builtin("int32")
	require.True(t, ok)
	i32t := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: i32}}

	x := &bozon.VarDecl{Name: "x", Type: i32t, IsArg: true}
	xExpr := bozon.DynamicExpr(bozon.SrcTokens{}, i32t, bozon.ValueLvalue, bozon.IdentifierExpr{Var: x})
	one := bozon.ConstExpr(bozon.SrcTokens{}, i32t, &bozon.SintValue{Value: 1, Kind: bozon.TypeInt32})
	sum := bozon.DynamicExpr(bozon.SrcTokens{}, i32t, bozon.ValueRvalue, bozon.BinaryExpr{Op: bozon.OpAdd, Left: xExpr, Right: one})

	return &bozon.FunctionDecl{
		Name:       "add_one",
		SymbolName: "add_one",
		Params:     []*bozon.VarDecl{x},
		Return:     i32t,
		CC:         bozon.CCDefault,
		Linkage:    bozon.LinkageInternal,
		Body:       []bozon.Stmt{bozon.ReturnStmt{Value: sum}},
	}
}

func TestLowerEmitsAddOneFunction(t *testing.T) {
	session := bozon.NewSession()
	fn := addOneFunc(t, session)

	mod := bllvm.NewModule(session, "x86_64-unknown-linux-gnu")
	mod.Declare(fn)
	require.NoError(t, mod.Lower(fn))

	ir := mod.Module().String()
	assert.True(t, strings.Contains(ir, "add_one"))
	assert.True(t, strings.Contains(ir, "ret i32"))
}

func TestLowerIfStmtProducesThreeBlocks(t *testing.T) {
	session := bozon.NewSession()
	i32, _ := session.Interner.Builtin("int32")
	boolInfo, _ := session.Interner.Builtin("bool")
	i32t := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: i32}}
	boolT := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: boolInfo}}

	x := &bozon.VarDecl{Name: "x", Type: i32t, IsArg: true}
	cond := bozon.ConstExpr(bozon.SrcTokens{}, boolT, &bozon.BoolValue{Value: true})
	retOne := bozon.ReturnStmt{Value: bozon.ConstExpr(bozon.SrcTokens{}, i32t, &bozon.SintValue{Value: 1, Kind: bozon.TypeInt32})}
	retZero := bozon.ReturnStmt{Value: bozon.ConstExpr(bozon.SrcTokens{}, i32t, &bozon.SintValue{Value: 0, Kind: bozon.TypeInt32})}

	fn := &bozon.FunctionDecl{
		Name:       "pick",
		SymbolName: "pick",
		Params:     []*bozon.VarDecl{x},
		Return:     i32t,
		CC:         bozon.CCDefault,
		Linkage:    bozon.LinkageInternal,
		Body: []bozon.Stmt{
			bozon.IfStmt{Cond: cond, Then: []bozon.Stmt{retOne}, Else: []bozon.Stmt{retZero}},
		},
	}

	mod := bllvm.NewModule(session, "x86_64-unknown-linux-gnu")
	mod.Declare(fn)
	require.NoError(t, mod.Lower(fn))

	ir := mod.Module().String()
	assert.True(t, strings.Contains(ir, "br i1"))
	assert.Len(t, mod.Module().Funcs[0].Blocks, 4, "entry plus the then, else and merge blocks")
}

func TestLowerSwitchStmtMatchesFirstEqualCase(t *testing.T) {
	session := bozon.NewSession()
	i32, _ := session.Interner.Builtin("int32")
	i32t := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: i32}}

	subject := bozon.ConstExpr(bozon.SrcTokens{}, i32t, &bozon.SintValue{Value: 2, Kind: bozon.TypeInt32})
	sw := bozon.SwitchStmt{
		Subject: subject,
		Cases: []bozon.SwitchCase{
			{Match: &bozon.SintValue{Value: 1, Kind: bozon.TypeInt32}, Body: []bozon.Stmt{
				bozon.ReturnStmt{Value: bozon.ConstExpr(bozon.SrcTokens{}, i32t, &bozon.SintValue{Value: 100, Kind: bozon.TypeInt32})},
			}},
			{Match: &bozon.SintValue{Value: 2, Kind: bozon.TypeInt32}, Body: []bozon.Stmt{
				bozon.ReturnStmt{Value: bozon.ConstExpr(bozon.SrcTokens{}, i32t, &bozon.SintValue{Value: 200, Kind: bozon.TypeInt32})},
			}},
		},
	}

	fn := &bozon.FunctionDecl{
		Name:       "sw",
		SymbolName: "sw",
		Return:     i32t,
		CC:         bozon.CCDefault,
		Linkage:    bozon.LinkageInternal,
		Body:       []bozon.Stmt{sw, bozon.ReturnStmt{Value: bozon.ConstExpr(bozon.SrcTokens{}, i32t, &bozon.SintValue{Value: 0, Kind: bozon.TypeInt32})}},
	}

	mod := bllvm.NewModule(session, "x86_64-unknown-linux-gnu")
	mod.Declare(fn)
	require.NoError(t, mod.Lower(fn))

	ir := mod.Module().String()
	assert.True(t, strings.Contains(ir, "icmp eq i32"))
	assert.True(t, strings.Contains(ir, "ret i32 200"))
}

func TestLowerCompoundExprReturnsTrailingExprStmtValue(t *testing.T) {
	session := bozon.NewSession()
	i32, _ := session.Interner.Builtin("int32")
	i32t := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: i32}}

	x := &bozon.VarDecl{Name: "x", Type: i32t}
	compound := bozon.DynamicExpr(bozon.SrcTokens{}, i32t, bozon.ValueRvalue, bozon.CompoundExpr{
		Stmts: []bozon.Stmt{
			bozon.VarDeclStmt{Var: x, Init: bozon.ConstExpr(bozon.SrcTokens{}, i32t, &bozon.SintValue{Value: 7, Kind: bozon.TypeInt32})},
			bozon.ExprStmt{Expr: bozon.DynamicExpr(bozon.SrcTokens{}, i32t, bozon.ValueLvalue, bozon.IdentifierExpr{Var: x})},
		},
	})

	fn := &bozon.FunctionDecl{
		Name:       "compound",
		SymbolName: "compound",
		Return:     i32t,
		CC:         bozon.CCDefault,
		Linkage:    bozon.LinkageInternal,
		Body:       []bozon.Stmt{bozon.ReturnStmt{Value: compound}},
	}

	mod := bllvm.NewModule(session, "x86_64-unknown-linux-gnu")
	mod.Declare(fn)
	require.NoError(t, mod.Lower(fn))

	ir := mod.Module().String()
	assert.True(t, strings.Contains(ir, "store i32 7"))
}

func TestLowerLogicalXorEmitsBoolXor(t *testing.T) {
	session := bozon.NewSession()
	boolInfo, _ := session.Interner.Builtin("bool")
	boolT := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: boolInfo}}

	a := &bozon.VarDecl{Name: "a", Type: boolT, IsArg: true}
	b := &bozon.VarDecl{Name: "b", Type: boolT, IsArg: true}
	aExpr := bozon.DynamicExpr(bozon.SrcTokens{}, boolT, bozon.ValueLvalue, bozon.IdentifierExpr{Var: a})
	bExpr := bozon.DynamicExpr(bozon.SrcTokens{}, boolT, bozon.ValueLvalue, bozon.IdentifierExpr{Var: b})
	xor := bozon.DynamicExpr(bozon.SrcTokens{}, boolT, bozon.ValueRvalue, bozon.BinaryExpr{Op: bozon.OpLogicalXor, Left: aExpr, Right: bExpr})

	fn := &bozon.FunctionDecl{
		Name:       "xor",
		SymbolName: "xor",
		Params:     []*bozon.VarDecl{a, b},
		Return:     boolT,
		CC:         bozon.CCDefault,
		Linkage:    bozon.LinkageInternal,
		Body:       []bozon.Stmt{bozon.ReturnStmt{Value: xor}},
	}

	mod := bllvm.NewModule(session, "x86_64-unknown-linux-gnu")
	mod.Declare(fn)
	require.NoError(t, mod.Lower(fn))

	ir := mod.Module().String()
	assert.True(t, strings.Contains(ir, "xor i1"))
}
