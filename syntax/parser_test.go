package syntax

import (
	"testing"

	"github.com/bozon-lang/bozonc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_ParseModule_SimpleFunction(t *testing.T) {
	src := `
fn add(a: int32, b: int32) -> int32 {
	return a + b;
}
`
	session := bozon.NewSession()
	p := NewParser(session, []byte(src))
	fns, err := p.ParseModule()
	require.NoError(t, err)
	require.Len(t, fns, 1)

	fn := fns[0]
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	require.Len(t, fn.Body, 1)
	ret, ok := fn.Body[0].(bozon.ReturnStmt)
	require.True(t, ok)
	bin, ok := ret.Value.Body.(bozon.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, bozon.OpAdd, bin.Op)
}

func TestParser_ParseModule_VarDeclAndIfWhile(t *testing.T) {
	src := `
fn run() -> int32 {
	let x: int32 = 0;
	while (x < 3) {
		break;
	}
	if (x == 3) {
		return x;
	} else {
		return 0;
	}
}
`
	session := bozon.NewSession()
	p := NewParser(session, []byte(src))
	fns, err := p.ParseModule()
	require.NoError(t, err)
	require.Len(t, fns, 1)
	assert.Len(t, fns[0].Body, 3)

	whileStmt, ok := fns[0].Body[1].(bozon.WhileStmt)
	require.True(t, ok)
	require.Len(t, whileStmt.Body, 1)
	_, isBreak := whileStmt.Body[0].(bozon.BreakStmt)
	assert.True(t, isBreak)

	ifStmt, ok := fns[0].Body[2].(bozon.IfStmt)
	require.True(t, ok)
	assert.Len(t, ifStmt.Then, 1)
	assert.Len(t, ifStmt.Else, 1)
}

func TestParser_ParseModule_MultipleFunctionsAndCall(t *testing.T) {
	src := `
fn helper(a: int32) -> int32 {
	return a;
}
fn main() -> int32 {
	return helper(1);
}
`
	session := bozon.NewSession()
	p := NewParser(session, []byte(src))
	fns, err := p.ParseModule()
	require.NoError(t, err)
	require.Len(t, fns, 2)

	ret := fns[1].Body[0].(bozon.ReturnStmt)
	call, ok := ret.Value.Body.(bozon.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "helper", call.Func.Name)
}

func TestParser_ParseModule_UndeclaredIdentifierIsError(t *testing.T) {
	src := `
fn run() -> int32 {
	return missing;
}
`
	session := bozon.NewSession()
	p := NewParser(session, []byte(src))
	_, err := p.ParseModule()
	assert.Error(t, err)
}

func TestParser_ParseModule_UnknownCalleeIsError(t *testing.T) {
	src := `
fn run() -> int32 {
	return nope(1);
}
`
	session := bozon.NewSession()
	p := NewParser(session, []byte(src))
	_, err := p.ParseModule()
	assert.Error(t, err)
}

func TestParser_ParseType_PointerPrefix(t *testing.T) {
	src := `
fn run(p: *int32) -> int32 {
	return 0;
}
`
	session := bozon.NewSession()
	p := NewParser(session, []byte(src))
	fns, err := p.ParseModule()
	require.NoError(t, err)
	ptype := fns[0].Params[0].Type
	assert.True(t, ptype.IsMod(bozon.ModPointer))
}

func TestParser_ParseExpr_PrecedenceClimbing(t *testing.T) {
	src := `
fn run() -> int32 {
	return 1 + 2 * 3;
}
`
	session := bozon.NewSession()
	p := NewParser(session, []byte(src))
	fns, err := p.ParseModule()
	require.NoError(t, err)

	ret := fns[0].Body[0].(bozon.ReturnStmt)
	top := ret.Value.Body.(bozon.BinaryExpr)
	assert.Equal(t, bozon.OpAdd, top.Op, "+ is the loosest-binding operator at the top of the tree")
	rhs := top.Right.Body.(bozon.BinaryExpr)
	assert.Equal(t, bozon.OpMultiply, rhs.Op, "* binds tighter, nesting under the right operand of +")
}
