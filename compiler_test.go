package bozon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolConst(b bool) *Expr { return ConstExpr(SrcTokens{}, Typespec{}, &BoolValue{Value: b}) }
func intConst(v int64) *Expr {
	return ConstExpr(SrcTokens{}, Typespec{}, &SintValue{Value: v, Kind: TypeInt32})
}

func runProgram(t *testing.T, p *Program) ConstantValue {
	t.Helper()
	s := NewSession()
	e := NewExecutor(s)
	frame := &execFrame{program: p, locals: make([]ConstantValue, len(p.Locals))}
	res, err := e.run(frame)
	require.NoError(t, err)
	return res
}

func compileBody(fn *FunctionDecl, body []Stmt) *Program {
	fn.Body = body
	p := NewProgram(fn)
	c := &compiler{program: p, locals: make(map[*VarDecl]int64)}
	for _, param := range fn.Params {
		c.declareLocal(param)
	}
	for _, stmt := range body {
		c.compileStmt(stmt)
	}
	p.emit(Instruction{Op: OpPushConst, A: p.addConst(&NullValue{})})
	p.emit(Instruction{Op: OpReturn})
	return p
}

func TestCompiler_LogicalAnd_ShortCircuits(t *testing.T) {
	expr := DynamicExpr(SrcTokens{}, Typespec{}, ValueRvalue, BinaryExpr{Op: OpLogicalAnd, Left: boolConst(false), Right: boolConst(true)})
	p := compileBody(&FunctionDecl{Name: "and"}, []Stmt{ReturnStmt{Value: expr}})
	res := runProgram(t, p)
	assert.False(t, res.(*BoolValue).Value)
}

func TestCompiler_LogicalOr_ShortCircuits(t *testing.T) {
	expr := DynamicExpr(SrcTokens{}, Typespec{}, ValueRvalue, BinaryExpr{Op: OpLogicalOr, Left: boolConst(true), Right: boolConst(false)})
	p := compileBody(&FunctionDecl{Name: "or"}, []Stmt{ReturnStmt{Value: expr}})
	res := runProgram(t, p)
	assert.True(t, res.(*BoolValue).Value)
}

func TestCompiler_IfStmt_SelectsBranch(t *testing.T) {
	counter := &VarDecl{Name: "x"}
	init := VarDeclStmt{Var: counter, Init: intConst(0)}
	then := []Stmt{VarDeclStmt{Var: counter, Init: intConst(1)}}
	els := []Stmt{VarDeclStmt{Var: counter, Init: intConst(2)}}
	ifs := IfStmt{Cond: boolConst(true), Then: then, Else: els}
	ret := ReturnStmt{Value: DynamicExpr(SrcTokens{}, Typespec{}, ValueLvalue, IdentifierExpr{Var: counter})}

	p := compileBody(&FunctionDecl{Name: "pick"}, []Stmt{init, ifs, ret})
	res := runProgram(t, p)
	assert.Equal(t, int64(1), res.(*SintValue).Value)
}

// TestCompiler_SwitchStmt_MatchesFirstEqualCase covers §3.6's
// switch-over-constant lowering: the first case whose match value
// compares equal to the subject runs, later cases don't.
func TestCompiler_SwitchStmt_MatchesFirstEqualCase(t *testing.T) {
	result := &VarDecl{Name: "r"}
	init := VarDeclStmt{Var: result, Init: intConst(0)}
	subject := intConst(2)
	sw := SwitchStmt{
		Subject: subject,
		Cases: []SwitchCase{
			{Match: &SintValue{Value: 1, Kind: TypeInt32}, Body: []Stmt{VarDeclStmt{Var: result, Init: intConst(100)}}},
			{Match: &SintValue{Value: 2, Kind: TypeInt32}, Body: []Stmt{VarDeclStmt{Var: result, Init: intConst(200)}}},
			{Match: &SintValue{Value: 2, Kind: TypeInt32}, Body: []Stmt{VarDeclStmt{Var: result, Init: intConst(300)}}},
		},
	}
	ret := ReturnStmt{Value: DynamicExpr(SrcTokens{}, Typespec{}, ValueLvalue, IdentifierExpr{Var: result})}

	p := compileBody(&FunctionDecl{Name: "sw"}, []Stmt{init, sw, ret})
	res := runProgram(t, p)
	assert.Equal(t, int64(200), res.(*SintValue).Value, "only the first matching case runs")
}

func TestCompiler_SwitchStmt_NoMatchLeavesResultUnchanged(t *testing.T) {
	result := &VarDecl{Name: "r"}
	init := VarDeclStmt{Var: result, Init: intConst(0)}
	sw := SwitchStmt{
		Subject: intConst(99),
		Cases: []SwitchCase{
			{Match: &SintValue{Value: 1, Kind: TypeInt32}, Body: []Stmt{VarDeclStmt{Var: result, Init: intConst(100)}}},
		},
	}
	ret := ReturnStmt{Value: DynamicExpr(SrcTokens{}, Typespec{}, ValueLvalue, IdentifierExpr{Var: result})}

	p := compileBody(&FunctionDecl{Name: "sw2"}, []Stmt{init, sw, ret})
	res := runProgram(t, p)
	assert.Equal(t, int64(0), res.(*SintValue).Value)
}

func TestCompiler_CompoundExpr_ReturnsLastExprStmt(t *testing.T) {
	compound := DynamicExpr(SrcTokens{}, Typespec{}, ValueRvalue, CompoundExpr{
		Stmts: []Stmt{ExprStmt{Expr: intConst(1)}, ExprStmt{Expr: intConst(2)}},
	})
	p := compileBody(&FunctionDecl{Name: "compound"}, []Stmt{ReturnStmt{Value: compound}})
	res := runProgram(t, p)
	assert.Equal(t, int64(2), res.(*SintValue).Value)
}

func TestCompiler_VarDeclStmt_DefaultsToNullWhenNoInit(t *testing.T) {
	v := &VarDecl{Name: "uninit"}
	decl := VarDeclStmt{Var: v}
	ret := ReturnStmt{Value: DynamicExpr(SrcTokens{}, Typespec{}, ValueLvalue, IdentifierExpr{Var: v})}

	p := compileBody(&FunctionDecl{Name: "uninit"}, []Stmt{decl, ret})
	res := runProgram(t, p)
	_, isNull := res.(*NullValue)
	assert.True(t, isNull)
}
