package c

import (
	"fmt"

	"github.com/bozon-lang/bozonc"
)

// funcEmitter renders one FunctionDecl's body, one C statement per
// source statement (§4.7) — the teacher's genc.go keeps the same
// one-pass, no-optimization stance for its own generated parsers.
type funcEmitter struct {
	mod    *moduleEmitter
	fn     *bozon.FunctionDecl
	out    *outputWriter
	locals map[*bozon.VarDecl]string
}

func (fe *funcEmitter) stmt(s bozon.Stmt) error {
	switch v := s.(type) {
	case bozon.ExprStmt:
		expr, err := fe.expr(v.Expr)
		if err != nil {
			return err
		}
		fe.out.writeil(expr + ";")
		return nil

	case bozon.VarDeclStmt:
		name := sanitizeCIdent(v.Var.Name)
		fe.locals[v.Var] = name
		if v.Init == nil {
			fe.out.writeil(fmt.Sprintf("%s %s;", fe.mod.types.CType(v.Var.Type), name))
			return nil
		}
		init, err := fe.expr(v.Init)
		if err != nil {
			return err
		}
		fe.out.writeil(fmt.Sprintf("%s %s = %s;", fe.mod.types.CType(v.Var.Type), name, init))
		return nil

	case bozon.BlockStmt:
		fe.out.writel("{")
		fe.out.indent()
		for _, inner := range v.Body {
			if err := fe.stmt(inner); err != nil {
				return err
			}
		}
		fe.out.unindent()
		fe.out.writel("}")
		return nil

	case bozon.IfStmt:
		cond, err := fe.expr(v.Cond)
		if err != nil {
			return err
		}
		fe.out.writeil(fmt.Sprintf("if (%s) {", cond))
		fe.out.indent()
		for _, inner := range v.Then {
			if err := fe.stmt(inner); err != nil {
				return err
			}
		}
		fe.out.unindent()
		if len(v.Else) == 0 {
			fe.out.writel("}")
			return nil
		}
		fe.out.writel("} else {")
		fe.out.indent()
		for _, inner := range v.Else {
			if err := fe.stmt(inner); err != nil {
				return err
			}
		}
		fe.out.unindent()
		fe.out.writel("}")
		return nil

	case bozon.WhileStmt:
		cond, err := fe.expr(v.Cond)
		if err != nil {
			return err
		}
		fe.out.writeil(fmt.Sprintf("while (%s) {", cond))
		fe.out.indent()
		for _, inner := range v.Body {
			if err := fe.stmt(inner); err != nil {
				return err
			}
		}
		fe.out.unindent()
		fe.out.writel("}")
		return nil

	case bozon.SwitchStmt:
		return fe.switchStmt(v)

	case bozon.BreakStmt:
		fe.out.writeil("break;")
		return nil

	case bozon.ContinueStmt:
		fe.out.writeil("continue;")
		return nil

	case bozon.ReturnStmt:
		if v.Value == nil {
			fe.out.writeil("return;")
			return nil
		}
		val, err := fe.expr(v.Value)
		if err != nil {
			return err
		}
		fe.out.writeil(fmt.Sprintf("return %s;", val))
		return nil

	default:
		return fmt.Errorf("c backend: unhandled statement %T", s)
	}
}

// switchStmt lowers to an if/else-if chain comparing against each
// case's constant, since C switch only accepts integer constant
// labels and Bozon's subject may be any constant-comparable type
// (mirrors compiler.go's compileSwitch for the same reason).
func (fe *funcEmitter) switchStmt(v bozon.SwitchStmt) error {
	subject, err := fe.expr(v.Subject)
	if err != nil {
		return err
	}
	tmp := freshLocal()
	fe.out.writeil(fmt.Sprintf("%s %s = %s;", fe.mod.types.CType(v.Subject.Type), tmp, subject))
	for i, c := range v.Cases {
		lit, err := fe.constantLiteral(c.Match)
		if err != nil {
			return err
		}
		keyword := "if"
		if i > 0 {
			keyword = "} else if"
		}
		fe.out.writeil(fmt.Sprintf("%s (%s == %s) {", keyword, tmp, lit))
		fe.out.indent()
		for _, inner := range c.Body {
			if err := fe.stmt(inner); err != nil {
				return err
			}
		}
		fe.out.unindent()
	}
	if len(v.Cases) > 0 {
		fe.out.writel("}")
	}
	return nil
}
