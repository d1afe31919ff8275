package c

import (
	"fmt"
	"strconv"

	"github.com/bozon-lang/bozonc"
)

// expr renders e as a single parenthesization-correct C expression
// string. Tracking precedence as an int (mirroring operators.go's own
// built-in-operator table) avoids the teacher's approach of always
// parenthesizing every subexpression, which genc.go itself doesn't do
// either — matching operator section, not every call site.
func (fe *funcEmitter) expr(e *bozon.Expr) (string, error) {
	if e.Kind == bozon.ExprConstant {
		return fe.constantLiteral(e.Constant)
	}

	switch v := e.Body.(type) {
	case bozon.LiteralExpr:
		return fe.constantLiteral(v.Value)

	case bozon.IdentifierExpr:
		name, ok := fe.locals[v.Var]
		if !ok {
			return "", fmt.Errorf("identifier %q emitted before its declaration", v.Var.Name)
		}
		return name, nil

	case bozon.UnaryExpr:
		operand, err := fe.exprAtPrec(v.Operand, 13)
		if err != nil {
			return "", err
		}
		return v.Op.String() + operand, nil

	case bozon.BinaryExpr:
		return fe.binary(v)

	case bozon.CallExpr:
		return fe.call(v)

	case bozon.CastExpr:
		operand, err := fe.exprAtPrec(v.Operand, 13)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s)%s", fe.mod.types.CType(v.Target), operand), nil

	case bozon.SubscriptExpr:
		base, err := fe.exprAtPrec(v.Base, 14)
		if err != nil {
			return "", err
		}
		idx, err := fe.expr(v.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", base, idx), nil

	case bozon.CompoundExpr:
		return fe.compound(v)

	case bozon.IfExpr:
		return fe.ifExpr(v)

	default:
		return "", fmt.Errorf("c backend: unhandled expression %T", e.Body)
	}
}

func precedenceOf(op bozon.OperatorKind) int { return op.Precedence() }

// exprAtPrec renders operand and wraps it in parens iff its own
// top-level operator binds looser than the minimum precedence the
// caller requires.
func (fe *funcEmitter) exprAtPrec(e *bozon.Expr, minPrec int) (string, error) {
	s, err := fe.expr(e)
	if err != nil {
		return "", err
	}
	if bin, ok := e.Body.(bozon.BinaryExpr); ok && precedenceOf(bin.Op) < minPrec {
		return "(" + s + ")", nil
	}
	if un, ok := e.Body.(bozon.UnaryExpr); ok && precedenceOf(un.Op) < minPrec {
		return "(" + s + ")", nil
	}
	if _, ok := e.Body.(bozon.IfExpr); ok {
		return "(" + s + ")", nil
	}
	return s, nil
}

func (fe *funcEmitter) binary(v bozon.BinaryExpr) (string, error) {
	prec := precedenceOf(v.Op)
	left, err := fe.exprAtPrec(v.Left, prec)
	if err != nil {
		return "", err
	}
	right, err := fe.exprAtPrec(v.Right, prec+1)
	if err != nil {
		return "", err
	}
	if checked, ok := checkedBinary(v.Op, v.Left.Type, left, right); ok {
		return checked, nil
	}
	if v.Op == bozon.OpLogicalXor {
		return fmt.Sprintf("(!(%s) != !(%s))", left, right), nil
	}
	return fmt.Sprintf("%s %s %s", left, v.Op.String(), right), nil
}

// checkedBinary routes integer division and modulo through the
// embedded runtime's trapping helpers instead of emitting a bare `/`
// or `%`, since plain C division by zero (and INT64_MIN / -1) is
// undefined behavior where Bozon defines a panic (§4.2, §9).
func checkedBinary(op bozon.OperatorKind, t bozon.Typespec, left, right string) (string, bool) {
	if op != bozon.OpDivide && op != bozon.OpModulo {
		return "", false
	}
	if len(t.Modifiers) != 0 {
		return "", false
	}
	bt, ok := t.Term.(bozon.BaseTypeTerm)
	if !ok {
		return "", false
	}
	var fn string
	switch {
	case bt.Info.Kind.IsSigned() && op == bozon.OpDivide:
		fn = "bozon_checked_div_i64"
	case bt.Info.Kind.IsSigned() && op == bozon.OpModulo:
		fn = "bozon_checked_mod_i64"
	case !bt.Info.Kind.IsSigned() && op == bozon.OpDivide && bt.Info.Kind != bozon.TypeFloat32 && bt.Info.Kind != bozon.TypeFloat64:
		fn = "bozon_checked_div_u64"
	case !bt.Info.Kind.IsSigned() && op == bozon.OpModulo && bt.Info.Kind != bozon.TypeFloat32 && bt.Info.Kind != bozon.TypeFloat64:
		fn = "bozon_checked_mod_u64"
	default:
		return "", false
	}
	return fmt.Sprintf("%s(%s, %s)", fn, left, right), true
}

func (fe *funcEmitter) call(v bozon.CallExpr) (string, error) {
	if v.Func == nil {
		return "", fmt.Errorf("c backend: call to an unresolved function")
	}
	args := make([]string, len(v.Args))
	for i, a := range v.Args {
		s, err := fe.expr(a)
		if err != nil {
			return "", err
		}
		args[i] = s
	}
	joined := ""
	for i, a := range args {
		if i > 0 {
			joined += ", "
		}
		joined += a
	}
	return fmt.Sprintf("%s(%s)", fe.mod.cFuncName(v.Func), joined), nil
}

// compound renders a CompoundExpr as a GNU statement expression, the
// closest portable-enough analogue C has to "a block that produces a
// value"; bozonc's other emission target (LLVM) doesn't need this
// since basic blocks already produce values directly. Only the leaf
// shapes the compile-time folder actually leaves behind (a trailing
// produced value, optionally preceded by local declarations) are
// supported; anything else is a backend limitation, not a language one.
func (fe *funcEmitter) compound(v bozon.CompoundExpr) (string, error) {
	parts := make([]string, 0, len(v.Stmts))
	for i, s := range v.Stmts {
		switch st := s.(type) {
		case bozon.VarDeclStmt:
			name := sanitizeCIdent(st.Var.Name)
			fe.locals[st.Var] = name
			if st.Init == nil {
				parts = append(parts, fmt.Sprintf("%s %s", fe.mod.types.CType(st.Var.Type), name))
				continue
			}
			init, err := fe.expr(st.Init)
			if err != nil {
				return "", err
			}
			parts = append(parts, fmt.Sprintf("%s %s = %s", fe.mod.types.CType(st.Var.Type), name, init))
		case bozon.ExprStmt:
			val, err := fe.expr(st.Expr)
			if err != nil {
				return "", err
			}
			parts = append(parts, val)
		default:
			if i == len(v.Stmts)-1 {
				return "", fmt.Errorf("c backend: unsupported trailing statement %T in a value-producing block", s)
			}
			return "", fmt.Errorf("c backend: unsupported statement %T in a value-producing block", s)
		}
	}
	joined := ""
	for i, p := range parts {
		if i > 0 {
			joined += "; "
		}
		joined += p
	}
	return fmt.Sprintf("({ %s; })", joined), nil
}

func (fe *funcEmitter) ifExpr(v bozon.IfExpr) (string, error) {
	cond, err := fe.expr(v.Cond)
	if err != nil {
		return "", err
	}
	then, err := fe.exprAtPrec(v.Then, 4)
	if err != nil {
		return "", err
	}
	els, err := fe.exprAtPrec(v.Else, 4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s ? %s : %s", cond, then, els), nil
}

func (fe *funcEmitter) constantLiteral(v bozon.ConstantValue) (string, error) {
	switch c := v.(type) {
	case *bozon.SintValue:
		return strconv.FormatInt(c.Value, 10), nil
	case *bozon.UintValue:
		return strconv.FormatUint(c.Value, 10) + "u", nil
	case *bozon.Float32Value:
		return strconv.FormatFloat(float64(c.Value), 'g', -1, 32) + "f", nil
	case *bozon.Float64Value:
		return strconv.FormatFloat(c.Value, 'g', -1, 64), nil
	case *bozon.BoolValue:
		if c.Value {
			return "1", nil
		}
		return "0", nil
	case *bozon.CharValue:
		return strconv.Itoa(int(c.Value)), nil
	case *bozon.StringValue:
		return strconv.Quote(c.Value), nil
	case *bozon.NullValue:
		return "NULL", nil
	default:
		return "", fmt.Errorf("c backend: constant kind %T has no literal form", v)
	}
}
