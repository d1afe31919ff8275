package syntax

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bozon-lang/bozonc"
)

var binaryOps = map[string]bozon.OperatorKind{
	"+": bozon.OpAdd, "-": bozon.OpSubtract, "*": bozon.OpMultiply,
	"/": bozon.OpDivide, "%": bozon.OpModulo,
	"==": bozon.OpEqual, "!=": bozon.OpNotEqual,
	"<": bozon.OpLess, "<=": bozon.OpLessEqual,
	">": bozon.OpGreater, ">=": bozon.OpGreaterEqual,
	"&": bozon.OpBitAnd, "|": bozon.OpBitOr, "^": bozon.OpBitXor,
	"<<": bozon.OpShiftLeft, ">>": bozon.OpShiftRight,
	"&&": bozon.OpLogicalAnd, "||": bozon.OpLogicalOr, "^^": bozon.OpLogicalXor,
}

// parseExpr is a standard precedence-climbing parser: parsePrimary
// (plus postfix call/subscript/cast) handles everything that binds
// tighter than any binary operator, then the loop folds in operators
// at or above minPrec.
func (p *Parser) parseExpr(scope *bozon.Scope, minPrec int) (*bozon.Expr, error) {
	left, err := p.parseUnary(scope)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := binaryOps[p.tok.Text]
		if !ok || p.tok.Kind != TokPunct || op.Precedence() < minPrec {
			break
		}
		opTok := p.tok
		p.advance()
		right, err := p.parseExpr(scope, op.Precedence()+1)
		if err != nil {
			return nil, err
		}
		resultType := left.Type
		if op == bozon.OpEqual || op == bozon.OpNotEqual || op == bozon.OpLess ||
			op == bozon.OpLessEqual || op == bozon.OpGreater || op == bozon.OpGreaterEqual ||
			op == bozon.OpLogicalAnd || op == bozon.OpLogicalOr || op == bozon.OpLogicalXor {
			resultType = p.boolType()
		}
		left = bozon.DynamicExpr(p.src(opTok.Range), resultType, bozon.ValueRvalue,
			bozon.BinaryExpr{Op: op, Left: left, Right: right})
	}
	return left, nil
}

func (p *Parser) boolType() bozon.Typespec {
	info, _ := p.session.Interner.Builtin("bool")
	return bozon.Typespec{Term: bozon.BaseTypeTerm{Info: info}}
}

func (p *Parser) parseUnary(scope *bozon.Scope) (*bozon.Expr, error) {
	switch {
	case p.at(TokPunct, "-"):
		tok := p.tok
		p.advance()
		operand, err := p.parseUnary(scope)
		if err != nil {
			return nil, err
		}
		return bozon.DynamicExpr(p.src(tok.Range), operand.Type, bozon.ValueRvalue,
			bozon.UnaryExpr{Op: bozon.OpUnaryMinus, Operand: operand}), nil
	case p.at(TokPunct, "!"):
		tok := p.tok
		p.advance()
		operand, err := p.parseUnary(scope)
		if err != nil {
			return nil, err
		}
		return bozon.DynamicExpr(p.src(tok.Range), p.boolType(), bozon.ValueRvalue,
			bozon.UnaryExpr{Op: bozon.OpLogicalNot, Operand: operand}), nil
	case p.at(TokPunct, "~"):
		tok := p.tok
		p.advance()
		operand, err := p.parseUnary(scope)
		if err != nil {
			return nil, err
		}
		return bozon.DynamicExpr(p.src(tok.Range), operand.Type, bozon.ValueRvalue,
			bozon.UnaryExpr{Op: bozon.OpBitNot, Operand: operand}), nil
	default:
		return p.parsePostfix(scope)
	}
}

func (p *Parser) parsePostfix(scope *bozon.Scope) (*bozon.Expr, error) {
	e, err := p.parsePrimary(scope)
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at(TokPunct, "["):
			tok := p.tok
			p.advance()
			idx, err := p.parseExpr(scope, 0)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokPunct, "]"); err != nil {
				return nil, err
			}
			elemType := e.Type
			if len(elemType.Modifiers) > 0 {
				elemType = elemType.RemoveLayer()
			}
			e = bozon.DynamicExpr(p.src(tok.Range), elemType, bozon.ValueLvalue,
				bozon.SubscriptExpr{Base: e, Index: idx})
		case p.at(TokKeyword, "as"):
			p.advance()
			target, err := p.parseType()
			if err != nil {
				return nil, err
			}
			e = bozon.DynamicExpr(e.SrcTokens, target, bozon.ValueRvalue,
				bozon.CastExpr{Operand: e, Target: target})
		default:
			return e, nil
		}
	}
}

func (p *Parser) parsePrimary(scope *bozon.Scope) (*bozon.Expr, error) {
	tok := p.tok
	switch {
	case tok.Kind == TokInt:
		p.advance()
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, err
		}
		info, _ := p.session.Interner.Builtin("int32")
		t := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: info}}
		return bozon.ConstExpr(p.src(tok.Range), t, &bozon.SintValue{Value: n, Kind: bozon.TypeInt32}), nil

	case tok.Kind == TokFloat:
		p.advance()
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, err
		}
		info, _ := p.session.Interner.Builtin("float64")
		t := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: info}}
		return bozon.ConstExpr(p.src(tok.Range), t, &bozon.Float64Value{Value: f}), nil

	case tok.Kind == TokString:
		p.advance()
		info, _ := p.session.Interner.Builtin("str")
		t := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: info}}
		return bozon.ConstExpr(p.src(tok.Range), t, &bozon.StringValue{Value: unquote(tok.Text)}), nil

	case tok.Kind == TokChar:
		p.advance()
		info, _ := p.session.Interner.Builtin("char")
		t := bozon.Typespec{Term: bozon.BaseTypeTerm{Info: info}}
		runes := []rune(unquote(tok.Text))
		var r rune
		if len(runes) > 0 {
			r = runes[0]
		}
		return bozon.ConstExpr(p.src(tok.Range), t, &bozon.CharValue{Value: r}), nil

	case p.at(TokKeyword, "true"), p.at(TokKeyword, "false"):
		p.advance()
		t := p.boolType()
		return bozon.ConstExpr(p.src(tok.Range), t, &bozon.BoolValue{Value: tok.Text == "true"}), nil

	case p.at(TokKeyword, "null"):
		p.advance()
		return bozon.ConstExpr(p.src(tok.Range), bozon.Typespec{}, &bozon.NullValue{}), nil

	case p.at(TokPunct, "("):
		p.advance()
		e, err := p.parseExpr(scope, 0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokPunct, ")"); err != nil {
			return nil, err
		}
		return e, nil

	case tok.Kind == TokIdent:
		p.advance()
		if p.at(TokPunct, "(") {
			return p.parseCall(scope, tok)
		}
		v, _ := scope.LookupVar(tok.Text)
		if v == nil {
			return nil, fmt.Errorf("undeclared identifier %q", tok.Text)
		}
		cat := bozon.ValueLvalue
		return bozon.DynamicExpr(p.src(tok.Range), v.Type, cat, bozon.IdentifierExpr{Var: v}), nil

	default:
		return nil, fmt.Errorf("unexpected token %q at byte %d", tok.Text, tok.Range.Start)
	}
}

func (p *Parser) parseCall(scope *bozon.Scope, name Token) (*bozon.Expr, error) {
	p.advance() // consume '('
	var args []*bozon.Expr
	for !p.at(TokPunct, ")") {
		a, err := p.parseExpr(scope, 0)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.at(TokPunct, ",") {
			p.advance()
		}
	}
	if _, err := p.expect(TokPunct, ")"); err != nil {
		return nil, err
	}

	set := scope.LookupFuncSet(name.Text)
	if set == nil {
		return nil, fmt.Errorf("call to undeclared function %q", name.Text)
	}
	fn, err := bozon.ResolveOverload(set, args)
	if err != nil {
		return nil, err
	}
	callee := bozon.DynamicExpr(p.src(name.Range), bozon.Typespec{}, bozon.ValueRvalue,
		bozon.IdentifierExpr{})
	return bozon.DynamicExpr(p.src(name.Range), fn.Return, bozon.ValueRvalue,
		bozon.CallExpr{Callee: callee, Args: args, Func: fn}), nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, `\"`, `"`)
}
