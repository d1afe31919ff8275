package syntax

import (
	"fmt"

	"github.com/bozon-lang/bozonc"
)

// Parser turns token text into typed FunctionDecl trees directly —
// unlike a production front end, there is no separate untyped-AST
// stage; names resolve against the session's root scope as they're
// parsed, so forward references to a function declared later in the
// same file are not supported (a real Bozon front end would two-pass
// this; this stand-in doesn't need to).
type Parser struct {
	lex     *Lexer
	session *bozon.Session
	tok     Token
	prev    Token
}

func NewParser(session *bozon.Session, input []byte) *Parser {
	p := &Parser{lex: NewLexer(input), session: session}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.prev = p.tok
	p.tok = p.lex.Next()
}

func (p *Parser) at(kind TokenKind, text string) bool {
	return p.tok.Kind == kind && (text == "" || p.tok.Text == text)
}

func (p *Parser) expect(kind TokenKind, text string) (Token, error) {
	if !p.at(kind, text) {
		return Token{}, fmt.Errorf("expected %q, found %q at byte %d", text, p.tok.Text, p.tok.Range.Start)
	}
	t := p.tok
	p.advance()
	return t, nil
}

func (p *Parser) src(r bozon.Range) bozon.SrcTokens {
	return bozon.SrcTokens{Begin: r, Pivot: r, End: r}
}

// ParseModule parses every top-level function declaration in the
// input, declaring each into the session's root scope as it goes.
func (p *Parser) ParseModule() ([]*bozon.FunctionDecl, error) {
	var fns []*bozon.FunctionDecl
	for !p.at(TokEOF, "") {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

func (p *Parser) parseFunction() (*bozon.FunctionDecl, error) {
	if _, err := p.expect(TokKeyword, "fn"); err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent, "")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokPunct, "("); err != nil {
		return nil, err
	}
	fnScope := p.session.Root.Child(name.Text)
	var params []*bozon.VarDecl
	for !p.at(TokPunct, ")") {
		pname, err := p.expect(TokIdent, "")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokPunct, ":"); err != nil {
			return nil, err
		}
		ptype, err := p.parseType()
		if err != nil {
			return nil, err
		}
		v := &bozon.VarDecl{Name: pname.Text, Type: ptype, IsArg: true}
		if _, err := fnScope.DeclareVar(v); err != nil {
			return nil, err
		}
		params = append(params, v)
		if p.at(TokPunct, ",") {
			p.advance()
		}
	}
	if _, err := p.expect(TokPunct, ")"); err != nil {
		return nil, err
	}

	ret := bozon.Typespec{Term: bozon.VoidTerm{}}
	if p.at(TokPunct, "->") {
		p.advance()
		var err error
		ret, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	fn := &bozon.FunctionDecl{
		Name:       name.Text,
		SymbolName: name.Text,
		Params:     params,
		Return:     ret,
		CC:         bozon.CCDefault,
		Linkage:    bozon.LinkageInternal,
	}
	p.session.Root.DeclareFunc(fn)

	body, err := p.parseBlockStmts(fnScope)
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

// parseType supports a pointer prefix and a bare identifier naming
// either a built-in base type or a previously declared struct; the
// full modifier grammar (§3.2's optional/reference/consteval layers)
// is not surfaced by this stand-in syntax.
func (p *Parser) parseType() (bozon.Typespec, error) {
	if p.at(TokPunct, "*") {
		p.advance()
		inner, err := p.parseType()
		if err != nil {
			return bozon.Typespec{}, err
		}
		return inner.AddLayer(bozon.ModPointer), nil
	}
	name, err := p.expect(TokIdent, "")
	if err != nil {
		return bozon.Typespec{}, err
	}
	if info, ok := p.session.Interner.Builtin(name.Text); ok {
		return bozon.Typespec{Term: bozon.BaseTypeTerm{Info: info}}, nil
	}
	if info, ok := p.session.Root.LookupStruct(name.Text); ok {
		return bozon.Typespec{Term: bozon.BaseTypeTerm{Info: info}}, nil
	}
	return bozon.Typespec{}, fmt.Errorf("unknown type %q", name.Text)
}

func (p *Parser) parseBlockStmts(scope *bozon.Scope) ([]bozon.Stmt, error) {
	if _, err := p.expect(TokPunct, "{"); err != nil {
		return nil, err
	}
	var stmts []bozon.Stmt
	for !p.at(TokPunct, "}") {
		s, err := p.parseStmt(scope)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(TokPunct, "}"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseStmt(scope *bozon.Scope) (bozon.Stmt, error) {
	switch {
	case p.at(TokKeyword, "let"):
		return p.parseVarDecl(scope)
	case p.at(TokKeyword, "return"):
		p.advance()
		if p.at(TokPunct, ";") {
			p.advance()
			return bozon.ReturnStmt{}, nil
		}
		e, err := p.parseExpr(scope, 0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokPunct, ";"); err != nil {
			return nil, err
		}
		return bozon.ReturnStmt{Value: e}, nil
	case p.at(TokKeyword, "break"):
		p.advance()
		if _, err := p.expect(TokPunct, ";"); err != nil {
			return nil, err
		}
		return bozon.BreakStmt{}, nil
	case p.at(TokKeyword, "continue"):
		p.advance()
		if _, err := p.expect(TokPunct, ";"); err != nil {
			return nil, err
		}
		return bozon.ContinueStmt{}, nil
	case p.at(TokKeyword, "if"):
		return p.parseIf(scope)
	case p.at(TokKeyword, "while"):
		return p.parseWhile(scope)
	case p.at(TokPunct, "{"):
		inner := scope.Child("")
		body, err := p.parseBlockStmts(inner)
		if err != nil {
			return nil, err
		}
		return bozon.BlockStmt{Scope: bozon.NewDestructScope(nil), Body: body}, nil
	default:
		e, err := p.parseExpr(scope, 0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokPunct, ";"); err != nil {
			return nil, err
		}
		return bozon.ExprStmt{Expr: e}, nil
	}
}

func (p *Parser) parseVarDecl(scope *bozon.Scope) (bozon.Stmt, error) {
	p.advance()
	name, err := p.expect(TokIdent, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, ":"); err != nil {
		return nil, err
	}
	vtype, err := p.parseType()
	if err != nil {
		return nil, err
	}
	var init *bozon.Expr
	if p.at(TokPunct, "=") {
		p.advance()
		init, err = p.parseExpr(scope, 0)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokPunct, ";"); err != nil {
		return nil, err
	}
	v := &bozon.VarDecl{Name: name.Text, Type: vtype}
	if _, err := scope.DeclareVar(v); err != nil {
		return nil, err
	}
	return bozon.VarDeclStmt{Var: v, Init: init}, nil
}

func (p *Parser) parseIf(scope *bozon.Scope) (bozon.Stmt, error) {
	p.advance()
	if _, err := p.expect(TokPunct, "("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(scope, 0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, ")"); err != nil {
		return nil, err
	}
	then, err := p.parseBlockStmts(scope.Child(""))
	if err != nil {
		return nil, err
	}
	var els []bozon.Stmt
	if p.at(TokKeyword, "else") {
		p.advance()
		if p.at(TokKeyword, "if") {
			elseStmt, err := p.parseIf(scope)
			if err != nil {
				return nil, err
			}
			els = []bozon.Stmt{elseStmt}
		} else {
			els, err = p.parseBlockStmts(scope.Child(""))
			if err != nil {
				return nil, err
			}
		}
	}
	return bozon.IfStmt{Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) parseWhile(scope *bozon.Scope) (bozon.Stmt, error) {
	p.advance()
	if _, err := p.expect(TokPunct, "("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(scope, 0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, ")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockStmts(scope.Child(""))
	if err != nil {
		return nil, err
	}
	return bozon.WhileStmt{Cond: cond, Body: body, Scope: bozon.NewDestructScope(nil)}, nil
}
