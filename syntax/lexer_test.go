package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	l := NewLexer([]byte(src))
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			return toks
		}
	}
}

func TestLexer_IdentifiersAndKeywords(t *testing.T) {
	toks := lexAll(t, "let x = foo")
	require.Len(t, toks, 5) // let, x, =, foo, EOF
	assert.Equal(t, TokKeyword, toks[0].Kind)
	assert.Equal(t, "let", toks[0].Text)
	assert.Equal(t, TokIdent, toks[1].Kind)
	assert.Equal(t, TokPunct, toks[2].Kind)
	assert.Equal(t, TokIdent, toks[3].Kind)
	assert.Equal(t, "foo", toks[3].Text)
}

func TestLexer_IntAndFloatLiterals(t *testing.T) {
	toks := lexAll(t, "42 3.14")
	assert.Equal(t, TokInt, toks[0].Kind)
	assert.Equal(t, "42", toks[0].Text)
	assert.Equal(t, TokFloat, toks[1].Kind)
	assert.Equal(t, "3.14", toks[1].Text)
}

func TestLexer_StringAndCharLiterals(t *testing.T) {
	toks := lexAll(t, `"hi" 'a'`)
	assert.Equal(t, TokString, toks[0].Kind)
	assert.Equal(t, `"hi"`, toks[0].Text)
	assert.Equal(t, TokChar, toks[1].Kind)
	assert.Equal(t, "'a'", toks[1].Text)
}

func TestLexer_StringLiteral_HandlesEscapedQuote(t *testing.T) {
	toks := lexAll(t, `"a\"b"`)
	assert.Equal(t, TokString, toks[0].Kind)
	assert.Equal(t, `"a\"b"`, toks[0].Text)
}

func TestLexer_SkipsLineCommentsAndWhitespace(t *testing.T) {
	toks := lexAll(t, "x // a comment\n  y")
	require.Len(t, toks, 3) // x, y, EOF
	assert.Equal(t, "x", toks[0].Text)
	assert.Equal(t, "y", toks[1].Text)
}

func TestLexer_TwoByteOperators(t *testing.T) {
	toks := lexAll(t, "-> == != <= >= && || ^^ << >> ::")
	want := []string{"->", "==", "!=", "<=", ">=", "&&", "||", "^^", "<<", ">>", "::"}
	for i, w := range want {
		assert.Equal(t, TokPunct, toks[i].Kind)
		assert.Equal(t, w, toks[i].Text)
	}
}

func TestLexer_SingleByteOperatorsDoNotOverreach(t *testing.T) {
	toks := lexAll(t, "= ! < >")
	for i, w := range []string{"=", "!", "<", ">"} {
		assert.Equal(t, w, toks[i].Text)
	}
}

func TestLexer_EmptyInputYieldsImmediateEOF(t *testing.T) {
	toks := lexAll(t, "")
	require.Len(t, toks, 1)
	assert.Equal(t, TokEOF, toks[0].Kind)
}

func TestLexer_KeywordTable(t *testing.T) {
	for _, kw := range []string{"fn", "let", "return", "if", "else", "while", "break", "continue", "true", "false", "null", "as", "mut", "struct", "switch", "case"} {
		toks := lexAll(t, kw)
		assert.Equal(t, TokKeyword, toks[0].Kind, "%q should lex as a keyword", kw)
	}
}
