package fxlang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexerTokenizesVariablesAndOperators(t *testing.T) {
	toks, err := newLexer(`$user.hp >= 10 and $target.status == "brn"`).tokenize()
	require.NoError(t, err)

	require.Len(t, toks, 11)
	assert.Equal(t, Token{Kind: TokVariable, Text: "user"}, toks[0])
	assert.Equal(t, Token{Kind: TokDot, Text: "."}, toks[1])
	assert.Equal(t, Token{Kind: TokIdent, Text: "hp"}, toks[2])
	assert.Equal(t, TokOp, toks[3].Kind)
	assert.Equal(t, ">=", toks[3].Text)
	assert.Equal(t, TokOp, toks[5].Kind)
	assert.Equal(t, "and", toks[5].Text)
	assert.Equal(t, TokString, toks[10].Kind)
	assert.Equal(t, "brn", toks[10].Text)
}

func TestLexerParsesFractionLiterals(t *testing.T) {
	toks, err := newLexer("3/2").tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, int64(3), toks[0].Num)
	assert.Equal(t, int64(2), toks[0].Den)
}

func TestLexerMergesHasAny(t *testing.T) {
	toks, err := newLexer("$list has any $other").tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "hasany", toks[1].Text)
}

func TestLexerStripsComments(t *testing.T) {
	toks, err := newLexer(`$x = 1 # trailing comment`).tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 3)
}

func TestLexerRejectsUnterminatedString(t *testing.T) {
	_, err := newLexer(`"unterminated`).tokenize()
	assert.Error(t, err)
}
