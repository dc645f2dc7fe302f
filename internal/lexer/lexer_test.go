package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeCreateTable(t *testing.T) {
	toks, err := New(`CREATE TABLE t (id INTEGER PRIMARY KEY, name VARCHAR(10) NOT NULL);`).Tokenize()
	require.NoError(t, err)

	var types []TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{
		CREATE, TABLE, IDENT, LPAREN,
		IDENT, INTEGER_TYPE, PRIMARY, KEY, COMMA,
		IDENT, VARCHAR_TYPE, LPAREN, INT, RPAREN, NOT, NULL_KW,
		RPAREN, SEMICOLON, EOF,
	}, types)
}

func TestTokenizePreservesIdentifierCase(t *testing.T) {
	toks, err := New(`SELECT Name FROM MyTable;`).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 6)
	assert.Equal(t, "Name", toks[1].Literal)
	assert.Equal(t, "MyTable", toks[3].Literal)
}

func TestTokenizeStringEscape(t *testing.T) {
	toks, err := New(`SELECT 'it''s fine';`).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, STRING, toks[1].Type)
	assert.Equal(t, "it's fine", toks[1].Literal)
}

func TestTokenizeComment(t *testing.T) {
	toks, err := New("SELECT * FROM t -- trailing comment\nWHERE x=1;").Tokenize()
	require.NoError(t, err)
	var types []TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{SELECT, STAR, FROM, IDENT, WHERE, IDENT, EQ, INT, SEMICOLON, EOF}, types)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := New(`SELECT 'oops`).Tokenize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated string")
}

func TestTokenizeUnknownCharacter(t *testing.T) {
	_, err := New(`SELECT # FROM t;`).Tokenize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected character")
}

func TestTokenizeBooleanLiterals(t *testing.T) {
	toks, err := New(`TRUE false`).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, BOOLEAN, toks[0].Type)
	assert.Equal(t, "TRUE", toks[0].Literal)
	assert.Equal(t, BOOLEAN, toks[1].Type)
	assert.Equal(t, "FALSE", toks[1].Literal)
}
