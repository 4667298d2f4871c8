package lexer

import (
	"testing"

	"github.com/xirelogy/azura/internal/token"
)

func TestLexerBasicTokens(t *testing.T) {
	input := `
var total := (a + 10.5) * b;
info total >= 3 != !false;
`

	tests := []token.Token{
		{Type: token.Var, Literal: "var"},
		{Type: token.Ident, Literal: "total"},
		{Type: token.Define, Literal: ":="},
		{Type: token.LParen, Literal: "("},
		{Type: token.Ident, Literal: "a"},
		{Type: token.Plus, Literal: "+"},
		{Type: token.Number, Literal: "10.5"},
		{Type: token.RParen, Literal: ")"},
		{Type: token.Star, Literal: "*"},
		{Type: token.Ident, Literal: "b"},
		{Type: token.Semicolon, Literal: ";"},
		{Type: token.Info, Literal: "info"},
		{Type: token.Ident, Literal: "total"},
		{Type: token.GreaterEqual, Literal: ">="},
		{Type: token.Number, Literal: "3"},
		{Type: token.NotEqual, Literal: "!="},
		{Type: token.Bang, Literal: "!"},
		{Type: token.False, Literal: "false"},
		{Type: token.Semicolon, Literal: ";"},
		{Type: token.EOF, Literal: ""},
	}

	l := New(input)
	for i, expected := range tests {
		tok := l.NextToken()
		if tok.Type != expected.Type || tok.Literal != expected.Literal {
			t.Fatalf("token %d: expected %v %q, got %v %q", i, expected.Type, expected.Literal, tok.Type, tok.Literal)
		}
	}
}

func TestLexerMaximalMunch(t *testing.T) {
	input := `: := = == ! != < <= > >=`
	expected := []token.Type{
		token.Colon, token.Define, token.Assign, token.Equal,
		token.Bang, token.NotEqual, token.Less, token.LessEqual,
		token.Greater, token.GreaterEqual, token.EOF,
	}

	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("token %d: expected %v, got %v (%q)", i, typ, tok.Type, tok.Literal)
		}
	}
}

func TestLexerKeywords(t *testing.T) {
	input := `and class else false for func if info nil or return super this true var while android`
	expected := []token.Type{
		token.And, token.Class, token.Else, token.False, token.For, token.Func,
		token.If, token.Info, token.Nil, token.Or, token.Return, token.Super,
		token.This, token.True, token.Var, token.While, token.Ident, token.EOF,
	}

	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("token %d: expected %v, got %v (%q)", i, typ, tok.Type, tok.Literal)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	input := `12 3.25 7. .5`
	expected := []token.Token{
		{Type: token.Number, Literal: "12"},
		{Type: token.Number, Literal: "3.25"},
		{Type: token.Number, Literal: "7"},
		{Type: token.Dot, Literal: "."},
		{Type: token.Dot, Literal: "."},
		{Type: token.Number, Literal: "5"},
		{Type: token.EOF, Literal: ""},
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.Type || tok.Literal != want.Literal {
			t.Fatalf("token %d: expected %v %q, got %v %q", i, want.Type, want.Literal, tok.Type, tok.Literal)
		}
	}
}

func TestLexerStringsKeepDelimiters(t *testing.T) {
	input := `"hello" 'it"s' "two
lines" x`

	l := New(input)
	tok := l.NextToken()
	if tok.Type != token.String || tok.Literal != `"hello"` {
		t.Fatalf("expected string \"hello\", got %v %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != token.String || tok.Literal != `'it"s'` {
		t.Fatalf("expected single-quoted string, got %v %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != token.String || tok.Pos.Line != 1 {
		t.Fatalf("expected multi-line string starting on line 1, got %v line %d", tok.Type, tok.Pos.Line)
	}
	tok = l.NextToken()
	if tok.Type != token.Ident || tok.Pos.Line != 2 {
		t.Fatalf("expected identifier on line 2, got %v line %d", tok.Type, tok.Pos.Line)
	}
}

func TestLexerErrors(t *testing.T) {
	l := New(`"abc`)
	tok := l.NextToken()
	if tok.Type != token.Error || tok.Literal != "Unterminated string." {
		t.Fatalf("expected unterminated string error, got %v %q", tok.Type, tok.Literal)
	}
	if tok := l.NextToken(); tok.Type != token.EOF {
		t.Fatalf("expected EOF after error, got %v", tok.Type)
	}

	l = New(`a @ b`)
	expected := []token.Type{token.Ident, token.Error, token.Ident, token.EOF}
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("token %d: expected %v, got %v (%q)", i, typ, tok.Type, tok.Literal)
		}
		if typ == token.Error && tok.Literal != "Unexpected character." {
			t.Fatalf("unexpected error message %q", tok.Literal)
		}
	}
}

func TestLexerComments(t *testing.T) {
	input := `// line comment
a := 1;
/* block
comment */
b := 2 / 4;`

	expected := []token.Type{
		token.Ident, token.Define, token.Number, token.Semicolon,
		token.Ident, token.Define, token.Number, token.Slash, token.Number, token.Semicolon,
		token.EOF,
	}

	l := New(input)
	for i, typ := range expected {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("token %d: expected %v, got %v (%q)", i, typ, tok.Type, tok.Literal)
		}
	}
}

func TestLexerPositions(t *testing.T) {
	input := "a\n  bc\n\n;"
	expected := []token.Position{
		{Offset: 0, Line: 1, Column: 1},
		{Offset: 4, Line: 2, Column: 3},
		{Offset: 8, Line: 4, Column: 1},
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Pos != want {
			t.Fatalf("token %d (%q): expected %+v, got %+v", i, tok.Literal, want, tok.Pos)
		}
	}
	if tok := l.NextToken(); tok.Type != token.EOF || tok.Pos.Line != 4 {
		t.Fatalf("expected EOF on line 4, got %v line %d", tok.Type, tok.Pos.Line)
	}
	if tok := l.NextToken(); tok.Type != token.EOF {
		t.Fatalf("expected EOF to repeat, got %v", tok.Type)
	}
}
