package lexer

import (
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `(-> (-> α β γ) α β γ)`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{LPAREN, "("},
		{ARROW, "->"},
		{LPAREN, "("},
		{ARROW, "->"},
		{IDENT, "α"},
		{IDENT, "β"},
		{IDENT, "γ"},
		{RPAREN, ")"},
		{IDENT, "α"},
		{IDENT, "β"},
		{IDENT, "γ"},
		{RPAREN, ")"},
		{EOF, ""},
	}

	l := New(input, "test.type")

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestRecordAndEffectForms(t *testing.T) {
	input := `{:x number :y string | ρ} (effect console | r)`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{LBRACE, "{"},
		{COLON, ":"},
		{IDENT, "x"},
		{IDENT, "number"},
		{COLON, ":"},
		{IDENT, "y"},
		{IDENT, "string"},
		{PIPE, "|"},
		{IDENT, "ρ"},
		{RBRACE, "}"},
		{LPAREN, "("},
		{IDENT, "effect"},
		{IDENT, "console"},
		{PIPE, "|"},
		{IDENT, "r"},
		{RPAREN, ")"},
		{EOF, ""},
	}

	l := New(input, "test.type")

	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestVectorForm(t *testing.T) {
	input := `[number]`

	l := New(input, "test.type")

	expected := []TokenType{LBRACKET, IDENT, RBRACKET, EOF}
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("tests[%d] - expected %v, got %v", i, exp, tok.Type)
		}
	}
}

func TestWildcardIdentifiers(t *testing.T) {
	input := `_a _ number'`

	l := New(input, "test.type")

	tests := []string{"_a", "_", "number'"}
	for i, want := range tests {
		tok := l.NextToken()
		if tok.Type != IDENT {
			t.Fatalf("tests[%d] - expected IDENT, got %v", i, tok.Type)
		}
		if tok.Literal != want {
			t.Fatalf("tests[%d] - expected %q, got %q", i, want, tok.Literal)
		}
	}
}

func TestIllegalCharacter(t *testing.T) {
	input := `+`

	l := New(input, "test.type")
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %v", tok.Type)
	}
	if tok.Literal != "+" {
		t.Fatalf("expected literal %q, got %q", "+", tok.Literal)
	}
}

func TestLineAndColumn(t *testing.T) {
	input := "(->\n  number\n  void\n  number)"

	l := New(input, "test.type")

	tok := l.NextToken() // (
	if tok.Line != 1 || tok.Column != 1 {
		t.Errorf("(: expected 1:1, got %d:%d", tok.Line, tok.Column)
	}

	tok = l.NextToken() // ->
	if tok.Line != 1 || tok.Column != 2 {
		t.Errorf("->: expected 1:2, got %d:%d", tok.Line, tok.Column)
	}

	tok = l.NextToken() // number
	if tok.Line != 2 {
		t.Errorf("number: expected line 2, got %d", tok.Line)
	}
}

func TestWhitespaceIsInsignificant(t *testing.T) {
	input := "(->\tnumber\n  void  number\r\n)"

	l := New(input, "test.type")

	expected := []TokenType{LPAREN, ARROW, IDENT, IDENT, IDENT, RPAREN, EOF}
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("tests[%d] - expected %v, got %v", i, exp, tok.Type)
		}
	}
}
