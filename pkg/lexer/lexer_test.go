package lexer

import (
	"testing"

	"lingoscope/pkg/token"
)

func TestNextToken(t *testing.T) {
	input := `script 1 "Behaviour" ; comment
handler foo x, y
  pushfloat32 -1.5
  jmpifz @done
@done:
  ret
end
`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.SCRIPT, "script"},
		{token.INT, "1"},
		{token.STRING, "Behaviour"},
		{token.NEWLINE, "\n"},
		{token.HANDLER, "handler"},
		{token.IDENT, "foo"},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "pushfloat32"},
		{token.FLOAT, "-1.5"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "jmpifz"},
		{token.LABEL, "done"},
		{token.NEWLINE, "\n"},
		{token.LABEL, "done"},
		{token.COLON, ":"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "ret"},
		{token.NEWLINE, "\n"},
		{token.END, "end"},
		{token.NEWLINE, "\n"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q, literal=%q",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestPositions(t *testing.T) {
	l := New("handler foo\n  ret\n")

	tests := []struct {
		expectedLiteral string
		line, column    int
	}{
		{"handler", 1, 1},
		{"foo", 1, 9},
		{"\n", 1, 12},
		{"ret", 2, 3},
	}
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Literal != tt.expectedLiteral || tok.Line != tt.line || tok.Column != tt.column {
			t.Fatalf("tests[%d] - wrong token. expected=%q at %d:%d, got=%s",
				i, tt.expectedLiteral, tt.line, tt.column, tok)
		}
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input           string
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{`"a\tb"`, token.STRING, "a\tb"},
		{`"say \"hi\""`, token.STRING, `say "hi"`},
		{`"\x03"`, token.STRING, "\x03"},
		{`""`, token.STRING, ""},
		{"\"open\n", token.ILLEGAL, "open"},
	}

	for i, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - wrong token. expected=(%q, %q), got=(%q, %q)",
				i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input           string
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{"42", token.INT, "42"},
		{"-7", token.INT, "-7"},
		{"3.25", token.FLOAT, "3.25"},
		{"1e3", token.FLOAT, "1e3"},
		{"-", token.ILLEGAL, "-"},
	}

	for i, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - wrong token. expected=(%q, %q), got=(%q, %q)",
				i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}
	}
}
