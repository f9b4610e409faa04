package parser

import (
	"reflect"
	"strings"
	"testing"

	"lingoscope/pkg/lexer"
	"lingoscope/pkg/token"
)

func TestScriptHeader(t *testing.T) {
	input := `
script 3 "Player"
method
property speed, target
`
	p := New(lexer.New(input))
	file := p.ParseFile()
	checkParserErrors(t, p)

	if len(file.Scripts) != 1 {
		t.Fatalf("file.Scripts does not contain 1 script. got=%d", len(file.Scripts))
	}
	s := file.Scripts[0]
	if s.ID != 3 || s.Name != "Player" {
		t.Errorf("wrong script header. got id=%d name=%q", s.ID, s.Name)
	}
	if !s.IsMethod {
		t.Errorf("script not marked as method script")
	}
	if !reflect.DeepEqual(s.Properties, []string{"speed", "target"}) {
		t.Errorf("wrong properties. got=%q", s.Properties)
	}
}

func TestHandler(t *testing.T) {
	input := `script 1
handler foo x, y
  global counter
  local tmp, i
  getparam x
  jmpifz @done
  pushcons "hi"
  pushfloat32 1.5
@done:
  ret
end
event mouseUp
  ret
end
`
	p := New(lexer.New(input))
	file := p.ParseFile()
	checkParserErrors(t, p)

	handlers := file.Scripts[0].Handlers
	if len(handlers) != 2 {
		t.Fatalf("script does not contain 2 handlers. got=%d", len(handlers))
	}

	h := handlers[0]
	if h.Name != "foo" || !reflect.DeepEqual(h.Args, []string{"x", "y"}) {
		t.Errorf("wrong handler signature. got name=%q args=%q", h.Name, h.Args)
	}
	if !reflect.DeepEqual(h.Globals, []string{"counter"}) {
		t.Errorf("wrong globals. got=%q", h.Globals)
	}
	if !reflect.DeepEqual(h.Locals, []string{"tmp", "i"}) {
		t.Errorf("wrong locals. got=%q", h.Locals)
	}
	if h.IsGenericEvent {
		t.Errorf("handler foo marked as generic event")
	}

	tests := []struct {
		expectedString string
		operandType    token.TokenType
	}{
		{"getparam x", token.IDENT},
		{"jmpifz @done", token.LABEL},
		{`pushcons "hi"`, token.STRING},
		{"pushfloat32 1.5", token.FLOAT},
		{"@done:", ""},
		{"ret", ""},
	}
	if len(h.Body) != len(tests) {
		t.Fatalf("handler body has wrong length. want=%d, got=%d", len(tests), len(h.Body))
	}
	for i, tt := range tests {
		stmt := h.Body[i]
		if stmt.String() != tt.expectedString {
			t.Errorf("tests[%d] - wrong statement. expected=%q, got=%q", i, tt.expectedString, stmt.String())
		}
		ins, ok := stmt.(*Instruction)
		if !ok || ins.Operand == nil {
			continue
		}
		if ins.Operand.Token.Type != tt.operandType {
			t.Errorf("tests[%d] - wrong operand type. expected=%q, got=%q", i, tt.operandType, ins.Operand.Token.Type)
		}
	}

	if f, ok := h.Body[3].(*Instruction); !ok || f.Operand.Float != 1.5 {
		t.Errorf("float operand not parsed")
	}
	if !handlers[1].IsGenericEvent {
		t.Errorf("event handler not marked as generic event")
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ret\n", "1:1: expected script, got IDENT"},
		{"script x\n", "1:8: expected next token to be INT, got IDENT instead"},
		{"script 1\nhandler foo\n  ret\n", "handler foo is missing end"},
		{"script 1\nhandler foo\n  pushint8 1 2\nend\n", "3:14: expected end of line, got INT"},
		{"script 1\nhandler foo\n  @x\nend\n", "expected next token to be :"},
	}

	for i, tt := range tests {
		p := New(lexer.New(tt.input))
		p.ParseFile()
		errors := p.Errors()
		if len(errors) == 0 {
			t.Fatalf("tests[%d] - expected an error for %q", i, tt.input)
		}
		if !strings.Contains(errors[0], tt.expected) {
			t.Errorf("tests[%d] - wrong error. expected=%q, got=%q", i, tt.expected, errors[0])
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	input := "script 1\nhandler foo x\n  getparam x\n@l:\n  jmp @l\nend\n"
	p := New(lexer.New(input))
	file := p.ParseFile()
	checkParserErrors(t, p)

	if got := file.String(); got != input {
		t.Fatalf("wrong String(). expected=%q, got=%q", input, got)
	}
}

func checkParserErrors(t *testing.T, p *Parser) {
	errors := p.Errors()
	if len(errors) == 0 {
		return
	}

	t.Errorf("parser has %d errors", len(errors))
	for _, msg := range errors {
		t.Errorf("parser error: %q", msg)
	}
	t.FailNow()
}
