package ast

import (
	"testing"

	"lingoscope/pkg/opcode"
)

func v(name string) *VarNode { return &VarNode{Name: name} }

func bin(op opcode.Opcode, left, right Node) *BinaryOpNode {
	return &BinaryOpNode{Opcode: op, Left: left, Right: right}
}

func args(t DatumType, nodes ...Node) *LiteralNode {
	return Lit(0, List(t, nodes))
}

func TestBinaryOpParentheses(t *testing.T) {
	tests := []struct {
		input    Node
		expected string
	}{
		// equal precedence: left bare, right wrapped
		{bin(opcode.OpAdd, bin(opcode.OpSub, v("a"), v("b")), v("c")), "a - b + c"},
		{bin(opcode.OpAdd, v("a"), bin(opcode.OpSub, v("b"), v("c"))), "a + (b - c)"},
		// different precedence
		{bin(opcode.OpMul, bin(opcode.OpAdd, v("a"), v("b")), v("c")), "(a + b) * c"},
		{bin(opcode.OpAdd, v("a"), bin(opcode.OpMul, v("b"), v("c"))), "a + (b * c)"},
		{bin(opcode.OpAdd, bin(opcode.OpMul, v("a"), v("b")), v("c")), "(a * b) + c"},
		{bin(opcode.OpGt, v("x"), Lit(0, Int(0))), "x > 0"},
		// operators without precedence never wrap
		{bin(opcode.OpJoinStr, v("a"), bin(opcode.OpJoinPadStr, v("b"), v("c"))), "a & b && c"},
	}

	for i, tt := range tests {
		got := Write(tt.input, false)
		if got != tt.expected {
			t.Errorf("tests[%d] - wrong rendering. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestUnaryOperandSpacing(t *testing.T) {
	tests := []struct {
		input    Node
		dot      bool
		expected string
	}{
		{&InverseOpNode{Operand: v("x")}, false, "-x"},
		{&InverseOpNode{Operand: bin(opcode.OpAdd, v("x"), v("y"))}, false, "-(x + y)"},
		{&NotOpNode{Operand: v("done")}, false, "not done"},
		{&NotOpNode{Operand: &TheExprNode{Prop: "mouseDown"}}, false, "not (the mouseDown)"},
		{&NotOpNode{Operand: &ObjPropExprNode{Obj: v("obj"), Prop: "visible"}}, false, "not (the visible of obj)"},
		{&NotOpNode{Operand: &ObjPropExprNode{Obj: v("obj"), Prop: "visible"}}, true, "not obj.visible"},
	}

	for i, tt := range tests {
		got := Write(tt.input, tt.dot)
		if got != tt.expected {
			t.Errorf("tests[%d] - wrong rendering. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestSyntaxModes(t *testing.T) {
	member := &MemberExprNode{Type: "member", MemberID: Lit(0, Int(3)), CastID: Lit(0, Int(2))}
	assign := &AssignmentStmtNode{Base: Stmt(0), Variable: &ObjPropExprNode{Obj: v("obj"), Prop: "loc"}, Value: Lit(0, Int(1))}
	chunk := &ChunkExprNode{Type: ChunkChar, First: Lit(0, Int(1)), Last: Lit(0, Int(0)), String: v("s")}
	chunkRange := &ChunkExprNode{Type: ChunkWord, First: Lit(0, Int(1)), Last: Lit(0, Int(3)), String: v("s")}

	tests := []struct {
		input    Node
		keyword  string
		dotted   string
	}{
		{member, "member 3 of castLib 2", "member(3, 2)"},
		{assign, "set the loc of obj to 1", "obj.loc = 1"},
		{chunk, "char 1 of s", "char 1 of s"},
		{chunkRange, "word 1 to 3 of s", "word 1 to 3 of s"},
	}

	for i, tt := range tests {
		if got := Write(tt.input, false); got != tt.keyword {
			t.Errorf("tests[%d] - keyword rendering wrong. expected=%q, got=%q", i, tt.keyword, got)
		}
		if got := Write(tt.input, true); got != tt.dotted {
			t.Errorf("tests[%d] - dot rendering wrong. expected=%q, got=%q", i, tt.dotted, got)
		}
	}
}

func TestDatumRendering(t *testing.T) {
	tests := []struct {
		input    Datum
		expected string
	}{
		{Void(), "VOID"},
		{Symbol("done"), "#done"},
		{String(""), "EMPTY"},
		{String("\r"), "RETURN"},
		{String("\""), "QUOTE"},
		{String("hi there"), `"hi there"`},
		{Int(-4), "-4"},
		{Float(1.5), "1.5"},
		{List(DatumList, []Node{Lit(0, Int(1)), Lit(0, Symbol("a"))}), "[1, #a]"},
		{List(DatumPropList, nil), "[:]"},
		{List(DatumPropList, []Node{Lit(0, Symbol("a")), Lit(0, Int(1))}), "[#a: 1]"},
	}

	for i, tt := range tests {
		got := Write(Lit(0, tt.input), false)
		if got != tt.expected {
			t.Errorf("tests[%d] - wrong datum. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestBlockStatements(t *testing.T) {
	ifStmt := &IfStmtNode{
		Base:      Stmt(3),
		Condition: bin(opcode.OpGt, v("x"), Lit(0, Int(0))),
		Block1: &BlockNode{Children: []Node{
			&CallNode{Base: Stmt(6), Name: "return", Args: args(DatumArgListNoRet, v("x"))},
		}},
		Block2: &BlockNode{Children: []Node{&ExitStmtNode{Base: Stmt(8)}}},
		HasElse: true,
	}

	expected := "if x > 0 then\n  return x\nelse\n  exit\nend if"
	if got := Write(ifStmt, false); got != expected {
		t.Fatalf("wrong if rendering. expected=%q, got=%q", expected, got)
	}

	if got := Summary(ifStmt, false); got != "if x > 0 then / else" {
		t.Fatalf("wrong if summary. got=%q", got)
	}

	loop := &RepeatWithToStmtNode{
		VarName: "i",
		From:    Lit(0, Int(10)),
		To:      Lit(0, Int(1)),
		Block:   &BlockNode{Children: []Node{&NextRepeatStmtNode{}}},
	}
	expected = "repeat with i = 10 down to 1\n  next repeat\nend repeat"
	if got := Write(loop, false); got != expected {
		t.Fatalf("wrong loop rendering. expected=%q, got=%q", expected, got)
	}
}

func TestCaseStatement(t *testing.T) {
	second := &CaseLabelNode{Value: Lit(0, Int(2)), Block: &BlockNode{Children: []Node{&ExitStmtNode{}}}}
	first := &CaseLabelNode{Value: Lit(0, Int(1)), NextOr: second}
	caseStmt := &CaseStmtNode{
		Value:      v("n"),
		FirstLabel: first,
		Otherwise:  &OtherwiseNode{Block: &BlockNode{Children: []Node{&CallNode{Base: Stmt(0), Name: "beep", Args: args(DatumArgListNoRet)}}}},
	}

	expected := "case n of\n  1, 2:\n    exit\n  otherwise:\n    beep\nend case"
	if got := Write(caseStmt, false); got != expected {
		t.Fatalf("wrong case rendering. expected=%q, got=%q", expected, got)
	}
}

func TestCallRendering(t *testing.T) {
	tests := []struct {
		input    Node
		dot      bool
		expected string
	}{
		{&CallNode{Name: "foo", Args: args(DatumArgList, v("a"), Lit(0, Int(2)))}, false, "foo(a, 2)"},
		{&CallNode{Base: Stmt(0), Name: "put", Args: args(DatumArgListNoRet, v("a"))}, false, "put a"},
		{&CallNode{Name: "cast", Args: args(DatumArgList, Lit(0, Int(5)))}, false, "cast 5"},
		{&CallNode{Name: "cast", Args: args(DatumArgList, Lit(0, Int(5)))}, true, "cast(5)"},
		{&CallNode{Name: "pi", Args: args(DatumArgList)}, false, "PI"},
		{&ObjCallNode{Name: "add", Args: args(DatumArgListNoRet, v("list"), Lit(0, Int(4)))}, false, "list.add(4)"},
		{&ObjPropIndexExprNode{Obj: v("s"), Prop: "char", Index: Lit(0, Int(1)), Index2: Lit(0, Int(3))}, true, "s.char[1..3]"},
		{&NewObjNode{ObjType: "script", Args: args(DatumArgList, Lit(0, String("Walker")))}, false, `new script("Walker")`},
		{&PutStmtNode{Type: PutAfter, Variable: v("s"), Value: Lit(0, String("!"))}, true, `put "!" after s`},
	}

	for i, tt := range tests {
		got := Write(tt.input, tt.dot)
		if got != tt.expected {
			t.Errorf("tests[%d] - wrong rendering. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}
