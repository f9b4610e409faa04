package opcode

import (
	"testing"
)

func TestMake(t *testing.T) {
	tests := []struct {
		op       Opcode
		operands []int
		expected []byte
	}{
		{OpRet, []int{}, []byte{0x01}},
		{OpAdd, []int{7}, []byte{0x05}},
		{OpPushInt8, []int{-1}, []byte{0x41, 0xff}},
		{OpPushInt8, []int{300}, []byte{0x81, 0x01, 0x2c}},
		{OpGetParam, []int{200}, []byte{0x4b, 200}},
		{OpJmp, []int{65534}, []byte{0x93, 0xff, 0xfe}},
		{OpPushInt32, []int{1}, []byte{0xef, 0x00, 0x00, 0x00, 0x01}},
	}

	for i, tt := range tests {
		instruction := Make(tt.op, tt.operands...)

		if len(instruction) != len(tt.expected) {
			t.Fatalf("tests[%d] - instruction has wrong length. want=%d, got=%d",
				i, len(tt.expected), len(instruction))
		}

		for j, b := range tt.expected {
			if instruction[j] != tt.expected[j] {
				t.Errorf("tests[%d] - wrong byte at pos %d. want=%d, got=%d",
					i, j, b, instruction[j])
			}
		}
	}
}

func TestReadOperand(t *testing.T) {
	tests := []struct {
		op        Opcode
		operand   int
		bytesRead int
	}{
		{OpPushInt8, -5, 1},
		{OpPushInt8, -3000, 2},
		{OpGetLocal, 255, 1},
		{OpJmpIfZ, 4000, 2},
		{OpPushCons, 70000, 4},
	}

	for i, tt := range tests {
		instruction := Make(tt.op, tt.operand)

		if Normalize(instruction[0]) != tt.op {
			t.Fatalf("tests[%d] - normalized opcode wrong. want=%s, got=%s",
				i, tt.op, Normalize(instruction[0]))
		}

		operand, n := ReadOperand(instruction[0], instruction[1:])
		if n != tt.bytesRead {
			t.Fatalf("tests[%d] - n wrong. want=%d, got=%d", i, tt.bytesRead, n)
		}

		if int(operand) != tt.operand {
			t.Errorf("tests[%d] - operand wrong. want=%d, got=%d", i, tt.operand, operand)
		}
	}
}

func TestFloatOperandIsBitPattern(t *testing.T) {
	instruction := MakeFloat(1.5)
	if instruction[0] != 0xf1 {
		t.Fatalf("pushfloat32 id wrong. want=0xf1, got=0x%02x", instruction[0])
	}

	operand, _ := ReadOperand(instruction[0], instruction[1:])
	if operand != 0x3fc00000 {
		t.Fatalf("operand wrong. want=0x3fc00000, got=0x%x", operand)
	}
	if got := Float32(operand); got != 1.5 {
		t.Fatalf("Float32 wrong. want=1.5, got=%g", got)
	}
}

func TestLookupAndNames(t *testing.T) {
	def, err := Lookup(0x93)
	if err != nil {
		t.Fatalf("Lookup failed: %s", err)
	}
	if def.Name != "jmp" {
		t.Fatalf("wrong name. want=jmp, got=%s", def.Name)
	}

	if _, err := Lookup(0x30); err == nil {
		t.Fatalf("expected error for unknown opcode")
	}

	op, ok := ByName("endrepeat")
	if !ok || op != OpEndRepeat {
		t.Fatalf("ByName(endrepeat) wrong. got=%s, ok=%t", op, ok)
	}
}
