package bytecode

import (
	"errors"
	"fmt"
	"strings"

	"lingoscope/pkg/ast"
	"lingoscope/pkg/opcode"
)

var ErrTruncated = errors.New("truncated instruction")

// Instruction is one decoded bytecode instruction.
type Instruction struct {
	ID      byte
	Opcode  opcode.Opcode
	Operand int32
	Pos     uint32

	// Translation is the decompiled node this instruction completes, if any.
	Translation ast.Node
}

// Target returns the absolute jump target of a jump instruction.
func (ins Instruction) Target() (uint32, bool) {
	switch ins.Opcode {
	case opcode.OpJmp, opcode.OpJmpIfZ:
		return uint32(int64(ins.Pos) + int64(ins.Operand)), true
	case opcode.OpEndRepeat:
		return uint32(int64(ins.Pos) - int64(ins.Operand)), true
	}
	return 0, false
}

// Size returns the encoded size in bytes.
func (ins Instruction) Size() int {
	return 1 + opcode.OperandWidth(ins.ID)
}

// Disassemble decodes a raw bytecode stream.
func Disassemble(code []byte) ([]Instruction, error) {
	var out []Instruction

	for ip := 0; ip < len(code); {
		id := code[ip]
		width := opcode.OperandWidth(id)
		if ip+1+width > len(code) {
			return out, fmt.Errorf("%w: %s at %d", ErrTruncated, opcode.Normalize(id), ip)
		}

		operand, _ := opcode.ReadOperand(id, code[ip+1:])
		out = append(out, Instruction{
			ID:      id,
			Opcode:  opcode.Normalize(id),
			Operand: operand,
			Pos:     uint32(ip),
		})

		ip += 1 + width
	}

	return out, nil
}

// String renders a plain disassembly listing, one instruction per line.
func String(instructions []Instruction) string {
	var out strings.Builder

	for _, ins := range instructions {
		fmt.Fprintf(&out, "%04d %s", ins.Pos, ins.Opcode)
		if ins.ID > 0x40 {
			if target, ok := ins.Target(); ok {
				fmt.Fprintf(&out, " [%3d]", target)
			} else if ins.Opcode == opcode.OpPushFloat32 {
				fmt.Fprintf(&out, " %g", opcode.Float32(ins.Operand))
			} else {
				fmt.Fprintf(&out, " %d", ins.Operand)
			}
		}
		out.WriteString("\n")
	}

	return out.String()
}
