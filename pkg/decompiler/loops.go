package decompiler

import (
	"lingoscope/pkg/bytecode"
	"lingoscope/pkg/opcode"
)

var setToGet = map[opcode.Opcode]opcode.Opcode{
	opcode.OpSetLocal:   opcode.OpGetLocal,
	opcode.OpSetParam:   opcode.OpGetParam,
	opcode.OpSetGlobal:  opcode.OpGetGlobal,
	opcode.OpSetGlobal2: opcode.OpGetGlobal2,
	opcode.OpSetProp:    opcode.OpGetProp,
}

func isSetVar(op opcode.Opcode) bool {
	_, ok := setToGet[op]
	return ok
}

func sameVar(set, get bytecode.Instruction) bool {
	return setToGet[set.Opcode] == get.Opcode && set.Operand == get.Operand
}

// tagLoops finds conditional jumps that guard a loop body: the instruction
// before their target is an endrepeat jumping back to or above them.
func (b *builder) tagLoops() {
	for i, ins := range b.code {
		if ins.Opcode != opcode.OpJmpIfZ {
			continue
		}

		target, _ := ins.Target()
		endIdx, ok := b.index(target)
		if !ok || endIdx-1 <= i {
			continue
		}
		end := b.code[endIdx-1]
		if end.Opcode != opcode.OpEndRepeat {
			continue
		}
		loopStart, _ := end.Target()
		if loopStart > ins.Pos {
			continue
		}
		startIdx, ok := b.index(loopStart)
		if !ok {
			continue
		}

		b.tags[endIdx-1] = tagLoopEnd
		if b.isRepeatWithTo(startIdx, i, endIdx-1) {
			b.tags[i] = tagRepeatWithTo
			b.tags[startIdx-1] = tagRepeatWithInit
			b.withInit[startIdx-1] = i
			for j := endIdx - 5; j < endIdx-1; j++ {
				b.tags[j] = tagSkip
			}
			continue
		}
		b.tags[i] = tagRepeatWhile
	}
}

// isRepeatWithTo matches
//
//	<from>; setvar v
//	start: getvar v; <to>; lteq|gteq; jmpifz end
//	...
//	<4 instructions ending in add|sub; setvar v>; endrepeat start
func (b *builder) isRepeatWithTo(start, jmp, endRepeat int) bool {
	if start < 1 || jmp-start < 3 || endRepeat-jmp < 5 {
		return false
	}

	init := b.code[start-1]
	if !isSetVar(init.Opcode) {
		return false
	}
	if !sameVar(init, b.code[start]) {
		return false
	}

	cmp := b.code[jmp-1].Opcode
	if cmp != opcode.OpLtEq && cmp != opcode.OpGtEq {
		return false
	}

	step := b.code[endRepeat-1]
	if !isSetVar(step.Opcode) || step.Operand != init.Operand || step.Opcode != init.Opcode {
		return false
	}
	op := b.code[endRepeat-2].Opcode
	return op == opcode.OpAdd || op == opcode.OpSub
}

// loopBounds returns the position of the next-iteration code and the
// position just after the loop.
func (b *builder) loopBounds(jmp int) (nextPos, endPos uint32) {
	endPos, _ = b.code[jmp].Target()
	endIdx, _ := b.index(endPos)
	nextIdx := endIdx - 1
	if b.tags[jmp] == tagRepeatWithTo {
		nextIdx = endIdx - 5
	}
	return b.code[nextIdx].Pos, endPos
}
