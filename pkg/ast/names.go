package ast

import (
	"fmt"

	"lingoscope/pkg/opcode"
)

type ChunkType int

const (
	ChunkChar ChunkType = 1
	ChunkWord ChunkType = 2
	ChunkItem ChunkType = 3
	ChunkLine ChunkType = 4
)

type PutType int

const (
	PutInto   PutType = 1
	PutAfter  PutType = 2
	PutBefore PutType = 3
)

var binaryOpNames = map[opcode.Opcode]string{
	opcode.OpMul:          "*",
	opcode.OpAdd:          "+",
	opcode.OpSub:          "-",
	opcode.OpDiv:          "/",
	opcode.OpMod:          "mod",
	opcode.OpJoinStr:      "&",
	opcode.OpJoinPadStr:   "&&",
	opcode.OpLt:           "<",
	opcode.OpLtEq:         "<=",
	opcode.OpNtEq:         "<>",
	opcode.OpEq:           "=",
	opcode.OpGt:           ">",
	opcode.OpGtEq:         ">=",
	opcode.OpAnd:          "and",
	opcode.OpOr:           "or",
	opcode.OpContainsStr:  "contains",
	opcode.OpContains0Str: "starts",
}

var chunkTypeNames = map[ChunkType]string{
	ChunkChar: "char",
	ChunkWord: "word",
	ChunkItem: "item",
	ChunkLine: "line",
}

var putTypeNames = map[PutType]string{
	PutInto:   "into",
	PutAfter:  "after",
	PutBefore: "before",
}

var whenEventNames = map[int]string{
	1: "mouseDown",
	2: "mouseUp",
	3: "keyDown",
	4: "keyUp",
	5: "timeOut",
}

var moviePropertyNames = map[int]string{
	0x00: "floatPrecision",
	0x01: "mouseDownScript",
	0x02: "mouseUpScript",
	0x03: "keyDownScript",
	0x04: "keyUpScript",
	0x05: "timeoutScript",
	0x06: "short time",
	0x07: "abbr time",
	0x08: "long time",
	0x09: "short date",
	0x0a: "abbr date",
	0x0b: "long date",
}

var menuPropertyNames = map[int]string{
	0x01: "name",
	0x02: "number of menuItems",
}

var menuItemPropertyNames = map[int]string{
	0x01: "name",
	0x02: "checkMark",
	0x03: "enabled",
	0x04: "script",
}

var soundPropertyNames = map[int]string{
	0x01: "volume",
}

var spritePropertyNames = map[int]string{
	0x01: "type",
	0x02: "backColor",
	0x03: "bottom",
	0x04: "castNum",
	0x05: "constraint",
	0x06: "cursor",
	0x07: "foreColor",
	0x08: "height",
	0x09: "immediate",
	0x0a: "ink",
	0x0b: "left",
	0x0c: "lineSize",
	0x0d: "locH",
	0x0e: "locV",
	0x0f: "movieRate",
	0x10: "movieTime",
	0x11: "pattern",
	0x12: "puppet",
	0x13: "right",
	0x14: "startTime",
	0x15: "stopTime",
	0x16: "stretch",
	0x17: "top",
	0x18: "trails",
	0x19: "visible",
	0x1a: "volume",
	0x1b: "width",
	0x1c: "blend",
	0x1d: "scriptNum",
	0x1e: "moveableSprite",
	0x1f: "editableText",
	0x20: "scoreColor",
	0x21: "loc",
	0x22: "rect",
	0x23: "memberNum",
	0x24: "castLibNum",
	0x25: "member",
	0x26: "scriptInstanceList",
	0x27: "currentTime",
	0x28: "mostRecentCuePoint",
	0x29: "tweened",
	0x2a: "name",
}

var animationPropertyNames = map[int]string{
	0x01: "beepOn",
	0x02: "buttonStyle",
	0x03: "centerStage",
	0x04: "checkBoxAccess",
	0x05: "checkboxType",
	0x06: "colorDepth",
	0x07: "colorQD",
	0x08: "exitLock",
	0x09: "fixStageSize",
	0x0a: "fullColorPermit",
	0x0b: "imageDirect",
	0x0c: "doubleClick",
	0x0d: "key",
	0x0e: "lastClick",
	0x0f: "lastEvent",
	0x10: "keyCode",
	0x11: "lastKey",
	0x12: "lastRoll",
	0x13: "timeoutLapsed",
	0x14: "multiSound",
	0x15: "pauseState",
	0x16: "quickTimePresent",
	0x17: "selEnd",
	0x18: "selStart",
	0x19: "soundEnabled",
	0x1a: "soundLevel",
	0x1b: "stageColor",
	0x1d: "switchColorDepth",
	0x1e: "timeoutKeyDown",
	0x1f: "timeoutLength",
	0x20: "timeoutMouse",
	0x21: "timeoutPlay",
	0x22: "timer",
}

func lookupName(names map[int]string, id int) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("ERROR(%d)", id)
}

func BinaryOpName(op opcode.Opcode) string {
	if name, ok := binaryOpNames[op]; ok {
		return name
	}
	return op.String()
}

// IsBinaryOp reports whether op pops two operands and pushes one result.
func IsBinaryOp(op opcode.Opcode) bool {
	_, ok := binaryOpNames[op]
	return ok
}

func (t ChunkType) String() string {
	if name, ok := chunkTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ERROR(%d)", int(t))
}

func (t PutType) String() string {
	if name, ok := putTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ERROR(%d)", int(t))
}

func WhenEventName(id int) string         { return lookupName(whenEventNames, id) }
func MoviePropertyName(id int) string     { return lookupName(moviePropertyNames, id) }
func MenuPropertyName(id int) string      { return lookupName(menuPropertyNames, id) }
func MenuItemPropertyName(id int) string  { return lookupName(menuItemPropertyNames, id) }
func SoundPropertyName(id int) string     { return lookupName(soundPropertyNames, id) }
func SpritePropertyName(id int) string    { return lookupName(spritePropertyNames, id) }
func AnimationPropertyName(id int) string { return lookupName(animationPropertyNames, id) }

// Precedence returns the binding strength of a binary operator. Lower binds
// tighter; zero means the operator never forces parentheses.
func Precedence(op opcode.Opcode) int {
	switch op {
	case opcode.OpMul, opcode.OpDiv, opcode.OpMod:
		return 1
	case opcode.OpAdd, opcode.OpSub:
		return 2
	case opcode.OpLt, opcode.OpLtEq, opcode.OpNtEq, opcode.OpEq, opcode.OpGt, opcode.OpGtEq:
		return 3
	case opcode.OpAnd:
		return 4
	case opcode.OpOr:
		return 5
	}
	return 0
}

// ParenOperands applies the operand rule for binary operators: the left
// operand is wrapped when it is a binary operator of different precedence,
// the right operand whenever it is a binary operator at all.
func ParenOperands(n *BinaryOpNode) (left, right bool) {
	precedence := n.Precedence()
	if precedence == 0 {
		return false, false
	}
	if l, ok := n.Left.(*BinaryOpNode); ok {
		left = l.Precedence() != precedence
	}
	_, right = n.Right.(*BinaryOpNode)
	return left, right
}
