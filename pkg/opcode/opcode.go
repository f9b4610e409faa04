package opcode

import (
	"errors"
	"fmt"
	"math"
)

// Opcode is a normalized Lingo opcode. Operand-carrying opcodes are stored in
// their 0x40..0x7f form regardless of the operand width they were encoded with.
type Opcode byte

type Instructions []byte

var ErrUnknownOpcode = errors.New("unknown opcode")

const (
	// OpRet returns from the current handler
	OpRet Opcode = 0x01
	// OpRetFactory returns from a factory handler
	OpRetFactory Opcode = 0x02
	// OpPushZero pushes integer 0
	OpPushZero Opcode = 0x03
	OpMul      Opcode = 0x04
	OpAdd      Opcode = 0x05
	OpSub      Opcode = 0x06
	OpDiv      Opcode = 0x07
	OpMod      Opcode = 0x08
	// OpInv negates the top of the stack
	OpInv Opcode = 0x09
	// OpJoinStr concatenates two strings (&)
	OpJoinStr Opcode = 0x0a
	// OpJoinPadStr concatenates with a space (&&)
	OpJoinPadStr Opcode = 0x0b
	OpLt         Opcode = 0x0c
	OpLtEq       Opcode = 0x0d
	OpNtEq       Opcode = 0x0e
	OpEq         Opcode = 0x0f
	OpGt         Opcode = 0x10
	OpGtEq       Opcode = 0x11
	OpAnd        Opcode = 0x12
	OpOr         Opcode = 0x13
	OpNot        Opcode = 0x14
	// OpContainsStr is the "contains" operator
	OpContainsStr Opcode = 0x15
	// OpContains0Str is the "starts" operator
	OpContains0Str Opcode = 0x16
	OpGetChunk     Opcode = 0x17
	OpHiliteChunk  Opcode = 0x18
	// OpOntoSpr tests whether two sprites intersect
	OpOntoSpr Opcode = 0x19
	// OpIntoSpr tests whether a sprite is within another
	OpIntoSpr        Opcode = 0x1a
	OpGetField       Opcode = 0x1b
	OpStartTell      Opcode = 0x1c
	OpEndTell        Opcode = 0x1d
	OpPushList       Opcode = 0x1e
	OpPushPropList   Opcode = 0x1f
	OpSwap           Opcode = 0x21
	OpCallJavaScript Opcode = 0x26

	OpPushInt8         Opcode = 0x41
	OpPushArgListNoRet Opcode = 0x42
	OpPushArgList      Opcode = 0x43
	OpPushCons         Opcode = 0x44
	OpPushSymb         Opcode = 0x45
	OpPushVarRef       Opcode = 0x46
	OpGetGlobal2       Opcode = 0x48
	OpGetGlobal        Opcode = 0x49
	OpGetProp          Opcode = 0x4a
	OpGetParam         Opcode = 0x4b
	OpGetLocal         Opcode = 0x4c
	OpSetGlobal2       Opcode = 0x4e
	OpSetGlobal        Opcode = 0x4f
	OpSetProp          Opcode = 0x50
	OpSetParam         Opcode = 0x51
	OpSetLocal         Opcode = 0x52
	// OpJmp jumps forward by its operand
	OpJmp Opcode = 0x53
	// OpEndRepeat jumps backward by its operand to the loop head
	OpEndRepeat Opcode = 0x54
	// OpJmpIfZ jumps forward by its operand when the popped value is false
	OpJmpIfZ          Opcode = 0x55
	OpLocalCall       Opcode = 0x56
	OpExtCall         Opcode = 0x57
	OpObjCallV4       Opcode = 0x58
	OpPut             Opcode = 0x59
	OpPutChunk        Opcode = 0x5a
	OpDeleteChunk     Opcode = 0x5b
	OpGet             Opcode = 0x5c
	OpSet             Opcode = 0x5d
	OpGetMovieProp    Opcode = 0x5f
	OpSetMovieProp    Opcode = 0x60
	OpGetObjProp      Opcode = 0x61
	OpSetObjProp      Opcode = 0x62
	OpTellCall        Opcode = 0x63
	OpPeek            Opcode = 0x64
	OpPop             Opcode = 0x65
	OpTheBuiltin      Opcode = 0x66
	OpObjCall         Opcode = 0x67
	OpPushChunkVarRef Opcode = 0x6d
	OpPushInt16       Opcode = 0x6e
	OpPushInt32       Opcode = 0x6f
	OpGetChainedProp  Opcode = 0x70
	// OpPushFloat32 carries the IEEE-754 bits of a float32
	OpPushFloat32     Opcode = 0x71
	OpGetTopLevelProp Opcode = 0x72
	OpNewObj          Opcode = 0x73
)

type Definition struct {
	Name string
	// Signed reports whether 1 and 2 byte operands are sign extended
	Signed bool
}

var definitions = map[Opcode]*Definition{
	OpRet:            {Name: "ret"},
	OpRetFactory:     {Name: "retfactory"},
	OpPushZero:       {Name: "pushzero"},
	OpMul:            {Name: "mul"},
	OpAdd:            {Name: "add"},
	OpSub:            {Name: "sub"},
	OpDiv:            {Name: "div"},
	OpMod:            {Name: "mod"},
	OpInv:            {Name: "inv"},
	OpJoinStr:        {Name: "joinstr"},
	OpJoinPadStr:     {Name: "joinpadstr"},
	OpLt:             {Name: "lt"},
	OpLtEq:           {Name: "lteq"},
	OpNtEq:           {Name: "nteq"},
	OpEq:             {Name: "eq"},
	OpGt:             {Name: "gt"},
	OpGtEq:           {Name: "gteq"},
	OpAnd:            {Name: "and"},
	OpOr:             {Name: "or"},
	OpNot:            {Name: "not"},
	OpContainsStr:    {Name: "containsstr"},
	OpContains0Str:   {Name: "contains0str"},
	OpGetChunk:       {Name: "getchunk"},
	OpHiliteChunk:    {Name: "hilitechunk"},
	OpOntoSpr:        {Name: "ontospr"},
	OpIntoSpr:        {Name: "intospr"},
	OpGetField:       {Name: "getfield"},
	OpStartTell:      {Name: "starttell"},
	OpEndTell:        {Name: "endtell"},
	OpPushList:       {Name: "pushlist"},
	OpPushPropList:   {Name: "pushproplist"},
	OpSwap:           {Name: "swap"},
	OpCallJavaScript: {Name: "calljavascript"},

	OpPushInt8:         {Name: "pushint8", Signed: true},
	OpPushArgListNoRet: {Name: "pusharglistnoret"},
	OpPushArgList:      {Name: "pusharglist"},
	OpPushCons:         {Name: "pushcons"},
	OpPushSymb:         {Name: "pushsymb"},
	OpPushVarRef:       {Name: "pushvarref"},
	OpGetGlobal2:       {Name: "getglobal2"},
	OpGetGlobal:        {Name: "getglobal"},
	OpGetProp:          {Name: "getprop"},
	OpGetParam:         {Name: "getparam"},
	OpGetLocal:         {Name: "getlocal"},
	OpSetGlobal2:       {Name: "setglobal2"},
	OpSetGlobal:        {Name: "setglobal"},
	OpSetProp:          {Name: "setprop"},
	OpSetParam:         {Name: "setparam"},
	OpSetLocal:         {Name: "setlocal"},
	OpJmp:              {Name: "jmp"},
	OpEndRepeat:        {Name: "endrepeat"},
	OpJmpIfZ:           {Name: "jmpifz"},
	OpLocalCall:        {Name: "localcall"},
	OpExtCall:          {Name: "extcall"},
	OpObjCallV4:        {Name: "objcallv4"},
	OpPut:              {Name: "put"},
	OpPutChunk:         {Name: "putchunk"},
	OpDeleteChunk:      {Name: "deletechunk"},
	OpGet:              {Name: "get"},
	OpSet:              {Name: "set"},
	OpGetMovieProp:     {Name: "getmovieprop"},
	OpSetMovieProp:     {Name: "setmovieprop"},
	OpGetObjProp:       {Name: "getobjprop"},
	OpSetObjProp:       {Name: "setobjprop"},
	OpTellCall:         {Name: "tellcall"},
	OpPeek:             {Name: "peek"},
	OpPop:              {Name: "pop"},
	OpTheBuiltin:       {Name: "thebuiltin"},
	OpObjCall:          {Name: "objcall"},
	OpPushChunkVarRef:  {Name: "pushchunkvarref"},
	OpPushInt16:        {Name: "pushint16", Signed: true},
	OpPushInt32:        {Name: "pushint32"},
	OpGetChainedProp:   {Name: "getchainedprop"},
	OpPushFloat32:      {Name: "pushfloat32"},
	OpGetTopLevelProp:  {Name: "gettoplevelprop"},
	OpNewObj:           {Name: "newobj"},
}

var byName map[string]Opcode

func init() {
	byName = make(map[string]Opcode, len(definitions))
	for op, def := range definitions {
		byName[def.Name] = op
	}
}

// Normalize maps an encoded opcode id to its base opcode.
func Normalize(id byte) Opcode {
	if id >= 0x40 {
		return Opcode(0x40 + id%0x40)
	}
	return Opcode(id)
}

// OperandWidth returns the number of operand bytes that follow an encoded id.
func OperandWidth(id byte) int {
	switch {
	case id >= 0xc0:
		return 4
	case id >= 0x80:
		return 2
	case id >= 0x40:
		return 1
	}
	return 0
}

func Lookup(id byte) (*Definition, error) {
	def, ok := definitions[Normalize(id)]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, id)
	}

	return def, nil
}

// ByName finds an opcode by its mnemonic.
func ByName(name string) (Opcode, bool) {
	op, ok := byName[name]
	return op, ok
}

// HasOperand reports whether op is encoded with an operand.
func (op Opcode) HasOperand() bool {
	return op >= 0x40
}

// IsJump reports whether the operand of op is a relative jump delta.
func (op Opcode) IsJump() bool {
	return op == OpJmp || op == OpJmpIfZ || op == OpEndRepeat
}

// Make encodes op with the narrowest width that holds operand. Opcodes
// without operands ignore it.
func Make(op Opcode, operands ...int) []byte {
	if _, ok := definitions[op]; !ok {
		return []byte{}
	}
	if !op.HasOperand() {
		return []byte{byte(op)}
	}

	operand := 0
	if len(operands) > 0 {
		operand = operands[0]
	}

	width := 4
	if op != OpPushFloat32 && op != OpPushInt32 {
		if definitions[op].Signed {
			switch {
			case operand >= math.MinInt8 && operand <= math.MaxInt8:
				width = 1
			case operand >= math.MinInt16 && operand <= math.MaxInt16:
				width = 2
			}
		} else {
			switch {
			case operand >= 0 && operand <= math.MaxUint8:
				width = 1
			case operand >= 0 && operand <= math.MaxUint16:
				width = 2
			}
		}
	}

	return MakeWidth(op, width, operand)
}

// MakeWidth encodes op with an explicit operand width of 1, 2 or 4 bytes.
func MakeWidth(op Opcode, width int, operand int) []byte {
	if !op.HasOperand() {
		return []byte{byte(op)}
	}

	id := byte(op)
	switch width {
	case 2:
		id += 0x40
	case 4:
		id += 0x80
	}

	instruction := make([]byte, 1+width)
	instruction[0] = id
	switch width {
	case 4:
		instruction[1] = byte(operand >> 24)
		instruction[2] = byte(operand >> 16)
		instruction[3] = byte(operand >> 8)
		instruction[4] = byte(operand)
	case 2:
		instruction[1] = byte(operand >> 8)
		instruction[2] = byte(operand)
	case 1:
		instruction[1] = byte(operand)
	}

	return instruction
}

// MakeFloat encodes a pushfloat32 instruction.
func MakeFloat(f float32) []byte {
	return MakeWidth(OpPushFloat32, 4, int(int32(math.Float32bits(f))))
}

// ReadOperand decodes the operand of the encoded id from ins, returning the
// operand and the number of bytes read.
func ReadOperand(id byte, ins []byte) (int32, int) {
	width := OperandWidth(id)
	signed := false
	if def, ok := definitions[Normalize(id)]; ok {
		signed = def.Signed
	}

	switch width {
	case 4:
		return int32(ReadUint32(ins)), 4
	case 2:
		if signed {
			return int32(int16(ReadUint16(ins))), 2
		}
		return int32(ReadUint16(ins)), 2
	case 1:
		if signed {
			return int32(int8(ReadUint8(ins))), 1
		}
		return int32(ReadUint8(ins)), 1
	}

	return 0, 0
}

func ReadUint32(ins []byte) uint32 {
	return uint32(ins[0])<<24 | uint32(ins[1])<<16 | uint32(ins[2])<<8 | uint32(ins[3])
}

func ReadUint16(ins []byte) uint16 {
	return uint16(ins[0])<<8 | uint16(ins[1])
}

func ReadUint8(ins []byte) uint8 {
	return uint8(ins[0])
}

// Float32 reinterprets an operand as the bits of a float32.
func Float32(operand int32) float32 {
	return math.Float32frombits(uint32(operand))
}

func (op Opcode) String() string {
	def, ok := definitions[op]
	if !ok {
		return fmt.Sprintf("unk%02x", byte(op))
	}
	return def.Name
}
