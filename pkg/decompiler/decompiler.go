package decompiler

import (
	"fmt"
	"log/slog"

	"lingoscope/pkg/ast"
	"lingoscope/pkg/bytecode"
	"lingoscope/pkg/opcode"
)

type tag int

const (
	tagNone tag = iota
	// tagSkip marks loop bookkeeping that produces no source
	tagSkip
	tagRepeatWhile
	tagRepeatWithTo
	tagRepeatWithInit
	tagElse
	tagLoopEnd
)

type blockContext struct {
	block  *ast.BlockNode
	endPos uint32
	// next is pushed when this block closes (the else branch of an if)
	next *blockContext
	loop bool
	tell bool
}

type loopContext struct {
	nextPos uint32
	endPos  uint32
}

type builder struct {
	script  *Script
	handler *Handler
	code    []bytecode.Instruction
	posMap  map[uint32]int
	endPos  uint32

	stack  []ast.Node
	blocks []*blockContext
	loops  []loopContext

	tags     []tag
	withInit map[int]int
	inits    map[int]ast.Node
	log      *slog.Logger
}

// BuildAST disassembles the handler's code and rebuilds its syntax tree. It
// fills in Instructions, Offsets and AST on h and attaches the node each
// instruction produced as its Translation.
func BuildAST(s *Script, h *Handler, logger *slog.Logger) (*ast.HandlerNode, error) {
	if logger == nil {
		logger = slog.Default()
	}

	code, err := bytecode.Disassemble(h.Code)
	if err != nil {
		return nil, fmt.Errorf("handler %s: %w", h.Name, err)
	}

	b := &builder{
		script:   s,
		handler:  h,
		code:     code,
		posMap:   make(map[uint32]int, len(code)+1),
		endPos:   uint32(len(h.Code)),
		tags:     make([]tag, len(code)),
		withInit: map[int]int{},
		inits:    map[int]ast.Node{},
		log:      logger.With("script", s.ID, "handler", h.Name),
	}
	for i, ins := range code {
		b.posMap[ins.Pos] = i
	}
	b.posMap[b.endPos] = len(code)

	root := &ast.HandlerNode{
		Base:  ast.Span(0, len(code)),
		Name:  h.Name,
		Args:  h.ArgumentNames,
		Block: &ast.BlockNode{Base: ast.Span(0, len(code))},
	}
	b.blocks = []*blockContext{{block: root.Block, endPos: b.endPos}}

	b.tagLoops()
	b.translate()

	h.Instructions = b.code
	h.Offsets = bytecode.IndexInstructions(b.code)
	h.AST = root
	return root, nil
}

// DecompileScript builds the tree of every handler in s.
func DecompileScript(s *Script, logger *slog.Logger) error {
	for _, h := range s.Handlers {
		if _, err := BuildAST(s, h, logger); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) index(pos uint32) (int, bool) {
	i, ok := b.posMap[pos]
	return i, ok
}

func (b *builder) translate() {
	for i := range b.code {
		b.closeBlocks(b.code[i].Pos)

		switch b.tags[i] {
		case tagSkip, tagElse, tagLoopEnd:
			continue
		}

		node := b.translateInstruction(i)
		if node != nil {
			b.code[i].Translation = node
		}
	}

	for len(b.blocks) > 1 {
		b.popBlock()
	}
}

func (b *builder) closeBlocks(pos uint32) {
	for len(b.blocks) > 1 {
		top := b.blocks[len(b.blocks)-1]
		if top.tell || top.endPos != pos {
			return
		}
		b.popBlock()
	}
}

func (b *builder) popBlock() {
	top := b.blocks[len(b.blocks)-1]
	b.blocks = b.blocks[:len(b.blocks)-1]
	if top.loop && len(b.loops) > 0 {
		b.loops = b.loops[:len(b.loops)-1]
	}
	if top.next != nil {
		b.blocks = append(b.blocks, top.next)
	}
}

func (b *builder) pushBlock(ctx *blockContext) {
	b.blocks = append(b.blocks, ctx)
}

func (b *builder) currentBlock() *ast.BlockNode {
	return b.blocks[len(b.blocks)-1].block
}

func (b *builder) addStatement(n ast.Node) {
	b.currentBlock().Add(n)
}

func (b *builder) push(n ast.Node) {
	b.stack = append(b.stack, n)
}

func (b *builder) pop() ast.Node {
	if len(b.stack) == 0 {
		b.log.Debug("stack underflow")
		return &ast.ErrorNode{}
	}
	n := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return n
}

// stackCount clamps an operand that counts stack entries to the current depth.
func (b *builder) stackCount(ins bytecode.Instruction) int {
	n := int(ins.Operand)
	if n < 0 || n > len(b.stack) {
		b.log.Debug("operand exceeds stack depth", "op", ins.Opcode.String(), "pos", ins.Pos, "operand", ins.Operand, "depth", len(b.stack))
		return len(b.stack)
	}
	return n
}

func (b *builder) popInt() int {
	lit, ok := b.pop().(*ast.LiteralNode)
	if !ok {
		return 0
	}
	return lit.Value.AsInt()
}

func (b *builder) name(i int32) string {
	if name, ok := b.script.NameAt(int(i)); ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_NAME_%d", i)
}

func (b *builder) argumentName(i int) string {
	if i >= 0 && i < len(b.handler.ArgumentNames) {
		return b.handler.ArgumentNames[i]
	}
	return fmt.Sprintf("UNKNOWN_ARG_%d", i)
}

func (b *builder) localName(i int) string {
	if i >= 0 && i < len(b.handler.LocalNames) {
		return b.handler.LocalNames[i]
	}
	return fmt.Sprintf("UNKNOWN_LOCAL_%d", i)
}

// variableName names the variable an access instruction refers to.
func (b *builder) variableName(ins bytecode.Instruction) string {
	switch ins.Opcode {
	case opcode.OpGetParam, opcode.OpSetParam:
		return b.argumentName(int(ins.Operand))
	case opcode.OpGetLocal, opcode.OpSetLocal:
		return b.localName(int(ins.Operand))
	}
	return b.name(ins.Operand)
}
