package assembler

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"lingoscope/pkg/ast"
	"lingoscope/pkg/decompiler"
	"lingoscope/pkg/lexer"
	"lingoscope/pkg/opcode"
	"lingoscope/pkg/parser"
	"lingoscope/pkg/token"
)

var (
	ErrSyntax   = errors.New("syntax error")
	ErrAssembly = errors.New("assembly error")
)

type AssemblerScope struct {
	instructions        opcode.Instructions
	lastInstruction     opcode.Opcode
	previousInstruction opcode.Opcode
}

// Assembler turns parsed Lingo assembly into scripts with bytecode, name
// tables and literal pools.
type Assembler struct {
	instructions opcode.Instructions
	symbolTable  *SymbolTable
	scopes       []AssemblerScope
	scopeIndex   int
	errors       []string

	script   *decompiler.Script
	handlers map[string]int
	literals map[string]int
}

func New() *Assembler {
	mainScope := AssemblerScope{
		instructions: opcode.Instructions{},
	}

	return &Assembler{
		instructions: mainScope.instructions,
		symbolTable:  NewSymbolTable(),
		scopes:       []AssemblerScope{mainScope},
	}
}

// item is one resolved instruction awaiting layout.
type item struct {
	tok     token.Token
	op      opcode.Opcode
	operand int
	label   string
	width   int
}

// Parse reads Lingo assembly text.
func Parse(input string) (*parser.File, error) {
	p := parser.New(lexer.New(input))
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, strings.Join(errs, "; "))
	}
	return file, nil
}

// AssembleString parses and assembles input.
func AssembleString(input string) ([]*decompiler.Script, error) {
	file, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return New().Assemble(file)
}

func (a *Assembler) Errors() []string {
	return a.errors
}

func (a *Assembler) Assemble(file *parser.File) ([]*decompiler.Script, error) {
	var scripts []*decompiler.Script

	for _, s := range file.Scripts {
		scripts = append(scripts, a.assembleScript(s))
	}

	if len(a.errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrAssembly, strings.Join(a.errors, "; "))
	}

	// every script shares the final name table
	names := a.symbolTable.Names()
	for _, s := range scripts {
		s.Names = names
	}
	return scripts, nil
}

func (a *Assembler) assembleScript(node *parser.Script) *decompiler.Script {
	a.script = &decompiler.Script{
		ID:         node.ID,
		Name:       node.Name,
		IsMethod:   node.IsMethod,
		Properties: node.Properties,
	}
	a.handlers = make(map[string]int, len(node.Handlers))
	a.literals = make(map[string]int)

	for i, h := range node.Handlers {
		if _, ok := a.handlers[h.Name]; ok {
			a.errorf(h.Token, "handler %s defined twice in script %d", h.Name, node.ID)
			continue
		}
		a.handlers[h.Name] = i
	}

	for _, h := range node.Handlers {
		a.script.Handlers = append(a.script.Handlers, a.assembleHandler(h))
	}

	return a.script
}

func (a *Assembler) assembleHandler(node *parser.Handler) *decompiler.Handler {
	a.enterScope()
	for _, arg := range node.Args {
		a.symbolTable.Define(arg, ParamScope)
	}
	for _, local := range node.Locals {
		a.symbolTable.Define(local, LocalScope)
	}
	for _, global := range node.Globals {
		a.symbolTable.Define(global, GlobalScope)
	}

	var items []item
	labels := map[string]int{}
	for _, stmt := range node.Body {
		switch stmt := stmt.(type) {
		case *parser.Label:
			if _, ok := labels[stmt.Name]; ok {
				a.errorf(stmt.Token, "label @%s defined twice", stmt.Name)
				continue
			}
			labels[stmt.Name] = len(items)
		case *parser.Instruction:
			if it, ok := a.resolve(stmt); ok {
				items = append(items, it)
			}
		}
	}

	positions := a.layout(items, labels)

	var fixups []int
	for _, it := range items {
		pos := a.emitWidth(it.op, it.width, it.operand)
		if it.label != "" {
			fixups = append(fixups, pos)
		}
	}

	f := 0
	for i, it := range items {
		if it.label == "" {
			continue
		}
		delta := jumpDelta(it.op, positions[i], positions[labels[it.label]])
		a.changeOperand(fixups[f], delta)
		f++
	}

	if !a.lastInstructionIs(opcode.OpRet) {
		a.emitWidth(opcode.OpRet, 0, 0)
	}

	return &decompiler.Handler{
		Name:           node.Name,
		ArgumentNames:  node.Args,
		LocalNames:     node.Locals,
		GlobalNames:    node.Globals,
		IsGenericEvent: node.IsGenericEvent,
		Code:           a.leaveScope(),
	}
}

// layout chooses operand widths for label jumps, widening any jump whose
// delta does not fit until every width is stable, and returns the byte
// position of every item plus one past the end.
func (a *Assembler) layout(items []item, labels map[string]int) []int {
	for i := range items {
		if items[i].label == "" {
			continue
		}
		if _, ok := labels[items[i].label]; !ok {
			a.errorf(items[i].tok, "undefined label @%s", items[i].label)
			items[i].label = ""
			continue
		}
		items[i].width = 1
	}

	positions := make([]int, len(items)+1)
	for changed := true; changed; {
		changed = false
		for i, it := range items {
			positions[i+1] = positions[i] + 1
			if it.op.HasOperand() {
				positions[i+1] += it.width
			}
		}
		for i := range items {
			if items[i].label == "" {
				continue
			}
			delta := jumpDelta(items[i].op, positions[i], positions[labels[items[i].label]])
			if need := len(opcode.Make(items[i].op, delta)) - 1; need > items[i].width {
				items[i].width = need
				changed = true
			}
		}
	}

	return positions
}

// jumpDelta encodes the distance from a jump at pos to target. endrepeat
// counts backwards.
func jumpDelta(op opcode.Opcode, pos, target int) int {
	if op == opcode.OpEndRepeat {
		return pos - target
	}
	return target - pos
}

func (a *Assembler) resolve(ins *parser.Instruction) (item, bool) {
	op, ok := opcode.ByName(ins.Token.Literal)
	if !ok {
		a.errorf(ins.Token, "unknown opcode %s", ins.Token.Literal)
		return item{}, false
	}
	it := item{tok: ins.Token, op: op}

	if !op.HasOperand() {
		if ins.Operand != nil {
			a.errorf(ins.Operand.Token, "%s takes no operand", op)
			return item{}, false
		}
		return it, true
	}
	if ins.Operand == nil {
		a.errorf(ins.Token, "%s needs an operand", op)
		return item{}, false
	}

	operand := ins.Operand
	switch operand.Token.Type {
	case token.LABEL:
		if !op.IsJump() {
			a.errorf(operand.Token, "%s cannot take a label", op)
			return item{}, false
		}
		it.label = operand.Token.Literal
		return it, true

	case token.INT:
		switch op {
		case opcode.OpPushCons:
			it.operand = a.literal(ast.Int(operand.Int))
		case opcode.OpPushFloat32:
			it.operand = floatBits(float64(operand.Int))
		default:
			it.operand = operand.Int
		}

	case token.FLOAT:
		switch op {
		case opcode.OpPushCons:
			it.operand = a.literal(ast.Float(operand.Float))
		case opcode.OpPushFloat32:
			it.operand = floatBits(operand.Float)
		default:
			a.errorf(operand.Token, "%s cannot take a float", op)
			return item{}, false
		}

	case token.STRING:
		if op == opcode.OpPushCons {
			it.operand = a.literal(ast.String(operand.Token.Literal))
		} else {
			it.operand = a.symbolTable.Intern(operand.Token.Literal)
		}

	case token.IDENT:
		index, ok := a.resolveName(op, operand.Token)
		if !ok {
			return item{}, false
		}
		it.operand = index
	}

	it.width = len(opcode.Make(op, it.operand)) - 1
	return it, true
}

// resolveName maps a name operand to the table the opcode indexes.
func (a *Assembler) resolveName(op opcode.Opcode, tok token.Token) (int, bool) {
	name := tok.Literal

	switch op {
	case opcode.OpGetParam, opcode.OpSetParam:
		if sym, ok := a.symbolTable.Resolve(name); ok && sym.Scope == ParamScope {
			return sym.Index, true
		}
		a.errorf(tok, "%s is not an argument", name)
		return 0, false

	case opcode.OpGetLocal, opcode.OpSetLocal:
		if sym, ok := a.symbolTable.Resolve(name); ok && sym.Scope == LocalScope {
			return sym.Index, true
		}
		a.errorf(tok, "%s is not a local", name)
		return 0, false

	case opcode.OpLocalCall:
		if index, ok := a.handlers[name]; ok {
			return index, true
		}
		a.errorf(tok, "no handler %s in script %d", name, a.script.ID)
		return 0, false

	case opcode.OpPushCons:
		a.errorf(tok, "pushcons needs a literal, got %s", name)
		return 0, false
	}

	return a.symbolTable.Intern(name), true
}

func (a *Assembler) literal(d ast.Datum) int {
	key := fmt.Sprintf("%d:%d:%g:%s", d.Type, d.Int, d.Float, d.Str)
	if index, ok := a.literals[key]; ok {
		return index
	}
	a.script.Literals = append(a.script.Literals, d)
	index := len(a.script.Literals) - 1
	a.literals[key] = index
	return index
}

func floatBits(f float64) int {
	return int(int32(math.Float32bits(float32(f))))
}

func (a *Assembler) emitWidth(op opcode.Opcode, width int, operand int) int {
	ins := opcode.MakeWidth(op, width, operand)
	pos := a.addInstruction(ins)
	a.setLastInstruction(op)
	return pos
}

func (a *Assembler) addInstruction(ins []byte) int {
	posNewInstruction := len(a.instructions)
	a.instructions = append(a.instructions, ins...)
	return posNewInstruction
}

func (a *Assembler) setLastInstruction(op opcode.Opcode) {
	scope := &a.scopes[a.scopeIndex]
	scope.previousInstruction = scope.lastInstruction
	scope.lastInstruction = op
}

// changeOperand rewrites the operand of the instruction at opPos, keeping
// its encoded width.
func (a *Assembler) changeOperand(opPos int, operand int) {
	id := a.instructions[opPos]
	newInstruction := opcode.MakeWidth(opcode.Normalize(id), opcode.OperandWidth(id), operand)

	for i := 0; i < len(newInstruction); i++ {
		a.instructions[opPos+i] = newInstruction[i]
	}
}

func (a *Assembler) enterScope() {
	scope := AssemblerScope{
		instructions: opcode.Instructions{},
	}
	a.scopes[a.scopeIndex].instructions = a.instructions

	a.scopes = append(a.scopes, scope)
	a.scopeIndex++
	a.symbolTable = NewEnclosedSymbolTable(a.symbolTable)
	a.instructions = scope.instructions
}

func (a *Assembler) leaveScope() opcode.Instructions {
	instructions := a.instructions

	a.scopes = a.scopes[:len(a.scopes)-1]
	a.scopeIndex--
	a.symbolTable = a.symbolTable.Outer
	a.instructions = a.scopes[a.scopeIndex].instructions

	return instructions
}

func (a *Assembler) lastInstructionIs(op opcode.Opcode) bool {
	if len(a.instructions) == 0 {
		return false
	}
	return a.scopes[a.scopeIndex].lastInstruction == op
}

func (a *Assembler) errorf(tok token.Token, format string, args ...any) {
	a.errors = append(a.errors, fmt.Sprintf("%s: %s", tok.Pos(), fmt.Sprintf(format, args...)))
}
