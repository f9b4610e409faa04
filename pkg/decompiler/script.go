package decompiler

import (
	"lingoscope/pkg/ast"
	"lingoscope/pkg/bytecode"
)

// Script is a compiled Lingo script: a container of handlers sharing a name
// table and a literal pool.
type Script struct {
	ID         int
	Name       string
	IsMethod   bool
	Names      []string
	Literals   []ast.Datum
	Properties []string
	Handlers   []*Handler
}

// Handler is one compiled handler plus everything derived from its code.
type Handler struct {
	Name           string
	ArgumentNames  []string
	LocalNames     []string
	GlobalNames    []string
	IsGenericEvent bool
	Code           []byte

	Instructions []bytecode.Instruction
	Offsets      *bytecode.OffsetIndex
	AST          *ast.HandlerNode
}

// Handler finds a handler by name.
func (s *Script) Handler(name string) (*Handler, bool) {
	for _, h := range s.Handlers {
		if h.Name == name {
			return h, true
		}
	}
	return nil, false
}

// HandlerIndex returns the position of a handler in the script's handler
// list, which is what localcall operands index.
func (s *Script) HandlerIndex(name string) int {
	for i, h := range s.Handlers {
		if h.Name == name {
			return i
		}
	}
	return -1
}

// NameAt returns entry i of the name table.
func (s *Script) NameAt(i int) (string, bool) {
	if i < 0 || i >= len(s.Names) {
		return "", false
	}
	return s.Names[i], true
}
