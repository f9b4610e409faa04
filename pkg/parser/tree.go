package parser

import (
	"bytes"
	"fmt"
	"strings"

	"lingoscope/pkg/token"
)

type Node interface {
	TokenLiteral() string
	String() string
}

// Statement is one line of a handler body: an instruction or a label.
type Statement interface {
	Node
	statementNode()
}

type File struct {
	Scripts []*Script
}

func (f *File) TokenLiteral() string {
	if len(f.Scripts) > 0 {
		return f.Scripts[0].TokenLiteral()
	}
	return ""
}

func (f *File) String() string {
	var out bytes.Buffer
	for _, s := range f.Scripts {
		out.WriteString(s.String())
	}
	return out.String()
}

type Script struct {
	Token      token.Token // the 'script' token
	ID         int
	Name       string
	IsMethod   bool
	Properties []string
	Handlers   []*Handler
}

func (s *Script) TokenLiteral() string { return s.Token.Literal }
func (s *Script) String() string {
	var out bytes.Buffer
	out.WriteString(fmt.Sprintf("script %d", s.ID))
	if s.Name != "" {
		out.WriteString(fmt.Sprintf(" %q", s.Name))
	}
	out.WriteString("\n")
	if s.IsMethod {
		out.WriteString("method\n")
	}
	if len(s.Properties) > 0 {
		out.WriteString("property " + strings.Join(s.Properties, ", ") + "\n")
	}
	for _, h := range s.Handlers {
		out.WriteString(h.String())
	}
	return out.String()
}

type Handler struct {
	Token          token.Token // 'handler' or 'event'
	Name           string
	Args           []string
	Globals        []string
	Locals         []string
	IsGenericEvent bool
	Body           []Statement
}

func (h *Handler) TokenLiteral() string { return h.Token.Literal }
func (h *Handler) String() string {
	var out bytes.Buffer
	out.WriteString(h.TokenLiteral() + " " + h.Name)
	if len(h.Args) > 0 {
		out.WriteString(" " + strings.Join(h.Args, ", "))
	}
	out.WriteString("\n")
	if len(h.Globals) > 0 {
		out.WriteString("  global " + strings.Join(h.Globals, ", ") + "\n")
	}
	if len(h.Locals) > 0 {
		out.WriteString("  local " + strings.Join(h.Locals, ", ") + "\n")
	}
	for _, s := range h.Body {
		if _, ok := s.(*Label); !ok {
			out.WriteString("  ")
		}
		out.WriteString(s.String() + "\n")
	}
	out.WriteString("end\n")
	return out.String()
}

type Instruction struct {
	Token   token.Token // the opcode name
	Operand *Operand
}

func (i *Instruction) statementNode()       {}
func (i *Instruction) TokenLiteral() string { return i.Token.Literal }
func (i *Instruction) String() string {
	if i.Operand == nil {
		return i.Token.Literal
	}
	return i.Token.Literal + " " + i.Operand.String()
}

type Label struct {
	Token token.Token
	Name  string
}

func (l *Label) statementNode()       {}
func (l *Label) TokenLiteral() string { return l.Token.Literal }
func (l *Label) String() string       { return "@" + l.Name + ":" }

// Operand is the argument of an instruction; Token.Type tells which kind
// (INT, FLOAT, STRING, IDENT or LABEL).
type Operand struct {
	Token token.Token
	Int   int
	Float float64
}

func (o *Operand) TokenLiteral() string { return o.Token.Literal }
func (o *Operand) String() string {
	switch o.Token.Type {
	case token.STRING:
		return "\"" + o.Token.Literal + "\""
	case token.LABEL:
		return "@" + o.Token.Literal
	}
	return o.Token.Literal
}
