package render

import (
	"log/slog"

	"lingoscope/pkg/ast"
	"lingoscope/pkg/breakpoint"
	"lingoscope/pkg/bytecode"
	"lingoscope/pkg/decompiler"
	"lingoscope/pkg/interp"
)

// ScriptView is everything needed to render one handler.
type ScriptView struct {
	ContainerID    int
	Handler        string
	IsMethod       bool
	IsGenericEvent bool
	// FirstHandler prints the instance line of a method script
	FirstHandler  bool
	ArgumentNames []string
	PropertyNames []string
	GlobalNames   []string
	Instructions  []bytecode.Instruction
	Offsets       *bytecode.OffsetIndex
	Root          *ast.HandlerNode
	// ProgramCounter is set only while this handler is the paused frame.
	ProgramCounter *uint32
	DotSyntax      bool
}

// NewView builds a view of a decompiled handler. Each view gets its own
// offset index so renders of one view never reset another's violations.
func NewView(s *decompiler.Script, h *decompiler.Handler) *ScriptView {
	return &ScriptView{
		ContainerID:    s.ID,
		Handler:        h.Name,
		IsMethod:       s.IsMethod,
		IsGenericEvent: h.IsGenericEvent,
		FirstHandler:   len(s.Handlers) > 0 && s.Handlers[0] == h,
		ArgumentNames:  h.ArgumentNames,
		PropertyNames:  s.Properties,
		GlobalNames:    h.GlobalNames,
		Instructions:   h.Instructions,
		Offsets:        bytecode.IndexInstructions(h.Instructions),
		Root:           h.AST,
		DotSyntax:      false,
	}
}

// BreakpointLookup answers whether a function breakpoint exists at a
// location. Both *breakpoint.Store and breakpoint.Snapshot implement it.
type BreakpointLookup interface {
	Lookup(handler string, containerID int, offset uint32) (breakpoint.Breakpoint, bool)
}

// CallResolver links call nodes to the handlers they invoke.
type CallResolver interface {
	CallTarget(call *ast.CallNode, containerID int) (interp.HandlerRef, bool)
}

type Context struct {
	Breakpoints BreakpointLookup
	Calls       CallResolver
	Logger      *slog.Logger
}

// RenderState is the mutable state of one render pass.
type RenderState struct {
	Indent    int
	DotSyntax bool
	Tracker   Tracker
	// Lines counts the gutters emitted so far
	Lines int
}
