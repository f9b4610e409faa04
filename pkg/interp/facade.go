package interp

import (
	"lingoscope/pkg/ast"
)

// Namespace tells which table a call-target index was encoded against.
type Namespace int

const (
	// NamespaceLocal indexes the handler list of the calling script
	NamespaceLocal Namespace = iota
	// NamespaceGlobal indexes the name table shared by every container
	NamespaceGlobal
)

func (ns Namespace) String() string {
	if ns == NamespaceLocal {
		return "local"
	}
	return "global"
}

// NamespaceHint locates a call-target index: the namespace it indexes and the
// container of the calling instruction.
type NamespaceHint struct {
	Namespace   Namespace
	ContainerID int
}

type HandlerRef struct {
	ContainerID int    `json:"container"`
	Name        string `json:"handler"`
}

// Interpreter is the host runtime as seen by the debugger.
type Interpreter interface {
	CurrentPausedFrame() (Frame, bool)
	ResolveCallTarget(index int, hint NamespaceHint) (HandlerRef, bool)
}

// Facade answers read-only call-stack questions for rendering.
type Facade struct {
	interp Interpreter
}

func NewFacade(i Interpreter) *Facade {
	return &Facade{interp: i}
}

func (f *Facade) PausedFrame() (Frame, bool) {
	if f == nil || f.interp == nil {
		return Frame{}, false
	}
	return f.interp.CurrentPausedFrame()
}

// ProgramCounter returns the paused PC when the handler is the top frame.
func (f *Facade) ProgramCounter(containerID int, handler string) (uint32, bool) {
	frame, ok := f.PausedFrame()
	if !ok || frame.ContainerID != containerID || frame.Handler != handler {
		return 0, false
	}
	return frame.PC, true
}

// CallTarget resolves the handler a call node refers to. Calls compiled with
// localcall index the caller's handler list; everything else indexes the
// shared name table.
func (f *Facade) CallTarget(call *ast.CallNode, containerID int) (HandlerRef, bool) {
	if f == nil || f.interp == nil {
		return HandlerRef{}, false
	}

	hint := NamespaceHint{Namespace: NamespaceGlobal, ContainerID: containerID}
	if call.Local {
		hint.Namespace = NamespaceLocal
	}
	return f.interp.ResolveCallTarget(call.Target, hint)
}
