package interp

import (
	"errors"
	"sync"
)

const MaxFrames = 64

var ErrStackOverflow = errors.New("call stack overflow")

// Frame is one activation of a handler.
type Frame struct {
	ContainerID int    `json:"container"`
	Handler     string `json:"handler"`
	PC          uint32 `json:"pc"` // byte offset of the next instruction
}

// CallStack mirrors the host interpreter's frames. The host pushes a frame
// on every call, updates the top PC while stepping and marks the stack
// paused when it stops on a breakpoint.
type CallStack struct {
	mu          sync.RWMutex
	frames      []Frame
	framesIndex int
	paused      bool
}

func NewCallStack() *CallStack {
	return &CallStack{frames: make([]Frame, MaxFrames)}
}

func (cs *CallStack) Push(f Frame) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.framesIndex >= MaxFrames {
		return ErrStackOverflow
	}
	cs.frames[cs.framesIndex] = f
	cs.framesIndex++
	return nil
}

func (cs *CallStack) Pop() (Frame, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.framesIndex == 0 {
		return Frame{}, false
	}
	cs.framesIndex--
	if cs.framesIndex == 0 {
		cs.paused = false
	}
	return cs.frames[cs.framesIndex], true
}

func (cs *CallStack) Top() (Frame, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	if cs.framesIndex == 0 {
		return Frame{}, false
	}
	return cs.frames[cs.framesIndex-1], true
}

// SetPC moves the program counter of the top frame.
func (cs *CallStack) SetPC(pc uint32) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.framesIndex == 0 {
		return false
	}
	cs.frames[cs.framesIndex-1].PC = pc
	return true
}

func (cs *CallStack) SetPaused(paused bool) {
	cs.mu.Lock()
	cs.paused = paused && cs.framesIndex > 0
	cs.mu.Unlock()
}

func (cs *CallStack) Paused() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.paused
}

// Frames returns the active frames, top first.
func (cs *CallStack) Frames() []Frame {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	out := make([]Frame, 0, cs.framesIndex)
	for i := cs.framesIndex - 1; i >= 0; i-- {
		out = append(out, cs.frames[i])
	}
	return out
}

// Reset drops every frame.
func (cs *CallStack) Reset() {
	cs.mu.Lock()
	cs.framesIndex = 0
	cs.paused = false
	cs.mu.Unlock()
}
