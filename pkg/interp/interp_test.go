package interp

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"lingoscope/pkg/ast"
	"lingoscope/pkg/decompiler"
)

func newTestRuntime() *Runtime {
	r := NewRuntime(nil)
	r.AddScript(&decompiler.Script{
		ID:    1,
		Names: []string{"helper", "startMovie", "beep"},
		Handlers: []*decompiler.Handler{
			{Name: "main"},
			{Name: "helper"},
		},
	})
	r.AddScript(&decompiler.Script{
		ID:    2,
		Names: []string{"startMovie"},
		Handlers: []*decompiler.Handler{
			{Name: "startMovie"},
			{Name: "helper"},
		},
	})
	return r
}

func TestCallStackPushPop(t *testing.T) {
	cs := NewCallStack()
	if _, ok := cs.Top(); ok {
		t.Fatalf("empty stack has a top frame")
	}

	cs.Push(Frame{ContainerID: 1, Handler: "a"})
	cs.Push(Frame{ContainerID: 1, Handler: "b", PC: 4})
	if !cs.SetPC(10) {
		t.Fatalf("SetPC failed on non-empty stack")
	}

	frames := cs.Frames()
	expected := []Frame{{ContainerID: 1, Handler: "b", PC: 10}, {ContainerID: 1, Handler: "a"}}
	if !reflect.DeepEqual(frames, expected) {
		t.Fatalf("wrong frames. want=%+v, got=%+v", expected, frames)
	}

	cs.SetPaused(true)
	cs.Pop()
	if !cs.Paused() {
		t.Errorf("popping a non-final frame cleared the pause")
	}
	cs.Pop()
	if cs.Paused() {
		t.Errorf("empty stack still paused")
	}
	if _, ok := cs.Pop(); ok {
		t.Errorf("Pop on empty stack succeeded")
	}
}

func TestCallStackOverflow(t *testing.T) {
	cs := NewCallStack()
	for i := 0; i < MaxFrames; i++ {
		if err := cs.Push(Frame{Handler: "r"}); err != nil {
			t.Fatalf("push %d failed: %s", i, err)
		}
	}
	if err := cs.Push(Frame{Handler: "r"}); !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("expected ErrStackOverflow, got=%v", err)
	}
}

func TestResolveCallTarget(t *testing.T) {
	r := newTestRuntime()

	tests := []struct {
		index    int
		hint     NamespaceHint
		expected HandlerRef
		ok       bool
	}{
		{1, NamespaceHint{NamespaceLocal, 1}, HandlerRef{1, "helper"}, true},
		{0, NamespaceHint{NamespaceLocal, 2}, HandlerRef{2, "startMovie"}, true},
		{5, NamespaceHint{NamespaceLocal, 1}, HandlerRef{}, false},
		// global: the caller's own handler wins
		{0, NamespaceHint{NamespaceGlobal, 1}, HandlerRef{1, "helper"}, true},
		// global: falls back to other containers
		{1, NamespaceHint{NamespaceGlobal, 1}, HandlerRef{2, "startMovie"}, true},
		{2, NamespaceHint{NamespaceGlobal, 1}, HandlerRef{}, false},
		{0, NamespaceHint{NamespaceGlobal, 9}, HandlerRef{}, false},
	}

	for i, tt := range tests {
		ref, ok := r.ResolveCallTarget(tt.index, tt.hint)
		if ok != tt.ok || ref != tt.expected {
			t.Errorf("tests[%d] - wrong target. expected=(%+v, %t), got=(%+v, %t)", i, tt.expected, tt.ok, ref, ok)
		}
	}
}

func TestFacade(t *testing.T) {
	r := newTestRuntime()
	f := NewFacade(r)

	if _, ok := f.PausedFrame(); ok {
		t.Fatalf("facade reports a paused frame before Pause")
	}
	if err := r.Pause(HandlerRef{1, "main"}, 10); err != nil {
		t.Fatalf("Pause returned error: %s", err)
	}

	if pc, ok := f.ProgramCounter(1, "main"); !ok || pc != 10 {
		t.Errorf("wrong program counter. got=(%d, %t)", pc, ok)
	}
	if _, ok := f.ProgramCounter(1, "helper"); ok {
		t.Errorf("program counter reported for a handler that is not paused")
	}

	ref, ok := f.CallTarget(&ast.CallNode{Name: "helper", Target: 1, Local: true}, 1)
	if !ok || ref != (HandlerRef{1, "helper"}) {
		t.Errorf("wrong local call target. got=(%+v, %t)", ref, ok)
	}

	r.Resume()
	if _, ok := f.PausedFrame(); ok {
		t.Errorf("facade still paused after Resume")
	}

	var nilFacade *Facade
	if _, ok := nilFacade.CallTarget(&ast.CallNode{}, 1); ok {
		t.Errorf("nil facade resolved a call")
	}
}

func TestPauseUnknownHandler(t *testing.T) {
	r := newTestRuntime()
	if err := r.Pause(HandlerRef{1, "nope"}, 0); !errors.Is(err, ErrNoHandler) {
		t.Fatalf("expected ErrNoHandler, got=%v", err)
	}
}

func TestFindHandler(t *testing.T) {
	r := newTestRuntime()

	tests := []struct {
		input    string
		expected HandlerRef
	}{
		{"helper", HandlerRef{1, "helper"}},
		{"2:helper", HandlerRef{2, "helper"}},
		{"startMovie", HandlerRef{2, "startMovie"}},
	}
	for i, tt := range tests {
		ref, err := r.FindHandler(tt.input)
		if err != nil {
			t.Fatalf("tests[%d] - FindHandler returned error: %s", i, err)
		}
		if ref != tt.expected {
			t.Errorf("tests[%d] - wrong handler. expected=%+v, got=%+v", i, tt.expected, ref)
		}
	}

	_, err := r.FindHandler("helpr")
	if !errors.Is(err, ErrNoHandler) {
		t.Fatalf("expected ErrNoHandler, got=%v", err)
	}
	if !strings.Contains(err.Error(), "did you mean helper") {
		t.Errorf("error lacks suggestion: %s", err)
	}
}

func TestHandlerNames(t *testing.T) {
	r := newTestRuntime()
	expected := []string{"1:main", "1:helper", "2:startMovie", "2:helper"}
	if got := r.HandlerNames(); !reflect.DeepEqual(got, expected) {
		t.Fatalf("wrong names. want=%q, got=%q", expected, got)
	}
}
