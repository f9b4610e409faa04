package session

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"lingoscope/pkg/assembler"
	"lingoscope/pkg/breakpoint"
	"lingoscope/pkg/interp"
	"lingoscope/pkg/render"
)

const fixture = `
script 7 "Guard"
handler foo x
  getparam x
  pushzero
  gt
  jmpifz @done
  getparam x
  pusharglistnoret 1
  extcall return
@done:
  ret
end
handler bar
  pusharglistnoret 0
  localcall foo
  ret
end
`

var foo = interp.HandlerRef{ContainerID: 7, Name: "foo"}

type memoryRepo struct {
	saved  []breakpoint.Breakpoint
	saves  int
	failed bool
}

func (m *memoryRepo) LoadBreakpoints(ctx context.Context) ([]breakpoint.Breakpoint, error) {
	return m.saved, nil
}

func (m *memoryRepo) SaveBreakpoints(ctx context.Context, bps []breakpoint.Breakpoint) error {
	if m.failed {
		return errors.New("disk full")
	}
	m.saved = bps
	m.saves++
	return nil
}

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()

	scripts, err := assembler.AssembleString(fixture)
	if err != nil {
		t.Fatalf("assembler error: %s", err)
	}
	rt := interp.NewRuntime(nil)
	for _, s := range scripts {
		rt.AddScript(s)
	}

	s, err := New(context.Background(), rt, opts...)
	if err != nil {
		t.Fatalf("New returned error: %s", err)
	}
	return s
}

func TestRender(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	if _, set, err := s.ToggleBreakpoint(ctx, "foo", 7, 4); err != nil || !set {
		t.Fatalf("ToggleBreakpoint wrong. set=%t, err=%v", set, err)
	}
	if err := s.Pause(foo, 10); err != nil {
		t.Fatalf("Pause returned error: %s", err)
	}

	events, err := s.Render(foo, render.ModeSource, false)
	if err != nil {
		t.Fatalf("Render returned error: %s", err)
	}

	expected := "  [    0] on foo x\n" +
		"* [    4]   if x > 0 then\n" +
		" >[   10]     return x\n" +
		"  [   12]   end if\n" +
		"  [   12] end\n"
	if got := render.Text(events); got != expected {
		t.Fatalf("wrong text.\nwant=%q\ngot =%q", expected, got)
	}
}

func TestRenderRefreshesProgramCounter(t *testing.T) {
	s := newSession(t)

	current := func() []uint32 {
		t.Helper()
		events, err := s.Render(foo, render.ModeSource, false)
		if err != nil {
			t.Fatalf("Render returned error: %s", err)
		}
		var out []uint32
		for _, g := range render.Gutters(events) {
			if g.Current {
				out = append(out, g.Offset)
			}
		}
		return out
	}

	if got := current(); len(got) != 0 {
		t.Fatalf("current line while running. got=%v", got)
	}

	s.Pause(foo, 0)
	if got := current(); !reflect.DeepEqual(got, []uint32{4}) {
		t.Fatalf("wrong current line at pc 0. got=%v", got)
	}

	s.Resume()
	s.Pause(foo, 12)
	if got := current(); !reflect.DeepEqual(got, []uint32{12}) {
		t.Fatalf("wrong current line at pc 12. got=%v", got)
	}

	s.Resume()
	if got := current(); len(got) != 0 {
		t.Fatalf("current line after resume. got=%v", got)
	}
}

func TestOtherHandlerHasNoCurrentLine(t *testing.T) {
	s := newSession(t)
	s.Pause(interp.HandlerRef{ContainerID: 7, Name: "bar"}, 0)

	events, err := s.Render(foo, render.ModeSource, false)
	if err != nil {
		t.Fatalf("Render returned error: %s", err)
	}
	for _, g := range render.Gutters(events) {
		if g.Current {
			t.Fatalf("foo shows a current line while bar is paused. offset=%d", g.Offset)
		}
	}
}

func TestViewCache(t *testing.T) {
	s := newSession(t)

	a, err := s.View(foo, false)
	if err != nil {
		t.Fatalf("View returned error: %s", err)
	}
	b, _ := s.View(foo, false)
	if a != b {
		t.Errorf("view not cached")
	}
	dot, _ := s.View(foo, true)
	if dot == a || !dot.DotSyntax {
		t.Errorf("dot syntax view shares the plain view")
	}

	_, err = s.View(interp.HandlerRef{ContainerID: 7, Name: "missing"}, false)
	if !errors.Is(err, ErrNoView) {
		t.Fatalf("expected ErrNoView. got=%v", err)
	}
	_, err = s.Render(interp.HandlerRef{ContainerID: 99, Name: "foo"}, render.ModeSource, false)
	if !errors.Is(err, ErrNoView) {
		t.Fatalf("expected ErrNoView. got=%v", err)
	}
}

func TestToggleBreakpoint(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	id, set, _ := s.ToggleBreakpoint(ctx, "foo", 7, 4)
	if !set || id != 1 {
		t.Fatalf("first toggle wrong. id=%d, set=%t", id, set)
	}
	id, set, _ = s.ToggleBreakpoint(ctx, "foo", 7, 4)
	if set || id != 1 {
		t.Fatalf("second toggle wrong. id=%d, set=%t", id, set)
	}
	if rows := s.ListFunctionBreakpoints(); len(rows) != 0 {
		t.Fatalf("breakpoint survived the second toggle. got=%+v", rows)
	}

	events, _ := s.Render(foo, render.ModeSource, false)
	toggle := render.Gutters(events)[2].Toggle
	if _, set, _ := s.Apply(ctx, toggle); !set {
		t.Fatalf("toggle from gutter did not set a breakpoint")
	}
	rows := s.ListFunctionBreakpoints()
	if len(rows) != 1 || rows[0].Offset != 10 || rows[0].Handler != "foo" {
		t.Fatalf("wrong breakpoint from gutter. got=%+v", rows)
	}
}

func TestListFunctionBreakpoints(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	s.ToggleBreakpoint(ctx, "foo", 7, 10)
	s.ToggleBreakpoint(ctx, "bar", 7, 0)
	s.Store().Add(breakpoint.KindVariable, 7, "x", 0)
	s.ToggleBreakpoint(ctx, "foo", 7, 4)

	if err := s.SetEnabled(ctx, 2, false); err != nil {
		t.Fatalf("SetEnabled returned error: %s", err)
	}

	expected := []Row{
		{ID: 1, ContainerID: 7, Handler: "foo", Offset: 10, Enabled: true, Description: "7: foo"},
		{ID: 2, ContainerID: 7, Handler: "bar", Offset: 0, Enabled: false, Description: "7: bar"},
		{ID: 4, ContainerID: 7, Handler: "foo", Offset: 4, Enabled: true, Description: "7: foo"},
	}
	if got := s.ListFunctionBreakpoints(); !reflect.DeepEqual(got, expected) {
		t.Fatalf("wrong rows.\nwant=%+v\ngot =%+v", expected, got)
	}

	if err := s.Remove(ctx, 1); err != nil {
		t.Fatalf("Remove returned error: %s", err)
	}
	if got := s.ListFunctionBreakpoints(); len(got) != 2 || got[0].ID != 2 {
		t.Fatalf("wrong rows after remove. got=%+v", got)
	}

	if err := s.SetEnabled(ctx, 42, true); !errors.Is(err, breakpoint.ErrNotFound) {
		t.Fatalf("expected ErrNotFound. got=%v", err)
	}
}

func TestDisabledBreakpointMarker(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	id, _, _ := s.ToggleBreakpoint(ctx, "foo", 7, 4)
	s.SetEnabled(ctx, id, false)

	events, _ := s.Render(foo, render.ModeSource, false)
	if m := render.Gutters(events)[1].Marker; m != render.MarkerDisabled {
		t.Fatalf("wrong marker. got=%v", m)
	}
}

func TestPersistence(t *testing.T) {
	repo := &memoryRepo{}
	s := newSession(t, WithPersistence(repo))
	ctx := context.Background()

	s.ToggleBreakpoint(ctx, "foo", 7, 4)
	s.ToggleBreakpoint(ctx, "foo", 7, 10)
	s.SetEnabled(ctx, 1, false)
	if repo.saves != 3 || len(repo.saved) != 2 {
		t.Fatalf("wrong saves. saves=%d, saved=%+v", repo.saves, repo.saved)
	}

	restored := newSession(t, WithPersistence(repo))
	if got, want := restored.ListFunctionBreakpoints(), s.ListFunctionBreakpoints(); !reflect.DeepEqual(got, want) {
		t.Fatalf("breakpoints not restored.\nwant=%+v\ngot =%+v", want, got)
	}
	id, _, _ := restored.ToggleBreakpoint(ctx, "bar", 7, 0)
	if id != 3 {
		t.Fatalf("restored store reuses ids. got=%d", id)
	}

	repo.failed = true
	if _, _, err := restored.ToggleBreakpoint(ctx, "bar", 7, 0); err == nil {
		t.Fatalf("expected a save error")
	}
}

func TestHandlers(t *testing.T) {
	s := newSession(t)

	expected := []interp.HandlerRef{{ContainerID: 7, Name: "foo"}, {ContainerID: 7, Name: "bar"}}
	if got := s.Handlers(); !reflect.DeepEqual(got, expected) {
		t.Fatalf("wrong handlers. want=%+v, got=%+v", expected, got)
	}
}

func TestStrictOffsets(t *testing.T) {
	s := newSession(t, WithStrictOffsets(true))

	if _, err := s.Render(foo, render.ModeSource, false); err != nil {
		t.Fatalf("Render returned error: %s", err)
	}
	if got := s.Violations(foo, false); len(got) == 0 {
		t.Fatalf("expected the clamped end offset to be recorded")
	}
}

func TestViolationsArePerView(t *testing.T) {
	s := newSession(t, WithStrictOffsets(true))

	if _, err := s.Render(foo, render.ModeSource, false); err != nil {
		t.Fatalf("Render returned error: %s", err)
	}
	want := s.Violations(foo, false)
	if len(want) == 0 {
		t.Fatalf("expected the clamped end offset to be recorded")
	}

	if _, err := s.Render(foo, render.ModeBytecode, true); err != nil {
		t.Fatalf("Render returned error: %s", err)
	}
	if got := s.Violations(foo, false); !reflect.DeepEqual(got, want) {
		t.Fatalf("rendering the dot syntax view changed the keyword view. want=%v, got=%v", want, got)
	}
}
