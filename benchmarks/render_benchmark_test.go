package benchmarks

import (
	"context"
	"testing"

	"lingoscope/pkg/assembler"
	"lingoscope/pkg/interp"
	"lingoscope/pkg/render"
	"lingoscope/pkg/session"
)

var events []render.Event

var bench = interp.HandlerRef{ContainerID: 1, Name: "guards"}

func newSession(b *testing.B) *session.Session {
	b.Helper()

	s, err := assembler.AssembleString(guards(200))
	if err != nil {
		b.Fatal(err)
	}
	rt := interp.NewRuntime(nil)
	rt.AddScript(s[0])

	sess, err := session.New(context.Background(), rt)
	if err != nil {
		b.Fatal(err)
	}
	return sess
}

func benchmarkRender(b *testing.B, mode render.Mode, dot bool) {
	sess := newSession(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var err error
		if events, err = sess.Render(bench, mode, dot); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRenderSource(b *testing.B) {
	benchmarkRender(b, render.ModeSource, false)
}

func BenchmarkRenderDotSyntax(b *testing.B) {
	benchmarkRender(b, render.ModeSource, true)
}

func BenchmarkRenderBytecode(b *testing.B) {
	benchmarkRender(b, render.ModeBytecode, false)
}

// Paused near the end with a breakpoint on every tenth gutter.
func BenchmarkRenderPausedWithBreakpoints(b *testing.B) {
	sess := newSession(b)
	ctx := context.Background()

	first, err := sess.Render(bench, render.ModeSource, false)
	if err != nil {
		b.Fatal(err)
	}
	gutters := render.Gutters(first)
	for i := 0; i < len(gutters); i += 10 {
		sess.Apply(ctx, gutters[i].Toggle)
	}
	if err := sess.Pause(bench, gutters[len(gutters)-2].Offset); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if events, err = sess.Render(bench, render.ModeSource, false); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkText(b *testing.B) {
	sess := newSession(b)
	ev, err := sess.Render(bench, render.ModeSource, false)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = render.Text(ev)
	}
}
