package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"lingoscope/pkg/assembler"
	"lingoscope/pkg/breakpoint"
	"lingoscope/pkg/config"
	"lingoscope/pkg/decompiler"
	"lingoscope/pkg/persist"
)

const fixture = `
script 3 "Counter"
handler main
  local i
  pushint8 1
  setlocal i
@top:
  getlocal i
  pushint8 10
  lteq
  jmpifz @out
  pusharglistnoret 0
  extcall beep
  pusharglistnoret 0
  localcall tick
  getlocal i
  pushint8 1
  add
  setlocal i
  endrepeat @top
@out:
  pusharglistnoret 0
  extcall beep
  ret
end
handler tick
  ret
end
`

func TestAnalyzeScript(t *testing.T) {
	scripts, err := assembler.AssembleString(fixture)
	if err != nil {
		t.Fatalf("assembler error: %s", err)
	}
	if err := decompiler.DecompileScript(scripts[0], nil); err != nil {
		t.Fatalf("decompiler error: %s", err)
	}

	insights := analyzeScript(scripts[0])
	if len(insights.Handlers) != 2 {
		t.Fatalf("wrong number of handlers. got=%d", len(insights.Handlers))
	}

	first := insights.Handlers[0]
	if !reflect.DeepEqual(first.Calls, []string{"beep", "tick"}) {
		t.Errorf("wrong calls. got=%q", first.Calls)
	}
	if first.Loops != 1 || first.Branches != 1 {
		t.Errorf("wrong loop count. loops=%d, branches=%d", first.Loops, first.Branches)
	}

	var out bytes.Buffer
	printHandlerInsights(&out, insights)
	expected := "Script 3 \"Counter\": 2 handlers\n" +
		"  · on main  (" + fmt.Sprint(first.Bytes) + " bytes, 1 loops, 1 branches)\n" +
		"      calls beep, tick\n" +
		"  · on tick  (1 bytes, 0 loops, 0 branches)\n"
	if out.String() != expected {
		t.Errorf("wrong summary.\nwant=%q\ngot =%q", expected, out.String())
	}
}

func TestRootCommand(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	expected := []string{"ast", "breakpoints", "console", "disasm", "hashpw", "inspect", "render", "serve", "tokens"}
	for _, name := range expected {
		found := false
		for _, n := range names {
			if n == name {
				found = true
			}
		}
		if !found {
			t.Errorf("command %s is missing. got=%q", name, names)
		}
	}
}

func TestRenderBreaksAreNotSaved(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "counter.lasm")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("writing fixture: %s", err)
	}

	g := &globalConfig{
		cfg: &config.Config{DBDriver: "sqlite", DBDSN: filepath.Join(dir, "breakpoints.db")},
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	saved := []breakpoint.Breakpoint{
		{ID: 1, Kind: breakpoint.KindFunction, Key: breakpoint.Key{ContainerID: 3, Handler: "main", Offset: 0}, Enabled: true},
	}
	repo, err := persist.Open(ctx, g.cfg.DBDriver, g.cfg.DBDSN)
	if err != nil {
		t.Fatalf("persist.Open returned error: %s", err)
	}
	if err := repo.SaveBreakpoints(ctx, saved); err != nil {
		t.Fatalf("SaveBreakpoints returned error: %s", err)
	}
	repo.Close()

	opts := &renderOptions{mode: "bytecode", pc: -1, breaks: []uint{0, 0, 2}}
	var out bytes.Buffer
	if err := runRender(ctx, g, opts, path, "main", &out); err != nil {
		t.Fatalf("runRender returned error: %s", err)
	}
	for _, line := range []string{"* [    0]", "* [    2]"} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("render output has no breakpoint line %q. got=\n%s", line, out.String())
		}
	}

	repo, err = persist.Open(ctx, g.cfg.DBDriver, g.cfg.DBDSN)
	if err != nil {
		t.Fatalf("persist.Open returned error: %s", err)
	}
	defer repo.Close()
	got, err := repo.LoadBreakpoints(ctx)
	if err != nil {
		t.Fatalf("LoadBreakpoints returned error: %s", err)
	}
	if !reflect.DeepEqual(got, saved) {
		t.Fatalf("saved breakpoints changed.\nwant=%+v\ngot =%+v", saved, got)
	}
}
