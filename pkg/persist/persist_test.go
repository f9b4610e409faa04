package persist

import (
	"context"
	"reflect"
	"testing"

	"lingoscope/pkg/breakpoint"
)

func openMemory(t *testing.T) *Repo {
	t.Helper()
	r, err := Open(context.Background(), "sqlite", "file::memory:")
	if err != nil {
		t.Fatalf("Open returned error: %s", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSaveAndLoad(t *testing.T) {
	r := openMemory(t)
	ctx := context.Background()

	bps := []breakpoint.Breakpoint{
		{ID: 1, Kind: breakpoint.KindFunction, Key: breakpoint.Key{ContainerID: 7, Handler: "foo", Offset: 4}, Enabled: true},
		{ID: 3, Kind: breakpoint.KindVariable, Key: breakpoint.Key{ContainerID: 7, Handler: "x"}, Enabled: false},
	}
	if err := r.SaveBreakpoints(ctx, bps); err != nil {
		t.Fatalf("SaveBreakpoints returned error: %s", err)
	}

	got, err := r.LoadBreakpoints(ctx)
	if err != nil {
		t.Fatalf("LoadBreakpoints returned error: %s", err)
	}
	if !reflect.DeepEqual(got, bps) {
		t.Fatalf("wrong breakpoints.\nwant=%+v\ngot =%+v", bps, got)
	}

	if err := r.SaveBreakpoints(ctx, bps[1:]); err != nil {
		t.Fatalf("SaveBreakpoints returned error: %s", err)
	}
	got, _ = r.LoadBreakpoints(ctx)
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("save did not replace the table. got=%+v", got)
	}
}

func TestEmptyDatabase(t *testing.T) {
	r := openMemory(t)

	got, err := r.LoadBreakpoints(context.Background())
	if err != nil {
		t.Fatalf("LoadBreakpoints returned error: %s", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no breakpoints. got=%+v", got)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", ""); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		driver   string
		expected string
	}{
		{"sqlite", "VALUES (?, ?)"},
		{"mysql", "VALUES (?, ?)"},
		{"postgres", "VALUES ($1, $2)"},
	}

	for i, tt := range tests {
		r := &Repo{driver: tt.driver}
		if got := r.rebind("VALUES (?, ?)"); got != tt.expected {
			t.Errorf("tests[%d] - wrong query. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}
