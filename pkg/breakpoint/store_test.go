package breakpoint

import (
	"errors"
	"testing"
)

func TestAddDuplicate(t *testing.T) {
	s := NewStore(nil)

	id, err := s.Add(KindFunction, 1, "foo", 4)
	if err != nil {
		t.Fatalf("Add failed: %s", err)
	}

	_, err = s.Add(KindFunction, 1, "foo", 4)
	if !errors.Is(err, ErrDuplicateBreakpoint) {
		t.Fatalf("expected ErrDuplicateBreakpoint, got=%v", err)
	}

	if s.Len() != 1 {
		t.Fatalf("store has wrong size. want=1, got=%d", s.Len())
	}

	bp, ok := s.Lookup("foo", 1, 4)
	if !ok || bp.ID != id || !bp.Enabled {
		t.Fatalf("Lookup wrong. got=%+v, ok=%t", bp, ok)
	}
}

func TestKindIsPartOfKey(t *testing.T) {
	s := NewStore(nil)

	fn, err := s.Add(KindFunction, 1, "score", 0)
	if err != nil {
		t.Fatalf("Add failed: %s", err)
	}
	if _, err := s.Add(KindVariable, 1, "score", 0); err != nil {
		t.Fatalf("variable breakpoint on the same location rejected: %s", err)
	}
	if _, err := s.Add(KindVariable, 1, "score", 0); !errors.Is(err, ErrDuplicateBreakpoint) {
		t.Fatalf("expected ErrDuplicateBreakpoint, got=%v", err)
	}

	bp, ok := s.Lookup("score", 1, 0)
	if !ok || bp.ID != fn || bp.Kind != KindFunction {
		t.Fatalf("Lookup did not return the function breakpoint. got=%+v, ok=%t", bp, ok)
	}
	if len(s.ListOfKind(KindFunction)) != 1 {
		t.Fatalf("function list picked up the variable breakpoint")
	}
}

func TestKeysAreDistinct(t *testing.T) {
	s := NewStore(nil)

	keys := []struct {
		container int
		handler   string
		offset    uint32
	}{
		{1, "foo", 4},
		{2, "foo", 4},
		{1, "bar", 4},
		{1, "foo", 5},
	}

	for i, k := range keys {
		if _, err := s.Add(KindFunction, k.container, k.handler, k.offset); err != nil {
			t.Fatalf("keys[%d] - Add failed: %s", i, err)
		}
	}

	if _, ok := s.Lookup("foo", 3, 4); ok {
		t.Fatalf("Lookup matched a missing key")
	}
	if _, ok := s.Lookup("foo", 1, 3); ok {
		t.Fatalf("Lookup matched a neighbouring offset")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := NewStore(nil)
	id, _ := s.Add(KindFunction, 1, "foo", 4)

	s.Remove(id)
	s.Remove(id)

	if s.Len() != 0 {
		t.Fatalf("store not empty after remove. got=%d", s.Len())
	}
	if _, ok := s.Lookup("foo", 1, 4); ok {
		t.Fatalf("removed breakpoint still found")
	}

	again, err := s.Add(KindFunction, 1, "foo", 4)
	if err != nil {
		t.Fatalf("re-adding failed: %s", err)
	}
	if again <= id {
		t.Fatalf("ids are not monotonic. first=%d, second=%d", id, again)
	}
}

func TestSetEnabled(t *testing.T) {
	s := NewStore(nil)
	id, _ := s.Add(KindFunction, 1, "foo", 4)

	if err := s.SetEnabled(id, false); err != nil {
		t.Fatalf("SetEnabled failed: %s", err)
	}

	bp, _ := s.Lookup("foo", 1, 4)
	if bp.Enabled || bp.ID != id {
		t.Fatalf("breakpoint wrong after disable. got=%+v", bp)
	}

	if err := s.SetEnabled(99, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}

func TestToggle(t *testing.T) {
	s := NewStore(nil)

	id, present := s.Toggle("foo", 1, 10)
	if !present {
		t.Fatalf("first toggle did not add")
	}
	if _, ok := s.Lookup("foo", 1, 10); !ok {
		t.Fatalf("toggled breakpoint not found")
	}

	removed, present := s.Toggle("foo", 1, 10)
	if present || removed != id {
		t.Fatalf("second toggle wrong. id=%d, present=%t", removed, present)
	}
	if s.Len() != 0 {
		t.Fatalf("store not empty. got=%d", s.Len())
	}
}

func TestListOfKind(t *testing.T) {
	s := NewStore(nil)
	s.Add(KindFunction, 1, "b", 2)
	s.Add(KindMovieFrame, 0, "", 12)
	s.Add(KindFunction, 1, "a", 0)

	list := s.ListOfKind(KindFunction)
	if len(list) != 2 {
		t.Fatalf("wrong number of function breakpoints. want=2, got=%d", len(list))
	}
	if list[0].Handler != "b" || list[1].Handler != "a" {
		t.Fatalf("list not ordered by id. got=%+v", list)
	}

	if _, ok := s.Lookup("", 0, 12); ok {
		t.Fatalf("Lookup returned a frame breakpoint")
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	s := NewStore(nil)
	s.Add(KindFunction, 1, "foo", 4)
	s.Add(KindFunction, 2, "foo", 4)

	snap := s.Snapshot(1)
	s.Toggle("foo", 1, 4)

	if _, ok := snap.Lookup("foo", 1, 4); !ok {
		t.Fatalf("snapshot changed after store mutation")
	}
	if _, ok := snap.Lookup("foo", 2, 4); ok {
		t.Fatalf("snapshot contains another container")
	}
}

func TestRestoreKeepsIDs(t *testing.T) {
	s := NewStore(nil)
	if err := s.Restore(Breakpoint{ID: 7, Kind: KindFunction, Key: Key{1, "foo", 4}, Enabled: false}); err != nil {
		t.Fatalf("Restore failed: %s", err)
	}

	id, _ := s.Add(KindFunction, 1, "foo", 6)
	if id != 8 {
		t.Fatalf("next id wrong. want=8, got=%d", id)
	}

	bp, _ := s.Lookup("foo", 1, 4)
	if bp.ID != 7 || bp.Enabled {
		t.Fatalf("restored breakpoint wrong. got=%+v", bp)
	}
}
