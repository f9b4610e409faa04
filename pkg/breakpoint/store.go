package breakpoint

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	ErrDuplicateBreakpoint = errors.New("duplicate breakpoint")
	ErrNotFound            = errors.New("breakpoint not found")
)

type Kind int

const (
	// KindFunction breaks at a byte offset inside a handler
	KindFunction Kind = iota
	KindMovieFrame
	KindVariable
	KindEntity
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMovieFrame:
		return "frame"
	case KindVariable:
		return "variable"
	case KindEntity:
		return "entity"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Key identifies a breakpoint location.
type Key struct {
	ContainerID int
	Handler     string
	Offset      uint32
}

type Breakpoint struct {
	ID      int
	Kind    Kind
	Key
	Enabled bool
}

type storeKey struct {
	kind Kind
	key  Key
}

// Store holds every breakpoint of a debugger session. It is safe for
// concurrent use.
type Store struct {
	mu     sync.RWMutex
	nextID int
	byID   map[int]*Breakpoint
	byKey  map[storeKey]int
	log    *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		nextID: 1,
		byID:   make(map[int]*Breakpoint),
		byKey:  make(map[storeKey]int),
		log:    logger,
	}
}

// Lookup finds the function breakpoint at exactly (handler, container, offset).
func (s *Store) Lookup(handler string, containerID int, offset uint32) (Breakpoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[storeKey{KindFunction, Key{containerID, handler, offset}}]
	if !ok {
		return Breakpoint{}, false
	}
	return *s.byID[id], true
}

// Add inserts an enabled breakpoint and returns its id.
func (s *Store) Add(kind Kind, containerID int, handler string, offset uint32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.add(Breakpoint{Kind: kind, Key: Key{containerID, handler, offset}, Enabled: true})
}

// Restore inserts a previously saved breakpoint keeping its id.
func (s *Store) Restore(bp Breakpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[bp.ID]; ok || bp.ID <= 0 {
		return fmt.Errorf("%w: id %d", ErrDuplicateBreakpoint, bp.ID)
	}
	_, err := s.add(bp)
	return err
}

func (s *Store) add(bp Breakpoint) (int, error) {
	sk := storeKey{bp.Kind, bp.Key}
	if id, ok := s.byKey[sk]; ok {
		return id, fmt.Errorf("%w: %s %d:%s@%d", ErrDuplicateBreakpoint, bp.Kind, bp.ContainerID, bp.Handler, bp.Offset)
	}

	if bp.ID == 0 {
		bp.ID = s.nextID
	}
	if bp.ID >= s.nextID {
		s.nextID = bp.ID + 1
	}

	s.byID[bp.ID] = &bp
	s.byKey[sk] = bp.ID
	s.log.Debug("breakpoint added", "id", bp.ID, "kind", bp.Kind.String(), "container", bp.ContainerID, "handler", bp.Handler, "offset", bp.Offset)
	return bp.ID, nil
}

// Remove deletes a breakpoint. Removing an unknown id does nothing.
func (s *Store) Remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bp, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byKey, storeKey{bp.Kind, bp.Key})
	delete(s.byID, id)
	s.log.Debug("breakpoint removed", "id", id)
}

func (s *Store) SetEnabled(id int, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bp, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	bp.Enabled = enabled
	return nil
}

// Toggle removes the function breakpoint at the location if there is one,
// otherwise adds it. It reports whether a breakpoint exists afterwards.
func (s *Store) Toggle(handler string, containerID int, offset uint32) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sk := storeKey{KindFunction, Key{containerID, handler, offset}}
	if id, ok := s.byKey[sk]; ok {
		delete(s.byKey, sk)
		delete(s.byID, id)
		s.log.Debug("breakpoint removed", "id", id)
		return id, false
	}

	id, _ := s.add(Breakpoint{Kind: KindFunction, Key: sk.key, Enabled: true})
	return id, true
}

// ListOfKind returns the breakpoints of one kind ordered by id.
func (s *Store) ListOfKind(kind Kind) []Breakpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Breakpoint
	for _, bp := range s.byID {
		if bp.Kind == kind {
			out = append(out, *bp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// All returns every breakpoint ordered by id.
func (s *Store) All() []Breakpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Breakpoint, 0, len(s.byID))
	for _, bp := range s.byID {
		out = append(out, *bp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Snapshot copies the function breakpoints of one container for a render pass.
func (s *Store) Snapshot(containerID int) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{}
	for sk, id := range s.byKey {
		if sk.kind == KindFunction && sk.key.ContainerID == containerID {
			snap[sk.key] = *s.byID[id]
		}
	}
	return snap
}

// Snapshot is a read-only view of function breakpoints.
type Snapshot map[Key]Breakpoint

func (s Snapshot) Lookup(handler string, containerID int, offset uint32) (Breakpoint, bool) {
	bp, ok := s[Key{containerID, handler, offset}]
	return bp, ok
}
