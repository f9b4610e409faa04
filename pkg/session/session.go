package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"lingoscope/pkg/breakpoint"
	"lingoscope/pkg/decompiler"
	"lingoscope/pkg/interp"
	"lingoscope/pkg/render"
)

var ErrNoView = errors.New("no view for handler")

// Repository persists function breakpoints between runs.
type Repository interface {
	LoadBreakpoints(ctx context.Context) ([]breakpoint.Breakpoint, error)
	SaveBreakpoints(ctx context.Context, bps []breakpoint.Breakpoint) error
}

// Row is one entry of the function breakpoint list.
type Row struct {
	ID          int    `json:"id"`
	ContainerID int    `json:"container"`
	Handler     string `json:"handler"`
	Offset      uint32 `json:"offset"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description"`
}

type viewKey struct {
	containerID int
	handler     string
	dot         bool
}

// Session is one debugger session over a runtime: its breakpoints, its
// cached handler views and the paused frame.
type Session struct {
	mu      sync.Mutex
	runtime *interp.Runtime
	facade  *interp.Facade
	store   *breakpoint.Store
	views   map[viewKey]*render.ScriptView
	repo    Repository
	strict  bool
	log     *slog.Logger
}

type Option func(*Session)

// WithPersistence loads breakpoints from repo when the session starts and
// saves them after every change.
func WithPersistence(repo Repository) Option {
	return func(s *Session) { s.repo = repo }
}

// WithStrictOffsets makes every view record out-of-range offsets.
func WithStrictOffsets(strict bool) Option {
	return func(s *Session) { s.strict = strict }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.log = logger }
}

func New(ctx context.Context, rt *interp.Runtime, opts ...Option) (*Session, error) {
	s := &Session{
		runtime: rt,
		facade:  interp.NewFacade(rt),
		views:   make(map[viewKey]*render.ScriptView),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.store = breakpoint.NewStore(s.log)

	if s.repo != nil {
		bps, err := s.repo.LoadBreakpoints(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading breakpoints: %w", err)
		}
		for _, bp := range bps {
			if err := s.store.Restore(bp); err != nil {
				return nil, fmt.Errorf("restoring breakpoint %d: %w", bp.ID, err)
			}
		}
		s.log.Info("breakpoints loaded", "count", len(bps))
	}

	return s, nil
}

func (s *Session) Runtime() *interp.Runtime {
	return s.runtime
}

func (s *Session) Store() *breakpoint.Store {
	return s.store
}

// View returns the cached view of a handler, decompiling its script on first
// use.
func (s *Session) View(ref interp.HandlerRef, dot bool) (*render.ScriptView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(ref, dot)
}

func (s *Session) view(ref interp.HandlerRef, dot bool) (*render.ScriptView, error) {
	key := viewKey{ref.ContainerID, ref.Name, dot}
	if v, ok := s.views[key]; ok {
		return v, nil
	}

	script, h, ok := s.runtime.Handler(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %d:%s", ErrNoView, ref.ContainerID, ref.Name)
	}
	if h.AST == nil {
		if err := decompiler.DecompileScript(script, s.log); err != nil {
			return nil, fmt.Errorf("%w: %d:%s: %w", ErrNoView, ref.ContainerID, ref.Name, err)
		}
	}

	v := render.NewView(script, h)
	v.DotSyntax = dot
	if v.Offsets != nil {
		v.Offsets.SetStrict(s.strict)
	}
	s.views[key] = v
	return v, nil
}

// Render draws a handler. The program counter is refreshed from the paused
// frame on every call.
func (s *Session) Render(ref interp.HandlerRef, mode render.Mode, dot bool) ([]render.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.view(ref, dot)
	if err != nil {
		return nil, err
	}

	v.ProgramCounter = nil
	if pc, ok := s.facade.ProgramCounter(ref.ContainerID, ref.Name); ok {
		v.ProgramCounter = &pc
	}

	ctx := render.Context{
		Breakpoints: s.store.Snapshot(ref.ContainerID),
		Calls:       s.facade,
		Logger:      s.log,
	}
	return render.Render(ctx, v, mode), nil
}

// Violations returns the offsets the last render of a handler had to clamp.
func (s *Session) Violations(ref interp.HandlerRef, dot bool) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewKey{ref.ContainerID, ref.Name, dot}]
	if !ok || v.Offsets == nil {
		return nil
	}
	return v.Offsets.Violations()
}

// ToggleBreakpoint adds a function breakpoint at the location or removes the
// one already there. It returns the breakpoint id and whether one exists now.
func (s *Session) ToggleBreakpoint(ctx context.Context, handler string, containerID int, offset uint32) (int, bool, error) {
	id, set := s.store.Toggle(handler, containerID, offset)
	return id, set, s.save(ctx)
}

// Apply performs the toggle carried by a gutter.
func (s *Session) Apply(ctx context.Context, t render.Toggle) (int, bool, error) {
	return s.ToggleBreakpoint(ctx, t.Handler, t.ContainerID, t.Offset)
}

// ListFunctionBreakpoints returns every function breakpoint ordered by id.
func (s *Session) ListFunctionBreakpoints() []Row {
	bps := s.store.ListOfKind(breakpoint.KindFunction)
	rows := make([]Row, 0, len(bps))
	for _, bp := range bps {
		rows = append(rows, Row{
			ID:          bp.ID,
			ContainerID: bp.ContainerID,
			Handler:     bp.Handler,
			Offset:      bp.Offset,
			Enabled:     bp.Enabled,
			Description: fmt.Sprintf("%d: %s", bp.ContainerID, bp.Handler),
		})
	}
	return rows
}

func (s *Session) SetEnabled(ctx context.Context, id int, enabled bool) error {
	if err := s.store.SetEnabled(id, enabled); err != nil {
		return err
	}
	return s.save(ctx)
}

func (s *Session) Remove(ctx context.Context, id int) error {
	s.store.Remove(id)
	return s.save(ctx)
}

// Pause stops the runtime in a handler at pc.
func (s *Session) Pause(ref interp.HandlerRef, pc uint32) error {
	return s.runtime.Pause(ref, pc)
}

func (s *Session) Resume() {
	s.runtime.Resume()
}

// PausedFrame returns the frame the runtime is stopped in.
func (s *Session) PausedFrame() (interp.Frame, bool) {
	return s.facade.PausedFrame()
}

// Handlers lists every handler of the runtime.
func (s *Session) Handlers() []interp.HandlerRef {
	var refs []interp.HandlerRef
	for _, script := range s.runtime.Scripts() {
		for _, h := range script.Handlers {
			refs = append(refs, interp.HandlerRef{ContainerID: script.ID, Name: h.Name})
		}
	}
	return refs
}

func (s *Session) save(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.SaveBreakpoints(ctx, s.store.All()); err != nil {
		return fmt.Errorf("saving breakpoints: %w", err)
	}
	return nil
}
