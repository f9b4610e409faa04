package interp

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"lingoscope/pkg/decompiler"
)

var ErrNoHandler = errors.New("no such handler")

// Runtime is an in-process host: a set of decompiled scripts and the call
// stack of whatever is driving them.
type Runtime struct {
	mu      sync.RWMutex
	scripts map[int]*decompiler.Script
	order   []int
	stack   *CallStack
	log     *slog.Logger
}

func NewRuntime(logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		scripts: make(map[int]*decompiler.Script),
		stack:   NewCallStack(),
		log:     logger,
	}
}

// AddScript registers a script, replacing any script with the same id.
func (r *Runtime) AddScript(s *decompiler.Script) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scripts[s.ID]; !ok {
		r.order = append(r.order, s.ID)
		sort.Ints(r.order)
	}
	r.scripts[s.ID] = s
}

func (r *Runtime) Script(id int) (*decompiler.Script, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scripts[id]
	return s, ok
}

// Scripts returns every script ordered by id.
func (r *Runtime) Scripts() []*decompiler.Script {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*decompiler.Script, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.scripts[id])
	}
	return out
}

func (r *Runtime) Stack() *CallStack {
	return r.stack
}

// Handler returns the script and handler a reference points at.
func (r *Runtime) Handler(ref HandlerRef) (*decompiler.Script, *decompiler.Handler, bool) {
	s, ok := r.Script(ref.ContainerID)
	if !ok {
		return nil, nil, false
	}
	h, ok := s.Handler(ref.Name)
	if !ok {
		return nil, nil, false
	}
	return s, h, true
}

// FindHandler looks a handler up by name across every container. A name of
// the form "id:name" restricts the search to one container.
func (r *Runtime) FindHandler(name string) (HandlerRef, error) {
	container := -1
	if before, after, ok := strings.Cut(name, ":"); ok {
		var id int
		if _, err := fmt.Sscanf(before, "%d", &id); err == nil {
			container = id
			name = after
		}
	}

	for _, s := range r.Scripts() {
		if container >= 0 && s.ID != container {
			continue
		}
		if _, ok := s.Handler(name); ok {
			return HandlerRef{ContainerID: s.ID, Name: name}, nil
		}
	}

	if suggestions := r.Suggest(name); len(suggestions) > 0 {
		return HandlerRef{}, fmt.Errorf("%w: %s (did you mean %s?)", ErrNoHandler, name, strings.Join(suggestions, ", "))
	}
	return HandlerRef{}, fmt.Errorf("%w: %s", ErrNoHandler, name)
}

// HandlerNames lists every handler as "id:name".
func (r *Runtime) HandlerNames() []string {
	var names []string
	for _, s := range r.Scripts() {
		for _, h := range s.Handlers {
			names = append(names, fmt.Sprintf("%d:%s", s.ID, h.Name))
		}
	}
	return names
}

// Suggest returns up to three handler names close to name.
func (r *Runtime) Suggest(name string) []string {
	seen := map[string]bool{}
	var candidates []string
	for _, s := range r.Scripts() {
		for _, h := range s.Handlers {
			if !seen[h.Name] {
				seen[h.Name] = true
				candidates = append(candidates, h.Name)
			}
		}
	}

	ranks := fuzzy.RankFindFold(name, candidates)
	sort.Sort(ranks)

	var out []string
	for _, rank := range ranks {
		out = append(out, rank.Target)
	}
	if len(out) == 0 {
		for _, c := range candidates {
			if fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(c)) <= 2 {
				out = append(out, c)
			}
		}
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func (r *Runtime) CurrentPausedFrame() (Frame, bool) {
	if !r.stack.Paused() {
		return Frame{}, false
	}
	return r.stack.Top()
}

func (r *Runtime) ResolveCallTarget(index int, hint NamespaceHint) (HandlerRef, bool) {
	caller, ok := r.Script(hint.ContainerID)
	if !ok {
		return HandlerRef{}, false
	}

	if hint.Namespace == NamespaceLocal {
		if index < 0 || index >= len(caller.Handlers) {
			return HandlerRef{}, false
		}
		return HandlerRef{ContainerID: caller.ID, Name: caller.Handlers[index].Name}, true
	}

	name, ok := caller.NameAt(index)
	if !ok {
		return HandlerRef{}, false
	}
	if _, ok := caller.Handler(name); ok {
		return HandlerRef{ContainerID: caller.ID, Name: name}, true
	}
	for _, s := range r.Scripts() {
		if _, ok := s.Handler(name); ok {
			return HandlerRef{ContainerID: s.ID, Name: name}, true
		}
	}

	r.log.Debug("call target not found", "name", name, "container", hint.ContainerID)
	return HandlerRef{}, false
}

// Pause pushes a frame for the handler and stops at pc.
func (r *Runtime) Pause(ref HandlerRef, pc uint32) error {
	if _, _, ok := r.Handler(ref); !ok {
		return fmt.Errorf("%w: %d:%s", ErrNoHandler, ref.ContainerID, ref.Name)
	}
	if err := r.stack.Push(Frame{ContainerID: ref.ContainerID, Handler: ref.Name, PC: pc}); err != nil {
		return err
	}
	r.stack.SetPaused(true)
	r.log.Info("paused", "container", ref.ContainerID, "handler", ref.Name, "pc", pc)
	return nil
}

// Resume pops the paused frame.
func (r *Runtime) Resume() {
	r.stack.SetPaused(false)
	r.stack.Pop()
	r.log.Info("resumed")
}
