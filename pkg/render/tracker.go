package render

// Tracker picks the single line flagged as executing in one render pass: the
// first tracked line whose offset is at or after the paused PC.
type Tracker struct {
	active bool
	shown  bool
	pc     uint32
}

// NewTracker returns a tracker for a handler paused at pc, or an inactive
// tracker when pc is nil.
func NewTracker(pc *uint32) Tracker {
	if pc == nil {
		return Tracker{}
	}
	return Tracker{active: true, pc: *pc}
}

// Check reports whether the line at offset is the current statement.
func (t *Tracker) Check(offset uint32) bool {
	if !t.active || t.shown {
		return false
	}
	if offset >= t.pc {
		t.shown = true
		return true
	}
	return false
}

func (t *Tracker) Shown() bool {
	return t.shown
}

// Reset returns the tracker to NotYetShown.
func (t *Tracker) Reset() {
	t.shown = false
}
