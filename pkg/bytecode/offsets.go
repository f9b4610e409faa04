package bytecode

import (
	"errors"
	"fmt"
)

var ErrOffsetOutOfRange = errors.New("logical position out of range")

// OffsetIndex maps logical positions, as stored on AST nodes, to byte
// offsets. Resolve clamps out-of-range positions to the nearest end.
type OffsetIndex struct {
	offsets    []uint32
	visited    []uint32
	violations []int
	strict     bool
}

func NewOffsetIndex(offsets []uint32) *OffsetIndex {
	return &OffsetIndex{offsets: offsets}
}

// IndexInstructions builds an index with one logical position per instruction.
func IndexInstructions(instructions []Instruction) *OffsetIndex {
	offsets := make([]uint32, len(instructions))
	for i, ins := range instructions {
		offsets[i] = ins.Pos
	}
	return NewOffsetIndex(offsets)
}

// SetStrict makes Resolve record every clamped position as a violation.
func (x *OffsetIndex) SetStrict(strict bool) {
	x.strict = strict
}

func (x *OffsetIndex) Len() int {
	return len(x.offsets)
}

func (x *OffsetIndex) Resolve(logical int) uint32 {
	if len(x.offsets) == 0 {
		x.visited = append(x.visited, 0)
		return 0
	}

	pos := logical
	if pos < 0 {
		pos = 0
	} else if pos >= len(x.offsets) {
		pos = len(x.offsets) - 1
	}
	if pos != logical && x.strict {
		x.violations = append(x.violations, logical)
	}

	offset := x.offsets[pos]
	x.visited = append(x.visited, offset)
	return offset
}

// ResolveStrict resolves without clamping.
func (x *OffsetIndex) ResolveStrict(logical int) (uint32, error) {
	if logical < 0 || logical >= len(x.offsets) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrOffsetOutOfRange, logical, len(x.offsets))
	}
	return x.Resolve(logical), nil
}

// Visited returns the offsets resolved since the last Reset.
func (x *OffsetIndex) Visited() []uint32 {
	return x.visited
}

// Violations returns the logical positions clamped in strict mode.
func (x *OffsetIndex) Violations() []int {
	return x.violations
}

// Reset clears the per-render bookkeeping.
func (x *OffsetIndex) Reset() {
	x.visited = x.visited[:0]
	x.violations = x.violations[:0]
}
