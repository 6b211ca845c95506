package cellar

import "fmt"

// Spread is the layout contract of a value whose fields are distributed over
// an address range: each field occupies its own footprint-worth of keys.
//
// Pull, push and clear must advance the cursor identically even for absent
// values, so sibling fields keep stable addresses. Packed layout (the whole
// value in one cell) is deliberately not part of this interface: unbounded
// structures have no bounded byte encoding, and bounded leaves go through
// LazyCell instead.
type Spread interface {
	// Footprint is the number of cells the spread encoding reserves.
	Footprint() uint64
	// PullSpread binds the value to its address range. Lazy structures
	// read nothing here.
	PullSpread(ptr *KeyPtr)
	// PushSpread writes back exactly the mutated cells of the range.
	PushSpread(ptr *KeyPtr)
	// ClearSpread removes the value's cells.
	ClearSpread(ptr *KeyPtr)
}

// FootprintCleanupThreshold bounds blind clears of unmaterialized regions.
// Above it ClearSpread panics instead of issuing a possibly enormous number
// of cell clears. Known limitation: a larger region abandoned without an
// explicit bounded clear keeps its stale cells.
const FootprintCleanupThreshold = 32

func assertCleanupFootprint(footprint uint64) {
	if footprint > FootprintCleanupThreshold {
		panic(fmt.Errorf("cellar: cannot clean up a region with footprint %d, threshold is %d",
			footprint, FootprintCleanupThreshold))
	}
}

// Binder assigns base addresses to the top-level storage fields of one
// logical contract instance. Fields get contiguous, non-aliasing ranges in
// Bind order; Pull, Push and Clear walk them in that same order, which is
// what keeps the layout stable across executions.
//
// This replaces any global key allocator: address assignment is explicit
// state of the execution, not process-wide state.
type Binder struct {
	ledger *Ledger
	root   Key
	fields []Spread
}

func NewBinder(l *Ledger, root Key) *Binder {
	return &Binder{ledger: l, root: root}
}

func (b *Binder) Ledger() *Ledger { return b.ledger }

// Bind appends top-level fields. Order is part of the persistent layout and
// must never change for an existing ledger.
func (b *Binder) Bind(fields ...Spread) {
	b.fields = append(b.fields, fields...)
}

// Pull binds every field to its address range. Lazy structures defer all
// reads until first access.
func (b *Binder) Pull() {
	ptr := NewKeyPtr(b.root)
	for _, f := range b.fields {
		f.PullSpread(ptr)
	}
}

// Push is the commit pass: one walk over every live cache entry, performing
// exactly the writes and clears required by mutated entries.
func (b *Binder) Push() {
	ptr := NewKeyPtr(b.root)
	for _, f := range b.fields {
		f.PushSpread(ptr)
	}
}

// Clear removes the cells of every field.
func (b *Binder) Clear() {
	ptr := NewKeyPtr(b.root)
	for _, f := range b.fields {
		f.ClearSpread(ptr)
	}
}
