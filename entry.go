package cellar

// EntryState is the mutation axis of a cache entry: whether the cached value
// needs to be synchronized with the ledger. Whether a value has been loaded
// at all is a separate axis, tracked by the owning lazy structure.
type EntryState uint8

const (
	// EntryPreserved means the value mirrors the ledger and needs no write-back.
	EntryPreserved EntryState = iota
	// EntryMutated means the value must be synchronized with the ledger.
	EntryMutated
)

func (s EntryState) IsMutated() bool { return s == EntryMutated }

func (s EntryState) String() string {
	if s == EntryMutated {
		return "Mutated"
	}
	return "Preserved"
}

// Entry is the unit of mutation tracking: one optional materialized value
// (nil = absent/removed) plus the write-back flag. An entry is exclusively
// owned by the lazy cell/array/map that materialized it and is never shared.
type Entry[T any] struct {
	value *T
	state EntryState
}

func NewEntry[T any](value *T, state EntryState) *Entry[T] {
	return &Entry[T]{value: value, state: state}
}

func (e *Entry[T]) State() EntryState { return e.state }

// ReplaceState swaps in a new state and returns the previous one.
func (e *Entry[T]) ReplaceState(s EntryState) EntryState {
	old := e.state
	e.state = s
	return old
}

// Value returns the cached value without affecting the entry state.
func (e *Entry[T]) Value() *T {
	return e.value
}

// ValueMut returns the cached value for external mutation. An occupied entry
// transitions to Mutated since the caller can change the value through the
// returned pointer.
func (e *Entry[T]) ValueMut() *T {
	if e.value != nil {
		e.state = EntryMutated
	}
	return e.value
}

// Put replaces the value and returns the old one. The entry becomes Mutated
// as long as at least one of the old and new values is present; replacing
// absent with absent changes nothing worth writing back.
func (e *Entry[T]) Put(newValue *T) (old *T) {
	old = e.value
	e.value = newValue
	if old != nil || newValue != nil {
		e.state = EntryMutated
	}
	return old
}

// PushPackedRoot performs the write-back at the given key iff the entry
// observed a mutation, then resets it to Preserved. Skipping unchanged
// entries here is the engine's central I/O-minimization guarantee.
func (e *Entry[T]) PushPackedRoot(l *Ledger, at Key) {
	if e.ReplaceState(EntryPreserved).IsMutated() {
		if e.value != nil {
			WriteCell(l, at, e.value)
		} else {
			l.Clear(at)
		}
	}
}

// ClearPackedRoot removes the backing cell regardless of state.
func (e *Entry[T]) ClearPackedRoot(l *Ledger, at Key) {
	l.Clear(at)
	e.value = nil
	e.state = EntryPreserved
}
