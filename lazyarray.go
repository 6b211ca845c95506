package cellar

import (
	"fmt"
	"slices"
)

// LazyArray is the bounded cousin of LazyIndexMap: capacity cells behind one
// base key, fixed at construction. It is the engine for bounded collections.
//
// Accessing an index at or past the capacity would corrupt a neighboring
// field's cells, so it is fatal rather than a soft miss.
type LazyArray[V any] struct {
	ledger   *Ledger
	key      *Key
	capacity uint32
	cache    map[uint32]*Entry[V]
}

func NewLazyArray[V any](l *Ledger, capacity uint32) *LazyArray[V] {
	return &LazyArray[V]{
		ledger:   l,
		capacity: capacity,
		cache:    make(map[uint32]*Entry[V]),
	}
}

func (a *LazyArray[V]) Capacity() uint32 {
	return a.capacity
}

// Key returns the base key, or nil for a never-persisted array.
func (a *LazyArray[V]) Key() *Key {
	return a.key
}

func (a *LazyArray[V]) checkIndex(index uint32) {
	if index >= a.capacity {
		panic(fmt.Errorf("cellar: lazy array index %d out of capacity %d", index, a.capacity))
	}
}

func (a *LazyArray[V]) entryAt(index uint32) *Entry[V] {
	if e, ok := a.cache[index]; ok {
		return e
	}
	var e *Entry[V]
	if a.key == nil {
		e = NewEntry[V](nil, EntryPreserved)
	} else {
		e = NewEntry(ReadCell[V](a.ledger, a.key.Add(uint64(index))), EntryPreserved)
	}
	a.cache[index] = e
	return e
}

// Get returns the value at index, or nil if absent.
func (a *LazyArray[V]) Get(index uint32) *V {
	a.checkIndex(index)
	return a.entryAt(index).Value()
}

// GetMut returns the value at index for mutation.
func (a *LazyArray[V]) GetMut(index uint32) *V {
	a.checkIndex(index)
	return a.entryAt(index).ValueMut()
}

// Put sets (or removes, for nil) the value at index without reading the old
// one.
func (a *LazyArray[V]) Put(index uint32, value *V) {
	a.checkIndex(index)
	if e, ok := a.cache[index]; ok {
		e.Put(value)
		return
	}
	a.cache[index] = NewEntry(value, EntryMutated)
}

// PutGet sets the value at index and returns the previous one.
func (a *LazyArray[V]) PutGet(index uint32, value *V) *V {
	a.checkIndex(index)
	return a.entryAt(index).Put(value)
}

// Swap transposes the values of two indices.
func (a *LazyArray[V]) Swap(x, y uint32) {
	a.checkIndex(x)
	a.checkIndex(y)
	if x == y {
		return
	}
	ex, ey := a.entryAt(x), a.entryAt(y)
	vx, vy := ex.Value(), ey.Value()
	if vx == nil && vy == nil {
		return
	}
	ex.Put(vy)
	ey.Put(vx)
}

// ClearAt removes the cell at index immediately.
func (a *LazyArray[V]) ClearAt(index uint32) {
	a.checkIndex(index)
	if a.key != nil {
		a.ledger.Clear(a.key.Add(uint64(index)))
	}
	a.cache[index] = NewEntry[V](nil, EntryPreserved)
}

func (a *LazyArray[V]) cachedIndices() []uint32 {
	indices := make([]uint32, 0, len(a.cache))
	for i := range a.cache {
		indices = append(indices, i)
	}
	slices.Sort(indices)
	return indices
}

// Footprint reserves one cell per slot.
func (a *LazyArray[V]) Footprint() uint64 { return uint64(a.capacity) }

// PullSpread binds the base key; no cells are read.
func (a *LazyArray[V]) PullSpread(ptr *KeyPtr) {
	at := ptr.Advance(a.Footprint())
	a.key = &at
	a.cache = make(map[uint32]*Entry[V])
}

// PushSpread flushes mutated cached entries only, never all capacity slots.
func (a *LazyArray[V]) PushSpread(ptr *KeyPtr) {
	at := ptr.Advance(a.Footprint())
	if a.key == nil {
		a.key = &at
	}
	for _, i := range a.cachedIndices() {
		a.cache[i].PushPackedRoot(a.ledger, at.Add(uint64(i)))
	}
}

// ClearSpread removes every slot's cell. For untouched arrays this is a
// blind clear of the whole range, so it is bounded by the cleanup threshold:
// clearing a huge vacant region cell by cell is almost certainly a bug in
// the caller's layout.
func (a *LazyArray[V]) ClearSpread(ptr *KeyPtr) {
	at := ptr.Advance(a.Footprint())
	if a.key == nil {
		a.key = &at
	}
	assertCleanupFootprint(a.Footprint())
	for i := uint32(0); i < a.capacity; i++ {
		if e, ok := a.cache[i]; ok {
			e.ClearPackedRoot(a.ledger, at.Add(uint64(i)))
		} else {
			a.ledger.Clear(at.Add(uint64(i)))
		}
	}
}
