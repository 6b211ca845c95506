package cellar

import "slices"

// imapFootprint is the reserved address range of a LazyIndexMap: one cell
// per uint32 index.
const imapFootprint = uint64(1) << 32

// LazyIndexMap is an unbounded lazy mapping from uint32 indices to values,
// one cell per index at base+index. It is the engine behind the unbounded
// collections: reads materialize a cache entry per index at most once, and
// the write-back pass visits only cached entries.
//
// A read or write of one index never touches the cells of any other index.
type LazyIndexMap[V any] struct {
	ledger *Ledger
	key    *Key
	cache  map[uint32]*Entry[V]
}

func NewLazyIndexMap[V any](l *Ledger) *LazyIndexMap[V] {
	return &LazyIndexMap[V]{
		ledger: l,
		cache:  make(map[uint32]*Entry[V]),
	}
}

// Key returns the base key, or nil for a never-persisted map.
func (m *LazyIndexMap[V]) Key() *Key {
	return m.key
}

// KeyAt returns the cell key of the given index, if the map is bound.
func (m *LazyIndexMap[V]) KeyAt(index uint32) (Key, bool) {
	if m.key == nil {
		return Key{}, false
	}
	return m.key.Add(uint64(index)), true
}

func (m *LazyIndexMap[V]) entryAt(index uint32) *Entry[V] {
	if e, ok := m.cache[index]; ok {
		return e
	}
	var e *Entry[V]
	if m.key == nil {
		e = NewEntry[V](nil, EntryPreserved)
	} else {
		e = NewEntry(ReadCell[V](m.ledger, m.key.Add(uint64(index))), EntryPreserved)
	}
	m.cache[index] = e
	return e
}

// Get returns the value at index, or nil if absent.
func (m *LazyIndexMap[V]) Get(index uint32) *V {
	return m.entryAt(index).Value()
}

// GetMut returns the value at index for mutation.
func (m *LazyIndexMap[V]) GetMut(index uint32) *V {
	return m.entryAt(index).ValueMut()
}

// Put sets (or removes, for nil) the value at index without reading the old
// one. The removal itself is deferred to the write-back pass.
func (m *LazyIndexMap[V]) Put(index uint32, value *V) {
	if e, ok := m.cache[index]; ok {
		e.Put(value)
		return
	}
	m.cache[index] = NewEntry(value, EntryMutated)
}

// PutGet sets the value at index and returns the previous one, materializing
// it if necessary.
func (m *LazyIndexMap[V]) PutGet(index uint32, value *V) *V {
	return m.entryAt(index).Put(value)
}

// Swap transposes the values of two indices. When both are absent nothing is
// marked mutated, so no write happens either way.
func (m *LazyIndexMap[V]) Swap(x, y uint32) {
	if x == y {
		return
	}
	ex, ey := m.entryAt(x), m.entryAt(y)
	vx, vy := ex.Value(), ey.Value()
	if vx == nil && vy == nil {
		return
	}
	ex.Put(vy)
	ey.Put(vx)
}

// ClearAt removes the cell at index immediately, bypassing the write-back
// pass. Used by owning structures when tearing a region down.
func (m *LazyIndexMap[V]) ClearAt(index uint32) {
	if m.key != nil {
		m.ledger.Clear(m.key.Add(uint64(index)))
	}
	m.cache[index] = NewEntry[V](nil, EntryPreserved)
}

func (m *LazyIndexMap[V]) cachedIndices() []uint32 {
	indices := make([]uint32, 0, len(m.cache))
	for i := range m.cache {
		indices = append(indices, i)
	}
	slices.Sort(indices)
	return indices
}

// Footprint reserves one cell per possible index.
func (m *LazyIndexMap[V]) Footprint() uint64 { return imapFootprint }

// PullSpread binds the base key; no cells are read.
func (m *LazyIndexMap[V]) PullSpread(ptr *KeyPtr) {
	at := ptr.Advance(imapFootprint)
	m.key = &at
	m.cache = make(map[uint32]*Entry[V])
}

// PushSpread flushes mutated cached entries only; untouched indices cost
// nothing no matter how large the map's reserved range is.
func (m *LazyIndexMap[V]) PushSpread(ptr *KeyPtr) {
	at := ptr.Advance(imapFootprint)
	if m.key == nil {
		m.key = &at
	}
	for _, i := range m.cachedIndices() {
		m.cache[i].PushPackedRoot(m.ledger, at.Add(uint64(i)))
	}
}

// ClearSpread removes the cells of all cached indices. Bounded clears of
// live regions are the owning structure's job (it knows its length); an
// unbounded map cannot enumerate 2^32 cells.
func (m *LazyIndexMap[V]) ClearSpread(ptr *KeyPtr) {
	at := ptr.Advance(imapFootprint)
	if m.key == nil {
		m.key = &at
	}
	for _, i := range m.cachedIndices() {
		m.cache[i].ClearPackedRoot(m.ledger, at.Add(uint64(i)))
	}
}
