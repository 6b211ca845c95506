package collections

import (
	"fmt"

	"github.com/cellarkv/cellar"
)

// maxProbeHops bounds the quadratic probe sequence. Exhausting it means the
// table is pathologically overloaded or the hash degenerate; both are fatal.
const maxProbeHops = 32

const (
	slotOccupied uint8 = iota
	slotRemoved
)

// mapSlot is one persisted table slot. A Removed tombstone is itself
// persisted so probe sequences stay correct after deletion: open addressing
// must distinguish "never used" from "used then vacated".
type mapSlot[K comparable, V any] struct {
	Kind uint8 `msgpack:"k"`
	Key  K     `msgpack:"y"`
	Val  V     `msgpack:"v"`
}

type mapHeader struct {
	Len      uint32 `msgpack:"l"`
	Capacity uint32 `msgpack:"c"`
	Tombs    uint32 `msgpack:"t"`
}

// HashMap is an open-addressing hash map over storage cells: quadratic
// probing, tombstones, a capacity fixed at construction and persisted in the
// header. Keys are hashed over their cell encoding (Keccak-256 by default).
//
// Tombstones are reclaimed only by an explicit Defrag; with high churn and
// no Defrag the average probe length grows unboundedly.
type HashMap[K comparable, V any] struct {
	header   *cellar.LazyCell[mapHeader]
	slots    *cellar.LazyIndexMap[mapSlot[K, V]]
	hasher   cellar.KeyHasher
	capacity uint32
}

type HashMapOption func(*hashMapConfig)

type hashMapConfig struct {
	hasher cellar.KeyHasher
}

// WithHasher overrides the probe hashing strategy. Every execution touching
// the same table must use the same strategy.
func WithHasher(h cellar.KeyHasher) HashMapOption {
	return func(cfg *hashMapConfig) { cfg.hasher = h }
}

func NewHashMap[K comparable, V any](l *cellar.Ledger, capacity uint32, opts ...HashMapOption) *HashMap[K, V] {
	if capacity == 0 {
		panic("collections: hash map capacity must be positive")
	}
	cfg := hashMapConfig{hasher: cellar.Keccak256Hasher{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &HashMap[K, V]{
		header:   cellar.NewLazyCell[mapHeader](l, nil),
		slots:    cellar.NewLazyIndexMap[mapSlot[K, V]](l),
		hasher:   cfg.hasher,
		capacity: capacity,
	}
}

func (m *HashMap[K, V]) hdr() mapHeader {
	if p := m.header.Get(); p != nil {
		return *p
	}
	return mapHeader{Capacity: m.capacity}
}

func (m *HashMap[K, V]) putHdr(h mapHeader) {
	m.header.Set(&h)
}

// Len returns the number of live key/value pairs.
func (m *HashMap[K, V]) Len() uint32 {
	return m.hdr().Len
}

func (m *HashMap[K, V]) IsEmpty() bool {
	return m.Len() == 0
}

// Capacity returns the fixed slot count of the table.
func (m *HashMap[K, V]) Capacity() uint32 {
	return m.hdr().Capacity
}

// Tombstones returns the number of Removed markers currently in the table.
func (m *HashMap[K, V]) Tombstones() uint32 {
	return m.hdr().Tombs
}

func (m *HashMap[K, V]) probeStart(key K) uint32 {
	h := m.hasher.HashKey(cellar.Encode(key))
	return uint32(h) % m.Capacity()
}

// probeInsert walks the probe sequence for an insert: an occupied slot with
// the same key means update in place, a tombstone or never-used slot is
// claimed. Exhausting the hops is fatal.
func (m *HashMap[K, V]) probeInsert(key K) (index uint32, sameKey bool) {
	capacity := m.Capacity()
	start := m.probeStart(key)
	for hop := uint32(0); hop < maxProbeHops; hop++ {
		idx := (start + hop*hop) % capacity
		slot := m.slots.Get(idx)
		switch {
		case slot == nil:
			return idx, false
		case slot.Kind == slotRemoved:
			return idx, false
		case slot.Key == key:
			return idx, true
		}
	}
	panic(fmt.Errorf("collections: probe sequence exhausted after %d hops inserting into hash map of capacity %d: %w",
		maxProbeHops, capacity, cellar.ErrNoFreeSlot))
}

// probeLookup walks the probe sequence for a lookup: a never-used slot ends
// the search, a tombstone keeps probing.
func (m *HashMap[K, V]) probeLookup(key K) (index uint32, found bool) {
	capacity := m.Capacity()
	start := m.probeStart(key)
	for hop := uint32(0); hop < maxProbeHops; hop++ {
		idx := (start + hop*hop) % capacity
		slot := m.slots.Get(idx)
		switch {
		case slot == nil:
			return 0, false
		case slot.Kind == slotRemoved:
			continue
		case slot.Key == key:
			return idx, true
		}
	}
	return 0, false
}

// Put inserts or updates the value for a key, returning the previous value
// if the key was present.
func (m *HashMap[K, V]) Put(key K, value V) *V {
	index, sameKey := m.probeInsert(key)
	newSlot := &mapSlot[K, V]{Kind: slotOccupied, Key: key, Val: value}
	if sameKey {
		old := m.slots.PutGet(index, newSlot)
		return &old.Val
	}
	hd := m.hdr()
	old := m.slots.PutGet(index, newSlot)
	if old != nil && old.Kind == slotRemoved {
		hd.Tombs--
	}
	hd.Len++
	m.putHdr(hd)
	return nil
}

// Get returns the value for a key, or nil if absent.
func (m *HashMap[K, V]) Get(key K) *V {
	index, found := m.probeLookup(key)
	if !found {
		return nil
	}
	return &m.slots.Get(index).Val
}

// GetMut returns the value for a key for mutation, or nil if absent.
func (m *HashMap[K, V]) GetMut(key K) *V {
	index, found := m.probeLookup(key)
	if !found {
		return nil
	}
	return &m.slots.GetMut(index).Val
}

// Contains reports whether the key is present.
func (m *HashMap[K, V]) Contains(key K) bool {
	_, found := m.probeLookup(key)
	return found
}

// Remove deletes the key and returns its value, leaving a tombstone so that
// other keys' probe sequences stay intact.
func (m *HashMap[K, V]) Remove(key K) *V {
	index, found := m.probeLookup(key)
	if !found {
		return nil
	}
	old := m.slots.PutGet(index, &mapSlot[K, V]{Kind: slotRemoved})
	hd := m.hdr()
	hd.Len--
	hd.Tombs++
	m.putHdr(hd)
	return &old.Val
}

// TakeDrop deletes the key without reading the value back.
func (m *HashMap[K, V]) TakeDrop(key K) bool {
	index, found := m.probeLookup(key)
	if !found {
		return false
	}
	m.slots.Put(index, &mapSlot[K, V]{Kind: slotRemoved})
	hd := m.hdr()
	hd.Len--
	hd.Tombs++
	m.putHdr(hd)
	return true
}

// Defrag rebuilds the table compactly, dropping every tombstone. O(capacity)
// cell reads; invoke it periodically when churn is high.
func (m *HashMap[K, V]) Defrag() {
	capacity := m.Capacity()
	type pair struct {
		key K
		val V
	}
	var pairs []pair
	for i := uint32(0); i < capacity; i++ {
		slot := m.slots.Get(i)
		if slot == nil {
			continue
		}
		if slot.Kind == slotOccupied {
			pairs = append(pairs, pair{slot.Key, slot.Val})
		}
		m.slots.Put(i, nil)
	}
	hd := m.hdr()
	hd.Len = 0
	hd.Tombs = 0
	m.putHdr(hd)
	for _, p := range pairs {
		m.Put(p.key, p.val)
	}
}

// Iter returns an iterator over live pairs in ascending slot order.
func (m *HashMap[K, V]) Iter() *HashMapIter[K, V] {
	return &HashMapIter[K, V]{m: m, left: m.Len()}
}

type HashMapIter[K comparable, V any] struct {
	m    *HashMap[K, V]
	slot uint32
	left uint32
}

// Remaining reports how many pairs the iterator has not yet yielded.
func (it *HashMapIter[K, V]) Remaining() uint32 {
	return it.left
}

// Next yields the next live pair, or ok=false when exhausted.
func (it *HashMapIter[K, V]) Next() (key K, value V, ok bool) {
	for it.left > 0 && it.slot < it.m.Capacity() {
		slot := it.m.slots.Get(it.slot)
		it.slot++
		if slot != nil && slot.Kind == slotOccupied {
			it.left--
			return slot.Key, slot.Val, true
		}
	}
	return key, value, false
}

// Footprint spans the header cell plus the slot range.
func (m *HashMap[K, V]) Footprint() uint64 {
	return m.header.Footprint() + m.slots.Footprint()
}

func (m *HashMap[K, V]) PullSpread(ptr *cellar.KeyPtr) {
	m.header.PullSpread(ptr)
	m.slots.PullSpread(ptr)
}

func (m *HashMap[K, V]) PushSpread(ptr *cellar.KeyPtr) {
	m.header.PushSpread(ptr)
	m.slots.PushSpread(ptr)
}

func (m *HashMap[K, V]) ClearSpread(ptr *cellar.KeyPtr) {
	capacity := m.Capacity()
	for i := uint32(0); i < capacity; i++ {
		m.slots.Put(i, nil)
	}
	m.header.ClearSpread(ptr)
	m.slots.PushSpread(ptr)
}
