// Package collections provides storage collections built on the cellar lazy
// engine: Vec, SmallVec, HashMap, Stash, BinaryHeap and Bitvec. Every
// collection addresses its cells through its own layout, materializes each
// backing cache entry at most once per execution, and writes back only what
// changed when its PushSpread runs.
package collections

import (
	"errors"
	"math"

	"github.com/cellarkv/cellar"
)

// ErrIndexOutOfBounds is returned by Set-style operations addressing an
// index past the collection length.
var ErrIndexOutOfBounds = errors.New("index out of bounds")

// Vec is an unbounded storage vector: the length in one lazy cell, elements
// addressed by base+index.
//
// Avoid unbounded iteration over big vectors; every yielded element is a
// (cached) cell access.
type Vec[T any] struct {
	len   *cellar.LazyCell[uint32]
	elems *cellar.LazyIndexMap[T]
}

func NewVec[T any](l *cellar.Ledger) *Vec[T] {
	return &Vec[T]{
		len:   cellar.NewLazyCell[uint32](l, nil),
		elems: cellar.NewLazyIndexMap[T](l),
	}
}

// Len returns the number of elements in the vector.
func (v *Vec[T]) Len() uint32 {
	if p := v.len.Get(); p != nil {
		return *p
	}
	return 0
}

func (v *Vec[T]) IsEmpty() bool {
	return v.Len() == 0
}

func (v *Vec[T]) setLen(n uint32) {
	v.len.Set(&n)
}

func (v *Vec[T]) withinBounds(index uint32) bool {
	return index < v.Len()
}

// Get returns the indexed element, or nil if index is out of bounds.
func (v *Vec[T]) Get(index uint32) *T {
	if !v.withinBounds(index) {
		return nil
	}
	return v.elems.Get(index)
}

// GetMut returns the indexed element for mutation, or nil if out of bounds.
func (v *Vec[T]) GetMut(index uint32) *T {
	if !v.withinBounds(index) {
		return nil
	}
	return v.elems.GetMut(index)
}

func (v *Vec[T]) First() *T {
	return v.Get(0)
}

func (v *Vec[T]) Last() *T {
	if v.IsEmpty() {
		return nil
	}
	return v.Get(v.Len() - 1)
}

func (v *Vec[T]) FirstMut() *T {
	return v.GetMut(0)
}

func (v *Vec[T]) LastMut() *T {
	if v.IsEmpty() {
		return nil
	}
	return v.GetMut(v.Len() - 1)
}

// Push appends an element to the back of the vector.
func (v *Vec[T]) Push(value T) {
	n := v.Len()
	if n == math.MaxUint32 {
		panic("collections: cannot push more elements into the storage vector")
	}
	v.setLen(n + 1)
	v.elems.Put(n, &value)
}

// Pop removes and returns the last element, or nil if the vector is empty.
func (v *Vec[T]) Pop() *T {
	if v.IsEmpty() {
		return nil
	}
	last := v.Len() - 1
	v.setLen(last)
	return v.elems.PutGet(last, nil)
}

// PopDrop removes the last element without reading it back, saving a read
// when the caller does not need the value. Reports whether an element was
// removed.
func (v *Vec[T]) PopDrop() bool {
	if v.IsEmpty() {
		return false
	}
	last := v.Len() - 1
	v.setLen(last)
	v.elems.Put(last, nil)
	return true
}

// Set overwrites the indexed element without reading the old one back.
func (v *Vec[T]) Set(index uint32, value T) error {
	if !v.withinBounds(index) {
		return ErrIndexOutOfBounds
	}
	v.elems.Put(index, &value)
	return nil
}

// Swap transposes the elements at the given indices. Out-of-bounds indices
// are fatal: proceeding would corrupt a neighboring cell.
func (v *Vec[T]) Swap(a, b uint32) {
	if !v.withinBounds(a) || !v.withinBounds(b) {
		panic("collections: vec swap indices are out of bounds")
	}
	v.elems.Swap(a, b)
}

// SwapRemove removes the indexed element and returns it, moving the last
// element into its slot. O(1) and not order-preserving.
func (v *Vec[T]) SwapRemove(index uint32) *T {
	if v.IsEmpty() {
		return nil
	}
	v.Swap(index, v.Len()-1)
	return v.Pop()
}

// SwapRemoveDrop removes the indexed element without reading it back,
// moving the last element into its slot. Reports whether an element was
// removed.
func (v *Vec[T]) SwapRemoveDrop(index uint32) bool {
	if v.IsEmpty() || !v.withinBounds(index) {
		return false
	}
	v.elems.Put(index, nil)
	last := v.Len() - 1
	lastVal := v.elems.PutGet(last, nil)
	v.elems.Put(index, lastVal)
	v.setLen(last)
	return true
}

// Clear removes all elements without reading any of them.
func (v *Vec[T]) Clear() {
	n := v.Len()
	for i := uint32(0); i < n; i++ {
		v.elems.Put(i, nil)
	}
	v.setLen(0)
}

// Iter returns a double-ended iterator over the elements.
func (v *Vec[T]) Iter() *VecIter[T] {
	return &VecIter[T]{vec: v, begin: 0, end: v.Len()}
}

// VecIter walks a Vec from both ends without double-counting the middle.
type VecIter[T any] struct {
	vec        *Vec[T]
	begin, end uint32
}

// Remaining reports how many elements the iterator has not yet yielded.
func (it *VecIter[T]) Remaining() uint32 {
	return it.end - it.begin
}

// Next yields the next element from the front, or nil when exhausted.
func (it *VecIter[T]) Next() *T {
	if it.begin >= it.end {
		return nil
	}
	cur := it.begin
	it.begin++
	return it.vec.Get(cur)
}

// NextBack yields the next element from the back, or nil when exhausted.
func (it *VecIter[T]) NextBack() *T {
	if it.begin >= it.end {
		return nil
	}
	it.end--
	return it.vec.Get(it.end)
}

// Footprint spans the length cell plus the element range.
func (v *Vec[T]) Footprint() uint64 {
	return v.len.Footprint() + v.elems.Footprint()
}

func (v *Vec[T]) PullSpread(ptr *cellar.KeyPtr) {
	v.len.PullSpread(ptr)
	v.elems.PullSpread(ptr)
}

func (v *Vec[T]) PushSpread(ptr *cellar.KeyPtr) {
	v.len.PushSpread(ptr)
	v.elems.PushSpread(ptr)
}

func (v *Vec[T]) ClearSpread(ptr *cellar.KeyPtr) {
	// The live region is 0..len; clear it via deferred removals, then let
	// the element map flush exactly those clears.
	n := v.Len()
	for i := uint32(0); i < n; i++ {
		v.elems.Put(i, nil)
	}
	v.len.ClearSpread(ptr)
	v.elems.PushSpread(ptr)
}
