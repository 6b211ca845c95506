package collections

import (
	"fmt"

	"github.com/cellarkv/cellar"
)

// SmallVec is a bounded storage vector with a capacity fixed at
// construction, backed by a lazy array. The contract matches Vec except that
// pushing past the capacity is fatal.
type SmallVec[T any] struct {
	len   *cellar.LazyCell[uint32]
	elems *cellar.LazyArray[T]
}

func NewSmallVec[T any](l *cellar.Ledger, capacity uint32) *SmallVec[T] {
	return &SmallVec[T]{
		len:   cellar.NewLazyCell[uint32](l, nil),
		elems: cellar.NewLazyArray[T](l, capacity),
	}
}

// Capacity returns the fixed number of slots.
func (v *SmallVec[T]) Capacity() uint32 {
	return v.elems.Capacity()
}

// Len returns the number of elements in the vector.
func (v *SmallVec[T]) Len() uint32 {
	if p := v.len.Get(); p != nil {
		return *p
	}
	return 0
}

func (v *SmallVec[T]) IsEmpty() bool {
	return v.Len() == 0
}

func (v *SmallVec[T]) setLen(n uint32) {
	v.len.Set(&n)
}

func (v *SmallVec[T]) withinBounds(index uint32) bool {
	return index < v.Len()
}

// Get returns the indexed element, or nil if index is out of bounds.
func (v *SmallVec[T]) Get(index uint32) *T {
	if !v.withinBounds(index) {
		return nil
	}
	return v.elems.Get(index)
}

// GetMut returns the indexed element for mutation, or nil if out of bounds.
func (v *SmallVec[T]) GetMut(index uint32) *T {
	if !v.withinBounds(index) {
		return nil
	}
	return v.elems.GetMut(index)
}

func (v *SmallVec[T]) First() *T {
	return v.Get(0)
}

func (v *SmallVec[T]) Last() *T {
	if v.IsEmpty() {
		return nil
	}
	return v.Get(v.Len() - 1)
}

// Push appends an element. Pushing into a full vector is fatal; silently
// truncating would mask a logic error in the caller.
func (v *SmallVec[T]) Push(value T) {
	n := v.Len()
	if n == v.Capacity() {
		panic(fmt.Errorf("collections: small vec is full at %d elements: %w",
			n, cellar.ErrCapacityExceeded))
	}
	v.setLen(n + 1)
	v.elems.Put(n, &value)
}

// Pop removes and returns the last element, or nil if empty.
func (v *SmallVec[T]) Pop() *T {
	if v.IsEmpty() {
		return nil
	}
	last := v.Len() - 1
	v.setLen(last)
	return v.elems.PutGet(last, nil)
}

// PopDrop removes the last element without reading it back.
func (v *SmallVec[T]) PopDrop() bool {
	if v.IsEmpty() {
		return false
	}
	last := v.Len() - 1
	v.setLen(last)
	v.elems.Put(last, nil)
	return true
}

// Set overwrites the indexed element without reading the old one back.
func (v *SmallVec[T]) Set(index uint32, value T) error {
	if !v.withinBounds(index) {
		return ErrIndexOutOfBounds
	}
	v.elems.Put(index, &value)
	return nil
}

// Swap transposes the elements at the given indices; out of bounds is fatal.
func (v *SmallVec[T]) Swap(a, b uint32) {
	if !v.withinBounds(a) || !v.withinBounds(b) {
		panic("collections: small vec swap indices are out of bounds")
	}
	v.elems.Swap(a, b)
}

// SwapRemove removes the indexed element and returns it, moving the last
// element into its slot. Not order-preserving.
func (v *SmallVec[T]) SwapRemove(index uint32) *T {
	if v.IsEmpty() {
		return nil
	}
	v.Swap(index, v.Len()-1)
	return v.Pop()
}

// SwapRemoveDrop removes the indexed element without reading it back.
func (v *SmallVec[T]) SwapRemoveDrop(index uint32) bool {
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
func (v *SmallVec[T]) Clear() {
	n := v.Len()
	for i := uint32(0); i < n; i++ {
		v.elems.Put(i, nil)
	}
	v.setLen(0)
}

// Iter returns a double-ended iterator over the elements.
func (v *SmallVec[T]) Iter() *SmallVecIter[T] {
	return &SmallVecIter[T]{vec: v, begin: 0, end: v.Len()}
}

type SmallVecIter[T any] struct {
	vec        *SmallVec[T]
	begin, end uint32
}

func (it *SmallVecIter[T]) Remaining() uint32 {
	return it.end - it.begin
}

func (it *SmallVecIter[T]) Next() *T {
	if it.begin >= it.end {
		return nil
	}
	cur := it.begin
	it.begin++
	return it.vec.Get(cur)
}

func (it *SmallVecIter[T]) NextBack() *T {
	if it.begin >= it.end {
		return nil
	}
	it.end--
	return it.vec.Get(it.end)
}

// Footprint spans the length cell plus one cell per slot.
func (v *SmallVec[T]) Footprint() uint64 {
	return v.len.Footprint() + v.elems.Footprint()
}

func (v *SmallVec[T]) PullSpread(ptr *cellar.KeyPtr) {
	v.len.PullSpread(ptr)
	v.elems.PullSpread(ptr)
}

func (v *SmallVec[T]) PushSpread(ptr *cellar.KeyPtr) {
	v.len.PushSpread(ptr)
	v.elems.PushSpread(ptr)
}

func (v *SmallVec[T]) ClearSpread(ptr *cellar.KeyPtr) {
	// The live region is 0..len, so a bounded clear beats LazyArray's blind
	// whole-capacity clear (which the cleanup threshold would reject for
	// larger capacities).
	n := v.Len()
	for i := uint32(0); i < n; i++ {
		v.elems.Put(i, nil)
	}
	v.len.ClearSpread(ptr)
	v.elems.PushSpread(ptr)
}
