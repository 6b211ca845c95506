package collections

import (
	"cmp"
	"math"

	"github.com/cellarkv/cellar"
)

// heapGroup holds two logical heap positions in one storage cell, roughly
// halving the number of distinct cells versus one cell per element. A group
// whose both positions are empty is removed from the backing vector
// entirely, reclaiming its storage.
type heapGroup[T any] struct {
	Left  *T `msgpack:"l"`
	Right *T `msgpack:"r"`
}

// BinaryHeap is a max-heap over a complete binary tree, with logical index i
// stored in group i/2 at position i%2. Elements with equal priority come out
// in some valid max-heap order; no secondary ordering is defined.
type BinaryHeap[T cmp.Ordered] struct {
	len    *cellar.LazyCell[uint32]
	groups *Vec[heapGroup[T]]
}

func NewBinaryHeap[T cmp.Ordered](l *cellar.Ledger) *BinaryHeap[T] {
	return &BinaryHeap[T]{
		len:    cellar.NewLazyCell[uint32](l, nil),
		groups: NewVec[heapGroup[T]](l),
	}
}

// Len returns the number of elements in the heap.
func (b *BinaryHeap[T]) Len() uint32 {
	if p := b.len.Get(); p != nil {
		return *p
	}
	return 0
}

func (b *BinaryHeap[T]) IsEmpty() bool {
	return b.Len() == 0
}

func (b *BinaryHeap[T]) setLen(n uint32) {
	b.len.Set(&n)
}

// at returns the element at a logical index, reading (at most once) the
// group cell it shares with its sibling.
func (b *BinaryHeap[T]) at(i uint32) *T {
	g := b.groups.Get(i / 2)
	if g == nil {
		return nil
	}
	if i%2 == 0 {
		return g.Left
	}
	return g.Right
}

// takeAt removes and returns the element at a logical index.
func (b *BinaryHeap[T]) takeAt(i uint32) *T {
	g := b.groups.GetMut(i / 2)
	if g == nil {
		return nil
	}
	var old *T
	if i%2 == 0 {
		old, g.Left = g.Left, nil
	} else {
		old, g.Right = g.Right, nil
	}
	return old
}

// replaceAt stores a value at a logical index and returns the old one.
func (b *BinaryHeap[T]) replaceAt(i uint32, v *T) *T {
	g := b.groups.GetMut(i / 2)
	if g == nil {
		panic("collections: heap group missing for live index")
	}
	var old *T
	if i%2 == 0 {
		old, g.Left = g.Left, v
	} else {
		old, g.Right = g.Right, v
	}
	return old
}

// swap transposes two logical indices as a take and two puts, never holding
// two exclusive views into one group at the same time.
func (b *BinaryHeap[T]) swap(x, y uint32) {
	vx := b.takeAt(x)
	vy := b.replaceAt(y, vx)
	b.replaceAt(x, vy)
}

// Peek returns a copy of the greatest element, or nil if the heap is empty.
func (b *BinaryHeap[T]) Peek() *T {
	if b.IsEmpty() {
		return nil
	}
	p := b.at(0)
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Push inserts a value, materializing a new group only when both its
// positions were previously absent.
func (b *BinaryHeap[T]) Push(value T) {
	n := b.Len()
	if n == math.MaxUint32 {
		panic("collections: cannot push more elements into the storage heap")
	}
	if n%2 == 0 {
		b.groups.Push(heapGroup[T]{Left: &value})
	} else {
		g := b.groups.GetMut(n / 2)
		if g == nil {
			panic("collections: heap group missing for push into occupied pair")
		}
		g.Right = &value
	}
	b.setLen(n + 1)
	b.siftUp(n)
}

// Pop removes and returns the greatest element, or nil if the heap is empty.
// A group left with both positions empty is popped from the backing vector.
func (b *BinaryHeap[T]) Pop() *T {
	n := b.Len()
	if n == 0 {
		return nil
	}
	if n == 1 {
		root := b.takeAt(0)
		b.groups.PopDrop()
		b.setLen(0)
		return root
	}
	last := n - 1
	lastVal := b.takeAt(last)
	if last%2 == 0 {
		b.groups.PopDrop()
	}
	root := b.replaceAt(0, lastVal)
	b.setLen(last)
	b.siftDown(0)
	return root
}

func (b *BinaryHeap[T]) siftUp(i uint32) {
	for i > 0 {
		parent := (i - 1) / 2
		if *b.at(parent) >= *b.at(i) {
			break
		}
		b.swap(parent, i)
		i = parent
	}
}

func (b *BinaryHeap[T]) siftDown(i uint32) {
	n := uint64(b.Len())
	for {
		largest := i
		l := 2*uint64(i) + 1
		r := 2*uint64(i) + 2
		if l < n && *b.at(uint32(l)) > *b.at(largest) {
			largest = uint32(l)
		}
		if r < n && *b.at(uint32(r)) > *b.at(largest) {
			largest = uint32(r)
		}
		if largest == i {
			break
		}
		b.swap(i, largest)
		i = largest
	}
}

// Footprint spans the length cell plus the group vector.
func (b *BinaryHeap[T]) Footprint() uint64 {
	return b.len.Footprint() + b.groups.Footprint()
}

func (b *BinaryHeap[T]) PullSpread(ptr *cellar.KeyPtr) {
	b.len.PullSpread(ptr)
	b.groups.PullSpread(ptr)
}

func (b *BinaryHeap[T]) PushSpread(ptr *cellar.KeyPtr) {
	b.len.PushSpread(ptr)
	b.groups.PushSpread(ptr)
}

func (b *BinaryHeap[T]) ClearSpread(ptr *cellar.KeyPtr) {
	b.len.ClearSpread(ptr)
	b.groups.ClearSpread(ptr)
}
