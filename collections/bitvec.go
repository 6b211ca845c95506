package collections

import (
	"math"
	"math/bits"

	"github.com/cellarkv/cellar"
	"github.com/holiman/uint256"
)

const bitsPerChunk = 256

// bits256 is one storage cell worth of bits: a 256-bit group of 4×64-bit
// words.
type bits256 struct {
	W uint256.Int `msgpack:"w"`
}

func bitMask(at uint32) *uint256.Int {
	return new(uint256.Int).Lsh(uint256.NewInt(1), uint(at))
}

func (b *bits256) get(at uint32) bool {
	return b.W[at/64]&(1<<(at%64)) != 0
}

func (b *bits256) set(at uint32, value bool) {
	if value {
		b.W.Or(&b.W, bitMask(at))
	} else {
		b.W.And(&b.W, new(uint256.Int).Not(bitMask(at)))
	}
}

func (b *bits256) flip(at uint32) {
	b.W.Xor(&b.W, bitMask(at))
}

// firstZero returns the position of the first unset bit within the chunk.
func (b *bits256) firstZero() (uint32, bool) {
	for i, w := range b.W {
		if w != ^uint64(0) {
			return uint32(64*i + bits.TrailingZeros64(^w)), true
		}
	}
	return 0, false
}

// Bitvec is a storage bit vector: bits packed 256 per cell, with the total
// bit count in a separate length cell. Push and pop are amortized O(1),
// allocating a new chunk only when the last one is full and reclaiming a
// chunk's cell as soon as its last bit is popped.
type Bitvec struct {
	len    *cellar.LazyCell[uint32]
	chunks *cellar.LazyIndexMap[bits256]
}

func NewBitvec(l *cellar.Ledger) *Bitvec {
	return &Bitvec{
		len:    cellar.NewLazyCell[uint32](l, nil),
		chunks: cellar.NewLazyIndexMap[bits256](l),
	}
}

// Len returns the number of bits in the vector.
func (bv *Bitvec) Len() uint32 {
	if p := bv.len.Get(); p != nil {
		return *p
	}
	return 0
}

func (bv *Bitvec) IsEmpty() bool {
	return bv.Len() == 0
}

// Capacity returns the number of bits the allocated chunks can hold.
func (bv *Bitvec) Capacity() uint64 {
	n := uint64(bv.Len())
	return (n + bitsPerChunk - 1) / bitsPerChunk * bitsPerChunk
}

func (bv *Bitvec) setLen(n uint32) {
	bv.len.Set(&n)
}

func (bv *Bitvec) chunkAt(index uint32) *bits256 {
	c := bv.chunks.Get(index)
	if c == nil {
		panic("collections: bit vector chunk missing below its length")
	}
	return c
}

func (bv *Bitvec) chunkAtMut(index uint32) *bits256 {
	c := bv.chunks.GetMut(index)
	if c == nil {
		panic("collections: bit vector chunk missing below its length")
	}
	return c
}

// Get returns the bit at the given position; ok is false out of bounds.
func (bv *Bitvec) Get(at uint32) (value, ok bool) {
	if at >= bv.Len() {
		return false, false
	}
	return bv.chunkAt(at / bitsPerChunk).get(at % bitsPerChunk), true
}

// Set stores a bit at the given position. Out of bounds is fatal: the cell
// it would touch may belong to a neighboring field.
func (bv *Bitvec) Set(at uint32, value bool) {
	if at >= bv.Len() {
		panic("collections: bit vector set out of bounds")
	}
	bv.chunkAtMut(at / bitsPerChunk).set(at%bitsPerChunk, value)
}

// Flip inverts the bit at the given position; out of bounds is fatal.
func (bv *Bitvec) Flip(at uint32) {
	if at >= bv.Len() {
		panic("collections: bit vector flip out of bounds")
	}
	bv.chunkAtMut(at / bitsPerChunk).flip(at % bitsPerChunk)
}

// Push appends a bit, allocating a fresh chunk only every 256th push.
func (bv *Bitvec) Push(value bool) {
	n := bv.Len()
	if n == math.MaxUint32 {
		panic("collections: cannot push more bits into the storage bit vector")
	}
	if n%bitsPerChunk == 0 {
		var c bits256
		c.set(0, value)
		bv.chunks.Put(n/bitsPerChunk, &c)
	} else {
		// Explicitly write the bit either way; the slot may hold stale
		// state from a popped bit.
		bv.chunkAtMut(n / bitsPerChunk).set(n%bitsPerChunk, value)
	}
	bv.setLen(n + 1)
}

// Pop removes and returns the last bit; ok is false on an empty vector.
// Popping the last bit of a chunk removes the chunk's cell.
func (bv *Bitvec) Pop() (value, ok bool) {
	n := bv.Len()
	if n == 0 {
		return false, false
	}
	at := n - 1
	c := bv.chunkAtMut(at / bitsPerChunk)
	value = c.get(at % bitsPerChunk)
	if at%bitsPerChunk == 0 {
		bv.chunks.Put(at/bitsPerChunk, nil)
	} else {
		c.set(at%bitsPerChunk, false)
	}
	bv.setLen(at)
	return value, true
}

// First returns the first bit, ok=false when empty.
func (bv *Bitvec) First() (value, ok bool) {
	return bv.Get(0)
}

// Last returns the last bit, ok=false when empty.
func (bv *Bitvec) Last() (value, ok bool) {
	if bv.IsEmpty() {
		return false, false
	}
	return bv.Get(bv.Len() - 1)
}

// FirstZero returns the position of the first unset bit, ok=false when every
// bit is set (or the vector is empty).
func (bv *Bitvec) FirstZero() (position uint32, ok bool) {
	n := bv.Len()
	numChunks := (n + bitsPerChunk - 1) / bitsPerChunk
	for ci := uint32(0); ci < numChunks; ci++ {
		c := bv.chunkAt(ci)
		if c.W.IsZero() {
			return ci * bitsPerChunk, true
		}
		if fz, found := c.firstZero(); found {
			pos := ci*bitsPerChunk + fz
			if pos < n {
				return pos, true
			}
		}
	}
	return 0, false
}

// Iter returns a double-ended iterator over the bits in logical order.
// Forward and backward iteration share one remaining range, so the middle
// chunk is never double-counted.
func (bv *Bitvec) Iter() *BitvecIter {
	return &BitvecIter{bv: bv, begin: 0, end: bv.Len()}
}

type BitvecIter struct {
	bv         *Bitvec
	begin, end uint32
}

// Remaining reports how many bits the iterator has not yet yielded.
func (it *BitvecIter) Remaining() uint32 {
	return it.end - it.begin
}

// Next yields the next bit from the front.
func (it *BitvecIter) Next() (value, ok bool) {
	if it.begin >= it.end {
		return false, false
	}
	cur := it.begin
	it.begin++
	return it.bv.Get(cur)
}

// NextBack yields the next bit from the back.
func (it *BitvecIter) NextBack() (value, ok bool) {
	if it.begin >= it.end {
		return false, false
	}
	it.end--
	return it.bv.Get(it.end)
}

// Footprint spans the length cell plus the chunk range.
func (bv *Bitvec) Footprint() uint64 {
	return bv.len.Footprint() + bv.chunks.Footprint()
}

func (bv *Bitvec) PullSpread(ptr *cellar.KeyPtr) {
	bv.len.PullSpread(ptr)
	bv.chunks.PullSpread(ptr)
}

func (bv *Bitvec) PushSpread(ptr *cellar.KeyPtr) {
	bv.len.PushSpread(ptr)
	bv.chunks.PushSpread(ptr)
}

func (bv *Bitvec) ClearSpread(ptr *cellar.KeyPtr) {
	n := bv.Len()
	numChunks := (n + bitsPerChunk - 1) / bitsPerChunk
	for ci := uint32(0); ci < numChunks; ci++ {
		bv.chunks.Put(ci, nil)
	}
	bv.len.ClearSpread(ptr)
	bv.chunks.PushSpread(ptr)
}
