package collections

import (
	"fmt"

	"github.com/cellarkv/cellar"
)

// stashEntry is one persisted slot. A vacant slot stores the index of the
// next vacant slot, threading a singly linked free list through the stash's
// own storage.
type stashEntry[T any] struct {
	Vacant bool   `msgpack:"x"`
	Next   uint32 `msgpack:"n"`
	Val    T      `msgpack:"t"`
}

type stashHeader struct {
	// NextVacant is the most recently vacated index, or LenEntries as the
	// "no vacant slot" sentinel.
	NextVacant uint32 `msgpack:"v"`
	Len        uint32 `msgpack:"l"`
	LenEntries uint32 `msgpack:"n"`
}

// Stash is an index-stable, slot-reusing collection: Put claims the head of
// the free list (or appends), and the index it returns stays valid until
// explicitly taken.
type Stash[T any] struct {
	header  *cellar.LazyCell[stashHeader]
	entries *cellar.LazyIndexMap[stashEntry[T]]
}

func NewStash[T any](l *cellar.Ledger) *Stash[T] {
	return &Stash[T]{
		header:  cellar.NewLazyCell[stashHeader](l, nil),
		entries: cellar.NewLazyIndexMap[stashEntry[T]](l),
	}
}

func (s *Stash[T]) hdr() stashHeader {
	if p := s.header.Get(); p != nil {
		return *p
	}
	return stashHeader{}
}

func (s *Stash[T]) putHdr(h stashHeader) {
	s.header.Set(&h)
}

// Len returns the number of occupied slots. This is not the underlying
// entry count, which includes vacant slots.
func (s *Stash[T]) Len() uint32 {
	return s.hdr().Len
}

func (s *Stash[T]) IsEmpty() bool {
	return s.Len() == 0
}

// Capacity returns the number of slots the stash manages, occupied and
// vacant alike.
func (s *Stash[T]) Capacity() uint32 {
	return s.hdr().LenEntries
}

// Get returns the element at the given index, or nil if the index is out of
// bounds or the slot is vacant.
func (s *Stash[T]) Get(at uint32) *T {
	if at >= s.Capacity() {
		return nil
	}
	e := s.entries.Get(at)
	if e == nil || e.Vacant {
		return nil
	}
	return &e.Val
}

// GetMut returns the element at the given index for mutation.
func (s *Stash[T]) GetMut(at uint32) *T {
	if at >= s.Capacity() {
		return nil
	}
	e := s.entries.GetMut(at)
	if e == nil || e.Vacant {
		return nil
	}
	return &e.Val
}

// Put stores the value at the next vacant slot (reusing the most recently
// vacated index, or appending a fresh slot) and returns the claimed index.
func (s *Stash[T]) Put(value T) uint32 {
	hd := s.hdr()
	at := hd.NextVacant
	occupied := &stashEntry[T]{Val: value}
	if at == hd.LenEntries {
		// All slots occupied, append.
		s.entries.Put(at, occupied)
		hd.NextVacant = at + 1
		hd.LenEntries++
	} else {
		old := s.entries.PutGet(at, occupied)
		if old == nil || !old.Vacant {
			panic(fmt.Errorf("collections: stash free list head %d does not point to a vacant slot", at))
		}
		hd.NextVacant = old.Next
	}
	hd.Len++
	s.putHdr(hd)
	return at
}

// Take removes and returns the element at the given index, pushing the slot
// onto the free list. Taking an already-vacant slot is a no-op returning
// nil.
func (s *Stash[T]) Take(at uint32) *T {
	hd := s.hdr()
	if at >= hd.LenEntries {
		return nil
	}
	e := s.entries.GetMut(at)
	if e == nil {
		panic(fmt.Errorf("collections: stash entry %d missing below entry count %d", at, hd.LenEntries))
	}
	if e.Vacant {
		return nil
	}
	val := e.Val
	*e = stashEntry[T]{Vacant: true, Next: hd.NextVacant}
	hd.NextVacant = at
	hd.Len--
	s.putHdr(hd)
	return &val
}

// Iter returns a double-ended iterator over occupied slots in ascending
// index order (descending for NextBack). Both directions together yield
// exactly Len elements.
func (s *Stash[T]) Iter() *StashIter[T] {
	return &StashIter[T]{
		stash: s,
		end:   s.Capacity(),
		left:  s.Len(),
	}
}

type StashIter[T any] struct {
	stash      *Stash[T]
	begin, end uint32
	left       uint32
}

// Remaining reports how many occupied slots have not been yielded yet.
func (it *StashIter[T]) Remaining() uint32 {
	return it.left
}

// Next yields the next occupied slot from the front, with its index.
func (it *StashIter[T]) Next() (index uint32, value *T, ok bool) {
	for it.left > 0 && it.begin < it.end {
		cur := it.begin
		it.begin++
		if v := it.stash.Get(cur); v != nil {
			it.left--
			return cur, v, true
		}
	}
	return 0, nil, false
}

// NextBack yields the next occupied slot from the back, with its index.
func (it *StashIter[T]) NextBack() (index uint32, value *T, ok bool) {
	for it.left > 0 && it.begin < it.end {
		it.end--
		if v := it.stash.Get(it.end); v != nil {
			it.left--
			return it.end, v, true
		}
	}
	return 0, nil, false
}

// Footprint spans the header cell plus the entry range.
func (s *Stash[T]) Footprint() uint64 {
	return s.header.Footprint() + s.entries.Footprint()
}

func (s *Stash[T]) PullSpread(ptr *cellar.KeyPtr) {
	s.header.PullSpread(ptr)
	s.entries.PullSpread(ptr)
}

func (s *Stash[T]) PushSpread(ptr *cellar.KeyPtr) {
	s.header.PushSpread(ptr)
	s.entries.PushSpread(ptr)
}

// ClearSpread clears every managed slot, vacant ones included: clearing a
// cell is cheaper than reading it to find out whether it held a value.
func (s *Stash[T]) ClearSpread(ptr *cellar.KeyPtr) {
	n := s.Capacity()
	for i := uint32(0); i < n; i++ {
		s.entries.Put(i, nil)
	}
	s.header.ClearSpread(ptr)
	s.entries.PushSpread(ptr)
}
