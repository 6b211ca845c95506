package cellar

import (
	"errors"
	"testing"
)

func TestLazyCellAtMostOneRead(t *testing.T) {
	l := newTestLedger(t)
	at := KeyFromUint64(1)
	WriteCell(l, at, intp(42))
	l.ResetCounters()

	c := LazyCellAt[int](l, at)
	for i := 0; i < 5; i++ {
		deref(t, c.Get(), 42)
	}
	counts(t, l, 1, 0, 0)
}

func TestLazyCellReadMiss(t *testing.T) {
	l := newTestLedger(t)
	c := LazyCellAt[int](l, KeyFromUint64(1))
	isnil(t, c.Get())
	isnil(t, c.Get())
	counts(t, l, 1, 0, 0)
}

func TestLazyCellSetAvoidsRead(t *testing.T) {
	l := newTestLedger(t)
	at := KeyFromUint64(1)
	WriteCell(l, at, intp(1))
	l.ResetCounters()

	c := LazyCellAt[int](l, at)
	c.Set(intp(2))
	counts(t, l, 0, 0, 0)

	ptr := NewKeyPtr(at)
	c.PushSpread(ptr)
	counts(t, l, 0, 1, 0)
	deref(t, ReadCell[int](l, at), 2)
}

func TestLazyCellUntouchedPushIsFree(t *testing.T) {
	l := newTestLedger(t)
	at := KeyFromUint64(1)
	WriteCell(l, at, intp(1))
	l.ResetCounters()

	c := LazyCellAt[int](l, at)
	deref(t, c.Get(), 1)
	ptr := NewKeyPtr(at)
	c.PushSpread(ptr)
	counts(t, l, 1, 0, 0)
}

func TestLazyIndexMapIsolation(t *testing.T) {
	l := newTestLedger(t)
	base := KeyFromUint64(100)
	WriteCell(l, base.Add(3), intp(33))
	WriteCell(l, base.Add(5), intp(55))
	l.ResetCounters()

	m := NewLazyIndexMap[int](l)
	ptr := NewKeyPtr(base)
	m.PullSpread(ptr)

	// Reading index 3 must not touch index 5.
	deref(t, m.Get(3), 33)
	counts(t, l, 1, 0, 0)
	deref(t, m.Get(3), 33)
	counts(t, l, 1, 0, 0)
	deref(t, m.Get(5), 55)
	counts(t, l, 2, 0, 0)
}

func TestLazyIndexMapWriteOnlyOnMutation(t *testing.T) {
	l := newTestLedger(t)
	base := KeyFromUint64(100)

	m := NewLazyIndexMap[int](l)
	ptr := NewKeyPtr(base)
	m.PullSpread(ptr)

	const n = 10
	for i := uint32(0); i < n; i++ {
		m.Put(i, intp(7))
	}
	m.PushSpread(NewKeyPtr(base))
	counts(t, l, 0, n, 0)

	// Re-flushing without further mutation yields no writes.
	m.PushSpread(NewKeyPtr(base))
	counts(t, l, 0, n, 0)
}

func TestLazyIndexMapSwap(t *testing.T) {
	l := newTestLedger(t)
	base := KeyFromUint64(100)
	WriteCell(l, base.Add(0), intp(1))
	l.ResetCounters()

	m := NewLazyIndexMap[int](l)
	m.PullSpread(NewKeyPtr(base))

	m.Swap(0, 1)
	isnil(t, m.Get(0))
	deref(t, m.Get(1), 1)

	// Swapping two absent values marks nothing.
	m.Swap(7, 8)
	l.ResetCounters()
	m.PushSpread(NewKeyPtr(base))
	counts(t, l, 0, 1, 1)
}

func TestLazyIndexMapIdempotentClear(t *testing.T) {
	l := newTestLedger(t)
	base := KeyFromUint64(100)

	m := NewLazyIndexMap[int](l)
	m.PullSpread(NewKeyPtr(base))
	m.ClearAt(4)
	m.ClearAt(4)
	isnil(t, m.Get(4))
}

func TestLazyArrayBounds(t *testing.T) {
	l := newTestLedger(t)
	a := NewLazyArray[int](l, 4)
	a.Put(3, intp(1))
	mustPanic(t, func() { a.Put(4, intp(1)) })
	mustPanic(t, func() { a.Get(4) })
}

func TestLazyArrayPushVisitsTouchedOnly(t *testing.T) {
	l := newTestLedger(t)
	base := KeyFromUint64(100)
	a := NewLazyArray[int](l, 32)
	a.PullSpread(NewKeyPtr(base))

	a.Put(1, intp(11))
	a.Put(30, intp(33))
	a.PushSpread(NewKeyPtr(base))
	counts(t, l, 0, 2, 0)
	deref(t, ReadCell[int](l, base.Add(1)), 11)
	deref(t, ReadCell[int](l, base.Add(30)), 33)
}

func TestLazyArrayClearSpreadThreshold(t *testing.T) {
	l := newTestLedger(t)
	a := NewLazyArray[int](l, FootprintCleanupThreshold+1)
	a.PullSpread(NewKeyPtr(KeyFromUint64(100)))
	mustPanic(t, func() { a.ClearSpread(NewKeyPtr(KeyFromUint64(100))) })
}

func TestBinderRoundTrip(t *testing.T) {
	l := newTestLedger(t)
	root := KeyFromUint64(1000)

	c1 := NewLazyCell(l, intp(1))
	m1 := NewLazyIndexMap[string](l)
	b := NewBinder(l, root)
	b.Bind(c1, m1)
	s := "hello"
	m1.Put(9, &s)
	b.Push()

	// Fresh instances bound at the same root observe the same state.
	c2 := LazyCellAt[int](l, Key{})
	m2 := NewLazyIndexMap[string](l)
	b2 := NewBinder(l, root)
	b2.Bind(c2, m2)
	b2.Pull()
	deref(t, c2.Get(), 1)
	deref(t, m2.Get(9), "hello")
	isnil(t, m2.Get(8))
}

func TestBinderClear(t *testing.T) {
	l := newTestLedger(t)
	root := KeyFromUint64(1000)

	c := NewLazyCell(l, intp(1))
	b := NewBinder(l, root)
	b.Bind(c)
	b.Push()
	b.Clear()

	c2 := LazyCellAt[int](l, root)
	isnil(t, c2.Get())
}

func TestCorruptCellPanics(t *testing.T) {
	l := newTestLedger(t)
	at := KeyFromUint64(1)
	l.Write(at, []byte{0xC1}) // 0xC1 is never valid msgpack

	r := mustPanic(t, func() { ReadCell[int](l, at) })
	err, ok := r.(error)
	if !ok {
		t.Fatalf("** panic value is not an error: %v", r)
	}
	var de *DataError
	if !errors.As(err, &de) {
		t.Errorf("** expected a *DataError, got %v", err)
	}
	var ke *KeyError
	if !errors.As(err, &ke) {
		t.Errorf("** expected a *KeyError, got %v", err)
	}
}
