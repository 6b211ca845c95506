package cellar

import (
	"os"
	"testing"
)

func TestMemBackend(t *testing.T) {
	s := NewMemBackend()
	at := KeyFromUint64(1)

	_, ok := s.Read(at)
	eq(t, ok, false)

	s.Write(at, []byte{1, 2, 3})
	data, ok := s.Read(at)
	eq(t, ok, true)
	deepEqual(t, data, []byte{1, 2, 3})
	eq(t, s.Len(), 1)

	s.Clear(at)
	_, ok = s.Read(at)
	eq(t, ok, false)
	eq(t, s.Len(), 0)

	// Clearing an absent cell is a no-op.
	s.Clear(at)
	eq(t, s.Len(), 0)
}

func setupBolt(t testing.TB) *BoltBackend {
	t.Helper()

	dbFile := must(os.CreateTemp("", "cellar_test_*.db"))
	t.Logf("DB: %s", dbFile.Name())
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	s := must(OpenBolt(dbFile.Name(), BoltOptions{IsTesting: true}))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltBackend(t *testing.T) {
	s := setupBolt(t)
	at := KeyFromUint64(1)

	ensure(s.Begin())
	s.Write(at, []byte{42})
	data, ok := s.Read(at)
	eq(t, ok, true)
	deepEqual(t, data, []byte{42})
	ensure(s.Commit())

	// A new execution observes the committed cell.
	ensure(s.Begin())
	data, ok = s.Read(at)
	eq(t, ok, true)
	deepEqual(t, data, []byte{42})
	s.Clear(at)
	ensure(s.Rollback())

	// The rollback reverted the clear.
	ensure(s.Begin())
	_, ok = s.Read(at)
	eq(t, ok, true)
	ensure(s.Commit())
}

func TestBoltBackendOutsideExecution(t *testing.T) {
	s := setupBolt(t)
	mustPanic(t, func() { s.Read(KeyFromUint64(1)) })
}

func TestBoltBackendWithLedger(t *testing.T) {
	s := setupBolt(t)
	l := NewLedger(s, LedgerOptions{})
	root := KeyFromUint64(7)

	ensure(s.Begin())
	c := NewLazyCell(l, intp(99))
	b := NewBinder(l, root)
	b.Bind(c)
	b.Push()
	ensure(s.Commit())

	ensure(s.Begin())
	c2 := LazyCellAt[int](l, root)
	deref(t, c2.Get(), 99)
	ensure(s.Commit())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	type point struct {
		X int    `msgpack:"x"`
		Y string `msgpack:"y"`
	}
	data := Encode(&point{X: 3, Y: "hi"})
	var p point
	ensure(Decode(data, &p))
	eq(t, p, point{X: 3, Y: "hi"})
}

func TestDecodeCorrupt(t *testing.T) {
	var v int
	err := Decode([]byte{0xC1}, &v)
	if err == nil {
		t.Fatalf("** expected an error")
	}
	if _, ok := err.(*DataError); !ok {
		t.Errorf("** expected *DataError, got %T", err)
	}
}

func TestHashers(t *testing.T) {
	enc := Encode("some key")
	for _, h := range []KeyHasher{Keccak256Hasher{}, Blake2b256Hasher{}, XXHasher{}} {
		// Deterministic.
		eq(t, h.HashKey(enc), h.HashKey(enc))
		// Sensitive to the input.
		if h.HashKey(enc) == h.HashKey(Encode("other key")) {
			t.Errorf("** %T collides on trivially distinct keys", h)
		}
	}
}
