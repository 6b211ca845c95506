package cellar

import (
	"strings"
	"testing"
)

func TestKeyAdd(t *testing.T) {
	k := KeyFromUint64(5)
	eq(t, k.Add(3), KeyFromUint64(8))
	eq(t, k.Add(0), k)

	// Distinct offsets never alias.
	seen := make(map[Key]bool)
	for n := uint64(0); n < 100; n++ {
		at := k.Add(n)
		if seen[at] {
			t.Fatalf("offset %d aliases an earlier key", n)
		}
		seen[at] = true
	}
}

func TestKeyAddCarry(t *testing.T) {
	var k Key
	for i := 24; i < 32; i++ {
		k[i] = 0xFF
	}
	// Adding 1 to ...00FFFFFFFFFFFFFFFF carries into byte 23.
	sum := k.Add(1)
	var want Key
	want[23] = 1
	eq(t, sum, want)

	// Full wrap-around.
	for i := range k {
		k[i] = 0xFF
	}
	eq(t, k.Add(1), Key{})
}

func TestKeyFromBytes(t *testing.T) {
	k := KeyFromBytes([]byte{0xAB, 0xCD})
	eq(t, k[30], byte(0xAB))
	eq(t, k[31], byte(0xCD))
	eq(t, k[0], byte(0))

	long := make([]byte, 40)
	long[39] = 7
	eq(t, KeyFromBytes(long), KeyFromUint64(7))
}

func TestKeyString(t *testing.T) {
	s := KeyFromUint64(0xFF).String()
	eq(t, len(s), 64)
	if !strings.HasSuffix(s, "ff") {
		t.Errorf("** got %s", s)
	}
}

func TestKeyPtrAdvance(t *testing.T) {
	root := KeyFromUint64(100)
	ptr := NewKeyPtr(root)
	eq(t, ptr.Advance(1), KeyFromUint64(100))
	eq(t, ptr.Advance(5), KeyFromUint64(101))
	eq(t, ptr.Advance(1), KeyFromUint64(106))
}
