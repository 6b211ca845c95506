package cellar

import (
	"encoding/binary"
	"encoding/hex"
	"math/bits"
)

// Key is the address of a single storage cell: an opaque 32-byte value with
// offset arithmetic, interpreted as a 256-bit big-endian integer.
type Key [32]byte

// KeyFromUint64 returns the key whose 256-bit value is n.
func KeyFromUint64(n uint64) Key {
	var k Key
	binary.BigEndian.PutUint64(k[24:], n)
	return k
}

// KeyFromBytes builds a key from up to 32 bytes, right-aligned
// (shorter input is zero-padded on the left).
func KeyFromBytes(b []byte) Key {
	var k Key
	if len(b) > len(k) {
		b = b[len(b)-len(k):]
	}
	copy(k[len(k)-len(b):], b)
	return k
}

// Add returns the key offset by n, wrapping around the 256-bit space.
// Deterministic and side-effect-free; all derived addressing goes through it.
func (k Key) Add(n uint64) Key {
	r := k
	lo, carry := bits.Add64(binary.BigEndian.Uint64(r[24:]), n, 0)
	binary.BigEndian.PutUint64(r[24:], lo)
	for i := 23; carry != 0 && i >= 0; i-- {
		r[i]++
		if r[i] != 0 {
			carry = 0
		}
	}
	return r
}

func (k Key) Bytes() []byte {
	b := make([]byte, len(k))
	copy(b, k[:])
	return b
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}
