package cellar

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// KeyHasher turns the encoded form of a logical key into the 64-bit value
// collections derive probe sequences from. The hash map uses the
// least-significant 32 bits of the result modulo its capacity.
type KeyHasher interface {
	HashKey(encoded []byte) uint64
}

// Keccak256Hasher is the default: least-significant 64 bits of the
// Keccak-256 digest of the key encoding. Keys may be attacker-chosen, so the
// default stays cryptographic.
type Keccak256Hasher struct{}

func (Keccak256Hasher) HashKey(encoded []byte) uint64 {
	h := sha3.NewLegacyKeccak256()
	h.Write(encoded)
	var d [32]byte
	sum := h.Sum(d[:0])
	return binary.BigEndian.Uint64(sum[24:])
}

// Blake2b256Hasher is a cryptographic alternative to Keccak.
type Blake2b256Hasher struct{}

func (Blake2b256Hasher) HashKey(encoded []byte) uint64 {
	sum := blake2b.Sum256(encoded)
	return binary.BigEndian.Uint64(sum[24:])
}

// XXHasher is a fast non-cryptographic option for closed key sets where no
// party can degenerate the probe distribution on purpose.
type XXHasher struct{}

func (XXHasher) HashKey(encoded []byte) uint64 {
	return xxhash.Sum64(encoded)
}
