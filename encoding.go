package cellar

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// The engine decides how many cells a value occupies and which keys they sit
// at; the byte encoding of a single cell is msgpack, chosen for being stable,
// compact and schema-tolerant.

type bytesBuilder struct {
	Buf []byte
}

func (bb *bytesBuilder) Write(p []byte) (int, error) {
	bb.Buf = append(bb.Buf, p...)
	return len(p), nil
}

// Encode serializes a single cell value. Encoding failures are programmer
// errors (unencodable types), so this panics.
func Encode(v any) []byte {
	var bb bytesBuilder
	enc := msgpack.GetEncoder()
	enc.ResetDict(&bb, nil)
	enc.SetSortMapKeys(true)
	err := enc.Encode(v)
	msgpack.PutEncoder(enc)
	if err != nil {
		panic(fmt.Errorf("cellar: failed to encode %T using msgpack: %w", v, err))
	}
	return bb.Buf
}

// Decode deserializes a single cell blob into ptr. A non-nil return is
// corruption; callers inside the engine escalate it to a panic.
func Decode(data []byte, ptr any) error {
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	dec.ResetDict(&r, nil)
	err := dec.Decode(ptr)
	msgpack.PutDecoder(dec)
	if err != nil {
		return dataErrf(data, err, "failed to decode msgpack into %T", ptr)
	}
	return nil
}
