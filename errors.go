package cellar

import (
	"errors"
	"fmt"
)

// ErrNoFreeSlot is wrapped by the panic raised when a hash map probe
// sequence is exhausted without finding a claimable slot.
var ErrNoFreeSlot = errors.New("no free slot")

// ErrCapacityExceeded is wrapped by the panic raised when a bounded
// collection is pushed past its capacity.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// DataError reports bytes at a key that do not decode to the expected type.
// This is corruption (a layout or version mismatch), never silently
// defaulted: the engine panics with a *DataError and the surrounding
// execution harness must treat it as a fatal, state-reverting failure.
type DataError struct {
	Data []byte
	Err  error
	Msg  string
}

func dataErrf(data []byte, err error, format string, args ...any) error {
	return &DataError{data, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x", e.Msg, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s: (%d) %x", e.Msg, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x...%x", e.Msg, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s: (%d) %x...%x", e.Msg, n, p, s)
		}
	}
}

// KeyError ties a failure to the storage cell it concerns.
type KeyError struct {
	Key Key
	Msg string
	Err error
}

func keyErrf(key Key, err error, format string, args ...any) error {
	return &KeyError{key, fmt.Sprintf(format, args...), err}
}

func (e *KeyError) Unwrap() error {
	return e.Err
}

func (e *KeyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v (cell %v)", e.Msg, e.Err, e.Key)
	}
	return fmt.Sprintf("%s (cell %v)", e.Msg, e.Key)
}
