package cellar

import "sync/atomic"

// Ledger wraps a Backend with the typed cell codec and diagnostic counters.
// The counters are not part of the production interface; they exist so test
// harnesses can assert the engine's I/O-minimization properties (at most one
// read per logical value, writes only for mutated cells).
type Ledger struct {
	backend Backend
	logf    func(format string, args ...any)
	verbose bool

	ReadCount  atomic.Uint64
	WriteCount atomic.Uint64
	ClearCount atomic.Uint64
}

type LedgerOptions struct {
	Logf    func(format string, args ...any)
	Verbose bool
}

func NewLedger(backend Backend, opt LedgerOptions) *Ledger {
	return &Ledger{
		backend: backend,
		logf:    opt.Logf,
		verbose: opt.Verbose,
	}
}

func (l *Ledger) logcell(op string, at Key, data []byte) {
	if l.verbose && l.logf != nil {
		l.logf("cellar: %s %v = %s", op, at, hexstr(data))
	}
}

// Read performs a raw point lookup. Most callers want ReadCell.
func (l *Ledger) Read(at Key) ([]byte, bool) {
	l.ReadCount.Add(1)
	data, ok := l.backend.Read(at)
	l.logcell("read", at, data)
	return data, ok
}

// Write unconditionally overwrites a raw cell.
func (l *Ledger) Write(at Key, data []byte) {
	l.WriteCount.Add(1)
	l.logcell("write", at, data)
	l.backend.Write(at, data)
}

// Clear removes a cell; a subsequent read misses.
func (l *Ledger) Clear(at Key) {
	l.ClearCount.Add(1)
	l.logcell("clear", at, nil)
	l.backend.Clear(at)
}

// ResetCounters zeroes the diagnostic counters between test phases.
func (l *Ledger) ResetCounters() {
	l.ReadCount.Store(0)
	l.WriteCount.Store(0)
	l.ClearCount.Store(0)
}

// ReadCell reads and decodes the cell at the given key, or returns nil if
// the cell is absent. Bytes that fail to decode are corruption and panic
// with *DataError.
func ReadCell[T any](l *Ledger, at Key) *T {
	data, ok := l.Read(at)
	if !ok {
		return nil
	}
	v := new(T)
	if err := Decode(data, v); err != nil {
		panic(keyErrf(at, err, "corrupted cell"))
	}
	return v
}

// WriteCell encodes v and overwrites the cell at the given key.
func WriteCell[T any](l *Ledger, at Key, v *T) {
	l.Write(at, Encode(v))
}
