package cellar

// Backend is the raw cell store underneath a Ledger (Bolt, in-memory, ...).
//
// The contract mirrors the storage boundary of the execution environment:
// synchronous point operations, infallible except for what callers make of
// the bytes. Read returns false for a cell that was never written or was
// cleared.
type Backend interface {
	// Read performs a point lookup of a cell.
	Read(at Key) ([]byte, bool)
	// Write unconditionally overwrites a cell.
	Write(at Key, data []byte)
	// Clear removes a cell; a subsequent Read misses.
	Clear(at Key)
}
