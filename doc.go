/*
Package cellar implements a lazy storage layout & caching engine for flat
ledgers addressed by 32-byte keys, the kind of storage exposed to
smart-contract code where every read and write has a real cost.

We implement:

1. Keys and cursors, deterministic arithmetic over the 32-byte address space
that carves a composite value into one or more storage cells.

2. Cache entries and lazy cells/arrays/index maps, which load each cell at
most once per execution and write back only cells that actually changed.

3. A spread layout contract plus a root binder that assigns base addresses to
top-level fields, replacing any notion of a global key allocator.

Collections built on the engine (vector, bounded vector, hash map, stash,
binary heap, bit vector) live in the collections subpackage.

# Technical Details

**Cells.**
A cell is one 32-byte key mapped to one byte blob. The engine decides which
keys a value occupies; the byte encoding of a single cell is msgpack.

**Backends.**
The ledger boundary is three point operations: read (may miss), write, clear.
A Bolt-backed backend persists cells in a single bucket keyed by the raw key;
an in-memory backend serves tests and transient executions.

**Write-back.**
All mutated cache entries are flushed in one pass (Binder.Push or a
collection's PushSpread), which bounds the number of underlying writes to
exactly the set of logically changed cells.

**Failure model.**
Bytes that do not decode to the expected type indicate a layout mismatch and
abort the execution with a panic carrying *DataError. Capacity exhaustion and
structurally unsafe misuse also abort; plain out-of-bounds reads return nil.

The engine is single-threaded per execution. Counters on Ledger are atomic
only so that test harnesses can read them cheaply.
*/
package cellar
