package cellar

// LazyCell couples one cache entry with one storage cell. It materializes
// (reads) on first access and no-ops on write-back if untouched, so any
// number of reads of the same value costs at most one underlying read per
// execution.
//
// The key is nil only for cells constructed in memory that have never been
// persisted; PushSpread assigns one.
type LazyCell[T any] struct {
	ledger *Ledger
	key    *Key
	cache  *Entry[T]
}

// NewLazyCell creates an in-memory cell holding value (nil for absent).
// It is Mutated from the start so that the first push persists it.
func NewLazyCell[T any](l *Ledger, value *T) *LazyCell[T] {
	return &LazyCell[T]{
		ledger: l,
		cache:  NewEntry(value, EntryMutated),
	}
}

// LazyCellAt creates a vacant cell bound to an existing storage location.
// Nothing is read until first access.
func LazyCellAt[T any](l *Ledger, at Key) *LazyCell[T] {
	return &LazyCell[T]{
		ledger: l,
		key:    &at,
	}
}

// Key returns the backing cell key, or nil for a never-persisted cell.
func (c *LazyCell[T]) Key() *Key {
	return c.key
}

func (c *LazyCell[T]) loadEntry() *Entry[T] {
	if c.cache == nil {
		if c.key == nil {
			c.cache = NewEntry[T](nil, EntryPreserved)
		} else {
			c.cache = NewEntry(ReadCell[T](c.ledger, *c.key), EntryPreserved)
		}
	}
	return c.cache
}

// Get returns the value, or nil if the cell is absent.
func (c *LazyCell[T]) Get() *T {
	return c.loadEntry().Value()
}

// GetMut returns the value for mutation, flagging the entry Mutated.
func (c *LazyCell[T]) GetMut() *T {
	return c.loadEntry().ValueMut()
}

// Set replaces the value without reading the old one.
func (c *LazyCell[T]) Set(value *T) {
	if c.cache == nil {
		c.cache = NewEntry(value, EntryMutated)
		return
	}
	c.cache.Put(value)
}

// PutGet replaces the value and returns the previous one, materializing it
// if necessary.
func (c *LazyCell[T]) PutGet(value *T) *T {
	return c.loadEntry().Put(value)
}

// Footprint of a lazy cell is a single storage cell: the value is packed.
func (c *LazyCell[T]) Footprint() uint64 { return 1 }

// PullSpread binds the cell to its key without reading anything.
func (c *LazyCell[T]) PullSpread(ptr *KeyPtr) {
	at := ptr.Advance(1)
	c.key = &at
	c.cache = nil
}

// PushSpread writes the cell iff it was mutated, assigning a key to a
// never-persisted cell first.
func (c *LazyCell[T]) PushSpread(ptr *KeyPtr) {
	at := ptr.Advance(1)
	if c.key == nil {
		c.key = &at
	}
	if c.cache != nil {
		c.cache.PushPackedRoot(c.ledger, at)
	}
}

// ClearSpread removes the backing cell. Clearing an absent cell is a no-op
// at the ledger level but still advances the cursor.
func (c *LazyCell[T]) ClearSpread(ptr *KeyPtr) {
	at := ptr.Advance(1)
	if c.cache == nil {
		c.cache = NewEntry[T](nil, EntryPreserved)
	}
	c.cache.ClearPackedRoot(c.ledger, at)
}
