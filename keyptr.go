package cellar

// KeyPtr is a mutable walker over the address space. Each logical field
// consumes a contiguous range of keys sized by its footprint, so sibling
// fields never alias.
//
// Pull, push and clear paths must advance the cursor in the exact same field
// order, or the layout silently corrupts. This ordering is the single most
// important invariant of the engine; Binder enforces it for top-level fields
// by always walking them in declaration order.
type KeyPtr struct {
	next Key
}

func NewKeyPtr(root Key) *KeyPtr {
	return &KeyPtr{next: root}
}

// Advance returns the start of the next field's range, then moves the cursor
// past it.
func (p *KeyPtr) Advance(footprint uint64) Key {
	cur := p.next
	p.next = p.next.Add(footprint)
	return cur
}
