package cellar

// MemBackend is a transient map-backed Backend intended for tests and
// one-shot executions. Like every Backend it is used from a single execution
// at a time, so there is no locking.
type MemBackend struct {
	cells map[Key][]byte
}

func NewMemBackend() *MemBackend {
	return &MemBackend{cells: make(map[Key][]byte)}
}

func (s *MemBackend) Read(at Key) ([]byte, bool) {
	data, ok := s.cells[at]
	return data, ok
}

func (s *MemBackend) Write(at Key, data []byte) {
	c := make([]byte, len(data))
	copy(c, data)
	s.cells[at] = c
}

func (s *MemBackend) Clear(at Key) {
	delete(s.cells, at)
}

// Len returns the number of live cells, for tests asserting reclamation.
func (s *MemBackend) Len() int {
	return len(s.cells)
}
