package cellar

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var cellsBucket = []byte("cells")

// BoltBackend persists cells in a single Bolt bucket keyed by the raw
// 32-byte key. One writable transaction spans one execution: Begin before the
// first access, then Commit at the commit point (or Rollback to revert).
type BoltBackend struct {
	bdb *bbolt.DB
	btx *bbolt.Tx
}

type BoltOptions struct {
	IsTesting bool
	MmapSize  int
}

func OpenBolt(path string, opt BoltOptions) (*BoltBackend, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 1024
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("cellar: %w", err)
	}
	return &BoltBackend{bdb: bdb}, nil
}

// Begin starts the writable transaction for an execution and ensures the
// cells bucket exists.
func (s *BoltBackend) Begin() error {
	if s.btx != nil {
		return fmt.Errorf("cellar: execution already in progress")
	}
	btx, err := s.bdb.Begin(true)
	if err != nil {
		return err
	}
	if _, err := btx.CreateBucketIfNotExists(cellsBucket); err != nil {
		btx.Rollback()
		return err
	}
	s.btx = btx
	return nil
}

func (s *BoltBackend) Commit() error {
	btx := s.btx
	s.btx = nil
	if btx == nil {
		return nil
	}
	return btx.Commit()
}

func (s *BoltBackend) Rollback() error {
	btx := s.btx
	s.btx = nil
	if btx == nil {
		return nil
	}
	return btx.Rollback()
}

func (s *BoltBackend) Close() error {
	if s.btx != nil {
		s.btx.Rollback()
		s.btx = nil
	}
	return s.bdb.Close()
}

func (s *BoltBackend) bucket() *bbolt.Bucket {
	if s.btx == nil {
		panic("cellar: storage access outside of an execution")
	}
	return nonNil(s.btx.Bucket(cellsBucket))
}

func (s *BoltBackend) Read(at Key) ([]byte, bool) {
	data := s.bucket().Get(at[:])
	if data == nil {
		return nil, false
	}
	// Bolt hands out mmap-backed bytes only valid within the transaction.
	c := make([]byte, len(data))
	copy(c, data)
	return c, true
}

func (s *BoltBackend) Write(at Key, data []byte) {
	ensure(s.bucket().Put(at[:], data))
}

func (s *BoltBackend) Clear(at Key) {
	ensure(s.bucket().Delete(at[:]))
}
