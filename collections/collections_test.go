package collections

import (
	"testing"

	"github.com/cellarkv/cellar"
)

func newTestLedger(t testing.TB) (*cellar.Ledger, *cellar.MemBackend) {
	t.Helper()
	backend := cellar.NewMemBackend()
	l := cellar.NewLedger(backend, cellar.LedgerOptions{
		Logf:    t.Logf,
		Verbose: testing.Verbose(),
	})
	return l, backend
}
