package cellar

import (
	"reflect"
	"testing"
)

func newTestLedger(t testing.TB) *Ledger {
	t.Helper()
	return NewLedger(NewMemBackend(), LedgerOptions{
		Logf:    t.Logf,
		Verbose: testing.Verbose(),
	})
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func eq[T comparable](t testing.TB, a, e T) {
	if a != e {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func isnil[T any, P ~*T](t testing.TB, a P) {
	if a != nil {
		t.Helper()
		t.Errorf("** got %v, wanted nil", *a)
	}
}

func deref[T comparable](t testing.TB, a *T, e T) {
	t.Helper()
	if a == nil {
		t.Errorf("** got nil, wanted %v", e)
		return
	}
	if *a != e {
		t.Errorf("** got %v, wanted %v", *a, e)
	}
}

func counts(t testing.TB, l *Ledger, reads, writes, clears uint64) {
	t.Helper()
	eq(t, l.ReadCount.Load(), reads)
	eq(t, l.WriteCount.Load(), writes)
	eq(t, l.ClearCount.Load(), clears)
}

func mustPanic(t testing.TB, f func()) (recovered any) {
	t.Helper()
	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Errorf("** expected a panic")
		}
	}()
	f()
	return nil
}
