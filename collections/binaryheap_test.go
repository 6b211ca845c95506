package collections

import (
	"math/rand"
	"testing"

	"github.com/cellarkv/cellar"
	"github.com/stretchr/testify/require"
)

func TestBinaryHeapPushPop(t *testing.T) {
	l, _ := newTestLedger(t)
	h := NewBinaryHeap[int](l)
	require.True(t, h.IsEmpty())
	require.Nil(t, h.Pop())
	require.Nil(t, h.Peek())

	for _, n := range []int{3, 1, 4, 1, 5, 9, 2, 6} {
		h.Push(n)
	}
	require.EqualValues(t, 8, h.Len())
	require.Equal(t, 9, *h.Peek())
	require.EqualValues(t, 8, h.Len()) // Peek does not remove

	prev := *h.Pop()
	require.Equal(t, 9, prev)
	for !h.IsEmpty() {
		cur := *h.Pop()
		require.LessOrEqual(t, cur, prev)
		prev = cur
	}
	require.Nil(t, h.Pop())
	require.Zero(t, h.Len())
}

func TestBinaryHeapRandomized(t *testing.T) {
	l, _ := newTestLedger(t)
	h := NewBinaryHeap[uint32](l)
	rng := rand.New(rand.NewSource(42))

	const n = 200
	for i := 0; i < n; i++ {
		h.Push(rng.Uint32())
	}

	prev := *h.Pop()
	for i := 1; i < n; i++ {
		cur := *h.Pop()
		require.LessOrEqual(t, cur, prev)
		prev = cur
	}
	require.True(t, h.IsEmpty())
}

func TestBinaryHeapDuplicates(t *testing.T) {
	l, _ := newTestLedger(t)
	h := NewBinaryHeap[int](l)
	for i := 0; i < 4; i++ {
		h.Push(7)
	}
	h.Push(8)

	require.Equal(t, 8, *h.Pop())
	for i := 0; i < 4; i++ {
		require.Equal(t, 7, *h.Pop())
	}
	require.True(t, h.IsEmpty())
}

func TestBinaryHeapReclaimsGroups(t *testing.T) {
	l, backend := newTestLedger(t)
	root := cellar.KeyFromUint64(300)

	h := NewBinaryHeap[int](l)
	for i := 0; i < 10; i++ {
		h.Push(i)
	}
	h.PushSpread(cellar.NewKeyPtr(root))
	full := backend.Len()

	for i := 0; i < 10; i++ {
		h.Pop()
	}
	h.PushSpread(cellar.NewKeyPtr(root))

	// Draining the heap must release the element cells, not just zero len.
	require.Less(t, backend.Len(), full)
}

func TestBinaryHeapSpreadRoundTrip(t *testing.T) {
	l, backend := newTestLedger(t)
	root := cellar.KeyFromUint64(400)

	h := NewBinaryHeap[string](l)
	h.Push("pear")
	h.Push("apple")
	h.Push("zucchini")
	h.PushSpread(cellar.NewKeyPtr(root))

	h2 := NewBinaryHeap[string](l)
	h2.PullSpread(cellar.NewKeyPtr(root))
	require.EqualValues(t, 3, h2.Len())
	require.Equal(t, "zucchini", *h2.Pop())
	require.Equal(t, "pear", *h2.Pop())
	require.Equal(t, "apple", *h2.Pop())

	h2.ClearSpread(cellar.NewKeyPtr(root))
	require.Zero(t, backend.Len())
}
