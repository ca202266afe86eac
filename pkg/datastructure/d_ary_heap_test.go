package datastructure

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinHeapExtractsInOrder(t *testing.T) {
	for _, d := range []int{2, 4} {
		h := NewdAryHeap[uint32, int](d)
		rng := rand.New(rand.NewSource(42))

		ranks := make([]uint32, 0, 200)
		for i := 0; i < 200; i++ {
			r := uint32(rng.Intn(1000))
			ranks = append(ranks, r)
			h.Insert(NewPriorityQueueNode(r, i))
		}
		sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })

		require.Equal(t, 200, h.Size())
		for _, want := range ranks {
			node, err := h.ExtractMin()
			require.NoError(t, err)
			require.Equal(t, want, node.GetRank())
		}
		require.True(t, h.IsEmpty())

		_, err := h.ExtractMin()
		require.Error(t, err)
	}
}

func TestMinHeapDecreaseKey(t *testing.T) {
	h := NewFourAryHeap[uint32, string]()

	a := NewPriorityQueueNode(uint32(10), "a")
	b := NewPriorityQueueNode(uint32(20), "b")
	c := NewPriorityQueueNode(uint32(30), "c")
	h.Insert(a)
	h.Insert(b)
	h.Insert(c)

	require.NoError(t, h.DecreaseKey(c, 5))
	require.Error(t, h.DecreaseKey(b, 25), "raising a key must be rejected")

	node, err := h.ExtractMin()
	require.NoError(t, err)
	require.Equal(t, "c", node.GetItem())

	min, err := h.GetMin()
	require.NoError(t, err)
	require.Equal(t, "a", min.GetItem())
}

func TestGraphAdjacency(t *testing.T) {
	tail := []Index{2, 0, 0, 1}
	head := []Index{1, 2, 1, 2}

	g, err := NewGraph(3, tail, head)
	require.NoError(t, err)
	require.Equal(t, 3, g.NumberOfVertices())
	require.Equal(t, 4, g.NumberOfArcs())

	var arcs, heads []Index
	g.ForOutArcsOf(0, func(arc, head Index) {
		arcs = append(arcs, arc)
		heads = append(heads, head)
	})
	require.Equal(t, []Index{1, 2}, arcs)
	require.Equal(t, []Index{2, 1}, heads)

	require.Equal(t, []int{2, 3, 3}, g.UndirectedDegrees())

	_, err = NewGraph(2, tail, head)
	require.Error(t, err)
}
