package orderer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/util"
	"go.uber.org/zap"
)

func TestComputeOrderDegree(t *testing.T) {
	// node 2 touches every arc, node 3 is isolated
	tail := []datastructure.Index{0, 1, 2}
	head := []datastructure.Index{2, 2, 0}

	order := ComputeOrderDegree(4, tail, head)
	require.Equal(t, []datastructure.Index{3, 1, 0, 2}, order)
}

// gridGraph builds a w x h grid with unit spacing and bidirected arcs.
func gridGraph(w, h int) (tail, head []datastructure.Index, lat, lon []float64) {
	at := func(x, y int) datastructure.Index { return datastructure.Index(y*w + x) }
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lat = append(lat, float64(y))
			lon = append(lon, float64(x))
			if x+1 < w {
				tail = append(tail, at(x, y), at(x+1, y))
				head = append(head, at(x+1, y), at(x, y))
			}
			if y+1 < h {
				tail = append(tail, at(x, y), at(x, y+1))
				head = append(head, at(x, y+1), at(x, y))
			}
		}
	}
	return tail, head, lat, lon
}

func TestNestedDissectionIsPermutation(t *testing.T) {
	tail, head, lat, lon := gridGraph(8, 8)
	n := 64

	nd := NewNestedDissectionOrderer(util.DefaultParams(), zap.NewNop())
	order, err := nd.ComputeOrder(n, tail, head, lat, lon)
	require.NoError(t, err)
	require.Len(t, order, n)

	seen := make([]bool, n)
	for _, v := range order {
		require.Less(t, int(v), n)
		require.False(t, seen[v], "node %d ordered twice", v)
		seen[v] = true
	}
}

func TestNestedDissectionRejectsBadInput(t *testing.T) {
	tail := []datastructure.Index{0}
	head := []datastructure.Index{1, 2}
	_, err := ComputeOrderInertial(3, tail, head, []float64{0, 0, 0}, []float64{0, 1, 2})
	require.ErrorIs(t, err, util.ErrLengthMismatch)

	_, err = ComputeOrderInertial(3, []datastructure.Index{0}, []datastructure.Index{1},
		[]float64{0, 0}, []float64{0, 1})
	require.ErrorIs(t, err, util.ErrLengthMismatch)
}

func TestDinicUnitPathCut(t *testing.T) {
	// 0 - 1 - 2 chain plus artificial endpoints 3 (source) and 4 (sink)
	fg := newFlowGraph(5)
	fg.addUndirectedEdge(0, 1)
	fg.addUndirectedEdge(1, 2)
	fg.addInfEdge(3, 0)
	fg.addInfEdge(2, 4)

	dn := newDinicMaxFlow(fg)
	cut := dn.ComputeMaxflowMinCut(3, 4)

	require.Equal(t, 1, cut.GetCutSize())
	require.True(t, cut.GetFlag(0))
	require.False(t, cut.GetFlag(2))
}

func TestDinicParallelPathsCut(t *testing.T) {
	// two disjoint paths between 0 and 3 force a cut of two
	fg := newFlowGraph(6)
	fg.addUndirectedEdge(0, 1)
	fg.addUndirectedEdge(1, 3)
	fg.addUndirectedEdge(0, 2)
	fg.addUndirectedEdge(2, 3)
	fg.addInfEdge(4, 0)
	fg.addInfEdge(3, 5)

	dn := newDinicMaxFlow(fg)
	cut := dn.ComputeMaxflowMinCut(4, 5)
	require.Equal(t, 2, cut.GetCutSize())
}

func TestInertialFlowBalancedSplit(t *testing.T) {
	tail, head, lat, lon := gridGraph(6, 6)

	edges := make([][2]int32, 0, len(tail)/2)
	seen := make(map[uint64]struct{})
	for i := range tail {
		lo, hi := tail[i], head[i]
		if lo > hi {
			lo, hi = hi, lo
		}
		key := uint64(lo)<<32 | uint64(hi)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		edges = append(edges, [2]int32{int32(lo), int32(hi)})
	}

	iflow := newInertialFlow(36, edges, lat, lon, util.DefaultParams())
	cut := iflow.computeBestCut()
	require.NotNil(t, cut)

	// a straight cut through a 6x6 grid severs at most one row or column
	require.LessOrEqual(t, cut.GetCutSize(), 6)
	require.Greater(t, cut.GetNumNodesInSinkSide(), 0)
	require.Less(t, cut.GetNumNodesInSinkSide(), 36)
}
