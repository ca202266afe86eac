package orderer

import (
	"sort"

	"github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/util"
	"go.uber.org/zap"
)

// NestedDissectionOrderer computes a fill-in reducing elimination order by
// recursive inertial-flow bisection: each recursion level cuts the region
// in two, orders both halves first and the separator nodes last, so the
// separators end up on top of the hierarchy.
type NestedDissectionOrderer struct {
	params util.Params
	logger *zap.Logger
}

func NewNestedDissectionOrderer(params util.Params, logger *zap.Logger) *NestedDissectionOrderer {
	return &NestedDissectionOrderer{params: params, logger: logger}
}

// ComputeOrderInertial is the package-level convenience using default
// parameters and no logging.
func ComputeOrderInertial(nodeCount int, tail, head []datastructure.Index,
	lat, lon []float64) ([]datastructure.Index, error) {
	nd := NewNestedDissectionOrderer(util.DefaultParams(), zap.NewNop())
	return nd.ComputeOrder(nodeCount, tail, head, lat, lon)
}

type subgraph struct {
	originalID []datastructure.Index // local id -> caller node id
	edges      [][2]int32            // undirected, deduplicated, local ids
	lat, lon   []float64
}

func (nd *NestedDissectionOrderer) ComputeOrder(nodeCount int, tail, head []datastructure.Index,
	lat, lon []float64) ([]datastructure.Index, error) {

	if len(tail) != len(head) {
		return nil, util.WrapErrorf(util.ErrLengthMismatch, util.ErrBadParamInput,
			"tail has %d arcs, head has %d", len(tail), len(head))
	}
	if len(lat) != nodeCount || len(lon) != nodeCount {
		return nil, util.WrapErrorf(util.ErrLengthMismatch, util.ErrBadParamInput,
			"coordinate arrays (%d lat, %d lon) must match node count %d", len(lat), len(lon), nodeCount)
	}

	root := subgraph{
		originalID: make([]datastructure.Index, nodeCount),
		lat:        lat,
		lon:        lon,
	}
	for i := range root.originalID {
		root.originalID[i] = datastructure.Index(i)
	}

	seen := make(map[uint64]struct{}, len(tail))
	for i := range tail {
		u, v := tail[i], head[i]
		if int(u) >= nodeCount || int(v) >= nodeCount || u == v {
			continue
		}
		lo, hi := u, v
		if lo > hi {
			lo, hi = hi, lo
		}
		key := uint64(lo)<<32 | uint64(hi)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		root.edges = append(root.edges, [2]int32{int32(lo), int32(hi)})
	}
	sort.Slice(root.edges, func(a, b int) bool {
		if root.edges[a][0] != root.edges[b][0] {
			return root.edges[a][0] < root.edges[b][0]
		}
		return root.edges[a][1] < root.edges[b][1]
	})

	order := nd.dissect(root, 0)
	util.AssertPanic(len(order) == nodeCount, "nested dissection dropped or duplicated nodes")
	return order, nil
}

func (nd *NestedDissectionOrderer) dissect(sg subgraph, depth int) []datastructure.Index {
	n := len(sg.originalID)
	if n <= nd.params.DissectionLeafSize {
		// trivial leaf order
		leaf := make([]datastructure.Index, n)
		copy(leaf, sg.originalID)
		sort.Slice(leaf, func(a, b int) bool { return leaf[a] < leaf[b] })
		return leaf
	}

	iflow := newInertialFlow(n, sg.edges, sg.lat, sg.lon, nd.params)
	cut := iflow.computeBestCut()

	if depth <= 2 {
		nd.logger.Sugar().Infof("nested dissection depth %d: %d nodes, cut size %d, sink side %d",
			depth, n, cut.GetCutSize(), cut.GetNumNodesInSinkSide())
	}

	// separator: source-side endpoints of the cut edges
	separator := make([]bool, n)
	for _, e := range sg.edges {
		u, v := int(e[0]), int(e[1])
		if cut.GetFlag(u) && !cut.GetFlag(v) {
			separator[u] = true
		} else if cut.GetFlag(v) && !cut.GetFlag(u) {
			separator[v] = true
		}
	}

	partOne, partTwo, sepNodes := nd.applyBisection(sg, cut, separator)

	// a degenerate cut cannot shrink the problem; fall back to the leaf order
	if len(partOne.originalID) == n || len(partTwo.originalID) == n {
		leaf := make([]datastructure.Index, n)
		copy(leaf, sg.originalID)
		sort.Slice(leaf, func(a, b int) bool { return leaf[a] < leaf[b] })
		return leaf
	}

	order := nd.dissect(partOne, depth+1)
	order = append(order, nd.dissect(partTwo, depth+1)...)
	order = append(order, sepNodes...)
	return order
}

// applyBisection splits sg into the source side minus the separator, the
// sink side, and the separator nodes themselves (in ascending caller id).
func (nd *NestedDissectionOrderer) applyBisection(sg subgraph, cut *MinCut,
	separator []bool) (subgraph, subgraph, []datastructure.Index) {

	n := len(sg.originalID)

	var (
		partOne = subgraph{}
		partTwo = subgraph{}
	)
	localToPart := make([]int32, n)
	inPartOne := make([]bool, n)
	sepNodes := make([]datastructure.Index, 0)

	for u := 0; u < n; u++ {
		switch {
		case separator[u]:
			sepNodes = append(sepNodes, sg.originalID[u])
		case cut.GetFlag(u):
			localToPart[u] = int32(len(partOne.originalID))
			inPartOne[u] = true
			partOne.originalID = append(partOne.originalID, sg.originalID[u])
			partOne.lat = append(partOne.lat, sg.lat[u])
			partOne.lon = append(partOne.lon, sg.lon[u])
		default:
			localToPart[u] = int32(len(partTwo.originalID))
			partTwo.originalID = append(partTwo.originalID, sg.originalID[u])
			partTwo.lat = append(partTwo.lat, sg.lat[u])
			partTwo.lon = append(partTwo.lon, sg.lon[u])
		}
	}

	for _, e := range sg.edges {
		u, v := int(e[0]), int(e[1])
		if separator[u] || separator[v] {
			continue
		}
		// cross edges always touch the separator, so u and v land on one side
		if inPartOne[u] && inPartOne[v] {
			partOne.edges = append(partOne.edges, [2]int32{localToPart[u], localToPart[v]})
		} else if !inPartOne[u] && !inPartOne[v] {
			partTwo.edges = append(partTwo.edges, [2]int32{localToPart[u], localToPart[v]})
		}
	}

	sort.Slice(sepNodes, func(a, b int) bool { return sepNodes[a] < sepNodes[b] })
	return partOne, partTwo, sepNodes
}
