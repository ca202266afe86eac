package orderer

import (
	"container/list"
	"math"

	"github.com/adiatma-s/cchkit/pkg/util"
)

const (
	invalidLevel = int32(-1)
	flowInfinite = int32(1) << 30
	unitCapacity = int32(1)
)

type flowEdge struct {
	to       int32
	capacity int32
	flow     int32
}

// flowGraph is the residual network for one bisection attempt. Edges are
// stored in pairs so that edge i and i^1 are mutual reverses.
type flowGraph struct {
	n         int
	edges     []flowEdge
	adjacency [][]int32
	level     []int32
	lastEdge  []int32
}

func newFlowGraph(n int) *flowGraph {
	return &flowGraph{
		n:         n,
		adjacency: make([][]int32, n),
		level:     make([]int32, n),
		lastEdge:  make([]int32, n),
	}
}

func (fg *flowGraph) addEdge(u, v int, capacity, reverseCapacity int32) {
	fg.adjacency[u] = append(fg.adjacency[u], int32(len(fg.edges)))
	fg.edges = append(fg.edges, flowEdge{to: int32(v), capacity: capacity})
	fg.adjacency[v] = append(fg.adjacency[v], int32(len(fg.edges)))
	fg.edges = append(fg.edges, flowEdge{to: int32(u), capacity: reverseCapacity})
}

// addUndirectedEdge adds a unit-capacity edge traversable both ways.
func (fg *flowGraph) addUndirectedEdge(u, v int) {
	fg.addEdge(u, v, unitCapacity, unitCapacity)
}

func (fg *flowGraph) addInfEdge(u, v int) {
	fg.addEdge(u, v, flowInfinite, 0)
}

type dinicMaxFlow struct {
	graph *flowGraph
}

func newDinicMaxFlow(graph *flowGraph) *dinicMaxFlow {
	return &dinicMaxFlow{graph: graph}
}

func (dmf *dinicMaxFlow) bfsLevelGraph(source, target int) bool {
	for i := range dmf.graph.level {
		dmf.graph.level[i] = invalidLevel
	}

	levelQueue := list.New()
	levelQueue.PushBack(int32(source))
	dmf.graph.level[source] = 0

	for levelQueue.Len() > 0 {
		u := levelQueue.Front().Value.(int32)
		levelQueue.Remove(levelQueue.Front())

		if int(u) == target {
			break
		}
		level := dmf.graph.level[u] + 1

		for _, eIdx := range dmf.graph.adjacency[u] {
			edge := dmf.graph.edges[eIdx]
			residual := edge.capacity - edge.flow
			if residual > 0 && dmf.graph.level[edge.to] == invalidLevel {
				dmf.graph.level[edge.to] = level
				levelQueue.PushBack(edge.to)
			}
		}
	}
	return dmf.graph.level[target] != invalidLevel
}

func (dmf *dinicMaxFlow) dfsAugmentPath(u, t int, f int32) int32 {
	if u == t || f == 0 {
		return f
	}

	for ; dmf.graph.lastEdge[u] < int32(len(dmf.graph.adjacency[u])); dmf.graph.lastEdge[u]++ {
		eIdx := dmf.graph.adjacency[u][dmf.graph.lastEdge[u]]
		edge := &dmf.graph.edges[eIdx]
		v := int(edge.to)
		residual := edge.capacity - edge.flow
		if residual <= 0 || dmf.graph.level[v] != dmf.graph.level[u]+1 {
			continue
		}

		if pushed := dmf.dfsAugmentPath(v, t, minInt32(residual, f)); pushed > 0 {
			edge.flow += pushed
			dmf.graph.edges[eIdx^1].flow -= pushed
			return pushed
		}
	}

	return 0
}

func (dmf *dinicMaxFlow) resetCurrentEdges() {
	for i := range dmf.graph.lastEdge {
		dmf.graph.lastEdge[i] = 0
	}
}

// ComputeMaxflowMinCut runs Dinic between s and t and derives the cut: the
// nodes still reachable from s in the residual network form the source
// side. The two artificial endpoints are excluded from the flags.
func (dmf *dinicMaxFlow) ComputeMaxflowMinCut(s, t int) *MinCut {
	util.AssertPanic(s < dmf.graph.n && t < dmf.graph.n, "flow endpoints out of range")
	minCut := NewMinCut(dmf.graph.n - 2)

	maxFlow := 0
	for dmf.bfsLevelGraph(s, t) {
		dmf.resetCurrentEdges()

		for {
			flow := dmf.dfsAugmentPath(s, t, math.MaxInt32)
			if flow == 0 {
				break
			}
			maxFlow += int(flow)
		}
	}

	for u := 0; u < dmf.graph.n-2; u++ {
		if dmf.graph.level[u] != invalidLevel {
			minCut.SetFlag(u, true)
		} else {
			minCut.incrementNumNodesInSinkSide()
		}
	}
	minCut.setCutSize(maxFlow)
	return minCut
}

func minInt32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
