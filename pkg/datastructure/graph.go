package datastructure

import (
	"sort"

	"github.com/adiatma-s/cchkit/pkg/util"
)

type Index uint32

// Graph is the immutable input road graph: directed arcs as parallel
// tail/head arrays, arc ids being positions into those arrays, plus a CSR
// out-adjacency derived once at construction. Weights live elsewhere (a
// Metric); the topology here never changes.
type Graph struct {
	numVertices int
	tail        []Index
	head        []Index

	firstOut []Index // CSR offsets into outArc, len numVertices+1
	outArc   []Index // arc ids grouped by tail
}

func NewGraph(numVertices int, tail, head []Index) (*Graph, error) {
	if len(tail) != len(head) {
		return nil, util.WrapErrorf(util.ErrLengthMismatch, util.ErrBadParamInput,
			"tail has %d arcs, head has %d", len(tail), len(head))
	}
	for i := range tail {
		if int(tail[i]) >= numVertices || int(head[i]) >= numVertices {
			return nil, util.WrapErrorf(util.ErrBadParamInput, util.ErrBadParamInput,
				"arc %d endpoints (%d,%d) out of range for %d vertices", i, tail[i], head[i], numVertices)
		}
	}

	g := &Graph{
		numVertices: numVertices,
		tail:        append([]Index(nil), tail...),
		head:        append([]Index(nil), head...),
	}
	g.buildOutAdjacency()
	return g, nil
}

func (g *Graph) buildOutAdjacency() {
	g.firstOut = make([]Index, g.numVertices+1)
	g.outArc = make([]Index, len(g.tail))
	for _, t := range g.tail {
		g.firstOut[t+1]++
	}
	for v := 1; v <= g.numVertices; v++ {
		g.firstOut[v] += g.firstOut[v-1]
	}
	fill := append([]Index(nil), g.firstOut[:g.numVertices]...)
	for a := range g.tail {
		t := g.tail[a]
		g.outArc[fill[t]] = Index(a)
		fill[t]++
	}
	// stable arc order inside each bucket keeps iteration deterministic
	for v := 0; v < g.numVertices; v++ {
		seg := g.outArc[g.firstOut[v]:g.firstOut[v+1]]
		sort.Slice(seg, func(i, j int) bool { return seg[i] < seg[j] })
	}
}

func (g *Graph) NumberOfVertices() int {
	return g.numVertices
}

func (g *Graph) NumberOfArcs() int {
	return len(g.tail)
}

func (g *Graph) GetTail(arc Index) Index {
	return g.tail[arc]
}

func (g *Graph) GetHead(arc Index) Index {
	return g.head[arc]
}

// ForOutArcsOf visits every arc leaving v.
func (g *Graph) ForOutArcsOf(v Index, visit func(arc, head Index)) {
	for i := g.firstOut[v]; i < g.firstOut[v+1]; i++ {
		arc := g.outArc[i]
		visit(arc, g.head[arc])
	}
}

// UndirectedDegrees counts, per node, both endpoints of every arc. A self
// loop therefore contributes two.
func (g *Graph) UndirectedDegrees() []int {
	deg := make([]int, g.numVertices)
	for i := range g.tail {
		deg[g.tail[i]]++
		deg[g.head[i]]++
	}
	return deg
}
