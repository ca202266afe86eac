package orderer

import (
	"sort"

	"github.com/adiatma-s/cchkit/pkg/datastructure"
)

// ComputeOrderDegree returns the cheap fallback elimination order: nodes
// ascending by (undirected degree, id). Arcs with an endpoint outside
// 0..nodeCount-1 are ignored; a self loop counts twice at its node.
func ComputeOrderDegree(nodeCount int, tail, head []datastructure.Index) []datastructure.Index {
	deg := make([]int, nodeCount)
	for i := range tail {
		if int(tail[i]) < nodeCount {
			deg[tail[i]]++
		}
		if i < len(head) && int(head[i]) < nodeCount {
			deg[head[i]]++
		}
	}

	order := make([]datastructure.Index, nodeCount)
	for i := range order {
		order[i] = datastructure.Index(i)
	}
	sort.Slice(order, func(a, b int) bool {
		if deg[order[a]] != deg[order[b]] {
			return deg[order[a]] < deg[order[b]]
		}
		return order[a] < order[b]
	})
	return order
}
